package fusion

import (
	"strings"
	"unicode"
)

// clickableRoles is the exact allow-list of accessibility roles that make an
// element clickable regardless of its text.
var clickableRoles = map[string]bool{
	"button":    true,
	"menu-item": true,
	"popup":     true,
	"row":       true,
	"cell":      true,
	"checkbox":  true,
	"radio":     true,
}

// highValueRoles marks accessibility-only observations worth emitting even
// when no OCR fragment matched them.
var highValueRoles = map[string]bool{
	"button":    true,
	"menu-item": true,
	"popup":     true,
	"text-field": true,
	"text-area": true,
	"checkbox":  true,
	"radio":     true,
	"slider":    true,
	"progress":  true,
}

// textFieldRoles are the roles eligible for the placeholder merge.
var textFieldRoles = map[string]bool{
	"text-field":   true,
	"text-area":    true,
	"search-field": true,
}

// actionPhrases is the exact-match vocabulary for deciding that a plain OCR
// fragment is clickable. Matching is whole-text only: the word "click"
// appearing inside unrelated prose must not make prose clickable.
var actionPhrases = map[string]bool{
	"ok": true, "cancel": true, "submit": true, "save": true,
	"open": true, "close": true, "done": true, "apply": true,
	"delete": true, "edit": true, "send": true, "search": true,
	"continue": true, "next": true, "back": true, "retry": true,
	"login": true, "log in": true, "sign in": true, "sign up": true,
	"log out": true, "sign out": true, "yes": true, "no": true,
	"add": true, "remove": true, "new": true, "create": true,
	"download": true, "upload": true, "install": true, "update": true,
}

// canonicalRole lowers a raw accessibility role tag (platform-prefixed camel
// case like "AXMenuItem", or an already-plain tag like "menu-item") into the
// kebab-case vocabulary the allow-lists use.
func canonicalRole(role string) string {
	role = strings.TrimPrefix(role, "AX")

	var b strings.Builder
	for i, r := range role {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	tag := b.String()

	// Platform quirks that camel-case splitting gets wrong.
	switch tag {
	case "pop-up-button", "pop-up", "popup-button":
		return "popup"
	case "menu-bar-item":
		return "menu-item"
	case "check-box":
		return "checkbox"
	case "radio-button":
		return "radio"
	case "progress-indicator":
		return "progress"
	case "search-field":
		return "search-field"
	}
	return tag
}

// isClickableRole reports whether the raw role is on the clickable allow-list.
func isClickableRole(role string) bool {
	return clickableRoles[canonicalRole(role)]
}

// isActionText reports whether an OCR fragment is, as a whole, an action
// word or phrase. The text is lowercased and stripped of surrounding
// punctuation before the exact comparison; no substring matching happens.
func isActionText(text string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	cleaned = strings.TrimFunc(cleaned, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	return actionPhrases[cleaned]
}
