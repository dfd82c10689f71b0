package encoder

import (
	"regexp"
	"strings"

	"go-screen-perception/pkg/models"
)

// Context detection scrapes the element text for situational hints the
// header can carry: a browser's address bar yields the current page, a mail
// composer yields the recipient line. Only text-bearing field elements are
// considered so ordinary page copy cannot spoof the header.

var (
	urlPattern = regexp.MustCompile(`(?i)\b(?:https?://)?(?:www\.)?([a-z0-9][a-z0-9-]*(?:\.[a-z0-9-]+)+)(/[^\s|@:;\[\]]*)?`)

	recipientPattern = regexp.MustCompile(`(?i)^to:\s*(.+)$`)
)

// DetectContext returns a short context token for the encoded header, or ""
// when nothing recognizable is present. URLs are normalized by stripping the
// protocol and the www prefix; recipient lines become "to:<name>".
func DetectContext(elements []models.UIElement) string {
	for _, elem := range elements {
		if !isFieldLike(elem) {
			continue
		}
		text := strings.TrimSpace(elem.VisualText)
		if text == "" && elem.Accessibility != nil {
			text = strings.TrimSpace(elem.Accessibility.Value)
		}
		if text == "" {
			continue
		}

		if m := recipientPattern.FindStringSubmatch(text); m != nil {
			return sanitizeHeader("to:" + strings.TrimSpace(m[1]))
		}
		if m := urlPattern.FindStringSubmatch(text); m != nil {
			return sanitizeHeader(m[1] + m[2])
		}
	}
	return ""
}

// isFieldLike reports whether the element can plausibly hold navigational
// or addressing text.
func isFieldLike(elem models.UIElement) bool {
	switch kebabRole(strings.TrimSuffix(elem.Type, "+OCR")) {
	case "text-field", "text-area", "search-field", "combo-box":
		return true
	}
	if elem.Accessibility != nil {
		switch kebabRole(elem.Accessibility.Role) {
		case "text-field", "text-area", "search-field", "combo-box":
			return true
		}
	}
	return false
}
