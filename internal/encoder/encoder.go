// Package encoder serializes the final element set into the compact
// addressable string consumed by the automation agent.
//
// The output is banded: menu-bar elements (appMenu/systemMenu) are encoded
// with their actual pixel centers because the menu bar is too short for
// percentage addressing to keep precision, while window-content elements use
// integer percentage pairs of the window extent. Each band is encoded
// separately and concatenated:
//
//	<app>|<W>x<H>[|<context>]|mb[<menu entries>]ct[<content entries>]
//
// with one entry per element:
//
//	<abbr>:<text>|<w>x<h>@(<cx>,<cy>)   menu band
//	<abbr>:<text>|<w>x<h>@<x%>:<y%>     content band
//
// Encoding is deterministic: elements are canonicalized (confidence
// descending, then reading order, then ID) before serialization, so the same
// element list and window frame always produce a byte-identical string.
package encoder

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go-screen-perception/pkg/models"
)

// fallbackAbbrev substitutes for any type tag that cannot be expressed in
// the line format; the encoder degrades, it never aborts a pass.
const fallbackAbbrev = "EL"

const maxTextRunes = 40

// Encoder turns a finalized element list into the compressed map string.
type Encoder struct{}

// New creates an encoder.
func New() *Encoder { return &Encoder{} }

// Encode serializes the element set against the window frame. The context
// hint is detected from the elements themselves (see DetectContext) and
// included in the header only when non-empty.
func (e *Encoder) Encode(elements []models.UIElement, frame models.Rect, appName string) string {
	canonical := canonicalize(elements)

	var menu, content []string
	for _, elem := range canonical {
		line, ok := e.encodeElement(elem, frame)
		if !ok {
			continue
		}
		if isMenuType(elem.Type) {
			menu = append(menu, line)
		} else {
			content = append(content, line)
		}
	}

	var b strings.Builder
	b.WriteString(sanitizeHeader(appName))
	fmt.Fprintf(&b, "|%dx%d", roundInt(frame.Size.Width), roundInt(frame.Size.Height))
	if ctx := DetectContext(elements); ctx != "" {
		b.WriteString("|")
		b.WriteString(ctx)
	}
	b.WriteString("|")

	b.WriteString("mb[")
	b.WriteString(strings.Join(menu, ";"))
	b.WriteString("]")
	b.WriteString("ct[")
	b.WriteString(strings.Join(content, ";"))
	b.WriteString("]")
	return b.String()
}

// encodeElement renders one element line. The boolean is false when the
// element is dropped at encode time: generic textless buttons are suppressed
// here again deliberately, since the encoder is the last point before output.
func (e *Encoder) encodeElement(elem models.UIElement, frame models.Rect) (string, bool) {
	text := sanitizeText(displayText(elem))
	if isGenericButton(elem, text) {
		return "", false
	}

	center := elem.Bounds().Center()
	var pos string
	if isMenuType(elem.Type) {
		pos = fmt.Sprintf("(%d,%d)", roundInt(center.X), roundInt(center.Y))
	} else {
		xPct, yPct := PercentOfFrame(center, frame)
		pos = fmt.Sprintf("%d:%d", xPct, yPct)
	}

	return fmt.Sprintf("%s:%s|%dx%d@%s",
		typeAbbrev(elem.Type), text,
		roundInt(elem.Size.Width), roundInt(elem.Size.Height), pos), true
}

// PercentOfFrame expresses a canonical-frame center point as integer
// percentages of the window extent, clamped to 0..100.
func PercentOfFrame(center models.Point, frame models.Rect) (int, int) {
	x := clampPct(roundInt(100 * (center.X - frame.Origin.X) / frame.Size.Width))
	y := clampPct(roundInt(100 * (center.Y - frame.Origin.Y) / frame.Size.Height))
	return x, y
}

// PixelFromPercent maps an encoded percentage pair back to canonical pixels.
// Re-encoding the returned point yields the same percentages: the addressing
// is stable under one round trip.
func PixelFromPercent(xPct, yPct int, frame models.Rect) models.Point {
	return models.Point{
		X: frame.Origin.X + float64(xPct)/100*frame.Size.Width,
		Y: frame.Origin.Y + float64(yPct)/100*frame.Size.Height,
	}
}

// canonicalize copies and orders the element list: confidence descending,
// then reading order, then ID as the final tie-break.
func canonicalize(elements []models.UIElement) []models.UIElement {
	sorted := make([]models.UIElement, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Confidence != sorted[b].Confidence {
			return sorted[a].Confidence > sorted[b].Confidence
		}
		if sorted[a].Position.Y != sorted[b].Position.Y {
			return sorted[a].Position.Y < sorted[b].Position.Y
		}
		if sorted[a].Position.X != sorted[b].Position.X {
			return sorted[a].Position.X < sorted[b].Position.X
		}
		return sorted[a].ID < sorted[b].ID
	})
	return sorted
}

func isMenuType(typeTag string) bool {
	return typeTag == models.MenuTypeApp || typeTag == models.MenuTypeSystem
}

func displayText(elem models.UIElement) string {
	if elem.VisualText != "" {
		return elem.VisualText
	}
	if elem.Accessibility != nil {
		if elem.Accessibility.Title != "" {
			return elem.Accessibility.Title
		}
		return elem.Accessibility.Description
	}
	return ""
}

// isGenericButton drops buttons with no meaningful text at encode time,
// duplicating part of the quality filter on purpose as defense in depth.
func isGenericButton(elem models.UIElement, text string) bool {
	if !elem.IsClickable && !strings.Contains(strings.ToLower(elem.Type), "button") {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	switch lower {
	case "", "button", "click", "element", "ui", "icon", "no text":
		return true
	}
	return false
}

// abbrevByRole maps canonical role vocabulary to dense codes.
var abbrevByRole = map[string]string{
	"button":       "B",
	"menu-item":    "MI",
	"popup":        "PU",
	"text-field":   "TF",
	"text-area":    "TA",
	"search-field": "SF",
	"checkbox":     "CB",
	"radio":        "RB",
	"slider":       "SD",
	"progress":     "PG",
	"row":          "RW",
	"cell":         "CL",
	"scroll-area":  "SA",
	"static-text":  "ST",
	"link":         "LK",
}

var abbrevByShape = map[string]string{
	string(models.ShapeRectangle):        "SR",
	string(models.ShapeCircle):           "SC",
	string(models.ShapeRoundedRectangle): "SRR",
	string(models.ShapeIrregular):        "SI",
	string(models.ShapeLine):             "SL",
}

// typeAbbrev maps an element type tag to its line-format code. OCR-confirmed
// accessibility types carry a lowercase "t" suffix. Anything that cannot be
// rendered safely collapses to the fallback abbreviation.
func typeAbbrev(typeTag string) string {
	switch typeTag {
	case models.TypeTextContent:
		return "T"
	case models.MenuTypeApp:
		return "AM"
	case models.MenuTypeSystem:
		return "SM"
	}

	if rest, ok := strings.CutPrefix(typeTag, models.ShapeTypePrefix); ok {
		if code, ok := abbrevByShape[rest]; ok {
			return code
		}
		return fallbackAbbrev
	}

	base, hadOCR := strings.CutSuffix(typeTag, "+OCR")
	code := roleCode(base)
	if code == "" {
		return fallbackAbbrev
	}
	if hadOCR {
		code += "t"
	}
	return code
}

func roleCode(role string) string {
	canon := kebabRole(role)
	if code, ok := abbrevByRole[canon]; ok {
		return code
	}
	// Initials of the kebab words, letters only.
	var b strings.Builder
	for _, part := range strings.Split(canon, "-") {
		for _, r := range part {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				b.WriteRune(r - 'a' + 'A')
			}
			break
		}
	}
	return b.String()
}

// kebabRole lowers a platform role tag ("AXMenuItem") into kebab case
// ("menu-item"), mirroring the fusion engine's canonicalization.
func kebabRole(role string) string {
	role = strings.TrimPrefix(role, "AX")
	var b strings.Builder
	for i, r := range role {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	tag := b.String()
	switch tag {
	case "pop-up-button", "pop-up", "popup-button":
		return "popup"
	case "check-box":
		return "checkbox"
	case "radio-button":
		return "radio"
	case "progress-indicator":
		return "progress"
	}
	return tag
}

// sanitizeText strips the characters the line format reserves. Encoding
// must never fail because of element content; broken text degrades to a
// cleaned version, or the element is dropped by the generic-button rule.
func sanitizeText(text string) string {
	replacer := strings.NewReplacer(
		"|", " ", "@", " ", ":", " ", ";", " ",
		"[", " ", "]", " ", "\n", " ", "\r", " ", "\t", " ",
	)
	cleaned := strings.Join(strings.Fields(replacer.Replace(text)), " ")
	runes := []rune(cleaned)
	if len(runes) > maxTextRunes {
		cleaned = string(runes[:maxTextRunes])
	}
	return cleaned
}

// sanitizeHeader is looser than sanitizeText: header fields sit between
// their own pipes, so only the band delimiters are reserved there.
func sanitizeHeader(text string) string {
	replacer := strings.NewReplacer(
		"|", " ", "[", " ", "]", " ", "\n", " ", "\r", " ", "\t", " ",
	)
	return strings.Join(strings.Fields(replacer.Replace(text)), " ")
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func clampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
