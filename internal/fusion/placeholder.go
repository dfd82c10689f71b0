package fusion

import (
	"fmt"
	"math"

	"go-screen-perception/pkg/models"
)

// mergePlaceholders handles the text-field special case ahead of generic
// matching: an OCR fragment whose center falls inside a text/search field's
// bounds is almost always the field's placeholder or current content, not an
// independent element. The field and the fragment merge into a single
// element and both are excluded from the generic steps.
func (e *Engine) mergePlaceholders(
	acc []models.AccessibilityObservation,
	ocr []models.OCRObservation,
	accConsumed, ocrConsumed []bool,
	nextID func() string,
) []models.UIElement {
	var merged []models.UIElement

	for i := range acc {
		field := &acc[i]
		if accConsumed[i] || !textFieldRoles[canonicalRole(field.Role)] {
			continue
		}
		if field.Position == nil || field.Size == nil {
			continue
		}
		bounds := models.Rect{Origin: *field.Position, Size: *field.Size}

		for j := range ocr {
			if ocrConsumed[j] || !bounds.Contains(ocr[j].Box.Center()) {
				continue
			}

			accConsumed[i] = true
			ocrConsumed[j] = true
			merged = append(merged, e.placeholderElement(nextID(), field, &ocr[j], bounds))
			break
		}
	}
	return merged
}

func (e *Engine) placeholderElement(id string, field *models.AccessibilityObservation, word *models.OCRObservation, bounds models.Rect) models.UIElement {
	focusTag := "UNFOCUSED"
	if field.Focused {
		focusTag = "FOCUSED"
	}
	description := firstNonEmpty(accessibilityLabel(field), canonicalRole(field.Role))

	confidence := word.Confidence + 0.2
	if field.Enabled {
		confidence += 0.1
	}

	return models.UIElement{
		ID:              id,
		Type:            field.Role + "+OCR",
		Position:        bounds.Origin,
		Size:            bounds.Size,
		IsClickable:     true,
		Confidence:      math.Min(confidence, 1.0),
		SemanticMeaning: fmt.Sprintf("%s,plchldr:%s[%s]", description, word.Text, focusTag),
		VisualText:      word.Text,
		ActionHint:      "focuses the field and accepts text input",
		Interactions:    []string{"click", "type"},
		Accessibility: &models.AccessibilityDetail{
			Role:        field.Role,
			Title:       field.Title,
			Description: field.Description,
			Enabled:     field.Enabled,
			Focused:     field.Focused,
		},
		OCR: &models.OCRDetail{Text: word.Text, Confidence: word.Confidence},
	}
}
