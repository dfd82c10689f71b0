// Package visual merges shape-detector candidates into the fused element
// list. A shape that substantially overlaps an existing element enhances that
// element in place; everything else becomes a standalone element. The
// algorithm is greedy and first-match-wins: candidates are processed in
// descending confidence order and each integrates against at most one
// existing element.
package visual

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/arbovm/levenshtein"
	"github.com/sirupsen/logrus"

	"go-screen-perception/internal/logger"
	"go-screen-perception/pkg/models"
)

// Params are the tuned integration thresholds.
type Params struct {
	// OverlapThreshold is the intersection/shapeArea fraction above which a
	// shape enhances an existing element instead of becoming a new one.
	OverlapThreshold float64

	// TextAttachOverlap and TextAttachMinConfidence gate which OCR fragments
	// are attached to an enhanced element that lacked visible text.
	TextAttachOverlap       float64
	TextAttachMinConfidence float64
}

// DefaultParams returns the tuned defaults.
func DefaultParams() Params {
	return Params{
		OverlapThreshold:        0.30,
		TextAttachOverlap:       0.20,
		TextAttachMinConfidence: 0.5,
	}
}

// Integrator deduplicates shape candidates against fused elements.
type Integrator struct {
	params Params
	log    *logrus.Entry
}

// NewIntegrator creates an integrator with the given parameters.
func NewIntegrator(params Params) *Integrator {
	return &Integrator{
		params: params,
		log:    logger.WithField("component", "visual"),
	}
}

// Integrate folds shape candidates into the element list. OCR observations
// must be in the canonical frame; they supply text for enhanced elements
// that have none. The input slice is not mutated; the returned slice is a
// new list in which enhanced elements keep their original identifiers.
func (it *Integrator) Integrate(elements []models.UIElement, shapes []models.ShapeCandidate, ocr []models.OCRObservation) []models.UIElement {
	out := make([]models.UIElement, len(elements))
	copy(out, elements)

	sorted := sortShapes(shapes)
	nextID := idAllocator("sh")
	inserted := 0

	for _, shape := range sorted {
		shapeArea := shape.Bounds.Area()
		if shapeArea <= 0 {
			continue
		}

		// Greedy: the first element carrying the maximum overlap wins.
		best := -1
		bestOverlap := 0.0
		for i := range out {
			overlap := shape.Bounds.Intersection(out[i].Bounds()) / shapeArea
			if overlap > bestOverlap {
				best, bestOverlap = i, overlap
			}
		}

		if best >= 0 && bestOverlap > it.params.OverlapThreshold {
			out[best] = it.enhance(out[best], shape, ocr)
		} else {
			out = append(out, it.standalone(nextID(), shape, ocr))
			inserted++
		}
	}

	it.log.WithFields(logrus.Fields{
		"shapes":   len(shapes),
		"inserted": inserted,
		"enhanced": len(shapes) - inserted,
	}).Debug("visual integration complete")

	return out
}

// enhance returns a copy of the element enriched by the shape, carrying the
// same identifier. The operation is idempotent for a given shape: repeating
// it does not grow the semantic text or flip any flag back.
func (it *Integrator) enhance(elem models.UIElement, shape models.ShapeCandidate, ocr []models.OCRObservation) models.UIElement {
	elem.IsClickable = elem.IsClickable || shapeImpliesInteractive(shape)
	elem.Confidence = math.Max(elem.Confidence, shape.Confidence)

	appearance := fmt.Sprintf("appears-as:%s/%s", shape.Role, shape.Interaction)
	if !strings.Contains(elem.SemanticMeaning, appearance) {
		elem.SemanticMeaning = join(", ", elem.SemanticMeaning, appearance)
	}
	hint := shapeHint(shape)
	if hint != "" && !strings.Contains(elem.ActionHint, hint) {
		elem.ActionHint = join("; ", elem.ActionHint, hint)
	}

	if elem.VisualText == "" {
		if text := it.textInside(shape.Bounds, ocr); text != "" {
			elem.VisualText = text
		}
	}
	if elem.IsClickable && !contains(elem.Interactions, "click") {
		elem.Interactions = append(elem.Interactions, "click")
	}
	return elem
}

// standalone creates a new element from an unmatched shape candidate.
func (it *Integrator) standalone(id string, shape models.ShapeCandidate, ocr []models.OCRObservation) models.UIElement {
	clickable := shapeImpliesInteractive(shape)
	elem := models.UIElement{
		ID:              id,
		Type:            models.ShapeTypePrefix + string(shape.Category),
		Position:        shape.Bounds.Origin,
		Size:            shape.Bounds.Size,
		IsClickable:     clickable,
		Confidence:      shape.Confidence,
		SemanticMeaning: fmt.Sprintf("%s shaped as %s", shape.Role, shape.Category),
		ActionHint:      shapeHint(shape),
		Interactions:    []string{"read"},
		VisualText:      it.textInside(shape.Bounds, ocr),
	}
	if clickable {
		elem.Interactions = []string{"click"}
	}
	return elem
}

// textInside collects OCR fragments whose boxes overlap the shape bounds
// beyond the attach threshold with sufficient confidence, deduplicates
// near-identical fragments, and joins them in reading order.
func (it *Integrator) textInside(bounds models.Rect, ocr []models.OCRObservation) string {
	var picked []models.OCRObservation
	for _, w := range ocr {
		if w.Confidence <= it.params.TextAttachMinConfidence {
			continue
		}
		if w.Box.OverlapRatio(bounds) <= it.params.TextAttachOverlap {
			continue
		}
		picked = append(picked, w)
	}
	if len(picked) == 0 {
		return ""
	}

	sort.SliceStable(picked, func(a, b int) bool {
		if picked[a].Box.Origin.Y != picked[b].Box.Origin.Y {
			return picked[a].Box.Origin.Y < picked[b].Box.Origin.Y
		}
		return picked[a].Box.Origin.X < picked[b].Box.Origin.X
	})

	var parts []string
	for _, w := range picked {
		if !isNearDuplicate(parts, w.Text) {
			parts = append(parts, w.Text)
		}
	}
	return strings.Join(parts, " ")
}

// isNearDuplicate reports whether the text is already present, allowing a
// small edit distance so the extractor's character-level jitter ("Submit"
// vs "Subrnit") does not duplicate fragments.
func isNearDuplicate(parts []string, text string) bool {
	for _, p := range parts {
		if strings.EqualFold(p, text) {
			return true
		}
		if len(text) > 4 && levenshtein.Distance(strings.ToLower(p), strings.ToLower(text)) <= 2 {
			return true
		}
	}
	return false
}

// shapeImpliesInteractive reports whether the detector's inference marks the
// shape as an interactive control.
func shapeImpliesInteractive(shape models.ShapeCandidate) bool {
	switch shape.Role {
	case models.RoleButton, models.RoleIcon, models.RoleInputField:
		return true
	}
	switch shape.Interaction {
	case models.InteractButton, models.InteractIconButton,
		models.InteractCloseButton, models.InteractToggle, models.InteractTextInput:
		return true
	}
	return false
}

func shapeHint(shape models.ShapeCandidate) string {
	switch shape.Interaction {
	case models.InteractTextInput:
		return "accepts text input"
	case models.InteractCloseButton:
		return "closes the surrounding container"
	case models.InteractToggle:
		return "toggles a setting"
	case models.InteractButton, models.InteractIconButton:
		return "triggers an action when clicked"
	default:
		return ""
	}
}

func sortShapes(shapes []models.ShapeCandidate) []models.ShapeCandidate {
	sorted := make([]models.ShapeCandidate, len(shapes))
	copy(sorted, shapes)
	// Explicit tie-break: confidence descending, then reading order.
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Confidence != sorted[b].Confidence {
			return sorted[a].Confidence > sorted[b].Confidence
		}
		if sorted[a].Bounds.Origin.Y != sorted[b].Bounds.Origin.Y {
			return sorted[a].Bounds.Origin.Y < sorted[b].Bounds.Origin.Y
		}
		return sorted[a].Bounds.Origin.X < sorted[b].Bounds.Origin.X
	})
	return sorted
}

func idAllocator(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
}

func join(sep string, values ...string) string {
	var parts []string
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
