// Package filter suppresses low-signal noise after visual integration.
// Shape detectors produce many clickable-looking artifacts; a clickable
// element that carries no meaningful text, description, or action hint is
// almost always one of them. This is a heuristic noise filter, not a
// correctness guarantee, and it is idempotent: filtering twice equals
// filtering once.
package filter

import (
	"strings"

	"github.com/sirupsen/logrus"

	"go-screen-perception/internal/logger"
	"go-screen-perception/pkg/models"
)

// genericTexts are display texts that say nothing about what an element does.
var genericTexts = map[string]bool{
	"button": true, "click": true, "element": true,
	"ui": true, "icon": true, "no text": true,
}

// genericLabels are accessibility titles/descriptions with no signal.
var genericLabels = map[string]bool{
	"button": true, "click": true, "element": true,
	"ui": true, "icon": true, "unknown": true, "no text": true,
}

// genericHints are boilerplate action hints the detectors emit when they
// have nothing specific to say.
var genericHints = map[string]bool{
	"clickable element":   true,
	"click button":        true,
	"click element":       true,
	"interactive element": true,
}

// QualityFilter removes clickable elements below the minimum area or without
// any meaningful textual/semantic signal. Non-clickable elements pass
// through untouched.
type QualityFilter struct {
	minArea float64
	log     *logrus.Entry
}

// New creates a quality filter with the given minimum clickable area in
// square pixels.
func New(minArea float64) *QualityFilter {
	return &QualityFilter{
		minArea: minArea,
		log:     logger.WithField("component", "filter"),
	}
}

// Apply returns the elements that survive the filter, preserving order.
func (f *QualityFilter) Apply(elements []models.UIElement) []models.UIElement {
	kept := make([]models.UIElement, 0, len(elements))
	for _, elem := range elements {
		if f.keep(elem) {
			kept = append(kept, elem)
		}
	}
	if dropped := len(elements) - len(kept); dropped > 0 {
		f.log.WithFields(logrus.Fields{
			"in":      len(elements),
			"dropped": dropped,
		}).Debug("quality filter dropped noise elements")
	}
	return kept
}

func (f *QualityFilter) keep(elem models.UIElement) bool {
	// Only clickable or clickable-typed elements are candidates for removal.
	if !elem.IsClickable && !isClickableType(elem.Type) {
		return true
	}
	if elem.Size.Width*elem.Size.Height < f.minArea {
		return false
	}
	return f.hasMeaningfulText(elem) || f.hasMeaningfulLabel(elem) || f.hasMeaningfulHint(elem)
}

func (f *QualityFilter) hasMeaningfulText(elem models.UIElement) bool {
	text := strings.ToLower(strings.TrimSpace(elem.VisualText))
	return len(text) >= 2 && !genericTexts[text]
}

func (f *QualityFilter) hasMeaningfulLabel(elem models.UIElement) bool {
	if elem.Accessibility == nil {
		return false
	}
	for _, label := range []string{elem.Accessibility.Description, elem.Accessibility.Title} {
		label = strings.ToLower(strings.TrimSpace(label))
		if len(label) > 2 && !genericLabels[label] {
			return true
		}
	}
	return false
}

func (f *QualityFilter) hasMeaningfulHint(elem models.UIElement) bool {
	hint := strings.ToLower(strings.TrimSpace(elem.ActionHint))
	return len(hint) > 10 && !genericHints[hint]
}

// isClickableType catches elements whose type tag marks them as a control
// even when the clickable flag is off.
func isClickableType(typeTag string) bool {
	return strings.Contains(strings.ToLower(typeTag), "button")
}
