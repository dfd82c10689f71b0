package detector

import (
	"context"

	"go-screen-perception/pkg/models"
)

// StaticAccessibility serves a fixed observation list. Requests carry the
// caller's accessibility dump in the payload; this scanner replays it into
// the pipeline so the coordinator treats payload-fed and live sources alike.
type StaticAccessibility struct {
	observations []models.AccessibilityObservation
}

// NewStaticAccessibility wraps a payload-provided observation list.
func NewStaticAccessibility(observations []models.AccessibilityObservation) *StaticAccessibility {
	return &StaticAccessibility{observations: observations}
}

// Scan returns a copy of the wrapped observations.
func (s *StaticAccessibility) Scan(ctx context.Context) ([]models.AccessibilityObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.AccessibilityObservation, len(s.observations))
	copy(out, s.observations)
	return out, nil
}

// StaticMenu serves a fixed menu-bar item list from the request payload.
type StaticMenu struct {
	items []models.MenuBarItem
}

// NewStaticMenu wraps a payload-provided menu item list.
func NewStaticMenu(items []models.MenuBarItem) *StaticMenu {
	return &StaticMenu{items: items}
}

// ScanMenuBar returns a copy of the wrapped items.
func (s *StaticMenu) ScanMenuBar(ctx context.Context) ([]models.MenuBarItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.MenuBarItem, len(s.items))
	copy(out, s.items)
	return out, nil
}
