// Package normalize reconciles the three detector coordinate conventions
// into the canonical frame: window-anchored, origin top-left, pixel units.
//
// OCR boxes arrive normalized to the screenshot (0..1 range, origin
// bottom-left) and are corrected here. Accessibility positions arrive in
// absolute screen pixels and are clamped to the window rectangle rather than
// dropped; window managers routinely report frames a few pixels off and the
// accessibility data is too valuable to discard over that.
package normalize

import (
	"go-screen-perception/pkg/models"
)

// Normalizer converts source-convention geometry into the canonical frame
// of one window. Build one per detection pass from the window frame captured
// at the start of the pass.
type Normalizer struct {
	frame models.Rect
}

// New creates a normalizer for the given window frame (origin and size in
// absolute screen pixels).
func New(frame models.Rect) *Normalizer {
	return &Normalizer{frame: frame}
}

// Frame returns the window frame the normalizer was built with.
func (n *Normalizer) Frame() models.Rect { return n.frame }

// CorrectOCRBox converts a bottom-left-origin normalized box into the
// canonical frame:
//
//	x = winX + box.x*winW
//	y = winY + (1 - box.y - box.h)*winH
//
// with width and height scaled by the window extent.
func (n *Normalizer) CorrectOCRBox(box models.Rect) models.Rect {
	return models.NewRect(
		n.frame.Origin.X+box.Origin.X*n.frame.Size.Width,
		n.frame.Origin.Y+(1-box.Origin.Y-box.Size.Height)*n.frame.Size.Height,
		box.Size.Width*n.frame.Size.Width,
		box.Size.Height*n.frame.Size.Height,
	)
}

// UncorrectOCRBox is the exact inverse of CorrectOCRBox; it maps a canonical
// box back into the extractor's normalized bottom-left convention.
func (n *Normalizer) UncorrectOCRBox(box models.Rect) models.Rect {
	w := box.Size.Width / n.frame.Size.Width
	h := box.Size.Height / n.frame.Size.Height
	return models.NewRect(
		(box.Origin.X-n.frame.Origin.X)/n.frame.Size.Width,
		1-h-(box.Origin.Y-n.frame.Origin.Y)/n.frame.Size.Height,
		w,
		h,
	)
}

// IsValidPoint reports whether the point lies inside the window rectangle.
func (n *Normalizer) IsValidPoint(p models.Point) bool {
	return p.IsFinite() && n.frame.Contains(p)
}

// ClampPoint clamps a point to the window rectangle. Invalid points are
// clamped, never dropped.
func (n *Normalizer) ClampPoint(p models.Point) models.Point {
	if p.X < n.frame.Origin.X {
		p.X = n.frame.Origin.X
	} else if p.X > n.frame.MaxX() {
		p.X = n.frame.MaxX()
	}
	if p.Y < n.frame.Origin.Y {
		p.Y = n.frame.Origin.Y
	} else if p.Y > n.frame.MaxY() {
		p.Y = n.frame.MaxY()
	}
	return p
}

// Bundle returns a copy of the detection bundle with every observation in
// the canonical frame.
//
// Malformed geometry is handled per the error taxonomy: an accessibility
// observation with a NaN/Inf position loses the position (dropping it from
// spatial matching) but is retained for fusion bookkeeping; OCR fragments
// and shape candidates with non-finite or degenerate boxes carry no usable
// signal at all and are dropped silently.
func (n *Normalizer) Bundle(bundle *models.DetectionBundle) *models.DetectionBundle {
	out := &models.DetectionBundle{
		Accessibility: make([]models.AccessibilityObservation, 0, len(bundle.Accessibility)),
		OCR:           make([]models.OCRObservation, 0, len(bundle.OCR)),
		Shapes:        make([]models.ShapeCandidate, 0, len(bundle.Shapes)),
		MenuItems:     bundle.MenuItems,
		Timings:       bundle.Timings,
	}

	for _, obs := range bundle.Accessibility {
		if obs.Position != nil {
			if !obs.Position.IsFinite() {
				obs.Position = nil
			} else {
				clamped := n.ClampPoint(*obs.Position)
				obs.Position = &clamped
			}
		}
		if obs.Size != nil && !obs.Size.IsFinite() {
			obs.Size = nil
		}
		out.Accessibility = append(out.Accessibility, obs)
	}

	for _, obs := range bundle.OCR {
		if !obs.Box.IsFinite() || obs.Box.IsDegenerate() {
			continue
		}
		obs.Box = n.CorrectOCRBox(obs.Box)
		out.OCR = append(out.OCR, obs)
	}

	for _, shape := range bundle.Shapes {
		if !shape.Bounds.IsFinite() || shape.Bounds.IsDegenerate() {
			continue
		}
		out.Shapes = append(out.Shapes, shape)
	}

	return out
}
