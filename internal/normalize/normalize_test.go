package normalize

import (
	"math"
	"testing"

	"go-screen-perception/pkg/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCorrectOCRBox(t *testing.T) {
	n := New(models.NewRect(0, 0, 1000, 800))

	// A normalized bottom-left box (0.4, 0.2, 0.1, 0.05) in a 1000x800
	// window lands at canonical (400, 600) with a 100x40 extent.
	got := n.CorrectOCRBox(models.NewRect(0.4, 0.2, 0.1, 0.05))

	if !almostEqual(got.Origin.X, 400) || !almostEqual(got.Origin.Y, 600) {
		t.Errorf("expected origin (400,600), got (%g,%g)", got.Origin.X, got.Origin.Y)
	}
	if !almostEqual(got.Size.Width, 100) || !almostEqual(got.Size.Height, 40) {
		t.Errorf("expected size 100x40, got %gx%g", got.Size.Width, got.Size.Height)
	}
}

func TestCorrectOCRBox_OffsetWindow(t *testing.T) {
	n := New(models.NewRect(200, 100, 500, 400))

	got := n.CorrectOCRBox(models.NewRect(0, 0, 1, 1))

	if !almostEqual(got.Origin.X, 200) || !almostEqual(got.Origin.Y, 100) {
		t.Errorf("full-window box should land at the window origin, got (%g,%g)",
			got.Origin.X, got.Origin.Y)
	}
	if !almostEqual(got.Size.Width, 500) || !almostEqual(got.Size.Height, 400) {
		t.Errorf("full-window box should span the window, got %gx%g",
			got.Size.Width, got.Size.Height)
	}
}

func TestOCRBoxRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		frame models.Rect
		box   models.Rect
	}{
		{"origin window", models.NewRect(0, 0, 1000, 800), models.NewRect(0.4, 0.05, 0.1, 0.05)},
		{"offset window", models.NewRect(123, 456, 640, 480), models.NewRect(0.25, 0.5, 0.3, 0.2)},
		{"thin box", models.NewRect(0, 0, 1920, 1080), models.NewRect(0.9, 0.01, 0.05, 0.01)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(tt.frame)
			corrected := n.CorrectOCRBox(tt.box)
			back := n.UncorrectOCRBox(corrected)

			if !almostEqual(back.Origin.X, tt.box.Origin.X) ||
				!almostEqual(back.Origin.Y, tt.box.Origin.Y) ||
				!almostEqual(back.Size.Width, tt.box.Size.Width) ||
				!almostEqual(back.Size.Height, tt.box.Size.Height) {
				t.Errorf("round trip changed the box: %+v -> %+v", tt.box, back)
			}
		})
	}
}

func TestClampPoint(t *testing.T) {
	n := New(models.NewRect(0, 0, 1000, 800))

	tests := []struct {
		name string
		in   models.Point
		want models.Point
	}{
		{"inside unchanged", models.Point{X: 500, Y: 400}, models.Point{X: 500, Y: 400}},
		{"left of window", models.Point{X: -5, Y: 400}, models.Point{X: 0, Y: 400}},
		{"below window", models.Point{X: 500, Y: 803}, models.Point{X: 500, Y: 800}},
		{"both out", models.Point{X: 1200, Y: -10}, models.Point{X: 1000, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.ClampPoint(tt.in)
			if got != tt.want {
				t.Errorf("ClampPoint(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidPoint(t *testing.T) {
	n := New(models.NewRect(0, 0, 1000, 800))

	if !n.IsValidPoint(models.Point{X: 0, Y: 0}) {
		t.Error("window origin should be valid")
	}
	if n.IsValidPoint(models.Point{X: 1001, Y: 10}) {
		t.Error("point right of window should be invalid")
	}
	if n.IsValidPoint(models.Point{X: math.NaN(), Y: 10}) {
		t.Error("NaN point should be invalid")
	}
}

func TestBundle_MalformedObservations(t *testing.T) {
	n := New(models.NewRect(0, 0, 1000, 800))
	nan := math.NaN()

	bundle := &models.DetectionBundle{
		Accessibility: []models.AccessibilityObservation{
			{Role: "AXButton", Position: &models.Point{X: nan, Y: 10}},
			{Role: "AXButton", Position: &models.Point{X: 1500, Y: 10}},
		},
		OCR: []models.OCRObservation{
			{Text: "ok", Confidence: 0.9, Box: models.NewRect(nan, 0.1, 0.1, 0.1)},
			{Text: "kept", Confidence: 0.9, Box: models.NewRect(0.1, 0.1, 0.1, 0.1)},
		},
		Shapes: []models.ShapeCandidate{
			{Bounds: models.NewRect(0, 0, 0, 0), Category: models.ShapeRectangle},
			{Bounds: models.NewRect(10, 10, 50, 20), Category: models.ShapeRectangle},
		},
	}

	out := n.Bundle(bundle)

	// NaN accessibility position is stripped, the record itself retained.
	if len(out.Accessibility) != 2 {
		t.Fatalf("expected both accessibility records retained, got %d", len(out.Accessibility))
	}
	if out.Accessibility[0].Position != nil {
		t.Error("NaN position should have been dropped from spatial matching")
	}
	// Out-of-window position is clamped, never dropped.
	if out.Accessibility[1].Position == nil || out.Accessibility[1].Position.X != 1000 {
		t.Errorf("expected clamped position x=1000, got %+v", out.Accessibility[1].Position)
	}

	if len(out.OCR) != 1 || out.OCR[0].Text != "kept" {
		t.Fatalf("expected the single well-formed OCR record, got %+v", out.OCR)
	}
	if len(out.Shapes) != 1 {
		t.Fatalf("expected degenerate shape dropped, got %d shapes", len(out.Shapes))
	}
}

func TestBundle_EmptySources(t *testing.T) {
	n := New(models.NewRect(0, 0, 1000, 800))
	out := n.Bundle(&models.DetectionBundle{})

	if len(out.Accessibility) != 0 || len(out.OCR) != 0 || len(out.Shapes) != 0 {
		t.Error("empty bundle should normalize to an empty bundle")
	}
}
