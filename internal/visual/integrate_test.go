package visual

import (
	"testing"

	"go-screen-perception/pkg/models"
)

func element(id string, x, y, w, h float64) models.UIElement {
	return models.UIElement{
		ID:         id,
		Type:       "AXButton+OCR",
		Position:   models.Point{X: x, Y: y},
		Size:       models.Size{Width: w, Height: h},
		Confidence: 0.8,
	}
}

func shape(x, y, w, h, conf float64) models.ShapeCandidate {
	return models.ShapeCandidate{
		Bounds:      models.NewRect(x, y, w, h),
		Category:    models.ShapeRoundedRectangle,
		Role:        models.RoleButton,
		Interaction: models.InteractButton,
		Confidence:  conf,
		Area:        w * h,
		AspectRatio: w / h,
	}
}

func TestIntegrate_OverlapSplit(t *testing.T) {
	// Spec scenario: one candidate overlapping 40% enhances (count
	// unchanged), one overlapping 10% is appended (count +1).
	it := NewIntegrator(DefaultParams())

	elements := []models.UIElement{element("el-001", 0, 0, 100, 100)}

	big := shape(60, 0, 100, 100, 0.9)   // intersection 40x100 = 40% of shape area
	small := shape(90, 0, 100, 100, 0.6) // intersection 10x100 = 10% of shape area

	out := it.Integrate(elements, []models.ShapeCandidate{big, small}, nil)

	if len(out) != 2 {
		t.Fatalf("expected 2 elements (one enhanced, one inserted), got %d", len(out))
	}
	if out[0].ID != "el-001" {
		t.Error("enhanced element must keep its identifier")
	}
	if out[0].Confidence != 0.9 {
		t.Errorf("enhanced confidence must be max(existing, shape) = 0.9, got %g", out[0].Confidence)
	}
	if !out[0].IsClickable {
		t.Error("button-shaped overlap must OR clickability on")
	}
	if out[1].Type != "Shape_rounded-rectangle" {
		t.Errorf("inserted element type = %q", out[1].Type)
	}
}

func TestIntegrate_Idempotent(t *testing.T) {
	it := NewIntegrator(DefaultParams())

	elements := []models.UIElement{element("el-001", 0, 0, 100, 40)}
	s := shape(5, 5, 80, 30, 0.85)

	once := it.Integrate(elements, []models.ShapeCandidate{s}, nil)
	twice := it.Integrate(once, []models.ShapeCandidate{s}, nil)

	if len(once) != 1 || len(twice) != 1 {
		t.Fatalf("repeated integration must not duplicate: got %d then %d", len(once), len(twice))
	}
	if once[0].SemanticMeaning != twice[0].SemanticMeaning {
		t.Errorf("repeated enhancement must not grow semantics: %q vs %q",
			once[0].SemanticMeaning, twice[0].SemanticMeaning)
	}
	if once[0].ActionHint != twice[0].ActionHint {
		t.Errorf("repeated enhancement must not grow the hint: %q vs %q",
			once[0].ActionHint, twice[0].ActionHint)
	}
}

func TestIntegrate_StandaloneShape(t *testing.T) {
	it := NewIntegrator(DefaultParams())

	out := it.Integrate(nil, []models.ShapeCandidate{shape(10, 10, 60, 24, 0.7)}, nil)

	if len(out) != 1 {
		t.Fatalf("expected one standalone element, got %d", len(out))
	}
	if out[0].Position != (models.Point{X: 10, Y: 10}) {
		t.Errorf("standalone element keeps the shape bounds, got %+v", out[0].Position)
	}
	if !out[0].IsClickable {
		t.Error("button-role shape must be clickable")
	}
}

func TestIntegrate_DecorationNotClickable(t *testing.T) {
	it := NewIntegrator(DefaultParams())

	deco := models.ShapeCandidate{
		Bounds:      models.NewRect(0, 0, 300, 2),
		Category:    models.ShapeLine,
		Role:        models.RoleDecoration,
		Interaction: models.InteractUnknown,
		Confidence:  0.5,
	}
	out := it.Integrate(nil, []models.ShapeCandidate{deco}, nil)
	if len(out) != 1 {
		t.Fatalf("expected one element, got %d", len(out))
	}
	if out[0].IsClickable {
		t.Error("decoration shape must not be clickable")
	}
}

func TestIntegrate_AttachesOCRText(t *testing.T) {
	it := NewIntegrator(DefaultParams())

	elements := []models.UIElement{element("el-001", 0, 0, 120, 40)}
	s := shape(0, 0, 120, 40, 0.9)

	ocr := []models.OCRObservation{
		{Text: "Checkout", Confidence: 0.9, Box: models.NewRect(10, 10, 60, 20)},
		{Text: "Checkout", Confidence: 0.8, Box: models.NewRect(12, 11, 60, 20)}, // duplicate
		{Text: "Checkuot", Confidence: 0.7, Box: models.NewRect(11, 10, 60, 20)}, // near-duplicate
		{Text: "low", Confidence: 0.3, Box: models.NewRect(10, 10, 20, 10)},      // too uncertain
		{Text: "far away", Confidence: 0.9, Box: models.NewRect(500, 500, 60, 20)},
	}

	out := it.Integrate(elements, []models.ShapeCandidate{s}, ocr)

	if len(out) != 1 {
		t.Fatalf("expected one enhanced element, got %d", len(out))
	}
	if out[0].VisualText != "Checkout" {
		t.Errorf("expected deduplicated attached text %q, got %q", "Checkout", out[0].VisualText)
	}
}

func TestIntegrate_TextNotOverwritten(t *testing.T) {
	it := NewIntegrator(DefaultParams())

	elem := element("el-001", 0, 0, 120, 40)
	elem.VisualText = "Existing"

	ocr := []models.OCRObservation{
		{Text: "Other", Confidence: 0.9, Box: models.NewRect(10, 10, 60, 20)},
	}
	out := it.Integrate([]models.UIElement{elem}, []models.ShapeCandidate{shape(0, 0, 120, 40, 0.9)}, ocr)

	if out[0].VisualText != "Existing" {
		t.Errorf("existing text must be preserved, got %q", out[0].VisualText)
	}
}

func TestIntegrate_GreedyFirstMatchOnly(t *testing.T) {
	// A shape overlapping two elements integrates against the one with the
	// larger overlap only.
	it := NewIntegrator(DefaultParams())

	elements := []models.UIElement{
		element("el-001", 0, 0, 100, 100),
		element("el-002", 80, 0, 100, 100),
	}
	s := shape(10, 0, 100, 100, 0.95) // 90% over el-001, 30% over el-002

	out := it.Integrate(elements, []models.ShapeCandidate{s}, nil)
	if len(out) != 2 {
		t.Fatalf("expected no insertion, got %d elements", len(out))
	}
	if out[0].Confidence != 0.95 {
		t.Error("the higher-overlap element should have been enhanced")
	}
	if out[1].Confidence != 0.8 {
		t.Error("the lower-overlap element must remain untouched")
	}
}
