package fusion

import (
	"reflect"
	"strings"
	"testing"

	"go-screen-perception/pkg/models"
)

func pt(x, y float64) *models.Point      { return &models.Point{X: x, Y: y} }
func sz(w, h float64) *models.Size       { return &models.Size{Width: w, Height: h} }
func word(text string, conf, x, y, w, h float64) models.OCRObservation {
	return models.OCRObservation{Text: text, Confidence: conf, Box: models.NewRect(x, y, w, h)}
}

func TestFuse_SubmitButtonScenario(t *testing.T) {
	// One OCR fragment whose corrected box sits at (400,600) and one
	// accessibility button reported at (410,595): a single fused element,
	// OCR-positioned, role-typed, clickable, high confidence.
	engine := NewEngine(DefaultParams())

	acc := []models.AccessibilityObservation{
		{Role: "AXButton", Enabled: true, Position: pt(410, 595), Size: sz(100, 40)},
	}
	ocr := []models.OCRObservation{word("Submit", 0.8, 400, 600, 100, 40)}

	elements := engine.Fuse(acc, ocr)

	if len(elements) != 1 {
		t.Fatalf("expected exactly one element, got %d", len(elements))
	}
	elem := elements[0]
	if elem.Type != "AXButton+OCR" {
		t.Errorf("expected type AXButton+OCR, got %q", elem.Type)
	}
	if !elem.IsClickable {
		t.Error("fused button must be clickable")
	}
	if elem.Confidence < 0.9 {
		t.Errorf("expected confidence >= 0.9, got %g", elem.Confidence)
	}
	if elem.Position != (models.Point{X: 400, Y: 600}) {
		t.Errorf("position must be the OCR box origin, got %+v", elem.Position)
	}
	if elem.Size != (models.Size{Width: 100, Height: 40}) {
		t.Errorf("size must be the OCR box size, got %+v", elem.Size)
	}
}

func TestFuse_OCROnly(t *testing.T) {
	engine := NewEngine(DefaultParams())

	tests := []struct {
		name          string
		text          string
		wantClickable bool
	}{
		{"prose is not clickable", "please click the link below", false},
		{"action word is clickable", "Submit", true},
		{"punctuated action word", "OK!", true},
		{"action word inside prose stays text", "we will continue tomorrow", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elements := engine.Fuse(nil, []models.OCRObservation{word(tt.text, 0.9, 10, 10, 80, 20)})
			if len(elements) != 1 {
				t.Fatalf("expected one element, got %d", len(elements))
			}
			if elements[0].Type != models.TypeTextContent {
				t.Errorf("expected TextContent, got %q", elements[0].Type)
			}
			if elements[0].IsClickable != tt.wantClickable {
				t.Errorf("clickable = %v, want %v", elements[0].IsClickable, tt.wantClickable)
			}
		})
	}
}

func TestFuse_EmptyInputsAreValid(t *testing.T) {
	engine := NewEngine(DefaultParams())
	if got := engine.Fuse(nil, nil); len(got) != 0 {
		t.Errorf("fusing nothing should produce nothing, got %d elements", len(got))
	}
}

func TestFuse_Deterministic(t *testing.T) {
	engine := NewEngine(DefaultParams())

	acc := []models.AccessibilityObservation{
		{Role: "AXButton", Enabled: true, Position: pt(100, 100), Size: sz(80, 30)},
		{Role: "AXCheckBox", Enabled: true, Position: pt(300, 200), Size: sz(20, 20)},
		{Role: "AXStaticText", Position: pt(500, 300)},
	}
	ocr := []models.OCRObservation{
		word("Save", 0.85, 102, 101, 60, 24),
		word("Remember me", 0.7, 305, 203, 120, 18),
		word("Welcome back", 0.92, 500, 50, 150, 22),
	}

	first := engine.Fuse(acc, ocr)
	second := engine.Fuse(acc, ocr)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated fusion of identical inputs must produce identical elements")
	}
}

func TestFuse_CertainMatchShortCircuits(t *testing.T) {
	engine := NewEngine(DefaultParams())

	// The first candidate is within the certain-match distance; the scan
	// must stop there even though a closer candidate exists later.
	acc := []models.AccessibilityObservation{
		{Role: "AXButton", Enabled: true, Position: pt(103, 100), Size: sz(50, 20)},
		{Role: "AXMenuItem", Enabled: true, Position: pt(101, 100), Size: sz(50, 20)},
	}
	ocr := []models.OCRObservation{word("Open", 0.9, 100, 100, 50, 20)}

	elements := engine.Fuse(acc, ocr)
	if len(elements) != 1 {
		t.Fatalf("expected one fused element, got %d", len(elements))
	}
	if elements[0].Type != "AXButton+OCR" {
		t.Errorf("certain match should take the first in-range candidate, got %q", elements[0].Type)
	}
}

func TestFuse_ConsumedAccessibilityNotReused(t *testing.T) {
	engine := NewEngine(DefaultParams())

	acc := []models.AccessibilityObservation{
		{Role: "AXButton", Enabled: true, Position: pt(100, 100), Size: sz(60, 24)},
	}
	// Both words land within range of the single accessibility node; only
	// the first (higher confidence) consumes it.
	ocr := []models.OCRObservation{
		word("Save", 0.9, 101, 101, 60, 24),
		word("Saue", 0.4, 103, 99, 60, 24),
	}

	elements := engine.Fuse(acc, ocr)
	if len(elements) != 2 {
		t.Fatalf("expected two elements, got %d", len(elements))
	}

	var fused, plain int
	for _, e := range elements {
		if e.Type == "AXButton+OCR" {
			fused++
		}
		if e.Type == models.TypeTextContent {
			plain++
		}
	}
	if fused != 1 || plain != 1 {
		t.Errorf("expected one fused and one plain element, got fused=%d plain=%d", fused, plain)
	}
}

func TestFuse_MatchBeyondRadiusFallsBack(t *testing.T) {
	engine := NewEngine(DefaultParams())

	acc := []models.AccessibilityObservation{
		{Role: "AXButton", Enabled: true, Position: pt(500, 500), Size: sz(60, 24)},
	}
	ocr := []models.OCRObservation{word("Export", 0.9, 100, 100, 60, 20)}

	elements := engine.Fuse(acc, ocr)

	// The OCR fragment is out of range, so it stays TextContent and the
	// unconsumed button is emitted on its own at the fixed confidence.
	if len(elements) != 2 {
		t.Fatalf("expected two elements, got %d", len(elements))
	}
	var sawButton bool
	for _, e := range elements {
		if e.Type == "AXButton" {
			sawButton = true
			if e.Confidence != 0.7 {
				t.Errorf("accessibility-only confidence must be 0.7, got %g", e.Confidence)
			}
			if !e.IsClickable {
				t.Error("accessibility-only button must be clickable")
			}
		}
	}
	if !sawButton {
		t.Error("expected the unconsumed button to be emitted")
	}
}

func TestFuse_HighValueFiltering(t *testing.T) {
	engine := NewEngine(DefaultParams())

	acc := []models.AccessibilityObservation{
		{Role: "AXStaticText", Position: pt(10, 10)},                                     // not high-value
		{Role: "AXScrollArea", Position: pt(0, 0), Size: sz(500, 400)},                   // large scroll area
		{Role: "AXScrollArea", Position: pt(0, 0), Size: sz(40, 40)},                     // too small
		{Role: "AXRow", Title: "Inbox", Position: pt(20, 50), Size: sz(300, 24)},         // labeled row
		{Role: "AXRow", Position: pt(20, 80), Size: sz(300, 24)},                         // unlabeled row
		{Role: "AXSlider", Position: pt(40, 120), Size: sz(120, 16)},                     // interactive role
	}

	elements := engine.Fuse(acc, nil)

	types := make(map[string]int)
	for _, e := range elements {
		types[e.Type]++
	}
	if types["AXScrollArea"] != 1 {
		t.Errorf("expected exactly the large scroll area, got %d", types["AXScrollArea"])
	}
	if types["AXRow"] != 1 {
		t.Errorf("expected exactly the labeled row, got %d", types["AXRow"])
	}
	if types["AXSlider"] != 1 {
		t.Errorf("expected the slider, got %d", types["AXSlider"])
	}
	if types["AXStaticText"] != 0 {
		t.Error("static text must not survive the high-value pass")
	}
}

func TestFuse_PlaceholderMerge(t *testing.T) {
	engine := NewEngine(DefaultParams())

	acc := []models.AccessibilityObservation{
		{
			Role:        "AXTextField",
			Description: "search box",
			Enabled:     true,
			Focused:     false,
			Position:    pt(100, 100),
			Size:        sz(200, 30),
		},
	}
	// Box center (150, 112) falls inside the field bounds.
	ocr := []models.OCRObservation{word("Search settings", 0.8, 110, 104, 80, 16)}

	elements := engine.Fuse(acc, ocr)

	if len(elements) != 1 {
		t.Fatalf("expected one merged element, got %d", len(elements))
	}
	elem := elements[0]
	if want := "search box,plchldr:Search settings[UNFOCUSED]"; elem.SemanticMeaning != want {
		t.Errorf("semantic = %q, want %q", elem.SemanticMeaning, want)
	}
	if elem.Position != (models.Point{X: 100, Y: 100}) {
		t.Errorf("merged element keeps the field bounds, got %+v", elem.Position)
	}
	if !strings.Contains(elem.Type, "+OCR") {
		t.Errorf("merged element should carry both provenances, got %q", elem.Type)
	}
	if len(elem.Interactions) != 2 {
		t.Errorf("expected click+type interactions, got %v", elem.Interactions)
	}
}

func TestFuse_PlaceholderFocusedTag(t *testing.T) {
	engine := NewEngine(DefaultParams())

	acc := []models.AccessibilityObservation{
		{Role: "AXTextField", Description: "to", Enabled: true, Focused: true,
			Position: pt(0, 0), Size: sz(300, 24)},
	}
	ocr := []models.OCRObservation{word("recipient", 0.9, 10, 4, 60, 14)}

	elements := engine.Fuse(acc, ocr)
	if len(elements) != 1 {
		t.Fatalf("expected one element, got %d", len(elements))
	}
	if !strings.HasSuffix(elements[0].SemanticMeaning, "[FOCUSED]") {
		t.Errorf("expected FOCUSED tag, got %q", elements[0].SemanticMeaning)
	}
}

func TestFuse_GridAndLinearAgree(t *testing.T) {
	// The linear scan and the grid-backed matcher must fuse identically;
	// only the threshold decides which one runs.
	small := DefaultParams()
	small.LinearScanThreshold = 1000 // force linear
	large := DefaultParams()
	large.LinearScanThreshold = 0 // force grid

	var acc []models.AccessibilityObservation
	var ocr []models.OCRObservation
	for i := 0; i < 120; i++ {
		x := float64((i * 83) % 900)
		y := float64((i * 57) % 700)
		acc = append(acc, models.AccessibilityObservation{
			Role: "AXButton", Enabled: true, Position: pt(x, y), Size: sz(40, 20),
		})
		ocr = append(ocr, word("Open", 0.9, x+3, y+2, 40, 20))
	}

	linear := NewEngine(small).Fuse(acc, ocr)
	grid := NewEngine(large).Fuse(acc, ocr)

	if !reflect.DeepEqual(linear, grid) {
		t.Error("grid-backed fusion must match linear-scan fusion")
	}
}

func TestCanonicalRole(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"AXButton", "button"},
		{"AXMenuItem", "menu-item"},
		{"AXTextField", "text-field"},
		{"AXPopUpButton", "popup"},
		{"AXCheckBox", "checkbox"},
		{"AXRadioButton", "radio"},
		{"AXProgressIndicator", "progress"},
		{"AXScrollArea", "scroll-area"},
		{"button", "button"},
		{"menu-item", "menu-item"},
	}
	for _, tt := range tests {
		if got := canonicalRole(tt.in); got != tt.want {
			t.Errorf("canonicalRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
