package models

// UIElement is the fused, canonical record the rest of the system operates
// on. Position and size are always in the canonical frame and every element
// has a non-degenerate size; the fusion engine and visual integrator enforce
// the invariant before an element enters the list.
//
// Elements are value types. "Replacing in place" during visual integration
// means writing an enhanced copy carrying the same ID back into the slice;
// once the encoder has run, the set is final.
type UIElement struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Position    Point   `json:"position"`
	Size        Size    `json:"size"`
	IsClickable bool    `json:"isClickable"`
	Confidence  float64 `json:"confidence"`

	// SemanticMeaning is a free-text description assembled from the
	// contributing observations.
	SemanticMeaning string `json:"semanticMeaning"`

	// VisualText is the on-screen text, when any source saw one.
	VisualText string `json:"visualText,omitempty"`

	// ActionHint suggests what interacting with the element does.
	ActionHint string `json:"actionHint,omitempty"`

	// Interactions lists the supported interaction verbs ("click", "type", ...).
	Interactions []string `json:"interactions,omitempty"`

	Context *ElementContext `json:"context,omitempty"`

	// Provenance details, present when the corresponding source contributed.
	Accessibility *AccessibilityDetail `json:"accessibility,omitempty"`
	OCR           *OCRDetail           `json:"ocr,omitempty"`
}

// Bounds returns the element's bounding rectangle.
func (e UIElement) Bounds() Rect {
	return Rect{Origin: e.Position, Size: e.Size}
}

// ElementContext carries optional higher-level context about an element.
type ElementContext struct {
	Purpose          string   `json:"purpose,omitempty"`
	Region           string   `json:"region,omitempty"`
	NavigationPath   string   `json:"navigationPath,omitempty"`
	AvailableActions []string `json:"availableActions,omitempty"`
}

// AccessibilityDetail preserves the accessibility node fields that
// contributed to a fused element.
type AccessibilityDetail struct {
	Role        string `json:"role"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Value       string `json:"value,omitempty"`
	Enabled     bool   `json:"enabled"`
	Focused     bool   `json:"focused"`
}

// OCRDetail preserves the OCR fragment that contributed to a fused element.
type OCRDetail struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// TypeTextContent is the type tag for OCR-only elements.
const TypeTextContent = "TextContent"

// ShapeTypePrefix prefixes the type tag of elements created from
// unmatched shape candidates, e.g. "Shape_rectangle".
const ShapeTypePrefix = "Shape_"
