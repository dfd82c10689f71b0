package models

import "time"

// Source identifies which detector produced an observation.
type Source string

const (
	SourceAccessibility Source = "accessibility"
	SourceOCR           Source = "ocr"
	SourceShape         Source = "shape"
)

// AccessibilityObservation is a single node reported by the accessibility
// tree walker. Position and size may be absent; such observations are
// excluded from spatial matching but still participate in consumed/unconsumed
// bookkeeping during fusion.
type AccessibilityObservation struct {
	Role        string   `json:"role"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Value       string   `json:"value,omitempty"`
	Enabled     bool     `json:"enabled"`
	Focused     bool     `json:"focused"`
	Position    *Point   `json:"position,omitempty"`
	Size        *Size    `json:"size,omitempty"`
	ParentID    string   `json:"parent_id,omitempty"`
	ChildIDs    []string `json:"child_ids,omitempty"`
}

// OCRObservation is one recognized text fragment. Before normalization the
// box uses the text extractor's native convention: origin bottom-left,
// coordinates and extents in the 0..1 range relative to the screenshot.
// After normalization the box is in the canonical frame.
type OCRObservation struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Box        Rect    `json:"box"`
}

// ShapeCategory classifies the geometry of a detected shape.
type ShapeCategory string

const (
	ShapeCircle           ShapeCategory = "circle"
	ShapeRectangle        ShapeCategory = "rectangle"
	ShapeRoundedRectangle ShapeCategory = "rounded-rectangle"
	ShapeIrregular        ShapeCategory = "irregular"
	ShapeLine             ShapeCategory = "line"
)

// VisualRole is the UI role inferred for a shape from its geometry and color.
type VisualRole string

const (
	RoleButton     VisualRole = "button"
	RoleIcon       VisualRole = "icon"
	RoleInputField VisualRole = "input-field"
	RoleDecoration VisualRole = "decoration"
	RoleContainer  VisualRole = "container"
	RoleUnknown    VisualRole = "unknown"
)

// InteractionType is the interaction inferred for a shape.
type InteractionType string

const (
	InteractTextInput   InteractionType = "text-input"
	InteractButton      InteractionType = "button"
	InteractIconButton  InteractionType = "icon-button"
	InteractCloseButton InteractionType = "close-button"
	InteractToggle      InteractionType = "toggle"
	InteractUnknown     InteractionType = "unknown"
)

// ShapeCandidate is one geometric shape found by the shape detector, with
// bounds already expressed in the canonical frame.
type ShapeCandidate struct {
	Contour     []Point         `json:"contour,omitempty"`
	Bounds      Rect            `json:"bounds"`
	Category    ShapeCategory   `json:"category"`
	Role        VisualRole      `json:"role"`
	Interaction InteractionType `json:"interaction"`
	Confidence  float64         `json:"confidence"`
	Area        float64         `json:"area"`
	AspectRatio float64         `json:"aspect_ratio"`
}

// MenuBarItem is one entry reported by the menu-bar scanner.
type MenuBarItem struct {
	Title    string `json:"title"`
	Type     string `json:"type"` // appMenu or systemMenu
	Position *Point `json:"position,omitempty"`
	Size     *Size  `json:"size,omitempty"`
}

// Menu band type tags used on fused elements. The encoder keys its banding
// decision on these.
const (
	MenuTypeApp    = "appMenu"
	MenuTypeSystem = "systemMenu"
)

// DetectorTimings records the wall-clock duration of each detector task.
// Each task measures itself; the coordinator only aggregates.
type DetectorTimings struct {
	Accessibility time.Duration `json:"accessibility"`
	OCR           time.Duration `json:"ocr"`
	Shapes        time.Duration `json:"shapes"`
	MenuBar       time.Duration `json:"menu_bar"`

	// TimedOut lists detectors that missed their deadline and contributed
	// an empty observation list instead of stalling the pass.
	TimedOut []string `json:"timed_out,omitempty"`
}

// DetectionBundle is the raw result of one detection pass, assembled by the
// coordinator and consumed by the normalizer and fusion engine. Any of the
// observation slices may be empty; that is a degraded pass, not an error.
type DetectionBundle struct {
	Accessibility []AccessibilityObservation `json:"accessibility"`
	OCR           []OCRObservation           `json:"ocr"`
	Shapes        []ShapeCandidate           `json:"shapes"`
	MenuItems     []MenuBarItem              `json:"menu_items"`
	Timings       DetectorTimings            `json:"timings"`
}
