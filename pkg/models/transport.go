package models

// PerceiveRequest is the body of POST /v1/perceive. The screenshot arrives
// either by URL or inline as base64; accessibility observations and menu-bar
// items are captured by the platform-side agent and shipped alongside it.
type PerceiveRequest struct {
	ScreenshotURL string `json:"screenshot_url,omitempty"`
	ScreenshotB64 string `json:"screenshot_b64,omitempty"`

	AppName     string `json:"app_name" binding:"required"`
	WindowFrame Rect   `json:"window_frame"`

	Accessibility []AccessibilityObservation `json:"accessibility,omitempty"`
	MenuItems     []MenuBarItem              `json:"menu_items,omitempty"`

	Options *DetectOptionsRequest `json:"options,omitempty"`
}

// DetectOptionsRequest selects a detection preset and per-pass overrides.
type DetectOptionsRequest struct {
	// Mode is one of "fast", "default", "accurate".
	Mode        string `json:"mode,omitempty"`
	AccurateOCR *bool  `json:"accurate_ocr,omitempty"`
	SkipShapes  *bool  `json:"skip_shapes,omitempty"`
	SkipMenu    *bool  `json:"skip_menu,omitempty"`
	Debug       *bool  `json:"debug,omitempty"`
}

// PerceptionResponse is the structured output of one detection pass: the
// fused element list plus the compressed encoding consumed by the agent.
type PerceptionResponse struct {
	PassID            string          `json:"pass_id"`
	AppName           string          `json:"app_name"`
	Timestamp         string          `json:"timestamp"`
	ProcessingTimeSec float64         `json:"processing_time_sec"`
	WindowFrame       Rect            `json:"window_frame"`
	Elements          []UIElement     `json:"elements"`
	Encoded           string          `json:"encoded"`
	Timings           DetectorTimings `json:"timings"`
	ElementCount      int             `json:"element_count"`
}

// OCRValidateRequest is the body of POST /v1/ocr/validate, used to calibrate
// the text extractor against a screenshot with known content.
type OCRValidateRequest struct {
	ScreenshotURL string `json:"screenshot_url,omitempty"`
	ScreenshotB64 string `json:"screenshot_b64,omitempty"`
	ExpectedText  string `json:"expected_text" binding:"required"`
	AccurateMode  bool   `json:"accurate_mode,omitempty"`
}

// OCRValidateResponse reports how well the extractor read the screenshot.
type OCRValidateResponse struct {
	ExtractedText string  `json:"extracted_text"`
	ExpectedText  string  `json:"expected_text"`
	WordErrorRate float64 `json:"word_error_rate"`
	MatchScore    float64 `json:"match_score"`
	WordCount     int     `json:"word_count"`
}

// ErrorResponse is the uniform error body returned by the transport layer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
