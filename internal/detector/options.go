package detector

// DetectOptions provides flexible configuration for a detection pass
type DetectOptions struct {
	// OCR options
	AccurateOCR       bool
	OCRLanguage       string
	MinWordConfidence float64

	// Shape detection options
	EdgeThreshold      float64
	MinShapeArea       float64
	MaxShapes          int
	DownscaleWidth     int
	SkipShapeDetection bool

	// Menu options
	SkipMenuScan bool

	// Performance options
	UseWorkerPool bool
	MaxWorkers    int

	// Debug emits per-contour diagnostics to the log
	Debug bool
}

// DefaultOptions returns the balanced defaults used for ordinary passes.
func DefaultOptions() DetectOptions {
	return DetectOptions{
		AccurateOCR:       false,
		OCRLanguage:       "eng",
		MinWordConfidence: 0.0,
		EdgeThreshold:     30.0,
		MinShapeArea:      400.0,
		MaxShapes:         64,
		DownscaleWidth:    1280,
		UseWorkerPool:     true,
		MaxWorkers:        0, // CPU count
	}
}

// FastOptions trades recall for latency: sparse OCR, aggressive downscaling,
// no shape pass.
func FastOptions() DetectOptions {
	opts := DefaultOptions()
	opts.DownscaleWidth = 960
	opts.SkipShapeDetection = true
	return opts
}

// AccurateOptions runs full-page OCR segmentation at native resolution.
func AccurateOptions() DetectOptions {
	opts := DefaultOptions()
	opts.AccurateOCR = true
	opts.DownscaleWidth = 0
	opts.MaxShapes = 128
	return opts
}

// WithLanguage sets the OCR language code.
func (opts DetectOptions) WithLanguage(language string) DetectOptions {
	opts.OCRLanguage = language
	return opts
}

// WithAccurateOCR enables the slower full-segmentation OCR mode.
func (opts DetectOptions) WithAccurateOCR() DetectOptions {
	opts.AccurateOCR = true
	return opts
}

// WithoutShapes disables the shape detection task.
func (opts DetectOptions) WithoutShapes() DetectOptions {
	opts.SkipShapeDetection = true
	return opts
}

// WithoutMenuScan disables the menu-bar task.
func (opts DetectOptions) WithoutMenuScan() DetectOptions {
	opts.SkipMenuScan = true
	return opts
}

// WithWorkers pins the shape analysis worker count.
func (opts DetectOptions) WithWorkers(n int) DetectOptions {
	opts.UseWorkerPool = n != 1
	opts.MaxWorkers = n
	return opts
}
