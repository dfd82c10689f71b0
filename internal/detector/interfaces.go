// Package detector holds the four observation sources a perception pass
// fans out to: the accessibility tree walker, the text extractor, the shape
// detector, and the menu-bar scanner. Each source is an interface so the
// coordinator can be exercised with stubs and the factory can select
// implementations at startup.
package detector

import (
	"context"
	"image"

	"go-screen-perception/pkg/models"
)

// Snapshot is the per-pass input shared by the image-driven detectors. Raw
// holds the original encoded bytes (the OCR engine consumes those directly),
// Image the decoded pixels, and Frame the window's canonical placement.
type Snapshot struct {
	Image   image.Image
	Raw     []byte
	Frame   models.Rect
	AppName string
}

// AccessibilityScanner walks the platform accessibility tree.
type AccessibilityScanner interface {
	Scan(ctx context.Context) ([]models.AccessibilityObservation, error)
}

// TextExtractor recognizes text in a snapshot. The returned boxes use the
// extractor's native convention: bottom-left origin, normalized to the
// screenshot extent. The normalizer converts them to the canonical frame.
type TextExtractor interface {
	ExtractText(ctx context.Context, snap *Snapshot, opts DetectOptions) ([]models.OCRObservation, error)
}

// ShapeDetector finds geometric element candidates in a snapshot. Returned
// bounds are already in the canonical frame.
type ShapeDetector interface {
	DetectShapes(ctx context.Context, snap *Snapshot, opts DetectOptions) ([]models.ShapeCandidate, error)
}

// MenuScanner reports the menu-bar entries of the frontmost application.
type MenuScanner interface {
	ScanMenuBar(ctx context.Context) ([]models.MenuBarItem, error)
}
