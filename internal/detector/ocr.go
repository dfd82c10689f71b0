package detector

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"

	"go-screen-perception/internal/errors"
	"go-screen-perception/internal/logger"
	"go-screen-perception/pkg/models"
)

// TesseractExtractor recognizes text with the Tesseract engine at word
// granularity. Boxes are reported in the engine's native convention and
// converted here to the pipeline's pre-normalization form: bottom-left
// origin, normalized to the screenshot extent.
type TesseractExtractor struct {
	language string
	log      *logrus.Entry
}

// NewTesseractExtractor creates an extractor with a default language that
// per-pass options may override.
func NewTesseractExtractor(language string) *TesseractExtractor {
	if language == "" {
		language = "eng"
	}
	return &TesseractExtractor{
		language: language,
		log:      logger.WithField("component", "ocr"),
	}
}

// ExtractText runs word-level OCR over the snapshot. Accurate mode uses full
// automatic page segmentation; the default sparse mode is faster on UI
// screenshots, where text sits in short isolated runs.
func (t *TesseractExtractor) ExtractText(ctx context.Context, snap *Snapshot, opts DetectOptions) ([]models.OCRObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if snap == nil || len(snap.Raw) == 0 {
		return nil, errors.NewValidationError("ocr requires screenshot bytes", nil)
	}

	client := gosseract.NewClient()
	defer client.Close()

	language := opts.OCRLanguage
	if language == "" {
		language = t.language
	}
	if err := client.SetLanguage(language); err != nil {
		return nil, errors.NewDetectionError("failed to set ocr language", err)
	}

	mode := gosseract.PSM_SPARSE_TEXT
	if opts.AccurateOCR {
		mode = gosseract.PSM_AUTO
	}
	if err := client.SetPageSegMode(mode); err != nil {
		return nil, errors.NewDetectionError("failed to set page segmentation mode", err)
	}

	if err := client.SetImageFromBytes(snap.Raw); err != nil {
		return nil, errors.NewDetectionError("failed to load screenshot into ocr engine", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, errors.NewDetectionError("ocr bounding box extraction failed", err)
	}

	imgBounds := snap.Image.Bounds()
	imgW := float64(imgBounds.Dx())
	imgH := float64(imgBounds.Dy())
	if imgW <= 0 || imgH <= 0 {
		return nil, errors.NewValidationError("screenshot has a degenerate extent", nil)
	}

	observations := make([]models.OCRObservation, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		confidence := box.Confidence / 100.0
		if confidence < opts.MinWordConfidence {
			continue
		}
		observations = append(observations, models.OCRObservation{
			Text:       word,
			Confidence: confidence,
			Box: models.NewRect(
				float64(box.Box.Min.X)/imgW,
				// Bottom-left origin: distance from the image bottom to the
				// box bottom, as a fraction of the image height.
				1.0-float64(box.Box.Max.Y)/imgH,
				float64(box.Box.Dx())/imgW,
				float64(box.Box.Dy())/imgH,
			),
		})
	}

	t.log.WithFields(logrus.Fields{
		"words":    len(observations),
		"accurate": opts.AccurateOCR,
		"language": language,
	}).Debug("text extraction complete")

	return observations, nil
}
