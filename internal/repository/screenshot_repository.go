package repository

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"go-screen-perception/internal/detector"
	"go-screen-perception/internal/storage"
	"go-screen-perception/pkg/models"
)

// HTTPScreenshotRepository resolves screenshots through an HTTP fetcher,
// with inline base64 bytes taking precedence over a URL when both are set.
type HTTPScreenshotRepository struct {
	fetcher storage.ScreenshotFetcher
}

// NewHTTPScreenshotRepository creates a screenshot repository.
func NewHTTPScreenshotRepository(fetcher storage.ScreenshotFetcher) ScreenshotRepository {
	return &HTTPScreenshotRepository{fetcher: fetcher}
}

// Resolve implements ScreenshotRepository.
func (r *HTTPScreenshotRepository) Resolve(ctx context.Context, req *models.PerceiveRequest) (*detector.Snapshot, error) {
	var (
		img image.Image
		raw []byte
		err error
	)

	switch {
	case req.ScreenshotB64 != "":
		raw, err = base64.StdEncoding.DecodeString(req.ScreenshotB64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadEncoding, err)
		}
		img, _, err = image.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadEncoding, err)
		}
	case req.ScreenshotURL != "":
		img, raw, err = r.fetcher.FetchScreenshot(ctx, req.ScreenshotURL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrNoScreenshot
	}

	frame := req.WindowFrame
	if frame.Size.Width <= 0 || frame.Size.Height <= 0 {
		bounds := img.Bounds()
		frame = models.NewRect(0, 0, float64(bounds.Dx()), float64(bounds.Dy()))
	}

	return &detector.Snapshot{
		Image:   img,
		Raw:     raw,
		Frame:   frame,
		AppName: req.AppName,
	}, nil
}
