package validation

import (
	"math"

	apperrors "go-screen-perception/internal/errors"
	"go-screen-perception/pkg/models"
)

// ValidatePerceiveRequest checks the structural validity of a perceive
// request before any detector runs: the screenshot reference, the window
// frame, and the finiteness of payload observations. Positional repair of
// individual observations is the normalizer's job; this only rejects input
// the pipeline cannot make sense of at all.
func ValidatePerceiveRequest(req *models.PerceiveRequest) error {
	if req == nil {
		return apperrors.NewValidationError("request is nil", nil)
	}
	if req.AppName == "" {
		return apperrors.NewValidationError("app_name is required", nil)
	}
	if req.ScreenshotURL == "" && req.ScreenshotB64 == "" {
		return apperrors.NewValidationError("either screenshot_url or screenshot_b64 is required", nil)
	}
	if req.ScreenshotURL != "" {
		if err := NewURLValidator().ValidateScreenshotURL(req.ScreenshotURL); err != nil {
			return err
		}
	}
	if err := validateFrame(req.WindowFrame); err != nil {
		return err
	}
	return nil
}

// validateFrame rejects non-finite or negative-extent frames. A zero frame
// is allowed; the repository substitutes the screenshot extent.
func validateFrame(frame models.Rect) error {
	values := []float64{
		frame.Origin.X, frame.Origin.Y,
		frame.Size.Width, frame.Size.Height,
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.NewValidationError("window_frame must be finite", nil)
		}
	}
	if frame.Size.Width < 0 || frame.Size.Height < 0 {
		return apperrors.NewValidationError("window_frame extent must not be negative", nil)
	}
	if (frame.Size.Width == 0) != (frame.Size.Height == 0) {
		return apperrors.NewValidationError("window_frame extent is degenerate", nil)
	}
	return nil
}
