package validation

import (
	"math"
	"testing"

	"go-screen-perception/pkg/models"
)

func validRequest() *models.PerceiveRequest {
	return &models.PerceiveRequest{
		ScreenshotB64: "aGVsbG8=",
		AppName:       "Safari",
		WindowFrame:   models.NewRect(0, 0, 1280, 800),
	}
}

func TestValidatePerceiveRequest_Valid(t *testing.T) {
	if err := ValidatePerceiveRequest(validRequest()); err != nil {
		t.Fatalf("Expected valid request to pass, got: %v", err)
	}
}

func TestValidatePerceiveRequest_ZeroFrameAllowed(t *testing.T) {
	req := validRequest()
	req.WindowFrame = models.Rect{}
	if err := ValidatePerceiveRequest(req); err != nil {
		t.Fatalf("Expected zero frame to be allowed, got: %v", err)
	}
}

func TestValidatePerceiveRequest_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.PerceiveRequest)
	}{
		{"missing app name", func(r *models.PerceiveRequest) { r.AppName = "" }},
		{"no screenshot", func(r *models.PerceiveRequest) {
			r.ScreenshotB64 = ""
			r.ScreenshotURL = ""
		}},
		{"bad screenshot url scheme", func(r *models.PerceiveRequest) {
			r.ScreenshotB64 = ""
			r.ScreenshotURL = "ftp://example.com/shot.png"
		}},
		{"nan frame origin", func(r *models.PerceiveRequest) {
			r.WindowFrame.Origin.X = math.NaN()
		}},
		{"infinite frame width", func(r *models.PerceiveRequest) {
			r.WindowFrame.Size.Width = math.Inf(1)
		}},
		{"negative frame height", func(r *models.PerceiveRequest) {
			r.WindowFrame.Size.Height = -10
		}},
		{"half-degenerate frame", func(r *models.PerceiveRequest) {
			r.WindowFrame.Size.Width = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			if err := ValidatePerceiveRequest(req); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestValidatePerceiveRequest_Nil(t *testing.T) {
	if err := ValidatePerceiveRequest(nil); err == nil {
		t.Error("Expected error for nil request")
	}
}
