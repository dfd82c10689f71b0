// Package repository resolves a perceive request into the snapshot the
// detection pipeline consumes, hiding whether the screenshot arrived by URL
// or inline.
package repository

import (
	"context"

	"go-screen-perception/internal/detector"
	"go-screen-perception/pkg/models"
)

// ScreenshotRepository turns the screenshot reference in a request into a
// decoded, frame-annotated snapshot.
type ScreenshotRepository interface {
	// Resolve fetches or decodes the request's screenshot and assembles the
	// detection snapshot. When the request carries no window frame, the
	// screenshot's own extent at origin (0,0) is used.
	Resolve(ctx context.Context, req *models.PerceiveRequest) (*detector.Snapshot, error)
}
