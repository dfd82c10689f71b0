// Package service orchestrates one perception pass end to end: resolve the
// screenshot, run the detectors, normalize, fuse, integrate shapes, filter,
// and encode.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-screen-perception/internal/coordinator"
	"go-screen-perception/internal/detector"
	"go-screen-perception/internal/encoder"
	apperrors "go-screen-perception/internal/errors"
	"go-screen-perception/internal/filter"
	"go-screen-perception/internal/fusion"
	"go-screen-perception/internal/logger"
	"go-screen-perception/internal/normalize"
	"go-screen-perception/internal/observer"
	"go-screen-perception/internal/repository"
	"go-screen-perception/internal/storage"
	"go-screen-perception/internal/strategy"
	"go-screen-perception/internal/visual"
	"go-screen-perception/pkg/models"
	"go-screen-perception/pkg/validation"
)

// PerceptionService is the application-facing API of the pipeline.
type PerceptionService interface {
	// Perceive runs one full perception pass over the request's screenshot
	// and payload observations.
	Perceive(ctx context.Context, req *models.PerceiveRequest) (*models.PerceptionResponse, error)

	// ValidateOCR measures extraction quality against known text.
	ValidateOCR(ctx context.Context, req *models.OCRValidateRequest) (*models.OCRValidateResponse, error)
}

// Dependencies carries the collaborators a perception service needs. The
// artifact store and the publisher are optional.
type Dependencies struct {
	Screenshots repository.ScreenshotRepository
	Coordinator *coordinator.Coordinator
	Extractor   detector.TextExtractor
	Fusion      *fusion.Engine
	Visual      *visual.Integrator
	Filter      *filter.QualityFilter
	Encoder     *encoder.Encoder
	Artifacts   storage.ArtifactStore
	Publisher   observer.Subject
}

type perceptionService struct {
	deps Dependencies
	log  *logrus.Entry
}

// NewPerceptionService creates the service.
func NewPerceptionService(deps Dependencies) PerceptionService {
	return &perceptionService{
		deps: deps,
		log:  logger.WithField("component", "service"),
	}
}

// Perceive implements PerceptionService.
func (s *perceptionService) Perceive(ctx context.Context, req *models.PerceiveRequest) (*models.PerceptionResponse, error) {
	start := time.Now()
	passID := uuid.NewString()

	if err := validation.ValidatePerceiveRequest(req); err != nil {
		return nil, apperrors.NewValidationError("invalid perceive request", err)
	}

	s.publish(ctx, observer.PassEvent{
		EventType: observer.PassStarted,
		Timestamp: start,
		PassID:    passID,
		AppName:   req.AppName,
	})

	resp, err := s.runPass(ctx, passID, req, start)
	if err != nil {
		s.publish(ctx, observer.PassEvent{
			EventType:      observer.PassFailed,
			Timestamp:      time.Now(),
			PassID:         passID,
			AppName:        req.AppName,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	s.publish(ctx, observer.PassEvent{
		EventType:      observer.PassCompleted,
		Timestamp:      time.Now(),
		PassID:         passID,
		AppName:        req.AppName,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"elements": resp.ElementCount},
	})
	return resp, nil
}

func (s *perceptionService) runPass(ctx context.Context, passID string, req *models.PerceiveRequest, start time.Time) (*models.PerceptionResponse, error) {
	snap, err := s.deps.Screenshots.Resolve(ctx, req)
	if err != nil {
		switch {
		case err == repository.ErrNoScreenshot, err == repository.ErrBadEncoding:
			return nil, apperrors.NewValidationError("unusable screenshot", err)
		default:
			return nil, apperrors.NewNetworkError("failed to resolve screenshot", err)
		}
	}

	opts := resolveOptions(req.Options)
	acc := detector.NewStaticAccessibility(req.Accessibility)
	menu := detector.NewStaticMenu(req.MenuItems)

	bundle, err := s.deps.Coordinator.Detect(ctx, snap, acc, menu, opts)
	if err != nil {
		return nil, apperrors.NewDetectionError("detection pass failed", err)
	}
	s.publish(ctx, observer.PassEvent{
		EventType: observer.DetectorsCompleted,
		Timestamp: time.Now(),
		PassID:    passID,
		AppName:   req.AppName,
		Success:   true,
		Metadata: map[string]interface{}{
			"accessibility": len(bundle.Accessibility),
			"ocr":           len(bundle.OCR),
			"shapes":        len(bundle.Shapes),
			"timed_out":     bundle.Timings.TimedOut,
		},
	})

	norm := normalize.New(snap.Frame)
	bundle = norm.Bundle(bundle)

	elements := s.deps.Fusion.Fuse(bundle.Accessibility, bundle.OCR)
	elements = s.deps.Visual.Integrate(elements, bundle.Shapes, bundle.OCR)
	elements = append(elements, menuElements(bundle.MenuItems)...)
	elements = s.deps.Filter.Apply(elements)

	encoded := s.deps.Encoder.Encode(elements, snap.Frame, req.AppName)

	if s.deps.Artifacts != nil {
		go s.storeArtifacts(passID, req.AppName, encoded, elements)
	}

	return &models.PerceptionResponse{
		PassID:            passID,
		AppName:           req.AppName,
		Timestamp:         start.UTC().Format(time.RFC3339),
		ProcessingTimeSec: time.Since(start).Seconds(),
		WindowFrame:       snap.Frame,
		Elements:          elements,
		Encoded:           encoded,
		Timings:           bundle.Timings,
		ElementCount:      len(elements),
	}, nil
}

// ValidateOCR implements PerceptionService.
func (s *perceptionService) ValidateOCR(ctx context.Context, req *models.OCRValidateRequest) (*models.OCRValidateResponse, error) {
	snap, err := s.deps.Screenshots.Resolve(ctx, &models.PerceiveRequest{
		ScreenshotURL: req.ScreenshotURL,
		ScreenshotB64: req.ScreenshotB64,
		AppName:       "ocr-validation",
	})
	if err != nil {
		return nil, apperrors.NewValidationError("unusable screenshot", err)
	}

	opts := detector.DefaultOptions()
	if req.AccurateMode {
		opts = opts.WithAccurateOCR()
	}
	words, err := s.deps.Extractor.ExtractText(ctx, snap, opts)
	if err != nil {
		return nil, apperrors.NewDetectionError("text extraction failed", err)
	}

	extracted := joinReadingOrder(words)
	return &models.OCRValidateResponse{
		ExtractedText: extracted,
		ExpectedText:  req.ExpectedText,
		WordErrorRate: wordErrorRate(req.ExpectedText, extracted),
		MatchScore:    matchScore(req.ExpectedText, extracted),
		WordCount:     len(words),
	}, nil
}

// storeArtifacts uploads the pass outputs off the request path. A failure
// here degrades observability only, never the response.
func (s *perceptionService) storeArtifacts(passID, appName, encoded string, elements []models.UIElement) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	elementsJSON, err := json.Marshal(elements)
	if err != nil {
		s.log.WithError(err).Warn("failed to marshal elements for artifact storage")
		return
	}
	if err := s.deps.Artifacts.StoreArtifacts(ctx, passID, encoded, elementsJSON); err != nil {
		s.log.WithError(err).WithField("pass_id", passID).Warn("artifact upload failed")
		return
	}
	s.publish(ctx, observer.PassEvent{
		EventType: observer.ArtifactStored,
		Timestamp: time.Now(),
		PassID:    passID,
		AppName:   appName,
		Success:   true,
	})
}

func (s *perceptionService) publish(ctx context.Context, event observer.PassEvent) {
	if s.deps.Publisher != nil {
		s.deps.Publisher.NotifyObservers(ctx, event)
	}
}

// resolveOptions maps the request's mode and overrides onto detect options.
func resolveOptions(req *models.DetectOptionsRequest) detector.DetectOptions {
	if req == nil {
		return detector.DefaultOptions()
	}
	opts := strategy.ForMode(req.Mode).Options()
	if req.AccurateOCR != nil {
		opts.AccurateOCR = *req.AccurateOCR
	}
	if req.SkipShapes != nil {
		opts.SkipShapeDetection = *req.SkipShapes
	}
	if req.SkipMenu != nil {
		opts.SkipMenuScan = *req.SkipMenu
	}
	if req.Debug != nil {
		opts.Debug = *req.Debug
	}
	return opts
}

// menuElements converts menu-bar items into encodable elements. Items
// without a position cannot be addressed and are dropped.
func menuElements(items []models.MenuBarItem) []models.UIElement {
	elements := make([]models.UIElement, 0, len(items))
	for i, item := range items {
		if item.Position == nil || item.Title == "" {
			continue
		}
		size := models.Size{Width: 40, Height: 20}
		if item.Size != nil {
			size = *item.Size
		}
		menuType := item.Type
		if menuType != models.MenuTypeApp && menuType != models.MenuTypeSystem {
			menuType = models.MenuTypeApp
		}
		elements = append(elements, models.UIElement{
			ID:              fmt.Sprintf("mn-%03d", i+1),
			Type:            menuType,
			Position:        *item.Position,
			Size:            size,
			IsClickable:     true,
			Confidence:      1.0,
			VisualText:      item.Title,
			SemanticMeaning: "menu bar item",
			Interactions:    []string{"click"},
		})
	}
	return elements
}

// joinReadingOrder concatenates recognized words top to bottom, left to
// right. The boxes are still in the extractor's bottom-left convention, so
// a higher bottom edge means higher on screen.
func joinReadingOrder(words []models.OCRObservation) string {
	sorted := make([]models.OCRObservation, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(a, b int) bool {
		topA := sorted[a].Box.Origin.Y + sorted[a].Box.Size.Height
		topB := sorted[b].Box.Origin.Y + sorted[b].Box.Size.Height
		if topA != topB {
			return topA > topB
		}
		return sorted[a].Box.Origin.X < sorted[b].Box.Origin.X
	})

	parts := make([]string, 0, len(sorted))
	for _, w := range sorted {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}
