package container

import (
	"fmt"
	"net/http"

	"go-screen-perception/internal/config"
	"go-screen-perception/internal/coordinator"
	"go-screen-perception/internal/encoder"
	"go-screen-perception/internal/factory"
	"go-screen-perception/internal/filter"
	"go-screen-perception/internal/fusion"
	"go-screen-perception/internal/logger"
	"go-screen-perception/internal/observer"
	"go-screen-perception/internal/repository"
	"go-screen-perception/internal/service"
	"go-screen-perception/internal/storage"
	"go-screen-perception/internal/transport"
	"go-screen-perception/internal/visual"
	"go-screen-perception/pkg/models"
)

// Container holds all application dependencies
type Container struct {
	config      *config.Config
	fetcher     storage.ScreenshotFetcher
	coordinator *coordinator.Coordinator
	service     service.PerceptionService
	handler     http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Build dependency graph
	components := factory.NewComponentFactory()

	fetcher, err := components.StorageFactory.CreateFetcher(factory.HTTPStorage, cfg.MaxRequestBodySize)
	if err != nil {
		return nil, fmt.Errorf("failed to create screenshot fetcher: %w", err)
	}
	extractor, err := components.DetectorFactory.CreateTextExtractor(factory.TesseractExtractor, cfg.OCRLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to create text extractor: %w", err)
	}
	shapes := components.DetectorFactory.CreateShapeDetector()

	cache := coordinator.NewCache(cfg.Perception.CacheSize, cfg.Perception.CacheTTL)
	coord := coordinator.New(extractor, shapes, cfg.Perception.DetectorTimeout, cache)

	fusionEngine := fusion.NewEngine(fusion.Params{
		MatchRadius:                 cfg.Perception.FusionRadius,
		CertainMatchDistance:        cfg.Perception.CertainMatchDistance,
		GridBucketSize:              cfg.Perception.GridBucketSize,
		LinearScanThreshold:         cfg.Perception.LinearScanThreshold,
		AccessibilityOnlyConfidence: fusion.DefaultParams().AccessibilityOnlyConfidence,
		LargeScrollAreaMin:          fusion.DefaultParams().LargeScrollAreaMin,
		FallbackSize:                models.Size{Width: 24, Height: 24},
	})
	integrator := visual.NewIntegrator(visual.Params{
		OverlapThreshold:        cfg.Perception.OverlapThreshold,
		TextAttachOverlap:       cfg.Perception.TextAttachOverlap,
		TextAttachMinConfidence: cfg.Perception.TextAttachMinConfidence,
	})
	qualityFilter := filter.New(cfg.Perception.MinClickableArea)

	var artifacts storage.ArtifactStore
	if cfg.ArtifactStoreEnabled() {
		artifacts, err = storage.NewAzureArtifactStore(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainer)
		if err != nil {
			return nil, fmt.Errorf("failed to create artifact store: %w", err)
		}
	}

	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(observer.NewMetricsObserver())

	svc := service.NewPerceptionService(service.Dependencies{
		Screenshots: repository.NewHTTPScreenshotRepository(fetcher),
		Coordinator: coord,
		Extractor:   extractor,
		Fusion:      fusionEngine,
		Visual:      integrator,
		Filter:      qualityFilter,
		Encoder:     encoder.New(),
		Artifacts:   artifacts,
		Publisher:   publisher,
	})
	handler := transport.NewHandler(svc, cfg)

	return &Container{
		config:      cfg,
		fetcher:     fetcher,
		coordinator: coord,
		service:     svc,
		handler:     handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the perception service
func (c *Container) Service() service.PerceptionService {
	return c.service
}
