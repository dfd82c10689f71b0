package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Perception holds the empirically tuned thresholds of the fusion pipeline.
// They are configuration, not derivation: keep them overridable so that test
// fixtures and per-deployment calibration can adjust them without rebuilds.
type Perception struct {
	// FusionRadius is the maximum distance (canonical units) between an OCR
	// box origin and an accessibility position for the two to be matched.
	FusionRadius float64

	// CertainMatchDistance is the distance below which a candidate is
	// accepted immediately without scanning the remaining candidates.
	CertainMatchDistance float64

	// GridBucketSize is the uniform bucket edge of the spatial index.
	GridBucketSize float64

	// LinearScanThreshold is the accessibility-observation count below which
	// fusion uses a plain linear scan instead of the spatial index.
	LinearScanThreshold int

	// OverlapThreshold is the shape-over-element overlap fraction above
	// which visual integration enhances an existing element in place.
	OverlapThreshold float64

	// TextAttachOverlap and TextAttachMinConfidence gate which OCR fragments
	// get attached to an enhanced shape element that lacked visible text.
	TextAttachOverlap       float64
	TextAttachMinConfidence float64

	// MinClickableArea is the minimum area (px²) a clickable element must
	// cover to survive the quality filter.
	MinClickableArea float64

	// DetectorTimeout is the per-task deadline of one detection pass.
	// Detectors that miss it contribute an empty observation list.
	DetectorTimeout time.Duration

	// CacheTTL and CacheSize bound the coordinator's detection-result cache.
	CacheTTL  time.Duration
	CacheSize int
}

// Config is the full service configuration, loaded from the environment.
type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ScreenshotTimeout  time.Duration
	MaxRequestBodySize int64

	OCRLanguage string

	// Azure artifact store; persistence is disabled when AccountName is empty.
	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string

	Perception Perception
}

// ArtifactStoreEnabled reports whether encoded maps should be persisted.
func (c *Config) ArtifactStoreEnabled() bool {
	return c.AzureAccountName != ""
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// DefaultPerception returns the tuned defaults documented in the pipeline
// packages. The values are empirical, not derived.
func DefaultPerception() Perception {
	return Perception{
		FusionRadius:            30,
		CertainMatchDistance:    5,
		GridBucketSize:          50,
		LinearScanThreshold:     100,
		OverlapThreshold:        0.30,
		TextAttachOverlap:       0.20,
		TextAttachMinConfidence: 0.5,
		MinClickableArea:        400,
		DetectorTimeout:         10 * time.Second,
		CacheTTL:                30 * time.Second,
		CacheSize:               16,
	}
}

func LoadFromEnv() (*Config, error) {
	p := DefaultPerception()
	p.FusionRadius = parseFloatOrDefault("FUSION_RADIUS", p.FusionRadius)
	p.CertainMatchDistance = parseFloatOrDefault("CERTAIN_MATCH_DISTANCE", p.CertainMatchDistance)
	p.GridBucketSize = parseFloatOrDefault("GRID_BUCKET_SIZE", p.GridBucketSize)
	p.LinearScanThreshold = int(parseIntOrDefault("LINEAR_SCAN_THRESHOLD", int64(p.LinearScanThreshold)))
	p.OverlapThreshold = parseFloatOrDefault("OVERLAP_THRESHOLD", p.OverlapThreshold)
	p.TextAttachOverlap = parseFloatOrDefault("TEXT_ATTACH_OVERLAP", p.TextAttachOverlap)
	p.TextAttachMinConfidence = parseFloatOrDefault("TEXT_ATTACH_MIN_CONFIDENCE", p.TextAttachMinConfidence)
	p.MinClickableArea = parseFloatOrDefault("MIN_CLICKABLE_AREA", p.MinClickableArea)
	p.DetectorTimeout = parseDurationOrDefault("DETECTOR_TIMEOUT", p.DetectorTimeout)
	p.CacheTTL = parseDurationOrDefault("DETECTION_CACHE_TTL", p.CacheTTL)
	p.CacheSize = int(parseIntOrDefault("DETECTION_CACHE_SIZE", int64(p.CacheSize)))

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ScreenshotTimeout:  parseDurationOrDefault("SCREENSHOT_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 20*1024*1024), // 20MB, screenshots inline
		OCRLanguage:        getEnvOrDefault("OCR_LANGUAGE", "eng"),
		AzureAccountName:   os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:    os.Getenv("AZURE_ACCOUNT_KEY"),
		AzureContainer:     getEnvOrDefault("AZURE_CONTAINER", "perception-artifacts"),
		Perception:         p,
	}

	// Validate port is numeric and in range
	port, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ScreenshotTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			cfg.RequestTimeout, cfg.ScreenshotTimeout)
	}
	if err := validatePerception(p); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validatePerception(p Perception) error {
	if p.FusionRadius <= 0 || p.GridBucketSize <= 0 {
		return fmt.Errorf("fusion radius and grid bucket size must be > 0 (got %g, %g)",
			p.FusionRadius, p.GridBucketSize)
	}
	if p.OverlapThreshold <= 0 || p.OverlapThreshold >= 1 {
		return fmt.Errorf("OVERLAP_THRESHOLD must be in (0,1) (got %g)", p.OverlapThreshold)
	}
	if p.CacheSize <= 0 || p.CacheTTL <= 0 {
		return fmt.Errorf("detection cache must have positive size and TTL (got %d, %s)",
			p.CacheSize, p.CacheTTL)
	}
	if p.DetectorTimeout <= 0 {
		return fmt.Errorf("DETECTOR_TIMEOUT must be > 0 (got %s)", p.DetectorTimeout)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
