package coordinator

import (
	"context"
	"testing"
	"time"

	"go-screen-perception/internal/detector"
	"go-screen-perception/pkg/models"
)

type stubOCR struct {
	words []models.OCRObservation
	delay time.Duration
	err   error
}

func (s *stubOCR) ExtractText(ctx context.Context, snap *detector.Snapshot, opts detector.DetectOptions) ([]models.OCRObservation, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.words, s.err
}

type stubShapes struct {
	shapes []models.ShapeCandidate
	err    error
}

func (s *stubShapes) DetectShapes(ctx context.Context, snap *detector.Snapshot, opts detector.DetectOptions) ([]models.ShapeCandidate, error) {
	return s.shapes, s.err
}

func snapshot() *detector.Snapshot {
	return &detector.Snapshot{
		Raw:     []byte("fake-png-bytes"),
		Frame:   models.NewRect(0, 0, 1000, 800),
		AppName: "TestApp",
	}
}

func TestDetect_AggregatesAllSources(t *testing.T) {
	ocr := &stubOCR{words: []models.OCRObservation{{Text: "Submit", Confidence: 0.9}}}
	shapes := &stubShapes{shapes: []models.ShapeCandidate{{Category: models.ShapeRectangle}}}
	c := New(ocr, shapes, time.Second, nil)

	acc := detector.NewStaticAccessibility([]models.AccessibilityObservation{{Role: "AXButton", Title: "Submit"}})
	menu := detector.NewStaticMenu([]models.MenuBarItem{{Title: "File", Type: models.MenuTypeApp}})

	bundle, err := c.Detect(context.Background(), snapshot(), acc, menu, detector.DefaultOptions())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if len(bundle.Accessibility) != 1 || len(bundle.OCR) != 1 || len(bundle.Shapes) != 1 || len(bundle.MenuItems) != 1 {
		t.Errorf("bundle = acc %d, ocr %d, shapes %d, menu %d; want 1 each",
			len(bundle.Accessibility), len(bundle.OCR), len(bundle.Shapes), len(bundle.MenuItems))
	}
	if len(bundle.Timings.TimedOut) != 0 {
		t.Errorf("unexpected timeouts: %v", bundle.Timings.TimedOut)
	}
	if c.State() != StateIdle {
		t.Errorf("state after a pass = %q, want idle", c.State())
	}
}

func TestDetect_SlowTaskContributesEmpty(t *testing.T) {
	ocr := &stubOCR{
		words: []models.OCRObservation{{Text: "late", Confidence: 0.9}},
		delay: 500 * time.Millisecond,
	}
	c := New(ocr, &stubShapes{}, 30*time.Millisecond, nil)

	bundle, err := c.Detect(context.Background(), snapshot(), nil, nil, detector.DefaultOptions())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if len(bundle.OCR) != 0 {
		t.Error("a timed-out detector must contribute an empty observation list")
	}
	if len(bundle.Timings.TimedOut) != 1 || bundle.Timings.TimedOut[0] != "ocr" {
		t.Errorf("TimedOut = %v, want [ocr]", bundle.Timings.TimedOut)
	}
}

func TestDetect_FailedTaskDegradesPass(t *testing.T) {
	ocr := &stubOCR{err: context.DeadlineExceeded}
	shapes := &stubShapes{shapes: []models.ShapeCandidate{{Category: models.ShapeCircle}}}
	c := New(ocr, shapes, time.Second, nil)

	bundle, err := c.Detect(context.Background(), snapshot(), nil, nil, detector.DefaultOptions())
	if err != nil {
		t.Fatalf("a single failed detector must not fail the pass: %v", err)
	}
	if len(bundle.OCR) != 0 {
		t.Error("the failed detector must contribute nothing")
	}
	if len(bundle.Shapes) != 1 {
		t.Error("healthy detectors must still contribute")
	}
}

func TestDetect_SkipFlags(t *testing.T) {
	shapes := &stubShapes{shapes: []models.ShapeCandidate{{Category: models.ShapeRectangle}}}
	c := New(&stubOCR{}, shapes, time.Second, nil)

	menu := detector.NewStaticMenu([]models.MenuBarItem{{Title: "File", Type: models.MenuTypeApp}})
	opts := detector.DefaultOptions().WithoutShapes().WithoutMenuScan()

	bundle, err := c.Detect(context.Background(), snapshot(), nil, menu, opts)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(bundle.Shapes) != 0 || len(bundle.MenuItems) != 0 {
		t.Errorf("skip flags ignored: shapes %d, menu %d", len(bundle.Shapes), len(bundle.MenuItems))
	}
}

func TestDetect_CancelledParentContext(t *testing.T) {
	c := New(&stubOCR{}, &stubShapes{}, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Detect(ctx, snapshot(), nil, nil, detector.DefaultOptions()); err == nil {
		t.Error("expected an error from a cancelled parent context")
	}
}

func TestDetect_ServesFromCache(t *testing.T) {
	ocr := &stubOCR{words: []models.OCRObservation{{Text: "once", Confidence: 0.9}}}
	cache := NewCache(4, time.Minute)
	c := New(ocr, &stubShapes{}, time.Second, cache)

	snap := snapshot()
	opts := detector.DefaultOptions()

	first, err := c.Detect(context.Background(), snap, nil, nil, opts)
	if err != nil {
		t.Fatalf("first Detect: %v", err)
	}

	ocr.words = []models.OCRObservation{{Text: "changed", Confidence: 0.9}}
	second, err := c.Detect(context.Background(), snap, nil, nil, opts)
	if err != nil {
		t.Fatalf("second Detect: %v", err)
	}
	if len(second.OCR) != 1 || second.OCR[0].Text != first.OCR[0].Text {
		t.Error("an identical snapshot within the TTL must be served from the cache")
	}

	different := snapshot()
	different.Raw = []byte("other-bytes")
	third, _ := c.Detect(context.Background(), different, nil, nil, opts)
	if third.OCR[0].Text != "changed" {
		t.Error("a different screenshot must miss the cache")
	}
}

func TestCacheKey_SensitiveToOptions(t *testing.T) {
	raw := []byte("bytes")
	a := CacheKey(raw, "App", detector.DefaultOptions())
	b := CacheKey(raw, "App", detector.AccurateOptions())
	if a == b {
		t.Error("different detect options must produce different cache keys")
	}
	if a != CacheKey(raw, "App", detector.DefaultOptions()) {
		t.Error("the key must be deterministic")
	}
}
