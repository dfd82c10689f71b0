// Package coordinator fans one detection pass out to the four observation
// sources and aggregates their results into a DetectionBundle. Every task
// carries its own deadline; a late task contributes an empty observation
// list and is named in the bundle timings instead of stalling the pass.
package coordinator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-screen-perception/internal/detector"
	"go-screen-perception/internal/logger"
	"go-screen-perception/pkg/models"
)

// State is the coordinator's position in the pass lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateDispatched State = "dispatched"
	StateCollecting State = "collecting"
	StateAggregated State = "aggregated"
)

// Coordinator owns the image-driven detectors and the result cache. The
// payload-fed scanners arrive per call because their content is per request.
type Coordinator struct {
	ocr         detector.TextExtractor
	shapes      detector.ShapeDetector
	taskTimeout time.Duration
	cache       *Cache
	log         *logrus.Entry

	mu    sync.Mutex
	state State
}

// New creates a coordinator. The cache may be nil to disable result reuse.
func New(ocr detector.TextExtractor, shapes detector.ShapeDetector, taskTimeout time.Duration, cache *Cache) *Coordinator {
	return &Coordinator{
		ocr:         ocr,
		shapes:      shapes,
		taskTimeout: taskTimeout,
		cache:       cache,
		state:       StateIdle,
		log:         logger.WithField("component", "coordinator"),
	}
}

// State reports the lifecycle position of the most recent pass.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// taskResult is one detector's contribution, applied to the bundle during
// aggregation so the tasks never share memory.
type taskResult struct {
	name     string
	duration time.Duration
	timedOut bool
	apply    func(*models.DetectionBundle)
}

// Detect runs the four detection tasks concurrently and aggregates their
// observations. Aggregation is commutative: task completion order does not
// affect the bundle. The returned bundle is degraded, never nil, when
// individual tasks time out or fail; the error is non-nil only when the
// parent context is done.
func (c *Coordinator) Detect(
	ctx context.Context,
	snap *detector.Snapshot,
	acc detector.AccessibilityScanner,
	menu detector.MenuScanner,
	opts detector.DetectOptions,
) (*models.DetectionBundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := ""
	if c.cache != nil && snap != nil {
		key = CacheKey(snap.Raw, snap.AppName, opts)
		if bundle, ok := c.cache.Get(key); ok {
			c.log.Debug("serving detection bundle from cache")
			return bundle, nil
		}
	}

	c.setState(StateDispatched)
	results := make(chan taskResult, 4)

	tasks := 0
	launch := func(name string, fn func(context.Context) (func(*models.DetectionBundle), error)) {
		tasks++
		go c.runTask(ctx, name, fn, results)
	}

	launch("accessibility", func(tctx context.Context) (func(*models.DetectionBundle), error) {
		if acc == nil {
			return func(*models.DetectionBundle) {}, nil
		}
		obs, err := acc.Scan(tctx)
		if err != nil {
			return nil, err
		}
		return func(b *models.DetectionBundle) { b.Accessibility = obs }, nil
	})

	launch("ocr", func(tctx context.Context) (func(*models.DetectionBundle), error) {
		obs, err := c.ocr.ExtractText(tctx, snap, opts)
		if err != nil {
			return nil, err
		}
		return func(b *models.DetectionBundle) { b.OCR = obs }, nil
	})

	launch("shapes", func(tctx context.Context) (func(*models.DetectionBundle), error) {
		if opts.SkipShapeDetection {
			return func(*models.DetectionBundle) {}, nil
		}
		obs, err := c.shapes.DetectShapes(tctx, snap, opts)
		if err != nil {
			return nil, err
		}
		return func(b *models.DetectionBundle) { b.Shapes = obs }, nil
	})

	launch("menu_bar", func(tctx context.Context) (func(*models.DetectionBundle), error) {
		if menu == nil || opts.SkipMenuScan {
			return func(*models.DetectionBundle) {}, nil
		}
		items, err := menu.ScanMenuBar(tctx)
		if err != nil {
			return nil, err
		}
		return func(b *models.DetectionBundle) { b.MenuItems = items }, nil
	})

	c.setState(StateCollecting)

	bundle := &models.DetectionBundle{}
	for i := 0; i < tasks; i++ {
		select {
		case <-ctx.Done():
			c.setState(StateIdle)
			return nil, ctx.Err()
		case res := <-results:
			if res.apply != nil {
				res.apply(bundle)
			}
			c.recordTiming(bundle, res)
		}
	}
	sort.Strings(bundle.Timings.TimedOut)

	c.setState(StateAggregated)
	c.log.WithFields(logrus.Fields{
		"accessibility": len(bundle.Accessibility),
		"ocr":           len(bundle.OCR),
		"shapes":        len(bundle.Shapes),
		"menu_items":    len(bundle.MenuItems),
		"timed_out":     bundle.Timings.TimedOut,
	}).Info("detection pass aggregated")

	if c.cache != nil && key != "" {
		c.cache.Add(key, bundle)
	}
	c.setState(StateIdle)
	return bundle, nil
}

// runTask executes one detector under its own deadline. The detector runs in
// an inner goroutine because cgo-backed engines cannot be interrupted; on
// timeout the task is abandoned and its eventual result discarded.
func (c *Coordinator) runTask(
	ctx context.Context,
	name string,
	fn func(context.Context) (func(*models.DetectionBundle), error),
	results chan<- taskResult,
) {
	tctx, cancel := context.WithTimeout(ctx, c.taskTimeout)
	defer cancel()

	start := time.Now()
	type outcome struct {
		apply func(*models.DetectionBundle)
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		apply, err := fn(tctx)
		done <- outcome{apply: apply, err: err}
	}()

	select {
	case <-tctx.Done():
		c.log.WithField("task", name).Warn("detector missed its deadline")
		results <- taskResult{name: name, duration: time.Since(start), timedOut: true}
	case out := <-done:
		if out.err != nil {
			// Degraded pass: the task contributes nothing but the pass
			// continues with the remaining detectors.
			c.log.WithError(out.err).WithField("task", name).Warn("detector failed")
			results <- taskResult{name: name, duration: time.Since(start)}
			return
		}
		results <- taskResult{name: name, duration: time.Since(start), apply: out.apply}
	}
}

func (c *Coordinator) recordTiming(bundle *models.DetectionBundle, res taskResult) {
	switch res.name {
	case "accessibility":
		bundle.Timings.Accessibility = res.duration
	case "ocr":
		bundle.Timings.OCR = res.duration
	case "shapes":
		bundle.Timings.Shapes = res.duration
	case "menu_bar":
		bundle.Timings.MenuBar = res.duration
	}
	if res.timedOut {
		bundle.Timings.TimedOut = append(bundle.Timings.TimedOut, res.name)
	}
}
