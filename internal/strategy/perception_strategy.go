package strategy

import (
	"go-screen-perception/internal/detector"
)

// PerceptionStrategy maps an automation intent to the detect options that
// serve it. Strategies are stateless; the context object below lets callers
// swap them at runtime.
type PerceptionStrategy interface {
	Options() detector.DetectOptions
	GetStrategyName() string
}

// BalancedStrategy is the default: all four detectors, moderate downscale.
type BalancedStrategy struct{}

// NewBalancedStrategy creates the default strategy.
func NewBalancedStrategy() PerceptionStrategy {
	return &BalancedStrategy{}
}

// Options returns the balanced detect options.
func (s *BalancedStrategy) Options() detector.DetectOptions {
	return detector.DefaultOptions()
}

// GetStrategyName returns the strategy name
func (s *BalancedStrategy) GetStrategyName() string {
	return "balanced_perception"
}

// LatencyStrategy favors response time: no shape pass, aggressive downscale.
// Suited to agents polling the screen in a tight loop.
type LatencyStrategy struct{}

// NewLatencyStrategy creates the latency-first strategy.
func NewLatencyStrategy() PerceptionStrategy {
	return &LatencyStrategy{}
}

// Options returns the latency-first detect options.
func (s *LatencyStrategy) Options() detector.DetectOptions {
	return detector.FastOptions()
}

// GetStrategyName returns the strategy name
func (s *LatencyStrategy) GetStrategyName() string {
	return "latency_perception"
}

// FidelityStrategy favors recall: full-segmentation OCR at native
// resolution and a larger shape cap. Suited to one-shot deep scans.
type FidelityStrategy struct{}

// NewFidelityStrategy creates the fidelity-first strategy.
func NewFidelityStrategy() PerceptionStrategy {
	return &FidelityStrategy{}
}

// Options returns the fidelity-first detect options.
func (s *FidelityStrategy) Options() detector.DetectOptions {
	return detector.AccurateOptions()
}

// GetStrategyName returns the strategy name
func (s *FidelityStrategy) GetStrategyName() string {
	return "fidelity_perception"
}

// PerceptionContext manages the active strategy
type PerceptionContext struct {
	strategy PerceptionStrategy
}

// NewPerceptionContext creates a context with an initial strategy.
func NewPerceptionContext(strategy PerceptionStrategy) *PerceptionContext {
	return &PerceptionContext{strategy: strategy}
}

// SetStrategy changes the active strategy
func (c *PerceptionContext) SetStrategy(strategy PerceptionStrategy) {
	c.strategy = strategy
}

// CurrentOptions returns the detect options of the active strategy.
func (c *PerceptionContext) CurrentOptions() detector.DetectOptions {
	return c.strategy.Options()
}

// GetCurrentStrategy returns the current strategy name
func (c *PerceptionContext) GetCurrentStrategy() string {
	return c.strategy.GetStrategyName()
}

// ForMode resolves a request mode string to a strategy. Unknown modes fall
// back to the balanced strategy.
func ForMode(mode string) PerceptionStrategy {
	switch mode {
	case "fast":
		return NewLatencyStrategy()
	case "accurate":
		return NewFidelityStrategy()
	default:
		return NewBalancedStrategy()
	}
}
