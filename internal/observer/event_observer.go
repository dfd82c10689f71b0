package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// PassEvent is one lifecycle event of a perception pass.
type PassEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	PassID         string                 `json:"pass_id"`
	AppName        string                 `json:"app_name"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType identifies the lifecycle stage an event reports.
type EventType string

const (
	// PassStarted when a perception pass begins
	PassStarted EventType = "pass_started"
	// DetectorsCompleted when all detection tasks have been aggregated
	DetectorsCompleted EventType = "detectors_completed"
	// PassCompleted when the pass finishes successfully
	PassCompleted EventType = "pass_completed"
	// PassFailed when the pass fails
	PassFailed EventType = "pass_failed"
	// ArtifactStored when the pass artifacts reach the artifact store
	ArtifactStored EventType = "artifact_stored"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event PassEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event PassEvent)
}

// LoggingObserver logs pass events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent handles pass events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event PassEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"pass_id":         event.PassID,
		"app_name":        event.AppName,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case PassStarted:
		o.logger.WithFields(fields).Info("Perception pass started")
	case DetectorsCompleted:
		o.logger.WithFields(fields).Debug("Detection tasks aggregated")
	case PassCompleted:
		o.logger.WithFields(fields).Info("Perception pass completed")
	case PassFailed:
		o.logger.WithFields(fields).Error("Perception pass failed")
	case ArtifactStored:
		o.logger.WithFields(fields).Debug("Pass artifacts stored")
	default:
		o.logger.WithFields(fields).Info("Pass event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from pass events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalPasses         int64
	successfulPasses    int64
	failedPasses        int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() Observer {
	return &MetricsObserver{}
}

// OnEvent handles pass events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event PassEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case PassStarted:
		o.totalPasses++
	case PassCompleted:
		o.successfulPasses++
		o.totalProcessingTime += event.ProcessingTime
	case PassFailed:
		o.failedPasses++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulPasses > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulPasses)
	}

	return map[string]interface{}{
		"total_passes":          o.totalPasses,
		"successful_passes":     o.successfulPasses,
		"failed_passes":         o.failedPasses,
		"total_processing_time": o.totalProcessingTime,
		"avg_processing_time":   avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event PassEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Notify observers concurrently
	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					// Log panic but don't crash the application
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
