package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// GenerationEvent describes one pass through an AI route
type GenerationEvent struct {
	EventType      EventType     `json:"event_type"`
	Timestamp      time.Time     `json:"timestamp"`
	RequestID      string        `json:"request_id,omitempty"`
	Route          string        `json:"route"`
	Model          string        `json:"model,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	ErrorType      string        `json:"error_type,omitempty"`
	ErrorMessage   string        `json:"error_message,omitempty"`
}

// EventType represents the type of generation event
type EventType string

const (
	GenerationStarted   EventType = "generation_started"
	GenerationCompleted EventType = "generation_completed"
	GenerationFailed    EventType = "generation_failed"
	// RequestRejected is emitted when a request fails before reaching the provider
	RequestRejected EventType = "request_rejected"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event GenerationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event GenerationEvent)
}

// LoggingObserver logs generation events
type LoggingObserver struct {
	logger *logrus.Logger
}

func NewLoggingObserver(logger *logrus.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) OnEvent(ctx context.Context, event GenerationEvent) {
	fields := logrus.Fields{
		"event_type":         event.EventType,
		"route":              event.Route,
		"model":              event.Model,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
	}
	if event.RequestID != "" {
		fields["request_id"] = event.RequestID
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
		fields["error_type"] = event.ErrorType
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case GenerationStarted:
		entry.Debug("Generation started")
	case GenerationCompleted:
		entry.Info("Generation completed")
	case GenerationFailed:
		entry.Error("Generation failed")
	case RequestRejected:
		entry.Warn("Request rejected")
	default:
		entry.Info("Generation event occurred")
	}
}

func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// RouteMetrics holds the counters for a single route
type RouteMetrics struct {
	Started           int64   `json:"started"`
	Completed         int64   `json:"completed"`
	Failed            int64   `json:"failed"`
	Rejected          int64   `json:"rejected"`
	AvgProcessingTime float64 `json:"avg_processing_time_ms"`
}

// MetricsObserver collects per-route counters
type MetricsObserver struct {
	mu       sync.RWMutex
	routes   map[string]*RouteMetrics
	totalDur map[string]time.Duration
}

func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		routes:   make(map[string]*RouteMetrics),
		totalDur: make(map[string]time.Duration),
	}
}

func (o *MetricsObserver) OnEvent(ctx context.Context, event GenerationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	m, ok := o.routes[event.Route]
	if !ok {
		m = &RouteMetrics{}
		o.routes[event.Route] = m
	}

	switch event.EventType {
	case GenerationStarted:
		m.Started++
	case GenerationCompleted:
		m.Completed++
		o.totalDur[event.Route] += event.ProcessingTime
	case GenerationFailed:
		m.Failed++
	case RequestRejected:
		m.Rejected++
	}
}

func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Snapshot returns a copy of the counters keyed by route
func (o *MetricsObserver) Snapshot() map[string]RouteMetrics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make(map[string]RouteMetrics, len(o.routes))
	for route, m := range o.routes {
		cp := *m
		if cp.Completed > 0 {
			avg := o.totalDur[route] / time.Duration(cp.Completed)
			cp.AvgProcessingTime = float64(avg.Microseconds()) / 1000
		}
		out[route] = cp
	}
	return out
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	wg        sync.WaitGroup
}

func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

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

// NotifyObservers fans the event out to every observer in its own goroutine.
// Observers must not block the request; a panicking observer is logged and dropped.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event GenerationEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// The request context may be cancelled before observers run.
	ctx = context.WithoutCancel(ctx)
	for _, observer := range observers {
		p.wg.Add(1)
		go func(obs Observer) {
			defer p.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Wait blocks until every notification dispatched so far has been handled.
func (p *EventPublisher) Wait() {
	p.wg.Wait()
}
