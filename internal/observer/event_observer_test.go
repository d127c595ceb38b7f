package observer

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	name   string
	mu     sync.Mutex
	events []GenerationEvent
}

func (o *recordingObserver) OnEvent(_ context.Context, e GenerationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) GetObserverName() string { return o.name }

type panickingObserver struct{}

func (panickingObserver) OnEvent(context.Context, GenerationEvent) { panic("observer bug") }
func (panickingObserver) GetObserverName() string                  { return "panicker" }

func TestMetricsObserver_Counts(t *testing.T) {
	m := NewMetricsObserver()
	ctx := context.Background()

	m.OnEvent(ctx, GenerationEvent{EventType: GenerationStarted, Route: "/api/ai"})
	m.OnEvent(ctx, GenerationEvent{EventType: GenerationCompleted, Route: "/api/ai", ProcessingTime: 10 * time.Millisecond})
	m.OnEvent(ctx, GenerationEvent{EventType: GenerationStarted, Route: "/api/ai"})
	m.OnEvent(ctx, GenerationEvent{EventType: GenerationCompleted, Route: "/api/ai", ProcessingTime: 30 * time.Millisecond})
	m.OnEvent(ctx, GenerationEvent{EventType: GenerationStarted, Route: "/analyze"})
	m.OnEvent(ctx, GenerationEvent{EventType: GenerationFailed, Route: "/analyze"})
	m.OnEvent(ctx, GenerationEvent{EventType: RequestRejected, Route: "/analyze"})

	snap := m.Snapshot()
	require.Contains(t, snap, "/api/ai")
	require.Contains(t, snap, "/analyze")

	api := snap["/api/ai"]
	assert.Equal(t, int64(2), api.Started)
	assert.Equal(t, int64(2), api.Completed)
	assert.InDelta(t, 20.0, api.AvgProcessingTime, 0.001)

	analyze := snap["/analyze"]
	assert.Equal(t, int64(1), analyze.Failed)
	assert.Equal(t, int64(1), analyze.Rejected)
	assert.Zero(t, analyze.AvgProcessingTime)
}

func TestEventPublisher_NotifiesAllAndSurvivesPanics(t *testing.T) {
	p := NewEventPublisher()
	rec := &recordingObserver{name: "rec"}
	p.Subscribe(panickingObserver{})
	p.Subscribe(rec)

	p.NotifyObservers(context.Background(), GenerationEvent{EventType: GenerationStarted, Route: "/api/ai"})
	p.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.events, 1)
	assert.False(t, rec.events[0].Timestamp.IsZero())
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	p := NewEventPublisher()
	rec := &recordingObserver{name: "rec"}
	p.Subscribe(rec)
	p.Unsubscribe(rec)

	p.NotifyObservers(context.Background(), GenerationEvent{EventType: GenerationStarted})
	p.Wait()

	assert.Empty(t, rec.events)
}

func TestEventPublisher_CancelledContext(t *testing.T) {
	p := NewEventPublisher()
	var seen error
	done := make(chan struct{})
	p.Subscribe(observerFunc(func(ctx context.Context, _ GenerationEvent) {
		seen = ctx.Err()
		close(done)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.NotifyObservers(ctx, GenerationEvent{EventType: GenerationCompleted})
	<-done

	assert.NoError(t, seen)
}

type observerFunc func(context.Context, GenerationEvent)

func (f observerFunc) OnEvent(ctx context.Context, e GenerationEvent) { f(ctx, e) }
func (f observerFunc) GetObserverName() string                        { return "func" }

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	o := NewLoggingObserver(l)
	o.OnEvent(context.Background(), GenerationEvent{
		EventType:    GenerationFailed,
		Route:        "/api/ai",
		Model:        "gemini-2.0-flash",
		RequestID:    "req-1",
		ErrorType:    "provider",
		ErrorMessage: "boom",
	})

	out := buf.String()
	assert.Contains(t, out, `"msg":"Generation failed"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"level":"error"`)
}
