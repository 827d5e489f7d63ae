package exporters

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/metrics"
)

type mockEventBus struct {
	mu        sync.Mutex
	events    []events.Event
	published chan struct{}
}

func newMockEventBus() *mockEventBus {
	return &mockEventBus{published: make(chan struct{}, 100)}
}

func (m *mockEventBus) Publish(ev events.Event) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	select {
	case m.published <- struct{}{}:
	default:
	}
}

func (m *mockEventBus) getEvents() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.Event(nil), m.events...)
}

func TestSSEExporterPublishesMetrics(t *testing.T) {
	metrics.StreamStarted("sse-test")
	defer metrics.StreamStopped("sse-test")
	metrics.ObserveFrame()
	metrics.ObserveBytes(512)

	mock := newMockEventBus()
	exporter := NewSSEExporter(mock)
	exporter.interval = 50 * time.Millisecond

	exporter.Start(context.Background())
	select {
	case <-mock.published:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for metrics publish")
	}
	exporter.Stop()

	ev, ok := mock.getEvents()[0].(events.StreamMetricsEvent)
	if !ok {
		t.Fatalf("got %T, want StreamMetricsEvent", mock.getEvents()[0])
	}
	if ev.SessionID != "sse-test" || ev.Frames != 1 || ev.Bytes != 512 {
		t.Errorf("event = %+v", ev)
	}
}

func TestSSEExporterFPS(t *testing.T) {
	metrics.StreamStarted("fps-test")
	defer metrics.StreamStopped("fps-test")

	mock := newMockEventBus()
	exporter := NewSSEExporter(mock)

	t0 := time.Now()
	exporter.publishMetrics(t0)
	for range 30 {
		metrics.ObserveFrame()
	}
	exporter.publishMetrics(t0.Add(time.Second))

	evts := mock.getEvents()
	if len(evts) != 2 {
		t.Fatalf("got %d events, want 2", len(evts))
	}
	if fps := evts[1].(events.StreamMetricsEvent).FPS; fps != 30 {
		t.Errorf("FPS = %v, want 30", fps)
	}
}

func TestSSEExporterIdle(t *testing.T) {
	mock := newMockEventBus()
	exporter := NewSSEExporter(mock)
	exporter.publishMetrics(time.Now())
	if n := len(mock.getEvents()); n != 0 {
		t.Errorf("published %d events while idle", n)
	}
}
