package exporters

import (
	"context"
	"sync"
	"time"

	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/metrics"
)

// EventPublisher interface for publishing events.
type EventPublisher interface {
	Publish(ev events.Event)
}

// SSEExporter measures the relay frame rate and publishes it with the
// session counters as StreamMetricsEvent.
type SSEExporter struct {
	eventBus EventPublisher
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	lastSession string
	lastFrames  uint64
	lastTick    time.Time
}

// NewSSEExporter creates a new SSE exporter.
func NewSSEExporter(eventBus EventPublisher) *SSEExporter {
	return &SSEExporter{
		eventBus: eventBus,
		interval: 1 * time.Second,
	}
}

// Start begins the SSE export loop.
func (s *SSEExporter) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run()
}

// Stop stops the SSE exporter and waits for the goroutine to finish.
func (s *SSEExporter) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *SSEExporter) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.publishMetrics(now)
		}
	}
}

func (s *SSEExporter) publishMetrics(now time.Time) {
	m, ok := metrics.CurrentStream()
	if !ok {
		s.lastSession = ""
		return
	}

	if m.SessionID != s.lastSession {
		s.lastSession, s.lastFrames, s.lastTick = m.SessionID, m.Frames, now
	}
	if elapsed := now.Sub(s.lastTick).Seconds(); elapsed > 0 {
		m.FPS = float64(m.Frames-s.lastFrames) / elapsed
		metrics.SetStreamFPS(m.FPS)
	}
	s.lastFrames, s.lastTick = m.Frames, now

	s.eventBus.Publish(events.StreamMetricsEvent{
		SessionID: m.SessionID,
		FPS:       m.FPS,
		Frames:    m.Frames,
		Bytes:     m.Bytes,
		Timestamp: now.Format(time.RFC3339),
	})
}
