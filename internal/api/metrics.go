package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/camctl/internal/events"
)

// registerMetricsRoutes registers the metrics SSE endpoint
func (s *Server) registerMetricsRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "metrics-stream",
		Method:      http.MethodGet,
		Path:        "/api/metrics",
		Summary:     "Metrics Server-Sent Events Stream",
		Description: "Live frame rate and byte counts of the active preview stream, once per second while streaming",
		Tags:        []string{"metrics"},
	}, map[string]any{
		"stream-metrics": events.StreamMetricsEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		feed := events.NewFeed(10)
		defer feed.Close()
		events.Forward[events.StreamMetricsEvent](s.eventBus, feed)

		s.pump(ctx, "/api/metrics", feed, send)
	})
}
