package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/logging"
)

// registerLogRoutes registers the log streaming SSE endpoint.
func (s *Server) registerLogRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "logs-stream",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Log Stream",
		Description: "Real-time log streaming via Server-Sent Events. Sends recent history first, then new records.",
		Tags:        []string{"logs"},
	}, map[string]any{
		"message": events.LogEntryEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Subscribe before replaying so nothing logged in between is lost.
		feed := events.NewFeed(100)
		defer feed.Close()
		events.Forward[events.LogEntryEvent](s.eventBus, feed)

		if history := logging.GetHistory(); history != nil {
			for _, entry := range history.Entries() {
				if err := send.Data(LogEvent(entry)); err != nil {
					return
				}
			}
		}

		s.pump(ctx, "/api/logs", feed, send)
	})
}

// LogEvent converts a history entry to its SSE payload.
func LogEvent(entry logging.Entry) events.LogEntryEvent {
	return events.LogEntryEvent{
		Timestamp: entry.Time.Format(time.RFC3339Nano),
		Level:     entry.Level,
		Module:    entry.Module,
		Message:   entry.Message,
		Attrs:     entry.Attrs,
	}
}
