package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/camctl/internal/events"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of stream lifecycle, control changes, presets and camera hotplug",
		Tags:        []string{"events"},
	}, map[string]any{
		"stream-started":   events.StreamStartedEvent{},
		"stream-stopped":   events.StreamStoppedEvent{},
		"control-changed":  events.ControlChangedEvent{},
		"preset-saved":     events.PresetSavedEvent{},
		"presets-reloaded": events.PresetsReloadedEvent{},
		"device-changed":   events.DeviceChangedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		feed := events.NewFeed(10)
		defer feed.Close()

		events.Forward[events.StreamStartedEvent](s.eventBus, feed)
		events.Forward[events.StreamStoppedEvent](s.eventBus, feed)
		events.Forward[events.ControlChangedEvent](s.eventBus, feed)
		events.Forward[events.PresetSavedEvent](s.eventBus, feed)
		events.Forward[events.PresetsReloadedEvent](s.eventBus, feed)
		events.Forward[events.DeviceChangedEvent](s.eventBus, feed)

		s.pump(ctx, "/api/events", feed, send)
	})
}

// pump sends feed's events to one SSE client until it leaves.
func (s *Server) pump(ctx context.Context, route string, feed *events.Feed, send sse.Sender) {
	defer func() {
		if n := feed.Dropped(); n > 0 {
			s.logger.Debug("SSE client fell behind", "route", route, "dropped", n)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-feed.C:
			if err := send.Data(ev); err != nil {
				return
			}
		}
	}
}
