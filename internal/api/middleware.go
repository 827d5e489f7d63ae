package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camctl/internal/logging"
)

// Routes the UI polls while open.
var polledPaths = map[string]bool{
	"/api/camera/snapshot":      true,
	"/api/camera/stream/status": true,
}

// Routes that hold the connection open; they log once the client leaves.
var streamingPaths = map[string]bool{
	"/api/camera/stream": true,
	"/api/events":        true,
	"/api/logs":          true,
	"/api/metrics":       true,
}

// requestLevel picks the log level for a finished request.
func requestLevel(method, path string, status int) slog.Level {
	switch {
	case method == http.MethodOptions:
		return slog.LevelDebug
	case status >= 500:
		return slog.LevelError
	case method == http.MethodGet && polledPaths[path]:
		// A 404 snapshot only means no camera is attached.
		return slog.LevelDebug
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// HTTPLoggingMiddleware logs every request once it completes.
func HTTPLoggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()
	logger := logging.GetLogger("api")

	method := ctx.Method()
	path := ctx.URL().Path

	attrs := []slog.Attr{
		slog.String("method", method),
		slog.String("path", path),
		slog.String("remote_addr", ctx.RemoteAddr()),
	}
	if query := ctx.URL().RawQuery; query != "" {
		attrs = append(attrs, slog.String("query", query))
	}
	if ua := ctx.Header("User-Agent"); ua != "" {
		attrs = append(attrs, slog.String("user_agent", ua))
	}

	next(ctx)

	status := ctx.Status()
	attrs = append(attrs,
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
	)

	message := "HTTP request completed"
	if streamingPaths[path] {
		message = "HTTP stream closed"
	}
	logger.LogAttrs(ctx.Context(), requestLevel(method, path, status), message, attrs...)
}
