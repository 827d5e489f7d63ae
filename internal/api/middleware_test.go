package api

import (
	"log/slog"
	"net/http"
	"testing"
)

func TestRequestLevel(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
		want   slog.Level
	}{
		{"preflight", http.MethodOptions, "/api/camera/set", 204, slog.LevelDebug},
		{"control set", http.MethodPost, "/api/camera/set", 200, slog.LevelInfo},
		{"polled status", http.MethodGet, "/api/camera/stream/status", 200, slog.LevelDebug},
		{"snapshot without camera", http.MethodGet, "/api/camera/snapshot", 404, slog.LevelDebug},
		{"snapshot failure", http.MethodGet, "/api/camera/snapshot", 500, slog.LevelError},
		{"stream launch failure", http.MethodGet, "/api/camera/stream", 503, slog.LevelError},
		{"bad request", http.MethodGet, "/api/camera/stream", 422, slog.LevelWarn},
		{"unknown route", http.MethodGet, "/api/nope", 404, slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := requestLevel(tt.method, tt.path, tt.status); got != tt.want {
				t.Errorf("requestLevel = %v, want %v", got, tt.want)
			}
		})
	}
}
