package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camctl/internal/api/models"
	"github.com/smazurov/camctl/internal/camera"
)

// streamContentType matches the boundary ffmpeg's mpjpeg muxer writes.
const streamContentType = "multipart/x-mixed-replace; boundary=ffserver"

func (s *Server) registerStreamRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "camera-stream",
		Method:      http.MethodGet,
		Path:        "/api/camera/stream",
		Summary:     "Live Stream",
		Description: "MJPEG preview as multipart/x-mixed-replace. Opening a stream ends any other open stream.",
		Tags:        []string{"stream"},
		Errors:      []int{404, 503},
	}, func(ctx context.Context, input *models.StreamRequest) (*huma.StreamResponse, error) {
		device, err := s.options.Device.FindDevice(ctx)
		if err != nil {
			if errors.Is(err, camera.ErrDeviceNotFound) {
				return nil, huma.Error404NotFound(msgCameraNotFound)
			}
			return nil, huma.Error503ServiceUnavailable("Camera unavailable", err)
		}

		// The session is bound to the request, not ctx, which huma may
		// cancel once the handler returns.
		sess, err := s.options.Streams.Start(context.WithoutCancel(ctx), device, input.Width, input.Height, input.FPS)
		if err != nil {
			s.logger.Error("Failed to start stream", "device", device, "error", err)
			return nil, huma.Error503ServiceUnavailable("Failed to start stream", err)
		}

		return &huma.StreamResponse{
			Body: func(hctx huma.Context) {
				hctx.SetHeader("Content-Type", streamContentType)
				hctx.SetHeader("Cache-Control", "no-cache, no-store, must-revalidate")
				hctx.SetHeader("Connection", "close")
				hctx.SetStatus(http.StatusOK)

				w := hctx.BodyWriter()
				flush := func() {}
				if f, ok := w.(http.Flusher); ok {
					flush = f.Flush
				}
				if err := s.options.Streams.Relay(hctx.Context(), sess, w, flush); err != nil {
					s.logger.Warn("Stream relay failed", "session", sess.ID, "error", err)
				}
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "stop-stream",
		Method:      http.MethodPost,
		Path:        "/api/camera/stream/stop",
		Summary:     "Stop Stream",
		Description: "End the live stream if one is running",
		Tags:        []string{"stream"},
	}, func(_ context.Context, _ *struct{}) (*models.ResultResponse, error) {
		s.options.Streams.StopActive()
		return models.Success(""), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "stream-status",
		Method:      http.MethodGet,
		Path:        "/api/camera/stream/status",
		Summary:     "Stream Status",
		Description: "Describe the live stream slot",
		Tags:        []string{"stream"},
	}, func(_ context.Context, _ *struct{}) (*models.StreamStatusResponse, error) {
		return &models.StreamStatusResponse{Body: s.options.Streams.Status()}, nil
	})
}
