package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camctl/internal/api/models"
	"github.com/smazurov/camctl/internal/camera"
	"github.com/smazurov/camctl/internal/snapshot"
)

// liveFrameAge is how old the cached frame may be and still count as live.
const liveFrameAge = 2 * time.Second

// Capture mode for stills taken while no stream is running.
const (
	grabWidth  = 1920
	grabHeight = 1080
	grabFPS    = 30
)

// currentFrame returns the live frame when a stream is running, and
// otherwise grabs one from the camera.
func (s *Server) currentFrame(ctx context.Context) ([]byte, error) {
	if frame, _, ok := s.options.Frames.Latest(liveFrameAge); ok {
		return frame, nil
	}
	if s.options.Streams.ActiveID() != "" {
		return nil, errNoLiveFrame
	}
	device, err := s.options.Device.FindDevice(ctx)
	if err != nil {
		return nil, err
	}
	return s.options.Streams.Grab(ctx, device, grabWidth, grabHeight, grabFPS)
}

var errNoLiveFrame = errors.New("stream has not produced a frame yet")

func (s *Server) registerSnapshotRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-snapshot",
		Method:      http.MethodGet,
		Path:        "/api/camera/snapshot",
		Summary:     "Snapshot",
		Description: "Latest frame of the live stream as JPEG, optionally scaled down. Without a stream a single frame is captured.",
		Tags:        []string{"snapshots"},
		Errors:      []int{404, 500},
	}, func(ctx context.Context, input *models.SnapshotRequest) (*models.SnapshotResponse, error) {
		frame, err := s.currentFrame(ctx)
		if err != nil {
			if errors.Is(err, camera.ErrDeviceNotFound) {
				return nil, huma.Error404NotFound(msgCameraNotFound)
			}
			return nil, huma.Error404NotFound("No frame available", err)
		}
		data, err := snapshot.Thumbnail(frame, input.Width)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to encode snapshot", err)
		}
		return &models.SnapshotResponse{
			ContentType:  "image/jpeg",
			CacheControl: "no-store",
			Body:         data,
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "save-snapshot",
		Method:      http.MethodPost,
		Path:        "/api/camera/snapshot/save",
		Summary:     "Save Snapshot",
		Description: "Write the latest frame as PNG to the snapshots folder",
		Tags:        []string{"snapshots"},
	}, func(ctx context.Context, _ *struct{}) (*models.SnapshotSaveResponse, error) {
		frame, err := s.currentFrame(ctx)
		if err != nil {
			return &models.SnapshotSaveResponse{Body: models.SnapshotSaveData{Message: failureMessage(err)}}, nil
		}
		path, err := s.options.Snapshots.Save(frame)
		if err != nil {
			s.logger.Warn("Failed to save snapshot", "error", err)
			return &models.SnapshotSaveResponse{Body: models.SnapshotSaveData{Message: err.Error()}}, nil
		}
		s.logger.Info("Snapshot saved", "path", path)
		return &models.SnapshotSaveResponse{Body: models.SnapshotSaveData{Success: true, Path: path}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "open-snapshot-folder",
		Method:      http.MethodGet,
		Path:        "/api/screenshots/open-folder",
		Summary:     "Open Snapshot Folder",
		Description: "Show the snapshots folder in the desktop file manager",
		Tags:        []string{"snapshots"},
	}, func(_ context.Context, _ *struct{}) (*models.OpenFolderResponse, error) {
		folder, err := snapshot.OpenFolder(s.options.Snapshots.Dir())
		if err != nil {
			s.logger.Warn("Failed to open snapshot folder", "folder", folder, "error", err)
			return &models.OpenFolderResponse{Body: models.OpenFolderData{Error: err.Error()}}, nil
		}
		return &models.OpenFolderResponse{Body: models.OpenFolderData{Success: true, Folder: folder}}, nil
	})
}
