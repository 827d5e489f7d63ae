package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/smazurov/camctl/internal/capture"
	"github.com/smazurov/camctl/internal/ffmpeg"
)

// ErrStreamActive is returned by Grab while a live stream holds the camera.
var ErrStreamActive = errors.New("stream active")

// Grab captures one JPEG frame from device with a short ffmpeg run. It
// refuses while a session is active, since the camera can only be opened
// once; callers should use the live frame cache then.
func (m *Manager) Grab(ctx context.Context, device string, width, height, fps int) ([]byte, error) {
	if device == "" || width <= 0 || height <= 0 || fps <= 0 {
		return nil, fmt.Errorf("%w: device=%q %dx%d@%d", ErrInvalidParams, device, width, height, fps)
	}

	m.startMu.Lock()
	defer m.startMu.Unlock()

	if m.ActiveID() != "" {
		return nil, ErrStreamActive
	}

	frame, err := capture.Frame(ctx, ffmpeg.Params{
		Binary: m.cfg.Binary,
		Input:  m.cfg.Input,
		Device: device,
		Width:  width,
		Height: height,
		FPS:    fps,
	})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("Grabbed still frame", "device", device, "bytes", len(frame))
	return frame, nil
}
