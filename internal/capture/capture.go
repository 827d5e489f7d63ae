// Package capture grabs a single still frame from the camera with a
// short-lived ffmpeg run, for snapshots taken while no preview is open.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/smazurov/camctl/internal/ffmpeg"
	"github.com/smazurov/camctl/internal/mjpeg"
)

// Timeout bounds one grab when ctx has no earlier deadline. Cameras need a
// moment after open before the first frame arrives.
const Timeout = 10 * time.Second

// ErrNoFrame is returned when ffmpeg exited without producing a JPEG.
var ErrNoFrame = errors.New("capture produced no frame")

// Frame runs ffmpeg for one frame with p and returns it as JPEG bytes.
// p.Frames is forced to 1.
func Frame(ctx context.Context, p ffmpeg.Params) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	p.Frames = 1
	argv := ffmpeg.BuildArgs(p)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}

	var frame []byte
	var ex mjpeg.Extractor
	ex.ProcessChunk(stdout.Bytes(), func(f []byte) {
		if frame == nil {
			frame = f
		}
	})
	if frame == nil {
		return nil, ErrNoFrame
	}
	return frame, nil
}
