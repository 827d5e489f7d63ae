//go:build !windows

package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smazurov/camctl/internal/ffmpeg"
)

func script(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func params(bin string) ffmpeg.Params {
	return ffmpeg.Params{Binary: bin, Device: "/dev/video0", Width: 640, Height: 480, FPS: 30}
}

func TestFrame_FirstJPEG(t *testing.T) {
	bin := script(t, `printf 'noise\377\330first\377\331\377\330second\377\331'`)

	frame, err := Frame(context.Background(), params(bin))
	if err != nil {
		t.Fatal(err)
	}
	if string(frame) != "\xff\xd8first\xff\xd9" {
		t.Errorf("frame = %q", frame)
	}
}

func TestFrame_SingleFrameArgs(t *testing.T) {
	// The script echoes its arguments back inside a JPEG envelope.
	bin := script(t, `printf '\377\330'; printf '%s ' "$@"; printf '\377\331'`)

	frame, err := Frame(context.Background(), params(bin))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(frame), "-frames:v 1 -f mjpeg") {
		t.Errorf("args = %q, want a single mjpeg frame", frame)
	}
}

func TestFrame_NoFrame(t *testing.T) {
	bin := script(t, `printf 'nothing here'`)

	if _, err := Frame(context.Background(), params(bin)); !errors.Is(err, ErrNoFrame) {
		t.Errorf("err = %v, want ErrNoFrame", err)
	}
}

func TestFrame_StderrInError(t *testing.T) {
	bin := script(t, `echo "Device or resource busy" >&2; exit 1`)

	_, err := Frame(context.Background(), params(bin))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "resource busy") {
		t.Errorf("err = %v, want stderr text", err)
	}
}

func TestFrame_MissingBinary(t *testing.T) {
	if _, err := Frame(context.Background(), params("/nonexistent/ffmpeg")); err == nil {
		t.Fatal("expected error")
	}
}
