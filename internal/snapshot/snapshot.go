// Package snapshot turns relayed JPEG frames into still images on disk.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/image/draw"
)

// ErrNoFrame is returned when there is no live frame to capture.
var ErrNoFrame = errors.New("no live frame")

// Decode parses one JPEG frame.
func Decode(frame []byte) (image.Image, error) {
	if len(frame) == 0 {
		return nil, ErrNoFrame
	}
	img, err := jpeg.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}

// Scale resizes img to width, keeping the aspect ratio. A width of zero or
// one not smaller than the source returns img unchanged.
func Scale(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || width >= b.Dx() {
		return img
	}
	height := max(1, b.Dy()*width/b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Thumbnail returns frame re-encoded as a JPEG no wider than width. The
// frame is returned as is when no scaling is needed.
func Thumbnail(frame []byte, width int) ([]byte, error) {
	if width <= 0 {
		return frame, nil
	}
	img, err := Decode(frame)
	if err != nil {
		return nil, err
	}
	scaled := Scale(img, width)
	if scaled == img {
		return frame, nil
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Folder returns the user's Pictures directory, or the home directory when
// it does not exist.
func Folder() string {
	if fi, err := os.Stat(xdg.UserDirs.Pictures); err == nil && fi.IsDir() {
		return xdg.UserDirs.Pictures
	}
	return xdg.Home
}

// Saver writes PNG snapshots into a directory.
type Saver struct {
	dir string
	now func() time.Time
}

// NewSaver creates a Saver for dir, or the Pictures folder when dir is
// empty.
func NewSaver(dir string) *Saver {
	if dir == "" {
		dir = xdg.UserDirs.Pictures
	}
	return &Saver{dir: dir, now: time.Now}
}

// Dir returns the directory snapshots are written to.
func (s *Saver) Dir() string { return s.dir }

// Save decodes frame and writes it as snapshot_YYYYMMDD_HHMMSS.png,
// returning the file path.
func (s *Saver) Save(frame []byte) (string, error) {
	img, err := Decode(frame)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := "snapshot_" + s.now().Format("20060102_150405") + ".png"
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
