// Package camera controls a single USB webcam through the platform's
// native tooling: v4l2-ctl on Linux and the DirectShow camera-control COM
// interfaces on Windows. Other platforms get an in-memory mock.
package camera

import (
	"context"
	"errors"
	"time"

	"github.com/smazurov/camctl/internal/ffmpeg"
	"github.com/smazurov/camctl/internal/logging"
)

// DefaultMatchName selects the camera when no name is configured.
const DefaultMatchName = "Elgato Facecam"

var (
	// ErrDeviceNotFound means no attached camera matched the configured name.
	ErrDeviceNotFound = errors.New("camera not found")
	// ErrUnknownProperty means a control name did not map to a Property.
	ErrUnknownProperty = errors.New("unknown camera property")
	// ErrUnsupported means the platform cannot perform the operation.
	ErrUnsupported = errors.New("not supported on this platform")
)

// CameraControl describes the valid range of one adjustable property.
type CameraControl struct {
	ID           string `json:"id" example:"zoom" doc:"Control identifier used with /api/camera/set"`
	Label        string `json:"label" example:"Zoom" doc:"Display label"`
	Min          int    `json:"min" example:"100" doc:"Minimum value"`
	Max          int    `json:"max" example:"400" doc:"Maximum value"`
	Step         int    `json:"step" example:"1" doc:"Slider step"`
	DefaultValue int    `json:"defaultValue" example:"100" doc:"Hardware default"`
	Unit         string `json:"unit,omitempty" example:"%" doc:"Display unit"`
}

// ControlSection is a titled group of controls.
type ControlSection struct {
	Title    string          `json:"title" example:"Frame" doc:"Section title"`
	ID       string          `json:"id" example:"frame" doc:"Section identifier"`
	Controls []CameraControl `json:"controls" doc:"Controls in display order"`
}

// VideoFormat is one capture mode the camera offers.
type VideoFormat struct {
	Codec  string `json:"codec" example:"MJPG" doc:"FourCC"`
	Width  int    `json:"width" example:"1920" doc:"Frame width"`
	Height int    `json:"height" example:"1080" doc:"Frame height"`
	FPS    int    `json:"fps" example:"60" doc:"Frames per second"`
}

// Device is the platform capability set. One implementation is chosen by
// New at startup and shared by everything else.
type Device interface {
	// FindDevice resolves and caches the OS handle for the camera: a
	// /dev/videoN path on Linux, the friendly name on Windows.
	FindDevice(ctx context.Context) (string, error)
	// Invalidate drops the cached handle, e.g. after a hotplug event.
	Invalidate()
	// DeviceName is the configured match name.
	DeviceName() string
	// CaptureBackend is the ffmpeg input used to stream from this device.
	CaptureBackend() ffmpeg.InputFormat

	SetProperty(ctx context.Context, prop Property, value int) error
	GetControls(ctx context.Context) (string, error)
	GetControlValues(ctx context.Context) (map[string]int, error)
	ResetToDefaults(ctx context.Context) error
	GetSupportedFormats(ctx context.Context) ([]VideoFormat, error)
	Layout() []ControlSection
}

// Config selects and tunes the Device returned by New.
type Config struct {
	MatchName string
	Timeout   time.Duration
	Mock      bool
}

// New returns the Device for this platform, or the mock when cfg.Mock is set.
func New(cfg Config, logger logging.Logger) Device {
	if cfg.MatchName == "" {
		cfg.MatchName = DefaultMatchName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Mock {
		return NewMockDevice(cfg.MatchName)
	}
	return newPlatformDevice(cfg, logger)
}
