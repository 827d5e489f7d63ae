package camera

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/smazurov/camctl/internal/ffmpeg"
	"github.com/smazurov/camctl/internal/logging"
)

// ControlInterface selects which COM interface a property lives on.
type ControlInterface int

// COM control interfaces.
const (
	CameraControlInterface ControlInterface = iota // IAMCameraControl
	VideoProcAmpInterface                          // IAMVideoProcAmp
)

// Property ids from strmif.h.
const (
	cameraControlPan      int32 = 0
	cameraControlTilt     int32 = 1
	cameraControlZoom     int32 = 3
	cameraControlExposure int32 = 4

	videoProcAmpBrightness   int32 = 0
	videoProcAmpContrast     int32 = 1
	videoProcAmpSaturation   int32 = 3
	videoProcAmpSharpness    int32 = 4
	videoProcAmpWhiteBalance int32 = 7
	videoProcAmpGain         int32 = 9
)

// Filter is a bound capture source exposing the camera-control and
// video-proc-amp property sets.
type Filter interface {
	FriendlyName() string
	Get(iface ControlInterface, id int32) (int32, error)
	Set(iface ControlInterface, id, value int32) error
	Close() error
}

// FilterBinder finds a capture source whose friendly name contains match.
type FilterBinder interface {
	Bind(ctx context.Context, match string) (Filter, error)
}

type comControl struct {
	iface ControlInterface
	id    int32
}

var comControls = map[Property]comControl{
	Zoom:         {CameraControlInterface, cameraControlZoom},
	Pan:          {CameraControlInterface, cameraControlPan},
	Tilt:         {CameraControlInterface, cameraControlTilt},
	Exposure:     {CameraControlInterface, cameraControlExposure},
	Brightness:   {VideoProcAmpInterface, videoProcAmpBrightness},
	Contrast:     {VideoProcAmpInterface, videoProcAmpContrast},
	Saturation:   {VideoProcAmpInterface, videoProcAmpSaturation},
	Sharpness:    {VideoProcAmpInterface, videoProcAmpSharpness},
	WhiteBalance: {VideoProcAmpInterface, videoProcAmpWhiteBalance},
	Gain:         {VideoProcAmpInterface, videoProcAmpGain},
}

// dshowFormats is what the DirectShow pin is opened with; the filter does
// not enumerate capabilities.
var dshowFormats = []VideoFormat{
	{Codec: "MJPG", Width: 1920, Height: 1080, FPS: 60},
	{Codec: "MJPG", Width: 1280, Height: 720, FPS: 60},
	{Codec: "YUYV", Width: 1920, Height: 1080, FPS: 30},
}

// DShowDevice controls the camera through a COM filter.
type DShowDevice struct {
	match  string
	binder FilterBinder
	logger logging.Logger

	mu     sync.Mutex
	filter Filter
}

// NewDShowDevice creates a DShowDevice.
func NewDShowDevice(match string, binder FilterBinder, logger logging.Logger) *DShowDevice {
	return &DShowDevice{match: match, binder: binder, logger: logger}
}

func (d *DShowDevice) DeviceName() string { return d.match }

func (d *DShowDevice) CaptureBackend() ffmpeg.InputFormat { return ffmpeg.InputDShow }

func (d *DShowDevice) Layout() []ControlSection { return DefaultLayout() }

func (d *DShowDevice) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.filter != nil {
		d.filter.Close()
		d.filter = nil
	}
}

// FindDevice binds the filter on first use and returns its friendly name,
// which is what ffmpeg's dshow input expects.
func (d *DShowDevice) FindDevice(ctx context.Context) (string, error) {
	f, err := d.bound(ctx)
	if err != nil {
		return "", err
	}
	return f.FriendlyName(), nil
}

func (d *DShowDevice) bound(ctx context.Context) (Filter, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.filter != nil {
		return d.filter, nil
	}
	f, err := d.binder.Bind(ctx, d.match)
	if err != nil {
		return nil, err
	}
	d.filter = f
	d.logger.Info("Camera bound", "name", f.FriendlyName())
	return f, nil
}

func (d *DShowDevice) SetProperty(ctx context.Context, prop Property, value int) error {
	ctrl, ok := comControls[prop]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProperty, prop)
	}
	f, err := d.bound(ctx)
	if err != nil {
		return err
	}
	if err := f.Set(ctrl.iface, ctrl.id, int32(value)); err != nil {
		return fmt.Errorf("set %s: %w", prop, err)
	}
	return nil
}

// GetControls renders the current values as "name: value" lines.
func (d *DShowDevice) GetControls(ctx context.Context) (string, error) {
	values, err := d.GetControlValues(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, prop := range Properties() {
		if v, ok := values[prop.String()]; ok {
			fmt.Fprintf(&b, "%s: %d\n", prop, v)
		}
	}
	return b.String(), nil
}

func (d *DShowDevice) GetControlValues(ctx context.Context) (map[string]int, error) {
	f, err := d.bound(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string]int, len(comControls))
	for prop, ctrl := range comControls {
		v, err := f.Get(ctrl.iface, ctrl.id)
		if err != nil {
			d.logger.Debug("Control not readable", "control", prop.String(), "error", err)
			continue
		}
		values[prop.String()] = int(v)
	}
	return values, nil
}

// ResetToDefaults is a no-op: the filter exposes no persistent defaults
// beyond what the driver restores on replug.
func (d *DShowDevice) ResetToDefaults(context.Context) error {
	return nil
}

func (d *DShowDevice) GetSupportedFormats(context.Context) ([]VideoFormat, error) {
	out := make([]VideoFormat, len(dshowFormats))
	copy(out, dshowFormats)
	return out, nil
}
