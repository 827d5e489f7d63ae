package camera

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/smazurov/camctl/internal/ffmpeg"
	"github.com/smazurov/camctl/internal/logging"
)

const v4l2ctl = "v4l2-ctl"

// v4l2Control is the v4l2 control name for a property plus any control
// that must be switched first for the value to take effect.
type v4l2Control struct {
	name     string
	before   string
	beforeTo int
}

var v4l2Controls = map[Property]v4l2Control{
	Zoom:         {name: "zoom_absolute"},
	Exposure:     {name: "exposure_time_absolute", before: "auto_exposure", beforeTo: 1},
	Gain:         {name: "gain"},
	WhiteBalance: {name: "white_balance_temperature", before: "white_balance_automatic", beforeTo: 0},
	Brightness:   {name: "brightness"},
	Contrast:     {name: "contrast"},
	Saturation:   {name: "saturation"},
	Sharpness:    {name: "sharpness"},
	Pan:          {name: "pan_absolute"},
	Tilt:         {name: "tilt_absolute"},
}

// v4l2Defaults are written by ResetToDefaults. Auto white balance and
// aperture-priority exposure are restored along with the manual values.
var v4l2Defaults = []struct {
	name  string
	value int
}{
	{"brightness", 0},
	{"contrast", 80},
	{"saturation", 64},
	{"sharpness", 128},
	{"gain", 0},
	{"white_balance_automatic", 1},
	{"auto_exposure", 3},
	{"zoom_absolute", 100},
	{"pan_absolute", 0},
	{"tilt_absolute", 0},
}

// V4L2Device drives a UVC camera with v4l2-ctl.
type V4L2Device struct {
	match  string
	exec   Executor
	sysfs  fs.FS
	logger logging.Logger

	mu   sync.Mutex
	path string
}

// NewV4L2Device creates a V4L2Device that locates the camera whose name
// contains match.
func NewV4L2Device(match string, exe Executor, logger logging.Logger) *V4L2Device {
	return &V4L2Device{
		match:  match,
		exec:   exe,
		sysfs:  os.DirFS("/sys/class/video4linux"),
		logger: logger,
	}
}

func (d *V4L2Device) DeviceName() string { return d.match }

func (d *V4L2Device) CaptureBackend() ffmpeg.InputFormat { return ffmpeg.InputV4L2 }

func (d *V4L2Device) Layout() []ControlSection { return DefaultLayout() }

func (d *V4L2Device) Invalidate() {
	d.mu.Lock()
	d.path = ""
	d.mu.Unlock()
}

// FindDevice asks v4l2-ctl for the device list and falls back to the
// sysfs names when v4l2-ctl is missing or lists nothing that matches.
func (d *V4L2Device) FindDevice(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.path != "" {
		return d.path, nil
	}

	out, err := run(ctx, d.exec, v4l2ctl, "--list-devices")
	if err != nil {
		d.logger.Debug("v4l2-ctl --list-devices failed, trying sysfs", "error", err)
	}
	// --list-devices exits non-zero when some nodes cannot be opened but
	// still prints the ones it could.
	if path, ok := parseListDevices(out, d.match); ok {
		d.path = path
		d.logger.Info("Camera found", "name", d.match, "device", path)
		return path, nil
	}

	if path, ok := d.scanSysfs(); ok {
		d.path = path
		d.logger.Info("Camera found via sysfs", "name", d.match, "device", path)
		return path, nil
	}

	return "", fmt.Errorf("%w: %s", ErrDeviceNotFound, d.match)
}

// scanSysfs returns the lowest-numbered videoN whose name matches.
func (d *V4L2Device) scanSysfs() (string, bool) {
	entries, err := fs.ReadDir(d.sysfs, ".")
	if err != nil {
		return "", false
	}

	best, bestIdx := "", -1
	match := strings.ToLower(d.match)
	for _, e := range entries {
		idx, ok := videoIndex(e.Name())
		if !ok {
			continue
		}
		name, err := fs.ReadFile(d.sysfs, e.Name()+"/name")
		if err != nil || !strings.Contains(strings.ToLower(string(name)), match) {
			continue
		}
		if bestIdx < 0 || idx < bestIdx {
			best, bestIdx = e.Name(), idx
		}
	}
	if bestIdx < 0 {
		return "", false
	}
	return "/dev/" + best, true
}

func videoIndex(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "video")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	return n, err == nil
}

func (d *V4L2Device) SetProperty(ctx context.Context, prop Property, value int) error {
	ctrl, ok := v4l2Controls[prop]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProperty, prop)
	}
	path, err := d.FindDevice(ctx)
	if err != nil {
		return err
	}

	if ctrl.before != "" {
		if err := d.setCtrl(ctx, path, fmt.Sprintf("%s=%d", ctrl.before, ctrl.beforeTo)); err != nil {
			return fmt.Errorf("set %s: %w", ctrl.before, err)
		}
	}
	if err := d.setCtrl(ctx, path, fmt.Sprintf("%s=%d", ctrl.name, value)); err != nil {
		return fmt.Errorf("set %s: %w", ctrl.name, err)
	}
	d.logger.Debug("Control set", "device", path, "control", ctrl.name, "value", value)
	return nil
}

func (d *V4L2Device) setCtrl(ctx context.Context, path, assignment string) error {
	_, err := run(ctx, d.exec, v4l2ctl, "-d", path, "--set-ctrl="+assignment)
	return err
}

// GetControls returns the raw v4l2-ctl -L listing.
func (d *V4L2Device) GetControls(ctx context.Context) (string, error) {
	path, err := d.FindDevice(ctx)
	if err != nil {
		return "", err
	}
	return run(ctx, d.exec, v4l2ctl, "-d", path, "-L")
}

// GetControlValues returns current values keyed by property id. Controls
// the camera does not expose are omitted.
func (d *V4L2Device) GetControlValues(ctx context.Context) (map[string]int, error) {
	raw, err := d.GetControls(ctx)
	if err != nil {
		return nil, err
	}
	byCtrl := parseControlValues(raw)

	values := make(map[string]int, len(v4l2Controls))
	for prop, ctrl := range v4l2Controls {
		if v, ok := byCtrl[ctrl.name]; ok {
			values[prop.String()] = v
		}
	}
	return values, nil
}

// ResetToDefaults writes every default in one v4l2-ctl call.
func (d *V4L2Device) ResetToDefaults(ctx context.Context) error {
	path, err := d.FindDevice(ctx)
	if err != nil {
		return err
	}

	assignments := make([]string, len(v4l2Defaults))
	for i, def := range v4l2Defaults {
		assignments[i] = fmt.Sprintf("%s=%d", def.name, def.value)
	}
	if err := d.setCtrl(ctx, path, strings.Join(assignments, ",")); err != nil {
		return fmt.Errorf("reset controls: %w", err)
	}
	d.logger.Info("Controls reset to defaults", "device", path)
	return nil
}

func (d *V4L2Device) GetSupportedFormats(ctx context.Context) ([]VideoFormat, error) {
	path, err := d.FindDevice(ctx)
	if err != nil {
		return nil, err
	}
	out, err := run(ctx, d.exec, v4l2ctl, "-d", path, "--list-formats-ext")
	if err != nil {
		return nil, err
	}
	return parseFormats(out), nil
}
