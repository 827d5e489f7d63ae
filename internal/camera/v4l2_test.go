package camera

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeExec records every command and answers from a table keyed by the
// joined argument list.
type fakeExec struct {
	mu      sync.Mutex
	calls   []string
	results map[string]Result
	errs    map[string]error
}

func newFakeExec() *fakeExec {
	return &fakeExec{results: make(map[string]Result), errs: make(map[string]error)}
}

func (f *fakeExec) Run(_ context.Context, name string, args ...string) (Result, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return Result{}, err
	}
	return f.results[key], nil
}

func (f *fakeExec) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

const listDevicesOut = `Integrated Camera: Integrated C (usb-0000:00:14.0-8):
	/dev/video0
	/dev/video1
	/dev/media0

Elgato Facecam: Elgato Facecam (usb-0000:00:14.0-2):
	/dev/video2
	/dev/video3
	/dev/media1
`

func newTestV4L2(exe *fakeExec) *V4L2Device {
	d := NewV4L2Device("Elgato Facecam", exe, discard)
	d.sysfs = fstest.MapFS{}
	return d
}

func TestParseListDevices(t *testing.T) {
	tests := []struct {
		name  string
		match string
		want  string
		ok    bool
	}{
		{"second block", "Elgato Facecam", "/dev/video2", true},
		{"case insensitive", "elgato", "/dev/video2", true},
		{"first block", "Integrated", "/dev/video0", true},
		{"no match", "Logitech", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseListDevices(listDevicesOut, tt.match)
			if got != tt.want || ok != tt.ok {
				t.Errorf("parseListDevices(%q) = %q, %v; want %q, %v", tt.match, got, ok, tt.want, tt.ok)
			}
		})
	}
}

const listCtrlsOut = `
User Controls

                     brightness 0x00980900 (int)    : min=-9 max=9 step=1 default=0 value=-2
                       contrast 0x00980901 (int)    : min=0 max=100 step=1 default=80 value=75
        white_balance_automatic 0x0098090c (bool)   : default=1 value=0
      white_balance_temperature 0x0098091a (int)    : min=2800 max=7500 step=10 default=5000 value=4500 flags=inactive

Camera Controls

                  auto_exposure 0x009a0901 (menu)   : min=0 max=3 default=3 value=1 (Manual Mode)
				1: Manual Mode
				3: Aperture Priority Mode
         exposure_time_absolute 0x009a0902 (int)    : min=1 max=2500 step=1 default=156 value=300
                   pan_absolute 0x009a0908 (int)    : min=-2592000 max=2592000 step=3600 default=0 value=-3600
                  zoom_absolute 0x009a090d (int)    : min=100 max=400 step=1 default=100 value=150
`

func TestParseControlValues(t *testing.T) {
	got := parseControlValues(listCtrlsOut)
	want := map[string]int{
		"brightness":                -2,
		"contrast":                  75,
		"white_balance_automatic":   0,
		"white_balance_temperature": 4500,
		"auto_exposure":             1,
		"exposure_time_absolute":    300,
		"pan_absolute":              -3600,
		"zoom_absolute":             150,
	}
	if len(got) != len(want) {
		t.Fatalf("parsed %d controls, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %d, want %d", k, got[k], v)
		}
	}
}

const listFormatsOut = `ioctl: VIDIOC_ENUM_FMT
	Type: Video Capture

	[0]: 'YUYV' (YUYV 4:2:2)
		Size: Discrete 1920x1080
			Interval: Discrete 0.033s (30.000 fps)
		Size: Discrete 1280x720
			Interval: Discrete 0.017s (60.000 fps)
	[1]: 'MJPG' (Motion-JPEG, compressed)
		Size: Discrete 1280x720
			Interval: Discrete 0.017s (60.000 fps)
		Size: Discrete 1920x1080
			Interval: Discrete 0.033s (30.000 fps)
			Interval: Discrete 0.017s (59.940 fps)
			Interval: Discrete 0.017s (60.000 fps)
`

func TestParseFormats(t *testing.T) {
	got := parseFormats(listFormatsOut)
	want := []VideoFormat{
		{Codec: "MJPG", Width: 1920, Height: 1080, FPS: 60},
		{Codec: "MJPG", Width: 1920, Height: 1080, FPS: 30},
		{Codec: "YUYV", Width: 1920, Height: 1080, FPS: 30},
		{Codec: "MJPG", Width: 1280, Height: 720, FPS: 60},
		{Codec: "YUYV", Width: 1280, Height: 720, FPS: 60},
	}
	if !slices.Equal(got, want) {
		t.Errorf("parseFormats =\n%v\nwant\n%v", got, want)
	}
}

func TestFindDevice_ListDevices(t *testing.T) {
	exe := newFakeExec()
	exe.results["v4l2-ctl --list-devices"] = Result{Stdout: listDevicesOut}
	d := newTestV4L2(exe)

	path, err := d.FindDevice(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if path != "/dev/video2" {
		t.Errorf("path = %q, want /dev/video2", path)
	}

	// Cached until invalidated.
	d.FindDevice(context.Background())
	if n := len(exe.Calls()); n != 1 {
		t.Errorf("list-devices ran %d times, want 1", n)
	}

	d.Invalidate()
	d.FindDevice(context.Background())
	if n := len(exe.Calls()); n != 2 {
		t.Errorf("list-devices ran %d times after Invalidate, want 2", n)
	}
}

func TestFindDevice_SysfsFallback(t *testing.T) {
	exe := newFakeExec()
	exe.errs["v4l2-ctl --list-devices"] = errors.New("executable file not found")
	d := newTestV4L2(exe)
	d.sysfs = fstest.MapFS{
		"video0/name":  {Data: []byte("Integrated Camera\n")},
		"video5/name":  {Data: []byte("Elgato Facecam\n")},
		"video3/name":  {Data: []byte("Elgato Facecam\n")},
		"v4l-subdev0":  {Data: []byte("")},
		"video10/name": {Data: []byte("Elgato Facecam\n")},
	}

	path, err := d.FindDevice(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if path != "/dev/video3" {
		t.Errorf("path = %q, want /dev/video3", path)
	}
}

func TestFindDevice_NotFound(t *testing.T) {
	exe := newFakeExec()
	exe.results["v4l2-ctl --list-devices"] = Result{Stdout: listDevicesOut}
	d := NewV4L2Device("Logitech", exe, discard)
	d.sysfs = fstest.MapFS{}

	_, err := d.FindDevice(context.Background())
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestSetProperty_Commands(t *testing.T) {
	tests := []struct {
		prop  Property
		value int
		want  []string
	}{
		{Zoom, 150, []string{"v4l2-ctl -d /dev/video2 --set-ctrl=zoom_absolute=150"}},
		{Pan, -3600, []string{"v4l2-ctl -d /dev/video2 --set-ctrl=pan_absolute=-3600"}},
		{Exposure, 300, []string{
			"v4l2-ctl -d /dev/video2 --set-ctrl=auto_exposure=1",
			"v4l2-ctl -d /dev/video2 --set-ctrl=exposure_time_absolute=300",
		}},
		{WhiteBalance, 4500, []string{
			"v4l2-ctl -d /dev/video2 --set-ctrl=white_balance_automatic=0",
			"v4l2-ctl -d /dev/video2 --set-ctrl=white_balance_temperature=4500",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.prop.String(), func(t *testing.T) {
			exe := newFakeExec()
			exe.results["v4l2-ctl --list-devices"] = Result{Stdout: listDevicesOut}
			d := newTestV4L2(exe)

			if err := d.SetProperty(context.Background(), tt.prop, tt.value); err != nil {
				t.Fatal(err)
			}
			got := exe.Calls()[1:]
			if !slices.Equal(got, tt.want) {
				t.Errorf("commands = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetProperty_Unknown(t *testing.T) {
	exe := newFakeExec()
	d := newTestV4L2(exe)

	err := d.SetProperty(context.Background(), Property(99), 1)
	if !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("err = %v, want ErrUnknownProperty", err)
	}
	if calls := exe.Calls(); len(calls) != 0 {
		t.Errorf("unknown property ran commands: %q", calls)
	}
}

func TestSetProperty_CommandFailure(t *testing.T) {
	exe := newFakeExec()
	exe.results["v4l2-ctl --list-devices"] = Result{Stdout: listDevicesOut}
	exe.results["v4l2-ctl -d /dev/video2 --set-ctrl=zoom_absolute=999"] = Result{ExitCode: 1, Stderr: "VIDIOC_S_EXT_CTRLS: failed: Numerical result out of range"}
	d := newTestV4L2(exe)

	err := d.SetProperty(context.Background(), Zoom, 999)
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("err = %v, want CommandError", err)
	}
	if cmdErr.ExitCode != 1 || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestResetToDefaults_SingleCommand(t *testing.T) {
	exe := newFakeExec()
	exe.results["v4l2-ctl --list-devices"] = Result{Stdout: listDevicesOut}
	d := newTestV4L2(exe)

	if err := d.ResetToDefaults(context.Background()); err != nil {
		t.Fatal(err)
	}
	calls := exe.Calls()
	if len(calls) != 2 {
		t.Fatalf("calls = %q, want list-devices plus one reset", calls)
	}
	reset := calls[1]
	for _, want := range []string{"zoom_absolute=100", "pan_absolute=0", "white_balance_automatic=1", "auto_exposure=3"} {
		if !strings.Contains(reset, want) {
			t.Errorf("reset command %q missing %s", reset, want)
		}
	}
}

func TestGetControlValues(t *testing.T) {
	exe := newFakeExec()
	exe.results["v4l2-ctl --list-devices"] = Result{Stdout: listDevicesOut}
	exe.results["v4l2-ctl -d /dev/video2 -L"] = Result{Stdout: listCtrlsOut}
	d := newTestV4L2(exe)

	values, err := d.GetControlValues(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{
		"zoom": 150, "pan": -3600, "exposure": 300,
		"white_balance": 4500, "brightness": -2, "contrast": 75,
	}
	for k, v := range want {
		if got, ok := values[k]; !ok || got != v {
			t.Errorf("%s = %d (present %v), want %d", k, got, ok, v)
		}
	}
	if _, ok := values["tilt"]; ok {
		t.Error("tilt reported although the camera does not expose it")
	}
}

func TestGetSupportedFormats(t *testing.T) {
	exe := newFakeExec()
	exe.results["v4l2-ctl --list-devices"] = Result{Stdout: listDevicesOut}
	exe.results["v4l2-ctl -d /dev/video2 --list-formats-ext"] = Result{Stdout: listFormatsOut}
	d := newTestV4L2(exe)

	formats, err := d.GetSupportedFormats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(formats) == 0 || formats[0] != (VideoFormat{Codec: "MJPG", Width: 1920, Height: 1080, FPS: 60}) {
		t.Errorf("formats = %v", formats)
	}
}
