package camera

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/smazurov/camctl/internal/ffmpeg"
)

// MockDevice keeps control values in memory and streams the ffmpeg test
// pattern. It is used on platforms without a native backend and with
// --mock for UI development.
type MockDevice struct {
	name string

	mu     sync.Mutex
	values map[string]int
	sets   []string
}

// NewMockDevice creates a MockDevice with every control at its default.
func NewMockDevice(name string) *MockDevice {
	m := &MockDevice{name: name}
	m.values = layoutDefaults()
	return m
}

func layoutDefaults() map[string]int {
	values := make(map[string]int)
	for _, section := range DefaultLayout() {
		for _, c := range section.Controls {
			values[c.ID] = c.DefaultValue
		}
	}
	return values
}

func (m *MockDevice) FindDevice(context.Context) (string, error) { return "mock0", nil }

func (m *MockDevice) Invalidate() {}

func (m *MockDevice) DeviceName() string { return m.name }

func (m *MockDevice) CaptureBackend() ffmpeg.InputFormat { return ffmpeg.InputTestSource }

func (m *MockDevice) Layout() []ControlSection { return DefaultLayout() }

func (m *MockDevice) SetProperty(_ context.Context, prop Property, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[prop.String()] = value
	m.sets = append(m.sets, fmt.Sprintf("%s=%d", prop, value))
	return nil
}

// Calls returns the SetProperty calls seen so far as "prop=value".
func (m *MockDevice) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.sets)
}

func (m *MockDevice) GetControls(ctx context.Context) (string, error) {
	values, _ := m.GetControlValues(ctx)
	var b strings.Builder
	for _, prop := range Properties() {
		fmt.Fprintf(&b, "%s: %d\n", prop, values[prop.String()])
	}
	return b.String(), nil
}

func (m *MockDevice) GetControlValues(context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.values), nil
}

func (m *MockDevice) ResetToDefaults(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = layoutDefaults()
	return nil
}

func (m *MockDevice) GetSupportedFormats(context.Context) ([]VideoFormat, error) {
	return []VideoFormat{
		{Codec: "MJPG", Width: 1920, Height: 1080, FPS: 60},
		{Codec: "MJPG", Width: 1920, Height: 1080, FPS: 30},
		{Codec: "MJPG", Width: 1280, Height: 720, FPS: 60},
	}, nil
}
