//go:build !linux

package hotplug

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by NewMonitor outside Linux.
var ErrUnsupported = errors.New("hotplug monitoring requires linux")

// Monitor is unavailable on this platform.
type Monitor struct{}

// NewMonitor always fails with ErrUnsupported.
func NewMonitor() (*Monitor, error) { return nil, ErrUnsupported }

func (m *Monitor) Close() error { return nil }

func (m *Monitor) Run(_ context.Context, out chan<- Event) error {
	close(out)
	return ErrUnsupported
}
