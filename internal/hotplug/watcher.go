package hotplug

import (
	"context"
	"time"

	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/logging"
	"github.com/smazurov/camctl/internal/metrics"
)

// Source produces uevents. *Monitor is the production Source.
type Source interface {
	Run(ctx context.Context, out chan<- Event) error
}

// Invalidator drops a cached device handle. camera.Device satisfies it.
type Invalidator interface {
	Invalidate()
}

// Watcher turns video4linux add/remove uevents into a device cache flush
// and a DeviceChangedEvent.
type Watcher struct {
	source Source
	device Invalidator
	bus    *events.Bus
	logger logging.Logger
}

// NewWatcher creates a Watcher. bus may be nil.
func NewWatcher(source Source, device Invalidator, bus *events.Bus, logger logging.Logger) *Watcher {
	return &Watcher{source: source, device: device, bus: bus, logger: logger}
}

// Run blocks until ctx is done or the source fails.
func (w *Watcher) Run(ctx context.Context) error {
	ch := make(chan Event, 16)
	errCh := make(chan error, 1)
	go func() { errCh <- w.source.Run(ctx, ch) }()

	for ev := range ch {
		w.handle(ev)
	}
	return <-errCh
}

func (w *Watcher) handle(ev Event) {
	if ev.Subsystem != SubsystemVideo4Linux {
		return
	}
	if ev.Action != ActionAdd && ev.Action != ActionRemove {
		return
	}

	w.logger.Info("Video device changed", "action", ev.Action, "device", ev.DevNode())
	w.device.Invalidate()
	metrics.RecordDeviceEvent(ev.Action)
	w.bus.Publish(events.DeviceChangedEvent{
		Action:    ev.Action,
		Device:    ev.DevNode(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
