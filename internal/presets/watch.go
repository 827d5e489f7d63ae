package presets

import (
	"time"

	"github.com/smazurov/camctl/internal/config"
	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/logging"
)

// Watch reloads the store whenever its file changes on disk and publishes
// PresetsReloadedEvent. A file that fails to parse leaves the store as is.
func Watch(s *Store, bus *events.Bus, logger logging.Logger) (*config.Watcher[map[string]State], error) {
	w := config.NewWatcher(s.path, ReadFile, logger)
	w.OnReload(func(presets map[string]State) {
		s.Replace(presets)
		logger.Info("Presets reloaded", "path", s.path, "count", len(presets))
		bus.Publish(events.PresetsReloadedEvent{
			Count:     len(presets),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	})
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}
