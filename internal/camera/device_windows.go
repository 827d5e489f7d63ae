package camera

import "github.com/smazurov/camctl/internal/logging"

func newPlatformDevice(cfg Config, logger logging.Logger) Device {
	return NewDShowDevice(cfg.MatchName, NewMediaFoundationBinder(), logger)
}
