package camera

import "github.com/smazurov/camctl/internal/logging"

func newPlatformDevice(cfg Config, logger logging.Logger) Device {
	return NewV4L2Device(cfg.MatchName, ExecRunner{Timeout: cfg.Timeout}, logger)
}
