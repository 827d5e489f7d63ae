//go:build !linux && !windows

package camera

import "github.com/smazurov/camctl/internal/logging"

func newPlatformDevice(cfg Config, logger logging.Logger) Device {
	logger.Warn("No camera backend for this platform, using mock device")
	return NewMockDevice(cfg.MatchName)
}
