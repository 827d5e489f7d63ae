// Package logging provides slog loggers with per-module levels.
//
// Call Initialize once at startup, then ask for a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"stream": "debug"},
//	})
//
//	logger := logging.GetLogger("stream")
//	logger.Info("Stream started", "session_id", id)
//
// Records go to stdout when a terminal, pipe or file is attached, to the
// systemd journal when journald is running, and to an in-memory History
// that backs the /api/logs endpoint.
//
// Under systemd the logs can be filtered by module:
//
//	journalctl -t camctl MODULE=stream -f
//
// TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	camera = "debug"
package logging
