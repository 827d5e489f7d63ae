// Package cmd holds the camctl subcommands other than the server.
package cmd

import (
	"github.com/smazurov/camctl/internal/camera"
	"github.com/smazurov/camctl/internal/presets"
	"github.com/smazurov/camctl/internal/updater"
)

// Env gives subcommands the collaborators built from the parsed options.
// The functions are called after flags and the config file are loaded.
type Env struct {
	Device  func() camera.Device
	Presets func() *presets.Store
	Updater func() (updater.Service, error)
}
