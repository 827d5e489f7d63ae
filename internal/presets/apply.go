package presets

import (
	"context"
	"fmt"

	"github.com/smazurov/camctl/internal/camera"
)

// Step is one control write of a preset move.
type Step struct {
	Property camera.Property
	Value    int
}

// Steps returns the writes that move the camera to state, zoom first, then
// pan and tilt.
func (s State) Steps() []Step {
	return []Step{
		{camera.Zoom, s.Zoom},
		{camera.Pan, s.Pan},
		{camera.Tilt, s.Tilt},
	}
}

// Apply issues state.Steps in order. It stops at the first control that
// fails.
func Apply(ctx context.Context, dev camera.Device, state State) error {
	for _, step := range state.Steps() {
		if err := dev.SetProperty(ctx, step.Property, step.Value); err != nil {
			return fmt.Errorf("apply %s: %w", step.Property, err)
		}
	}
	return nil
}

// FromValues picks the preset fields out of a control value map.
func FromValues(values map[string]int) State {
	return State{Zoom: values["zoom"], Pan: values["pan"], Tilt: values["tilt"]}
}
