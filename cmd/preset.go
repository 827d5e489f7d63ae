package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/smazurov/camctl/internal/presets"
	"github.com/spf13/cobra"
)

// CreatePresetCmd creates the preset command.
func CreatePresetCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage zoom, pan and tilt presets",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print stored presets",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			store := env.Presets()
			all := store.All()
			if len(all) == 0 {
				fmt.Fprintf(c.OutOrStdout(), "No presets in %s\n", store.Path())
				return nil
			}
			for _, id := range slices.Sorted(maps.Keys(all)) {
				st := all[id]
				fmt.Fprintf(c.OutOrStdout(), "%s  zoom=%d pan=%d tilt=%d\n", id, st.Zoom, st.Pan, st.Tilt)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "apply <id>",
		Short: "Move the camera to a stored preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			state, ok := env.Presets().Load(args[0])
			if !ok {
				return fmt.Errorf("preset %q not found", args[0])
			}
			if err := presets.Apply(c.Context(), env.Device(), state); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Applied preset %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save <id>",
		Short: "Store the camera's current zoom, pan and tilt",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			values, err := env.Device().GetControlValues(c.Context())
			if err != nil {
				return err
			}
			state := presets.FromValues(values)
			if err := env.Presets().Save(args[0], state); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Saved preset %s  zoom=%d pan=%d tilt=%d\n", args[0], state.Zoom, state.Pan, state.Tilt)
			return nil
		},
	})

	return cmd
}
