package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/smazurov/camctl/internal/camera"
	"github.com/spf13/cobra"
)

// CreateControlCmd creates the control command.
func CreateControlCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "control",
		Short: "Read and change camera controls",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <property> <value>",
		Short: "Apply one control value",
		Long:  "Properties: zoom, pan, tilt, exposure, gain, white_balance, brightness, contrast, saturation, sharpness.",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			prop, err := camera.ParseProperty(args[0])
			if err != nil {
				return err
			}
			value, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}
			if err := env.Device().SetProperty(c.Context(), prop, value); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "%s = %d\n", prop, value)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get [property]",
		Short: "Print current control values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			values, err := env.Device().GetControlValues(c.Context())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				prop, err := camera.ParseProperty(args[0])
				if err != nil {
					return err
				}
				value, ok := values[prop.String()]
				if !ok {
					return fmt.Errorf("%s is not readable on this camera", prop)
				}
				fmt.Fprintln(c.OutOrStdout(), value)
				return nil
			}
			for _, name := range slices.Sorted(maps.Keys(values)) {
				fmt.Fprintf(c.OutOrStdout(), "%-14s %d\n", name, values[name])
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore hardware defaults",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if err := env.Device().ResetToDefaults(c.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), "Controls reset to defaults")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the raw control listing from the platform tool",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			raw, err := env.Device().GetControls(c.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(c.OutOrStdout(), raw)
			return nil
		},
	})

	return cmd
}
