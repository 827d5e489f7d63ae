package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CreateDeviceCmd creates the device command.
func CreateDeviceCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "device",
		Short: "Show which device the configured camera resolves to",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			dev := env.Device()
			handle, err := dev.FindDevice(c.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", dev.DeviceName(), err)
			}
			fmt.Fprintf(c.OutOrStdout(), "%s: %s (%s)\n", dev.DeviceName(), handle, dev.CaptureBackend())
			return nil
		},
	}
}

// CreateFormatsCmd creates the formats command.
func CreateFormatsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the capture modes the camera offers",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			formats, err := env.Device().GetSupportedFormats(c.Context())
			if err != nil {
				return err
			}
			for _, f := range formats {
				fmt.Fprintf(c.OutOrStdout(), "%-5s %4dx%-4d @ %d fps\n", f.Codec, f.Width, f.Height, f.FPS)
			}
			return nil
		},
	}
}
