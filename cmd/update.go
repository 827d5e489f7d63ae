package cmd

import (
	"errors"
	"fmt"

	"github.com/smazurov/camctl/internal/updater"
	"github.com/spf13/cobra"
)

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd(env *Env) *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace camctl with the newest GitHub release",
		Long:  "Downloads the newest release over the running binary. The new version is used on the next start.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			svc, err := env.Updater()
			if err != nil {
				return err
			}
			if !svc.IsEnabled() {
				return fmt.Errorf("updates disabled: %s", svc.DisabledReason())
			}

			info, err := svc.CheckForUpdate(c.Context())
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			if !info.UpdateAvailable {
				fmt.Fprintf(out, "camctl %s is up to date\n", info.CurrentVersion)
				return nil
			}
			fmt.Fprintf(out, "Update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
			if checkOnly {
				return nil
			}

			if _, err := svc.ApplyUpdate(c.Context()); err != nil {
				var uerr *updater.Error
				if errors.As(err, &uerr) && uerr.Code == updater.ErrCodeNoUpdate {
					fmt.Fprintln(out, uerr.Message)
					return nil
				}
				return err
			}
			fmt.Fprintf(out, "Updated to %s\n", info.LatestVersion)
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only report whether an update is available")
	return cmd
}
