package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sleeptimer/internal/platform"
)

func newAutostartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage launching the tray at login",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Launch the tray at login",
			RunE: func(cmd *cobra.Command, args []string) error {
				execPath, err := os.Executable()
				if err != nil {
					return fmt.Errorf("resolve executable: %w", err)
				}
				if err := platform.NewAutostart(displayName, "tray").Enable(execPath); err != nil {
					return err
				}
				c.log.Info().Str("exec", execPath).Msg("autostart enabled")
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Stop launching at login",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := platform.NewAutostart(displayName).Disable(); err != nil {
					return err
				}
				c.log.Info().Msg("autostart disabled")
				return nil
			},
		},
	)

	return cmd
}
