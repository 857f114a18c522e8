package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sleeptimer/internal/core/session"
	"sleeptimer/internal/platform"
	"sleeptimer/internal/ui/preferences"
)

const statusTimeout = 2 * time.Second

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the state of the running instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
			defer cancel()

			status, err := platform.QueryInstance(ctx, appName)
			if err != nil {
				c.log.Debug().Err(err).Msg("status query failed")
				fmt.Fprintln(cmd.OutOrStdout(), "not running")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func statusLine(snapshot session.Snapshot) string {
	total := preferences.FormatMinutes(snapshot.TotalDurationSeconds / 60)
	switch snapshot.State {
	case session.StateRunning, session.StatePaused:
		line := fmt.Sprintf("%s %s of %s", snapshot.State, preferences.FormatRemaining(snapshot.RemainingSeconds), total)
		if snapshot.Suspended {
			line += " (suspended)"
		}
		return line
	default:
		return fmt.Sprintf("%s %s", snapshot.State, total)
	}
}
