package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sleeptimer/internal/core/session"
)

func newHeadlessCmd(c *cli) *cobra.Command {
	var start bool

	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Run without a window, driven by media keys",
		Long: "Run without a window. Media keys and volume changes sent to the " +
			"sleeptimer MPRIS player control the countdown. SIGHUP re-checks " +
			"background permission; SIGINT and SIGTERM quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHeadless(cmd.Context(), start)
		},
	}
	cmd.Flags().BoolVar(&start, "start", false, "start the countdown immediately")

	return cmd
}

func (c *cli) runHeadless(ctx context.Context, start bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := c.startRuntime()
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			c.log.Warn().Err(err).Msg("shutdown")
		}
	}()

	stream, _ := rt.host.Subscribe()
	go logTransitions(stream, c.log)

	if start {
		if _, ok := rt.host.StartPreferred(); !ok {
			c.log.Warn().Msg("background ticking not permitted, waiting for recheck")
		}
	}

	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("interrupted")
			return nil
		case <-rt.host.Done():
			return nil
		case <-hangup:
			rt.host.Recheck()
		}
	}
}

func logTransitions(stream <-chan session.Snapshot, log zerolog.Logger) {
	for snapshot := range stream {
		event := log.Info()
		if snapshot.Event == session.EventTimerTick {
			event = log.Debug()
		}
		event.
			Str("event", string(snapshot.Event)).
			Str("state", string(snapshot.State)).
			Int("remaining_s", snapshot.RemainingSeconds).
			Bool("suspended", snapshot.Suspended).
			Msg("session")
	}
}
