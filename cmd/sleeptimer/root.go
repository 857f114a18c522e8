package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sleeptimer/internal/config"
	"sleeptimer/internal/core/model"
)

type options struct {
	envFile   string
	logLevel  string
	logFormat string
	configDir string
	player    string
	minutes   int
}

// cli carries configuration resolved before any subcommand runs.
type cli struct {
	opts options
	cfg  *config.Config
	log  zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Pause media playback after a countdown",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.configure(cmd.Flags(), os.Stderr)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTray()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.envFile, "env-file", ".env", "dotenv file read before the environment")
	flags.StringVar(&c.opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&c.opts.logFormat, "log-format", "", "log format (auto, console, json)")
	flags.StringVar(&c.opts.configDir, "config-dir", "", "preferences directory")
	flags.StringVar(&c.opts.player, "player", "", "MPRIS player bus name or suffix, e.g. vlc")
	flags.IntVarP(&c.opts.minutes, "minutes", "m", 0, fmt.Sprintf("preferred duration in minutes (%d..%d)", model.MinDurationMinutes, model.MaxDurationMinutes))

	root.AddCommand(
		newTrayCmd(c),
		newTUICmd(c),
		newHeadlessCmd(c),
		newStatusCmd(c),
		newAutostartCmd(c),
	)

	return root
}

// configure loads env config, applies flag overrides and builds the logger.
func (c *cli) configure(flags *pflag.FlagSet, logOut io.Writer) error {
	if err := config.LoadDotEnv(c.opts.envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if flags.Changed("log-level") {
		cfg.LogLevel = c.opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = c.opts.logFormat
	}
	if flags.Changed("config-dir") {
		cfg.ConfigDir = c.opts.configDir
	}
	if flags.Changed("player") {
		cfg.Player = c.opts.player
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if flags.Changed("minutes") {
		if err := model.ValidateMinutes(c.opts.minutes); err != nil {
			return fmt.Errorf("--minutes: %w", err)
		}
	}

	c.cfg = cfg
	return c.setLogOutput(logOut)
}

func (c *cli) setLogOutput(out io.Writer) error {
	log, err := config.NewLogger(out, c.cfg.LogLevel, c.cfg.LogFormat)
	if err != nil {
		return err
	}
	c.log = log
	return nil
}
