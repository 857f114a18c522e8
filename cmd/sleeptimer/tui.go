package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sleeptimer/internal/config"
	"sleeptimer/internal/ui/tui"
)

const tuiLogFile = "tui.log"

func newTUICmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run with a terminal interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI()
		},
	}
}

func (c *cli) runTUI() error {
	dir, err := c.configDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(dir, tuiLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	c.cfg.LogFormat = config.FormatJSON
	if err := c.setLogOutput(logFile); err != nil {
		return err
	}

	rt, err := c.startRuntime()
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			c.log.Warn().Err(err).Msg("shutdown")
		}
	}()

	return tui.Run(rt.host, rt.store.Settings().Presets, tea.WithAltScreen())
}
