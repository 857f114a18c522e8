package main

import (
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/spf13/cobra"

	"sleeptimer/internal/ui/overlay"
	"sleeptimer/internal/ui/preferences"
	"sleeptimer/internal/ui/tray"
)

func newTrayCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tray",
		Short: "Run in the system tray (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTray()
		},
	}
}

func (c *cli) runTray() error {
	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(theme.MediaPauseIcon())
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errors.New("system tray unsupported on this platform")
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
	h := rt.host

	settings := rt.store.Settings()
	var trayManager *tray.Manager
	window := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		if err := rt.store.Update(updated); err != nil {
			c.log.Warn().Err(err).Msg("settings not saved")
		}
		if err := h.SetDuration(updated.DurationMinutes); err != nil {
			c.log.Warn().Err(err).Msg("duration rejected")
		}
		h.Recheck()
		trayManager.SetPresets(updated.Presets)
	})
	desktopApp.SetSystemTrayWindow(window.Window())

	panel := overlay.New(fyneApp, overlay.DefaultConfig(), overlay.Controls{
		OnPause:  func() { h.Pause() },
		OnResume: func() { h.Resume() },
		OnStop:   func() { h.Stop() },
	})

	trayManager = tray.New(desktopApp, settings.Presets, tray.Callbacks{
		OnStart: func() {
			if _, ok := h.StartPreferred(); !ok {
				fyneApp.SendNotification(fyne.NewNotification(displayName, "Background ticking is not permitted."))
			}
		},
		OnPreset: func(minutes int) {
			if err := h.SetDuration(minutes); err != nil {
				c.log.Warn().Err(err).Msg("preset rejected")
				return
			}
			h.Start(minutes)
		},
		OnPause:     func() { h.Pause() },
		OnResume:    func() { h.Resume() },
		OnStop:      func() { h.Stop() },
		OnCountdown: panel.Toggle,
		OnDuration: func() {
			window.UpdateSettings(rt.store.Settings())
			window.Show()
		},
		OnQuit: func() {
			h.Shutdown()
		},
	})

	trayStream, _ := h.Subscribe()
	go trayManager.Follow(trayStream)
	panelStream, _ := h.Subscribe()
	go panel.Follow(panelStream)

	go func() {
		<-h.Done()
		fyne.Do(fyneApp.Quit)
	}()

	lifecycle := fyneApp.Lifecycle()
	lifecycle.SetOnEnteredForeground(func() { h.Recheck() })
	lifecycle.SetOnExitedForeground(func() { h.Recheck() })

	fyneApp.Run()
	return nil
}
