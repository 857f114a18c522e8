package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"sleeptimer/internal/core/session"
	"sleeptimer/internal/ui/preferences"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnStart     func()
	OnPreset    func(minutes int)
	OnPause     func()
	OnResume    func()
	OnStop      func()
	OnCountdown func()
	OnDuration  func()
	OnQuit      func()
}

// Manager keeps the system tray menu in sync with the session.
type Manager struct {
	app        desktop.App
	callbacks  Callbacks
	menu       *fyne.Menu
	statusItem *fyne.MenuItem
	startItem  *fyne.MenuItem
	pauseItem  *fyne.MenuItem
	resumeItem *fyne.MenuItem
	stopItem   *fyne.MenuItem
	presetItem *fyne.MenuItem
	state      session.State
}

// New creates a tray manager offering presets as quick-start durations.
func New(app desktop.App, presets []int, callbacks Callbacks) *Manager {
	manager := &Manager{app: app, callbacks: callbacks}

	manager.statusItem = fyne.NewMenuItem("Stopped", nil)
	manager.statusItem.Disabled = true
	manager.startItem = fyne.NewMenuItem("Start", call(callbacks.OnStart))
	manager.pauseItem = fyne.NewMenuItem("Pause", call(callbacks.OnPause))
	manager.resumeItem = fyne.NewMenuItem("Resume", call(callbacks.OnResume))
	manager.stopItem = fyne.NewMenuItem("Stop", call(callbacks.OnStop))
	manager.presetItem = fyne.NewMenuItem("Start for...", nil)
	manager.SetPresets(presets)

	manager.menu = fyne.NewMenu("Sleep Timer",
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.startItem,
		manager.presetItem,
		manager.pauseItem,
		manager.resumeItem,
		manager.stopItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Countdown", call(callbacks.OnCountdown)),
		fyne.NewMenuItem("Duration...", call(callbacks.OnDuration)),
		fyne.NewMenuItem("Quit", call(callbacks.OnQuit)),
	)
	app.SetSystemTrayMenu(manager.menu)
	manager.Render(session.Snapshot{State: session.StateStopped})

	return manager
}

// SetPresets replaces the quick-start submenu.
func (manager *Manager) SetPresets(presets []int) {
	items := make([]*fyne.MenuItem, 0, len(presets))
	for _, preset := range presets {
		minutes := preset
		items = append(items, fyne.NewMenuItem(preferences.FormatMinutes(minutes), func() {
			if manager.callbacks.OnPreset != nil {
				manager.callbacks.OnPreset(minutes)
			}
		}))
	}
	manager.presetItem.ChildMenu = fyne.NewMenu("", items...)
	if manager.menu != nil {
		manager.menu.Refresh()
	}
}

// Render updates labels, enabled actions and the icon. Call on the UI goroutine.
func (manager *Manager) Render(snapshot session.Snapshot) {
	manager.statusItem.Label = StatusLine(snapshot)

	actions := ActionsFor(snapshot.State)
	manager.startItem.Disabled = !actions.Start
	manager.presetItem.Disabled = !actions.Start
	manager.pauseItem.Disabled = !actions.Pause
	manager.resumeItem.Disabled = !actions.Resume
	manager.stopItem.Disabled = !actions.Stop

	if snapshot.State != manager.state {
		manager.state = snapshot.State
		manager.app.SetSystemTrayIcon(iconFor(snapshot.State))
	}
	manager.menu.Refresh()
}

// Follow renders every snapshot from stream until it is closed.
func (manager *Manager) Follow(stream <-chan session.Snapshot) {
	for snapshot := range stream {
		current := snapshot
		fyne.Do(func() {
			manager.Render(current)
		})
	}
}

// Actions lists the tray actions valid in a state.
type Actions struct {
	Start  bool
	Pause  bool
	Resume bool
	Stop   bool
}

// ActionsFor returns the actions offered in state.
func ActionsFor(state session.State) Actions {
	switch state {
	case session.StateRunning:
		return Actions{Pause: true, Stop: true}
	case session.StatePaused:
		return Actions{Start: true, Resume: true, Stop: true}
	default:
		return Actions{Start: true}
	}
}

// StatusLine renders the menu header for snapshot.
func StatusLine(snapshot session.Snapshot) string {
	remaining := preferences.FormatRemaining(snapshot.RemainingSeconds)
	switch snapshot.State {
	case session.StateRunning:
		if snapshot.Suspended {
			return fmt.Sprintf("Suspended %s", remaining)
		}
		return fmt.Sprintf("Running %s", remaining)
	case session.StatePaused:
		return fmt.Sprintf("Paused %s", remaining)
	case session.StateCompleted:
		return "Finished"
	default:
		return fmt.Sprintf("Stopped (%s)", preferences.FormatMinutes(snapshot.TotalDurationSeconds/60))
	}
}

func iconFor(state session.State) fyne.Resource {
	switch state {
	case session.StateRunning:
		return theme.MediaPlayIcon()
	case session.StatePaused:
		return theme.MediaPauseIcon()
	default:
		return theme.MediaStopIcon()
	}
}

func call(fn func()) func() {
	return func() {
		if fn != nil {
			fn()
		}
	}
}
