package overlay

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"sleeptimer/internal/core/session"
	"sleeptimer/internal/ui/preferences"
	"sleeptimer/internal/ui/tray"
)

// Config defines panel visuals.
type Config struct {
	Opacity uint8
}

// DefaultConfig returns a mostly opaque dark panel.
func DefaultConfig() Config {
	return Config{Opacity: 230}
}

// Controls are the session actions offered on the panel.
type Controls struct {
	OnPause  func()
	OnResume func()
	OnStop   func()
}

// Window is a small undecorated countdown panel.
type Window struct {
	window        fyne.Window
	config        Config
	background    *canvas.Rectangle
	titleLabel    *canvas.Text
	subtitleLabel *canvas.Text
	timerLabel    *canvas.Text
	progress      *widget.ProgressBar
	pauseButton   *widget.Button
	resumeButton  *widget.Button
	stopButton    *widget.Button
	visible       bool
}

const (
	panelWidthFraction  = float32(0.16)
	panelHeightFraction = float32(0.20)
	defaultScreenWidth  = float32(1920)
	defaultScreenHeight = float32(1080)
)

var (
	textColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	accentColor = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the panel hidden.
func New(app fyne.App, config Config, controls Controls) *Window {
	window := app.NewWindow("Sleep Timer")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{A: config.Opacity})

	titleLabel := canvas.NewText("Sleep Timer", textColor)
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 18

	subtitleLabel := canvas.NewText("", textColor)
	subtitleLabel.TextSize = 13

	timerLabel := canvas.NewText("--:--", accentColor)
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.TextSize = 36

	progress := widget.NewProgressBar()
	progress.TextFormatter = func() string { return "" }

	panel := &Window{
		window:        window,
		config:        config,
		background:    background,
		titleLabel:    titleLabel,
		subtitleLabel: subtitleLabel,
		timerLabel:    timerLabel,
		progress:      progress,
		pauseButton:   widget.NewButton("Pause", call(controls.OnPause)),
		resumeButton:  widget.NewButton("Resume", call(controls.OnResume)),
		stopButton:    widget.NewButton("Stop", call(controls.OnStop)),
	}

	buttons := container.NewGridWithColumns(3, panel.pauseButton, panel.resumeButton, panel.stopButton)
	content := container.NewPadded(container.NewVBox(titleLabel, subtitleLabel, timerLabel, progress, buttons))
	window.SetContent(container.NewStack(background, content))
	window.SetCloseIntercept(panel.Hide)

	panel.Render(session.Snapshot{State: session.StateStopped})
	return panel
}

// Toggle shows a hidden panel and hides a visible one.
func (panel *Window) Toggle() {
	if panel.visible {
		panel.Hide()
		return
	}
	panel.Show()
}

// Show places the panel and brings it forward.
func (panel *Window) Show() {
	panel.visible = true
	panel.resizeToScreenFraction()
	panel.window.Show()
	panel.window.RequestFocus()
}

// Hide closes the panel.
func (panel *Window) Hide() {
	panel.visible = false
	panel.window.Hide()
}

// UpdateConfig updates panel visuals.
func (panel *Window) UpdateConfig(config Config) {
	panel.config = config
	panel.background.FillColor = color.NRGBA{A: config.Opacity}
	canvas.Refresh(panel.background)
}

// Render shows snapshot. Call on the UI goroutine.
func (panel *Window) Render(snapshot session.Snapshot) {
	panel.subtitleLabel.Text = Subtitle(snapshot)
	panel.subtitleLabel.Refresh()
	panel.timerLabel.Text = preferences.FormatRemaining(snapshot.RemainingSeconds)
	panel.timerLabel.Refresh()
	panel.progress.SetValue(snapshot.Progress())

	actions := tray.ActionsFor(snapshot.State)
	setEnabled(panel.pauseButton, actions.Pause)
	setEnabled(panel.resumeButton, actions.Resume)
	setEnabled(panel.stopButton, actions.Stop)
}

// Follow renders every snapshot from stream until it is closed.
func (panel *Window) Follow(stream <-chan session.Snapshot) {
	for snapshot := range stream {
		current := snapshot
		fyne.Do(func() {
			panel.Render(current)
		})
	}
}

// Subtitle describes the session under the title.
func Subtitle(snapshot session.Snapshot) string {
	total := preferences.FormatMinutes(snapshot.TotalDurationSeconds / 60)
	switch snapshot.State {
	case session.StateRunning:
		if snapshot.Suspended {
			return "Suspended, background ticking not permitted"
		}
		return "Pausing playback after " + total
	case session.StatePaused:
		return "Paused"
	case session.StateCompleted:
		return "Playback paused"
	default:
		return "Ready for " + total
	}
}

func (panel *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := panel.window.Canvas().Size()
	// Canvas size can be reused as a proxy for monitor size when it is clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * panelWidthFraction
	height := screenSize.Height * panelHeightFraction
	minSize := panel.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	panel.window.Resize(fyne.NewSize(width, height))
	panel.window.CenterOnScreen()
}

func setEnabled(button *widget.Button, enabled bool) {
	if enabled {
		button.Enable()
		return
	}
	button.Disable()
}

func call(fn func()) func() {
	return func() {
		if fn != nil {
			fn()
		}
	}
}
