package preferences

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"sleeptimer/internal/core/model"
)

// Window is the duration and preferences dialog.
type Window struct {
	window     fyne.Window
	settings   Settings
	onSave     func(Settings)
	minutes    *widget.Entry
	presets    *fyne.Container
	background *widget.Check
	player     *widget.Entry
	errorLabel *widget.Label
}

// New creates the window. onSave receives validated settings.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Sleep Timer")

	minutes := widget.NewEntry()
	minutes.Validator = func(text string) error {
		_, err := ParseMinutes(text)
		return err
	}

	background := widget.NewCheck("Keep counting while in the background", nil)

	player := widget.NewEntry()
	player.SetPlaceHolder("any MPRIS player (e.g. vlc)")

	errorLabel := widget.NewLabel("")
	errorLabel.Importance = widget.DangerImportance
	errorLabel.Hide()

	prefs := &Window{
		window:     window,
		onSave:     onSave,
		minutes:    minutes,
		presets:    container.NewHBox(),
		background: background,
		player:     player,
		errorLabel: errorLabel,
	}

	form := container.NewVBox(
		widget.NewLabelWithStyle("Timer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("Pause playback after"), widget.NewLabel("min"), minutes),
		prefs.presets,
		errorLabel,
		widget.NewLabelWithStyle("Playback", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("Player"), nil, player),
		background,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	saveButton.Importance = widget.HighImportance
	cancelButton := widget.NewButton("Cancel", window.Hide)
	buttons := container.NewHBox(layout.NewSpacer(), cancelButton, saveButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.SetCloseIntercept(window.Hide)
	window.Resize(fyne.NewSize(380, 260))

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// Window returns the underlying fyne window.
func (prefs *Window) Window() fyne.Window {
	return prefs.window
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.minutes.SetText(strconv.Itoa(settings.DurationMinutes))
	prefs.background.SetChecked(settings.BackgroundAllowed)
	prefs.player.SetText(settings.PlayerBusName)
	prefs.errorLabel.Hide()

	prefs.presets.RemoveAll()
	for _, preset := range settings.Presets {
		minutes := preset
		prefs.presets.Add(widget.NewButton(FormatMinutes(minutes), func() {
			prefs.minutes.SetText(strconv.Itoa(minutes))
		}))
	}
	prefs.presets.Refresh()
}

func (prefs *Window) handleSave() {
	settings, err := ApplyForm(prefs.settings, prefs.minutes.Text, prefs.background.Checked, prefs.player.Text)
	if err != nil {
		prefs.errorLabel.SetText(err.Error())
		prefs.errorLabel.Show()
		return
	}
	prefs.errorLabel.Hide()

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

// ApplyForm returns settings updated from raw form values.
func ApplyForm(settings Settings, minutesText string, backgroundAllowed bool, player string) (Settings, error) {
	minutes, err := ParseMinutes(minutesText)
	if err != nil {
		return settings, err
	}
	settings.DurationMinutes = minutes
	settings.BackgroundAllowed = backgroundAllowed
	settings.PlayerBusName = strings.TrimSpace(player)
	return settings, nil
}

// ParseMinutes parses a user-entered duration in minutes.
func ParseMinutes(text string) (int, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", model.ErrInvalidDuration, text)
	}
	if err := model.ValidateMinutes(minutes); err != nil {
		return 0, err
	}
	return minutes, nil
}
