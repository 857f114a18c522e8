package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play     key.Binding
	Start    key.Binding
	Pause    key.Binding
	Resume   key.Binding
	Stop     key.Binding
	VolDown  key.Binding
	PausePly key.Binding
	Duration key.Binding
	Presets  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Play:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "media play")),
		Start:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Resume:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		Stop:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		VolDown:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "volume down")),
		PausePly: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "media pause")),
		Duration: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "duration")),
		Presets:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "preset")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Resume, k.Stop, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Pause, k.Resume, k.Stop},
		{k.Play, k.PausePly, k.VolDown},
		{k.Duration, k.Presets, k.Help, k.Quit},
	}
}
