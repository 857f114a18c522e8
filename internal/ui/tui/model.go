// Package tui is the terminal display surface.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sleeptimer/internal/core/input"
	"sleeptimer/internal/core/session"
	"sleeptimer/internal/ui/preferences"
)

// Controls is the session surface the terminal drives.
type Controls interface {
	Subscribe() (<-chan session.Snapshot, func())
	Snapshot() session.Snapshot
	Apply(command session.Command) (session.Snapshot, bool)
	HandleButton(event input.RawEvent) bool
	DurationMinutes() int
	SetDuration(minutes int) error
}

type snapshotMsg struct {
	snapshot session.Snapshot
	ok       bool
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	remainingStyle = lipgloss.NewStyle().Bold(true).Padding(1, 0)
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	stateStyles    = map[session.State]lipgloss.Style{
		session.StateRunning:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		session.StatePaused:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		session.StateCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
		session.StateStopped:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
)

// Model is the bubbletea model of the terminal surface.
type Model struct {
	controls    Controls
	stream      <-chan session.Snapshot
	unsubscribe func()
	presets     []int

	snapshot session.Snapshot
	keys     keyMap
	help     help.Model
	bar      progress.Model
	entry    textinput.Model
	editing  bool
	notice   string
}

// New subscribes to controls and returns the initial model.
func New(controls Controls, presets []int) Model {
	stream, unsubscribe := controls.Subscribe()

	entry := textinput.New()
	entry.Placeholder = strconv.Itoa(controls.DurationMinutes())
	entry.CharLimit = 3
	entry.Width = 5
	entry.Prompt = "minutes: "

	return Model{
		controls:    controls,
		stream:      stream,
		unsubscribe: unsubscribe,
		presets:     presets,
		snapshot:    controls.Snapshot(),
		keys:        defaultKeyMap(),
		help:        help.New(),
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
		entry:       entry,
	}
}

// Close releases the subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func waitForSnapshot(stream <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-stream
		return snapshotMsg{snapshot: snapshot, ok: ok}
	}
}

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.stream)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if !msg.ok {
			return m, tea.Quit
		}
		m.snapshot = msg.snapshot
		if msg.snapshot.Event == session.EventTimerCompleted {
			m.notice = "Timer finished, playback paused."
		}
		return m, waitForSnapshot(m.stream)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		width := msg.Width - 4
		if width > 60 {
			width = 60
		}
		if width > 10 {
			m.bar.Width = width
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEntry(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.controls.Apply(session.Command{Kind: session.CommandShutdown})
		return m, tea.Quit
	case key.Matches(msg, m.keys.Play):
		m.controls.HandleButton(input.RawEvent{Button: input.ButtonMediaPlay})
	case key.Matches(msg, m.keys.PausePly):
		m.controls.HandleButton(input.RawEvent{Button: input.ButtonMediaPause})
	case key.Matches(msg, m.keys.VolDown):
		if !m.controls.HandleButton(input.RawEvent{Button: input.ButtonVolumeDown}) {
			m.notice = "Volume down passed through."
		}
	case key.Matches(msg, m.keys.Start):
		m.apply(session.Start(0))
	case key.Matches(msg, m.keys.Pause):
		m.apply(session.Command{Kind: session.CommandPause})
	case key.Matches(msg, m.keys.Resume):
		m.apply(session.Command{Kind: session.CommandResume})
	case key.Matches(msg, m.keys.Stop):
		m.apply(session.Command{Kind: session.CommandStop})
	case key.Matches(msg, m.keys.Presets):
		index, _ := strconv.Atoi(msg.String())
		if index >= 1 && index <= len(m.presets) {
			m.setDuration(m.presets[index-1])
		}
	case key.Matches(msg, m.keys.Duration):
		m.editing = true
		m.entry.SetValue("")
		return m, m.entry.Focus()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.entry.Blur()
		return m, nil
	case tea.KeyEnter:
		minutes, err := preferences.ParseMinutes(m.entry.Value())
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.editing = false
		m.entry.Blur()
		m.setDuration(minutes)
		return m, nil
	}

	var cmd tea.Cmd
	m.entry, cmd = m.entry.Update(msg)
	return m, cmd
}

func (m *Model) apply(command session.Command) {
	snapshot, permitted := m.controls.Apply(command)
	m.snapshot = snapshot
	if !permitted {
		m.notice = "Background ticking is not permitted."
	}
}

func (m *Model) setDuration(minutes int) {
	if err := m.controls.SetDuration(minutes); err != nil {
		m.notice = err.Error()
		return
	}
	m.entry.Placeholder = strconv.Itoa(minutes)
	m.notice = fmt.Sprintf("Duration set to %s.", preferences.FormatMinutes(minutes))
}

func (m Model) View() string {
	var b strings.Builder

	stateStyle, ok := stateStyles[m.snapshot.State]
	if !ok {
		stateStyle = dimStyle
	}
	state := strings.ToUpper(string(m.snapshot.State))
	if m.snapshot.Suspended {
		state += " (suspended)"
	}

	b.WriteString(titleStyle.Render("Sleep Timer") + "  " + stateStyle.Render(state) + "\n")
	b.WriteString(remainingStyle.Render(preferences.FormatRemaining(m.snapshot.RemainingSeconds)) + "\n")
	b.WriteString(m.bar.ViewAs(m.snapshot.Progress()) + "\n")
	b.WriteString(dimStyle.Render("of "+preferences.FormatMinutes(m.snapshot.TotalDurationSeconds/60)+presetLine(m.presets)) + "\n\n")

	if m.editing {
		b.WriteString(m.entry.View() + "\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func presetLine(presets []int) string {
	if len(presets) == 0 {
		return ""
	}
	parts := make([]string, 0, len(presets))
	for i, minutes := range presets {
		if i >= 9 {
			break
		}
		parts = append(parts, fmt.Sprintf("%d:%s", i+1, preferences.FormatMinutes(minutes)))
	}
	return "   presets " + strings.Join(parts, " ")
}

// Run drives the terminal surface until the user quits or the session shuts down.
func Run(controls Controls, presets []int, options ...tea.ProgramOption) error {
	model := New(controls, presets)
	defer model.Close()

	if _, err := tea.NewProgram(model, options...).Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
