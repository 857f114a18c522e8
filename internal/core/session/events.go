package session

import "time"

// State represents the current session mode.
type State string

const (
	StateStopped   State = "stopped"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

// EventType names the transition that produced a snapshot.
type EventType string

const (
	EventTimerStarted     EventType = "TimerStarted"
	EventTimerPaused      EventType = "TimerPaused"
	EventTimerResumed     EventType = "TimerResumed"
	EventTimerStopped     EventType = "TimerStopped"
	EventTimerCompleted   EventType = "TimerCompleted"
	EventTimerTick        EventType = "TimerTick"
	EventDurationChanged  EventType = "DurationChanged"
	EventTickingSuspended EventType = "TickingSuspended"
	EventTickingRestored  EventType = "TickingRestored"
)

// Snapshot is an immutable view of the session for observers.
type Snapshot struct {
	Event                EventType
	State                State
	RemainingSeconds     int
	TotalDurationSeconds int
	// Suspended is set while ticking is withheld by the lifecycle gate.
	Suspended        bool
	LastTransitionAt time.Time
}

// Remaining returns RemainingSeconds as a duration.
func (snapshot Snapshot) Remaining() time.Duration {
	return time.Duration(snapshot.RemainingSeconds) * time.Second
}

// Progress returns the elapsed share of the session in [0, 1].
func (snapshot Snapshot) Progress() float64 {
	if snapshot.TotalDurationSeconds <= 0 {
		return 0
	}
	progress := float64(snapshot.TotalDurationSeconds-snapshot.RemainingSeconds) / float64(snapshot.TotalDurationSeconds)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// CommandKind enumerates the semantic commands accepted by the controller.
type CommandKind int

const (
	CommandStart CommandKind = iota
	CommandStop
	CommandPause
	CommandResume
	CommandTick
	CommandSetDuration
	CommandPreviousChapter
	CommandPlayerPause
	CommandShutdown
)

var commandNames = map[CommandKind]string{
	CommandStart:           "Start",
	CommandStop:            "Stop",
	CommandPause:           "Pause",
	CommandResume:          "Resume",
	CommandTick:            "Tick",
	CommandSetDuration:     "SetDuration",
	CommandPreviousChapter: "PreviousChapterRequested",
	CommandPlayerPause:     "PlayerPauseRequested",
	CommandShutdown:        "ShutdownRequested",
}

func (kind CommandKind) String() string {
	if name, ok := commandNames[kind]; ok {
		return name
	}
	return "Unknown"
}

// Command is a semantic request produced by a display surface or the
// hardware input coordinator. Minutes is used by Start and SetDuration.
type Command struct {
	Kind    CommandKind
	Minutes int
}

// Start builds a Start command.
func Start(minutes int) Command { return Command{Kind: CommandStart, Minutes: minutes} }

// SetDuration builds a SetDuration command.
func SetDuration(minutes int) Command { return Command{Kind: CommandSetDuration, Minutes: minutes} }

// Is reports whether the command is of the given kind.
func (command Command) Is(kind CommandKind) bool { return command.Kind == kind }
