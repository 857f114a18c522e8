// Package host wires the session controller to its lifecycle gate, the
// hardware input coordinator and the user's preferred duration.
package host

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"sleeptimer/internal/core/input"
	"sleeptimer/internal/core/model"
	"sleeptimer/internal/core/session"
)

// ErrPermissionDenied indicates the lifecycle gate refused background ticking.
var ErrPermissionDenied = errors.New("background ticking not permitted")

// LifecycleGate decides whether the session may tick in the background.
// IsPermitted reports the last known answer; Recheck refreshes it.
type LifecycleGate interface {
	IsPermitted() bool
	Recheck() bool
}

// DurationStore owns the user's last selected duration.
type DurationStore interface {
	DurationMinutes() int
	SetDurationMinutes(minutes int) error
}

// Host is the entry point for display surfaces and hardware sources.
type Host struct {
	controller  *session.Controller
	coordinator *input.Coordinator
	gate        LifecycleGate
	durations   DurationStore
	log         zerolog.Logger
	closeOnce   sync.Once
	closed      chan struct{}
}

// New creates a Host around an existing controller.
func New(controller *session.Controller, coordinator *input.Coordinator, gate LifecycleGate, durations DurationStore, log zerolog.Logger) *Host {
	if gate == nil {
		gate = StaticGate(true)
	}
	return &Host{
		controller:  controller,
		coordinator: coordinator,
		gate:        gate,
		durations:   durations,
		log:         log.With().Str("component", "host").Logger(),
		closed:      make(chan struct{}),
	}
}

// Subscribe attaches a display surface to session snapshots.
func (host *Host) Subscribe() (<-chan session.Snapshot, func()) {
	return host.controller.Subscribe()
}

// Snapshot returns the current session view.
func (host *Host) Snapshot() session.Snapshot {
	return host.controller.Snapshot()
}

// DurationMinutes returns the preferred duration for the next Start.
func (host *Host) DurationMinutes() int {
	if host.durations == nil {
		return model.DefaultDurationMinutes
	}
	minutes := host.durations.DurationMinutes()
	if model.ValidateMinutes(minutes) != nil {
		return model.DefaultDurationMinutes
	}
	return minutes
}

// Start begins a countdown of minutes if the gate permits ticking. The
// boolean is false when permission was denied.
func (host *Host) Start(minutes int) (session.Snapshot, bool) {
	if !host.gate.IsPermitted() {
		host.log.Warn().Err(ErrPermissionDenied).Msg("start refused")
		return host.controller.Snapshot(), false
	}
	host.controller.SetTickingPermitted(true)
	return host.controller.Start(minutes), true
}

// StartPreferred begins a countdown of the preferred duration.
func (host *Host) StartPreferred() (session.Snapshot, bool) {
	return host.Start(host.DurationMinutes())
}

// Resume continues a paused countdown if the gate permits ticking.
func (host *Host) Resume() (session.Snapshot, bool) {
	if !host.gate.IsPermitted() {
		host.log.Warn().Err(ErrPermissionDenied).Msg("resume refused")
		return host.controller.Snapshot(), false
	}
	host.controller.SetTickingPermitted(true)
	return host.controller.Resume(), true
}

// Pause freezes a running countdown.
func (host *Host) Pause() session.Snapshot {
	return host.controller.Pause()
}

// Stop resets the session.
func (host *Host) Stop() session.Snapshot {
	return host.controller.Stop()
}

// SetDuration stores minutes as the preferred duration and applies it to the
// next Start.
func (host *Host) SetDuration(minutes int) error {
	if err := model.ValidateMinutes(minutes); err != nil {
		return err
	}
	if host.durations != nil {
		if err := host.durations.SetDurationMinutes(minutes); err != nil {
			host.log.Warn().Err(err).Int("minutes", minutes).Msg("duration not persisted")
		}
	}
	host.controller.SetDuration(minutes)
	return nil
}

// Recheck asks the gate again and suspends or restores ticking accordingly.
// The session state is never reset by a revoked permission.
func (host *Host) Recheck() bool {
	permitted := host.gate.Recheck()
	host.controller.SetTickingPermitted(permitted)
	host.log.Info().Bool("permitted", permitted).Msg("lifecycle gate rechecked")
	return permitted
}

// Apply routes a semantic command through the gate. A Start without minutes
// uses the preferred duration.
func (host *Host) Apply(command session.Command) (session.Snapshot, bool) {
	switch command.Kind {
	case session.CommandStart:
		if command.Minutes == 0 {
			return host.StartPreferred()
		}
		return host.Start(command.Minutes)
	case session.CommandResume:
		return host.Resume()
	case session.CommandSetDuration:
		if err := host.SetDuration(command.Minutes); err != nil {
			host.log.Warn().Err(err).Msg("set duration rejected")
		}
		return host.controller.Snapshot(), true
	case session.CommandShutdown:
		host.Shutdown()
		return host.controller.Snapshot(), true
	}
	return host.controller.Apply(command), true
}

// HandleButton feeds a raw hardware event through the coordinator. It
// reports whether the event was consumed; unconsumed events should keep
// their default behavior.
func (host *Host) HandleButton(event input.RawEvent) bool {
	decision := host.coordinator.Handle(event)
	if decision.Emit {
		host.log.Debug().
			Str("button", string(event.Button)).
			Stringer("command", decision.Command.Kind).
			Msg("hardware command")
		host.Apply(decision.Command)
	}
	return decision.Consume
}

// Shutdown stops the session and releases its resources.
func (host *Host) Shutdown() {
	host.closeOnce.Do(func() {
		host.controller.Shutdown()
		close(host.closed)
	})
}

// Done is closed once Shutdown has completed.
func (host *Host) Done() <-chan struct{} {
	return host.closed
}

// StaticGate is a LifecycleGate with a fixed answer.
type StaticGate bool

// IsPermitted returns the fixed answer.
func (gate StaticGate) IsPermitted() bool { return bool(gate) }

// Recheck returns the fixed answer.
func (gate StaticGate) Recheck() bool { return bool(gate) }
