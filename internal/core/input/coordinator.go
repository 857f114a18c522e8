// Package input turns raw hardware button events into session commands.
package input

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"sleeptimer/internal/core/model"
	"sleeptimer/internal/core/session"
)

// Button identifies a hardware key.
type Button string

const (
	ButtonMediaPlay  Button = "media_play"
	ButtonMediaPause Button = "media_pause"
	ButtonVolumeDown Button = "volume_down"
)

// RawEvent is a single key-down reported by a hardware source. At must come
// from a monotonic clock reading; a zero At is stamped on arrival.
type RawEvent struct {
	Button Button
	At     time.Time
}

// Decision is the outcome of handling a raw event.
type Decision struct {
	Command session.Command
	// Emit is set when Command should be applied.
	Emit bool
	// Consume is set when the raw event must not reach the default handler.
	Consume bool
}

// Coordinator classifies raw events, detecting volume-down double presses.
type Coordinator struct {
	mu     sync.Mutex
	window time.Duration
	clock  clockwork.Clock
	log    zerolog.Logger
	last   map[Button]time.Time
}

// NewCoordinator creates a coordinator. A nil clock uses the real clock.
func NewCoordinator(config model.InputConfig, clock clockwork.Clock, log zerolog.Logger) *Coordinator {
	if config.DebounceWindow <= 0 {
		config.DebounceWindow = model.DebounceWindow
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Coordinator{
		window: config.DebounceWindow,
		clock:  clock,
		log:    log.With().Str("component", "input").Logger(),
		last:   make(map[Button]time.Time),
	}
}

// Handle classifies event.
func (coordinator *Coordinator) Handle(event RawEvent) Decision {
	if event.At.IsZero() {
		event.At = coordinator.clock.Now()
	}

	switch event.Button {
	case ButtonMediaPlay:
		return Decision{Command: session.Command{Kind: session.CommandStart}, Emit: true, Consume: true}
	case ButtonMediaPause:
		return Decision{Command: session.Command{Kind: session.CommandPlayerPause}, Emit: true, Consume: true}
	case ButtonVolumeDown:
		return coordinator.handleDoublePress(event)
	}

	coordinator.log.Debug().Str("button", string(event.Button)).Msg("unhandled button")
	return Decision{}
}

func (coordinator *Coordinator) handleDoublePress(event RawEvent) Decision {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()

	previous := coordinator.last[event.Button]
	if !previous.IsZero() {
		elapsed := event.At.Sub(previous)
		if elapsed >= 0 && elapsed <= coordinator.window {
			coordinator.last[event.Button] = time.Time{}
			coordinator.log.Debug().Dur("elapsed", elapsed).Msg("double press")
			return Decision{
				Command: session.Command{Kind: session.CommandPreviousChapter},
				Emit:    true,
				Consume: true,
			}
		}
	}

	coordinator.last[event.Button] = event.At
	return Decision{}
}
