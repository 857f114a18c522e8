package model

import (
	"errors"
	"fmt"
	"time"
)

// Duration limits accepted from any surface, in minutes.
const (
	MinDurationMinutes     = 1
	MaxDurationMinutes     = 999
	DefaultDurationMinutes = 15
)

const (
	// DebounceWindow is the default double-press threshold.
	DebounceWindow = 500 * time.Millisecond
	// TickInterval is the default countdown step.
	TickInterval = time.Second
	// PlayerTimeout bounds a single external player command.
	PlayerTimeout = 5 * time.Second
)

// ErrInvalidDuration indicates a duration outside MinDurationMinutes..MaxDurationMinutes.
var ErrInvalidDuration = errors.New("invalid timer duration")

// DefaultPresets are the quick-select durations offered by display surfaces.
var DefaultPresets = []int{15, 20, 30, 45, 60}

// SessionConfig contains runtime settings for the session controller.
type SessionConfig struct {
	InitialMinutes int
	TickInterval   time.Duration
	PlayerTimeout  time.Duration
}

// InputConfig contains runtime settings for the hardware input coordinator.
type InputConfig struct {
	DebounceWindow time.Duration
}

// ValidateMinutes reports whether minutes is an accepted timer duration.
func ValidateMinutes(minutes int) error {
	if minutes < MinDurationMinutes || minutes > MaxDurationMinutes {
		return fmt.Errorf("%w: %d minutes (want %d..%d)", ErrInvalidDuration, minutes, MinDurationMinutes, MaxDurationMinutes)
	}
	return nil
}
