// Package player sends best-effort transport commands to an external audio
// application.
package player

import (
	"context"
	"errors"
)

// ErrUnavailable indicates no controllable player was found.
var ErrUnavailable = errors.New("external player unavailable")

// Bridge dispatches commands to the external player. Implementations return
// the delivery outcome; callers log it and never retry.
type Bridge interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	PreviousChapter(ctx context.Context) error
}

// Noop is the Bridge used when no player integration is available.
type Noop struct{}

// Play does nothing.
func (Noop) Play(context.Context) error { return nil }

// Pause does nothing.
func (Noop) Pause(context.Context) error { return nil }

// PreviousChapter does nothing.
func (Noop) PreviousChapter(context.Context) error { return nil }
