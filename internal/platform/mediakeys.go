package platform

import (
	"errors"

	"sleeptimer/internal/core/input"
	"sleeptimer/internal/core/session"
	"sleeptimer/internal/player"
)

// ErrMediaKeysUnsupported indicates the platform offers no media-key capture.
var ErrMediaKeysUnsupported = errors.New("media keys unsupported")

// MediaKeysBusName is the MPRIS name this process claims to receive media keys.
const MediaKeysBusName = player.MPRISPrefix + "sleeptimer"

// ButtonHandler receives a captured hardware event and reports whether it was consumed.
type ButtonHandler func(input.RawEvent) bool

func playbackStatus(state session.State) string {
	switch state {
	case session.StateRunning:
		return "Playing"
	case session.StatePaused:
		return "Paused"
	default:
		return "Stopped"
	}
}
