package platform

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const probeTimeout = 2 * time.Second

// Gate permits background ticking when the user allows it and the desktop
// can surface the running timer. The answer is cached until Recheck.
type Gate struct {
	mu        sync.Mutex
	allowed   func() bool
	notifier  Notifier
	log       zerolog.Logger
	permitted bool
}

// NewGate evaluates the gate once and returns it. allowed reports the user's
// consent; a nil allowed always consents.
func NewGate(allowed func() bool, notifier Notifier, log zerolog.Logger) *Gate {
	if allowed == nil {
		allowed = func() bool { return true }
	}
	gate := &Gate{
		allowed:  allowed,
		notifier: notifier,
		log:      log.With().Str("component", "gate").Logger(),
	}
	gate.Recheck()
	return gate
}

// IsPermitted returns the cached answer.
func (gate *Gate) IsPermitted() bool {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	return gate.permitted
}

// Recheck re-evaluates consent and the notification service.
func (gate *Gate) Recheck() bool {
	permitted := gate.evaluate()
	gate.mu.Lock()
	gate.permitted = permitted
	gate.mu.Unlock()
	return permitted
}

func (gate *Gate) evaluate() bool {
	if !gate.allowed() {
		gate.log.Info().Msg("background ticking disabled in settings")
		return false
	}
	if gate.notifier == nil {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	available, err := gate.notifier.Available(ctx)
	if err != nil {
		if errors.Is(err, ErrNotificationsUnsupported) {
			return true
		}
		gate.log.Warn().Err(err).Msg("notification service probe failed")
		return false
	}
	if !available {
		gate.log.Warn().Msg("no notification service on the session bus")
	}
	return available
}
