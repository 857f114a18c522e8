//go:build linux

package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func withoutSessionBus(t *testing.T) {
	t.Helper()
	original := sessionBus
	sessionBus = func() (*dbus.Conn, error) {
		return nil, errors.New("dbus: DBUS_SESSION_BUS_ADDRESS not set")
	}
	t.Cleanup(func() { sessionBus = original })
}

func TestNotifier_NoSessionBusIsUnsupported(t *testing.T) {
	withoutSessionBus(t)
	notifier := newNotifier("sleeptimer")

	available, err := notifier.Available(context.Background())
	assert.False(t, available)
	assert.ErrorIs(t, err, ErrNotificationsUnsupported)

	assert.ErrorIs(t, notifier.Notify(context.Background(), "summary", "body"), ErrNotificationsUnsupported)
}

func TestGate_PermitsWithoutSessionBus(t *testing.T) {
	withoutSessionBus(t)

	gate := NewGate(nil, newNotifier("sleeptimer"), zerolog.Nop())
	assert.True(t, gate.IsPermitted())

	denied := NewGate(func() bool { return false }, newNotifier("sleeptimer"), zerolog.Nop())
	assert.False(t, denied.IsPermitted())
}
