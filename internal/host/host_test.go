package host

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleeptimer/internal/core/input"
	"sleeptimer/internal/core/model"
	"sleeptimer/internal/core/session"
	"sleeptimer/internal/player"
)

type switchGate struct {
	mu        sync.Mutex
	permitted bool
	live      bool
	rechecks  int
}

func (gate *switchGate) IsPermitted() bool {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	return gate.permitted
}

func (gate *switchGate) Recheck() bool {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	gate.rechecks++
	gate.permitted = gate.live
	return gate.permitted
}

func (gate *switchGate) setLive(live bool) {
	gate.mu.Lock()
	gate.live = live
	gate.mu.Unlock()
}

type memoryDurations struct {
	minutes int
}

func (store *memoryDurations) DurationMinutes() int { return store.minutes }

func (store *memoryDurations) SetDurationMinutes(minutes int) error {
	store.minutes = minutes
	return nil
}

type testHost struct {
	*Host
	gate      *switchGate
	durations *memoryDurations
	clock     *clockwork.FakeClock
}

func newTestHost(t *testing.T, permitted bool) testHost {
	t.Helper()
	clock := clockwork.NewFakeClock()
	controller := session.New(model.SessionConfig{InitialMinutes: 15}, player.Noop{}, session.Options{
		Clock:  clock,
		Logger: zerolog.Nop(),
	})
	coordinator := input.NewCoordinator(model.InputConfig{}, clock, zerolog.Nop())
	gate := &switchGate{permitted: permitted, live: permitted}
	durations := &memoryDurations{minutes: 20}

	host := New(controller, coordinator, gate, durations, zerolog.Nop())
	t.Cleanup(host.Shutdown)
	return testHost{Host: host, gate: gate, durations: durations, clock: clock}
}

func TestHost_StartDeniedLeavesSessionStopped(t *testing.T) {
	h := newTestHost(t, false)

	snapshot, ok := h.Start(10)
	assert.False(t, ok)
	assert.Equal(t, session.StateStopped, snapshot.State)

	_, ok = h.StartPreferred()
	assert.False(t, ok)
	assert.Equal(t, session.StateStopped, h.Snapshot().State)
}

func TestHost_HardwarePlayIsGated(t *testing.T) {
	h := newTestHost(t, false)

	consumed := h.HandleButton(input.RawEvent{Button: input.ButtonMediaPlay})
	assert.True(t, consumed)
	assert.Equal(t, session.StateStopped, h.Snapshot().State)

	h.gate.setLive(true)
	require.True(t, h.Recheck())

	h.HandleButton(input.RawEvent{Button: input.ButtonMediaPlay})
	snapshot := h.Snapshot()
	assert.Equal(t, session.StateRunning, snapshot.State)
	assert.Equal(t, 1200, snapshot.TotalDurationSeconds, "hardware start uses the preferred duration")
}

func TestHost_ResumeIsGated(t *testing.T) {
	h := newTestHost(t, true)

	h.Start(5)
	h.Pause()

	h.gate.setLive(false)
	assert.False(t, h.Recheck())

	snapshot, ok := h.Resume()
	assert.False(t, ok)
	assert.Equal(t, session.StatePaused, snapshot.State)
}

func TestHost_RevokedPermissionSuspendsWithoutReset(t *testing.T) {
	h := newTestHost(t, true)

	h.Start(1)
	h.Apply(session.Command{Kind: session.CommandTick})

	h.gate.setLive(false)
	assert.False(t, h.Recheck())

	snapshot := h.Snapshot()
	assert.Equal(t, session.StateRunning, snapshot.State)
	assert.Equal(t, 59, snapshot.RemainingSeconds)
	assert.True(t, snapshot.Suspended)

	h.clock.Advance(time.Second)
	assert.Never(t, func() bool {
		return h.Snapshot().RemainingSeconds != 59
	}, 50*time.Millisecond, 10*time.Millisecond)

	h.gate.setLive(true)
	assert.True(t, h.Recheck())
	assert.False(t, h.Snapshot().Suspended)
}

func TestHost_SetDurationPersistsAndValidates(t *testing.T) {
	h := newTestHost(t, true)

	require.NoError(t, h.SetDuration(45))
	assert.Equal(t, 45, h.durations.minutes)
	assert.Equal(t, 45, h.DurationMinutes())
	assert.Equal(t, 2700, h.Snapshot().TotalDurationSeconds)

	assert.ErrorIs(t, h.SetDuration(0), model.ErrInvalidDuration)
	assert.ErrorIs(t, h.SetDuration(1000), model.ErrInvalidDuration)
	assert.Equal(t, 45, h.durations.minutes)
}

func TestHost_DurationFallsBackToDefault(t *testing.T) {
	h := newTestHost(t, true)
	h.durations.minutes = 0

	assert.Equal(t, model.DefaultDurationMinutes, h.DurationMinutes())
}

func TestHost_VolumeDoublePressPassesSinglePressThrough(t *testing.T) {
	h := newTestHost(t, true)
	start := time.Now()

	assert.False(t, h.HandleButton(input.RawEvent{Button: input.ButtonVolumeDown, At: start}))
	assert.True(t, h.HandleButton(input.RawEvent{Button: input.ButtonVolumeDown, At: start.Add(300 * time.Millisecond)}))
	assert.Equal(t, session.StateStopped, h.Snapshot().State)
}

func TestHost_ShutdownViaCommand(t *testing.T) {
	h := newTestHost(t, true)
	stream, unsubscribe := h.Subscribe()
	defer unsubscribe()
	h.Start(5)

	_, ok := h.Apply(session.Command{Kind: session.CommandShutdown})
	assert.True(t, ok)

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("host did not shut down")
	}
	assert.Equal(t, session.StateStopped, h.Snapshot().State)

	for range stream {
	}
}
