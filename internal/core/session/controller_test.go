package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleeptimer/internal/core/model"
)

const waitTimeout = 2 * time.Second

type fakeBridge struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (bridge *fakeBridge) record(name string) error {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	bridge.calls = append(bridge.calls, name)
	return bridge.err
}

func (bridge *fakeBridge) Play(context.Context) error            { return bridge.record("play") }
func (bridge *fakeBridge) Pause(context.Context) error           { return bridge.record("pause") }
func (bridge *fakeBridge) PreviousChapter(context.Context) error { return bridge.record("previous") }

func (bridge *fakeBridge) Calls() []string {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	return append([]string(nil), bridge.calls...)
}

func newTestController(t *testing.T) (*Controller, *fakeBridge, *clockwork.FakeClock) {
	t.Helper()
	bridge := &fakeBridge{}
	clock := clockwork.NewFakeClock()
	controller := New(model.SessionConfig{InitialMinutes: 15}, bridge, Options{
		Clock:  clock,
		Logger: zerolog.Nop(),
	})
	t.Cleanup(func() { controller.Shutdown() })
	return controller, bridge, clock
}

func next(t *testing.T, stream <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snapshot, ok := <-stream:
		require.True(t, ok, "stream closed")
		return snapshot
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot{}
}

func TestController_InitialSnapshot(t *testing.T) {
	controller, _, _ := newTestController(t)

	snapshot := controller.Snapshot()
	assert.Equal(t, StateStopped, snapshot.State)
	assert.Equal(t, 900, snapshot.TotalDurationSeconds)
	assert.Equal(t, 900, snapshot.RemainingSeconds)
}

func TestController_StartSetsRunningAndPlays(t *testing.T) {
	controller, bridge, _ := newTestController(t)

	snapshot := controller.Start(15)
	assert.Equal(t, EventTimerStarted, snapshot.Event)
	assert.Equal(t, StateRunning, snapshot.State)
	assert.Equal(t, 900, snapshot.RemainingSeconds)
	assert.Equal(t, 900, snapshot.TotalDurationSeconds)

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"play"}, bridge.Calls())
	}, waitTimeout, 10*time.Millisecond)
}

func TestController_StartWhileRunningIsNoop(t *testing.T) {
	controller, bridge, _ := newTestController(t)

	controller.Start(15)
	for i := 0; i < 3; i++ {
		controller.Tick()
	}
	for _, minutes := range []int{15, 30, 1} {
		snapshot := controller.Start(minutes)
		assert.Equal(t, StateRunning, snapshot.State)
		assert.Equal(t, 897, snapshot.RemainingSeconds)
		assert.Equal(t, 900, snapshot.TotalDurationSeconds)
	}

	assert.Eventually(t, func() bool { return len(bridge.Calls()) == 1 }, waitTimeout, 10*time.Millisecond)
	assert.Never(t, func() bool { return len(bridge.Calls()) > 1 }, 50*time.Millisecond, 10*time.Millisecond)
}

func TestController_StartRejectsOutOfRangeMinutes(t *testing.T) {
	controller, _, _ := newTestController(t)

	for _, minutes := range []int{0, -1, 1000} {
		snapshot := controller.Start(minutes)
		assert.Equal(t, StateStopped, snapshot.State)
		assert.Equal(t, 900, snapshot.TotalDurationSeconds)
	}
}

func TestController_StopAlwaysResets(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*Controller)
	}{
		{"from stopped", func(*Controller) {}},
		{"from running", func(controller *Controller) {
			controller.Start(10)
			controller.Tick()
		}},
		{"from paused", func(controller *Controller) {
			controller.Start(10)
			controller.Tick()
			controller.Tick()
			controller.Pause()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller, _, _ := newTestController(t)
			tt.prepare(controller)

			snapshot := controller.Stop()
			assert.Equal(t, EventTimerStopped, snapshot.Event)
			assert.Equal(t, StateStopped, snapshot.State)
			assert.Equal(t, snapshot.TotalDurationSeconds, snapshot.RemainingSeconds)
		})
	}
}

func TestController_TickOnlyWhileRunning(t *testing.T) {
	controller, _, _ := newTestController(t)

	assert.Equal(t, 900, controller.Tick().RemainingSeconds)

	controller.Start(15)
	assert.Equal(t, 899, controller.Tick().RemainingSeconds)
	assert.Equal(t, 898, controller.Tick().RemainingSeconds)

	controller.Pause()
	assert.Equal(t, 898, controller.Tick().RemainingSeconds)
}

func TestController_CompletesAfterFullCountdown(t *testing.T) {
	controller, bridge, _ := newTestController(t)
	stream, unsubscribe := controller.Subscribe()
	defer unsubscribe()

	assert.Equal(t, StateStopped, next(t, stream).State)

	started := controller.Start(15)
	assert.Equal(t, 900, started.RemainingSeconds)
	assert.Equal(t, EventTimerStarted, next(t, stream).Event)

	var last Snapshot
	for i := 0; i < 900; i++ {
		last = controller.Tick()
	}
	assert.Equal(t, StateStopped, last.State)
	assert.Equal(t, 900, last.RemainingSeconds)

	for i := 0; i < 899; i++ {
		snapshot := next(t, stream)
		require.Equal(t, EventTimerTick, snapshot.Event)
		require.Equal(t, 899-i, snapshot.RemainingSeconds)
	}

	completed := next(t, stream)
	assert.Equal(t, EventTimerCompleted, completed.Event)
	assert.Equal(t, StateCompleted, completed.State)
	assert.Equal(t, 0, completed.RemainingSeconds)

	stopped := next(t, stream)
	assert.Equal(t, EventTimerStopped, stopped.Event)
	assert.Equal(t, StateStopped, stopped.State)
	assert.Equal(t, 900, stopped.RemainingSeconds)
	assert.Equal(t, 900, stopped.TotalDurationSeconds)

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"play", "pause"}, bridge.Calls())
	}, waitTimeout, 10*time.Millisecond)
}

func TestController_PauseAndResumeKeepRemaining(t *testing.T) {
	controller, bridge, _ := newTestController(t)

	controller.Start(20)
	for i := 0; i < 5; i++ {
		controller.Tick()
	}

	paused := controller.Pause()
	assert.Equal(t, EventTimerPaused, paused.Event)
	assert.Equal(t, StatePaused, paused.State)
	assert.Equal(t, 1195, paused.RemainingSeconds)

	assert.Equal(t, 1195, controller.Tick().RemainingSeconds)
	assert.Equal(t, StatePaused, controller.Pause().State)

	resumed := controller.Resume()
	assert.Equal(t, EventTimerResumed, resumed.Event)
	assert.Equal(t, StateRunning, resumed.State)
	assert.Equal(t, 1195, resumed.RemainingSeconds)
	assert.Equal(t, 1194, controller.Tick().RemainingSeconds)

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"play", "play"}, bridge.Calls())
	}, waitTimeout, 10*time.Millisecond)
}

func TestController_ResumeIgnoredUnlessPaused(t *testing.T) {
	controller, _, _ := newTestController(t)

	assert.Equal(t, StateStopped, controller.Resume().State)
	controller.Start(5)
	assert.Equal(t, StateRunning, controller.Resume().State)
}

func TestController_StartFromPausedBeginsFresh(t *testing.T) {
	controller, _, _ := newTestController(t)

	controller.Start(20)
	controller.Tick()
	controller.Pause()

	snapshot := controller.Start(10)
	assert.Equal(t, StateRunning, snapshot.State)
	assert.Equal(t, 600, snapshot.RemainingSeconds)
	assert.Equal(t, 600, snapshot.TotalDurationSeconds)
}

func TestController_TickerDrivesCountdown(t *testing.T) {
	controller, _, clock := newTestController(t)

	controller.Start(1)
	for want := 59; want >= 57; want-- {
		clock.Advance(time.Second)
		expected := want
		assert.Eventually(t, func() bool {
			return controller.Snapshot().RemainingSeconds == expected
		}, waitTimeout, 5*time.Millisecond)
	}

	controller.Pause()
	clock.Advance(time.Second)
	assert.Never(t, func() bool {
		return controller.Snapshot().RemainingSeconds != 57
	}, 50*time.Millisecond, 10*time.Millisecond)
}

func TestController_SetDuration(t *testing.T) {
	controller, _, _ := newTestController(t)

	changed := controller.SetDuration(30)
	assert.Equal(t, EventDurationChanged, changed.Event)
	assert.Equal(t, 1800, changed.TotalDurationSeconds)
	assert.Equal(t, 1800, changed.RemainingSeconds)

	controller.Start(5)
	controller.Tick()
	running := controller.SetDuration(45)
	assert.Equal(t, 300, running.TotalDurationSeconds)
	assert.Equal(t, 299, running.RemainingSeconds)

	stopped := controller.Stop()
	assert.Equal(t, 2700, stopped.TotalDurationSeconds)
	assert.Equal(t, 2700, stopped.RemainingSeconds)

	rejected := controller.SetDuration(0)
	assert.Equal(t, 2700, rejected.TotalDurationSeconds)
}

func TestController_SuspendedTickingKeepsState(t *testing.T) {
	controller, _, clock := newTestController(t)

	controller.Start(1)
	suspended := controller.SetTickingPermitted(false)
	assert.Equal(t, EventTickingSuspended, suspended.Event)
	assert.True(t, suspended.Suspended)
	assert.Equal(t, StateRunning, suspended.State)

	clock.Advance(time.Second)
	assert.Never(t, func() bool {
		return controller.Snapshot().RemainingSeconds != 60
	}, 50*time.Millisecond, 10*time.Millisecond)

	restored := controller.SetTickingPermitted(true)
	assert.Equal(t, EventTickingRestored, restored.Event)
	assert.False(t, restored.Suspended)

	clock.Advance(time.Second)
	assert.Eventually(t, func() bool {
		return controller.Snapshot().RemainingSeconds == 59
	}, waitTimeout, 5*time.Millisecond)
}

func TestController_BridgeFailureDoesNotFailTransition(t *testing.T) {
	bridge := &fakeBridge{err: errors.New("player gone")}
	controller := New(model.SessionConfig{InitialMinutes: 15}, bridge, Options{
		Clock:  clockwork.NewFakeClock(),
		Logger: zerolog.Nop(),
	})
	defer controller.Shutdown()

	assert.Equal(t, StateRunning, controller.Start(15).State)
	assert.Equal(t, StatePaused, controller.Pause().State)
	assert.Equal(t, StateRunning, controller.Resume().State)
}

func TestController_ApplyRoutesPlayerCommands(t *testing.T) {
	controller, bridge, _ := newTestController(t)

	before := controller.Snapshot()
	after := controller.Apply(Command{Kind: CommandPreviousChapter})
	controller.Apply(Command{Kind: CommandPlayerPause})

	assert.Equal(t, before.State, after.State)
	assert.Equal(t, before.RemainingSeconds, after.RemainingSeconds)
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"previous", "pause"}, bridge.Calls())
	}, waitTimeout, 10*time.Millisecond)

	assert.Equal(t, StateRunning, controller.Apply(Start(2)).State)
	assert.Equal(t, StatePaused, controller.Apply(Command{Kind: CommandPause}).State)
	assert.Equal(t, StateRunning, controller.Apply(Command{Kind: CommandResume}).State)
	assert.Equal(t, 119, controller.Apply(Command{Kind: CommandTick}).RemainingSeconds)
	assert.Equal(t, StateStopped, controller.Apply(Command{Kind: CommandStop}).State)
}

func TestController_SubscribeReplaysCurrentState(t *testing.T) {
	controller, _, _ := newTestController(t)
	controller.Start(20)
	controller.Tick()

	stream, unsubscribe := controller.Subscribe()
	defer unsubscribe()

	snapshot := next(t, stream)
	assert.Equal(t, StateRunning, snapshot.State)
	assert.Equal(t, 1199, snapshot.RemainingSeconds)
}

func TestController_ShutdownClosesSubscriptions(t *testing.T) {
	controller, _, _ := newTestController(t)
	stream, unsubscribe := controller.Subscribe()
	defer unsubscribe()
	controller.Start(5)

	final := controller.Apply(Command{Kind: CommandShutdown})
	assert.Equal(t, StateStopped, final.State)

	closed := false
	deadline := time.After(waitTimeout)
	for !closed {
		select {
		case _, ok := <-stream:
			closed = !ok
		case <-deadline:
			t.Fatal("subscription not closed after shutdown")
		}
	}

	assert.Equal(t, StateStopped, controller.Start(5).State)
	controller.Shutdown()
}

type hangingBridge struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
}

func (bridge *hangingBridge) hang(ctx context.Context) error {
	bridge.mu.Lock()
	bridge.calls++
	first := bridge.calls == 1
	bridge.mu.Unlock()
	if first {
		close(bridge.entered)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (bridge *hangingBridge) Play(ctx context.Context) error            { return bridge.hang(ctx) }
func (bridge *hangingBridge) Pause(ctx context.Context) error           { return bridge.hang(ctx) }
func (bridge *hangingBridge) PreviousChapter(ctx context.Context) error { return bridge.hang(ctx) }

func (bridge *hangingBridge) Calls() int {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	return bridge.calls
}

func TestController_ShutdownDiscardsQueuedPlayerCalls(t *testing.T) {
	bridge := &hangingBridge{entered: make(chan struct{})}
	controller := New(model.SessionConfig{InitialMinutes: 15, PlayerTimeout: time.Minute}, bridge, Options{
		Clock:  clockwork.NewFakeClock(),
		Logger: zerolog.Nop(),
	})

	controller.Start(15)
	select {
	case <-bridge.entered:
	case <-time.After(waitTimeout):
		t.Fatal("player call never started")
	}
	for i := 0; i < 10; i++ {
		controller.Apply(Command{Kind: CommandPreviousChapter})
	}

	done := make(chan Snapshot)
	go func() { done <- controller.Shutdown() }()
	select {
	case final := <-done:
		assert.Equal(t, StateStopped, final.State)
	case <-time.After(waitTimeout):
		t.Fatal("shutdown waited on hanging player calls")
	}
	assert.Equal(t, 1, bridge.Calls())
}

func TestController_StopCancelsPendingTick(t *testing.T) {
	controller, _, clock := newTestController(t)

	controller.Start(1)
	clock.Advance(time.Second)
	assert.Eventually(t, func() bool {
		return controller.Snapshot().RemainingSeconds == 59
	}, waitTimeout, 5*time.Millisecond)

	stopped := controller.Stop()
	assert.Equal(t, StateStopped, stopped.State)
	assert.Equal(t, 60, stopped.RemainingSeconds)

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
	}
	assert.Never(t, func() bool {
		snapshot := controller.Snapshot()
		return snapshot.State != StateStopped || snapshot.RemainingSeconds != snapshot.TotalDurationSeconds
	}, 50*time.Millisecond, 10*time.Millisecond)
}
