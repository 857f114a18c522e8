// Package session owns the single timer session and its state machine.
//
// All mutations run on one goroutine: public methods enqueue a request and
// wait for the resulting snapshot, and the tick loop is driven from the same
// select. Observers read snapshots from Subscribe and never touch the session.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"sleeptimer/internal/core/eventbus"
	"sleeptimer/internal/core/model"
	"sleeptimer/internal/player"
)

const playerQueueSize = 16

// Options holds optional collaborators for the controller.
type Options struct {
	Clock  clockwork.Clock
	Logger zerolog.Logger
}

type timerSession struct {
	state            State
	totalSeconds     int
	remainingSeconds int
	lastTransitionAt time.Time
}

type request struct {
	fn    func() Snapshot
	reply chan Snapshot
}

type playerCall struct {
	name string
	call func(context.Context) error
}

// Controller is the sole writer of the timer session.
type Controller struct {
	config   model.SessionConfig
	clock    clockwork.Clock
	bridge   player.Bridge
	bus      *eventbus.Bus[Snapshot]
	log      zerolog.Logger
	requests chan request
	calls    chan playerCall
	quit     chan struct{}
	loopDone chan struct{}
	callDone chan struct{}
	quitOnce sync.Once

	// callCtx is cancelled on shutdown so in-flight and queued player calls
	// are abandoned.
	callCtx     context.Context
	cancelCalls context.CancelFunc

	// loop-owned
	session      timerSession
	pendingTotal int
	suspended    bool
	ticker       clockwork.Ticker
}

// New creates the controller with a Stopped session of config.InitialMinutes
// and starts its command loop.
func New(config model.SessionConfig, bridge player.Bridge, options Options) *Controller {
	if config.TickInterval <= 0 {
		config.TickInterval = model.TickInterval
	}
	if config.PlayerTimeout <= 0 {
		config.PlayerTimeout = model.PlayerTimeout
	}
	if model.ValidateMinutes(config.InitialMinutes) != nil {
		config.InitialMinutes = model.DefaultDurationMinutes
	}
	if options.Clock == nil {
		options.Clock = clockwork.NewRealClock()
	}
	if bridge == nil {
		bridge = player.Noop{}
	}

	controller := &Controller{
		config:   config,
		clock:    options.Clock,
		bridge:   bridge,
		log:      options.Logger.With().Str("component", "session").Logger(),
		requests: make(chan request),
		calls:    make(chan playerCall, playerQueueSize),
		quit:     make(chan struct{}),
		loopDone: make(chan struct{}),
		callDone: make(chan struct{}),
	}

	controller.callCtx, controller.cancelCalls = context.WithCancel(context.Background())

	total := config.InitialMinutes * 60
	controller.session = timerSession{
		state:            StateStopped,
		totalSeconds:     total,
		remainingSeconds: total,
		lastTransitionAt: controller.clock.Now(),
	}
	controller.bus = eventbus.NewWithInitial(options.Logger, controller.snapshot(EventTimerStopped))

	go controller.run()
	go controller.runPlayerCalls()
	return controller
}

// Subscribe attaches an observer. The stream starts with the current snapshot.
func (controller *Controller) Subscribe() (<-chan Snapshot, func()) {
	return controller.bus.Subscribe()
}

// Snapshot returns the current session view.
func (controller *Controller) Snapshot() Snapshot {
	current, _ := controller.bus.Current()
	return current
}

// Apply executes a semantic command and returns the resulting snapshot.
func (controller *Controller) Apply(command Command) Snapshot {
	switch command.Kind {
	case CommandStart:
		return controller.Start(command.Minutes)
	case CommandStop:
		return controller.Stop()
	case CommandPause:
		return controller.Pause()
	case CommandResume:
		return controller.Resume()
	case CommandTick:
		return controller.Tick()
	case CommandSetDuration:
		return controller.SetDuration(command.Minutes)
	case CommandPreviousChapter:
		return controller.do(func() Snapshot {
			controller.dispatch("previous_chapter", controller.bridge.PreviousChapter)
			return controller.Snapshot()
		})
	case CommandPlayerPause:
		return controller.do(func() Snapshot {
			controller.dispatch("pause", controller.bridge.Pause)
			return controller.Snapshot()
		})
	case CommandShutdown:
		return controller.Shutdown()
	}
	controller.log.Warn().Int("kind", int(command.Kind)).Msg("unknown command")
	return controller.Snapshot()
}

// Start begins a fresh countdown of minutes. It is a no-op while Running.
func (controller *Controller) Start(minutes int) Snapshot {
	return controller.do(func() Snapshot {
		if err := model.ValidateMinutes(minutes); err != nil {
			controller.log.Warn().Err(err).Msg("start rejected")
			return controller.Snapshot()
		}
		if controller.session.state == StateRunning {
			controller.log.Debug().Msg("start ignored: already running")
			return controller.Snapshot()
		}

		total := minutes * 60
		controller.pendingTotal = 0
		controller.session.totalSeconds = total
		controller.session.remainingSeconds = total
		controller.transition(StateRunning)
		controller.startTicker()
		controller.dispatch("play", controller.bridge.Play)

		controller.log.Info().Int("minutes", minutes).Msg("timer started")
		return controller.publish(EventTimerStarted)
	})
}

// Pause freezes a running countdown. The player is left alone.
func (controller *Controller) Pause() Snapshot {
	return controller.do(func() Snapshot {
		if controller.session.state != StateRunning {
			controller.log.Debug().Str("state", string(controller.session.state)).Msg("pause ignored")
			return controller.Snapshot()
		}
		controller.stopTicker()
		controller.transition(StatePaused)

		controller.log.Info().Int("remaining", controller.session.remainingSeconds).Msg("timer paused")
		return controller.publish(EventTimerPaused)
	})
}

// Resume continues a paused countdown and asks the player to play.
func (controller *Controller) Resume() Snapshot {
	return controller.do(func() Snapshot {
		if controller.session.state != StatePaused {
			controller.log.Debug().Str("state", string(controller.session.state)).Msg("resume ignored")
			return controller.Snapshot()
		}
		controller.transition(StateRunning)
		controller.startTicker()
		controller.dispatch("play", controller.bridge.Play)

		controller.log.Info().Int("remaining", controller.session.remainingSeconds).Msg("timer resumed")
		return controller.publish(EventTimerResumed)
	})
}

// Stop resets the session from any state.
func (controller *Controller) Stop() Snapshot {
	return controller.do(func() Snapshot {
		controller.stopTicker()
		controller.reset()
		controller.log.Info().Msg("timer stopped")
		return controller.publish(EventTimerStopped)
	})
}

// Tick advances a running countdown by one step.
func (controller *Controller) Tick() Snapshot {
	return controller.do(controller.handleTick)
}

// SetDuration changes the duration used by the next Start. A Stopped session
// shows the new duration immediately; a Running or Paused one picks it up
// when it is reset.
func (controller *Controller) SetDuration(minutes int) Snapshot {
	return controller.do(func() Snapshot {
		if err := model.ValidateMinutes(minutes); err != nil {
			controller.log.Warn().Err(err).Msg("set duration rejected")
			return controller.Snapshot()
		}
		total := minutes * 60
		if controller.session.state != StateStopped {
			controller.pendingTotal = total
			return controller.Snapshot()
		}
		controller.session.totalSeconds = total
		controller.session.remainingSeconds = total
		return controller.publish(EventDurationChanged)
	})
}

// SetTickingPermitted withholds or restores the tick loop without changing
// the session state.
func (controller *Controller) SetTickingPermitted(permitted bool) Snapshot {
	return controller.do(func() Snapshot {
		if permitted == !controller.suspended {
			return controller.Snapshot()
		}
		controller.suspended = !permitted
		if controller.suspended {
			controller.stopTicker()
			controller.log.Warn().Str("state", string(controller.session.state)).Msg("ticking suspended")
			return controller.publish(EventTickingSuspended)
		}
		if controller.session.state == StateRunning {
			controller.startTicker()
		}
		controller.log.Info().Msg("ticking restored")
		return controller.publish(EventTickingRestored)
	})
}

// Shutdown stops the session, releases the tick loop and closes every
// subscription. Player calls still queued are discarded. Later calls return
// the final snapshot.
func (controller *Controller) Shutdown() Snapshot {
	final := controller.Stop()
	controller.quitOnce.Do(func() {
		close(controller.quit)
		<-controller.loopDone
		controller.cancelCalls()
		close(controller.calls)
		<-controller.callDone
		controller.bus.Close()
		controller.log.Info().Msg("session shut down")
	})
	return final
}

func (controller *Controller) do(fn func() Snapshot) Snapshot {
	req := request{fn: fn, reply: make(chan Snapshot, 1)}
	select {
	case controller.requests <- req:
		return <-req.reply
	case <-controller.loopDone:
		return controller.Snapshot()
	}
}

func (controller *Controller) run() {
	defer close(controller.loopDone)
	for {
		var tickCh <-chan time.Time
		if controller.ticker != nil {
			tickCh = controller.ticker.Chan()
		}

		select {
		case <-controller.quit:
			controller.stopTicker()
			return
		case req := <-controller.requests:
			req.reply <- req.fn()
		case <-tickCh:
			controller.handleTick()
		}
	}
}

func (controller *Controller) handleTick() Snapshot {
	if controller.session.state != StateRunning {
		controller.stopTicker()
		return controller.Snapshot()
	}
	if controller.session.remainingSeconds > 0 {
		controller.session.remainingSeconds--
	}
	if controller.session.remainingSeconds > 0 {
		return controller.publish(EventTimerTick)
	}

	controller.stopTicker()
	controller.transition(StateCompleted)
	controller.publish(EventTimerCompleted)
	controller.dispatch("pause", controller.bridge.Pause)
	controller.log.Info().Int("total", controller.session.totalSeconds).Msg("timer completed")

	controller.reset()
	return controller.publish(EventTimerStopped)
}

func (controller *Controller) reset() {
	if controller.pendingTotal > 0 {
		controller.session.totalSeconds = controller.pendingTotal
		controller.pendingTotal = 0
	}
	controller.session.remainingSeconds = controller.session.totalSeconds
	controller.transition(StateStopped)
}

func (controller *Controller) transition(state State) {
	controller.session.state = state
	controller.session.lastTransitionAt = controller.clock.Now()
}

func (controller *Controller) startTicker() {
	if controller.ticker != nil || controller.suspended {
		return
	}
	controller.ticker = controller.clock.NewTicker(controller.config.TickInterval)
}

func (controller *Controller) stopTicker() {
	if controller.ticker == nil {
		return
	}
	controller.ticker.Stop()
	controller.ticker = nil
}

func (controller *Controller) snapshot(event EventType) Snapshot {
	return Snapshot{
		Event:                event,
		State:                controller.session.state,
		RemainingSeconds:     controller.session.remainingSeconds,
		TotalDurationSeconds: controller.session.totalSeconds,
		Suspended:            controller.suspended,
		LastTransitionAt:     controller.session.lastTransitionAt,
	}
}

func (controller *Controller) publish(event EventType) Snapshot {
	snapshot := controller.snapshot(event)
	controller.bus.Publish(snapshot)
	return snapshot
}

func (controller *Controller) dispatch(name string, call func(context.Context) error) {
	select {
	case controller.calls <- playerCall{name: name, call: call}:
	default:
		controller.log.Warn().Str("command", name).Msg("player queue full, command dropped")
	}
}

func (controller *Controller) runPlayerCalls() {
	defer close(controller.callDone)
	for call := range controller.calls {
		if controller.callCtx.Err() != nil {
			controller.log.Debug().Str("command", call.name).Msg("player command discarded on shutdown")
			continue
		}
		ctx, cancel := context.WithTimeout(controller.callCtx, controller.config.PlayerTimeout)
		err := call.call(ctx)
		cancel()
		if err != nil {
			controller.log.Warn().Err(err).Str("command", call.name).Msg("player command failed")
			continue
		}
		controller.log.Debug().Str("command", call.name).Msg("player command sent")
	}
}
