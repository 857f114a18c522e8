// Package eventbus fans out published values to any number of subscribers.
//
// Every subscriber owns an unbounded queue drained by its own goroutine, so
// Publish never waits on a slow reader and each subscriber sees values in
// publish order. A new subscriber first receives the most recently published
// value, if any.
package eventbus

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Bus delivers values of type T to subscribers.
type Bus[T any] struct {
	mu          sync.Mutex
	log         zerolog.Logger
	subscribers map[string]*subscriber[T]
	last        T
	hasLast     bool
	closed      bool
}

// New creates an empty bus.
func New[T any](log zerolog.Logger) *Bus[T] {
	return &Bus[T]{
		log:         log.With().Str("component", "eventbus").Logger(),
		subscribers: make(map[string]*subscriber[T]),
	}
}

// NewWithInitial creates a bus that replays initial to subscribers until the
// first Publish.
func NewWithInitial[T any](log zerolog.Logger, initial T) *Bus[T] {
	bus := New[T](log)
	bus.last = initial
	bus.hasLast = true
	return bus
}

// Subscribe registers a new observer. The returned function detaches it and
// closes the stream; calling it more than once is safe.
func (bus *Bus[T]) Subscribe() (<-chan T, func()) {
	sub := newSubscriber[T](uuid.NewString())

	bus.mu.Lock()
	if bus.closed {
		bus.mu.Unlock()
		sub.stop()
		go sub.run()
		return sub.out, func() {}
	}
	if bus.hasLast {
		sub.push(bus.last)
	}
	bus.subscribers[sub.id] = sub
	count := len(bus.subscribers)
	bus.mu.Unlock()

	go sub.run()
	bus.log.Debug().Str("subscriber", sub.id).Int("subscribers", count).Msg("subscribed")

	return sub.out, func() { bus.unsubscribe(sub) }
}

// Publish records value as the current one and queues it for every subscriber.
func (bus *Bus[T]) Publish(value T) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if bus.closed {
		return
	}
	bus.last = value
	bus.hasLast = true
	for _, sub := range bus.subscribers {
		sub.push(value)
	}
}

// Current returns the most recently published value.
func (bus *Bus[T]) Current() (T, bool) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	return bus.last, bus.hasLast
}

// Len returns the number of attached subscribers.
func (bus *Bus[T]) Len() int {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	return len(bus.subscribers)
}

// Close detaches every subscriber and rejects further publishing.
func (bus *Bus[T]) Close() {
	bus.mu.Lock()
	if bus.closed {
		bus.mu.Unlock()
		return
	}
	bus.closed = true
	subscribers := bus.subscribers
	bus.subscribers = make(map[string]*subscriber[T])
	bus.mu.Unlock()

	for _, sub := range subscribers {
		sub.stop()
	}
}

func (bus *Bus[T]) unsubscribe(sub *subscriber[T]) {
	bus.mu.Lock()
	delete(bus.subscribers, sub.id)
	bus.mu.Unlock()
	if sub.stop() {
		bus.log.Debug().Str("subscriber", sub.id).Msg("unsubscribed")
	}
}

type subscriber[T any] struct {
	id       string
	mu       sync.Mutex
	queue    []T
	wake     chan struct{}
	quit     chan struct{}
	out      chan T
	stopOnce sync.Once
}

func newSubscriber[T any](id string) *subscriber[T] {
	return &subscriber[T]{
		id:   id,
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		out:  make(chan T),
	}
}

func (sub *subscriber[T]) push(value T) {
	sub.mu.Lock()
	sub.queue = append(sub.queue, value)
	sub.mu.Unlock()

	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

func (sub *subscriber[T]) pop() (T, bool) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	var zero T
	if len(sub.queue) == 0 {
		return zero, false
	}
	value := sub.queue[0]
	sub.queue[0] = zero
	sub.queue = sub.queue[1:]
	return value, true
}

// stop reports whether this call performed the shutdown.
func (sub *subscriber[T]) stop() bool {
	stopped := false
	sub.stopOnce.Do(func() {
		close(sub.quit)
		stopped = true
	})
	return stopped
}

func (sub *subscriber[T]) run() {
	defer close(sub.out)
	for {
		select {
		case <-sub.quit:
			return
		case <-sub.wake:
		}
		for {
			value, ok := sub.pop()
			if !ok {
				break
			}
			select {
			case sub.out <- value:
			case <-sub.quit:
				return
			}
		}
	}
}
