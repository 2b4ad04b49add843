package action

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/panics"
)

// Listener receives the state produced by each transition.
type Listener[T any] func(State[T])

type subscription[T any] struct {
	id uint64
	fn Listener[T]
}

// Controller runs one operation at a time and publishes its lifecycle.
// The zero value is not usable; create controllers with New.
type Controller[T any] struct {
	mu        sync.Mutex
	state     State[T]
	listeners []subscription[T]
	nextSubID uint64

	// settled is closed when the in-flight attempt settles. Nil while no
	// attempt is in flight.
	settled chan struct{}

	// Notifications are queued under mu and drained by a single goroutine
	// at a time so listeners observe transitions in order.
	pending     []State[T]
	dispatching bool
}

// New returns a controller in the Idle state.
func New[T any]() *Controller[T] {
	return &Controller[T]{}
}

// State returns a snapshot of the current state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for every future transition and returns a function
// that removes it. Calling the returned function more than once is harmless.
func (c *Controller[T]) Subscribe(fn Listener[T]) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSubID++
	id := c.nextSubID
	c.listeners = append(c.listeners, subscription[T]{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.listeners {
			if sub.id == id {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// Begin enters Loading and returns the new attempt id. It returns false and
// changes nothing if an attempt is already in flight.
func (c *Controller[T]) Begin() (uint64, bool) {
	c.mu.Lock()
	if c.state.Status == StatusLoading {
		c.mu.Unlock()
		return 0, false
	}

	c.state = State[T]{Status: StatusLoading, Attempt: c.state.Attempt + 1}
	c.settled = make(chan struct{})
	attempt := c.state.Attempt
	c.enqueueLocked()
	c.mu.Unlock()

	c.dispatch()
	return attempt, true
}

// Settle records the outcome of attempt. It returns false when attempt is
// not the one currently in flight, in which case the outcome is discarded.
func (c *Controller[T]) Settle(attempt uint64, value T, err error) bool {
	_, ok := c.settle(attempt, value, err)
	return ok
}

func (c *Controller[T]) settle(attempt uint64, value T, err error) (State[T], bool) {
	c.mu.Lock()
	if c.state.Status != StatusLoading || c.state.Attempt != attempt {
		current := c.state
		c.mu.Unlock()
		return current, false
	}

	if err != nil {
		c.state = State[T]{Status: StatusError, Err: NewOperationFailure(err), Attempt: attempt}
	} else {
		data := value
		c.state = State[T]{Status: StatusSuccess, Data: &data, Attempt: attempt}
	}
	settledState := c.state

	close(c.settled)
	c.settled = nil
	c.enqueueLocked()
	c.mu.Unlock()

	c.dispatch()
	return settledState, true
}

// Trigger starts op on its own goroutine and returns immediately. It
// returns false without side effects if an attempt is already in flight.
// The outcome is delivered through State and Subscribe.
func (c *Controller[T]) Trigger(ctx context.Context, op Operation[T]) bool {
	attempt, ok := c.Begin()
	if !ok {
		return false
	}

	go func() {
		value, err := Invoke(ctx, op)
		c.Settle(attempt, value, err)
	}()
	return true
}

// Run is the blocking form of Trigger. It returns the settled state of its
// own attempt, or the current state and false if the trigger was ignored.
// Listeners are notified of the terminal state before Run returns unless
// another goroutine is already delivering notifications, in which case that
// goroutine delivers it and Run may return first.
func (c *Controller[T]) Run(ctx context.Context, op Operation[T]) (State[T], bool) {
	attempt, ok := c.Begin()
	if !ok {
		return c.State(), false
	}

	value, err := Invoke(ctx, op)
	return c.settle(attempt, value, err)
}

// Wait blocks until no attempt is in flight or ctx is done.
func (c *Controller[T]) Wait(ctx context.Context) error {
	c.mu.Lock()
	settled := c.settled
	c.mu.Unlock()

	if settled == nil {
		return nil
	}
	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Invoke runs op and converts a panic into an error.
func Invoke[T any](ctx context.Context, op Operation[T]) (value T, err error) {
	if op == nil {
		return value, ErrNilOperation
	}

	recovered := panics.Try(func() {
		value, err = op(ctx)
	})
	if recovered != nil {
		var zero T
		return zero, fmt.Errorf("operation panicked: %w", recovered.AsError())
	}
	return value, err
}

func (c *Controller[T]) enqueueLocked() {
	c.pending = append(c.pending, c.state)
}

// dispatch delivers queued snapshots. If another goroutine is already
// draining the queue it will pick up whatever was just enqueued.
func (c *Controller[T]) dispatch() {
	c.mu.Lock()
	if c.dispatching {
		c.mu.Unlock()
		return
	}
	c.dispatching = true

	for len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		listeners := make([]subscription[T], len(c.listeners))
		copy(listeners, c.listeners)
		c.mu.Unlock()

		for _, sub := range listeners {
			// A panicking listener must not wedge the queue.
			_ = panics.Try(func() { sub.fn(next) })
		}

		c.mu.Lock()
	}

	c.dispatching = false
	c.mu.Unlock()
}
