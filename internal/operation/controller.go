// Package operation models user-triggered asynchronous operations as small
// state machines that a view can render: idle, pending, succeeded or failed.
package operation

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/careerbot/internal/logger"
)

var (
	// ErrInFlight is returned by Run when a cycle is already pending on the controller.
	ErrInFlight = errors.New("operation already in progress")
	// ErrDetached is returned by Run when the controller was closed or reset
	// before the operation completed. The late result is discarded.
	ErrDetached = errors.New("operation result discarded")
)

type Status int

const (
	Idle Status = iota
	Pending
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of a controller. Result is only set when Status is
// Succeeded and Err is only set when Status is Failed.
type State[T any] struct {
	Status Status
	Result T
	Err    error
}

func (s State[T]) IsPending() bool { return s.Status == Pending }

// Ok returns the result of a succeeded operation.
func (s State[T]) Ok() (T, bool) {
	if s.Status != Succeeded {
		var zero T
		return zero, false
	}
	return s.Result, true
}

// Controller drives one request/response cycle at a time for a single
// feature. Each feature owns its own controller.
type Controller[T any] struct {
	name   string
	logger *zap.Logger

	mu          sync.Mutex
	state       State[T]
	generation  uint64
	closed      bool
	nextSub     int
	subscribers map[int]func(State[T])
}

func New[T any](name string, log *zap.Logger) *Controller[T] {
	return &Controller[T]{
		name:        name,
		logger:      logger.WithOperation(log, name),
		subscribers: make(map[int]func(State[T])),
	}
}

func (c *Controller[T]) Name() string { return c.name }

// State returns the current snapshot.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start moves the controller to Pending. It returns false and changes
// nothing when a cycle is already pending or the controller is closed.
func (c *Controller[T]) Start() bool {
	_, err := c.start()
	return err == nil
}

// Succeed records the result of the pending cycle.
func (c *Controller[T]) Succeed(result T) bool {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	return c.complete(gen, State[T]{Status: Succeeded, Result: result})
}

// Fail records the error of the pending cycle.
func (c *Controller[T]) Fail(err error) bool {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	return c.complete(gen, State[T]{Status: Failed, Err: err})
}

// Reset returns the controller to Idle. A pending cycle is detached so its
// completion is ignored. Resetting an idle controller does nothing.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	if c.state.Status == Idle {
		c.mu.Unlock()
		return
	}
	c.generation++
	c.state = State[T]{}
	next, subs := c.state, c.snapshotSubscribers()
	c.mu.Unlock()

	c.logger.Debug("operation reset")
	publish(subs, next)
}

// Close marks the owner as gone. Every later Start, Succeed or Fail is a
// no-op and in-flight Run calls return ErrDetached.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.generation++
	c.subscribers = make(map[int]func(State[T]))
}

// Subscribe registers fn to receive every state change. The returned
// function removes the subscription.
func (c *Controller[T]) Subscribe(fn func(State[T])) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Run starts a cycle, calls fn and records its outcome. fn is not called
// when a cycle is already pending (ErrInFlight) or the controller is closed
// (ErrDetached).
func (c *Controller[T]) Run(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	gen, err := c.start()
	if err != nil {
		return zero, err
	}

	result, err := fn(ctx)

	next := State[T]{Status: Succeeded, Result: result}
	if err != nil {
		next = State[T]{Status: Failed, Err: err}
	}

	if !c.complete(gen, next) {
		return zero, ErrDetached
	}

	if err != nil {
		return zero, err
	}
	return result, nil
}

func (c *Controller[T]) start() (uint64, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("start ignored", zap.String("reason", "controller closed"))
		return 0, ErrDetached
	}
	if c.state.Status == Pending {
		c.mu.Unlock()
		c.logger.Debug("start ignored", zap.String("reason", "already pending"))
		return 0, ErrInFlight
	}

	c.generation++
	gen := c.generation
	c.state = State[T]{Status: Pending}
	next, subs := c.state, c.snapshotSubscribers()
	c.mu.Unlock()

	c.logger.Debug("operation started")
	publish(subs, next)
	return gen, nil
}

func (c *Controller[T]) complete(gen uint64, next State[T]) bool {
	c.mu.Lock()
	if c.closed || gen != c.generation || c.state.Status != Pending {
		c.mu.Unlock()
		c.logger.Debug("completion ignored", zap.Stringer("status", next.Status))
		return false
	}

	c.state = next
	subs := c.snapshotSubscribers()
	c.mu.Unlock()

	if next.Status == Failed {
		c.logger.Debug("operation failed", zap.Error(next.Err))
	} else {
		c.logger.Debug("operation succeeded")
	}

	publish(subs, next)
	return true
}

func (c *Controller[T]) snapshotSubscribers() []func(State[T]) {
	subs := make([]func(State[T]), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func publish[T any](subs []func(State[T]), state State[T]) {
	for _, fn := range subs {
		fn(state)
	}
}
