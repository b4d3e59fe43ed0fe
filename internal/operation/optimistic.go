package operation

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// List holds list-like view state that supports optimistic removal.
type List[T any] struct {
	logger *zap.Logger

	mu          sync.Mutex
	items       []T
	nextSub     int
	subscribers map[int]func([]T)
}

func NewList[T any](items []T, logger *zap.Logger) *List[T] {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &List[T]{
		logger:      logger,
		items:       slices.Clone(items),
		subscribers: make(map[int]func([]T)),
	}
}

// Items returns a copy of the current items.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Replace swaps the whole list.
func (l *List[T]) Replace(items []T) {
	items = slices.Clone(items)
	l.update(func([]T) []T { return items })
}

func (l *List[T]) Append(item T) {
	l.update(func(current []T) []T { return append(current, item) })
}

// Subscribe registers fn to receive every published list.
func (l *List[T]) Subscribe(fn func([]T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextSub
	l.nextSub++
	l.subscribers[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subscribers, id)
	}
}

// RemoveOptimistic removes every item matching match before commit runs.
// When commit fails the list is restored to the snapshot taken before the
// removal, discarding any change made in between, and the commit error is
// returned.
func (l *List[T]) RemoveOptimistic(ctx context.Context, match func(T) bool, commit func(context.Context) error) error {
	var before []T
	after := l.update(func(current []T) []T {
		before = slices.Clone(current)
		return slices.DeleteFunc(current, match)
	})

	l.logger.Debug("optimistic removal",
		zap.Int("before", len(before)),
		zap.Int("after", len(after)),
	)

	if err := commit(ctx); err != nil {
		l.logger.Debug("rolling back optimistic removal", zap.Error(err))
		l.update(func([]T) []T { return before })
		return err
	}

	return nil
}

// update replaces the items with fn(copy of items) in one critical section
// and publishes the result after unlocking.
func (l *List[T]) update(fn func([]T) []T) []T {
	l.mu.Lock()
	next := fn(slices.Clone(l.items))
	l.items = next
	subs := make([]func([]T), 0, len(l.subscribers))
	for _, sub := range l.subscribers {
		subs = append(subs, sub)
	}
	l.mu.Unlock()

	for _, sub := range subs {
		sub(slices.Clone(next))
	}
	return slices.Clone(next)
}
