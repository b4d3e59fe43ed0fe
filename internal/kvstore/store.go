// Package kvstore provides the persisted client-side key/value store used for
// the session and user preferences.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Change describes a write observed by subscribers.
type Change struct {
	Key     string
	Value   []byte
	Deleted bool
}

// Store defines the read/write/subscribe contract shared by all backends.
type Store interface {
	// Get returns the value stored under key. The boolean is false when the
	// key does not exist.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set creates or replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Subscribe registers fn for every successful Set and Delete.
	Subscribe(fn func(Change)) (cancel func())

	Close() error
}

// GetJSON decodes the value stored under key into target.
func GetJSON(ctx context.Context, s Store, key string, target any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return ok, err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}

	return true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	return s.Set(ctx, key, data)
}

// watchers fans out changes to subscribers. Backends embed it.
type watchers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(Change)
}

func (w *watchers) Subscribe(fn func(Change)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fns == nil {
		w.fns = make(map[int]func(Change))
	}

	id := w.next
	w.next++
	w.fns[id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.fns, id)
	}
}

func (w *watchers) notify(change Change) {
	w.mu.Lock()
	fns := make([]func(Change), 0, len(w.fns))
	for _, fn := range w.fns {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}
