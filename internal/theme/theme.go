// Package theme persists the dark-mode preference.
package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/careerbot/internal/kvstore"
)

// StoreKey is the key the preference is persisted under.
const StoreKey = "isDarkMode"

type Preference struct {
	store  kvstore.Store
	logger *zap.Logger

	mu   sync.Mutex
	dark bool
}

// Load reads the stored preference. When nothing is stored defaultDark is
// used; an unreadable value falls back to light mode.
func Load(ctx context.Context, store kvstore.Store, defaultDark bool, logger *zap.Logger) (*Preference, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Preference{store: store, logger: logger, dark: defaultDark}

	var dark bool
	found, err := kvstore.GetJSON(ctx, store, StoreKey, &dark)
	switch {
	case err != nil && !found:
		return nil, fmt.Errorf("load theme: %w", err)
	case err != nil:
		logger.Warn("ignoring unreadable theme preference", zap.Error(err))
		p.dark = false
	case found:
		p.dark = dark
	}

	return p, nil
}

func (p *Preference) IsDark() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dark
}

// Toggle flips the preference and returns the new value.
func (p *Preference) Toggle(ctx context.Context) (bool, error) {
	p.mu.Lock()
	next := !p.dark
	p.mu.Unlock()

	if err := p.Set(ctx, next); err != nil {
		return !next, err
	}
	return next, nil
}

func (p *Preference) Set(ctx context.Context, dark bool) error {
	if err := kvstore.SetJSON(ctx, p.store, StoreKey, dark); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}

	p.mu.Lock()
	p.dark = dark
	p.mu.Unlock()

	p.logger.Debug("theme changed", zap.Bool("dark", dark))
	return nil
}

// Subscribe calls fn with the new value whenever the preference is written
// to the store.
func (p *Preference) Subscribe(fn func(dark bool)) func() {
	return p.store.Subscribe(func(c kvstore.Change) {
		if c.Key != StoreKey || c.Deleted {
			return
		}
		var dark bool
		if err := json.Unmarshal(c.Value, &dark); err != nil {
			p.logger.Debug("ignoring unreadable theme change", zap.Error(err))
			return
		}
		fn(dark)
	})
}

// Name returns "dark" or "light".
func (p *Preference) Name() string {
	if p.IsDark() {
		return "dark"
	}
	return "light"
}
