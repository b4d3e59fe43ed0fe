// Package session keeps the single source of truth for "is the user logged
// in" and persists it across process restarts.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/careerbot/internal/kvstore"
)

// StoreKey is the key the session is persisted under.
const StoreKey = "auth"

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is the persisted authentication state. User and Token are only
// set while IsAuthenticated is true.
type Session struct {
	IsAuthenticated bool   `json:"isLoggedIn"`
	User            *User  `json:"user"`
	Token           string `json:"token,omitempty"`
}

// Manager owns the process-wide session. It moves between Anonymous and
// Authenticated and writes every transition to the store.
type Manager struct {
	store  kvstore.Store
	logger *zap.Logger

	writeMu sync.Mutex

	mu          sync.Mutex
	current     Session
	nextSub     int
	subscribers map[int]func(Session)
}

// Restore creates a Manager initialised from the store. An unreadable
// persisted session is logged and treated as anonymous.
func Restore(ctx context.Context, store kvstore.Store, logger *zap.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		store:       store,
		logger:      logger,
		subscribers: make(map[int]func(Session)),
	}

	var saved Session
	found, err := kvstore.GetJSON(ctx, store, StoreKey, &saved)
	switch {
	case err != nil && !found:
		return nil, fmt.Errorf("restore session: %w", err)
	case err != nil:
		logger.Warn("ignoring unreadable persisted session", zap.Error(err))
	case found && saved.IsAuthenticated && saved.Token != "":
		m.current = saved
	}

	logger.Debug("session restored", zap.Bool("authenticated", m.current.IsAuthenticated))
	return m, nil
}

// Current returns a copy of the session.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.current)
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.IsAuthenticated
}

// Token returns the bearer token or an empty string when anonymous.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Token
}

// LoginSuccess authenticates the session and persists it.
func (m *Manager) LoginSuccess(ctx context.Context, user User, token string) error {
	if token == "" {
		return fmt.Errorf("login succeeded without a token")
	}

	u := user
	return m.transition(ctx, Session{IsAuthenticated: true, User: &u, Token: token}, "login")
}

// Logout clears the session both in memory and in the store.
func (m *Manager) Logout(ctx context.Context) error {
	return m.transition(ctx, Session{}, "logout")
}

// Invalidate drops an authenticated session after the backend rejected its
// credentials. It does nothing when the session is already anonymous.
func (m *Manager) Invalidate(ctx context.Context) error {
	if !m.IsAuthenticated() {
		return nil
	}

	m.logger.Warn("session rejected by the server, logging out")
	return m.transition(ctx, Session{}, "invalidate")
}

// Subscribe registers fn for every session transition.
func (m *Manager) Subscribe(fn func(Session)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// transition persists next and only then makes it current, so memory and
// store never disagree. Transitions are serialized by writeMu.
func (m *Manager) transition(ctx context.Context, next Session, reason string) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	persisted := next
	if !next.IsAuthenticated {
		persisted = Session{}
	}
	if err := kvstore.SetJSON(ctx, m.store, StoreKey, persisted); err != nil {
		m.logger.Warn("session transition not persisted", zap.String("reason", reason), zap.Error(err))
		return fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	m.current = persisted
	subs := make([]func(Session), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	m.logger.Debug("session transition",
		zap.String("reason", reason),
		zap.Bool("authenticated", persisted.IsAuthenticated),
	)

	for _, fn := range subs {
		fn(copySession(persisted))
	}
	return nil
}

func copySession(s Session) Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
