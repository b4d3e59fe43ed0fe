package session

import (
	"errors"
	"sync"
)

// LoginRoute is where blocked navigation ends up.
const LoginRoute = "/login"

var ErrLoginRequired = errors.New("login required")

// Navigator records where the user is.
type Navigator interface {
	Push(route string)
	Replace(route string)
	Current() string
}

// History is an in-memory Navigator with back navigation.
type History struct {
	mu      sync.Mutex
	entries []string
}

func NewHistory(start string) *History {
	return &History{entries: []string{start}}
}

func (h *History) Push(route string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, route)
}

func (h *History) Replace(route string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		h.entries = []string{route}
		return
	}
	h.entries[len(h.entries)-1] = route
}

func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

// Back drops the current entry and returns the previous one. The first
// entry is never dropped.
func (h *History) Back() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) > 1 {
		h.entries = h.entries[:len(h.entries)-1]
	}
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

// Entries returns a copy of the navigation stack.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Guard gates protected views behind an authenticated session.
type Guard struct {
	session *Manager
	nav     Navigator
}

func NewGuard(session *Manager, nav Navigator) *Guard {
	return &Guard{session: session, nav: nav}
}

// Enter navigates to route and runs view. An anonymous session is sent to
// LoginRoute instead: the entry for route is replaced, view never runs and
// ErrLoginRequired is returned.
func (g *Guard) Enter(route string, view func() error) error {
	g.nav.Push(route)

	if !g.session.IsAuthenticated() {
		g.nav.Replace(LoginRoute)
		return ErrLoginRequired
	}

	return view()
}
