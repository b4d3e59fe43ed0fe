package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/careerbot/internal/kvstore"
)

func TestSessionPersistenceRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	open := func() (*Manager, func()) {
		store, err := kvstore.NewSQLite(path)
		require.NoError(t, err)
		m, err := Restore(ctx, store, zap.NewNop())
		require.NoError(t, err)
		return m, func() { _ = store.Close() }
	}

	m, closeStore := open()
	assert.False(t, m.IsAuthenticated())
	require.NoError(t, m.LoginSuccess(ctx, User{ID: "7", Name: "Mina"}, "jwt-token"))
	closeStore()

	m, closeStore = open()
	current := m.Current()
	assert.True(t, current.IsAuthenticated)
	require.NotNil(t, current.User)
	assert.Equal(t, User{ID: "7", Name: "Mina"}, *current.User)
	assert.Equal(t, "jwt-token", m.Token())

	require.NoError(t, m.Logout(ctx))
	closeStore()

	m, closeStore = open()
	defer closeStore()
	assert.Equal(t, Session{}, m.Current())
}

func TestInvalidateOnlyActsWhenAuthenticated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := kvstore.NewMemory()
	m, err := Restore(ctx, store, nil)
	require.NoError(t, err)

	var transitions int
	m.Subscribe(func(Session) { transitions++ })

	require.NoError(t, m.Invalidate(ctx))
	assert.Zero(t, transitions)

	require.NoError(t, m.LoginSuccess(ctx, User{ID: "1"}, "t"))
	require.NoError(t, m.Invalidate(ctx))
	assert.Equal(t, 2, transitions)
	assert.False(t, m.IsAuthenticated())

	var persisted Session
	ok, err := kvstore.GetJSON(ctx, store, StoreKey, &persisted)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, persisted.IsAuthenticated)
	assert.Empty(t, persisted.Token)
}

func TestRestoreIgnoresCorruptedSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := kvstore.NewMemory()
	require.NoError(t, store.Set(ctx, StoreKey, []byte("not json")))

	core, logs := observer.New(zapcore.WarnLevel)
	m, err := Restore(ctx, store, zap.New(core))
	require.NoError(t, err)

	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, 1, logs.Len())
}

func TestRestoreRequiresToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := kvstore.NewMemory()
	require.NoError(t, store.Set(ctx, StoreKey, []byte(`{"isLoggedIn":true,"user":{"id":"1","name":"a"}}`)))

	m, err := Restore(ctx, store, nil)
	require.NoError(t, err)
	assert.False(t, m.IsAuthenticated())
}

func TestLoginSuccessRequiresToken(t *testing.T) {
	t.Parallel()

	m, err := Restore(context.Background(), kvstore.NewMemory(), nil)
	require.NoError(t, err)

	assert.Error(t, m.LoginSuccess(context.Background(), User{ID: "1"}, ""))
	assert.False(t, m.IsAuthenticated())
}

func TestCurrentReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, err := Restore(ctx, kvstore.NewMemory(), nil)
	require.NoError(t, err)
	require.NoError(t, m.LoginSuccess(ctx, User{ID: "1", Name: "a"}, "t"))

	current := m.Current()
	current.User.Name = "changed"

	assert.Equal(t, "a", m.Current().User.Name)
}

type failingStore struct {
	*kvstore.Memory
	err error
}

func (s *failingStore) Set(context.Context, string, []byte) error { return s.err }

func TestTransitionKeepsStateWhenPersistFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &failingStore{Memory: kvstore.NewMemory(), err: errors.New("disk full")}
	m, err := Restore(ctx, store, nil)
	require.NoError(t, err)

	var notified int
	m.Subscribe(func(Session) { notified++ })

	err = m.LoginSuccess(ctx, User{ID: "7", Name: "Mina"}, "tok")
	require.ErrorIs(t, err, store.err)
	assert.False(t, m.IsAuthenticated())
	assert.Empty(t, m.Token())
	assert.Equal(t, Session{}, m.Current())
	assert.Zero(t, notified)

	store.err = nil
	require.NoError(t, m.LoginSuccess(ctx, User{ID: "7", Name: "Mina"}, "tok"))
	assert.True(t, m.IsAuthenticated())

	store.err = errors.New("disk full")
	require.Error(t, m.Logout(ctx))
	assert.True(t, m.IsAuthenticated(), "session stays as persisted")
	assert.Equal(t, 1, notified)
}
