package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()

	return map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemory() },
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "state.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestStoreGetSetDelete(t *testing.T) {
	t.Parallel()

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			s := open(t)

			_, ok, err := s.Get(ctx, "auth")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "auth", []byte(`{"isLoggedIn":true}`)))
			require.NoError(t, s.Set(ctx, "auth", []byte(`{"isLoggedIn":false}`)))

			value, ok, err := s.Get(ctx, "auth")
			require.NoError(t, err)
			require.True(t, ok)
			assert.JSONEq(t, `{"isLoggedIn":false}`, string(value))

			require.NoError(t, s.Delete(ctx, "auth"))
			require.NoError(t, s.Delete(ctx, "auth"))

			_, ok, err = s.Get(ctx, "auth")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreSubscribe(t *testing.T) {
	t.Parallel()

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			s := open(t)

			var changes []Change
			cancel := s.Subscribe(func(c Change) { changes = append(changes, c) })

			require.NoError(t, s.Set(ctx, "isDarkMode", []byte("true")))
			require.NoError(t, s.Delete(ctx, "isDarkMode"))
			cancel()
			require.NoError(t, s.Set(ctx, "isDarkMode", []byte("false")))

			require.Len(t, changes, 2)
			assert.Equal(t, Change{Key: "isDarkMode", Value: []byte("true")}, changes[0])
			assert.Equal(t, Change{Key: "isDarkMode", Deleted: true}, changes[1])
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	first, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, SetJSON(ctx, first, "theme", map[string]bool{"dark": true}))
	require.NoError(t, first.Close())

	second, err := NewSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	var got map[string]bool
	ok, err := GetJSON(ctx, second, "theme", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got["dark"])
}

func TestGetJSONReportsDecodeErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Set(ctx, "auth", []byte("{broken")))

	var target struct{}
	ok, err := GetJSON(ctx, s, "auth", &target)
	assert.True(t, ok)
	assert.Error(t, err)
}
