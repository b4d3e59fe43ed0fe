package theme

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/careerbot/internal/kvstore"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		stored      []byte
		defaultDark bool
		want        bool
	}{
		{name: "nothing stored uses default", defaultDark: true, want: true},
		{name: "stored dark", stored: []byte("true"), want: true},
		{name: "stored light wins over default", stored: []byte("false"), defaultDark: true, want: false},
		{name: "corrupted falls back to light", stored: []byte("{"), defaultDark: true, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := kvstore.NewMemory()
			if tt.stored != nil {
				require.NoError(t, store.Set(ctx, StoreKey, tt.stored))
			}

			p, err := Load(ctx, store, tt.defaultDark, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.IsDark())
		})
	}
}

func TestTogglePersists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := kvstore.NewMemory()

	p, err := Load(ctx, store, false, nil)
	require.NoError(t, err)

	dark, err := p.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, dark)
	assert.Equal(t, "dark", p.Name())

	reloaded, err := Load(ctx, store, false, nil)
	require.NoError(t, err)
	assert.True(t, reloaded.IsDark())

	dark, err = reloaded.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, dark)
	assert.Equal(t, "light", reloaded.Name())
}

func TestSubscribeFollowsStoredPreference(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := kvstore.NewMemory()
	p, err := Load(ctx, store, false, nil)
	require.NoError(t, err)

	var seen []bool
	cancel := p.Subscribe(func(dark bool) { seen = append(seen, dark) })

	_, err = p.Toggle(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "auth", []byte(`{}`)))
	require.NoError(t, store.Set(ctx, StoreKey, []byte("{")))
	require.NoError(t, p.Set(ctx, false))

	cancel()
	require.NoError(t, p.Set(ctx, true))

	assert.Equal(t, []bool{true, false}, seen)
}
