package operation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

func TestListRemoveOptimisticRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	l := NewList([]string{"A", "B", "C"}, nil)
	failure := errors.New("delete failed")

	err := l.RemoveOptimistic(context.Background(),
		func(s string) bool { return s == "B" },
		func(context.Context) error {
			assert.Equal(t, []string{"A", "C"}, l.Items(), "item disappears before the server answers")
			return failure
		},
	)

	require.ErrorIs(t, err, failure)
	assert.Equal(t, []string{"A", "B", "C"}, l.Items())
}

func TestListRemoveOptimisticKeepsRemovalOnSuccess(t *testing.T) {
	t.Parallel()

	l := NewList([]string{"A", "B", "C"}, nil)

	err := l.RemoveOptimistic(context.Background(),
		func(s string) bool { return s == "B" },
		func(context.Context) error { return nil },
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, l.Items())
}

func TestListKeepsChangesMadeDuringSuccessfulRemoval(t *testing.T) {
	t.Parallel()

	var l *List[string]
	core, _ := observer.New(zapcore.DebugLevel)
	// The hook fires right after the optimistic removal is applied.
	logger := zap.New(core, zap.Hooks(func(e zapcore.Entry) error {
		if e.Message == "optimistic removal" {
			l.Append("D")
		}
		return nil
	}))
	l = NewList([]string{"A", "B", "C"}, logger)

	err := l.RemoveOptimistic(context.Background(),
		func(s string) bool { return s == "B" },
		func(context.Context) error {
			l.Append("E")
			return nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "D", "E"}, l.Items())
}

func TestListRollbackDiscardsInterleavedChanges(t *testing.T) {
	t.Parallel()

	l := NewList([]string{"A", "B"}, nil)

	err := l.RemoveOptimistic(context.Background(),
		func(s string) bool { return s == "A" },
		func(context.Context) error {
			l.Append("D")
			return errors.New("delete failed")
		},
	)

	require.Error(t, err)
	assert.Equal(t, []string{"A", "B"}, l.Items())
}

func TestListSubscribersSeeOptimisticAndRollback(t *testing.T) {
	t.Parallel()

	l := NewList([]int{1, 2, 3}, nil)

	var published [][]int
	l.Subscribe(func(items []int) { published = append(published, items) })

	_ = l.RemoveOptimistic(context.Background(),
		func(i int) bool { return i == 2 },
		func(context.Context) error { return errors.New("nope") },
	)

	assert.Equal(t, [][]int{{1, 3}, {1, 2, 3}}, published)
}

func TestListItemsReturnsCopy(t *testing.T) {
	t.Parallel()

	l := NewList([]int{1, 2}, nil)
	items := l.Items()
	items[0] = 99

	assert.Equal(t, []int{1, 2}, l.Items())
	assert.Equal(t, 2, l.Len())
}
