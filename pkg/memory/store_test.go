package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	s := New("day-one")

	_, ok, err := s.Get(ctx, "completedTasks")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "completedTasks", "[1]"))
	v, ok, err := s.Get(ctx, "completedTasks")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[1]", v)

	// Overwrite keeps CreatedAt.
	first, _ := s.Entry("completedTasks")
	require.NoError(t, s.Set(ctx, "completedTasks", "[1,2]"))
	second, ok := s.Entry("completedTasks")
	require.True(t, ok)
	assert.Equal(t, "[1,2]", second.Value)
	assert.Equal(t, "day-one", second.Scope)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 2, s.Writes())
}

func TestSeed(t *testing.T) {
	s := Seed("day-one", map[string]string{"hasVisited": "true", "completedTasks": "[1,2]"})
	assert.Equal(t, 0, s.Writes())

	entries := s.List()
	require.Len(t, entries, 2)
	assert.Equal(t, "completedTasks", entries[0].Key)
	assert.Equal(t, "hasVisited", entries[1].Key)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New("x")
	require.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
	_, _, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Writes())
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New("x")

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Set(ctx, fmt.Sprintf("k%d", i%5), fmt.Sprint(i))
			_, _, _ = s.Get(ctx, "k0")
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.List(), 5)
	assert.Equal(t, 50, s.Writes())
}
