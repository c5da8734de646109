package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func runLoop(t *testing.T, l *Loop) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, errCh
}

func TestEvery_TicksUntilStopped(t *testing.T) {
	l := New(8, quietLogger)
	var ticks atomic.Int32
	h := l.Every("fast", 5*time.Millisecond, func(time.Time) { ticks.Add(1) })
	assert.Equal(t, "fast", h.Name())

	runLoop(t, l)

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	h.Stop()
	h.Stop() // idempotent
	assert.Equal(t, 0, l.Active())

	settled := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	// At most one tick already queued before Stop may still run.
	assert.LessOrEqual(t, ticks.Load(), settled+1)
}

func TestRun_CancelReleasesAllTickers(t *testing.T) {
	l := New(8, quietLogger)
	l.Every("countdown", time.Millisecond, func(time.Time) {})
	l.Every("visibility", 2*time.Millisecond, func(time.Time) {})
	require.Equal(t, 2, l.Active())

	cancel, errCh := runLoop(t, l)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 0, l.Active())

	// Registering after shutdown yields an already-stopped handle.
	h := l.Every("late", time.Millisecond, func(time.Time) {})
	h.Stop()
	assert.Equal(t, 0, l.Active())

	require.ErrorIs(t, l.Do(context.Background(), func() {}), ErrStopped)
	require.Error(t, l.Run(context.Background()))
}

func TestDo_RunsHandlersInOrderOnOneGoroutine(t *testing.T) {
	l := New(16, quietLogger)
	runLoop(t, l)

	var (
		inFlight atomic.Int32
		overlap  atomic.Bool
		order    []int
		done     = make(chan struct{})
	)
	l.Every("tick", time.Millisecond, func(time.Time) {
		if inFlight.Add(1) > 1 {
			overlap.Store(true)
		}
		time.Sleep(100 * time.Microsecond)
		inFlight.Add(-1)
	})

	for i := range 20 {
		require.NoError(t, l.Do(context.Background(), func() {
			if inFlight.Add(1) > 1 {
				overlap.Store(true)
			}
			order = append(order, i)
			inFlight.Add(-1)
			if i == 19 {
				close(done)
			}
		}))
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("events not processed")
	}

	result := make(chan []int, 1)
	require.NoError(t, l.Do(context.Background(), func() { result <- append([]int(nil), order...) }))
	got := <-result

	want := make([]int, 20)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
	assert.False(t, overlap.Load(), "handlers overlapped")
}

func TestDo_RespectsContext(t *testing.T) {
	l := New(1, quietLogger)
	// Not running: first Do fills the queue, second blocks until ctx ends.
	require.NoError(t, l.Do(context.Background(), func() {}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, l.Do(ctx, func() {}), context.DeadlineExceeded)
}

func TestRun_RecoversHandlerPanic(t *testing.T) {
	l := New(4, quietLogger)
	runLoop(t, l)

	require.NoError(t, l.Do(context.Background(), func() { panic("boom") }))

	ran := make(chan struct{})
	require.NoError(t, l.Do(context.Background(), func() { close(ran) }))
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("loop died after panic")
	}
}
