// Package scheduler runs periodic ticks and discrete events on one goroutine,
// so handlers never interleave.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned by Do after the loop has exited.
var ErrStopped = errors.New("scheduler: loop stopped")

// Loop serializes handler execution. Register periodic tasks with Every and
// submit one-off work with Do; Run executes them until its context ends.
type Loop struct {
	queue chan func()
	done  chan struct{}
	log   *slog.Logger

	mu      sync.Mutex
	handles map[*Handle]struct{}
	running bool
	stopped bool
}

// Handle cancels one periodic task. Stop is idempotent.
type Handle struct {
	name   string
	period time.Duration
	fn     func(time.Time)

	once   sync.Once
	ticker *time.Ticker
	quit   chan struct{}
	loop   *Loop
}

// New returns a loop with room for queueDepth pending events.
func New(queueDepth int, logger *slog.Logger) *Loop {
	if queueDepth < 1 {
		queueDepth = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		queue:   make(chan func(), queueDepth),
		done:    make(chan struct{}),
		log:     logger,
		handles: make(map[*Handle]struct{}),
	}
}

// Every registers fn to run every period on the loop goroutine. Tasks
// registered before Run start ticking when Run starts.
func (l *Loop) Every(name string, period time.Duration, fn func(now time.Time)) *Handle {
	h := &Handle{name: name, period: period, fn: fn, quit: make(chan struct{}), loop: l}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		h.once.Do(func() { close(h.quit) })
		return h
	}
	l.handles[h] = struct{}{}
	if l.running {
		h.start()
	}
	return h
}

// Stop cancels the periodic task and releases its ticker.
func (h *Handle) Stop() {
	h.once.Do(func() {
		close(h.quit)
		h.loop.mu.Lock()
		delete(h.loop.handles, h)
		if h.ticker != nil {
			h.ticker.Stop()
		}
		h.loop.mu.Unlock()
	})
}

// Name returns the task name given to Every.
func (h *Handle) Name() string {
	return h.name
}

// start launches the ticker pump. Caller holds loop.mu.
func (h *Handle) start() {
	h.ticker = time.NewTicker(h.period)
	go func() {
		for {
			select {
			case now := <-h.ticker.C:
				select {
				case h.loop.queue <- func() { h.fn(now) }:
				case <-h.quit:
					return
				case <-h.loop.done:
					return
				}
			case <-h.quit:
				return
			case <-h.loop.done:
				return
			}
		}
	}()
}

// Do enqueues fn to run on the loop goroutine. It blocks while the queue is
// full and fails once the loop has stopped or ctx ends.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.queue <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes queued handlers until ctx is cancelled, then stops every
// periodic task. A loop runs once.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running || l.stopped {
		l.mu.Unlock()
		return errors.New("scheduler: loop already run")
	}
	l.running = true
	for h := range l.handles {
		h.start()
	}
	l.mu.Unlock()

	defer l.shutdown()

	for {
		select {
		case fn := <-l.queue:
			l.invoke(fn)
		case <-ctx.Done():
			return nil
		}
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("scheduler handler panicked", "panic", r)
		}
	}()
	fn()
}

func (l *Loop) shutdown() {
	l.mu.Lock()
	l.stopped = true
	l.running = false
	handles := make([]*Handle, 0, len(l.handles))
	for h := range l.handles {
		handles = append(handles, h)
	}
	l.mu.Unlock()

	close(l.done)
	for _, h := range handles {
		h.Stop()
	}
}

// Active returns the number of periodic tasks still registered.
func (l *Loop) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.handles)
}
