// Package engine owns the task list, the sampled clock and the persisted
// completion set, and derives per-task visibility and unlock state from them.
//
// An Engine is not safe for concurrent use. Callers drive it from a single
// goroutine (see internal/scheduler).
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dotcommander/timegate/internal/clock"
	"github.com/dotcommander/timegate/internal/kv"
)

// Options configures a new Engine.
type Options struct {
	Tasks []Task
	Store kv.Store
	Clock clock.Clock

	// EventStart gates all interaction until reached. Zero means already started.
	EventStart time.Time
	// Intro enables the one-time rules acknowledgement.
	Intro bool

	// Journal, when set, records applied toggles and intro acceptance.
	Journal Journal
	Logger  *slog.Logger
}

// Engine is the task scheduler and unlock state machine.
type Engine struct {
	tasks []Task
	index map[int]int

	completed map[int]bool
	// latched flags keep visibility monotonic for the engine's lifetime.
	seen     map[int]bool
	revealed map[int]bool

	store   kv.Store
	clk     clock.Clock
	journal Journal
	log     *slog.Logger

	now          time.Time
	eventStart   time.Time
	started      bool
	introEnabled bool
	hasSeenIntro bool
	phase        Phase

	sessionID string
}

// New builds an engine from static task definitions and loads persisted state.
// Missing or malformed persisted values fall back to defaults. The only errors
// are invalid task definitions and missing collaborators.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("engine: store is required")
	}
	if opts.Clock == nil {
		return nil, errors.New("engine: clock is required")
	}

	tasks := slices.Clone(opts.Tasks)
	slices.SortFunc(tasks, func(a, b Task) int { return a.ID - b.ID })

	index := make(map[int]int, len(tasks))
	for i, t := range tasks {
		if t.ID <= 0 {
			return nil, fmt.Errorf("engine: task id must be positive, got %d", t.ID)
		}
		if _, dup := index[t.ID]; dup {
			return nil, fmt.Errorf("engine: duplicate task id %d", t.ID)
		}
		index[t.ID] = i
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		tasks:        tasks,
		index:        index,
		completed:    make(map[int]bool),
		seen:         make(map[int]bool),
		revealed:     make(map[int]bool),
		store:        opts.Store,
		clk:          opts.Clock,
		journal:      opts.Journal,
		log:          logger,
		eventStart:   opts.EventStart,
		introEnabled: opts.Intro,
		sessionID:    uuid.NewString(),
		phase:        WaitingForEvent,
	}

	e.loadCompleted(ctx)
	e.loadIntroFlag(ctx)
	e.Sample()
	return e, nil
}

func (e *Engine) loadCompleted(ctx context.Context) {
	raw, ok, err := e.store.Get(ctx, kv.KeyCompletedTasks)
	if err != nil {
		e.log.Warn("read completed tasks failed; starting empty", "error", err.Error())
		return
	}
	if !ok {
		return
	}
	ids, err := kv.DecodeIDs(raw)
	if err != nil {
		e.log.Warn("malformed completed tasks; starting empty", "error", err.Error())
		return
	}
	for _, id := range ids {
		if _, known := e.index[id]; !known {
			e.log.Warn("dropping unknown completed task id", "task_id", id)
			continue
		}
		e.completed[id] = true
	}
}

func (e *Engine) loadIntroFlag(ctx context.Context) {
	raw, ok, err := e.store.Get(ctx, kv.KeyHasVisited)
	if err != nil {
		e.log.Warn("read intro flag failed; treating as unseen", "error", err.Error())
		return
	}
	e.hasSeenIntro = ok && kv.DecodeFlag(raw)
}

// Sample reads the clock and recomputes all derived state. It is the
// handler for both periodic ticks.
func (e *Engine) Sample() time.Time {
	e.now = e.clk.Now()
	tod := clock.Of(e.now)

	for _, t := range e.tasks {
		visible, described := resolveVisibility(t, tod)
		if visible {
			e.seen[t.ID] = true
		}
		if described {
			e.revealed[t.ID] = true
		}
	}

	if !e.started && (e.eventStart.IsZero() || !e.now.Before(e.eventStart)) {
		e.started = true
	}
	e.advancePhase()
	return e.now
}

// Now returns the time of the last sample.
func (e *Engine) Now() time.Time {
	return e.now
}

// SessionID identifies this engine instance in the journal.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Tasks returns the static definitions in id order.
func (e *Engine) Tasks() []Task {
	return slices.Clone(e.tasks)
}

// State returns the derived state of one task.
func (e *Engine) State(id int) (TaskState, bool) {
	i, ok := e.index[id]
	if !ok {
		return TaskState{}, false
	}
	return e.stateOf(e.tasks[i]), true
}

// States returns derived state for every task in id order.
func (e *Engine) States() []TaskState {
	out := make([]TaskState, 0, len(e.tasks))
	for _, t := range e.tasks {
		out = append(out, e.stateOf(t))
	}
	return out
}

func (e *Engine) stateOf(t Task) TaskState {
	described := e.revealed[t.ID]
	return TaskState{
		Task:               t,
		Visible:            e.seen[t.ID],
		DescriptionVisible: described,
		Unlockable:         resolveUnlockable(t.ID, described, e.completed),
		Completed:          e.completed[t.ID],
	}
}

// CompletedIDs returns the in-memory completed set in ascending order.
func (e *Engine) CompletedIDs() []int {
	ids := make([]int, 0, len(e.completed))
	for id := range e.completed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
