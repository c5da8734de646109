package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dotcommander/timegate/internal/kv"
)

// Reasons a toggle was not applied.
const (
	ReasonUnknownTask = "unknown_task"
	ReasonLocked      = "locked"
	ReasonGated       = "gated"
)

// ToggleResult describes the outcome of Toggle. A rejected toggle is not an error.
type ToggleResult struct {
	TaskID    int    `json:"task_id"`
	Applied   bool   `json:"applied"`
	Completed bool   `json:"completed"`
	Reason    string `json:"reason,omitempty"`
}

// Toggle flips the completed flag of one task if it is unlockable and the
// gate is open, then persists the whole completed set in a single write.
// If the write fails the flip is undone, so memory and storage stay equal.
func (e *Engine) Toggle(ctx context.Context, id int) (ToggleResult, error) {
	res := ToggleResult{TaskID: id}

	i, ok := e.index[id]
	if !ok {
		res.Reason = ReasonUnknownTask
		return res, nil
	}
	res.Completed = e.completed[id]

	if e.phase != Active {
		res.Reason = ReasonGated
		return res, nil
	}
	if !e.stateOf(e.tasks[i]).Unlockable {
		res.Reason = ReasonLocked
		return res, nil
	}

	was := e.completed[id]
	e.setCompleted(id, !was)

	if err := e.store.Set(ctx, kv.KeyCompletedTasks, kv.EncodeIDs(e.CompletedIDs())); err != nil {
		e.setCompleted(id, was)
		return res, fmt.Errorf("persist completed tasks: %w", err)
	}

	res.Applied = true
	res.Completed = !was
	e.record(ctx, JournalEntry{Kind: KindToggle, TaskID: id, Completed: res.Completed})
	e.log.Info("task toggled", "task_id", id, "completed", res.Completed, "session_id", e.sessionID)
	return res, nil
}

func (e *Engine) setCompleted(id int, done bool) {
	if done {
		e.completed[id] = true
		return
	}
	delete(e.completed, id)
}

// Journal kinds.
const (
	KindToggle        = "task_toggled"
	KindIntroAccepted = "intro_accepted"
)

// JournalEntry is one applied state change.
type JournalEntry struct {
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	TaskID    int       `json:"task_id,omitempty"`
	Completed bool      `json:"completed"`
	At        time.Time `json:"at"`
}

// Journal records applied changes. It is an audit trail, not a source of
// truth: failures are logged and never undo the change.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
}

func (e *Engine) record(ctx context.Context, entry JournalEntry) {
	if e.journal == nil {
		return
	}
	entry.SessionID = e.sessionID
	if entry.At.IsZero() {
		entry.At = e.now
	}
	if err := e.journal.Record(ctx, entry); err != nil {
		e.log.Warn("journal write failed", "kind", entry.Kind, "error", err.Error())
	}
}
