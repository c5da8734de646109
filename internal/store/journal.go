package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dotcommander/timegate/internal/engine"
)

// Journal persists applied toggles and intro acceptance for one namespace.
// It implements engine.Journal.
type Journal struct {
	db        *sql.DB
	namespace string
}

// JournalRecord is a stored journal row.
type JournalRecord struct {
	ID int64 `json:"id"`
	engine.JournalEntry
}

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 1000
)

// NewJournal returns a journal writer/reader for namespace.
func NewJournal(db *sql.DB, namespace string) *Journal {
	return &Journal{db: db, namespace: namespace}
}

// Record appends one entry.
func (j *Journal) Record(ctx context.Context, e engine.JournalEntry) error {
	var taskID any
	if e.TaskID > 0 {
		taskID = e.TaskID
	}
	return RetryWithBackoff(func() error {
		_, err := j.db.ExecContext(ctx, `
			INSERT INTO journal (namespace, session_id, kind, task_id, completed, occurred_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, j.namespace, e.SessionID, e.Kind, taskID, boolToInt(e.Completed), e.At.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to insert journal entry: %w", err)
		}
		return nil
	})
}

// List returns the newest entries first. limit <= 0 uses the default.
func (j *Journal) List(ctx context.Context, limit int) ([]JournalRecord, error) {
	if limit <= 0 {
		limit = defaultJournalLimit
	}
	if limit > maxJournalLimit {
		limit = maxJournalLimit
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, kind, task_id, completed, occurred_at
		FROM journal
		WHERE namespace = ?
		ORDER BY id DESC
		LIMIT ?
	`, j.namespace, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []JournalRecord
	for rows.Next() {
		var (
			r          JournalRecord
			taskID     sql.NullInt64
			completed  int
			occurredAt string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Kind, &taskID, &completed, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		if taskID.Valid {
			r.TaskID = int(taskID.Int64)
		}
		r.Completed = completed == 1
		r.At, err = parseStoredTime(occurredAt)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func parseStoredTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable journal time %q", s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
