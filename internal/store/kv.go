package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// KV is a SQLite-backed kv.Store. Keys are scoped by namespace (the plan
// name), so several checklists can share one database file.
type KV struct {
	db        *sql.DB
	namespace string
}

// KVEntry is one stored row, for diagnostics.
type KVEntry struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

// NewKV returns a store for namespace.
func NewKV(db *sql.DB, namespace string) (*KV, error) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return nil, errors.New("kv namespace is required")
	}
	return &KV{db: db, namespace: namespace}, nil
}

// Namespace returns the scope this store reads and writes.
func (s *KV) Namespace() string {
	return s.namespace
}

func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := RetryWithBackoff(func() error {
		return s.db.QueryRowContext(ctx, `
			SELECT value FROM kv WHERE namespace = ? AND key = ?
		`, s.namespace, key).Scan(&value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Set replaces the value in one statement inside a transaction, so readers
// see either the old or the new value.
func (s *KV) Set(ctx context.Context, key, value string) error {
	return Transact(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kv (namespace, key, value, created_at, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			ON CONFLICT(namespace, key) DO UPDATE
			SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
		`, s.namespace, key, value)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
		return nil
	})
}

// Entries lists every key in the namespace ordered by key.
func (s *KV) Entries(ctx context.Context) ([]KVEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, updated_at FROM kv WHERE namespace = ? ORDER BY key
	`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list kv: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []KVEntry
	for rows.Next() {
		var e KVEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan kv row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
