// Package memory is an in-memory key-value store for tests and ephemeral
// sessions. It satisfies the engine's storage capability (kv.Store).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Entry represents a stored key-value pair.
type Entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Scope     string    `json:"scope"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Store holds entries for a single scope. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	scope   string
	entries map[string]*Entry
	writes  int
}

// New returns an empty store for scope.
func New(scope string) *Store {
	return &Store{
		scope:   scope,
		entries: make(map[string]*Entry),
	}
}

// Seed returns a store pre-populated with values, as if they had been
// persisted by an earlier session. Seeding does not count as a write.
func Seed(scope string, values map[string]string) *Store {
	s := New(scope)
	now := time.Now()
	for k, v := range values {
		s.entries[k] = &Entry{Key: k, Value: v, Scope: scope, CreatedAt: now, UpdatedAt: now}
	}
	return s
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	return e.Value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	if e, ok := s.entries[key]; ok {
		e.Value = value
		e.UpdatedAt = now
		return nil
	}
	s.entries[key] = &Entry{Key: key, Value: value, Scope: s.scope, CreatedAt: now, UpdatedAt: now}
	return nil
}

// Entry returns a copy of the stored entry for key.
func (s *Store) Entry(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// List returns all entries ordered by key.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Writes counts Set calls since creation.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
