// Package kv defines the persisted key-value capability the engine writes
// completion and intro state through, plus the value codecs for its two keys.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
)

// Persisted keys.
const (
	KeyCompletedTasks = "completedTasks"
	KeyHasVisited     = "hasVisited"
)

// FlagTrue is the only value of KeyHasVisited that reads as set.
const FlagTrue = "true"

// Store is a string key-value store scoped to one application instance.
// Get reports ok=false for a missing key. Set replaces the whole value.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// EncodeIDs renders ids as a JSON integer array in ascending order.
// A nil or empty set encodes as "[]".
func EncodeIDs(ids []int) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if sorted == nil {
		sorted = []int{}
	}
	b, err := json.Marshal(sorted)
	if err != nil {
		// []int always marshals.
		return "[]"
	}
	return string(b)
}

// DecodeIDs parses a JSON integer array. Anything else is an error; callers
// treat that as an empty set.
func DecodeIDs(value string) ([]int, error) {
	var ids []int
	if err := json.Unmarshal([]byte(value), &ids); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyCompletedTasks, err)
	}
	return ids, nil
}

// DecodeFlag reports whether value is exactly FlagTrue.
func DecodeFlag(value string) bool {
	return value == FlagTrue
}
