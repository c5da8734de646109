package engine

import (
	"github.com/dotcommander/timegate/internal/clock"
)

// Task is a static checklist entry. IDs define the dependency chain: task k
// waits on task k-1.
type Task struct {
	ID               int             `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	UnlockAt         clock.TimeOfDay `json:"unlock_at"`
	RevealAt         clock.TimeOfDay `json:"reveal_at"`
	InitiallyVisible bool            `json:"initially_visible,omitempty"`
}

// TaskState is a task plus its derived flags at the last sample.
type TaskState struct {
	Task
	Visible            bool `json:"visible"`
	DescriptionVisible bool `json:"description_visible"`
	Unlockable         bool `json:"unlockable"`
	Completed          bool `json:"completed"`
}

// resolveVisibility applies the minute-of-day rules. There is no date
// component: 00:30 counts as reached for every sample at or after 00:30.
func resolveVisibility(t Task, now clock.TimeOfDay) (visible, descriptionVisible bool) {
	visible = t.InitiallyVisible || t.UnlockAt.Reached(now)
	descriptionVisible = t.RevealAt.Reached(now)
	return visible, descriptionVisible
}

// resolveUnlockable decides whether the completion toggle is actionable.
// Completed tasks stay actionable so they can be un-completed.
func resolveUnlockable(id int, descriptionVisible bool, completed map[int]bool) bool {
	if completed[id] {
		return true
	}
	return (id == 1 || completed[id-1]) && descriptionVisible
}
