package plan

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/timegate/internal/clock"
	"github.com/dotcommander/timegate/internal/models"
)

const validPlan = `
name: workshop
timezone: UTC
event_start: "2025-08-13T07:00:00"
intro: true
tasks:
  - id: 2
    title: Second
    unlock_at: "10:00"
    reveal_at: "09:50"
  - id: 1
    title: Intro
    description: Read the rules
    unlock_at: 07:00
    initially_visible: true
`

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, "lista-zadan", p.Name)
	assert.True(t, p.Intro)
	require.Len(t, p.Tasks, 7)

	tasks := p.EngineTasks()
	assert.True(t, tasks[0].InitiallyVisible)
	for _, task := range tasks[1:] {
		assert.Less(t, task.RevealAt.MinutesOfDay(), task.UnlockAt.MinutesOfDay(), "task %d", task.ID)
	}
}

func TestLoad_ValidPlan(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/plans/workshop.yaml", []byte(validPlan), 0o644))

	p, err := Load(fs, "/plans/workshop.yaml")
	require.NoError(t, err)
	assert.Equal(t, "workshop", p.Name)

	start, err := p.EventStartTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 13, 7, 0, 0, 0, time.UTC), start)

	tasks := p.EngineTasks()
	require.Len(t, tasks, 2)
	// reveal_at defaults to unlock_at.
	byID := map[int]clock.TimeOfDay{}
	for _, task := range tasks {
		byID[task.ID] = task.RevealAt
	}
	assert.Equal(t, clock.MustTimeOfDay("07:00"), byID[1])
	assert.Equal(t, clock.MustTimeOfDay("09:50"), byID[2])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope.yaml")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "/nope.yaml", ve.Path)
	assert.Equal(t, "INVALID_PLAN", ve.ErrorCode())
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "yaml"},
		{"unknown field", "name: x\nbogus: 1\ntasks: [{id: 1, title: a, unlock_at: \"07:00\"}]\n", "bogus"},
		{"no tasks", "name: x\ntasks: []\n", "Tasks"},
		{"no name", "tasks: [{id: 1, title: a, unlock_at: \"07:00\"}]\n", "Name"},
		{"bad time", "name: x\ntasks: [{id: 1, title: a, unlock_at: \"7pm\"}]\n", "hhmm"},
		{"signed hour", "name: x\ntasks: [{id: 1, title: a, unlock_at: \"+7:00\"}]\n", "hhmm"},
		{"three digit hour", "name: x\ntasks: [{id: 1, title: a, unlock_at: \"007:00\"}]\n", "hhmm"},
		{"bad reveal", "name: x\ntasks: [{id: 1, title: a, unlock_at: \"07:00\", reveal_at: \"25:00\"}]\n", "hhmm"},
		{"duplicate ids", "name: x\ntasks: [{id: 1, title: a, unlock_at: \"07:00\"}, {id: 1, title: b, unlock_at: \"08:00\"}]\n", "duplicate"},
		{"gap in ids", "name: x\ntasks: [{id: 1, title: a, unlock_at: \"07:00\"}, {id: 3, title: b, unlock_at: \"08:00\"}]\n", "contiguous"},
		{"bad timezone", "name: x\ntimezone: Mars/Olympus\ntasks: [{id: 1, title: a, unlock_at: \"07:00\"}]\n", "timezone"},
		{"bad event start", "name: x\nevent_start: \"13.08.2025\"\ntasks: [{id: 1, title: a, unlock_at: \"07:00\"}]\n", "datetime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var rec models.RecoverableError
			assert.True(t, errors.As(err, &rec))
		})
	}
}

func TestEventStartTime_Unset(t *testing.T) {
	p := &Plan{Name: "x"}
	start, err := p.EventStartTime()
	require.NoError(t, err)
	assert.True(t, start.IsZero())

	loc, err := p.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}
