package engine

import (
	"time"

	"github.com/dotcommander/timegate/internal/clock"
)

// Progress counts visible and completed-visible tasks.
type Progress struct {
	Visible   int     `json:"visible"`
	Completed int     `json:"completed"`
	Percent   float64 `json:"percent"`
}

// Snapshot is everything a host needs to render one frame.
type Snapshot struct {
	Phase            Phase           `json:"phase"`
	SampledAt        time.Time       `json:"sampled_at"`
	TimeOfDay        clock.TimeOfDay `json:"time_of_day"`
	EventStart       *time.Time      `json:"event_start,omitempty"`
	EventStarted     bool            `json:"event_started"`
	Countdown        string          `json:"countdown"`
	CountdownSeconds int64           `json:"countdown_seconds"`
	ShowIntro        bool            `json:"show_intro"`
	Tasks            []TaskState     `json:"tasks"`
	Pending          []TaskState     `json:"pending"`
	Done             []TaskState     `json:"done"`
	Progress         Progress        `json:"progress"`
}

// Snapshot captures derived state at the last sample.
func (e *Engine) Snapshot() Snapshot {
	remaining := e.CountdownRemaining()
	s := Snapshot{
		Phase:            e.phase,
		SampledAt:        e.now,
		TimeOfDay:        clock.Of(e.now),
		EventStarted:     e.started,
		Countdown:        FormatCountdown(remaining),
		CountdownSeconds: int64((remaining + time.Second - 1) / time.Second),
		ShowIntro:        e.ShouldShowIntro(),
		Tasks:            e.States(),
		Pending:          []TaskState{},
		Done:             []TaskState{},
	}
	if !e.eventStart.IsZero() {
		start := e.eventStart
		s.EventStart = &start
	}

	for _, ts := range s.Tasks {
		if !ts.Visible {
			continue
		}
		if ts.Completed {
			s.Done = append(s.Done, ts)
		} else {
			s.Pending = append(s.Pending, ts)
		}
	}
	s.Progress = progressOf(len(s.Pending)+len(s.Done), len(s.Done))
	return s
}

func progressOf(visible, completed int) Progress {
	p := Progress{Visible: visible, Completed: completed}
	if visible > 0 {
		p.Percent = float64(completed) / float64(visible) * 100
	}
	return p
}
