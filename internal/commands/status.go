package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/timegate/internal/clock"
	"github.com/dotcommander/timegate/internal/engine"
	"github.com/dotcommander/timegate/internal/output"
)

type statusResponse struct {
	Plan         string          `json:"plan"`
	PlanSource   string          `json:"plan_source"`
	Store        string          `json:"store"`
	SessionID    string          `json:"session_id"`
	Phase        engine.Phase    `json:"phase"`
	SampledAt    time.Time       `json:"sampled_at"`
	TimeOfDay    clock.TimeOfDay `json:"time_of_day"`
	EventStarted bool            `json:"event_started"`
	Countdown    string          `json:"countdown"`
	ShowIntro    bool            `json:"show_intro"`
	Progress     engine.Progress `json:"progress"`
	NextUnlock   *taskView       `json:"next_unlock,omitempty"`
}

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the gate phase, countdown and progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, false, func(s *session) error {
				snap := s.Engine.Snapshot()
				resp := statusResponse{
					Plan:         s.Plan.Name,
					PlanSource:   s.PlanSource,
					Store:        s.StoreKind,
					SessionID:    s.Engine.SessionID(),
					Phase:        snap.Phase,
					SampledAt:    snap.SampledAt,
					TimeOfDay:    snap.TimeOfDay,
					EventStarted: snap.EventStarted,
					Countdown:    snap.Countdown,
					ShowIntro:    snap.ShowIntro,
					Progress:     snap.Progress,
				}
				if next, ok := nextHidden(snap.Tasks); ok {
					v := newTaskView(next)
					resp.NextUnlock = &v
				}
				return output.PrintSuccess(resp)
			})
		},
	}
}

// nextHidden returns the not-yet-visible task that unlocks soonest.
func nextHidden(tasks []engine.TaskState) (engine.TaskState, bool) {
	var (
		best  engine.TaskState
		found bool
	)
	for _, ts := range tasks {
		if ts.Visible {
			continue
		}
		if !found || ts.UnlockAt.MinutesOfDay() < best.UnlockAt.MinutesOfDay() {
			best, found = ts, true
		}
	}
	return best, found
}
