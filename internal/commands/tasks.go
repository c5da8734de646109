package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/timegate/internal/clock"
	"github.com/dotcommander/timegate/internal/engine"
	"github.com/dotcommander/timegate/internal/output"
)

// taskView is a TaskState with the description withheld until revealed.
type taskView struct {
	ID                 int             `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	UnlockAt           clock.TimeOfDay `json:"unlock_at"`
	RevealAt           clock.TimeOfDay `json:"reveal_at"`
	Visible            bool            `json:"visible"`
	DescriptionVisible bool            `json:"description_visible"`
	Unlockable         bool            `json:"unlockable"`
	Completed          bool            `json:"completed"`
}

func newTaskView(ts engine.TaskState) taskView {
	v := taskView{
		ID:                 ts.ID,
		Title:              ts.Title,
		UnlockAt:           ts.UnlockAt,
		RevealAt:           ts.RevealAt,
		Visible:            ts.Visible,
		DescriptionVisible: ts.DescriptionVisible,
		Unlockable:         ts.Unlockable,
		Completed:          ts.Completed,
	}
	if ts.DescriptionVisible {
		v.Description = ts.Description
	}
	return v
}

// NewTasksCmd lists tasks with their derived flags.
func NewTasksCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List visible tasks with unlock state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, false, func(s *session) error {
				snap := s.Engine.Snapshot()
				views := make([]taskView, 0, len(snap.Tasks))
				for _, ts := range snap.Tasks {
					if !all && !ts.Visible {
						continue
					}
					views = append(views, newTaskView(ts))
				}

				type resp struct {
					Phase    engine.Phase    `json:"phase"`
					Count    int             `json:"count"`
					Tasks    []taskView      `json:"tasks"`
					Progress engine.Progress `json:"progress"`
				}
				return output.PrintSuccess(resp{
					Phase:    snap.Phase,
					Count:    len(views),
					Tasks:    views,
					Progress: snap.Progress,
				})
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include tasks that are not yet visible")
	return cmd
}
