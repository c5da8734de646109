package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dotcommander/timegate/internal/engine"
	"github.com/dotcommander/timegate/internal/output"
)

// NewToggleCmd flips one task's completion.
func NewToggleCmd() *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Mark a task done, or undo it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id <= 0 {
				return cmdErr(errors.New("--id is required and must be positive"))
			}
			return withSession(cmd, false, func(s *session) error {
				res, err := s.Engine.Toggle(cmdContext(cmd), id)
				if err != nil {
					return err
				}

				type resp struct {
					Result   engine.ToggleResult `json:"result"`
					Task     *taskView           `json:"task,omitempty"`
					Phase    engine.Phase        `json:"phase"`
					Progress engine.Progress     `json:"progress"`
				}
				snap := s.Engine.Snapshot()
				out := resp{Result: res, Phase: snap.Phase, Progress: snap.Progress}
				if ts, ok := s.Engine.State(id); ok {
					v := newTaskView(ts)
					out.Task = &v
				}
				return output.PrintSuccess(out)
			})
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Task id (required)")
	return cmd
}
