package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dotcommander/timegate/internal/output"
	"github.com/dotcommander/timegate/internal/plan"
)

// NewPlanCmd groups plan inspection commands.
func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect and validate checklist plans",
	}
	cmd.AddCommand(newPlanShowCmd())
	cmd.AddCommand(newPlanValidateCmd())
	return cmd
}

func newPlanShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active plan and where it was loaded from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, path, source, err := loadPlan()
			if err != nil {
				return cmdErr(err)
			}
			type resp struct {
				Path   string     `json:"path,omitempty"`
				Source string     `json:"source"`
				Plan   *plan.Plan `json:"plan"`
			}
			return output.PrintSuccess(resp{Path: path, Source: source, Plan: p})
		},
	}
}

func newPlanValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a plan file without loading it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return cmdErr(errors.New("--file is required"))
			}
			p, err := plan.Load(planFS, file)
			if err != nil {
				return cmdErr(err)
			}
			type resp struct {
				Valid bool   `json:"valid"`
				Path  string `json:"path"`
				Name  string `json:"name"`
				Tasks int    `json:"tasks"`
			}
			return output.PrintSuccess(resp{Valid: true, Path: file, Name: p.Name, Tasks: len(p.Tasks)})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Plan file path (required)")
	return cmd
}
