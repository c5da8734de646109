package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/timegate/internal/app"
	"github.com/dotcommander/timegate/internal/output"
)

// Execute runs the CLI application.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	err := newRootCmd(version).Execute()
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			slog.Error("command failed", "error", err.Error())
		}
	}
	return err
}

func newRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "timegate",
		Short:         "Time-gated checklist: tasks unlock through the day, one after another",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return output.PrintSuccess(resp{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureConfigDir(); err != nil {
				return err
			}

			// Wire --db-path and --plan into the app-level resolvers.
			if dbPath, err := cmd.Flags().GetString("db-path"); err == nil && dbPath != "" {
				app.SetDBPathOverride(dbPath)
			}
			if planPath, err := cmd.Flags().GetString("plan"); err == nil && planPath != "" {
				app.SetPlanPathOverride(planPath)
			}

			return nil
		},
	}

	root.PersistentFlags().String("db-path", "", "Override database path")
	root.PersistentFlags().String("plan", "", "Plan file (default: $TIMEGATE_PLAN, config plan_path, or the built-in plan)")
	root.PersistentFlags().String("at", "", "Evaluate at this RFC3339 instant instead of now")
	root.PersistentFlags().Bool("ephemeral", false, "Use an in-memory store; nothing is persisted")
	root.Flags().BoolP("version", "v", false, "version for timegate")

	root.AddCommand(NewStatusCmd())
	root.AddCommand(NewTasksCmd())
	root.AddCommand(NewToggleCmd())
	root.AddCommand(NewIntroCmd())
	root.AddCommand(NewCountdownCmd())
	root.AddCommand(NewWatchCmd())
	root.AddCommand(NewHistoryCmd())
	root.AddCommand(NewPlanCmd())
	root.AddCommand(NewDBCmd())
	root.AddCommand(NewDoctorCmd())
	root.AddCommand(NewSchemaCmd(root))

	return root
}
