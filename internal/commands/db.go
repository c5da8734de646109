package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/timegate/internal/app"
	"github.com/dotcommander/timegate/internal/output"
	"github.com/dotcommander/timegate/internal/store"
)

// NewDBCmd groups database utilities.
func NewDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities",
	}

	cmd.AddCommand(newDBPathCmd())
	cmd.AddCommand(newDBVersionCmd())
	cmd.AddCommand(newDBDumpCmd())
	return cmd
}

func newDBPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the resolved database path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, source, err := app.ResolveDBPathDetailed()
			if err != nil {
				return cmdErr(err)
			}

			type resp struct {
				Path   string `json:"path"`
				Source string `json:"source"`
			}
			return output.PrintSuccess(resp{Path: path, Source: source})
		},
	}
}

func newDBVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current and latest schema versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *DB) error {
				current, latest, err := store.SchemaVersion(db)
				if err != nil {
					return err
				}
				type resp struct {
					Current int64 `json:"current"`
					Latest  int64 `json:"latest"`
				}
				return output.PrintSuccess(resp{Current: current, Latest: latest})
			})
		},
	}
}

func newDBDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the stored keys for the active plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, _, err := loadPlan()
			if err != nil {
				return cmdErr(err)
			}
			return withDB(func(db *DB) error {
				s, err := store.NewKV(db, p.Name)
				if err != nil {
					return err
				}
				entries, err := s.Entries(cmdContext(cmd))
				if err != nil {
					return err
				}
				type resp struct {
					Namespace string          `json:"namespace"`
					Entries   []store.KVEntry `json:"entries"`
				}
				if entries == nil {
					entries = []store.KVEntry{}
				}
				return output.PrintSuccess(resp{Namespace: s.Namespace(), Entries: entries})
			})
		},
	}
}
