package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/timegate/internal/app"
	"github.com/dotcommander/timegate/internal/output"
	"github.com/dotcommander/timegate/internal/store"
)

// NewDoctorCmd checks configuration, the plan and database connectivity.
func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, plan and database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, dbSource, err := app.ResolveDBPathDetailed()
			if err != nil {
				return cmdErr(err)
			}

			var (
				dbOK          bool
				dbErr         string
				queryOK       bool
				queryErr      string
				schemaCurrent int64
				schemaLatest  int64
			)

			db, err := store.InitDBWithPath(dbPath)
			if err != nil {
				dbErr = err.Error()
			} else {
				dbOK = true
				defer db.Close()
			}

			if dbOK {
				var one int
				if err := db.QueryRow("SELECT 1").Scan(&one); err != nil {
					queryErr = err.Error()
				} else {
					queryOK = true
				}
				schemaCurrent, schemaLatest, _ = store.SchemaVersion(db)
			} else {
				queryErr = "db not available"
			}

			planOK := true
			planErr := ""
			planName := ""
			planTimezone := ""
			p, planPath, planSource, err := loadPlan()
			if err != nil {
				planOK = false
				planErr = err.Error()
			} else {
				planName = p.Name
				if loc, err := p.Location(); err == nil {
					planTimezone = loc.String()
				}
			}

			type resp struct {
				DBPath        string           `json:"db_path"`
				DBSource      string           `json:"db_source"`
				DBOK          bool             `json:"db_ok"`
				DBErr         string           `json:"db_error,omitempty"`
				QueryOK       bool             `json:"query_ok"`
				QueryErr      string           `json:"query_error,omitempty"`
				SchemaCurrent int64            `json:"schema_current"`
				SchemaLatest  int64            `json:"schema_latest"`
				PlanPath      string           `json:"plan_path,omitempty"`
				PlanSource    string           `json:"plan_source,omitempty"`
				PlanName      string           `json:"plan_name,omitempty"`
				PlanTimezone  string           `json:"plan_timezone,omitempty"`
				PlanOK        bool             `json:"plan_ok"`
				PlanErr       string           `json:"plan_error,omitempty"`
				Ticks         app.TickSettings `json:"ticks"`
				Hint          string           `json:"hint,omitempty"`
			}
			hint := ""
			switch {
			case !dbOK:
				hint = "Set db_path to a writable location, use --db-path, or run with --ephemeral."
			case !planOK:
				hint = "Run `timegate plan validate --file <path>` for details."
			}
			return output.PrintSuccess(resp{
				DBPath:        dbPath,
				DBSource:      dbSource,
				DBOK:          dbOK,
				DBErr:         dbErr,
				QueryOK:       queryOK,
				QueryErr:      queryErr,
				SchemaCurrent: schemaCurrent,
				SchemaLatest:  schemaLatest,
				PlanPath:      planPath,
				PlanSource:    planSource,
				PlanName:      planName,
				PlanTimezone:  planTimezone,
				PlanOK:        planOK,
				PlanErr:       planErr,
				Ticks:         app.EffectiveTickSettings(),
				Hint:          hint,
			})
		},
	}

	return cmd
}
