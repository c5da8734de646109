package commands

import (
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dotcommander/timegate/internal/output"
	"github.com/dotcommander/timegate/internal/store"
)

type historyEntry struct {
	store.JournalRecord
	Ago string `json:"ago"`
}

// NewHistoryCmd lists the toggle journal for the current plan.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent toggles and intro acceptance, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagBool(cmd, "ephemeral") {
				return cmdErr(&EphemeralStoreError{Command: "history"})
			}
			if limit < 0 {
				return cmdErr(errors.New("--limit must not be negative"))
			}
			p, _, _, err := loadPlan()
			if err != nil {
				return cmdErr(err)
			}

			return withDB(func(db *DB) error {
				records, err := store.NewJournal(db, p.Name).List(cmdContext(cmd), limit)
				if err != nil {
					return err
				}

				now := time.Now()
				entries := make([]historyEntry, 0, len(records))
				for _, r := range records {
					entries = append(entries, historyEntry{
						JournalRecord: r,
						Ago:           humanize.RelTime(r.At, now, "ago", "from now"),
					})
				}

				type resp struct {
					Plan    string         `json:"plan"`
					Count   int            `json:"count"`
					Entries []historyEntry `json:"entries"`
				}
				return output.PrintSuccess(resp{Plan: p.Name, Count: len(entries), Entries: entries})
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Max entries to return")
	return cmd
}
