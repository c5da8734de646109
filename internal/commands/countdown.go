package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/timegate/internal/output"
)

// NewCountdownCmd reports time left until the event starts.
func NewCountdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countdown",
		Short: "Show time remaining until the event starts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, false, func(s *session) error {
				snap := s.Engine.Snapshot()
				type resp struct {
					EventStart       *time.Time `json:"event_start,omitempty"`
					EventStarted     bool       `json:"event_started"`
					Countdown        string     `json:"countdown"`
					CountdownSeconds int64      `json:"countdown_seconds"`
				}
				return output.PrintSuccess(resp{
					EventStart:       snap.EventStart,
					EventStarted:     snap.EventStarted,
					Countdown:        snap.Countdown,
					CountdownSeconds: snap.CountdownSeconds,
				})
			})
		},
	}
}
