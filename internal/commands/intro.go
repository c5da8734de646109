package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dotcommander/timegate/internal/engine"
	"github.com/dotcommander/timegate/internal/output"
)

// NewIntroCmd groups the rules acknowledgement commands.
func NewIntroCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intro",
		Short: "Rules acknowledgement shown once the event starts",
	}
	cmd.AddCommand(newIntroShowCmd())
	cmd.AddCommand(newIntroAcceptCmd())
	return cmd
}

type introResponse struct {
	Enabled      bool         `json:"enabled"`
	ShowIntro    bool         `json:"show_intro"`
	HasSeenIntro bool         `json:"has_seen_intro"`
	Phase        engine.Phase `json:"phase"`
}

func introStatus(s *session) introResponse {
	return introResponse{
		Enabled:      s.Plan.Intro,
		ShowIntro:    s.Engine.ShouldShowIntro(),
		HasSeenIntro: s.Engine.HasSeenIntro(),
		Phase:        s.Engine.Phase(),
	}
}

func newIntroShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Report whether the intro is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, false, func(s *session) error {
				return output.PrintSuccess(introStatus(s))
			})
		},
	}
}

func newIntroAcceptCmd() *cobra.Command {
	var consent bool

	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Accept the rules and open the checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !consent {
				return cmdErr(errors.New("--consent is required to accept the rules"))
			}
			return withSession(cmd, false, func(s *session) error {
				accepted, err := s.Engine.AcceptIntro(cmdContext(cmd), true)
				if err != nil {
					return err
				}
				type resp struct {
					Accepted bool `json:"accepted"`
					introResponse
				}
				return output.PrintSuccess(resp{Accepted: accepted, introResponse: introStatus(s)})
			})
		},
	}

	cmd.Flags().BoolVar(&consent, "consent", false, "Confirm you have read the rules (required)")
	return cmd
}
