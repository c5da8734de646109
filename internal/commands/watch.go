package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dotcommander/timegate/internal/app"
	"github.com/dotcommander/timegate/internal/engine"
	"github.com/dotcommander/timegate/internal/scheduler"
	"github.com/dotcommander/timegate/internal/ui"
)

// NewWatchCmd runs the interactive checklist.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Interactive checklist that updates as tasks unlock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				return runWatch(cmdContext(cmd), s, app.EffectiveTickSettings())
			})
		},
	}
}

// watchHost owns the engine for the lifetime of the TUI. Every engine call
// runs on the scheduler loop goroutine.
type watchHost struct {
	ctx    context.Context
	loop   *scheduler.Loop
	engine *engine.Engine
	send   func(tea.Msg)
	log    *slog.Logger
}

func (h *watchHost) push() {
	h.send(ui.SnapshotMsg{Snapshot: h.engine.Snapshot()})
}

func (h *watchHost) sample(time.Time) {
	h.engine.Sample()
	h.push()
}

func (h *watchHost) Toggle(id int) {
	err := h.loop.Do(h.ctx, func() {
		h.engine.Sample()
		res, err := h.engine.Toggle(h.ctx, id)
		switch {
		case err != nil:
			h.log.Error("toggle failed", "task_id", id, "error", err.Error())
			h.send(ui.NoticeMsg{Text: "Could not save: " + err.Error(), Err: true})
		case !res.Applied:
			h.send(ui.NoticeMsg{Text: fmt.Sprintf("Task %d not changed (%s).", id, res.Reason), Err: true})
		case res.Completed:
			h.send(ui.NoticeMsg{Text: fmt.Sprintf("Task %d done.", id)})
		default:
			h.send(ui.NoticeMsg{Text: fmt.Sprintf("Task %d reopened.", id)})
		}
		h.push()
	})
	if err != nil && !errors.Is(err, scheduler.ErrStopped) {
		h.log.Warn("toggle not scheduled", "task_id", id, "error", err.Error())
	}
}

func (h *watchHost) AcceptIntro() {
	err := h.loop.Do(h.ctx, func() {
		if _, err := h.engine.AcceptIntro(h.ctx, true); err != nil {
			h.log.Error("intro accept failed", "error", err.Error())
			h.send(ui.NoticeMsg{Text: "Could not save: " + err.Error(), Err: true})
		}
		h.push()
	})
	if err != nil && !errors.Is(err, scheduler.ErrStopped) {
		h.log.Warn("intro accept not scheduled", "error", err.Error())
	}
}

// runWatch runs the TUI until the user quits or parent is cancelled.
func runWatch(parent context.Context, s *session, ticks app.TickSettings) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	logger := slog.Default().With("plan", s.Plan.Name, "session_id", s.Engine.SessionID())
	loop := scheduler.New(16, logger)
	host := &watchHost{ctx: ctx, loop: loop, engine: s.Engine, log: logger}

	model := ui.New(s.Plan.Name, s.Engine.Snapshot(), host)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	host.send = program.Send

	startWatch(loop, host, ticks)

	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	_, err := program.Run()
	cancel()
	if loopErr := <-loopDone; loopErr != nil && err == nil {
		err = loopErr
	}
	if errors.Is(err, tea.ErrProgramKilled) && errors.Is(parent.Err(), context.Canceled) {
		return nil
	}
	return err
}

// startWatch registers the sampling tickers: a fast one for the countdown,
// stopped once the event has started, and a slow one for unlocks. Call it
// before loop.Run.
func startWatch(loop *scheduler.Loop, host *watchHost, ticks app.TickSettings) {
	if !host.engine.EventHasStarted() {
		var countdown *scheduler.Handle
		countdown = loop.Every("countdown", ticks.Second, func(now time.Time) {
			host.sample(now)
			if host.engine.EventHasStarted() {
				countdown.Stop()
			}
		})
	}
	loop.Every("visibility", ticks.Minute, host.sample)
}
