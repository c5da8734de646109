package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dotcommander/timegate/internal/app"
	"github.com/dotcommander/timegate/internal/clock"
	"github.com/dotcommander/timegate/internal/engine"
	"github.com/dotcommander/timegate/internal/kv"
	"github.com/dotcommander/timegate/internal/plan"
	"github.com/dotcommander/timegate/internal/store"
	"github.com/dotcommander/timegate/pkg/memory"
)

// Store kinds reported in command output.
const (
	storeSQLite = "sqlite"
	storeMemory = "memory"
)

// planFS is the filesystem plan files are read from. Tests swap in a MemMapFs.
//
//nolint:gochecknoglobals // package-level seam for tests
var planFS afero.Fs = afero.NewOsFs()

// session is one engine wired to its plan, clock and store.
type session struct {
	Plan       *plan.Plan
	PlanPath   string
	PlanSource string
	StoreKind  string

	Engine  *engine.Engine
	Clock   clock.Clock
	Journal *store.Journal

	close func()
}

// Close releases the database, if any.
func (s *session) Close() {
	if s.close != nil {
		s.close()
	}
}

// loadPlan resolves and loads the configured plan, or the built-in one.
func loadPlan() (p *plan.Plan, path, source string, err error) {
	path, source, err = app.ResolvePlanPath()
	if err != nil {
		return nil, "", "", err
	}
	if path == "" {
		return plan.Default(), "", source, nil
	}
	p, err = plan.Load(planFS, path)
	if err != nil {
		return nil, "", "", err
	}
	return p, path, source, nil
}

// flagString reads a flag that may be absent when a subcommand runs
// without its root (unit tests).
func flagString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return v
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return v
}

// resolveClock honours --at. A live clock keeps running from --at (watch);
// otherwise the instant is frozen (one-shot commands).
func resolveClock(cmd *cobra.Command, loc *time.Location, live bool) (clock.Clock, error) {
	system := clock.NewSystem(loc)
	raw := flagString(cmd, "at")
	if raw == "" {
		return system, nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("--at must be RFC3339 (e.g. 2025-08-13T09:30:00+02:00): %w", err)
	}
	at = at.In(loc)
	if live {
		return clock.NewOffset(at, system), nil
	}
	return clock.NewManual(at), nil
}

// openSession builds an engine for the current command.
func openSession(ctx context.Context, cmd *cobra.Command, live bool) (*session, error) {
	p, path, source, err := loadPlan()
	if err != nil {
		return nil, err
	}
	loc, err := p.Location()
	if err != nil {
		return nil, err
	}
	eventStart, err := p.EventStartTime()
	if err != nil {
		return nil, err
	}
	clk, err := resolveClock(cmd, loc, live)
	if err != nil {
		return nil, err
	}

	s := &session{Plan: p, PlanPath: path, PlanSource: source, Clock: clk}
	logger := slog.Default().With("plan", p.Name)
	opts := engine.Options{
		Tasks:      p.EngineTasks(),
		Clock:      clk,
		EventStart: eventStart,
		Intro:      p.Intro,
		Logger:     logger,
	}

	var kvStore kv.Store
	if flagBool(cmd, "ephemeral") {
		s.StoreKind = storeMemory
		kvStore = memory.New(p.Name)
	} else {
		db, _, closeDB, err := openDB()
		if err != nil {
			return nil, err
		}
		sqlKV, err := store.NewKV(db, p.Name)
		if err != nil {
			closeDB()
			return nil, err
		}
		s.StoreKind = storeSQLite
		s.Journal = store.NewJournal(db, p.Name)
		s.close = closeDB
		kvStore = sqlKV
		opts.Journal = s.Journal
	}
	opts.Store = kvStore

	e, err := engine.New(ctx, opts)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Engine = e
	return s, nil
}

// withSession opens a session, runs fn, and routes errors through cmdErr.
func withSession(cmd *cobra.Command, live bool, fn func(s *session) error) error {
	s, err := openSession(cmdContext(cmd), cmd, live)
	if err != nil {
		return cmdErr(err)
	}
	defer s.Close()

	if err := fn(s); err != nil {
		return cmdErr(err)
	}
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
