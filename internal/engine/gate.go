package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dotcommander/timegate/internal/kv"
)

// Phase is the application-level gate state.
type Phase int

const (
	WaitingForEvent Phase = iota
	ShowingIntro
	Active
)

func (p Phase) String() string {
	switch p {
	case WaitingForEvent:
		return "waiting_for_event"
	case ShowingIntro:
		return "showing_intro"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Phase returns the current gate state.
func (e *Engine) Phase() Phase {
	return e.phase
}

// advancePhase only moves forward. Active is terminal.
func (e *Engine) advancePhase() {
	if e.phase == Active {
		return
	}
	switch {
	case !e.started:
		e.phase = WaitingForEvent
	case e.ShouldShowIntro():
		e.phase = ShowingIntro
	default:
		e.phase = Active
	}
}

// EventHasStarted reports whether the last sample is at or past the event start.
func (e *Engine) EventHasStarted() bool {
	return e.started
}

// EventStart returns the configured event start; zero when ungated.
func (e *Engine) EventStart() time.Time {
	return e.eventStart
}

// CountdownRemaining is the time left until the event start, clamped to zero.
func (e *Engine) CountdownRemaining() time.Duration {
	if e.started || e.eventStart.IsZero() {
		return 0
	}
	d := e.eventStart.Sub(e.now)
	if d < 0 {
		return 0
	}
	return d
}

// FormatCountdown renders d as HH:MM:SS, rounding partial seconds up so a
// countdown never shows 00:00:00 before the target. Hours are not wrapped.
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "00:00:00"
	}
	secs := int64((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// ShouldShowIntro reports whether the rules acknowledgement is due.
func (e *Engine) ShouldShowIntro() bool {
	return e.introEnabled && !e.hasSeenIntro && e.started
}

// HasSeenIntro reports the persisted acknowledgement flag.
func (e *Engine) HasSeenIntro() bool {
	return e.hasSeenIntro
}

// AcceptIntro records the rules acknowledgement. Without consent, or outside
// the ShowingIntro phase, it does nothing and reports false. The flag is
// persisted before the phase changes; on a write error nothing changes.
func (e *Engine) AcceptIntro(ctx context.Context, consent bool) (bool, error) {
	if !consent || e.phase != ShowingIntro {
		return false, nil
	}
	if err := e.store.Set(ctx, kv.KeyHasVisited, kv.FlagTrue); err != nil {
		return false, fmt.Errorf("persist intro flag: %w", err)
	}
	e.hasSeenIntro = true
	e.advancePhase()
	e.record(ctx, JournalEntry{Kind: KindIntroAccepted})
	e.log.Info("intro accepted", "session_id", e.sessionID)
	return true, nil
}
