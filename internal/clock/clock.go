// Package clock samples wall-clock time for the unlock engine.
package clock

import (
	"sync"
	"time"
)

// Default sampling cadences.
const (
	// MinuteTick drives visibility and unlock recomputation.
	MinuteTick = 60 * time.Second
	// SecondTick drives the event countdown.
	SecondTick = time.Second
)

// Clock is the host's wall-clock capability.
type Clock interface {
	Now() time.Time
}

// System reads the host clock in a fixed location.
type System struct {
	Location *time.Location
}

// NewSystem returns a system clock; a nil location means time.Local.
func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.Local
	}
	return System{Location: loc}
}

func (s System) Now() time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc)
}

// Manual is a settable clock. Safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a clock frozen at t.
func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t (backwards is allowed).
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Offset runs in real time from a chosen starting instant. `watch --at`
// uses it to rehearse a day without waiting for the wall clock.
type Offset struct {
	base  Clock
	delta time.Duration
}

// NewOffset returns a clock that reads start now and then advances with base.
func NewOffset(start time.Time, base Clock) Offset {
	return Offset{base: base, delta: start.Sub(base.Now())}
}

func (o Offset) Now() time.Time {
	return o.base.Now().Add(o.delta)
}
