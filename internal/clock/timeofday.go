package clock

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TimeOfDay is an hour and minute with no date component.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24h). Single-digit hours are accepted.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	if len(h) < 1 || len(h) > 2 || !allDigits(h) {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	if len(m) != 2 || !allDigits(m) {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// allDigits rejects the signs strconv.Atoi would accept.
func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MustTimeOfDay is ParseTimeOfDay for literals; it panics on bad input.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Of returns the time of day of t in t's location, truncated to the minute.
func Of(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// MinutesOfDay returns Hour*60 + Minute.
func (t TimeOfDay) MinutesOfDay() int {
	return t.Hour*60 + t.Minute
}

// Reached reports whether now is at or past t on the minute-of-day scale.
func (t TimeOfDay) Reached(now TimeOfDay) bool {
	return now.MinutesOfDay() >= t.MinutesOfDay()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MarshalText encodes as "HH:MM"; JSON and YAML both go through it.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalYAML accepts "HH:MM". Unquoted 07:00 arrives as a string scalar too.
func (t *TimeOfDay) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}
