// Package plan loads and validates checklist definitions.
package plan

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/timegate/internal/clock"
	"github.com/dotcommander/timegate/internal/engine"
)

// EventStartLayout is the local date-time format of event_start.
const EventStartLayout = "2006-01-02T15:04:05"

//go:embed default.yaml
var defaultPlan []byte

// Plan is a checklist definition as written in YAML.
type Plan struct {
	Name       string     `yaml:"name" json:"name" validate:"required,max=64"`
	Timezone   string     `yaml:"timezone,omitempty" json:"timezone,omitempty" validate:"omitempty,timezone"`
	EventStart string     `yaml:"event_start,omitempty" json:"event_start,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05"`
	Intro      bool       `yaml:"intro" json:"intro"`
	Tasks      []TaskSpec `yaml:"tasks" json:"tasks" validate:"required,min=1,dive"`
}

// TaskSpec is one task entry. RevealAt defaults to UnlockAt.
type TaskSpec struct {
	ID               int    `yaml:"id" json:"id" validate:"required,gt=0"`
	Title            string `yaml:"title" json:"title" validate:"required,max=200"`
	Description      string `yaml:"description" json:"description" validate:"max=2000"`
	UnlockAt         string `yaml:"unlock_at" json:"unlock_at" validate:"required,hhmm"`
	RevealAt         string `yaml:"reveal_at,omitempty" json:"reveal_at,omitempty" validate:"omitempty,hhmm"`
	InitiallyVisible bool   `yaml:"initially_visible,omitempty" json:"initially_visible,omitempty"`
}

//nolint:gochecknoglobals // validator caches struct metadata; one instance per process
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := clock.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
	return v
}

// Default returns the embedded plan.
func Default() *Plan {
	p, err := Parse(defaultPlan)
	if err != nil {
		panic(fmt.Sprintf("embedded default plan is invalid: %v", err))
	}
	return p
}

// Load reads and validates a plan file from fsys.
func Load(fsys afero.Fs, path string) (*Plan, error) {
	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ValidationError{Path: path, Problems: []string{"plan file not found"}}
		}
		return nil, fmt.Errorf("read plan %s: %w", path, err)
	}
	p, err := Parse(b)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Path = path
		}
		return nil, err
	}
	return p, nil
}

// Parse decodes and validates YAML plan bytes.
func Parse(b []byte) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("yaml: %v", err)}}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks field rules and the id chain: ids must be unique and
// contiguous from 1, since task k depends on task k-1.
func (p *Plan) Validate() error {
	var problems []string

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate plan: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s: failed %q (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}

	ids := make([]int, 0, len(p.Tasks))
	seen := make(map[int]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if seen[t.ID] {
			problems = append(problems, fmt.Sprintf("duplicate task id %d", t.ID))
			continue
		}
		seen[t.ID] = true
		ids = append(ids, t.ID)
	}
	sort.Ints(ids)
	for i, id := range ids {
		if id != i+1 {
			problems = append(problems, fmt.Sprintf("task ids must be contiguous from 1; expected %d, found %d", i+1, id))
			break
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Plan: p.Name, Problems: problems}
	}
	return nil
}

// Location resolves the plan's timezone; empty means time.Local.
func (p *Plan) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

// EventStartTime returns event_start in the plan's location, or zero when unset.
func (p *Plan) EventStartTime() (time.Time, error) {
	if p.EventStart == "" {
		return time.Time{}, nil
	}
	loc, err := p.Location()
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(EventStartLayout, p.EventStart, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event_start %q: %w", p.EventStart, err)
	}
	return t, nil
}

// EngineTasks converts the specs. The plan must already be valid.
func (p *Plan) EngineTasks() []engine.Task {
	out := make([]engine.Task, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		unlock := clock.MustTimeOfDay(t.UnlockAt)
		reveal := unlock
		if t.RevealAt != "" {
			reveal = clock.MustTimeOfDay(t.RevealAt)
		}
		out = append(out, engine.Task{
			ID:               t.ID,
			Title:            t.Title,
			Description:      t.Description,
			UnlockAt:         unlock,
			RevealAt:         reveal,
			InitiallyVisible: t.InitiallyVisible,
		})
	}
	return out
}
