// Package plan loads scripted simulations: a start point, a set of actions
// and a list of clock steps. Plans exercise the scheduler without a frame
// loop and double as the action list of a running host.
package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aatumaykin/gametime/internal/clock"
	"github.com/aatumaykin/gametime/internal/scheduler"
	"gopkg.in/yaml.v3"
)

var ErrInvalidPlan = errors.New("invalid plan")

// Plan is the document stored in a plan file.
//
//	start: {day: Monday, time: "07:58"}
//	actions:
//	  - {name: breakfast, time: "08:00", days: week, repeat: true}
//	steps:
//	  - {advance: 1, times: 3}
//	  - {jump: 12h}
type Plan struct {
	Start Point `yaml:"start"`
	// NaturalStep is the scheduler's time-skip threshold in minutes.
	NaturalStep int      `yaml:"natural_step,omitempty"`
	KeyPrefix   string   `yaml:"key_prefix,omitempty"`
	Actions     []Action `yaml:"actions"`
	Steps       []Step   `yaml:"steps"`
}

// Point is a day and an HH:MM time.
type Point struct {
	Day  string `yaml:"day"`
	Time string `yaml:"time"`
}

// Reading parses p.
func (p Point) Reading() (clock.Reading, error) {
	day, err := clock.ParseDay(p.Day)
	if err != nil {
		return clock.Reading{}, err
	}
	h, m, err := clock.ParseTime(p.Time)
	if err != nil {
		return clock.Reading{}, err
	}
	return clock.At(day, h, m), nil
}

// Action is one scheduled action. Days defaults to every day.
type Action struct {
	Name   string `yaml:"name"`
	Time   string `yaml:"time"`
	Days   string `yaml:"days,omitempty"`
	Repeat bool   `yaml:"repeat,omitempty"`
}

// Spec converts a into a registration carrying cb.
func (a Action) Spec(cb scheduler.Callback) (scheduler.ActionSpec, error) {
	h, m, err := clock.ParseTime(a.Time)
	if err != nil {
		return scheduler.ActionSpec{}, err
	}
	days := clock.All
	if a.Days != "" {
		if days, err = clock.ParseDays(a.Days); err != nil {
			return scheduler.ActionSpec{}, err
		}
	}
	return scheduler.ActionSpec{
		Name:     a.Name,
		Hour:     h,
		Minute:   m,
		Days:     days,
		Repeat:   a.Repeat,
		Callback: cb,
	}, nil
}

// Step moves the clock or drives the scheduler. Exactly one field other
// than Times is set.
type Step struct {
	// Advance moves the clock forward this many minutes, then ticks.
	// Times repeats it.
	Advance int `yaml:"advance,omitempty"`
	Times   int `yaml:"times,omitempty"`
	// Jump is a game-time duration such as "12h" or "90m".
	Jump    string `yaml:"jump,omitempty"`
	Set     *Point `yaml:"set,omitempty"`
	Ready   *bool  `yaml:"ready,omitempty"`
	Save    bool   `yaml:"save,omitempty"`
	Restart bool   `yaml:"restart,omitempty"`
}

func (s Step) kind() string {
	var kinds []string
	if s.Advance != 0 {
		kinds = append(kinds, "advance")
	}
	if s.Jump != "" {
		kinds = append(kinds, "jump")
	}
	if s.Set != nil {
		kinds = append(kinds, "set")
	}
	if s.Ready != nil {
		kinds = append(kinds, "ready")
	}
	if s.Save {
		kinds = append(kinds, "save")
	}
	if s.Restart {
		kinds = append(kinds, "restart")
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// JumpMinutes parses Jump into whole game minutes.
func (s Step) JumpMinutes() (int, error) {
	d, err := time.ParseDuration(s.Jump)
	if err != nil {
		return 0, err
	}
	if d <= 0 || d%time.Minute != 0 {
		return 0, fmt.Errorf("jump %q must be a positive whole number of minutes", s.Jump)
	}
	return int(d / time.Minute), nil
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a plan. Unknown fields are rejected.
func Parse(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks every field and reports all problems at once.
func (p *Plan) Validate() error {
	var errs []error

	if _, err := p.Start.Reading(); err != nil {
		errs = append(errs, fmt.Errorf("start: %w", err))
	}
	if p.NaturalStep < 0 {
		errs = append(errs, fmt.Errorf("natural_step must be >= 0 (got %d)", p.NaturalStep))
	}

	for i, a := range p.Actions {
		if _, err := a.Spec(scheduler.Func(func() {})); err != nil {
			errs = append(errs, fmt.Errorf("actions[%d] %q: %w", i, a.Name, err))
		}
	}

	for i, s := range p.Steps {
		switch s.kind() {
		case "":
			errs = append(errs, fmt.Errorf("steps[%d]: exactly one of advance, jump, set, ready, save, restart is required", i))
		case "advance":
			if s.Advance < 0 {
				errs = append(errs, fmt.Errorf("steps[%d]: advance must be positive (got %d)", i, s.Advance))
			}
		case "jump":
			if _, err := s.JumpMinutes(); err != nil {
				errs = append(errs, fmt.Errorf("steps[%d]: %w", i, err))
			}
		case "set":
			if _, err := s.Set.Reading(); err != nil {
				errs = append(errs, fmt.Errorf("steps[%d]: set: %w", i, err))
			}
		}
		if s.Times < 0 || (s.Times > 0 && s.kind() != "advance") {
			errs = append(errs, fmt.Errorf("steps[%d]: times only applies to a positive count on advance", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, errors.Join(errs...))
	}
	return nil
}

// Register schedules every plan action on s. cb builds the callback for
// each action.
func Register(s *scheduler.Scheduler, actions []Action, cb func(Action) scheduler.Callback) error {
	for _, a := range actions {
		spec, err := a.Spec(cb(a))
		if err != nil {
			return fmt.Errorf("action %q: %w", a.Name, err)
		}
		if _, err := s.Add(spec); err != nil {
			return fmt.Errorf("action %q: %w", a.Name, err)
		}
	}
	return nil
}
