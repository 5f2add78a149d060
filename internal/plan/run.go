package plan

import (
	"context"
	"fmt"
	"io"

	"github.com/aatumaykin/gametime/internal/clock"
	"github.com/aatumaykin/gametime/internal/constants"
	"github.com/aatumaykin/gametime/internal/logger"
	"github.com/aatumaykin/gametime/internal/scheduler"
	"github.com/aatumaykin/gametime/internal/snapshot"
)

// EventKind tells report events apart.
type EventKind string

const (
	EventFired EventKind = "fired"
	EventSkip  EventKind = "skip"
	EventDay   EventKind = "day"
)

// Event is one observation made while running a plan.
type Event struct {
	Kind EventKind
	// Action and At describe a firing.
	Action string
	At     clock.Reading
	Missed bool
	// Minutes is the size of a time skip.
	Minutes int
	// Day is the new day of a day change.
	Day clock.WeekDay
}

// Report is the ordered outcome of a plan run.
type Report struct {
	Events []Event
	Final  clock.Reading
}

// Fired returns the firing events.
func (r *Report) Fired() []Event {
	return r.filter(EventFired)
}

// Skips returns the time-skip events.
func (r *Report) Skips() []Event {
	return r.filter(EventSkip)
}

func (r *Report) filter(kind EventKind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Write prints r in a human-readable form.
func (r *Report) Write(w io.Writer) error {
	if _, err := fmt.Fprint(w, constants.MsgReportHeader); err != nil {
		return err
	}
	for _, e := range r.Events {
		var err error
		switch e.Kind {
		case EventFired:
			suffix := ""
			if e.Missed {
				suffix = constants.MsgReportMissed
			}
			_, err = fmt.Fprintf(w, constants.MsgReportFired, e.Action, e.At, suffix)
		case EventSkip:
			_, err = fmt.Fprintf(w, constants.MsgReportSkip, e.Minutes)
		case EventDay:
			_, err = fmt.Fprintf(w, constants.MsgReportDay, e.Day)
		}
		if err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, constants.MsgReportFinal, r.Final); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, constants.MsgReportSummary, len(r.Fired()), len(r.Skips()))
	return err
}

// runner carries the state of one plan execution.
type runner struct {
	plan   *Plan
	store  snapshot.Store
	logger *logger.Logger
	clock  *clock.Simulated
	sched  *scheduler.Scheduler
	report *Report
}

// Run executes p against store, which defaults to an in-memory store.
// The store is not closed.
func Run(ctx context.Context, p *Plan, store snapshot.Store, log *logger.Logger) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	if store == nil {
		store = snapshot.NewMemoryStore()
	}

	start, _ := p.Start.Reading()
	r := &runner{
		plan:   p,
		store:  store,
		logger: log.With(logger.Field{Key: "component", Value: "plan"}),
		clock:  clock.NewSimulated(start),
		report: &Report{},
	}
	r.clock.OnDayChanged(func(d clock.WeekDay) {
		r.report.Events = append(r.report.Events, Event{Kind: EventDay, Day: d})
	})

	if err := r.boot(ctx); err != nil {
		return nil, err
	}

	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.apply(ctx, step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	if err := r.sched.Stop(); err != nil {
		return nil, err
	}
	r.report.Final = r.clock.Now()
	return r.report, nil
}

// boot creates a fresh scheduler, registers the plan's actions and starts it.
func (r *runner) boot(ctx context.Context) error {
	r.sched = scheduler.NewScheduler(r.logger, r.clock, r.store, scheduler.Config{
		KeyPrefix:   r.plan.KeyPrefix,
		NaturalStep: r.plan.NaturalStep,
	})
	r.sched.OnTimeSkipped(func(minutes int) {
		r.report.Events = append(r.report.Events, Event{Kind: EventSkip, Minutes: minutes})
	})

	err := Register(r.sched, r.plan.Actions, func(a Action) scheduler.Callback {
		return func(f scheduler.Firing) error {
			r.report.Events = append(r.report.Events, Event{
				Kind:   EventFired,
				Action: a.Name,
				At:     f.At,
				Missed: f.Missed,
			})
			return nil
		}
	})
	if err != nil {
		return err
	}
	return r.sched.Start(ctx)
}

func (r *runner) apply(ctx context.Context, s Step) error {
	switch s.kind() {
	case "advance":
		for range max(s.Times, 1) {
			r.clock.Advance(s.Advance)
			r.sched.Tick()
		}
	case "jump":
		minutes, _ := s.JumpMinutes()
		r.clock.Advance(minutes)
		r.sched.Tick()
	case "set":
		at, _ := s.Set.Reading()
		r.clock.Set(at)
		r.sched.Tick()
	case "ready":
		r.clock.SetReady(*s.Ready)
		r.sched.Tick()
	case "save":
		return r.sched.Save(ctx)
	case "restart":
		if err := r.sched.Stop(); err != nil {
			return err
		}
		r.logger.Debug("scheduler restarted", logger.Field{Key: "clock", Value: r.clock.Now().String()})
		return r.boot(ctx)
	}
	return nil
}
