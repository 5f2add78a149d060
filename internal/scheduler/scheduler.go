// Package scheduler fires callbacks at points of a wrapping in-game week.
//
// Actions are registered for an hour, a minute and a set of weekdays. The
// host calls Tick once per frame; every action instance whose time falls
// between the previous observation and the current one fires exactly once.
// A jump of more than one natural step (sleep, fast-forward) replays the
// instances it skipped and is announced to OnTimeSkipped subscribers. The
// last observed reading is persisted through a snapshot.Store so that a
// reloaded session replays what happened while it was away.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/aatumaykin/gametime/internal/clock"
	"github.com/aatumaykin/gametime/internal/logger"
	"github.com/aatumaykin/gametime/internal/snapshot"
)

var (
	ErrAlreadyStarted = errors.New("scheduler already started")
	ErrNotStarted     = errors.New("scheduler not started")
	ErrClockNotReady  = errors.New("clock is not ready")
	ErrNoStore        = errors.New("scheduler has no snapshot store")
	ErrCallbackPanic  = errors.New("callback panicked")
)

// DefaultNaturalStep is the clock advance, in minutes, of one ordinary frame.
const DefaultNaturalStep = 1

// Config holds optional scheduler settings.
type Config struct {
	// KeyPrefix namespaces the snapshot keys.
	KeyPrefix string
	// NaturalStep is the largest advance between two ticks that is not a
	// time skip. Zero means DefaultNaturalStep.
	NaturalStep int
	// Metrics may be nil.
	Metrics *Metrics
}

// Scheduler owns the ordered action list and the previous clock reading.
// Tick must be driven from one goroutine at a time; registration is safe
// from any goroutine, including from inside callbacks.
type Scheduler struct {
	mu     sync.Mutex
	tickMu sync.Mutex

	logger      *logger.Logger
	clock       clock.Source
	store       snapshot.Store
	metrics     *Metrics
	keys        SnapshotKeys
	naturalStep int

	actions  []*action
	skipSubs []func(int)

	started bool
	armed   bool
	// pending holds the restored snapshot until the clock becomes ready.
	pending    clock.Reading
	hasPending bool
	previous   clock.Reading
}

// NewScheduler creates a scheduler reading src. store may be nil, in which
// case nothing is persisted or restored.
func NewScheduler(log *logger.Logger, src clock.Source, store snapshot.Store, cfg Config) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	step := cfg.NaturalStep
	if step <= 0 {
		step = DefaultNaturalStep
	}
	return &Scheduler{
		logger:      log.With(logger.Field{Key: "component", Value: "scheduler"}),
		clock:       src,
		store:       store,
		metrics:     cfg.Metrics,
		keys:        KeysFor(cfg.KeyPrefix),
		naturalStep: step,
	}
}

// Start loads the snapshot and arms the scheduler. When the clock is not
// ready yet, arming is retried on every Tick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	restored, found := s.loadSnapshot(ctx)

	s.mu.Lock()
	s.pending, s.hasPending = restored, found
	s.mu.Unlock()

	if found {
		s.logger.Info("snapshot restored", logger.Field{Key: "reading", Value: restored.String()})
	}

	if !s.tryArm() {
		s.logger.Info("waiting for clock to become ready")
	}
	return nil
}

// Stop clears the action list and disarms the scheduler. Skip subscribers
// are kept.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	for _, a := range s.actions {
		a.registered = false
	}
	s.actions = nil
	s.started = false
	s.armed = false
	s.hasPending = false
	s.previous = clock.Reading{}
	s.mu.Unlock()

	s.metrics.setRegistered(0)
	s.metrics.setArmed(false)
	s.logger.Info("scheduler stopped")
	return nil
}

// Schedule registers callback for hour:minute on every day in days.
// A non-repeating action is removed after its first invocation.
func (s *Scheduler) Schedule(hour, minute int, days clock.Days, repeat bool, callback Callback) (Handle, error) {
	return s.Add(ActionSpec{
		Hour:     hour,
		Minute:   minute,
		Days:     days,
		Repeat:   repeat,
		Callback: callback,
	})
}

// Add registers spec. Registrations are not deduplicated.
func (s *Scheduler) Add(spec ActionSpec) (Handle, error) {
	if err := spec.Validate(); err != nil {
		return Handle{}, err
	}

	a := &action{
		handle:     newHandle(),
		name:       spec.Name,
		hour:       spec.Hour,
		minute:     spec.Minute,
		days:       spec.Days,
		repeat:     spec.Repeat,
		fn:         spec.Callback,
		registered: true,
	}

	s.mu.Lock()
	s.actions = append(s.actions, a)
	sortActions(s.actions)
	n := len(s.actions)
	s.mu.Unlock()

	s.metrics.setRegistered(n)
	s.logger.Debug("action scheduled",
		logger.Field{Key: "action", Value: a.label()},
		logger.Field{Key: "time", Value: clock.FormatTime(a.hour, a.minute)},
		logger.Field{Key: "days", Value: a.days.String()},
		logger.Field{Key: "repeat", Value: a.repeat})
	return a.handle, nil
}

// Unschedule removes the registration behind h. It reports false when h is
// unknown or was already removed.
func (s *Scheduler) Unschedule(h Handle) bool {
	if h.IsZero() {
		return false
	}

	s.mu.Lock()
	var target *action
	for _, a := range s.actions {
		if a.handle == h {
			target = a
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		return false
	}
	n := s.removeLocked(target)
	s.mu.Unlock()

	s.metrics.setRegistered(n)
	s.logger.Debug("action unscheduled", logger.Field{Key: "action", Value: target.label()})
	return true
}

// Actions returns the registrations in firing order.
func (s *Scheduler) Actions() []ActionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ActionInfo, 0, len(s.actions))
	for _, a := range s.actions {
		out = append(out, a.info())
	}
	return out
}

// Len returns the number of registrations.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

// OnTimeSkipped subscribes fn to time-skip events. fn receives the number of
// minutes jumped and runs after the skipped actions were replayed.
func (s *Scheduler) OnTimeSkipped(fn func(minutes int)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.skipSubs = append(s.skipSubs, fn)
	s.mu.Unlock()
}

// Armed reports whether ticks are being dispatched.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// Previous returns the last reading processed. ok is false while disarmed.
func (s *Scheduler) Previous() (r clock.Reading, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previous, s.armed
}

// Tick observes the clock once and fires whatever became due since the
// previous observation.
func (s *Scheduler) Tick() {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	started, armed, prev := s.started, s.armed, s.previous
	s.mu.Unlock()

	if !started {
		return
	}
	if !armed {
		s.tryArm()
		return
	}

	now, ok := clock.Read(s.clock)
	if !ok || now == prev {
		return
	}

	s.mu.Lock()
	s.previous = now
	s.mu.Unlock()

	elapsed := now.Since(prev)
	if !isTimeSkip(prev, now, s.naturalStep) {
		s.fireWindow(prev, now, PathTick)
		return
	}

	s.logger.Info("time skip detected",
		logger.Field{Key: "from", Value: prev.String()},
		logger.Field{Key: "to", Value: now.String()},
		logger.Field{Key: "minutes", Value: elapsed})
	s.fireWindow(prev, now, PathBackfill)
	s.notifySkip(elapsed)
}

// tryArm arms the scheduler once the clock is ready, replaying the window
// since a restored snapshot first. Callers hold tickMu.
func (s *Scheduler) tryArm() bool {
	now, ok := clock.Read(s.clock)
	if !ok {
		return false
	}

	s.mu.Lock()
	if !s.started || s.armed {
		armed := s.armed
		s.mu.Unlock()
		return armed
	}
	s.armed = true
	s.previous = now
	from, resuming := s.pending, s.hasPending
	s.hasPending = false
	s.mu.Unlock()

	s.metrics.setArmed(true)

	if !resuming {
		s.logger.Info("scheduler armed", logger.Field{Key: "reading", Value: now.String()})
		return true
	}

	elapsed := now.Since(from)
	s.logger.Info("scheduler resumed",
		logger.Field{Key: "from", Value: from.String()},
		logger.Field{Key: "to", Value: now.String()},
		logger.Field{Key: "minutes", Value: elapsed})
	s.fireWindow(from, now, PathResume)
	if elapsed > 0 {
		s.notifySkip(elapsed)
	}
	return true
}

// fireWindow invokes every instance due in (since, now]. The list is copied
// first so callbacks may register or remove actions; an action removed by an
// earlier callback of the same pass does not fire.
func (s *Scheduler) fireWindow(since, now clock.Reading, path string) int {
	s.mu.Lock()
	list := slices.Clone(s.actions)
	s.mu.Unlock()

	fired := 0
	for _, in := range instancesBetween(list, since, now) {
		if !s.claim(in.act) {
			continue
		}
		s.invoke(in, now, path)
		fired++
	}
	return fired
}

// claim reports whether a may fire, unregistering it first when it does not
// repeat so it cannot fire twice even if the callback fails.
func (s *Scheduler) claim(a *action) bool {
	s.mu.Lock()
	if !a.registered {
		s.mu.Unlock()
		return false
	}
	if a.repeat {
		s.mu.Unlock()
		return true
	}
	n := s.removeLocked(a)
	s.mu.Unlock()

	s.metrics.setRegistered(n)
	return true
}

// removeLocked drops a from the list and returns the new length.
func (s *Scheduler) removeLocked(a *action) int {
	if i := slices.Index(s.actions, a); i >= 0 {
		s.actions = slices.Delete(s.actions, i, i+1)
	}
	a.registered = false
	return len(s.actions)
}

func (s *Scheduler) invoke(in instance, now clock.Reading, path string) {
	f := Firing{
		Handle: in.act.handle,
		Name:   in.act.name,
		At:     in.at,
		Missed: path != PathTick,
		Late:   now.Since(in.at),
	}

	err := call(in.act.fn, f)
	s.metrics.recordFired(path)
	if err != nil {
		s.metrics.recordFailure(path)
		s.logger.Error("scheduled action failed", err,
			logger.Field{Key: "action", Value: in.act.label()},
			logger.Field{Key: "at", Value: in.at.String()},
			logger.Field{Key: "path", Value: path})
		return
	}

	s.logger.Debug("scheduled action fired",
		logger.Field{Key: "action", Value: in.act.label()},
		logger.Field{Key: "at", Value: in.at.String()},
		logger.Field{Key: "path", Value: path},
		logger.Field{Key: "late", Value: f.Late})
}

func call(fn Callback, f Firing) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, r)
		}
	}()
	return fn(f)
}

func (s *Scheduler) notifySkip(minutes int) {
	s.metrics.recordSkip(minutes)

	s.mu.Lock()
	subs := slices.Clone(s.skipSubs)
	s.mu.Unlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("time skip subscriber panic recovered", fmt.Errorf("panic: %v", r),
						logger.Field{Key: "minutes", Value: minutes})
				}
			}()
			fn(minutes)
		}()
	}
}

// Save persists the last processed reading. Before the first tick the
// restored snapshot is kept, and without one the live clock is used.
func (s *Scheduler) Save(ctx context.Context) error {
	s.mu.Lock()
	started, armed := s.started, s.armed
	r, ok := s.previous, armed
	if !armed && s.hasPending {
		r, ok = s.pending, true
	}
	s.mu.Unlock()

	if !started {
		return ErrNotStarted
	}
	if s.store == nil {
		return ErrNoStore
	}
	if !ok {
		r, ok = clock.Read(s.clock)
		if !ok {
			return ErrClockNotReady
		}
	}

	if err := WriteSnapshot(ctx, s.store, s.keys, r); err != nil {
		s.logger.Error("failed to save snapshot", err, logger.Field{Key: "reading", Value: r.String()})
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.logger.Debug("snapshot saved", logger.Field{Key: "reading", Value: r.String()})
	return nil
}

// loadSnapshot reads the stored reading. Errors and malformed values are
// logged and treated as no snapshot.
func (s *Scheduler) loadSnapshot(ctx context.Context) (clock.Reading, bool) {
	if s.store == nil {
		return clock.Reading{}, false
	}
	r, found, err := ReadSnapshot(ctx, s.store, s.keys)
	if err != nil {
		s.logger.Warn("ignoring unreadable snapshot", logger.Field{Key: "error", Value: err.Error()})
		return clock.Reading{}, false
	}
	return r, found
}
