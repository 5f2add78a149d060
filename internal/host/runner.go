// Package host drives a simulated game clock and a scheduler in wall time.
// Each frame advances the clock and ticks the scheduler; the snapshot is
// saved periodically and on shutdown.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aatumaykin/gametime/internal/clock"
	"github.com/aatumaykin/gametime/internal/logger"
	"github.com/aatumaykin/gametime/internal/retry"
	"github.com/aatumaykin/gametime/internal/scheduler"
	"github.com/robfig/cron/v3"
)

var (
	ErrAlreadyRunning = errors.New("runner already started")
	ErrNotRunning     = errors.New("runner not started")
	ErrInvalidJump    = errors.New("jump must be a positive number of minutes")
)

// Config controls frame pacing.
type Config struct {
	MinutesPerFrame  int
	FrameInterval    time.Duration
	AutosaveInterval time.Duration
	// SaveRetry controls how transient snapshot write failures are retried.
	SaveRetry retry.Config
}

// Runner owns the frame loop around one clock and one scheduler.
type Runner struct {
	cfg    Config
	logger *logger.Logger
	clock  *clock.Simulated
	sched  *scheduler.Scheduler
	cron   *cron.Cron

	// frameMu keeps clock movement and the following tick together.
	frameMu sync.Mutex
	mu      sync.Mutex
	started bool
	entries []cron.EntryID

	frames     atomic.Uint64
	dayChanges atomic.Uint64
}

// NewRunner wires clk and sched. Day changes of clk are logged.
func NewRunner(log *logger.Logger, clk *clock.Simulated, sched *scheduler.Scheduler, cfg Config) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MinutesPerFrame <= 0 {
		cfg.MinutesPerFrame = 1
	}
	log = log.With(logger.Field{Key: "component", Value: "runner"})

	r := &Runner{
		cfg:    cfg,
		logger: log,
		clock:  clk,
		sched:  sched,
		cron: cron.New(
			cron.WithLogger(cronLogger{log: log}),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{log: log})),
		),
	}

	clk.OnDayChanged(func(d clock.WeekDay) {
		r.dayChanges.Add(1)
		r.logger.Info("day changed", logger.Field{Key: "day", Value: d.String()})
	})

	return r
}

// Start arms the scheduler and begins the frame and autosave schedules.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrAlreadyRunning
	}
	if r.cfg.FrameInterval <= 0 {
		return fmt.Errorf("invalid frame interval: %s", r.cfg.FrameInterval)
	}

	if err := r.sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	r.entries = r.entries[:0]
	r.entries = append(r.entries, r.cron.Schedule(cron.Every(r.cfg.FrameInterval), cron.FuncJob(r.Frame)))
	if r.cfg.AutosaveInterval > 0 {
		r.entries = append(r.entries, r.cron.Schedule(cron.Every(r.cfg.AutosaveInterval), cron.FuncJob(func() {
			r.autosave(ctx)
		})))
	}

	r.cron.Start()
	r.started = true

	r.logger.Info("runner started",
		logger.Field{Key: "clock", Value: r.clock.Now().String()},
		logger.Field{Key: "frame_interval", Value: r.cfg.FrameInterval.String()},
		logger.Field{Key: "minutes_per_frame", Value: r.cfg.MinutesPerFrame},
		logger.Field{Key: "autosave_interval", Value: r.cfg.AutosaveInterval.String()})
	return nil
}

// Stop waits for a running frame to finish, saves the snapshot and stops
// the scheduler. The save error, if any, is returned after shutdown.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return ErrNotRunning
	}
	r.started = false
	for _, id := range r.entries {
		r.cron.Remove(id)
	}
	r.entries = nil
	r.mu.Unlock()

	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
		r.logger.Warn("frame still running at shutdown")
	}

	saveErr := r.save(ctx)
	if saveErr != nil && !errors.Is(saveErr, scheduler.ErrNoStore) {
		r.logger.Error("failed to save snapshot on shutdown", saveErr)
	} else {
		saveErr = nil
	}

	if err := r.sched.Stop(); err != nil {
		return err
	}

	r.logger.Info("runner stopped",
		logger.Field{Key: "clock", Value: r.clock.Now().String()},
		logger.Field{Key: "frames", Value: r.frames.Load()},
		logger.Field{Key: "day_changes", Value: r.dayChanges.Load()})
	return saveErr
}

// Frame advances the clock by one frame and ticks the scheduler.
func (r *Runner) Frame() {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()

	r.clock.Advance(r.cfg.MinutesPerFrame)
	r.sched.Tick()
	r.frames.Add(1)
}

// Jump fast-forwards the clock, as sleeping would, and ticks once so the
// skipped window is replayed.
func (r *Runner) Jump(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidJump, minutes)
	}

	r.frameMu.Lock()
	defer r.frameMu.Unlock()

	from := r.clock.Now()
	r.clock.Advance(minutes)
	r.logger.Info("clock jumped",
		logger.Field{Key: "from", Value: from.String()},
		logger.Field{Key: "to", Value: r.clock.Now().String()},
		logger.Field{Key: "minutes", Value: minutes})
	r.sched.Tick()
	return nil
}

// Frames returns how many frames ran.
func (r *Runner) Frames() uint64 {
	return r.frames.Load()
}

// DayChanges returns how many midnights the clock crossed.
func (r *Runner) DayChanges() uint64 {
	return r.dayChanges.Load()
}

func (r *Runner) save(ctx context.Context) error {
	return retry.Do(ctx, r.logger, r.cfg.SaveRetry, r.sched.Save)
}

func (r *Runner) autosave(ctx context.Context) {
	if err := r.save(ctx); err != nil {
		if errors.Is(err, scheduler.ErrNoStore) || errors.Is(err, scheduler.ErrClockNotReady) {
			r.logger.Debug("autosave skipped", logger.Field{Key: "reason", Value: err.Error()})
			return
		}
		r.logger.Error("autosave failed", err)
	}
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, pairs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, err, pairs(keysAndValues)...)
}

func pairs(kv []any) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Field{Key: fmt.Sprint(kv[i]), Value: kv[i+1]})
	}
	return fields
}
