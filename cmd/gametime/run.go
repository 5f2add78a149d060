package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aatumaykin/gametime/internal/clock"
	"github.com/aatumaykin/gametime/internal/config"
	"github.com/aatumaykin/gametime/internal/host"
	"github.com/aatumaykin/gametime/internal/logger"
	"github.com/aatumaykin/gametime/internal/plan"
	"github.com/aatumaykin/gametime/internal/scheduler"
	"github.com/aatumaykin/gametime/internal/snapshot"
	"github.com/aatumaykin/gametime/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var runStart string

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the game clock and scheduler",
	Long: `Advance the simulated clock every frame and fire scheduled actions
until interrupted. Actions come from [scheduler].plan. The clock continues
from the stored snapshot unless --start places it explicitly, in which case
everything between the snapshot and the start point is replayed.`,
	Args: cobra.NoArgs,
	RunE: runHandler,
}

func runHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("🚀 "+version.FormatStartupMessage(),
		logger.Field{Key: "config", Value: configPath},
		logger.Field{Key: "storage", Value: cfg.Storage.Describe()})

	store, err := openStore(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	start, err := startReading(ctx, cfg, store)
	if err != nil {
		return err
	}
	clk := clock.NewSimulated(start)

	var metrics *scheduler.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics = scheduler.NewMetrics(cfg.Metrics.Namespace, reg)
		srv := serveMetrics(cfg.Metrics.Listen, reg, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("metrics server forced to shutdown", err)
			}
		}()
	}

	sched := scheduler.NewScheduler(log, clk, store, scheduler.Config{
		KeyPrefix:   cfg.Scheduler.KeyPrefix,
		NaturalStep: cfg.Scheduler.NaturalStepMinutes,
		Metrics:     metrics,
	})
	sched.OnTimeSkipped(func(minutes int) {
		log.Info("⏩ time skipped", logger.Field{Key: "minutes", Value: minutes})
	})

	if cfg.Scheduler.Plan != "" {
		p, err := plan.Load(cfg.Scheduler.Plan)
		if err != nil {
			return err
		}
		if err := plan.Register(sched, p.Actions, actionLogger(log)); err != nil {
			return err
		}
		log.Info("plan loaded",
			logger.Field{Key: "path", Value: cfg.Scheduler.Plan},
			logger.Field{Key: "actions", Value: len(p.Actions)})
	} else {
		log.Warn("no plan configured, running without actions")
	}

	runner := host.NewRunner(log, clk, sched, host.Config{
		MinutesPerFrame:  cfg.Clock.MinutesPerFrame,
		FrameInterval:    cfg.Clock.FrameEvery(),
		AutosaveInterval: cfg.Scheduler.AutosaveEvery(),
	})
	if err := runner.Start(ctx); err != nil {
		return err
	}

	log.Info("✅ gametime is running")
	<-ctx.Done()
	log.Info("⏳ Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := runner.Stop(shutdownCtx); err != nil {
		return err
	}

	log.Info("👋 gametime stopped gracefully")
	return nil
}

// startReading places the clock at --start, else at the stored snapshot,
// else at [clock] start_day/start_time.
func startReading(ctx context.Context, cfg *config.Config, store snapshot.Store) (clock.Reading, error) {
	if runStart != "" {
		r, err := parsePoint(runStart)
		if err != nil {
			return clock.Reading{}, fmt.Errorf("invalid --start: %w", err)
		}
		return r, nil
	}

	if r, found, err := scheduler.ReadSnapshot(ctx, store, scheduler.KeysFor(cfg.Scheduler.KeyPrefix)); err == nil && found {
		return r, nil
	}

	return parsePoint(cfg.Clock.StartDay + " " + cfg.Clock.StartTime)
}

func actionLogger(log *logger.Logger) func(plan.Action) scheduler.Callback {
	return func(a plan.Action) scheduler.Callback {
		return func(f scheduler.Firing) error {
			log.Info("🔔 action fired",
				logger.Field{Key: "action", Value: a.Name},
				logger.Field{Key: "at", Value: f.At.String()},
				logger.Field{Key: "missed", Value: f.Missed},
				logger.Field{Key: "late_minutes", Value: f.Late})
			return nil
		}
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("📈 serving metrics", logger.Field{Key: "listen", Value: addr})
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", err)
		}
	}()
	return srv
}

func init() {
	runCmd.Flags().StringVar(&runStart, "start", "", `Place the clock at "<day> <HH:MM>" instead of resuming it`)
}
