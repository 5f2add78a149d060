package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/aatumaykin/gametime/internal/clock"
	"github.com/aatumaykin/gametime/internal/config"
	"github.com/aatumaykin/gametime/internal/constants"
	"github.com/aatumaykin/gametime/internal/logger"
	"github.com/aatumaykin/gametime/internal/snapshot"
)

// loadConfig reads the configuration named by --config. Without the flag a
// missing ./config.toml falls back to defaults.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvOptional(constants.DefaultEnvPath); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", constants.DefaultEnvPath, err)
	}

	path := configPath
	if path == "" {
		path = constants.DefaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		if configPath == "" && errors.Is(err, fs.ErrNotExist) {
			cfg = config.Default()
		} else {
			return nil, err
		}
	}

	if debugMode {
		cfg.Logging.Level = "debug"
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig) (*logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: cfg.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (snapshot.Store, error) {
	return snapshot.Open(ctx, snapshot.Config{
		Backend:       cfg.Backend,
		Path:          cfg.Path,
		SQLitePath:    cfg.SQLitePath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}, log)
}

// parsePoint parses "Tuesday 09:00".
func parsePoint(s string) (clock.Reading, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return clock.Reading{}, fmt.Errorf("expected \"<day> <HH:MM>\", got %q", s)
	}
	day, err := clock.ParseDay(fields[0])
	if err != nil {
		return clock.Reading{}, err
	}
	h, m, err := clock.ParseTime(fields[1])
	if err != nil {
		return clock.Reading{}, err
	}
	return clock.At(day, h, m), nil
}

// loggingToStderr is used by commands that print results on stdout.
func loggingToStderr() config.LoggingConfig {
	return config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}
}
