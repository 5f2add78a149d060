package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aatumaykin/gametime/internal/clock"
	"github.com/aatumaykin/gametime/internal/constants"
)

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data and applies defaults and environment expansion.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := expandEnvVars(&cfg); err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate проверяет валидность конфигурации
func (c *Config) Validate() []error {
	var errors []error

	// Проверка logging config
	if c.Logging.Level == "" {
		errors = append(errors, fmt.Errorf("logging.level is required"))
	} else {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[strings.ToLower(c.Logging.Level)] {
			errors = append(errors, fmt.Errorf("invalid logging.level: %s (expected: debug, info, warn, error)", c.Logging.Level))
		}
	}

	if c.Logging.Format == "" {
		errors = append(errors, fmt.Errorf("logging.format is required"))
	} else {
		validFormats := map[string]bool{"json": true, "text": true}
		if !validFormats[strings.ToLower(c.Logging.Format)] {
			errors = append(errors, fmt.Errorf("invalid logging.format: %s (expected: json, text)", c.Logging.Format))
		}
	}

	if c.Logging.Output == "" {
		errors = append(errors, fmt.Errorf("logging.output is required"))
	}

	// Проверка clock
	if _, err := clock.ParseDay(c.Clock.StartDay); err != nil {
		errors = append(errors, fmt.Errorf("invalid clock.start_day: %w", err))
	}
	if _, _, err := clock.ParseTime(c.Clock.StartTime); err != nil {
		errors = append(errors, fmt.Errorf("invalid clock.start_time: %w", err))
	}
	if c.Clock.MinutesPerFrame < 1 || c.Clock.MinutesPerFrame > clock.MinutesPerDay {
		errors = append(errors, fmt.Errorf("clock.minutes_per_frame must be between 1 and %d (got %d)", clock.MinutesPerDay, c.Clock.MinutesPerFrame))
	}
	if err := validateInterval(c.Clock.FrameInterval, "clock.frame_interval"); err != nil {
		errors = append(errors, err)
	} else if c.Clock.FrameEvery() < time.Second {
		// cron schedules have one-second resolution
		errors = append(errors, fmt.Errorf("clock.frame_interval must be at least 1s (got %s)", c.Clock.FrameInterval))
	}

	// Проверка scheduler
	if c.Scheduler.NaturalStepMinutes < 1 {
		errors = append(errors, fmt.Errorf("scheduler.natural_step_minutes must be >= 1 (got %d)", c.Scheduler.NaturalStepMinutes))
	}
	if c.Scheduler.NaturalStepMinutes < c.Clock.MinutesPerFrame {
		errors = append(errors, fmt.Errorf("scheduler.natural_step_minutes (%d) is smaller than clock.minutes_per_frame (%d): every frame would count as a time skip",
			c.Scheduler.NaturalStepMinutes, c.Clock.MinutesPerFrame))
	}
	if strings.TrimSpace(c.Scheduler.KeyPrefix) == "" {
		errors = append(errors, fmt.Errorf("scheduler.key_prefix cannot be empty"))
	}
	if err := validateInterval(c.Scheduler.AutosaveInterval, "scheduler.autosave_interval"); err != nil {
		errors = append(errors, err)
	}
	if c.Scheduler.Plan != "" {
		if err := validatePath(c.Scheduler.Plan, "scheduler.plan"); err != nil {
			errors = append(errors, err)
		}
	}

	errors = append(errors, c.Storage.validate()...)

	// Проверка metrics
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		errors = append(errors, fmt.Errorf("metrics.listen is required when metrics are enabled"))
	}

	return errors
}

func (s *StorageConfig) validate() []error {
	var errors []error

	switch strings.ToLower(s.Backend) {
	case "memory":
	case "file":
		if err := validatePath(s.Path, "storage.path"); err != nil {
			errors = append(errors, err)
		}
	case "sqlite":
		if err := validatePath(s.SQLitePath, "storage.sqlite_path"); err != nil {
			errors = append(errors, err)
		}
	case "redis":
		if s.RedisAddr == "" {
			errors = append(errors, fmt.Errorf("storage.redis_addr is required when backend is 'redis'"))
		}
		if s.RedisDB < 0 {
			errors = append(errors, fmt.Errorf("storage.redis_db must be >= 0 (got %d)", s.RedisDB))
		}
	default:
		errors = append(errors, fmt.Errorf("invalid storage.backend: %s (expected: memory, file, sqlite, redis)", s.Backend))
	}

	return errors
}

func validateInterval(value, fieldName string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", fieldName, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive (got %s)", fieldName, value)
	}
	return nil
}

func validatePath(path, fieldName string) error {
	if path == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	if strings.HasPrefix(path, "~") {
		return nil
	}

	if strings.Contains(path, "..") {
		return fmt.Errorf("%s contains potentially dangerous path traversal sequence", fieldName)
	}

	return nil
}

// applyDefaults применяет значения по умолчанию
func applyDefaults(c *Config) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	if c.Clock.StartDay == "" {
		c.Clock.StartDay = constants.DefaultStartDay
	}
	if c.Clock.StartTime == "" {
		c.Clock.StartTime = constants.DefaultStartTime
	}
	if c.Clock.MinutesPerFrame == 0 {
		c.Clock.MinutesPerFrame = constants.DefaultMinutesPerFrame
	}
	if c.Clock.FrameInterval == "" {
		c.Clock.FrameInterval = constants.DefaultFrameInterval.String()
	}

	if c.Scheduler.NaturalStepMinutes == 0 {
		c.Scheduler.NaturalStepMinutes = max(c.Clock.MinutesPerFrame, 1)
	}
	if c.Scheduler.KeyPrefix == "" {
		c.Scheduler.KeyPrefix = constants.SnapshotKeyPrefix
	}
	if c.Scheduler.AutosaveInterval == "" {
		c.Scheduler.AutosaveInterval = constants.DefaultAutosaveInterval.String()
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = constants.DefaultSnapshotPath
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = constants.DefaultSQLitePath
	}

	if c.Metrics.Listen == "" {
		c.Metrics.Listen = constants.DefaultMetricsListen
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = constants.DefaultMetricsNamespace
	}
}

// expandEnvVars расширяет переменные окружения в конфигурации
func expandEnvVars(c *Config) error {
	for _, field := range []*string{
		&c.Logging.Output,
		&c.Scheduler.Plan,
		&c.Storage.Path,
		&c.Storage.SQLitePath,
		&c.Storage.RedisAddr,
		&c.Storage.RedisPassword,
		&c.Metrics.Listen,
	} {
		if strings.HasPrefix(*field, "${") {
			*field = expandEnv(*field)
		}
	}

	c.Scheduler.Plan = expandHome(c.Scheduler.Plan)
	c.Storage.Path = expandHome(c.Storage.Path)
	c.Storage.SQLitePath = expandHome(c.Storage.SQLitePath)

	return nil
}

// expandEnv расширяет переменную окружения формата ${VAR:default}
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") {
		return s
	}

	end := strings.Index(s, "}")
	if end == -1 {
		return s
	}

	content := s[2:end]
	if parts := strings.SplitN(content, ":", 2); len(parts) == 2 {
		key := parts[0]
		defaultVal := parts[1]
		if val := os.Getenv(key); val != "" {
			return val
		}
		return defaultVal
	}

	// Без значения по умолчанию
	return os.Getenv(s[2:end])
}

// expandHome расширяет ~ в пути
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
