// Package config provides configuration loading and validation for gametime.
// It supports TOML configuration files with environment variable expansion,
// default values, and comprehensive validation.
//
// Configuration structure:
//   - [logging]: Logging level, format, and output
//   - [clock]: Start point and frame pacing of the simulated clock
//   - [scheduler]: Time-skip threshold, snapshot keys, autosave, plan file
//   - [storage]: Snapshot backend (memory, file, sqlite, redis)
//   - [metrics]: Prometheus endpoint
//
// Environment variables:
// Environment variables can be referenced using ${VAR} or ${VAR:default} syntax.
// For example: redis_password = "${REDIS_PASSWORD:}"
package config

import "time"

// Config represents the main application configuration.
type Config struct {
	Logging   LoggingConfig   `toml:"logging"`
	Clock     ClockConfig     `toml:"clock"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Storage   StorageConfig   `toml:"storage"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

// LoggingConfig представляет конфигурацию логирования
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// ClockConfig представляет конфигурацию игровых часов
type ClockConfig struct {
	StartDay        string `toml:"start_day"`
	StartTime       string `toml:"start_time"`
	MinutesPerFrame int    `toml:"minutes_per_frame"`
	// FrameInterval is a Go duration string, e.g. "1s" or "250ms".
	FrameInterval string `toml:"frame_interval"`
}

// FrameEvery returns the parsed frame interval, or zero when invalid.
func (c ClockConfig) FrameEvery() time.Duration {
	d, _ := time.ParseDuration(c.FrameInterval)
	return d
}

// SchedulerConfig представляет конфигурацию планировщика
type SchedulerConfig struct {
	NaturalStepMinutes int    `toml:"natural_step_minutes"`
	KeyPrefix          string `toml:"key_prefix"`
	AutosaveInterval   string `toml:"autosave_interval"`
	// Plan is an optional YAML plan whose actions are registered on run.
	Plan string `toml:"plan"`
}

// AutosaveEvery returns the parsed autosave interval, or zero when invalid.
func (c SchedulerConfig) AutosaveEvery() time.Duration {
	d, _ := time.ParseDuration(c.AutosaveInterval)
	return d
}

// StorageConfig представляет конфигурацию хранилища снимка часов
type StorageConfig struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path"`
	SQLitePath    string `toml:"sqlite_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// MetricsConfig представляет конфигурацию Prometheus endpoint
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Listen    string `toml:"listen"`
	Namespace string `toml:"namespace"`
}
