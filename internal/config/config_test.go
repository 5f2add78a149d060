package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Default()

	tests := []struct {
		field string
		want  any
		got   any
	}{
		{"logging.level", "info", cfg.Logging.Level},
		{"logging.format", "json", cfg.Logging.Format},
		{"logging.output", "stdout", cfg.Logging.Output},
		{"clock.start_day", "Monday", cfg.Clock.StartDay},
		{"clock.start_time", "08:00", cfg.Clock.StartTime},
		{"clock.minutes_per_frame", 1, cfg.Clock.MinutesPerFrame},
		{"clock.frame_interval", "1s", cfg.Clock.FrameInterval},
		{"scheduler.natural_step_minutes", 1, cfg.Scheduler.NaturalStepMinutes},
		{"scheduler.key_prefix", "gametime/scheduler/", cfg.Scheduler.KeyPrefix},
		{"scheduler.autosave_interval", "1m0s", cfg.Scheduler.AutosaveInterval},
		{"storage.backend", "file", cfg.Storage.Backend},
		{"storage.path", "./data/snapshot.json", cfg.Storage.Path},
		{"metrics.namespace", "gametime", cfg.Metrics.Namespace},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	assert.Empty(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.Clock.FrameEvery())
	assert.Equal(t, time.Minute, cfg.Scheduler.AutosaveEvery())
}

func TestNaturalStepFollowsFrameSize(t *testing.T) {
	cfg, err := Parse([]byte(`
[clock]
minutes_per_frame = 10
`))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Scheduler.NaturalStepMinutes)
	assert.Empty(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Setenv("GT_REDIS_PASSWORD", "s3cr3t-password")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[logging]
level = "debug"
format = "text"
output = "stderr"

[clock]
start_day = "sat"
start_time = "23:50"
minutes_per_frame = 5
frame_interval = "2s"

[scheduler]
natural_step_minutes = 5
key_prefix = "slot1/"
autosave_interval = "30s"

[storage]
backend = "redis"
redis_addr = "${GT_REDIS_ADDR:localhost:6379}"
redis_password = "${GT_REDIS_PASSWORD}"
redis_db = 2

[metrics]
enabled = true
listen = ":9108"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "sat", cfg.Clock.StartDay)
	assert.Equal(t, 2*time.Second, cfg.Clock.FrameEvery())
	assert.Equal(t, "slot1/", cfg.Scheduler.KeyPrefix)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, "s3cr3t-password", cfg.Storage.RedisPassword)
	assert.Equal(t, 2, cfg.Storage.RedisDB)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Parse([]byte("[clock\nstart_day = "))
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Parse([]byte(`
[storage]
path = "~/.gametime/snapshot.json"
`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".gametime/snapshot.json"), cfg.Storage.Path)
	assert.Equal(t, "relative/path", expandHome("relative/path"))
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("GT_SET", "from-env")

	tests := []struct {
		in   string
		want string
	}{
		{"${GT_SET}", "from-env"},
		{"${GT_SET:fallback}", "from-env"},
		{"${GT_UNSET_VAR:fallback}", "fallback"},
		{"${GT_UNSET_VAR}", ""},
		{"${GT_BROKEN", "${GT_BROKEN"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.in))
		})
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "logging.level"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
		{name: "typo in start day", mutate: func(c *Config) { c.Clock.StartDay = "Wensday" }, wantErr: "Wednesday"},
		{name: "day set as start day", mutate: func(c *Config) { c.Clock.StartDay = "weekend" }, wantErr: "clock.start_day"},
		{name: "bad start time", mutate: func(c *Config) { c.Clock.StartTime = "25:00" }, wantErr: "clock.start_time"},
		{name: "zero frame size", mutate: func(c *Config) { c.Clock.MinutesPerFrame = 0 }, wantErr: "minutes_per_frame"},
		{name: "bad frame interval", mutate: func(c *Config) { c.Clock.FrameInterval = "soon" }, wantErr: "clock.frame_interval"},
		{name: "sub-second frame interval", mutate: func(c *Config) { c.Clock.FrameInterval = "250ms" }, wantErr: "at least 1s"},
		{name: "negative autosave", mutate: func(c *Config) { c.Scheduler.AutosaveInterval = "-1s" }, wantErr: "autosave_interval"},
		{
			name: "step below frame size",
			mutate: func(c *Config) {
				c.Clock.MinutesPerFrame = 10
				c.Scheduler.NaturalStepMinutes = 5
			},
			wantErr: "every frame would count as a time skip",
		},
		{name: "empty key prefix", mutate: func(c *Config) { c.Scheduler.KeyPrefix = " " }, wantErr: "key_prefix"},
		{name: "plan traversal", mutate: func(c *Config) { c.Scheduler.Plan = "../plan.yaml" }, wantErr: "scheduler.plan"},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "etcd" }, wantErr: "storage.backend"},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Storage.Backend = "sqlite"
				c.Storage.SQLitePath = ""
			},
			wantErr: "storage.sqlite_path",
		},
		{name: "redis without addr", mutate: func(c *Config) { c.Storage.Backend = "redis" }, wantErr: "redis_addr"},
		{
			name: "metrics without listen",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Listen = ""
			},
			wantErr: "metrics.listen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			var joined []string
			for _, e := range errs {
				joined = append(joined, e.Error())
			}
			assert.Contains(t, strings.Join(joined, "\n"), tt.wantErr)
		})
	}
}

func TestStorageDescribe(t *testing.T) {
	assert.Equal(t, "memory", StorageConfig{Backend: "memory"}.Describe())
	assert.Equal(t, "file:/tmp/s.json", StorageConfig{Backend: "file", Path: "/tmp/s.json"}.Describe())

	redis := StorageConfig{Backend: "redis", RedisAddr: "localhost:6379", RedisDB: 1, RedisPassword: "supersecretpw"}
	desc := redis.Describe()
	assert.Contains(t, desc, "redis://localhost:6379/1")
	assert.NotContains(t, desc, "supersecretpw")
	assert.Contains(t, desc, "supe*****etpw")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "***", maskSecret("short"))
	assert.Equal(t, "abcd****wxyz", maskSecret("abcd1234wxyz"))
}
