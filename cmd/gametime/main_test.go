package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aatumaykin/gametime/internal/clock"
	"github.com/aatumaykin/gametime/internal/config"
	"github.com/aatumaykin/gametime/internal/logger"
	"github.com/aatumaykin/gametime/internal/scheduler"
	"github.com/aatumaykin/gametime/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, debugMode, simulateUseStore, runStart = "", false, false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// fileConfig writes a config using the file backend inside dir.
func fileConfig(t *testing.T, dir string) (cfgPath, snapshotPath string) {
	t.Helper()
	snapshotPath = filepath.Join(dir, "snapshot.json")
	cfgPath = writeFile(t, dir, "config.toml", fmt.Sprintf(`
[logging]
output = "discard"

[storage]
backend = "file"
path = %q
`, snapshotPath))
	return cfgPath, snapshotPath
}

func TestCommandStructure(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, expected := range []string{"version", "config", "run", "simulate", "snapshot"} {
		assert.True(t, found[expected], "command %q not registered", expected)
	}
}

func TestRunCmdFlags(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantConfig string
		wantDebug  bool
		wantStart  string
	}{
		{name: "config flag", args: []string{"--config", "test.toml"}, wantConfig: "test.toml"},
		{name: "debug flag", args: []string{"--debug"}, wantDebug: true},
		{name: "short flags", args: []string{"-c", "test.toml", "-d"}, wantConfig: "test.toml", wantDebug: true},
		{name: "start flag", args: []string{"--start", "Tuesday 09:00"}, wantStart: "Tuesday 09:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath, debugMode, runStart = "", false, ""

			require.NoError(t, runCmd.ParseFlags(tt.args))

			assert.Equal(t, tt.wantConfig, configPath)
			assert.Equal(t, tt.wantDebug, debugMode)
			assert.Equal(t, tt.wantStart, runStart)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gametime")
	assert.Contains(t, out, "Version: ")
	assert.Contains(t, out, "Go Version: ")
}

func TestConfigValidateCommand(t *testing.T) {
	dir := t.TempDir()

	good, _ := fileConfig(t, dir)
	out, err := execute(t, "config", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "file:")

	bad := writeFile(t, dir, "bad.toml", `
[clock]
start_day = "Funday"

[storage]
backend = "etcd"
`)
	out, err = execute(t, "config", "validate", bad)
	require.Error(t, err)
	assert.Contains(t, out, "clock.start_day")
	assert.Contains(t, out, "storage.backend")

	_, err = execute(t, "config", "validate", filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestSimulateCommand(t *testing.T) {
	planPath := writeFile(t, t.TempDir(), "plan.yaml", `
start: {day: Monday, time: "10:00"}
actions:
  - {name: nap-alarm, time: "15:00", days: mon}
steps:
  - jump: 12h
`)

	out, err := execute(t, "simulate", planPath)
	require.NoError(t, err)
	assert.Contains(t, out, "nap-alarm")
	assert.Contains(t, out, "Monday 15:00 (missed)")
	assert.Contains(t, out, "skip     720 minutes")
	assert.Contains(t, out, "Final clock: Monday 22:00")

	_, err = execute(t, "simulate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSimulateCommand_WithStore(t *testing.T) {
	dir := t.TempDir()
	cfgPath, snapshotPath := fileConfig(t, dir)
	planPath := writeFile(t, dir, "plan.yaml", `
start: {day: Friday, time: "18:00"}
steps:
  - advance: 30
  - save: true
`)

	_, err := execute(t, "simulate", planPath, "--store", "-c", cfgPath)
	require.NoError(t, err)

	store := snapshot.NewFileStore(nil, snapshotPath, logger.Nop())
	got, found, err := scheduler.ReadSnapshot(context.Background(), store, scheduler.KeysFor(""))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, clock.At(clock.Friday, 18, 30), got)
}

func TestSnapshotCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath, snapshotPath := fileConfig(t, dir)

	out, err := execute(t, "snapshot", "show", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No snapshot stored.")

	store := snapshot.NewFileStore(nil, snapshotPath, logger.Nop())
	require.NoError(t, scheduler.WriteSnapshot(context.Background(), store, scheduler.KeysFor(""), clock.At(clock.Wednesday, 9, 0)))

	out, err = execute(t, "snapshot", "show", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wednesday 09:00")
	assert.Contains(t, out, "day=4")

	out, err = execute(t, "snapshot", "clear", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Snapshot cleared")

	out, err = execute(t, "snapshot", "show", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No snapshot stored.")
}

func TestParsePoint(t *testing.T) {
	r, err := parsePoint("tue 09:05")
	require.NoError(t, err)
	assert.Equal(t, clock.At(clock.Tuesday, 9, 5), r)

	for _, in := range []string{"", "Tuesday", "Tuesday 9", "weekend 09:00", "Tuesday 09:00 extra"} {
		_, err := parsePoint(in)
		assert.Error(t, err, in)
	}
}

func TestStartReading(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	store := snapshot.NewMemoryStore()
	t.Cleanup(func() { runStart = "" })

	runStart = ""
	r, err := startReading(ctx, cfg, store)
	require.NoError(t, err)
	assert.Equal(t, clock.At(clock.Monday, 8, 0), r)

	require.NoError(t, scheduler.WriteSnapshot(ctx, store, scheduler.KeysFor(cfg.Scheduler.KeyPrefix), clock.At(clock.Saturday, 21, 15)))
	r, err = startReading(ctx, cfg, store)
	require.NoError(t, err)
	assert.Equal(t, clock.At(clock.Saturday, 21, 15), r)

	runStart = "Sunday 06:00"
	r, err = startReading(ctx, cfg, store)
	require.NoError(t, err)
	assert.Equal(t, clock.At(clock.Sunday, 6, 0), r)

	runStart = "someday"
	_, err = startReading(ctx, cfg, store)
	assert.Error(t, err)
}
