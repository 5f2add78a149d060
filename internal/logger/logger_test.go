package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "json to stdout",
			config: Config{Level: "debug", Format: "json", Output: "stdout"},
		},
		{
			name:   "text to stderr",
			config: Config{Level: "info", Format: "text", Output: "stderr"},
		},
		{
			name:   "discard",
			config: Config{Level: "warn", Format: "text", Output: "discard"},
		},
		{
			name:   "file in temp dir",
			config: Config{Level: "error", Format: "json", Output: filepath.Join(t.TempDir(), "logs", "gametime.log")},
		},
		{
			name:    "invalid level",
			config:  Config{Level: "verbose", Format: "json", Output: "stdout"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: "debug", Format: "xml", Output: "stdout"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestLogger_WriterOverridesOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(Config{Level: "info", Format: "json", Output: "stdout", Writer: buf})
	require.NoError(t, err)

	log.Info("action fired", Field{Key: "action", Value: "breakfast"})

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "action fired", record["msg"])
	assert.Equal(t, "breakfast", record["action"])
}

func TestLogger_ErrorPutsErrorFirst(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(Config{Level: "debug", Format: "text", Writer: buf})
	require.NoError(t, err)

	log.Error("callback failed", errors.New("boom"), Field{Key: "action", Value: "lunch"})

	out := buf.String()
	assert.Contains(t, out, "callback failed")
	assert.Less(t, strings.Index(out, "error=boom"), strings.Index(out, "action=lunch"))
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		want  []string
		skip  []string
	}{
		{level: "debug", want: []string{"d-msg", "i-msg", "w-msg", "e-msg"}},
		{level: "info", want: []string{"i-msg", "w-msg", "e-msg"}, skip: []string{"d-msg"}},
		{level: "warn", want: []string{"w-msg", "e-msg"}, skip: []string{"d-msg", "i-msg"}},
		{level: "error", want: []string{"e-msg"}, skip: []string{"d-msg", "i-msg", "w-msg"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log, err := New(Config{Level: tt.level, Format: "text", Writer: buf})
			require.NoError(t, err)

			log.Debug("d-msg")
			log.Info("i-msg")
			log.Warn("w-msg")
			log.Error("e-msg", nil)

			out := buf.String()
			for _, m := range tt.want {
				assert.Contains(t, out, m)
			}
			for _, m := range tt.skip {
				assert.NotContains(t, out, m)
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(Config{Level: "info", Format: "text", Writer: buf})
	require.NoError(t, err)

	log.With(Field{Key: "component", Value: "scheduler"}).Info("armed")

	assert.Contains(t, buf.String(), "component=scheduler")
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.Info("dropped")
		log.Error("dropped", errors.New("x"))
	})
}
