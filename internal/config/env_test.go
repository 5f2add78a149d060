package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantEnv map[string]string
	}{
		{
			name: "plain pairs and comments",
			content: `
# Comment line
GT_KEY1=value1
GT_KEY2=value with spaces
`,
			wantEnv: map[string]string{"GT_KEY1": "value1", "GT_KEY2": "value with spaces"},
		},
		{
			name:    "export prefix and quotes",
			content: "export GT_KEY1=\"quoted\"\nGT_KEY2='single'\n",
			wantEnv: map[string]string{"GT_KEY1": "quoted", "GT_KEY2": "single"},
		},
		{
			name:    "values containing equals",
			content: "GT_KEY1=redis://:pw@localhost:6379/0?a=b\n",
			wantEnv: map[string]string{"GT_KEY1": "redis://:pw@localhost:6379/0?a=b"},
		},
		{
			name:    "lines without separator are skipped",
			content: "garbage\nGT_KEY1=ok\n",
			wantEnv: map[string]string{"GT_KEY1": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// t.Setenv restores the previous values after the test.
			t.Setenv("GT_KEY1", "")
			t.Setenv("GT_KEY2", "")

			path := filepath.Join(t.TempDir(), ".env")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			require.NoError(t, LoadEnv(path))
			for key, want := range tt.wantEnv {
				assert.Equal(t, want, os.Getenv(key), key)
			}
		})
	}
}

func TestLoadEnv_MissingFile(t *testing.T) {
	err := LoadEnv(filepath.Join(t.TempDir(), "nonexistent.env"))
	assert.Error(t, err)
}

func TestLoadEnvOptional(t *testing.T) {
	assert.NoError(t, LoadEnvOptional(filepath.Join(t.TempDir(), "nonexistent.env")))

	t.Setenv("GT_KEY1", "")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GT_KEY1=value1"), 0600))
	require.NoError(t, LoadEnvOptional(path))
	assert.Equal(t, "value1", os.Getenv("GT_KEY1"))
}
