package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func restore(t *testing.T) {
	t.Helper()
	v, bt, gc, gv := Version, BuildTime, GitCommit, GoVersion
	t.Cleanup(func() {
		Version, BuildTime, GitCommit, GoVersion = v, bt, gc, gv
	})
}

func TestSetInfo(t *testing.T) {
	restore(t)

	SetInfo("1.0.0", "2024-01-01T00:00:00Z", "abc123", "go1.26")

	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "2024-01-01T00:00:00Z", BuildTime)
	assert.Equal(t, "abc123", GitCommit)
	assert.Equal(t, "go1.26", GoVersion)
}

func TestSetInfoEmptyValues(t *testing.T) {
	restore(t)

	Version = "test-version"
	SetInfo("", "", "", "")
	assert.Equal(t, "test-version", Version)
}

func TestFormatting(t *testing.T) {
	restore(t)

	SetInfo("1.2.3", "2024-06-15T10:30:00Z", "deadbee", "go1.26")

	msg := FormatStartupMessage()
	assert.Contains(t, msg, "gametime 1.2.3")
	assert.Contains(t, msg, "deadbee")

	assert.Equal(t, "Version: 1.2.3\nBuild Time: 2024-06-15T10:30:00Z\nGit Commit: deadbee\nGo Version: go1.26\n", String())
}
