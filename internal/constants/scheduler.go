package constants

import "time"

// Snapshot key namespace. A stored reading is three integers.
const (
	SnapshotKeyPrefix = "gametime/scheduler/"
	SnapshotKeyHour   = "hour"
	SnapshotKeyMinute = "minute"
	SnapshotKeyDay    = "day"
)

// Clock and frame driver defaults.
const (
	// DefaultStartDay and DefaultStartTime place a fresh clock on Monday morning.
	DefaultStartDay  = "Monday"
	DefaultStartTime = "08:00"

	// DefaultMinutesPerFrame is the game time one frame advances.
	DefaultMinutesPerFrame = 1

	// DefaultFrameInterval is the wall time between frames.
	DefaultFrameInterval = time.Second

	// DefaultAutosaveInterval is how often the runner persists the snapshot.
	DefaultAutosaveInterval = time.Minute
)

// DefaultMetricsListen is the address of the /metrics endpoint.
const DefaultMetricsListen = "127.0.0.1:9108"

// DefaultMetricsNamespace prefixes every exported metric.
const DefaultMetricsNamespace = "gametime"
