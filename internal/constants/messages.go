package constants

// Config messages
const (
	// MsgConfigLoadError is the error message when configuration loading fails.
	MsgConfigLoadError = "❌ Failed to load configuration: %v\n"

	// MsgConfigValidationError is the message when configuration validation fails.
	MsgConfigValidationError = "❌ Configuration validation failed:\n"

	// MsgConfigValid is the message when configuration is successfully loaded and validated.
	MsgConfigValid = "✅ Configuration is valid"

	// MsgConfigValidatePrefix is the prefix for configuration validation errors.
	MsgConfigValidatePrefix = "  - %v\n"
)

// Snapshot messages
const (
	MsgSnapshotNone    = "No snapshot stored."
	MsgSnapshotShow    = "Snapshot: %s (hour=%d minute=%d day=%d)\n"
	MsgSnapshotCleared = "✅ Snapshot cleared"
)

// Simulation report
const (
	MsgReportHeader  = "Simulation report\n-----------------\n"
	MsgReportFired   = "  fired    %-20s at %s%s\n"
	MsgReportMissed  = " (missed)"
	MsgReportSkip    = "  skip     %d minutes\n"
	MsgReportDay     = "  day      %s\n"
	MsgReportFinal   = "-----------------\nFinal clock: %s\n"
	MsgReportSummary = "Fired %d action(s), %d time skip(s)\n"
)
