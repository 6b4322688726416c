package config

// Layout constants.
const (
	// MinTitleWidth is the minimum width for task titles.
	MinTitleWidth = 10

	// TargetTitleWidth is the preferred width for task titles.
	TargetTitleWidth = 32

	// CompactModeThreshold triggers compact rendering below this width.
	CompactModeThreshold = 60
)

// Display limits.
const (
	// MaxVisibleTimers limits rows in the active timer table.
	MaxVisibleTimers = 10

	// TruncationSuffix appended to truncated strings.
	TruncationSuffix = "..."
)
