package ui

import "time"

// Status icons
const (
	IconSettings  = "⚙"
	IconPending   = "⏳"
	IconRunning   = "▶"
	IconPaused    = "⏸"
	IconCompleted = "✔"
	IconFailed    = "❌"
	IconCancelled = "⏹"
)

// Text fragments
const (
	MiddleDotSeparator = " · "
	DashPlaceholder    = "—"
)

// Layout sizing
const (
	StatusLabelWidth float32 = 110
	SpeedLabelWidth  float32 = 160
	ProgressBarWidth float32 = 140

	WindowWidth  float32 = 900
	WindowHeight float32 = 600

	SettingsDialogWidth  float32 = 520
	SettingsDialogHeight float32 = 560
)

// RefreshInterval bounds how often queue changes are redrawn
const RefreshInterval = 250 * time.Millisecond
