package model

// Centralized icons for the UI components
// Using simple single-width characters for consistent terminal rendering
const (
	IconToggleable = "⇄" // value belongs to a cycle
	IconPlain      = " " // no icon for plain entries, less noise
	IconQuoted     = "❞" // value carries a quote layer
	IconDuplicate  = "≈" // key defined more than once
	IconWarning    = "!" // file not git-ignored
	IconOK         = "✓" // last toggle succeeded
	IconFailed     = "✗" // last toggle rejected
)
