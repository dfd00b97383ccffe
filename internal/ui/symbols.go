package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Task completed successfully
	SymbolFail     = "✗" // Task failed
	SymbolPending  = "○" // Task not yet started
	SymbolComplete = "●" // Task done (alternative to success)
	SymbolWarning  = "⚠" // Needs attention
)
