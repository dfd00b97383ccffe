// Package ui holds the shared terminal styling for prettysmi: the ANSI
// palette, status symbols, one-line messages and the spinner used by the
// update command.
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Successful operations
//	ColorError     (red)    - Failures and critical readings
//	ColorWarning   (yellow) - Warnings and warning readings
//	ColorInfo      (cyan)   - Headings
//	ColorMuted     (gray)   - Secondary text, timing info
//
// Every helper styles through RendererFor(w), so color follows the stream
// being written rather than stdout.
//
// # Spinner Usage
//
//	s := ui.NewSpinner(os.Stderr, "Downloading prettysmi v1.2.0", true)
//	s.Start()
//	// ... do work ...
//	s.Success() // or s.Fail()
package ui
