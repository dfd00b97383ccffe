package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Palette of ANSI color codes. Plain 16-color codes keep the output
// readable on every terminal theme and degrade cleanly when piped.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// GradientColors is the cycle the spinner animates through.
var GradientColors = []lipgloss.Color{
	ColorInfo,
	ColorSecondary,
	"5", // Magenta
	ColorSecondary,
}

// RendererFor returns a renderer that picks its color profile from w, so
// styling follows the stream actually written to. NO_COLOR is honored.
func RendererFor(w io.Writer) *lipgloss.Renderer {
	return lipgloss.NewRenderer(w)
}

// SuccessStyle renders text in the success color.
func SuccessStyle(r *lipgloss.Renderer) lipgloss.Style {
	return r.NewStyle().Foreground(ColorSuccess)
}

// ErrorStyle renders text in the error color.
func ErrorStyle(r *lipgloss.Renderer) lipgloss.Style {
	return r.NewStyle().Foreground(ColorError)
}

// WarningStyle renders text in the warning color.
func WarningStyle(r *lipgloss.Renderer) lipgloss.Style {
	return r.NewStyle().Foreground(ColorWarning)
}

// MutedStyle renders secondary text.
func MutedStyle(r *lipgloss.Renderer) lipgloss.Style {
	return r.NewStyle().Foreground(ColorMuted)
}
