package ui

import (
	"fmt"
	"io"
)

// FprintWarning writes a warning line to w.
func FprintWarning(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", WarningStyle(RendererFor(w)).Render(SymbolWarning), msg)
}

// FprintSuccess writes a success line to w.
func FprintSuccess(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", SuccessStyle(RendererFor(w)).Render(SymbolSuccess), msg)
}

// FprintError writes an already formatted error line to w in the error color.
func FprintError(w io.Writer, line string) {
	fmt.Fprintln(w, ErrorStyle(RendererFor(w)).Render(line))
}
