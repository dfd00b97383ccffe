// Package render turns classified devices into output: an ANSI table for
// terminals, a plain table for pipes, and JSON, YAML or Prometheus text
// for tools.
//
// Rendering only reads the classification it is given. Every format is
// produced in full before anything reaches the writer, so a failed render
// leaves the writer untouched.
package render

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/prettysmi/internal/classify"
	"github.com/rileyhilliard/prettysmi/internal/errors"
)

// Header carries the facts shown above the device table. Empty fields are
// left out.
type Header struct {
	Title     string
	Product   string // first GPU's name and target, e.g. "Radeon RX 7900 XTX (gfx1100)"
	Driver    string
	Host      string
	Kernel    string
	Stack     string // e.g. "ROCm 6.1.2"
	Source    string // command line or input path
	Timestamp time.Time
}

// Report is everything one render pass shows.
type Report struct {
	Header  Header
	Devices []classify.Device
	Summary classify.Summary
}

// Options controls a render pass.
type Options struct {
	Format Format

	// Renderer styles terminal output. When nil one is created for the
	// destination writer, which picks the color profile from it.
	Renderer *lipgloss.Renderer
}

// Render writes r to w in the requested format.
func Render(w io.Writer, r Report, opts Options) error {
	var buf bytes.Buffer
	var err error

	switch opts.Format {
	case FormatTerminal, "":
		lr := opts.Renderer
		if lr == nil {
			lr = lipgloss.NewRenderer(w)
		}
		err = renderTerminal(&buf, lr, r)
	case FormatPlain:
		err = renderPlain(&buf, r)
	case FormatJSON:
		err = renderJSON(&buf, r)
	case FormatYAML:
		err = renderYAML(&buf, r)
	case FormatProm:
		err = renderProm(&buf, r)
	default:
		err = fmt.Errorf("unsupported format %q", opts.Format)
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Couldn't render the report",
			"Try another --output format.")
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender, "Couldn't write the report", "")
	}
	return nil
}
