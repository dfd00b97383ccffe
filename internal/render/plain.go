package render

import (
	"io"
	"strings"

	"github.com/rileyhilliard/prettysmi/internal/classify"
)

// annotate marks non-normal readings for output without color.
func annotate(c Cell) string {
	switch c.Tier {
	case classify.TierWarning:
		return c.Text + " [warn]"
	case classify.TierCritical:
		return c.Text + " [crit]"
	default:
		return c.Text
	}
}

func renderPlain(w io.Writer, r Report) error {
	var out strings.Builder

	out.WriteString(title(r.Header))
	if parts := headerParts(r.Header); len(parts) > 0 {
		out.WriteString("  ")
		out.WriteString(strings.Join(parts, "  "))
	}
	out.WriteString("\n\n")

	headings, rows := columns(BuildLines(r.Devices))
	widths := columnWidths(headings, rows, annotate)
	last := len(headings) - 1
	nameCol := headings[last] == "Name"

	cells := make([]string, len(headings))
	for i, h := range headings {
		cells[i] = pad(h, widths[i], nameCol && i == last)
	}
	writeRow(&out, cells)

	for _, row := range rows {
		for i, c := range row {
			cells[i] = pad(annotate(c), widths[i], nameCol && i == last)
		}
		writeRow(&out, cells)
	}

	parts := summaryParts(r.Summary)
	footer := make([]string, 0, len(parts))
	for _, p := range parts {
		footer = append(footer, p.Label+": "+annotate(p))
	}
	out.WriteString("\n")
	out.WriteString(strings.Join(footer, "  |  "))
	out.WriteString("\n")

	_, err := io.WriteString(w, out.String())
	return err
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
	b.WriteString("\n")
}
