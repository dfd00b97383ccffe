package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/prettysmi/internal/classify"
	"github.com/rileyhilliard/prettysmi/internal/ui"
)

// terminalStyles are bound to one renderer so the color profile follows the
// destination writer rather than the process-wide default.
type terminalStyles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	heading  lipgloss.Style
	box      lipgloss.Style
	warning  lipgloss.Style
	critical lipgloss.Style
	unknown  lipgloss.Style
	label    lipgloss.Style
}

func newTerminalStyles(r *lipgloss.Renderer) terminalStyles {
	return terminalStyles{
		title:    r.NewStyle().Foreground(ui.ColorInfo).Bold(true),
		muted:    r.NewStyle().Foreground(ui.ColorMuted),
		heading:  r.NewStyle().Bold(true),
		box:      r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ui.ColorInfo).Padding(0, 1),
		warning:  r.NewStyle().Foreground(ui.ColorWarning).Bold(true),
		critical: r.NewStyle().Foreground(ui.ColorError).Bold(true),
		unknown:  r.NewStyle().Faint(true),
		label:    r.NewStyle().Faint(true),
	}
}

func (s terminalStyles) tier(t classify.Tier, text string) string {
	switch t {
	case classify.TierWarning:
		return s.warning.Render(text)
	case classify.TierCritical:
		return s.critical.Render(text)
	case classify.TierUnknown:
		return s.unknown.Render(text)
	default:
		return text
	}
}

func renderTerminal(w io.Writer, lr *lipgloss.Renderer, r Report) error {
	st := newTerminalStyles(lr)

	var out strings.Builder

	out.WriteString(st.title.Render(title(r.Header)))
	if parts := headerParts(r.Header); len(parts) > 0 {
		out.WriteString("  ")
		out.WriteString(st.muted.Render(strings.Join(parts, " · ")))
	}
	out.WriteString("\n")

	headings, rows := columns(BuildLines(r.Devices))
	widths := columnWidths(headings, rows, func(c Cell) string { return c.Text })
	last := len(headings) - 1
	nameCol := headings[last] == "Name"

	var body strings.Builder
	for i, h := range headings {
		if i > 0 {
			body.WriteString("  ")
		}
		body.WriteString(st.heading.Render(pad(h, widths[i], nameCol && i == last)))
	}

	for _, row := range rows {
		body.WriteString("\n")
		for i, c := range row {
			if i > 0 {
				body.WriteString("  ")
			}
			body.WriteString(pad(st.tier(c.Tier, c.Text), widths[i], nameCol && i == last))
		}
	}

	out.WriteString(st.box.Render(body.String()))
	out.WriteString("\n")

	parts := summaryParts(r.Summary)
	footer := make([]string, 0, len(parts))
	for _, p := range parts {
		footer = append(footer, st.label.Render(p.Label+":")+" "+st.tier(p.Tier, p.Text))
	}
	out.WriteString(" ")
	out.WriteString(strings.Join(footer, st.muted.Render("  │  ")))
	out.WriteString("\n")

	_, err := io.WriteString(w, out.String())
	return err
}
