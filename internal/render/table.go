package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/prettysmi/internal/classify"
	"github.com/rileyhilliard/prettysmi/internal/gpu"
	"github.com/rileyhilliard/prettysmi/internal/util"
)

// Placeholder is shown for unknown readings.
const Placeholder = "—"

// Cell is one formatted reading.
type Cell struct {
	Label string
	Text  string
	Tier  classify.Tier
}

// Line is one device row, built fresh for each render pass.
type Line struct {
	Index int
	Name  string
	Cells []Cell // gpu.AllMetrics order
}

// BuildLines formats every device of the report.
func BuildLines(devices []classify.Device) []Line {
	lines := make([]Line, 0, len(devices))
	for _, d := range devices {
		line := Line{Index: d.Index, Name: d.Name, Cells: make([]Cell, 0, len(d.Metrics))}
		for _, cm := range d.Metrics {
			line.Cells = append(line.Cells, Cell{
				Label: cm.Metric.Label(),
				Text:  FormatMetric(cm),
				Tier:  cm.Tier,
			})
		}
		lines = append(lines, line)
	}
	return lines
}

// FormatMetric renders one reading in display units.
func FormatMetric(cm classify.ClassifiedMetric) string {
	v, ok := cm.Value.Get()
	if !ok {
		// Some tools give VRAM only as a share of the total.
		if pct, known := cm.Percent.Get(); known && cm.Metric == gpu.MetricMemory {
			return formatNumber(pct) + "%"
		}
		return Placeholder
	}

	switch cm.Metric {
	case gpu.MetricTemperature:
		return formatNumber(v) + "°C"
	case gpu.MetricPower:
		return withLimit(formatNumber(v)+"W", cm.Limit, func(x float64) string { return formatNumber(x) + "W" })
	case gpu.MetricMemory:
		return withLimit(formatBytes(v), cm.Limit, formatBytes)
	case gpu.MetricUtilization, gpu.MetricFan:
		return formatNumber(v) + "%"
	case gpu.MetricGraphicsClock, gpu.MetricMemoryClock:
		return formatNumber(v) + "MHz"
	default:
		return formatNumber(v)
	}
}

func withLimit(text string, limit gpu.Value, format func(float64) string) string {
	if l, ok := limit.Get(); ok {
		return text + " / " + format(l)
	}
	return text
}

// formatNumber rounds to whole units.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// formatBytes falls back to a plain number outside the uint64 range.
func formatBytes(v float64) string {
	if v < 0 || v >= math.MaxUint64 || math.IsNaN(v) {
		return formatNumber(v) + " B"
	}
	return humanize.IBytes(uint64(v))
}

// columns returns the headings and body cells of lines as plain strings.
// The GPU index comes first and the product name last when any device has one.
func columns(lines []Line) (headings []string, rows [][]Cell) {
	withName := false
	for _, l := range lines {
		if l.Name != "" {
			withName = true
			break
		}
	}

	headings = []string{"GPU"}
	for _, m := range gpu.AllMetrics {
		headings = append(headings, m.Label())
	}
	if withName {
		headings = append(headings, "Name")
	}

	for _, l := range lines {
		row := make([]Cell, 0, len(headings))
		row = append(row, Cell{Label: "GPU", Text: strconv.Itoa(l.Index), Tier: classify.TierNormal})
		row = append(row, l.Cells...)
		if withName {
			name := l.Name
			if name == "" {
				name = Placeholder
			}
			row = append(row, Cell{Label: "Name", Text: name, Tier: classify.TierNormal})
		}
		rows = append(rows, row)
	}
	return headings, rows
}

// columnWidths returns the widest heading or cell text of each column.
// decorate lets a format account for annotations it appends to cells.
func columnWidths(headings []string, rows [][]Cell, decorate func(Cell) string) []int {
	widths := make([]int, len(headings))
	for i, h := range headings {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if w := lipgloss.Width(decorate(c)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// pad aligns s within width. Text columns (the last Name column) are left
// aligned, readings are right aligned.
func pad(s string, width int, left bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if left {
		return s + strings.Repeat(" ", gap)
	}
	return strings.Repeat(" ", gap) + s
}

// summaryParts formats the totals footer.
func summaryParts(s classify.Summary) []Cell {
	mem := Placeholder
	if used, ok := s.MemoryUsed.Get(); ok {
		mem = withLimit(formatBytes(used), s.MemoryTotal, formatBytes)
	}
	power := Placeholder
	if draw, ok := s.PowerDraw.Get(); ok {
		power = withLimit(formatNumber(draw)+"W", s.PowerCap, func(x float64) string { return formatNumber(x) + "W" })
	}
	temp := Placeholder
	if t, ok := s.AvgTemperature.Get(); ok {
		temp = formatNumber(t) + "°C"
	}

	return []Cell{
		{Label: "Total", Text: fmt.Sprintf("%d %s", s.Devices, util.Pluralize(s.Devices, "GPU", "GPUs")), Tier: classify.TierNormal},
		{Label: "VRAM", Text: mem, Tier: s.MemoryTier},
		{Label: "Power", Text: power, Tier: s.PowerTier},
		{Label: "Avg Temp", Text: temp, Tier: s.TemperatureTier},
	}
}

// headerParts returns the non-empty header facts after the title.
func headerParts(h Header) []string {
	var parts []string
	if h.Product != "" {
		parts = append(parts, h.Product)
	}
	if h.Driver != "" {
		parts = append(parts, "driver "+h.Driver)
	}
	if h.Host != "" {
		parts = append(parts, h.Host)
	}
	if h.Kernel != "" {
		parts = append(parts, "kernel "+h.Kernel)
	}
	if h.Stack != "" {
		parts = append(parts, h.Stack)
	}
	if !h.Timestamp.IsZero() {
		parts = append(parts, h.Timestamp.Format("Mon Jan 02 15:04:05 2006"))
	}
	return parts
}

func title(h Header) string {
	if h.Title == "" {
		return "prettysmi"
	}
	return h.Title
}
