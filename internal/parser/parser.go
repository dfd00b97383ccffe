// Package parser turns the raw report of a GPU diagnostics tool into
// normalized per-device metrics.
//
// Parsing is tolerant: unrecognized lines are skipped and recognized labels
// with unreadable values leave the field unknown. The only hard failure is a
// report with no recognizable device at all.
//
// These input shapes are understood:
//
//	Device  Node  IDs  Temp  Power ... PwrCap  VRAM%  GPU%   rocm-smi concise table
//	GPU[0]		: Temperature (Sensor edge) (C): 45.0     rocm-smi text
//	GPU 00000000:01:00.0 / GPU 0 + "label : value" blocks nvidia-smi -q and similar
//	index, name, temperature.gpu, ...                    nvidia-smi --format=csv
//	{"card0": {"GPU use (%)": "3", ...}}                  rocm-smi --json
//
// A driver version printed anywhere in the report ("Driver version: 6.7.0")
// is kept for the whole report.
package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rileyhilliard/prettysmi/internal/errors"
	"github.com/rileyhilliard/prettysmi/internal/gpu"
	"github.com/rileyhilliard/prettysmi/internal/logger"
)

var (
	// rocmLineRe matches self-addressed rocm-smi lines: "GPU[1]  : GPU use (%): 3".
	rocmLineRe = regexp.MustCompile(`(?i)^gpu\[(\d+)\]\s*:\s*(.*)$`)

	// pciHeaderRe matches nvidia-smi -q block headers: "GPU 00000000:01:00.0".
	pciHeaderRe = regexp.MustCompile(`(?i)^gpu\s+[0-9a-f]{4,8}:[0-9a-f]{2}:[0-9a-f]{2}\.[0-9a-f]$`)

	// headerRe matches indexed block headers: "GPU 0", "GPU[1]", "Device #2",
	// "card3", "GPU 0: NVIDIA A100".
	headerRe = regexp.MustCompile(`(?i)^(?:gpu|device|card)\s*[#\[]?\s*(\d+)\s*\]?\s*(?:[:\-]\s*(.*))?$`)

	uuidSuffixRe = regexp.MustCompile(`(?i)\s*\(uuid:.*\)\s*$`)
)

// device accumulates one GPU while the report is being read.
type device struct {
	explicit bool // index came from the report
	metrics  gpu.DeviceMetrics
}

// Parser converts raw reports into device metrics.
type Parser struct {
	log logger.Logger

	devices []*device       // first-appearance order
	byIndex map[int]*device // explicit indices only
	driver  string
}

// New creates a parser that reports skipped input to log.
func New(log logger.Logger) *Parser {
	if log == nil {
		log = logger.Noop()
	}
	return &Parser{log: log}
}

// Parse parses raw without logging.
func Parse(raw gpu.RawReport) ([]gpu.DeviceMetrics, error) {
	return New(nil).Parse(raw)
}

// Parse returns the devices in raw ordered by index. It fails with a PARSE
// error only when no device is recognized.
func (p *Parser) Parse(raw gpu.RawReport) ([]gpu.DeviceMetrics, error) {
	report, err := p.ParseReport(raw)
	if err != nil {
		return nil, err
	}
	return report.Devices, nil
}

// ParseReport is Parse plus the report-wide facts.
func (p *Parser) ParseReport(raw gpu.RawReport) (*gpu.Report, error) {
	p.devices = nil
	p.byIndex = make(map[int]*device)
	p.driver = ""

	text := string(raw.Stdout)
	trimmed := strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(trimmed, "{"):
		if err := p.parseJSON(trimmed); err != nil {
			p.log.Debug("report looks like JSON but did not decode: %v", err)
		}
	case isCSVHeader(firstLine(trimmed)):
		p.parseCSV(trimmed)
	default:
		p.parseText(text)
	}

	if len(p.devices) == 0 {
		source := raw.Source
		if source == "" {
			source = "the report"
		}
		return nil, errors.New(errors.ErrParse,
			"No GPU data found in output of "+source,
			"Run the tool directly to check it sees your GPUs, or pass --debug to see skipped lines.")
	}

	return &gpu.Report{Driver: p.driver, Devices: p.finish()}, nil
}

func (p *Parser) parseText(text string) {
	var (
		current *device
		table   []column // set while inside a concise table
	)

	for n, raw := range strings.Split(text, "\n") {
		lineNo := n + 1
		raw = strings.TrimRight(raw, "\r")
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if cols := conciseHeader(raw); cols != nil {
			table, current = cols, nil
			continue
		}
		if table != nil {
			switch {
			case strings.HasPrefix(line, "("), isRule(line):
				continue
			case isDigits(strings.Fields(line)[0]):
				p.parseConciseRow(table, raw, lineNo)
				continue
			}
			table = nil
		}

		if m := rocmLineRe.FindStringSubmatch(line); m != nil {
			if idx, ok := p.parseIndex(m[1], lineNo); ok {
				p.applyPair(p.indexed(idx), m[2], lineNo)
			}
			continue
		}

		if pciHeaderRe.MatchString(line) {
			current = p.unindexed()
			continue
		}

		if m := headerRe.FindStringSubmatch(line); m != nil {
			idx, ok := p.parseIndex(m[1], lineNo)
			if !ok {
				current = nil
				continue
			}
			current = p.indexed(idx)
			if name := strings.TrimSpace(uuidSuffixRe.ReplaceAllString(m[2], "")); name != "" {
				setField(&current.metrics, fieldName, name, "")
			}
			continue
		}

		if label, value, ok := strings.Cut(line, ":"); ok && driverLabels[normalizeLabel(label)] {
			p.setDriver(value)
			continue
		}

		if current != nil && strings.Contains(line, ":") {
			p.applyPair(current, line, lineNo)
			continue
		}

		p.log.Debug("line %d: skipped %q", lineNo, line)
	}
}

// parseIndex reads a device index. Indices that don't fit an int are
// logged and rejected rather than folded into GPU 0.
func (p *Parser) parseIndex(s string, lineNo int) (int, bool) {
	idx, err := strconv.Atoi(s)
	if err != nil || idx < 0 {
		p.log.Debug("line %d: device index %q is out of range, skipped", lineNo, s)
		return 0, false
	}
	return idx, true
}

func (p *Parser) setDriver(value string) {
	value = strings.TrimSpace(value)
	if p.driver == "" && !unavailable[strings.ToLower(value)] {
		p.driver = value
	}
}

// applyPair handles one "label : value" pair for d.
func (p *Parser) applyPair(d *device, pair string, lineNo int) {
	label, value, ok := strings.Cut(pair, ":")
	if !ok {
		p.log.Debug("line %d: no label in %q", lineNo, pair)
		return
	}
	p.applyLabelValue(d, label, value, lineNo)
}

func (p *Parser) applyLabelValue(d *device, rawLabel, value string, lineNo int) {
	label, labelUnit := splitLabelUnit(normalizeLabel(rawLabel))
	if label == "" {
		return
	}
	if driverLabels[label] {
		p.setDriver(value)
		return
	}

	unit := labelUnit
	if q, ok := parseQuantity(value); ok && q.unit != "" {
		unit = q.unit
	}

	f := classifyLabel(label, unit)
	if f == fieldNone || f == fieldIndex {
		p.log.Debug("line %d: unrecognized label %q", lineNo, label)
		return
	}

	if !setField(&d.metrics, f, value, labelUnit) {
		p.log.Debug("line %d: %s value %q is not readable, leaving it unknown", lineNo, f, strings.TrimSpace(value))
	}
}

func (p *Parser) indexed(idx int) *device {
	if d, ok := p.byIndex[idx]; ok {
		return d
	}
	d := &device{explicit: true, metrics: gpu.DeviceMetrics{Index: idx}}
	p.byIndex[idx] = d
	p.devices = append(p.devices, d)
	return d
}

func (p *Parser) unindexed() *device {
	d := &device{}
	p.devices = append(p.devices, d)
	return d
}

// finish assigns indices to unindexed devices (smallest free index, in
// appearance order), enforces used <= total, and sorts by index.
func (p *Parser) finish() []gpu.DeviceMetrics {
	next := 0
	for _, d := range p.devices {
		if d.explicit {
			continue
		}
		for {
			if _, taken := p.byIndex[next]; !taken {
				break
			}
			next++
		}
		d.metrics.Index = next
		p.byIndex[next] = d
	}

	out := make([]gpu.DeviceMetrics, 0, len(p.devices))
	for _, d := range p.devices {
		m := d.metrics
		used, uok := m.MemoryUsed.Get()
		total, tok := m.MemoryTotal.Get()
		if uok && tok && used > total {
			p.log.Warn("GPU %d reports %v bytes used of %v total, ignoring used", m.Index, used, total)
			m.MemoryUsed = gpu.Unknown()
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Index < out[j].Index
	})

	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
