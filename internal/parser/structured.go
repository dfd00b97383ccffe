package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var cardKeyRe = regexp.MustCompile(`(?i)^card(\d+)$`)

// parseJSON reads rocm-smi --json output: an object keyed by "cardN" whose
// values map labels to (usually string) readings, plus a "system" object
// holding the driver version. Labels are visited in sorted order so repeated
// fields resolve the same way every run.
func (p *Parser) parseJSON(text string) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return err
	}

	keys := make([]string, 0, len(top))
	for k := range top {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		m := cardKeyRe.FindStringSubmatch(key)
		if m == nil && key != "system" {
			p.log.Debug("json: skipped key %q", key)
			continue
		}

		var fields map[string]interface{}
		if err := json.Unmarshal(top[key], &fields); err != nil {
			p.log.Debug("json: %s is not an object: %v", key, err)
			continue
		}

		if m == nil {
			for label, v := range fields {
				if driverLabels[normalizeLabel(label)] {
					p.setDriver(jsonScalar(v))
				}
			}
			continue
		}

		idx, err := strconv.Atoi(m[1])
		if err != nil {
			p.log.Debug("json: %s index is out of range, skipped", key)
			continue
		}
		d := p.indexed(idx)

		labels := make([]string, 0, len(fields))
		for label := range fields {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		for _, label := range labels {
			p.applyLabelValue(d, label, jsonScalar(fields[label]), 0)
		}
	}

	return nil
}

func jsonScalar(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// isCSVHeader reports whether line is the header of nvidia-smi
// --query-gpu=... --format=csv output.
func isCSVHeader(line string) bool {
	if strings.Contains(line, ":") || !strings.Contains(line, ",") {
		return false
	}
	for _, col := range strings.Split(line, ",") {
		label, unit := splitLabelUnit(normalizeLabel(col))
		if classifyLabel(label, unit) != fieldNone {
			return true
		}
	}
	return false
}

// parseCSV reads a header row followed by one row per device. Rows without
// an "index" column become unindexed devices in row order.
func (p *Parser) parseCSV(text string) {
	lines := strings.Split(text, "\n")
	header := strings.Split(lines[0], ",")

	for n, line := range lines[1:] {
		lineNo := n + 2
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cols := strings.Split(line, ",")
		if len(cols) != len(header) {
			p.log.Debug("line %d: expected %d columns, got %d", lineNo, len(header), len(cols))
			continue
		}

		var d *device
		for i, h := range header {
			if normalizeLabel(h) != "index" {
				continue
			}
			if idx, err := strconv.Atoi(strings.TrimSpace(cols[i])); err == nil && idx >= 0 {
				d = p.indexed(idx)
			}
		}
		if d == nil {
			d = p.unindexed()
		}

		for i, h := range header {
			p.applyLabelValue(d, h, cols[i], lineNo)
		}
	}
}
