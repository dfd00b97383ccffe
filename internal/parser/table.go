package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// conciseColumns maps the headings of rocm-smi's default "Concise Info"
// table to fields. ROCm 5 heads it "GPU ... AvgPwr", ROCm 6 "Device ... Power".
// Headings not listed (Node, IDs, Partitions, Perf) are ignored.
var conciseColumns = map[string]field{
	"gpu":    fieldIndex,
	"device": fieldIndex,
	"temp":   fieldTemperature,
	"power":  fieldPowerDraw,
	"avgpwr": fieldPowerDraw,
	"sclk":   fieldGraphicsClock,
	"mclk":   fieldMemoryClock,
	"fan":    fieldFan,
	"pwrcap": fieldPowerCap,
	"vram%":  fieldMemoryUsage,
	"gpu%":   fieldUtilization,
}

var tokenRe = regexp.MustCompile(`\S+`)

// column is one heading of a concise table. Cells belong to the last column
// starting at or before them.
type column struct {
	heading string
	start   int // rune offset in the heading row
	field   field
}

type token struct {
	text  string
	start int // rune offset
}

func tokenize(line string) []token {
	locs := tokenRe.FindAllStringIndex(line, -1)
	out := make([]token, 0, len(locs))
	for _, loc := range locs {
		out = append(out, token{
			text:  line[loc[0]:loc[1]],
			start: utf8.RuneCountInString(line[:loc[0]]),
		})
	}
	return out
}

// conciseHeader returns the columns of a concise table heading row, or nil
// when line isn't one. The row must start with the device column and name a
// temperature column plus at least one of PwrCap, VRAM% or GPU%.
func conciseHeader(line string) []column {
	toks := tokenize(line)
	if len(toks) < 3 {
		return nil
	}

	cols := make([]column, 0, len(toks))
	for _, t := range toks {
		// "Temp (DieEdge)" qualifies the heading before it.
		if strings.HasPrefix(t.text, "(") && len(cols) > 0 {
			continue
		}
		h := strings.ToLower(t.text)
		cols = append(cols, column{heading: h, start: t.start, field: conciseColumns[h]})
	}

	if cols[0].field != fieldIndex {
		return nil
	}
	var temp, ratio bool
	for _, c := range cols[1:] {
		switch c.field {
		case fieldTemperature:
			temp = true
		case fieldPowerCap, fieldMemoryUsage, fieldUtilization:
			ratio = true
		}
	}
	if !temp || !ratio {
		return nil
	}
	return cols
}

// parseConciseRow fills one device from a table row. A cell may span several
// tokens ("0x744c,   52677" under IDs); they are joined before parsing.
func (p *Parser) parseConciseRow(cols []column, line string, lineNo int) {
	cells := make([][]string, len(cols))
	for _, t := range tokenize(line) {
		i := 0
		for j, c := range cols {
			if c.start <= t.start {
				i = j
			}
		}
		cells[i] = append(cells[i], t.text)
	}

	if len(cells[0]) == 0 {
		p.log.Debug("line %d: table row has no device index", lineNo)
		return
	}
	idx, ok := p.parseIndex(cells[0][0], lineNo)
	if !ok {
		return
	}
	d := p.indexed(idx)

	for i, c := range cols {
		if c.field == fieldNone || c.field == fieldIndex || len(cells[i]) == 0 {
			continue
		}
		value := strings.Join(cells[i], " ")
		if !setField(&d.metrics, c.field, value, "") {
			p.log.Debug("line %d: %s value %q is not readable, leaving it unknown", lineNo, c.field, value)
		}
	}
}

// isRule reports whether line is a separator like "=====" or "-----".
func isRule(line string) bool {
	return strings.Trim(line, "=-") == ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
