package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// quantity is a number with its (lowercased, possibly empty) unit.
type quantity struct {
	value float64
	unit  string
}

// numberRe finds numbers with an optional unit suffix: "92C", "45 C",
// "2048 MiB", "(500Mhz)", "97%".
var numberRe = regexp.MustCompile(`([-+]?\d+(?:\.\d+)?)\s*(°\s*[cf]|[a-z%]+)?`)

// labelUnitRe matches a trailing "(unit)" or "[unit]" on a label.
var labelUnitRe = regexp.MustCompile(`[\(\[]\s*([^\)\]]*?)\s*[\)\]]\s*$`)

var unavailable = map[string]bool{
	"":              true,
	"n/a":           true,
	"[n/a]":         true,
	"na":            true,
	"-":             true,
	"unknown":       true,
	"not supported": true,
	"unsupported":   true,
}

// knownUnits lists units a reading may carry. Anything else attached to a
// number (RPM, "P0", "x16") means the match is not a reading we understand.
var knownUnits = map[string]bool{
	"": true, "c": true, "°c": true, "f": true, "°f": true, "%": true,
	"w": true, "mw": true, "mhz": true, "ghz": true,
	"b": true, "kb": true, "kib": true, "mb": true, "mib": true,
	"gb": true, "gib": true, "tb": true, "tib": true,
}

// parseQuantity extracts the reading from a value string. With several
// numbers present the last one carrying a known unit wins ("0: (500Mhz)"
// reads as 500 MHz); several bare numbers are ambiguous and rejected.
func parseQuantity(s string) (quantity, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if unavailable[s] {
		return quantity{}, false
	}

	var withUnit, bare []quantity
	for _, loc := range numberRe.FindAllStringSubmatchIndex(s, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && isWordByte(s[start-1]) {
			continue
		}
		if end < len(s) && isWordByte(s[end]) {
			continue
		}

		unit := ""
		if loc[4] >= 0 {
			unit = strings.ReplaceAll(s[loc[4]:loc[5]], " ", "")
		}
		if !knownUnits[unit] {
			continue
		}

		v, err := strconv.ParseFloat(s[loc[2]:loc[3]], 64)
		if err != nil {
			continue
		}

		if unit == "" {
			bare = append(bare, quantity{value: v})
		} else {
			withUnit = append(withUnit, quantity{value: v, unit: unit})
		}
	}

	switch {
	case len(withUnit) > 0:
		return withUnit[len(withUnit)-1], true
	case len(bare) == 1:
		return bare[0], true
	default:
		return quantity{}, false
	}
}

func isWordByte(b byte) bool {
	return b == '.' || b < unicode.MaxASCII && (unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b)))
}

// splitLabelUnit separates "VRAM Total Memory (B)" into the label and "b",
// and "memory.used [MiB]" into "memory.used" and "mib". Parentheticals that
// are not units ("(Sensor edge)") stay part of the label.
func splitLabelUnit(label string) (string, string) {
	m := labelUnitRe.FindStringSubmatchIndex(label)
	if m == nil {
		return label, ""
	}
	unit := strings.ToLower(strings.ReplaceAll(label[m[2]:m[3]], " ", ""))
	if unit == "" || !knownUnits[unit] {
		return label, ""
	}
	return strings.TrimSpace(label[:m[0]]), unit
}

// normalizeLabel lowercases, collapses whitespace and drops a trailing colon.
func normalizeLabel(label string) string {
	label = strings.TrimRight(strings.TrimSpace(label), ":")
	return strings.Join(strings.Fields(strings.ToLower(label)), " ")
}

var byteMultipliers = map[string]float64{
	"":    1,
	"b":   1,
	"kb":  1e3,
	"mb":  1e6,
	"gb":  1e9,
	"tb":  1e12,
	"kib": 1 << 10,
	"mib": 1 << 20,
	"gib": 1 << 30,
	"tib": 1 << 40,
}

func toBytes(q quantity) (float64, bool) {
	m, ok := byteMultipliers[q.unit]
	if !ok || q.value < 0 {
		return 0, false
	}
	return q.value * m, true
}

func toCelsius(q quantity) (float64, bool) {
	switch q.unit {
	case "", "c", "°c":
		return q.value, q.value > -273.15
	case "f", "°f":
		c := (q.value - 32) * 5 / 9
		return c, c > -273.15
	}
	return 0, false
}

func toWatts(q quantity) (float64, bool) {
	switch q.unit {
	case "", "w":
		return q.value, q.value >= 0
	case "mw":
		return q.value / 1000, q.value >= 0
	}
	return 0, false
}

func toMHz(q quantity) (float64, bool) {
	switch q.unit {
	case "", "mhz":
		return q.value, q.value >= 0
	case "ghz":
		return q.value * 1000, q.value >= 0
	}
	return 0, false
}

func toPercent(q quantity) (float64, bool) {
	if q.unit != "" && q.unit != "%" {
		return 0, false
	}
	return q.value, q.value >= 0 && q.value <= 100
}

func isFrequency(unit string) bool {
	return unit == "mhz" || unit == "ghz"
}
