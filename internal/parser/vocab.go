package parser

import (
	"strings"

	"github.com/rileyhilliard/prettysmi/internal/gpu"
)

// field is a slot in DeviceMetrics the vocabulary can fill.
type field int

const (
	fieldNone field = iota
	fieldIndex
	fieldName
	fieldTarget
	fieldTemperature
	fieldUtilization
	fieldMemoryUsed
	fieldMemoryTotal
	fieldMemoryUsage
	fieldPowerDraw
	fieldPowerCap
	fieldFan
	fieldGraphicsClock
	fieldMemoryClock
)

func (f field) String() string {
	switch f {
	case fieldIndex:
		return "index"
	case fieldName:
		return "name"
	case fieldTarget:
		return "target"
	case fieldTemperature:
		return "temperature"
	case fieldUtilization:
		return "utilization"
	case fieldMemoryUsed:
		return "memory used"
	case fieldMemoryTotal:
		return "memory total"
	case fieldMemoryUsage:
		return "memory usage"
	case fieldPowerDraw:
		return "power draw"
	case fieldPowerCap:
		return "power cap"
	case fieldFan:
		return "fan"
	case fieldGraphicsClock:
		return "graphics clock"
	case fieldMemoryClock:
		return "memory clock"
	}
	return "none"
}

var nameLabels = map[string]bool{
	"name":           true,
	"product name":   true,
	"card series":    true,
	"device name":    true,
	"marketing name": true,
}

var targetLabels = map[string]bool{
	"gfx version":             true,
	"gfx target":              true,
	"target graphics version": true,
}

// driverLabels name the report-wide driver version: rocm-smi --showdriver
// ("Driver version: 6.7.0") and nvidia-smi -q ("Driver Version : 550.54.15").
var driverLabels = map[string]bool{
	"driver version": true,
}

// classifyLabel maps a normalized label (and the unit found on the label or
// its value) to a field. Rules are tried in order; the first match wins.
// Covers rocm-smi ("GPU use (%)", "VRAM Total Used Memory (B)"), nvidia-smi -q
// ("GPU Current Temp", "Used", "Graphics") and nvidia-smi CSV headers
// ("utilization.gpu", "memory.used").
func classifyLabel(label, unit string) field {
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(label, s) {
				return true
			}
		}
		return false
	}
	isMem := has("mem", "vram")

	switch {
	case label == "index":
		return fieldIndex
	case nameLabels[label]:
		return fieldName
	case targetLabels[label]:
		return fieldTarget

	case isFrequency(unit) && has("sclk", "graphics", "gfx", "core", "clocks.gr"):
		return fieldGraphicsClock
	case isFrequency(unit) && has("mclk", "mem"):
		return fieldMemoryClock
	case isFrequency(unit):
		return fieldNone

	case has("temp") && !has("shutdown", "slowdown", "limit", "target", "max", "min", "mem", "hbm"):
		return fieldTemperature

	case label == "gpu" || label == "gpu%" || has("gpu use", "gpu util") ||
		(has("utilization") && !isMem && !has("encoder", "decoder", "jpeg", "ofa")):
		return fieldUtilization

	case label == "vram%" || has("(vram%)") || (unit == "%" && has("memory allocated", "memory use")):
		return fieldMemoryUsage
	case (isMem || label == "used") && has("used") && unit != "%":
		return fieldMemoryUsed
	case (isMem || label == "total") && has("total") && !has("used") && unit != "%":
		return fieldMemoryTotal

	case has("power") && has("max", "cap", "limit") && !has("min"):
		return fieldPowerCap
	case has("power") && !has("management", "state", "smoothing", "profile", "mode", "readings", "min", "default"):
		return fieldPowerDraw

	case has("fan") && !has("rpm"):
		return fieldFan
	}

	return fieldNone
}

// setField converts raw into the field's normalized unit and stores it in d.
// The first known reading wins; a later known reading may fill a field that
// is still unknown. It reports whether raw held a usable reading.
func setField(d *gpu.DeviceMetrics, f field, raw string, labelUnit string) bool {
	switch f {
	case fieldName:
		return setText(&d.Name, raw)
	case fieldTarget:
		return setText(&d.Target, raw)
	}

	q, ok := parseQuantity(raw)
	if !ok {
		return false
	}
	if q.unit == "" {
		q.unit = labelUnit
	}

	var (
		slot *gpu.Value
		v    float64
	)
	switch f {
	case fieldTemperature:
		slot = &d.Temperature
		v, ok = toCelsius(q)
	case fieldUtilization:
		slot = &d.Utilization
		v, ok = toPercent(q)
	case fieldMemoryUsed:
		slot = &d.MemoryUsed
		v, ok = toBytes(q)
	case fieldMemoryTotal:
		slot = &d.MemoryTotal
		v, ok = toBytes(q)
	case fieldMemoryUsage:
		slot = &d.MemoryUsage
		v, ok = toPercent(q)
	case fieldPowerDraw:
		slot = &d.PowerDraw
		v, ok = toWatts(q)
	case fieldPowerCap:
		slot = &d.PowerCap
		v, ok = toWatts(q)
	case fieldFan:
		slot = &d.FanSpeed
		v, ok = toPercent(q)
	case fieldGraphicsClock:
		slot = &d.GraphicsClock
		v, ok = toMHz(q)
	case fieldMemoryClock:
		slot = &d.MemoryClock
		v, ok = toMHz(q)
	default:
		return false
	}

	if !ok {
		return false
	}
	if !slot.IsKnown() {
		*slot = gpu.Known(v)
	}
	return true
}

// setText fills an empty text slot. Placeholders like "N/A" don't count.
func setText(slot *string, raw string) bool {
	text := strings.TrimSpace(raw)
	if unavailable[strings.ToLower(text)] {
		return false
	}
	if *slot == "" {
		*slot = text
	}
	return true
}
