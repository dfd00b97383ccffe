// Package gpu holds the in-memory model shared by the collector, parser,
// classifier and renderer.
package gpu

import "strconv"

// RawReport is the verbatim output of one diagnostics tool invocation.
type RawReport struct {
	Source   string // command line or input path the report came from
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Value is a metric reading that is either a parsed number or unknown.
// The zero Value is unknown, so an unset field can never pass for a real 0.
type Value struct {
	v     float64
	known bool
}

// Known returns a Value holding v.
func Known(v float64) Value {
	return Value{v: v, known: true}
}

// Unknown returns a Value with no reading.
func Unknown() Value {
	return Value{}
}

// Get returns the reading and whether it is known.
func (v Value) Get() (float64, bool) {
	return v.v, v.known
}

// IsKnown reports whether v holds a reading.
func (v Value) IsKnown() bool {
	return v.known
}

func (v Value) String() string {
	if !v.known {
		return "unknown"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// Ptr returns a pointer to the reading, or nil when unknown.
// Used by the structured encoders where unknown becomes null.
func (v Value) Ptr() *float64 {
	if !v.known {
		return nil
	}
	f := v.v
	return &f
}

// Report is everything parsed from one RawReport.
type Report struct {
	Driver  string // kernel driver version, when the tool printed it
	Devices []DeviceMetrics
}

// DeviceMetrics is one physical GPU from a report.
type DeviceMetrics struct {
	Index         int
	Name          string
	Target        string // shader ISA, e.g. "gfx1100"
	Temperature   Value // °C
	Utilization   Value // percent
	MemoryUsed    Value // bytes
	MemoryTotal   Value // bytes
	MemoryUsage   Value // percent, for tools that report only the ratio
	PowerDraw     Value // watts
	PowerCap      Value // watts
	FanSpeed      Value // percent
	GraphicsClock Value // MHz
	MemoryClock   Value // MHz
}

// MemoryPercent returns used/total as a percentage, falling back to the
// reported MemoryUsage when either byte count is unknown.
func (d DeviceMetrics) MemoryPercent() Value {
	if p := percent(d.MemoryUsed, d.MemoryTotal); p.IsKnown() {
		return p
	}
	return d.MemoryUsage
}

// PowerPercent returns draw/cap as a percentage.
func (d DeviceMetrics) PowerPercent() Value {
	return percent(d.PowerDraw, d.PowerCap)
}

func percent(part, whole Value) Value {
	p, ok := part.Get()
	if !ok {
		return Unknown()
	}
	w, ok := whole.Get()
	if !ok || w <= 0 {
		return Unknown()
	}
	return Known(p / w * 100)
}
