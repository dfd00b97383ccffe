package gpu

import "fmt"

// Metric identifies one displayed measurement of a device.
type Metric int

// Metrics in display order.
const (
	MetricTemperature Metric = iota
	MetricPower
	MetricMemory
	MetricUtilization
	MetricFan
	MetricGraphicsClock
	MetricMemoryClock
)

// AllMetrics lists every metric in display order.
var AllMetrics = []Metric{
	MetricTemperature,
	MetricPower,
	MetricMemory,
	MetricUtilization,
	MetricFan,
	MetricGraphicsClock,
	MetricMemoryClock,
}

var metricInfo = map[Metric]struct {
	key   string
	label string
	unit  string
}{
	MetricTemperature:   {"temp", "Temp", "C"},
	MetricPower:         {"power", "Power", "W"},
	MetricMemory:        {"memory", "VRAM", "B"},
	MetricUtilization:   {"util", "GPU%", "%"},
	MetricFan:           {"fan", "Fan", "%"},
	MetricGraphicsClock: {"sclk", "SCLK", "MHz"},
	MetricMemoryClock:   {"mclk", "MCLK", "MHz"},
}

// String returns the stable machine key ("temp", "util", ...).
func (m Metric) String() string {
	if info, ok := metricInfo[m]; ok {
		return info.key
	}
	return "unknown"
}

// Label returns the column heading.
func (m Metric) Label() string {
	if info, ok := metricInfo[m]; ok {
		return info.label
	}
	return "?"
}

// Unit returns the unit readings of this metric are normalized to.
func (m Metric) Unit() string {
	return metricInfo[m].unit
}

// ParseMetric resolves a machine key back to a Metric.
func ParseMetric(key string) (Metric, bool) {
	for _, m := range AllMetrics {
		if m.String() == key {
			return m, true
		}
	}
	return 0, false
}

// MarshalText lets metrics encode as their keys in JSON and YAML.
func (m Metric) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (m *Metric) UnmarshalText(b []byte) error {
	parsed, ok := ParseMetric(string(b))
	if !ok {
		return fmt.Errorf("unknown metric %q", b)
	}
	*m = parsed
	return nil
}
