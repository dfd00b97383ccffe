// Package classify maps metric readings to severity tiers using
// per-metric threshold tables.
package classify

import (
	"fmt"

	"github.com/rileyhilliard/prettysmi/internal/errors"
	"github.com/rileyhilliard/prettysmi/internal/gpu"
)

// Thresholds is one three-tier table: readings at or above Crit are
// critical, at or above Warn are warning, anything lower is normal.
type Thresholds struct {
	Warn float64
	Crit float64
}

// Classify returns the tier of v. Boundaries belong to the higher tier.
func (t Thresholds) Classify(v gpu.Value) Tier {
	x, ok := v.Get()
	if !ok {
		return TierUnknown
	}

	switch {
	case x >= t.Crit:
		return TierCritical
	case x >= t.Warn:
		return TierWarning
	default:
		return TierNormal
	}
}

// Validate checks the table is ordered and non-negative. When max is
// positive both thresholds must also be at most max (percentage tables).
func (t Thresholds) Validate(name string, max float64) error {
	switch {
	case t.Warn < 0 || t.Crit < 0:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("%s thresholds can't be negative (warn %g, crit %g)", name, t.Warn, t.Crit),
			"Use values of zero or more.")
	case t.Warn > t.Crit:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("%s warning threshold %g is above the critical threshold %g", name, t.Warn, t.Crit),
			"Set the warning threshold at or below the critical one.")
	case max > 0 && t.Crit > max:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("%s critical threshold %g is above %g", name, t.Crit, max),
			"Percentage thresholds go from 0 to 100.")
	}
	return nil
}

// Config holds the threshold table of every classified metric.
type Config struct {
	Utilization Thresholds // percent busy
	Temperature Thresholds // °C
	Memory      Thresholds // percent of total VRAM used
	Power       Thresholds // percent of the power cap drawn
}

// DefaultConfig returns the built-in thresholds.
func DefaultConfig() Config {
	return Config{
		Utilization: Thresholds{Warn: 70, Crit: 90},
		Temperature: Thresholds{Warn: 75, Crit: 90},
		Memory:      Thresholds{Warn: 70, Crit: 90},
		Power:       Thresholds{Warn: 70, Crit: 90},
	}
}

// Validate checks every table.
func (c Config) Validate() error {
	if err := c.Utilization.Validate("utilization", 100); err != nil {
		return err
	}
	if err := c.Temperature.Validate("temperature", 0); err != nil {
		return err
	}
	if err := c.Memory.Validate("memory", 100); err != nil {
		return err
	}
	return c.Power.Validate("power", 100)
}

// ClassifiedMetric is one reading with its tier. Limit carries the total or
// cap shown next to the reading (VRAM total, power cap) when there is one,
// and Percent the share of that limit the tier was taken from.
type ClassifiedMetric struct {
	Metric  gpu.Metric
	Value   gpu.Value
	Limit   gpu.Value
	Percent gpu.Value
	Tier    Tier
}

// Device is the classified form of one GPU.
type Device struct {
	Index   int
	Name    string
	Metrics []ClassifiedMetric // gpu.AllMetrics order
}

// Metric returns the classified reading of m.
func (d Device) Metric(m gpu.Metric) (ClassifiedMetric, bool) {
	for _, cm := range d.Metrics {
		if cm.Metric == m {
			return cm, true
		}
	}
	return ClassifiedMetric{}, false
}

// Classify tiers every metric of d.
func Classify(d gpu.DeviceMetrics, cfg Config) Device {
	out := Device{
		Index:   d.Index,
		Name:    d.Name,
		Metrics: make([]ClassifiedMetric, 0, len(gpu.AllMetrics)),
	}

	for _, m := range gpu.AllMetrics {
		var cm ClassifiedMetric
		switch m {
		case gpu.MetricTemperature:
			cm = ClassifiedMetric{Value: d.Temperature, Tier: cfg.Temperature.Classify(d.Temperature)}
		case gpu.MetricUtilization:
			cm = ClassifiedMetric{Value: d.Utilization, Tier: cfg.Utilization.Classify(d.Utilization)}
		case gpu.MetricMemory:
			pct := d.MemoryPercent()
			cm = ClassifiedMetric{
				Value:   d.MemoryUsed,
				Limit:   d.MemoryTotal,
				Percent: pct,
				Tier:    ratioTier(d.MemoryUsed, pct, cfg.Memory),
			}
		case gpu.MetricPower:
			pct := d.PowerPercent()
			cm = ClassifiedMetric{
				Value:   d.PowerDraw,
				Limit:   d.PowerCap,
				Percent: pct,
				Tier:    ratioTier(d.PowerDraw, pct, cfg.Power),
			}
		case gpu.MetricFan:
			cm = ClassifiedMetric{Value: d.FanSpeed, Tier: presence(d.FanSpeed)}
		case gpu.MetricGraphicsClock:
			cm = ClassifiedMetric{Value: d.GraphicsClock, Tier: presence(d.GraphicsClock)}
		case gpu.MetricMemoryClock:
			cm = ClassifiedMetric{Value: d.MemoryClock, Tier: presence(d.MemoryClock)}
		}
		cm.Metric = m
		out.Metrics = append(out.Metrics, cm)
	}

	return out
}

// ClassifyAll classifies devices in order.
func ClassifyAll(devices []gpu.DeviceMetrics, cfg Config) []Device {
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, Classify(d, cfg))
	}
	return out
}

// ratioTier classifies a reading by its percentage of a limit. A known
// reading without a usable limit has nothing to exceed and is normal.
func ratioTier(reading, pct gpu.Value, t Thresholds) Tier {
	if pct.IsKnown() {
		return t.Classify(pct)
	}
	return presence(reading)
}

// presence tiers metrics that have no threshold table.
func presence(v gpu.Value) Tier {
	if v.IsKnown() {
		return TierNormal
	}
	return TierUnknown
}
