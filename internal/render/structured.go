package render

import (
	"encoding/json"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/prettysmi/internal/classify"
	"github.com/rileyhilliard/prettysmi/internal/gpu"
)

// StructuredReport is the JSON and YAML shape of a report. Unknown readings
// encode as null.
type StructuredReport struct {
	Header  StructuredHeader   `json:"header" yaml:"header"`
	Devices []StructuredDevice `json:"devices" yaml:"devices"`
	Summary StructuredSummary  `json:"summary" yaml:"summary"`
}

// StructuredHeader mirrors Header.
type StructuredHeader struct {
	Title     string `json:"title" yaml:"title"`
	Product   string `json:"product,omitempty" yaml:"product,omitempty"`
	Driver    string `json:"driver,omitempty" yaml:"driver,omitempty"`
	Host      string `json:"host,omitempty" yaml:"host,omitempty"`
	Kernel    string `json:"kernel,omitempty" yaml:"kernel,omitempty"`
	Stack     string `json:"stack,omitempty" yaml:"stack,omitempty"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// StructuredDevice is one GPU.
type StructuredDevice struct {
	Index   int                `json:"index" yaml:"index"`
	Name    string             `json:"name,omitempty" yaml:"name,omitempty"`
	Metrics []StructuredMetric `json:"metrics" yaml:"metrics"`
}

// StructuredMetric is one classified reading.
type StructuredMetric struct {
	Metric  gpu.Metric    `json:"metric" yaml:"metric"`
	Value   *float64      `json:"value" yaml:"value"`
	Limit   *float64      `json:"limit,omitempty" yaml:"limit,omitempty"`
	Percent *float64      `json:"percent,omitempty" yaml:"percent,omitempty"`
	Unit    string        `json:"unit" yaml:"unit"`
	Tier    classify.Tier `json:"tier" yaml:"tier"`
}

// StructuredSummary is the totals footer.
type StructuredSummary struct {
	Devices         int           `json:"devices" yaml:"devices"`
	MemoryUsed      *float64      `json:"memory_used" yaml:"memory_used"`
	MemoryTotal     *float64      `json:"memory_total" yaml:"memory_total"`
	MemoryTier      classify.Tier `json:"memory_tier" yaml:"memory_tier"`
	PowerDraw       *float64      `json:"power_draw" yaml:"power_draw"`
	PowerCap        *float64      `json:"power_cap" yaml:"power_cap"`
	PowerTier       classify.Tier `json:"power_tier" yaml:"power_tier"`
	AvgTemperature  *float64      `json:"avg_temperature" yaml:"avg_temperature"`
	TemperatureTier classify.Tier `json:"temperature_tier" yaml:"temperature_tier"`
}

// Structure converts r to its structured form.
func Structure(r Report) StructuredReport {
	out := StructuredReport{
		Header: StructuredHeader{
			Title:   title(r.Header),
			Product: r.Header.Product,
			Driver:  r.Header.Driver,
			Host:    r.Header.Host,
			Kernel:  r.Header.Kernel,
			Stack:   r.Header.Stack,
			Source:  r.Header.Source,
		},
		Devices: make([]StructuredDevice, 0, len(r.Devices)),
		Summary: StructuredSummary{
			Devices:         r.Summary.Devices,
			MemoryUsed:      r.Summary.MemoryUsed.Ptr(),
			MemoryTotal:     r.Summary.MemoryTotal.Ptr(),
			MemoryTier:      r.Summary.MemoryTier,
			PowerDraw:       r.Summary.PowerDraw.Ptr(),
			PowerCap:        r.Summary.PowerCap.Ptr(),
			PowerTier:       r.Summary.PowerTier,
			AvgTemperature:  r.Summary.AvgTemperature.Ptr(),
			TemperatureTier: r.Summary.TemperatureTier,
		},
	}
	if !r.Header.Timestamp.IsZero() {
		out.Header.Timestamp = r.Header.Timestamp.Format(time.RFC3339)
	}

	for _, d := range r.Devices {
		sd := StructuredDevice{
			Index:   d.Index,
			Name:    d.Name,
			Metrics: make([]StructuredMetric, 0, len(d.Metrics)),
		}
		for _, cm := range d.Metrics {
			sd.Metrics = append(sd.Metrics, StructuredMetric{
				Metric:  cm.Metric,
				Value:   cm.Value.Ptr(),
				Limit:   cm.Limit.Ptr(),
				Percent: cm.Percent.Ptr(),
				Unit:    cm.Metric.Unit(),
				Tier:    cm.Tier,
			})
		}
		out.Devices = append(out.Devices, sd)
	}

	return out
}

func renderJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Structure(r))
}

func renderYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Structure(r)); err != nil {
		return err
	}
	return enc.Close()
}
