package render

import (
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/rileyhilliard/prettysmi/internal/classify"
	"github.com/rileyhilliard/prettysmi/internal/gpu"
)

// promMetrics holds the gauges of one exposition. A fresh registry is
// built per render so nothing leaks between reports.
type promMetrics struct {
	registry *prometheus.Registry

	temperature *prometheus.GaugeVec
	powerDraw   *prometheus.GaugeVec
	powerCap    *prometheus.GaugeVec
	memoryUsed  *prometheus.GaugeVec
	memoryTotal *prometheus.GaugeVec
	utilization *prometheus.GaugeVec
	fan         *prometheus.GaugeVec
	clock       *prometheus.GaugeVec
	severity    *prometheus.GaugeVec
}

var deviceLabels = []string{"gpu", "name"}

func newPromMetrics() *promMetrics {
	reg := prometheus.NewRegistry()

	gauge := func(name, help string, extra ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "prettysmi_gpu_" + name,
			Help: help,
		}, append(append([]string{}, deviceLabels...), extra...))
	}

	m := &promMetrics{
		registry:    reg,
		temperature: gauge("temperature_celsius", "GPU temperature in degrees Celsius."),
		powerDraw:   gauge("power_watts", "GPU power draw in watts."),
		powerCap:    gauge("power_cap_watts", "GPU power cap in watts."),
		memoryUsed:  gauge("memory_used_bytes", "Used VRAM in bytes."),
		memoryTotal: gauge("memory_total_bytes", "Total VRAM in bytes."),
		utilization: gauge("utilization_percent", "GPU busy percentage."),
		fan:         gauge("fan_percent", "Fan speed as a percentage of maximum."),
		clock:       gauge("clock_mhz", "Current clock frequency in MHz.", "clock"),
		severity: gauge("severity",
			"Severity tier per metric (1 = normal, 2 = warning, 3 = critical).", "metric"),
	}

	reg.MustRegister(
		m.temperature,
		m.powerDraw,
		m.powerCap,
		m.memoryUsed,
		m.memoryTotal,
		m.utilization,
		m.fan,
		m.clock,
		m.severity,
	)

	return m
}

func (m *promMetrics) observe(d classify.Device) {
	labels := prometheus.Labels{"gpu": strconv.Itoa(d.Index), "name": d.Name}

	set := func(g *prometheus.GaugeVec, v gpu.Value, extra prometheus.Labels) {
		x, ok := v.Get()
		if !ok {
			return
		}
		l := prometheus.Labels{}
		for k, val := range labels {
			l[k] = val
		}
		for k, val := range extra {
			l[k] = val
		}
		g.With(l).Set(x)
	}

	for _, cm := range d.Metrics {
		switch cm.Metric {
		case gpu.MetricTemperature:
			set(m.temperature, cm.Value, nil)
		case gpu.MetricPower:
			set(m.powerDraw, cm.Value, nil)
			set(m.powerCap, cm.Limit, nil)
		case gpu.MetricMemory:
			set(m.memoryUsed, cm.Value, nil)
			set(m.memoryTotal, cm.Limit, nil)
		case gpu.MetricUtilization:
			set(m.utilization, cm.Value, nil)
		case gpu.MetricFan:
			set(m.fan, cm.Value, nil)
		case gpu.MetricGraphicsClock, gpu.MetricMemoryClock:
			set(m.clock, cm.Value, prometheus.Labels{"clock": cm.Metric.String()})
		}

		if cm.Tier != classify.TierUnknown {
			set(m.severity, gpu.Known(float64(cm.Tier)), prometheus.Labels{"metric": cm.Metric.String()})
		}
	}
}

func renderProm(w io.Writer, r Report) error {
	m := newPromMetrics()
	for _, d := range r.Devices {
		m.observe(d)
	}

	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
