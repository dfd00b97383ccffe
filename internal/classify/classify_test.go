package classify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/prettysmi/internal/errors"
	"github.com/rileyhilliard/prettysmi/internal/gpu"
)

func TestThresholdsClassify(t *testing.T) {
	th := Thresholds{Warn: 70, Crit: 90}

	tests := []struct {
		name  string
		value gpu.Value
		want  Tier
	}{
		{"unknown", gpu.Unknown(), TierUnknown},
		{"zero", gpu.Known(0), TierNormal},
		{"below warn", gpu.Known(69.99), TierNormal},
		{"at warn", gpu.Known(70), TierWarning},
		{"between", gpu.Known(85), TierWarning},
		{"at crit", gpu.Known(90), TierCritical},
		{"above crit", gpu.Known(150), TierCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, th.Classify(tt.value))
		})
	}
}

func TestThresholdsClassify_CritWinsOverWarn(t *testing.T) {
	// Equal thresholds: anything at the line is critical, never warning.
	th := Thresholds{Warn: 80, Crit: 80}
	assert.Equal(t, TierCritical, th.Classify(gpu.Known(80)))
	assert.Equal(t, TierNormal, th.Classify(gpu.Known(79)))
}

func TestThresholdsValidate(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		max     float64
		wantErr bool
	}{
		{"defaults", Thresholds{Warn: 70, Crit: 90}, 100, false},
		{"equal", Thresholds{Warn: 90, Crit: 90}, 100, false},
		{"inverted", Thresholds{Warn: 95, Crit: 90}, 100, true},
		{"negative", Thresholds{Warn: -1, Crit: 90}, 100, true},
		{"over hundred percent", Thresholds{Warn: 70, Crit: 120}, 100, true},
		{"unbounded temperature", Thresholds{Warn: 100, Crit: 120}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.th.Validate("test", tt.max)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				assert.Equal(t, errors.ExitUsage, errors.ExitCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Memory = Thresholds{Warn: 95, Crit: 50}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory")
}

func TestClassify(t *testing.T) {
	d := gpu.DeviceMetrics{
		Index:         0,
		Name:          "Radeon",
		Temperature:   gpu.Known(92),
		Utilization:   gpu.Known(97),
		MemoryUsed:    gpu.Known(8),
		MemoryTotal:   gpu.Known(16),
		PowerDraw:     gpu.Known(240),
		PowerCap:      gpu.Known(300),
		FanSpeed:      gpu.Known(60),
		GraphicsClock: gpu.Unknown(),
		MemoryClock:   gpu.Known(1000),
	}

	got := Classify(d, DefaultConfig())

	assert.Equal(t, 0, got.Index)
	assert.Equal(t, "Radeon", got.Name)
	require.Len(t, got.Metrics, len(gpu.AllMetrics))

	want := map[gpu.Metric]Tier{
		gpu.MetricTemperature:   TierCritical,
		gpu.MetricUtilization:   TierCritical,
		gpu.MetricMemory:        TierNormal,  // 50%
		gpu.MetricPower:         TierWarning, // 80%
		gpu.MetricFan:           TierNormal,
		gpu.MetricGraphicsClock: TierUnknown,
		gpu.MetricMemoryClock:   TierNormal,
	}
	for i, m := range gpu.AllMetrics {
		assert.Equal(t, m, got.Metrics[i].Metric, "metrics keep display order")
		assert.Equal(t, want[m], got.Metrics[i].Tier, "tier of %s", m)
	}

	mem, ok := got.Metric(gpu.MetricMemory)
	require.True(t, ok)
	assert.Equal(t, gpu.Known(16), mem.Limit)
	assert.Equal(t, gpu.Known(50), mem.Percent)
}

func TestClassify_ReportedMemoryUsage(t *testing.T) {
	d := gpu.DeviceMetrics{MemoryUsage: gpu.Known(93)}

	mem, _ := Classify(d, DefaultConfig()).Metric(gpu.MetricMemory)

	assert.False(t, mem.Value.IsKnown())
	assert.Equal(t, gpu.Known(93), mem.Percent)
	assert.Equal(t, TierCritical, mem.Tier)
}

func TestClassify_UnknownIsNeverNormal(t *testing.T) {
	got := Classify(gpu.DeviceMetrics{Index: 3}, DefaultConfig())
	for _, cm := range got.Metrics {
		assert.Equal(t, TierUnknown, cm.Tier, "metric %s", cm.Metric)
	}
}

func TestClassify_ReadingWithoutLimit(t *testing.T) {
	d := gpu.DeviceMetrics{
		MemoryUsed: gpu.Known(1 << 30),
		PowerDraw:  gpu.Known(500),
		PowerCap:   gpu.Known(0),
	}
	got := Classify(d, DefaultConfig())

	mem, _ := got.Metric(gpu.MetricMemory)
	power, _ := got.Metric(gpu.MetricPower)
	assert.Equal(t, TierNormal, mem.Tier)
	assert.Equal(t, TierNormal, power.Tier)
}

func TestClassify_Deterministic(t *testing.T) {
	d := gpu.DeviceMetrics{Temperature: gpu.Known(80), Utilization: gpu.Known(50)}
	cfg := DefaultConfig()
	assert.Equal(t, Classify(d, cfg), Classify(d, cfg))
}

func TestClassifyAll(t *testing.T) {
	devices := []gpu.DeviceMetrics{{Index: 0}, {Index: 1}}
	got := ClassifyAll(devices, DefaultConfig())
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[1].Index)
}

func TestTierText(t *testing.T) {
	for _, tier := range []Tier{TierUnknown, TierNormal, TierWarning, TierCritical} {
		b, err := json.Marshal(tier)
		require.NoError(t, err)

		var back Tier
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, tier, back)
	}

	b, _ := json.Marshal(TierWarning)
	assert.Equal(t, `"warning"`, string(b))

	_, err := ParseTier("bogus")
	assert.Error(t, err)
	assert.Equal(t, "tier(9)", Tier(9).String())
}
