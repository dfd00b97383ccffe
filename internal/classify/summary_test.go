package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rileyhilliard/prettysmi/internal/gpu"
)

func TestSummarize(t *testing.T) {
	devices := []gpu.DeviceMetrics{
		{
			Temperature: gpu.Known(80),
			MemoryUsed:  gpu.Known(15),
			MemoryTotal: gpu.Known(16),
			PowerDraw:   gpu.Known(100),
			PowerCap:    gpu.Known(300),
		},
		{
			Temperature: gpu.Known(90),
			MemoryUsed:  gpu.Known(14),
			MemoryTotal: gpu.Known(16),
			PowerDraw:   gpu.Unknown(),
			PowerCap:    gpu.Known(300),
		},
	}

	s := Summarize(devices, DefaultConfig())

	assert.Equal(t, 2, s.Devices)
	assert.Equal(t, gpu.Known(29), s.MemoryUsed)
	assert.Equal(t, gpu.Known(32), s.MemoryTotal)
	assert.Equal(t, TierCritical, s.MemoryTier) // 29/32 is past 90%
	assert.Equal(t, gpu.Known(100), s.PowerDraw)
	assert.False(t, s.PowerCap.IsKnown(), "GPU 1 has a cap but no draw")
	assert.Equal(t, TierUnknown, s.PowerTier)
	assert.Equal(t, gpu.Known(85), s.AvgTemperature)
	assert.Equal(t, TierWarning, s.TemperatureTier)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, DefaultConfig())

	assert.Equal(t, 0, s.Devices)
	assert.False(t, s.MemoryUsed.IsKnown())
	assert.False(t, s.AvgTemperature.IsKnown())
	assert.Equal(t, TierUnknown, s.MemoryTier)
	assert.Equal(t, TierUnknown, s.PowerTier)
	assert.Equal(t, TierUnknown, s.TemperatureTier)
}

func TestSummarize_MixedKnownReadings(t *testing.T) {
	const gib = 1 << 30
	devices := []gpu.DeviceMetrics{
		{MemoryUsed: gpu.Known(15 * gib), PowerDraw: gpu.Known(290)},
		{MemoryTotal: gpu.Known(16 * gib), PowerCap: gpu.Known(300)},
		{MemoryUsed: gpu.Known(1 * gib), MemoryTotal: gpu.Known(16 * gib), PowerDraw: gpu.Known(10), PowerCap: gpu.Known(300)},
	}

	s := Summarize(devices, DefaultConfig())

	assert.Equal(t, gpu.Known(16*gib), s.MemoryUsed)
	assert.False(t, s.MemoryTotal.IsKnown())
	assert.Equal(t, TierUnknown, s.MemoryTier)
	assert.Equal(t, gpu.Known(300), s.PowerDraw)
	assert.False(t, s.PowerCap.IsKnown())
	assert.Equal(t, TierUnknown, s.PowerTier)
}

func TestSummarize_ReadingsWithoutLimits(t *testing.T) {
	devices := []gpu.DeviceMetrics{
		{PowerDraw: gpu.Known(100)},
		{PowerDraw: gpu.Known(50)},
	}

	s := Summarize(devices, DefaultConfig())

	assert.Equal(t, gpu.Known(150), s.PowerDraw)
	assert.False(t, s.PowerCap.IsKnown())
	assert.Equal(t, TierNormal, s.PowerTier, "nothing to exceed")
	assert.Equal(t, TierUnknown, s.MemoryTier)
}
