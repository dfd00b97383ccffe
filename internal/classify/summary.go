package classify

import "github.com/rileyhilliard/prettysmi/internal/gpu"

// Summary aggregates a report for the totals footer. Sums and the average
// only include known readings; an aggregate with no known inputs is unknown.
// A limit total (VRAM, power cap) is only given when every device that has
// the reading also has its limit, so the footer never compares readings of
// some GPUs against limits of others.
type Summary struct {
	Devices int

	MemoryUsed  gpu.Value
	MemoryTotal gpu.Value
	MemoryTier  Tier

	PowerDraw gpu.Value
	PowerCap  gpu.Value
	PowerTier Tier

	AvgTemperature  gpu.Value
	TemperatureTier Tier
}

// Summarize builds the footer for devices.
func Summarize(devices []gpu.DeviceMetrics, cfg Config) Summary {
	var (
		mem, power ratioSum
		temp       sum
	)

	for _, d := range devices {
		mem.add(d.MemoryUsed, d.MemoryTotal)
		power.add(d.PowerDraw, d.PowerCap)
		temp.add(d.Temperature)
	}

	s := Summary{
		Devices:        len(devices),
		AvgTemperature: temp.mean(),
	}
	s.MemoryUsed, s.MemoryTotal, s.MemoryTier = mem.result(cfg.Memory)
	s.PowerDraw, s.PowerCap, s.PowerTier = power.result(cfg.Power)
	s.TemperatureTier = cfg.Temperature.Classify(s.AvgTemperature)

	return s
}

// ratioSum totals a reading and its limit across devices.
type ratioSum struct {
	part, whole sum
	mismatched  bool // some device knows only one of the two
}

func (r *ratioSum) add(part, whole gpu.Value) {
	r.part.add(part)
	r.whole.add(whole)
	if part.IsKnown() != whole.IsKnown() {
		r.mismatched = true
	}
}

// result returns the reading total, the limit total and their tier. With
// mismatched devices the limit is unknown and so is the tier.
func (r ratioSum) result(t Thresholds) (part, whole gpu.Value, tier Tier) {
	part = r.part.total()
	if r.mismatched {
		return part, gpu.Unknown(), TierUnknown
	}
	whole = r.whole.total()
	agg := gpu.DeviceMetrics{PowerDraw: part, PowerCap: whole}
	return part, whole, ratioTier(part, agg.PowerPercent(), t)
}

type sum struct {
	value float64
	n     int
}

func (s *sum) add(v gpu.Value) {
	if x, ok := v.Get(); ok {
		s.value += x
		s.n++
	}
}

func (s sum) total() gpu.Value {
	if s.n == 0 {
		return gpu.Unknown()
	}
	return gpu.Known(s.value)
}

func (s sum) mean() gpu.Value {
	if s.n == 0 {
		return gpu.Unknown()
	}
	return gpu.Known(s.value / float64(s.n))
}
