package engine

// Metrics are the run counters. Ticks and Buffers are read from the clock
// and grid; every other field only grows during a run.
type Metrics struct {
	Ticks            int64 `json:"ticks"`
	Spawned          int   `json:"spawned"`
	Arrivals         int   `json:"arrivals"`
	ForcedArrivals   int   `json:"forced_arrivals"`
	Crashes          int   `json:"crashes"`
	WaitTicks        int   `json:"wait_ticks"`
	SignalViolations int   `json:"signal_violations"`
	SwitchFlips      int   `json:"switch_flips"`
	TrainTicks       int   `json:"train_ticks"`
	Buffers          int   `json:"buffers"`
}

// Summary adds the derived end-of-run figures.
type Summary struct {
	Metrics
	// Throughput is arrivals per 100 ticks.
	Throughput float64 `json:"throughput"`
	// AvgWait is wait ticks per spawned train.
	AvgWait float64 `json:"avg_wait"`
	// EnergyEfficiency is train-ticks per buffer tile.
	EnergyEfficiency float64 `json:"energy_efficiency"`
}

// Summary derives throughput, average wait and energy efficiency. Divisors
// of zero count as one.
func (m Metrics) Summary() Summary {
	s := Summary{Metrics: m}
	if m.Ticks > 0 {
		s.Throughput = float64(m.Arrivals) * 100 / float64(m.Ticks)
	}
	s.AvgWait = float64(m.WaitTicks) / float64(max(1, m.Spawned))
	s.EnergyEfficiency = float64(m.TrainTicks) / float64(max(1, m.Buffers))
	return s
}
