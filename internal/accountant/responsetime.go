package accountant

import (
	"sync"

	"github.com/montanaflynn/stats"

	"github.com/spdfg/cloudsim-eec/internal/model"
)

// ResponseTimeTracker keeps a bounded ring buffer of recent task sojourn
// times per VM, trading exact history for a fixed memory footprint per VM.
type ResponseTimeTracker struct {
	mu       sync.Mutex
	capacity int
	samples  map[model.VMID][]float64
}

// NewResponseTimeTracker constructs a tracker whose per-VM history is
// capped at capacity samples.
func NewResponseTimeTracker(capacity int) *ResponseTimeTracker {
	return &ResponseTimeTracker{
		capacity: capacity,
		samples:  make(map[model.VMID][]float64),
	}
}

// Record appends a sojourn-time sample for vm, evicting the oldest sample
// once capacity is exceeded.
func (r *ResponseTimeTracker) Record(vm model.VMID, sojournMicros float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hist := r.samples[vm]
	hist = append(hist, sojournMicros)
	if len(hist) > r.capacity {
		hist = hist[len(hist)-r.capacity:]
	}
	r.samples[vm] = hist
}

// Mean returns the rolling mean sojourn time for vm.
func (r *ResponseTimeTracker) Mean(vm model.VMID) (float64, bool) {
	r.mu.Lock()
	hist := append([]float64(nil), r.samples[vm]...)
	r.mu.Unlock()

	if len(hist) == 0 {
		return 0, false
	}
	mean, err := stats.Mean(stats.Float64Data(hist))
	if err != nil {
		return 0, false
	}
	return mean, true
}

// Slope returns the linear-regression slope of vm's recent sojourn times
// against sample index, and false if there are fewer than two samples. A
// consistently positive slope is a leading indicator that response times
// are degrading before the simulator would raise an SLAWarning.
func (r *ResponseTimeTracker) Slope(vm model.VMID) (float64, bool) {
	r.mu.Lock()
	hist := append([]float64(nil), r.samples[vm]...)
	r.mu.Unlock()

	if len(hist) < 2 {
		return 0, false
	}

	series := make(stats.Series, len(hist))
	for i, v := range hist {
		series[i] = stats.Coordinate{X: float64(i), Y: v}
	}

	trend, err := stats.LinearRegression(series)
	if err != nil || len(trend) < 2 {
		return 0, false
	}
	slope := (trend[len(trend)-1].Y - trend[0].Y) / (trend[len(trend)-1].X - trend[0].X)
	return slope, true
}
