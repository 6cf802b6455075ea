package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

type Counter struct {
	val atomic.Int64
}

func (c *Counter) Inc()         { c.val.Add(1) }
func (c *Counter) Add(n int64)  { c.val.Add(n) }
func (c *Counter) Value() int64 { return c.val.Load() }

type Gauge struct {
	val atomic.Int64
}

func (g *Gauge) Set(v int64)  { g.val.Store(v) }
func (g *Gauge) Inc()         { g.val.Add(1) }
func (g *Gauge) Dec()         { g.val.Add(-1) }
func (g *Gauge) Value() int64 { return g.val.Load() }

// DurationTracker keeps a bounded window of recent durations for percentile
// reporting. Trial times are recorded here so a long run can report p50/p99.
type DurationTracker struct {
	mu      sync.Mutex
	samples []time.Duration
	maxKeep int
}

func NewDurationTracker(maxKeep int) *DurationTracker {
	return &DurationTracker{maxKeep: maxKeep}
}

func (dt *DurationTracker) Record(d time.Duration) {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	dt.samples = append(dt.samples, d)
	if len(dt.samples) > dt.maxKeep {
		dt.samples = dt.samples[len(dt.samples)-dt.maxKeep:]
	}
}

func (dt *DurationTracker) P50() time.Duration { return dt.percentile(0.50) }
func (dt *DurationTracker) P99() time.Duration { return dt.percentile(0.99) }

func (dt *DurationTracker) percentile(p float64) time.Duration {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	if len(dt.samples) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(dt.samples))
	copy(sorted, dt.samples)
	// insertion sort, windows stay small
	for i := 1; i < len(sorted); i++ {
		key := sorted[i]
		j := i - 1
		for j >= 0 && sorted[j] > key {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = key
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// Metrics is the global metrics registry.
var Metrics = struct {
	TrialsRun       Counter
	TrialsSkipped   Counter
	GamesSimulated  Counter
	SeriesSimulated Counter
	HTTPFetches     Counter
	FetchErrors     Counter
	PlayersLoaded   Counter
	ActiveWorkers   Gauge
	TrialLatency    *DurationTracker
}{
	TrialLatency: NewDurationTracker(1000),
}
