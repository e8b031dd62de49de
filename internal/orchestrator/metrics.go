package orchestrator

import (
	"sort"
	"sync"
	"time"

	"assistd/internal/deadline"
	"assistd/pkg/types"
)

// maxHistory bounds every latency series. Old samples fall off the front so
// the percentiles track recent behavior at constant memory.
const maxHistory = 1000

// Metrics aggregates per-endpoint and per-driver latency series. All updates
// are O(1) under a single mutex and never block generation.
type Metrics struct {
	mu        sync.Mutex
	start     time.Time
	endpoints map[string]*series
	drivers   map[string]*driverSeries
	fallbacks uint64
}

type series struct {
	total     uint64
	succeeded uint64
	failed    uint64
	ms        []float64
}

type driverSeries struct {
	generations  uint64
	failures     uint64
	timeouts     uint64
	loadFailures uint64
	ms           []float64
}

// NewMetrics creates an empty recorder with uptime counting from now.
func NewMetrics() *Metrics {
	return &Metrics{
		start:     time.Now(),
		endpoints: make(map[string]*series),
		drivers:   make(map[string]*driverSeries),
	}
}

func appendBounded(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > maxHistory {
		hist = hist[len(hist)-maxHistory:]
	}
	return hist
}

// RecordEndpoint records one logical operation outcome.
func (m *Metrics) RecordEndpoint(name string, ok bool, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.endpoints[name]
	if s == nil {
		s = &series{}
		m.endpoints[name] = s
	}
	s.total++
	if ok {
		s.succeeded++
	} else {
		s.failed++
	}
	s.ms = appendBounded(s.ms, float64(elapsed.Milliseconds()))
}

// RecordDriver records one generation attempt against a driver.
func (m *Metrics) RecordDriver(id string, status deadline.Status, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.drivers[id]
	if d == nil {
		d = &driverSeries{}
		m.drivers[id] = d
	}
	d.generations++
	switch status {
	case deadline.TimedOut:
		d.timeouts++
	case deadline.Failed:
		d.failures++
	default:
		d.ms = appendBounded(d.ms, float64(elapsed.Milliseconds()))
	}
}

// RecordLoadFailure counts one failed load attempt against a driver.
func (m *Metrics) RecordLoadFailure(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.drivers[id]
	if d == nil {
		d = &driverSeries{}
		m.drivers[id] = d
	}
	d.loadFailures++
}

// RecordFallback counts one rule-based fallback response.
func (m *Metrics) RecordFallback() {
	m.mu.Lock()
	m.fallbacks++
	m.mu.Unlock()
}

// Report snapshots everything into the wire shape. Cache stats are collected
// by the caller because the cache keeps its own counters.
func (m *Metrics) Report(cache types.CacheStats) types.MetricsResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := types.MetricsResponse{
		Endpoints:     make(map[string]types.EndpointStats, len(m.endpoints)),
		Drivers:       make(map[string]types.DriverStats, len(m.drivers)),
		Cache:         cache,
		FallbackUses:  m.fallbacks,
		UptimeSeconds: int64(time.Since(m.start).Seconds()),
	}
	for name, s := range m.endpoints {
		avg, p50, p95 := summarize(s.ms)
		out.Endpoints[name] = types.EndpointStats{
			Total:     s.total,
			Succeeded: s.succeeded,
			Failed:    s.failed,
			AvgMS:     avg,
			P50MS:     p50,
			P95MS:     p95,
		}
	}
	for id, d := range m.drivers {
		avg, p50, p95 := summarize(d.ms)
		out.Drivers[id] = types.DriverStats{
			Generations:  d.generations,
			Failures:     d.failures,
			Timeouts:     d.timeouts,
			LoadFailures: d.loadFailures,
			AvgMS:        avg,
			P50MS:        p50,
			P95MS:        p95,
		}
	}
	return out
}

// Reset drops all series and counters and restarts the uptime clock.
func (m *Metrics) Reset() {
	m.mu.Lock()
	m.start = time.Now()
	m.endpoints = make(map[string]*series)
	m.drivers = make(map[string]*driverSeries)
	m.fallbacks = 0
	m.mu.Unlock()
}

func summarize(ms []float64) (avg, p50, p95 float64) {
	if len(ms) == 0 {
		return 0, 0, 0
	}
	sorted := make([]float64, len(ms))
	copy(sorted, ms)
	sort.Float64s(sorted)
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted)), percentile(sorted, 0.50), percentile(sorted, 0.95)
}

// percentile uses nearest-rank on an ascending slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p*float64(len(sorted))+0.5) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
