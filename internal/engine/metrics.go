package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/R41CY/movie-scraper/internal/telemetry"
)

// Metrics collects run-level counters updated concurrently by workers and
// read once by the orchestrator at completion. Instances are constructed at
// run start and passed by reference; there is no ambient global state.
type Metrics struct {
	requests  atomic.Int64
	cacheHits atomic.Int64
	retries   atomic.Int64

	mu     sync.Mutex
	errors map[FailureKind]int64
	start  time.Time
	end    time.Time
}

// Snapshot is a frozen, read-only view of a Metrics instance.
type Snapshot struct {
	Requests  int64                 `json:"requests"`
	CacheHits int64                 `json:"cache_hits"`
	Retries   int64                 `json:"retries"`
	Errors    map[FailureKind]int64 `json:"errors"`
	Start     time.Time             `json:"start"`
	End       time.Time             `json:"end"`
	Elapsed   time.Duration         `json:"elapsed"`
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{errors: make(map[FailureKind]int64)}
}

// RecordRequest counts one issued network request.
func (m *Metrics) RecordRequest(duration time.Duration) {
	m.requests.Add(1)
	telemetry.ObserveRequest(duration)
}

// RecordCacheHit counts a fetch served from cache.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
	telemetry.ObserveCacheHit()
}

// RecordRetry counts a scheduled retry.
func (m *Metrics) RecordRetry() {
	m.retries.Add(1)
	telemetry.ObserveRetry()
}

// RecordError counts a terminal failure by class.
func (m *Metrics) RecordError(kind FailureKind) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
	telemetry.ObserveError(string(kind))
}

// Begin stamps the run start. The earliest stamp wins so a pipeline driving
// several orchestrator passes over one collector keeps its true start.
func (m *Metrics) Begin(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.start.IsZero() || t.Before(m.start) {
		m.start = t
	}
}

// Finish stamps the run end.
func (m *Metrics) Finish(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.end = t
}

// Snapshot freezes the current counters into a plain value.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	errs := make(map[FailureKind]int64, len(m.errors))
	for k, v := range m.errors {
		errs[k] = v
	}
	snap := Snapshot{
		Requests:  m.requests.Load(),
		CacheHits: m.cacheHits.Load(),
		Retries:   m.retries.Load(),
		Errors:    errs,
		Start:     m.start,
		End:       m.end,
	}
	if !snap.Start.IsZero() && !snap.End.IsZero() {
		snap.Elapsed = snap.End.Sub(snap.Start)
	}
	return snap
}

// ErrorCount sums terminal failures across classes.
func (s Snapshot) ErrorCount() int64 {
	var total int64
	for _, v := range s.Errors {
		total += v
	}
	return total
}
