package metrics

import (
	"sync"
	"sync/atomic"
)

// MetricKey is a strongly typed metric identifier.
type MetricKey string

// Metric keys (centralized)
const (
	// Expiry checks
	ExpiryChecksTotal        MetricKey = "expiry_checks_total"
	ConsentMissingTotal      MetricKey = "consent_records_missing_total"
	ConsentRetainedTotal     MetricKey = "consent_records_retained_total"
	ConsentExpiredTotal      MetricKey = "consent_records_expired_total"
	ConsentMalformedTotal    MetricKey = "consent_records_malformed_total"
	StoreAccessFailuresTotal MetricKey = "store_access_failures_total"

	// Preference store
	PrefsKeys         MetricKey = "prefs_keys"
	PrefsSetsTotal    MetricKey = "prefs_sets_total"
	PrefsGetsTotal    MetricKey = "prefs_gets_total"
	PrefsMissesTotal  MetricKey = "prefs_misses_total"
	PrefsRemovesTotal MetricKey = "prefs_removes_total"

	// Sweeper
	SweepRunsTotal       MetricKey = "sweep_runs_total"
	SweepFailuresTotal   MetricKey = "sweep_failures_total"
	SweepNamespacesTotal MetricKey = "sweep_namespaces_checked_total"
)

// Registry stores all metrics.
type Registry struct {
	mu       sync.RWMutex
	counters map[MetricKey]*int64
}

// NewRegistry creates a metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[MetricKey]*int64),
	}
}

// Inc increments a metric by 1.
func (r *Registry) Inc(key MetricKey) {
	r.Add(key, 1)
}

// Add increments a metric by delta.
func (r *Registry) Add(key MetricKey, delta int64) {
	r.mu.RLock()
	ptr, ok := r.counters[key]
	r.mu.RUnlock()

	if ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	// Slow path: metric not yet initialized
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if ptr, ok = r.counters[key]; ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	var val int64
	r.counters[key] = &val
	atomic.AddInt64(&val, delta)
}

// Snapshot copies every metric into a plain map keyed by name.
// Mutating the result does not affect the registry.
func (r *Registry) Snapshot() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int64, len(r.counters))
	for key, ptr := range r.counters {
		out[string(key)] = atomic.LoadInt64(ptr)
	}
	return out
}

// Get returns the current value of a single metric, zero if unset.
func (r *Registry) Get(key MetricKey) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ptr, ok := r.counters[key]; ok {
		return atomic.LoadInt64(ptr)
	}
	return 0
}
