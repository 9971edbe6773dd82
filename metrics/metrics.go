// Package metrics exposes the daemon's incidental prometheus
// instrumentation (§1.5): future completions by terminal state, storage
// ingest counts by sub-store, target work-queue depth, and test-run
// durations by status. None of this is a spec'd RPC surface; it exists
// purely for operators scraping a /metrics endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "idb_companion"

// Registry bundles every metric the daemon records, all registered against
// a single *prometheus.Registry so a caller can expose exactly one
// /metrics handler regardless of how many targets it runs.
type Registry struct {
	FutureCompletions *prometheus.CounterVec
	StorageIngests    *prometheus.CounterVec
	TargetQueueDepth  *prometheus.GaugeVec
	TestRunDuration   *prometheus.HistogramVec
}

// New constructs a Registry and registers every metric with reg.
func New(reg prometheus.Registerer) *Registry {
	m := &Registry{
		FutureCompletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "future_completions_total",
			Help:      "Futures resolved, partitioned by their terminal state.",
		}, []string{"name", "state"}),
		StorageIngests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_ingests_total",
			Help:      "Artifacts persisted into the storage manager, partitioned by sub-store kind.",
		}, []string{"kind"}),
		TargetQueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "target_queue_depth",
			Help:      "Pending work items on a target's serial or parallel queue.",
		}, []string{"udid", "queue"}),
		TestRunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "test_run_duration_seconds",
			Help:      "Wall-clock duration of a test run, partitioned by its terminal status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	reg.MustRegister(m.FutureCompletions, m.StorageIngests, m.TargetQueueDepth, m.TestRunDuration)
	return m
}

// ObserveFutureCompletion records one future's terminal state. name and
// state are expected to be low-cardinality labels (an operation name and
// future.State.String(), not a dynamic identifier).
func (m *Registry) ObserveFutureCompletion(name, state string) {
	m.FutureCompletions.WithLabelValues(name, state).Inc()
}

// ObserveStorageIngest records one artifact persisted under the given
// storage.Kind string.
func (m *Registry) ObserveStorageIngest(kind string) {
	m.StorageIngests.WithLabelValues(kind).Inc()
}

// SetTargetQueueDepth records the current pending-item count of one
// target's named queue ("serial" or "parallel").
func (m *Registry) SetTargetQueueDepth(udid, queue string, depth int) {
	m.TargetQueueDepth.WithLabelValues(udid, queue).Set(float64(depth))
}

// ObserveTestRunDuration records how long a completed test run took,
// labeled with its terminal status (e.g. "passed", "failed", "crashed").
func (m *Registry) ObserveTestRunDuration(status string, seconds float64) {
	m.TestRunDuration.WithLabelValues(status).Observe(seconds)
}
