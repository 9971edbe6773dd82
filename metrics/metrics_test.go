package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFutureCompletionIncrementsLabeledCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveFutureCompletion("installApp", "done")
	m.ObserveFutureCompletion("installApp", "done")
	m.ObserveFutureCompletion("installApp", "failed")

	if got := testutil.ToFloat64(m.FutureCompletions.WithLabelValues("installApp", "done")); got != 2 {
		t.Errorf("done count = %v; want 2", got)
	}
	if got := testutil.ToFloat64(m.FutureCompletions.WithLabelValues("installApp", "failed")); got != 1 {
		t.Errorf("failed count = %v; want 1", got)
	}
}

func TestSetTargetQueueDepthOverwrites(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SetTargetQueueDepth("udid-1", "serial", 3)
	m.SetTargetQueueDepth("udid-1", "serial", 1)

	if got := testutil.ToFloat64(m.TargetQueueDepth.WithLabelValues("udid-1", "serial")); got != 1 {
		t.Errorf("depth = %v; want 1", got)
	}
}

func TestObserveTestRunDurationRecordsSample(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveTestRunDuration("passed", 1.5)

	if got := testutil.CollectAndCount(m.TestRunDuration); got != 1 {
		t.Errorf("CollectAndCount() = %d; want 1", got)
	}
}
