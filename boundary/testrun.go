package boundary

import (
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/facebook/idb-sub000/testrun"
)

// TestRunRequest mirrors one wire-level xctest-run request (§4.G, §6):
// testTimeout crosses the boundary as a durationpb.Duration, matching
// SPEC_FULL §2's "testTimeout, suite/case timestamps cross the boundary as
// these well-known wire value types".
type TestRunRequest struct {
	Kind                 testrun.Kind
	TestBundleID         string
	BundleDescriptorKind testrun.BundleDescriptorKind
	XCTestRunPath        string
	HostAppBundleID      string
	TargetAppBundleID    string
	TestsToRun           []string
	TestsToSkip          []string
	ReportActivities     bool
	ReportAttachments    bool
	CollectCoverage      bool
	TestTimeout          *durationpb.Duration
}

// ToRequest decodes w into the internal testrun.Request the Orchestrator
// consumes, converting the wire's protobuf Duration into a time.Duration.
func (w *TestRunRequest) ToRequest() *testrun.Request {
	var timeout time.Duration
	if w.TestTimeout != nil {
		timeout = w.TestTimeout.AsDuration()
	}
	return &testrun.Request{
		Kind:                 w.Kind,
		TestBundleID:         w.TestBundleID,
		BundleDescriptorKind: w.BundleDescriptorKind,
		XCTestRunPath:        w.XCTestRunPath,
		HostAppBundleID:      w.HostAppBundleID,
		TargetAppBundleID:    w.TargetAppBundleID,
		TestsToRun:           w.TestsToRun,
		TestsToSkip:          w.TestsToSkip,
		ReportActivities:     w.ReportActivities,
		ReportAttachments:    w.ReportAttachments,
		CollectCoverage:      w.CollectCoverage,
		Timeout:              timeout,
	}
}

// WireEvent mirrors one reporter event crossing the boundary (§4.G); suite
// start time is carried as a timestamppb.Timestamp rather than a
// language-native time.Time.
type WireEvent struct {
	Kind       testrun.EventKind
	SuiteName  string
	SuiteStart *timestamppb.Timestamp
	TestClass  string
	TestMethod string
	Status     testrun.CaseStatus
	Duration   *durationpb.Duration
}

// EventToWire converts one internal testrun.Event into its wire shape.
func EventToWire(e testrun.Event) WireEvent {
	w := WireEvent{
		Kind:       e.Kind,
		SuiteName:  e.SuiteName,
		TestClass:  e.TestClass,
		TestMethod: e.TestMethod,
		Status:     e.Status,
	}
	if !e.SuiteStart.IsZero() {
		w.SuiteStart = timestamppb.New(e.SuiteStart)
	}
	if e.Duration != 0 {
		w.Duration = durationpb.New(e.Duration)
	}
	return w
}
