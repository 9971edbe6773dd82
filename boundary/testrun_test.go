package boundary

import (
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/facebook/idb-sub000/testrun"
)

func TestTestRunRequestToRequestConvertsTimeout(t *testing.T) {
	w := &TestRunRequest{
		Kind:         testrun.KindLogicTest,
		TestBundleID: "com.x.Tests",
		TestTimeout:  durationpb.New(30 * time.Second),
	}
	req := w.ToRequest()
	if req.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v; want 30s", req.Timeout)
	}
	if req.TestBundleID != "com.x.Tests" {
		t.Errorf("TestBundleID = %q; want com.x.Tests", req.TestBundleID)
	}
}

func TestTestRunRequestToRequestZeroTimeoutWhenAbsent(t *testing.T) {
	w := &TestRunRequest{Kind: testrun.KindLogicTest}
	if got := w.ToRequest().Timeout; got != 0 {
		t.Errorf("Timeout = %v; want 0", got)
	}
}

func TestEventToWireSetsSuiteStartOnlyWhenNonZero(t *testing.T) {
	zero := EventToWire(testrun.Event{Kind: testrun.EventSuiteDidStart})
	if zero.SuiteStart != nil {
		t.Errorf("SuiteStart = %v; want nil for zero time", zero.SuiteStart)
	}

	now := time.Now()
	withTime := EventToWire(testrun.Event{Kind: testrun.EventSuiteDidStart, SuiteStart: now})
	if withTime.SuiteStart == nil {
		t.Fatal("SuiteStart = nil; want non-nil for a set time")
	}
	if diff := withTime.SuiteStart.AsTime().Sub(now).Abs(); diff > time.Millisecond {
		t.Errorf("SuiteStart = %v; want ~%v", withTime.SuiteStart.AsTime(), now)
	}
}
