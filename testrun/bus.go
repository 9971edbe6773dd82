package testrun

import (
	"bufio"
	"encoding/json"
	"io"
	"time"

	idberrors "github.com/facebook/idb-sub000/errors"
)

// wireMsg is the JSON-line-framed control message exchanged with the
// runner process, grounded on chromiumos/tast/internal/control's
// type-union-over-a-discriminating-time-field pattern, adapted here to a
// single explicit Kind tag instead of per-type timestamp field names.
type wireMsg struct {
	Kind string `json:"kind"`

	SuiteName string    `json:"suiteName,omitempty"`
	StartTime time.Time `json:"startTime,omitempty"`

	TestClass  string `json:"testClass,omitempty"`
	TestMethod string `json:"testMethod,omitempty"`
	Activity   string `json:"activity,omitempty"`

	Status     string        `json:"status,omitempty"`
	DurationMS int64         `json:"durationMs,omitempty"`
	Logs       []string      `json:"logs,omitempty"`
	Exceptions []wireExcerpt `json:"exceptions,omitempty"`

	AttachmentData []byte `json:"attachmentData,omitempty"`
	AttachmentUTI  string `json:"attachmentUti,omitempty"`

	Totals wireTotals `json:"totals,omitempty"`

	Output []byte `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

type wireExcerpt struct {
	Message string `json:"message"`
	File    string `json:"file"`
	Line    int    `json:"line"`
}

type wireTotals struct {
	Run             int   `json:"run"`
	Failed          int   `json:"failed"`
	Unexpected      int   `json:"unexpected"`
	TestDurationMS  int64 `json:"testDurationMs"`
	TotalDurationMS int64 `json:"totalDurationMs"`
}

// busCommand is written to the runner's stdin: "begin execution" or
// "terminate" (§4.G Bus).
//
// RunNothing is carried explicitly rather than inferred from an empty
// TestsToRun slice: JSON's omitempty collapses nil and empty slices to the
// same absent field, which would make "run nothing" (explicit empty
// TestsToRun, no TestsToSkip) indistinguishable on the wire from "run
// everything" (TestsToRun absent). See Request.testsToRunIsEmptySet.
type busCommand struct {
	Kind           string   `json:"kind"`
	TestsToRun     []string `json:"testsToRun,omitempty"`
	TestsToSkip    []string `json:"testsToSkip,omitempty"`
	RunNothing     bool     `json:"runNothing,omitempty"`
	ReportActivity bool     `json:"reportActivity,omitempty"`
	ReportAttach   bool     `json:"reportAttachments,omitempty"`
}

// sendBeginExecution writes the "begin execution" command to w.
func sendBeginExecution(w io.Writer, req *Request) error {
	cmd := busCommand{
		Kind:           "beginExecution",
		TestsToRun:     req.TestsToRun,
		TestsToSkip:    req.TestsToSkip,
		RunNothing:     req.testsToRunIsEmptySet(),
		ReportActivity: req.ReportActivities,
		ReportAttach:   req.ReportAttachments,
	}
	enc := json.NewEncoder(w)
	return enc.Encode(cmd)
}

// sendTerminate writes the "terminate" command to w.
func sendTerminate(w io.Writer) error {
	return json.NewEncoder(w).Encode(busCommand{Kind: "terminate"})
}

// decodeEvents reads newline-delimited wireMsg frames from r and pushes the
// corresponding Event to emit for each, until r is exhausted or a decode
// error occurs.
func decodeEvents(r io.Reader, emit func(Event)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var m wireMsg
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			return idberrors.Wrap(idberrors.Protocol, err, "decode test bus message")
		}
		ev, ok := toEvent(m)
		if !ok {
			continue
		}
		emit(ev)
	}
	if err := sc.Err(); err != nil {
		return idberrors.Wrap(idberrors.Protocol, err, "read test bus stream")
	}
	return nil
}

func toEvent(m wireMsg) (Event, bool) {
	switch m.Kind {
	case "didBeginExecutingTestPlan":
		return Event{Kind: EventBeganExecutingTestPlan}, true
	case "testSuiteDidStart":
		return Event{Kind: EventSuiteDidStart, SuiteName: m.SuiteName, SuiteStart: m.StartTime}, true
	case "testCaseDidStart":
		return Event{Kind: EventCaseDidStart, TestClass: m.TestClass, TestMethod: m.TestMethod}, true
	case "testCaseWillStartActivity":
		return Event{Kind: EventCaseWillStartActivity, Activity: m.Activity}, true
	case "testCaseDidFinishActivity":
		return Event{Kind: EventCaseDidFinishActivity, Activity: m.Activity}, true
	case "testCaseAttachment":
		return Event{Kind: EventCaseAttachment, Activity: m.Activity, AttachmentData: m.AttachmentData, AttachmentUTI: m.AttachmentUTI}, true
	case "testCaseDidFail":
		excs := make([]Exception, len(m.Exceptions))
		for i, e := range m.Exceptions {
			excs[i] = Exception{Message: e.Message, File: e.File, Line: e.Line}
		}
		return Event{Kind: EventCaseDidFail, TestClass: m.TestClass, TestMethod: m.TestMethod, Exceptions: excs}, true
	case "testCaseDidFinish":
		return Event{
			Kind: EventCaseDidFinish, TestClass: m.TestClass, TestMethod: m.TestMethod,
			Status: statusFromWire(m.Status), Duration: time.Duration(m.DurationMS) * time.Millisecond, Logs: m.Logs,
		}, true
	case "testSuiteDidFinish":
		return Event{Kind: EventSuiteDidFinish, SuiteName: m.SuiteName, Totals: SuiteTotals{
			Run: m.Totals.Run, Failed: m.Totals.Failed, Unexpected: m.Totals.Unexpected,
			TestDuration:  time.Duration(m.Totals.TestDurationMS) * time.Millisecond,
			TotalDuration: time.Duration(m.Totals.TotalDurationMS) * time.Millisecond,
		}}, true
	case "testHadOutput":
		return Event{Kind: EventHadOutput, OutputBytes: m.Output}, true
	case "didCrashDuringTest":
		return Event{Kind: EventCrashedDuringTest, CrashError: idberrors.New(idberrors.Subprocess, m.Error)}, true
	case "didFinishExecutingTestPlan":
		return Event{Kind: EventFinishedExecutingTestPlan}, true
	default:
		return Event{}, false
	}
}

func statusFromWire(s string) CaseStatus {
	switch s {
	case "passed":
		return CaseStatusPassed
	case "failed":
		return CaseStatusFailed
	case "crashed":
		return CaseStatusCrashed
	case "timedOut":
		return CaseStatusTimedOut
	case "skipped":
		return CaseStatusSkipped
	default:
		return CaseStatusFailed
	}
}
