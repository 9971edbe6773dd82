// Package testrun executes one XCTest run to completion while streaming
// structured events to a collab.ReporterSink (§4.G). It is the largest
// component: resolving test applications, validating them, materializing a
// working directory, launching the runner (or the build tool), driving its
// event stream, and tearing down regardless of how the run ends.
package testrun

import (
	"time"

	idberrors "github.com/facebook/idb-sub000/errors"
	"github.com/facebook/idb-sub000/storage"
)

var errMissingTraceOutputPath = idberrors.New(idberrors.InvalidArgument, "trace request is enabled but has no output path")

// Kind distinguishes the three request variants named in §4.G.
type Kind int

const (
	KindLogicTest Kind = iota
	KindAppTest
	KindUITest
)

func (k Kind) String() string {
	switch k {
	case KindLogicTest:
		return "logicTest"
	case KindAppTest:
		return "appTest"
	case KindUITest:
		return "uiTest"
	default:
		return "unknown"
	}
}

// BundleDescriptorKind distinguishes the two test-bundle-resolution
// strategies (§4.G "Test descriptor (two variants)").
type BundleDescriptorKind int

const (
	// BootstrapDriven: the orchestrator itself brings up the XCTest runner
	// using a test bundle under app hosting.
	BootstrapDriven BundleDescriptorKind = iota
	// BuildToolDriven: hands off to the platform's xcodebuild-equivalent;
	// applicable when an xctestrun file is present.
	BuildToolDriven
)

// TraceRequest mirrors FBXCTraceConfiguration (§SPEC_FULL.md supplement):
// record a .trace alongside the test run. The recorder itself is an
// external collaborator; this struct only carries what to ask it for.
type TraceRequest struct {
	Enabled    bool
	Template   string // e.g. "Time Profiler"
	OutputPath string
}

// Validate reports whether t is internally consistent (a disabled trace
// request never needs an output path).
func (t TraceRequest) Validate() error {
	if t.Enabled && t.OutputPath == "" {
		return errMissingTraceOutputPath
	}
	return nil
}

// Request is one test-run request (§4.G).
type Request struct {
	Kind Kind

	// TestBundleID is the installed xctest bundle's identifier (§4.C).
	TestBundleID string
	// BundleDescriptorKind selects bootstrap-driven vs build-tool-driven
	// execution. XCTestRunPath is required when BuildToolDriven.
	BundleDescriptorKind BundleDescriptorKind
	XCTestRunPath        string

	// HostAppBundleID hosts the test bundle; required for appTest/uiTest.
	HostAppBundleID string
	// TargetAppBundleID is the UI-under-test app; required for uiTest only.
	TargetAppBundleID string

	// TestsToRun/TestsToSkip are class-or-"class/method" strings (§4.G
	// Filtering). If both are given, TestsToSkip wins.
	TestsToRun  []string
	TestsToSkip []string

	ReportActivities  bool
	ReportAttachments bool
	CollectCoverage   bool

	// Timeout, if non-zero, is enforced as an outer timeout on the run
	// future.
	Timeout time.Duration

	Trace TraceRequest
}

// TestApplicationsPair is resolved in the Resolve phase: the installed
// artifacts a run actually needs, derived from Request plus storage.
type TestApplicationsPair struct {
	TestBundle *storage.InstalledArtifact
	HostApp    *storage.InstalledArtifact // nil for logicTest
	TargetApp  *storage.InstalledArtifact // nil unless uiTest
}

// testsToRunIsEmptySet reports the resolved Open Question (§4.G Filtering,
// §9 Open Questions): an explicitly empty (non-nil) TestsToRun with no
// TestsToSkip means "run nothing", distinct from a nil/absent TestsToRun
// which means "run everything". Suites may still emit begin/end events
// with zero test cases.
func (r *Request) testsToRunIsEmptySet() bool {
	return r.TestsToRun != nil && len(r.TestsToRun) == 0 && len(r.TestsToSkip) == 0
}
