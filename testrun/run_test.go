package testrun

import (
	"context"
	"testing"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/facebook/idb-sub000/procio"
	"github.com/facebook/idb-sub000/storage"
	"github.com/facebook/idb-sub000/workspace"
)

// scriptLauncher spawns a shell script that reads the begin-execution
// line, prints a canned test-bus transcript to stdout, then drains stdin
// (the terminate command) until the orchestrator closes it, and exits.
type scriptLauncher struct {
	script string
}

func (s *scriptLauncher) LaunchRunner(ctx context.Context, req *Request, apps *TestApplicationsPair, workDir string, stdin, stdout procio.Sink) (*procio.Process, error) {
	return procio.Start(ctx, procio.Config{
		Name:   "fakeRunner",
		Path:   "/bin/sh",
		Args:   []string{"-c", s.script},
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: procio.DevNull(),
	})
}

type fakeExtractorReporter struct {
	events []Event
}

func (r *fakeExtractorReporter) Report(ctx context.Context, event interface{}) error {
	ev := event.(Event)
	r.events = append(r.events, ev)
	return nil
}

func newTestOrchestrator(t *testing.T, script string) (*Orchestrator, *storage.Manager) {
	t.Helper()
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open() = %v", err)
	}
	ws, err := workspace.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("workspace.New() = %v", err)
	}
	o := New(store, ws, &scriptLauncher{script: script})
	o.Clock = clock.NewClock()
	return o, store
}

func TestRunLogicTestDrivesReporterEventsInOrder(t *testing.T) {
	script := `read -r _
echo '{"kind":"didBeginExecutingTestPlan"}'
echo '{"kind":"testSuiteDidStart","suiteName":"AllTests"}'
echo '{"kind":"testCaseDidStart","testClass":"FooTests","testMethod":"testBar"}'
echo '{"kind":"testCaseDidFinish","testClass":"FooTests","testMethod":"testBar","status":"passed","durationMs":12}'
echo '{"kind":"testSuiteDidFinish","suiteName":"AllTests","totals":{"run":1,"failed":0,"unexpected":0}}'
echo '{"kind":"didFinishExecutingTestPlan"}'
cat >/dev/null
`
	o, store := newTestOrchestrator(t, script)
	desc := &storage.BundleDescriptor{Identifier: "com.x.Tests", Architectures: map[string]bool{"arm64": true}}
	src := t.TempDir()
	save := store.SaveBundle(context.Background(), storage.KindXCTest, desc, src, map[string]bool{"arm64": true})
	<-save.Done()
	if _, ok := save.Value(); !ok {
		t.Fatalf("SaveBundle() = %v", save.Err())
	}

	reporter := &fakeExtractorReporter{}
	req := &Request{Kind: KindLogicTest, TestBundleID: "com.x.Tests"}

	f := o.Run(context.Background(), req, reporter)
	select {
	case <-f.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("Run() did not resolve in time")
	}
	if _, ok := f.Value(); !ok {
		t.Fatalf("Run() = %v", f.Err())
	}

	if len(reporter.events) == 0 || reporter.events[0].Kind != EventBeganExecutingTestPlan {
		t.Fatalf("first event = %+v; want EventBeganExecutingTestPlan", reporter.events)
	}
	last := reporter.events[len(reporter.events)-1]
	if last.Kind != EventFinishedExecutingTestPlan {
		t.Fatalf("last event = %+v; want EventFinishedExecutingTestPlan", last)
	}
}

func TestRunRejectsMissingTestBundle(t *testing.T) {
	o, _ := newTestOrchestrator(t, "true")
	req := &Request{Kind: KindLogicTest, TestBundleID: "does.not.exist"}
	f := o.Run(context.Background(), req, &fakeExtractorReporter{})
	<-f.Done()
	if _, ok := f.Value(); ok {
		t.Fatal("Run() unexpectedly succeeded for a missing test bundle")
	}
}

func TestRunRejectsUITestWithoutTargetApp(t *testing.T) {
	o, store := newTestOrchestrator(t, "true")
	desc := &storage.BundleDescriptor{Identifier: "com.x.Tests", Architectures: map[string]bool{"arm64": true}}
	save := store.SaveBundle(context.Background(), storage.KindXCTest, desc, t.TempDir(), map[string]bool{"arm64": true})
	<-save.Done()

	hostDesc := &storage.BundleDescriptor{Identifier: "com.x.Host", Architectures: map[string]bool{"arm64": true}}
	saveHost := store.SaveBundle(context.Background(), storage.KindApp, hostDesc, t.TempDir(), map[string]bool{"arm64": true})
	<-saveHost.Done()

	req := &Request{Kind: KindUITest, TestBundleID: "com.x.Tests", HostAppBundleID: "com.x.Host"}
	f := o.Run(context.Background(), req, &fakeExtractorReporter{})
	<-f.Done()
	if _, ok := f.Value(); ok {
		t.Fatal("Run() unexpectedly succeeded for a uiTest missing a target app")
	}
}
