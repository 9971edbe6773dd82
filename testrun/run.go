package testrun

import (
	"context"
	"time"

	"code.cloudfoundry.org/clock"
	"golang.org/x/sys/unix"

	"github.com/facebook/idb-sub000/collab"
	idberrors "github.com/facebook/idb-sub000/errors"
	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/logging"
	"github.com/facebook/idb-sub000/procio"
	"github.com/facebook/idb-sub000/storage"
	"github.com/facebook/idb-sub000/workspace"
)

// gracePeriod is how long SIGTERM is given to land before SIGKILL
// escalates on cancellation (§4.G Cancellation).
const gracePeriod = 5 * time.Second

// RunnerLauncher starts the XCTest runner (bootstrap-driven) or hands off
// to the platform build tool (build-tool-driven). stdin/stdout are the
// Sinks the launcher must bind to the runner process's stdio so the
// orchestrator's bus can exchange control messages with it.
type RunnerLauncher interface {
	LaunchRunner(ctx context.Context, req *Request, apps *TestApplicationsPair, workDir string, stdin, stdout procio.Sink) (*procio.Process, error)
}

// Orchestrator executes test runs against one storage root, one workspace,
// and one runner launcher, streaming events to a reporter.
type Orchestrator struct {
	Storage   *storage.Manager
	Workspace *workspace.Workspace
	Launcher  RunnerLauncher
	Clock     clock.Clock
}

// New creates an Orchestrator with a real clock.
func New(store *storage.Manager, ws *workspace.Workspace, launcher RunnerLauncher) *Orchestrator {
	return &Orchestrator{Storage: store, Workspace: ws, Launcher: launcher, Clock: clock.NewClock()}
}

// Run executes req to completion, streaming events to reporter, and
// resolves once the runner has exited and the run's temporary directory
// has been removed. It collects no result bundle, logs or coverage. If
// req.Timeout is non-zero it is enforced as an outer timeout on the
// returned Future (§4.G Timeout).
func (o *Orchestrator) Run(ctx context.Context, req *Request, reporter collab.ReporterSink) *future.Future[struct{}] {
	run := future.Go(future.NewParallelQueue("testrun.run", 0), "testrun.run", func(ctx context.Context) (struct{}, error) {
		return o.runSync(ctx, req, reporter)
	})
	if req.Timeout <= 0 {
		return run
	}
	return future.Timeout(run, req.Timeout, idberrors.Errorf(idberrors.Timeout, "test run exceeded %s", req.Timeout), o.Clock)
}

func (o *Orchestrator) runSync(ctx context.Context, req *Request, reporter collab.ReporterSink) (struct{}, error) {
	if err := req.Trace.Validate(); err != nil {
		return struct{}{}, err
	}

	// 1. Resolve.
	apps, err := o.resolve(req)
	if err != nil {
		return struct{}{}, err
	}

	// 2. Validate.
	if err := o.validate(req, apps); err != nil {
		return struct{}{}, err
	}

	// 3. Setup.
	scoped, err := o.Workspace.WithTemporaryDirectory()
	if err != nil {
		return struct{}{}, err
	}
	workDir := scoped.Resource()
	logging.Info(ctx, "test run workspace ready", "dir", workDir, "kind", req.Kind)

	outcome := future.Pop(scoped, func(string) *future.Future[struct{}] {
		// launchAndDrive gets the run's own ctx so that cancelling or timing
		// out the run reaches the runner.
		return future.Go(future.Inline, "testrun.drive", func(context.Context) (struct{}, error) {
			return o.launchAndDrive(ctx, req, apps, workDir, reporter)
		})
	})

	<-outcome.Done()
	return struct{}{}, outcome.Err()
}

// resolve materializes the TestApplicationsPair from storage (phase 1).
func (o *Orchestrator) resolve(req *Request) (*TestApplicationsPair, error) {
	testBundles := o.Storage.PersistedBundles(storage.KindXCTest)
	testBundle, ok := testBundles[req.TestBundleID]
	if !ok {
		return nil, idberrors.Errorf(idberrors.NotFound, "no installed xctest bundle %q", req.TestBundleID)
	}
	apps := &TestApplicationsPair{TestBundle: testBundle}

	if req.Kind == KindAppTest || req.Kind == KindUITest {
		hostApps := o.Storage.PersistedBundles(storage.KindApp)
		hostApp, ok := hostApps[req.HostAppBundleID]
		if !ok {
			return nil, idberrors.Errorf(idberrors.NotFound, "no installed host app %q", req.HostAppBundleID)
		}
		apps.HostApp = hostApp
	}
	if req.Kind == KindUITest {
		targetApps := o.Storage.PersistedBundles(storage.KindApp)
		targetApp, ok := targetApps[req.TargetAppBundleID]
		if !ok {
			return nil, idberrors.Errorf(idberrors.NotFound, "no installed target app %q", req.TargetAppBundleID)
		}
		apps.TargetApp = targetApp
	}
	return apps, nil
}

// validate enforces test-kind/host-presence consistency and the build-tool
// variant's xctestrun requirement (phase 2).
func (o *Orchestrator) validate(req *Request, apps *TestApplicationsPair) error {
	if req.Kind != KindLogicTest && apps.HostApp == nil {
		return idberrors.Errorf(idberrors.InvalidArgument, "%s requires a host app", req.Kind)
	}
	if req.Kind == KindUITest && apps.TargetApp == nil {
		return idberrors.New(idberrors.InvalidArgument, "uiTest requires a target app")
	}
	if req.BundleDescriptorKind == BuildToolDriven && req.XCTestRunPath == "" {
		return idberrors.New(idberrors.InvalidArgument, "build-tool-driven run requires an xctestrun path")
	}
	return nil
}

// launchAndDrive covers phases 4-7: launch the runner, establish the bus,
// drive its event stream to the reporter, and tear down regardless of
// outcome.
func (o *Orchestrator) launchAndDrive(ctx context.Context, req *Request, apps *TestApplicationsPair, workDir string, reporter collab.ReporterSink) (struct{}, error) {
	b := newBus()
	proc, err := o.Launcher.LaunchRunner(ctx, req, apps, workDir, b.StdinSink, b.StdoutSink)
	if err != nil {
		return struct{}{}, idberrors.Wrap(idberrors.Subprocess, err, "launch test runner")
	}

	if err := sendBeginExecution(b.toRunner, req); err != nil {
		return struct{}{}, err
	}

	driveErr := make(chan error, 1)
	go func() {
		driveErr <- decodeEvents(b.fromRunner, func(ev Event) {
			_ = reporter.Report(ctx, ev)
			if ev.Kind == EventFinishedExecutingTestPlan {
				_ = sendTerminate(b.toRunner)
				// terminate is the last host-to-runner message; closing
				// stdin lets the process's Wait finish.
				_ = b.toRunner.Close()
			}
		})
	}()

	select {
	case <-ctx.Done():
		proc.SignalWithFallback(int(unix.SIGTERM), gracePeriod, o.Clock)
		_ = b.toRunner.Close()
		<-proc.StatLoc.Done()
		return struct{}{}, ctx.Err()
	case err := <-driveErr:
		<-proc.StatLoc.Done()
		return struct{}{}, err
	}
}
