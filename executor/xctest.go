package executor

import (
	"context"

	"github.com/facebook/idb-sub000/collab"
	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/storage"
	"github.com/facebook/idb-sub000/testrun"
)

// ListTestBundles returns the identifiers of every installed xctest bundle.
func (e *Executor) ListTestBundles(ctx context.Context) []string {
	return e.Storage.PersistedBundleIDs(storage.KindXCTest)
}

// ListTestsInBundle returns the descriptor storage recorded for one
// installed xctest bundle (identifier, display name, executable path,
// architectures, content UUID), and false if no bundle with bundleID is
// installed. It does not enumerate test classes or methods.
func (e *Executor) ListTestsInBundle(ctx context.Context, bundleID string) (*storage.BundleDescriptor, bool) {
	return e.Storage.TestDescriptorWithID(bundleID)
}

// XCTestRun executes req to completion, streaming events to reporter
// (§4.G, §4.H "xctest_run(request, reporter, logger)").
func (e *Executor) XCTestRun(ctx context.Context, req *testrun.Request, reporter collab.ReporterSink) *future.Future[struct{}] {
	return e.TestRun.Run(ctx, req, reporter)
}
