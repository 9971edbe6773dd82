package executor

import (
	"context"

	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/storage"
)

// Clean invokes storage.Clean and uninstalls every app currently recorded
// as installed on the target (§4.H "clean").
func (e *Executor) Clean(ctx context.Context) *future.Future[struct{}] {
	return future.Go(future.Inline, "executor.clean", func(ctx context.Context) (struct{}, error) {
		for _, bundleID := range e.Storage.PersistedBundleIDs(storage.KindApp) {
			if _, err := await(e.Target.UninstallApp(ctx, bundleID)); err != nil {
				return struct{}{}, err
			}
		}
		if err := e.Storage.Clean(); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
}
