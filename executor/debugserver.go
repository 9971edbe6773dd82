package executor

import (
	"context"

	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/procio"
	"github.com/facebook/idb-sub000/target"
)

// DebugserverStart/Status/Stop delegate to the target handle (§4.H
// "debugserver_{start,status,stop}").
func (e *Executor) DebugserverStart(ctx context.Context, debugserverPath string, port int, bundleID string) *future.Future[*procio.Process] {
	return e.Target.DebugserverStart(ctx, debugserverPath, port, bundleID)
}
func (e *Executor) DebugserverStatus(ctx context.Context) *future.Future[target.DebugserverState] {
	return e.Target.DebugserverStatus(ctx)
}
func (e *Executor) DebugserverStop(ctx context.Context) *future.Future[struct{}] {
	return e.Target.DebugserverStop(ctx)
}
