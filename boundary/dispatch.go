package boundary

import (
	"context"

	"google.golang.org/grpc/status"

	"github.com/facebook/idb-sub000/executor"
	"github.com/facebook/idb-sub000/future"
)

// Dispatcher parses inbound wire requests into Executor method calls and
// translates their Futures into wire responses (unary here; a
// server-streaming or client-streaming transport would drive the same
// Executor calls from its own read/write loop). The concrete transport
// (gRPC server, Thrift server, ...) is an external collaborator: this type
// is the seam it calls through, not a server itself.
type Dispatcher struct {
	Executor *executor.Executor
}

// New wraps e as a Dispatcher.
func New(e *executor.Executor) *Dispatcher {
	return &Dispatcher{Executor: e}
}

// PushFilesRequest/Response mirror one unary wire call's shape for the
// push_files operation (§4.H file-path ops); a real transport would decode
// these from protobuf/Thrift rather than construct them directly.
type PushFilesRequest struct {
	ContainerType string
	BundleID      string
	Source        string
	Destination   string
}

// PushFiles dispatches one push_files wire call, blocking until it
// resolves and returning a status ready to send back over the wire.
func (d *Dispatcher) PushFiles(ctx context.Context, req PushFilesRequest) *status.Status {
	kind, err := ContainerTypeFromWire(req.ContainerType)
	if err != nil {
		return StatusFromError(err)
	}
	f := d.Executor.PushFiles(ctx, kind, req.BundleID, req.Source, req.Destination)
	return waitStatus(f)
}

// ListAppsRequest/ListAppsResponse mirror the listApps wire call.
type ListAppsRequest struct {
	FetchPidState bool
}

type AppEntry struct {
	BundleID    string
	DisplayName string
	ProcessID   int
}

// ListApps dispatches one listApps wire call.
func (d *Dispatcher) ListApps(ctx context.Context, req ListAppsRequest) ([]AppEntry, *status.Status) {
	f := d.Executor.ListApps(ctx, req.FetchPidState)
	<-f.Done()
	apps, ok := f.Value()
	if !ok {
		return nil, StatusFromError(f.Err())
	}
	out := make([]AppEntry, len(apps))
	for i, a := range apps {
		out[i] = AppEntry{BundleID: a.BundleID, DisplayName: a.DisplayName, ProcessID: a.ProcessID}
	}
	return out, StatusFromError(nil)
}

// waitStatus blocks on a struct{}-valued Future and converts its terminal
// outcome into a wire status.
func waitStatus(f *future.Future[struct{}]) *status.Status {
	<-f.Done()
	return StatusFromError(f.Err())
}
