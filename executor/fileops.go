package executor

import (
	"context"

	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/procio"
)

// PushFiles copies a host directory tree into the container named by kind
// at relative path dst, resolving bundleID for ContainerAppSandbox only.
func (e *Executor) PushFiles(ctx context.Context, kind ContainerType, bundleID, src, dst string) *future.Future[struct{}] {
	b, err := e.resolveBackend(kind, bundleID)
	if err != nil {
		return future.Rejected[struct{}](err)
	}
	return b.CopyFromHost(ctx, src, dst)
}

// PullFile copies a container path to a host path, returning the final
// host path.
func (e *Executor) PullFile(ctx context.Context, kind ContainerType, bundleID, src, dstOnHost string) *future.Future[string] {
	b, err := e.resolveBackend(kind, bundleID)
	if err != nil {
		return future.Rejected[string](err)
	}
	return b.CopyFromContainer(ctx, src, dstOnHost)
}

// PullFilePath is PullFile but stages into a freshly allocated workspace
// directory rather than a caller-provided host path (used when the caller
// only wants the resulting path, e.g. before streaming it back over the
// wire).
func (e *Executor) PullFilePath(ctx context.Context, kind ContainerType, bundleID, src string) *future.Future[string] {
	dir, err := e.Workspace.EphemeralTemporaryDirectory()
	if err != nil {
		return future.Rejected[string](err)
	}
	return e.PullFile(ctx, kind, bundleID, src, dir)
}

// MovePaths renames src to dst within one container.
func (e *Executor) MovePaths(ctx context.Context, kind ContainerType, bundleID, src, dst string) *future.Future[struct{}] {
	b, err := e.resolveBackend(kind, bundleID)
	if err != nil {
		return future.Rejected[struct{}](err)
	}
	return b.MoveFrom(ctx, src, dst)
}

// RemovePaths recursively removes path from one container.
func (e *Executor) RemovePaths(ctx context.Context, kind ContainerType, bundleID, path string) *future.Future[struct{}] {
	b, err := e.resolveBackend(kind, bundleID)
	if err != nil {
		return future.Rejected[struct{}](err)
	}
	return b.Remove(ctx, path)
}

// ListPaths returns the entry names directly under path in one container.
func (e *Executor) ListPaths(ctx context.Context, kind ContainerType, bundleID, path string) *future.Future[[]string] {
	b, err := e.resolveBackend(kind, bundleID)
	if err != nil {
		return future.Rejected[[]string](err)
	}
	return b.ContentsOfDirectory(ctx, path)
}

// CreateDirectory makes path (and missing parents) in one container.
func (e *Executor) CreateDirectory(ctx context.Context, kind ContainerType, bundleID, path string) *future.Future[struct{}] {
	b, err := e.resolveBackend(kind, bundleID)
	if err != nil {
		return future.Rejected[struct{}](err)
	}
	return b.CreateDirectory(ctx, path)
}

// Tail streams appends of path in one container to consumer. The outer
// future resolves once tailing has started; the inner future's
// cancellation stops it.
func (e *Executor) Tail(ctx context.Context, kind ContainerType, bundleID, path string, consumer procio.LineConsumer) *future.Future[*future.Future[struct{}]] {
	b, err := e.resolveBackend(kind, bundleID)
	if err != nil {
		return future.Rejected[*future.Future[struct{}]](err)
	}
	return b.Tail(ctx, path, consumer)
}
