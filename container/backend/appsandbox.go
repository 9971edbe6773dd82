package backend

import (
	"context"

	idberrors "github.com/facebook/idb-sub000/errors"
	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/procio"

	"github.com/facebook/idb-sub000/container"
)

// SandboxResolver answers the on-disk data-container directory for an
// installed app's bundle id, consulting the target's application-data
// APIs (§4.E "App sandbox ... consults the target's application-data
// APIs").
type SandboxResolver interface {
	DataContainerPath(ctx context.Context, bundleID string) (string, error)
}

// AppSandbox is keyed by bundle id: every operation resolves the bundle's
// data-container root through a SandboxResolver and then delegates to a
// HostPath rooted there.
type AppSandbox struct {
	Label    string
	BundleID string
	Resolver SandboxResolver
}

func (a *AppSandbox) hostPath(ctx context.Context) (*HostPath, error) {
	root, err := a.Resolver.DataContainerPath(ctx, a.BundleID)
	if err != nil {
		return nil, idberrors.Wrapf(idberrors.NotFound, err, "app sandbox for %s", a.BundleID)
	}
	return &HostPath{Label: a.Label, Base: root}, nil
}

// await blocks on f and returns its Done-state value and error, collapsing
// Failed/Cancelled into a single error result for the wrapping Go closure
// to return verbatim.
func await[T any](f *future.Future[T]) (T, error) {
	<-f.Done()
	_, v, err := f.Result()
	return v, err
}

func (a *AppSandbox) CopyFromHost(ctx context.Context, src, dst string) *future.Future[struct{}] {
	return future.Go(future.Inline, a.Label+".copyFromHost", func(ctx context.Context) (struct{}, error) {
		h, err := a.hostPath(ctx)
		if err != nil {
			return struct{}{}, err
		}
		return await(h.CopyFromHost(ctx, src, dst))
	})
}

func (a *AppSandbox) CopyFromContainer(ctx context.Context, src, dstOnHost string) *future.Future[string] {
	return future.Go(future.Inline, a.Label+".copyFromContainer", func(ctx context.Context) (string, error) {
		h, err := a.hostPath(ctx)
		if err != nil {
			return "", err
		}
		return await(h.CopyFromContainer(ctx, src, dstOnHost))
	})
}

func (a *AppSandbox) Tail(ctx context.Context, path string, consumer procio.LineConsumer) *future.Future[*future.Future[struct{}]] {
	return future.Go(future.Inline, a.Label+".tail", func(ctx context.Context) (*future.Future[struct{}], error) {
		h, err := a.hostPath(ctx)
		if err != nil {
			return nil, err
		}
		return await(h.Tail(ctx, path, consumer))
	})
}

func (a *AppSandbox) CreateDirectory(ctx context.Context, path string) *future.Future[struct{}] {
	return future.Go(future.Inline, a.Label+".createDirectory", func(ctx context.Context) (struct{}, error) {
		h, err := a.hostPath(ctx)
		if err != nil {
			return struct{}{}, err
		}
		return await(h.CreateDirectory(ctx, path))
	})
}

func (a *AppSandbox) MoveFrom(ctx context.Context, src, dst string) *future.Future[struct{}] {
	return future.Go(future.Inline, a.Label+".moveFrom", func(ctx context.Context) (struct{}, error) {
		h, err := a.hostPath(ctx)
		if err != nil {
			return struct{}{}, err
		}
		return await(h.MoveFrom(ctx, src, dst))
	})
}

func (a *AppSandbox) Remove(ctx context.Context, path string) *future.Future[struct{}] {
	return future.Go(future.Inline, a.Label+".remove", func(ctx context.Context) (struct{}, error) {
		h, err := a.hostPath(ctx)
		if err != nil {
			return struct{}{}, err
		}
		return await(h.Remove(ctx, path))
	})
}

func (a *AppSandbox) ContentsOfDirectory(ctx context.Context, path string) *future.Future[[]string] {
	return future.Go(future.Inline, a.Label+".contentsOfDirectory", func(ctx context.Context) ([]string, error) {
		h, err := a.hostPath(ctx)
		if err != nil {
			return nil, err
		}
		return await(h.ContentsOfDirectory(ctx, path))
	})
}

var _ container.Backend = (*AppSandbox)(nil)
var _ container.Backend = (*HostPath)(nil)
var _ container.Backend = (*PathMapped)(nil)
var _ container.Backend = (*DeviceService)(nil)

// RootFilesystem returns a HostPath backend with no prefix restriction
// beyond ValidatePath's own rules, matching the "Root filesystem" backend
// (§4.E): host paths with no prefix restriction.
func RootFilesystem() *HostPath {
	return &HostPath{Label: "root_fs", Base: "/"}
}
