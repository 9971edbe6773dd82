package backend

import (
	"context"
	"strings"

	idberrors "github.com/facebook/idb-sub000/errors"
	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/procio"

	"github.com/facebook/idb-sub000/container"
)

// PathMapped exposes several storage roots as one virtual filesystem,
// keyed by a path's first component (§4.E "path mapping"). It is how the
// root-fs view of storage's per-kind sub-stores (apps/, dylibs/, ...) is
// presented to a client asking to pull an installed dylib by name.
type PathMapped struct {
	Label string
	// Roots maps firstPathComponent -> a HostPath rooted at the matching
	// real base directory.
	Roots map[string]*HostPath
}

func (p *PathMapped) split(rel string) (first string, rest string, err error) {
	if err := container.ValidatePath(rel); err != nil {
		return "", "", err
	}
	idx := strings.IndexByte(rel, '/')
	if idx < 0 {
		return rel, "", nil
	}
	return rel[:idx], rel[idx+1:], nil
}

func (p *PathMapped) route(rel string) (*HostPath, string, error) {
	first, rest, err := p.split(rel)
	if err != nil {
		return nil, "", err
	}
	root, ok := p.Roots[first]
	if !ok {
		return nil, "", idberrors.Errorf(idberrors.NotFound, "%s: no mapped root %q", p.Label, first)
	}
	return root, rest, nil
}

func (p *PathMapped) CopyFromHost(ctx context.Context, src, dst string) *future.Future[struct{}] {
	root, rest, err := p.route(dst)
	if err != nil {
		return future.Rejected[struct{}](err)
	}
	return root.CopyFromHost(ctx, src, rest)
}

func (p *PathMapped) CopyFromContainer(ctx context.Context, src, dstOnHost string) *future.Future[string] {
	root, rest, err := p.route(src)
	if err != nil {
		return future.Rejected[string](err)
	}
	return root.CopyFromContainer(ctx, rest, dstOnHost)
}

func (p *PathMapped) Tail(ctx context.Context, path string, consumer procio.LineConsumer) *future.Future[*future.Future[struct{}]] {
	root, rest, err := p.route(path)
	if err != nil {
		return future.Rejected[*future.Future[struct{}]](err)
	}
	return root.Tail(ctx, rest, consumer)
}

func (p *PathMapped) CreateDirectory(ctx context.Context, path string) *future.Future[struct{}] {
	return future.Rejected[struct{}](container.Unsupported(p.Label, "createDirectory"))
}

func (p *PathMapped) MoveFrom(ctx context.Context, src, dst string) *future.Future[struct{}] {
	return future.Rejected[struct{}](container.Unsupported(p.Label, "moveFrom"))
}

func (p *PathMapped) Remove(ctx context.Context, path string) *future.Future[struct{}] {
	root, rest, err := p.route(path)
	if err != nil {
		return future.Rejected[struct{}](err)
	}
	return root.Remove(ctx, rest)
}

func (p *PathMapped) ContentsOfDirectory(ctx context.Context, path string) *future.Future[[]string] {
	if path == "" || path == "." {
		names := make([]string, 0, len(p.Roots))
		for name := range p.Roots {
			names = append(names, name)
		}
		return future.Resolved(names)
	}
	root, rest, err := p.route(path)
	if err != nil {
		return future.Rejected[[]string](err)
	}
	return root.ContentsOfDirectory(ctx, rest)
}
