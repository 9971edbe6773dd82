// Package container provides a uniform, backend-agnostic interface to
// read, write and enumerate file paths inside a target's various storage
// areas (§4.E): an app's sandbox, the root filesystem, the media library,
// provisioning profiles, crash reports, and so on. Callers address all of
// them through the same Backend interface; which concrete backend answers
// a given request is resolved by the boundary package from the
// container-type name on the wire.
package container

import (
	"context"
	"io"
	"path"
	"strings"

	idberrors "github.com/facebook/idb-sub000/errors"
	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/procio"
)

// Backend is implemented by each container kind. Every method may return a
// backendUnsupported error for a capability the concrete backend does not
// provide (e.g. a read-only symbols backend rejecting moveFrom).
type Backend interface {
	// CopyFromHost recursively copies the host path src into the container
	// at relative path dst.
	CopyFromHost(ctx context.Context, src, dst string) *future.Future[struct{}]
	// CopyFromContainer recursively copies the container path src to the
	// host path dstOnHost, returning the final host path.
	CopyFromContainer(ctx context.Context, src, dstOnHost string) *future.Future[string]
	// Tail streams appends of path to consumer. The outer future resolves
	// once tailing has started, with an inner future whose cancellation
	// stops tailing.
	Tail(ctx context.Context, path string, consumer procio.LineConsumer) *future.Future[*future.Future[struct{}]]
	// CreateDirectory makes path (and any missing parents) inside the
	// container.
	CreateDirectory(ctx context.Context, path string) *future.Future[struct{}]
	// MoveFrom renames src to dst within the same container.
	MoveFrom(ctx context.Context, src, dst string) *future.Future[struct{}]
	// Remove recursively removes path.
	Remove(ctx context.Context, path string) *future.Future[struct{}]
	// ContentsOfDirectory returns the entry names (not paths) directly
	// under path.
	ContentsOfDirectory(ctx context.Context, path string) *future.Future[[]string]
}

// ValidatePath enforces the uniform path rules (§4.E): forward-slash,
// relative, no ".." traversal. Backends call this before touching the
// filesystem so every backend rejects bad paths identically.
func ValidatePath(p string) error {
	if p == "" {
		return idberrors.New(idberrors.InvalidArgument, "invalidPath: empty path")
	}
	if strings.Contains(p, "\\") {
		return idberrors.Errorf(idberrors.InvalidArgument, "invalidPath: %q is not forward-slash", p)
	}
	if path.IsAbs(p) {
		return idberrors.Errorf(idberrors.InvalidArgument, "invalidPath: %q is absolute", p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return idberrors.Errorf(idberrors.InvalidArgument, "invalidPath: %q traverses above root", p)
	}
	return nil
}

// Unsupported builds the standard backendUnsupported error for a capability
// a backend, named by label, does not implement.
func Unsupported(label, op string) error {
	return idberrors.Errorf(idberrors.BackendUnsupported, "%s: %s is not supported by this backend", label, op)
}

// drain reads all of r into a single byte slice, used by backends that
// buffer a whole file rather than streaming it (small metadata files only).
func drain(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}
