// Package backend supplies the concrete container.Backend implementations
// named in §4.E: a base directory rooted at an arbitrary host path (used
// directly for the root-filesystem backend, and composed by the app-sandbox
// backend), a device-service backend over collab.DeviceFileService, and a
// path-mapping backend that exposes several such roots as one virtual
// filesystem.
package backend

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	idberrors "github.com/facebook/idb-sub000/errors"
	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/procio"

	"github.com/facebook/idb-sub000/container"
)

// HostPath anchors every relative container path at a fixed base directory
// on the host, rejecting paths that validate-fail or that (after joining)
// would still escape base.
type HostPath struct {
	Label string
	Base  string
}

func (h *HostPath) resolve(rel string) (string, error) {
	if err := container.ValidatePath(rel); err != nil {
		return "", err
	}
	full := filepath.Join(h.Base, filepath.FromSlash(rel))
	base := filepath.Clean(h.Base)
	prefix := base
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(full, prefix) && full != base {
		return "", idberrors.Errorf(idberrors.InvalidArgument, "invalidPath: %q escapes backend root", rel)
	}
	return full, nil
}

func (h *HostPath) CopyFromHost(ctx context.Context, src, dst string) *future.Future[struct{}] {
	return future.Go(future.Inline, h.Label+".copyFromHost", func(context.Context) (struct{}, error) {
		full, err := h.resolve(dst)
		if err != nil {
			return struct{}{}, err
		}
		if _, err := os.Stat(src); err != nil {
			return struct{}{}, idberrors.Wrapf(idberrors.NotFound, err, "copyFromHost: %s", src)
		}
		return struct{}{}, copyTree(src, full)
	})
}

func (h *HostPath) CopyFromContainer(ctx context.Context, src, dstOnHost string) *future.Future[string] {
	return future.Go(future.Inline, h.Label+".copyFromContainer", func(context.Context) (string, error) {
		full, err := h.resolve(src)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(full); err != nil {
			return "", idberrors.Wrapf(idberrors.NotFound, err, "copyFromContainer: %s", src)
		}
		return dstOnHost, copyTree(full, dstOnHost)
	})
}

func (h *HostPath) Tail(ctx context.Context, path string, consumer procio.LineConsumer) *future.Future[*future.Future[struct{}]] {
	return future.Go(future.Inline, h.Label+".tail", func(ctx context.Context) (*future.Future[struct{}], error) {
		full, err := h.resolve(path)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(full)
		if err != nil {
			return nil, idberrors.Wrapf(idberrors.NotFound, err, "tail: %s", path)
		}
		if info.IsDir() {
			return nil, idberrors.Errorf(idberrors.InvalidArgument, "notFile: %s is a directory", path)
		}
		return tailFile(full, consumer), nil
	})
}

func (h *HostPath) CreateDirectory(ctx context.Context, path string) *future.Future[struct{}] {
	return future.Go(future.Inline, h.Label+".createDirectory", func(context.Context) (struct{}, error) {
		full, err := h.resolve(path)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, os.MkdirAll(full, 0755)
	})
}

func (h *HostPath) MoveFrom(ctx context.Context, src, dst string) *future.Future[struct{}] {
	return future.Go(future.Inline, h.Label+".moveFrom", func(context.Context) (struct{}, error) {
		fullSrc, err := h.resolve(src)
		if err != nil {
			return struct{}{}, err
		}
		fullDst, err := h.resolve(dst)
		if err != nil {
			return struct{}{}, err
		}
		if _, err := os.Stat(fullSrc); err != nil {
			return struct{}{}, idberrors.Wrapf(idberrors.NotFound, err, "moveFrom: %s", src)
		}
		if err := os.MkdirAll(filepath.Dir(fullDst), 0755); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, os.Rename(fullSrc, fullDst)
	})
}

func (h *HostPath) Remove(ctx context.Context, path string) *future.Future[struct{}] {
	return future.Go(future.Inline, h.Label+".remove", func(context.Context) (struct{}, error) {
		full, err := h.resolve(path)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, os.RemoveAll(full)
	})
}

func (h *HostPath) ContentsOfDirectory(ctx context.Context, path string) *future.Future[[]string] {
	return future.Go(future.Inline, h.Label+".contentsOfDirectory", func(context.Context) ([]string, error) {
		full, err := h.resolve(path)
		if err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(full)
		if err != nil {
			return nil, idberrors.Wrapf(idberrors.InvalidArgument, err, "notDir: %s", path)
		}
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		return names, nil
	})
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		in, err := os.Open(p)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, in)
		return err
	})
}
