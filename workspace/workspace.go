// Package workspace provides scoped, auto-cleaned temporary directories and
// archive-extraction contexts (§4.D). Every mutating operation that needs a
// scratch directory goes through here so cleanup is guaranteed regardless
// of how the chained work terminates.
package workspace

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/facebook/idb-sub000/collab"
	idberrors "github.com/facebook/idb-sub000/errors"
	"github.com/facebook/idb-sub000/future"
)

// Workspace allocates temporary directories under one root.
type Workspace struct {
	root     string
	archiver collab.ArchiveExtractor
}

// New creates a Workspace rooted at root (created if absent), using
// archiver for archive-extraction contexts.
func New(root string, archiver collab.ArchiveExtractor) (*Workspace, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, idberrors.Wrap(idberrors.IO, err, "create temp root")
	}
	return &Workspace{root: root, archiver: archiver}, nil
}

// EphemeralTemporaryDirectory returns a freshly created, uniquely named
// directory under the workspace root. Unlike WithTemporaryDirectory, no
// cleanup is scheduled: the directory leaks for the process's lifetime,
// matching callers that intentionally outlive the current operation (e.g.
// a result-bundle directory handed back to the client).
func (w *Workspace) EphemeralTemporaryDirectory() (string, error) {
	dir := filepath.Join(w.root, uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", idberrors.Wrap(idberrors.IO, err, "create ephemeral directory")
	}
	return dir, nil
}

// WithTemporaryDirectory returns a scoped Context wrapping a freshly
// created directory; its teardown removes the directory recursively.
func (w *Workspace) WithTemporaryDirectory() (*future.Context[string], error) {
	dir, err := w.EphemeralTemporaryDirectory()
	if err != nil {
		return nil, err
	}
	return future.NewContext(dir, func(future.State) *future.Future[struct{}] {
		return future.Go(future.Inline, "rmTemporaryDirectory", func(context.Context) (struct{}, error) {
			return struct{}{}, os.RemoveAll(dir)
		})
	}), nil
}

// WithArchiveExtractedFromStream extracts r into a fresh temporary
// directory via the archive collaborator and returns a scoped Context
// yielding the extraction root; teardown removes it.
func (w *Workspace) WithArchiveExtractedFromStream(ctx context.Context, r io.Reader, compression collab.Compression, overrideMTime bool) (*future.Future[*future.Context[string]], error) {
	scoped, err := w.WithTemporaryDirectory()
	if err != nil {
		return nil, err
	}
	extract := w.archiver.Extract(ctx, r, compression, scoped.Resource(), overrideMTime)
	return future.Map(extract, func(struct{}) *future.Context[string] { return scoped }), nil
}

// WithArchiveExtractedFromFile is like WithArchiveExtractedFromStream but
// reads an existing file at path rather than a stream.
func (w *Workspace) WithArchiveExtractedFromFile(ctx context.Context, path string, compression collab.Compression, overrideMTime bool) (*future.Future[*future.Context[string]], error) {
	scoped, err := w.WithTemporaryDirectory()
	if err != nil {
		return nil, err
	}
	extract := w.archiver.ExtractFile(ctx, path, compression, scoped.Resource(), overrideMTime)
	return future.Map(extract, func(struct{}) *future.Context[string] { return scoped }), nil
}

// WithGzipExtractedFromStream is a convenience wrapper around
// WithArchiveExtractedFromStream fixed to gzip compression, matching the
// common single-file-ingest case (dylibs, single-file dSYMs).
func (w *Workspace) WithGzipExtractedFromStream(ctx context.Context, r io.Reader, name string) (*future.Future[*future.Context[string]], error) {
	return w.WithArchiveExtractedFromStream(ctx, r, collab.CompressionGzip, false)
}

// FilesFromSubdirs lists the flat set of files under an extraction root of
// the form root/<UUID>/<file>, used when a client tars multiple artifacts
// into one stream.
func FilesFromSubdirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, idberrors.Wrap(idberrors.IO, err, "read extraction root")
	}
	var files []string
	for _, sub := range entries {
		if !sub.IsDir() {
			continue
		}
		subDir := filepath.Join(root, sub.Name())
		inner, err := os.ReadDir(subDir)
		if err != nil {
			return nil, idberrors.Wrap(idberrors.IO, err, "read extraction sub-directory")
		}
		for _, f := range inner {
			if !f.IsDir() {
				files = append(files, filepath.Join(subDir, f.Name()))
			}
		}
	}
	return files, nil
}
