package executor

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/facebook/idb-sub000/collab"
	idberrors "github.com/facebook/idb-sub000/errors"
	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/storage"
	"github.com/facebook/idb-sub000/workspace"
)

// await blocks on f and collapses its terminal state into (value, error).
func await[T any](f *future.Future[T]) (T, error) {
	<-f.Done()
	_, v, err := f.Result()
	return v, err
}

// InstallOptions carries the header frame fields of §6's install-stream
// framing that apply regardless of artifact kind.
type InstallOptions struct {
	Compression    collab.Compression
	MakeDebuggable bool
	OverrideMTime  bool
	SkipSigning    bool
	TargetArchs    map[string]bool
}

// ingestBundle is shared by every bundle-keyed install variant (app,
// xctest, framework): extract, optionally codesign, parse the descriptor,
// save. The extraction root is torn down once SaveBundle has copied its
// contents into storage, regardless of outcome.
func (e *Executor) ingestBundle(ctx context.Context, kind storage.Kind, scopedFn func() (*future.Future[*future.Context[string]], error), opts InstallOptions) *future.Future[*storage.InstalledArtifact] {
	return future.Go(future.Inline, "executor.install."+string(kind), func(ctx context.Context) (*storage.InstalledArtifact, error) {
		pending, err := scopedFn()
		if err != nil {
			return nil, err
		}
		rootCtx, err := await(pending)
		if err != nil {
			return nil, err
		}

		result := future.Pop(rootCtx, func(dir string) *future.Future[*storage.InstalledArtifact] {
			return future.Go(future.Inline, "executor.ingestBundle.body", func(ctx context.Context) (*storage.InstalledArtifact, error) {
				if kind == storage.KindXCTest && !opts.SkipSigning && e.Signer != nil {
					if _, err := await(e.Signer.Sign(ctx, dir)); err != nil {
						return nil, err
					}
				}
				parsed, err := await(e.Parser.ParseBundle(ctx, dir))
				if err != nil {
					return nil, err
				}
				desc := &storage.BundleDescriptor{
					Identifier:     parsed.Identifier,
					DisplayName:    parsed.DisplayName,
					ExecutablePath: parsed.ExecutablePath,
					Architectures:  parsed.Architectures,
					ContentUUID:    parsed.ContentUUID,
				}
				return await(e.Storage.SaveBundle(ctx, kind, desc, dir, opts.TargetArchs))
			})
		})
		return await(result)
	})
}

// InstallAppFromStream ingests an .app bundle from a client-streamed
// archive (§6 install-stream framing, kind=app).
func (e *Executor) InstallAppFromStream(ctx context.Context, r io.Reader, opts InstallOptions) *future.Future[*storage.InstalledArtifact] {
	return e.ingestBundle(ctx, storage.KindApp, func() (*future.Future[*future.Context[string]], error) {
		return e.Workspace.WithArchiveExtractedFromStream(ctx, r, opts.Compression, opts.OverrideMTime)
	}, opts)
}

// InstallAppFromPath ingests an .app bundle already staged at a host path.
func (e *Executor) InstallAppFromPath(ctx context.Context, path string, opts InstallOptions) *future.Future[*storage.InstalledArtifact] {
	return e.ingestBundle(ctx, storage.KindApp, func() (*future.Future[*future.Context[string]], error) {
		return e.Workspace.WithArchiveExtractedFromFile(ctx, path, opts.Compression, opts.OverrideMTime)
	}, opts)
}

// InstallXCTestFromStream ingests an .xctest bundle, codesigning it first
// unless opts.SkipSigning is set (§4.C "xctest bundles route through
// codesign unless skipSigning").
func (e *Executor) InstallXCTestFromStream(ctx context.Context, r io.Reader, opts InstallOptions) *future.Future[*storage.InstalledArtifact] {
	return e.ingestBundle(ctx, storage.KindXCTest, func() (*future.Future[*future.Context[string]], error) {
		return e.Workspace.WithArchiveExtractedFromStream(ctx, r, opts.Compression, opts.OverrideMTime)
	}, opts)
}

// InstallXCTestFromPath is the host-path variant of InstallXCTestFromStream.
func (e *Executor) InstallXCTestFromPath(ctx context.Context, path string, opts InstallOptions) *future.Future[*storage.InstalledArtifact] {
	return e.ingestBundle(ctx, storage.KindXCTest, func() (*future.Future[*future.Context[string]], error) {
		return e.Workspace.WithArchiveExtractedFromFile(ctx, path, opts.Compression, opts.OverrideMTime)
	}, opts)
}

// InstallFrameworkFromStream ingests a .framework directory tree. It
// reuses ingestBundle's extract/parse/save pipeline (frameworks carry a
// Mach-O architecture set the parser reads just like apps and xctests; only
// codesigning is skipped, since that only applies to xctest ingest).
func (e *Executor) InstallFrameworkFromStream(ctx context.Context, r io.Reader, opts InstallOptions) *future.Future[*storage.InstalledArtifact] {
	opts.SkipSigning = true
	return e.ingestBundle(ctx, storage.KindFramework, func() (*future.Future[*future.Context[string]], error) {
		return e.Workspace.WithArchiveExtractedFromStream(ctx, r, opts.Compression, opts.OverrideMTime)
	}, opts)
}

// InstallDSYMFromStream ingests a dSYM, UUID-keyed so multiple versions
// coexist until Clean (§4.C SaveFileInUniquePath).
func (e *Executor) InstallDSYMFromStream(ctx context.Context, r io.Reader) *future.Future[*storage.InstalledArtifact] {
	return future.Go(future.Inline, "executor.installDSYM", func(ctx context.Context) (*storage.InstalledArtifact, error) {
		pending, err := e.Workspace.WithArchiveExtractedFromStream(ctx, r, collab.CompressionGzip, false)
		if err != nil {
			return nil, err
		}
		rootCtx, err := await(pending)
		if err != nil {
			return nil, err
		}
		result := future.Pop(rootCtx, func(dir string) *future.Future[*storage.InstalledArtifact] {
			return future.Go(future.Inline, "executor.installDSYM.body", func(ctx context.Context) (*storage.InstalledArtifact, error) {
				files, err := workspace.FilesFromSubdirs(dir)
				if err != nil {
					return nil, err
				}
				if len(files) == 0 {
					return nil, idberrors.New(idberrors.InvalidArgument, "dSYM stream contained no files")
				}
				return await(e.Storage.SaveFileInUniquePath(ctx, storage.KindDSYM, files[0]))
			})
		})
		return await(result)
	})
}

// InstallDylibFromStream ingests a single dylib file, name-keyed rather
// than bundle-keyed (no descriptor parsing or codesigning).
func (e *Executor) InstallDylibFromStream(ctx context.Context, name string, r io.Reader) *future.Future[*storage.InstalledArtifact] {
	return future.Go(future.Inline, "executor.installDylib", func(ctx context.Context) (*storage.InstalledArtifact, error) {
		scoped, err := e.Workspace.WithTemporaryDirectory()
		if err != nil {
			return nil, err
		}
		result := future.Pop(scoped, func(dir string) *future.Future[*storage.InstalledArtifact] {
			return future.Go(future.Inline, "executor.installDylib.body", func(ctx context.Context) (*storage.InstalledArtifact, error) {
				path := filepath.Join(dir, name)
				if err := writeAll(path, r); err != nil {
					return nil, idberrors.Wrap(idberrors.IO, err, "stage dylib "+name)
				}
				return await(e.Storage.SaveFile(ctx, storage.KindDylib, name, path))
			})
		})
		return await(result)
	})
}

// writeAll copies r into a freshly created file at path.
func writeAll(path string, r io.Reader) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}
