package workspace

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/facebook/idb-sub000/collab"
	"github.com/facebook/idb-sub000/future"
)

type fakeExtractor struct {
	files map[string]string // relative path -> contents
}

func (f *fakeExtractor) Extract(ctx context.Context, r io.Reader, compression collab.Compression, destDir string, overrideMTime bool) *future.Future[struct{}] {
	return future.Go(future.Inline, "fakeExtract", func(context.Context) (struct{}, error) {
		for rel, contents := range f.files {
			p := filepath.Join(destDir, rel)
			if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
				return struct{}{}, err
			}
			if err := os.WriteFile(p, []byte(contents), 0644); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
}

func (f *fakeExtractor) ExtractFile(ctx context.Context, path string, compression collab.Compression, destDir string, overrideMTime bool) *future.Future[struct{}] {
	return f.Extract(ctx, nil, compression, destDir, overrideMTime)
}

func (f *fakeExtractor) CreateGzipTar(ctx context.Context, srcDir string) *future.Future[io.ReadCloser] {
	return future.Rejected[io.ReadCloser](nil)
}

func await(t *testing.T, f interface{ Done() <-chan struct{} }) {
	t.Helper()
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("future did not resolve in time")
	}
}

func TestWithTemporaryDirectoryRemovesOnTeardown(t *testing.T) {
	w, err := New(t.TempDir(), &fakeExtractor{})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	scoped, err := w.WithTemporaryDirectory()
	if err != nil {
		t.Fatalf("WithTemporaryDirectory() = %v", err)
	}
	dir := scoped.Resource()
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("temporary directory missing: %v", err)
	}

	out := future.Pop(scoped, func(string) *future.Future[struct{}] {
		return future.Resolved(struct{}{})
	})
	await(t, out)

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("temporary directory still present after teardown: %v", err)
	}
}

func TestWithArchiveExtractedFromStreamYieldsFiles(t *testing.T) {
	w, err := New(t.TempDir(), &fakeExtractor{files: map[string]string{"payload.txt": "hi"}})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	pending, err := w.WithArchiveExtractedFromStream(context.Background(), nil, collab.CompressionGzip, false)
	if err != nil {
		t.Fatalf("WithArchiveExtractedFromStream() = %v", err)
	}
	await(t, pending)
	scoped, ok := pending.Value()
	if !ok {
		t.Fatalf("extraction failed: %v", pending.Err())
	}
	contents, err := os.ReadFile(filepath.Join(scoped.Resource(), "payload.txt"))
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	if string(contents) != "hi" {
		t.Fatalf("contents = %q; want %q", contents, "hi")
	}

	out := future.Pop(scoped, func(string) *future.Future[struct{}] { return future.Resolved(struct{}{}) })
	await(t, out)
}
