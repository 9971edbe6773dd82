package executor

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/facebook/idb-sub000/collab"
	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/storage"
	"github.com/facebook/idb-sub000/target"
	"github.com/facebook/idb-sub000/workspace"
)

func awaitT[T any](t *testing.T, f *future.Future[T]) T {
	t.Helper()
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("future did not resolve in time")
	}
	v, ok := f.Value()
	if !ok {
		t.Fatalf("future failed: %v", f.Err())
	}
	return v
}

type fakeArchiver struct{}

func (fakeArchiver) Extract(ctx context.Context, r io.Reader, compression collab.Compression, destDir string, overrideMTime bool) *future.Future[struct{}] {
	return future.Go(future.Inline, "fakeArchiver.Extract", func(context.Context) (struct{}, error) {
		if err := os.MkdirAll(destDir, 0755); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, os.WriteFile(filepath.Join(destDir, "Info.plist"), []byte("fake"), 0644)
	})
}
func (f fakeArchiver) ExtractFile(ctx context.Context, path string, compression collab.Compression, destDir string, overrideMTime bool) *future.Future[struct{}] {
	return f.Extract(ctx, nil, compression, destDir, overrideMTime)
}
func (fakeArchiver) CreateGzipTar(ctx context.Context, srcDir string) *future.Future[io.ReadCloser] {
	return future.Rejected[io.ReadCloser](nil)
}

type fakeParser struct {
	id string
}

func (p fakeParser) ParseBundle(ctx context.Context, dir string) *future.Future[collab.ParsedBundle] {
	return future.Resolved(collab.ParsedBundle{
		Identifier:    p.id,
		DisplayName:   p.id,
		Architectures: map[string]bool{"arm64": true},
	})
}

type fakeSigner struct{ calls int }

func (s *fakeSigner) Sign(ctx context.Context, path string) *future.Future[struct{}] {
	s.calls++
	return future.Resolved(struct{}{})
}

type fakeAdapter struct {
	collab.PlatformAdapter
	booted bool
}

func (a *fakeAdapter) Boot(ctx context.Context) *future.Future[struct{}] {
	a.booted = true
	return future.Resolved(struct{}{})
}
func (a *fakeAdapter) LaunchApp(ctx context.Context, cfg collab.LaunchConfig) *future.Future[int] {
	return future.Resolved(4242)
}

func newTestExecutor(t *testing.T) (*Executor, *fakeSigner) {
	t.Helper()
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open() = %v", err)
	}
	ws, err := workspace.New(t.TempDir(), fakeArchiver{})
	if err != nil {
		t.Fatalf("workspace.New() = %v", err)
	}
	adapter := &fakeAdapter{}
	h := target.New("udid-1", adapter)
	signer := &fakeSigner{}
	e := New(store, ws, h, nil, fakeArchiver{}, signer, fakeParser{id: "com.x.Sample"}, nil, nil)
	return e, signer
}

func TestInstallAppFromStreamSavesArtifact(t *testing.T) {
	e, signer := newTestExecutor(t)
	artifact := awaitT(t, e.InstallAppFromStream(context.Background(), nil, InstallOptions{
		Compression: collab.CompressionNone,
		TargetArchs: map[string]bool{"arm64": true},
	}))
	if artifact.Path == "" {
		t.Fatal("InstallAppFromStream() returned an artifact with no path")
	}
	if signer.calls != 0 {
		t.Fatalf("signer.calls = %d; app install must never codesign", signer.calls)
	}
	ids := e.Storage.PersistedBundleIDs(storage.KindApp)
	if len(ids) != 1 || ids[0] != "com.x.Sample" {
		t.Fatalf("PersistedBundleIDs() = %v; want [com.x.Sample]", ids)
	}
}

func TestInstallXCTestFromStreamCodesigns(t *testing.T) {
	e, signer := newTestExecutor(t)
	awaitT(t, e.InstallXCTestFromStream(context.Background(), nil, InstallOptions{
		TargetArchs: map[string]bool{"arm64": true},
	}))
	if signer.calls != 1 {
		t.Fatalf("signer.calls = %d; want 1", signer.calls)
	}
}

func TestInstallXCTestFromStreamSkipsSigningWhenRequested(t *testing.T) {
	e, signer := newTestExecutor(t)
	awaitT(t, e.InstallXCTestFromStream(context.Background(), nil, InstallOptions{
		TargetArchs: map[string]bool{"arm64": true},
		SkipSigning: true,
	}))
	if signer.calls != 0 {
		t.Fatalf("signer.calls = %d; want 0 with SkipSigning", signer.calls)
	}
}

func TestBootThenLaunchApp(t *testing.T) {
	e, _ := newTestExecutor(t)
	awaitT(t, e.Boot(context.Background()))
	launched := awaitT(t, e.LaunchApp(context.Background(), collab.LaunchConfig{BundleID: "com.x.Sample"}))
	if launched.PID != 4242 {
		t.Fatalf("LaunchApp() PID = %d; want 4242", launched.PID)
	}
}

type fakeSandboxResolver struct {
	root string
}

func (r fakeSandboxResolver) DataContainerPath(ctx context.Context, bundleID string) (string, error) {
	return r.root, nil
}

func TestAppSandboxContainerPushAndList(t *testing.T) {
	e, _ := newTestExecutor(t)
	e.Sandbox = fakeSandboxResolver{root: t.TempDir()}

	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	awaitT(t, e.PushFiles(context.Background(), ContainerAppSandbox, "com.x.Sample", srcDir, "payload"))
	names := awaitT(t, e.ListPaths(context.Background(), ContainerAppSandbox, "com.x.Sample", "payload"))
	if len(names) != 1 || names[0] != "a.txt" {
		t.Fatalf("ListPaths() = %v; want [a.txt]", names)
	}
}
