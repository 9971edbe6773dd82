package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	root := t.TempDir()
	m, err := Open(root)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	return m
}

func writeBundleDir(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Info.plist"), []byte("<plist/>"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func await(t *testing.T, f interface {
	Done() <-chan struct{}
}) {
	t.Helper()
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("future did not resolve in time")
	}
}

func TestSaveBundleTwiceYieldsOneLiveArtifact(t *testing.T) {
	m := newTestManager(t)
	desc := &BundleDescriptor{
		Identifier:  "com.x.Sample",
		DisplayName: "Sample",
		Architectures: map[string]bool{
			"arm64": true,
		},
	}
	src := writeBundleDir(t, "Sample.app")
	targetArchs := map[string]bool{"arm64": true}

	for i := 0; i < 2; i++ {
		f := m.SaveBundle(context.Background(), KindApp, desc, src, targetArchs)
		await(t, f)
		if _, ok := f.Value(); !ok {
			t.Fatalf("SaveBundle() failed: %v", f.Err())
		}
	}

	ids := m.PersistedBundleIDs(KindApp)
	if len(ids) != 1 || ids[0] != "com.x.Sample" {
		t.Fatalf("PersistedBundleIDs() = %v; want exactly [com.x.Sample]", ids)
	}
}

func TestSaveBundleReplacementReplacesContentFully(t *testing.T) {
	m := newTestManager(t)
	desc := &BundleDescriptor{Identifier: "com.x.Sample", Architectures: map[string]bool{"arm64": true}}
	targetArchs := map[string]bool{"arm64": true}

	first := writeBundleDir(t, "Sample.app")
	if err := os.WriteFile(filepath.Join(first, "v1-only.txt"), []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	f := m.SaveBundle(context.Background(), KindApp, desc, first, targetArchs)
	await(t, f)
	a1, ok := f.Value()
	if !ok {
		t.Fatalf("SaveBundle() failed: %v", f.Err())
	}

	second := writeBundleDir(t, "Sample.app")
	f = m.SaveBundle(context.Background(), KindApp, desc, second, targetArchs)
	await(t, f)
	a2, ok := f.Value()
	if !ok {
		t.Fatalf("SaveBundle() failed: %v", f.Err())
	}

	if _, err := os.Stat(filepath.Join(a1.Path, "v1-only.txt")); !os.IsNotExist(err) {
		t.Fatalf("v1-only.txt survived replacement: err = %v", err)
	}
	if _, err := os.Stat(a2.Path); err != nil {
		t.Fatalf("replacement bundle missing at %s: %v", a2.Path, err)
	}

	var leftoverBackups []string
	entries, err := os.ReadDir(filepath.Dir(filepath.Dir(a2.Path)))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != desc.Identifier {
			leftoverBackups = append(leftoverBackups, e.Name())
		}
	}
	if len(leftoverBackups) != 0 {
		t.Fatalf("stray tmp/backup entries left behind: %v", leftoverBackups)
	}
}

func TestSaveBundleIncompatibleArchitecture(t *testing.T) {
	m := newTestManager(t)
	desc := &BundleDescriptor{
		Identifier:    "com.x.Sample",
		Architectures: map[string]bool{"x86_64": true},
	}
	src := writeBundleDir(t, "Sample.app")
	f := m.SaveBundle(context.Background(), KindApp, desc, src, map[string]bool{"arm64": true})
	await(t, f)
	if _, ok := f.Value(); ok {
		t.Fatal("SaveBundle() unexpectedly succeeded")
	}
	if len(m.PersistedBundleIDs(KindApp)) != 0 {
		t.Fatal("PersistedBundleIDs() is non-empty after failed ingest")
	}
}

func TestCleanEmptiesAllSubStores(t *testing.T) {
	m := newTestManager(t)
	desc := &BundleDescriptor{Identifier: "com.x.Sample", Architectures: map[string]bool{"arm64": true}}
	src := writeBundleDir(t, "Sample.app")
	f := m.SaveBundle(context.Background(), KindApp, desc, src, map[string]bool{"arm64": true})
	await(t, f)

	if err := m.Clean(); err != nil {
		t.Fatalf("Clean() = %v", err)
	}
	for _, kind := range []Kind{KindApp, KindXCTest, KindDylib, KindFramework, KindDSYM} {
		if ids := m.PersistedBundleIDs(kind); len(ids) != 0 {
			t.Fatalf("PersistedBundleIDs(%s) = %v after Clean()", kind, ids)
		}
		if _, err := os.Stat(filepath.Join(m.Root(), string(kind))); err != nil {
			t.Fatalf("sub-store directory %s missing after Clean(): %v", kind, err)
		}
	}
}

func TestSaveFileInUniquePathYieldsDistinctPaths(t *testing.T) {
	m := newTestManager(t)
	src := filepath.Join(t.TempDir(), "app.dSYM")
	if err := os.WriteFile(src, []byte("dwarf"), 0644); err != nil {
		t.Fatal(err)
	}

	f1 := m.SaveFileInUniquePath(context.Background(), KindDSYM, src)
	await(t, f1)
	f2 := m.SaveFileInUniquePath(context.Background(), KindDSYM, src)
	await(t, f2)

	a1, ok1 := f1.Value()
	a2, ok2 := f2.Value()
	if !ok1 || !ok2 {
		t.Fatalf("SaveFileInUniquePath() failed: %v / %v", f1.Err(), f2.Err())
	}
	if a1.Path == a2.Path {
		t.Fatalf("two SaveFileInUniquePath() calls yielded the same path %q", a1.Path)
	}
	if len(m.PersistedBundleIDs(KindDSYM)) != 2 {
		t.Fatalf("PersistedBundleIDs(dsyms) = %v; want 2 entries", m.PersistedBundleIDs(KindDSYM))
	}
}
