package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/facebook/idb-sub000/errors"
)

func awaitT(t *testing.T, f interface{ Done() <-chan struct{} }) {
	t.Helper()
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("future did not resolve in time")
	}
}

func TestHostPathCopyFromHostAndContainer(t *testing.T) {
	base := t.TempDir()
	h := &HostPath{Label: "test", Base: base}

	src := filepath.Join(t.TempDir(), "payload")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "a.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	f := h.CopyFromHost(context.Background(), src, "dest")
	awaitT(t, f)
	if _, ok := f.Value(); !ok {
		t.Fatalf("CopyFromHost() = %v", f.Err())
	}
	if _, err := os.Stat(filepath.Join(base, "dest", "a.txt")); err != nil {
		t.Fatalf("copied file missing: %v", err)
	}

	outDir := t.TempDir()
	pull := h.CopyFromContainer(context.Background(), "dest", filepath.Join(outDir, "back"))
	awaitT(t, pull)
	if _, ok := pull.Value(); !ok {
		t.Fatalf("CopyFromContainer() = %v", pull.Err())
	}
	if _, err := os.Stat(filepath.Join(outDir, "back", "a.txt")); err != nil {
		t.Fatalf("pulled file missing: %v", err)
	}
}

func TestHostPathRejectsTraversal(t *testing.T) {
	h := &HostPath{Label: "test", Base: t.TempDir()}
	f := h.CreateDirectory(context.Background(), "../escape")
	awaitT(t, f)
	if _, ok := f.Value(); ok {
		t.Fatal("CreateDirectory() unexpectedly succeeded for traversal path")
	}
	if errors.KindOf(f.Err()) != errors.InvalidArgument {
		t.Fatalf("KindOf() = %v; want InvalidArgument", errors.KindOf(f.Err()))
	}
}

func TestHostPathMoveFromAndContentsOfDirectory(t *testing.T) {
	base := t.TempDir()
	h := &HostPath{Label: "test", Base: base}

	mk := h.CreateDirectory(context.Background(), "dir")
	awaitT(t, mk)
	if err := os.WriteFile(filepath.Join(base, "dir", "f.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	mv := h.MoveFrom(context.Background(), "dir/f.txt", "dir/g.txt")
	awaitT(t, mv)
	if _, ok := mv.Value(); !ok {
		t.Fatalf("MoveFrom() = %v", mv.Err())
	}

	ls := h.ContentsOfDirectory(context.Background(), "dir")
	awaitT(t, ls)
	names, ok := ls.Value()
	if !ok {
		t.Fatalf("ContentsOfDirectory() = %v", ls.Err())
	}
	if len(names) != 1 || names[0] != "g.txt" {
		t.Fatalf("ContentsOfDirectory() = %v; want [g.txt]", names)
	}
}
