package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	idberrors "github.com/facebook/idb-sub000/errors"
	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/logging"
)

// subStore tracks one Kind's on-disk directory and the artifacts persisted
// under it. It owns a private queue that runs one ingest at a time, so two
// sub-stores may ingest concurrently while writes within one sub-store
// never interleave (§5).
type subStore struct {
	kind Kind
	root string
	mu   sync.Mutex
	// queue serializes this sub-store's ingest calls (§5/§9 "storage
	// ingest serializes per sub-store"); a ParallelQueue bounded to one
	// slot, built once in Open and reused.
	queue *future.ParallelQueue
	// byIdentifier holds the live bundle-keyed artifacts, one per
	// identifier. For the UUID-keyed dSYM store, identifier is the UUID.
	byIdentifier map[string]*InstalledArtifact
	descriptors  map[string]*BundleDescriptor
}

// Manager is the storage root (§3, §4.C): a directory on the host
// containing apps/, xctests/, dylibs/, frameworks/, dsyms/.
type Manager struct {
	root   string
	stores map[Kind]*subStore
}

// Open prepares a Manager rooted at root, creating the five sub-store
// directories if they do not already exist.
func Open(root string) (*Manager, error) {
	m := &Manager{root: root, stores: map[Kind]*subStore{}}
	for _, k := range []Kind{KindApp, KindXCTest, KindDylib, KindFramework, KindDSYM} {
		dir := filepath.Join(root, string(k))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, idberrors.Wrapf(idberrors.IO, err, "create sub-store %s", k)
		}
		m.stores[k] = &subStore{
			kind:         k,
			root:         dir,
			queue:        future.NewParallelQueue(string(k)+".ingest", 1),
			byIdentifier: map[string]*InstalledArtifact{},
			descriptors:  map[string]*BundleDescriptor{},
		}
	}
	return m, nil
}

// Root returns the storage root directory.
func (m *Manager) Root() string { return m.root }

// SaveBundle verifies architecture compatibility against targetArchs,
// copies the sourceDir tree into place as <root>/<kind>/<identifier>/<base
// name of sourceDir> atomically (write to a sibling temp directory, then
// rename), replacing any prior tree for the same identifier, and returns
// the resulting InstalledArtifact.
//
// For the UUID-keyed dSYM store, identifier is ignored and a fresh UUID
// directory is always allocated instead (mirroring SaveFileInUniquePath);
// callers ingesting dSYMs should prefer SaveFileInUniquePath directly.
func (m *Manager) SaveBundle(ctx context.Context, kind Kind, desc *BundleDescriptor, sourceDir string, targetArchs map[string]bool) *future.Future[*InstalledArtifact] {
	store := m.stores[kind]
	return future.Go(store.queue, string(kind)+".saveBundle", func(ctx context.Context) (*InstalledArtifact, error) {
		if !desc.SupportsAnyArchitecture(targetArchs) {
			return nil, idberrors.Errorf(idberrors.IncompatibleArchitecture,
				"bundle %s supports none of target architectures", desc.Identifier)
		}

		store.mu.Lock()
		defer store.mu.Unlock()

		key := desc.Identifier
		if kind.keyedByUUID() {
			key = uuid.NewString()
		}
		finalDir := filepath.Join(store.root, key)
		tmpDir := finalDir + ".tmp-" + uuid.NewString()
		if err := copyTree(sourceDir, filepath.Join(tmpDir, filepath.Base(sourceDir))); err != nil {
			os.RemoveAll(tmpDir)
			return nil, idberrors.Wrapf(idberrors.IO, err, "stage bundle %s", desc.Identifier)
		}

		// Displace any prior tree first, commit the new tree, and only then
		// remove the prior tree: finalDir is never observably missing, and
		// a failed commit rolls the prior tree back into place instead of
		// losing it (§4.C "a partially-written artifact must never be
		// observable from persistedBundles").
		backupDir := finalDir + ".bak-" + uuid.NewString()
		hadPrior := false
		if _, err := os.Stat(finalDir); err == nil {
			if err := os.Rename(finalDir, backupDir); err != nil {
				os.RemoveAll(tmpDir)
				return nil, idberrors.Wrapf(idberrors.IO, err, "displace prior bundle %s", desc.Identifier)
			}
			hadPrior = true
		}
		if err := os.Rename(tmpDir, finalDir); err != nil {
			if hadPrior {
				os.Rename(backupDir, finalDir)
			}
			os.RemoveAll(tmpDir)
			return nil, idberrors.Wrapf(idberrors.IO, err, "commit bundle %s", desc.Identifier)
		}
		if hadPrior {
			os.RemoveAll(backupDir)
		}

		artifact := &InstalledArtifact{
			Name: desc.DisplayName,
			UUID: desc.ContentUUID,
			Path: filepath.Join(finalDir, filepath.Base(sourceDir)),
		}
		store.byIdentifier[key] = artifact
		store.descriptors[key] = desc
		logging.FromContext(ctx).Info("saved bundle", "kind", kind, "identifier", desc.Identifier, "path", artifact.Path)
		return artifact, nil
	})
}

// SaveFile copies sourcePath into a name-keyed slot (dylibs, single-file
// dSYMs): <root>/<kind>/<name>.
func (m *Manager) SaveFile(ctx context.Context, kind Kind, name string, sourcePath string) *future.Future[*InstalledArtifact] {
	store := m.stores[kind]
	return future.Go(store.queue, string(kind)+".saveFile", func(ctx context.Context) (*InstalledArtifact, error) {
		store.mu.Lock()
		defer store.mu.Unlock()

		finalPath := filepath.Join(store.root, name)
		tmpPath := finalPath + ".tmp-" + uuid.NewString()
		if err := copyFile(sourcePath, tmpPath); err != nil {
			os.Remove(tmpPath)
			return nil, idberrors.Wrapf(idberrors.IO, err, "stage file %s", name)
		}
		if err := os.Rename(tmpPath, finalPath); err != nil {
			os.Remove(tmpPath)
			return nil, idberrors.Wrapf(idberrors.IO, err, "commit file %s", name)
		}
		artifact := &InstalledArtifact{Name: name, Path: finalPath}
		store.byIdentifier[name] = artifact
		return artifact, nil
	})
}

// SaveFileInUniquePath copies sourcePath into a freshly minted UUID-named
// slot so multiple versions coexist until Clean. It copies the single file
// at sourcePath; the executor uses it for dSYM ingest.
func (m *Manager) SaveFileInUniquePath(ctx context.Context, kind Kind, sourcePath string) *future.Future[*InstalledArtifact] {
	store := m.stores[kind]
	return future.Go(store.queue, string(kind)+".saveFileInUniquePath", func(ctx context.Context) (*InstalledArtifact, error) {
		store.mu.Lock()
		defer store.mu.Unlock()

		id := uuid.NewString()
		finalDir := filepath.Join(store.root, id)
		tmpDir := finalDir + ".tmp"
		name := filepath.Base(sourcePath)
		if err := copyFile(sourcePath, filepath.Join(tmpDir, name)); err != nil {
			os.RemoveAll(tmpDir)
			return nil, idberrors.Wrapf(idberrors.IO, err, "stage unique file")
		}
		if err := os.Rename(tmpDir, finalDir); err != nil {
			os.RemoveAll(tmpDir)
			return nil, idberrors.Wrapf(idberrors.IO, err, "commit unique file")
		}
		artifact := &InstalledArtifact{Name: name, UUID: id, Path: filepath.Join(finalDir, name)}
		store.byIdentifier[id] = artifact
		return artifact, nil
	})
}

// PersistedBundleIDs returns every identifier with a live artifact in kind.
func (m *Manager) PersistedBundleIDs(kind Kind) []string {
	store := m.stores[kind]
	store.mu.Lock()
	defer store.mu.Unlock()
	ids := make([]string, 0, len(store.byIdentifier))
	for id := range store.byIdentifier {
		ids = append(ids, id)
	}
	return ids
}

// PersistedBundles returns every live artifact in kind, keyed by identifier.
func (m *Manager) PersistedBundles(kind Kind) map[string]*InstalledArtifact {
	store := m.stores[kind]
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make(map[string]*InstalledArtifact, len(store.byIdentifier))
	for id, a := range store.byIdentifier {
		out[id] = a
	}
	return out
}

// ListTestDescriptors returns every installed xctest bundle's descriptor.
func (m *Manager) ListTestDescriptors() []*BundleDescriptor {
	store := m.stores[KindXCTest]
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]*BundleDescriptor, 0, len(store.descriptors))
	for _, d := range store.descriptors {
		out = append(out, d)
	}
	return out
}

// TestDescriptorWithID looks up one installed xctest bundle by identifier.
func (m *Manager) TestDescriptorWithID(id string) (*BundleDescriptor, bool) {
	store := m.stores[KindXCTest]
	store.mu.Lock()
	defer store.mu.Unlock()
	d, ok := store.descriptors[id]
	return d, ok
}

// ReplacementMapping returns name -> absolute path for every currently
// persisted artifact across all sub-stores, keyed by the name a launch
// configuration's argv would reference via "$(bundle_name)".
func (m *Manager) ReplacementMapping() map[string]string {
	out := map[string]string{}
	for _, store := range m.stores {
		store.mu.Lock()
		for name, a := range store.byIdentifier {
			out[name] = a.Path
		}
		store.mu.Unlock()
	}
	return out
}

// RewriteArgv rewrites tokens of the form "$(bundle_name)" in args to the
// storage-resolved path for bundle_name, leaving unrecognized tokens as-is.
func (m *Manager) RewriteArgv(args []string) []string {
	mapping := m.ReplacementMapping()
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = rewriteToken(a, mapping)
	}
	return out
}

func rewriteToken(tok string, mapping map[string]string) string {
	const prefix, suffix = "$(", ")"
	if len(tok) > len(prefix)+len(suffix) && tok[:len(prefix)] == prefix && tok[len(tok)-len(suffix):] == suffix {
		name := tok[len(prefix) : len(tok)-len(suffix)]
		if path, ok := mapping[name]; ok {
			return path
		}
	}
	return tok
}

// Clean recursively removes every sub-store and recreates empty
// directories; in-memory bookkeeping is cleared to match.
func (m *Manager) Clean() error {
	for kind, store := range m.stores {
		store.mu.Lock()
		if err := os.RemoveAll(store.root); err != nil {
			store.mu.Unlock()
			return idberrors.Wrapf(idberrors.IO, err, "clean %s", kind)
		}
		if err := os.MkdirAll(store.root, 0755); err != nil {
			store.mu.Unlock()
			return idberrors.Wrapf(idberrors.IO, err, "recreate %s", kind)
		}
		store.byIdentifier = map[string]*InstalledArtifact{}
		store.descriptors = map[string]*BundleDescriptor{}
		store.mu.Unlock()
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target)
	})
}
