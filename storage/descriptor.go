// Package storage is the single source of truth for every ingested
// artifact belonging to one target: apps, xctest bundles, dylibs,
// frameworks and dSYMs (§4.C). It favours write-to-temp-then-rename for
// every mutating ingest so a partially-written artifact is never
// observable.
package storage

// BundleDescriptor is parsed, immutable metadata about an app or test
// bundle. Bundle parsing itself (reading Info.plist, Mach-O load commands)
// is delegated to a collab.BundleParser; this struct is its output.
type BundleDescriptor struct {
	// Identifier is the bundle id, e.g. "com.x.Sample".
	Identifier string
	// DisplayName is the bundle's human-readable name.
	DisplayName string
	// ExecutablePath is the path to the bundle's executable, relative to
	// the bundle root.
	ExecutablePath string
	// Architectures is the set of architectures the bundle's executable
	// supports (e.g. "arm64", "x86_64").
	Architectures map[string]bool
	// ContentUUID is the bundle's content UUID, if one could be read from
	// its metadata (dSYMs always have one; apps/xctests may not).
	ContentUUID string
}

// SupportsAnyArchitecture reports whether d's architecture set intersects
// target. An empty intersection is the incompatibleArchitecture case (§7).
func (d *BundleDescriptor) SupportsAnyArchitecture(target map[string]bool) bool {
	for arch := range d.Architectures {
		if target[arch] {
			return true
		}
	}
	return false
}

// InstalledArtifact is a bundle or file storage has persisted. Attributes:
// logical name, optional content UUID, absolute on-disk path. Given a
// storage root, (kind, identifier) maps to at most one live artifact at any
// instant.
type InstalledArtifact struct {
	Name string
	UUID string // empty if the artifact has no content UUID
	Path string
}

// Kind identifies one of the five sub-stores under a storage root.
type Kind string

const (
	KindApp       Kind = "apps"
	KindXCTest    Kind = "xctests"
	KindDylib     Kind = "dylibs"
	KindFramework Kind = "frameworks"
	KindDSYM      Kind = "dsyms"
)

// keyedByUUID reports whether a sub-store deduplicates by content UUID
// (coexisting until clean) rather than by bundle identifier (replacing the
// prior tree).
func (k Kind) keyedByUUID() bool {
	return k == KindDSYM
}
