// Package collab models the named external collaborators of §1/§6: pieces
// the core consumes through a narrow interface but does not implement
// itself — archive extraction/creation, codesigning, the platform-native
// device adapter, and the test-event reporter sink. Production
// implementations (tar/zip codecs, `codesign` invocation, simulator/device
// backends, a gRPC-fed UI) live outside this module; this package exists so
// the core can be built, tested and wired against them without depending on
// any one concrete implementation.
package collab

import (
	"context"
	"io"

	"github.com/facebook/idb-sub000/future"
)

// Compression identifies the codec an install stream or archive is framed
// with.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// ArchiveExtractor is the archive tool collaborator: extract(archive, dest,
// overrideMTime) and createGzipTar(path). Errors are expected to carry
// errors.IO ("ioFailed") or errors.InvalidArgument ("badArchive").
type ArchiveExtractor interface {
	// Extract decompresses/untars r (or the file at path, per the caller)
	// into destDir, optionally overriding every extracted file's mtime.
	Extract(ctx context.Context, r io.Reader, compression Compression, destDir string, overrideMTime bool) *future.Future[struct{}]
	// ExtractFile is like Extract but reads from an existing file rather
	// than a stream.
	ExtractFile(ctx context.Context, path string, compression Compression, destDir string, overrideMTime bool) *future.Future[struct{}]
	// CreateGzipTar produces a gzipped tar of srcDir as a byte stream.
	CreateGzipTar(ctx context.Context, srcDir string) *future.Future[io.ReadCloser]
}

// Codesigner is the codesign tool collaborator, invoked by storage when
// ingesting an xctest bundle with skipSigning=false.
type Codesigner interface {
	Sign(ctx context.Context, path string) *future.Future[struct{}]
}

// BundleParser reads a bundle's on-disk metadata (Info.plist, Mach-O load
// commands) into a storage.BundleDescriptor-shaped result. Declared here,
// not in package storage, because parsing a platform bundle format is
// itself a named external concern (§1 "archive codecs" sibling); storage
// only consumes the parsed result.
type BundleParser interface {
	ParseBundle(ctx context.Context, dir string) *future.Future[ParsedBundle]
}

// ParsedBundle is the output of BundleParser.
type ParsedBundle struct {
	Identifier     string
	DisplayName    string
	ExecutablePath string
	Architectures  map[string]bool
	ContentUUID    string
}

// DeviceFileService is the device-specific service collaborator backing
// the container backends that "wrap a device-specific service" (§4.E):
// media library, provisioning profiles, MDM profiles, wallpaper,
// springboard icons, crash reports, symbols, disk images. Each of those
// backends is a thin container.Backend adapter over one DeviceFileService,
// distinguished only by the domain string passed to it.
type DeviceFileService interface {
	Push(ctx context.Context, domain, src, dst string) *future.Future[struct{}]
	Pull(ctx context.Context, domain, src, dstOnHost string) *future.Future[string]
	MakeDirectory(ctx context.Context, domain, path string) *future.Future[struct{}]
	Move(ctx context.Context, domain, src, dst string) *future.Future[struct{}]
	Remove(ctx context.Context, domain, path string) *future.Future[struct{}]
	List(ctx context.Context, domain, path string) *future.Future[[]string]
}

// InstalledAppInfo is the platform adapter's view of one installed app,
// optionally enriched with live process state when fetchPidState is
// requested (§4.F listApps).
type InstalledAppInfo struct {
	BundleID    string
	DisplayName string
	ProcessID   int // 0 if not running or fetchPidState was false
}

// LaunchConfig is the platform adapter's input to launching an app.
type LaunchConfig struct {
	BundleID    string
	Args        []string
	Env         map[string]string
	ForegroundIfRunning bool
}

// HIDEvent is the tagged union of injectable HID events (§4.F), one field
// populated according to Kind.
type HIDEvent struct {
	Kind HIDEventKind
	X, Y float64
	// Button/Key identifies the control for buttonDown/buttonUp/keyDown/keyUp.
	Button HIDButton
	Key    uint32
}

// HIDEventKind enumerates the HID event tagged-union cases.
type HIDEventKind int

const (
	HIDTouchDown HIDEventKind = iota
	HIDTouchUp
	HIDTouchMove
	HIDTap
	HIDButtonDown
	HIDButtonUp
	HIDKeyDown
	HIDKeyUp
)

// HIDButton enumerates the physical buttons a buttonDown/buttonUp event can
// name (home, lock, side-button, Siri...).
type HIDButton int

// PlatformAdapter is the Target platform adapter collaborator (§6): the
// capabilities the Target Surface delegates to, without the core knowing
// whether the concrete backend is a simulator or a physical device.
type PlatformAdapter interface {
	Boot(ctx context.Context) *future.Future[struct{}]
	Shutdown(ctx context.Context) *future.Future[struct{}]

	ListApps(ctx context.Context, fetchPidState bool) *future.Future[[]InstalledAppInfo]
	LaunchApp(ctx context.Context, cfg LaunchConfig) *future.Future[int]
	KillApp(ctx context.Context, bundleID string) *future.Future[struct{}]
	UninstallApp(ctx context.Context, bundleID string) *future.Future[struct{}]

	HID(ctx context.Context, event HIDEvent) *future.Future[struct{}]

	Approve(ctx context.Context, services []string, bundleID string) *future.Future[struct{}]
	Revoke(ctx context.Context, services []string, bundleID string) *future.Future[struct{}]
	ApproveDeeplink(ctx context.Context, scheme, bundleID string) *future.Future[struct{}]
	SetLocation(ctx context.Context, lat, lon float64) *future.Future[struct{}]
	SetHardwareKeyboardEnabled(ctx context.Context, enabled bool) *future.Future[struct{}]
	SetLocale(ctx context.Context, localeID string) *future.Future[struct{}]
	SetPreference(ctx context.Context, name, value, valueType, domain string) *future.Future[struct{}]
	GetPreference(ctx context.Context, name, valueType, domain string) *future.Future[string]
	GetCurrentLocale(ctx context.Context) *future.Future[string]
	ClearKeychain(ctx context.Context) *future.Future[struct{}]

	Focus(ctx context.Context) *future.Future[struct{}]
	OpenURL(ctx context.Context, url string) *future.Future[struct{}]
	SimulateMemoryWarning(ctx context.Context) *future.Future[struct{}]
	SendPushNotification(ctx context.Context, bundleID string, payload []byte) *future.Future[struct{}]

	Screenshot(ctx context.Context, format string) *future.Future[[]byte]
	AccessibilityInfo(ctx context.Context, atPoint *[2]float64, nested bool) *future.Future[string]

	AddMedia(ctx context.Context, urls []string) *future.Future[struct{}]
	UpdateContacts(ctx context.Context, tarBytes []byte) *future.Future[struct{}]

	DataContainerPath(ctx context.Context, bundleID string) (string, error)
}

// VideoEncoder is the FBVideoStream-derived supplement's collaborator: the
// encoder internals (H.264/minicap-style framing) are external, like the
// archive tool, but start/stop/lifecycle is in scope.
type VideoEncoder interface {
	StartEncoding(ctx context.Context, destPath string, fps int) *future.Future[struct{}]
	StopEncoding(ctx context.Context) *future.Future[struct{}]
}

// ReporterSink is the consumer of the test-event stream (§4.G, §6). Events
// are delivered in the order the runner emits them. The core adds no event
// of its own: a runner that stops before didFinishExecutingTestPlan leaves
// the stream without a final event.
type ReporterSink interface {
	Report(ctx context.Context, event interface{}) error
}
