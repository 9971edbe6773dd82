// Package executor is the request-shaped façade named in §4.H: each
// exported method corresponds to one wire operation, composing storage,
// the file container, the target surface and the test orchestrator into
// the RPC surface a boundary package dispatches onto. Methods return a
// Future and do not block, except ListTestBundles, ListTestsInBundle and
// DiagnosticInformation, which return their result directly rather than as
// a Future.
package executor

import (
	"github.com/facebook/idb-sub000/collab"
	"github.com/facebook/idb-sub000/container"
	"github.com/facebook/idb-sub000/container/backend"
	"github.com/facebook/idb-sub000/storage"
	"github.com/facebook/idb-sub000/target"
	"github.com/facebook/idb-sub000/testrun"
	"github.com/facebook/idb-sub000/workspace"
)

// Executor owns every collaborator a single target's worth of RPCs needs.
// One Executor serves one target; a daemon embedding more than one target
// runs one Executor per target over a shared Storage/Workspace pair (§5
// "storage root, temp workspace... singletons owned by exactly one
// executor" is per-target scope here, not per-process).
type Executor struct {
	Storage   *storage.Manager
	Workspace *workspace.Workspace
	Target    *target.Handle
	TestRun   *testrun.Orchestrator

	Archiver collab.ArchiveExtractor
	Signer   collab.Codesigner
	Parser   collab.BundleParser

	// Devices backs every device-service container backend (media,
	// provisioning profiles, MDM profiles, wallpaper, springboard icons,
	// crashes, symbols, disk images); one collaborator, many domains.
	Devices collab.DeviceFileService
	// Sandbox resolves an app bundle id to its on-disk data container,
	// backing the app-sandbox containerType. Typically the same value
	// wired into Target's collab.PlatformAdapter.
	Sandbox backend.SandboxResolver
}

// New assembles an Executor from its collaborators. launcher drives
// xctest_run (§4.G); store and ws are shared with any sibling Executor on
// the same daemon.
func New(store *storage.Manager, ws *workspace.Workspace, t *target.Handle, launcher testrun.RunnerLauncher, archiver collab.ArchiveExtractor, signer collab.Codesigner, parser collab.BundleParser, devices collab.DeviceFileService, sandbox backend.SandboxResolver) *Executor {
	return &Executor{
		Storage:   store,
		Workspace: ws,
		Target:    t,
		TestRun:   testrun.New(store, ws, launcher),
		Archiver:  archiver,
		Signer:    signer,
		Parser:    parser,
		Devices:   devices,
		Sandbox:   sandbox,
	}
}

// ContainerType names one of the file-container backends a path operation
// may be routed through (§4.H "containerType enum").
type ContainerType string

const (
	ContainerAppSandbox          ContainerType = "app-sandbox"
	ContainerMedia               ContainerType = "media"
	ContainerRoot                ContainerType = "root"
	ContainerProvisioningProfile ContainerType = "provisioning_profiles"
	ContainerMDMProfile          ContainerType = "mdm_profiles"
	ContainerWallpaper           ContainerType = "wallpaper"
	ContainerSpringboardIcons    ContainerType = "springboard_icons"
	ContainerCrashes             ContainerType = "crashes"
	ContainerSymbols             ContainerType = "symbols"
	ContainerDiskImages          ContainerType = "disk_images"
)

// resolveBackend builds the container.Backend named by kind. bundleID is
// only consulted for ContainerAppSandbox.
func (e *Executor) resolveBackend(kind ContainerType, bundleID string) (container.Backend, error) {
	switch kind {
	case ContainerAppSandbox:
		return &backend.AppSandbox{Label: string(kind), BundleID: bundleID, Resolver: e.Sandbox}, nil
	case ContainerRoot:
		return backend.RootFilesystem(), nil
	case ContainerMedia:
		return &backend.DeviceService{Label: string(kind), Domain: backend.DomainMedia, Service: e.Devices}, nil
	case ContainerProvisioningProfile:
		return &backend.DeviceService{Label: string(kind), Domain: backend.DomainProvisioningProfile, Service: e.Devices}, nil
	case ContainerMDMProfile:
		return &backend.DeviceService{Label: string(kind), Domain: backend.DomainMDMProfile, Service: e.Devices}, nil
	case ContainerWallpaper:
		return &backend.DeviceService{Label: string(kind), Domain: backend.DomainWallpaper, Service: e.Devices}, nil
	case ContainerSpringboardIcons:
		return &backend.DeviceService{Label: string(kind), Domain: backend.DomainSpringboardIcons, Service: e.Devices}, nil
	case ContainerCrashes:
		return &backend.DeviceService{Label: string(kind), Domain: backend.DomainCrashes, Service: e.Devices}, nil
	case ContainerSymbols:
		return &backend.DeviceService{Label: string(kind), Domain: backend.DomainSymbols, Service: e.Devices}, nil
	case ContainerDiskImages:
		return &backend.DeviceService{Label: string(kind), Domain: backend.DomainDiskImages, Service: e.Devices}, nil
	default:
		return nil, container.Unsupported(string(kind), "resolve")
	}
}
