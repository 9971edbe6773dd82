package boundary

import (
	idberrors "github.com/facebook/idb-sub000/errors"
	"github.com/facebook/idb-sub000/executor"
)

// knownContainerTypes is the wire vocabulary for the containerType enum
// (§4.H "routed through a container chosen by a containerType enum").
var knownContainerTypes = map[string]executor.ContainerType{
	"app-sandbox":           executor.ContainerAppSandbox,
	"media":                 executor.ContainerMedia,
	"root":                  executor.ContainerRoot,
	"provisioning_profiles": executor.ContainerProvisioningProfile,
	"mdm_profiles":          executor.ContainerMDMProfile,
	"wallpaper":             executor.ContainerWallpaper,
	"springboard_icons":     executor.ContainerSpringboardIcons,
	"crashes":               executor.ContainerCrashes,
	"symbols":               executor.ContainerSymbols,
	"disk_images":           executor.ContainerDiskImages,
}

// ContainerTypeFromWire parses the wire's containerType string into the
// executor.ContainerType it names, rejecting anything else as
// InvalidArgument rather than silently defaulting.
func ContainerTypeFromWire(wire string) (executor.ContainerType, error) {
	kind, ok := knownContainerTypes[wire]
	if !ok {
		return "", idberrors.Errorf(idberrors.InvalidArgument, "unknown containerType %q", wire)
	}
	return kind, nil
}
