package backend

import (
	"context"

	"github.com/facebook/idb-sub000/collab"
	"github.com/facebook/idb-sub000/container"
	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/procio"
)

// DeviceService adapts one collab.DeviceFileService domain (media,
// provisioning profiles, MDM profiles, wallpaper, springboard icons,
// crashes, symbols, disk images) to container.Backend. Tail is never
// supported: none of these domains expose an appendable log file.
type DeviceService struct {
	Label   string
	Domain  string
	Service collab.DeviceFileService
}

func (d *DeviceService) CopyFromHost(ctx context.Context, src, dst string) *future.Future[struct{}] {
	if err := container.ValidatePath(dst); err != nil {
		return future.Rejected[struct{}](err)
	}
	return d.Service.Push(ctx, d.Domain, src, dst)
}

func (d *DeviceService) CopyFromContainer(ctx context.Context, src, dstOnHost string) *future.Future[string] {
	if err := container.ValidatePath(src); err != nil {
		return future.Rejected[string](err)
	}
	return d.Service.Pull(ctx, d.Domain, src, dstOnHost)
}

func (d *DeviceService) Tail(ctx context.Context, path string, consumer procio.LineConsumer) *future.Future[*future.Future[struct{}]] {
	return future.Rejected[*future.Future[struct{}]](container.Unsupported(d.Label, "tail"))
}

func (d *DeviceService) CreateDirectory(ctx context.Context, path string) *future.Future[struct{}] {
	if err := container.ValidatePath(path); err != nil {
		return future.Rejected[struct{}](err)
	}
	return d.Service.MakeDirectory(ctx, d.Domain, path)
}

func (d *DeviceService) MoveFrom(ctx context.Context, src, dst string) *future.Future[struct{}] {
	if err := container.ValidatePath(src); err != nil {
		return future.Rejected[struct{}](err)
	}
	if err := container.ValidatePath(dst); err != nil {
		return future.Rejected[struct{}](err)
	}
	return d.Service.Move(ctx, d.Domain, src, dst)
}

func (d *DeviceService) Remove(ctx context.Context, path string) *future.Future[struct{}] {
	if err := container.ValidatePath(path); err != nil {
		return future.Rejected[struct{}](err)
	}
	return d.Service.Remove(ctx, d.Domain, path)
}

func (d *DeviceService) ContentsOfDirectory(ctx context.Context, path string) *future.Future[[]string] {
	if path != "" {
		if err := container.ValidatePath(path); err != nil {
			return future.Rejected[[]string](err)
		}
	}
	return d.Service.List(ctx, d.Domain, path)
}

// Domain name constants, one per §4.E device-service backend.
const (
	DomainMedia              = "media"
	DomainProvisioningProfile = "provisioning_profiles"
	DomainMDMProfile          = "mdm_profiles"
	DomainWallpaper           = "wallpaper"
	DomainSpringboardIcons    = "springboard_icons"
	DomainCrashes             = "crashes"
	DomainSymbols             = "symbols"
	DomainDiskImages          = "disk_images"
)
