package executor

import (
	"context"

	"github.com/facebook/idb-sub000/collab"
	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/target"
)

// Boot/Shutdown delegate directly to the target handle (§4.F lifecycle).
func (e *Executor) Boot(ctx context.Context) *future.Future[struct{}]     { return e.Target.Boot(ctx) }
func (e *Executor) Shutdown(ctx context.Context) *future.Future[struct{}] { return e.Target.Shutdown(ctx) }

// ListApps returns every installed app, optionally enriched with live pid
// state.
func (e *Executor) ListApps(ctx context.Context, fetchPidState bool) *future.Future[[]target.AppInfo] {
	return e.Target.ListApps(ctx, fetchPidState)
}

// LaunchApp starts bundleID with cfg.
func (e *Executor) LaunchApp(ctx context.Context, cfg collab.LaunchConfig) *future.Future[*target.LaunchedApp] {
	return e.Target.LaunchApp(ctx, cfg)
}

// KillApp/UninstallApp delegate to the target handle.
func (e *Executor) KillApp(ctx context.Context, bundleID string) *future.Future[struct{}] {
	return e.Target.KillApp(ctx, bundleID)
}
func (e *Executor) UninstallApp(ctx context.Context, bundleID string) *future.Future[struct{}] {
	return e.Target.UninstallApp(ctx, bundleID)
}

// HID injects one HID event.
func (e *Executor) HID(ctx context.Context, event collab.HIDEvent) *future.Future[struct{}] {
	return e.Target.HID(ctx, event)
}

// SetLocation/Focus/OpenURL/ClearKeychain/Approve/Revoke/ApproveDeeplink/
// SetPreference/GetPreference/SetLocale/GetCurrentLocale/
// SetHardwareKeyboardEnabled/SimulateMemoryWarning/SendPushNotification/
// AddMedia/UpdateContacts/Screenshot/AccessibilityInfo all delegate
// directly to the target handle; the façade adds nothing beyond naming
// (§4.H is explicitly "composes A-G", not a reimplementation of F).
func (e *Executor) SetLocation(ctx context.Context, lat, lon float64) *future.Future[struct{}] {
	return e.Target.SetLocation(ctx, lat, lon)
}
func (e *Executor) Focus(ctx context.Context) *future.Future[struct{}] { return e.Target.Focus(ctx) }
func (e *Executor) OpenURL(ctx context.Context, url string) *future.Future[struct{}] {
	return e.Target.OpenURL(ctx, url)
}
func (e *Executor) ClearKeychain(ctx context.Context) *future.Future[struct{}] {
	return e.Target.ClearKeychain(ctx)
}
func (e *Executor) Approve(ctx context.Context, services []string, bundleID string) *future.Future[struct{}] {
	return e.Target.Approve(ctx, services, bundleID)
}
func (e *Executor) Revoke(ctx context.Context, services []string, bundleID string) *future.Future[struct{}] {
	return e.Target.Revoke(ctx, services, bundleID)
}
func (e *Executor) ApproveDeeplink(ctx context.Context, scheme, bundleID string) *future.Future[struct{}] {
	return e.Target.ApproveDeeplink(ctx, scheme, bundleID)
}
func (e *Executor) SetPreference(ctx context.Context, name, value, valueType, domain string) *future.Future[struct{}] {
	return e.Target.SetPreference(ctx, name, value, valueType, domain)
}
func (e *Executor) GetPreference(ctx context.Context, name, valueType, domain string) *future.Future[string] {
	return e.Target.GetPreference(ctx, name, valueType, domain)
}
func (e *Executor) SetLocale(ctx context.Context, localeID string) *future.Future[struct{}] {
	return e.Target.SetLocale(ctx, localeID)
}
func (e *Executor) GetCurrentLocale(ctx context.Context) *future.Future[string] {
	return e.Target.GetCurrentLocale(ctx)
}
func (e *Executor) SetHardwareKeyboardEnabled(ctx context.Context, enabled bool) *future.Future[struct{}] {
	return e.Target.SetHardwareKeyboardEnabled(ctx, enabled)
}
func (e *Executor) SimulateMemoryWarning(ctx context.Context) *future.Future[struct{}] {
	return e.Target.SimulateMemoryWarning(ctx)
}
func (e *Executor) SendPushNotification(ctx context.Context, bundleID string, payload []byte) *future.Future[struct{}] {
	return e.Target.SendPushNotification(ctx, bundleID, payload)
}
func (e *Executor) AddMedia(ctx context.Context, urls []string) *future.Future[struct{}] {
	return e.Target.AddMedia(ctx, urls)
}
func (e *Executor) UpdateContacts(ctx context.Context, tarBytes []byte) *future.Future[struct{}] {
	return e.Target.UpdateContacts(ctx, tarBytes)
}
func (e *Executor) Screenshot(ctx context.Context, format string) *future.Future[[]byte] {
	return e.Target.Screenshot(ctx, format)
}
func (e *Executor) AccessibilityInfo(ctx context.Context, atPoint *[2]float64, nested bool) *future.Future[string] {
	return e.Target.AccessibilityInfo(ctx, atPoint, nested)
}
