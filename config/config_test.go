package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "idb.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
storageRoot: /var/idb/storage
tempRoot: /var/idb/tmp
target: 00008030-ABCDEF
listen: "127.0.0.1:10882"
`)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	want := &Config{
		StorageRoot:     "/var/idb/storage",
		TempRoot:        "/var/idb/tmp",
		DebugserverPort: 10881,
		Logger:          LoggerConfig{Level: "info", Destination: "stderr"},
		Target:          "00008030-ABCDEF",
		Listen:          "127.0.0.1:10882",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadHonorsExplicitFields(t *testing.T) {
	path := writeConfig(t, `
storageRoot: /var/idb/storage
tempRoot: /var/idb/tmp
debugserverPort: 12345
logger:
  level: debug
  destination: /var/log/idb.log
target: simulator-1
listen: "unix:///tmp/idb.sock"
`)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if got.DebugserverPort != 12345 {
		t.Errorf("DebugserverPort = %d; want 12345", got.DebugserverPort)
	}
	if got.Logger.Level != "debug" || got.Logger.Destination != "/var/log/idb.log" {
		t.Errorf("Logger = %+v; want debug/file overrides", got.Logger)
	}
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	for name, body := range map[string]string{
		"missingStorageRoot": "tempRoot: /tmp\ntarget: x\nlisten: x\n",
		"missingTempRoot":    "storageRoot: /s\ntarget: x\nlisten: x\n",
		"missingTarget":      "storageRoot: /s\ntempRoot: /tmp\nlisten: x\n",
		"missingListen":      "storageRoot: /s\ntempRoot: /tmp\ntarget: x\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, body)
			if _, err := Load(path); err == nil {
				t.Fatal("Load() = nil error; want validation failure")
			}
		})
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Fatal("Load() = nil error; want read failure")
	}
}
