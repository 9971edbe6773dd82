// Package config decodes the daemon's startup configuration record (§1.3,
// §6 "Environment/config") from a YAML file with gopkg.in/yaml.v3. There is
// no environment-variable-driven configuration: every knob lives in this
// one record.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoggerConfig selects the zap sink's verbosity and destination.
type LoggerConfig struct {
	// Level is one of "debug", "info", "warn", "error". Empty means "info".
	Level string `yaml:"level"`
	// Destination is a file path, or "stderr"/"stdout". Empty means
	// "stderr".
	Destination string `yaml:"destination"`
}

// Config is the daemon's full startup configuration.
type Config struct {
	// StorageRoot is where the storage.Manager persists installed
	// artifacts (§4.C).
	StorageRoot string `yaml:"storageRoot"`
	// TempRoot is where the workspace.Workspace extracts bundles before
	// they are ingested (§4.D).
	TempRoot string `yaml:"tempRoot"`
	// DebugserverPort is the TCP port lldb's debugserver listens on
	// (§4.F debugserverStart).
	DebugserverPort int `yaml:"debugserverPort"`
	// Logger configures the ambient zap sink (§1.2).
	Logger LoggerConfig `yaml:"logger"`
	// Target identifies the single target this daemon instance companion
	// is attached to: a device udid or simulator identifier.
	Target string `yaml:"target"`
	// Listen is the external boundary's bind address (§4.I), e.g.
	// "unix:///tmp/idb.sock" or "127.0.0.1:10882".
	Listen string `yaml:"listen"`
}

// defaults are applied to fields a YAML document leaves at their zero
// value, mirroring the field list called out in §1.3.
func (c *Config) applyDefaults() {
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Destination == "" {
		c.Logger.Destination = "stderr"
	}
	if c.DebugserverPort == 0 {
		c.DebugserverPort = 10881
	}
}

// Load reads and decodes the YAML configuration record at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.StorageRoot == "" {
		return fmt.Errorf("storageRoot is required")
	}
	if c.TempRoot == "" {
		return fmt.Errorf("tempRoot is required")
	}
	if c.Target == "" {
		return fmt.Errorf("target is required")
	}
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	return nil
}
