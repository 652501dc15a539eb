// Package config loads and persists the device/group configuration and the
// saved default control mappings.
package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"

	"camdeck/internal/control"
	"camdeck/internal/protocol"
)

// DeviceConfig describes one attached device. Type selects the driver.
type DeviceConfig struct {
	Type         string   `json:"type"`
	Name         string   `json:"name,omitempty"`
	Address      string   `json:"address,omitempty"`
	Protocol     string   `json:"protocol,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// Config is the persisted configuration file. DefaultControls is positional,
// aligned to the Groups order.
type Config struct {
	Groups          []protocol.Group        `json:"groups"`
	Devices         map[string]DeviceConfig `json:"devices"`
	DefaultControls []control.Mapping       `json:"defaultControls,omitempty"`
}

// Load reads and validates the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", path)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration back, pretty-printed so hand edits stay
// practical.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "writing config %q", path)
	}
	return nil
}

// Validate rejects duplicate group names and group members that reference
// devices never defined.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Groups))
	var dupes []string
	for _, g := range c.Groups {
		if seen[g.Name] {
			dupes = append(dupes, g.Name)
		}
		seen[g.Name] = true
	}
	if len(dupes) > 0 {
		return errors.Errorf("duplicate group names: %s", strings.Join(dupes, ", "))
	}

	var undefined []string
	for _, g := range c.Groups {
		for _, id := range g.Devices {
			if _, ok := c.Devices[id]; !ok {
				undefined = append(undefined, id)
			}
		}
	}
	if len(undefined) > 0 {
		return errors.Errorf("devices not defined: %s", strings.Join(undefined, ", "))
	}
	return nil
}

// UsedDeviceIDs returns each device referenced by any group, first-use order,
// deduplicated.
func (c *Config) UsedDeviceIDs() []string {
	var ids []string
	seen := make(map[string]bool)
	for _, g := range c.Groups {
		for _, id := range g.Devices {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// GroupNames returns the configured group order.
func (c *Config) GroupNames() []string {
	names := make([]string, len(c.Groups))
	for i, g := range c.Groups {
		names[i] = g.Name
	}
	return names
}
