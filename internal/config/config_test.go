package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"camdeck/internal/control"
	"camdeck/internal/protocol"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	test.That(t, os.WriteFile(path, []byte(content), 0o644), test.ShouldBeNil)
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTemp(t, `{
		"groups": [{"name": "main", "devices": ["cam1"]}],
		"devices": {"cam1": {"type": "visca", "name": "Stage Left", "address": "10.0.0.5:52381", "protocol": "udp"}}
	}`)

	cfg, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Groups, test.ShouldHaveLength, 1)
	test.That(t, cfg.Devices["cam1"].Name, test.ShouldEqual, "Stage Left")
	test.That(t, cfg.GroupNames(), test.ShouldResemble, []string{"main"})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestValidateDuplicateGroups(t *testing.T) {
	cfg := &Config{
		Groups: []protocol.Group{{Name: "main"}, {Name: "main"}},
	}
	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate group names")
	test.That(t, err.Error(), test.ShouldContainSubstring, "main")
}

func TestValidateUndefinedDevices(t *testing.T) {
	cfg := &Config{
		Groups:  []protocol.Group{{Name: "main", Devices: []string{"cam1", "ghost"}}},
		Devices: map[string]DeviceConfig{"cam1": {Type: "dummy"}},
	}
	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "ghost")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := &Config{
		Groups:  []protocol.Group{{Name: "main", Devices: []string{"cam1"}}},
		Devices: map[string]DeviceConfig{"cam1": {Type: "dummy", Name: "Bench"}},
		DefaultControls: []control.Mapping{{
			control.PanR: {{Pad: 0, Kind: control.KindAxis, Index: 0, Multiplier: 1}},
		}},
	}

	test.That(t, Save(path, cfg), test.ShouldBeNil)
	back, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.Groups, test.ShouldResemble, cfg.Groups)
	test.That(t, back.Devices, test.ShouldResemble, cfg.Devices)
	test.That(t, back.DefaultControls, test.ShouldHaveLength, 1)
	test.That(t, back.DefaultControls[0].Equal(cfg.DefaultControls[0]), test.ShouldBeTrue)
}

func TestUsedDeviceIDsDeduplicates(t *testing.T) {
	cfg := &Config{
		Groups: []protocol.Group{
			{Name: "a", Devices: []string{"cam1", "cam2"}},
			{Name: "b", Devices: []string{"cam2", "cam3"}},
		},
	}
	test.That(t, cfg.UsedDeviceIDs(), test.ShouldResemble, []string{"cam1", "cam2", "cam3"})
}
