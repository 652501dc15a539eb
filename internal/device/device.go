// Package device defines the uniform interface the server applies mixed
// motion commands through, plus the built-in drivers.
package device

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"camdeck/internal/config"
)

// Command is one motion command as applied to hardware. Continuous fields
// are in [-1,1]; Autofocus triggers a one-shot autofocus when true.
type Command struct {
	Pan       float64
	Tilt      float64
	Roll      float64
	Zoom      float64
	Focus     float64
	Autofocus bool
}

// Capability names one thing a device can do; commands are filtered to the
// device's capability set before being applied.
type Capability string

const (
	CapPTR       Capability = "ptr"
	CapZoom      Capability = "zoom"
	CapFocus     Capability = "focus"
	CapAutofocus Capability = "autofocus"
)

// AllCapabilities is the default set for devices that declare none.
func AllCapabilities() map[Capability]bool {
	return map[Capability]bool{CapPTR: true, CapZoom: true, CapFocus: true, CapAutofocus: true}
}

// ParseCapabilities converts the config's capability names, falling back to
// the full set when the list is absent.
func ParseCapabilities(names []string) map[Capability]bool {
	if len(names) == 0 {
		return AllCapabilities()
	}
	caps := make(map[Capability]bool, len(names))
	for _, n := range names {
		caps[Capability(n)] = true
	}
	return caps
}

// Filter zeroes the fields a device has no capability for.
func Filter(cmd Command, caps map[Capability]bool) Command {
	if !caps[CapPTR] {
		cmd.Pan, cmd.Tilt, cmd.Roll = 0, 0, 0
	}
	if !caps[CapZoom] {
		cmd.Zoom = 0
	}
	if !caps[CapFocus] {
		cmd.Focus = 0
	}
	if !caps[CapAutofocus] {
		cmd.Autofocus = false
	}
	return cmd
}

// Device is one attached piece of controllable hardware.
type Device interface {
	ID() string
	Name() string
	Connected() bool

	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Reconnect(ctx context.Context) error

	// Apply sends one motion command. Implementations must not block the
	// caller for longer than a short write.
	Apply(ctx context.Context, cmd Command) error
}

// FromConfig builds a device from its configuration entry.
func FromConfig(id string, cfg config.DeviceConfig, logger golog.Logger) (Device, error) {
	name := cfg.Name
	if name == "" {
		name = id
	}
	switch cfg.Type {
	case "dummy":
		return NewDummy(id, name, ParseCapabilities(cfg.Capabilities), logger), nil
	case "visca":
		return NewVisca(id, cfg, logger)
	default:
		return nil, errors.Errorf("unknown device type %q for %q", cfg.Type, id)
	}
}
