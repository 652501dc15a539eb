// Package server owns the device set: it executes inbound control requests,
// persists mapping edits, and pushes state to every connected client.
package server

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"camdeck/internal/config"
	"camdeck/internal/control"
	"camdeck/internal/device"
	"camdeck/internal/hub"
	"camdeck/internal/protocol"
)

// Engine runs the operation loop. One instance per server process; the
// instance token changes on every start so clients can detect a restart.
type Engine struct {
	logger   golog.Logger
	cfg      *config.Config
	cfgPath  string
	hub      *hub.Hub
	instance string

	devices []device.Device
	byID    map[string]device.Device

	local chan protocol.Request
}

func NewEngine(cfg *config.Config, cfgPath string, h *hub.Hub, logger golog.Logger) (*Engine, error) {
	e := &Engine{
		logger:   logger,
		cfg:      cfg,
		cfgPath:  cfgPath,
		hub:      h,
		instance: uuid.NewString(),
		byID:     make(map[string]device.Device),
		local:    make(chan protocol.Request, 64),
	}

	for _, id := range cfg.UsedDeviceIDs() {
		dcfg, ok := cfg.Devices[id]
		if !ok {
			return nil, errors.Errorf("device %q not defined", id)
		}
		d, err := device.FromConfig(id, dcfg, logger)
		if err != nil {
			return nil, err
		}
		e.devices = append(e.devices, d)
		e.byID[id] = d
	}

	return e, nil
}

// ConnectAll brings every configured device up. A device that fails to
// connect fails startup, matching the all-or-nothing original behavior.
func (e *Engine) ConnectAll(ctx context.Context) error {
	for _, d := range e.devices {
		if err := d.Connect(ctx); err != nil {
			e.disconnectAll(ctx)
			return errors.Wrapf(err, "connecting %s", d.ID())
		}
	}
	return nil
}

func (e *Engine) disconnectAll(ctx context.Context) {
	for _, d := range e.devices {
		if !d.Connected() {
			continue
		}
		if err := d.Disconnect(ctx); err != nil {
			e.logger.Errorw("disconnecting device", "id", d.ID(), "error", err)
		}
	}
}

// Local returns an in-process request channel with the same semantics as a
// websocket client, used by a console running in the same binary.
func (e *Engine) Local() chan<- protocol.Request { return e.local }

// State assembles the current state push.
func (e *Engine) State() protocol.State {
	devices := make(map[string]protocol.DeviceStatus, len(e.devices))
	for _, d := range e.devices {
		devices[d.ID()] = protocol.DeviceStatus{
			ID:        d.ID(),
			Name:      d.Name(),
			Connected: d.Connected(),
		}
	}
	return protocol.State{
		Instance:        e.instance,
		Groups:          e.cfg.Groups,
		Devices:         devices,
		DefaultControls: e.cfg.DefaultControls,
	}
}

// Run executes requests until the context ends, then disconnects everything.
func (e *Engine) Run(ctx context.Context) {
	e.hub.Push(e.State())

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("shutting down device engine")
			e.hub.Push(protocol.State{Instance: e.instance, Devices: map[string]protocol.DeviceStatus{}})
			e.disconnectAll(context.Background())
			return

		case req := <-e.hub.Requests():
			e.handle(ctx, req)

		case req := <-e.local:
			e.handle(ctx, req)
		}
	}
}

func (e *Engine) handle(ctx context.Context, req protocol.Request) {
	switch {
	case req.Command != nil:
		e.applyCommand(ctx, *req.Command)

	case req.Disconnect != nil:
		e.logger.Infow("disconnecting devices", "devices", req.Disconnect.Devices)
		for _, d := range e.selectDevices(req.Disconnect.Devices) {
			if err := d.Disconnect(ctx); err != nil {
				e.logger.Errorw("disconnect failed", "id", d.ID(), "error", err)
			}
		}
		e.hub.Push(e.State())

	case req.Reconnect != nil:
		e.logger.Infow("reconnecting devices", "devices", req.Reconnect.Devices)
		for _, d := range e.selectDevices(req.Reconnect.Devices) {
			if err := d.Reconnect(ctx); err != nil {
				e.logger.Errorw("reconnect failed", "id", d.ID(), "error", err)
			}
		}
		e.hub.Push(e.State())

	case req.SaveDefaultControls != nil:
		e.saveDefaultControls(*req.SaveDefaultControls)
	}
}

func (e *Engine) applyCommand(ctx context.Context, req protocol.CommandRequest) {
	cmd := device.Command{
		Pan:       req.Pan,
		Tilt:      req.Tilt,
		Roll:      req.Roll,
		Zoom:      req.Zoom,
		Focus:     req.Focus,
		Autofocus: req.Autofocus,
	}
	for _, d := range e.selectDevices(req.Devices) {
		if err := d.Apply(ctx, cmd); err != nil {
			e.logger.Errorw("applying command", "id", d.ID(), "error", err)
		}
	}
}

// saveDefaultControls persists the positional mapping list, trimmed of
// trailing all-empty entries, and re-pushes state so every session sees the
// new defaults.
func (e *Engine) saveDefaultControls(list []control.Mapping) {
	e.logger.Info("saving default control mappings")
	list = control.TruncateTrailingEmpty(list)
	if len(list) == 0 {
		e.cfg.DefaultControls = nil
	} else {
		e.cfg.DefaultControls = list
	}
	if err := config.Save(e.cfgPath, e.cfg); err != nil {
		e.logger.Errorw("persisting config", "error", err)
	}
	e.hub.Push(e.State())
}

func (e *Engine) selectDevices(ids []string) []device.Device {
	out := make([]device.Device, 0, len(ids))
	for _, id := range ids {
		if d, ok := e.byID[id]; ok {
			out = append(out, d)
		}
	}
	return out
}
