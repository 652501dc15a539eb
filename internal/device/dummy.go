package device

import (
	"context"

	"github.com/edaniels/golog"
)

// Dummy is a driverless stand-in that logs what it would do. Useful for
// wiring up groups before hardware arrives.
type Dummy struct {
	id        string
	name      string
	caps      map[Capability]bool
	connected bool
	logger    golog.Logger
}

func NewDummy(id, name string, caps map[Capability]bool, logger golog.Logger) *Dummy {
	return &Dummy{id: id, name: name, caps: caps, logger: logger}
}

func (d *Dummy) ID() string      { return d.id }
func (d *Dummy) Name() string    { return d.name }
func (d *Dummy) Connected() bool { return d.connected }

func (d *Dummy) Connect(context.Context) error {
	d.connected = true
	d.logger.Infow("dummy device connected", "id", d.id)
	return nil
}

func (d *Dummy) Disconnect(context.Context) error {
	d.connected = false
	d.logger.Infow("dummy device disconnected", "id", d.id)
	return nil
}

func (d *Dummy) Reconnect(ctx context.Context) error {
	return d.Connect(ctx)
}

func (d *Dummy) Apply(_ context.Context, cmd Command) error {
	cmd = Filter(cmd, d.caps)
	d.logger.Debugw("dummy command",
		"id", d.id,
		"pan", cmd.Pan, "tilt", cmd.Tilt, "roll", cmd.Roll,
		"zoom", cmd.Zoom, "focus", cmd.Focus, "autofocus", cmd.Autofocus,
	)
	return nil
}
