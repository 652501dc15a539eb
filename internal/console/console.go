// Package console runs the input pipeline: poll, normalize, mix, edge-track,
// dispatch. One goroutine owns all of it; nothing in the loop blocks.
package console

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"

	"camdeck/internal/capture"
	"camdeck/internal/control"
	"camdeck/internal/mixer"
	"camdeck/internal/pad"
	"camdeck/internal/protocol"
	"camdeck/internal/sched"
	"camdeck/internal/touch"
)

// captureInterval is the cadence of the secondary remap-capture poller.
const captureInterval = 100 * time.Millisecond

// Channel is the console's view of the control channel.
type Channel interface {
	sched.Sink
	States() <-chan protocol.State
}

// Options configures a console.
type Options struct {
	Provider   pad.Provider // nil disables gamepad input
	Clock      clock.Clock
	Deadzone   float64
	PressLatch time.Duration
	PollHz     float64
	SendHz     float64
}

// Console owns the per-session pipeline state. All fields are confined to
// the Run goroutine; interaction from other goroutines goes through the
// calls channel.
type Console struct {
	logger  golog.Logger
	channel Channel
	clock   clock.Clock

	provider   pad.Provider
	table      *control.Table
	mixer      *mixer.Mixer
	sched      *sched.Scheduler
	pressLatch time.Duration
	pollHz     float64

	groups   []protocol.Group
	instance string
	panels   map[string]*touch.Panel
	prev     map[string]mixer.ControlState

	listener      *capture.Listener
	captureTicker *clock.Ticker
	captureGroup  string
	captureAction control.Action

	calls chan func()
}

func New(channel Channel, opts Options, logger golog.Logger) *Console {
	c := opts.Clock
	if c == nil {
		c = clock.New()
	}
	pollHz := opts.PollHz
	if pollHz <= 0 {
		pollHz = 60
	}
	return &Console{
		logger:     logger,
		channel:    channel,
		clock:      c,
		provider:   opts.Provider,
		table:      control.NewTable(nil),
		mixer:      mixer.New(opts.Deadzone),
		sched:      sched.New(c, channel, opts.SendHz, logger),
		pressLatch: opts.PressLatch,
		pollHz:     pollHz,
		panels:     make(map[string]*touch.Panel),
		prev:       make(map[string]mixer.ControlState),
		calls:      make(chan func(), 16),
	}
}

// Run drives the loop until the context ends.
func (c *Console) Run(ctx context.Context) {
	ticker := c.clock.Ticker(time.Duration(float64(time.Second) / c.pollHz))
	defer ticker.Stop()

	for {
		// The capture poller only exists while a capture is armed.
		var captureC <-chan time.Time
		if c.captureTicker != nil {
			captureC = c.captureTicker.C
		}

		select {
		case <-ctx.Done():
			c.stopCapture()
			return

		case state := <-c.channel.States():
			c.applyState(state)

		case fn := <-c.calls:
			fn()

		case <-captureC:
			c.scanCapture()

		case <-ticker.C:
			// Ordinary mixing is suspended while a binding capture is
			// open, so one physical press cannot both drive motion and
			// get captured.
			if c.listener != nil {
				continue
			}
			c.tick()
		}
	}
}

// Do runs fn on the console goroutine; the way UI-facing surfaces reach the
// pipeline without sharing state.
func (c *Console) Do(fn func()) {
	c.calls <- fn
}

func (c *Console) tick() {
	var pads []*pad.Snapshot
	if c.provider != nil {
		pads = pad.NormalizeAll(c.provider.Poll())
	}

	for _, g := range c.groups {
		state := c.mixer.MixRaw(c.table.Effective(g.Name), pads)
		if panel, ok := c.panels[g.Name]; ok {
			state = panel.Overlay(state)
		}
		state.Autofocus = mixer.ResolveEdge(state.Autofocus.Pressed, c.prev[g.Name].Autofocus)
		c.prev[g.Name] = c.sched.Tick(g.Name, g.Devices, state)
	}
}

// applyState ingests a server state push. A changed instance token means the
// server restarted: the whole session state is rebuilt from scratch rather
// than reconciled.
func (c *Console) applyState(state protocol.State) {
	if c.instance != "" && c.instance != state.Instance {
		c.logger.Infow("server instance changed, reloading session")
		c.sched.Reset()
		c.prev = make(map[string]mixer.ControlState)
		c.panels = make(map[string]*touch.Panel)
		c.table = control.NewTable(nil)
		c.stopCapture()
	}
	c.instance = state.Instance
	c.groups = state.Groups
	c.table.SetDefault(control.UnmapDefaultControls(state.GroupNames(), state.DefaultControls))
}

// Table exposes the binding table for mapping edits.
func (c *Console) Table() *control.Table { return c.table }

// Panel returns the virtual control panel for a group, creating it on first
// use.
func (c *Console) Panel(group string) *touch.Panel {
	p, ok := c.panels[group]
	if !ok {
		p = touch.NewPanel(c.clock, c.pressLatch)
		c.panels[group] = p
	}
	return p
}

// HandleInput accepts a console-bound request from the control channel and
// applies it on the console goroutine. Safe to call from any goroutine.
func (c *Console) HandleInput(req protocol.Request) {
	c.Do(func() { c.applyInput(req) })
}

func (c *Console) applyInput(req protocol.Request) {
	switch {
	case req.Panel != nil:
		c.applyPanel(*req.Panel)
	case req.BeginCapture != nil:
		c.BeginCapture(req.BeginCapture.Group, req.BeginCapture.Action)
	case req.CancelCapture != nil:
		c.CancelCapture()
	}
}

// applyPanel feeds one gesture event into the group's virtual panel, so
// browser touch input flows through the same overlay, deadzone and dispatch
// path as gamepad input.
func (c *Console) applyPanel(ev protocol.PanelEvent) {
	p := c.Panel(ev.Group)

	if ev.Control == "af" {
		switch ev.Event {
		case "press":
			p.AF.Press()
		case "release":
			p.AF.Release()
		}
		return
	}

	var stick *touch.Stick
	switch ev.Control {
	case "panTilt":
		stick = &p.PanTilt
	case "zoom":
		stick = &p.Zoom.Stick
	case "focus":
		stick = &p.Focus.Stick
	default:
		c.logger.Debugw("unknown panel control", "control", ev.Control)
		return
	}

	pt := touch.Point{X: ev.X, Y: ev.Y}
	switch ev.Event {
	case "start":
		stick.Start(ev.Pointer, pt, ev.WidgetW, ev.WidgetH, ev.ContainerW, ev.ContainerH)
	case "move":
		stick.Move(ev.Pointer, pt)
	case "end", "cancel":
		stick.End(ev.Pointer)
	}
}

// BeginCapture suspends mixing and waits for a fresh physical activation to
// assign to the given action.
func (c *Console) BeginCapture(group string, action control.Action) {
	var pads []*pad.Snapshot
	if c.provider != nil {
		pads = pad.NormalizeAll(c.provider.Poll())
	}
	c.listener = capture.NewListener(pads)
	c.captureGroup = group
	c.captureAction = action
	if c.captureTicker == nil {
		c.captureTicker = c.clock.Ticker(captureInterval)
	}
}

// CancelCapture abandons an open capture and resumes mixing.
func (c *Console) CancelCapture() { c.stopCapture() }

func (c *Console) stopCapture() {
	c.listener = nil
	if c.captureTicker != nil {
		c.captureTicker.Stop()
		c.captureTicker = nil
	}
}

// Capturing reports whether a binding capture is open.
func (c *Console) Capturing() bool { return c.listener != nil }

func (c *Console) scanCapture() {
	if c.provider == nil {
		return
	}
	pads := pad.NormalizeAll(c.provider.Poll())
	b, ok := c.listener.Scan(pads)
	if !ok {
		return
	}
	c.logger.Infow("captured binding",
		"group", c.captureGroup, "action", c.captureAction,
		"pad", b.Pad, "kind", b.Kind, "index", b.Index,
	)
	c.table.Add(c.captureGroup, c.captureAction, b)
	c.stopCapture()
}

// SaveDefaults sends the effective mappings as the new persisted defaults,
// positionally aligned to the current group order.
func (c *Console) SaveDefaults() {
	names := make([]string, len(c.groups))
	effective := control.Mappings{}
	for i, g := range c.groups {
		names[i] = g.Name
		effective[g.Name] = c.table.Effective(g.Name)
	}
	list := control.MapDefaultControls(names, effective)
	if err := c.channel.Send(protocol.Request{SaveDefaultControls: &list}); err != nil {
		c.logger.Warnw("saving defaults dropped", "error", err)
	}
}

// DisconnectDevices asks the server to drop the given devices.
func (c *Console) DisconnectDevices(ids []string) {
	c.sendDeviceRequest(protocol.Request{Disconnect: &protocol.DeviceListRequest{Devices: ids}})
}

// ReconnectDevices asks the server to bring the given devices back.
func (c *Console) ReconnectDevices(ids []string) {
	c.sendDeviceRequest(protocol.Request{Reconnect: &protocol.DeviceListRequest{Devices: ids}})
}

func (c *Console) sendDeviceRequest(req protocol.Request) {
	if err := c.channel.Send(req); err != nil {
		c.logger.Warnw("device request dropped", "error", err)
	}
}
