package pad

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/edaniels/golog"
	"github.com/jupiterrider/purego-sdl3/sdl"
)

const sdlPollDelayNS = 16_000_000 // ~60Hz

// SDLProvider reads every connected joystick through the SDL3 Joystick API
// and exposes index-stable snapshots. Slots follow browser Gamepad API
// semantics: a pad keeps its slot for the whole session and disconnecting
// leaves a hole.
type SDLProvider struct {
	logger golog.Logger

	mu    sync.RWMutex
	slots []*Snapshot

	joysticks map[sdl.JoystickID]*sdlJoystick
}

type sdlJoystick struct {
	joystick *sdl.Joystick
	slot     int
	name     string
	id       string
	standard bool
}

func NewSDLProvider(logger golog.Logger) *SDLProvider {
	return &SDLProvider{
		logger:    logger,
		joysticks: make(map[sdl.JoystickID]*sdlJoystick),
	}
}

// Poll returns the latest raw snapshot per slot. Never blocks.
func (p *SDLProvider) Poll() []*Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Snapshot, len(p.slots))
	for i, s := range p.slots {
		if s == nil {
			continue
		}
		c := *s
		c.Axes = append([]float64(nil), s.Axes...)
		c.Buttons = append([]Button(nil), s.Buttons...)
		out[i] = &c
	}
	return out
}

// Run owns the SDL event and polling loop. Must be called from a goroutine
// with the OS thread locked; returns when ctx is cancelled.
func (p *SDLProvider) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		p.logger.Errorf("SDL init failed: %s", sdl.GetError())
		return
	}
	defer sdl.Quit()

	p.logger.Debug("SDL3 joystick subsystem initialized")

	for _, id := range sdl.GetJoysticks() {
		p.openJoystick(id)
	}

	for {
		select {
		case <-ctx.Done():
			p.closeAll()
			return
		default:
		}

		p.processEvents()
		p.refresh()
		sdl.DelayNS(sdlPollDelayNS)
	}
}

func (p *SDLProvider) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			p.openJoystick(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			p.removeJoystick(event.JDevice().Which)
		}
	}
}

func (p *SDLProvider) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := p.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		p.logger.Warnf("failed to open joystick %d: %s", instanceID, sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendor := sdl.GetJoystickVendor(js)
	product := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	id := fmt.Sprintf("%s (Vendor: %04x Product: %04x)", name, vendor, product)

	info := &sdlJoystick{
		joystick: js,
		name:     name,
		id:       id,
		standard: !isNonStandardPad(id),
	}

	p.mu.Lock()
	info.slot = p.claimSlot()
	p.mu.Unlock()
	p.joysticks[jsID] = info

	p.logger.Infow("joystick connected",
		"name", name,
		"slot", info.slot,
		"axes", sdl.GetNumJoystickAxes(js),
		"buttons", sdl.GetNumJoystickButtons(js),
	)
}

// claimSlot returns the first free slot, growing the slot list if all are
// taken. Caller holds p.mu.
func (p *SDLProvider) claimSlot() int {
	taken := make(map[int]bool, len(p.joysticks))
	for _, j := range p.joysticks {
		taken[j.slot] = true
	}
	for i := 0; i < len(p.slots); i++ {
		if !taken[i] {
			return i
		}
	}
	p.slots = append(p.slots, nil)
	return len(p.slots) - 1
}

func (p *SDLProvider) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := p.joysticks[instanceID]
	if !exists {
		return
	}

	p.logger.Infow("joystick disconnected", "name", info.name, "slot", info.slot)
	sdl.CloseJoystick(info.joystick)
	delete(p.joysticks, instanceID)

	p.mu.Lock()
	p.slots[info.slot] = nil
	p.mu.Unlock()
}

func (p *SDLProvider) closeAll() {
	for id, info := range p.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(p.joysticks, id)
	}
	p.mu.Lock()
	p.slots = nil
	p.mu.Unlock()
}

func (p *SDLProvider) refresh() {
	for _, info := range p.joysticks {
		if !sdl.JoystickConnected(info.joystick) {
			continue
		}
		snap := p.readJoystick(info)
		p.mu.Lock()
		p.slots[info.slot] = snap
		p.mu.Unlock()
	}
}

func (p *SDLProvider) readJoystick(info *sdlJoystick) *Snapshot {
	js := info.joystick

	numAxes := int(sdl.GetNumJoystickAxes(js))
	axes := make([]float64, numAxes)
	for i := 0; i < numAxes; i++ {
		axes[i] = normalizeRawAxis(sdl.GetJoystickAxis(js, int32(i)))
	}

	numButtons := int(sdl.GetNumJoystickButtons(js))
	buttons := make([]Button, numButtons)
	for i := 0; i < numButtons; i++ {
		pressed := sdl.GetJoystickButton(js, int32(i))
		buttons[i] = Button{Pressed: pressed, Touched: pressed}
		if pressed {
			buttons[i].Value = 1
		}
	}

	// SDL reports the hat separately; a standard-layout pad carries it as the
	// four d-pad buttons.
	if info.standard && sdl.GetNumJoystickHats(js) > 0 {
		hat := sdl.GetJoystickHat(js, 0)
		for len(buttons) < StandardButtons {
			buttons = append(buttons, Button{})
		}
		buttons[ButtonUp] = boolButton(hat&0x01 != 0)
		buttons[ButtonRight] = boolButton(hat&0x02 != 0)
		buttons[ButtonDown] = boolButton(hat&0x04 != 0)
		buttons[ButtonLeft] = boolButton(hat&0x08 != 0)
	}

	return &Snapshot{
		Index:    info.slot,
		ID:       info.id,
		Standard: info.standard,
		Axes:     axes,
		Buttons:  buttons,
	}
}

func normalizeRawAxis(raw int16) float64 {
	v := float64(raw) / 32767
	if v < -1 {
		v = -1
	}
	return v
}
