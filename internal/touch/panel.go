package touch

import (
	"time"

	"github.com/benbjohnson/clock"

	"camdeck/internal/mixer"
)

// Panel is the set of virtual controls for one device group: a combined
// pan/tilt stick, single-axis zoom and focus sticks, and a tap-and-hold
// autofocus button.
type Panel struct {
	PanTilt Stick
	Zoom    AxisStick
	Focus   AxisStick
	AF      *HoldButton
}

func NewPanel(c clock.Clock, pressLatch time.Duration) *Panel {
	return &Panel{AF: NewHoldButton(c, pressLatch)}
}

// Overlay folds the panel's current values into a mixed state: continuous
// fields add and re-clamp, the autofocus level ORs. The edge is resolved by
// the caller on the combined level.
func (p *Panel) Overlay(s mixer.ControlState) mixer.ControlState {
	x, y := p.PanTilt.Value()
	s.Pan = mixer.Clamp1(s.Pan + x)
	s.Tilt = mixer.Clamp1(s.Tilt + y)
	s.Zoom = mixer.Clamp1(s.Zoom + p.Zoom.Value())
	s.Focus = mixer.Clamp1(s.Focus + p.Focus.Value())
	s.Autofocus.Pressed = s.Autofocus.Pressed || p.AF.Pressed()
	return s
}
