// Package touch adapts on-screen joystick drags and tap-and-hold buttons into
// the same [-1,1] signal space as pad axes.
package touch

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
)

// MousePointer is the reserved identifier for the synthetic mouse pointer;
// touches use their platform-assigned identifiers.
const MousePointer = -1

// DefaultPressLatch is the minimum duration a tapped virtual button stays
// pressed, so at least one poll tick observes a tap shorter than the poll
// interval. Tunable via configuration.
const DefaultPressLatch = 100 * time.Millisecond

// Point is a position in widget coordinates.
type Point struct {
	X float64
	Y float64
}

// Stick is a combined two-axis virtual joystick. The clamp region is
// circular: magnitude is clamped radially while direction is preserved.
type Stick struct {
	active  bool
	pointer int
	origin  Point
	current Point
	rng     float64
}

// Start begins a drag. The range is fixed for the whole drag as half the
// smaller dimension of the widget and its container, covering touch and
// mouse uniformly. Starting while a previous drag is still releasing keeps
// the prior origin offset so the thumb position does not snap back.
func (s *Stick) Start(pointer int, p Point, widgetW, widgetH, containerW, containerH float64) {
	s.rng = halfSmallest(widgetW, widgetH, containerW, containerH)
	if s.active {
		s.origin = Point{
			X: p.X + (s.origin.X - s.current.X),
			Y: p.Y + (s.origin.Y - s.current.Y),
		}
	} else {
		s.origin = p
	}
	s.pointer = pointer
	s.current = p
	s.active = true
}

// Move updates the drag position. Moves from a pointer that does not own the
// drag are ignored.
func (s *Stick) Move(pointer int, p Point) {
	if !s.active || pointer != s.pointer {
		return
	}
	s.current = p
}

// End releases the drag; the stick returns to rest.
func (s *Stick) End(pointer int) {
	if !s.active || pointer != s.pointer {
		return
	}
	s.active = false
}

// Value decomposes the drag into (x, y) with y positive upward.
func (s *Stick) Value() (float64, float64) {
	if !s.active || s.rng <= 0 {
		return 0, 0
	}
	dx := s.current.X - s.origin.X
	dy := s.current.Y - s.origin.Y
	mag := math.Min(1, math.Hypot(dx, dy)/s.rng)
	ang := math.Atan2(-dy, dx)
	return mag * math.Cos(ang), mag * math.Sin(ang)
}

// AxisStick is a single-axis virtual stick (zoom, focus): vertical drag only,
// up positive.
type AxisStick struct {
	Stick
}

// Value maps the vertical drag offset to [-1,1].
func (s *AxisStick) Value() float64 {
	if !s.active || s.rng <= 0 {
		return 0
	}
	v := -(s.current.Y - s.origin.Y) / s.rng
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// HoldButton is a virtual momentary button that latches pressed for a
// minimum duration per tap.
type HoldButton struct {
	clock clock.Clock
	latch time.Duration

	held  bool
	until time.Time
}

func NewHoldButton(c clock.Clock, latch time.Duration) *HoldButton {
	if latch <= 0 {
		latch = DefaultPressLatch
	}
	return &HoldButton{clock: c, latch: latch}
}

// Press marks the button down and arms the latch.
func (b *HoldButton) Press() {
	b.held = true
	b.until = b.clock.Now().Add(b.latch)
}

// Release marks the button up; the latch keeps Pressed true until it
// expires.
func (b *HoldButton) Release() {
	b.held = false
}

// Pressed reports the latched button level.
func (b *HoldButton) Pressed() bool {
	return b.held || b.clock.Now().Before(b.until)
}

func halfSmallest(vals ...float64) float64 {
	min := math.Inf(1)
	for _, v := range vals {
		if v > 0 && v < min {
			min = v
		}
	}
	if math.IsInf(min, 1) {
		return 0
	}
	return min / 2
}
