package pad

import (
	"math"
	"strings"
)

// The one non-standard layout we remap: a Switch Pro Controller exposed
// through the hid-nintendo driver without a standard mapping. Its analog
// triggers arrive as raw axes 4 and 5, the d-pad as a single composite axis,
// and the face/shoulder buttons in hardware order.
const (
	nonstdVendor  = "Vendor: 057e"
	nonstdProduct = "Product: 2009"

	nonstdTriggerLeftAxis  = 4
	nonstdTriggerRightAxis = 5
	nonstdDpadAxis         = 9

	// triggerPressThreshold is where a synthesized analog trigger counts as
	// pressed.
	triggerPressThreshold = 0.1
)

// Raw button order of the non-standard pad.
const (
	nonstdB = iota
	nonstdA
	nonstdY
	nonstdX
	nonstdL
	nonstdR
	nonstdZL
	nonstdZR
	nonstdMinus
	nonstdPlus
	nonstdHome
	nonstdCapture
	nonstdL3
	nonstdR3
)

// Normalize produces a canonical standard-layout snapshot from a raw one.
// It is a pure function over a single snapshot.
func Normalize(s Snapshot) Snapshot {
	switch {
	case !s.Standard && isNonStandardPad(s.ID):
		return remapNonStandard(s)
	case s.Standard && len(s.Axes) >= StandardAxes+2:
		return foldTrailingTriggerAxes(s)
	default:
		return s
	}
}

func isNonStandardPad(id string) bool {
	return strings.Contains(id, nonstdVendor) && strings.Contains(id, nonstdProduct)
}

func remapNonStandard(s Snapshot) Snapshot {
	out := Snapshot{
		Index:    s.Index,
		ID:       s.ID,
		Standard: true,
		Axes:     make([]float64, StandardAxes),
		Buttons:  make([]Button, StandardButtons),
	}
	copy(out.Axes, s.Axes)

	remap := map[int]int{
		ButtonA:      nonstdB,
		ButtonB:      nonstdA,
		ButtonX:      nonstdY,
		ButtonY:      nonstdX,
		ButtonLB:     nonstdL,
		ButtonRB:     nonstdR,
		ButtonSelect: nonstdMinus,
		ButtonStart:  nonstdPlus,
		ButtonL3:     nonstdL3,
		ButtonR3:     nonstdR3,
		ButtonHome:   nonstdHome,
	}
	for std, raw := range remap {
		if raw < len(s.Buttons) {
			out.Buttons[std] = s.Buttons[raw]
		}
	}

	out.Buttons[ButtonLT] = synthTrigger(axisAt(s.Axes, nonstdTriggerLeftAxis))
	out.Buttons[ButtonRT] = synthTrigger(axisAt(s.Axes, nonstdTriggerRightAxis))

	up, down, left, right := splitDpadAxis(axisAt(s.Axes, nonstdDpadAxis))
	out.Buttons[ButtonUp] = boolButton(up)
	out.Buttons[ButtonDown] = boolButton(down)
	out.Buttons[ButtonLeft] = boolButton(left)
	out.Buttons[ButtonRight] = boolButton(right)

	return out
}

// foldTrailingTriggerAxes handles the standard layout with two extra trailing
// axes carrying the analog trigger values, seen on some OS/controller
// combinations. The extra axes become the trigger buttons and the axis list
// is truncated to the standard four.
func foldTrailingTriggerAxes(s Snapshot) Snapshot {
	out := Snapshot{
		Index:    s.Index,
		ID:       s.ID,
		Standard: true,
		Axes:     make([]float64, StandardAxes),
		Buttons:  make([]Button, maxInt(len(s.Buttons), ButtonRT+1)),
	}
	copy(out.Axes, s.Axes)
	copy(out.Buttons, s.Buttons)
	out.Buttons[ButtonLT] = synthTrigger(s.Axes[StandardAxes])
	out.Buttons[ButtonRT] = synthTrigger(s.Axes[StandardAxes+1])
	return out
}

// synthTrigger converts a raw trigger axis into an analog trigger button.
// Triggers report a neutral raw value until first pressed; NaN marks never
// touched and maps to the rest value -1.
func synthTrigger(raw float64) Button {
	if math.IsNaN(raw) {
		raw = -1
	}
	v := clamp01((raw + 1) / 2)
	return Button{
		Pressed: v > triggerPressThreshold,
		Touched: v > 0,
		Value:   v,
	}
}

// splitDpadAxis partitions the composite d-pad axis into four directions.
// The axis encodes eight positions evenly spaced over [-1,1] starting at up
// and going clockwise; an idle pad reports a value beyond 1.
func splitDpadAxis(v float64) (up, down, left, right bool) {
	if math.IsNaN(v) || v > 1.05 || v < -1.05 {
		return false, false, false, false
	}
	eighth := int(math.Round((v + 1) * 3.5))
	switch eighth {
	case 0, 8:
		up = true
	case 1:
		up, right = true, true
	case 2:
		right = true
	case 3:
		down, right = true, true
	case 4:
		down = true
	case 5:
		down, left = true, true
	case 6:
		left = true
	case 7:
		up, left = true, true
	}
	return up, down, left, right
}

func axisAt(axes []float64, i int) float64 {
	if i >= len(axes) {
		return math.NaN()
	}
	return axes[i]
}

func boolButton(pressed bool) Button {
	b := Button{Pressed: pressed, Touched: pressed}
	if pressed {
		b.Value = 1
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
