package mixer

import "math"

// DefaultDeadzone is the analog magnitude below which a value is treated as
// exactly zero, absorbing stick drift and noise. Tunable via configuration.
const DefaultDeadzone = 0.1

// ApplyDeadzone forces values within the threshold to exactly zero. The
// filter is idempotent: filtering an already-filtered value is a no-op.
func ApplyDeadzone(v, threshold float64) float64 {
	if math.Abs(v) < threshold {
		return 0
	}
	return v
}

// Clamp01 clamps a single directional magnitude to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp1 clamps a combined signed axis to [-1,1].
func Clamp1(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// ResolveEdge computes the next autofocus state from the current physical
// level and the previous tick's state. Active arms only on the press
// transition and stays armed until a send clears it, so the one-shot survives
// ticks that do not send and a held button cannot re-arm it.
func ResolveEdge(pressed bool, prev Autofocus) Autofocus {
	return Autofocus{
		Pressed: pressed,
		Active:  prev.Active || (pressed && !prev.Pressed),
	}
}
