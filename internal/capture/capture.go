// Package capture watches for a fresh physical input activation while the
// user is assigning a new binding. It is armed with a baseline of inputs
// already actuated, so held modifiers and drifting axes cannot be captured
// by accident; ordinary mixing is suspended while a listener is armed.
package capture

import (
	"math"

	"camdeck/internal/control"
	"camdeck/internal/pad"
)

// activationThreshold is how far an axis must travel before it counts as a
// deliberate activation rather than drift.
const activationThreshold = 0.5

type inputKey struct {
	pad   int
	kind  control.Kind
	index int
}

// Listener scans pad snapshots for the first input that was not actuated at
// arm time.
type Listener struct {
	baseline map[inputKey]bool
}

// NewListener arms a listener against the current snapshots.
func NewListener(pads []*pad.Snapshot) *Listener {
	return &Listener{baseline: actuatedSet(pads)}
}

// Scan reports the first fresh activation as a candidate binding, with the
// buttons currently held (and already held at arm time) attached as
// modifiers. Returns false until something fresh shows up.
func (l *Listener) Scan(pads []*pad.Snapshot) (control.Binding, bool) {
	for i, p := range pads {
		if p == nil {
			continue
		}
		for j, b := range p.Buttons {
			k := inputKey{pad: i, kind: control.KindButton, index: j}
			if b.Pressed && !l.baseline[k] {
				return control.Binding{
					Pad:        i,
					Kind:       control.KindButton,
					Index:      j,
					Multiplier: 1,
					Modifiers:  l.heldModifiers(pads, k),
				}, true
			}
		}
		for j, v := range p.Axes {
			k := inputKey{pad: i, kind: control.KindAxis, index: j}
			if math.Abs(v) > activationThreshold && !l.baseline[k] {
				mult := 1.0
				if v < 0 {
					mult = -1
				}
				return control.Binding{
					Pad:        i,
					Kind:       control.KindAxis,
					Index:      j,
					Multiplier: mult,
					Modifiers:  l.heldModifiers(pads, k),
				}, true
			}
		}
	}
	return control.Binding{}, false
}

// heldModifiers collects the buttons held through the whole capture: down at
// arm time and still down at activation. Axes never become modifiers; drift
// makes them unreliable chord gates.
func (l *Listener) heldModifiers(pads []*pad.Snapshot, fresh inputKey) []control.Binding {
	var mods []control.Binding
	for i, p := range pads {
		if p == nil {
			continue
		}
		for j, b := range p.Buttons {
			k := inputKey{pad: i, kind: control.KindButton, index: j}
			if k == fresh || !b.Pressed || !l.baseline[k] {
				continue
			}
			mods = append(mods, control.Binding{
				Pad:        i,
				Kind:       control.KindButton,
				Index:      j,
				Multiplier: 1,
			})
		}
	}
	return mods
}

func actuatedSet(pads []*pad.Snapshot) map[inputKey]bool {
	set := make(map[inputKey]bool)
	for i, p := range pads {
		if p == nil {
			continue
		}
		for j, b := range p.Buttons {
			if b.Pressed {
				set[inputKey{pad: i, kind: control.KindButton, index: j}] = true
			}
		}
		for j, v := range p.Axes {
			if math.Abs(v) > activationThreshold {
				set[inputKey{pad: i, kind: control.KindAxis, index: j}] = true
			}
		}
	}
	return set
}
