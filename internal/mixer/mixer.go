package mixer

import (
	"sort"

	"camdeck/internal/control"
	"camdeck/internal/pad"
)

// Mixer turns a group's effective mapping and the current pad snapshots into
// one ControlState per tick.
type Mixer struct {
	deadzone float64
}

func New(deadzone float64) *Mixer {
	if deadzone <= 0 {
		deadzone = DefaultDeadzone
	}
	return &Mixer{deadzone: deadzone}
}

// inputKey identifies a physical input for chord suppression. The multiplier
// sign is deliberately not part of the key: two oppositely-signed bindings on
// the same axis suppress each other when their chord lengths differ. That
// matches the established behavior of saved mappings in the field, so it
// stays, quirk and all.
type inputKey struct {
	pad   int
	kind  control.Kind
	index int
}

type candidate struct {
	action  control.Action
	binding control.Binding
	pos     int // index within the action's binding list
	ord     int // collection order, for stable sorting
}

// slot identifies a candidate across the suppression and evaluation phases.
type slot struct {
	action control.Action
	pos    int
}

// MixRaw computes the mixed state without edge tracking: continuous fields
// plus the raw autofocus level. Missing pads, out-of-range indices and
// unsatisfied chords all contribute zero, never an error.
func (m *Mixer) MixRaw(mapping control.Mapping, pads []*pad.Snapshot) ControlState {
	suppressed := m.resolveChords(mapping, pads)

	val := func(a control.Action) float64 {
		for _, c := range m.ranked(mapping, a) {
			if suppressed[slot{c.action, c.pos}] {
				continue
			}
			if !m.modifiersHeld(c.binding, pads) {
				continue
			}
			v := Clamp01(ApplyDeadzone(m.read(c.binding, pads), m.deadzone) * c.binding.Multiplier)
			if v != 0 {
				return v
			}
		}
		return 0
	}

	state := ControlState{
		Pan:   val(control.PanR) - val(control.PanL),
		Tilt:  val(control.TiltU) - val(control.TiltD),
		Roll:  val(control.RollR) - val(control.RollL),
		Zoom:  val(control.ZoomI) - val(control.ZoomO),
		Focus: val(control.FocusF) - val(control.FocusN),
	}

	for _, c := range m.ranked(mapping, control.FocusA) {
		if suppressed[slot{c.action, c.pos}] {
			continue
		}
		if !m.modifiersHeld(c.binding, pads) {
			continue
		}
		if ApplyDeadzone(m.read(c.binding, pads), m.deadzone) != 0 {
			state.Autofocus.Pressed = true
			break
		}
	}

	return state
}

// Mix is MixRaw plus the autofocus edge, computed against the previous
// tick's state for the same group.
func (m *Mixer) Mix(mapping control.Mapping, pads []*pad.Snapshot, prev ControlState) ControlState {
	state := m.MixRaw(mapping, pads)
	state.Autofocus = ResolveEdge(state.Autofocus.Pressed, prev.Autofocus)
	return state
}

// resolveChords is the two-phase conflict scan: collect every candidate
// binding grouped by physical input, then per input let the most-specific
// actuated chord win the tick and suppress everything less specific. This
// keeps a modified
// and an unmodified binding on the same physical press from double-firing.
func (m *Mixer) resolveChords(mapping control.Mapping, pads []*pad.Snapshot) map[slot]bool {
	byInput := make(map[inputKey][]candidate)
	ord := 0
	for _, a := range control.Actions {
		for i, b := range mapping[a] {
			k := inputKey{pad: b.Pad, kind: b.Kind, index: b.Index}
			byInput[k] = append(byInput[k], candidate{action: a, binding: b, pos: i, ord: ord})
			ord++
		}
	}

	suppressed := make(map[slot]bool)
	for _, cands := range byInput {
		if len(cands) < 2 {
			continue
		}
		sort.SliceStable(cands, func(i, j int) bool {
			mi, mj := len(cands[i].binding.Modifiers), len(cands[j].binding.Modifiers)
			if mi != mj {
				return mi > mj
			}
			return cands[i].ord < cands[j].ord
		})
		winner := -1
		for i, c := range cands {
			if m.actuated(c.binding, pads) {
				winner = i
				break
			}
		}
		if winner < 0 {
			continue
		}
		// Only strictly less-specific chords lose the input; two bindings of
		// equal specificity (e.g. a signed axis pair) coexist.
		won := len(cands[winner].binding.Modifiers)
		for _, c := range cands {
			if len(c.binding.Modifiers) < won {
				suppressed[slot{c.action, c.pos}] = true
			}
		}
	}
	return suppressed
}

// ranked returns an action's bindings in evaluation order: chorded bindings
// ahead of unmodified ones, declaration order otherwise.
func (m *Mixer) ranked(mapping control.Mapping, a control.Action) []candidate {
	bs := mapping[a]
	out := make([]candidate, len(bs))
	for i, b := range bs {
		out[i] = candidate{action: a, binding: b, pos: i, ord: i}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].binding.Modifiers) > len(out[j].binding.Modifiers)
	})
	return out
}

// actuated reports whether a binding currently fires: all modifiers held and
// the deadzone-filtered raw magnitude nonzero.
func (m *Mixer) actuated(b control.Binding, pads []*pad.Snapshot) bool {
	if !m.modifiersHeld(b, pads) {
		return false
	}
	return ApplyDeadzone(m.read(b, pads), m.deadzone) != 0
}

func (m *Mixer) modifiersHeld(b control.Binding, pads []*pad.Snapshot) bool {
	for _, mod := range b.Modifiers {
		if ApplyDeadzone(m.read(mod, pads), m.deadzone) == 0 {
			return false
		}
	}
	return true
}

// read returns the raw value behind a binding, zero for anything that does
// not resolve to a live input.
func (m *Mixer) read(b control.Binding, pads []*pad.Snapshot) float64 {
	if b.Pad < 0 || b.Pad >= len(pads) || pads[b.Pad] == nil {
		return 0
	}
	p := pads[b.Pad]
	switch b.Kind {
	case control.KindAxis:
		if b.Index < 0 || b.Index >= len(p.Axes) {
			return 0
		}
		return p.Axes[b.Index]
	case control.KindButton:
		if b.Index < 0 || b.Index >= len(p.Buttons) {
			return 0
		}
		return p.Buttons[b.Index].Value
	}
	return 0
}
