// Package control models the binding table: the mapping from logical camera
// actions to physical pad inputs, including chorded (modifier-gated)
// bindings and the persisted-vs-session override split.
package control

// Kind tags a binding as reading an axis or a button. The values match the
// wire format of saved mappings.
type Kind string

const (
	KindAxis   Kind = "axes"
	KindButton Kind = "buttons"
)

// Binding is one atomic input reference: a single axis or button on one pad,
// optionally gated by modifier bindings that must be held concurrently.
// Bindings are immutable value types once created.
type Binding struct {
	Pad        int       `json:"padIndex"`
	Kind       Kind      `json:"type"`
	Index      int       `json:"inputIndex"`
	Multiplier float64   `json:"multiplier"`
	Modifiers  []Binding `json:"modifiers,omitempty"`
}

// Equal compares two bindings by value, modifiers order-sensitively.
func (b Binding) Equal(o Binding) bool {
	if b.Pad != o.Pad || b.Kind != o.Kind || b.Index != o.Index || b.Multiplier != o.Multiplier {
		return false
	}
	if len(b.Modifiers) != len(o.Modifiers) {
		return false
	}
	for i := range b.Modifiers {
		if !b.Modifiers[i].Equal(o.Modifiers[i]) {
			return false
		}
	}
	return true
}

// Action names one logical camera control action.
type Action string

const (
	PanL   Action = "panL"
	PanR   Action = "panR"
	TiltU  Action = "tiltU"
	TiltD  Action = "tiltD"
	RollL  Action = "rollL"
	RollR  Action = "rollR"
	ZoomI  Action = "zoomI"
	ZoomO  Action = "zoomO"
	FocusF Action = "focusF"
	FocusN Action = "focusN"
	FocusA Action = "focusA"
)

// Actions is the canonical evaluation order.
var Actions = []Action{PanL, PanR, TiltU, TiltD, RollL, RollR, ZoomI, ZoomO, FocusF, FocusN, FocusA}

// Mapping assigns each action its ordered binding list for one device group.
// An absent or empty list means the action cannot be driven by input.
type Mapping map[Action][]Binding

// Clone deep-copies the mapping.
func (m Mapping) Clone() Mapping {
	if m == nil {
		return nil
	}
	out := make(Mapping, len(m))
	for a, bs := range m {
		out[a] = append([]Binding(nil), bs...)
	}
	return out
}

// IsEmpty reports whether no action has any binding.
func (m Mapping) IsEmpty() bool {
	for _, bs := range m {
		if len(bs) > 0 {
			return false
		}
	}
	return true
}

// Equal compares mappings key-independently, treating absent and empty
// binding lists as the same. Binding order within a list is significant
// because it encodes priority.
func (m Mapping) Equal(o Mapping) bool {
	for _, a := range Actions {
		x, y := m[a], o[a]
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !x[i].Equal(y[i]) {
				return false
			}
		}
	}
	return true
}

// Mappings keys a Mapping per device group name.
type Mappings map[string]Mapping

// Clone deep-copies all group mappings.
func (ms Mappings) Clone() Mappings {
	if ms == nil {
		return nil
	}
	out := make(Mappings, len(ms))
	for g, m := range ms {
		out[g] = m.Clone()
	}
	return out
}

// Equal compares two mapping sets, key-independent on the outer structure
// and treating absent groups as empty.
func (ms Mappings) Equal(o Mappings) bool {
	for g := range ms {
		if !ms[g].Equal(o[g]) {
			return false
		}
	}
	for g := range o {
		if _, ok := ms[g]; !ok {
			if !o[g].Equal(ms[g]) {
				return false
			}
		}
	}
	return true
}
