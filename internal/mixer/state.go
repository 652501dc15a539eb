// Package mixer derives one continuous control state per device group from
// the binding table and the latest pad snapshots, including chord conflict
// resolution, deadzone filtering and autofocus edge tracking.
package mixer

// Autofocus carries the momentary autofocus signal. Pressed is the current
// physical button level; Active is the one-shot edge, set on the press
// transition and held until a send consumes it.
type Autofocus struct {
	Pressed bool `json:"pressed"`
	Active  bool `json:"active"`
}

// ControlState is the mixed output for one device group. Continuous fields
// are in [-1,1].
type ControlState struct {
	Pan       float64   `json:"pan"`
	Tilt      float64   `json:"tilt"`
	Roll      float64   `json:"roll"`
	Zoom      float64   `json:"zoom"`
	Focus     float64   `json:"focus"`
	Autofocus Autofocus `json:"autofocus"`
}

// Zero is the canonical rest state.
var Zero ControlState

// IsZero reports whether the state equals the canonical rest value.
func (s ControlState) IsZero() bool { return s == Zero }

// Equal is field-by-field value equality, including the nested autofocus
// fields.
func (s ControlState) Equal(o ControlState) bool { return s == o }
