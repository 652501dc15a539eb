// Package pad canonicalizes raw gamepad state into the standard layout the
// mixer consumes: four stick axes and a fixed button order, regardless of how
// the device actually reports itself.
package pad

// Standard-layout button indices, matching the W3C standard gamepad order.
const (
	ButtonA      = 0
	ButtonB      = 1
	ButtonX      = 2
	ButtonY      = 3
	ButtonLB     = 4
	ButtonRB     = 5
	ButtonLT     = 6
	ButtonRT     = 7
	ButtonSelect = 8
	ButtonStart  = 9
	ButtonL3     = 10
	ButtonR3     = 11
	ButtonUp     = 12
	ButtonDown   = 13
	ButtonLeft   = 14
	ButtonRight  = 15
	ButtonHome   = 16

	// StandardButtons and StandardAxes are the sizes of a canonical snapshot.
	StandardButtons = 17
	StandardAxes    = 4
)

// Button is one button's state within a snapshot.
type Button struct {
	Pressed bool    `json:"pressed"`
	Touched bool    `json:"touched"`
	Value   float64 `json:"value"`
}

// Snapshot is one polled view of a single pad: the inbound control snapshot
// contract. Axes are normalized to [-1,1]. Standard reports whether the
// device already exposes the standard layout.
type Snapshot struct {
	Index    int       `json:"index"`
	ID       string    `json:"id"`
	Standard bool      `json:"standard"`
	Axes     []float64 `json:"axes"`
	Buttons  []Button  `json:"buttons"`
}

// Provider supplies the latest snapshot of every connected pad, indexed by
// slot. Disconnected slots are nil. Implementations must not block.
type Provider interface {
	// Poll returns the current raw snapshots. The returned slice is owned by
	// the caller.
	Poll() []*Snapshot
}

// NormalizeAll runs Normalize over a polled set, preserving slot holes.
func NormalizeAll(pads []*Snapshot) []*Snapshot {
	out := make([]*Snapshot, len(pads))
	for i, p := range pads {
		if p == nil {
			continue
		}
		n := Normalize(*p)
		out[i] = &n
	}
	return out
}
