package capture

import (
	"testing"

	"go.viam.com/test"

	"camdeck/internal/control"
	"camdeck/internal/pad"
)

func snapshot(axes []float64, pressed ...int) *pad.Snapshot {
	s := &pad.Snapshot{
		Standard: true,
		Axes:     axes,
		Buttons:  make([]pad.Button, pad.StandardButtons),
	}
	if s.Axes == nil {
		s.Axes = make([]float64, pad.StandardAxes)
	}
	for _, i := range pressed {
		s.Buttons[i] = pad.Button{Pressed: true, Value: 1}
	}
	return s
}

func TestScanIdleReportsNothing(t *testing.T) {
	l := NewListener([]*pad.Snapshot{snapshot(nil)})
	_, ok := l.Scan([]*pad.Snapshot{snapshot(nil)})
	test.That(t, ok, test.ShouldBeFalse)
}

func TestScanFreshButtonPress(t *testing.T) {
	l := NewListener([]*pad.Snapshot{snapshot(nil)})

	b, ok := l.Scan([]*pad.Snapshot{snapshot(nil, pad.ButtonA)})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, b.Kind, test.ShouldEqual, control.KindButton)
	test.That(t, b.Index, test.ShouldEqual, pad.ButtonA)
	test.That(t, b.Multiplier, test.ShouldEqual, 1.0)
	test.That(t, b.Modifiers, test.ShouldBeEmpty)
}

func TestScanAxisSignBecomesMultiplier(t *testing.T) {
	l := NewListener([]*pad.Snapshot{snapshot(nil)})

	b, ok := l.Scan([]*pad.Snapshot{snapshot([]float64{-0.8, 0, 0, 0})})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, b.Kind, test.ShouldEqual, control.KindAxis)
	test.That(t, b.Index, test.ShouldEqual, 0)
	test.That(t, b.Multiplier, test.ShouldEqual, -1.0)
}

func TestScanIgnoresSmallAxisTravel(t *testing.T) {
	l := NewListener([]*pad.Snapshot{snapshot(nil)})
	_, ok := l.Scan([]*pad.Snapshot{snapshot([]float64{0.4, 0, 0, 0})})
	test.That(t, ok, test.ShouldBeFalse)
}

func TestScanBaselineExcluded(t *testing.T) {
	// Armed while a button is held and an axis deflected: neither may be
	// reported as the captured input.
	armed := []*pad.Snapshot{snapshot([]float64{0.9, 0, 0, 0}, pad.ButtonLB)}
	l := NewListener(armed)

	_, ok := l.Scan(armed)
	test.That(t, ok, test.ShouldBeFalse)

	// A genuinely new press captures even with the baseline still active.
	b, ok := l.Scan([]*pad.Snapshot{snapshot([]float64{0.9, 0, 0, 0}, pad.ButtonLB, pad.ButtonB)})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, b.Index, test.ShouldEqual, pad.ButtonB)
}

func TestScanHeldButtonsBecomeModifiers(t *testing.T) {
	l := NewListener([]*pad.Snapshot{snapshot(nil, pad.ButtonLB)})

	b, ok := l.Scan([]*pad.Snapshot{snapshot(nil, pad.ButtonLB, pad.ButtonB)})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, b.Index, test.ShouldEqual, pad.ButtonB)
	test.That(t, b.Modifiers, test.ShouldResemble, []control.Binding{{
		Pad: 0, Kind: control.KindButton, Index: pad.ButtonLB, Multiplier: 1,
	}})
}

func TestScanReleasedBaselineButtonIsNoModifier(t *testing.T) {
	l := NewListener([]*pad.Snapshot{snapshot(nil, pad.ButtonLB)})

	// The modifier was let go before the capture landed.
	b, ok := l.Scan([]*pad.Snapshot{snapshot(nil, pad.ButtonB)})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, b.Modifiers, test.ShouldBeEmpty)
}

func TestScanDeflectedAxisNeverModifier(t *testing.T) {
	l := NewListener([]*pad.Snapshot{snapshot([]float64{0.9, 0, 0, 0})})

	b, ok := l.Scan([]*pad.Snapshot{snapshot([]float64{0.9, 0, 0, 0}, pad.ButtonB)})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, b.Modifiers, test.ShouldBeEmpty)
}

func TestScanSkipsDisconnectedSlots(t *testing.T) {
	l := NewListener([]*pad.Snapshot{nil, snapshot(nil)})

	b, ok := l.Scan([]*pad.Snapshot{nil, snapshot(nil, pad.ButtonX)})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, b.Pad, test.ShouldEqual, 1)
}
