package device

import (
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"camdeck/internal/config"
)

func TestParseCapabilitiesDefaultsToAll(t *testing.T) {
	caps := ParseCapabilities(nil)
	test.That(t, caps, test.ShouldResemble, AllCapabilities())

	caps = ParseCapabilities([]string{"zoom"})
	test.That(t, caps[CapZoom], test.ShouldBeTrue)
	test.That(t, caps[CapPTR], test.ShouldBeFalse)
}

func TestFilterZeroesMissingCapabilities(t *testing.T) {
	cmd := Command{Pan: 0.5, Tilt: -0.5, Roll: 0.1, Zoom: 1, Focus: -1, Autofocus: true}

	got := Filter(cmd, AllCapabilities())
	test.That(t, got, test.ShouldResemble, cmd)

	got = Filter(cmd, map[Capability]bool{CapZoom: true})
	test.That(t, got, test.ShouldResemble, Command{Zoom: 1})
}

func TestFromConfigSelectsDriver(t *testing.T) {
	logger := golog.NewTestLogger(t)

	d, err := FromConfig("cam1", config.DeviceConfig{Type: "dummy", Name: "Bench"}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.ID(), test.ShouldEqual, "cam1")
	test.That(t, d.Name(), test.ShouldEqual, "Bench")

	_, err = FromConfig("cam2", config.DeviceConfig{Type: "teleporter"}, logger)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = FromConfig("cam3", config.DeviceConfig{Type: "visca"}, logger)
	test.That(t, err, test.ShouldNotBeNil) // address required
}

func TestPanTiltPayload(t *testing.T) {
	// Full-speed pan right, tilt up.
	p := panTiltPayload(1, 1)
	test.That(t, p, test.ShouldResemble, []byte{0x01, 0x06, 0x01, 0x18, 0x14, 0x02, 0x01})

	// Rest on both axes stops the drive.
	p = panTiltPayload(0, 0)
	test.That(t, p, test.ShouldResemble, []byte{0x01, 0x06, 0x01, 0x01, 0x01, 0x03, 0x03})

	// Pan left only.
	p = panTiltPayload(-0.5, 0)
	test.That(t, p[5], test.ShouldEqual, byte(0x01))
	test.That(t, p[6], test.ShouldEqual, byte(0x03))
	test.That(t, p[3], test.ShouldEqual, byte(12))
}

func TestZoomAndFocusPayloads(t *testing.T) {
	test.That(t, zoomPayload(1), test.ShouldResemble, []byte{0x01, 0x04, 0x07, 0x27})
	test.That(t, zoomPayload(-1), test.ShouldResemble, []byte{0x01, 0x04, 0x07, 0x37})
	test.That(t, zoomPayload(0), test.ShouldResemble, []byte{0x01, 0x04, 0x07, 0x00})

	test.That(t, focusPayload(0.5), test.ShouldResemble, []byte{0x01, 0x04, 0x08, 0x23})
	test.That(t, focusPayload(-0.5), test.ShouldResemble, []byte{0x01, 0x04, 0x08, 0x33})
	test.That(t, focusPayload(0), test.ShouldResemble, []byte{0x01, 0x04, 0x08, 0x00})
}

func TestViscaConfigValidation(t *testing.T) {
	logger := golog.NewTestLogger(t)

	_, err := NewVisca("cam1", config.DeviceConfig{Type: "visca", Address: "10.0.0.5:52381", Protocol: "ipx"}, logger)
	test.That(t, err, test.ShouldNotBeNil)

	v, err := NewVisca("cam1", config.DeviceConfig{Type: "visca", Address: "10.0.0.5:52381"}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v.protocol, test.ShouldEqual, "udp")
	test.That(t, v.Connected(), test.ShouldBeFalse)
}

func TestWrapOverIPHeader(t *testing.T) {
	v := &Visca{protocol: "udp"}
	frame := []byte{0x81, 0x01, 0x04, 0x18, 0x01, 0xFF}

	p0 := v.wrapOverIP(frame)
	test.That(t, p0, test.ShouldHaveLength, 8+len(frame))
	test.That(t, p0[0], test.ShouldEqual, byte(0x01))
	test.That(t, int(p0[2])<<8|int(p0[3]), test.ShouldEqual, len(frame))
	test.That(t, p0[8:], test.ShouldResemble, frame)

	// Sequence number advances per packet.
	p1 := v.wrapOverIP(frame)
	test.That(t, p1[7], test.ShouldEqual, byte(0x01))
}
