package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"camdeck/internal/config"
	"camdeck/internal/control"
	"camdeck/internal/hub"
	"camdeck/internal/protocol"
)

func testConfig() *config.Config {
	return &config.Config{
		Groups: []protocol.Group{
			{Name: "main", Devices: []string{"cam1", "cam2"}},
			{Name: "wide", Devices: []string{"cam2"}},
		},
		Devices: map[string]config.DeviceConfig{
			"cam1": {Type: "dummy", Name: "Stage Left"},
			"cam2": {Type: "dummy"},
		},
	}
}

func newTestEngine(t *testing.T) (*Engine, *hub.Hub, string) {
	t.Helper()
	logger := golog.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "config.json")
	h := hub.New(logger)
	e, err := NewEngine(testConfig(), path, h, logger)
	test.That(t, err, test.ShouldBeNil)
	return e, h, path
}

func TestEngineBuildsDevicesFromGroups(t *testing.T) {
	e, _, _ := newTestEngine(t)
	test.That(t, e.devices, test.ShouldHaveLength, 2)
	test.That(t, e.byID["cam1"].Name(), test.ShouldEqual, "Stage Left")
	test.That(t, e.byID["cam2"].Name(), test.ShouldEqual, "cam2")
}

func TestEngineStatePush(t *testing.T) {
	e, _, _ := newTestEngine(t)
	test.That(t, e.ConnectAll(context.Background()), test.ShouldBeNil)

	state := e.State()
	test.That(t, state.Instance, test.ShouldNotBeEmpty)
	test.That(t, state.Groups, test.ShouldHaveLength, 2)
	test.That(t, state.Devices["cam1"].Connected, test.ShouldBeTrue)
	test.That(t, state.GroupNames(), test.ShouldResemble, []string{"main", "wide"})
}

func TestEngineInstanceUniquePerStart(t *testing.T) {
	a, _, _ := newTestEngine(t)
	b, _, _ := newTestEngine(t)
	test.That(t, a.State().Instance, test.ShouldNotEqual, b.State().Instance)
}

func TestEngineDisconnectReconnect(t *testing.T) {
	e, h, _ := newTestEngine(t)
	ctx := context.Background()
	test.That(t, e.ConnectAll(ctx), test.ShouldBeNil)

	var pushes []protocol.State
	h.Observe(func(s protocol.State) { pushes = append(pushes, s) })

	e.handle(ctx, protocol.Request{Disconnect: &protocol.DeviceListRequest{Devices: []string{"cam1"}}})
	test.That(t, e.byID["cam1"].Connected(), test.ShouldBeFalse)
	test.That(t, e.byID["cam2"].Connected(), test.ShouldBeTrue)

	e.handle(ctx, protocol.Request{Reconnect: &protocol.DeviceListRequest{Devices: []string{"cam1"}}})
	test.That(t, e.byID["cam1"].Connected(), test.ShouldBeTrue)

	// Each change re-pushed state.
	test.That(t, pushes, test.ShouldHaveLength, 2)
	test.That(t, pushes[0].Devices["cam1"].Connected, test.ShouldBeFalse)
	test.That(t, pushes[1].Devices["cam1"].Connected, test.ShouldBeTrue)
}

func TestEngineUnknownDeviceIgnored(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	test.That(t, e.ConnectAll(ctx), test.ShouldBeNil)

	e.handle(ctx, protocol.Request{Disconnect: &protocol.DeviceListRequest{Devices: []string{"ghost"}}})
	test.That(t, e.byID["cam1"].Connected(), test.ShouldBeTrue)
}

func TestEngineSaveDefaultControls(t *testing.T) {
	e, h, path := newTestEngine(t)
	ctx := context.Background()

	var pushes []protocol.State
	h.Observe(func(s protocol.State) { pushes = append(pushes, s) })

	mapping := control.Mapping{
		control.PanR: {{Pad: 0, Kind: control.KindAxis, Index: 0, Multiplier: 1}},
	}
	list := []control.Mapping{mapping, {}}
	e.handle(ctx, protocol.Request{SaveDefaultControls: &list})

	// Trailing empty entries are trimmed before persisting.
	test.That(t, e.cfg.DefaultControls, test.ShouldHaveLength, 1)

	saved, err := config.Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, saved.DefaultControls, test.ShouldHaveLength, 1)
	test.That(t, saved.DefaultControls[0].Equal(mapping), test.ShouldBeTrue)

	// The new defaults go out to every session.
	test.That(t, pushes, test.ShouldHaveLength, 1)
	test.That(t, pushes[0].DefaultControls, test.ShouldHaveLength, 1)

	// Saving an all-empty list clears the persisted defaults.
	empty := []control.Mapping{{}, {}}
	e.handle(ctx, protocol.Request{SaveDefaultControls: &empty})
	test.That(t, e.cfg.DefaultControls, test.ShouldBeNil)
}
