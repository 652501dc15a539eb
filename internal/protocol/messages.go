// Package protocol defines the JSON contract spoken over the persistent
// control channel between a console and the device server.
package protocol

import (
	"encoding/json"

	"github.com/pkg/errors"

	"camdeck/internal/control"
)

// CommandRequest drives a set of devices with one mixed control vector. The
// autofocus field carries the one-shot edge, not the raw button level.
type CommandRequest struct {
	Devices   []string `json:"devices"`
	Pan       float64  `json:"pan"`
	Tilt      float64  `json:"tilt"`
	Roll      float64  `json:"roll"`
	Zoom      float64  `json:"zoom"`
	Focus     float64  `json:"focus"`
	Autofocus bool     `json:"autofocus"`
}

// DeviceListRequest names the devices a disconnect/reconnect applies to.
type DeviceListRequest struct {
	Devices []string `json:"devices"`
}

// PanelEvent is one touch/pointer gesture on a group's virtual control
// panel. Widget and container dimensions ride only on start events; they fix
// the drag range for the whole gesture.
type PanelEvent struct {
	Group      string  `json:"group"`
	Control    string  `json:"control"` // panTilt, zoom, focus, af
	Event      string  `json:"event"`   // start, move, end, cancel, press, release
	Pointer    int     `json:"pointer"`
	X          float64 `json:"x,omitempty"`
	Y          float64 `json:"y,omitempty"`
	WidgetW    float64 `json:"widgetW,omitempty"`
	WidgetH    float64 `json:"widgetH,omitempty"`
	ContainerW float64 `json:"containerW,omitempty"`
	ContainerH float64 `json:"containerH,omitempty"`
}

// CaptureRequest opens a binding capture for one action.
type CaptureRequest struct {
	Group  string         `json:"group"`
	Action control.Action `json:"action"`
}

// CaptureCancel abandons an open binding capture.
type CaptureCancel struct{}

// Request is the client-to-server envelope: exactly one field is set,
// producing a single-key object on the wire ({"command": {...}} and so on).
type Request struct {
	Command             *CommandRequest    `json:"command,omitempty"`
	Disconnect          *DeviceListRequest `json:"disconnect,omitempty"`
	Reconnect           *DeviceListRequest `json:"reconnect,omitempty"`
	SaveDefaultControls *[]control.Mapping `json:"saveDefaultControls,omitempty"`
	Panel               *PanelEvent        `json:"panel,omitempty"`
	BeginCapture        *CaptureRequest    `json:"beginCapture,omitempty"`
	CancelCapture       *CaptureCancel     `json:"cancelCapture,omitempty"`
}

// Validate checks that exactly one request field is populated.
func (r Request) Validate() error {
	n := 0
	if r.Command != nil {
		n++
	}
	if r.Disconnect != nil {
		n++
	}
	if r.Reconnect != nil {
		n++
	}
	if r.SaveDefaultControls != nil {
		n++
	}
	if r.Panel != nil {
		n++
	}
	if r.BeginCapture != nil {
		n++
	}
	if r.CancelCapture != nil {
		n++
	}
	if n != 1 {
		return errors.Errorf("request must carry exactly one operation, got %d", n)
	}
	return nil
}

// ConsoleBound reports whether the request targets the input console rather
// than the device engine.
func (r Request) ConsoleBound() bool {
	return r.Panel != nil || r.BeginCapture != nil || r.CancelCapture != nil
}

// Group is one named device group as pushed in the server state.
type Group struct {
	Name    string   `json:"name"`
	Devices []string `json:"devices"`
}

// DeviceStatus reflects one device's connectivity in the server state.
type DeviceStatus struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// State is the server-to-client push, sent on connect and whenever anything
// changes. Instance is an opaque session token: a mid-session change means
// the server restarted and the client must reload rather than reconcile.
// DefaultControls is positional, aligned to Groups order.
type State struct {
	Instance        string                  `json:"instance"`
	Groups          []Group                 `json:"groups"`
	Devices         map[string]DeviceStatus `json:"devices"`
	DefaultControls []control.Mapping       `json:"defaultControls,omitempty"`
}

// GroupNames returns the group order used to zip positional mappings.
func (s State) GroupNames() []string {
	names := make([]string, len(s.Groups))
	for i, g := range s.Groups {
		names[i] = g.Name
	}
	return names
}

// DecodeRequest parses and validates one inbound request frame.
func DecodeRequest(data []byte) (Request, error) {
	var r Request
	if err := json.Unmarshal(data, &r); err != nil {
		return Request{}, errors.Wrap(err, "invalid request json")
	}
	if err := r.Validate(); err != nil {
		return Request{}, err
	}
	return r, nil
}
