package device

import (
	"context"
	"encoding/binary"
	"net"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"camdeck/internal/config"
)

// Visca drives a VISCA-over-IP PTZ camera over UDP or TCP. Commands are
// fire-and-forget; the camera's acknowledgements are not consumed.
type Visca struct {
	id     string
	name   string
	caps   map[Capability]bool
	logger golog.Logger

	address  string
	protocol string

	mu     sync.Mutex
	conn   net.Conn
	seqNum uint32
}

const (
	viscaDialTimeout  = 5 * time.Second
	viscaWriteTimeout = 10 * time.Millisecond
	viscaCameraAddr   = 1
)

func NewVisca(id string, cfg config.DeviceConfig, logger golog.Logger) (*Visca, error) {
	if cfg.Address == "" {
		return nil, errors.Errorf("visca device %q needs an address", id)
	}
	proto := cfg.Protocol
	if proto == "" {
		proto = "udp"
	}
	if proto != "udp" && proto != "tcp" {
		return nil, errors.Errorf("visca device %q: unsupported protocol %q", id, proto)
	}
	name := cfg.Name
	if name == "" {
		name = id
	}
	return &Visca{
		id:       id,
		name:     name,
		caps:     ParseCapabilities(cfg.Capabilities),
		logger:   logger,
		address:  cfg.Address,
		protocol: proto,
	}, nil
}

func (v *Visca) ID() string   { return v.id }
func (v *Visca) Name() string { return v.name }

func (v *Visca) Connected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conn != nil
}

func (v *Visca) Connect(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout(v.protocol, v.address, viscaDialTimeout)
	if err != nil {
		return errors.Wrapf(err, "connecting visca %q", v.id)
	}
	v.conn = conn
	v.logger.Infow("visca connected", "id", v.id, "address", v.address, "protocol", v.protocol)
	return nil
}

func (v *Visca) Disconnect(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.conn == nil {
		return nil
	}
	err := v.conn.Close()
	v.conn = nil
	v.logger.Infow("visca disconnected", "id", v.id)
	return err
}

func (v *Visca) Reconnect(ctx context.Context) error {
	if err := v.Disconnect(ctx); err != nil {
		v.logger.Debugw("visca close during reconnect", "id", v.id, "error", err)
	}
	return v.Connect(ctx)
}

// Apply translates one motion command into the pan/tilt drive, zoom, focus
// and one-push autofocus VISCA messages it implies.
func (v *Visca) Apply(_ context.Context, cmd Command) error {
	cmd = Filter(cmd, v.caps)

	if err := v.send(panTiltPayload(cmd.Pan, cmd.Tilt)); err != nil {
		return err
	}
	if err := v.send(zoomPayload(cmd.Zoom)); err != nil {
		return err
	}
	if v.caps[CapFocus] {
		if err := v.send(focusPayload(cmd.Focus)); err != nil {
			return err
		}
	}
	if cmd.Autofocus {
		// One Push AF trigger.
		if err := v.send([]byte{0x01, 0x04, 0x18, 0x01}); err != nil {
			return err
		}
	}
	return nil
}

// Pan-Tilt Drive: 01 06 01 VV WW XX YY with VV pan speed 01-18h, WW tilt
// speed 01-14h, XX/YY direction (01 neg, 02 pos, 03 stop).
func panTiltPayload(pan, tilt float64) []byte {
	panSpeed := byte(clampInt(int(abs(pan)*24), 1, 24))
	tiltSpeed := byte(clampInt(int(abs(tilt)*20), 1, 20))

	panDir := byte(0x03)
	if pan < -0.05 {
		panDir = 0x01
	} else if pan > 0.05 {
		panDir = 0x02
	} else {
		panSpeed = 0x01
	}

	tiltDir := byte(0x03)
	if tilt > 0.05 {
		tiltDir = 0x01
	} else if tilt < -0.05 {
		tiltDir = 0x02
	} else {
		tiltSpeed = 0x01
	}

	return []byte{0x01, 0x06, 0x01, panSpeed, tiltSpeed, panDir, tiltDir}
}

// Zoom: 01 04 07 XY with X=2 tele, X=3 wide, 00 stop; Y speed 0-7.
func zoomPayload(zoom float64) []byte {
	var op byte
	if zoom > 0.05 {
		op = 0x20 | byte(clampInt(int(zoom*7), 0, 7))
	} else if zoom < -0.05 {
		op = 0x30 | byte(clampInt(int(abs(zoom)*7), 0, 7))
	}
	return []byte{0x01, 0x04, 0x07, op}
}

// Focus: 01 04 08 XY with X=2 far, X=3 near, 00 stop; Y speed 0-7.
func focusPayload(focus float64) []byte {
	var op byte
	if focus > 0.05 {
		op = 0x20 | byte(clampInt(int(focus*7), 0, 7))
	} else if focus < -0.05 {
		op = 0x30 | byte(clampInt(int(abs(focus)*7), 0, 7))
	}
	return []byte{0x01, 0x04, 0x08, op}
}

func (v *Visca) send(payload []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.conn == nil {
		return errors.Errorf("visca %q not connected", v.id)
	}

	// Address byte, payload, terminator.
	frame := make([]byte, 0, len(payload)+2)
	frame = append(frame, byte(0x80|viscaCameraAddr))
	frame = append(frame, payload...)
	frame = append(frame, 0xFF)

	packet := frame
	if v.protocol == "udp" {
		packet = v.wrapOverIP(frame)
	}

	v.conn.SetWriteDeadline(time.Now().Add(viscaWriteTimeout))
	if _, err := v.conn.Write(packet); err != nil {
		// A missed datagram is not fatal; the next command supersedes it.
		v.logger.Debugw("visca write dropped", "id", v.id, "error", err)
	}
	return nil
}

// wrapOverIP adds the 8-byte VISCA-over-IP header: message type, payload
// length, sequence number.
func (v *Visca) wrapOverIP(frame []byte) []byte {
	header := make([]byte, 8)
	header[0] = 0x01
	binary.BigEndian.PutUint16(header[2:4], uint16(len(frame)))
	binary.BigEndian.PutUint32(header[4:8], v.seqNum)
	v.seqNum++
	return append(header, frame...)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
