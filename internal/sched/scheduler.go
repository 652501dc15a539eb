// Package sched throttles outbound command delivery per device group while
// guaranteeing that a transition into rest is always communicated.
package sched

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"

	"camdeck/internal/mixer"
	"camdeck/internal/protocol"
)

// cadenceEpsilon keeps the interval check from systematically missing a tick
// that lands a hair early.
const cadenceEpsilon = 5 * time.Millisecond

// DefaultSendHz is the per-group outbound command cadence.
const DefaultSendHz = 5.0

// Sink accepts outbound requests. Sends are fire-and-forget: a sink with no
// established transport returns an error that is logged and dropped, and the
// next tick's freshly computed state is the retry.
type Sink interface {
	Send(req protocol.Request) error
}

// sendState is the per-group throttle record, owned exclusively by the
// scheduler.
type sendState struct {
	lastSend time.Time
	lastSent mixer.ControlState
}

// Scheduler decides, on each poll tick, whether a group's mixed state goes
// out on the wire.
type Scheduler struct {
	clock       clock.Clock
	sink        Sink
	minInterval time.Duration
	logger      golog.Logger
	groups      map[string]*sendState
}

func New(c clock.Clock, sink Sink, sendHz float64, logger golog.Logger) *Scheduler {
	if sendHz <= 0 {
		sendHz = DefaultSendHz
	}
	return &Scheduler{
		clock:       c,
		sink:        sink,
		minInterval: time.Duration(float64(time.Second)/sendHz) - cadenceEpsilon,
		logger:      logger,
		groups:      make(map[string]*sendState),
	}
}

// Tick evaluates one group's freshly mixed state. A command is emitted only
// when the group's minimum inter-send interval has elapsed AND either the
// state or the previously sent state is non-zero; the second half makes the
// transition into rest go out exactly once while steady rest is never
// re-sent. Returns the state the caller must carry as the previous tick's
// state: after a send the autofocus edge is consumed, so a held button will
// not retrigger until released and pressed again.
func (s *Scheduler) Tick(group string, devices []string, state mixer.ControlState) mixer.ControlState {
	st, ok := s.groups[group]
	if !ok {
		st = &sendState{}
		s.groups[group] = st
	}

	now := s.clock.Now()
	if !st.lastSend.IsZero() && now.Sub(st.lastSend) < s.minInterval {
		return state
	}
	if state.IsZero() && st.lastSent.IsZero() {
		return state
	}

	req := protocol.Request{Command: &protocol.CommandRequest{
		Devices:   devices,
		Pan:       state.Pan,
		Tilt:      state.Tilt,
		Roll:      state.Roll,
		Zoom:      state.Zoom,
		Focus:     state.Focus,
		Autofocus: state.Autofocus.Active,
	}}
	if err := s.sink.Send(req); err != nil {
		s.logger.Debugw("command send dropped", "group", group, "error", err)
	}

	// The edge is consumed by the send attempt regardless of transport
	// state: at-most-once delivery, no replay of stale one-shots.
	state.Autofocus.Active = false
	st.lastSend = now
	st.lastSent = state
	return state
}

// Reset forgets all per-group send history, e.g. after a session reload.
func (s *Scheduler) Reset() {
	s.groups = make(map[string]*sendState)
}
