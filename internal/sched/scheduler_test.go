package sched

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"camdeck/internal/mixer"
	"camdeck/internal/protocol"
)

type recordingSink struct {
	fail bool
	sent []protocol.Request
}

func (r *recordingSink) Send(req protocol.Request) error {
	if r.fail {
		return errors.New("transport down")
	}
	r.sent = append(r.sent, req)
	return nil
}

func newScheduler(t *testing.T, sink Sink) (*Scheduler, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	return New(mock, sink, DefaultSendHz, golog.NewTestLogger(t)), mock
}

func TestTickSendsActiveState(t *testing.T) {
	sink := &recordingSink{}
	s, _ := newScheduler(t, sink)

	state := mixer.ControlState{Pan: 0.5, Zoom: -0.25}
	s.Tick("main", []string{"cam1"}, state)

	test.That(t, sink.sent, test.ShouldHaveLength, 1)
	cmd := sink.sent[0].Command
	test.That(t, cmd, test.ShouldNotBeNil)
	test.That(t, cmd.Devices, test.ShouldResemble, []string{"cam1"})
	test.That(t, cmd.Pan, test.ShouldEqual, 0.5)
	test.That(t, cmd.Zoom, test.ShouldEqual, -0.25)
}

func TestTickSkipsSteadyZero(t *testing.T) {
	sink := &recordingSink{}
	s, mock := newScheduler(t, sink)

	for i := 0; i < 10; i++ {
		s.Tick("main", []string{"cam1"}, mixer.Zero)
		mock.Add(200 * time.Millisecond)
	}
	test.That(t, sink.sent, test.ShouldBeEmpty)
}

func TestTickFinalZeroSentExactlyOnce(t *testing.T) {
	sink := &recordingSink{}
	s, mock := newScheduler(t, sink)

	s.Tick("main", []string{"cam1"}, mixer.ControlState{Pan: 1})
	mock.Add(200 * time.Millisecond)

	// Input went back to rest: the zero goes out once, then silence.
	for i := 0; i < 5; i++ {
		s.Tick("main", []string{"cam1"}, mixer.Zero)
		mock.Add(200 * time.Millisecond)
	}

	test.That(t, sink.sent, test.ShouldHaveLength, 2)
	test.That(t, sink.sent[1].Command.Pan, test.ShouldEqual, 0.0)
}

func TestTickThrottlesToMinInterval(t *testing.T) {
	sink := &recordingSink{}
	s, mock := newScheduler(t, sink)

	state := mixer.ControlState{Tilt: 0.7}
	// 60Hz poll ticks against a 5Hz send cadence.
	for i := 0; i < 60; i++ {
		s.Tick("main", []string{"cam1"}, state)
		mock.Add(time.Second / 60)
	}

	test.That(t, len(sink.sent), test.ShouldBeBetweenOrEqual, 5, 6)
}

func TestTickConsumesAutofocusEdge(t *testing.T) {
	sink := &recordingSink{}
	s, mock := newScheduler(t, sink)

	state := mixer.ControlState{Autofocus: mixer.Autofocus{Pressed: true, Active: true}}
	next := s.Tick("main", []string{"cam1"}, state)

	test.That(t, sink.sent, test.ShouldHaveLength, 1)
	test.That(t, sink.sent[0].Command.Autofocus, test.ShouldBeTrue)
	test.That(t, next.Autofocus.Active, test.ShouldBeFalse)
	test.That(t, next.Autofocus.Pressed, test.ShouldBeTrue)

	// Held button after consumption never re-sends the one-shot.
	mock.Add(200 * time.Millisecond)
	next = s.Tick("main", []string{"cam1"}, next)
	test.That(t, sink.sent, test.ShouldHaveLength, 2)
	test.That(t, sink.sent[1].Command.Autofocus, test.ShouldBeFalse)
}

func TestTickEdgeConsumedOnFailedSend(t *testing.T) {
	sink := &recordingSink{fail: true}
	s, _ := newScheduler(t, sink)

	state := mixer.ControlState{Autofocus: mixer.Autofocus{Pressed: true, Active: true}}
	next := s.Tick("main", []string{"cam1"}, state)

	// At-most-once: a dropped send still burns the edge.
	test.That(t, next.Autofocus.Active, test.ShouldBeFalse)
}

func TestTickGroupsThrottledIndependently(t *testing.T) {
	sink := &recordingSink{}
	s, _ := newScheduler(t, sink)

	s.Tick("a", []string{"cam1"}, mixer.ControlState{Pan: 1})
	s.Tick("b", []string{"cam2"}, mixer.ControlState{Pan: 1})

	test.That(t, sink.sent, test.ShouldHaveLength, 2)
}

func TestResetForgetsHistory(t *testing.T) {
	sink := &recordingSink{}
	s, _ := newScheduler(t, sink)

	s.Tick("main", []string{"cam1"}, mixer.ControlState{Pan: 1})
	s.Reset()

	// Without history a zero state is not worth announcing.
	s.Tick("main", []string{"cam1"}, mixer.Zero)
	test.That(t, sink.sent, test.ShouldHaveLength, 1)
}
