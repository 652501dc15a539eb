// Package link provides the console's side of the persistent control
// channel: a reconnecting websocket client and an in-process loopback, both
// with fire-and-forget send semantics.
package link

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/edaniels/golog"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"camdeck/internal/protocol"
)

const (
	redialDelay  = time.Second
	writeTimeout = 10 * time.Second
)

// Client dials a remote camdeck server and keeps the connection alive.
// Sends while the transport is down are dropped silently: state, not deltas,
// travels on this channel, so the next tick is the retry.
type Client struct {
	url    string
	logger golog.Logger

	connected atomic.Bool
	send      chan []byte
	states    chan protocol.State
}

func NewClient(url string, logger golog.Logger) *Client {
	return &Client{
		url:    url,
		logger: logger,
		send:   make(chan []byte, 64),
		states: make(chan protocol.State, 16),
	}
}

// Connected reports whether the channel is currently established.
func (c *Client) Connected() bool { return c.connected.Load() }

// States is the stream of server state pushes.
func (c *Client) States() <-chan protocol.State { return c.states }

// Send enqueues one request. Never blocks; drops when the transport is down
// or the queue is full.
func (c *Client) Send(req protocol.Request) error {
	if !c.connected.Load() {
		return errors.New("transport not established")
	}
	data, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "encoding request")
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("send queue full")
	}
}

// Run dials and re-dials until the context ends.
func (c *Client) Run(ctx context.Context) {
	for {
		if err := c.session(ctx); err != nil {
			c.logger.Debugw("control channel down", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(redialDelay):
		}
	}
}

func (c *Client) session(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return errors.Wrapf(err, "dialing %s", c.url)
	}
	defer conn.Close()

	c.logger.Infow("control channel established", "url", c.url)
	c.connected.Store(true)
	defer c.connected.Store(false)

	done := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				done <- err
				return
			}
			var state protocol.State
			if err := json.Unmarshal(data, &state); err != nil {
				c.logger.Warnw("invalid state push", "error", err)
				continue
			}
			select {
			case c.states <- state:
			default:
				// A stale push is worthless; keep only the freshest.
				select {
				case <-c.states:
				default:
				}
				c.states <- state
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage, []byte{})
			return ctx.Err()
		case err := <-done:
			return err
		case data := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
		}
	}
}

// Loopback is the in-process channel used when the console and server share
// a binary. Requests land directly on the engine's local queue.
type Loopback struct {
	requests chan<- protocol.Request
	states   chan protocol.State
}

func NewLoopback(requests chan<- protocol.Request) *Loopback {
	return &Loopback{
		requests: requests,
		states:   make(chan protocol.State, 16),
	}
}

func (l *Loopback) States() <-chan protocol.State { return l.states }

// Deliver feeds a state push into the loopback, mirroring what the hub sends
// to remote clients.
func (l *Loopback) Deliver(state protocol.State) {
	select {
	case l.states <- state:
	default:
		select {
		case <-l.states:
		default:
		}
		l.states <- state
	}
}

func (l *Loopback) Send(req protocol.Request) error {
	select {
	case l.requests <- req:
		return nil
	default:
		return errors.New("engine queue full")
	}
}
