package hub

import (
	"time"

	"github.com/edaniels/golog"
	"github.com/gorilla/websocket"

	"camdeck/internal/protocol"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 1 << 20
)

// Client is one connected control-channel peer.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	logger golog.Logger
	send   chan []byte
}

func NewClient(h *Hub, conn *websocket.Conn, logger golog.Logger) *Client {
	return &Client{
		hub:    h,
		conn:   conn,
		logger: logger,
		send:   make(chan []byte, 256),
	}
}

// trySend enqueues without blocking; a client that cannot keep up is
// dropped.
func (c *Client) trySend(msg []byte) {
	select {
	case c.send <- msg:
	default:
		go c.hub.Unregister(c)
	}
}

// WritePump drains the send channel onto the connection, keeping the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump decodes inbound request frames and forwards them to the engine.
// Invalid frames are logged and skipped; the connection stays up.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debugw("websocket read", "error", err)
			}
			return
		}

		req, err := protocol.DecodeRequest(data)
		if err != nil {
			c.logger.Warnw("dropping invalid request", "error", err)
			continue
		}
		c.hub.route(req)
	}
}
