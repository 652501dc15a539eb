// Package hub manages the websocket control-channel clients: every client
// receives the current server state on connect and on every change, and
// inbound requests are funneled to the server engine.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/edaniels/golog"

	"camdeck/internal/protocol"
)

// Hub tracks connected clients and fans state pushes out to them.
type Hub struct {
	logger     golog.Logger
	register   chan *Client
	unregister chan *Client
	requests   chan protocol.Request

	mu        sync.RWMutex
	clients   map[*Client]bool
	observers []func(protocol.State)
	input     []func(protocol.Request)
	lastState []byte
}

func New(logger golog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		requests:   make(chan protocol.Request, 64),
		clients:    make(map[*Client]bool),
	}
}

// Requests is the stream of decoded client requests for the engine.
func (h *Hub) Requests() <-chan protocol.Request { return h.requests }

// Register adds a client and immediately hands it the latest state.
func (h *Hub) Register(c *Client) { h.register <- c }

// Unregister removes a client.
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// Observe registers an in-process state consumer (e.g. a loopback console).
// Must be called before the first Push.
func (h *Hub) Observe(fn func(protocol.State)) {
	h.mu.Lock()
	h.observers = append(h.observers, fn)
	h.mu.Unlock()
}

// OnInput registers the handler for console-bound requests (panel gestures,
// binding capture). Must be called before clients connect.
func (h *Hub) OnInput(fn func(protocol.Request)) {
	h.mu.Lock()
	h.input = append(h.input, fn)
	h.mu.Unlock()
}

// route hands a decoded client request to the engine queue or, for
// console-bound operations, to the registered input handlers.
func (h *Hub) route(req protocol.Request) {
	if req.ConsoleBound() {
		h.mu.RLock()
		handlers := h.input
		h.mu.RUnlock()
		if len(handlers) == 0 {
			h.logger.Debug("dropping console-bound request, no input handler")
			return
		}
		for _, fn := range handlers {
			fn(req)
		}
		return
	}
	h.requests <- req
}

// Push broadcasts a new state snapshot to every client and retains it for
// clients that connect later.
func (h *Hub) Push(state protocol.State) {
	data, err := json.Marshal(state)
	if err != nil {
		h.logger.Errorw("marshaling state push", "error", err)
		return
	}

	h.mu.Lock()
	h.lastState = data
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	observers := h.observers
	h.mu.Unlock()

	for _, c := range clients {
		c.trySend(data)
	}
	for _, fn := range observers {
		fn(state)
	}
}

// Run is the hub's registration loop. Run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			last := h.lastState
			n := len(h.clients)
			h.mu.Unlock()
			if last != nil {
				c.trySend(last)
			}
			h.logger.Infow("client connected", "total", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Infow("client disconnected", "total", n)
		}
	}
}
