// ABOUTME: Hub fans events out to per-connection write channels
// ABOUTME: Implements the Notifier port; slow consumers drop, never block

package transport

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/roamly/roam-gateway/internal/bot"
	"github.com/roamly/roam-gateway/internal/chat"
)

// The hub is the one concrete Notifier behind both gateways.
var (
	_ chat.Notifier = (*Hub)(nil)
	_ bot.Notifier  = (*Hub)(nil)
)

const defaultSendBuffer = 32

// Envelope is the wire frame in both directions: an event name plus an
// event-specific payload.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outEnvelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Hub owns one outbound channel per live connection. Notify and Broadcast
// never block: a consumer whose buffer is full loses the event, which is the
// contract the router and bot gateway are written against.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]chan []byte
	buffer int
	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		conns:  make(map[string]chan []byte),
		buffer: defaultSendBuffer,
		logger: logger.With("component", "hub"),
	}
}

// Add registers a connection and returns the channel its write pump must
// drain. The channel is never closed; the pump exits on its own context.
func (h *Hub) Add(connID string) <-chan []byte {
	ch := make(chan []byte, h.buffer)
	h.mu.Lock()
	h.conns[connID] = ch
	h.mu.Unlock()
	return ch
}

// Remove forgets a connection. Events notified after removal are dropped.
func (h *Hub) Remove(connID string) {
	h.mu.Lock()
	delete(h.conns, connID)
	h.mu.Unlock()
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Notify sends one event to one connection, dropping it if the connection
// is gone or its buffer is full.
func (h *Hub) Notify(connID, event string, payload any) {
	data, err := json.Marshal(outEnvelope{Event: event, Payload: payload})
	if err != nil {
		h.logger.Error("failed to encode event",
			"event", event,
			"error", err)
		return
	}

	h.mu.RLock()
	ch, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.send(connID, event, ch, data)
}

// Broadcast sends one event to every live connection.
func (h *Hub) Broadcast(event string, payload any) {
	data, err := json.Marshal(outEnvelope{Event: event, Payload: payload})
	if err != nil {
		h.logger.Error("failed to encode event",
			"event", event,
			"error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID, ch := range h.conns {
		h.send(connID, event, ch, data)
	}
}

func (h *Hub) send(connID, event string, ch chan []byte, data []byte) {
	select {
	case ch <- data:
	default:
		h.logger.Warn("dropping event for slow consumer",
			"connection_id", connID,
			"event", event)
	}
}
