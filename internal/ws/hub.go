// Package ws is the connection gateway: the websocket transport, the
// connection registry, and the routing of inbound intents to the game
// engines.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/wordrace/server/internal/model"
)

// envelope is the wire framing for every message in both directions
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Hub is the registry of live connections. It implements the engines'
// Sink, fanning events out to per-connection send buffers.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[model.ConnID]*Client
}

// Ensure Hub implements the gateway's registry surface
var _ Registry = (*Hub)(nil)

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With(slog.String("component", "ws-hub")),
		clients: make(map[model.ConnID]*Client),
	}
}

// Register adds a connection and broadcasts the new online count
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client registered",
		slog.String("conn", string(c.id)),
		slog.Int("total_clients", count))
	h.broadcastOnlineCount(count)
}

// Unregister removes a connection and broadcasts the new online count.
// Safe to call more than once for the same client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	current, ok := h.clients[c.id]
	if !ok || current != c {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	close(c.send)
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client unregistered",
		slog.String("conn", string(c.id)),
		slog.Int("total_clients", count))
	h.broadcastOnlineCount(count)
}

// ToConn delivers an event to a single connection
func (h *Hub) ToConn(conn model.ConnID, ev model.Event) {
	msg, err := encodeEvent(ev)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("type", string(ev.Type)), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	h.sendLocked(conn, msg, ev.Type)
}

// ToConns delivers an event to several connections
func (h *Hub) ToConns(conns []model.ConnID, ev model.Event) {
	msg, err := encodeEvent(ev)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("type", string(ev.Type)), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range conns {
		h.sendLocked(conn, msg, ev.Type)
	}
}

// Count returns the number of live connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// sendLocked enqueues a frame on a client's buffer, dropping it if the
// buffer is full rather than blocking the caller. Assumes at least a
// read lock on h.mu.
func (h *Hub) sendLocked(conn model.ConnID, msg []byte, t model.EventType) {
	client, ok := h.clients[conn]
	if !ok {
		return
	}
	select {
	case client.send <- msg:
	default:
		h.logger.Warn("message dropped - client buffer full",
			slog.String("conn", string(conn)),
			slog.String("type", string(t)))
	}
}

func (h *Hub) broadcastOnlineCount(count int) {
	msg, err := encodeEvent(model.Event{
		Type:    model.EventOnlineCount,
		Payload: model.OnlineCountPayload{Count: count},
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		h.sendLocked(conn, msg, model.EventOnlineCount)
	}
}

// encodeEvent wraps an event in the wire envelope
func encodeEvent(ev model.Event) ([]byte, error) {
	var data json.RawMessage
	if ev.Payload != nil {
		encoded, err := json.Marshal(ev.Payload)
		if err != nil {
			return nil, err
		}
		data = encoded
	}
	return json.Marshal(envelope{Type: string(ev.Type), Data: data})
}
