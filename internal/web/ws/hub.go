package ws

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/mcoot/boardbank/internal/model"
	"github.com/mcoot/boardbank/internal/services/fanout"
)

var _ fanout.Notifier = (*Hub)(nil)

// Hub tracks live clients and the groups they are subscribed to. Every method
// is non-blocking, so it is safe to call while holding a game lock.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnectionID]*Client
	groups  map[string]map[model.ConnectionID]struct{}
	logger  *slog.Logger
}

// NewHub creates an empty Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnectionID]*Client),
		groups:  make(map[string]map[model.ConnectionID]struct{}),
		logger:  logger.With(slog.String("component", "ws_hub")),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client registered",
		slog.String("connection_id", string(client.id)),
		slog.Int("total_clients", count))
}

// Unregister removes a client and all of its group memberships
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if current, ok := h.clients[client.id]; !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.id)
	for name, members := range h.groups {
		delete(members, client.id)
		if len(members) == 0 {
			delete(h.groups, name)
		}
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client unregistered",
		slog.String("connection_id", string(client.id)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", count))
}

// Subscribe adds a registered connection to a group. Unknown connections are
// ignored, so a client that has already gone never lingers in a group.
func (h *Hub) Subscribe(conn model.ConnectionID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[conn]; !ok {
		return
	}
	members, ok := h.groups[group]
	if !ok {
		members = make(map[model.ConnectionID]struct{})
		h.groups[group] = members
	}
	members[conn] = struct{}{}
}

// Unsubscribe removes a connection from a group
func (h *Hub) Unsubscribe(conn model.ConnectionID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// Members lists a group's connections in a stable order
func (h *Hub) Members(group string) []model.ConnectionID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]model.ConnectionID, 0, len(h.groups[group]))
	for conn := range h.groups[group] {
		members = append(members, conn)
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	return members
}

// Send queues an event for one connection
func (h *Hub) Send(conn model.ConnectionID, event model.EventType, payload any) {
	frame, err := encode(event, payload)
	if err != nil {
		h.logger.Error("ws encode failed",
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	client, ok := h.clients[conn]
	h.mu.RUnlock()
	if !ok {
		h.logger.Debug("ws send to unknown connection",
			slog.String("connection_id", string(conn)),
			slog.String("event", string(event)))
		return
	}
	h.deliver(client, event, frame)
}

// Broadcast queues the same event for every member of a group
func (h *Hub) Broadcast(group string, event model.EventType, payload any) {
	frame, err := encode(event, payload)
	if err != nil {
		h.logger.Error("ws encode failed",
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.groups[group]))
	for conn := range h.groups[group] {
		if client, ok := h.clients[conn]; ok {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		h.deliver(client, event, frame)
	}
}

// Kick closes a connection that has been superseded by a newer one
func (h *Hub) Kick(conn model.ConnectionID) {
	h.mu.RLock()
	client, ok := h.clients[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	h.logger.Info("ws client kicked", slog.String("connection_id", string(conn)))
	client.close(websocket.StatusPolicyViolation, "session resumed on another connection")
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.close(websocket.StatusGoingAway, "server shutting down")
	}
	h.logger.Info("ws hub closed", slog.Int("disconnected_clients", len(clients)))
}

// deliver enqueues a frame. A client that cannot keep up is closed rather than
// left with a gap in its event stream; it reconnects and gets a fresh view.
func (h *Hub) deliver(client *Client, event model.EventType, frame []byte) {
	if client.enqueue(frame) {
		return
	}
	select {
	case <-client.Done():
		return
	default:
	}

	h.logger.Warn("ws client buffer full, closing",
		slog.String("connection_id", string(client.id)),
		slog.String("event", string(event)))
	client.close(websocket.StatusTryAgainLater, "send buffer full")
}
