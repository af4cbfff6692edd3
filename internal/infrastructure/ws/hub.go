package ws

import (
	"context"
	"encoding/json"
	"sync"

	"lapakku/pkg/logger"
)

// IntentHandler receives decoded frames and disconnects. Implemented by the
// support coordinator; the hub itself never touches conversation state.
type IntentHandler interface {
	HandleIntent(ctx context.Context, client *Client, frame Frame)
	HandleDisconnect(ctx context.Context, client *Client)
}

// Hub owns the connection set, the room router and the presence registry. It is
// handed to the coordinator at construction time; nothing else mutates it.
type Hub struct {
	Rooms    *Rooms
	Presence *Presence

	mu      sync.RWMutex
	clients map[*Client]struct{}
	handler IntentHandler
}

func NewHub() *Hub {
	return &Hub{
		Rooms:    NewRooms(),
		Presence: NewPresence(),
		clients:  make(map[*Client]struct{}),
	}
}

// SetHandler installs the intent handler. Must be called before any client
// registers.
func (h *Hub) SetHandler(handler IntentHandler) {
	h.handler = handler
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	logger.Debug("ws: client %s registered (user=%q role=%s)", c.ID, c.UserID, c.Role)
}

// Unregister tears a connection down: room memberships and presence are
// released synchronously, before any further event for the connection could be
// processed. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	if h.handler != nil {
		h.handler.HandleDisconnect(context.Background(), c)
	}
	h.Rooms.UnsubscribeAll(c)
	c.shutdown()

	logger.Debug("ws: client %s unregistered", c.ID)
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleFrame decodes one inbound frame and dispatches it. A malformed frame
// is reported to the sender only; it never disturbs other connections.
func (h *Hub) handleFrame(c *Client, raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		logger.Warn("ws: client %s sent malformed frame: %v", c.ID, err)
		c.SendError("BAD_REQUEST", "Invalid message format")
		return
	}

	if h.handler == nil {
		c.SendError("INTERNAL_ERROR", "Server not ready")
		return
	}

	h.handler.HandleIntent(context.Background(), c, frame)
}
