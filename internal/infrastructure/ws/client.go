package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"lapakku/pkg/logger"
)

// RoleAnonymous marks a connection whose credential was absent or failed
// verification. Such connections are still admitted.
const RoleAnonymous = "anonymous"

// Client is one live socket. Identity fields are fixed at admission and never
// change for the connection's lifetime.
type Client struct {
	ID          string
	UserID      string // empty for guests
	Role        string
	DisplayName string
	AvatarURL   string

	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a connection wrapper. conn may be nil in tests; the pumps
// are only started for real sockets.
func NewClient(hub *Hub, conn *websocket.Conn, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Client{
		ID:   uuid.New().String(),
		Role: RoleAnonymous,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

// shutdown wakes the write pump. Idempotent; the send channel itself is never
// closed so concurrent SendEvent calls stay safe.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// CloseWithError writes a final error frame straight onto the socket and
// closes it. Only used before the pumps are started.
func (c *Client) CloseWithError(code, message string) {
	c.shutdown()
	if c.conn == nil {
		return
	}
	payload, err := json.Marshal(Event{
		Type:      EventError,
		Data:      ErrorData{Code: code, Message: message},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err == nil {
		c.conn.WriteMessage(websocket.TextMessage, payload)
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
	c.conn.Close()
}

// Outbox exposes the queued outbound frames. The write pump drains it for
// live sockets.
func (c *Client) Outbox() <-chan []byte {
	return c.send
}

// Staff reports whether the connection's role grants support handling.
func (c *Client) Staff() bool {
	return c.Role == "staff" || c.Role == "admin"
}

// Known reports whether the connection resolved to a registered identity.
func (c *Client) Known() bool {
	return c.UserID != ""
}

// SendEvent queues an event for delivery. A connection that cannot drain its
// buffer is torn down rather than blocking the sender.
func (c *Client) SendEvent(eventType string, data interface{}) {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("ws: failed to marshal %s event for client %s: %v", eventType, c.ID, err)
		return
	}

	select {
	case <-c.done:
	case c.send <- payload:
	default:
		logger.Warn("ws: client %s send buffer full, disconnecting", c.ID)
		c.hub.Unregister(c)
	}
}

// SendError reports a per-intent failure to this connection only.
func (c *Client) SendError(code, message string) {
	c.SendEvent(EventError, ErrorData{Code: code, Message: message})
}

// ReadPump reads frames from the socket and hands them to the hub. It owns the
// connection teardown: when the read loop exits the client is unregistered.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: client %s read error: %v", c.ID, err)
			}
			break
		}

		c.hub.handleFrame(c, raw)
	}
}

// WritePump drains the send buffer onto the socket until shutdown.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		select {
		case payload := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Warn("ws: client %s write error: %v", c.ID, err)
				return
			}
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
