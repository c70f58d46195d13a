package chat

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Client is one live authenticated connection. Identity is bound once, at
// registration, and never re-verified for the connection's lifetime.
type Client struct {
	ID       string // connection id, not user id
	UserID   string
	Username string
	Conn     ConnLike
	Send     chan []byte

	mu     sync.Mutex
	closed bool
}

// ConnLike is the slice of *websocket.Conn the hub needs; tests substitute a
// fake.
type ConnLike interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	Close() error
}

func NewClient(id, userID, username string, conn ConnLike) *Client {
	return &Client{
		ID:       id,
		UserID:   userID,
		Username: username,
		Conn:     conn,
		Send:     make(chan []byte, 16),
	}
}

// ReadPump consumes inbound frames until the connection drops, then runs the
// hub's teardown. Malformed JSON is answered with an error event; the
// connection stays up.
func (c *Client) ReadPump(h *Hub) {
	defer h.Disconnect(c)
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			c.enqueue(encode(EventError, ErrorPayload{Message: "malformed event"}))
			continue
		}
		h.Dispatch(c, env)
	}
}

func (c *Client) WritePump() {
	for data := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// enqueue never blocks: a client that cannot drain its channel loses frames,
// and a shut-down client silently drops them.
func (c *Client) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

// shutdown ends the write pump. Called by the hub after the client has left
// every broadcast structure.
func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}
