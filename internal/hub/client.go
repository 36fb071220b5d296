package hub

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"

	"scopechat/internal/chat"
)

// Client is one websocket connection owned by an authenticated user. A
// user may hold several connections at once.
type Client struct {
	ConnID string
	UserID int64
	Name   string
	Conn   ConnLike
	Send   chan []byte

	hub *Hub
}

// ConnLike is the subset of the websocket connection the pumps need;
// tests substitute a pipe.
type ConnLike interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	Close() error
}

func NewClient(h *Hub, connID string, userID int64, name string, conn ConnLike) *Client {
	return &Client{
		ConnID: connID,
		UserID: userID,
		Name:   name,
		Conn:   conn,
		Send:   make(chan []byte, 16),
		hub:    h,
	}
}

// ReadPump decodes frames into hub inbound events until the connection
// drops, then unregisters.
func (c *Client) ReadPump() {
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			c.hub.UnregisterChan <- c
			return
		}
		var env chat.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		c.hub.InboundChan <- Inbound{Client: c, Env: env}
	}
}

// WritePump drains the send queue onto the wire. It returns once the hub
// closes Send on unregister.
func (c *Client) WritePump() {
	for data := range c.Send {
		_ = c.Conn.WriteMessage(websocket.TextMessage, data)
	}
}
