package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum inbound message size allowed
	maxMessageSize = 64 * 1024 // hazard grid merges are the largest inbound payload
)

// InboundHandler processes a message read from a client connection.
type InboundHandler func(c *Client, data []byte)

// Client represents a single websocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	occupantID string
	send       chan []byte
	onMessage  InboundHandler
}

// NewClient creates a new client and registers it with the hub.
// occupantID may be empty for monitor connections that only listen.
// onMessage may be nil when no inbound traffic is expected.
func NewClient(hub *Hub, conn *websocket.Conn, occupantID string, onMessage InboundHandler) *Client {
	client := &Client{
		hub:        hub,
		conn:       conn,
		occupantID: occupantID,
		send:       make(chan []byte, 256), // Buffered channel for backpressure
		onMessage:  onMessage,
	}
	hub.register <- client
	return client
}

// OccupantID returns the occupant this connection belongs to,
// or "" for monitor connections.
func (c *Client) OccupantID() string {
	return c.occupantID
}

// Run starts the client's read and write pumps
// This should be called in the websocket handler
func (c *Client) Run() {
	go c.writePump()
	c.readPump() // Blocks until connection closes
}

// readPump reads messages from the websocket connection.
// It delivers inbound messages to the handler, keeps the connection
// alive, and detects disconnection.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		if c.onMessage != nil {
			c.onMessage(c, data)
		}
	}
}

// writePump writes messages to the websocket connection
// Only this goroutine writes to the connection - no race conditions!
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel - send close frame
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
