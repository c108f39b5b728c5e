// Package hub provides a thread-safe websocket hub using the idiomatic
// Go channel-based pattern. Unlike a plain broadcast hub it supports
// addressed delivery: clients register under an occupant ID and the
// engine sends each occupant its own guidance payload.
package hub

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/egresslab/go-egress/internal/log"
	"github.com/egresslab/go-egress/pkg/protocol"
)

// addressed is a message destined for a single occupant's connection.
type addressed struct {
	occupantID string
	data       []byte
}

// Hub maintains the set of active clients. Messages can be sent to a
// single occupant by ID or broadcast to every connected client.
type Hub struct {
	// Name for logging
	name string

	// Registered clients
	clients map[*Client]bool

	// Clients keyed by occupant ID (monitor clients register without one)
	byOccupant map[string]*Client

	// Inbound addressed messages
	send chan addressed

	// Inbound messages to broadcast
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for client maps (read-only access from outside)
	mu sync.RWMutex

	// Running state
	running bool

	logger *slog.Logger
}

// New creates a new Hub
func New(name string) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[*Client]bool),
		byOccupant: make(map[string]*Client),
		send:       make(chan addressed, 256),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log.Component("hub." + name),
	}
}

// Run starts the hub's main loop
// This should be called in a goroutine
func (h *Hub) Run() {
	h.running = true
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.occupantID != "" {
				// A reconnect replaces the previous connection
				if prev, ok := h.byOccupant[client.occupantID]; ok {
					delete(h.clients, prev)
					close(prev.send)
				}
				h.byOccupant[client.occupantID] = client
			}
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client connected", "occupant", client.occupantID, "total", count)

		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client disconnected", "occupant", client.occupantID, "remaining", count)

		case msg := <-h.send:
			h.mu.Lock()
			client, ok := h.byOccupant[msg.occupantID]
			if !ok {
				// Occupant not connected right now; the next cycle
				// will produce fresh guidance anyway.
				h.mu.Unlock()
				continue
			}
			select {
			case client.send <- msg.data:
			default:
				// Client's buffer is full - they're too slow.
				// Drop them without holding up anyone else.
				h.drop(client)
				h.logger.Warn("dropped slow client", "occupant", client.occupantID)
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					h.drop(client)
					h.logger.Warn("dropped slow client", "occupant", client.occupantID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes a client from both maps and closes its send channel.
// Callers must hold h.mu.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if client.occupantID != "" && h.byOccupant[client.occupantID] == client {
		delete(h.byOccupant, client.occupantID)
	}
	close(client.send)
}

// Send queues a message for a single occupant's connection. If the
// occupant is not connected the message is silently discarded.
func (h *Hub) Send(occupantID string, msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	select {
	case h.send <- addressed{occupantID: occupantID, data: data}:
	default:
		h.logger.Warn("send channel full, dropping message", "occupant", occupantID)
	}
	return nil
}

// Broadcast sends a message to all connected clients
func (h *Hub) Broadcast(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast channel full, dropping message")
	}
	return nil
}

// BroadcastJSON encodes and broadcasts an arbitrary JSON value
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast channel full, dropping message")
	}
	return nil
}

// IsConnected reports whether an occupant currently has a live connection
func (h *Hub) IsConnected(occupantID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.byOccupant[occupantID]
	return ok
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsRunning returns whether the hub is running
func (h *Hub) IsRunning() bool {
	return h.running
}
