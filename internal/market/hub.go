// Package market simulates market movement: a ticker applies a random
// walk to instrument prices and a websocket hub pushes the resulting
// ticks to connected clients.
package market

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// PriceTick is a single simulated price update pushed to stream clients.
type PriceTick struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	At     time.Time `json:"at"`
}

// Hub fans price ticks out to all connected websocket clients.
type Hub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]bool
	broadcast chan []PriceTick
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []PriceTick, 16),
	}
}

// Run delivers broadcast ticks to every client until ctx is cancelled.
// Clients that fail a write are dropped.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case ticks := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if err := client.WriteJSON(ticks); err != nil {
					client.Close()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues ticks for delivery. Drops the batch if the hub is
// backed up rather than blocking the ticker.
func (h *Hub) Broadcast(ticks []PriceTick) {
	select {
	case h.broadcast <- ticks:
	default:
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

// StreamHandler upgrades the request to a websocket and registers the
// connection with the hub.
func (h *Hub) StreamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		h.mu.Lock()
		h.clients[conn] = true
		h.mu.Unlock()
	}
}
