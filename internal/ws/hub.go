package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// Client is the part of a websocket connection the hub writes to.
// *websocket.Conn satisfies it.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Event is pushed to every connected client after a stock-changing operation.
type Event struct {
	Type    string    `json:"type"`
	Action  string    `json:"action"`
	Data    any       `json:"data,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

const TypeStockUpdate = "stock_update"

type Hub struct {
	Clients    map[Client]bool
	Register   chan Client
	Unregister chan Client
	Broadcast  chan []byte
	mutex      sync.Mutex
	quit       chan struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[Client]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		Broadcast:  make(chan []byte),
		quit:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register/unregister/broadcast until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.quit)
		h.mutex.Lock()
		for conn := range h.Clients {
			conn.Close()
			delete(h.Clients, conn)
		}
		h.mutex.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			h.logger.Debug("ws client connected", "clients", h.Count())

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Publish encodes event and hands it to the run loop without blocking the
// caller. Safe on a nil Hub.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("ws event not encodable", "action", event.Action, "error", err)
		return
	}
	go func() {
		select {
		case h.Broadcast <- msg:
		case <-h.quit:
		}
	}()
}

// Attach registers c. It returns false once the hub has stopped.
func (h *Hub) Attach(c Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.quit:
		return false
	}
}

// Detach unregisters c; a no-op once the hub has stopped.
func (h *Hub) Detach(c Client) {
	select {
	case h.Unregister <- c:
	case <-h.quit:
	}
}
