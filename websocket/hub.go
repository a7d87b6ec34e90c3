package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"design-request-server/models"
)

// Client represents a connected dashboard session
type Client struct {
	Hub    *Hub
	UserID uint
	Send   chan []byte
}

// Hub manages per-user notification connections
type Hub struct {
	// Registered clients keyed by user ID. One connection per user;
	// a newer connection replaces the old one.
	Clients map[uint]*Client

	Register   chan *Client
	Unregister chan *Client

	mu sync.RWMutex
}

// Message is the envelope pushed to connected dashboards
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// NewHub creates a new notification hub
func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[uint]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if old, ok := h.Clients[client.UserID]; ok {
				close(old.Send)
			}
			h.Clients[client.UserID] = client
			h.mu.Unlock()
			log.Printf("🔌 Client registered: user=%d", client.UserID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if current, ok := h.Clients[client.UserID]; ok && current == client {
				delete(h.Clients, client.UserID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("🔌 Client unregistered: user=%d", client.UserID)
		}
	}
}

// Publish pushes a stored notification to the recipient if they are
// connected. Disconnected users read it from the notification list later.
func (h *Hub) Publish(recipientID uint, n models.Notification) {
	h.SendToUser(recipientID, &Message{
		Type:      "notification",
		Timestamp: time.Now(),
		Data:      n,
	})
}

// SendToUser sends a message to a specific user
func (h *Hub) SendToUser(userID uint, message *Message) {
	h.mu.RLock()
	client, exists := h.Clients[userID]
	h.mu.RUnlock()

	if !exists {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	select {
	case client.Send <- data:
	default:
		log.Printf("⚠️ User %d's send buffer is full, dropping push", userID)
	}
}
