package ws

import (
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Hub tracks the websocket connection of every attached user and pushes
// events to them. One connection per user; attaching again replaces the old
// connection. Writes are serialized under the hub mutex because gorilla
// connections allow only one concurrent writer.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*websocket.Conn)}
}

// Add registers a user's connection, closing any previous one.
func (h *Hub) Add(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	old := h.clients[userID]
	h.clients[userID] = conn
	h.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// Remove drops the user's connection if it is still the registered one.
func (h *Hub) Remove(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	if h.clients[userID] == conn {
		delete(h.clients, userID)
	}
	h.mu.Unlock()
}

// ConnectedIDs returns the ids of every user with a live socket.
func (h *Hub) ConnectedIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// SendTo pushes a JSON payload to one user. Delivery is best effort; a dead
// socket only logs.
func (h *Hub) SendTo(userID string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn := h.clients[userID]
	if conn == nil {
		return
	}
	if err := conn.WriteJSON(payload); err != nil {
		log.WithError(err).WithField("userID", userID).Warn("Websocket push failed")
	}
}

// Broadcast pushes a JSON payload to every connected user.
func (h *Hub) Broadcast(payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.clients {
		if err := conn.WriteJSON(payload); err != nil {
			log.WithError(err).WithField("userID", id).Warn("Websocket broadcast failed")
		}
	}
}

// BroadcastStatus tells everyone a user went online or offline.
func (h *Hub) BroadcastStatus(userID, status string) {
	h.Broadcast(map[string]interface{}{
		"type":    "status",
		"user_id": userID,
		"status":  status,
	})
}
