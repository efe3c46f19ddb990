// internal/websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is the wire shape pushed to connected clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
	At   time.Time   `json:"at"`
}

type broadcastMessage struct {
	identityID int64 // 0 means all clients
	event      *Event
}

// Hub fans billing events out to each user's open connections. It
// implements the billing package's Notifier interface.
type Hub struct {
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMessage, 256),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// NotifyUser queues an event for every open connection of one user.
// Never blocks; events to a saturated hub are dropped.
func (h *Hub) NotifyUser(identityID int64, event string, payload interface{}) {
	msg := &broadcastMessage{
		identityID: identityID,
		event:      &Event{Type: event, Data: payload, At: time.Now().UTC()},
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping event",
			zap.Int64("identity_id", identityID),
			zap.String("event", event),
		)
	}
}

// NotifyAll queues an event for every connected client.
func (h *Hub) NotifyAll(event string, payload interface{}) {
	msg := &broadcastMessage{
		event: &Event{Type: event, Data: payload, At: time.Now().UTC()},
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping event", zap.String("event", event))
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.identityID] == nil {
		h.clients[client.identityID] = make(map[*Client]bool)
	}
	h.clients[client.identityID][client] = true

	h.logger.Info("websocket client connected",
		zap.Int64("identity_id", client.identityID),
		zap.Int("total", h.totalClients()),
	)

	client.send <- mustJSON(&Event{Type: "connected", At: time.Now().UTC()})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.identityID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, client.identityID)
			}

			h.logger.Info("websocket client disconnected",
				zap.Int64("identity_id", client.identityID),
				zap.Int("total", h.totalClients()),
			)
		}
	}
}

func (h *Hub) deliver(msg *broadcastMessage) {
	data := mustJSON(msg.event)

	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.identityID == 0 {
		for _, clients := range h.clients {
			for client := range clients {
				client.enqueue(data)
			}
		}
		return
	}

	for client := range h.clients[msg.identityID] {
		client.enqueue(data)
	}
}

// ConnectedClients reports how many connections a user has open.
func (h *Hub) ConnectedClients(identityID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[identityID])
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
}

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// Event payloads are service-built maps and structs;
		// marshal failure is a programming error.
		panic(err)
	}
	return data
}
