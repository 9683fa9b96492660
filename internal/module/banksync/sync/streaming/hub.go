// Package streaming fans sync and import progress out to websocket
// subscribers, one hub per process, clients grouped by user id, in the
// shape of the broker notification hub this codebase is descended from.
package streaming

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is the wire envelope published to a user's subscribers. Kind
// identifies the payload shape a client should expect; Payload is left as
// interface{} so both sync-cycle summaries and coordinator import events
// can ride the same channel without an intermediate conversion step.
type Event struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
}

// Client is one subscribed websocket connection.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID uuid.UUID
}

type broadcastMessage struct {
	UserID  uuid.UUID
	Message []byte
}

// Hub maintains the set of connected clients and delivers events addressed
// to a user id to every connection that user currently has open.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]bool
	broadcast  chan *broadcastMessage
	Register   chan *Client
	Unregister chan *Client
	logger     *zap.Logger
}

// NewHub builds an unstarted Hub; call Run to start its dispatch loop.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan *broadcastMessage, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.Named("banksync.streaming"),
	}
}

// Run drives the hub's register/unregister/broadcast loop until the stop
// channel is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.clients[client.UserID]; !ok {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.UserID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[msg.UserID] {
				select {
				case client.Send <- msg.Message:
				default:
					close(client.Send)
					delete(h.clients[msg.UserID], client)
				}
			}
			h.mu.Unlock()

		case <-stop:
			return
		}
	}
}

// Publish sends event to every connection subscribed for userID. It never
// blocks the caller on a slow or absent subscriber: with nobody listening
// the message is simply dropped.
func (h *Hub) Publish(userID uuid.UUID, kind string, payload interface{}) {
	body, err := json.Marshal(Event{Kind: kind, Payload: payload})
	if err != nil {
		h.logger.Warn("failed to marshal streaming event", zap.Error(err), zap.String("kind", kind))
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{UserID: userID, Message: body}:
	default:
		h.logger.Warn("streaming hub broadcast queue full, dropping event", zap.String("kind", kind))
	}
}

// ConnectedUsers reports which users currently have an open subscription.
func (h *Hub) ConnectedUsers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uuid.UUID, 0, len(h.clients))
	for userID := range h.clients {
		users = append(users, userID)
	}
	return users
}
