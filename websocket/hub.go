package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dashboard event types
const (
	EventTypeDealCreated     = "deal_created"
	EventTypeDealUpdated     = "deal_updated"
	EventTypeCallbackUpdated = "callback_updated"
	EventTypeNotification    = "notification"
)

// Event represents a message sent over WebSocket to the dashboard
type Event struct {
	Type         string      `json:"type"`
	Message      string      `json:"message"`
	Data         interface{} `json:"data,omitempty"`
	UserID       string      `json:"userID,omitempty"`
	RequiresAuth bool        `json:"requiresAuth,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID        primitive.ObjectID
	Conn          *websocket.Conn
	Authenticated bool
}

// Hub maintains the set of active clients and broadcasts dashboard events
type Hub struct {
	clients                map[primitive.ObjectID]*Client
	unauthenticatedClients map[*Client]bool
	register               chan *Client
	unregister             chan *Client
	mu                     sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:                make(map[primitive.ObjectID]*Client),
		unauthenticatedClients: make(map[*Client]bool),
		register:               make(chan *Client),
		unregister:             make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.Authenticated && client.UserID != primitive.NilObjectID {
				h.clients[client.UserID] = client
			} else {
				h.unauthenticatedClients[client] = true
			}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if client.Authenticated && client.UserID != primitive.NilObjectID {
				if _, ok := h.clients[client.UserID]; ok {
					delete(h.clients, client.UserID)
				}
			} else {
				delete(h.unauthenticatedClients, client)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToUser sends an event to a specific user
func (h *Hub) SendToUser(userID primitive.ObjectID, event Event) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}

	return client.Conn.WriteJSON(event)
}

// Broadcast sends an event to every authenticated client. Used for
// dashboard-wide updates like a new deal landing on the leaderboard.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		client.Conn.WriteJSON(event)
	}
}

// AuthenticateClient moves a client from unauthenticated to authenticated state
func (h *Hub) AuthenticateClient(client *Client, userID primitive.ObjectID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.unauthenticatedClients[client]; ok {
		delete(h.unauthenticatedClients, client)
	}

	client.Authenticated = true
	client.UserID = userID

	h.clients[userID] = client

	return nil
}

// NotifyDealCreated broadcasts a new deal to every connected dashboard
func (h *Hub) NotifyDealCreated(dealData interface{}) {
	h.Broadcast(Event{
		Type:    EventTypeDealCreated,
		Message: "New deal created",
		Data:    dealData,
	})
}

// NotifyDealUpdated broadcasts a deal status/stage change
func (h *Hub) NotifyDealUpdated(dealData interface{}) {
	h.Broadcast(Event{
		Type:    EventTypeDealUpdated,
		Message: "Deal updated",
		Data:    dealData,
	})
}

// NotifyUser pushes an in-app notification to a single connected user
func (h *Hub) NotifyUser(userID primitive.ObjectID, notificationData interface{}) error {
	return h.SendToUser(userID, Event{
		Type:    EventTypeNotification,
		Message: "New notification",
		Data:    notificationData,
	})
}
