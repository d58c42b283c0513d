package ws

import (
	"encoding/json"
	"sync"
)

// Event types broadcast on a restaurant's order feed.
const (
	EventOrderCreated   = "order.created"
	EventOrderCompleted = "order.completed"
	EventOrderCancelled = "order.cancelled"
	EventOrderPaid      = "order.paid"
	EventOrderSplit     = "order.split"
	EventMessagePosted  = "message.posted"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// restaurantEvent routes an event to a single restaurant's room
type restaurantEvent struct {
	RestaurantCode string
	Event          Event
}

// Hub maintains the set of active clients and broadcasts messages to them.
// Rooms are keyed by restaurant code, one room per restaurant.
type Hub struct {
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan *restaurantEvent

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *restaurantEvent, 256),
	}
}

// Run starts the hub's main loop.
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.restaurantCode] == nil {
				h.rooms[client.restaurantCode] = make(map[*Client]bool)
			}
			h.rooms[client.restaurantCode][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.restaurantCode]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.restaurantCode)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[event.RestaurantCode]

			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			for client := range clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.rooms[event.RestaurantCode], client)
					if len(h.rooms[event.RestaurantCode]) == 0 {
						delete(h.rooms, event.RestaurantCode)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRestaurant sends an event to every client watching a restaurant.
// This is the public API for handlers to broadcast events.
func (h *Hub) BroadcastToRestaurant(restaurantCode string, event Event) {
	h.broadcast <- &restaurantEvent{
		RestaurantCode: restaurantCode,
		Event:          event,
	}
}
