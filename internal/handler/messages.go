package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mesabook/api/internal/database"
	"github.com/mesabook/api/internal/enum"
	"github.com/mesabook/api/internal/middleware"
	"github.com/mesabook/api/internal/ws"
)

// MessageStore defines the database methods needed by message handlers.
// Satisfied by *database.Queries.
type MessageStore interface {
	CreateMessage(ctx context.Context, arg database.CreateMessageParams) (database.Message, error)
	ListMessagesByRestaurant(ctx context.Context, arg database.ListMessagesByRestaurantParams) ([]database.Message, error)
}

// MessageHandler handles staff chat endpoints.
type MessageHandler struct {
	store MessageStore
	hub   Broadcaster
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(store MessageStore, hub Broadcaster) *MessageHandler {
	return &MessageHandler{store: store, hub: hub}
}

// RegisterRoutes registers message endpoints on the given Chi router.
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Post("/messages", h.Create)
	r.Get("/messages", h.List)
}

// --- Request / Response types ---

type createMessageRequest struct {
	RestaurantID string `json:"restaurant_id"`
	SenderName   string `json:"sender_name"`
	SenderRole   string `json:"sender_role"`
	Content      string `json:"content"`
	MessageType  string `json:"message_type"`
}

type messageResponse struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	SenderEmail  string    `json:"sender_email"`
	SenderName   string    `json:"sender_name"`
	SenderRole   string    `json:"sender_role"`
	Content      string    `json:"content"`
	MessageType  string    `json:"message_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// --- Handlers ---

// Create handles POST /messages and fans the message out to the
// restaurant's websocket room.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.RestaurantID == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id and content are required"})
		return
	}
	role := req.SenderRole
	if role == "" {
		role = enum.SenderRoleAdmin
	}
	if !isValidSenderRole(role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sender_role"})
		return
	}
	messageType := req.MessageType
	if messageType == "" {
		messageType = enum.MessageTypeText
	}
	if !isValidMessageType(messageType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid message_type"})
		return
	}
	senderName := req.SenderName
	if senderName == "" {
		senderName = claims.Email
	}

	message, err := h.store.CreateMessage(r.Context(), database.CreateMessageParams{
		RestaurantID: req.RestaurantID,
		SenderEmail:  claims.Email,
		SenderName:   senderName,
		SenderRole:   role,
		Content:      req.Content,
		MessageType:  messageType,
	})
	if err != nil {
		log.Printf("ERROR: create message: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toMessageResponse(message)
	if h.hub != nil {
		if payload, err := json.Marshal(resp); err == nil {
			h.hub.BroadcastToRestaurant(message.RestaurantID, ws.Event{
				Type:    ws.EventMessagePosted,
				Payload: payload,
			})
		} else {
			log.Printf("ERROR: marshal message event: %v", err)
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /messages?restaurant_id=&limit=&offset=, newest first.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id is required"})
		return
	}

	limit := int32(50)
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 200 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = int32(n)
	}
	offset := int32(0)
	if s := r.URL.Query().Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offset"})
			return
		}
		offset = int32(n)
	}

	messages, err := h.store.ListMessagesByRestaurant(r.Context(), database.ListMessagesByRestaurantParams{
		RestaurantID: restaurantID,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		log.Printf("ERROR: list messages: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]messageResponse, len(messages))
	for i, m := range messages {
		resp[i] = toMessageResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func isValidSenderRole(s string) bool {
	switch s {
	case enum.SenderRoleAdmin, enum.SenderRoleKitchen, enum.SenderRoleWaiter:
		return true
	}
	return false
}

func isValidMessageType(s string) bool {
	switch s {
	case enum.MessageTypeText, enum.MessageTypeImage, enum.MessageTypeNotification:
		return true
	}
	return false
}

func toMessageResponse(m database.Message) messageResponse {
	return messageResponse{
		ID:           m.ID,
		RestaurantID: m.RestaurantID,
		SenderEmail:  m.SenderEmail,
		SenderName:   m.SenderName,
		SenderRole:   m.SenderRole,
		Content:      m.Content,
		MessageType:  m.MessageType,
		CreatedAt:    m.CreatedAt,
	}
}
