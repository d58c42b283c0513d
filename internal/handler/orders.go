package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mesabook/api/internal/database"
	"github.com/mesabook/api/internal/enum"
	"github.com/mesabook/api/internal/service"
	"github.com/mesabook/api/internal/ws"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	SplitOrder(ctx context.Context, req service.SplitOrderRequest) (*service.SplitOrderResult, error)
}

// OrderStore defines the database methods needed by order read/update handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrdersByRestaurant(ctx context.Context, restaurantID string) ([]database.Order, error)
	ListOrdersByPhone(ctx context.Context, phoneNumber string) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOpenOrders(ctx context.Context, arg database.ListOpenOrdersParams) ([]database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	MarkOrderPaid(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetRestaurantByCode(ctx context.Context, code string) (database.Restaurant, error)
}

// Broadcaster pushes order events to the restaurant's live feed.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToRestaurant(restaurantCode string, event ws.Event)
}

// OrderHandler handles order lifecycle and payment endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	hub   Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
	r.Get("/orders", h.List)
	r.Get("/orders/current", h.Current)
	r.Get("/orders/by-phone/{phone}", h.ByPhone)
	r.Get("/orders/{id}", h.Get)
	r.Patch("/orders/{id}/complete", h.Complete)
	r.Patch("/orders/{id}/cancel", h.Cancel)
	r.Post("/orders/split", h.Split)
	r.Patch("/payments/{id}/mark-paid", h.MarkPaid)
}

// --- Request / Response types ---

type createOrderRequest struct {
	RestaurantID  string                   `json:"restaurant_id"`
	OrderNumber   string                   `json:"order_number"`
	Subtotal      string                   `json:"subtotal"`
	Tax           string                   `json:"tax"`
	Total         string                   `json:"total"`
	TableNumber   int32                    `json:"table_number"`
	PaymentMethod string                   `json:"payment_method"`
	Paid          bool                     `json:"paid"`
	OrderStatus   string                   `json:"order_status"`
	UserID        string                   `json:"user_id"`
	PhoneNumber   string                   `json:"phone_number"`
	Items         []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int32  `json:"quantity"`
}

type splitOrderRequest struct {
	OrderID      string `json:"order_id"`
	OnlineAmount string `json:"online_amount"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	Subtotal      string              `json:"subtotal"`
	Tax           string              `json:"tax"`
	Total         string              `json:"total"`
	TableNumber   int32               `json:"table_number"`
	PaymentMethod string              `json:"payment_method"`
	Paid          bool                `json:"paid"`
	OrderStatus   string              `json:"order_status"`
	RestaurantID  string              `json:"restaurant_id"`
	UserID        string              `json:"user_id"`
	PhoneNumber   string              `json:"phone_number"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Items         []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Price    string    `json:"price"`
	Quantity int32     `json:"quantity"`
}

// currentOrdersResponse summarizes today's open orders for the dashboard.
type currentOrdersResponse struct {
	Orders []orderResponse `json:"orders"`
	Count  int             `json:"count"`
	Latest *orderResponse  `json:"latest"`
}

type splitOrderResponse struct {
	Original orderResponse `json:"original"`
	Split    orderResponse `json:"split"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	svcItems := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		svcItems[i] = service.CreateOrderItemRequest{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		RestaurantID:  req.RestaurantID,
		OrderNumber:   req.OrderNumber,
		Subtotal:      req.Subtotal,
		Tax:           req.Tax,
		Total:         req.Total,
		TableNumber:   req.TableNumber,
		PaymentMethod: req.PaymentMethod,
		Paid:          req.Paid,
		OrderStatus:   req.OrderStatus,
		UserID:        req.UserID,
		PhoneNumber:   req.PhoneNumber,
		Items:         svcItems,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateOrderNumber) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		if isOrderValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(result.Order, result.Items)
	h.broadcast(result.Order.RestaurantID, ws.EventOrderCreated, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /orders?restaurant_id=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id is required"})
		return
	}

	orders, err := h.store.ListOrdersByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// ByPhone handles GET /orders/by-phone/{phone}, a customer's order history.
func (h *OrderHandler) ByPhone(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	if phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone is required"})
		return
	}

	orders, err := h.store.ListOrdersByPhone(r.Context(), phone)
	if err != nil {
		log.Printf("ERROR: list orders by phone: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

// Current handles GET /orders/current?restaurant_id=, today's open orders.
// Canteens hide only finished orders so staff see orders still being rung up;
// table-service restaurants also hide orders not yet sent to the kitchen.
func (h *OrderHandler) Current(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id is required"})
		return
	}

	restaurant, err := h.store.GetRestaurantByCode(r.Context(), restaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		log.Printf("ERROR: get restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	excluded := []string{enum.OrderStatusNotcomplete, enum.OrderStatusCancelled}
	if restaurant.RestaurantType == enum.RestaurantTypeCanteen {
		excluded = []string{enum.OrderStatusCompleted, enum.OrderStatusCancelled}
	}

	start, end := dayBounds(time.Now())
	orders, err := h.store.ListOpenOrders(r.Context(), database.ListOpenOrdersParams{
		RestaurantID:     restaurantID,
		Start:            start,
		End:              end,
		ExcludedStatuses: excluded,
	})
	if err != nil {
		log.Printf("ERROR: list open orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := currentOrdersResponse{
		Orders: toOrderResponses(orders),
		Count:  len(orders),
	}
	if len(resp.Orders) > 0 {
		resp.Latest = &resp.Orders[0]
	}
	writeJSON(w, http.StatusOK, resp)
}

// Complete handles PATCH /orders/{id}/complete.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, enum.OrderStatusCompleted, ws.EventOrderCompleted)
}

// Cancel handles PATCH /orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, enum.OrderStatusCancelled, ws.EventOrderCancelled)
}

func (h *OrderHandler) setStatus(w http.ResponseWriter, r *http.Request, status, eventType string) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:          orderID,
		OrderStatus: status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order, nil)
	h.broadcast(order.RestaurantID, eventType, resp)
	writeJSON(w, http.StatusOK, resp)
}

// MarkPaid handles PATCH /payments/{id}/mark-paid. This is the payment
// reconciliation point; it flips paid regardless of order status and is
// idempotent.
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.MarkOrderPaid(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: mark order paid: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order, nil)
	h.broadcast(order.RestaurantID, ws.EventOrderPaid, resp)
	writeJSON(w, http.StatusOK, resp)
}

// Split handles POST /orders/split.
func (h *OrderHandler) Split(w http.ResponseWriter, r *http.Request) {
	var req splitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order_id"})
		return
	}

	result, err := h.svc.SplitOrder(r.Context(), service.SplitOrderRequest{
		OrderID:      orderID,
		OnlineAmount: req.OnlineAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidSplitAmount), errors.Is(err, service.ErrInvalidAmount):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrDuplicateOrderNumber):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: split order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := splitOrderResponse{
		Original: toOrderResponse(result.Original, nil),
		Split:    toOrderResponse(result.Split, result.Items),
	}
	h.broadcast(result.Split.RestaurantID, ws.EventOrderSplit, resp)
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *OrderHandler) broadcast(restaurantCode, eventType string, payload interface{}) {
	if h.hub == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", eventType, err)
		return
	}
	h.hub.BroadcastToRestaurant(restaurantCode, ws.Event{Type: eventType, Payload: data})
}

func isOrderValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrMissingRestaurant) ||
		errors.Is(err, service.ErrMissingOrderNumber) ||
		errors.Is(err, service.ErrInvalidPaymentMethod) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidAmount)
}

func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Subtotal:      numericToString(o.Subtotal),
		Tax:           numericToString(o.Tax),
		Total:         numericToString(o.Total),
		TableNumber:   o.TableNumber,
		PaymentMethod: o.PaymentMethod,
		Paid:          o.Paid,
		OrderStatus:   o.OrderStatus,
		RestaurantID:  o.RestaurantID,
		UserID:        o.UserID,
		PhoneNumber:   o.PhoneNumber,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:       item.ID,
			Name:     item.Name,
			Price:    numericToString(item.Price),
			Quantity: item.Quantity,
		})
	}
	return resp
}

func toOrderResponses(orders []database.Order) []orderResponse {
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o, nil)
	}
	return resp
}
