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
	"github.com/mesabook/api/internal/middleware"
	"github.com/shopspring/decimal"
)

// SubscriptionStore defines the database methods needed by subscription
// handlers. Satisfied by *database.Queries.
type SubscriptionStore interface {
	CreateSubscription(ctx context.Context, arg database.CreateSubscriptionParams) (database.Subscription, error)
	GetActiveSubscription(ctx context.Context, arg database.GetActiveSubscriptionParams) (database.Subscription, error)
	ListSubscriptionsByAdmin(ctx context.Context, adminEmail string) ([]database.Subscription, error)
}

// SubscriptionHandler handles subscription endpoints.
type SubscriptionHandler struct {
	store SubscriptionStore
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(store SubscriptionStore) *SubscriptionHandler {
	return &SubscriptionHandler{store: store}
}

// RegisterRoutes registers subscription endpoints on the given Chi router.
func (h *SubscriptionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/subscriptions", h.Create)
	r.Get("/subscriptions", h.List)
	r.Get("/subscriptions/verify", h.Verify)
}

// --- Request / Response types ---

type createSubscriptionRequest struct {
	Plan  string `json:"plan"`
	Price string `json:"price"`
}

type subscriptionResponse struct {
	ID         uuid.UUID `json:"id"`
	AdminEmail string    `json:"admin_email"`
	Plan       string    `json:"plan"`
	Price      string    `json:"price"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type verifyResponse struct {
	Active       bool                  `json:"active"`
	Subscription *subscriptionResponse `json:"subscription,omitempty"`
}

// --- Handlers ---

// Create handles POST /subscriptions. The end date follows from the plan:
// one, six or twelve months out.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	months, ok := planDuration(req.Plan)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plan, use monthly, biannual or annual"})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	start := time.Now()
	sub, err := h.store.CreateSubscription(r.Context(), database.CreateSubscriptionParams{
		AdminEmail: claims.Email,
		Plan:       req.Plan,
		Price:      decimalToNumeric(price),
		StartDate:  start,
		EndDate:    start.AddDate(0, months, 0),
		Status:     enum.SubscriptionStatusActive,
	})
	if err != nil {
		log.Printf("ERROR: create subscription: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toSubscriptionResponse(sub))
}

// List handles GET /subscriptions, the caller's full history.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	subs, err := h.store.ListSubscriptionsByAdmin(r.Context(), claims.Email)
	if err != nil {
		log.Printf("ERROR: list subscriptions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]subscriptionResponse, len(subs))
	for i, sub := range subs {
		resp[i] = toSubscriptionResponse(sub)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Verify handles GET /subscriptions/verify. Reports whether the caller
// holds a subscription covering the current instant.
func (h *SubscriptionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	sub, err := h.store.GetActiveSubscription(r.Context(), database.GetActiveSubscriptionParams{
		AdminEmail: claims.Email,
		Now:        time.Now(),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusOK, verifyResponse{Active: false})
			return
		}
		log.Printf("ERROR: get active subscription: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toSubscriptionResponse(sub)
	writeJSON(w, http.StatusOK, verifyResponse{Active: true, Subscription: &resp})
}

// --- Helpers ---

func planDuration(plan string) (int, bool) {
	switch plan {
	case enum.SubscriptionPlanMonthly:
		return 1, true
	case enum.SubscriptionPlanBiannual:
		return 6, true
	case enum.SubscriptionPlanAnnual:
		return 12, true
	}
	return 0, false
}

func toSubscriptionResponse(s database.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:         s.ID,
		AdminEmail: s.AdminEmail,
		Plan:       s.Plan,
		Price:      numericToString(s.Price),
		StartDate:  s.StartDate.Format("2006-01-02"),
		EndDate:    s.EndDate.Format("2006-01-02"),
		Status:     s.Status,
		CreatedAt:  s.CreatedAt,
	}
}
