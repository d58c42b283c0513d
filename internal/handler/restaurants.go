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
)

// RestaurantStore defines the database methods needed by restaurant handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type RestaurantStore interface {
	CreateRestaurant(ctx context.Context, arg database.CreateRestaurantParams) (database.Restaurant, error)
	GetRestaurantByCode(ctx context.Context, code string) (database.Restaurant, error)
	CountRestaurantsByCode(ctx context.Context, code string) (int64, error)
	ListRestaurantsByOwner(ctx context.Context, ownerEmail string) ([]database.Restaurant, error)
	UpdateRestaurant(ctx context.Context, arg database.UpdateRestaurantParams) (database.Restaurant, error)
	SetRestaurantOnline(ctx context.Context, arg database.SetRestaurantOnlineParams) (database.Restaurant, error)
	DeleteRestaurant(ctx context.Context, code string) (int64, error)
}

// RestaurantHandler handles restaurant endpoints.
type RestaurantHandler struct {
	store RestaurantStore
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(store RestaurantStore) *RestaurantHandler {
	return &RestaurantHandler{store: store}
}

// RegisterRoutes registers restaurant endpoints on the given Chi router.
func (h *RestaurantHandler) RegisterRoutes(r chi.Router) {
	r.Post("/restaurants", h.Create)
	r.Get("/restaurants", h.List)
	r.Get("/restaurants/check-code", h.CheckCode)
	r.Get("/restaurants/{code}", h.Get)
	r.Put("/restaurants/{code}", h.Update)
	r.Patch("/restaurants/{code}/status", h.UpdateStatus)
	r.Delete("/restaurants/{code}", h.Delete)
}

// --- Request / Response types ---

type createRestaurantRequest struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	RestaurantType string `json:"restaurant_type"`
	Currency       string `json:"currency"`
	BannerImage    string `json:"banner_image"`
}

type updateRestaurantRequest struct {
	Name           string `json:"name"`
	RestaurantType string `json:"restaurant_type"`
	Currency       string `json:"currency"`
	BannerImage    string `json:"banner_image"`
}

type restaurantStatusRequest struct {
	Online bool `json:"online"`
}

type restaurantResponse struct {
	ID             uuid.UUID `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	RestaurantType string    `json:"restaurant_type"`
	OwnerEmail     string    `json:"owner_email"`
	Currency       string    `json:"currency"`
	Online         bool      `json:"online"`
	BannerImage    *string   `json:"banner_image"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// --- Handlers ---

// Create handles POST /restaurants.
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Code == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code and name are required"})
		return
	}
	if !isValidRestaurantType(req.RestaurantType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant_type"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	restaurant, err := h.store.CreateRestaurant(r.Context(), database.CreateRestaurantParams{
		Code:           req.Code,
		Name:           req.Name,
		RestaurantType: req.RestaurantType,
		OwnerEmail:     claims.Email,
		Currency:       currency,
		Online:         true,
		BannerImage:    toText(req.BannerImage),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "restaurant code already taken"})
			return
		}
		log.Printf("ERROR: create restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toRestaurantResponse(restaurant))
}

// List handles GET /restaurants, scoped to the caller's restaurants.
func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	restaurants, err := h.store.ListRestaurantsByOwner(r.Context(), claims.Email)
	if err != nil {
		log.Printf("ERROR: list restaurants: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]restaurantResponse, len(restaurants))
	for i, rest := range restaurants {
		resp[i] = toRestaurantResponse(rest)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CheckCode handles GET /restaurants/check-code?code=.
func (h *RestaurantHandler) CheckCode(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code is required"})
		return
	}

	count, err := h.store.CountRestaurantsByCode(r.Context(), code)
	if err != nil {
		log.Printf("ERROR: check restaurant code: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"available": count == 0})
}

// Get handles GET /restaurants/{code}.
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.store.GetRestaurantByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		log.Printf("ERROR: get restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRestaurantResponse(restaurant))
}

// Update handles PUT /restaurants/{code}.
func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req updateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if !isValidRestaurantType(req.RestaurantType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant_type"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	restaurant, err := h.store.UpdateRestaurant(r.Context(), database.UpdateRestaurantParams{
		Code:           chi.URLParam(r, "code"),
		Name:           req.Name,
		RestaurantType: req.RestaurantType,
		OwnerEmail:     claims.Email,
		Currency:       currency,
		BannerImage:    toText(req.BannerImage),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		log.Printf("ERROR: update restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRestaurantResponse(restaurant))
}

// UpdateStatus handles PATCH /restaurants/{code}/status.
func (h *RestaurantHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req restaurantStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	restaurant, err := h.store.SetRestaurantOnline(r.Context(), database.SetRestaurantOnlineParams{
		Code:   chi.URLParam(r, "code"),
		Online: req.Online,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		log.Printf("ERROR: update restaurant status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRestaurantResponse(restaurant))
}

// Delete handles DELETE /restaurants/{code}. Owned rows keep their
// denormalized code; nothing cascades.
func (h *RestaurantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	affected, err := h.store.DeleteRestaurant(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		log.Printf("ERROR: delete restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if affected == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "restaurant deleted"})
}

// --- Helpers ---

func isValidRestaurantType(s string) bool {
	switch s {
	case enum.RestaurantTypeRestaurant, enum.RestaurantTypeCanteen:
		return true
	}
	return false
}

func toRestaurantResponse(r database.Restaurant) restaurantResponse {
	return restaurantResponse{
		ID:             r.ID,
		Code:           r.Code,
		Name:           r.Name,
		RestaurantType: r.RestaurantType,
		OwnerEmail:     r.OwnerEmail,
		Currency:       r.Currency,
		Online:         r.Online,
		BannerImage:    textOrNil(r.BannerImage),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
