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
	"github.com/mesabook/api/internal/service"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	CreateMenuCategory(ctx context.Context, arg database.CreateMenuCategoryParams) (database.MenuCategory, error)
	ListMenuCategories(ctx context.Context, restaurantID string) ([]database.MenuCategory, error)
	GetMenuCategoryByName(ctx context.Context, arg database.GetMenuCategoryByNameParams) (database.MenuCategory, error)
	ListMenuItemsByCategory(ctx context.Context, categoryID uuid.UUID) ([]database.MenuItem, error)
	ListMenuItemsByRestaurant(ctx context.Context, restaurantID string) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	SetMenuItemAvailability(ctx context.Context, arg database.SetMenuItemAvailabilityParams) (database.MenuItem, error)
}

// MenuServicer covers the menu operations that need a transaction.
type MenuServicer interface {
	AddItem(ctx context.Context, req service.AddMenuItemRequest) (*database.MenuItem, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteCategory(ctx context.Context, restaurantID, name string) error
}

// MenuHandler handles menu category and item endpoints.
type MenuHandler struct {
	svc   MenuServicer
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(svc MenuServicer, store MenuStore) *MenuHandler {
	return &MenuHandler{svc: svc, store: store}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Post("/menu/categories", h.CreateCategory)
	r.Delete("/menu/categories/{code}/{name}", h.DeleteCategory)
	r.Post("/menu/categories/{id}/items", h.AddItem)
	r.Patch("/menu/items/{id}", h.UpdateItem)
	r.Patch("/menu/items/{id}/availability", h.UpdateAvailability)
	r.Delete("/menu/items/{id}", h.DeleteItem)
	r.Get("/menu/{code}", h.GetMenu)
	r.Get("/menu/{code}/{category}", h.GetCategoryItems)
}

// --- Request / Response types ---

type createCategoryRequest struct {
	RestaurantID string `json:"restaurant_id"`
	Name         string `json:"name"`
}

type menuItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Margin      string `json:"margin"`
	IsAvailable *bool  `json:"is_available"`
	Image       string `json:"image"`
}

type availabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

type menuCategoryResponse struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

type menuItemResponse struct {
	ID           uuid.UUID `json:"id"`
	CategoryID   uuid.UUID `json:"category_id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        string    `json:"price"`
	Margin       string    `json:"margin"`
	IsAvailable  bool      `json:"is_available"`
	Image        *string   `json:"image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type menuGroupResponse struct {
	Category menuCategoryResponse `json:"category"`
	Items    []menuItemResponse   `json:"items"`
}

// --- Handlers ---

// CreateCategory handles POST /menu/categories.
func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.RestaurantID == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id and name are required"})
		return
	}

	category, err := h.store.CreateMenuCategory(r.Context(), database.CreateMenuCategoryParams{
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "category already exists"})
			return
		}
		log.Printf("ERROR: create category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuCategoryResponse(category))
}

// DeleteCategory handles DELETE /menu/categories/{code}/{name}. Refuses
// while the category still holds items.
func (h *MenuHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	name := chi.URLParam(r, "name")

	err := h.svc.DeleteCategory(r.Context(), code, name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
	case errors.Is(err, service.ErrCategoryNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
	case errors.Is(err, service.ErrCategoryNotEmpty):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category still has items"})
	default:
		log.Printf("ERROR: delete category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// AddItem handles POST /menu/categories/{id}/items.
func (h *MenuHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	price, margin, ok := parseItemAmounts(w, req)
	if !ok {
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	item, err := h.svc.AddItem(r.Context(), service.AddMenuItemRequest{
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Margin:      margin,
		IsAvailable: available,
		Image:       req.Image,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, toMenuItemResponse(*item))
	case errors.Is(err, service.ErrCategoryNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
	case errors.Is(err, service.ErrDuplicateMenuItem):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "menu item already exists in category"})
	default:
		log.Printf("ERROR: add menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// UpdateItem handles PATCH /menu/items/{id}.
func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	price, margin, ok := parseItemAmounts(w, req)
	if !ok {
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:          itemID,
		Name:        req.Name,
		Description: req.Description,
		Price:       decimalToNumeric(price),
		Margin:      decimalToNumeric(margin),
		IsAvailable: available,
		Image:       toText(req.Image),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// UpdateAvailability handles PATCH /menu/items/{id}/availability.
func (h *MenuHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.store.SetMenuItemAvailability(r.Context(), database.SetMenuItemAvailabilityParams{
		ID:          itemID,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: set menu item availability: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// DeleteItem handles DELETE /menu/items/{id}. Removing a category's last
// item removes the category too.
func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	err = h.svc.DeleteItem(r.Context(), itemID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "menu item deleted"})
	case errors.Is(err, service.ErrMenuItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
	default:
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// GetMenu handles GET /menu/{code}, the full menu grouped by category.
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	categories, err := h.store.ListMenuCategories(r.Context(), code)
	if err != nil {
		log.Printf("ERROR: list categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	items, err := h.store.ListMenuItemsByRestaurant(r.Context(), code)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	itemsByCategory := make(map[uuid.UUID][]menuItemResponse, len(categories))
	for _, item := range items {
		itemsByCategory[item.CategoryID] = append(itemsByCategory[item.CategoryID], toMenuItemResponse(item))
	}

	groups := make([]menuGroupResponse, 0, len(categories))
	for _, category := range categories {
		group := menuGroupResponse{
			Category: toMenuCategoryResponse(category),
			Items:    itemsByCategory[category.ID],
		}
		if group.Items == nil {
			group.Items = []menuItemResponse{}
		}
		groups = append(groups, group)
	}

	writeJSON(w, http.StatusOK, groups)
}

// GetCategoryItems handles GET /menu/{code}/{category}.
func (h *MenuHandler) GetCategoryItems(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	name := chi.URLParam(r, "category")

	category, err := h.store.GetMenuCategoryByName(r.Context(), database.GetMenuCategoryByNameParams{
		RestaurantID: code,
		Name:         name,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
			return
		}
		log.Printf("ERROR: get category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListMenuItemsByCategory(r.Context(), category.ID)
	if err != nil {
		log.Printf("ERROR: list category items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, item := range items {
		resp[i] = toMenuItemResponse(item)
	}
	writeJSON(w, http.StatusOK, menuGroupResponse{
		Category: toMenuCategoryResponse(category),
		Items:    resp,
	})
}

// --- Helpers ---

// parseItemAmounts validates the price and margin fields. Price is required,
// margin defaults to zero and must stay within [0, 100].
func parseItemAmounts(w http.ResponseWriter, req menuItemRequest) (decimal.Decimal, decimal.Decimal, bool) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return decimal.Zero, decimal.Zero, false
	}

	margin := decimal.Zero
	if req.Margin != "" {
		margin, err = decimal.NewFromString(req.Margin)
		if err != nil || margin.IsNegative() || margin.GreaterThan(decimal.NewFromInt(100)) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid margin, must be between 0 and 100"})
			return decimal.Zero, decimal.Zero, false
		}
	}
	return price, margin, true
}

func toMenuCategoryResponse(c database.MenuCategory) menuCategoryResponse {
	return menuCategoryResponse{
		ID:           c.ID,
		RestaurantID: c.RestaurantID,
		Name:         c.Name,
		CreatedAt:    c.CreatedAt,
	}
}

func toMenuItemResponse(i database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:           i.ID,
		CategoryID:   i.CategoryID,
		RestaurantID: i.RestaurantID,
		Name:         i.Name,
		Description:  i.Description,
		Price:        numericToString(i.Price),
		Margin:       numericToString(i.Margin),
		IsAvailable:  i.IsAvailable,
		Image:        textOrNil(i.Image),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}
