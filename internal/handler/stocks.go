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

// StockStore defines the database methods needed by stock handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type StockStore interface {
	CreateStock(ctx context.Context, arg database.CreateStockParams) (database.Stock, error)
	GetStock(ctx context.Context, id uuid.UUID) (database.Stock, error)
	ListStocksByRestaurant(ctx context.Context, restaurantID string) ([]database.Stock, error)
	ListLowStocks(ctx context.Context, restaurantID string) ([]database.Stock, error)
	UpdateStock(ctx context.Context, arg database.UpdateStockParams) (database.Stock, error)
	DeleteStock(ctx context.Context, id uuid.UUID) (int64, error)
	ListStockHistory(ctx context.Context, stockID uuid.UUID) ([]database.StockHistory, error)
}

// StockServicer covers the stock mutations that pair with history rows.
type StockServicer interface {
	SetQuantity(ctx context.Context, stockID uuid.UUID, quantity decimal.Decimal, note string) (*database.Stock, error)
	BulkUpdate(ctx context.Context, restaurantID string, entries []service.BulkStockEntry) ([]database.Stock, error)
}

// StockHandler handles inventory endpoints.
type StockHandler struct {
	svc   StockServicer
	store StockStore
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(svc StockServicer, store StockStore) *StockHandler {
	return &StockHandler{svc: svc, store: store}
}

// RegisterRoutes registers stock endpoints on the given Chi router.
func (h *StockHandler) RegisterRoutes(r chi.Router) {
	r.Post("/stocks", h.Create)
	r.Get("/stocks", h.List)
	r.Post("/stocks/bulk-update", h.BulkUpdate)
	r.Get("/stocks/low-stock/{code}", h.ListLow)
	r.Get("/stocks/{id}", h.Get)
	r.Put("/stocks/{id}", h.Update)
	r.Patch("/stocks/{id}/quantity", h.SetQuantity)
	r.Delete("/stocks/{id}", h.Delete)
	r.Get("/stocks/{id}/history", h.History)
}

// --- Request / Response types ---

type stockRequest struct {
	RestaurantID string `json:"restaurant_id"`
	Name         string `json:"name"`
	Quantity     string `json:"quantity"`
	Unit         string `json:"unit"`
	Price        string `json:"price"`
	MinQuantity  string `json:"min_quantity"`
	Description  string `json:"description"`
}

type setQuantityRequest struct {
	Quantity string `json:"quantity"`
	Note     string `json:"note"`
}

type bulkUpdateRequest struct {
	RestaurantID string           `json:"restaurant_id"`
	Entries      []bulkStockEntry `json:"entries"`
}

type bulkStockEntry struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Price    string `json:"price"`
}

type stockResponse struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	Name         string    `json:"name"`
	Quantity     string    `json:"quantity"`
	Unit         string    `json:"unit"`
	Price        string    `json:"price"`
	MinQuantity  string    `json:"min_quantity"`
	Description  *string   `json:"description"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type stockHistoryResponse struct {
	ID            uuid.UUID `json:"id"`
	StockID       uuid.UUID `json:"stock_id"`
	Delta         string    `json:"delta"`
	QuantityAfter string    `json:"quantity_after"`
	Note          *string   `json:"note"`
	CreatedAt     time.Time `json:"created_at"`
}

// --- Handlers ---

// Create handles POST /stocks.
func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.RestaurantID == "" || req.Name == "" || req.Unit == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id, name and unit are required"})
		return
	}
	quantity, price, minQuantity, ok := parseStockAmounts(w, req)
	if !ok {
		return
	}

	stock, err := h.store.CreateStock(r.Context(), database.CreateStockParams{
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
		Quantity:     decimalToNumeric(quantity),
		Unit:         req.Unit,
		Price:        decimalToNumeric(price),
		MinQuantity:  decimalToNumeric(minQuantity),
		Description:  toText(req.Description),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "stock already exists for this restaurant"})
			return
		}
		log.Printf("ERROR: create stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toStockResponse(stock))
}

// List handles GET /stocks?restaurant_id=.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id is required"})
		return
	}

	stocks, err := h.store.ListStocksByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list stocks: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toStockResponses(stocks))
}

// ListLow handles GET /stocks/low-stock/{code}, stocks at or below their
// minimum quantity.
func (h *StockHandler) ListLow(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.store.ListLowStocks(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		log.Printf("ERROR: list low stocks: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toStockResponses(stocks))
}

// Get handles GET /stocks/{id}.
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stock id"})
		return
	}

	stock, err := h.store.GetStock(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "stock not found"})
			return
		}
		log.Printf("ERROR: get stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toStockResponse(stock))
}

// Update handles PUT /stocks/{id}.
func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stock id"})
		return
	}

	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.Unit == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and unit are required"})
		return
	}
	quantity, price, minQuantity, ok := parseStockAmounts(w, req)
	if !ok {
		return
	}

	stock, err := h.store.UpdateStock(r.Context(), database.UpdateStockParams{
		ID:          id,
		Name:        req.Name,
		Quantity:    decimalToNumeric(quantity),
		Unit:        req.Unit,
		Price:       decimalToNumeric(price),
		MinQuantity: decimalToNumeric(minQuantity),
		Description: toText(req.Description),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "stock not found"})
			return
		}
		log.Printf("ERROR: update stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toStockResponse(stock))
}

// SetQuantity handles PATCH /stocks/{id}/quantity. Runs through the service
// so the change lands with its history row.
func (h *StockHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stock id"})
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil || quantity.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
		return
	}

	stock, err := h.svc.SetQuantity(r.Context(), id, quantity, req.Note)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toStockResponse(*stock))
	case errors.Is(err, service.ErrStockNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "stock not found"})
	default:
		log.Printf("ERROR: set stock quantity: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// BulkUpdate handles POST /stocks/bulk-update. The whole batch commits or
// rolls back together.
func (h *StockHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	entries := make([]service.BulkStockEntry, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if entry.Name == "" || entry.Unit == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "each entry needs a name and unit"})
			return
		}
		quantity, err := decimal.NewFromString(entry.Quantity)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity in entry " + entry.Name})
			return
		}
		price := decimal.Zero
		if entry.Price != "" {
			price, err = decimal.NewFromString(entry.Price)
			if err != nil || price.IsNegative() {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price in entry " + entry.Name})
				return
			}
		}
		entries = append(entries, service.BulkStockEntry{
			Name:     entry.Name,
			Quantity: quantity,
			Unit:     entry.Unit,
			Price:    price,
		})
	}

	stocks, err := h.svc.BulkUpdate(r.Context(), req.RestaurantID, entries)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toStockResponses(stocks))
	case errors.Is(err, service.ErrMissingRestaurant):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id is required"})
	case errors.Is(err, service.ErrEmptyItems):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "entries must not be empty"})
	default:
		log.Printf("ERROR: bulk stock update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// Delete handles DELETE /stocks/{id}.
func (h *StockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stock id"})
		return
	}

	affected, err := h.store.DeleteStock(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: delete stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if affected == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "stock not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "stock deleted"})
}

// History handles GET /stocks/{id}/history.
func (h *StockHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stock id"})
		return
	}

	history, err := h.store.ListStockHistory(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list stock history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]stockHistoryResponse, len(history))
	for i, entry := range history {
		resp[i] = stockHistoryResponse{
			ID:            entry.ID,
			StockID:       entry.StockID,
			Delta:         numericToString(entry.Delta),
			QuantityAfter: numericToString(entry.QuantityAfter),
			Note:          textOrNil(entry.Note),
			CreatedAt:     entry.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func parseStockAmounts(w http.ResponseWriter, req stockRequest) (quantity, price, minQuantity decimal.Decimal, ok bool) {
	var err error
	quantity = decimal.Zero
	if req.Quantity != "" {
		quantity, err = decimal.NewFromString(req.Quantity)
		if err != nil || quantity.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
			return
		}
	}
	price = decimal.Zero
	if req.Price != "" {
		price, err = decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
			return
		}
	}
	minQuantity = decimal.Zero
	if req.MinQuantity != "" {
		minQuantity, err = decimal.NewFromString(req.MinQuantity)
		if err != nil || minQuantity.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid min_quantity"})
			return
		}
	}
	return quantity, price, minQuantity, true
}

func toStockResponse(s database.Stock) stockResponse {
	return stockResponse{
		ID:           s.ID,
		RestaurantID: s.RestaurantID,
		Name:         s.Name,
		Quantity:     numericToString(s.Quantity),
		Unit:         s.Unit,
		Price:        numericToString(s.Price),
		MinQuantity:  numericToString(s.MinQuantity),
		Description:  textOrNil(s.Description),
		IsAvailable:  s.IsAvailable,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func toStockResponses(stocks []database.Stock) []stockResponse {
	resp := make([]stockResponse, len(stocks))
	for i, s := range stocks {
		resp[i] = toStockResponse(s)
	}
	return resp
}
