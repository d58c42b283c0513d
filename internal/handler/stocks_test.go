package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mesabook/api/internal/database"
	"github.com/mesabook/api/internal/handler"
	"github.com/mesabook/api/internal/middleware"
	"github.com/mesabook/api/internal/service"
	"github.com/shopspring/decimal"
)

// --- Mock StockServicer ---

type mockStockService struct {
	setQuantityFn func(ctx context.Context, stockID uuid.UUID, quantity decimal.Decimal, note string) (*database.Stock, error)
	bulkUpdateFn  func(ctx context.Context, restaurantID string, entries []service.BulkStockEntry) ([]database.Stock, error)
}

func (m *mockStockService) SetQuantity(ctx context.Context, stockID uuid.UUID, quantity decimal.Decimal, note string) (*database.Stock, error) {
	return m.setQuantityFn(ctx, stockID, quantity, note)
}

func (m *mockStockService) BulkUpdate(ctx context.Context, restaurantID string, entries []service.BulkStockEntry) ([]database.Stock, error) {
	return m.bulkUpdateFn(ctx, restaurantID, entries)
}

// --- Mock StockStore ---

type mockStockHandlerStore struct {
	createFn           func(ctx context.Context, arg database.CreateStockParams) (database.Stock, error)
	getFn              func(ctx context.Context, id uuid.UUID) (database.Stock, error)
	listByRestaurantFn func(ctx context.Context, restaurantID string) ([]database.Stock, error)
	listLowFn          func(ctx context.Context, restaurantID string) ([]database.Stock, error)
	updateFn           func(ctx context.Context, arg database.UpdateStockParams) (database.Stock, error)
	deleteFn           func(ctx context.Context, id uuid.UUID) (int64, error)
	listHistoryFn      func(ctx context.Context, stockID uuid.UUID) ([]database.StockHistory, error)
}

func (m *mockStockHandlerStore) CreateStock(ctx context.Context, arg database.CreateStockParams) (database.Stock, error) {
	if m.createFn != nil {
		return m.createFn(ctx, arg)
	}
	return database.Stock{}, pgx.ErrNoRows
}

func (m *mockStockHandlerStore) GetStock(ctx context.Context, id uuid.UUID) (database.Stock, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return database.Stock{}, pgx.ErrNoRows
}

func (m *mockStockHandlerStore) ListStocksByRestaurant(ctx context.Context, restaurantID string) ([]database.Stock, error) {
	if m.listByRestaurantFn != nil {
		return m.listByRestaurantFn(ctx, restaurantID)
	}
	return []database.Stock{}, nil
}

func (m *mockStockHandlerStore) ListLowStocks(ctx context.Context, restaurantID string) ([]database.Stock, error) {
	if m.listLowFn != nil {
		return m.listLowFn(ctx, restaurantID)
	}
	return []database.Stock{}, nil
}

func (m *mockStockHandlerStore) UpdateStock(ctx context.Context, arg database.UpdateStockParams) (database.Stock, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, arg)
	}
	return database.Stock{}, pgx.ErrNoRows
}

func (m *mockStockHandlerStore) DeleteStock(ctx context.Context, id uuid.UUID) (int64, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return 0, nil
}

func (m *mockStockHandlerStore) ListStockHistory(ctx context.Context, stockID uuid.UUID) ([]database.StockHistory, error) {
	if m.listHistoryFn != nil {
		return m.listHistoryFn(ctx, stockID)
	}
	return []database.StockHistory{}, nil
}

func setupStockRouter(svc *mockStockService, store *mockStockHandlerStore) *chi.Mux {
	h := handler.NewStockHandler(svc, store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Group(h.RegisterRoutes)
	return r
}

func testStock(restaurantID, name string) database.Stock {
	now := time.Now()
	return database.Stock{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Name:         name,
		Quantity:     testNumeric("12.00"),
		Unit:         "kg",
		Price:        testNumeric("55.00"),
		MinQuantity:  testNumeric("5.00"),
		IsAvailable:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// --- Tests ---

func TestStockCreate_HappyPath(t *testing.T) {
	store := &mockStockHandlerStore{
		createFn: func(ctx context.Context, arg database.CreateStockParams) (database.Stock, error) {
			if arg.RestaurantID != "REST01" {
				t.Errorf("restaurant_id: got %v, want REST01", arg.RestaurantID)
			}
			return testStock(arg.RestaurantID, arg.Name), nil
		},
	}
	router := setupStockRouter(&mockStockService{}, store)

	rr := doAuthRequest(t, router, "POST", "/stocks", map[string]interface{}{
		"restaurant_id": "REST01",
		"name":          "Rice",
		"quantity":      "12.00",
		"unit":          "kg",
		"price":         "55.00",
		"min_quantity":  "5.00",
	}, testClaims())

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["quantity"] != "12.00" {
		t.Errorf("quantity: got %v, want 12.00", resp["quantity"])
	}
}

func TestStockCreate_MissingFields(t *testing.T) {
	router := setupStockRouter(&mockStockService{}, &mockStockHandlerStore{})

	rr := doAuthRequest(t, router, "POST", "/stocks", map[string]interface{}{
		"name": "Rice",
	}, testClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestStockSetQuantity_HappyPath(t *testing.T) {
	stock := testStock("REST01", "Rice")
	svc := &mockStockService{
		setQuantityFn: func(ctx context.Context, stockID uuid.UUID, quantity decimal.Decimal, note string) (*database.Stock, error) {
			if stockID != stock.ID {
				t.Errorf("stock id: got %v, want %v", stockID, stock.ID)
			}
			if quantity.StringFixed(2) != "6.00" {
				t.Errorf("quantity: got %v, want 6.00", quantity)
			}
			if note != "spoilage" {
				t.Errorf("note: got %v, want spoilage", note)
			}
			updated := stock
			updated.Quantity = testNumeric("6.00")
			return &updated, nil
		},
	}
	router := setupStockRouter(svc, &mockStockHandlerStore{})

	rr := doAuthRequest(t, router, "PATCH", "/stocks/"+stock.ID.String()+"/quantity", map[string]interface{}{
		"quantity": "6.00",
		"note":     "spoilage",
	}, testClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["quantity"] != "6.00" {
		t.Errorf("quantity: got %v, want 6.00", resp["quantity"])
	}
}

func TestStockSetQuantity_NotFound(t *testing.T) {
	svc := &mockStockService{
		setQuantityFn: func(ctx context.Context, stockID uuid.UUID, quantity decimal.Decimal, note string) (*database.Stock, error) {
			return nil, service.ErrStockNotFound
		},
	}
	router := setupStockRouter(svc, &mockStockHandlerStore{})

	rr := doAuthRequest(t, router, "PATCH", "/stocks/"+uuid.New().String()+"/quantity", map[string]interface{}{
		"quantity": "6.00",
	}, testClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestStockSetQuantity_NegativeRejected(t *testing.T) {
	router := setupStockRouter(&mockStockService{}, &mockStockHandlerStore{})

	rr := doAuthRequest(t, router, "PATCH", "/stocks/"+uuid.New().String()+"/quantity", map[string]interface{}{
		"quantity": "-1.00",
	}, testClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestStockBulkUpdate_HappyPath(t *testing.T) {
	svc := &mockStockService{
		bulkUpdateFn: func(ctx context.Context, restaurantID string, entries []service.BulkStockEntry) ([]database.Stock, error) {
			if restaurantID != "REST01" {
				t.Errorf("restaurant_id: got %v, want REST01", restaurantID)
			}
			if len(entries) != 2 {
				t.Fatalf("entries: got %d, want 2", len(entries))
			}
			if entries[0].Quantity.StringFixed(2) != "10.00" {
				t.Errorf("entry quantity: got %v, want 10.00", entries[0].Quantity)
			}
			return []database.Stock{testStock(restaurantID, "Rice"), testStock(restaurantID, "Oil")}, nil
		},
	}
	router := setupStockRouter(svc, &mockStockHandlerStore{})

	rr := doAuthRequest(t, router, "POST", "/stocks/bulk-update", map[string]interface{}{
		"restaurant_id": "REST01",
		"entries": []map[string]interface{}{
			{"name": "Rice", "quantity": "10.00", "unit": "kg", "price": "55.00"},
			{"name": "Oil", "quantity": "3.00", "unit": "l", "price": "120.00"},
		},
	}, testClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if list := decodeListResponse(t, rr); len(list) != 2 {
		t.Errorf("stocks: got %d, want 2", len(list))
	}
}

func TestStockBulkUpdate_EmptyEntries(t *testing.T) {
	svc := &mockStockService{
		bulkUpdateFn: func(ctx context.Context, restaurantID string, entries []service.BulkStockEntry) ([]database.Stock, error) {
			return nil, service.ErrEmptyItems
		},
	}
	router := setupStockRouter(svc, &mockStockHandlerStore{})

	rr := doAuthRequest(t, router, "POST", "/stocks/bulk-update", map[string]interface{}{
		"restaurant_id": "REST01",
	}, testClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestStockListLow(t *testing.T) {
	store := &mockStockHandlerStore{
		listLowFn: func(ctx context.Context, restaurantID string) ([]database.Stock, error) {
			low := testStock(restaurantID, "Rice")
			low.Quantity = testNumeric("2.00")
			return []database.Stock{low}, nil
		},
	}
	router := setupStockRouter(&mockStockService{}, store)

	rr := doAuthRequest(t, router, "GET", "/stocks/low-stock/REST01", nil, testClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	list := decodeListResponse(t, rr)
	if len(list) != 1 {
		t.Fatalf("low stocks: got %d, want 1", len(list))
	}
	entry := list[0].(map[string]interface{})
	if entry["quantity"] != "2.00" {
		t.Errorf("quantity: got %v, want 2.00", entry["quantity"])
	}
}

func TestStockHistory(t *testing.T) {
	stockID := uuid.New()
	store := &mockStockHandlerStore{
		listHistoryFn: func(ctx context.Context, id uuid.UUID) ([]database.StockHistory, error) {
			if id != stockID {
				t.Errorf("stock id: got %v, want %v", id, stockID)
			}
			return []database.StockHistory{
				{ID: uuid.New(), StockID: id, Delta: testNumeric("-6.00"), QuantityAfter: testNumeric("6.00"), CreatedAt: time.Now()},
			}, nil
		},
	}
	router := setupStockRouter(&mockStockService{}, store)

	rr := doAuthRequest(t, router, "GET", "/stocks/"+stockID.String()+"/history", nil, testClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	list := decodeListResponse(t, rr)
	if len(list) != 1 {
		t.Fatalf("history: got %d, want 1", len(list))
	}
	entry := list[0].(map[string]interface{})
	if entry["delta"] != "-6.00" {
		t.Errorf("delta: got %v, want -6.00", entry["delta"])
	}
}

func TestStockDelete_NotFound(t *testing.T) {
	router := setupStockRouter(&mockStockService{}, &mockStockHandlerStore{})

	rr := doAuthRequest(t, router, "DELETE", "/stocks/"+uuid.New().String(), nil, testClaims())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
