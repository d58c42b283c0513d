package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mesabook/api/internal/auth"
	"github.com/mesabook/api/internal/database"
	"github.com/mesabook/api/internal/enum"
	"github.com/mesabook/api/internal/handler"
	"github.com/mesabook/api/internal/middleware"
	"github.com/mesabook/api/internal/service"
	"github.com/mesabook/api/internal/ws"
)

// --- Mock OrderServicer ---

type mockOrderService struct {
	createFn func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	splitFn  func(ctx context.Context, req service.SplitOrderRequest) (*service.SplitOrderResult, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
	return m.createFn(ctx, req)
}

func (m *mockOrderService) SplitOrder(ctx context.Context, req service.SplitOrderRequest) (*service.SplitOrderResult, error) {
	return m.splitFn(ctx, req)
}

// --- Mock OrderStore ---

type mockOrderStore struct {
	getOrderFn               func(ctx context.Context, id uuid.UUID) (database.Order, error)
	listOrdersByRestaurantFn func(ctx context.Context, restaurantID string) ([]database.Order, error)
	listOrdersByPhoneFn      func(ctx context.Context, phoneNumber string) ([]database.Order, error)
	listOrderItemsByOrderFn  func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	listOpenOrdersFn         func(ctx context.Context, arg database.ListOpenOrdersParams) ([]database.Order, error)
	updateOrderStatusFn      func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	markOrderPaidFn          func(ctx context.Context, id uuid.UUID) (database.Order, error)
	getRestaurantByCodeFn    func(ctx context.Context, code string) (database.Restaurant, error)
}

func (m *mockOrderStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	if m.getOrderFn != nil {
		return m.getOrderFn(ctx, id)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) ListOrdersByRestaurant(ctx context.Context, restaurantID string) ([]database.Order, error) {
	if m.listOrdersByRestaurantFn != nil {
		return m.listOrdersByRestaurantFn(ctx, restaurantID)
	}
	return []database.Order{}, nil
}

func (m *mockOrderStore) ListOrdersByPhone(ctx context.Context, phoneNumber string) ([]database.Order, error) {
	if m.listOrdersByPhoneFn != nil {
		return m.listOrdersByPhoneFn(ctx, phoneNumber)
	}
	return []database.Order{}, nil
}

func (m *mockOrderStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	if m.listOrderItemsByOrderFn != nil {
		return m.listOrderItemsByOrderFn(ctx, orderID)
	}
	return []database.OrderItem{}, nil
}

func (m *mockOrderStore) ListOpenOrders(ctx context.Context, arg database.ListOpenOrdersParams) ([]database.Order, error) {
	if m.listOpenOrdersFn != nil {
		return m.listOpenOrdersFn(ctx, arg)
	}
	return []database.Order{}, nil
}

func (m *mockOrderStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	if m.updateOrderStatusFn != nil {
		return m.updateOrderStatusFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) MarkOrderPaid(ctx context.Context, id uuid.UUID) (database.Order, error) {
	if m.markOrderPaidFn != nil {
		return m.markOrderPaidFn(ctx, id)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) GetRestaurantByCode(ctx context.Context, code string) (database.Restaurant, error) {
	if m.getRestaurantByCodeFn != nil {
		return m.getRestaurantByCodeFn(ctx, code)
	}
	return database.Restaurant{}, pgx.ErrNoRows
}

// --- Mock Broadcaster ---

type mockHub struct {
	mu     sync.Mutex
	events []broadcastCall
}

type broadcastCall struct {
	room  string
	event ws.Event
}

func (m *mockHub) BroadcastToRestaurant(restaurantCode string, event ws.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, broadcastCall{room: restaurantCode, event: event})
}

func (m *mockHub) calls() []broadcastCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]broadcastCall(nil), m.events...)
}

// --- Test helpers ---

const testJWTSecret = "test-secret-for-handlers"

func testClaims() *auth.Claims {
	return &auth.Claims{
		AdminID: uuid.New(),
		Email:   "owner@example.com",
	}
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()

	token, err := auth.GenerateToken(testJWTSecret, claims.AdminID, claims.Email)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeListResponse(t *testing.T, rr *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var resp []interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func testNumeric(s string) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		panic(err)
	}
	return n
}

func setupOrderRouter(svc *mockOrderService, store *mockOrderStore, hub *mockHub) *chi.Mux {
	h := handler.NewOrderHandler(svc, store, hub)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Group(h.RegisterRoutes)
	return r
}

func testOrder(restaurantID string) database.Order {
	now := time.Now()
	return database.Order{
		ID:            uuid.New(),
		OrderNumber:   "MB-1042",
		Subtotal:      testNumeric("100.00"),
		Tax:           testNumeric("5.00"),
		Total:         testNumeric("105.00"),
		TableNumber:   4,
		PaymentMethod: enum.PaymentMethodCounter,
		Paid:          false,
		OrderStatus:   enum.OrderStatusProcessing,
		RestaurantID:  restaurantID,
		UserID:        "walk-in",
		PhoneNumber:   "9876543210",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// --- Tests ---

func TestOrderCreate_HappyPath(t *testing.T) {
	claims := testClaims()
	order := testOrder("REST01")

	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			if req.RestaurantID != "REST01" {
				t.Errorf("restaurant_id: got %v, want REST01", req.RestaurantID)
			}
			if len(req.Items) != 2 {
				t.Errorf("items count: got %d, want 2", len(req.Items))
			}
			return &service.CreateOrderResult{
				Order: order,
				Items: []database.OrderItem{
					{ID: uuid.New(), OrderID: order.ID, Name: "Masala Dosa", Price: testNumeric("40.00"), Quantity: 2},
					{ID: uuid.New(), OrderID: order.ID, Name: "Filter Coffee", Price: testNumeric("20.00"), Quantity: 1},
				},
			}, nil
		},
	}
	hub := &mockHub{}
	router := setupOrderRouter(svc, &mockOrderStore{}, hub)

	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"restaurant_id": "REST01",
		"order_number":  "MB-1042",
		"subtotal":      "100.00",
		"tax":           "5.00",
		"total":         "105.00",
		"items": []map[string]interface{}{
			{"name": "Masala Dosa", "price": "40.00", "quantity": 2},
			{"name": "Filter Coffee", "price": "20.00", "quantity": 1},
		},
	}, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["order_number"] != "MB-1042" {
		t.Errorf("order_number: got %v, want MB-1042", resp["order_number"])
	}
	if resp["total"] != "105.00" {
		t.Errorf("total: got %v, want 105.00", resp["total"])
	}
	items, ok := resp["items"].([]interface{})
	if !ok || len(items) != 2 {
		t.Fatalf("items: got %v, want 2 entries", resp["items"])
	}

	calls := hub.calls()
	if len(calls) != 1 {
		t.Fatalf("broadcasts: got %d, want 1", len(calls))
	}
	if calls[0].room != "REST01" {
		t.Errorf("broadcast room: got %v, want REST01", calls[0].room)
	}
	if calls[0].event.Type != ws.EventOrderCreated {
		t.Errorf("event type: got %v, want %v", calls[0].event.Type, ws.EventOrderCreated)
	}
}

func TestOrderCreate_ValidationError(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			return nil, service.ErrEmptyItems
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, &mockHub{})

	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"restaurant_id": "REST01",
		"order_number":  "MB-1",
	}, testClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestOrderCreate_DuplicateOrderNumber(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			return nil, service.ErrDuplicateOrderNumber
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, &mockHub{})

	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"restaurant_id": "REST01",
		"order_number":  "MB-1042",
		"items":         []map[string]interface{}{{"name": "Tea", "price": "10.00", "quantity": 1}},
	}, testClaims())

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestOrderList_RequiresRestaurantID(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderStore{}, &mockHub{})

	rr := doAuthRequest(t, router, "GET", "/orders", nil, testClaims())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOrderGet_NotFound(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderStore{}, &mockHub{})

	rr := doAuthRequest(t, router, "GET", "/orders/"+uuid.New().String(), nil, testClaims())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestOrderCurrent_CanteenExcludesFinished(t *testing.T) {
	var captured database.ListOpenOrdersParams
	store := &mockOrderStore{
		getRestaurantByCodeFn: func(ctx context.Context, code string) (database.Restaurant, error) {
			return database.Restaurant{Code: code, RestaurantType: enum.RestaurantTypeCanteen}, nil
		},
		listOpenOrdersFn: func(ctx context.Context, arg database.ListOpenOrdersParams) ([]database.Order, error) {
			captured = arg
			return []database.Order{testOrder("CANT01")}, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockHub{})

	rr := doAuthRequest(t, router, "GET", "/orders/current?restaurant_id=CANT01", nil, testClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	want := []string{enum.OrderStatusCompleted, enum.OrderStatusCancelled}
	if len(captured.ExcludedStatuses) != 2 || captured.ExcludedStatuses[0] != want[0] || captured.ExcludedStatuses[1] != want[1] {
		t.Errorf("excluded statuses: got %v, want %v", captured.ExcludedStatuses, want)
	}

	resp := decodeResponse(t, rr)
	if resp["count"] != float64(1) {
		t.Errorf("count: got %v, want 1", resp["count"])
	}
	if resp["latest"] == nil {
		t.Error("latest: got nil, want first order")
	}
}

func TestOrderCurrent_RestaurantExcludesUnsent(t *testing.T) {
	var captured database.ListOpenOrdersParams
	store := &mockOrderStore{
		getRestaurantByCodeFn: func(ctx context.Context, code string) (database.Restaurant, error) {
			return database.Restaurant{Code: code, RestaurantType: enum.RestaurantTypeRestaurant}, nil
		},
		listOpenOrdersFn: func(ctx context.Context, arg database.ListOpenOrdersParams) ([]database.Order, error) {
			captured = arg
			return nil, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockHub{})

	rr := doAuthRequest(t, router, "GET", "/orders/current?restaurant_id=REST01", nil, testClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	want := []string{enum.OrderStatusNotcomplete, enum.OrderStatusCancelled}
	if len(captured.ExcludedStatuses) != 2 || captured.ExcludedStatuses[0] != want[0] || captured.ExcludedStatuses[1] != want[1] {
		t.Errorf("excluded statuses: got %v, want %v", captured.ExcludedStatuses, want)
	}

	resp := decodeResponse(t, rr)
	if resp["count"] != float64(0) {
		t.Errorf("count: got %v, want 0", resp["count"])
	}
}

func TestOrderComplete_BroadcastsEvent(t *testing.T) {
	order := testOrder("REST01")
	order.OrderStatus = enum.OrderStatusCompleted

	store := &mockOrderStore{
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
			if arg.OrderStatus != enum.OrderStatusCompleted {
				t.Errorf("status: got %v, want %v", arg.OrderStatus, enum.OrderStatusCompleted)
			}
			return order, nil
		},
	}
	hub := &mockHub{}
	router := setupOrderRouter(&mockOrderService{}, store, hub)

	rr := doAuthRequest(t, router, "PATCH", "/orders/"+order.ID.String()+"/complete", nil, testClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	calls := hub.calls()
	if len(calls) != 1 || calls[0].event.Type != ws.EventOrderCompleted {
		t.Fatalf("broadcasts: got %v, want one %v event", calls, ws.EventOrderCompleted)
	}
}

func TestOrderMarkPaid(t *testing.T) {
	order := testOrder("REST01")
	order.Paid = true

	store := &mockOrderStore{
		markOrderPaidFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			if id != order.ID {
				t.Errorf("order id: got %v, want %v", id, order.ID)
			}
			return order, nil
		},
	}
	hub := &mockHub{}
	router := setupOrderRouter(&mockOrderService{}, store, hub)

	rr := doAuthRequest(t, router, "PATCH", "/payments/"+order.ID.String()+"/mark-paid", nil, testClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["paid"] != true {
		t.Errorf("paid: got %v, want true", resp["paid"])
	}
	calls := hub.calls()
	if len(calls) != 1 || calls[0].event.Type != ws.EventOrderPaid {
		t.Fatalf("broadcasts: got %v, want one %v event", calls, ws.EventOrderPaid)
	}
}

func TestOrderSplit_HappyPath(t *testing.T) {
	original := testOrder("REST01")
	original.Total = testNumeric("63.00")

	split := testOrder("REST01")
	split.OrderNumber = original.OrderNumber + "(Split)"
	split.Subtotal = testNumeric("40.00")
	split.Tax = testNumeric("2.00")
	split.Total = testNumeric("42.00")
	split.PaymentMethod = enum.PaymentMethodGooglePay
	split.Paid = true

	svc := &mockOrderService{
		splitFn: func(ctx context.Context, req service.SplitOrderRequest) (*service.SplitOrderResult, error) {
			if req.OnlineAmount != "42.00" {
				t.Errorf("online amount: got %v, want 42.00", req.OnlineAmount)
			}
			return &service.SplitOrderResult{Original: original, Split: split}, nil
		},
	}
	hub := &mockHub{}
	router := setupOrderRouter(svc, &mockOrderStore{}, hub)

	rr := doAuthRequest(t, router, "POST", "/orders/split", map[string]interface{}{
		"order_id":      original.ID.String(),
		"online_amount": "42.00",
	}, testClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	splitResp := resp["split"].(map[string]interface{})
	if splitResp["order_number"] != "MB-1042(Split)" {
		t.Errorf("split order_number: got %v, want MB-1042(Split)", splitResp["order_number"])
	}
	if splitResp["payment_method"] != enum.PaymentMethodGooglePay {
		t.Errorf("split payment_method: got %v, want googlepay", splitResp["payment_method"])
	}
	origResp := resp["original"].(map[string]interface{})
	if origResp["total"] != "63.00" {
		t.Errorf("original total: got %v, want 63.00", origResp["total"])
	}

	calls := hub.calls()
	if len(calls) != 1 || calls[0].event.Type != ws.EventOrderSplit {
		t.Fatalf("broadcasts: got %v, want one %v event", calls, ws.EventOrderSplit)
	}
}

func TestOrderSplit_AmountOutOfRange(t *testing.T) {
	svc := &mockOrderService{
		splitFn: func(ctx context.Context, req service.SplitOrderRequest) (*service.SplitOrderResult, error) {
			return nil, service.ErrInvalidSplitAmount
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, &mockHub{})

	rr := doAuthRequest(t, router, "POST", "/orders/split", map[string]interface{}{
		"order_id":      uuid.New().String(),
		"online_amount": "9999.00",
	}, testClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestOrderSplit_NotFound(t *testing.T) {
	svc := &mockOrderService{
		splitFn: func(ctx context.Context, req service.SplitOrderRequest) (*service.SplitOrderResult, error) {
			return nil, service.ErrOrderNotFound
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, &mockHub{})

	rr := doAuthRequest(t, router, "POST", "/orders/split", map[string]interface{}{
		"order_id":      uuid.New().String(),
		"online_amount": "10.00",
	}, testClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestOrderRoutes_RequireAuth(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderStore{}, &mockHub{})

	req := httptest.NewRequest("GET", "/orders?restaurant_id=REST01", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
