package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mesabook/api/internal/database"
	"github.com/mesabook/api/internal/enum"
	"github.com/mesabook/api/internal/handler"
	"github.com/mesabook/api/internal/middleware"
)

// --- Mock RestaurantStore ---

type mockRestaurantStore struct {
	createFn      func(ctx context.Context, arg database.CreateRestaurantParams) (database.Restaurant, error)
	getByCodeFn   func(ctx context.Context, code string) (database.Restaurant, error)
	countByCodeFn func(ctx context.Context, code string) (int64, error)
	listByOwnerFn func(ctx context.Context, ownerEmail string) ([]database.Restaurant, error)
	updateFn      func(ctx context.Context, arg database.UpdateRestaurantParams) (database.Restaurant, error)
	setOnlineFn   func(ctx context.Context, arg database.SetRestaurantOnlineParams) (database.Restaurant, error)
	deleteFn      func(ctx context.Context, code string) (int64, error)
}

func (m *mockRestaurantStore) CreateRestaurant(ctx context.Context, arg database.CreateRestaurantParams) (database.Restaurant, error) {
	if m.createFn != nil {
		return m.createFn(ctx, arg)
	}
	return database.Restaurant{}, pgx.ErrNoRows
}

func (m *mockRestaurantStore) GetRestaurantByCode(ctx context.Context, code string) (database.Restaurant, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return database.Restaurant{}, pgx.ErrNoRows
}

func (m *mockRestaurantStore) CountRestaurantsByCode(ctx context.Context, code string) (int64, error) {
	if m.countByCodeFn != nil {
		return m.countByCodeFn(ctx, code)
	}
	return 0, nil
}

func (m *mockRestaurantStore) ListRestaurantsByOwner(ctx context.Context, ownerEmail string) ([]database.Restaurant, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerEmail)
	}
	return []database.Restaurant{}, nil
}

func (m *mockRestaurantStore) UpdateRestaurant(ctx context.Context, arg database.UpdateRestaurantParams) (database.Restaurant, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, arg)
	}
	return database.Restaurant{}, pgx.ErrNoRows
}

func (m *mockRestaurantStore) SetRestaurantOnline(ctx context.Context, arg database.SetRestaurantOnlineParams) (database.Restaurant, error) {
	if m.setOnlineFn != nil {
		return m.setOnlineFn(ctx, arg)
	}
	return database.Restaurant{}, pgx.ErrNoRows
}

func (m *mockRestaurantStore) DeleteRestaurant(ctx context.Context, code string) (int64, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, code)
	}
	return 0, nil
}

func setupRestaurantRouter(store *mockRestaurantStore) *chi.Mux {
	h := handler.NewRestaurantHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Group(h.RegisterRoutes)
	return r
}

func testRestaurant(code string) database.Restaurant {
	now := time.Now()
	return database.Restaurant{
		ID:             uuid.New(),
		Code:           code,
		Name:           "Dosa Corner",
		RestaurantType: enum.RestaurantTypeRestaurant,
		OwnerEmail:     "owner@example.com",
		Currency:       "INR",
		Online:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// --- Tests ---

func TestRestaurantCreate_HappyPath(t *testing.T) {
	claims := testClaims()
	store := &mockRestaurantStore{
		createFn: func(ctx context.Context, arg database.CreateRestaurantParams) (database.Restaurant, error) {
			if arg.OwnerEmail != claims.Email {
				t.Errorf("owner_email: got %v, want %v", arg.OwnerEmail, claims.Email)
			}
			if !arg.Online {
				t.Error("online: got false, want true on create")
			}
			if arg.Currency != "INR" {
				t.Errorf("currency: got %v, want default INR", arg.Currency)
			}
			r := testRestaurant(arg.Code)
			r.Name = arg.Name
			return r, nil
		},
	}
	router := setupRestaurantRouter(store)

	rr := doAuthRequest(t, router, "POST", "/restaurants", map[string]interface{}{
		"code":            "REST01",
		"name":            "Dosa Corner",
		"restaurant_type": enum.RestaurantTypeRestaurant,
	}, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["code"] != "REST01" {
		t.Errorf("code: got %v, want REST01", resp["code"])
	}
}

func TestRestaurantCreate_DuplicateCode(t *testing.T) {
	store := &mockRestaurantStore{
		createFn: func(ctx context.Context, arg database.CreateRestaurantParams) (database.Restaurant, error) {
			return database.Restaurant{}, &pgconn.PgError{Code: "23505"}
		},
	}
	router := setupRestaurantRouter(store)

	rr := doAuthRequest(t, router, "POST", "/restaurants", map[string]interface{}{
		"code":            "REST01",
		"name":            "Dosa Corner",
		"restaurant_type": enum.RestaurantTypeRestaurant,
	}, testClaims())

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestRestaurantCreate_InvalidType(t *testing.T) {
	router := setupRestaurantRouter(&mockRestaurantStore{})

	rr := doAuthRequest(t, router, "POST", "/restaurants", map[string]interface{}{
		"code":            "REST01",
		"name":            "Dosa Corner",
		"restaurant_type": "FoodTruck",
	}, testClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRestaurantCheckCode(t *testing.T) {
	store := &mockRestaurantStore{
		countByCodeFn: func(ctx context.Context, code string) (int64, error) {
			if code == "TAKEN" {
				return 1, nil
			}
			return 0, nil
		},
	}
	router := setupRestaurantRouter(store)

	rr := doAuthRequest(t, router, "GET", "/restaurants/check-code?code=TAKEN", nil, testClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if resp := decodeResponse(t, rr); resp["available"] != false {
		t.Errorf("available: got %v, want false", resp["available"])
	}

	rr = doAuthRequest(t, router, "GET", "/restaurants/check-code?code=FREE", nil, testClaims())
	if resp := decodeResponse(t, rr); resp["available"] != true {
		t.Errorf("available: got %v, want true", resp["available"])
	}
}

func TestRestaurantList_ScopedToOwner(t *testing.T) {
	claims := testClaims()
	store := &mockRestaurantStore{
		listByOwnerFn: func(ctx context.Context, ownerEmail string) ([]database.Restaurant, error) {
			if ownerEmail != claims.Email {
				t.Errorf("owner_email: got %v, want %v", ownerEmail, claims.Email)
			}
			return []database.Restaurant{testRestaurant("REST01"), testRestaurant("REST02")}, nil
		},
	}
	router := setupRestaurantRouter(store)

	rr := doAuthRequest(t, router, "GET", "/restaurants", nil, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if list := decodeListResponse(t, rr); len(list) != 2 {
		t.Errorf("restaurants: got %d, want 2", len(list))
	}
}

func TestRestaurantGet_NotFound(t *testing.T) {
	router := setupRestaurantRouter(&mockRestaurantStore{})

	rr := doAuthRequest(t, router, "GET", "/restaurants/NOPE", nil, testClaims())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestRestaurantUpdateStatus(t *testing.T) {
	store := &mockRestaurantStore{
		setOnlineFn: func(ctx context.Context, arg database.SetRestaurantOnlineParams) (database.Restaurant, error) {
			if arg.Online {
				t.Error("online: got true, want false")
			}
			r := testRestaurant(arg.Code)
			r.Online = arg.Online
			return r, nil
		},
	}
	router := setupRestaurantRouter(store)

	rr := doAuthRequest(t, router, "PATCH", "/restaurants/REST01/status", map[string]interface{}{
		"online": false,
	}, testClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["online"] != false {
		t.Errorf("online: got %v, want false", resp["online"])
	}
}

func TestRestaurantDelete_NotFound(t *testing.T) {
	router := setupRestaurantRouter(&mockRestaurantStore{})

	rr := doAuthRequest(t, router, "DELETE", "/restaurants/NOPE", nil, testClaims())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
