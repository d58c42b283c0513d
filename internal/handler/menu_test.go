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
	"github.com/mesabook/api/internal/handler"
	"github.com/mesabook/api/internal/middleware"
	"github.com/mesabook/api/internal/service"
)

// --- Mock MenuServicer ---

type mockMenuService struct {
	addItemFn        func(ctx context.Context, req service.AddMenuItemRequest) (*database.MenuItem, error)
	deleteItemFn     func(ctx context.Context, itemID uuid.UUID) error
	deleteCategoryFn func(ctx context.Context, restaurantID, name string) error
}

func (m *mockMenuService) AddItem(ctx context.Context, req service.AddMenuItemRequest) (*database.MenuItem, error) {
	return m.addItemFn(ctx, req)
}

func (m *mockMenuService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return m.deleteItemFn(ctx, itemID)
}

func (m *mockMenuService) DeleteCategory(ctx context.Context, restaurantID, name string) error {
	return m.deleteCategoryFn(ctx, restaurantID, name)
}

// --- Mock MenuStore ---

type mockMenuHandlerStore struct {
	createCategoryFn    func(ctx context.Context, arg database.CreateMenuCategoryParams) (database.MenuCategory, error)
	listCategoriesFn    func(ctx context.Context, restaurantID string) ([]database.MenuCategory, error)
	getCategoryByNameFn func(ctx context.Context, arg database.GetMenuCategoryByNameParams) (database.MenuCategory, error)
	listByCategoryFn    func(ctx context.Context, categoryID uuid.UUID) ([]database.MenuItem, error)
	listByRestaurantFn  func(ctx context.Context, restaurantID string) ([]database.MenuItem, error)
	getItemFn           func(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	updateItemFn        func(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	setAvailabilityFn   func(ctx context.Context, arg database.SetMenuItemAvailabilityParams) (database.MenuItem, error)
}

func (m *mockMenuHandlerStore) CreateMenuCategory(ctx context.Context, arg database.CreateMenuCategoryParams) (database.MenuCategory, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(ctx, arg)
	}
	return database.MenuCategory{}, pgx.ErrNoRows
}

func (m *mockMenuHandlerStore) ListMenuCategories(ctx context.Context, restaurantID string) ([]database.MenuCategory, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(ctx, restaurantID)
	}
	return []database.MenuCategory{}, nil
}

func (m *mockMenuHandlerStore) GetMenuCategoryByName(ctx context.Context, arg database.GetMenuCategoryByNameParams) (database.MenuCategory, error) {
	if m.getCategoryByNameFn != nil {
		return m.getCategoryByNameFn(ctx, arg)
	}
	return database.MenuCategory{}, pgx.ErrNoRows
}

func (m *mockMenuHandlerStore) ListMenuItemsByCategory(ctx context.Context, categoryID uuid.UUID) ([]database.MenuItem, error) {
	if m.listByCategoryFn != nil {
		return m.listByCategoryFn(ctx, categoryID)
	}
	return []database.MenuItem{}, nil
}

func (m *mockMenuHandlerStore) ListMenuItemsByRestaurant(ctx context.Context, restaurantID string) ([]database.MenuItem, error) {
	if m.listByRestaurantFn != nil {
		return m.listByRestaurantFn(ctx, restaurantID)
	}
	return []database.MenuItem{}, nil
}

func (m *mockMenuHandlerStore) GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error) {
	if m.getItemFn != nil {
		return m.getItemFn(ctx, id)
	}
	return database.MenuItem{}, pgx.ErrNoRows
}

func (m *mockMenuHandlerStore) UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error) {
	if m.updateItemFn != nil {
		return m.updateItemFn(ctx, arg)
	}
	return database.MenuItem{}, pgx.ErrNoRows
}

func (m *mockMenuHandlerStore) SetMenuItemAvailability(ctx context.Context, arg database.SetMenuItemAvailabilityParams) (database.MenuItem, error) {
	if m.setAvailabilityFn != nil {
		return m.setAvailabilityFn(ctx, arg)
	}
	return database.MenuItem{}, pgx.ErrNoRows
}

func setupMenuRouter(svc *mockMenuService, store *mockMenuHandlerStore) *chi.Mux {
	h := handler.NewMenuHandler(svc, store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Group(h.RegisterRoutes)
	return r
}

func testMenuItem(categoryID uuid.UUID, restaurantID, name string) database.MenuItem {
	now := time.Now()
	return database.MenuItem{
		ID:           uuid.New(),
		CategoryID:   categoryID,
		RestaurantID: restaurantID,
		Name:         name,
		Description:  "house special",
		Price:        testNumeric("40.00"),
		Margin:       testNumeric("35.00"),
		IsAvailable:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// --- Tests ---

func TestMenuCreateCategory_HappyPath(t *testing.T) {
	store := &mockMenuHandlerStore{
		createCategoryFn: func(ctx context.Context, arg database.CreateMenuCategoryParams) (database.MenuCategory, error) {
			return database.MenuCategory{ID: uuid.New(), RestaurantID: arg.RestaurantID, Name: arg.Name}, nil
		},
	}
	router := setupMenuRouter(&mockMenuService{}, store)

	rr := doAuthRequest(t, router, "POST", "/menu/categories", map[string]interface{}{
		"restaurant_id": "REST01",
		"name":          "South Indian",
	}, testClaims())

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["name"] != "South Indian" {
		t.Errorf("name: got %v, want South Indian", resp["name"])
	}
}

func TestMenuCreateCategory_Duplicate(t *testing.T) {
	store := &mockMenuHandlerStore{
		createCategoryFn: func(ctx context.Context, arg database.CreateMenuCategoryParams) (database.MenuCategory, error) {
			return database.MenuCategory{}, &pgconn.PgError{Code: "23505"}
		},
	}
	router := setupMenuRouter(&mockMenuService{}, store)

	rr := doAuthRequest(t, router, "POST", "/menu/categories", map[string]interface{}{
		"restaurant_id": "REST01",
		"name":          "South Indian",
	}, testClaims())

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestMenuDeleteCategory_NotEmpty(t *testing.T) {
	svc := &mockMenuService{
		deleteCategoryFn: func(ctx context.Context, restaurantID, name string) error {
			return service.ErrCategoryNotEmpty
		},
	}
	router := setupMenuRouter(svc, &mockMenuHandlerStore{})

	rr := doAuthRequest(t, router, "DELETE", "/menu/categories/REST01/South%20Indian", nil, testClaims())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestMenuAddItem_HappyPath(t *testing.T) {
	categoryID := uuid.New()
	svc := &mockMenuService{
		addItemFn: func(ctx context.Context, req service.AddMenuItemRequest) (*database.MenuItem, error) {
			if req.CategoryID != categoryID {
				t.Errorf("category id: got %v, want %v", req.CategoryID, categoryID)
			}
			if req.Price.StringFixed(2) != "40.00" {
				t.Errorf("price: got %v, want 40.00", req.Price)
			}
			if req.Margin.StringFixed(2) != "35.00" {
				t.Errorf("margin: got %v, want 35.00", req.Margin)
			}
			item := testMenuItem(categoryID, "REST01", req.Name)
			return &item, nil
		},
	}
	router := setupMenuRouter(svc, &mockMenuHandlerStore{})

	rr := doAuthRequest(t, router, "POST", "/menu/categories/"+categoryID.String()+"/items", map[string]interface{}{
		"name":   "Masala Dosa",
		"price":  "40.00",
		"margin": "35.00",
	}, testClaims())

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["restaurant_id"] != "REST01" {
		t.Errorf("restaurant_id: got %v, want inherited REST01", resp["restaurant_id"])
	}
}

func TestMenuAddItem_MarginOutOfRange(t *testing.T) {
	router := setupMenuRouter(&mockMenuService{}, &mockMenuHandlerStore{})

	rr := doAuthRequest(t, router, "POST", "/menu/categories/"+uuid.New().String()+"/items", map[string]interface{}{
		"name":   "Masala Dosa",
		"price":  "40.00",
		"margin": "140",
	}, testClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestMenuAddItem_CategoryNotFound(t *testing.T) {
	svc := &mockMenuService{
		addItemFn: func(ctx context.Context, req service.AddMenuItemRequest) (*database.MenuItem, error) {
			return nil, service.ErrCategoryNotFound
		},
	}
	router := setupMenuRouter(svc, &mockMenuHandlerStore{})

	rr := doAuthRequest(t, router, "POST", "/menu/categories/"+uuid.New().String()+"/items", map[string]interface{}{
		"name":  "Masala Dosa",
		"price": "40.00",
	}, testClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestMenuDeleteItem_NotFound(t *testing.T) {
	svc := &mockMenuService{
		deleteItemFn: func(ctx context.Context, itemID uuid.UUID) error {
			return service.ErrMenuItemNotFound
		},
	}
	router := setupMenuRouter(svc, &mockMenuHandlerStore{})

	rr := doAuthRequest(t, router, "DELETE", "/menu/items/"+uuid.New().String(), nil, testClaims())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestMenuGet_GroupsByCategory(t *testing.T) {
	southIndian := database.MenuCategory{ID: uuid.New(), RestaurantID: "REST01", Name: "South Indian"}
	beverages := database.MenuCategory{ID: uuid.New(), RestaurantID: "REST01", Name: "Beverages"}

	store := &mockMenuHandlerStore{
		listCategoriesFn: func(ctx context.Context, restaurantID string) ([]database.MenuCategory, error) {
			return []database.MenuCategory{beverages, southIndian}, nil
		},
		listByRestaurantFn: func(ctx context.Context, restaurantID string) ([]database.MenuItem, error) {
			return []database.MenuItem{
				testMenuItem(southIndian.ID, "REST01", "Masala Dosa"),
				testMenuItem(southIndian.ID, "REST01", "Idli"),
				testMenuItem(beverages.ID, "REST01", "Filter Coffee"),
			}, nil
		},
	}
	router := setupMenuRouter(&mockMenuService{}, store)

	rr := doAuthRequest(t, router, "GET", "/menu/REST01", nil, testClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	groups := decodeListResponse(t, rr)
	if len(groups) != 2 {
		t.Fatalf("groups: got %d, want 2", len(groups))
	}
	first := groups[0].(map[string]interface{})
	firstItems := first["items"].([]interface{})
	if len(firstItems) != 1 {
		t.Errorf("beverage items: got %d, want 1", len(firstItems))
	}
	second := groups[1].(map[string]interface{})
	secondItems := second["items"].([]interface{})
	if len(secondItems) != 2 {
		t.Errorf("south indian items: got %d, want 2", len(secondItems))
	}
}

func TestMenuGetCategoryItems_NotFound(t *testing.T) {
	router := setupMenuRouter(&mockMenuService{}, &mockMenuHandlerStore{})

	rr := doAuthRequest(t, router, "GET", "/menu/REST01/Nope", nil, testClaims())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
