package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mesabook/api/internal/database"
	"github.com/shopspring/decimal"
)

// Errors returned by the menu service.
var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNotEmpty  = errors.New("category still has items")
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrDuplicateMenuItem = errors.New("menu item already exists in category")
)

// MenuStore defines the DB methods needed by the menu service.
// Satisfied by *database.Queries (and its WithTx variant).
type MenuStore interface {
	GetMenuCategory(ctx context.Context, id uuid.UUID) (database.MenuCategory, error)
	GetMenuCategoryByName(ctx context.Context, arg database.GetMenuCategoryByNameParams) (database.MenuCategory, error)
	DeleteMenuCategory(ctx context.Context, id uuid.UUID) (int64, error)
	CountMenuItemsByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (int64, error)
}

// NewMenuStore creates a MenuStore from a DBTX (pool or tx).
type NewMenuStore func(db database.DBTX) MenuStore

// AddMenuItemRequest is the validated input for adding an item to a category.
type AddMenuItemRequest struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Margin      decimal.Decimal
	IsAvailable bool
	Image       string
}

// MenuService handles the menu operations that span multiple statements.
type MenuService struct {
	pool     TxBeginner
	newStore NewMenuStore
}

// NewMenuService creates a new MenuService.
func NewMenuService(pool TxBeginner, newStore NewMenuStore) *MenuService {
	return &MenuService{pool: pool, newStore: newStore}
}

// AddItem inserts a menu item after confirming its category exists, both
// under one transaction.
func (s *MenuService) AddItem(ctx context.Context, req AddMenuItemRequest) (*database.MenuItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	category, err := store.GetMenuCategory(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	image := pgtype.Text{}
	if req.Image != "" {
		image = pgtype.Text{String: req.Image, Valid: true}
	}

	item, err := store.CreateMenuItem(ctx, database.CreateMenuItemParams{
		CategoryID:   category.ID,
		RestaurantID: category.RestaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        decimalToNumeric(req.Price),
		Margin:       decimalToNumeric(req.Margin),
		IsAvailable:  req.IsAvailable,
		Image:        image,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateMenuItem
		}
		return nil, fmt.Errorf("create menu item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &item, nil
}

// DeleteItem removes a menu item. When it was the category's last item the
// category goes with it, in the same transaction.
func (s *MenuService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	item, err := store.GetMenuItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMenuItemNotFound
		}
		return fmt.Errorf("get menu item: %w", err)
	}

	if _, err := store.DeleteMenuItem(ctx, item.ID); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}

	remaining, err := store.CountMenuItemsByCategory(ctx, item.CategoryID)
	if err != nil {
		return fmt.Errorf("count category items: %w", err)
	}
	if remaining == 0 {
		if _, err := store.DeleteMenuCategory(ctx, item.CategoryID); err != nil {
			return fmt.Errorf("delete empty category: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// DeleteCategory removes a category by name, refusing while items remain.
func (s *MenuService) DeleteCategory(ctx context.Context, restaurantID, name string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	category, err := store.GetMenuCategoryByName(ctx, database.GetMenuCategoryByNameParams{
		RestaurantID: restaurantID,
		Name:         name,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("get category: %w", err)
	}

	count, err := store.CountMenuItemsByCategory(ctx, category.ID)
	if err != nil {
		return fmt.Errorf("count category items: %w", err)
	}
	if count > 0 {
		return ErrCategoryNotEmpty
	}

	if _, err := store.DeleteMenuCategory(ctx, category.ID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	return tx.Commit(ctx)
}
