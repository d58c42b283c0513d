package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuCategoryColumns = `id, restaurant_id, name, created_at, updated_at`

const createMenuCategory = `
INSERT INTO menu_categories (restaurant_id, name)
VALUES ($1, $2)
RETURNING ` + menuCategoryColumns

type CreateMenuCategoryParams struct {
	RestaurantID string
	Name         string
}

func (q *Queries) CreateMenuCategory(ctx context.Context, arg CreateMenuCategoryParams) (MenuCategory, error) {
	row := q.db.QueryRow(ctx, createMenuCategory, arg.RestaurantID, arg.Name)
	return scanMenuCategory(row)
}

const getMenuCategory = `
SELECT ` + menuCategoryColumns + ` FROM menu_categories WHERE id = $1`

func (q *Queries) GetMenuCategory(ctx context.Context, id uuid.UUID) (MenuCategory, error) {
	row := q.db.QueryRow(ctx, getMenuCategory, id)
	return scanMenuCategory(row)
}

const getMenuCategoryByName = `
SELECT ` + menuCategoryColumns + ` FROM menu_categories WHERE restaurant_id = $1 AND name = $2`

type GetMenuCategoryByNameParams struct {
	RestaurantID string
	Name         string
}

func (q *Queries) GetMenuCategoryByName(ctx context.Context, arg GetMenuCategoryByNameParams) (MenuCategory, error) {
	row := q.db.QueryRow(ctx, getMenuCategoryByName, arg.RestaurantID, arg.Name)
	return scanMenuCategory(row)
}

const listMenuCategories = `
SELECT ` + menuCategoryColumns + ` FROM menu_categories WHERE restaurant_id = $1 ORDER BY name`

func (q *Queries) ListMenuCategories(ctx context.Context, restaurantID string) ([]MenuCategory, error) {
	rows, err := q.db.Query(ctx, listMenuCategories, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []MenuCategory
	for rows.Next() {
		c, err := scanMenuCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

const deleteMenuCategory = `
DELETE FROM menu_categories WHERE id = $1`

func (q *Queries) DeleteMenuCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteMenuCategory, id)
	return tag.RowsAffected(), err
}

const countMenuItemsByCategory = `
SELECT COUNT(*) FROM menu_items WHERE category_id = $1`

func (q *Queries) CountMenuItemsByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countMenuItemsByCategory, categoryID).Scan(&count)
	return count, err
}

const menuItemColumns = `id, category_id, restaurant_id, name, description, price, margin,
       is_available, image, created_at, updated_at`

const createMenuItem = `
INSERT INTO menu_items (category_id, restaurant_id, name, description, price, margin, is_available, image)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + menuItemColumns

type CreateMenuItemParams struct {
	CategoryID   uuid.UUID
	RestaurantID string
	Name         string
	Description  string
	Price        pgtype.Numeric
	Margin       pgtype.Numeric
	IsAvailable  bool
	Image        pgtype.Text
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.CategoryID, arg.RestaurantID, arg.Name, arg.Description,
		arg.Price, arg.Margin, arg.IsAvailable, arg.Image)
	return scanMenuItem(row)
}

const getMenuItem = `
SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1`

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	row := q.db.QueryRow(ctx, getMenuItem, id)
	return scanMenuItem(row)
}

const listMenuItemsByCategory = `
SELECT ` + menuItemColumns + ` FROM menu_items WHERE category_id = $1 ORDER BY name`

func (q *Queries) ListMenuItemsByCategory(ctx context.Context, categoryID uuid.UUID) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItemsByCategory, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMenuItems(rows)
}

const listMenuItemsByRestaurant = `
SELECT ` + menuItemColumns + ` FROM menu_items WHERE restaurant_id = $1 ORDER BY name`

func (q *Queries) ListMenuItemsByRestaurant(ctx context.Context, restaurantID string) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItemsByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMenuItems(rows)
}

const updateMenuItem = `
UPDATE menu_items
SET name = $2, description = $3, price = $4, margin = $5, is_available = $6,
    image = $7, updated_at = now()
WHERE id = $1
RETURNING ` + menuItemColumns

type UpdateMenuItemParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       pgtype.Numeric
	Margin      pgtype.Numeric
	IsAvailable bool
	Image       pgtype.Text
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.ID, arg.Name, arg.Description, arg.Price, arg.Margin, arg.IsAvailable, arg.Image)
	return scanMenuItem(row)
}

const setMenuItemAvailability = `
UPDATE menu_items SET is_available = $2, updated_at = now() WHERE id = $1
RETURNING ` + menuItemColumns

type SetMenuItemAvailabilityParams struct {
	ID          uuid.UUID
	IsAvailable bool
}

func (q *Queries) SetMenuItemAvailability(ctx context.Context, arg SetMenuItemAvailabilityParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, setMenuItemAvailability, arg.ID, arg.IsAvailable)
	return scanMenuItem(row)
}

const deleteMenuItem = `
DELETE FROM menu_items WHERE id = $1`

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteMenuItem, id)
	return tag.RowsAffected(), err
}

func scanMenuCategory(row rowScanner) (MenuCategory, error) {
	var c MenuCategory
	err := row.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanMenuItem(row rowScanner) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.CategoryID, &m.RestaurantID, &m.Name, &m.Description,
		&m.Price, &m.Margin, &m.IsAvailable, &m.Image, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func collectMenuItems(rows pgx.Rows) ([]MenuItem, error) {
	var result []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
