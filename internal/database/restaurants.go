package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const restaurantColumns = `id, code, name, restaurant_type, owner_email, currency, online, banner_image, created_at, updated_at`

const createRestaurant = `
INSERT INTO restaurants (code, name, restaurant_type, owner_email, currency, online, banner_image)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + restaurantColumns

type CreateRestaurantParams struct {
	Code           string
	Name           string
	RestaurantType string
	OwnerEmail     string
	Currency       string
	Online         bool
	BannerImage    pgtype.Text
}

func (q *Queries) CreateRestaurant(ctx context.Context, arg CreateRestaurantParams) (Restaurant, error) {
	row := q.db.QueryRow(ctx, createRestaurant,
		arg.Code, arg.Name, arg.RestaurantType, arg.OwnerEmail, arg.Currency, arg.Online, arg.BannerImage)
	return scanRestaurant(row)
}

const getRestaurantByCode = `
SELECT ` + restaurantColumns + ` FROM restaurants WHERE code = $1`

func (q *Queries) GetRestaurantByCode(ctx context.Context, code string) (Restaurant, error) {
	row := q.db.QueryRow(ctx, getRestaurantByCode, code)
	return scanRestaurant(row)
}

const countRestaurantsByCode = `
SELECT COUNT(*) FROM restaurants WHERE code = $1`

func (q *Queries) CountRestaurantsByCode(ctx context.Context, code string) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countRestaurantsByCode, code).Scan(&count)
	return count, err
}

const listRestaurantsByOwner = `
SELECT ` + restaurantColumns + ` FROM restaurants WHERE owner_email = $1 ORDER BY created_at`

func (q *Queries) ListRestaurantsByOwner(ctx context.Context, ownerEmail string) ([]Restaurant, error) {
	rows, err := q.db.Query(ctx, listRestaurantsByOwner, ownerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRestaurants(rows)
}

const listRestaurants = `
SELECT ` + restaurantColumns + ` FROM restaurants ORDER BY created_at`

func (q *Queries) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	rows, err := q.db.Query(ctx, listRestaurants)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRestaurants(rows)
}

const updateRestaurant = `
UPDATE restaurants
SET name = $2, restaurant_type = $3, owner_email = $4, currency = $5,
    banner_image = $6, updated_at = now()
WHERE code = $1
RETURNING ` + restaurantColumns

type UpdateRestaurantParams struct {
	Code           string
	Name           string
	RestaurantType string
	OwnerEmail     string
	Currency       string
	BannerImage    pgtype.Text
}

func (q *Queries) UpdateRestaurant(ctx context.Context, arg UpdateRestaurantParams) (Restaurant, error) {
	row := q.db.QueryRow(ctx, updateRestaurant,
		arg.Code, arg.Name, arg.RestaurantType, arg.OwnerEmail, arg.Currency, arg.BannerImage)
	return scanRestaurant(row)
}

const setRestaurantOnline = `
UPDATE restaurants SET online = $2, updated_at = now() WHERE code = $1
RETURNING ` + restaurantColumns

type SetRestaurantOnlineParams struct {
	Code   string
	Online bool
}

func (q *Queries) SetRestaurantOnline(ctx context.Context, arg SetRestaurantOnlineParams) (Restaurant, error) {
	row := q.db.QueryRow(ctx, setRestaurantOnline, arg.Code, arg.Online)
	return scanRestaurant(row)
}

const deleteRestaurant = `
DELETE FROM restaurants WHERE code = $1`

// DeleteRestaurant removes only the restaurant row. Owned entities keep their
// denormalized restaurant code; nothing cascades.
func (q *Queries) DeleteRestaurant(ctx context.Context, code string) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteRestaurant, code)
	return tag.RowsAffected(), err
}

func scanRestaurant(row rowScanner) (Restaurant, error) {
	var r Restaurant
	err := row.Scan(&r.ID, &r.Code, &r.Name, &r.RestaurantType, &r.OwnerEmail,
		&r.Currency, &r.Online, &r.BannerImage, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func collectRestaurants(rows pgx.Rows) ([]Restaurant, error) {
	var result []Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
