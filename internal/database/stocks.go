package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const stockColumns = `id, restaurant_id, name, quantity, unit, price, min_quantity,
       description, is_available, created_at, updated_at`

const createStock = `
INSERT INTO stocks (restaurant_id, name, quantity, unit, price, min_quantity, description, is_available)
VALUES ($1, $2, $3, $4, $5, $6, $7, $3 > 0)
RETURNING ` + stockColumns

type CreateStockParams struct {
	RestaurantID string
	Name         string
	Quantity     pgtype.Numeric
	Unit         string
	Price        pgtype.Numeric
	MinQuantity  pgtype.Numeric
	Description  pgtype.Text
}

func (q *Queries) CreateStock(ctx context.Context, arg CreateStockParams) (Stock, error) {
	row := q.db.QueryRow(ctx, createStock,
		arg.RestaurantID, arg.Name, arg.Quantity, arg.Unit, arg.Price,
		arg.MinQuantity, arg.Description)
	return scanStock(row)
}

const getStock = `
SELECT ` + stockColumns + ` FROM stocks WHERE id = $1`

func (q *Queries) GetStock(ctx context.Context, id uuid.UUID) (Stock, error) {
	row := q.db.QueryRow(ctx, getStock, id)
	return scanStock(row)
}

const getStockForUpdate = `
SELECT ` + stockColumns + ` FROM stocks WHERE id = $1 FOR NO KEY UPDATE`

func (q *Queries) GetStockForUpdate(ctx context.Context, id uuid.UUID) (Stock, error) {
	row := q.db.QueryRow(ctx, getStockForUpdate, id)
	return scanStock(row)
}

const listStocksByRestaurant = `
SELECT ` + stockColumns + ` FROM stocks WHERE restaurant_id = $1 ORDER BY name`

func (q *Queries) ListStocksByRestaurant(ctx context.Context, restaurantID string) ([]Stock, error) {
	rows, err := q.db.Query(ctx, listStocksByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStocks(rows)
}

const listLowStocks = `
SELECT ` + stockColumns + ` FROM stocks
WHERE restaurant_id = $1 AND quantity <= min_quantity
ORDER BY quantity`

// ListLowStocks returns stock at or below its reorder threshold.
func (q *Queries) ListLowStocks(ctx context.Context, restaurantID string) ([]Stock, error) {
	rows, err := q.db.Query(ctx, listLowStocks, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStocks(rows)
}

const updateStock = `
UPDATE stocks
SET name = $2, quantity = $3, unit = $4, price = $5, min_quantity = $6,
    description = $7, is_available = $3 > 0, updated_at = now()
WHERE id = $1
RETURNING ` + stockColumns

type UpdateStockParams struct {
	ID          uuid.UUID
	Name        string
	Quantity    pgtype.Numeric
	Unit        string
	Price       pgtype.Numeric
	MinQuantity pgtype.Numeric
	Description pgtype.Text
}

func (q *Queries) UpdateStock(ctx context.Context, arg UpdateStockParams) (Stock, error) {
	row := q.db.QueryRow(ctx, updateStock,
		arg.ID, arg.Name, arg.Quantity, arg.Unit, arg.Price, arg.MinQuantity, arg.Description)
	return scanStock(row)
}

const setStockQuantity = `
UPDATE stocks
SET quantity = $2, is_available = $2 > 0, updated_at = now()
WHERE id = $1
RETURNING ` + stockColumns

type SetStockQuantityParams struct {
	ID       uuid.UUID
	Quantity pgtype.Numeric
}

func (q *Queries) SetStockQuantity(ctx context.Context, arg SetStockQuantityParams) (Stock, error) {
	row := q.db.QueryRow(ctx, setStockQuantity, arg.ID, arg.Quantity)
	return scanStock(row)
}

const upsertStockDelta = `
INSERT INTO stocks (restaurant_id, name, quantity, unit, price, is_available)
VALUES ($1, $2, $3, $4, $5, true)
ON CONFLICT (restaurant_id, name) DO UPDATE
SET quantity = stocks.quantity + EXCLUDED.quantity,
    price = EXCLUDED.price,
    unit = EXCLUDED.unit,
    is_available = true,
    updated_at = now()
RETURNING ` + stockColumns

type UpsertStockDeltaParams struct {
	RestaurantID string
	Name         string
	Quantity     pgtype.Numeric
	Unit         string
	Price        pgtype.Numeric
}

// UpsertStockDelta increments a stock's quantity, creating the row on first
// sight. One atomic statement, so concurrent bulk updates cannot lose deltas.
func (q *Queries) UpsertStockDelta(ctx context.Context, arg UpsertStockDeltaParams) (Stock, error) {
	row := q.db.QueryRow(ctx, upsertStockDelta,
		arg.RestaurantID, arg.Name, arg.Quantity, arg.Unit, arg.Price)
	return scanStock(row)
}

const deleteStock = `
DELETE FROM stocks WHERE id = $1`

func (q *Queries) DeleteStock(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteStock, id)
	return tag.RowsAffected(), err
}

const createStockHistory = `
INSERT INTO stock_history (stock_id, delta, quantity_after, note)
VALUES ($1, $2, $3, $4)
RETURNING id, stock_id, delta, quantity_after, note, created_at`

type CreateStockHistoryParams struct {
	StockID       uuid.UUID
	Delta         pgtype.Numeric
	QuantityAfter pgtype.Numeric
	Note          pgtype.Text
}

func (q *Queries) CreateStockHistory(ctx context.Context, arg CreateStockHistoryParams) (StockHistory, error) {
	row := q.db.QueryRow(ctx, createStockHistory,
		arg.StockID, arg.Delta, arg.QuantityAfter, arg.Note)
	var h StockHistory
	err := row.Scan(&h.ID, &h.StockID, &h.Delta, &h.QuantityAfter, &h.Note, &h.CreatedAt)
	return h, err
}

const listStockHistory = `
SELECT id, stock_id, delta, quantity_after, note, created_at
FROM stock_history
WHERE stock_id = $1
ORDER BY created_at DESC`

func (q *Queries) ListStockHistory(ctx context.Context, stockID uuid.UUID) ([]StockHistory, error) {
	rows, err := q.db.Query(ctx, listStockHistory, stockID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []StockHistory
	for rows.Next() {
		var h StockHistory
		if err := rows.Scan(&h.ID, &h.StockID, &h.Delta, &h.QuantityAfter, &h.Note, &h.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

func scanStock(row rowScanner) (Stock, error) {
	var s Stock
	err := row.Scan(&s.ID, &s.RestaurantID, &s.Name, &s.Quantity, &s.Unit, &s.Price,
		&s.MinQuantity, &s.Description, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func collectStocks(rows pgx.Rows) ([]Stock, error) {
	var result []Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
