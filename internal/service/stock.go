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

// Errors returned by the stock service.
var (
	ErrStockNotFound = errors.New("stock not found")
)

// StockStore defines the DB methods needed by the stock service.
// Satisfied by *database.Queries (and its WithTx variant).
type StockStore interface {
	GetStockForUpdate(ctx context.Context, id uuid.UUID) (database.Stock, error)
	SetStockQuantity(ctx context.Context, arg database.SetStockQuantityParams) (database.Stock, error)
	UpsertStockDelta(ctx context.Context, arg database.UpsertStockDeltaParams) (database.Stock, error)
	CreateStockHistory(ctx context.Context, arg database.CreateStockHistoryParams) (database.StockHistory, error)
}

// NewStockStore creates a StockStore from a DBTX (pool or tx).
type NewStockStore func(db database.DBTX) StockStore

// BulkStockEntry is one line of a bulk stock update.
type BulkStockEntry struct {
	Name     string
	Quantity decimal.Decimal
	Unit     string
	Price    decimal.Decimal
}

// StockService handles stock mutations that must pair with history rows.
type StockService struct {
	pool     TxBeginner
	newStore NewStockStore
}

// NewStockService creates a new StockService.
func NewStockService(pool TxBeginner, newStore NewStockStore) *StockService {
	return &StockService{pool: pool, newStore: newStore}
}

// SetQuantity sets a stock's quantity under a row lock and appends exactly
// one history row recording the delta.
func (s *StockService) SetQuantity(ctx context.Context, stockID uuid.UUID, quantity decimal.Decimal, note string) (*database.Stock, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetStockForUpdate(ctx, stockID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStockNotFound
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}

	updated, err := store.SetStockQuantity(ctx, database.SetStockQuantityParams{
		ID:       stockID,
		Quantity: decimalToNumeric(quantity),
	})
	if err != nil {
		return nil, fmt.Errorf("set quantity: %w", err)
	}

	delta := quantity.Sub(numericToDecimal(current.Quantity))
	historyNote := pgtype.Text{}
	if note != "" {
		historyNote = pgtype.Text{String: note, Valid: true}
	}
	if _, err := store.CreateStockHistory(ctx, database.CreateStockHistoryParams{
		StockID:       stockID,
		Delta:         decimalToNumeric(delta),
		QuantityAfter: decimalToNumeric(quantity),
		Note:          historyNote,
	}); err != nil {
		return nil, fmt.Errorf("create stock history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &updated, nil
}

// BulkUpdate upserts a batch of stock entries keyed by (restaurant, name),
// incrementing quantities and appending a history row per entry. The whole
// batch commits or rolls back together.
func (s *StockService) BulkUpdate(ctx context.Context, restaurantID string, entries []BulkStockEntry) ([]database.Stock, error) {
	if restaurantID == "" {
		return nil, ErrMissingRestaurant
	}
	if len(entries) == 0 {
		return nil, ErrEmptyItems
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	stocks := make([]database.Stock, 0, len(entries))
	for i, entry := range entries {
		stock, err := store.UpsertStockDelta(ctx, database.UpsertStockDeltaParams{
			RestaurantID: restaurantID,
			Name:         entry.Name,
			Quantity:     decimalToNumeric(entry.Quantity),
			Unit:         entry.Unit,
			Price:        decimalToNumeric(entry.Price),
		})
		if err != nil {
			return nil, fmt.Errorf("entries[%d]: upsert stock: %w", i, err)
		}
		if _, err := store.CreateStockHistory(ctx, database.CreateStockHistoryParams{
			StockID:       stock.ID,
			Delta:         decimalToNumeric(entry.Quantity),
			QuantityAfter: stock.Quantity,
			Note:          pgtype.Text{String: "bulk update", Valid: true},
		}); err != nil {
			return nil, fmt.Errorf("entries[%d]: create stock history: %w", i, err)
		}
		stocks = append(stocks, stock)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return stocks, nil
}
