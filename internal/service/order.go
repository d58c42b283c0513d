package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mesabook/api/internal/database"
	"github.com/mesabook/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyItems           = errors.New("items are required")
	ErrMissingRestaurant    = errors.New("restaurant_id is required")
	ErrMissingOrderNumber   = errors.New("order_number is required")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrDuplicateOrderNumber = errors.New("order_number already exists")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidSplitAmount   = errors.New("online_amount must be greater than zero and less than the order total")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	SetOrderTotal(ctx context.Context, arg database.SetOrderTotalParams) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
// Amounts arrive as decimal strings and are stored as given; the service does
// not recompute total from subtotal and tax.
type CreateOrderRequest struct {
	RestaurantID  string
	OrderNumber   string
	Subtotal      string
	Tax           string
	Total         string
	TableNumber   int32
	PaymentMethod string
	Paid          bool
	OrderStatus   string
	UserID        string
	PhoneNumber   string
	Items         []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single line in the order, snapshotted at
// checkout prices.
type CreateOrderItemRequest struct {
	Name     string
	Price    string
	Quantity int32
}

// CreateOrderResult is the created order with its items.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// SplitOrderRequest moves part of an order's total to a new prepaid order.
type SplitOrderRequest struct {
	OrderID      uuid.UUID
	OnlineAmount string
}

// SplitOrderResult holds both halves of a split.
type SplitOrderResult struct {
	Original database.Order
	Split    database.Order
	Items    []database.OrderItem
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// CreateOrder validates the request and inserts the order with its items in
// one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if req.RestaurantID == "" {
		return nil, ErrMissingRestaurant
	}
	if req.OrderNumber == "" {
		return nil, ErrMissingOrderNumber
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = enum.PaymentMethodCounter
	}
	if !isValidPaymentMethod(paymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	orderStatus := req.OrderStatus
	if orderStatus == "" {
		orderStatus = enum.OrderStatusNotcomplete
	}

	subtotal, err := parseAmount(req.Subtotal)
	if err != nil {
		return nil, fmt.Errorf("subtotal: %w", ErrInvalidAmount)
	}
	tax, err := parseAmount(req.Tax)
	if err != nil {
		return nil, fmt.Errorf("tax: %w", ErrInvalidAmount)
	}
	total, err := parseAmount(req.Total)
	if err != nil {
		return nil, fmt.Errorf("total: %w", ErrInvalidAmount)
	}

	type itemLine struct {
		name     string
		price    decimal.Decimal
		quantity int32
	}
	lines := make([]itemLine, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		price, err := parseAmount(item.Price)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidAmount)
		}
		lines[i] = itemLine{name: item.Name, price: price, quantity: item.Quantity}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:   req.OrderNumber,
		Subtotal:      decimalToNumeric(subtotal),
		Tax:           decimalToNumeric(tax),
		Total:         decimalToNumeric(total),
		TableNumber:   req.TableNumber,
		PaymentMethod: paymentMethod,
		Paid:          req.Paid,
		OrderStatus:   orderStatus,
		RestaurantID:  req.RestaurantID,
		UserID:        req.UserID,
		PhoneNumber:   req.PhoneNumber,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateOrderNumber
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(lines))
	for _, line := range lines {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:  order.ID,
			Name:     line.name,
			Price:    decimalToNumeric(line.price),
			Quantity: line.quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: items}, nil
}

// SplitOrder carves online_amount out of an existing order into a new prepaid
// googlepay order. The original keeps the counter remainder; the split copies
// the items and prorates subtotal and tax by the original tax ratio. Both
// writes happen under a row lock in one transaction.
func (s *OrderService) SplitOrder(ctx context.Context, req SplitOrderRequest) (*SplitOrderResult, error) {
	amount, err := parseAmount(req.OnlineAmount)
	if err != nil {
		return nil, fmt.Errorf("online_amount: %w", ErrInvalidAmount)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	original, err := store.GetOrderForUpdate(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	total := numericToDecimal(original.Total)
	if !amount.IsPositive() || amount.GreaterThanOrEqual(total) {
		return nil, ErrInvalidSplitAmount
	}

	// subtotal' = amount / (1 + tax/subtotal); tax' absorbs the rounding
	// remainder so the split always sums to the online amount exactly.
	subtotal := numericToDecimal(original.Subtotal)
	tax := numericToDecimal(original.Tax)
	var splitSubtotal decimal.Decimal
	if subtotal.IsZero() {
		splitSubtotal = amount
	} else {
		ratio := tax.Div(subtotal)
		splitSubtotal = amount.Div(decimal.NewFromInt(1).Add(ratio)).Round(2)
	}
	splitTax := amount.Sub(splitSubtotal)

	updated, err := store.SetOrderTotal(ctx, database.SetOrderTotalParams{
		ID:    original.ID,
		Total: decimalToNumeric(total.Sub(amount)),
	})
	if err != nil {
		return nil, fmt.Errorf("update original total: %w", err)
	}

	split, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:   original.OrderNumber + "(Split)",
		Subtotal:      decimalToNumeric(splitSubtotal),
		Tax:           decimalToNumeric(splitTax),
		Total:         decimalToNumeric(amount),
		TableNumber:   original.TableNumber,
		PaymentMethod: enum.PaymentMethodGooglePay,
		Paid:          true,
		OrderStatus:   original.OrderStatus,
		RestaurantID:  original.RestaurantID,
		UserID:        original.UserID,
		PhoneNumber:   original.PhoneNumber,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateOrderNumber
		}
		return nil, fmt.Errorf("create split order: %w", err)
	}

	originalItems, err := store.ListOrderItemsByOrder(ctx, original.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	items := make([]database.OrderItem, 0, len(originalItems))
	for _, oi := range originalItems {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:  split.ID,
			Name:     oi.Name,
			Price:    oi.Price,
			Quantity: oi.Quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("copy order item: %w", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &SplitOrderResult{Original: updated, Split: split, Items: items}, nil
}

// --- Helpers ---

func isValidPaymentMethod(s string) bool {
	switch s {
	case enum.PaymentMethodCounter, enum.PaymentMethodGooglePay:
		return true
	}
	return false
}

// parseAmount parses a decimal string, treating empty as zero.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// isUniqueViolation checks for pgconn error code 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
