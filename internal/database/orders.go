package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, subtotal, tax, total, table_number, payment_method,
       paid, order_status, restaurant_id, user_id, phone_number, created_at, updated_at`

const createOrder = `
INSERT INTO orders (order_number, subtotal, tax, total, table_number, payment_method,
                    paid, order_status, restaurant_id, user_id, phone_number)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	OrderNumber   string
	Subtotal      pgtype.Numeric
	Tax           pgtype.Numeric
	Total         pgtype.Numeric
	TableNumber   int32
	PaymentMethod string
	Paid          bool
	OrderStatus   string
	RestaurantID  string
	UserID        string
	PhoneNumber   string
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber, arg.Subtotal, arg.Tax, arg.Total, arg.TableNumber,
		arg.PaymentMethod, arg.Paid, arg.OrderStatus, arg.RestaurantID,
		arg.UserID, arg.PhoneNumber)
	return scanOrder(row)
}

const createOrderItem = `
INSERT INTO order_items (order_id, name, price, quantity)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, name, price, quantity`

type CreateOrderItemParams struct {
	OrderID  uuid.UUID
	Name     string
	Price    pgtype.Numeric
	Quantity int32
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem, arg.OrderID, arg.Name, arg.Price, arg.Quantity)
	var i OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.Name, &i.Price, &i.Quantity)
	return i, err
}

const listOrderItemsByOrder = `
SELECT id, order_id, name, price, quantity FROM order_items WHERE order_id = $1 ORDER BY id`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.Name, &i.Price, &i.Quantity); err != nil {
			return nil, err
		}
		result = append(result, i)
	}
	return result, rows.Err()
}

const getOrder = `
SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	return scanOrder(row)
}

const getOrderForUpdate = `
SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR NO KEY UPDATE`

// GetOrderForUpdate locks the order row to serialize concurrent splits and
// payment updates.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderForUpdate, id)
	return scanOrder(row)
}

const listOrdersByRestaurant = `
SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = $1 ORDER BY created_at DESC`

func (q *Queries) ListOrdersByRestaurant(ctx context.Context, restaurantID string) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

const listOrdersByPhone = `
SELECT ` + orderColumns + ` FROM orders WHERE phone_number = $1 ORDER BY created_at`

func (q *Queries) ListOrdersByPhone(ctx context.Context, phoneNumber string) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByPhone, phoneNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

const listOpenOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE restaurant_id = $1
  AND created_at >= $2 AND created_at <= $3
  AND NOT paid
  AND order_status <> ALL($4::text[])
ORDER BY created_at DESC`

type ListOpenOrdersParams struct {
	RestaurantID     string
	Start            time.Time
	End              time.Time
	ExcludedStatuses []string
}

// ListOpenOrders returns unpaid orders in a window whose status is outside the
// excluded set. Which statuses are excluded depends on the restaurant type.
func (q *Queries) ListOpenOrders(ctx context.Context, arg ListOpenOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOpenOrders,
		arg.RestaurantID, arg.Start, arg.End, arg.ExcludedStatuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

const updateOrderStatus = `
UPDATE orders SET order_status = $2, updated_at = now() WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID          uuid.UUID
	OrderStatus string
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.OrderStatus)
	return scanOrder(row)
}

const markOrderPaid = `
UPDATE orders SET paid = true, updated_at = now() WHERE id = $1
RETURNING ` + orderColumns

// MarkOrderPaid sets paid regardless of order status. Re-applying it is a
// no-op beyond the timestamp.
func (q *Queries) MarkOrderPaid(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, markOrderPaid, id)
	return scanOrder(row)
}

const setOrderTotal = `
UPDATE orders SET total = $2, updated_at = now() WHERE id = $1
RETURNING ` + orderColumns

type SetOrderTotalParams struct {
	ID    uuid.UUID
	Total pgtype.Numeric
}

func (q *Queries) SetOrderTotal(ctx context.Context, arg SetOrderTotalParams) (Order, error) {
	row := q.db.QueryRow(ctx, setOrderTotal, arg.ID, arg.Total)
	return scanOrder(row)
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.Subtotal, &o.Tax, &o.Total,
		&o.TableNumber, &o.PaymentMethod, &o.Paid, &o.OrderStatus,
		&o.RestaurantID, &o.UserID, &o.PhoneNumber, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var result []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}
