package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mesabook/api/internal/enum"
)

// Revenue aggregations only count paid, completed orders; the hourly
// distribution additionally admits every non-cancelled paid order.

type RevenueRangeParams struct {
	RestaurantID string
	Start        time.Time
	End          time.Time
}

const getDailyRevenue = `
SELECT created_at::date AS day,
       SUM(total) AS total_revenue,
       COUNT(*) AS order_count,
       ROUND(AVG(total), 2) AS average_order_value,
       COUNT(*) FILTER (WHERE payment_method = 'counter') AS counter_payments,
       COUNT(*) FILTER (WHERE payment_method = 'googlepay') AS googlepay_payments
FROM orders
WHERE restaurant_id = $1 AND created_at >= $2 AND created_at <= $3
  AND paid AND order_status = '` + enum.OrderStatusCompleted + `'
GROUP BY 1
ORDER BY 1`

type RevenueBucketRow struct {
	Bucket            time.Time
	TotalRevenue      pgtype.Numeric
	OrderCount        int64
	AverageOrderValue pgtype.Numeric
	CounterPayments   int64
	GooglePayPayments int64
}

func (q *Queries) GetDailyRevenue(ctx context.Context, arg RevenueRangeParams) ([]RevenueBucketRow, error) {
	return q.queryRevenueBuckets(ctx, getDailyRevenue, arg)
}

const getMonthlyRevenue = `
SELECT date_trunc('month', created_at)::date AS month,
       SUM(total) AS total_revenue,
       COUNT(*) AS order_count,
       ROUND(AVG(total), 2) AS average_order_value,
       COUNT(*) FILTER (WHERE payment_method = 'counter') AS counter_payments,
       COUNT(*) FILTER (WHERE payment_method = 'googlepay') AS googlepay_payments
FROM orders
WHERE restaurant_id = $1 AND created_at >= $2 AND created_at <= $3
  AND paid AND order_status = '` + enum.OrderStatusCompleted + `'
GROUP BY 1
ORDER BY 1`

func (q *Queries) GetMonthlyRevenue(ctx context.Context, arg RevenueRangeParams) ([]RevenueBucketRow, error) {
	return q.queryRevenueBuckets(ctx, getMonthlyRevenue, arg)
}

func (q *Queries) queryRevenueBuckets(ctx context.Context, sql string, arg RevenueRangeParams) ([]RevenueBucketRow, error) {
	rows, err := q.db.Query(ctx, sql, arg.RestaurantID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []RevenueBucketRow
	for rows.Next() {
		var r RevenueBucketRow
		if err := rows.Scan(&r.Bucket, &r.TotalRevenue, &r.OrderCount,
			&r.AverageOrderValue, &r.CounterPayments, &r.GooglePayPayments); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

const getHourlyRevenue = `
SELECT EXTRACT(HOUR FROM created_at)::int AS hour,
       ROUND(SUM(total), 2) AS total_revenue,
       COUNT(*) AS order_count,
       ROUND(AVG(total), 2) AS average_order_value
FROM orders
WHERE restaurant_id = $1 AND created_at >= $2 AND created_at <= $3
  AND paid AND order_status <> '` + enum.OrderStatusCancelled + `'
GROUP BY 1
ORDER BY 1`

type HourlyRevenueRow struct {
	Hour              int32
	TotalRevenue      pgtype.Numeric
	OrderCount        int64
	AverageOrderValue pgtype.Numeric
}

func (q *Queries) GetHourlyRevenue(ctx context.Context, arg RevenueRangeParams) ([]HourlyRevenueRow, error) {
	rows, err := q.db.Query(ctx, getHourlyRevenue, arg.RestaurantID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []HourlyRevenueRow
	for rows.Next() {
		var r HourlyRevenueRow
		if err := rows.Scan(&r.Hour, &r.TotalRevenue, &r.OrderCount, &r.AverageOrderValue); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

const getSalesByMonth = `
SELECT date_trunc('month', created_at)::date AS month, SUM(total) AS sales
FROM orders
WHERE restaurant_id = $1 AND created_at >= $2 AND created_at <= $3
  AND paid AND order_status = '` + enum.OrderStatusCompleted + `'
GROUP BY 1`

type PeriodAmountRow struct {
	Period time.Time
	Amount pgtype.Numeric
}

func (q *Queries) GetSalesByMonth(ctx context.Context, arg RevenueRangeParams) ([]PeriodAmountRow, error) {
	return q.queryPeriodAmounts(ctx, getSalesByMonth, arg.RestaurantID, arg.Start, arg.End)
}

const getSalesByWeekday = `
SELECT EXTRACT(ISODOW FROM created_at)::int AS weekday, SUM(total) AS sales
FROM orders
WHERE restaurant_id = $1 AND created_at >= $2 AND created_at <= $3
  AND paid AND order_status = '` + enum.OrderStatusCompleted + `'
GROUP BY 1`

type WeekdayAmountRow struct {
	Weekday int32
	Amount  pgtype.Numeric
}

func (q *Queries) GetSalesByWeekday(ctx context.Context, arg RevenueRangeParams) ([]WeekdayAmountRow, error) {
	return q.queryWeekdayAmounts(ctx, getSalesByWeekday, arg.RestaurantID, arg.Start, arg.End)
}

const getSalesTotal = `
SELECT COALESCE(SUM(total), 0)
FROM orders
WHERE restaurant_id = $1 AND created_at >= $2 AND created_at <= $3
  AND paid AND order_status = '` + enum.OrderStatusCompleted + `'`

func (q *Queries) GetSalesTotal(ctx context.Context, arg RevenueRangeParams) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx, getSalesTotal, arg.RestaurantID, arg.Start, arg.End).Scan(&total)
	return total, err
}

const getBillExpenseByMonth = `
SELECT date_trunc('month', bill_date)::date AS month, SUM(amount) AS expense
FROM other_bills
WHERE restaurant_id = $1 AND bill_date >= $2 AND bill_date <= $3
  AND payment_status IN ('PAID', 'PARTIAL')
GROUP BY 1`

func (q *Queries) GetBillExpenseByMonth(ctx context.Context, arg RevenueRangeParams) ([]PeriodAmountRow, error) {
	return q.queryPeriodAmounts(ctx, getBillExpenseByMonth, arg.RestaurantID, arg.Start, arg.End)
}

const getBillExpenseByWeekday = `
SELECT EXTRACT(ISODOW FROM bill_date)::int AS weekday, SUM(amount) AS expense
FROM other_bills
WHERE restaurant_id = $1 AND bill_date >= $2 AND bill_date <= $3
  AND payment_status IN ('PAID', 'PARTIAL')
GROUP BY 1`

func (q *Queries) GetBillExpenseByWeekday(ctx context.Context, arg RevenueRangeParams) ([]WeekdayAmountRow, error) {
	return q.queryWeekdayAmounts(ctx, getBillExpenseByWeekday, arg.RestaurantID, arg.Start, arg.End)
}

const getBillExpenseTotal = `
SELECT COALESCE(SUM(amount), 0)
FROM other_bills
WHERE restaurant_id = $1 AND bill_date >= $2 AND bill_date <= $3
  AND payment_status IN ('PAID', 'PARTIAL')`

func (q *Queries) GetBillExpenseTotal(ctx context.Context, arg RevenueRangeParams) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx, getBillExpenseTotal, arg.RestaurantID, arg.Start, arg.End).Scan(&total)
	return total, err
}

const listCompletedOrderItems = `
SELECT oi.name, oi.price, oi.quantity, o.created_at::date AS order_day
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.restaurant_id = $1 AND o.created_at >= $2 AND o.created_at <= $3
  AND o.order_status = '` + enum.OrderStatusCompleted + `'
ORDER BY o.created_at`

type CompletedOrderItemRow struct {
	Name     string
	Price    pgtype.Numeric
	Quantity int32
	OrderDay time.Time
}

// ListCompletedOrderItems feeds the margin-based profit analysis.
func (q *Queries) ListCompletedOrderItems(ctx context.Context, arg RevenueRangeParams) ([]CompletedOrderItemRow, error) {
	rows, err := q.db.Query(ctx, listCompletedOrderItems, arg.RestaurantID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []CompletedOrderItemRow
	for rows.Next() {
		var r CompletedOrderItemRow
		if err := rows.Scan(&r.Name, &r.Price, &r.Quantity, &r.OrderDay); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (q *Queries) queryPeriodAmounts(ctx context.Context, sql, restaurantID string, start, end time.Time) ([]PeriodAmountRow, error) {
	rows, err := q.db.Query(ctx, sql, restaurantID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []PeriodAmountRow
	for rows.Next() {
		var r PeriodAmountRow
		if err := rows.Scan(&r.Period, &r.Amount); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (q *Queries) queryWeekdayAmounts(ctx context.Context, sql, restaurantID string, start, end time.Time) ([]WeekdayAmountRow, error) {
	rows, err := q.db.Query(ctx, sql, restaurantID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []WeekdayAmountRow
	for rows.Next() {
		var r WeekdayAmountRow
		if err := rows.Scan(&r.Weekday, &r.Amount); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
