package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const subscriptionColumns = `id, admin_email, plan, price, start_date, end_date, status, created_at, updated_at`

const createSubscription = `
INSERT INTO subscriptions (admin_email, plan, price, start_date, end_date, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + subscriptionColumns

type CreateSubscriptionParams struct {
	AdminEmail string
	Plan       string
	Price      pgtype.Numeric
	StartDate  time.Time
	EndDate    time.Time
	Status     string
}

func (q *Queries) CreateSubscription(ctx context.Context, arg CreateSubscriptionParams) (Subscription, error) {
	row := q.db.QueryRow(ctx, createSubscription,
		arg.AdminEmail, arg.Plan, arg.Price, arg.StartDate, arg.EndDate, arg.Status)
	return scanSubscription(row)
}

const getActiveSubscription = `
SELECT ` + subscriptionColumns + `
FROM subscriptions
WHERE admin_email = $1 AND status = 'active' AND start_date <= $2 AND end_date >= $2
ORDER BY end_date DESC
LIMIT 1`

type GetActiveSubscriptionParams struct {
	AdminEmail string
	Now        time.Time
}

func (q *Queries) GetActiveSubscription(ctx context.Context, arg GetActiveSubscriptionParams) (Subscription, error) {
	row := q.db.QueryRow(ctx, getActiveSubscription, arg.AdminEmail, arg.Now)
	return scanSubscription(row)
}

const listSubscriptionsByAdmin = `
SELECT ` + subscriptionColumns + `
FROM subscriptions
WHERE admin_email = $1
ORDER BY created_at DESC`

func (q *Queries) ListSubscriptionsByAdmin(ctx context.Context, adminEmail string) ([]Subscription, error) {
	rows, err := q.db.Query(ctx, listSubscriptionsByAdmin, adminEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func scanSubscription(row rowScanner) (Subscription, error) {
	var s Subscription
	err := row.Scan(&s.ID, &s.AdminEmail, &s.Plan, &s.Price, &s.StartDate,
		&s.EndDate, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
