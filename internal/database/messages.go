package database

import (
	"context"
)

const messageColumns = `id, restaurant_id, sender_email, sender_name, sender_role, content, message_type, created_at`

const createMessage = `
INSERT INTO messages (restaurant_id, sender_email, sender_name, sender_role, content, message_type)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + messageColumns

type CreateMessageParams struct {
	RestaurantID string
	SenderEmail  string
	SenderName   string
	SenderRole   string
	Content      string
	MessageType  string
}

func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error) {
	row := q.db.QueryRow(ctx, createMessage,
		arg.RestaurantID, arg.SenderEmail, arg.SenderName, arg.SenderRole,
		arg.Content, arg.MessageType)
	return scanMessage(row)
}

const listMessagesByRestaurant = `
SELECT ` + messageColumns + `
FROM messages
WHERE restaurant_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

type ListMessagesByRestaurantParams struct {
	RestaurantID string
	Limit        int32
	Offset       int32
}

func (q *Queries) ListMessagesByRestaurant(ctx context.Context, arg ListMessagesByRestaurantParams) ([]Message, error) {
	rows, err := q.db.Query(ctx, listMessagesByRestaurant, arg.RestaurantID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func scanMessage(row rowScanner) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.RestaurantID, &m.SenderEmail, &m.SenderName,
		&m.SenderRole, &m.Content, &m.MessageType, &m.CreatedAt)
	return m, err
}
