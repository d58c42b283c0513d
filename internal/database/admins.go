package database

import (
	"context"

	"github.com/google/uuid"
)

const adminColumns = `id, name, email, password_hash, created_at`

const createAdmin = `
INSERT INTO admins (name, email, password_hash)
VALUES ($1, $2, $3)
RETURNING ` + adminColumns

type CreateAdminParams struct {
	Name         string
	Email        string
	PasswordHash string
}

func (q *Queries) CreateAdmin(ctx context.Context, arg CreateAdminParams) (Admin, error) {
	row := q.db.QueryRow(ctx, createAdmin, arg.Name, arg.Email, arg.PasswordHash)
	return scanAdmin(row)
}

const getAdmin = `
SELECT ` + adminColumns + ` FROM admins WHERE id = $1`

func (q *Queries) GetAdmin(ctx context.Context, id uuid.UUID) (Admin, error) {
	row := q.db.QueryRow(ctx, getAdmin, id)
	return scanAdmin(row)
}

const getAdminByEmail = `
SELECT ` + adminColumns + ` FROM admins WHERE email = $1`

func (q *Queries) GetAdminByEmail(ctx context.Context, email string) (Admin, error) {
	row := q.db.QueryRow(ctx, getAdminByEmail, email)
	return scanAdmin(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAdmin(row rowScanner) (Admin, error) {
	var a Admin
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	return a, err
}
