package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const otherBillColumns = `id, restaurant_id, bill_type, bill_number, bill_date, due_date,
       amount, payment_status, payment_method, description, created_at, updated_at`

const createOtherBill = `
INSERT INTO other_bills (restaurant_id, bill_type, bill_number, bill_date, due_date,
                         amount, payment_status, payment_method, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + otherBillColumns

type CreateOtherBillParams struct {
	RestaurantID  string
	BillType      string
	BillNumber    string
	BillDate      time.Time
	DueDate       time.Time
	Amount        pgtype.Numeric
	PaymentStatus string
	PaymentMethod pgtype.Text
	Description   pgtype.Text
}

func (q *Queries) CreateOtherBill(ctx context.Context, arg CreateOtherBillParams) (OtherBill, error) {
	row := q.db.QueryRow(ctx, createOtherBill,
		arg.RestaurantID, arg.BillType, arg.BillNumber, arg.BillDate, arg.DueDate,
		arg.Amount, arg.PaymentStatus, arg.PaymentMethod, arg.Description)
	return scanOtherBill(row)
}

const getOtherBill = `
SELECT ` + otherBillColumns + ` FROM other_bills WHERE id = $1`

func (q *Queries) GetOtherBill(ctx context.Context, id uuid.UUID) (OtherBill, error) {
	row := q.db.QueryRow(ctx, getOtherBill, id)
	return scanOtherBill(row)
}

const listOtherBills = `
SELECT ` + otherBillColumns + `
FROM other_bills
WHERE restaurant_id = $1 AND bill_date >= $2 AND bill_date <= $3
ORDER BY bill_date DESC`

type ListBillsParams struct {
	RestaurantID string
	Start        time.Time
	End          time.Time
}

func (q *Queries) ListOtherBills(ctx context.Context, arg ListBillsParams) ([]OtherBill, error) {
	rows, err := q.db.Query(ctx, listOtherBills, arg.RestaurantID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []OtherBill
	for rows.Next() {
		b, err := scanOtherBill(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

const updateOtherBillStatus = `
UPDATE other_bills
SET payment_status = $2, payment_method = $3, updated_at = now()
WHERE id = $1
RETURNING ` + otherBillColumns

type UpdateOtherBillStatusParams struct {
	ID            uuid.UUID
	PaymentStatus string
	PaymentMethod pgtype.Text
}

func (q *Queries) UpdateOtherBillStatus(ctx context.Context, arg UpdateOtherBillStatusParams) (OtherBill, error) {
	row := q.db.QueryRow(ctx, updateOtherBillStatus, arg.ID, arg.PaymentStatus, arg.PaymentMethod)
	return scanOtherBill(row)
}

const deleteOtherBill = `
DELETE FROM other_bills WHERE id = $1`

func (q *Queries) DeleteOtherBill(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteOtherBill, id)
	return tag.RowsAffected(), err
}

const purchaseBillColumns = `id, restaurant_id, vendor_name, bill_number, bill_date,
       total_amount, payment_status, payment_method, notes, created_at, updated_at`

const createPurchaseBill = `
INSERT INTO purchase_bills (restaurant_id, vendor_name, bill_number, bill_date,
                            total_amount, payment_status, payment_method, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + purchaseBillColumns

type CreatePurchaseBillParams struct {
	RestaurantID  string
	VendorName    string
	BillNumber    string
	BillDate      time.Time
	TotalAmount   pgtype.Numeric
	PaymentStatus string
	PaymentMethod pgtype.Text
	Notes         pgtype.Text
}

func (q *Queries) CreatePurchaseBill(ctx context.Context, arg CreatePurchaseBillParams) (PurchaseBill, error) {
	row := q.db.QueryRow(ctx, createPurchaseBill,
		arg.RestaurantID, arg.VendorName, arg.BillNumber, arg.BillDate,
		arg.TotalAmount, arg.PaymentStatus, arg.PaymentMethod, arg.Notes)
	return scanPurchaseBill(row)
}

const createPurchaseBillItem = `
INSERT INTO purchase_bill_items (bill_id, name, quantity, price)
VALUES ($1, $2, $3, $4)
RETURNING id, bill_id, name, quantity, price`

type CreatePurchaseBillItemParams struct {
	BillID   uuid.UUID
	Name     string
	Quantity pgtype.Numeric
	Price    pgtype.Numeric
}

func (q *Queries) CreatePurchaseBillItem(ctx context.Context, arg CreatePurchaseBillItemParams) (PurchaseBillItem, error) {
	row := q.db.QueryRow(ctx, createPurchaseBillItem, arg.BillID, arg.Name, arg.Quantity, arg.Price)
	var i PurchaseBillItem
	err := row.Scan(&i.ID, &i.BillID, &i.Name, &i.Quantity, &i.Price)
	return i, err
}

const getPurchaseBill = `
SELECT ` + purchaseBillColumns + ` FROM purchase_bills WHERE id = $1`

func (q *Queries) GetPurchaseBill(ctx context.Context, id uuid.UUID) (PurchaseBill, error) {
	row := q.db.QueryRow(ctx, getPurchaseBill, id)
	return scanPurchaseBill(row)
}

const listPurchaseBills = `
SELECT ` + purchaseBillColumns + `
FROM purchase_bills
WHERE restaurant_id = $1 AND bill_date >= $2 AND bill_date <= $3
ORDER BY bill_date DESC`

func (q *Queries) ListPurchaseBills(ctx context.Context, arg ListBillsParams) ([]PurchaseBill, error) {
	rows, err := q.db.Query(ctx, listPurchaseBills, arg.RestaurantID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPurchaseBills(rows)
}

const listPurchaseBillItems = `
SELECT id, bill_id, name, quantity, price
FROM purchase_bill_items
WHERE bill_id = $1
ORDER BY id`

func (q *Queries) ListPurchaseBillItems(ctx context.Context, billID uuid.UUID) ([]PurchaseBillItem, error) {
	rows, err := q.db.Query(ctx, listPurchaseBillItems, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []PurchaseBillItem
	for rows.Next() {
		var i PurchaseBillItem
		if err := rows.Scan(&i.ID, &i.BillID, &i.Name, &i.Quantity, &i.Price); err != nil {
			return nil, err
		}
		result = append(result, i)
	}
	return result, rows.Err()
}

const updatePurchaseBillStatus = `
UPDATE purchase_bills
SET payment_status = $2, payment_method = $3, updated_at = now()
WHERE id = $1
RETURNING ` + purchaseBillColumns

type UpdatePurchaseBillStatusParams struct {
	ID            uuid.UUID
	PaymentStatus string
	PaymentMethod pgtype.Text
}

func (q *Queries) UpdatePurchaseBillStatus(ctx context.Context, arg UpdatePurchaseBillStatusParams) (PurchaseBill, error) {
	row := q.db.QueryRow(ctx, updatePurchaseBillStatus, arg.ID, arg.PaymentStatus, arg.PaymentMethod)
	return scanPurchaseBill(row)
}

const deletePurchaseBill = `
DELETE FROM purchase_bills WHERE id = $1`

func (q *Queries) DeletePurchaseBill(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deletePurchaseBill, id)
	return tag.RowsAffected(), err
}

func scanOtherBill(row rowScanner) (OtherBill, error) {
	var b OtherBill
	err := row.Scan(&b.ID, &b.RestaurantID, &b.BillType, &b.BillNumber, &b.BillDate,
		&b.DueDate, &b.Amount, &b.PaymentStatus, &b.PaymentMethod, &b.Description,
		&b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func scanPurchaseBill(row rowScanner) (PurchaseBill, error) {
	var b PurchaseBill
	err := row.Scan(&b.ID, &b.RestaurantID, &b.VendorName, &b.BillNumber, &b.BillDate,
		&b.TotalAmount, &b.PaymentStatus, &b.PaymentMethod, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func collectPurchaseBills(rows pgx.Rows) ([]PurchaseBill, error) {
	var result []PurchaseBill
	for rows.Next() {
		b, err := scanPurchaseBill(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}
