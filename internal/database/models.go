package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Admin struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Restaurant struct {
	ID             uuid.UUID
	Code           string
	Name           string
	RestaurantType string
	OwnerEmail     string
	Currency       string
	Online         bool
	BannerImage    pgtype.Text
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Order struct {
	ID            uuid.UUID
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
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is a price snapshot taken at checkout, never a live reference to
// a menu item.
type OrderItem struct {
	ID       uuid.UUID
	OrderID  uuid.UUID
	Name     string
	Price    pgtype.Numeric
	Quantity int32
}

type MenuCategory struct {
	ID           uuid.UUID
	RestaurantID string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MenuItem struct {
	ID           uuid.UUID
	CategoryID   uuid.UUID
	RestaurantID string
	Name         string
	Description  string
	Price        pgtype.Numeric
	Margin       pgtype.Numeric
	IsAvailable  bool
	Image        pgtype.Text
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Stock struct {
	ID           uuid.UUID
	RestaurantID string
	Name         string
	Quantity     pgtype.Numeric
	Unit         string
	Price        pgtype.Numeric
	MinQuantity  pgtype.Numeric
	Description  pgtype.Text
	IsAvailable  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type StockHistory struct {
	ID            uuid.UUID
	StockID       uuid.UUID
	Delta         pgtype.Numeric
	QuantityAfter pgtype.Numeric
	Note          pgtype.Text
	CreatedAt     time.Time
}

type OtherBill struct {
	ID            uuid.UUID
	RestaurantID  string
	BillType      string
	BillNumber    string
	BillDate      time.Time
	DueDate       time.Time
	Amount        pgtype.Numeric
	PaymentStatus string
	PaymentMethod pgtype.Text
	Description   pgtype.Text
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type PurchaseBill struct {
	ID            uuid.UUID
	RestaurantID  string
	VendorName    string
	BillNumber    string
	BillDate      time.Time
	TotalAmount   pgtype.Numeric
	PaymentStatus string
	PaymentMethod pgtype.Text
	Notes         pgtype.Text
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type PurchaseBillItem struct {
	ID       uuid.UUID
	BillID   uuid.UUID
	Name     string
	Quantity pgtype.Numeric
	Price    pgtype.Numeric
}

type Subscription struct {
	ID         uuid.UUID
	AdminEmail string
	Plan       string
	Price      pgtype.Numeric
	StartDate  time.Time
	EndDate    time.Time
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Message struct {
	ID           uuid.UUID
	RestaurantID string
	SenderEmail  string
	SenderName   string
	SenderRole   string
	Content      string
	MessageType  string
	CreatedAt    time.Time
}
