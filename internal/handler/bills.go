package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mesabook/api/internal/database"
	"github.com/mesabook/api/internal/enum"
	"github.com/shopspring/decimal"
)

// BillStore defines the database methods needed by bill handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type BillStore interface {
	CreateOtherBill(ctx context.Context, arg database.CreateOtherBillParams) (database.OtherBill, error)
	GetOtherBill(ctx context.Context, id uuid.UUID) (database.OtherBill, error)
	ListOtherBills(ctx context.Context, arg database.ListBillsParams) ([]database.OtherBill, error)
	UpdateOtherBillStatus(ctx context.Context, arg database.UpdateOtherBillStatusParams) (database.OtherBill, error)
	DeleteOtherBill(ctx context.Context, id uuid.UUID) (int64, error)
	CreatePurchaseBill(ctx context.Context, arg database.CreatePurchaseBillParams) (database.PurchaseBill, error)
	CreatePurchaseBillItem(ctx context.Context, arg database.CreatePurchaseBillItemParams) (database.PurchaseBillItem, error)
	GetPurchaseBill(ctx context.Context, id uuid.UUID) (database.PurchaseBill, error)
	ListPurchaseBills(ctx context.Context, arg database.ListBillsParams) ([]database.PurchaseBill, error)
	ListPurchaseBillItems(ctx context.Context, billID uuid.UUID) ([]database.PurchaseBillItem, error)
	UpdatePurchaseBillStatus(ctx context.Context, arg database.UpdatePurchaseBillStatusParams) (database.PurchaseBill, error)
	DeletePurchaseBill(ctx context.Context, id uuid.UUID) (int64, error)
}

// BillHandler handles expense bill endpoints, both recurring other-bills and
// vendor purchase bills.
type BillHandler struct {
	store BillStore
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(store BillStore) *BillHandler {
	return &BillHandler{store: store}
}

// RegisterRoutes registers bill endpoints on the given Chi router.
func (h *BillHandler) RegisterRoutes(r chi.Router) {
	r.Post("/other-bills", h.CreateOther)
	r.Get("/other-bills", h.ListOther)
	r.Get("/other-bills/{id}", h.GetOther)
	r.Patch("/other-bills/{id}/status", h.UpdateOtherStatus)
	r.Delete("/other-bills/{id}", h.DeleteOther)
	r.Post("/purchase-bills", h.CreatePurchase)
	r.Get("/purchase-bills", h.ListPurchase)
	r.Get("/purchase-bills/{id}", h.GetPurchase)
	r.Patch("/purchase-bills/{id}/status", h.UpdatePurchaseStatus)
	r.Delete("/purchase-bills/{id}", h.DeletePurchase)
}

// --- Request / Response types ---

type createOtherBillRequest struct {
	RestaurantID  string `json:"restaurant_id"`
	BillType      string `json:"bill_type"`
	BillNumber    string `json:"bill_number"`
	BillDate      string `json:"bill_date"`
	DueDate       string `json:"due_date"`
	Amount        string `json:"amount"`
	PaymentStatus string `json:"payment_status"`
	PaymentMethod string `json:"payment_method"`
	Description   string `json:"description"`
}

type createPurchaseBillRequest struct {
	RestaurantID  string                    `json:"restaurant_id"`
	VendorName    string                    `json:"vendor_name"`
	BillNumber    string                    `json:"bill_number"`
	BillDate      string                    `json:"bill_date"`
	TotalAmount   string                    `json:"total_amount"`
	PaymentStatus string                    `json:"payment_status"`
	PaymentMethod string                    `json:"payment_method"`
	Notes         string                    `json:"notes"`
	Items         []purchaseBillItemRequest `json:"items"`
}

type purchaseBillItemRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

type billStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
	PaymentMethod string `json:"payment_method"`
}

type otherBillResponse struct {
	ID            uuid.UUID `json:"id"`
	RestaurantID  string    `json:"restaurant_id"`
	BillType      string    `json:"bill_type"`
	BillNumber    string    `json:"bill_number"`
	BillDate      string    `json:"bill_date"`
	DueDate       string    `json:"due_date"`
	Amount        string    `json:"amount"`
	PaymentStatus string    `json:"payment_status"`
	PaymentMethod *string   `json:"payment_method"`
	Description   *string   `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

type purchaseBillItemResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Quantity string    `json:"quantity"`
	Price    string    `json:"price"`
}

type purchaseBillResponse struct {
	ID            uuid.UUID                  `json:"id"`
	RestaurantID  string                     `json:"restaurant_id"`
	VendorName    string                     `json:"vendor_name"`
	BillNumber    string                     `json:"bill_number"`
	BillDate      string                     `json:"bill_date"`
	TotalAmount   string                     `json:"total_amount"`
	PaymentStatus string                     `json:"payment_status"`
	PaymentMethod *string                    `json:"payment_method"`
	Notes         *string                    `json:"notes"`
	Items         []purchaseBillItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
}

// --- Other bill handlers ---

// CreateOther handles POST /other-bills.
func (h *BillHandler) CreateOther(w http.ResponseWriter, r *http.Request) {
	var req createOtherBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.RestaurantID == "" || req.BillType == "" || req.BillNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id, bill_type and bill_number are required"})
		return
	}
	if !isValidBillType(req.BillType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bill_type"})
		return
	}
	status := req.PaymentStatus
	if status == "" {
		status = enum.BillStatusPending
	}
	if !isValidBillStatus(status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment_status"})
		return
	}
	billDate, err := parseDate(req.BillDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bill_date, use YYYY-MM-DD"})
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid due_date, use YYYY-MM-DD"})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
		return
	}

	bill, err := h.store.CreateOtherBill(r.Context(), database.CreateOtherBillParams{
		RestaurantID:  req.RestaurantID,
		BillType:      req.BillType,
		BillNumber:    req.BillNumber,
		BillDate:      billDate,
		DueDate:       dueDate,
		Amount:        decimalToNumeric(amount),
		PaymentStatus: status,
		PaymentMethod: toText(req.PaymentMethod),
		Description:   toText(req.Description),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "bill number already exists"})
			return
		}
		log.Printf("ERROR: create other bill: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toOtherBillResponse(bill))
}

// ListOther handles GET /other-bills?restaurant_id=&start_date=&end_date=.
func (h *BillHandler) ListOther(w http.ResponseWriter, r *http.Request) {
	params, ok := h.parseListParams(w, r)
	if !ok {
		return
	}

	bills, err := h.store.ListOtherBills(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list other bills: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]otherBillResponse, len(bills))
	for i, b := range bills {
		resp[i] = toOtherBillResponse(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOther handles GET /other-bills/{id}.
func (h *BillHandler) GetOther(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bill id"})
		return
	}

	bill, err := h.store.GetOtherBill(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "bill not found"})
			return
		}
		log.Printf("ERROR: get other bill: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOtherBillResponse(bill))
}

// UpdateOtherStatus handles PATCH /other-bills/{id}/status.
func (h *BillHandler) UpdateOtherStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bill id"})
		return
	}

	var req billStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !isValidBillStatus(req.PaymentStatus) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment_status"})
		return
	}

	bill, err := h.store.UpdateOtherBillStatus(r.Context(), database.UpdateOtherBillStatusParams{
		ID:            id,
		PaymentStatus: req.PaymentStatus,
		PaymentMethod: toText(req.PaymentMethod),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "bill not found"})
			return
		}
		log.Printf("ERROR: update other bill status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOtherBillResponse(bill))
}

// DeleteOther handles DELETE /other-bills/{id}.
func (h *BillHandler) DeleteOther(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bill id"})
		return
	}

	affected, err := h.store.DeleteOtherBill(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: delete other bill: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if affected == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "bill not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "bill deleted"})
}

// --- Purchase bill handlers ---

// CreatePurchase handles POST /purchase-bills, the bill and its line items
// in one request.
func (h *BillHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.RestaurantID == "" || req.VendorName == "" || req.BillNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id, vendor_name and bill_number are required"})
		return
	}
	status := req.PaymentStatus
	if status == "" {
		status = enum.BillStatusPending
	}
	if !isValidBillStatus(status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment_status"})
		return
	}
	billDate, err := parseDate(req.BillDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bill_date, use YYYY-MM-DD"})
		return
	}
	total, err := decimal.NewFromString(req.TotalAmount)
	if err != nil || !total.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid total_amount"})
		return
	}

	bill, err := h.store.CreatePurchaseBill(r.Context(), database.CreatePurchaseBillParams{
		RestaurantID:  req.RestaurantID,
		VendorName:    req.VendorName,
		BillNumber:    req.BillNumber,
		BillDate:      billDate,
		TotalAmount:   decimalToNumeric(total),
		PaymentStatus: status,
		PaymentMethod: toText(req.PaymentMethod),
		Notes:         toText(req.Notes),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "bill number already exists"})
			return
		}
		log.Printf("ERROR: create purchase bill: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items := make([]database.PurchaseBillItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		quantity, err := decimal.NewFromString(itemReq.Quantity)
		if err != nil || !quantity.IsPositive() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity in item " + itemReq.Name})
			return
		}
		price, err := decimal.NewFromString(itemReq.Price)
		if err != nil || price.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price in item " + itemReq.Name})
			return
		}
		item, err := h.store.CreatePurchaseBillItem(r.Context(), database.CreatePurchaseBillItemParams{
			BillID:   bill.ID,
			Name:     itemReq.Name,
			Quantity: decimalToNumeric(quantity),
			Price:    decimalToNumeric(price),
		})
		if err != nil {
			log.Printf("ERROR: create purchase bill item: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusCreated, toPurchaseBillResponse(bill, items))
}

// ListPurchase handles GET /purchase-bills?restaurant_id=&start_date=&end_date=.
func (h *BillHandler) ListPurchase(w http.ResponseWriter, r *http.Request) {
	params, ok := h.parseListParams(w, r)
	if !ok {
		return
	}

	bills, err := h.store.ListPurchaseBills(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list purchase bills: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]purchaseBillResponse, len(bills))
	for i, b := range bills {
		resp[i] = toPurchaseBillResponse(b, nil)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPurchase handles GET /purchase-bills/{id}, the bill with its items.
func (h *BillHandler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bill id"})
		return
	}

	bill, err := h.store.GetPurchaseBill(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "bill not found"})
			return
		}
		log.Printf("ERROR: get purchase bill: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListPurchaseBillItems(r.Context(), bill.ID)
	if err != nil {
		log.Printf("ERROR: list purchase bill items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toPurchaseBillResponse(bill, items))
}

// UpdatePurchaseStatus handles PATCH /purchase-bills/{id}/status.
func (h *BillHandler) UpdatePurchaseStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bill id"})
		return
	}

	var req billStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !isValidBillStatus(req.PaymentStatus) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment_status"})
		return
	}

	bill, err := h.store.UpdatePurchaseBillStatus(r.Context(), database.UpdatePurchaseBillStatusParams{
		ID:            id,
		PaymentStatus: req.PaymentStatus,
		PaymentMethod: toText(req.PaymentMethod),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "bill not found"})
			return
		}
		log.Printf("ERROR: update purchase bill status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toPurchaseBillResponse(bill, nil))
}

// DeletePurchase handles DELETE /purchase-bills/{id}. Items cascade with
// the bill.
func (h *BillHandler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bill id"})
		return
	}

	affected, err := h.store.DeletePurchaseBill(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: delete purchase bill: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if affected == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "bill not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "bill deleted"})
}

// --- Helpers ---

// parseListParams reads restaurant_id with an optional start_date/end_date
// window; the window defaults to the current month.
func (h *BillHandler) parseListParams(w http.ResponseWriter, r *http.Request) (database.ListBillsParams, bool) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id is required"})
		return database.ListBillsParams{}, false
	}

	start, end := monthBounds(time.Now())
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date, use YYYY-MM-DD"})
			return database.ListBillsParams{}, false
		}
		start, _ = dayBounds(t)
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date, use YYYY-MM-DD"})
			return database.ListBillsParams{}, false
		}
		_, end = dayBounds(t)
	}

	return database.ListBillsParams{RestaurantID: restaurantID, Start: start, End: end}, true
}

func isValidBillStatus(s string) bool {
	switch s {
	case enum.BillStatusPending, enum.BillStatusPartial, enum.BillStatusPaid:
		return true
	}
	return false
}

func isValidBillType(s string) bool {
	switch s {
	case enum.BillTypeUtility, enum.BillTypeRent, enum.BillTypeMaintenance,
		enum.BillTypeInsurance, enum.BillTypeLicense, enum.BillTypeTax, enum.BillTypeOther:
		return true
	}
	return false
}

func toOtherBillResponse(b database.OtherBill) otherBillResponse {
	return otherBillResponse{
		ID:            b.ID,
		RestaurantID:  b.RestaurantID,
		BillType:      b.BillType,
		BillNumber:    b.BillNumber,
		BillDate:      b.BillDate.Format("2006-01-02"),
		DueDate:       b.DueDate.Format("2006-01-02"),
		Amount:        numericToString(b.Amount),
		PaymentStatus: b.PaymentStatus,
		PaymentMethod: textOrNil(b.PaymentMethod),
		Description:   textOrNil(b.Description),
		CreatedAt:     b.CreatedAt,
	}
}

func toPurchaseBillResponse(b database.PurchaseBill, items []database.PurchaseBillItem) purchaseBillResponse {
	resp := purchaseBillResponse{
		ID:            b.ID,
		RestaurantID:  b.RestaurantID,
		VendorName:    b.VendorName,
		BillNumber:    b.BillNumber,
		BillDate:      b.BillDate.Format("2006-01-02"),
		TotalAmount:   numericToString(b.TotalAmount),
		PaymentStatus: b.PaymentStatus,
		PaymentMethod: textOrNil(b.PaymentMethod),
		Notes:         textOrNil(b.Notes),
		CreatedAt:     b.CreatedAt,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, purchaseBillItemResponse{
			ID:       item.ID,
			Name:     item.Name,
			Quantity: numericToString(item.Quantity),
			Price:    numericToString(item.Price),
		})
	}
	return resp
}
