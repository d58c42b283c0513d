package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mesabook/api/internal/database"
	"github.com/shopspring/decimal"
)

// RevenueStore defines the database methods needed by revenue handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type RevenueStore interface {
	GetDailyRevenue(ctx context.Context, arg database.RevenueRangeParams) ([]database.RevenueBucketRow, error)
	GetMonthlyRevenue(ctx context.Context, arg database.RevenueRangeParams) ([]database.RevenueBucketRow, error)
	GetHourlyRevenue(ctx context.Context, arg database.RevenueRangeParams) ([]database.HourlyRevenueRow, error)
	GetSalesByMonth(ctx context.Context, arg database.RevenueRangeParams) ([]database.PeriodAmountRow, error)
	GetSalesByWeekday(ctx context.Context, arg database.RevenueRangeParams) ([]database.WeekdayAmountRow, error)
	GetSalesTotal(ctx context.Context, arg database.RevenueRangeParams) (pgtype.Numeric, error)
	GetBillExpenseByMonth(ctx context.Context, arg database.RevenueRangeParams) ([]database.PeriodAmountRow, error)
	GetBillExpenseByWeekday(ctx context.Context, arg database.RevenueRangeParams) ([]database.WeekdayAmountRow, error)
	GetBillExpenseTotal(ctx context.Context, arg database.RevenueRangeParams) (pgtype.Numeric, error)
	ListCompletedOrderItems(ctx context.Context, arg database.RevenueRangeParams) ([]database.CompletedOrderItemRow, error)
	ListMenuItemsByRestaurant(ctx context.Context, restaurantID string) ([]database.MenuItem, error)
	ListOtherBills(ctx context.Context, arg database.ListBillsParams) ([]database.OtherBill, error)
	ListPurchaseBills(ctx context.Context, arg database.ListBillsParams) ([]database.PurchaseBill, error)
}

// RevenueHandler serves the read-only revenue and profit aggregations.
type RevenueHandler struct {
	store RevenueStore
}

// NewRevenueHandler creates a new RevenueHandler.
func NewRevenueHandler(store RevenueStore) *RevenueHandler {
	return &RevenueHandler{store: store}
}

// RegisterRoutes registers revenue endpoints on the given Chi router.
func (h *RevenueHandler) RegisterRoutes(r chi.Router) {
	r.Get("/revenue/daily", h.Daily)
	r.Get("/revenue/weekly", h.Weekly)
	r.Get("/revenue/monthly", h.Monthly)
	r.Get("/revenue/distribution", h.Distribution)
	r.Get("/revenue/profit-loss", h.ProfitLoss)
	r.Get("/revenue/bills", h.Bills)
	r.Get("/revenue/purchases", h.Purchases)
	r.Get("/analysis/profit/{code}", h.ProfitAnalysis)
}

// --- Response types ---

type revenuePoint struct {
	Label             string `json:"label"`
	TotalRevenue      string `json:"total_revenue"`
	OrderCount        int64  `json:"order_count"`
	AverageOrderValue string `json:"average_order_value"`
	CounterPayments   int64  `json:"counter_payments"`
	GooglePayPayments int64  `json:"googlepay_payments"`
}

type revenueSummary struct {
	TotalRevenue      string `json:"total_revenue"`
	TotalOrders       int64  `json:"total_orders"`
	AverageOrderValue string `json:"average_order_value"`
	CounterPayments   int64  `json:"counter_payments"`
	GooglePayPayments int64  `json:"googlepay_payments"`
}

type revenueReport struct {
	Chart   []revenuePoint `json:"chart"`
	Summary revenueSummary `json:"summary"`
}

type hourlyPoint struct {
	Hour              int32  `json:"hour"`
	TotalRevenue      string `json:"total_revenue"`
	OrderCount        int64  `json:"order_count"`
	AverageOrderValue string `json:"average_order_value"`
}

type distributionReport struct {
	Chart       []hourlyPoint `json:"chart"`
	PeakHour    int32         `json:"peak_hour"`
	PeakRevenue string        `json:"peak_revenue"`
	TotalOrders int64         `json:"total_orders"`
}

type profitPoint struct {
	Label   string `json:"label"`
	Sales   string `json:"sales"`
	Expense string `json:"expense"`
	Profit  string `json:"profit"`
}

type profitLossReport struct {
	Monthly []profitPoint `json:"monthly"`
	Weekly  []profitPoint `json:"weekly"`
	Daily   profitPoint   `json:"daily"`
}

type billsReport struct {
	Bills         []otherBillResponse `json:"bills"`
	TotalAmount   string              `json:"total_amount"`
	TotalByStatus map[string]string   `json:"total_by_status"`
	TotalByType   map[string]string   `json:"total_by_type"`
}

type purchasesReport struct {
	Bills         []purchaseBillResponse `json:"bills"`
	TotalAmount   string                 `json:"total_amount"`
	TotalByStatus map[string]string      `json:"total_by_status"`
	TotalByVendor map[string]string      `json:"total_by_vendor"`
}

type profitAnalysisPoint struct {
	Day    string `json:"day"`
	Profit string `json:"profit"`
}

type profitAnalysisItem struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Profit   string `json:"profit"`
}

type profitAnalysisReport struct {
	Series      []profitAnalysisPoint `json:"series"`
	Items       []profitAnalysisItem  `json:"items"`
	TotalProfit string                `json:"total_profit"`
}

// --- Handlers ---

// Daily handles GET /revenue/daily?restaurant_id=, the last 7 days.
func (h *RevenueHandler) Daily(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id is required"})
		return
	}

	now := time.Now()
	start, _ := dayBounds(now.AddDate(0, 0, -6))
	_, end := dayBounds(now)

	rows, err := h.store.GetDailyRevenue(r.Context(), database.RevenueRangeParams{
		RestaurantID: restaurantID,
		Start:        start,
		End:          end,
	})
	if err != nil {
		log.Printf("ERROR: daily revenue: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, buildDailyReport(rows, start, 7))
}

// Weekly handles GET /revenue/weekly?restaurant_id=&start_date=&end_date=,
// the daily pipeline over an explicit range.
func (h *RevenueHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id is required"})
		return
	}

	startDate, err := parseDate(r.URL.Query().Get("start_date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date, use YYYY-MM-DD"})
		return
	}
	endDate, err := parseDate(r.URL.Query().Get("end_date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date, use YYYY-MM-DD"})
		return
	}
	if endDate.Before(startDate) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date must not precede start_date"})
		return
	}

	start, _ := dayBounds(startDate)
	_, end := dayBounds(endDate)
	days := int(endDate.Sub(startDate).Hours()/24) + 1

	rows, err := h.store.GetDailyRevenue(r.Context(), database.RevenueRangeParams{
		RestaurantID: restaurantID,
		Start:        start,
		End:          end,
	})
	if err != nil {
		log.Printf("ERROR: weekly revenue: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, buildDailyReport(rows, start, days))
}

// Monthly handles GET /revenue/monthly?restaurant_id=, the last 8 months.
func (h *RevenueHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id is required"})
		return
	}

	now := time.Now()
	firstMonth, _ := monthBounds(now.AddDate(0, -7, 0))
	_, end := monthBounds(now)

	rows, err := h.store.GetMonthlyRevenue(r.Context(), database.RevenueRangeParams{
		RestaurantID: restaurantID,
		Start:        firstMonth,
		End:          end,
	})
	if err != nil {
		log.Printf("ERROR: monthly revenue: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	// Zero-fill 8 month buckets keyed by YYYY-MM.
	byMonth := make(map[string]database.RevenueBucketRow, len(rows))
	for _, row := range rows {
		byMonth[row.Bucket.Format("2006-01")] = row
	}

	report := revenueReport{Chart: make([]revenuePoint, 0, 8)}
	totalRevenue := decimal.Zero
	for i := 0; i < 8; i++ {
		label := firstMonth.AddDate(0, i, 0).Format("2006-01")
		point := revenuePoint{Label: label, TotalRevenue: "0.00", AverageOrderValue: "0.00"}
		if row, ok := byMonth[label]; ok {
			point = bucketToPoint(label, row)
			totalRevenue = totalRevenue.Add(numericToDecimal(row.TotalRevenue))
			report.Summary.TotalOrders += row.OrderCount
			report.Summary.CounterPayments += row.CounterPayments
			report.Summary.GooglePayPayments += row.GooglePayPayments
		}
		report.Chart = append(report.Chart, point)
	}
	finishSummary(&report.Summary, totalRevenue)

	writeJSON(w, http.StatusOK, report)
}

// Distribution handles GET /revenue/distribution?restaurant_id=, today's
// hourly buckets.
func (h *RevenueHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id is required"})
		return
	}

	start, end := dayBounds(time.Now())
	rows, err := h.store.GetHourlyRevenue(r.Context(), database.RevenueRangeParams{
		RestaurantID: restaurantID,
		Start:        start,
		End:          end,
	})
	if err != nil {
		log.Printf("ERROR: hourly revenue: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	byHour := make(map[int32]database.HourlyRevenueRow, len(rows))
	for _, row := range rows {
		byHour[row.Hour] = row
	}

	report := distributionReport{
		Chart:       make([]hourlyPoint, 0, 24),
		PeakRevenue: "0.00",
	}
	peak := decimal.Zero
	for hour := int32(0); hour < 24; hour++ {
		point := hourlyPoint{Hour: hour, TotalRevenue: "0.00", AverageOrderValue: "0.00"}
		if row, ok := byHour[hour]; ok {
			point.TotalRevenue = numericToString(row.TotalRevenue)
			point.OrderCount = row.OrderCount
			point.AverageOrderValue = numericToString(row.AverageOrderValue)
			report.TotalOrders += row.OrderCount
			if revenue := numericToDecimal(row.TotalRevenue); revenue.GreaterThan(peak) {
				peak = revenue
				report.PeakHour = hour
				report.PeakRevenue = revenue.StringFixed(2)
			}
		}
		report.Chart = append(report.Chart, point)
	}

	writeJSON(w, http.StatusOK, report)
}

// ProfitLoss handles GET /revenue/profit-loss?restaurant_id=&date=.
// Sales come from paid completed orders, expense from settled other_bills;
// missing buckets are zero, never an error.
func (h *RevenueHandler) ProfitLoss(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id is required"})
		return
	}

	anchor := time.Now()
	if s := r.URL.Query().Get("date"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, use YYYY-MM-DD"})
			return
		}
		anchor = t
	}

	ctx := r.Context()

	// Monthly: 12 months ending in the anchor month.
	firstMonth, _ := monthBounds(anchor.AddDate(0, -11, 0))
	_, monthEnd := monthBounds(anchor)
	monthRange := database.RevenueRangeParams{RestaurantID: restaurantID, Start: firstMonth, End: monthEnd}

	salesByMonth, err := h.store.GetSalesByMonth(ctx, monthRange)
	if err != nil {
		log.Printf("ERROR: sales by month: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	expenseByMonth, err := h.store.GetBillExpenseByMonth(ctx, monthRange)
	if err != nil {
		log.Printf("ERROR: expense by month: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	monthSales := make(map[string]decimal.Decimal, len(salesByMonth))
	for _, row := range salesByMonth {
		monthSales[row.Period.Format("2006-01")] = numericToDecimal(row.Amount)
	}
	monthExpense := make(map[string]decimal.Decimal, len(expenseByMonth))
	for _, row := range expenseByMonth {
		monthExpense[row.Period.Format("2006-01")] = numericToDecimal(row.Amount)
	}

	monthly := make([]profitPoint, 0, 12)
	for i := 0; i < 12; i++ {
		label := firstMonth.AddDate(0, i, 0).Format("2006-01")
		monthly = append(monthly, makeProfitPoint(label, monthSales[label], monthExpense[label]))
	}

	// Weekly: Monday..Sunday of the anchor's week.
	weekStart, weekEnd := weekBounds(anchor)
	weekRange := database.RevenueRangeParams{RestaurantID: restaurantID, Start: weekStart, End: weekEnd}

	salesByWeekday, err := h.store.GetSalesByWeekday(ctx, weekRange)
	if err != nil {
		log.Printf("ERROR: sales by weekday: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	expenseByWeekday, err := h.store.GetBillExpenseByWeekday(ctx, weekRange)
	if err != nil {
		log.Printf("ERROR: expense by weekday: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	weekdaySales := make(map[int32]decimal.Decimal, len(salesByWeekday))
	for _, row := range salesByWeekday {
		weekdaySales[row.Weekday] = numericToDecimal(row.Amount)
	}
	weekdayExpense := make(map[int32]decimal.Decimal, len(expenseByWeekday))
	for _, row := range expenseByWeekday {
		weekdayExpense[row.Weekday] = numericToDecimal(row.Amount)
	}

	weekdayLabels := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	weekly := make([]profitPoint, 0, 7)
	for i := int32(1); i <= 7; i++ {
		weekly = append(weekly, makeProfitPoint(weekdayLabels[i-1], weekdaySales[i], weekdayExpense[i]))
	}

	// Daily: the anchor day itself.
	dayStart, dayEnd := dayBounds(anchor)
	dayRange := database.RevenueRangeParams{RestaurantID: restaurantID, Start: dayStart, End: dayEnd}

	daySales, err := h.store.GetSalesTotal(ctx, dayRange)
	if err != nil {
		log.Printf("ERROR: sales total: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	dayExpense, err := h.store.GetBillExpenseTotal(ctx, dayRange)
	if err != nil {
		log.Printf("ERROR: expense total: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, profitLossReport{
		Monthly: monthly,
		Weekly:  weekly,
		Daily:   makeProfitPoint(dayStart.Format("2006-01-02"), numericToDecimal(daySales), numericToDecimal(dayExpense)),
	})
}

// Bills handles GET /revenue/bills?restaurant_id=&date=&view=.
func (h *RevenueHandler) Bills(w http.ResponseWriter, r *http.Request) {
	restaurantID, start, end, ok := h.parseWindow(w, r)
	if !ok {
		return
	}

	bills, err := h.store.ListOtherBills(r.Context(), database.ListBillsParams{
		RestaurantID: restaurantID,
		Start:        start,
		End:          end,
	})
	if err != nil {
		log.Printf("ERROR: list bills: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	report := billsReport{
		Bills:         make([]otherBillResponse, 0, len(bills)),
		TotalByStatus: map[string]string{},
		TotalByType:   map[string]string{},
	}
	total := decimal.Zero
	byStatus := map[string]decimal.Decimal{}
	byType := map[string]decimal.Decimal{}
	for _, b := range bills {
		report.Bills = append(report.Bills, toOtherBillResponse(b))
		amount := numericToDecimal(b.Amount)
		total = total.Add(amount)
		byStatus[b.PaymentStatus] = byStatus[b.PaymentStatus].Add(amount)
		byType[b.BillType] = byType[b.BillType].Add(amount)
	}
	report.TotalAmount = total.StringFixed(2)
	for status, amount := range byStatus {
		report.TotalByStatus[status] = amount.StringFixed(2)
	}
	for billType, amount := range byType {
		report.TotalByType[billType] = amount.StringFixed(2)
	}

	writeJSON(w, http.StatusOK, report)
}

// Purchases handles GET /revenue/purchases?restaurant_id=&date=&view=.
func (h *RevenueHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	restaurantID, start, end, ok := h.parseWindow(w, r)
	if !ok {
		return
	}

	bills, err := h.store.ListPurchaseBills(r.Context(), database.ListBillsParams{
		RestaurantID: restaurantID,
		Start:        start,
		End:          end,
	})
	if err != nil {
		log.Printf("ERROR: list purchase bills: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	report := purchasesReport{
		Bills:         make([]purchaseBillResponse, 0, len(bills)),
		TotalByStatus: map[string]string{},
		TotalByVendor: map[string]string{},
	}
	total := decimal.Zero
	byStatus := map[string]decimal.Decimal{}
	byVendor := map[string]decimal.Decimal{}
	for _, b := range bills {
		report.Bills = append(report.Bills, toPurchaseBillResponse(b, nil))
		amount := numericToDecimal(b.TotalAmount)
		total = total.Add(amount)
		byStatus[b.PaymentStatus] = byStatus[b.PaymentStatus].Add(amount)
		byVendor[b.VendorName] = byVendor[b.VendorName].Add(amount)
	}
	report.TotalAmount = total.StringFixed(2)
	for status, amount := range byStatus {
		report.TotalByStatus[status] = amount.StringFixed(2)
	}
	for vendor, amount := range byVendor {
		report.TotalByVendor[vendor] = amount.StringFixed(2)
	}

	writeJSON(w, http.StatusOK, report)
}

// ProfitAnalysis handles GET /analysis/profit/{code}?start_date=&end_date=.
// Per ordered item, profit = price * (margin/100) * quantity using the menu's
// current margins; items with no matching menu entry contribute zero.
func (h *RevenueHandler) ProfitAnalysis(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant code is required"})
		return
	}

	now := time.Now()
	startDate := now.AddDate(0, 0, -29)
	endDate := now
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date, use YYYY-MM-DD"})
			return
		}
		startDate = t
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date, use YYYY-MM-DD"})
			return
		}
		endDate = t
	}

	start, _ := dayBounds(startDate)
	_, end := dayBounds(endDate)

	rows, err := h.store.ListCompletedOrderItems(r.Context(), database.RevenueRangeParams{
		RestaurantID: code,
		Start:        start,
		End:          end,
	})
	if err != nil {
		log.Printf("ERROR: list completed order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	menuItems, err := h.store.ListMenuItemsByRestaurant(r.Context(), code)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	margins := make(map[string]decimal.Decimal, len(menuItems))
	for _, item := range menuItems {
		margins[item.Name] = numericToDecimal(item.Margin)
	}

	hundred := decimal.NewFromInt(100)
	byDay := map[string]decimal.Decimal{}
	type itemAgg struct {
		quantity int64
		profit   decimal.Decimal
	}
	byItem := map[string]*itemAgg{}
	totalProfit := decimal.Zero

	for _, row := range rows {
		margin, ok := margins[row.Name]
		if !ok {
			continue
		}
		qty := decimal.NewFromInt32(row.Quantity)
		profit := numericToDecimal(row.Price).Mul(margin).Div(hundred).Mul(qty)

		day := row.OrderDay.Format("2006-01-02")
		byDay[day] = byDay[day].Add(profit)
		agg := byItem[row.Name]
		if agg == nil {
			agg = &itemAgg{}
			byItem[row.Name] = agg
		}
		agg.quantity += int64(row.Quantity)
		agg.profit = agg.profit.Add(profit)
		totalProfit = totalProfit.Add(profit)
	}

	report := profitAnalysisReport{
		Series:      make([]profitAnalysisPoint, 0),
		Items:       make([]profitAnalysisItem, 0, len(byItem)),
		TotalProfit: totalProfit.StringFixed(2),
	}
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		label := day.Format("2006-01-02")
		profit := byDay[label]
		report.Series = append(report.Series, profitAnalysisPoint{Day: label, Profit: profit.StringFixed(2)})
	}
	for name, agg := range byItem {
		report.Items = append(report.Items, profitAnalysisItem{
			Name:     name,
			Quantity: agg.quantity,
			Profit:   agg.profit.StringFixed(2),
		})
	}

	writeJSON(w, http.StatusOK, report)
}

// --- Helpers ---

// parseWindow resolves the restaurant_id/date/view query triple into a time
// window. view defaults to monthly.
func (h *RevenueHandler) parseWindow(w http.ResponseWriter, r *http.Request) (string, time.Time, time.Time, bool) {
	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_id is required"})
		return "", time.Time{}, time.Time{}, false
	}

	anchor := time.Now()
	if s := r.URL.Query().Get("date"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, use YYYY-MM-DD"})
			return "", time.Time{}, time.Time{}, false
		}
		anchor = t
	}

	var start, end time.Time
	switch r.URL.Query().Get("view") {
	case "daily":
		start, end = dayBounds(anchor)
	case "weekly":
		start, end = weekBounds(anchor)
	case "", "monthly":
		start, end = monthBounds(anchor)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid view, use daily, weekly or monthly"})
		return "", time.Time{}, time.Time{}, false
	}
	return restaurantID, start, end, true
}

func buildDailyReport(rows []database.RevenueBucketRow, start time.Time, days int) revenueReport {
	byDay := make(map[string]database.RevenueBucketRow, len(rows))
	for _, row := range rows {
		byDay[row.Bucket.Format("2006-01-02")] = row
	}

	report := revenueReport{Chart: make([]revenuePoint, 0, days)}
	totalRevenue := decimal.Zero
	for i := 0; i < days; i++ {
		label := start.AddDate(0, 0, i).Format("2006-01-02")
		point := revenuePoint{Label: label, TotalRevenue: "0.00", AverageOrderValue: "0.00"}
		if row, ok := byDay[label]; ok {
			point = bucketToPoint(label, row)
			totalRevenue = totalRevenue.Add(numericToDecimal(row.TotalRevenue))
			report.Summary.TotalOrders += row.OrderCount
			report.Summary.CounterPayments += row.CounterPayments
			report.Summary.GooglePayPayments += row.GooglePayPayments
		}
		report.Chart = append(report.Chart, point)
	}
	finishSummary(&report.Summary, totalRevenue)
	return report
}

func bucketToPoint(label string, row database.RevenueBucketRow) revenuePoint {
	return revenuePoint{
		Label:             label,
		TotalRevenue:      numericToString(row.TotalRevenue),
		OrderCount:        row.OrderCount,
		AverageOrderValue: numericToString(row.AverageOrderValue),
		CounterPayments:   row.CounterPayments,
		GooglePayPayments: row.GooglePayPayments,
	}
}

func finishSummary(s *revenueSummary, totalRevenue decimal.Decimal) {
	s.TotalRevenue = totalRevenue.StringFixed(2)
	s.AverageOrderValue = "0.00"
	if s.TotalOrders > 0 {
		s.AverageOrderValue = totalRevenue.Div(decimal.NewFromInt(s.TotalOrders)).StringFixed(2)
	}
}

func makeProfitPoint(label string, sales, expense decimal.Decimal) profitPoint {
	return profitPoint{
		Label:   label,
		Sales:   sales.StringFixed(2),
		Expense: expense.StringFixed(2),
		Profit:  sales.Sub(expense).StringFixed(2),
	}
}
