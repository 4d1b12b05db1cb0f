package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/application"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SignupRequest is the JSON body for the signup endpoint.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyOTPRequest is the JSON body for the OTP verification endpoint.
type VerifyOTPRequest struct {
	Code string `json:"code"`
}

// CompanyResponse is the JSON representation of a company account.
type CompanyResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// EntryRequest is the JSON body for adding or editing a ledger entry.
type EntryRequest struct {
	Date     string `json:"date"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Notes    string `json:"notes"`
}

// EntryResponse is the JSON representation of a decrypted ledger entry.
// Fields that failed to decrypt render as empty strings or "0".
type EntryResponse struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	Amount    string `json:"amount"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

// PeriodTotalsResponse is one reporting bucket.
type PeriodTotalsResponse struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

// SummaryResponse is the JSON representation of a ledger summary report.
type SummaryResponse struct {
	TotalIncome  string                          `json:"total_income"`
	TotalExpense string                          `json:"total_expense"`
	Net          string                          `json:"net"`
	ByMonth      map[string]PeriodTotalsResponse `json:"by_month"`
	ByYear       map[string]PeriodTotalsResponse `json:"by_year"`
}

// ProductRequest is the JSON body for creating or updating a product.
type ProductRequest struct {
	Name              string `json:"name"`
	Category          string `json:"category"`
	Price             string `json:"price"`
	StockQty          int    `json:"stock_qty"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

// ProductResponse is the JSON representation of a catalog product.
type ProductResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	Price             string `json:"price"`
	StockQty          int    `json:"stock_qty"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	LowStock          bool   `json:"low_stock"`
}

// CustomerRequest is the JSON body for creating a customer.
type CustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// CustomerResponse is the JSON representation of a customer.
type CustomerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// SaleRequest is the JSON body for recording a sale. CustomerID zero or
// absent records a walk-in sale.
type SaleRequest struct {
	ProductID  int64  `json:"product_id"`
	CustomerID int64  `json:"customer_id"`
	Quantity   int    `json:"quantity"`
	SaleDate   string `json:"sale_date"`
}

// SaleResponse is the JSON representation of a recorded sale.
type SaleResponse struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	CustomerID   int64  `json:"customer_id,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
	Quantity     int    `json:"quantity"`
	TotalPrice   string `json:"total_price"`
	SaleDate     string `json:"sale_date"`
}

// DashboardResponse aggregates the landing-page data: recent ledger
// activity, overall totals, per-category breakdown, and products running low.
type DashboardResponse struct {
	RecentEntries []EntryResponse   `json:"recent_entries"`
	TotalIncome   string            `json:"total_income"`
	TotalExpense  string            `json:"total_expense"`
	Net           string            `json:"net"`
	ByCategory    map[string]string `json:"by_category"`
	LowStock      []ProductResponse `json:"low_stock"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toCompanyResponse(c *model.Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toEntryResponse(e model.Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		Date:      e.Date,
		Type:      string(e.Type),
		Category:  e.Category,
		Amount:    e.Amount.String(),
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toSummaryResponse(s *application.Summary) SummaryResponse {
	resp := SummaryResponse{
		TotalIncome:  s.TotalIncome.String(),
		TotalExpense: s.TotalExpense.String(),
		Net:          s.Net.String(),
		ByMonth:      make(map[string]PeriodTotalsResponse, len(s.ByMonth)),
		ByYear:       make(map[string]PeriodTotalsResponse, len(s.ByYear)),
	}
	for period, totals := range s.ByMonth {
		resp.ByMonth[period] = PeriodTotalsResponse{Income: totals.Income.String(), Expense: totals.Expense.String()}
	}
	for period, totals := range s.ByYear {
		resp.ByYear[period] = PeriodTotalsResponse{Income: totals.Income.String(), Expense: totals.Expense.String()}
	}
	return resp
}

func toProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Category:          p.Category,
		Price:             p.Price.String(),
		StockQty:          p.StockQty,
		LowStockThreshold: p.LowStockThreshold,
		LowStock:          p.LowStock(),
	}
}

func toCustomerResponse(c model.Customer) CustomerResponse {
	return CustomerResponse{ID: c.ID, Name: c.Name, Phone: c.Phone, Email: c.Email}
}

func toSaleResponse(s model.Sale) SaleResponse {
	return SaleResponse{
		ID:           s.ID,
		ProductID:    s.ProductID,
		ProductName:  s.ProductName,
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
		Quantity:     s.Quantity,
		TotalPrice:   s.TotalPrice.String(),
		SaleDate:     s.SaleDate,
	}
}
