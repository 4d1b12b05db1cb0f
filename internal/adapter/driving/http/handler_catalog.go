package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerdesk/ledgerdesk/internal/application"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
)

// dashboardRecentEntries caps the ledger activity shown on the dashboard.
const dashboardRecentEntries = 5

// productFromRequest validates a product payload. Price must parse as a
// positive decimal; name and category are required.
func productFromRequest(req ProductRequest) (*model.Product, string) {
	name := strings.TrimSpace(req.Name)
	category := strings.TrimSpace(req.Category)
	if name == "" || category == "" {
		return nil, "name and category are required"
	}

	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || price.Sign() <= 0 {
		return nil, "price must be a positive decimal"
	}
	if req.StockQty < 0 || req.LowStockThreshold < 0 {
		return nil, "stock quantity and threshold must not be negative"
	}

	return &model.Product{
		Name:              name,
		Category:          category,
		Price:             price,
		StockQty:          req.StockQty,
		LowStockThreshold: req.LowStockThreshold,
	}, ""
}

// ListProducts returns the full catalog ordered by name.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateProduct adds a catalog item.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, msg := productFromRequest(req)
	if msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if err := h.products.Create(r.Context(), p); err != nil {
		h.logger.Error("failed to create product", "name", p.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(*p))
}

// UpdateProduct overwrites all fields of a catalog item.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, msg := productFromRequest(req)
	if msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	p.ID = id

	if err := h.products.Update(r.Context(), p); err != nil {
		if errors.Is(err, driven.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("failed to update product", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

// DeleteProduct removes a catalog item.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, driven.ErrNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, driven.ErrProductInUse):
			writeError(w, http.StatusConflict, "product has recorded sales")
		default:
			h.logger.Error("failed to delete product", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCustomers returns all customers ordered by name.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list customers", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, toCustomerResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateCustomer adds a customer. Phone and email are optional.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	c := &model.Customer{
		Name:  name,
		Phone: strings.TrimSpace(req.Phone),
		Email: strings.TrimSpace(req.Email),
	}
	if err := h.customers.Create(r.Context(), c); err != nil {
		h.logger.Error("failed to create customer", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toCustomerResponse(*c))
}

// DeleteCustomer removes a customer. Past sales keep their customer_id, so
// history survives the deletion with the name rendered blank.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	if err := h.customers.Delete(r.Context(), id); err != nil {
		if errors.Is(err, driven.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("failed to delete customer", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSales returns all recorded sales newest first.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list sales", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]SaleResponse, 0, len(sales))
	for _, s := range sales {
		resp = append(resp, toSaleResponse(s))
	}

	writeJSON(w, http.StatusOK, resp)
}

// RecordSale records a sale, decrementing stock atomically.
func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProductID <= 0 || req.Quantity <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "product_id and a positive quantity are required")
		return
	}

	s := &model.Sale{
		ProductID:  req.ProductID,
		CustomerID: req.CustomerID,
		Quantity:   req.Quantity,
		SaleDate:   strings.TrimSpace(req.SaleDate),
	}
	if err := h.sales.Record(r.Context(), s); err != nil {
		switch {
		case errors.Is(err, driven.ErrNotFound):
			writeError(w, http.StatusNotFound, "product or customer not found")
		case errors.Is(err, driven.ErrInsufficientStock):
			writeError(w, http.StatusUnprocessableEntity, "insufficient stock")
		default:
			h.logger.Error("failed to record sale", "product_id", req.ProductID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	// Names are join-populated on reads only; fill the product name for the
	// response from what we already know.
	if p, err := h.products.Get(r.Context(), s.ProductID); err == nil && p != nil {
		s.ProductName = p.Name
	}

	writeJSON(w, http.StatusCreated, toSaleResponse(*s))
}

// Dashboard aggregates the landing-page view: recent ledger entries, running
// totals, per-category breakdown, and low-stock products.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFrom(r.Context())
	ctx := r.Context()

	entries, err := h.ledgerSvc.List(ctx, companyID, application.Filter{})
	if err != nil {
		h.logger.Error("failed to load dashboard entries", "company_id", companyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	totalIncome, totalExpense := decimal.Zero, decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	for _, e := range entries {
		switch e.Type {
		case model.TxnIncome:
			totalIncome = totalIncome.Add(e.Amount)
		case model.TxnExpense:
			totalExpense = totalExpense.Add(e.Amount)
		default:
			continue
		}
		if e.Category != "" {
			byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
		}
	}

	recent := entries
	if len(recent) > dashboardRecentEntries {
		recent = recent[:dashboardRecentEntries]
	}
	recentResp := make([]EntryResponse, 0, len(recent))
	for _, e := range recent {
		recentResp = append(recentResp, toEntryResponse(e))
	}

	lowStock, err := h.products.ListLowStock(ctx)
	if err != nil {
		h.logger.Error("failed to load low-stock products", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	lowStockResp := make([]ProductResponse, 0, len(lowStock))
	for _, p := range lowStock {
		lowStockResp = append(lowStockResp, toProductResponse(p))
	}

	categoryResp := make(map[string]string, len(byCategory))
	for category, total := range byCategory {
		categoryResp[category] = total.String()
	}

	writeJSON(w, http.StatusOK, DashboardResponse{
		RecentEntries: recentResp,
		TotalIncome:   totalIncome.String(),
		TotalExpense:  totalExpense.String(),
		Net:           totalIncome.Sub(totalExpense).String(),
		ByCategory:    categoryResp,
		LowStock:      lowStockResp,
	})
}
