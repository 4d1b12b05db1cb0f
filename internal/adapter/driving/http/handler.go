// Package httphandler is the HTTP driving adapter: a JSON API over the
// authentication flow, the encrypted ledger, and the POS catalog. Every
// route past /auth and /health requires a fully authenticated session.
package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/application"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	authSvc   *application.AuthService
	ledgerSvc *application.LedgerService
	products  driven.ProductStore
	customers driven.CustomerStore
	sales     driven.SaleStore
	sessions  *SessionManager
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	authSvc *application.AuthService,
	ledgerSvc *application.LedgerService,
	products driven.ProductStore,
	customers driven.CustomerStore,
	sales driven.SaleStore,
	sessions *SessionManager,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		authSvc:   authSvc,
		ledgerSvc: ledgerSvc,
		products:  products,
		customers: customers,
		sales:     sales,
		sessions:  sessions,
		logger:    logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/signup", h.Signup)
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/otp", h.VerifyOTP)
	mux.HandleFunc("POST /api/v1/auth/logout", h.Logout)

	mux.HandleFunc("GET /api/v1/transactions", h.requireAuth(h.ListEntries))
	mux.HandleFunc("POST /api/v1/transactions", h.requireAuth(h.AddEntry))
	mux.HandleFunc("PUT /api/v1/transactions/{id}", h.requireAuth(h.EditEntry))
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", h.requireAuth(h.DeleteEntry))

	mux.HandleFunc("GET /api/v1/reports/summary", h.requireAuth(h.SummaryReport))
	mux.HandleFunc("GET /api/v1/reports/export", h.requireAuth(h.ExportCSV))

	mux.HandleFunc("GET /api/v1/products", h.requireAuth(h.ListProducts))
	mux.HandleFunc("POST /api/v1/products", h.requireAuth(h.CreateProduct))
	mux.HandleFunc("PUT /api/v1/products/{id}", h.requireAuth(h.UpdateProduct))
	mux.HandleFunc("DELETE /api/v1/products/{id}", h.requireAuth(h.DeleteProduct))

	mux.HandleFunc("GET /api/v1/customers", h.requireAuth(h.ListCustomers))
	mux.HandleFunc("POST /api/v1/customers", h.requireAuth(h.CreateCustomer))
	mux.HandleFunc("DELETE /api/v1/customers/{id}", h.requireAuth(h.DeleteCustomer))

	mux.HandleFunc("GET /api/v1/sales", h.requireAuth(h.ListSales))
	mux.HandleFunc("POST /api/v1/sales", h.requireAuth(h.RecordSale))

	mux.HandleFunc("GET /api/v1/dashboard", h.requireAuth(h.Dashboard))

	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
