package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ledgerdesk/ledgerdesk/internal/application"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
)

// filterFromQuery builds a ledger filter from the request's query string.
func filterFromQuery(r *http.Request) application.Filter {
	q := r.URL.Query()
	return application.Filter{
		From:     q.Get("from"),
		To:       q.Get("to"),
		Category: q.Get("category"),
		Type:     q.Get("type"),
	}
}

func entryInputFromRequest(req EntryRequest) application.EntryInput {
	return application.EntryInput{
		Date:     req.Date,
		Type:     req.Type,
		Category: req.Category,
		Amount:   req.Amount,
		Notes:    req.Notes,
	}
}

// ListEntries returns the company's decrypted ledger, newest first, narrowed
// by the optional from/to/category/type query parameters.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFrom(r.Context())

	entries, err := h.ledgerSvc.List(r.Context(), companyID, filterFromQuery(r))
	if err != nil {
		h.logger.Error("failed to list entries", "company_id", companyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toEntryResponse(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddEntry validates and records a new ledger entry.
func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFrom(r.Context())

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.ledgerSvc.Add(r.Context(), companyID, entryInputFromRequest(req))
	if err != nil {
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusUnprocessableEntity, vErr.Msg)
			return
		}
		h.logger.Error("failed to add entry", "company_id", companyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(*entry))
}

// EditEntry fully overwrites an existing entry. A cross-tenant id behaves
// like a missing one.
func (h *Handler) EditEntry(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFrom(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.ledgerSvc.Edit(r.Context(), companyID, id, entryInputFromRequest(req)); err != nil {
		var vErr *application.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeError(w, http.StatusUnprocessableEntity, vErr.Msg)
		case errors.Is(err, driven.ErrNotFound):
			writeError(w, http.StatusNotFound, "transaction not found")
		default:
			h.logger.Error("failed to edit entry", "company_id", companyID, "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteEntry removes an entry owned by the company.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFrom(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := h.ledgerSvc.Delete(r.Context(), companyID, id); err != nil {
		if errors.Is(err, driven.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.logger.Error("failed to delete entry", "company_id", companyID, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SummaryReport returns income/expense/net totals with per-month and
// per-year buckets over the filtered ledger.
func (h *Handler) SummaryReport(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFrom(r.Context())

	summary, err := h.ledgerSvc.Summarize(r.Context(), companyID, filterFromQuery(r))
	if err != nil {
		h.logger.Error("failed to summarize ledger", "company_id", companyID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// ExportCSV streams the filtered ledger as a CSV attachment.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDFrom(r.Context())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	if err := h.ledgerSvc.ExportCSV(r.Context(), companyID, filterFromQuery(r), w); err != nil {
		// Headers are already out; all we can do is log.
		h.logger.Error("failed to export csv", "company_id", companyID, "error", err)
	}
}
