package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"centime/internal/core"
	"centime/internal/export"
	applog "centime/internal/log"
	"centime/internal/services"
)

// ExportSink is where the Sheets export endpoint sends transactions.
// Satisfied by export.GoogleSheets; nil disables the endpoint.
type ExportSink interface {
	Append(ctx context.Context, txns []core.Transaction) (ref string, err error)
}

// handleExportCSV streams the filtered transaction list as a CSV download.
// The same query parameters as the list endpoint apply.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	txns, err := s.transactions.List(r.Context(), parseFilters(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteCSV(w, txns); err != nil {
		// Headers are already out; all we can do is log.
		slog.ErrorContext(r.Context(), "CSV export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
	}
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "sheets export is not configured"})
		return
	}

	var req struct {
		StartDate *core.Date `json:"startDate"`
		EndDate   *core.Date `json:"endDate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if (req.StartDate == nil) != (req.EndDate == nil) {
		writeError(w, r, fmt.Errorf("%w: startDate and endDate must be provided together", services.ErrValidation))
		return
	}

	var (
		txns []core.Transaction
		err  error
	)
	if req.StartDate != nil {
		txns, err = s.storage.ListTransactionsBetween(r.Context(), *req.StartDate, *req.EndDate)
	} else {
		txns, err = s.storage.ListTransactions(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	ref, err := s.exporter.Append(r.Context(), txns)
	if err != nil {
		writeError(w, r, fmt.Errorf("sheets export: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Ref   string `json:"ref"`
		Count int    `json:"count"`
	}{Ref: ref, Count: len(txns)})
}
