package http

import (
	"net/http"

	"centime/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.transactions.List(r.Context(), parseFilters(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txns))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var dto transactionDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.transactions.Create(r.Context(), dto.toCore())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toTransactionDTO(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := s.transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(txn))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var dto transactionDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, r, err)
		return
	}
	txn := dto.toCore()
	txn.ID = r.PathValue("id")
	updated, err := s.transactions.Update(r.Context(), txn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, toTransactionDTO(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

// handleStatistics summarizes a date range, defaulting to the current month.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	today := core.Today()
	from := core.NewDate(today.Year(), int(today.Month()), 1)
	to := from.AddDays(core.DaysInMonth(today.Year(), int(today.Month())) - 1)

	if raw := r.URL.Query().Get("startDate"); raw != "" {
		if d, err := core.ParseDate(raw); err == nil {
			from = d
		}
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		if d, err := core.ParseDate(raw); err == nil {
			to = d
		}
	}

	stats, err := s.transactions.Statistics(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statisticsDTO{
		TotalIncome:  stats.TotalIncome.Float64(),
		TotalExpense: stats.TotalExpense.Float64(),
		Balance:      stats.Balance.Float64(),
		Count:        stats.Count,
		ByCategory:   toCategoryDTOs(stats.ByCategory),
	})
}
