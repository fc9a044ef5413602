package http

import (
	"net/http"

	"centime/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"
	out := make([]accountDTO, 0, len(accounts))
	for _, a := range accounts {
		if activeOnly && !a.Active {
			continue
		}
		out = append(out, toAccountDTO(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var dto accountDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.accounts.Create(r.Context(), dto.toCore())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(created))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var dto accountDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, r, err)
		return
	}
	account := dto.toCore()
	account.ID = r.PathValue("id")
	updated, err := s.accounts.Update(r.Context(), account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(updated))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAccountTransactions lists one account's ledger, newest first.
func (s *Server) handleAccountTransactions(w http.ResponseWriter, r *http.Request) {
	// 404 for unknown accounts rather than an empty list.
	if _, err := s.accounts.Get(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	txns, err := s.storage.ListTransactionsByAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txns))
}

func (s *Server) handleTotalBalance(w http.ResponseWriter, r *http.Request) {
	total, err := s.accounts.TotalBalance(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Total float64 `json:"total"`
	}{Total: total.Float64()})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromAccountID string  `json:"fromAccountId"`
		ToAccountID   string  `json:"toAccountId"`
		Amount        float64 `json:"amount"`
		Description   string  `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	err := s.accounts.Transfer(r.Context(), req.FromAccountID, req.ToAccountID,
		core.MoneyFromFloat(req.Amount), req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}
