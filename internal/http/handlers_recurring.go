package http

import (
	"net/http"

	"centime/internal/core"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	defs, err := s.recurring.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"
	today := core.Today()
	out := make([]recurringDTO, 0, len(defs))
	for _, def := range defs {
		if activeOnly && !def.Active {
			continue
		}
		out = append(out, toRecurringDTO(def, today))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var dto recurringDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.recurring.Create(r.Context(), dto.toCore())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurringDTO(created, core.Today()))
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	def, err := s.recurring.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringDTO(def, core.Today()))
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	var dto recurringDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, r, err)
		return
	}
	def := dto.toCore()
	def.ID = r.PathValue("id")
	updated, err := s.recurring.Update(r.Context(), def)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringDTO(updated, core.Today()))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.recurring.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExecuteRecurring(w http.ResponseWriter, r *http.Request) {
	res, err := s.recurring.Execute(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, struct {
		Transaction transactionDTO `json:"transaction"`
		Definition  recurringDTO   `json:"definition"`
	}{
		Transaction: toTransactionDTO(res.Transaction),
		Definition:  toRecurringDTO(res.Definition, core.Today()),
	})
}

func (s *Server) handleToggleRecurring(w http.ResponseWriter, r *http.Request) {
	def, err := s.recurring.Toggle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringDTO(def, core.Today()))
}
