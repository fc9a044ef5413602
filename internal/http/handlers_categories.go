package http

import (
	"net/http"

	"centime/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	kind := core.TransactionType(r.URL.Query().Get("type"))
	out := make([]categoryDTO, 0, len(categories))
	for _, c := range categories {
		if (kind == core.Income || kind == core.Expense) && c.Type != kind {
			continue
		}
		out = append(out, toCategoryDTO(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto categoryDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.categories.Create(r.Context(), dto.toCore())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryDTO(created))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.categories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(category))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var dto categoryDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, r, err)
		return
	}
	category := dto.toCore()
	category.ID = r.PathValue("id")
	updated, err := s.categories.Update(r.Context(), category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.categories.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
