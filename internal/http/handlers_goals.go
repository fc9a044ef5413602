package http

import (
	"net/http"
	"strconv"

	"centime/internal/core"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	out := make([]goalDTO, 0, len(goals))
	for _, g := range goals {
		if want := q.Get("completed"); want != "" && want != strconv.FormatBool(g.Completed) {
			continue
		}
		out = append(out, toGoalDTO(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var dto goalDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.goals.Create(r.Context(), dto.toCore())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalDTO(created))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := s.goals.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalDTO(goal))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var dto goalDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, r, err)
		return
	}
	goal := dto.toCore()
	goal.ID = r.PathValue("id")
	updated, err := s.goals.Update(r.Context(), goal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalDTO(updated))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.goals.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddToGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	goal, err := s.goals.AddAmount(r.Context(), r.PathValue("id"), core.MoneyFromFloat(req.Amount))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalDTO(goal))
}
