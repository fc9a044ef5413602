package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"centime/internal/core"
	"centime/internal/services"
	"centime/internal/storage"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifs, err := s.storage.ListNotifications(r.Context(), unreadOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]notificationDTO, len(notifs))
	for i, n := range notifs {
		out[i] = toNotificationDTO(n)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.MarkNotificationRead(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.MarkAllNotificationsRead(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteNotification(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type budgetDTO struct {
	// Amount is the monthly budget in decimal units; zero means no budget
	// is configured and alerting is off.
	Amount float64 `json:"amount"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	raw, err := s.storage.GetSetting(r.Context(), services.SettingMonthlyBudget)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusOK, budgetDTO{})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	cents, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, r, fmt.Errorf("stored budget %q is not a number: %w", raw, err))
		return
	}
	writeJSON(w, http.StatusOK, budgetDTO{Amount: core.Money{Cents: cents}.Float64()})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var dto budgetDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, r, err)
		return
	}
	if dto.Amount < 0 {
		writeError(w, r, fmt.Errorf("%w: budget must not be negative", services.ErrValidation))
		return
	}
	cents := core.MoneyFromFloat(dto.Amount).Cents
	if err := s.storage.SetSetting(r.Context(), services.SettingMonthlyBudget, strconv.FormatInt(cents, 10)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}
