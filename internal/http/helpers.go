package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"centime/internal/core"
	applog "centime/internal/log"
	"centime/internal/schedule"
	"centime/internal/search"
	"centime/internal/services"
	"centime/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses: validation problems are
// the client's fault, missing rows are 404, duplicates and invalid
// lifecycle states are conflicts, everything else is a 500 with the detail
// kept in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicate), errors.Is(err, schedule.ErrInvalidState):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(services.ErrValidation, err)
	}
	return nil
}

// parseFilters reads query-string filters. Malformed values are dropped
// rather than rejected, matching how the list endpoint tolerates partial
// input: an unparseable minAmount simply does not constrain the result.
func parseFilters(r *http.Request) search.Filters {
	q := r.URL.Query()
	f := search.Filters{
		Keyword:  q.Get("q"),
		Category: q.Get("category"),
	}

	switch q.Get("type") {
	case "income":
		f.Type = core.Income
	case "expense":
		f.Type = core.Expense
	}

	if m, ok := parseMoney(q.Get("minAmount")); ok {
		f.MinAmount = &m
	}
	if m, ok := parseMoney(q.Get("maxAmount")); ok {
		f.MaxAmount = &m
	}
	if d, err := core.ParseDate(q.Get("startDate")); err == nil {
		f.StartDate = &d
	}
	if d, err := core.ParseDate(q.Get("endDate")); err == nil {
		f.EndDate = &d
	}

	switch key := search.SortKey(q.Get("sortBy")); key {
	case search.SortByDate, search.SortByAmount, search.SortByCategory, search.SortByType:
		f.SortBy = key
	}
	switch order := search.SortOrder(q.Get("sortOrder")); order {
	case search.Asc, search.Desc:
		f.SortOrder = order
	}

	return f
}

func parseMoney(raw string) (core.Money, bool) {
	cents, err := core.ParseDecimalToCents(raw)
	if err != nil {
		return core.Money{}, false
	}
	return core.Money{Cents: cents}, true
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
