package http

import (
	"fmt"
	"net/http"
	"time"

	"centime/internal/core"
	"centime/internal/services"
)

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year := parseIntQuery(r, "year", now.Year())
	month := parseIntQuery(r, "month", int(now.Month()))

	key := fmt.Sprintf("%d-%d", year, month)
	if report, ok := s.monthlyCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toMonthlyReportDTO(report))
		return
	}

	report, err := s.reports.Monthly(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.monthlyCache.Set(key, report)
	writeJSON(w, http.StatusOK, toMonthlyReportDTO(report))
}

func (s *Server) handleYearlyReport(w http.ResponseWriter, r *http.Request) {
	year := parseIntQuery(r, "year", time.Now().Year())

	key := fmt.Sprintf("%d", year)
	if report, ok := s.yearlyCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toYearlyReportDTO(report))
		return
	}

	report, err := s.reports.Yearly(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.yearlyCache.Set(key, report)
	writeJSON(w, http.StatusOK, toYearlyReportDTO(report))
}

// handleCompareReport contrasts two arbitrary date ranges. Comparisons are
// rarely repeated with identical bounds, so they bypass the caches.
func (s *Server) handleCompareReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dates := make([]core.Date, 4)
	for i, key := range []string{"firstStart", "firstEnd", "secondStart", "secondEnd"} {
		d, err := core.ParseDate(q.Get(key))
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %s: %v", services.ErrValidation, key, err))
			return
		}
		dates[i] = d
	}

	report, err := s.reports.Compare(r.Context(), dates[0], dates[1], dates[2], dates[3])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toComparisonReportDTO(report))
}
