// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"centime/internal/cache"
	"centime/internal/core"
	applog "centime/internal/log"
	"centime/internal/services"
	"centime/internal/storage"
)

type Server struct {
	http.Server

	storage      *storage.SQLiteRepository
	transactions *services.TransactionService
	recurring    *services.RecurringService
	categories   *services.CategoryService
	accounts     *services.AccountService
	goals        *services.GoalService
	reports      *services.ReportService
	exporter     ExportSink

	rateLimiter *rateLimiter

	// Report caches keyed by period; any ledger write purges both.
	monthlyCache *cache.LRUCache[core.MonthlyReport]
	yearlyCache  *cache.LRUCache[core.YearlyReport]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// Deps bundles everything the server serves. Exporter is optional; the
// Sheets export endpoint answers 503 when it is nil.
type Deps struct {
	Storage      *storage.SQLiteRepository
	Transactions *services.TransactionService
	Recurring    *services.RecurringService
	Categories   *services.CategoryService
	Accounts     *services.AccountService
	Goals        *services.GoalService
	Reports      *services.ReportService
	Exporter     ExportSink
	CacheSize    int
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	cacheSize := deps.CacheSize
	if cacheSize <= 0 {
		cacheSize = 64
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		storage:      deps.Storage,
		transactions: deps.Transactions,
		recurring:    deps.Recurring,
		categories:   deps.Categories,
		accounts:     deps.Accounts,
		goals:        deps.Goals,
		reports:      deps.Reports,
		exporter:     deps.Exporter,
		rateLimiter:  newRateLimiter(),
		monthlyCache: cache.NewLRUCache[core.MonthlyReport](cacheSize, 5*time.Minute),
		yearlyCache:  cache.NewLRUCache[core.YearlyReport](cacheSize, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.monthlyCache)
	s.cacheManager.Register(s.yearlyCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	s.route(mux, "GET /api/transactions", s.handleListTransactions)
	s.route(mux, "POST /api/transactions", s.handleCreateTransaction)
	s.route(mux, "GET /api/transactions/{id}", s.handleGetTransaction)
	s.route(mux, "PUT /api/transactions/{id}", s.handleUpdateTransaction)
	s.route(mux, "DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	s.route(mux, "GET /api/transactions/statistics", s.handleStatistics)

	s.route(mux, "GET /api/recurring", s.handleListRecurring)
	s.route(mux, "POST /api/recurring", s.handleCreateRecurring)
	s.route(mux, "GET /api/recurring/{id}", s.handleGetRecurring)
	s.route(mux, "PUT /api/recurring/{id}", s.handleUpdateRecurring)
	s.route(mux, "DELETE /api/recurring/{id}", s.handleDeleteRecurring)
	s.route(mux, "POST /api/recurring/{id}/execute", s.handleExecuteRecurring)
	s.route(mux, "PUT /api/recurring/{id}/toggle", s.handleToggleRecurring)

	s.route(mux, "GET /api/categories", s.handleListCategories)
	s.route(mux, "POST /api/categories", s.handleCreateCategory)
	s.route(mux, "GET /api/categories/{id}", s.handleGetCategory)
	s.route(mux, "PUT /api/categories/{id}", s.handleUpdateCategory)
	s.route(mux, "DELETE /api/categories/{id}", s.handleDeleteCategory)

	s.route(mux, "GET /api/accounts", s.handleListAccounts)
	s.route(mux, "POST /api/accounts", s.handleCreateAccount)
	s.route(mux, "GET /api/accounts/total-balance", s.handleTotalBalance)
	s.route(mux, "GET /api/accounts/{id}", s.handleGetAccount)
	s.route(mux, "GET /api/accounts/{id}/transactions", s.handleAccountTransactions)
	s.route(mux, "PUT /api/accounts/{id}", s.handleUpdateAccount)
	s.route(mux, "DELETE /api/accounts/{id}", s.handleDeleteAccount)
	s.route(mux, "POST /api/accounts/transfer", s.handleTransfer)

	s.route(mux, "GET /api/goals", s.handleListGoals)
	s.route(mux, "POST /api/goals", s.handleCreateGoal)
	s.route(mux, "GET /api/goals/{id}", s.handleGetGoal)
	s.route(mux, "PUT /api/goals/{id}", s.handleUpdateGoal)
	s.route(mux, "DELETE /api/goals/{id}", s.handleDeleteGoal)
	s.route(mux, "POST /api/goals/{id}/add-amount", s.handleAddToGoal)

	s.route(mux, "GET /api/notifications", s.handleListNotifications)
	s.route(mux, "PUT /api/notifications/read-all", s.handleMarkAllNotificationsRead)
	s.route(mux, "PUT /api/notifications/{id}/read", s.handleMarkNotificationRead)
	s.route(mux, "DELETE /api/notifications/{id}", s.handleDeleteNotification)

	s.route(mux, "GET /api/settings/budget", s.handleGetBudget)
	s.route(mux, "PUT /api/settings/budget", s.handleSetBudget)

	s.route(mux, "GET /api/reports/monthly", s.handleMonthlyReport)
	s.route(mux, "GET /api/reports/yearly", s.handleYearlyReport)
	s.route(mux, "GET /api/reports/comparison", s.handleCompareReport)

	s.route(mux, "GET /api/export/transactions.csv", s.handleExportCSV)
	s.route(mux, "POST /api/export/sheets", s.handleExportSheets)

	return s
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, s.withCommon(h))
}

// withCommon adds security headers, rate limiting on mutating methods, and
// request logging.
func (s *Server) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		if mutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// invalidateReports purges the derived-report caches after any write that
// can change aggregates.
func (s *Server) invalidateReports() {
	s.monthlyCache.Purge()
	s.yearlyCache.Purge()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type contextKey string

const requestIDKey contextKey = "request_id"

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ready")
}
