package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"centime/internal/export"
	"centime/internal/services"
	"centime/internal/storage"
)

type testServer struct {
	*httptest.Server
	exporter *export.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	alerts := services.NewAlertEngine(repo, nil)
	transactions := services.NewTransactionService(repo, alerts)
	recurring := services.NewRecurringService(repo, transactions, nil)
	categories := services.NewCategoryService(repo)
	accounts := services.NewAccountService(repo)
	goals := services.NewGoalService(repo, nil)
	reports := services.NewReportService(repo)

	exporter := export.NewMemory()
	srv := NewServer(":0", Deps{
		Storage:      repo,
		Transactions: transactions,
		Recurring:    recurring,
		Categories:   categories,
		Accounts:     accounts,
		Goals:        goals,
		Reports:      reports,
		Exporter:     exporter,
	})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, exporter: exporter}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp, raw
}

func decodeBody[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode response %s: %v", raw, err)
	}
	return v
}

func TestTransactionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := ts.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"type":        "expense",
		"amount":      42.50,
		"category":    "Food",
		"description": "groceries",
		"date":        "2024-03-15",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, raw)
	}
	created := decodeBody[transactionDTO](t, raw)
	if created.ID == "" {
		t.Fatal("expected server-assigned id")
	}
	if created.Amount != 42.50 {
		t.Errorf("expected amount 42.50, got %v", created.Amount)
	}

	resp, raw = ts.do(t, http.MethodGet, "/api/transactions/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", resp.StatusCode, raw)
	}

	created.Description = "weekly groceries"
	resp, raw = ts.do(t, http.MethodPut, "/api/transactions/"+created.ID, created)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", resp.StatusCode, raw)
	}
	if got := decodeBody[transactionDTO](t, raw); got.Description != "weekly groceries" {
		t.Errorf("update not applied: %q", got.Description)
	}

	resp, _ = ts.do(t, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
	resp, _ = ts.do(t, http.MethodGet, "/api/transactions/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestTransactionValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"type": "transfer", "amount": 10.0, "category": "Misc", "date": "2024-03-15",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad type: expected 400, got %d", resp.StatusCode)
	}

	// Unknown fields are rejected, not silently dropped.
	resp, _ = ts.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"type": "expense", "amount": 10.0, "category": "Misc", "date": "2024-03-15",
		"surprise": true,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown field: expected 400, got %d", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodGet, "/api/transactions/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", resp.StatusCode)
	}
}

func TestListFiltersAndMalformedValuesTolerated(t *testing.T) {
	ts := newTestServer(t)

	seed := []map[string]any{
		{"type": "expense", "amount": 12.0, "category": "Food", "date": "2024-03-10"},
		{"type": "expense", "amount": 80.0, "category": "Transport", "date": "2024-03-11"},
		{"type": "income", "amount": 2500.0, "category": "Salary", "date": "2024-03-01"},
	}
	for _, txn := range seed {
		if resp, raw := ts.do(t, http.MethodPost, "/api/transactions", txn); resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed: %d: %s", resp.StatusCode, raw)
		}
	}

	resp, raw := ts.do(t, http.MethodGet, "/api/transactions?type=expense&category=Food", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	if got := decodeBody[[]transactionDTO](t, raw); len(got) != 1 || got[0].Category != "Food" {
		t.Errorf("expected single Food expense, got %+v", got)
	}

	// Amount bounds accept decimal strings, comma separator included.
	resp, raw = ts.do(t, http.MethodGet, "/api/transactions?minAmount=50,00&maxAmount=100", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("amount bounds: expected 200, got %d", resp.StatusCode)
	}
	if got := decodeBody[[]transactionDTO](t, raw); len(got) != 1 || got[0].Category != "Transport" {
		t.Errorf("expected single Transport expense, got %+v", got)
	}

	// Unparseable filter values drop out instead of failing the request.
	resp, raw = ts.do(t, http.MethodGet, "/api/transactions?minAmount=abc&startDate=not-a-date&sortBy=bogus", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("malformed filters: expected 200, got %d: %s", resp.StatusCode, raw)
	}
	if got := decodeBody[[]transactionDTO](t, raw); len(got) != 3 {
		t.Errorf("expected all 3 transactions, got %d", len(got))
	}

	// Default ordering is newest first.
	_, raw = ts.do(t, http.MethodGet, "/api/transactions", nil)
	got := decodeBody[[]transactionDTO](t, raw)
	if got[0].Date.String() != "2024-03-11" || got[2].Date.String() != "2024-03-01" {
		t.Errorf("expected date-descending order, got %v, %v, %v", got[0].Date, got[1].Date, got[2].Date)
	}
}

func TestStatisticsOverExplicitRange(t *testing.T) {
	ts := newTestServer(t)

	seed := []map[string]any{
		{"type": "income", "amount": 1000.0, "category": "Salary", "date": "2024-03-01"},
		{"type": "expense", "amount": 200.0, "category": "Food", "date": "2024-03-15"},
		{"type": "expense", "amount": 50.0, "category": "Food", "date": "2024-04-02"},
	}
	for _, body := range seed {
		if resp, raw := ts.do(t, http.MethodPost, "/api/transactions", body); resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed: expected 201, got %d: %s", resp.StatusCode, raw)
		}
	}

	resp, raw := ts.do(t, http.MethodGet, "/api/transactions/statistics?startDate=2024-03-01&endDate=2024-03-31", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("statistics: expected 200, got %d: %s", resp.StatusCode, raw)
	}
	stats := decodeBody[statisticsDTO](t, raw)
	if stats.TotalIncome != 1000.0 || stats.TotalExpense != 200.0 || stats.Balance != 800.0 {
		t.Errorf("unexpected totals: income %v, expense %v, balance %v", stats.TotalIncome, stats.TotalExpense, stats.Balance)
	}
	if stats.Count != 2 {
		t.Errorf("expected 2 transactions in range, got %d", stats.Count)
	}
	if len(stats.ByCategory) == 0 || stats.ByCategory[0].Name != "Food" || stats.ByCategory[0].Amount != 200.0 {
		t.Errorf("unexpected category breakdown: %+v", stats.ByCategory)
	}
}

func TestRecurringExecuteAndToggle(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := ts.do(t, http.MethodPost, "/api/recurring", map[string]any{
		"name":       "Rent",
		"type":       "expense",
		"amount":     900.0,
		"category":   "Housing",
		"frequency":  "monthly",
		"startDate":  "2024-01-01",
		"active":     true,
		"autoCreate": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, raw)
	}
	def := decodeBody[recurringDTO](t, raw)
	if def.State != "scheduled" {
		t.Errorf("expected scheduled state, got %q", def.State)
	}
	if def.NextExecution == nil {
		t.Fatal("expected a next execution date")
	}

	resp, raw = ts.do(t, http.MethodPost, "/api/recurring/"+def.ID+"/execute", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("execute: expected 201, got %d: %s", resp.StatusCode, raw)
	}
	result := decodeBody[struct {
		Transaction transactionDTO `json:"transaction"`
		Definition  recurringDTO   `json:"definition"`
	}](t, raw)
	if result.Transaction.Category != "Housing" || result.Transaction.Amount != 900.0 {
		t.Errorf("unexpected materialized transaction %+v", result.Transaction)
	}
	if result.Definition.LastExecuted == nil {
		t.Error("expected lastExecuted to be set")
	}

	// Pause, then executing must conflict.
	resp, raw = ts.do(t, http.MethodPut, "/api/recurring/"+def.ID+"/toggle", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d: %s", resp.StatusCode, raw)
	}
	paused := decodeBody[recurringDTO](t, raw)
	if paused.State != "paused" {
		t.Errorf("expected paused state, got %q", paused.State)
	}
	if paused.NextExecution != nil {
		t.Errorf("paused definition must not advertise a next execution, got %v", paused.NextExecution)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/recurring/"+def.ID+"/execute", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("execute while paused: expected 409, got %d", resp.StatusCode)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := ts.do(t, http.MethodPost, "/api/categories", map[string]any{
		"name":   "Food",
		"type":   "expense",
		"budget": 300.0,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, raw)
	}
	food := decodeBody[categoryDTO](t, raw)
	if food.Color == "" {
		t.Error("expected a default color")
	}
	if food.Budget != 300.0 {
		t.Errorf("budget = %v, want 300.0", food.Budget)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/categories", map[string]any{
		"name": "Food",
		"type": "expense",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/categories", map[string]any{
		"name": "Salary",
		"type": "income",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create income category: expected 201, got %d", resp.StatusCode)
	}

	resp, raw = ts.do(t, http.MethodGet, "/api/categories?type=expense", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	if got := decodeBody[[]categoryDTO](t, raw); len(got) != 1 || got[0].Name != "Food" {
		t.Errorf("expected only the expense category, got %+v", got)
	}

	food.Budget = 250.0
	food.Color = "#EF4444"
	resp, raw = ts.do(t, http.MethodPut, "/api/categories/"+food.ID, food)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", resp.StatusCode, raw)
	}
	if got := decodeBody[categoryDTO](t, raw); got.Budget != 250.0 || got.Color != "#EF4444" {
		t.Errorf("update not applied: %+v", got)
	}

	food.Color = "red"
	resp, _ = ts.do(t, http.MethodPut, "/api/categories/"+food.ID, food)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad color: expected 400, got %d", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodDelete, "/api/categories/"+food.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
	resp, _ = ts.do(t, http.MethodGet, "/api/categories/"+food.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestAccountsAndTransfer(t *testing.T) {
	ts := newTestServer(t)

	var ids []string
	for _, name := range []string{"Checking", "Savings"} {
		resp, raw := ts.do(t, http.MethodPost, "/api/accounts", map[string]any{
			"name": name, "kind": "checking", "balance": 500.0,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create account: %d: %s", resp.StatusCode, raw)
		}
		ids = append(ids, decodeBody[accountDTO](t, raw).ID)
	}

	resp, raw := ts.do(t, http.MethodPost, "/api/accounts/transfer", map[string]any{
		"fromAccountId": ids[0], "toAccountId": ids[1], "amount": 200.0,
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("transfer: expected 204, got %d: %s", resp.StatusCode, raw)
	}

	_, raw = ts.do(t, http.MethodGet, "/api/accounts/"+ids[0], nil)
	if got := decodeBody[accountDTO](t, raw); got.Balance != 300.0 {
		t.Errorf("expected source balance 300, got %v", got.Balance)
	}
	_, raw = ts.do(t, http.MethodGet, "/api/accounts/"+ids[1], nil)
	if got := decodeBody[accountDTO](t, raw); got.Balance != 700.0 {
		t.Errorf("expected destination balance 700, got %v", got.Balance)
	}

	_, raw = ts.do(t, http.MethodGet, "/api/accounts/total-balance", nil)
	var total struct {
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal(raw, &total); err != nil || total.Total != 1000.0 {
		t.Errorf("expected total 1000, got %v (%v)", total.Total, err)
	}

	_, raw = ts.do(t, http.MethodGet, "/api/accounts/"+ids[0]+"/transactions", nil)
	ledger := decodeBody[[]transactionDTO](t, raw)
	if len(ledger) != 1 || ledger[0].Type != "expense" || ledger[0].Amount != 200.0 {
		t.Errorf("unexpected source ledger %+v", ledger)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/accounts/transfer", map[string]any{
		"fromAccountId": ids[0], "toAccountId": ids[0], "amount": 50.0,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("self transfer: expected 400, got %d", resp.StatusCode)
	}
}

func TestGoalProgress(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := ts.do(t, http.MethodPost, "/api/goals", map[string]any{
		"name": "Vacation", "targetAmount": 1000.0,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create goal: %d: %s", resp.StatusCode, raw)
	}
	goal := decodeBody[goalDTO](t, raw)

	resp, raw = ts.do(t, http.MethodPost, "/api/goals/"+goal.ID+"/add-amount", map[string]any{"amount": 250.0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add: %d: %s", resp.StatusCode, raw)
	}
	got := decodeBody[goalDTO](t, raw)
	if got.Progress != 25.0 {
		t.Errorf("expected 25%% progress, got %v", got.Progress)
	}
	if got.Completed {
		t.Error("goal must not be completed yet")
	}

	_, raw = ts.do(t, http.MethodPost, "/api/goals/"+goal.ID+"/add-amount", map[string]any{"amount": 750.0})
	if got := decodeBody[goalDTO](t, raw); !got.Completed {
		t.Error("goal should be completed at 100%")
	}
}

func TestBudgetSettings(t *testing.T) {
	ts := newTestServer(t)

	_, raw := ts.do(t, http.MethodGet, "/api/settings/budget", nil)
	if got := decodeBody[budgetDTO](t, raw); got.Amount != 0 {
		t.Errorf("expected no budget by default, got %v", got.Amount)
	}

	resp, _ := ts.do(t, http.MethodPut, "/api/settings/budget", budgetDTO{Amount: 1500.0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set budget: expected 200, got %d", resp.StatusCode)
	}
	_, raw = ts.do(t, http.MethodGet, "/api/settings/budget", nil)
	if got := decodeBody[budgetDTO](t, raw); got.Amount != 1500.0 {
		t.Errorf("expected 1500, got %v", got.Amount)
	}

	resp, _ = ts.do(t, http.MethodPut, "/api/settings/budget", budgetDTO{Amount: -5})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative budget: expected 400, got %d", resp.StatusCode)
	}
}

func TestReportCacheInvalidatedByWrites(t *testing.T) {
	ts := newTestServer(t)

	post := func(amount float64) {
		resp, raw := ts.do(t, http.MethodPost, "/api/transactions", map[string]any{
			"type": "expense", "amount": amount, "category": "Food", "date": "2024-03-15",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed: %d: %s", resp.StatusCode, raw)
		}
	}

	post(100.0)
	_, raw := ts.do(t, http.MethodGet, "/api/reports/monthly?year=2024&month=3", nil)
	if got := decodeBody[monthlyReportDTO](t, raw); got.TotalExpense != 100.0 {
		t.Fatalf("expected 100 expense, got %v", got.TotalExpense)
	}

	// A second write must purge the cached report.
	post(50.0)
	_, raw = ts.do(t, http.MethodGet, "/api/reports/monthly?year=2024&month=3", nil)
	if got := decodeBody[monthlyReportDTO](t, raw); got.TotalExpense != 150.0 {
		t.Errorf("expected 150 expense after invalidation, got %v", got.TotalExpense)
	}
}

func TestCompareReportRequiresDates(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/api/reports/comparison?firstStart=2024-01-01", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing bounds, got %d", resp.StatusCode)
	}

	path := "/api/reports/comparison?firstStart=2024-01-01&firstEnd=2024-01-31&secondStart=2024-02-01&secondEnd=2024-02-29"
	resp, raw := ts.do(t, http.MethodGet, path, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}
}

func TestExportCSV(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 2; i++ {
		ts.do(t, http.MethodPost, "/api/transactions", map[string]any{
			"type": "expense", "amount": 10.0, "category": "Food",
			"date": fmt.Sprintf("2024-03-%02d", i+1),
		})
	}

	resp, raw := ts.do(t, http.MethodGet, "/api/export/transactions.csv", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv, got %q", ct)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 3 {
		t.Errorf("expected header plus 2 rows, got %d lines", len(lines))
	}
}

func TestExportSheets(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"type": "expense", "amount": 10.0, "category": "Food", "date": "2024-03-01",
	})

	resp, raw := ts.do(t, http.MethodPost, "/api/export/sheets", map[string]any{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}
	var result struct {
		Ref   string `json:"ref"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Count != 1 {
		t.Errorf("expected 1 exported row, got %d", result.Count)
	}
	if got := len(ts.exporter.Rows()); got != 1 {
		t.Errorf("expected 1 row in sink, got %d", got)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/export/sheets", map[string]any{
		"startDate": "2024-01-01",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("half-open range: expected 400, got %d", resp.StatusCode)
	}
}

func TestExportSheetsUnconfigured(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	alerts := services.NewAlertEngine(repo, nil)
	transactions := services.NewTransactionService(repo, alerts)
	srv := NewServer(":0", Deps{
		Storage:      repo,
		Transactions: transactions,
		Recurring:    services.NewRecurringService(repo, transactions, nil),
		Accounts:     services.NewAccountService(repo),
		Goals:        services.NewGoalService(repo, nil),
		Reports:      services.NewReportService(repo),
	})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	resp, err := ts.Client().Post(ts.URL+"/api/export/sheets", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}
