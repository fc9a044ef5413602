// Package services provides business logic and orchestration on top of the
// SQLite repository and the AMQP client.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"centime/internal/amqp"
	"centime/internal/core"
	"centime/internal/search"
	"centime/internal/storage"
)

// ErrValidation wraps domain validation failures so transport code can map
// them to a 400 without knowing every core sentinel.
var ErrValidation = errors.New("validation failed")

// NotificationPublisher is the slice of the AMQP client the services need.
// It is nil when the broker is not configured; publishing is then skipped.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, event *amqp.NotificationEvent) error
}

// TransactionService orchestrates ledger writes across SQLite, account
// balances and the alert engine.
type TransactionService struct {
	storage *storage.SQLiteRepository
	alerts  *AlertEngine
	today   func() core.Date
}

func NewTransactionService(repo *storage.SQLiteRepository, alerts *AlertEngine) *TransactionService {
	return &TransactionService{
		storage: repo,
		alerts:  alerts,
		today:   core.Today,
	}
}

// Create validates and saves a transaction, applies its effect to the
// linked account balance and kicks off a budget check. The budget check is
// non-fatal: the transaction is saved either way.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if err := s.storage.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if t.AccountID != "" {
		if err := s.storage.AdjustAccountBalance(ctx, t.AccountID, signedCents(t)); err != nil {
			slog.ErrorContext(ctx, "Failed to adjust account balance",
				"transaction_id", t.ID, "account_id", t.AccountID, "error", err)
		}
	}

	s.checkBudget(ctx, t)
	return t, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, id)
}

// Update replaces a transaction. The account balance is corrected by the
// difference between the old and the new effect.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	old, err := s.storage.GetTransaction(ctx, t.ID)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.storage.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.rollBackBalance(ctx, old)
	if t.AccountID != "" {
		if err := s.storage.AdjustAccountBalance(ctx, t.AccountID, signedCents(t)); err != nil {
			slog.ErrorContext(ctx, "Failed to adjust account balance",
				"transaction_id", t.ID, "account_id", t.AccountID, "error", err)
		}
	}

	s.checkBudget(ctx, t)
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	old, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.rollBackBalance(ctx, old)
	return nil
}

// List loads the ledger and runs it through the query engine.
func (s *TransactionService) List(ctx context.Context, filters search.Filters) ([]core.Transaction, error) {
	all, err := s.storage.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return search.Search(all, filters), nil
}

// Statistics aggregates totals and per-category expense sums over an
// inclusive date range.
func (s *TransactionService) Statistics(ctx context.Context, from, to core.Date) (core.Statistics, error) {
	txns, err := s.storage.ListTransactionsBetween(ctx, from, to)
	if err != nil {
		return core.Statistics{}, err
	}

	stats := core.Statistics{Count: len(txns)}
	byCategory := map[string]int64{}
	for _, t := range txns {
		switch t.Type {
		case core.Income:
			stats.TotalIncome = stats.TotalIncome.Add(t.Amount)
		case core.Expense:
			stats.TotalExpense = stats.TotalExpense.Add(t.Amount)
			byCategory[t.Category] += t.Amount.Cents
		}
	}
	stats.Balance = stats.TotalIncome.Sub(stats.TotalExpense)
	stats.ByCategory = sortedCategories(byCategory)
	return stats, nil
}

func (s *TransactionService) rollBackBalance(ctx context.Context, old core.Transaction) {
	if old.AccountID == "" {
		return
	}
	if err := s.storage.AdjustAccountBalance(ctx, old.AccountID, -signedCents(old)); err != nil {
		slog.ErrorContext(ctx, "Failed to roll back account balance",
			"transaction_id", old.ID, "account_id", old.AccountID, "error", err)
	}
}

func (s *TransactionService) checkBudget(ctx context.Context, t core.Transaction) {
	if s.alerts == nil || t.Type != core.Expense {
		return
	}
	if err := s.alerts.CheckBudget(ctx, t.Date); err != nil {
		slog.ErrorContext(ctx, "Budget check failed", "error", err)
	}
	if err := s.alerts.CheckCategoryBudgets(ctx, t.Date); err != nil {
		slog.ErrorContext(ctx, "Category budget check failed", "error", err)
	}
}

// signedCents is the transaction's effect on an account balance.
func signedCents(t core.Transaction) int64 {
	if t.Type == core.Income {
		return t.Amount.Cents
	}
	return -t.Amount.Cents
}

func sortedCategories(byCategory map[string]int64) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(byCategory))
	for name, cents := range byCategory {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sortCategoryAmounts(out)
	return out
}
