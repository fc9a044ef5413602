package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"centime/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "centime.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	txn := core.Transaction{
		ID:          "t1",
		AccountID:   "a1",
		Type:        core.Expense,
		Amount:      core.Money{Cents: 4250},
		Category:    "Groceries",
		Description: "weekly shop",
		Date:        core.NewDate(2024, 3, 15),
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	got, err := repo.GetTransaction(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got != txn {
		t.Errorf("got %+v, want %+v", got, txn)
	}

	txn.Amount = core.Money{Cents: 5000}
	txn.Description = "corrected"
	if err := repo.UpdateTransaction(ctx, txn); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	got, _ = repo.GetTransaction(ctx, "t1")
	if got.Amount.Cents != 5000 || got.Description != "corrected" {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := repo.DeleteTransaction(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete err = %v, want ErrNotFound", err)
	}
}

func TestTransactionNotFound(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.GetTransaction(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete err = %v, want ErrNotFound", err)
	}
	if err := repo.UpdateTransaction(ctx, core.Transaction{
		ID: "missing", Type: core.Expense, Amount: core.Money{Cents: 1},
		Category: "x", Date: core.NewDate(2024, 1, 1),
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update err = %v, want ErrNotFound", err)
	}
}

func TestListTransactionsBetween(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for _, txn := range []core.Transaction{
		{ID: "jan", Type: core.Expense, Amount: core.Money{Cents: 100}, Category: "a", Date: core.NewDate(2024, 1, 10)},
		{ID: "feb", Type: core.Expense, Amount: core.Money{Cents: 200}, Category: "a", Date: core.NewDate(2024, 2, 10)},
		{ID: "mar", Type: core.Income, Amount: core.Money{Cents: 300}, Category: "b", Date: core.NewDate(2024, 3, 10)},
	} {
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction(%s): %v", txn.ID, err)
		}
	}

	got, err := repo.ListTransactionsBetween(ctx, core.NewDate(2024, 2, 1), core.NewDate(2024, 2, 29))
	if err != nil {
		t.Fatalf("ListTransactionsBetween: %v", err)
	}
	if len(got) != 1 || got[0].ID != "feb" {
		t.Errorf("got %+v, want only feb", got)
	}

	all, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].ID != "mar" {
		t.Errorf("list should be date descending, got %s first", all[0].ID)
	}
}

func TestRecurringRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	day := 31
	end := core.NewDate(2025, 1, 31)
	next := core.NewDate(2024, 2, 29)
	def := core.RecurringDefinition{
		ID:            "r1",
		Name:          "Rent",
		Type:          core.Expense,
		Amount:        core.Money{Cents: 90000},
		Category:      "Housing",
		Frequency:     core.Monthly,
		StartDate:     core.NewDate(2024, 1, 31),
		EndDate:       &end,
		DayOfMonth:    &day,
		Active:        true,
		AutoCreate:    true,
		NotifyBefore:  3,
		NextExecution: &next,
	}
	if err := repo.CreateRecurring(ctx, def); err != nil {
		t.Fatalf("CreateRecurring: %v", err)
	}

	got, err := repo.GetRecurring(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRecurring: %v", err)
	}
	if got.Name != "Rent" || got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Errorf("got %+v", got)
	}
	if got.DayOfMonth == nil || *got.DayOfMonth != 31 {
		t.Errorf("dayOfMonth = %v, want 31", got.DayOfMonth)
	}
	if got.DayOfWeek != nil {
		t.Errorf("dayOfWeek = %v, want nil", got.DayOfWeek)
	}
	if got.NextExecution == nil || !got.NextExecution.Equal(next) {
		t.Errorf("nextExecution = %v, want %s", got.NextExecution, next)
	}

	got.Active = false
	got.NextExecution = nil
	if err := repo.UpdateRecurring(ctx, got); err != nil {
		t.Fatalf("UpdateRecurring: %v", err)
	}
	got, _ = repo.GetRecurring(ctx, "r1")
	if got.Active || got.NextExecution != nil {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestListDueRecurring(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	asOf := core.NewDate(2024, 2, 15)

	mk := func(id string, next *core.Date, active bool) core.RecurringDefinition {
		return core.RecurringDefinition{
			ID: id, Name: id, Type: core.Expense, Amount: core.Money{Cents: 100},
			Category: "x", Frequency: core.Monthly,
			StartDate: core.NewDate(2024, 1, 1), Active: active, NextExecution: next,
		}
	}
	due := core.NewDate(2024, 2, 10)
	today := asOf
	future := core.NewDate(2024, 3, 1)

	for _, def := range []core.RecurringDefinition{
		mk("overdue", &due, true),
		mk("today", &today, true),
		mk("future", &future, true),
		mk("paused", &due, false),
		mk("exhausted", nil, true),
	} {
		if err := repo.CreateRecurring(ctx, def); err != nil {
			t.Fatalf("CreateRecurring(%s): %v", def.ID, err)
		}
	}

	got, err := repo.ListDueRecurring(ctx, asOf)
	if err != nil {
		t.Fatalf("ListDueRecurring: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (%+v)", len(got), got)
	}
	if got[0].ID != "overdue" || got[1].ID != "today" {
		t.Errorf("got %s,%s want overdue,today", got[0].ID, got[1].ID)
	}
}

func TestAccountBalanceAdjust(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	acct := core.Account{ID: "a1", Name: "Checking", Kind: core.AccountChecking,
		Balance: core.Money{Cents: 10000}, Currency: "EUR", Active: true}
	if err := repo.CreateAccount(ctx, acct); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	if err := repo.AdjustAccountBalance(ctx, "a1", -2500); err != nil {
		t.Fatalf("AdjustAccountBalance: %v", err)
	}
	got, err := repo.GetAccount(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Balance.Cents != 7500 {
		t.Errorf("balance = %d, want 7500", got.Balance.Cents)
	}

	if err := repo.AdjustAccountBalance(ctx, "missing", 100); !errors.Is(err, ErrNotFound) {
		t.Errorf("adjust missing err = %v, want ErrNotFound", err)
	}
}

func TestGoalRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	deadline := core.NewDate(2024, 12, 31)
	goal := core.Goal{ID: "g1", Name: "Vacation", TargetAmount: core.Money{Cents: 200000},
		CurrentAmount: core.Money{Cents: 50000}, Deadline: &deadline}
	if err := repo.CreateGoal(ctx, goal); err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	got, err := repo.GetGoal(ctx, "g1")
	if err != nil {
		t.Fatalf("GetGoal: %v", err)
	}
	if got.Deadline == nil || !got.Deadline.Equal(deadline) || got.CompletedAt != nil {
		t.Errorf("got %+v", got)
	}

	done := core.NewDate(2024, 6, 1)
	got.Completed = true
	got.CompletedAt = &done
	got.CurrentAmount = got.TargetAmount
	if err := repo.UpdateGoal(ctx, got); err != nil {
		t.Fatalf("UpdateGoal: %v", err)
	}
	got, _ = repo.GetGoal(ctx, "g1")
	if !got.Completed || got.CompletedAt == nil {
		t.Errorf("completion not persisted: %+v", got)
	}
}

func TestNotificationDedupe(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	n := core.Notification{
		ID: "n1", Type: core.NotifyBudgetWarning, Title: "Budget warning",
		Priority: core.PriorityMedium, DedupeKey: "budget_warning:2024-03",
		CreatedAt: core.NewDate(2024, 3, 20),
	}
	if err := repo.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	n.ID = "n2"
	if err := repo.CreateNotification(ctx, n); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate dedupe key err = %v, want ErrDuplicate", err)
	}

	// Empty dedupe keys never collide.
	for _, id := range []string{"n3", "n4"} {
		free := core.Notification{ID: id, Type: core.NotifyRecurringExecuted,
			Title: "done", Priority: core.PriorityLow, CreatedAt: core.NewDate(2024, 3, 21)}
		if err := repo.CreateNotification(ctx, free); err != nil {
			t.Fatalf("CreateNotification(%s): %v", id, err)
		}
	}

	unread, err := repo.ListNotifications(ctx, true)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(unread) != 3 {
		t.Fatalf("unread = %d, want 3", len(unread))
	}

	if err := repo.MarkNotificationRead(ctx, "n1"); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	unread, _ = repo.ListNotifications(ctx, true)
	if len(unread) != 2 {
		t.Errorf("unread after mark = %d, want 2", len(unread))
	}

	if err := repo.MarkAllNotificationsRead(ctx); err != nil {
		t.Fatalf("MarkAllNotificationsRead: %v", err)
	}
	unread, _ = repo.ListNotifications(ctx, true)
	if len(unread) != 0 {
		t.Errorf("unread after mark all = %d, want 0", len(unread))
	}
}

func TestSettings(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.GetSetting(ctx, "monthly_budget_cents"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing setting err = %v, want ErrNotFound", err)
	}

	if err := repo.SetSetting(ctx, "monthly_budget_cents", "150000"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := repo.SetSetting(ctx, "monthly_budget_cents", "175000"); err != nil {
		t.Fatalf("SetSetting upsert: %v", err)
	}

	got, err := repo.GetSetting(ctx, "monthly_budget_cents")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got != "175000" {
		t.Errorf("value = %q, want 175000", got)
	}
}
