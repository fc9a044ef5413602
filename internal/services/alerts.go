package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"centime/internal/amqp"
	"centime/internal/core"
	"centime/internal/storage"
)

// SettingMonthlyBudget is the settings key holding the monthly budget in
// cents. No budget configured means budget alerts are silent.
const SettingMonthlyBudget = "monthly_budget_cents"

const (
	budgetWarningRatio = 0.9
	goalDeadlineWindow = 7 // days
)

// AlertEngine evaluates alert conditions and publishes notification events.
// Dedupe keys make every check idempotent: re-running a sweep over the same
// state publishes events the notify worker recognizes as already stored.
type AlertEngine struct {
	storage   *storage.SQLiteRepository
	publisher NotificationPublisher
}

func NewAlertEngine(repo *storage.SQLiteRepository, publisher NotificationPublisher) *AlertEngine {
	return &AlertEngine{
		storage:   repo,
		publisher: publisher,
	}
}

// Sweep runs every alert check for the given day. Individual check
// failures are logged and do not abort the sweep.
func (a *AlertEngine) Sweep(ctx context.Context, asOf core.Date) {
	if err := a.CheckBudget(ctx, asOf); err != nil {
		slog.ErrorContext(ctx, "Budget check failed", "error", err)
	}
	if err := a.CheckCategoryBudgets(ctx, asOf); err != nil {
		slog.ErrorContext(ctx, "Category budget check failed", "error", err)
	}
	if err := a.CheckGoals(ctx, asOf); err != nil {
		slog.ErrorContext(ctx, "Goal check failed", "error", err)
	}
	if err := a.CheckRecurringDue(ctx, asOf); err != nil {
		slog.ErrorContext(ctx, "Recurring reminder check failed", "error", err)
	}
}

// CheckBudget compares the month-to-date expense total against the
// configured monthly budget: a warning fires at 90%, exceeded at 100%.
func (a *AlertEngine) CheckBudget(ctx context.Context, asOf core.Date) error {
	budget, ok, err := a.monthlyBudget(ctx)
	if err != nil || !ok {
		return err
	}

	start := core.NewDate(asOf.Year(), int(asOf.Month()), 1)
	end := core.NewDate(asOf.Year(), int(asOf.Month()), core.DaysInMonth(asOf.Year(), int(asOf.Month())))
	txns, err := a.storage.ListTransactionsBetween(ctx, start, end)
	if err != nil {
		return err
	}

	var spent int64
	for _, t := range txns {
		if t.Type == core.Expense {
			spent += t.Amount.Cents
		}
	}

	month := asOf.Format("2006-01")
	ratio := float64(spent) / float64(budget.Cents)
	switch {
	case ratio >= 1:
		event := amqp.NewNotificationEvent(core.NotifyBudgetExceeded,
			"Budget exceeded",
			fmt.Sprintf("Spent %s of the %s monthly budget", core.Money{Cents: spent}, budget),
			core.PriorityHigh, asOf)
		event.DedupeKey = fmt.Sprintf("budget_exceeded:%s", month)
		return a.publish(ctx, event)
	case ratio >= budgetWarningRatio:
		event := amqp.NewNotificationEvent(core.NotifyBudgetWarning,
			"Budget almost used up",
			fmt.Sprintf("Spent %s of the %s monthly budget", core.Money{Cents: spent}, budget),
			core.PriorityMedium, asOf)
		event.DedupeKey = fmt.Sprintf("budget_warning:%s", month)
		return a.publish(ctx, event)
	}
	return nil
}

// CheckCategoryBudgets compares month-to-date spending per expense
// category against the category's own budget, with the same 90% warning
// and 100% exceeded thresholds as the global check. Categories without a
// budget are skipped.
func (a *AlertEngine) CheckCategoryBudgets(ctx context.Context, asOf core.Date) error {
	categories, err := a.storage.ListCategories(ctx)
	if err != nil {
		return err
	}

	budgeted := categories[:0]
	for _, c := range categories {
		if c.Type == core.Expense && c.Budget.Cents > 0 {
			budgeted = append(budgeted, c)
		}
	}
	if len(budgeted) == 0 {
		return nil
	}

	start := core.NewDate(asOf.Year(), int(asOf.Month()), 1)
	end := core.NewDate(asOf.Year(), int(asOf.Month()), core.DaysInMonth(asOf.Year(), int(asOf.Month())))
	txns, err := a.storage.ListTransactionsBetween(ctx, start, end)
	if err != nil {
		return err
	}
	spent := map[string]int64{}
	for _, t := range txns {
		if t.Type == core.Expense {
			spent[t.Category] += t.Amount.Cents
		}
	}

	month := asOf.Format("2006-01")
	var errs []error
	for _, c := range budgeted {
		ratio := float64(spent[c.Name]) / float64(c.Budget.Cents)
		switch {
		case ratio >= 1:
			event := amqp.NewNotificationEvent(core.NotifyBudgetExceeded,
				fmt.Sprintf("%s budget exceeded", c.Name),
				fmt.Sprintf("Spent %s of the %s budget for %s", core.Money{Cents: spent[c.Name]}, c.Budget, c.Name),
				core.PriorityHigh, asOf)
			event.RelatedID = c.ID
			event.DedupeKey = fmt.Sprintf("category_budget_exceeded:%s:%s", c.ID, month)
			errs = append(errs, a.publish(ctx, event))
		case ratio >= budgetWarningRatio:
			event := amqp.NewNotificationEvent(core.NotifyBudgetWarning,
				fmt.Sprintf("%s budget almost used up", c.Name),
				fmt.Sprintf("Spent %s of the %s budget for %s", core.Money{Cents: spent[c.Name]}, c.Budget, c.Name),
				core.PriorityMedium, asOf)
			event.RelatedID = c.ID
			event.DedupeKey = fmt.Sprintf("category_budget_warning:%s:%s", c.ID, month)
			errs = append(errs, a.publish(ctx, event))
		}
	}
	return errors.Join(errs...)
}

// CheckGoals publishes achievement and deadline reminders for savings
// goals. Deadline reminders fire within a week of the deadline and again,
// at high priority, once it has passed.
func (a *AlertEngine) CheckGoals(ctx context.Context, asOf core.Date) error {
	goals, err := a.storage.ListGoals(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, g := range goals {
		if g.Completed {
			continue
		}

		if g.CurrentAmount.Cents >= g.TargetAmount.Cents {
			event := amqp.NewNotificationEvent(core.NotifyGoalAchieved,
				fmt.Sprintf("Goal %q achieved", g.Name),
				fmt.Sprintf("Saved %s of %s", g.CurrentAmount, g.TargetAmount),
				core.PriorityMedium, asOf)
			event.RelatedID = g.ID
			event.DedupeKey = fmt.Sprintf("goal_achieved:%s", g.ID)
			errs = append(errs, a.publish(ctx, event))
			continue
		}

		if g.Deadline == nil {
			continue
		}
		days := asOf.DaysUntil(*g.Deadline)
		switch {
		case days < 0:
			event := amqp.NewNotificationEvent(core.NotifyGoalDeadline,
				fmt.Sprintf("Goal %q is overdue", g.Name),
				fmt.Sprintf("Deadline %s has passed with %s of %s saved", g.Deadline, g.CurrentAmount, g.TargetAmount),
				core.PriorityHigh, asOf)
			event.RelatedID = g.ID
			event.DedupeKey = fmt.Sprintf("goal_overdue:%s:%s", g.ID, g.Deadline)
			errs = append(errs, a.publish(ctx, event))
		case days <= goalDeadlineWindow:
			event := amqp.NewNotificationEvent(core.NotifyGoalDeadline,
				fmt.Sprintf("Goal %q deadline approaching", g.Name),
				fmt.Sprintf("%d day(s) left, %s of %s saved", days, g.CurrentAmount, g.TargetAmount),
				core.PriorityMedium, asOf)
			event.RelatedID = g.ID
			event.DedupeKey = fmt.Sprintf("goal_deadline:%s:%s", g.ID, g.Deadline)
			errs = append(errs, a.publish(ctx, event))
		}
	}
	return errors.Join(errs...)
}

// CheckRecurringDue reminds about upcoming recurring executions for
// definitions that asked to be notified ahead of time.
func (a *AlertEngine) CheckRecurringDue(ctx context.Context, asOf core.Date) error {
	defs, err := a.storage.ListRecurring(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, def := range defs {
		if !def.Active || def.NotifyBefore <= 0 || def.NextExecution == nil {
			continue
		}
		days := asOf.DaysUntil(*def.NextExecution)
		if days < 0 || days > def.NotifyBefore {
			continue
		}

		event := amqp.NewNotificationEvent(core.NotifyRecurringDue,
			fmt.Sprintf("%s due soon", def.Name),
			fmt.Sprintf("%s of %s scheduled for %s", def.Type, def.Amount, def.NextExecution),
			core.PriorityMedium, asOf)
		event.RelatedID = def.ID
		event.DedupeKey = fmt.Sprintf("recurring_due:%s:%s", def.ID, def.NextExecution)
		errs = append(errs, a.publish(ctx, event))
	}
	return errors.Join(errs...)
}

func (a *AlertEngine) monthlyBudget(ctx context.Context) (core.Money, bool, error) {
	raw, err := a.storage.GetSetting(ctx, SettingMonthlyBudget)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Money{}, false, nil
	}
	if err != nil {
		return core.Money{}, false, err
	}
	cents, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || cents <= 0 {
		return core.Money{}, false, nil
	}
	return core.Money{Cents: cents}, true, nil
}

func (a *AlertEngine) publish(ctx context.Context, event *amqp.NotificationEvent) error {
	if a.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping notification",
			"type", event.Type, "dedupe_key", event.DedupeKey)
		return nil
	}
	return a.publisher.PublishNotification(ctx, event)
}
