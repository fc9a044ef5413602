package services

import (
	"context"
	"log/slog"

	"centime/internal/core"
	"centime/internal/schedule"
	"centime/internal/storage"
)

// RecurringProcessor drives the automatic materialization of due recurring
// definitions. The worker binary invokes it on a schedule; one sweep
// executes each due auto-create definition at most once and catches up the
// rest on later sweeps.
type RecurringProcessor struct {
	storage   *storage.SQLiteRepository
	recurring *RecurringService
}

func NewRecurringProcessor(repo *storage.SQLiteRepository, recurring *RecurringService) *RecurringProcessor {
	return &RecurringProcessor{
		storage:   repo,
		recurring: recurring,
	}
}

// ProcessDue executes every active auto-create definition whose next
// execution is on or before asOf. A failing definition is logged and
// skipped so one bad template never blocks the rest of the sweep.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, asOf core.Date) (int, error) {
	due, err := p.storage.ListDueRecurring(ctx, asOf)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Processing due recurring definitions",
		"due", len(due), "as_of", asOf.String())

	processed := 0
	for _, def := range due {
		if !def.AutoCreate {
			// Reminder-only definitions are handled by the alert sweep.
			continue
		}
		if !schedule.Due(def, asOf) {
			continue
		}

		res, err := p.recurring.ExecuteAsOf(ctx, def.ID, asOf)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to execute recurring definition",
				"recurring_id", def.ID, "name", def.Name, "error", err)
			continue
		}

		processed++
		slog.InfoContext(ctx, "Created transaction from recurring definition",
			"recurring_id", def.ID,
			"name", def.Name,
			"amount_cents", res.Transaction.Amount.Cents,
			"frequency", string(def.Frequency))
	}

	slog.InfoContext(ctx, "Recurring sweep complete",
		"processed", processed, "total_due", len(due))

	return processed, nil
}
