package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"centime/internal/amqp"
	"centime/internal/core"
	"centime/internal/schedule"
	"centime/internal/storage"
)

// RecurringService manages recurring-definition templates and their
// materialization into transactions.
type RecurringService struct {
	storage      *storage.SQLiteRepository
	transactions *TransactionService
	publisher    NotificationPublisher
	today        func() core.Date
}

func NewRecurringService(repo *storage.SQLiteRepository, transactions *TransactionService, publisher NotificationPublisher) *RecurringService {
	return &RecurringService{
		storage:      repo,
		transactions: transactions,
		publisher:    publisher,
		today:        core.Today,
	}
}

// Create validates a definition, computes its first execution and stores it.
func (s *RecurringService) Create(ctx context.Context, def core.RecurringDefinition) (core.RecurringDefinition, error) {
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	if err := def.Validate(); err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if def.Active {
		def = schedule.Refresh(def, s.today())
	}
	if err := s.storage.CreateRecurring(ctx, def); err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("save recurring definition: %w", err)
	}
	return def, nil
}

func (s *RecurringService) Get(ctx context.Context, id string) (core.RecurringDefinition, error) {
	return s.storage.GetRecurring(ctx, id)
}

func (s *RecurringService) List(ctx context.Context) ([]core.RecurringDefinition, error) {
	return s.storage.ListRecurring(ctx)
}

// Update replaces a definition and recomputes the next execution, since a
// changed cadence invalidates the stored one. Execution history carries
// over from the stored row; an edit never rewrites when the definition
// last ran.
func (s *RecurringService) Update(ctx context.Context, def core.RecurringDefinition) (core.RecurringDefinition, error) {
	if err := def.Validate(); err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	existing, err := s.storage.GetRecurring(ctx, def.ID)
	if err != nil {
		return core.RecurringDefinition{}, err
	}
	def.LastExecuted = existing.LastExecuted

	if def.Active {
		def = schedule.Refresh(def, s.today())
	} else {
		def.NextExecution = nil
	}
	if err := s.storage.UpdateRecurring(ctx, def); err != nil {
		return core.RecurringDefinition{}, err
	}
	return def, nil
}

func (s *RecurringService) Delete(ctx context.Context, id string) error {
	return s.storage.DeleteRecurring(ctx, id)
}

// Toggle pauses an active definition or resumes a paused one.
func (s *RecurringService) Toggle(ctx context.Context, id string) (core.RecurringDefinition, error) {
	def, err := s.storage.GetRecurring(ctx, id)
	if err != nil {
		return core.RecurringDefinition{}, err
	}

	def = schedule.Toggle(def, s.today())
	if err := s.storage.UpdateRecurring(ctx, def); err != nil {
		return core.RecurringDefinition{}, err
	}
	return def, nil
}

// Execute materializes one transaction from the definition as of today and
// advances the schedule. Paused and exhausted definitions are rejected with
// schedule.ErrInvalidState.
func (s *RecurringService) Execute(ctx context.Context, id string) (schedule.ExecuteResult, error) {
	return s.ExecuteAsOf(ctx, id, s.today())
}

func (s *RecurringService) ExecuteAsOf(ctx context.Context, id string, asOf core.Date) (schedule.ExecuteResult, error) {
	def, err := s.storage.GetRecurring(ctx, id)
	if err != nil {
		return schedule.ExecuteResult{}, err
	}

	res, err := schedule.Execute(def, asOf)
	if err != nil {
		return schedule.ExecuteResult{}, fmt.Errorf("execute %s: %w", id, err)
	}

	if _, err := s.transactions.Create(ctx, res.Transaction); err != nil {
		return schedule.ExecuteResult{}, fmt.Errorf("materialize transaction: %w", err)
	}
	if err := s.storage.UpdateRecurring(ctx, res.Definition); err != nil {
		return schedule.ExecuteResult{}, fmt.Errorf("advance schedule: %w", err)
	}

	s.publishExecuted(ctx, res)
	return res, nil
}

func (s *RecurringService) publishExecuted(ctx context.Context, res schedule.ExecuteResult) {
	if s.publisher == nil {
		return
	}

	def := res.Definition
	event := amqp.NewNotificationEvent(core.NotifyRecurringExecuted,
		fmt.Sprintf("%s executed", def.Name),
		fmt.Sprintf("%s of %s recorded for %s", def.Type, res.Transaction.Amount, res.Transaction.Date),
		core.PriorityLow, res.Transaction.Date)
	event.RelatedID = def.ID

	if err := s.publisher.PublishNotification(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish execution event",
			"recurring_id", def.ID, "error", err)
	}
}
