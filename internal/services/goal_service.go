package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"centime/internal/amqp"
	"centime/internal/core"
	"centime/internal/storage"
)

// GoalService manages savings goals and their progress.
type GoalService struct {
	storage   *storage.SQLiteRepository
	publisher NotificationPublisher
	today     func() core.Date
}

func NewGoalService(repo *storage.SQLiteRepository, publisher NotificationPublisher) *GoalService {
	return &GoalService{
		storage:   repo,
		publisher: publisher,
		today:     core.Today,
	}
}

func (s *GoalService) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.storage.CreateGoal(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (s *GoalService) Get(ctx context.Context, id string) (core.Goal, error) {
	return s.storage.GetGoal(ctx, id)
}

func (s *GoalService) List(ctx context.Context) ([]core.Goal, error) {
	return s.storage.ListGoals(ctx)
}

func (s *GoalService) Update(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.storage.UpdateGoal(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (s *GoalService) Delete(ctx context.Context, id string) error {
	return s.storage.DeleteGoal(ctx, id)
}

// AddAmount adds a contribution to a goal's saved amount. Reaching the
// target marks the goal completed and publishes an achievement event.
func (s *GoalService) AddAmount(ctx context.Context, id string, amount core.Money) (core.Goal, error) {
	if err := amount.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	g, err := s.storage.GetGoal(ctx, id)
	if err != nil {
		return core.Goal{}, err
	}

	g.CurrentAmount = g.CurrentAmount.Add(amount)
	achieved := !g.Completed && g.CurrentAmount.Cents >= g.TargetAmount.Cents
	if achieved {
		g.Completed = true
		done := s.today()
		g.CompletedAt = &done
	}

	if err := s.storage.UpdateGoal(ctx, g); err != nil {
		return core.Goal{}, err
	}

	if achieved {
		s.publishAchieved(ctx, g)
	}
	return g, nil
}

func (s *GoalService) publishAchieved(ctx context.Context, g core.Goal) {
	if s.publisher == nil {
		return
	}

	event := amqp.NewNotificationEvent(core.NotifyGoalAchieved,
		fmt.Sprintf("Goal %q achieved", g.Name),
		fmt.Sprintf("Saved %s of %s", g.CurrentAmount, g.TargetAmount),
		core.PriorityMedium, s.today())
	event.RelatedID = g.ID
	event.DedupeKey = fmt.Sprintf("goal_achieved:%s", g.ID)

	if err := s.publisher.PublishNotification(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish goal achievement",
			"goal_id", g.ID, "error", err)
	}
}
