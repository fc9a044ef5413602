// Package worker holds the background consumers that run outside the API
// process.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"centime/internal/amqp"
	"centime/internal/core"
	applog "centime/internal/log"
	"centime/internal/storage"
)

// NotifyWorker drains notification events from the queue into the
// notifications table, where the API serves them to the user.
type NotifyWorker struct {
	storage *storage.SQLiteRepository
}

func NewNotifyWorker(repo *storage.SQLiteRepository) *NotifyWorker {
	return &NotifyWorker{storage: repo}
}

// Handle persists one event. A dedupe-key collision means an earlier sweep
// already delivered the same alert; that is success, not an error, so the
// message is acked instead of being requeued forever.
func (w *NotifyWorker) Handle(ctx context.Context, event *amqp.NotificationEvent) error {
	notification := core.Notification{
		ID:        uuid.NewString(),
		Type:      event.Type,
		Title:     event.Title,
		Message:   event.Message,
		Priority:  event.Priority,
		RelatedID: event.RelatedID,
		ActionURL: event.ActionURL,
		DedupeKey: event.DedupeKey,
		CreatedAt: core.Today(),
	}

	err := w.storage.CreateNotification(ctx, notification)
	if errors.Is(err, storage.ErrDuplicate) {
		slog.InfoContext(ctx, "Notification already delivered, skipping",
			applog.FieldNotifType, event.Type,
			applog.FieldDedupeKey, event.DedupeKey)
		return nil
	}
	if err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	slog.InfoContext(ctx, "Notification stored",
		"id", notification.ID,
		applog.FieldNotifType, notification.Type,
		"priority", notification.Priority)
	return nil
}
