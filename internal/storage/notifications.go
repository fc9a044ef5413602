package storage

import (
	"context"
	"fmt"

	"centime/internal/core"
)

// CreateNotification inserts a notification. A second insert with the same
// non-empty dedupe key returns ErrDuplicate, which callers treat as
// already-delivered rather than a failure.
func (r *SQLiteRepository) CreateNotification(ctx context.Context, n core.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, type, title, message, priority, read, related_id, action_url, dedupe_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Type), n.Title, n.Message, string(n.Priority),
		n.Read, n.RelatedID, n.ActionURL, n.DedupeKey, n.CreatedAt.String())
	if isUniqueViolation(err) {
		return fmt.Errorf("notification %s: %w", n.DedupeKey, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListNotifications(ctx context.Context, unreadOnly bool) ([]core.Notification, error) {
	query := `
		SELECT id, type, title, message, priority, read, related_id, action_url, dedupe_key, created_at
		FROM notifications`
	if unreadOnly {
		query += ` WHERE read = 0`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []core.Notification{}
	for rows.Next() {
		var (
			n        core.Notification
			typ      string
			priority string
			rawDate  string
		)
		if err := rows.Scan(&n.ID, &typ, &n.Title, &n.Message, &priority,
			&n.Read, &n.RelatedID, &n.ActionURL, &n.DedupeKey, &rawDate); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		created, err := core.ParseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = core.NotificationType(typ)
		n.Priority = core.Priority(priority)
		n.CreatedAt = created
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return requireRow(res, id)
}

func (r *SQLiteRepository) MarkAllNotificationsRead(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE read = 0`); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteNotification(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return requireRow(res, id)
}
