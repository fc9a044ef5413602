package amqp

import (
	"encoding/json"
	"time"

	"centime/internal/core"
)

// NotificationEvent is the message the API and the recurring worker publish
// when an alert condition is detected. The notify worker fans it into the
// notifications table; the dedupe key keeps repeated sweeps from producing
// duplicates.
type NotificationEvent struct {
	Type      core.NotificationType `json:"type"`
	Title     string                `json:"title"`
	Message   string                `json:"message"`
	Priority  core.Priority         `json:"priority"`
	RelatedID string                `json:"relatedId,omitempty"`
	ActionURL string                `json:"actionUrl,omitempty"`
	DedupeKey string                `json:"dedupeKey,omitempty"`
	Date      core.Date             `json:"date"`
	Timestamp time.Time             `json:"timestamp"`
}

func NewNotificationEvent(typ core.NotificationType, title, message string, priority core.Priority, date core.Date) *NotificationEvent {
	return &NotificationEvent{
		Type:      typ,
		Title:     title,
		Message:   message,
		Priority:  priority,
		Date:      date,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *NotificationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationEventFromJSON creates an event from JSON bytes
func NotificationEventFromJSON(data []byte) (*NotificationEvent, error) {
	var msg NotificationEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
