package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies notifications for display.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is a queued user-facing message. The store assigns the
// ID and timestamp; the queue is insertion-ordered and uncapped (the
// display layer may truncate).
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
}

// NewNotification builds a notification with a generated ID and the
// current timestamp.
func NewNotification(ntype NotificationType, title, message string) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Type:      ntype,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
	}
}
