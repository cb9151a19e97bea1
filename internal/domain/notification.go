package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationLevel string

const (
	LevelInfo  NotificationLevel = "info"
	LevelError NotificationLevel = "error"
)

// Notification is a user-facing message emitted when a cart operation is rejected.
type Notification struct {
	ID        uuid.UUID
	Level     NotificationLevel
	Message   string
	ProductID int64
	Err       error

	CreatedAt time.Time
}

func NewNotification(level NotificationLevel, message string, productID int64, err error) Notification {
	return Notification{
		ID:        uuid.New(),
		Level:     level,
		Message:   message,
		ProductID: productID,
		Err:       err,
		CreatedAt: time.Now(),
	}
}
