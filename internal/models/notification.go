package models

import "time"

// Notification is a message delivered to a user about one of their events.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	EventID   int64     `json:"event_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
