package models

import "time"

// Event represents a loggable action or notification in the system.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "deadline.upcoming", "user.signup"
	Level     string    `json:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	UserID    *int64    `json:"user_id,omitempty"` // Nullable for system-wide events
	CreatedAt time.Time `json:"created_at"`
}
