package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/google/uuid"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, userID *int64) (models.Event, error)
	CreateEventOnce(ctx context.Context, dedupeKey, eventType, level, message string, userID *int64) (models.Event, bool, error)
	GetRecentEvents(ctx context.Context, userID *int64, limit int) ([]models.Event, error)
}

// EventService provides business logic for event management.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, userID *int64) (models.Event, error) {
	event := newEvent(eventType, level, message, userID)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.UserID, event.CreatedAt)
	if err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// CreateEventOnce logs an event unless one with the same dedupe key exists.
// The boolean reports whether the event was newly created.
func (s *EventService) CreateEventOnce(ctx context.Context, dedupeKey, eventType, level, message string, userID *int64) (models.Event, bool, error) {
	event := newEvent(eventType, level, message, userID)
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO events (id, type, level, message, user_id, dedupe_key, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.UserID, dedupeKey, event.CreatedAt)
	if err != nil {
		return models.Event{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Event{}, false, err
	}
	return event, n > 0, nil
}

// GetRecentEvents retrieves the most recent events, newest first. A nil
// userID returns system-wide events only.
func (s *EventService) GetRecentEvents(ctx context.Context, userID *int64, limit int) ([]models.Event, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if userID != nil {
		rows, err = s.db.QueryContext(ctx, "SELECT id, type, level, message, user_id, created_at FROM events WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?", *userID, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, "SELECT id, type, level, message, user_id, created_at FROM events WHERE user_id IS NULL ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func newEvent(eventType, level, message string, userID *int64) models.Event {
	return models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}
