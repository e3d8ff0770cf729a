package services

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avelks/todo-api-be/internal/models"
)

// Broadcaster pushes a message to every live connection of one user. The
// websocket hub implements it; tests pass nil.
type Broadcaster interface {
	BroadcastTo(userID string, message []byte)
}

// EventServiceProvider defines the interface for activity event services.
type EventServiceProvider interface {
	RecordEvent(ctx context.Context, userID, eventType, level, message string) error
	GetRecentEvents(ctx context.Context, userID string, limit int) ([]models.Event, error)
}

// EventService records per-user activity events and fans them out to live
// websocket clients.
type EventService struct {
	db  *sql.DB
	hub Broadcaster
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB, hub Broadcaster) *EventService {
	return &EventService{db: db, hub: hub}
}

// RecordEvent persists a new event and broadcasts it to the owner's
// connected clients.
func (s *EventService) RecordEvent(ctx context.Context, userID, eventType, level, message string) error {
	event := models.Event{
		ID:      uuid.New().String(),
		UserID:  userID,
		Type:    eventType,
		Level:   level,
		Message: message,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, user_id, type, level, message) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.UserID, event.Type, event.Level, event.Message,
	)
	if err != nil {
		return err
	}

	if s.hub != nil {
		payload, err := json.Marshal(map[string]interface{}{"action": "event", "payload": event})
		if err != nil {
			log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to encode event for broadcast")
			return nil
		}
		s.hub.BroadcastTo(userID, payload)
	}
	return nil
}

// GetRecentEvents retrieves the user's most recent events, newest first.
// created_at has second resolution, so rowid breaks ties in insertion
// order for events recorded within the same second.
func (s *EventService) GetRecentEvents(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, type, level, message, created_at FROM events
		 WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.UserID, &event.Type, &event.Level, &event.Message, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
