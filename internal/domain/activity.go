package domain

import "github.com/google/uuid"

// ActivityLogEntry is an append-only record of a user's actions
type ActivityLogEntry struct {
	EntryID     string            `json:"entry_id" dynamodbav:"entry_id"`
	UserID      string            `json:"user_id" dynamodbav:"user_id"`
	Action      EventType         `json:"action" dynamodbav:"action"`
	Description string            `json:"description" dynamodbav:"description"`
	Metadata    map[string]string `json:"metadata,omitempty" dynamodbav:"metadata,omitempty"`
	CreatedAt   int64             `json:"created_at" dynamodbav:"created_at"`
}

// NewActivityLogEntry builds the log entry for an event. The entry id is the
// event id so redelivered events do not produce a second entry.
func NewActivityLogEntry(event Event) *ActivityLogEntry {
	entryID := event.EventID
	if entryID == "" {
		entryID = uuid.New().String()
	}
	return &ActivityLogEntry{
		EntryID:     entryID,
		UserID:      event.ActorID,
		Action:      event.Type,
		Description: event.Description,
		Metadata:    event.Metadata,
		CreatedAt:   event.OccurredAt,
	}
}
