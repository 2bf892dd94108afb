package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names something that happened to a job
type EventType string

const (
	EventJobCreated      EventType = "job_created"
	EventJobApplied      EventType = "job_applied"
	EventJobCancelled    EventType = "job_cancelled"
	EventTicketCompleted EventType = "ticket_completed"
	EventRatingSubmitted EventType = "rating_submitted"
)

// Metadata keys carried by events
const (
	MetaJobID         = "job_id"
	MetaApplicationID = "application_id"
	MetaTicketID      = "ticket_id"
	MetaRatingID      = "rating_id"
	MetaRatedID       = "rated_id"
	MetaScore         = "score"
)

// Event is dispatched after a successful lifecycle operation
type Event struct {
	EventID     string            `json:"event_id"`
	Type        EventType         `json:"type"`
	ActorID     string            `json:"actor_id"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	OccurredAt  int64             `json:"occurred_at"`
}

func NewEvent(eventType EventType, actorID, description string, metadata map[string]string) Event {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return Event{
		EventID:     uuid.New().String(),
		Type:        eventType,
		ActorID:     actorID,
		Description: description,
		Metadata:    metadata,
		OccurredAt:  time.Now().UnixMilli(),
	}
}

// QueueAttributes exposes the event type as a message attribute
func (e Event) QueueAttributes() map[string]string {
	return map[string]string{"event_type": string(e.Type)}
}
