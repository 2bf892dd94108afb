package event_queue

import (
	"context"

	"karmahub/internal/domain"
)

// EventConsumer handles lifecycle events taken off the event queue
type EventConsumer interface {
	// ProcessMessage returns true when the event is done with (handled or
	// not worth retrying) and false to have it redelivered
	ProcessMessage(ctx context.Context, event domain.Event) bool
}
