package service

import (
	"context"

	"karmahub/internal/domain"
	"karmahub/internal/events"
	"karmahub/internal/logger"
	"karmahub/internal/metrics"
)

// eventEmitter publishes best-effort: a failed publish is logged and counted,
// never returned to the caller of the primary operation
type eventEmitter struct {
	publisher events.Publisher
	logger    logger.Logger
}

func newEventEmitter(publisher events.Publisher, log logger.Logger) *eventEmitter {
	return &eventEmitter{
		publisher: publisher,
		logger:    log,
	}
}

func (e *eventEmitter) emit(ctx context.Context, eventType domain.EventType, actorID, description string, metadata map[string]string) {
	if e.publisher == nil {
		return
	}

	event := domain.NewEvent(eventType, actorID, description, metadata)
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.WithContext(ctx).Warn("failed to publish event",
			logger.String("event_id", event.EventID),
			logger.String("type", string(eventType)),
			logger.Error(err))
		metrics.EventsPublishedTotal.WithLabelValues(string(eventType), "failed").Inc()
		return
	}

	metrics.EventsPublishedTotal.WithLabelValues(string(eventType), "success").Inc()
}
