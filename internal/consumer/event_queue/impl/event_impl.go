package consumer

import (
	"context"

	event "karmahub/internal/consumer/event_queue/iface"
	"karmahub/internal/domain"
	"karmahub/internal/logger"
	"karmahub/internal/metrics"
	repository "karmahub/internal/repository/iface"
)

// RatingRecomputer refreshes a user's aggregate rating
type RatingRecomputer interface {
	RecomputeRating(ctx context.Context, userID string) error
}

// Settler runs the automatic settlement rule for a completed ticket
type Settler interface {
	AutoSettle(ctx context.Context, ticketID string) error
}

type eventConsumer struct {
	activity repository.ActivityLogRepository
	ratings  RatingRecomputer
	settler  Settler
	logger   logger.Logger
}

// NewEventConsumer creates the consumer behind the event queue
func NewEventConsumer(
	activity repository.ActivityLogRepository,
	ratings RatingRecomputer,
	settler Settler,
	log logger.Logger,
) event.EventConsumer {
	return &eventConsumer{
		activity: activity,
		ratings:  ratings,
		settler:  settler,
		logger:   log.With(logger.String("component", "event_consumer")),
	}
}

func (c *eventConsumer) ProcessMessage(ctx context.Context, ev domain.Event) bool {
	log := c.logger.With(
		logger.String("event_id", ev.EventID),
		logger.String("type", string(ev.Type)))

	if ev.Type == "" {
		log.Warn("dropping event without type")
		metrics.EventsConsumedTotal.WithLabelValues("unknown", "dropped").Inc()
		return true
	}

	err := c.handle(ctx, ev)
	switch {
	case err == nil:
		metrics.EventsConsumedTotal.WithLabelValues(string(ev.Type), "success").Inc()
		return true
	case retryable(err):
		log.Warn("event handling failed, will retry", logger.Error(err))
		metrics.EventsConsumedTotal.WithLabelValues(string(ev.Type), "retry").Inc()
		return false
	default:
		log.Error("dropping event", logger.Error(err))
		metrics.EventsConsumedTotal.WithLabelValues(string(ev.Type), "dropped").Inc()
		return true
	}
}

// handle is safe to repeat: log entries are keyed by event id, the rating
// recompute reads all ratings and settlement flags are set at most once.
func (c *eventConsumer) handle(ctx context.Context, ev domain.Event) error {
	if ev.ActorID != "" {
		if err := c.activity.Append(ctx, domain.NewActivityLogEntry(ev)); err != nil {
			return domain.NewStoreError("activity.append", err)
		}
	}

	switch ev.Type {
	case domain.EventRatingSubmitted:
		ratedID, err := requireMeta(ev, domain.MetaRatedID)
		if err != nil {
			return err
		}
		return c.ratings.RecomputeRating(ctx, ratedID)

	case domain.EventTicketCompleted:
		ticketID, err := requireMeta(ev, domain.MetaTicketID)
		if err != nil {
			return err
		}
		return c.settler.AutoSettle(ctx, ticketID)
	}

	return nil
}

func requireMeta(ev domain.Event, key string) (string, error) {
	value := ev.Metadata[key]
	if value == "" {
		return "", domain.ValidationError("%s event without %s", ev.Type, key)
	}
	return value, nil
}

// only store outages are worth a redelivery
func retryable(err error) bool {
	return domain.IsStoreError(err)
}
