package events

import (
	"context"
	"fmt"

	"karmahub/internal/domain"
	"karmahub/internal/logger"
	queue "karmahub/internal/queue/iface"
)

// Publisher dispatches lifecycle events to their consumers
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

type queuePublisher struct {
	queue  queue.Queue
	logger logger.Logger
}

// NewQueuePublisher publishes events onto q (SQS or the in-process queue)
func NewQueuePublisher(q queue.Queue, log logger.Logger) Publisher {
	return &queuePublisher{
		queue:  q,
		logger: log.With(logger.String("component", "event_publisher")),
	}
}

func (p *queuePublisher) Publish(ctx context.Context, event domain.Event) error {
	if err := p.queue.Send(ctx, event); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.logger.Debug("event published",
		logger.String("event_id", event.EventID),
		logger.String("type", string(event.Type)))

	return nil
}

// PublisherFunc allows functions to implement Publisher
type PublisherFunc func(ctx context.Context, event domain.Event) error

func (f PublisherFunc) Publish(ctx context.Context, event domain.Event) error {
	return f(ctx, event)
}
