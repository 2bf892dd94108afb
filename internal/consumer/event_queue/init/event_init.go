package event_queue

import (
	"context"
	"fmt"

	"karmahub/internal/config"
	event "karmahub/internal/consumer/event_queue/iface"
	eventImpl "karmahub/internal/consumer/event_queue/impl"
	"karmahub/internal/domain"
	"karmahub/internal/events"
	"karmahub/internal/logger"
	queue "karmahub/internal/queue/iface"
	"karmahub/internal/queue/local"
	"karmahub/internal/queue/sqs"
	"karmahub/internal/service"

	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/fx"
)

const (
	DriverSQS   = "sqs"
	DriverLocal = "local"
)

// EventQueueParams holds dependencies for the event queue
type EventQueueParams struct {
	fx.In

	Logger     logger.Logger
	Config     *config.AppConfig
	SQSClient  *awssqs.Client `optional:"true"`
	Stores     service.Stores
	Profiles   service.ProfileService
	Settlement service.SettlementService
}

// EventQueueResult holds what this module provides
type EventQueueResult struct {
	fx.Out

	Consumer  event.EventConsumer
	Queue     queue.Queue `name:"event_queue"`
	Publisher events.Publisher
}

// ProvideEventQueueAndConsumer provides the queue, its consumer and the
// publisher the lifecycle engine sends through
func ProvideEventQueueAndConsumer(params EventQueueParams) (EventQueueResult, error) {
	var consumer event.EventConsumer

	processor := queue.MessageProcessorFunc[domain.Event](func(ctx context.Context, ev domain.Event) bool {
		return consumer.ProcessMessage(ctx, ev)
	})

	q, err := newQueue[domain.Event](params.Config.Events, params.SQSClient, processor, params.Logger)
	if err != nil {
		return EventQueueResult{}, err
	}

	consumer = eventImpl.NewEventConsumer(params.Stores.ActivityLog, params.Profiles, params.Settlement, params.Logger)

	return EventQueueResult{
		Consumer:  consumer,
		Queue:     q,
		Publisher: events.NewQueuePublisher(q, params.Logger),
	}, nil
}

// EventPublisherParams holds dependencies for a publish-only event queue
type EventPublisherParams struct {
	fx.In

	Logger    logger.Logger
	Config    *config.AppConfig
	SQSClient *awssqs.Client `optional:"true"`
}

// ProvideEventPublisher provides a publisher for processes that leave
// consumption to the worker
func ProvideEventPublisher(params EventPublisherParams) (events.Publisher, error) {
	if params.Config.Events.Driver != DriverSQS {
		return nil, fmt.Errorf("publish-only events need the %s driver, got %q", DriverSQS, params.Config.Events.Driver)
	}

	q, err := newQueue[domain.Event](params.Config.Events, params.SQSClient, nil, params.Logger)
	if err != nil {
		return nil, err
	}
	return events.NewQueuePublisher(q, params.Logger), nil
}

func newQueue[T any](
	cfg config.EventsConfig,
	client *awssqs.Client,
	processor queue.MessageProcessor[T],
	log logger.Logger,
) (queue.Queue, error) {
	switch cfg.Driver {
	case DriverSQS:
		if client == nil {
			return nil, fmt.Errorf("events driver %s needs an SQS client", DriverSQS)
		}
		return sqs.NewSQSQueue(client, sqs.QueueConfig{
			QueueURL:          cfg.QueueURL,
			WorkerCount:       cfg.WorkerCount,
			MaxMessages:       cfg.MaxMessages,
			WaitTimeSeconds:   cfg.WaitTimeSeconds,
			VisibilityTimeout: cfg.VisibilityTimeout,
		}, processor, log), nil
	case DriverLocal:
		return local.NewLocalQueue(local.QueueConfig{
			Name:        "events",
			WorkerCount: cfg.WorkerCount,
			BufferSize:  cfg.BufferSize,
			MaxAttempts: cfg.MaxAttempts,
		}, processor, log), nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}

// EventQueueModule provides the FX module that publishes and consumes events
func EventQueueModule() fx.Option {
	return fx.Options(
		fx.Provide(
			ProvideEventQueueAndConsumer,
		),
		fx.Invoke(func(params struct {
			fx.In
			Lifecycle fx.Lifecycle
			Queue     queue.Queue `name:"event_queue"`
			Logger    logger.Logger
		}) {
			params.Lifecycle.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					params.Logger.Info("starting event queue consumer")
					return params.Queue.StartConsumer(ctx)
				},
				OnStop: func(ctx context.Context) error {
					params.Logger.Info("stopping event queue consumer")
					return params.Queue.StopConsumer(ctx)
				},
			})
		}),
	)
}

// EventPublisherModule provides the FX module for publish-only processes
func EventPublisherModule() fx.Option {
	return fx.Provide(ProvideEventPublisher)
}
