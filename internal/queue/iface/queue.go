package queue

import (
	"context"
)

// MessageProcessor processes a message and returns true if successful (for deletion)
type MessageProcessor[T any] interface {
	ProcessMessage(ctx context.Context, message T) bool
}

// MessageProcessorFunc allows functions to implement MessageProcessor
type MessageProcessorFunc[T any] func(ctx context.Context, message T) bool

func (f MessageProcessorFunc[T]) ProcessMessage(ctx context.Context, message T) bool {
	return f(ctx, message)
}

// Attributed messages carry string attributes next to their body
// (SQS message attributes) so consumers can filter without decoding.
type Attributed interface {
	QueueAttributes() map[string]string
}

// Queue defines queue operations
type Queue interface {
	Send(ctx context.Context, message interface{}) error
	StartConsumer(ctx context.Context) error
	StopConsumer(ctx context.Context) error
}
