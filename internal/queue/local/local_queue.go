package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"karmahub/internal/logger"
	queue "karmahub/internal/queue/iface"
)

// ErrQueueFull is returned by Send when the buffer has no room
var ErrQueueFull = errors.New("local queue is full")

// ErrQueueStopped is returned by Send after the consumer was stopped
var ErrQueueStopped = errors.New("local queue is stopped")

// QueueConfig holds configuration for the in-process queue
type QueueConfig struct {
	Name        string
	WorkerCount int
	BufferSize  int
	MaxAttempts int
}

type envelope struct {
	body     []byte
	attempts int
}

// LocalQueue is an in-process stand-in for SQSQueue. Messages are JSON encoded
// on Send so consumers see the same payloads either way.
type LocalQueue[T any] struct {
	config    QueueConfig
	logger    logger.Logger
	processor queue.MessageProcessor[T]
	messages  chan envelope
	wg        sync.WaitGroup
	mu        sync.RWMutex
	running   bool
	stopped   bool
}

// NewLocalQueue creates a new in-process queue with processor
func NewLocalQueue[T any](config QueueConfig, processor queue.MessageProcessor[T], log logger.Logger) *LocalQueue[T] {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 2
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 256
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}

	return &LocalQueue[T]{
		config:    config,
		logger:    log.With(logger.String("component", "local_queue"), logger.String("queue", config.Name)),
		processor: processor,
		messages:  make(chan envelope, config.BufferSize),
	}
}

func (q *LocalQueue[T]) Send(ctx context.Context, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped {
		return ErrQueueStopped
	}

	select {
	case q.messages <- envelope{body: body}:
		return nil
	default:
		q.logger.Warn("dropping message, queue is full")
		return ErrQueueFull
	}
}

func (q *LocalQueue[T]) StartConsumer(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return fmt.Errorf("consumer already running")
	}
	if q.stopped {
		return ErrQueueStopped
	}
	q.running = true

	q.logger.Info("starting local consumer",
		logger.Int("worker_count", q.config.WorkerCount))

	for i := 0; i < q.config.WorkerCount; i++ {
		q.wg.Add(1)
		go q.worker(i + 1)
	}

	return nil
}

// StopConsumer stops accepting messages and waits until the buffered ones are processed
func (q *LocalQueue[T]) StopConsumer(ctx context.Context) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return fmt.Errorf("consumer not running")
	}
	q.stopped = true
	running := q.running
	close(q.messages)
	q.mu.Unlock()

	if !running {
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("local consumer stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *LocalQueue[T]) worker(workerID int) {
	defer q.wg.Done()

	for env := range q.messages {
		q.process(env, workerID)
	}
}

func (q *LocalQueue[T]) process(env envelope, workerID int) {
	var message T
	if err := json.Unmarshal(env.body, &message); err != nil {
		q.logger.Error("failed to unmarshal message",
			logger.Int("worker_id", workerID),
			logger.Error(err))
		return
	}

	for attempt := env.attempts + 1; attempt <= q.config.MaxAttempts; attempt++ {
		if q.processor.ProcessMessage(context.Background(), message) {
			return
		}
		q.logger.Warn("message processing failed",
			logger.Int("worker_id", workerID),
			logger.Int("attempt", attempt))
	}

	q.logger.Error("giving up on message",
		logger.Int("worker_id", workerID),
		logger.Int("max_attempts", q.config.MaxAttempts))
}
