package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"karmahub/internal/logger"
	queue "karmahub/internal/queue/iface"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// QueueConfig holds configuration for SQS queue
type QueueConfig struct {
	QueueURL          string
	WorkerCount       int
	MaxMessages       int32
	WaitTimeSeconds   int32
	VisibilityTimeout int32
}

// SQSQueue is a generic SQS queue consumer. A nil processor makes it
// publish-only.
type SQSQueue[T any] struct {
	client    *sqs.Client
	config    QueueConfig
	logger    logger.Logger
	processor queue.MessageProcessor[T]
	stopCh    chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
}

// NewSQSQueue creates a new SQS queue with processor
func NewSQSQueue[T any](
	client *sqs.Client,
	config QueueConfig,
	processor queue.MessageProcessor[T],
	log logger.Logger,
) queue.Queue {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 2
	}
	if config.MaxMessages <= 0 {
		config.MaxMessages = 10
	}
	if config.WaitTimeSeconds <= 0 {
		config.WaitTimeSeconds = 20
	}
	if config.VisibilityTimeout <= 0 {
		config.VisibilityTimeout = 60
	}

	return &SQSQueue[T]{
		client:    client,
		config:    config,
		logger:    log.With(logger.String("component", "sqs_queue"), logger.String("queue_url", config.QueueURL)),
		processor: processor,
	}
}

func (q *SQSQueue[T]) Send(ctx context.Context, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.config.QueueURL),
		MessageBody: aws.String(string(body)),
	}
	if attributed, ok := message.(queue.Attributed); ok {
		input.MessageAttributes = messageAttributes(attributed.QueueAttributes())
	}

	if _, err := q.client.SendMessage(ctx, input); err != nil {
		q.logger.Error("failed to send message to SQS", logger.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	q.logger.Debug("message sent to queue")
	return nil
}

func messageAttributes(attrs map[string]string) map[string]types.MessageAttributeValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]types.MessageAttributeValue, len(attrs))
	for k, v := range attrs {
		out[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}
	return out
}

func (q *SQSQueue[T]) StartConsumer(ctx context.Context) error {
	if q.processor == nil {
		return fmt.Errorf("queue %s has no processor", q.config.QueueURL)
	}

	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return fmt.Errorf("consumer already running")
	}
	q.running = true
	q.stopCh = make(chan struct{})

	// workers outlive the fx start context
	var workerCtx context.Context
	workerCtx, q.cancel = context.WithCancel(context.Background())
	q.mu.Unlock()

	q.logger.Info("starting SQS consumer", logger.Int("worker_count", q.config.WorkerCount))

	for i := 0; i < q.config.WorkerCount; i++ {
		q.wg.Add(1)
		go q.worker(workerCtx, i+1)
	}

	return nil
}

func (q *SQSQueue[T]) StopConsumer(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return fmt.Errorf("consumer not running")
	}
	q.running = false
	q.cancel()
	close(q.stopCh)
	q.mu.Unlock()

	q.logger.Info("stopping SQS consumer")

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("SQS consumer stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for SQS workers: %w", ctx.Err())
	}
}

func (q *SQSQueue[T]) worker(ctx context.Context, workerID int) {
	defer q.wg.Done()

	q.logger.Debug("worker started", logger.Int("worker_id", workerID))

	for {
		select {
		case <-q.stopCh:
			q.logger.Debug("worker stopping", logger.Int("worker_id", workerID))
			return
		default:
			q.receive(ctx, workerID)
		}
	}
}

func (q *SQSQueue[T]) receive(ctx context.Context, workerID int) {
	// must outlast the long poll
	receiveTimeout := time.Duration(q.config.WaitTimeSeconds+5) * time.Second
	receiveCtx, cancel := context.WithTimeout(ctx, receiveTimeout)
	defer cancel()

	result, err := q.client.ReceiveMessage(receiveCtx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(q.config.QueueURL),
		MaxNumberOfMessages:   q.config.MaxMessages,
		WaitTimeSeconds:       q.config.WaitTimeSeconds,
		VisibilityTimeout:     q.config.VisibilityTimeout,
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		q.logger.Error("failed to receive messages",
			logger.Int("worker_id", workerID),
			logger.Error(err))
		select {
		case <-q.stopCh:
		case <-time.After(time.Second):
		}
		return
	}

	for _, msg := range result.Messages {
		select {
		case <-q.stopCh:
			// unprocessed messages become visible again after the timeout
			return
		default:
			q.handle(ctx, msg, workerID)
		}
	}
}

func (q *SQSQueue[T]) handle(ctx context.Context, msg types.Message, workerID int) {
	messageID := aws.ToString(msg.MessageId)
	log := q.logger.With(logger.Int("worker_id", workerID), logger.String("message_id", messageID))

	if msg.Body == nil {
		log.Warn("dropping message without body")
		q.deleteMessage(ctx, msg)
		return
	}

	var message T
	if err := json.Unmarshal([]byte(*msg.Body), &message); err != nil {
		log.Error("failed to unmarshal message", logger.Error(err))
		q.deleteMessage(ctx, msg)
		return
	}

	if !q.processor.ProcessMessage(ctx, message) {
		log.Warn("message processing failed, will retry")
		return
	}

	q.deleteMessage(ctx, msg)
	log.Debug("message processed")
}

func (q *SQSQueue[T]) deleteMessage(ctx context.Context, msg types.Message) {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.config.QueueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		q.logger.Error("failed to delete message",
			logger.String("message_id", aws.ToString(msg.MessageId)),
			logger.Error(err))
	}
}
