package dynamodb

import (
	"context"
	"fmt"

	"karmahub/internal/domain"
	"karmahub/internal/logger"
	repositoryIface "karmahub/internal/repository/iface"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type activityLogRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    logger.Logger
}

// NewActivityLogRepository creates a new DynamoDB activity log repository
func NewActivityLogRepository(client *dynamodb.Client, tableName string, log logger.Logger) repositoryIface.ActivityLogRepository {
	return &activityLogRepository{
		client:    client,
		tableName: tableName,
		logger:    log.With(logger.String("component", "activity_log_repository")),
	}
}

func (r *activityLogRepository) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	r.logger.Debug("appending activity log entry",
		logger.String("entry_id", entry.EntryID),
		logger.String("action", string(entry.Action)))

	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		r.logger.Error("failed to marshal activity log entry", logger.Error(err))
		return fmt.Errorf("failed to marshal activity log entry: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
	})

	if err != nil {
		if isConditionalCheckFailed(err) {
			r.logger.Debug("activity log entry already stored",
				logger.String("entry_id", entry.EntryID))
			return nil
		}
		r.logger.Error("failed to append activity log entry", logger.Error(err))
		return fmt.Errorf("failed to append activity log entry: %w", err)
	}

	return nil
}

func (r *activityLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.ActivityLogEntry, error) {
	input := queryIndexDesc(r.tableName, "user_index", "user_id", userID)
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		r.logger.Error("failed to query activity log",
			logger.String("user_id", userID),
			logger.Error(err))
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}

	entries := make([]*domain.ActivityLogEntry, 0, len(result.Items))
	for _, item := range result.Items {
		var entry domain.ActivityLogEntry
		if err := attributevalue.UnmarshalMap(item, &entry); err != nil {
			r.logger.Warn("failed to unmarshal activity log entry", logger.Error(err))
			continue
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}
