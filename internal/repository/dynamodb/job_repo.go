package dynamodb

import (
	"context"
	"fmt"

	"karmahub/internal/domain"
	"karmahub/internal/logger"
	"karmahub/internal/repository"
	repositoryIface "karmahub/internal/repository/iface"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type jobRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    logger.Logger
}

// NewJobRepository creates a new DynamoDB job repository
func NewJobRepository(client *dynamodb.Client, tableName string, log logger.Logger) repositoryIface.JobRepository {
	return &jobRepository{
		client:    client,
		tableName: tableName,
		logger:    log.With(logger.String("component", "job_repository")),
	}
}

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	r.logger.Debug("creating job",
		logger.String("job_id", job.JobID))

	item, err := attributevalue.MarshalMap(job)
	if err != nil {
		r.logger.Error("failed to marshal job", logger.Error(err))
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(job_id)"),
	})

	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("%w: job_id=%s", repository.ErrAlreadyExists, job.JobID)
		}
		r.logger.Error("failed to create job", logger.Error(err))
		return fmt.Errorf("failed to create job: %w", err)
	}

	r.logger.Info("job created",
		logger.String("job_id", job.JobID),
		logger.String("creator_id", job.CreatorID))

	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"job_id": stringValue(jobID),
		},
		ConsistentRead: aws.Bool(true),
	})

	if err != nil {
		r.logger.Error("failed to get job", logger.Error(err))
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("%w: job %s", repository.ErrNotFound, jobID)
	}

	var job domain.Job
	if err := attributevalue.UnmarshalMap(result.Item, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

func (r *jobRepository) ListByStatus(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error) {
	jobs, err := queryAll[domain.Job](ctx, r.client,
		queryIndexDesc(r.tableName, "status_index", "status", string(status)), r.logger)
	if err != nil {
		r.logger.Error("failed to query jobs by status",
			logger.String("status", string(status)),
			logger.Error(err))
		return nil, fmt.Errorf("failed to query jobs by status: %w", err)
	}

	r.logger.Debug("jobs retrieved",
		logger.String("status", string(status)),
		logger.Int("count", len(jobs)))

	return jobs, nil
}

func (r *jobRepository) ListByCreator(ctx context.Context, creatorID string) ([]*domain.Job, error) {
	jobs, err := queryAll[domain.Job](ctx, r.client,
		queryIndexDesc(r.tableName, "creator_index", "creator_id", creatorID), r.logger)
	if err != nil {
		r.logger.Error("failed to query jobs by creator",
			logger.String("creator_id", creatorID),
			logger.Error(err))
		return nil, fmt.Errorf("failed to query jobs by creator: %w", err)
	}

	return jobs, nil
}

func (r *jobRepository) Assign(ctx context.Context, jobID, creatorID, applicantID, applicationID string, now int64) error {
	return r.conditionalUpdate(ctx, "assign", jobID, &dynamodb.UpdateItemInput{
		UpdateExpression: aws.String("SET #status = :in_progress, assigned_to = :applicant, " +
			"pending_acceptance_id = :application, pending_acceptance_at = :now, updated_at = :now"),
		ConditionExpression: aws.String("creator_id = :creator AND #status = :open"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":in_progress": stringValue(string(domain.JobStatusInProgress)),
			":open":        stringValue(string(domain.JobStatusOpen)),
			":applicant":   stringValue(applicantID),
			":application": stringValue(applicationID),
			":creator":     stringValue(creatorID),
			":now":         intValue(now),
		},
	})
}

func (r *jobRepository) ClearAcceptanceMarker(ctx context.Context, jobID, applicationID string, now int64) error {
	return r.conditionalUpdate(ctx, "clear_marker", jobID, &dynamodb.UpdateItemInput{
		UpdateExpression: aws.String("REMOVE pending_acceptance_id, pending_acceptance_at SET updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(job_id) AND " +
			"(attribute_not_exists(pending_acceptance_id) OR pending_acceptance_id = :application)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":application": stringValue(applicationID),
			":now":         intValue(now),
		},
	})
}

func (r *jobRepository) Complete(ctx context.Context, jobID, assigneeID string, now int64) error {
	return r.conditionalUpdate(ctx, "complete", jobID, &dynamodb.UpdateItemInput{
		UpdateExpression:    aws.String("SET #status = :completed, updated_at = :now"),
		ConditionExpression: aws.String("assigned_to = :assignee AND #status IN (:in_progress, :completed)"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":completed":   stringValue(string(domain.JobStatusCompleted)),
			":in_progress": stringValue(string(domain.JobStatusInProgress)),
			":assignee":    stringValue(assigneeID),
			":now":         intValue(now),
		},
	})
}

func (r *jobRepository) Cancel(ctx context.Context, jobID, creatorID string, now int64) error {
	return r.conditionalUpdate(ctx, "cancel", jobID, &dynamodb.UpdateItemInput{
		UpdateExpression:    aws.String("SET #status = :cancelled, updated_at = :now"),
		ConditionExpression: aws.String("creator_id = :creator AND #status = :open"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cancelled": stringValue(string(domain.JobStatusCancelled)),
			":open":      stringValue(string(domain.JobStatusOpen)),
			":creator":   stringValue(creatorID),
			":now":       intValue(now),
		},
	})
}

func (r *jobRepository) ListPendingAcceptances(ctx context.Context, markedBefore int64) ([]*domain.Job, error) {
	input := queryIndexDesc(r.tableName, "status_index", "status", string(domain.JobStatusInProgress))
	input.FilterExpression = aws.String("attribute_exists(pending_acceptance_id) AND pending_acceptance_at <= :before")
	input.ExpressionAttributeValues[":before"] = intValue(markedBefore)

	jobs, err := queryAll[domain.Job](ctx, r.client, input, r.logger)
	if err != nil {
		r.logger.Error("failed to query pending acceptances", logger.Error(err))
		return nil, fmt.Errorf("failed to query pending acceptances: %w", err)
	}

	return jobs, nil
}

// conditionalUpdate applies an update keyed by job_id and maps a failed predicate to ErrConditionFailed
func (r *jobRepository) conditionalUpdate(ctx context.Context, op, jobID string, input *dynamodb.UpdateItemInput) error {
	input.TableName = aws.String(r.tableName)
	input.Key = map[string]types.AttributeValue{
		"job_id": stringValue(jobID),
	}

	_, err := r.client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			r.logger.Warn("job predicate not met",
				logger.String("op", op),
				logger.String("job_id", jobID))
			return fmt.Errorf("%w: job %s %s", repository.ErrConditionFailed, jobID, op)
		}
		r.logger.Error("failed to update job",
			logger.String("op", op),
			logger.String("job_id", jobID),
			logger.Error(err))
		return fmt.Errorf("failed to %s job: %w", op, err)
	}

	r.logger.Debug("job updated",
		logger.String("op", op),
		logger.String("job_id", jobID))

	return nil
}
