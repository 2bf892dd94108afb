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

type applicationRepository struct {
	client       *dynamodb.Client
	tableName    string
	keyTableName string
	logger       logger.Logger
}

// NewApplicationRepository creates a new DynamoDB application repository.
// Uniqueness of (job_id, applicant_id) is held by a key item in keyTableName.
func NewApplicationRepository(client *dynamodb.Client, tableName, keyTableName string, log logger.Logger) repositoryIface.ApplicationRepository {
	return &applicationRepository{
		client:       client,
		tableName:    tableName,
		keyTableName: keyTableName,
		logger:       log.With(logger.String("component", "application_repository")),
	}
}

func (r *applicationRepository) Create(ctx context.Context, application *domain.JobApplication) error {
	item, err := attributevalue.MarshalMap(application)
	if err != nil {
		r.logger.Error("failed to marshal application", logger.Error(err))
		return fmt.Errorf("failed to marshal application: %w", err)
	}

	key := domain.ApplicationKey(application.JobID, application.ApplicantID)

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName: aws.String(r.keyTableName),
					Item: map[string]types.AttributeValue{
						"application_key": stringValue(key),
						"application_id":  stringValue(application.ApplicationID),
					},
					ConditionExpression: aws.String("attribute_not_exists(application_key)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(r.tableName),
					Item:                item,
					ConditionExpression: aws.String("attribute_not_exists(application_id)"),
				},
			},
		},
	})

	if err != nil {
		if isTransactionConditionFailed(err) {
			r.logger.Warn("duplicate application detected",
				logger.String("job_id", application.JobID),
				logger.String("applicant_id", application.ApplicantID))
			return fmt.Errorf("%w: application %s", repository.ErrAlreadyExists, key)
		}
		r.logger.Error("failed to create application", logger.Error(err))
		return fmt.Errorf("failed to create application: %w", err)
	}

	r.logger.Debug("application created",
		logger.String("application_id", application.ApplicationID),
		logger.String("job_id", application.JobID))

	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, applicationID string) (*domain.JobApplication, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"application_id": stringValue(applicationID),
		},
		ConsistentRead: aws.Bool(true),
	})

	if err != nil {
		r.logger.Error("failed to get application", logger.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("%w: application %s", repository.ErrNotFound, applicationID)
	}

	var application domain.JobApplication
	if err := attributevalue.UnmarshalMap(result.Item, &application); err != nil {
		return nil, fmt.Errorf("failed to unmarshal application: %w", err)
	}

	return &application, nil
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID string) ([]*domain.JobApplication, error) {
	applications, err := queryAll[domain.JobApplication](ctx, r.client,
		queryIndexDesc(r.tableName, "job_index", "job_id", jobID), r.logger)
	if err != nil {
		r.logger.Error("failed to query applications by job",
			logger.String("job_id", jobID),
			logger.Error(err))
		return nil, fmt.Errorf("failed to query applications by job: %w", err)
	}

	return applications, nil
}

func (r *applicationRepository) ListByApplicant(ctx context.Context, applicantID string) ([]*domain.JobApplication, error) {
	applications, err := queryAll[domain.JobApplication](ctx, r.client,
		queryIndexDesc(r.tableName, "applicant_index", "applicant_id", applicantID), r.logger)
	if err != nil {
		r.logger.Error("failed to query applications by applicant",
			logger.String("applicant_id", applicantID),
			logger.Error(err))
		return nil, fmt.Errorf("failed to query applications by applicant: %w", err)
	}

	return applications, nil
}

func (r *applicationRepository) Accept(ctx context.Context, applicationID, jobID string, now int64) error {
	return r.setStatus(ctx, applicationID, domain.ApplicationStatusAccepted,
		"job_id = :job AND #status IN (:pending, :accepted)",
		map[string]types.AttributeValue{
			":job":      stringValue(jobID),
			":pending":  stringValue(string(domain.ApplicationStatusPending)),
			":accepted": stringValue(string(domain.ApplicationStatusAccepted)),
			":now":      intValue(now),
		})
}

func (r *applicationRepository) Reject(ctx context.Context, applicationID, jobID string, now int64) error {
	return r.setStatus(ctx, applicationID, domain.ApplicationStatusRejected,
		"job_id = :job AND #status <> :accepted",
		map[string]types.AttributeValue{
			":job":      stringValue(jobID),
			":accepted": stringValue(string(domain.ApplicationStatusAccepted)),
			":now":      intValue(now),
		})
}

func (r *applicationRepository) setStatus(
	ctx context.Context,
	applicationID string,
	status domain.ApplicationStatus,
	condition string,
	values map[string]types.AttributeValue,
) error {
	values[":target"] = stringValue(string(status))

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"application_id": stringValue(applicationID),
		},
		UpdateExpression:    aws.String("SET #status = :target, updated_at = :now"),
		ConditionExpression: aws.String(condition),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: values,
	})

	if err != nil {
		if isConditionalCheckFailed(err) {
			r.logger.Warn("application predicate not met",
				logger.String("application_id", applicationID),
				logger.String("target_status", string(status)))
			return fmt.Errorf("%w: application %s -> %s", repository.ErrConditionFailed, applicationID, status)
		}
		r.logger.Error("failed to update application",
			logger.String("application_id", applicationID),
			logger.Error(err))
		return fmt.Errorf("failed to update application: %w", err)
	}

	return nil
}
