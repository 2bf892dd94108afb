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

type ticketRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    logger.Logger
}

// NewTicketRepository creates a new DynamoDB ticket repository
func NewTicketRepository(client *dynamodb.Client, tableName string, log logger.Logger) repositoryIface.TicketRepository {
	return &ticketRepository{
		client:    client,
		tableName: tableName,
		logger:    log.With(logger.String("component", "ticket_repository")),
	}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.JobTicket) error {
	item, err := attributevalue.MarshalMap(ticket)
	if err != nil {
		r.logger.Error("failed to marshal ticket", logger.Error(err))
		return fmt.Errorf("failed to marshal ticket: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(ticket_id)"),
	})

	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("%w: ticket %s", repository.ErrAlreadyExists, ticket.TicketID)
		}
		r.logger.Error("failed to create ticket", logger.Error(err))
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	r.logger.Info("ticket created",
		logger.String("ticket_id", ticket.TicketID),
		logger.String("job_id", ticket.JobID))

	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, ticketID string) (*domain.JobTicket, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"ticket_id": stringValue(ticketID),
		},
		ConsistentRead: aws.Bool(true),
	})

	if err != nil {
		r.logger.Error("failed to get ticket", logger.Error(err))
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("%w: ticket %s", repository.ErrNotFound, ticketID)
	}

	var ticket domain.JobTicket
	if err := attributevalue.UnmarshalMap(result.Item, &ticket); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticket: %w", err)
	}

	return &ticket, nil
}

func (r *ticketRepository) ListByApplicant(ctx context.Context, applicantID string) ([]*domain.JobTicket, error) {
	tickets, err := queryAll[domain.JobTicket](ctx, r.client,
		queryIndexDesc(r.tableName, "applicant_index", "applicant_id", applicantID), r.logger)
	if err != nil {
		r.logger.Error("failed to query tickets by applicant",
			logger.String("applicant_id", applicantID),
			logger.Error(err))
		return nil, fmt.Errorf("failed to query tickets by applicant: %w", err)
	}

	return tickets, nil
}

func (r *ticketRepository) ListByJob(ctx context.Context, jobID string) ([]*domain.JobTicket, error) {
	tickets, err := queryAll[domain.JobTicket](ctx, r.client,
		queryIndexDesc(r.tableName, "job_index", "job_id", jobID), r.logger)
	if err != nil {
		r.logger.Error("failed to query tickets by job",
			logger.String("job_id", jobID),
			logger.Error(err))
		return nil, fmt.Errorf("failed to query tickets by job: %w", err)
	}

	return tickets, nil
}

func (r *ticketRepository) Complete(ctx context.Context, ticketID string, now int64) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"ticket_id": stringValue(ticketID),
		},
		UpdateExpression:    aws.String("SET #status = :completed, completed_at = :now, updated_at = :now"),
		ConditionExpression: aws.String("#status = :active"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":completed": stringValue(string(domain.TicketStatusCompleted)),
			":active":    stringValue(string(domain.TicketStatusActive)),
			":now":       intValue(now),
		},
	})

	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("%w: ticket %s is not active", repository.ErrConditionFailed, ticketID)
		}
		r.logger.Error("failed to complete ticket",
			logger.String("ticket_id", ticketID),
			logger.Error(err))
		return fmt.Errorf("failed to complete ticket: %w", err)
	}

	return nil
}
