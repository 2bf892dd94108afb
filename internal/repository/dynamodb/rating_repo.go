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
)

type ratingRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    logger.Logger
}

// NewRatingRepository creates a new DynamoDB rating repository
func NewRatingRepository(client *dynamodb.Client, tableName string, log logger.Logger) repositoryIface.RatingRepository {
	return &ratingRepository{
		client:    client,
		tableName: tableName,
		logger:    log.With(logger.String("component", "rating_repository")),
	}
}

func (r *ratingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	item, err := attributevalue.MarshalMap(rating)
	if err != nil {
		r.logger.Error("failed to marshal rating", logger.Error(err))
		return fmt.Errorf("failed to marshal rating: %w", err)
	}

	// rating_id is derived from (job, rater, rated)
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(rating_id)"),
	})

	if err != nil {
		if isConditionalCheckFailed(err) {
			r.logger.Warn("duplicate rating detected",
				logger.String("job_id", rating.JobID),
				logger.String("rater_id", rating.RaterID),
				logger.String("rated_id", rating.RatedID))
			return fmt.Errorf("%w: rating %s", repository.ErrAlreadyExists, rating.RatingID)
		}
		r.logger.Error("failed to create rating", logger.Error(err))
		return fmt.Errorf("failed to create rating: %w", err)
	}

	return nil
}

func (r *ratingRepository) ListByRated(ctx context.Context, ratedID string) ([]*domain.Rating, error) {
	ratings, err := queryAll[domain.Rating](ctx, r.client,
		queryIndexDesc(r.tableName, "rated_index", "rated_id", ratedID), r.logger)
	if err != nil {
		r.logger.Error("failed to query ratings by rated user",
			logger.String("rated_id", ratedID),
			logger.Error(err))
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}

	return ratings, nil
}

func (r *ratingRepository) ListByJob(ctx context.Context, jobID string) ([]*domain.Rating, error) {
	ratings, err := queryAll[domain.Rating](ctx, r.client,
		queryIndexDesc(r.tableName, "job_index", "job_id", jobID), r.logger)
	if err != nil {
		r.logger.Error("failed to query ratings by job",
			logger.String("job_id", jobID),
			logger.Error(err))
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}

	return ratings, nil
}
