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

type profileRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    logger.Logger
}

// NewProfileRepository creates a new DynamoDB profile repository
func NewProfileRepository(client *dynamodb.Client, tableName string, log logger.Logger) repositoryIface.ProfileRepository {
	return &profileRepository{
		client:    client,
		tableName: tableName,
		logger:    log.With(logger.String("component", "profile_repository")),
	}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": stringValue(userID),
		},
	})

	if err != nil {
		r.logger.Error("failed to get profile", logger.Error(err))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("%w: profile %s", repository.ErrNotFound, userID)
	}

	var profile domain.Profile
	if err := attributevalue.UnmarshalMap(result.Item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	item, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})

	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("%w: profile %s", repository.ErrAlreadyExists, profile.UserID)
		}
		r.logger.Error("failed to create profile", logger.Error(err))
		return fmt.Errorf("failed to create profile: %w", err)
	}

	r.logger.Info("profile created", logger.String("user_id", profile.UserID))

	return nil
}

func (r *profileRepository) UpdateDetails(ctx context.Context, profile *domain.Profile) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": stringValue(profile.UserID),
		},
		UpdateExpression: aws.String("SET first_name = :first_name, last_name = :last_name, " +
			"avatar_url = :avatar_url, bio = :bio, #location = :location, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(user_id)"),
		ExpressionAttributeNames: map[string]string{
			"#location": "location",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":first_name": stringValue(profile.FirstName),
			":last_name":  stringValue(profile.LastName),
			":avatar_url": stringValue(profile.AvatarURL),
			":bio":        stringValue(profile.Bio),
			":location":   stringValue(profile.Location),
			":now":        intValue(profile.UpdatedAt),
		},
	})

	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("%w: profile %s", repository.ErrNotFound, profile.UserID)
		}
		r.logger.Error("failed to update profile", logger.Error(err))
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

func (r *profileRepository) UpdateRating(ctx context.Context, userID string, rating float64, count int, now int64) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": stringValue(userID),
		},
		UpdateExpression: aws.String("SET rating = :rating, rating_count = :count, " +
			"updated_at = :now, created_at = if_not_exists(created_at, :now)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rating": floatValue(rating),
			":count":  intValue(int64(count)),
			":now":    intValue(now),
		},
	})

	if err != nil {
		r.logger.Error("failed to update profile rating",
			logger.String("user_id", userID),
			logger.Error(err))
		return fmt.Errorf("failed to update profile rating: %w", err)
	}

	return nil
}
