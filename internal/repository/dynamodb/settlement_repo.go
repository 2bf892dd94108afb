package dynamodb

import (
	"context"
	"fmt"

	"karmahub/internal/domain"
	"karmahub/internal/logger"
	"karmahub/internal/repository"
	repositoryIface "karmahub/internal/repository/iface"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type settlementRepository struct {
	client       *dynamodb.Client
	ticketTable  string
	profileTable string
	logger       logger.Logger
}

// NewSettlementRepository creates a repository that settles tickets against profiles
func NewSettlementRepository(client *dynamodb.Client, ticketTable, profileTable string, log logger.Logger) repositoryIface.SettlementRepository {
	return &settlementRepository{
		client:       client,
		ticketTable:  ticketTable,
		profileTable: profileTable,
		logger:       log.With(logger.String("component", "settlement_repository")),
	}
}

func (r *settlementRepository) AwardKarma(ctx context.Context, ticketID, userID string, karma int, goodDeed bool, now int64) error {
	deeds := int64(0)
	if goodDeed {
		deeds = 1
	}

	return r.settle(ctx, "award_karma", ticketID, "karma_awarded",
		&types.Update{
			TableName: aws.String(r.profileTable),
			Key: map[string]types.AttributeValue{
				"user_id": stringValue(userID),
			},
			UpdateExpression: aws.String("ADD karma_points :karma, good_deeds_completed :deeds " +
				"SET updated_at = :now, created_at = if_not_exists(created_at, :now)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":karma": intValue(int64(karma)),
				":deeds": intValue(deeds),
				":now":   intValue(now),
			},
		}, now)
}

func (r *settlementRepository) ReleasePayment(ctx context.Context, ticketID, userID string, amount float64, now int64) error {
	return r.settle(ctx, "release_payment", ticketID, "payment_released",
		&types.Update{
			TableName: aws.String(r.profileTable),
			Key: map[string]types.AttributeValue{
				"user_id": stringValue(userID),
			},
			UpdateExpression: aws.String("ADD total_earned :amount " +
				"SET updated_at = :now, created_at = if_not_exists(created_at, :now)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":amount": floatValue(amount),
				":now":    intValue(now),
			},
		}, now)
}

// settle flips flag on a completed ticket and applies the profile credit in the same transaction
func (r *settlementRepository) settle(ctx context.Context, op, ticketID, flag string, credit *types.Update, now int64) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName: aws.String(r.ticketTable),
					Key: map[string]types.AttributeValue{
						"ticket_id": stringValue(ticketID),
					},
					UpdateExpression:    aws.String("SET #flag = :true, updated_at = :now"),
					ConditionExpression: aws.String("#status = :completed AND (attribute_not_exists(#flag) OR #flag = :false)"),
					ExpressionAttributeNames: map[string]string{
						"#flag":   flag,
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":true":      boolValue(true),
						":false":     boolValue(false),
						":completed": stringValue(string(domain.TicketStatusCompleted)),
						":now":       intValue(now),
					},
				},
			},
			{Update: credit},
		},
	})

	if err != nil {
		if isTransactionConditionFailed(err) {
			r.logger.Warn("settlement predicate not met",
				logger.String("op", op),
				logger.String("ticket_id", ticketID))
			return fmt.Errorf("%w: ticket %s %s", repository.ErrConditionFailed, ticketID, op)
		}
		r.logger.Error("failed to settle ticket",
			logger.String("op", op),
			logger.String("ticket_id", ticketID),
			logger.Error(err))
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	r.logger.Info("ticket settled",
		logger.String("op", op),
		logger.String("ticket_id", ticketID))

	return nil
}
