package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"karmahub/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Tables holds the table names used by the repositories
type Tables struct {
	Jobs            string `mapstructure:"jobs"`
	Applications    string `mapstructure:"applications"`
	ApplicationKeys string `mapstructure:"application_keys"`
	Tickets         string `mapstructure:"tickets"`
	Ratings         string `mapstructure:"ratings"`
	Profiles        string `mapstructure:"profiles"`
	ActivityLog     string `mapstructure:"activity_log"`
}

// DefaultTables returns the default table names
func DefaultTables() Tables {
	return Tables{
		Jobs:            "jobs",
		Applications:    "job_applications",
		ApplicationKeys: "job_application_keys",
		Tickets:         "job_tickets",
		Ratings:         "ratings",
		Profiles:        "profiles",
		ActivityLog:     "activity_log",
	}
}

type tableSpec struct {
	name       string
	hashKey    string
	attributes map[string]types.ScalarAttributeType
	indexes    map[string]string // index name -> hash key, range key is always created_at
}

func (t Tables) specs() []tableSpec {
	withCreatedAt := func(keys ...string) map[string]types.ScalarAttributeType {
		attrs := map[string]types.ScalarAttributeType{"created_at": types.ScalarAttributeTypeN}
		for _, k := range keys {
			attrs[k] = types.ScalarAttributeTypeS
		}
		return attrs
	}

	return []tableSpec{
		{
			name:       t.Jobs,
			hashKey:    "job_id",
			attributes: withCreatedAt("job_id", "status", "creator_id"),
			indexes:    map[string]string{"status_index": "status", "creator_index": "creator_id"},
		},
		{
			name:       t.Applications,
			hashKey:    "application_id",
			attributes: withCreatedAt("application_id", "job_id", "applicant_id"),
			indexes:    map[string]string{"job_index": "job_id", "applicant_index": "applicant_id"},
		},
		{
			name:       t.ApplicationKeys,
			hashKey:    "application_key",
			attributes: map[string]types.ScalarAttributeType{"application_key": types.ScalarAttributeTypeS},
		},
		{
			name:       t.Tickets,
			hashKey:    "ticket_id",
			attributes: withCreatedAt("ticket_id", "job_id", "applicant_id"),
			indexes:    map[string]string{"job_index": "job_id", "applicant_index": "applicant_id"},
		},
		{
			name:       t.Ratings,
			hashKey:    "rating_id",
			attributes: withCreatedAt("rating_id", "job_id", "rated_id"),
			indexes:    map[string]string{"job_index": "job_id", "rated_index": "rated_id"},
		},
		{
			name:       t.Profiles,
			hashKey:    "user_id",
			attributes: map[string]types.ScalarAttributeType{"user_id": types.ScalarAttributeTypeS},
		},
		{
			name:       t.ActivityLog,
			hashKey:    "entry_id",
			attributes: withCreatedAt("entry_id", "user_id"),
			indexes:    map[string]string{"user_index": "user_id"},
		},
	}
}

// EnsureTables creates any missing table with its indexes (pay per request).
// Intended for local development against DynamoDB Local.
func EnsureTables(ctx context.Context, client *dynamodb.Client, tables Tables, log logger.Logger) error {
	for _, spec := range tables.specs() {
		input := &dynamodb.CreateTableInput{
			TableName:   aws.String(spec.name),
			BillingMode: types.BillingModePayPerRequest,
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(spec.hashKey), KeyType: types.KeyTypeHash},
			},
		}

		for name, attrType := range spec.attributes {
			input.AttributeDefinitions = append(input.AttributeDefinitions, types.AttributeDefinition{
				AttributeName: aws.String(name),
				AttributeType: attrType,
			})
		}

		for indexName, hashKey := range spec.indexes {
			input.GlobalSecondaryIndexes = append(input.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
				IndexName: aws.String(indexName),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("created_at"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			})
		}

		_, err := client.CreateTable(ctx, input)
		if err != nil {
			var inUse *types.ResourceInUseException
			if errors.As(err, &inUse) {
				log.Debug("table already exists", logger.String("table", spec.name))
				continue
			}
			return fmt.Errorf("failed to create table %s: %w", spec.name, err)
		}

		log.Info("table created", logger.String("table", spec.name))
	}

	return nil
}

// queryAll runs a query across all result pages and unmarshals every item.
// An undecodable item fails the whole query so write paths never act on a partial list.
func queryAll[T any](ctx context.Context, client *dynamodb.Client, input *dynamodb.QueryInput, log logger.Logger) ([]*T, error) {
	paginator := dynamodb.NewQueryPaginator(client, input)

	items := make([]*T, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			var v T
			if err := attributevalue.UnmarshalMap(item, &v); err != nil {
				log.Error("failed to unmarshal item",
					logger.String("table", aws.ToString(input.TableName)),
					logger.Error(err))
				return nil, fmt.Errorf("failed to unmarshal item from %s: %w", aws.ToString(input.TableName), err)
			}
			items = append(items, &v)
		}
	}

	return items, nil
}

// queryIndexDesc builds a newest-first query on an index keyed by (hashKey, created_at)
func queryIndexDesc(table, index, hashKey, value string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": hashKey,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": stringValue(value),
		},
		ScanIndexForward: aws.Bool(false), // Descending order
	}
}
