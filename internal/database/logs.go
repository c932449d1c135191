package database

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/facegate/backend/internal/models"
)

// LoginLogStore appends login attempt records. Entries are never read back
// by the service, mutated, or deleted.
type LoginLogStore struct {
	client DynamoDBAPI
	table  string
}

func NewLoginLogStore(client DynamoDBAPI, table string) *LoginLogStore {
	return &LoginLogStore{client: client, table: table}
}

// PutAttempt appends one login attempt record.
func (s *LoginLogStore) PutAttempt(ctx context.Context, record *models.LoginLogRecord) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshal login log %s: %w", record.LogID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put login log %s: %w", record.LogID, err)
	}
	return nil
}
