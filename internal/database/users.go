package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/facegate/backend/internal/models"
)

// adminBootstrapKey is a reserved item in the users table. Claiming it with
// a conditional write makes first-admin creation single-shot even under
// concurrent requests; a plain scan-then-put would race.
const adminBootstrapKey = "#admin-bootstrap"

// ErrAdminBootstrapClaimed is returned when the bootstrap marker already
// exists, meaning a first admin was (or is being) created.
var ErrAdminBootstrapClaimed = errors.New("admin bootstrap already claimed")

// DynamoDBAPI is the slice of the DynamoDB client the stores use.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// UserStore reads and writes enrolled user records in DynamoDB.
type UserStore struct {
	client DynamoDBAPI
	table  string
}

func NewUserStore(client DynamoDBAPI, table string) *UserStore {
	return &UserStore{client: client, table: table}
}

// GetUser fetches one record by face ID. Returns (nil, nil) when absent.
func (s *UserStore) GetUser(ctx context.Context, faceID string) (*models.UserRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"face_id": &types.AttributeValueMemberS{Value: faceID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", faceID, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var user models.UserRecord
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		return nil, fmt.Errorf("unmarshal user %s: %w", faceID, err)
	}
	return &user, nil
}

// PutUser writes a user record. Records are never updated after creation.
func (s *UserStore) PutUser(ctx context.Context, user *models.UserRecord) error {
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("marshal user %s: %w", user.FaceID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put user %s: %w", user.FaceID, err)
	}
	return nil
}

// AdminExists scans for any record with is_admin = true.
func (s *UserStore) AdminExists(ctx context.Context) (bool, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("is_admin").Equal(expression.Value(true))).
		Build()
	if err != nil {
		return false, fmt.Errorf("build admin filter: %w", err)
	}

	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(s.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return false, fmt.Errorf("scan for admins: %w", err)
	}
	return len(out.Items) > 0, nil
}

// ClaimAdminBootstrap atomically claims the right to create the first
// admin. A second caller gets ErrAdminBootstrapClaimed.
func (s *UserStore) ClaimAdminBootstrap(ctx context.Context) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"face_id": &types.AttributeValueMemberS{Value: adminBootstrapKey},
		},
		ConditionExpression: aws.String("attribute_not_exists(face_id)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrAdminBootstrapClaimed
		}
		return fmt.Errorf("claim admin bootstrap: %w", err)
	}
	return nil
}

// ReleaseAdminBootstrap gives the claim back after a failed bootstrap, so
// a later attempt can create the first admin.
func (s *UserStore) ReleaseAdminBootstrap(ctx context.Context) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"face_id": &types.AttributeValueMemberS{Value: adminBootstrapKey},
		},
	})
	if err != nil {
		return fmt.Errorf("release admin bootstrap: %w", err)
	}
	return nil
}

// ListUsers returns all enrolled records, skipping internal marker items.
func (s *UserStore) ListUsers(ctx context.Context) ([]models.UserRecord, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	users := make([]models.UserRecord, 0, len(out.Items))
	for _, item := range out.Items {
		var user models.UserRecord
		if err := attributevalue.UnmarshalMap(item, &user); err != nil {
			return nil, fmt.Errorf("unmarshal user item: %w", err)
		}
		if strings.HasPrefix(user.FaceID, "#") {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}
