package models

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// UserRecord is one enrolled identity. The primary key is the face ID
// assigned by Rekognition when the enrollment photo is indexed; the
// service never generates face IDs itself.
type UserRecord struct {
	FaceID         string   `dynamodbav:"face_id" json:"face_id"`
	Name           string   `dynamodbav:"name" json:"name"`
	IsAdmin        bool     `dynamodbav:"is_admin" json:"is_admin"`
	AccountNumber  string   `dynamodbav:"account_number,omitempty" json:"account_number,omitempty"`
	AccountBalance *Balance `dynamodbav:"account_balance,omitempty" json:"-"`
	CreatedAt      string   `dynamodbav:"created_at" json:"created_at"`
	S3Key          string   `dynamodbav:"s3_key" json:"-"`
}

// Balance is a fixed-point monetary amount. It is stored in DynamoDB as a
// decimal string with two fractional digits, never as a float.
type Balance struct {
	decimal.Decimal
}

// NewBalance parses a decimal string into a Balance.
func NewBalance(s string) (*Balance, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q: %w", s, err)
	}
	return &Balance{d}, nil
}

// String renders the balance with two fractional digits.
func (b *Balance) String() string {
	return b.StringFixed(2)
}

func (b Balance) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberS{Value: b.StringFixed(2)}, nil
}

func (b *Balance) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return fmt.Errorf("balance attribute must be a string, got %T", av)
	}
	d, err := decimal.NewFromString(s.Value)
	if err != nil {
		return fmt.Errorf("invalid stored balance %q: %w", s.Value, err)
	}
	b.Decimal = d
	return nil
}

// UserSummary is the admin-facing projection returned by the user listing.
type UserSummary struct {
	Name          string `json:"name"`
	IsAdmin       bool   `json:"is_admin"`
	CreatedAt     string `json:"created_at"`
	AccountNumber string `json:"account_number"`
}

// Summary projects a record into its listing shape. Admin records carry no
// account number; the listing shows "N/A" for them.
func (u *UserRecord) Summary() UserSummary {
	accountNumber := u.AccountNumber
	if accountNumber == "" {
		accountNumber = "N/A"
	}
	return UserSummary{
		Name:          u.Name,
		IsAdmin:       u.IsAdmin,
		CreatedAt:     u.CreatedAt,
		AccountNumber: accountNumber,
	}
}
