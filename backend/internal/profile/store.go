// Package profile implements the user profile store over DynamoDB.
package profile

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	apperrors "github.com/etoland/my-circle/backend/pkg/errors"
	"github.com/etoland/my-circle/backend/pkg/logger"
)

// api is the slice of the DynamoDB client the store needs. The
// concrete dynamodb.Client satisfies it; tests substitute a fake.
type api interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Store reads and writes profile records in the users table.
type Store struct {
	client api
	table  string
	logger *zap.Logger
}

// NewStore creates a profile store over the given DynamoDB client.
func NewStore(client api, table string) *Store {
	return &Store{
		client: client,
		table:  table,
		logger: logger.Get(),
	}
}

// Get fetches the profile for userID. Returns ErrProfileNotFound when
// no record exists, ErrProfileStoreUnavailable on transport failure.
func (s *Store) Get(ctx context.Context, userID string) (*Profile, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, apperrors.NewProfileStoreUnavailable("get profile", err)
	}

	if result.Item == nil {
		return nil, apperrors.NewProfileNotFound(userID)
	}

	var p Profile
	if err := attributevalue.UnmarshalMap(result.Item, &p); err != nil {
		return nil, apperrors.NewProfileStoreUnavailable("unmarshal profile", err)
	}

	return &p, nil
}

// Put writes the full profile record, overwriting any previous
// version (last write wins, matching the ingestion semantics).
func (s *Store) Put(ctx context.Context, p *Profile) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return apperrors.NewProfileStoreUnavailable("marshal profile", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return apperrors.NewProfileStoreUnavailable("put profile", err)
	}

	s.logger.Debug("Profile stored", zap.String("user_id", p.UserID))
	return nil
}
