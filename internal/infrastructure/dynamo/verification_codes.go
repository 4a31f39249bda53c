package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/tutor-radar/internal/domain"
)

// VerificationCodeRepo stores issued varsity verification codes.
// PK: user_id, SK: code_id (ULID). Items are never updated or deleted here;
// expired ones are reaped by the table TTL on expires_at when set.
type VerificationCodeRepo struct {
	client    API
	tableName string
}

func NewVerificationCodeRepo(client API, tableName string) *VerificationCodeRepo {
	return &VerificationCodeRepo{client: client, tableName: tableName}
}

func (r *VerificationCodeRepo) Insert(ctx context.Context, v *domain.VerificationCode) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal verification code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(code_id)"),
	})
	return err
}

// LatestMatch returns the most recently issued record for userID whose code equals code.
// The partition is read newest-first; DynamoDB applies the filter after the page is
// read, so pages are walked until the first match.
func (r *VerificationCodeRepo) LatestMatch(ctx context.Context, userID, code string) (*domain.VerificationCode, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("#c = :code"),
		ExpressionAttributeNames: map[string]string{
			"#c": "code",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid":  &types.AttributeValueMemberS{Value: userID},
			":code": &types.AttributeValueMemberS{Value: code},
		},
		ScanIndexForward: aws.Bool(false),
		ConsistentRead:   aws.Bool(true),
	})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if len(out.Items) == 0 {
			continue
		}
		var v domain.VerificationCode
		if err := attributevalue.UnmarshalMap(out.Items[0], &v); err != nil {
			return nil, err
		}
		return &v, nil
	}
	return nil, fmt.Errorf("verification code not found: %w", domain.ErrNotFound)
}
