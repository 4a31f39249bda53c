package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/tutor-radar/internal/domain"
)

// TutorRepo provides typed DynamoDB operations for the tutors table.
type TutorRepo struct {
	client    API
	tableName string
}

func NewTutorRepo(client API, tableName string) *TutorRepo {
	return &TutorRepo{client: client, tableName: tableName}
}

func (r *TutorRepo) Get(ctx context.Context, tutorID string) (*domain.Tutor, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("tutor_id", tutorID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("tutor not found: %w", domain.ErrNotFound)
	}
	var t domain.Tutor
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Ensure creates an empty, unverified tutor row unless one already exists.
func (r *TutorRepo) Ensure(ctx context.Context, tutorID string) error {
	now := time.Now().UTC()
	item, err := attributevalue.MarshalMap(&domain.Tutor{TutorID: tutorID, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return fmt.Errorf("marshal tutor: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(tutor_id)"),
	})
	if err != nil && !isConditionFailed(err) {
		return err
	}
	return nil
}

// SetVarsityVerification marks the tutor verified and replaces the stored affiliation.
// Fails with domain.ErrNotFound when no tutor row exists.
func (r *TutorRepo) SetVarsityVerification(ctx context.Context, tutorID string, info domain.Affiliation) error {
	return r.update(ctx, tutorID, map[string]interface{}{
		fieldVarsityVerified: true,
		fieldVarsityInfos:    info,
	})
}

func (r *TutorRepo) SetDossier(ctx context.Context, tutorID, objectKey string) error {
	return r.update(ctx, tutorID, map[string]interface{}{fieldDossierObject: objectKey})
}

func (r *TutorRepo) update(ctx context.Context, tutorID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("tutor_id", tutorID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(tutor_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("tutor %s: %w", tutorID, domain.ErrNotFound)
	}
	return err
}
