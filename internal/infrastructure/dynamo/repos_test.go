package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tutor-radar/internal/domain"
)

// --- mock ---

type mockAPI struct{ mock.Mock }

func (m *mockAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.GetItemOutput)
	return out, args.Error(1)
}
func (m *mockAPI) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}
func (m *mockAPI) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.UpdateItemOutput)
	return out, args.Error(1)
}
func (m *mockAPI) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}

func codeItem(t *testing.T, v domain.VerificationCode) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return item
}

// --- VerificationCodeRepo ---

func TestVerificationCodeRepo_Insert_IsConditionalPut(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		code, ok := in.Item["code"].(*types.AttributeValueMemberS)
		_, hasTTL := in.Item["expires_at"]
		return *in.TableName == "verification_codes" &&
			*in.ConditionExpression == "attribute_not_exists(code_id)" &&
			ok && code.Value == "482913" && !hasTTL
	})).Return(&dynamodb.PutItemOutput{}, nil)

	repo := NewVerificationCodeRepo(api, "verification_codes")
	err := repo.Insert(context.Background(), &domain.VerificationCode{
		UserID: "t1", CodeID: "01J0000000000000000000000A", Email: "x1906004@student.buet.ac.bd",
		Code: "482913", CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestVerificationCodeRepo_LatestMatch_QueriesNewestFirst(t *testing.T) {
	api := &mockAPI{}
	newest := domain.VerificationCode{UserID: "t1", CodeID: "01J2", Code: "111111", Email: "b@buet.ac.bd"}
	older := domain.VerificationCode{UserID: "t1", CodeID: "01J1", Code: "111111", Email: "a@buet.ac.bd"}
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		code := in.ExpressionAttributeValues[":code"].(*types.AttributeValueMemberS)
		return !*in.ScanIndexForward && *in.ConsistentRead && code.Value == "111111"
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		codeItem(t, newest), codeItem(t, older),
	}}, nil).Once()

	repo := NewVerificationCodeRepo(api, "verification_codes")
	got, err := repo.LatestMatch(context.Background(), "t1", "111111")
	require.NoError(t, err)
	assert.Equal(t, "01J2", got.CodeID)
	assert.Equal(t, "b@buet.ac.bd", got.Email)
}

func TestVerificationCodeRepo_LatestMatch_WalksFilteredPages(t *testing.T) {
	api := &mockAPI{}
	match := domain.VerificationCode{UserID: "t1", CodeID: "01J1", Code: "222222"}
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
		LastEvaluatedKey: strKey("user_id", "t1"),
	}, nil).Once()
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{codeItem(t, match)},
	}, nil).Once()

	repo := NewVerificationCodeRepo(api, "verification_codes")
	got, err := repo.LatestMatch(context.Background(), "t1", "222222")
	require.NoError(t, err)
	assert.Equal(t, "01J1", got.CodeID)
	api.AssertNumberOfCalls(t, "Query", 2)
}

func TestVerificationCodeRepo_LatestMatch_NotFound(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil).Once()

	repo := NewVerificationCodeRepo(api, "verification_codes")
	_, err := repo.LatestMatch(context.Background(), "t1", "000000")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerificationCodeRepo_LatestMatch_StoreError(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()

	repo := NewVerificationCodeRepo(api, "verification_codes")
	_, err := repo.LatestMatch(context.Background(), "t1", "000000")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

// --- TutorRepo ---

func TestTutorRepo_SetVarsityVerification(t *testing.T) {
	api := &mockAPI{}
	info := domain.Affiliation{University: "BUET", StudentID: "1906004", Batch: "Batch 19", Roll: "004"}
	api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		names := map[string]bool{}
		for _, n := range in.ExpressionAttributeNames {
			names[n] = true
		}
		return *in.ConditionExpression == "attribute_exists(tutor_id)" &&
			names["varsity_verified"] && names["varsity_infos"] && names["updated_at"]
	})).Return(&dynamodb.UpdateItemOutput{}, nil)

	repo := NewTutorRepo(api, "tutors")
	require.NoError(t, repo.SetVarsityVerification(context.Background(), "t1", info))
	api.AssertExpectations(t)
}

func TestTutorRepo_SetVarsityVerification_MissingRow(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{})

	repo := NewTutorRepo(api, "tutors")
	err := repo.SetVarsityVerification(context.Background(), "ghost", domain.Affiliation{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestTutorRepo_Ensure_ExistingRowIsNotAnError(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{})

	repo := NewTutorRepo(api, "tutors")
	assert.NoError(t, repo.Ensure(context.Background(), "t1"))
}

func TestTutorRepo_Get_NotFound(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	repo := NewTutorRepo(api, "tutors")
	_, err := repo.Get(context.Background(), "t1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- ProfileRepo ---

func TestProfileRepo_Get_RoundTrip(t *testing.T) {
	api := &mockAPI{}
	lat, lng := 23.72, 90.39
	item, err := attributevalue.MarshalMap(domain.Profile{UserID: "u1", Role: domain.RoleTutor, Lat: &lat, Lng: &lng})
	require.NoError(t, err)
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil)

	repo := NewProfileRepo(api, "profiles")
	p, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTutor, p.Role)
	require.NotNil(t, p.Lat)
	assert.InDelta(t, 23.72, *p.Lat, 1e-9)
}

func TestProfileRepo_ListByRole_UsesRoleIndex(t *testing.T) {
	api := &mockAPI{}
	lat, lng := 1.0, 2.0
	item, err := attributevalue.MarshalMap(domain.Profile{UserID: "s1", Role: domain.RoleStudent, Lat: &lat, Lng: &lng})
	require.NoError(t, err)
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return *in.IndexName == "role-index"
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil).Once()

	repo := NewProfileRepo(api, "profiles")
	got, err := repo.ListByRole(context.Background(), domain.RoleStudent)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].UserID)
}
