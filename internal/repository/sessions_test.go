package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"travel-social-functions/internal/domain"
)

type fakeSessionsDynamo struct {
	getOut    *dynamodb.GetItemOutput
	getErr    error
	putErr    error
	updateErr error
	deleteErr error
	queryOut  *dynamodb.QueryOutput
	queryErr  error

	lastGetInput    *dynamodb.GetItemInput
	lastPutInput    *dynamodb.PutItemInput
	lastUpdateInput *dynamodb.UpdateItemInput
	lastDeleteInput *dynamodb.DeleteItemInput
	lastQueryInput  *dynamodb.QueryInput
}

func (f *fakeSessionsDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	return f.getOut, f.getErr
}

func (f *fakeSessionsDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeSessionsDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.lastUpdateInput = in
	return &dynamodb.UpdateItemOutput{}, f.updateErr
}

func (f *fakeSessionsDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.lastDeleteInput = in
	return &dynamodb.DeleteItemOutput{}, f.deleteErr
}

func (f *fakeSessionsDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQueryInput = in
	return f.queryOut, f.queryErr
}

func makeSessionItem(sessionID, userID string, messages []domain.Message) map[string]types.AttributeValue {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: "SESSION#" + sessionID},
		"SK":        &types.AttributeValueMemberS{Value: sessionSK},
		"sessionId": &types.AttributeValueMemberS{Value: sessionID},
		"userId":    &types.AttributeValueMemberS{Value: userID},
		"messages":  messagesAttr(messages),
		"createdAt": &types.AttributeValueMemberS{Value: now},
		"updatedAt": &types.AttributeValueMemberS{Value: now},
	}
}

func makeMessages(n int) []domain.Message {
	msgs := make([]domain.Message, 0, n)
	for i := 0; i < n; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleModel
		}
		msgs = append(msgs, domain.Message{
			Role:      role,
			Content:   fmt.Sprintf("msg-%d", i),
			Timestamp: time.Date(2025, 1, 1, 0, i, 0, 0, time.UTC),
		})
	}
	return msgs
}

func mustNewSessions(t *testing.T, db *fakeSessionsDynamo) *Sessions {
	t.Helper()
	s, err := NewSessions(db, "sessions-table", "userId-updatedAt-index")
	require.NoError(t, err)
	return s
}

func stubSessionID(t *testing.T, id string) {
	t.Helper()
	orig := newSessionID
	newSessionID = func() string { return id }
	t.Cleanup(func() { newSessionID = orig })
}

func TestNewSessions_Validation(t *testing.T) {
	_, err := NewSessions(nil, "t", "i")
	require.Error(t, err)
	_, err = NewSessions(&fakeSessionsDynamo{}, " ", "i")
	require.Error(t, err)
	_, err = NewSessions(&fakeSessionsDynamo{}, "t", "")
	require.Error(t, err)
}

func TestSessionsGet_HappyPath(t *testing.T) {
	db := &fakeSessionsDynamo{
		getOut: &dynamodb.GetItemOutput{Item: makeSessionItem("sess-1", "user-1", makeMessages(4))},
	}
	s := mustNewSessions(t, db)

	session, found, err := s.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "sess-1", session.SessionID)
	require.Equal(t, "user-1", session.UserID)
	require.Len(t, session.Messages, 4)
	require.Equal(t, domain.RoleModel, session.Messages[1].Role)

	key := db.lastGetInput.Key
	require.Equal(t, "SESSION#sess-1", key["PK"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, sessionSK, key["SK"].(*types.AttributeValueMemberS).Value)
}

func TestSessionsGet_NotFound(t *testing.T) {
	db := &fakeSessionsDynamo{getOut: &dynamodb.GetItemOutput{}}
	s := mustNewSessions(t, db)

	_, found, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestSessionsGet_ApiError(t *testing.T) {
	db := &fakeSessionsDynamo{getErr: errors.New("boom")}
	s := mustNewSessions(t, db)

	_, _, err := s.Get(context.Background(), "sess-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Get session")
}

func TestSessionsCreate(t *testing.T) {
	stubSessionID(t, "fixed-id")
	db := &fakeSessionsDynamo{}
	s := mustNewSessions(t, db)

	session, err := s.Create(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "fixed-id", session.SessionID)
	require.Equal(t, "user-1", session.UserID)
	require.Empty(t, session.Messages)
	require.False(t, session.CreatedAt.IsZero())

	require.NotNil(t, db.lastPutInput)
	require.Equal(t, "attribute_not_exists(PK)", *db.lastPutInput.ConditionExpression)
	require.Equal(t, "SESSION#fixed-id", db.lastPutInput.Item["PK"].(*types.AttributeValueMemberS).Value)
}

func TestAppendTurn_AppendsAndWritesBack(t *testing.T) {
	db := &fakeSessionsDynamo{
		getOut: &dynamodb.GetItemOutput{Item: makeSessionItem("sess-1", "user-1", makeMessages(4))},
	}
	s := mustNewSessions(t, db)

	userMsg := domain.Message{Role: domain.RoleUser, Content: "hỏi", Timestamp: time.Now()}
	modelMsg := domain.Message{Role: domain.RoleModel, Content: "đáp", Timestamp: time.Now()}
	require.NoError(t, s.AppendTurn(context.Background(), "sess-1", userMsg, modelMsg))

	require.NotNil(t, db.lastUpdateInput)
	require.Equal(t, "SET messages = :messages, updatedAt = :updatedAt", *db.lastUpdateInput.UpdateExpression)
	written := db.lastUpdateInput.ExpressionAttributeValues[":messages"].(*types.AttributeValueMemberL)
	require.Len(t, written.Value, 6)
	last := written.Value[5].(*types.AttributeValueMemberM)
	require.Equal(t, "đáp", last.Value["content"].(*types.AttributeValueMemberS).Value)
}

func TestAppendTurn_TrimsToMessageCap(t *testing.T) {
	db := &fakeSessionsDynamo{
		getOut: &dynamodb.GetItemOutput{Item: makeSessionItem("sess-1", "user-1", makeMessages(maxSessionMessages))},
	}
	s := mustNewSessions(t, db)

	userMsg := domain.Message{Role: domain.RoleUser, Content: "mới nhất hỏi", Timestamp: time.Now()}
	modelMsg := domain.Message{Role: domain.RoleModel, Content: "mới nhất đáp", Timestamp: time.Now()}
	require.NoError(t, s.AppendTurn(context.Background(), "sess-1", userMsg, modelMsg))

	written := db.lastUpdateInput.ExpressionAttributeValues[":messages"].(*types.AttributeValueMemberL)
	require.Len(t, written.Value, maxSessionMessages)
	// The two oldest entries were evicted; the pair just appended survives.
	first := written.Value[0].(*types.AttributeValueMemberM)
	require.Equal(t, "msg-2", first.Value["content"].(*types.AttributeValueMemberS).Value)
	last := written.Value[maxSessionMessages-1].(*types.AttributeValueMemberM)
	require.Equal(t, "mới nhất đáp", last.Value["content"].(*types.AttributeValueMemberS).Value)
}

func TestAppendTurn_SessionMissing(t *testing.T) {
	db := &fakeSessionsDynamo{getOut: &dynamodb.GetItemOutput{}}
	s := mustNewSessions(t, db)

	err := s.AppendTurn(context.Background(), "gone", domain.Message{}, domain.Message{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestSessionsDelete(t *testing.T) {
	db := &fakeSessionsDynamo{}
	s := mustNewSessions(t, db)

	require.NoError(t, s.Delete(context.Background(), "sess-1"))
	require.Equal(t, "SESSION#sess-1", db.lastDeleteInput.Key["PK"].(*types.AttributeValueMemberS).Value)
}

func TestListByUser(t *testing.T) {
	db := &fakeSessionsDynamo{
		queryOut: &dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{
				makeSessionItem("sess-2", "user-1", makeMessages(2)),
				makeSessionItem("sess-1", "user-1", nil),
			},
		},
	}
	s := mustNewSessions(t, db)

	sessions, err := s.ListByUser(context.Background(), "user-1", 50)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, "sess-2", sessions[0].SessionID)

	in := db.lastQueryInput
	require.Equal(t, "userId-updatedAt-index", *in.IndexName)
	require.Equal(t, "userId = :uid", *in.KeyConditionExpression)
	require.False(t, *in.ScanIndexForward)
	require.Equal(t, int32(50), *in.Limit)
}

func TestListByUser_QueryError(t *testing.T) {
	db := &fakeSessionsDynamo{queryErr: errors.New("throttled")}
	s := mustNewSessions(t, db)

	_, err := s.ListByUser(context.Background(), "user-1", 50)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ListByUser")
}

func TestItemToSession_MalformedTimestamp(t *testing.T) {
	item := makeSessionItem("sess-1", "user-1", nil)
	item["createdAt"] = &types.AttributeValueMemberS{Value: "not-a-time"}
	_, err := itemToSession(item)
	require.Error(t, err)
	require.Contains(t, err.Error(), "createdAt")
}

func TestItemToSession_MissingMessagesDefaultsEmpty(t *testing.T) {
	item := makeSessionItem("sess-1", "user-1", nil)
	delete(item, "messages")
	session, err := itemToSession(item)
	require.NoError(t, err)
	require.NotNil(t, session.Messages)
	require.Empty(t, session.Messages)
}
