package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"travel-social-functions/internal/domain"
)

type fakeLogsDynamo struct {
	putErr       error
	lastPutInput *dynamodb.PutItemInput
}

func (f *fakeLogsDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func stubLogID(t *testing.T, id string) {
	t.Helper()
	orig := newLogID
	newLogID = func() string { return id }
	t.Cleanup(func() { newLogID = orig })
}

func mustNewLogs(t *testing.T, db *fakeLogsDynamo) *Logs {
	t.Helper()
	l, err := NewLogs(db, "logs-table")
	require.NoError(t, err)
	return l
}

func TestRecordEmail(t *testing.T) {
	stubLogID(t, "fixed-id")
	db := &fakeLogsDynamo{}
	l := mustNewLogs(t, db)

	sentAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	err := l.RecordEmail(context.Background(), domain.EmailRecord{
		Type:           "warning",
		UserID:         "user-1",
		RecipientEmail: "u@example.com",
		Subject:        "subject",
		ViolationType:  "spam",
		MessageID:      "msg-1",
		Status:         "sent",
		SentAt:         sentAt,
	})
	require.NoError(t, err)

	item := db.lastPutInput.Item
	require.Equal(t, "EMAIL#fixed-id", item["PK"].(*types.AttributeValueMemberS).Value)
	require.True(t, strings.HasPrefix(item["SK"].(*types.AttributeValueMemberS).Value, "LOG#2025-06-01T12:00:00"))
	require.Equal(t, "warning", item["type"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "msg-1", item["messageId"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "sent", item["status"].(*types.AttributeValueMemberS).Value)
}

func TestRecordAudit(t *testing.T) {
	stubLogID(t, "fixed-id")
	db := &fakeLogsDynamo{}
	l := mustNewLogs(t, db)

	err := l.RecordAudit(context.Background(), domain.AuditRecord{
		Action:       "disable_auth",
		TargetUserID: "user-1",
		AdminID:      "admin-1",
		Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	item := db.lastPutInput.Item
	require.Equal(t, "AUDIT#fixed-id", item["PK"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "disable_auth", item["action"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "admin-1", item["adminId"].(*types.AttributeValueMemberS).Value)
}

func TestRecordEmail_ApiError(t *testing.T) {
	db := &fakeLogsDynamo{putErr: errors.New("boom")}
	l := mustNewLogs(t, db)

	err := l.RecordEmail(context.Background(), domain.EmailRecord{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "RecordEmail")
}

func TestRecordAudit_ApiError(t *testing.T) {
	db := &fakeLogsDynamo{putErr: errors.New("boom")}
	l := mustNewLogs(t, db)

	err := l.RecordAudit(context.Background(), domain.AuditRecord{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "RecordAudit")
}
