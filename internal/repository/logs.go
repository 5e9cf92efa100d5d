package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"travel-social-functions/internal/domain"
)

type logsAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Logs wraps the append-only moderation log table holding email delivery
// records and admin audit records.
type Logs struct {
	api       logsAPI
	tableName string
}

var newLogID = func() string {
	return uuid.NewString()
}

func NewLogs(api logsAPI, tableName string) (*Logs, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Logs{api: api, tableName: tableName}, nil
}

// RecordEmail appends one email delivery record.
func (l *Logs) RecordEmail(ctx context.Context, rec domain.EmailRecord) error {
	_, err := l.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.tableName),
		Item: map[string]types.AttributeValue{
			"PK":             &types.AttributeValueMemberS{Value: "EMAIL#" + newLogID()},
			"SK":             &types.AttributeValueMemberS{Value: "LOG#" + rec.SentAt.Format(time.RFC3339Nano)},
			"type":           &types.AttributeValueMemberS{Value: rec.Type},
			"userId":         &types.AttributeValueMemberS{Value: rec.UserID},
			"recipientEmail": &types.AttributeValueMemberS{Value: rec.RecipientEmail},
			"subject":        &types.AttributeValueMemberS{Value: rec.Subject},
			"violationType":  &types.AttributeValueMemberS{Value: rec.ViolationType},
			"messageId":      &types.AttributeValueMemberS{Value: rec.MessageID},
			"status":         &types.AttributeValueMemberS{Value: rec.Status},
			"sentAt":         &types.AttributeValueMemberS{Value: rec.SentAt.Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: RecordEmail: %w", err)
	}
	return nil
}

// RecordAudit appends one admin action record.
func (l *Logs) RecordAudit(ctx context.Context, rec domain.AuditRecord) error {
	_, err := l.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.tableName),
		Item: map[string]types.AttributeValue{
			"PK":           &types.AttributeValueMemberS{Value: "AUDIT#" + newLogID()},
			"SK":           &types.AttributeValueMemberS{Value: "LOG#" + rec.Timestamp.Format(time.RFC3339Nano)},
			"action":       &types.AttributeValueMemberS{Value: rec.Action},
			"targetUserId": &types.AttributeValueMemberS{Value: rec.TargetUserID},
			"adminId":      &types.AttributeValueMemberS{Value: rec.AdminID},
			"timestamp":    &types.AttributeValueMemberS{Value: rec.Timestamp.Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: RecordAudit: %w", err)
	}
	return nil
}
