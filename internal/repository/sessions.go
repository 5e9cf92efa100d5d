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

const (
	sessionSK = "META#"
	// maxSessionMessages bounds a session transcript; AppendTurn evicts the
	// oldest entries past it.
	maxSessionMessages = 20
)

// sessionsAPI is the minimal DynamoDB interface required by Sessions.
// Defined here for testability.
type sessionsAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Sessions wraps the DynamoDB sessions table. Each session is a single
// document holding its full bounded message list, queryable per user through
// a userId/updatedAt index.
type Sessions struct {
	api       sessionsAPI
	tableName string
	indexName string
}

var newSessionID = func() string {
	return uuid.NewString()
}

func NewSessions(api sessionsAPI, tableName, indexName string) (*Sessions, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	if strings.TrimSpace(indexName) == "" {
		return nil, errors.New("repository: index name must not be empty")
	}
	return &Sessions{api: api, tableName: tableName, indexName: indexName}, nil
}

func sessionPK(sessionID string) string {
	return "SESSION#" + sessionID
}

// Get fetches a session document; the second return reports existence.
func (s *Sessions) Get(ctx context.Context, sessionID string) (domain.ChatSession, bool, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
			"SK": &types.AttributeValueMemberS{Value: sessionSK},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.ChatSession{}, false, fmt.Errorf("repository: Get session: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.ChatSession{}, false, nil
	}
	session, err := itemToSession(out.Item)
	if err != nil {
		return domain.ChatSession{}, false, fmt.Errorf("repository: Get session decode: %w", err)
	}
	return session, true, nil
}

// Create writes a fresh empty-messages session owned by userID.
func (s *Sessions) Create(ctx context.Context, userID string) (domain.ChatSession, error) {
	now := time.Now().UTC()
	session := domain.ChatSession{
		SessionID: newSessionID(),
		UserID:    userID,
		Messages:  []domain.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                sessionItem(session),
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return domain.ChatSession{}, fmt.Errorf("repository: Create session: %w", err)
	}
	return session, nil
}

// AppendTurn reads the current transcript, appends the (user, assistant)
// pair, trims to the newest maxSessionMessages entries and writes back.
// Read-modify-write with no condition: concurrent appends to one session can
// lose updates. Sessions are effectively single-writer per user in practice.
func (s *Sessions) AppendTurn(ctx context.Context, sessionID string, userMsg, assistantMsg domain.Message) error {
	session, found, err := s.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("repository: AppendTurn read: %w", err)
	}
	if !found {
		return fmt.Errorf("repository: AppendTurn: session %s not found", sessionID)
	}

	messages := append(session.Messages, userMsg, assistantMsg)
	if len(messages) > maxSessionMessages {
		messages = messages[len(messages)-maxSessionMessages:]
	}

	_, err = s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
			"SK": &types.AttributeValueMemberS{Value: sessionSK},
		},
		UpdateExpression: aws.String("SET messages = :messages, updatedAt = :updatedAt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":messages":  messagesAttr(messages),
			":updatedAt": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: AppendTurn write: %w", err)
	}
	return nil
}

// Delete removes a session document.
func (s *Sessions) Delete(ctx context.Context, sessionID string) error {
	_, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
			"SK": &types.AttributeValueMemberS{Value: sessionSK},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: Delete session: %w", err)
	}
	return nil
}

// ListByUser queries the userId index newest-updated first.
func (s *Sessions) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ChatSession, error) {
	out, err := s.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(s.indexName),
		KeyConditionExpression: aws.String("userId = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: ListByUser query: %w", err)
	}

	sessions := make([]domain.ChatSession, 0, len(out.Items))
	for _, item := range out.Items {
		session, err := itemToSession(item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListByUser decode: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func sessionItem(session domain.ChatSession) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: sessionPK(session.SessionID)},
		"SK":        &types.AttributeValueMemberS{Value: sessionSK},
		"sessionId": &types.AttributeValueMemberS{Value: session.SessionID},
		"userId":    &types.AttributeValueMemberS{Value: session.UserID},
		"messages":  messagesAttr(session.Messages),
		"createdAt": &types.AttributeValueMemberS{Value: session.CreatedAt.Format(time.RFC3339Nano)},
		"updatedAt": &types.AttributeValueMemberS{Value: session.UpdatedAt.Format(time.RFC3339Nano)},
	}
}

func messagesAttr(messages []domain.Message) types.AttributeValue {
	items := make([]types.AttributeValue, 0, len(messages))
	for _, m := range messages {
		items = append(items, &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"role":      &types.AttributeValueMemberS{Value: m.Role},
			"content":   &types.AttributeValueMemberS{Value: m.Content},
			"timestamp": &types.AttributeValueMemberS{Value: m.Timestamp.Format(time.RFC3339Nano)},
		}})
	}
	return &types.AttributeValueMemberL{Value: items}
}

func itemToSession(item map[string]types.AttributeValue) (domain.ChatSession, error) {
	sessionID, err := strAttr(item, "sessionId")
	if err != nil {
		return domain.ChatSession{}, err
	}
	userID, err := strAttr(item, "userId")
	if err != nil {
		return domain.ChatSession{}, err
	}
	createdAt, err := timeAttr(item, "createdAt")
	if err != nil {
		return domain.ChatSession{}, err
	}
	updatedAt, err := timeAttr(item, "updatedAt")
	if err != nil {
		return domain.ChatSession{}, err
	}

	messages := []domain.Message{}
	if raw, ok := item["messages"]; ok {
		list, ok := raw.(*types.AttributeValueMemberL)
		if !ok {
			return domain.ChatSession{}, errors.New("repository: attribute \"messages\" is not a list")
		}
		for _, entry := range list.Value {
			m, ok := entry.(*types.AttributeValueMemberM)
			if !ok {
				return domain.ChatSession{}, errors.New("repository: message entry is not a map")
			}
			msg, err := itemToMessage(m.Value)
			if err != nil {
				return domain.ChatSession{}, err
			}
			messages = append(messages, msg)
		}
	}

	return domain.ChatSession{
		SessionID: sessionID,
		UserID:    userID,
		Messages:  messages,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func itemToMessage(item map[string]types.AttributeValue) (domain.Message, error) {
	role, err := strAttr(item, "role")
	if err != nil {
		return domain.Message{}, err
	}
	content, err := strAttr(item, "content")
	if err != nil {
		return domain.Message{}, err
	}
	ts, err := timeAttr(item, "timestamp")
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{Role: role, Content: content, Timestamp: ts}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func timeAttr(item map[string]types.AttributeValue, key string) (time.Time, error) {
	raw, err := strAttr(item, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return t, nil
}
