package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"travel-social-functions/internal/domain"
)

const userSK = "PROFILE#"

type usersAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Users wraps the DynamoDB users table.
type Users struct {
	api       usersAPI
	tableName string
}

func NewUsers(api usersAPI, tableName string) (*Users, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Users{api: api, tableName: tableName}, nil
}

func userPK(userID string) string {
	return "USER#" + userID
}

// Get fetches a user record; the second return reports existence.
func (u *Users) Get(ctx context.Context, userID string) (domain.User, bool, error) {
	out, err := u.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(u.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: userSK},
		},
	})
	if err != nil {
		return domain.User{}, false, fmt.Errorf("repository: Get user: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.User{}, false, nil
	}
	user, err := itemToUser(out.Item)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("repository: Get user decode: %w", err)
	}
	return user, true, nil
}

// All scans the whole users table, following pagination until exhaustion.
func (u *Users) All(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	var startKey map[string]types.AttributeValue
	for {
		out, err := u.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(u.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: All users scan: %w", err)
		}
		for _, item := range out.Items {
			user, err := itemToUser(item)
			if err != nil {
				return nil, fmt.Errorf("repository: All users decode: %w", err)
			}
			users = append(users, user)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return users, nil
}

// MigrateBadge writes the badge structure and level, and removes the
// deprecated points fields in the same update.
func (u *Users) MigrateBadge(ctx context.Context, userID string, badge domain.Badge, level int) error {
	_, err := u.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(u.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: userSK},
		},
		UpdateExpression: aws.String(
			"SET currentBadge = :badge, #lvl = :level, updatedAt = :updatedAt REMOVE points, totalPoints"),
		ExpressionAttributeNames: map[string]string{
			"#lvl": "level",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":badge":     badgeAttr(badge),
			":level":     &types.AttributeValueMemberN{Value: strconv.Itoa(level)},
			":updatedAt": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: MigrateBadge: %w", err)
	}
	return nil
}

func badgeAttr(badge domain.Badge) types.AttributeValue {
	return &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
		"badgeId":        &types.AttributeValueMemberS{Value: badge.BadgeID},
		"name":           &types.AttributeValueMemberS{Value: badge.Name},
		"description":    &types.AttributeValueMemberS{Value: badge.Description},
		"icon":           &types.AttributeValueMemberS{Value: badge.Icon},
		"requiredPoints": &types.AttributeValueMemberN{Value: strconv.Itoa(badge.RequiredPoints)},
		"color":          &types.AttributeValueMemberS{Value: badge.Color},
		"level":          &types.AttributeValueMemberN{Value: strconv.Itoa(badge.Level)},
		"currentPoints":  &types.AttributeValueMemberN{Value: strconv.Itoa(badge.CurrentPoints)},
	}}
}

func itemToUser(item map[string]types.AttributeValue) (domain.User, error) {
	pk, err := strAttr(item, "PK")
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		UserID:   strings.TrimPrefix(pk, "USER#"),
		Email:    optStrAttr(item, "email"),
		Name:     optStrAttr(item, "name"),
		Role:     optStrAttr(item, "role"),
		FCMToken: optStrAttr(item, "fcmToken"),
	}

	// Legacy points may be number-typed or, in the oldest records,
	// string-typed. Unparseable strings coerce to zero.
	if raw, ok := item["points"]; ok {
		user.HasLegacyPoints = true
		user.LegacyPoints = coerceIntAttr(raw)
	}
	if raw, ok := item["totalPoints"]; ok {
		user.HasLegacyTotal = true
		user.LegacyTotal = coerceIntAttr(raw)
	}
	if raw, ok := item["level"]; ok {
		user.Level = coerceIntAttr(raw)
	}

	if raw, ok := item["currentBadge"]; ok {
		m, ok := raw.(*types.AttributeValueMemberM)
		if !ok {
			return domain.User{}, errors.New("repository: attribute \"currentBadge\" is not a map")
		}
		badge := domain.Badge{
			BadgeID:        optStrAttr(m.Value, "badgeId"),
			Name:           optStrAttr(m.Value, "name"),
			Description:    optStrAttr(m.Value, "description"),
			Icon:           optStrAttr(m.Value, "icon"),
			Color:          optStrAttr(m.Value, "color"),
			RequiredPoints: coerceOptIntAttr(m.Value, "requiredPoints"),
			Level:          coerceOptIntAttr(m.Value, "level"),
			CurrentPoints:  coerceOptIntAttr(m.Value, "currentPoints"),
		}
		user.Badge = &badge
	}

	return user, nil
}

func optStrAttr(item map[string]types.AttributeValue, key string) string {
	v, ok := item[key]
	if !ok {
		return ""
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return s.Value
}

func coerceOptIntAttr(item map[string]types.AttributeValue, key string) int {
	v, ok := item[key]
	if !ok {
		return 0
	}
	return coerceIntAttr(v)
}

func coerceIntAttr(v types.AttributeValue) int {
	switch attr := v.(type) {
	case *types.AttributeValueMemberN:
		n, _ := strconv.Atoi(attr.Value)
		return n
	case *types.AttributeValueMemberS:
		n, _ := strconv.Atoi(strings.TrimSpace(attr.Value))
		return n
	default:
		return 0
	}
}
