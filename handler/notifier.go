package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"travel-social-functions/internal/domain"
)

// NotificationDispatcher pushes one notification record to its recipient.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n domain.Notification) error
}

// NotifierHandler consumes the notifications table stream and dispatches a
// push for every inserted record.
type NotifierHandler struct {
	uc     NotificationDispatcher
	logger *slog.Logger
}

func NewNotifierHandler(uc NotificationDispatcher, logger *slog.Logger) (*NotifierHandler, error) {
	if uc == nil {
		return nil, errors.New("handler: notification dispatcher must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotifierHandler{uc: uc, logger: logger}, nil
}

// Handle processes one stream batch. Per-record failures are logged and
// never fail the batch: push delivery is best-effort with no redelivery.
func (h *NotifierHandler) Handle(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if record.EventName != "INSERT" {
			continue
		}
		notification, err := notificationFromImage(record.Change.NewImage)
		if err != nil {
			h.logger.Error("skipping malformed notification record", "eventId", record.EventID, "err", err)
			continue
		}
		if err := h.uc.Dispatch(ctx, notification); err != nil {
			h.logger.Error("notification dispatch failed",
				"notificationId", notification.NotificationID, "err", err)
		}
	}
	return nil
}

func notificationFromImage(image map[string]events.DynamoDBAttributeValue) (domain.Notification, error) {
	notificationID := imageString(image, "notificationId")
	userID := imageString(image, "userId")
	if notificationID == "" || userID == "" {
		return domain.Notification{}, errors.New("notification record missing notificationId or userId")
	}

	notification := domain.Notification{
		NotificationID: notificationID,
		UserID:         userID,
		Title:          imageString(image, "title"),
		Body:           imageString(image, "body"),
		Type:           imageString(image, "type"),
		ImageURL:       imageString(image, "imageUrl"),
	}

	if raw, ok := image["data"]; ok && raw.DataType() == events.DataTypeMap {
		data := map[string]string{}
		for k, v := range raw.Map() {
			if v.DataType() == events.DataTypeString {
				data[k] = v.String()
			}
		}
		notification.Data = data
	}
	return notification, nil
}

func imageString(image map[string]events.DynamoDBAttributeValue, key string) string {
	v, ok := image[key]
	if !ok || v.DataType() != events.DataTypeString {
		return ""
	}
	return v.String()
}
