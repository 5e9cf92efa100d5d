package usecase

import (
	"context"
	"errors"
	"log/slog"

	"travel-social-functions/internal/domain"
)

// Pusher sends one push message and returns the provider's message id.
type Pusher interface {
	Send(ctx context.Context, msg domain.PushMessage) (string, error)
}

// NotificationService resolves a notification record's recipient and pushes
// it to their device.
type NotificationService struct {
	users  UserStore
	push   Pusher
	logger *slog.Logger
}

func NewNotificationService(users UserStore, push Pusher, logger *slog.Logger) (*NotificationService, error) {
	if users == nil {
		return nil, errors.New("usecase: user store must not be nil")
	}
	if push == nil {
		return nil, errors.New("usecase: pusher must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{users: users, push: push, logger: logger}, nil
}

// Dispatch pushes one notification. A missing user or missing device token is
// a no-op, not an error.
func (s *NotificationService) Dispatch(ctx context.Context, n domain.Notification) error {
	s.logger.Info("new notification created", "notificationId", n.NotificationID, "userId", n.UserID)

	user, found, err := s.users.Get(ctx, n.UserID)
	if err != nil {
		return newError(ErrorInternal, "user_read_error", err)
	}
	if !found {
		s.logger.Warn("notification recipient not found", "userId", n.UserID)
		return nil
	}
	if user.FCMToken == "" {
		s.logger.Warn("notification recipient has no device token", "userId", n.UserID)
		return nil
	}

	data := map[string]string{
		"notificationId": n.NotificationID,
		"type":           n.Type,
	}
	for k, v := range n.Data {
		data[k] = v
	}

	messageID, err := s.push.Send(ctx, domain.PushMessage{
		Token:    user.FCMToken,
		Title:    n.Title,
		Body:     n.Body,
		ImageURL: n.ImageURL,
		Data:     data,
	})
	if err != nil {
		return newError(ErrorInternal, "push_send_error", err)
	}
	s.logger.Info("notification sent", "notificationId", n.NotificationID, "messageId", messageID)
	return nil
}
