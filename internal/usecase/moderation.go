package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"travel-social-functions/internal/domain"
)

// UserStore reads and mutates user records in the document store.
type UserStore interface {
	Get(ctx context.Context, userID string) (domain.User, bool, error)
	All(ctx context.Context) ([]domain.User, error)
	MigrateBadge(ctx context.Context, userID string, badge domain.Badge, level int) error
}

// Mailer delivers one HTML email and reports the message id it was sent under.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) (string, error)
}

// AuthAdmin flips the enabled/disabled flag on an external auth account.
type AuthAdmin interface {
	SetDisabled(ctx context.Context, userID string, disabled bool) error
}

// DeliveryLog records moderation side effects for later audit.
type DeliveryLog interface {
	RecordEmail(ctx context.Context, rec domain.EmailRecord) error
	RecordAudit(ctx context.Context, rec domain.AuditRecord) error
}

// ModerationService sends violation emails and toggles account access.
type ModerationService struct {
	users  UserStore
	mailer Mailer
	auth   AuthAdmin
	log    DeliveryLog
	logger *slog.Logger
}

type ViolationEmailInput struct {
	CallerID      string
	UserID        string
	ViolationType string
	Reason        string
	AdminNote     string
	WarningCount  int
}

// EmailOutput distinguishes delivery from the soft no-email case: Sent=false
// with a Message is a success response, not an error.
type EmailOutput struct {
	Sent      bool
	MessageID string
	Message   string
}

type AuthToggleInput struct {
	CallerID string
	UserID   string
	Disable  bool
}

func NewModerationService(users UserStore, mailer Mailer, auth AuthAdmin, log DeliveryLog, logger *slog.Logger) (*ModerationService, error) {
	if users == nil {
		return nil, errors.New("usecase: user store must not be nil")
	}
	if mailer == nil {
		return nil, errors.New("usecase: mailer must not be nil")
	}
	if auth == nil {
		return nil, errors.New("usecase: auth admin must not be nil")
	}
	if log == nil {
		return nil, errors.New("usecase: delivery log must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ModerationService{users: users, mailer: mailer, auth: auth, log: log, logger: logger}, nil
}

// SendWarningEmail delivers the warning template to the violating user.
func (s *ModerationService) SendWarningEmail(ctx context.Context, in ViolationEmailInput) (EmailOutput, error) {
	return s.sendViolationEmail(ctx, in, emailKindWarning)
}

// SendBanEmail delivers the ban template to the banned user.
func (s *ModerationService) SendBanEmail(ctx context.Context, in ViolationEmailInput) (EmailOutput, error) {
	return s.sendViolationEmail(ctx, in, emailKindBan)
}

func (s *ModerationService) sendViolationEmail(ctx context.Context, in ViolationEmailInput, kind emailKind) (EmailOutput, error) {
	if strings.TrimSpace(in.CallerID) == "" {
		return EmailOutput{}, newError(ErrorUnauthenticated, "missing_caller", nil)
	}
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.ViolationType) == "" {
		return EmailOutput{}, newError(ErrorInvalidArgument, "missing_user_or_violation_type", nil)
	}

	user, found, err := s.users.Get(ctx, in.UserID)
	if err != nil {
		return EmailOutput{}, newError(ErrorInternal, "user_read_error", err)
	}
	if !found {
		return EmailOutput{}, newError(ErrorNotFound, "user_not_found", nil)
	}
	if user.Email == "" {
		s.logger.Warn("user has no email address", "userId", in.UserID)
		return EmailOutput{Sent: false, Message: "User has no email address"}, nil
	}

	body, err := renderViolationEmail(kind, emailData{
		UserName:      displayName(user),
		ViolationText: violationTypeText(in.ViolationType),
		Reason:        reasonOrDefault(kind, in.Reason),
		AdminNote:     in.AdminNote,
		PenaltyPoints: penaltyPoints(in.ViolationType),
		WarningCount:  warningCountOrDefault(in.WarningCount),
		Timestamp:     vietnamTime(timeNow()).Format("02/01/2006 15:04:05"),
	})
	if err != nil {
		return EmailOutput{}, newError(ErrorInternal, "email_render_error", err)
	}

	subject := kind.subject()
	messageID, err := s.mailer.Send(ctx, user.Email, subject, body)
	if err != nil {
		return EmailOutput{}, newError(ErrorInternal, "email_send_error", err)
	}
	s.logger.Info("moderation email sent", "type", string(kind), "userId", in.UserID, "messageId", messageID)

	if err := s.log.RecordEmail(ctx, domain.EmailRecord{
		Type:           string(kind),
		UserID:         in.UserID,
		RecipientEmail: user.Email,
		Subject:        subject,
		ViolationType:  in.ViolationType,
		MessageID:      messageID,
		Status:         "sent",
		SentAt:         timeNow().UTC(),
	}); err != nil {
		return EmailOutput{}, newError(ErrorInternal, "email_log_error", err)
	}

	return EmailOutput{Sent: true, MessageID: messageID}, nil
}

// SetAuthDisabled flips account access and writes an audit record.
func (s *ModerationService) SetAuthDisabled(ctx context.Context, in AuthToggleInput) (bool, error) {
	if strings.TrimSpace(in.CallerID) == "" {
		return false, newError(ErrorUnauthenticated, "missing_caller", nil)
	}
	if strings.TrimSpace(in.UserID) == "" {
		return false, newError(ErrorInvalidArgument, "missing_user_id", nil)
	}

	if err := s.auth.SetDisabled(ctx, in.UserID, in.Disable); err != nil {
		return false, newError(ErrorInternal, "auth_update_error", err)
	}

	action := "enable_auth"
	if in.Disable {
		action = "disable_auth"
	}
	s.logger.Info("user auth updated", "userId", in.UserID, "action", action)

	if err := s.log.RecordAudit(ctx, domain.AuditRecord{
		Action:       action,
		TargetUserID: in.UserID,
		AdminID:      in.CallerID,
		Timestamp:    timeNow().UTC(),
	}); err != nil {
		return false, newError(ErrorInternal, "audit_log_error", err)
	}
	return in.Disable, nil
}

func displayName(u domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return "Người dùng"
}

func reasonOrDefault(kind emailKind, reason string) string {
	if strings.TrimSpace(reason) != "" {
		return reason
	}
	if kind == emailKindBan {
		return "Vi phạm nghiêm trọng nội quy cộng đồng"
	}
	return "Không có lý do cụ thể"
}

func warningCountOrDefault(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}
