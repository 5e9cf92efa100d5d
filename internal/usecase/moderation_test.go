package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"travel-social-functions/internal/domain"
)

type mockUsers struct {
	users      map[string]domain.User
	getErr     error
	allErr     error
	migrateErr map[string]error

	migrated map[string]domain.Badge
	levels   map[string]int
}

func newMockUsers(users ...domain.User) *mockUsers {
	m := &mockUsers{
		users:      map[string]domain.User{},
		migrateErr: map[string]error{},
		migrated:   map[string]domain.Badge{},
		levels:     map[string]int{},
	}
	for _, u := range users {
		m.users[u.UserID] = u
	}
	return m
}

func (m *mockUsers) Get(_ context.Context, userID string) (domain.User, bool, error) {
	if m.getErr != nil {
		return domain.User{}, false, m.getErr
	}
	u, ok := m.users[userID]
	return u, ok, nil
}

func (m *mockUsers) All(_ context.Context) ([]domain.User, error) {
	if m.allErr != nil {
		return nil, m.allErr
	}
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUsers) MigrateBadge(_ context.Context, userID string, badge domain.Badge, level int) error {
	if err := m.migrateErr[userID]; err != nil {
		return err
	}
	m.migrated[userID] = badge
	m.levels[userID] = level
	return nil
}

type mockMailer struct {
	messageID string
	err       error

	sentTo      string
	sentSubject string
	sentBody    string
	sendCount   int
}

func (m *mockMailer) Send(_ context.Context, to, subject, htmlBody string) (string, error) {
	m.sendCount++
	if m.err != nil {
		return "", m.err
	}
	m.sentTo = to
	m.sentSubject = subject
	m.sentBody = htmlBody
	return m.messageID, nil
}

type mockAuth struct {
	err error

	userID   string
	disabled bool
	calls    int
}

func (m *mockAuth) SetDisabled(_ context.Context, userID string, disabled bool) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.userID = userID
	m.disabled = disabled
	return nil
}

type mockDeliveryLog struct {
	emailErr error
	auditErr error

	emails []domain.EmailRecord
	audits []domain.AuditRecord
}

func (m *mockDeliveryLog) RecordEmail(_ context.Context, rec domain.EmailRecord) error {
	if m.emailErr != nil {
		return m.emailErr
	}
	m.emails = append(m.emails, rec)
	return nil
}

func (m *mockDeliveryLog) RecordAudit(_ context.Context, rec domain.AuditRecord) error {
	if m.auditErr != nil {
		return m.auditErr
	}
	m.audits = append(m.audits, rec)
	return nil
}

func newTestModeration(t *testing.T, users UserStore, mailer Mailer, auth AuthAdmin, log DeliveryLog) *ModerationService {
	t.Helper()
	svc, err := NewModerationService(users, mailer, auth, log, nil)
	require.NoError(t, err)
	return svc
}

func fixedNow(t *testing.T, at time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = orig })
}

func TestSendWarningEmail_HappyPath(t *testing.T) {
	fixedNow(t, time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC))
	users := newMockUsers(domain.User{UserID: "user-1", Email: "u@example.com", Name: "Minh"})
	mailer := &mockMailer{messageID: "msg-123"}
	log := &mockDeliveryLog{}
	svc := newTestModeration(t, users, mailer, &mockAuth{}, log)

	out, err := svc.SendWarningEmail(context.Background(), ViolationEmailInput{
		CallerID:      "admin-1",
		UserID:        "user-1",
		ViolationType: "spam",
		Reason:        "Đăng quảng cáo liên tục",
		WarningCount:  2,
	})
	require.NoError(t, err)
	require.True(t, out.Sent)
	require.Equal(t, "msg-123", out.MessageID)

	require.Equal(t, "u@example.com", mailer.sentTo)
	require.Equal(t, "⚠️ Cảnh cáo vi phạm - Travel Social App", mailer.sentSubject)
	require.Contains(t, mailer.sentBody, "Minh")
	require.Contains(t, mailer.sentBody, "Spam, quảng cáo")
	require.Contains(t, mailer.sentBody, "Đăng quảng cáo liên tục")
	require.Contains(t, mailer.sentBody, "20 điểm")
	require.Contains(t, mailer.sentBody, "2 lần")
	// Timestamp is rendered in Vietnam local time.
	require.Contains(t, mailer.sentBody, "01/06/2025 12:00:00")

	require.Len(t, log.emails, 1)
	require.Equal(t, "warning", log.emails[0].Type)
	require.Equal(t, "user-1", log.emails[0].UserID)
	require.Equal(t, "msg-123", log.emails[0].MessageID)
	require.Equal(t, "sent", log.emails[0].Status)
}

func TestSendBanEmail_HappyPath(t *testing.T) {
	users := newMockUsers(domain.User{UserID: "user-1", Email: "u@example.com"})
	mailer := &mockMailer{messageID: "msg-9"}
	log := &mockDeliveryLog{}
	svc := newTestModeration(t, users, mailer, &mockAuth{}, log)

	out, err := svc.SendBanEmail(context.Background(), ViolationEmailInput{
		CallerID:      "admin-1",
		UserID:        "user-1",
		ViolationType: "hate_speech",
	})
	require.NoError(t, err)
	require.True(t, out.Sent)
	require.Equal(t, "🚫 Tài khoản bị cấm - Travel Social App", mailer.sentSubject)
	require.Contains(t, mailer.sentBody, "TÀI KHOẢN BỊ CẤM")
	// Missing name and reason fall back to defaults.
	require.Contains(t, mailer.sentBody, "Người dùng")
	require.Contains(t, mailer.sentBody, "Vi phạm nghiêm trọng nội quy cộng đồng")
	require.Contains(t, mailer.sentBody, "Phát ngôn thù địch")
	require.Equal(t, "ban", log.emails[0].Type)
}

func TestSendViolationEmail_NoEmailAddress_IsSoftSuccess(t *testing.T) {
	users := newMockUsers(domain.User{UserID: "user-1"})
	mailer := &mockMailer{}
	svc := newTestModeration(t, users, mailer, &mockAuth{}, &mockDeliveryLog{})

	out, err := svc.SendWarningEmail(context.Background(), ViolationEmailInput{
		CallerID:      "admin-1",
		UserID:        "user-1",
		ViolationType: "spam",
	})
	require.NoError(t, err)
	require.False(t, out.Sent)
	require.Equal(t, "User has no email address", out.Message)
	require.Zero(t, mailer.sendCount)
}

func TestSendViolationEmail_Errors(t *testing.T) {
	users := newMockUsers(domain.User{UserID: "user-1", Email: "u@example.com"})
	svc := newTestModeration(t, users, &mockMailer{}, &mockAuth{}, &mockDeliveryLog{})

	_, err := svc.SendWarningEmail(context.Background(), ViolationEmailInput{UserID: "user-1", ViolationType: "spam"})
	expectUsecaseError(t, err, ErrorUnauthenticated, "missing_caller")

	_, err = svc.SendWarningEmail(context.Background(), ViolationEmailInput{CallerID: "admin-1", ViolationType: "spam"})
	expectUsecaseError(t, err, ErrorInvalidArgument, "missing_user_or_violation_type")

	_, err = svc.SendWarningEmail(context.Background(), ViolationEmailInput{CallerID: "admin-1", UserID: "user-1"})
	expectUsecaseError(t, err, ErrorInvalidArgument, "missing_user_or_violation_type")

	_, err = svc.SendWarningEmail(context.Background(), ViolationEmailInput{CallerID: "admin-1", UserID: "ghost", ViolationType: "spam"})
	expectUsecaseError(t, err, ErrorNotFound, "user_not_found")

	failing := newMockUsers()
	failing.getErr = errors.New("dynamodb down")
	svc = newTestModeration(t, failing, &mockMailer{}, &mockAuth{}, &mockDeliveryLog{})
	_, err = svc.SendWarningEmail(context.Background(), ViolationEmailInput{CallerID: "admin-1", UserID: "user-1", ViolationType: "spam"})
	expectUsecaseError(t, err, ErrorInternal, "user_read_error")

	svc = newTestModeration(t, users, &mockMailer{err: errors.New("smtp refused")}, &mockAuth{}, &mockDeliveryLog{})
	_, err = svc.SendBanEmail(context.Background(), ViolationEmailInput{CallerID: "admin-1", UserID: "user-1", ViolationType: "spam"})
	expectUsecaseError(t, err, ErrorInternal, "email_send_error")

	svc = newTestModeration(t, users, &mockMailer{}, &mockAuth{}, &mockDeliveryLog{emailErr: errors.New("write failed")})
	_, err = svc.SendWarningEmail(context.Background(), ViolationEmailInput{CallerID: "admin-1", UserID: "user-1", ViolationType: "spam"})
	expectUsecaseError(t, err, ErrorInternal, "email_log_error")
}

func TestSendViolationEmail_UnknownViolationType_PassesThrough(t *testing.T) {
	users := newMockUsers(domain.User{UserID: "user-1", Email: "u@example.com"})
	mailer := &mockMailer{}
	svc := newTestModeration(t, users, mailer, &mockAuth{}, &mockDeliveryLog{})

	_, err := svc.SendWarningEmail(context.Background(), ViolationEmailInput{
		CallerID:      "admin-1",
		UserID:        "user-1",
		ViolationType: "something_new",
	})
	require.NoError(t, err)
	require.Contains(t, mailer.sentBody, "something_new")
	// Unknown types get the default penalty.
	require.Contains(t, mailer.sentBody, "25 điểm")
}

func TestSetAuthDisabled(t *testing.T) {
	auth := &mockAuth{}
	log := &mockDeliveryLog{}
	svc := newTestModeration(t, newMockUsers(), &mockMailer{}, auth, log)

	disabled, err := svc.SetAuthDisabled(context.Background(), AuthToggleInput{CallerID: "admin-1", UserID: "user-1", Disable: true})
	require.NoError(t, err)
	require.True(t, disabled)
	require.Equal(t, "user-1", auth.userID)
	require.True(t, auth.disabled)
	require.Len(t, log.audits, 1)
	require.Equal(t, "disable_auth", log.audits[0].Action)
	require.Equal(t, "user-1", log.audits[0].TargetUserID)
	require.Equal(t, "admin-1", log.audits[0].AdminID)

	disabled, err = svc.SetAuthDisabled(context.Background(), AuthToggleInput{CallerID: "admin-1", UserID: "user-1", Disable: false})
	require.NoError(t, err)
	require.False(t, disabled)
	require.Equal(t, "enable_auth", log.audits[1].Action)
}

func TestSetAuthDisabled_Errors(t *testing.T) {
	svc := newTestModeration(t, newMockUsers(), &mockMailer{}, &mockAuth{}, &mockDeliveryLog{})

	_, err := svc.SetAuthDisabled(context.Background(), AuthToggleInput{UserID: "user-1"})
	expectUsecaseError(t, err, ErrorUnauthenticated, "missing_caller")

	_, err = svc.SetAuthDisabled(context.Background(), AuthToggleInput{CallerID: "admin-1"})
	expectUsecaseError(t, err, ErrorInvalidArgument, "missing_user_id")

	svc = newTestModeration(t, newMockUsers(), &mockMailer{}, &mockAuth{err: errors.New("cognito down")}, &mockDeliveryLog{})
	_, err = svc.SetAuthDisabled(context.Background(), AuthToggleInput{CallerID: "admin-1", UserID: "user-1", Disable: true})
	expectUsecaseError(t, err, ErrorInternal, "auth_update_error")

	svc = newTestModeration(t, newMockUsers(), &mockMailer{}, &mockAuth{}, &mockDeliveryLog{auditErr: errors.New("write failed")})
	_, err = svc.SetAuthDisabled(context.Background(), AuthToggleInput{CallerID: "admin-1", UserID: "user-1", Disable: true})
	expectUsecaseError(t, err, ErrorInternal, "audit_log_error")
}

func TestRenderViolationEmail_StylesDifferByKind(t *testing.T) {
	data := emailData{UserName: "Minh", ViolationText: "Spam", Reason: "r", PenaltyPoints: 20, WarningCount: 1, Timestamp: "01/01/2025 00:00:00"}

	warning, err := renderViolationEmail(emailKindWarning, data)
	require.NoError(t, err)
	require.Contains(t, warning, "#ff9800")
	require.Contains(t, warning, "#fff3cd")

	ban, err := renderViolationEmail(emailKindBan, data)
	require.NoError(t, err)
	require.Contains(t, ban, "#d32f2f")
	require.Contains(t, ban, "#ffebee")
}

func TestRenderViolationEmail_EscapesUserContent(t *testing.T) {
	body, err := renderViolationEmail(emailKindWarning, emailData{
		UserName: "<script>alert(1)</script>",
		Reason:   "a & b",
	})
	require.NoError(t, err)
	require.NotContains(t, body, "<script>alert(1)</script>")
	require.Contains(t, body, "&lt;script&gt;")
}

func TestRenderViolationEmail_EmptyAdminNote(t *testing.T) {
	body, err := renderViolationEmail(emailKindBan, emailData{UserName: "x"})
	require.NoError(t, err)
	require.Contains(t, body, "Không có")
}
