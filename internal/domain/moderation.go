package domain

import "time"

// EmailRecord is the delivery log entry written after a moderation email.
type EmailRecord struct {
	Type           string
	UserID         string
	RecipientEmail string
	Subject        string
	ViolationType  string
	MessageID      string
	Status         string
	SentAt         time.Time
}

// AuditRecord logs an administrative action against a user account.
type AuditRecord struct {
	Action       string
	TargetUserID string
	AdminID      string
	Timestamp    time.Time
}

// PushMessage is the provider-level shape of one push notification.
type PushMessage struct {
	Token    string
	Title    string
	Body     string
	ImageURL string
	Data     map[string]string
}
