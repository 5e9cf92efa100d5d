package domain

// Notification is one record created under the notifications table whose
// insertion triggers a push to its recipient.
type Notification struct {
	NotificationID string
	UserID         string
	Title          string
	Body           string
	Type           string
	Data           map[string]string
	ImageURL       string
}
