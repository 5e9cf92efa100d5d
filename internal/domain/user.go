package domain

// Badge is the gamification rank attached to a user record.
type Badge struct {
	BadgeID        string `json:"badgeId"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Icon           string `json:"icon"`
	RequiredPoints int    `json:"requiredPoints"`
	Color          string `json:"color"`
	Level          int    `json:"level"`
	CurrentPoints  int    `json:"currentPoints"`
}

// User is the subset of a user record the handlers consume. LegacyPoints and
// LegacyTotalPoints carry the deprecated gamification fields until the
// one-time migration removes them; HasLegacyPoints distinguishes "absent"
// from zero.
type User struct {
	UserID           string
	Email            string
	Name             string
	Role             string
	FCMToken         string
	Badge            *Badge
	Level            int
	LegacyPoints     int
	LegacyTotal      int
	HasLegacyPoints  bool
	HasLegacyTotal   bool
}
