package usecase

import "travel-social-functions/internal/domain"

// badgeTier is one row of the monotonic point-threshold table.
type badgeTier struct {
	id             string
	name           string
	description    string
	icon           string
	requiredPoints int
	color          string
	level          int
}

// badgeTiers is ordered highest threshold first; BadgeForPoints picks the
// first tier whose requirement the point total meets. Negative totals fall
// through to needs_improvement.
var badgeTiers = []badgeTier{
	{"godlike", "Thần thoại", "Huyền thoại của cộng đồng", "💎", 200000, "#9D4EDD", 10},
	{"grandmaster", "Đại tông sư", "Đỉnh cao du lịch", "⭐", 100000, "#FF6B6B", 9},
	{"legend", "Huyền thoại", "Đóng góp xuất sắc", "🏆", 50000, "#FFA500", 8},
	{"master", "Bậc thầy", "Thành thạo mọi lĩnh vực", "👑", 20000, "#FFD700", 7},
	{"expert", "Chuyên gia", "Kiến thức sâu rộng", "🎓", 10000, "#3A5BA0", 6},
	{"guide", "Hướng dẫn viên", "Chia sẻ kinh nghiệm", "🗺️", 5000, "#4A7BA7", 5},
	{"adventurer", "Phiêu lưu gia", "Dám thử thách", "⛰️", 2500, "#5B9BD5", 4},
	{"traveler", "Du khách", "Đang trên đường", "🎒", 1000, "#6FB6D9", 3},
	{"explorer", "Nhà khám phá", "Bắt đầu hành trình", "🧭", 500, "#7FCDCD", 2},
	{"newbie", "Người mới", "Chào mừng đến với cộng đồng", "🌱", 0, "#A0D8B3", 1},
}

var needsImprovementTier = badgeTier{
	"needs_improvement", "Cần cải thiện", "Hãy cố gắng đóng góp tích cực hơn", "⚠️", -999999, "#FF4444", 0,
}

// BadgeForPoints derives the badge a point total earns, carrying the total
// into CurrentPoints.
func BadgeForPoints(points int) domain.Badge {
	tier := needsImprovementTier
	if points >= 0 {
		for _, t := range badgeTiers {
			if points >= t.requiredPoints {
				tier = t
				break
			}
		}
	}
	return domain.Badge{
		BadgeID:        tier.id,
		Name:           tier.name,
		Description:    tier.description,
		Icon:           tier.icon,
		RequiredPoints: tier.requiredPoints,
		Color:          tier.color,
		Level:          tier.level,
		CurrentPoints:  points,
	}
}
