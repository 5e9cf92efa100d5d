package usecase

import "strings"

// weatherKeywords gate the city scan: without one of these in the message the
// assistant never calls the weather API.
var weatherKeywords = []string{
	"thời tiết",
	"nhiệt độ",
	"nóng",
	"lạnh",
	"mưa",
	"nắng",
	"weather",
	"temperature",
}

// cityVariants is scanned in order; the first variant contained in the
// message wins. Diacritic forms come before their plain-ASCII spellings.
var cityVariants = []string{
	"hà nội",
	"hồ chí minh",
	"đà nẵng",
	"hải phòng",
	"cần thơ",
	"nha trang",
	"đà lạt",
	"vũng tàu",
	"huế",
	"sài gòn",
	"hanoi",
	"saigon",
	"ho chi minh",
	"danang",
	"haiphong",
	"cantho",
}

// cityAliases maps every variant to the canonical English name the weather
// API expects.
var cityAliases = map[string]string{
	"hà nội":      "Hanoi",
	"hanoi":       "Hanoi",
	"hồ chí minh": "Ho Chi Minh",
	"sài gòn":     "Ho Chi Minh",
	"saigon":      "Ho Chi Minh",
	"ho chi minh": "Ho Chi Minh",
	"đà nẵng":     "Da Nang",
	"danang":      "Da Nang",
	"hải phòng":   "Hai Phong",
	"haiphong":    "Hai Phong",
	"cần thơ":     "Can Tho",
	"cantho":      "Can Tho",
	"nha trang":   "Nha Trang",
	"đà lạt":      "Da Lat",
	"vũng tàu":    "Vung Tau",
	"huế":         "Hue",
}

// ExtractCity returns the canonical city name a weather-intent message refers
// to, or "" when the message carries no weather keyword or names no known
// city. Pure and deterministic: variant list order breaks ties.
func ExtractCity(message string) string {
	lower := strings.ToLower(message)

	hasKeyword := false
	for _, kw := range weatherKeywords {
		if strings.Contains(lower, kw) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return ""
	}

	for _, variant := range cityVariants {
		if strings.Contains(lower, variant) {
			if canonical, ok := cityAliases[variant]; ok {
				return canonical
			}
			return variant
		}
	}
	return ""
}
