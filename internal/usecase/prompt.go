package usecase

import (
	"fmt"
	"strings"
	"time"

	"travel-social-functions/internal/domain"
)

// vietnamTime returns now in the Vietnam timezone. The IANA database may be
// absent from a stripped Lambda image, so fall back to a fixed UTC+7 zone.
func vietnamTime(now time.Time) time.Time {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		loc = time.FixedZone("ICT", 7*60*60)
	}
	return now.In(loc)
}

var vietnameseWeekdays = [...]string{
	"Chủ Nhật", "Thứ Hai", "Thứ Ba", "Thứ Tư", "Thứ Năm", "Thứ Sáu", "Thứ Bảy",
}

func vietnameseDate(t time.Time) string {
	return fmt.Sprintf("%s, ngày %d tháng %d năm %d",
		vietnameseWeekdays[t.Weekday()], t.Day(), int(t.Month()), t.Year())
}

// renderWeatherBlock formats a snapshot as the bracketed context block the
// system prompt embeds.
func renderWeatherBlock(w domain.WeatherSnapshot) string {
	return strings.Join([]string{
		fmt.Sprintf("[Thông tin thời tiết thực tế - %s]", w.City),
		fmt.Sprintf("- Nhiệt độ: %.1f°C (Cảm giác như %.1f°C)", w.Temperature, w.FeelsLike),
		fmt.Sprintf("- Mô tả: %s", w.Description),
		fmt.Sprintf("- Độ ẩm: %d%%", w.Humidity),
		fmt.Sprintf("- Tốc độ gió: %.1f m/s", w.WindSpeed),
	}, "\n")
}

// buildSystemPrompt assembles the persona prompt: current Vietnam-local
// date/time, optional caller-supplied context, the fixed behavior policy and,
// when present, the weather block.
func buildSystemPrompt(now time.Time, userContext, weatherBlock string) string {
	local := vietnamTime(now)

	sections := []string{
		"Bạn là TravelBot - trợ lý du lịch thông minh và cá nhân hóa tại Việt Nam.",
		"",
		"THÔNG TIN THỜI GIAN:",
		"- Ngày hiện tại: " + vietnameseDate(local),
		"- Giờ hiện tại: " + local.Format("15:04") + " (Múi giờ Việt Nam)",
	}

	if ctx := strings.TrimSpace(userContext); ctx != "" {
		sections = append(sections, "", ctx)
	}

	sections = append(sections,
		"",
		"VAI TRÒ & PHẠM VI:",
		"- Chỉ trả lời các câu hỏi liên quan đến DU LỊCH",
		"- Tập trung vào các địa điểm, trải nghiệm du lịch tại Việt Nam",
		"- Có thể tư vấn về du lịch quốc tế nhưng ưu tiên Việt Nam",
		"- Từ chối lịch sự các câu hỏi ngoài phạm vi du lịch",
		"- ƯU TIÊN sử dụng thông tin từ THÔNG TIN NGƯỜI DÙNG và danh sách địa điểm có sẵn trong hệ thống",
		"",
		"NHIỆM VỤ CHÍNH:",
		"1. Tư vấn địa điểm du lịch (bãi biển, núi non, di tích lịch sử)",
		"2. Gợi ý khách sạn, resort, nhà nghỉ phù hợp ngân sách",
		"3. Giới thiệu ẩm thực địa phương, nhà hàng nổi tiếng",
		"4. Cung cấp thông tin thời tiết khi có dữ liệu",
		"5. Lập lịch trình du lịch chi tiết (1-7 ngày)",
		"6. Chia sẻ kinh nghiệm: đi lại, mua sắm, giá cả",
		"7. Tư vấn hoạt động: lặn biển, leo núi, tham quan",
		"8. Hướng dẫn văn hóa, phong tục địa phương",
		"",
		"NGUYÊN TẮC TRẢ LỜI:",
		"- Ngắn gọn (2-5 câu), dễ hiểu, TRỪ KHI được yêu cầu chi tiết",
		"- Thực tế, có thể áp dụng được",
		"- CỰC KỲ ƯU TIÊN đề xuất các địa điểm trong danh sách \"ĐỊA ĐIỂM GỢI Ý\" và \"ĐỊA ĐIỂM PHỔ BIẾN\"",
		"- Cân nhắc VỊ TRÍ HIỆN TẠI và SỞ THÍCH của người dùng",
		"- Cung cấp giá tham khảo nếu có thể",
		"- Gợi ý nhiều lựa chọn (budget, mid-range, luxury)",
		"- Sử dụng emoji phù hợp để sinh động",
		"- Luôn kết thúc bằng \"Bạn cần tôi tư vấn thêm gì không?\"",
		"",
		"KHÔNG TRẢ LỜI:",
		"- Các câu hỏi về chính trị, tôn giáo nhạy cảm",
		"- Lập trình, toán học, khoa học không liên quan du lịch",
		"- Y tế, pháp lý (chỉ lời khuyên chung cho du khách)",
		"- Nội dung không phù hợp, bạo lực",
	)

	if weatherBlock != "" {
		sections = append(sections, "", "THÔNG TIN THỜI TIẾT:", weatherBlock)
	}

	return strings.Join(sections, "\n")
}
