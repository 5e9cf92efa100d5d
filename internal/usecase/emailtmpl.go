package usecase

import (
	"fmt"
	"html/template"
	"strings"
)

type emailKind string

const (
	emailKindWarning emailKind = "warning"
	emailKindBan     emailKind = "ban"
)

func (k emailKind) subject() string {
	if k == emailKindBan {
		return "🚫 Tài khoản bị cấm - Travel Social App"
	}
	return "⚠️ Cảnh cáo vi phạm - Travel Social App"
}

// violationTypeText maps violation codes to their Vietnamese display text.
// Unknown codes pass through as-is.
func violationTypeText(violationType string) string {
	texts := map[string]string{
		"pornographic":   "Nội dung khiêu dâm",
		"misinformation": "Thông tin sai lệch",
		"harassment":     "Quấy rối, bắt nạt",
		"spam":           "Spam, quảng cáo",
		"violence":       "Bạo lực, nguy hiểm",
		"hate_speech":    "Phát ngôn thù địch",
		"copyright":      "Vi phạm bản quyền",
		"other":          "Vi phạm khác",
	}
	if text, ok := texts[violationType]; ok {
		return text
	}
	return violationType
}

// penaltyPoints returns the points deducted for a violation, as a positive
// number for display.
func penaltyPoints(violationType string) int {
	penalties := map[string]int{
		"pornographic":   50,
		"misinformation": 30,
		"harassment":     40,
		"spam":           20,
		"violence":       45,
		"hate_speech":    40,
		"copyright":      35,
		"other":          25,
	}
	if p, ok := penalties[violationType]; ok {
		return p
	}
	return 25
}

type emailData struct {
	UserName      string
	ViolationText string
	Reason        string
	AdminNote     string
	PenaltyPoints int
	WarningCount  int
	Timestamp     string
}

const emailStyle = `body { font-family: 'Segoe UI', Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; }
.header { background-color: {{.HeaderColor}}; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
.content { background-color: white; padding: 30px; border-radius: 0 0 8px 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.notice-box { background-color: {{.BoxColor}}; border-left: 4px solid {{.HeaderColor}}; padding: 15px; margin: 20px 0; }
.info-table { width: 100%; border-collapse: collapse; margin: 20px 0; }
.info-table td { padding: 10px; border-bottom: 1px solid #eee; }
.info-table td:first-child { font-weight: bold; width: 40%; color: #666; }
.footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
.button { display: inline-block; padding: 12px 24px; background-color: #2196F3; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }`

var warningEmailTmpl = template.Must(template.New("warning").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <style>{{template "style" .Style}}</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>⚠️ CẢNH CÁO VI PHẠM</h1>
    </div>
    <div class="content">
      <p>Xin chào <strong>{{.UserName}}</strong>,</p>
      <div class="notice-box">
        <p><strong>Tài khoản của bạn đã nhận được cảnh cáo vi phạm nội quy cộng đồng Travel Social App.</strong></p>
      </div>
      <table class="info-table">
        <tr><td>Loại vi phạm:</td><td><strong>{{.ViolationText}}</strong></td></tr>
        <tr><td>Lý do:</td><td>{{.Reason}}</td></tr>
        <tr><td>Ghi chú từ Admin:</td><td>{{if .AdminNote}}{{.AdminNote}}{{else}}Không có{{end}}</td></tr>
        <tr><td>Điểm bị trừ:</td><td><span style="color: red; font-weight: bold;">{{.PenaltyPoints}} điểm</span></td></tr>
        <tr><td>Số lần cảnh cáo:</td><td><span style="color: #ff9800; font-weight: bold;">{{.WarningCount}} lần</span></td></tr>
        <tr><td>Thời gian:</td><td>{{.Timestamp}}</td></tr>
      </table>
      <h3>⚠️ Lưu ý quan trọng:</h3>
      <ul>
        <li>Đây là <strong>cảnh cáo chính thức</strong> từ hệ thống.</li>
        <li>Nếu tiếp tục vi phạm, tài khoản của bạn có thể bị <strong>tạm khóa hoặc xóa vĩnh viễn</strong>.</li>
        <li>Vui lòng tuân thủ <a href="https://travelsocialapp.com/community-guidelines">nội quy cộng đồng</a>.</li>
        <li>Điểm của bạn đã bị trừ {{.PenaltyPoints}} điểm.</li>
      </ul>
      <p>Nếu bạn cho rằng đây là nhầm lẫn, vui lòng liên hệ:</p>
      <a href="mailto:support@travelsocialapp.com" class="button">Liên hệ hỗ trợ</a>
      <div class="footer">
        <p>Email này được gửi tự động từ hệ thống Travel Social App.<br>
        Vui lòng không trả lời email này.</p>
      </div>
    </div>
  </div>
</body>
</html>`))

var banEmailTmpl = template.Must(template.New("ban").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <style>{{template "style" .Style}}</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>🚫 TÀI KHOẢN BỊ CẤM</h1>
    </div>
    <div class="content">
      <p>Xin chào <strong>{{.UserName}}</strong>,</p>
      <div class="notice-box">
        <p><strong>Tài khoản của bạn đã bị cấm truy cập vào Travel Social App do vi phạm nghiêm trọng nội quy cộng đồng.</strong></p>
      </div>
      <table class="info-table">
        <tr><td>Loại vi phạm:</td><td><strong style="color: #d32f2f;">{{.ViolationText}}</strong></td></tr>
        <tr><td>Lý do cấm:</td><td>{{.Reason}}</td></tr>
        <tr><td>Ghi chú từ Admin:</td><td>{{if .AdminNote}}{{.AdminNote}}{{else}}Không có{{end}}</td></tr>
        <tr><td>Điểm bị trừ:</td><td><span style="color: red; font-weight: bold;">{{.PenaltyPoints}} điểm</span></td></tr>
        <tr><td>Tổng số lần vi phạm:</td><td><span style="color: #d32f2f; font-weight: bold;">{{.WarningCount}} lần</span></td></tr>
        <tr><td>Thời gian cấm:</td><td>{{.Timestamp}}</td></tr>
      </table>
      <h3>❌ Hậu quả:</h3>
      <ul>
        <li>Tài khoản của bạn <strong>không thể đăng nhập</strong>.</li>
        <li>Tất cả nội dung vi phạm đã bị <strong>xóa</strong>.</li>
        <li>Bạn <strong>không thể tạo tài khoản mới</strong> với email này.</li>
        <li>Quyết định này có thể là <strong>vĩnh viễn</strong>.</li>
      </ul>
      <h3>📞 Khiếu nại:</h3>
      <p>Nếu bạn cho rằng đây là nhầm lẫn hoặc muốn kháng nghị, vui lòng liên hệ:</p>
      <a href="mailto:support@travelsocialapp.com?subject=Khiếu%20nại%20tài%20khoản%20bị%20cấm" class="button">Gửi khiếu nại</a>
      <p style="color: #666; font-size: 14px; margin-top: 20px;">
        <em>Lưu ý: Chúng tôi sẽ xem xét khiếu nại trong vòng 5-7 ngày làm việc. Vui lòng cung cấp đầy đủ thông tin để hỗ trợ nhanh hơn.</em>
      </p>
      <div class="footer">
        <p>Email này được gửi tự động từ hệ thống Travel Social App.<br>
        Vui lòng không trả lời email này.</p>
      </div>
    </div>
  </div>
</body>
</html>`))

type emailStyleData struct {
	HeaderColor template.CSS
	BoxColor    template.CSS
}

type emailTemplateData struct {
	emailData
	Style emailStyleData
}

func init() {
	// The shared stylesheet is an associated template of both email bodies.
	template.Must(warningEmailTmpl.New("style").Parse(emailStyle))
	template.Must(banEmailTmpl.New("style").Parse(emailStyle))
}

func renderViolationEmail(kind emailKind, data emailData) (string, error) {
	tmpl := warningEmailTmpl
	style := emailStyleData{HeaderColor: "#ff9800", BoxColor: "#fff3cd"}
	if kind == emailKindBan {
		tmpl = banEmailTmpl
		style = emailStyleData{HeaderColor: "#d32f2f", BoxColor: "#ffebee"}
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, emailTemplateData{emailData: data, Style: style}); err != nil {
		return "", fmt.Errorf("usecase: render %s email: %w", kind, err)
	}
	return sb.String(), nil
}
