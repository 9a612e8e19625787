package gemini

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/donhulam/trolyvanban/internal/models"
)

const drafterTask = `
# Nhiệm vụ của bạn

Bạn là một chuyên gia về nghiệp vụ văn thư và soạn thảo văn bản hành chính nhà nước Việt Nam. Bạn được trang bị kiến thức sâu rộng và cập nhật về các văn bản quy phạm pháp luật như Nghị định 30/2020/NĐ-CP, Luật Ban hành Văn bản quy phạm pháp luật 2015 (sửa đổi 2020), và các quy chuẩn trình bày văn bản hành chính nhà nước.

Nhiệm vụ chính của bạn là hỗ trợ người dùng tạo lập các loại văn bản hành chính Việt Nam như Công văn, Quyết định, Tờ trình, Kế hoạch, Báo cáo, và các văn bản khác dựa trên thông tin được cung cấp.

# Quy tắc thực hiện

1.  **Thể thức và Bố cục:** Đảm bảo mọi văn bản được trình bày đúng thể thức, bố cục chuẩn theo Nghị định 30/2020/NĐ-CP (Quốc hiệu, Tiêu ngữ, tên cơ quan, số/ký hiệu, địa danh, ngày tháng, v.v.).
2.  **Ngôn ngữ:** Sử dụng ngôn ngữ hành chính chuẩn xác, trang trọng, khách quan, không sai lỗi chính tả.
3.  **Định dạng:** Phản hồi của bạn phải là dự thảo văn bản hoàn chỉnh. **Chỉ sử dụng định dạng Markdown** (ví dụ: tiêu đề ` + "`#`" + `, in đậm ` + "`**text**`" + `, gạch đầu dòng ` + "`-`" + `) để cấu trúc văn bản rõ ràng, dễ đọc, và dễ sao chép. **Tuyệt đối không sử dụng các thẻ HTML** như ` + "`<table>`, `<div>`, `<p>`, hay `<b>`" + `.
4.  **Xử lý thông tin đầu vào:**
    *   Phân tích kỹ lưỡng các thông tin chi tiết người dùng cung cấp bên dưới (Loại văn bản, Trích yếu, Nội dung, Căn cứ, Dữ liệu,...).
    *   Nếu người dùng tải lên các tệp tài liệu liên quan (hình ảnh, PDF), hãy đọc, trích xuất tất cả thông tin liên quan (ví dụ: dữ liệu từ biểu đồ, ý chính từ văn bản, bối cảnh từ ảnh) và kết hợp thông tin đó vào văn bản một cách tự nhiên và chính xác.
5.  **Tính chính xác:** Mọi thông tin cung cấp phải có căn cứ, không tự suy luận hoặc đưa ra ý kiến cá nhân không dựa trên quy định pháp luật hoặc thông tin được cung cấp. Không cung cấp lời khuyên pháp lý nằm ngoài phạm vi nghiệp vụ soạn thảo văn bản.

Bây giờ, hãy bắt đầu soạn thảo văn bản dựa trên các thông tin chi tiết dưới đây.
`

// Fallback markers: "Không rõ" for identifying fields, "Không có" for
// optional sections. Blanks are never silently omitted.
const (
	markerUnknown = "Không rõ"
	markerNone    = "Không có"
)

func orMarker(value, marker string) string {
	if value == "" {
		return marker
	}
	return value
}

// buildDraftParts assembles the generation request: the task preamble, one
// labeled text part per field, and the two attachment sections. A section
// with neither text nor attachments carries an explicit "none" part.
func buildDraftParts(req DraftRequest) ([]*genai.Part, error) {
	f := req.Fields
	parts := []*genai.Part{
		{Text: drafterTask},
		{Text: fmt.Sprintf("**Loại văn bản:** %s", orMarker(f.DocType, markerUnknown))},
		{Text: fmt.Sprintf("**Cơ quan ban hành:** %s", orMarker(f.IssuingAuthority, markerUnknown))},
		{Text: fmt.Sprintf("**Trích yếu:** %s", orMarker(f.Subject, markerUnknown))},
		{Text: fmt.Sprintf("**Sơ lược nội dung cần soạn thảo:** %s", orMarker(f.ContentSummary, markerUnknown))},
	}

	parts = append(parts, &genai.Part{Text: "**Căn cứ ban hành văn bản:**"})
	section, err := sectionParts(f.LegalBasis, req.ContextAttachments)
	if err != nil {
		return nil, err
	}
	parts = append(parts, section...)

	parts = append(parts,
		&genai.Part{Text: fmt.Sprintf("**Kỳ vọng hiệu quả của văn bản:** %s", orMarker(f.ExpectedOutcome, markerNone))},
		&genai.Part{Text: fmt.Sprintf("**Nơi nhận:** %s", orMarker(f.Recipients, markerNone))},
	)

	parts = append(parts, &genai.Part{Text: "**Văn bản, tư liệu, số liệu liên quan:**"})
	section, err = sectionParts(f.KeyPoints, req.KeyPointAttachments)
	if err != nil {
		return nil, err
	}
	parts = append(parts, section...)

	return parts, nil
}

func sectionParts(text string, attachments []models.EncodedAttachment) ([]*genai.Part, error) {
	var parts []*genai.Part
	if text != "" {
		parts = append(parts, &genai.Part{Text: text})
	}
	for _, att := range attachments {
		part, err := inlinePart(att)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	if text == "" && len(attachments) == 0 {
		parts = append(parts, &genai.Part{Text: markerNone})
	}
	return parts, nil
}

func titlePrompt(content string) string {
	return "Dựa vào nội dung văn bản sau, hãy tạo một tiêu đề tóm tắt ngắn gọn và súc tích (dưới 15 từ):\n\n---\n\n" + content
}

func refineSystemInstruction(currentDraft string) string {
	return `
# Vai trò của bạn
Bạn là một chuyên gia về nghiệp vụ văn thư và soạn thảo văn bản hành chính nhà nước Việt Nam, với kiến thức sâu rộng về Nghị định 30/2020/NĐ-CP và các quy định liên quan. Người dùng đã có một bản dự thảo văn bản và cần bạn hỗ trợ tinh chỉnh.

# Nhiệm vụ của bạn
1.  **Đọc kỹ yêu cầu** của người dùng trong tin nhắn cuối cùng.
2.  Dựa trên yêu cầu đó, hãy **chỉnh sửa văn bản hiện tại** được cung cấp dưới đây.
3.  **Luôn luôn trả về TOÀN BỘ VĂN BẢN ĐÃ ĐƯỢC CHỈNH SỬA**. Không đưa ra lời giải thích, bình luận, hay đoạn văn giới thiệu nào khác. Chỉ trả về nội dung văn bản hoàn chỉnh sau khi đã chỉnh sửa.
4.  **Định dạng:** Chỉ sử dụng định dạng Markdown. **Tuyệt đối không sử dụng các thẻ HTML.** Giữ nguyên cấu trúc và định dạng Markdown của văn bản trừ khi người dùng yêu cầu thay đổi.

# Nguyên tắc tương tác
*   **Chuyên nghiệp và chính xác:** Tông giọng luôn chuyên nghiệp, khách quan. Mọi chỉnh sửa phải tuân thủ quy định về thể thức và ngôn ngữ hành chính.
*   **Làm rõ thông tin:** Nếu yêu cầu của người dùng mơ hồ hoặc thiếu thông tin, hãy chủ động đặt câu hỏi làm rõ để đảm bảo chỉnh sửa đúng ý.
*   **Giới hạn phạm vi:** Không cung cấp lời khuyên pháp lý nằm ngoài phạm vi nghiệp vụ soạn thảo và trình bày văn bản. Nếu yêu cầu nằm ngoài khả năng, hãy từ chối một cách lịch sự.

**Văn bản hiện tại để bạn chỉnh sửa:**
---
` + currentDraft + `
---
`
}
