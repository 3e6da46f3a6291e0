package services

import (
	"fmt"
	"strings"

	"hoctap-backend/internal/models"
)

const (
	minPracticeCount = 1
	maxPracticeCount = 10
)

const baseTutorPrompt = "Bạn là trợ lý học tập AI bằng tiếng Việt. Hãy trả lời câu hỏi của người dùng một cách chính xác, đầy đủ và dễ hiểu. Sử dụng định dạng LaTeX cho các công thức toán học khi cần thiết. "

var actionPrompts = map[string]string{
	models.ActionComplete: "Hãy giải bài tập đầy đủ với các bước chi tiết và giải thích rõ ràng.",
	models.ActionConcise:  "Hãy giải bài tập một cách ngắn gọn, tập trung vào các bước chính và đáp án.",
	models.ActionHint:     "Chỉ đưa ra gợi ý để người dùng tự giải bài tập, không đưa ra đáp án hoặc lời giải đầy đủ.",
}

const defaultActionPrompt = "Trả lời dựa trên kiến thức của bạn về các môn học ở mọi cấp độ."

// SystemPromptForAction returns the tutor system prompt for an action. A nil
// or unknown action gets the general-knowledge suffix.
func SystemPromptForAction(action *string) string {
	if action != nil {
		if suffix, ok := actionPrompts[*action]; ok {
			return baseTutorPrompt + suffix
		}
	}
	return baseTutorPrompt + defaultActionPrompt
}

func explainPrompt(term string) string {
	return fmt.Sprintf(`Giải thích thuật ngữ: "%s"`, term)
}

func clampPracticeCount(n int) int {
	if n < minPracticeCount {
		return minPracticeCount
	}
	if n > maxPracticeCount {
		return maxPracticeCount
	}
	return n
}

// buildPracticePrompt asks for count questions in the "Câu N:" layout the
// labeled extractor understands.
func buildPracticePrompt(subject, grade, topic string, count int, includeAnswers bool) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Hãy tạo %d câu hỏi luyện tập chất lượng cao về môn %s lớp %s", count, subject, grade))
	if topic != "" {
		b.WriteString(fmt.Sprintf(" với chủ đề %s", topic))
	}
	b.WriteString(".\n\n")

	b.WriteString("Yêu cầu cụ thể:\n")
	b.WriteString(fmt.Sprintf("- Nội dung phải đúng kiến thức của môn %s lớp %s\n", subject, grade))
	b.WriteString(fmt.Sprintf("- Câu hỏi phải rõ ràng, dễ hiểu và phù hợp với học sinh lớp %s\n", grade))
	b.WriteString("- Đa dạng về loại câu hỏi (trắc nghiệm, tự luận, điền khuyết, etc.)\n")
	b.WriteString("- Có thể sử dụng công thức toán học khi cần thiết\n\n")

	b.WriteString("Định dạng câu hỏi:\n===\n")
	for i := 1; i <= count; i++ {
		b.WriteString(fmt.Sprintf("Câu %d: [Nội dung câu hỏi]\n", i))
		if includeAnswers {
			b.WriteString("Đáp án: [Đáp án cho câu hỏi]\n")
			b.WriteString("Giải thích: [Giải thích chi tiết lý do đáp án đúng]\n")
		}
		if i < count {
			b.WriteString("\n")
		}
	}
	b.WriteString("===\n\n")

	b.WriteString("Lưu ý: Hãy tuân thủ đúng định dạng trên và điền nội dung thực tế cho mỗi câu hỏi.")
	return b.String()
}

func buildPracticeSystemPrompt(subject, grade string) string {
	return fmt.Sprintf("Bạn là giáo viên chuyên môn hàng đầu về môn %s, với nhiều năm kinh nghiệm dạy học sinh lớp %s.\n", subject, grade) +
		"Nhiệm vụ của bạn là tạo các câu hỏi luyện tập chất lượng cao cho học sinh.\n" +
		"Hãy đảm bảo câu hỏi đúng kiến thức chương trình, phù hợp với độ tuổi, và theo đúng định dạng yêu cầu.\n" +
		"KHÔNG thêm bất kỳ thông tin nào ngoài các câu hỏi theo đúng định dạng đã chỉ định."
}
