package services

import (
	"strings"
	"testing"

	"hoctap-backend/internal/models"
)

func TestSystemPromptForAction(t *testing.T) {
	tests := []struct {
		name   string
		action *string
		suffix string
	}{
		{"complete", strPtr(models.ActionComplete), actionPrompts[models.ActionComplete]},
		{"concise", strPtr(models.ActionConcise), actionPrompts[models.ActionConcise]},
		{"hint", strPtr(models.ActionHint), actionPrompts[models.ActionHint]},
		{"none", nil, defaultActionPrompt},
		{"unknown", strPtr("essay"), defaultActionPrompt},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SystemPromptForAction(tc.action)
			if !strings.HasPrefix(got, baseTutorPrompt) {
				t.Errorf("Expected base prompt prefix, got %q", got)
			}
			if !strings.HasSuffix(got, tc.suffix) {
				t.Errorf("Expected suffix %q, got %q", tc.suffix, got)
			}
		})
	}
}

func TestBuildPracticePrompt(t *testing.T) {
	withAnswers := buildPracticePrompt("Hóa", "11", "axit", 2, true)
	if !strings.HasPrefix(withAnswers, "Hãy tạo 2 câu hỏi luyện tập chất lượng cao về môn Hóa lớp 11 với chủ đề axit.") {
		t.Errorf("Unexpected opening: %q", withAnswers)
	}
	if strings.Count(withAnswers, "Đáp án: [") != 2 {
		t.Errorf("Expected 2 answer placeholders in %q", withAnswers)
	}
	if strings.Contains(withAnswers, "Câu 3:") {
		t.Errorf("Expected only 2 question slots")
	}

	noAnswers := buildPracticePrompt("Hóa", "11", "", 3, false)
	if strings.Contains(noAnswers, "Đáp án:") || strings.Contains(noAnswers, "Giải thích:") {
		t.Errorf("Expected no answer lines, got %q", noAnswers)
	}
	if strings.Contains(noAnswers, "chủ đề") {
		t.Errorf("Expected no topic clause, got %q", noAnswers)
	}
	if !strings.Contains(noAnswers, "Câu 3: [Nội dung câu hỏi]") {
		t.Errorf("Expected third question slot, got %q", noAnswers)
	}
}

func TestClampPracticeCount(t *testing.T) {
	tests := []struct{ in, want int }{{-1, 1}, {0, 1}, {3, 3}, {10, 10}, {11, 10}}
	for _, tc := range tests {
		if got := clampPracticeCount(tc.in); got != tc.want {
			t.Errorf("clampPracticeCount(%d): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"subject": "Subject is required", "grade": "Grade is required"}}
	want := "validation failed: grade: Grade is required, subject: Subject is required"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}
