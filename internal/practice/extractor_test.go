package practice

import (
	"testing"
)

func TestExtract_LabeledQuestions(t *testing.T) {
	raw := "Câu 1: 2+2=?\nĐáp án: 4\nGiải thích: cộng hai số.\n\nCâu 2: 3+3=?\nĐáp án: 6"

	res := Extract(raw, Options{ExpectCount: 2, IncludeAnswers: true})
	if res.Strategy != StrategyLabeled {
		t.Fatalf("Expected strategy %q, got %q", StrategyLabeled, res.Strategy)
	}
	if len(res.Questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(res.Questions))
	}

	q1, q2 := res.Questions[0], res.Questions[1]
	if q1.Question != "<p>2+2=?</p>" {
		t.Errorf("Expected question 1 %q, got %q", "<p>2+2=?</p>", q1.Question)
	}
	if q1.Answer != "<p>4</p>" {
		t.Errorf("Expected answer 1 %q, got %q", "<p>4</p>", q1.Answer)
	}
	if q1.Explanation != "<p>cộng hai số.</p>" {
		t.Errorf("Expected explanation 1 %q, got %q", "<p>cộng hai số.</p>", q1.Explanation)
	}
	if q2.Question != "<p>3+3=?</p>" || q2.Answer != "<p>6</p>" {
		t.Errorf("Unexpected question 2: %+v", q2)
	}
	if q2.Explanation != "" {
		t.Errorf("Expected empty explanation for question 2, got %q", q2.Explanation)
	}
}

func TestExtract_LabeledWithoutAnswers(t *testing.T) {
	raw := "Câu 1: Tính 2+2\nĐáp án: 4\n\nCâu 2: Tính 3+3"

	res := Extract(raw, Options{IncludeAnswers: false})
	if len(res.Questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(res.Questions))
	}
	for i, q := range res.Questions {
		if q.Answer != "" || q.Explanation != "" {
			t.Errorf("Question %d: expected empty answer and explanation, got %+v", i+1, q)
		}
	}
	if res.Questions[0].Question != "<p>Tính 2+2<br>Đáp án: 4</p>" {
		t.Errorf("Expected answer text kept in question body, got %q", res.Questions[0].Question)
	}
}

func TestExtract_LabeledEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string // question, answer, explanation of the first record
	}{
		{
			"explanation before answer",
			"Câu 1: Hỏi\nGiải thích: vì vậy\nĐáp án: B",
			[]string{"<p>Hỏi</p>", "<p>B</p>", "<p>vì vậy</p>"},
		},
		{
			"bold labels",
			"**Câu 1:** Hỏi gì?\n**Đáp án:** C\n**Giải thích:** lý do",
			[]string{"<p>Hỏi gì?</p>", "<p>C</p>", "<p>lý do</p>"},
		},
		{
			"answer word inside question",
			"Câu 1: Chọn đáp án đúng\nA. 1\nB. 2\nĐáp án: B",
			[]string{"<p>Chọn đáp án đúng<br>A. 1<br>B. 2</p>", "<p>B</p>", ""},
		},
		{
			"multi paragraph explanation",
			"Câu 1: Hỏi\nĐáp án: 1\nGiải thích: đoạn một\n\nđoạn hai",
			[]string{"<p>Hỏi</p>", "<p>1</p>", "<p>đoạn một</p><p>đoạn hai</p>"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Extract(tc.raw, Options{IncludeAnswers: true})
			if len(res.Questions) != 1 {
				t.Fatalf("Expected 1 question, got %d", len(res.Questions))
			}
			q := res.Questions[0]
			got := []string{q.Question, q.Answer, q.Explanation}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("Field %d: expected %q, got %q", i, tc.expected[i], got[i])
				}
			}
		})
	}
}

func TestExtract_JSONArray(t *testing.T) {
	raw := "Đây là câu hỏi:\n```json\n[{\"question\": \"<p>1+1?</p>\", \"answer\": 2, \"explanation\": \"<p>cộng</p>\"}]\n```"

	res := Extract(raw, Options{IncludeAnswers: true})
	if res.Strategy != StrategyJSONArray {
		t.Fatalf("Expected strategy %q, got %q", StrategyJSONArray, res.Strategy)
	}
	if len(res.Questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(res.Questions))
	}
	q := res.Questions[0]
	if q.Question != "<p>1+1?</p>" || q.Answer != "2" || q.Explanation != "<p>cộng</p>" {
		t.Errorf("Expected fields passed through verbatim, got %+v", q)
	}
}

func TestExtract_BracketSpan(t *testing.T) {
	raw := `Kết quả: [ {"answer": "4", "question": "2+2?"} ] hết`

	res := Extract(raw, Options{IncludeAnswers: true})
	if res.Strategy != StrategyBracketSpan {
		t.Fatalf("Expected strategy %q, got %q", StrategyBracketSpan, res.Strategy)
	}
	if res.Questions[0].Question != "2+2?" || res.Questions[0].Answer != "4" {
		t.Errorf("Unexpected question: %+v", res.Questions[0])
	}
}

func TestExtract_InvalidJSONFallsThrough(t *testing.T) {
	raw := "[{\"question\": \"thiếu ngoặc\"\nCâu 1: Hỏi\nĐáp án: 1"

	res := Extract(raw, Options{IncludeAnswers: true})
	if res.Strategy != StrategyLabeled {
		t.Fatalf("Expected strategy %q, got %q", StrategyLabeled, res.Strategy)
	}
}

func TestExtract_EmptyJSONArrayFallsThrough(t *testing.T) {
	res := Extract("[]", Options{})
	if res.Strategy != StrategyFallback {
		t.Fatalf("Expected strategy %q, got %q", StrategyFallback, res.Strategy)
	}
}

func TestExtract_JSONWithoutQuestionFallsThrough(t *testing.T) {
	res := Extract(`Kết quả: [{"foo": 1}]`, Options{})
	if res.Strategy != StrategyFallback {
		t.Fatalf("Expected strategy %q, got %q", StrategyFallback, res.Strategy)
	}
	if res.Questions[0].Question == "" {
		t.Error("Expected fallback question body")
	}
}

func TestExtract_JSONDropsBlankQuestions(t *testing.T) {
	raw := `[{"question": "<p>1+1?</p>", "answer": "2"}, {"question": "  ", "answer": "3"}, {"answer": "4"}]`

	res := Extract(raw, Options{IncludeAnswers: true})
	if res.Strategy != StrategyJSONArray {
		t.Fatalf("Expected strategy %q, got %q", StrategyJSONArray, res.Strategy)
	}
	if len(res.Questions) != 1 || res.Questions[0].Answer != "2" {
		t.Errorf("Expected only the question with a body, got %+v", res.Questions)
	}
}

func TestExtract_Fallback(t *testing.T) {
	inputs := []string{
		"",
		"Một đoạn văn tự do không có cấu trúc.",
		"Đoạn một.\n\nĐoạn hai [không phải JSON].",
		"{\"question\": \"không phải mảng\"}",
	}

	for _, raw := range inputs {
		res := Extract(raw, Options{IncludeAnswers: true, Subject: "Toán", Grade: "10"})
		if len(res.Questions) != 1 {
			t.Fatalf("Expected exactly 1 fallback question for %q, got %d", raw, len(res.Questions))
		}
		if !res.Degraded() {
			t.Errorf("Expected degraded result for %q", raw)
		}
		q := res.Questions[0]
		if q.Answer != fallbackAnswer || q.Explanation != fallbackExplanation {
			t.Errorf("Expected fallback answer and explanation, got %+v", q)
		}
	}
}

func TestExtract_FallbackBody(t *testing.T) {
	res := Extract("Đoạn một.\n\nĐoạn hai.", Options{Subject: "Hóa <b>", Grade: "11"})
	expected := "<p>Dưới đây là nội dung bài tập về Hóa &lt;b&gt; lớp 11:</p><p>Đoạn một.</p><p>Đoạn hai.</p>"
	if res.Questions[0].Question != expected {
		t.Errorf("Expected %q, got %q", expected, res.Questions[0].Question)
	}
}

func TestExtract_CountIsAdvisory(t *testing.T) {
	raw := "Câu 1: a\nĐáp án: 1\n\nCâu 2: b\nĐáp án: 2\n\nCâu 3: c\nĐáp án: 3\n\nCâu 4: d\nĐáp án: 4"

	for _, expect := range []int{1, 3, 4, 10} {
		res := Extract(raw, Options{ExpectCount: expect, IncludeAnswers: true})
		if len(res.Questions) != 4 {
			t.Errorf("ExpectCount %d: expected 4 questions, got %d", expect, len(res.Questions))
		}
		if res.CountMismatch(expect) != (expect != 4) {
			t.Errorf("ExpectCount %d: unexpected CountMismatch %v", expect, res.CountMismatch(expect))
		}
	}
}

func TestRunStrategy_RecoversPanic(t *testing.T) {
	m := runStrategy(func(string, Options) match { panic("boom") }, "x", Options{})
	if m.ok {
		t.Error("Expected a panicking strategy to count as no match")
	}
}
