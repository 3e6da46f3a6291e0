// Package practice pulls practice questions out of free-form model output.
//
// Model replies are only loosely structured, so extraction runs an ordered
// chain of strategies and takes the first one that yields questions. When
// none does, a degraded single question wrapping the whole reply is returned;
// Extract never fails and never returns an empty list.
package practice

import (
	"fmt"
	"html"

	"golang.org/x/text/unicode/norm"

	"hoctap-backend/internal/models"
)

// Strategy names the method that produced a Result.
type Strategy string

const (
	StrategyJSONArray   Strategy = "json_array"
	StrategyBracketSpan Strategy = "bracket_span"
	StrategyLabeled     Strategy = "labeled"
	StrategyFallback    Strategy = "fallback"
)

const (
	fallbackAnswer      = "<p>Không đọc được đáp án theo định dạng yêu cầu.</p>"
	fallbackExplanation = "<p>AI không tạo được câu trả lời theo định dạng yêu cầu. Bạn có thể dùng chức năng chính của ứng dụng để hỏi trực tiếp về bài tập này.</p>"
)

// Options tunes one extraction. ExpectCount is what the prompt asked for; it
// never limits what is returned.
type Options struct {
	ExpectCount    int
	IncludeAnswers bool
	Subject        string
	Grade          string
}

// Result is the outcome of Extract.
type Result struct {
	Questions []models.PracticeQuestion
	Strategy  Strategy
}

// Degraded reports whether no structured questions were found.
func (r Result) Degraded() bool {
	return r.Strategy == StrategyFallback
}

// CountMismatch reports whether the number of questions differs from the
// expected count.
func (r Result) CountMismatch(expect int) bool {
	return expect > 0 && len(r.Questions) != expect
}

// match is what a strategy returns: ok is false when the strategy found
// nothing usable and the next one should run.
type match struct {
	questions []models.PracticeQuestion
	ok        bool
}

var noMatch = match{}

type strategyFunc func(raw string, opts Options) match

var chain = []struct {
	name Strategy
	run  strategyFunc
}{
	{StrategyJSONArray, extractJSONArray},
	{StrategyBracketSpan, extractBracketSpan},
	{StrategyLabeled, extractLabeled},
}

// Extract runs the strategy chain over raw and returns the first non-empty
// result, or the fallback question.
func Extract(raw string, opts Options) Result {
	raw = norm.NFC.String(raw)

	for _, s := range chain {
		if m := runStrategy(s.run, raw, opts); m.ok && len(m.questions) > 0 {
			return Result{Questions: m.questions, Strategy: s.name}
		}
	}
	return Result{Questions: []models.PracticeQuestion{fallback(raw, opts)}, Strategy: StrategyFallback}
}

// runStrategy turns a panicking strategy into a miss.
func runStrategy(run strategyFunc, raw string, opts Options) (m match) {
	defer func() {
		if recover() != nil {
			m = noMatch
		}
	}()
	return run(raw, opts)
}

func fallback(raw string, opts Options) models.PracticeQuestion {
	body := paragraphsToHTML(raw)
	if opts.Subject != "" && opts.Grade != "" {
		intro := fmt.Sprintf("<p>Dưới đây là nội dung bài tập về %s lớp %s:</p>",
			html.EscapeString(opts.Subject), html.EscapeString(opts.Grade))
		body = intro + body
	}
	return models.PracticeQuestion{
		Question:    body,
		Answer:      fallbackAnswer,
		Explanation: fallbackExplanation,
	}
}
