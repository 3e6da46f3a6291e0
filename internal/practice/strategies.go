package practice

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"hoctap-backend/internal/models"
)

var (
	jsonArrayPattern   = regexp.MustCompile(`(?s)\[\s*\{\s*"question".*\}\s*\]`)
	questionLabel      = regexp.MustCompile(`(?i)Câu\s+(\d+)\s*:`)
	blankLineSeparator = regexp.MustCompile(`\n\s*\n`)
)

// Labels need their colon so "chọn đáp án đúng" inside a question is not
// taken for an answer.
var (
	answerLabel      = regexp.MustCompile(`(?i)Đáp\s*án\s*(?:\*\*)?\s*:`)
	explanationLabel = regexp.MustCompile(`(?i)Giải\s*thích\s*(?:\*\*)?\s*:`)
)

func extractJSONArray(raw string, _ Options) match {
	candidate := jsonArrayPattern.FindString(raw)
	if candidate == "" {
		return noMatch
	}
	return decodeQuestions(candidate)
}

func extractBracketSpan(raw string, _ Options) match {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return noMatch
	}
	return decodeQuestions(raw[start : end+1])
}

// decodeQuestions parses a JSON array of objects. Field values are passed
// through as-is: strings verbatim, other scalars as their JSON text. Objects
// without a question are dropped; an array with none left is no match.
func decodeQuestions(data string) match {
	var objects []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &objects); err != nil || len(objects) == 0 {
		return noMatch
	}

	questions := make([]models.PracticeQuestion, 0, len(objects))
	for _, obj := range objects {
		if obj == nil {
			return noMatch
		}
		question := jsonText(obj["question"])
		if strings.TrimSpace(question) == "" {
			continue
		}
		questions = append(questions, models.PracticeQuestion{
			Question:    question,
			Answer:      jsonText(obj["answer"]),
			Explanation: jsonText(obj["explanation"]),
		})
	}
	if len(questions) == 0 {
		return noMatch
	}
	return match{questions: questions, ok: true}
}

func jsonText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// extractLabeled splits "Câu N:" blocks, each running to the next label or
// the end of the text, and pulls the answer and explanation out of each.
func extractLabeled(raw string, opts Options) match {
	labels := questionLabel.FindAllStringIndex(raw, -1)
	if len(labels) == 0 {
		return noMatch
	}

	questions := make([]models.PracticeQuestion, 0, len(labels))
	for i, loc := range labels {
		end := len(raw)
		if i+1 < len(labels) {
			end = labels[i+1][0]
		}
		questions = append(questions, parseBlock(raw[loc[1]:end], opts.IncludeAnswers))
	}
	return match{questions: questions, ok: true}
}

type section struct {
	labelStart, textStart, end int
}

func parseBlock(body string, includeAnswers bool) models.PracticeQuestion {
	if !includeAnswers {
		return models.PracticeQuestion{Question: paragraphsToHTML(cleanSegment(body))}
	}

	answer, hasAnswer := findSection(body, answerLabel)
	explanation, hasExplanation := findSection(body, explanationLabel)

	// A section runs until the other label when that one comes later.
	if hasAnswer && hasExplanation {
		if explanation.labelStart > answer.labelStart {
			answer.end = explanation.labelStart
		} else {
			explanation.end = answer.labelStart
		}
	}

	var removed []section
	q := models.PracticeQuestion{}
	if hasAnswer {
		q.Answer = paragraphsToHTML(cleanSegment(body[answer.textStart:answer.end]))
		removed = append(removed, answer)
	}
	if hasExplanation {
		q.Explanation = paragraphsToHTML(cleanSegment(body[explanation.textStart:explanation.end]))
		removed = append(removed, explanation)
	}
	q.Question = paragraphsToHTML(cleanSegment(cutSections(body, removed)))
	return q
}

func findSection(body string, label *regexp.Regexp) (section, bool) {
	loc := label.FindStringIndex(body)
	if loc == nil {
		return section{}, false
	}
	return section{labelStart: loc[0], textStart: loc[1], end: len(body)}, true
}

func cutSections(body string, sections []section) string {
	sort.Slice(sections, func(i, j int) bool { return sections[i].labelStart < sections[j].labelStart })

	var b strings.Builder
	last := 0
	for _, s := range sections {
		b.WriteString(body[last:s.labelStart])
		last = s.end
	}
	b.WriteString(body[last:])
	return b.String()
}

// cleanSegment trims whitespace and the markdown bold markers models like to
// put around labels.
func cleanSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "**")
	s = strings.TrimSuffix(s, "**")
	return strings.TrimSpace(s)
}

// paragraphsToHTML wraps each blank-line separated paragraph in <p>, turning
// single newlines into <br>. Empty paragraphs are dropped.
func paragraphsToHTML(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	for _, para := range blankLineSeparator.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(para, "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}
