package formatter

import (
	"regexp"
	"strings"
)

// GlossarySpanClass marks spans emitted by the glossary matcher. The client
// opens the term explanation dialog for elements carrying this class.
const GlossarySpanClass = "term-explanation"

// Glossary is the academic vocabulary tagged in processed responses. Order is
// significant: earlier entries win when matches overlap.
var Glossary = newGlossary([]string{
	// Math
	"hiện tượng cảm ứng từ",
	"nguyên hàm",
	"tích phân",
	"đạo hàm",
	"vi phân",
	"hàm số",
	"phương trình vi phân",
	"chuỗi số",
	"số phức",
	"lý thuyết tập hợp",

	// Physics
	"động lượng",
	"điện từ trường",
	"quang học",
	"cơ học lượng tử",
	"thuyết tương đối",
	"nhiệt động học",
	"điện dung",

	// Chemistry
	"phản ứng oxy hóa khử",
	"nguyên tố",
	"phân tử",
	"liên kết hóa học",
	"hợp chất hữu cơ",

	// Biology
	"quang hợp",
	"tế bào",
	"ADN",
	"ARN",
	"đột biến gen",
	"protein",
})

func newGlossary(terms []string) RuleTable {
	table := make(RuleTable, 0, len(terms))
	for i, term := range terms {
		table = append(table, Rule{
			Label:    term,
			Pattern:  termPattern(term),
			Priority: i,
		})
	}
	return table
}

// termPattern matches a phrase case-insensitively, tolerating any run of
// whitespace (or none) between its words. \p{Zs} covers the no-break and
// other Unicode spaces that \s misses.
func termPattern(phrase string) *regexp.Regexp {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(words, `[\s\p{Zs}]*`))
}

var spanOpenPattern = regexp.MustCompile(`(?i)^<span\b`)

// TagTerms wraps glossary terms found in the text nodes of an HTML fragment.
// Tags and math segments are copied verbatim and text already inside a
// glossary span is left alone, so tagging an already tagged fragment is a
// no-op.
func (t RuleTable) TagTerms(fragment string) string {
	var b strings.Builder
	b.Grow(len(fragment))

	var spans spanStack
	last := 0
	for _, loc := range mathSegmentPattern.FindAllStringIndex(fragment, -1) {
		t.tagMarkup(&b, fragment[last:loc[0]], &spans)
		b.WriteString(fragment[loc[0]:loc[1]])
		last = loc[1]
	}
	t.tagMarkup(&b, fragment[last:], &spans)
	return b.String()
}

// spanStack holds one entry per open <span>: true when it is a glossary span.
type spanStack []bool

func (s spanStack) insideGlossary() bool {
	for _, g := range s {
		if g {
			return true
		}
	}
	return false
}

func (t RuleTable) tagMarkup(b *strings.Builder, rest string, spans *spanStack) {
	for len(rest) > 0 {
		lt := strings.IndexByte(rest, '<')
		if lt < 0 {
			b.WriteString(t.tagText(rest, spans.insideGlossary()))
			return
		}
		if lt > 0 {
			b.WriteString(t.tagText(rest[:lt], spans.insideGlossary()))
			rest = rest[lt:]
		}

		gt := strings.IndexByte(rest, '>')
		if gt < 0 {
			// A stray '<' with no closing bracket is plain text.
			b.WriteString(t.tagText(rest, spans.insideGlossary()))
			return
		}

		tag := rest[:gt+1]
		switch {
		case spanOpenPattern.MatchString(tag):
			*spans = append(*spans, strings.Contains(tag, GlossarySpanClass))
		case strings.EqualFold(tag, "</span>") && len(*spans) > 0:
			*spans = (*spans)[:len(*spans)-1]
		}
		b.WriteString(tag)
		rest = rest[gt+1:]
	}
}

func (t RuleTable) tagText(text string, skip bool) string {
	if skip || strings.TrimSpace(text) == "" {
		return text
	}
	return t.Replace(text, func(m Match, matched string) string {
		return `<span class="` + GlossarySpanClass + `" data-term="` + m.Rule.Label + `">` + matched + `</span>`
	})
}
