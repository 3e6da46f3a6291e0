// Package formatter turns raw model text into the HTML fragments the chat
// client injects into the page: LaTeX delimiters rewritten for MathJax,
// paragraphs and lists structured, and glossary terms tagged.
package formatter

import (
	"html"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Processor post-processes model responses. The zero value is not usable;
// build one with NewProcessor.
type Processor struct {
	glossary RuleTable
}

// NewProcessor returns a Processor tagging terms from glossary. A nil table
// falls back to the built-in Glossary.
func NewProcessor(glossary RuleTable) *Processor {
	if glossary == nil {
		glossary = Glossary
	}
	return &Processor{glossary: glossary}
}

// Process converts one raw model response into HTML. It is deterministic and
// running it on its own output returns that output unchanged.
func (p *Processor) Process(raw string) string {
	text := norm.NFC.String(raw)
	text = CollapseBlankLines(text)
	text = NormalizeLaTeX(text)

	paragraphs := StructureParagraphs(text)
	for i, para := range paragraphs {
		if para.Block {
			continue
		}
		paragraphs[i].HTML = p.glossary.TagTerms(para.HTML)
	}
	return JoinParagraphs(paragraphs)
}

var defaultProcessor = NewProcessor(nil)

// Process runs the default processor.
func Process(raw string) string {
	return defaultProcessor.Process(raw)
}

// PlainToHTML escapes user-typed text and wraps it in paragraphs so it can be
// stored next to model output as an HTML fragment.
func PlainToHTML(text string) string {
	text = CollapseBlankLines(norm.NFC.String(text))

	var parts []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		parts = append(parts, "<p>"+strings.ReplaceAll(html.EscapeString(para), "\n", "<br>")+"</p>")
	}
	return strings.Join(parts, "\n\n")
}
