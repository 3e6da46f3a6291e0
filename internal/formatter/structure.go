package formatter

import (
	"regexp"
	"strings"
)

var (
	excessNewlinesPattern = regexp.MustCompile(`\n{4,}`)
	listItemPattern       = regexp.MustCompile(`^\s*[*-]\s+(\S.*)$`)
	blockTagPattern       = regexp.MustCompile(`(?i)^<(ul|ol|div|h[1-6]|table|p|blockquote|pre)[\s>/]`)
)

// Paragraph is one block of structured output.
type Paragraph struct {
	HTML string
	// Block is true when HTML already starts with a block-level tag and was
	// left unwrapped.
	Block bool
}

// CollapseBlankLines normalizes line endings and caps runs of newlines at
// three.
func CollapseBlankLines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return excessNewlinesPattern.ReplaceAllString(text, "\n\n\n")
}

// StructureParagraphs turns lightly marked text into block HTML. Each maximal
// run of "* " or "- " lines becomes one <ul>, the rest is split on blank
// lines and wrapped in <p> unless it already starts with a block tag.
// Whitespace-only candidates are dropped.
func StructureParagraphs(text string) []Paragraph {
	text = groupLists(CollapseBlankLines(text))

	var out []Paragraph
	for _, candidate := range strings.Split(text, "\n\n") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if blockTagPattern.MatchString(candidate) {
			out = append(out, Paragraph{HTML: candidate, Block: true})
			continue
		}
		out = append(out, Paragraph{HTML: "<p>" + strings.ReplaceAll(candidate, "\n", "<br>") + "</p>"})
	}
	return out
}

// Structure is StructureParagraphs joined with blank lines.
func Structure(text string) string {
	return JoinParagraphs(StructureParagraphs(text))
}

// JoinParagraphs re-joins paragraphs with a blank-line separator.
func JoinParagraphs(paragraphs []Paragraph) string {
	parts := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		parts[i] = p.HTML
	}
	return strings.Join(parts, "\n\n")
}

// groupLists replaces each run of list lines with a single <ul> line set off
// by blank lines, so the list always becomes a paragraph candidate of its own.
func groupLists(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	var items []string
	flush := func() {
		if len(items) == 0 {
			return
		}
		var b strings.Builder
		b.WriteString("<ul>")
		for _, item := range items {
			b.WriteString("<li>")
			b.WriteString(item)
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
		out = append(out, "", b.String(), "")
		items = items[:0]
	}

	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if m := listItemPattern.FindStringSubmatch(line); m != nil {
			items = append(items, m[1])
			continue
		}
		flush()
		out = append(out, line)
	}
	flush()

	return strings.Join(out, "\n")
}
