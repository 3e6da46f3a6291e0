package formatter

import (
	"regexp"
	"strings"
)

// markupElements are the element names treated as markup when they appear
// tag-shaped in model text. Everything the sanitizer knows how to keep or
// strip is listed, so a real tag is never turned into visible text.
var markupElements = append(append([]string{}, allowedElements...),
	"a", "abbr", "article", "aside", "audio", "base", "body", "button", "canvas", "caption",
	"center", "col", "colgroup", "dd", "del", "details", "dl", "dt", "embed", "figcaption",
	"figure", "font", "footer", "form", "frame", "frameset", "head", "header", "html", "iframe",
	"img", "input", "ins", "label", "link", "main", "mark", "math", "meta", "nav", "noscript",
	"object", "option", "s", "script", "section", "select", "small", "source", "strike", "style",
	"summary", "svg", "template", "textarea", "tfoot", "title", "video",
)

var (
	markupTagPattern = regexp.MustCompile(`(?i)</?(?:` + strings.Join(markupElements, "|") + `)(?:\s[^<>]*)?/?>`)
	lineBreakPattern = regexp.MustCompile(`(?i)<br\s*/?>`)
	angleEscaper     = strings.NewReplacer("<", "&lt;", ">", "&gt;")
)

// EscapeAngles turns '<' and '>' that are not part of HTML markup into
// entities so the sanitizer cannot mistake "x<y" for a tag. Inside math
// segments every bracket is escaped except line breaks.
func EscapeAngles(text string) string {
	if !strings.ContainsAny(text, "<>") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for _, loc := range mathSegmentPattern.FindAllStringIndex(text, -1) {
		b.WriteString(escapeOutside(markupTagPattern, text[last:loc[0]]))
		b.WriteString(escapeOutside(lineBreakPattern, text[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(escapeOutside(markupTagPattern, text[last:]))
	return b.String()
}

// escapeOutside escapes brackets everywhere except in matches of keep.
func escapeOutside(keep *regexp.Regexp, text string) string {
	if !strings.ContainsAny(text, "<>") {
		return text
	}

	var b strings.Builder
	last := 0
	for _, loc := range keep.FindAllStringIndex(text, -1) {
		b.WriteString(angleEscaper.Replace(text[last:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(angleEscaper.Replace(text[last:]))
	return b.String()
}
