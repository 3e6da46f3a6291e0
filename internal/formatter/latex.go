package formatter

import (
	"regexp"
	"strings"
)

var (
	// Block segments may span lines; inline segments stay on one line so a
	// lone '$' cannot pair with another one paragraphs away.
	blockMathPattern  = regexp.MustCompile(`\$\$([^$]+)\$\$`)
	inlineMathPattern = regexp.MustCompile(`\$([^$\n]+)\$`)

	// mathSegmentPattern matches already escaped \(..\) and \[..\] segments.
	mathSegmentPattern = regexp.MustCompile(mathSegment)

	// protectedPattern finds text the bare-symbol pass must not touch: math
	// segments, HTML tags and character references.
	protectedPattern = regexp.MustCompile(mathSegment + `|<[^<>]*>|&(?:[A-Za-z][A-Za-z0-9]*|#[0-9]+|#[xX][0-9A-Fa-f]+);`)
)

const mathSegment = `\\\((?s:.*?)\\\)|\\\[(?s:.*?)\\\]`

// mathSymbols are function and symbol names rendered as math even when the
// model writes them bare. Ordinary words that collide with them ("log",
// "tan") get wrapped too.
var mathSymbols = newSymbolTable("sin", "cos", "tan", "log", "ln", "π", "theta", "alpha", "beta", "gamma", "delta")

func newSymbolTable(names ...string) RuleTable {
	table := make(RuleTable, 0, len(names))
	for i, name := range names {
		table = append(table, Rule{
			Label:    name,
			Pattern:  regexp.MustCompile(regexp.QuoteMeta(name)),
			Priority: i,
		})
	}
	return table
}

// NormalizeDelimiters rewrites $$...$$ to \[...\] and $...$ to \(...\).
// The block pass runs first so its dollar pairs are never consumed as two
// inline segments. Unmatched dollars stay literal.
func NormalizeDelimiters(text string) string {
	if !strings.Contains(text, "$") {
		return text
	}
	text = blockMathPattern.ReplaceAllString(text, `\[${1}\]`)
	return inlineMathPattern.ReplaceAllString(text, `\(${1}\)`)
}

// WrapBareSymbols wraps each standalone math symbol name outside existing
// math segments and HTML tags in an inline math escape.
func WrapBareSymbols(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for _, loc := range protectedPattern.FindAllStringIndex(text, -1) {
		b.WriteString(wrapSymbols(text[last:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(wrapSymbols(text[last:]))
	return b.String()
}

func wrapSymbols(text string) string {
	if text == "" {
		return text
	}
	return mathSymbols.Replace(text, func(m Match, matched string) string {
		// \sin written outside delimiters is already a LaTeX command.
		if m.Start > 0 && text[m.Start-1] == '\\' {
			return matched
		}
		return `\(` + matched + `\)`
	})
}

// NormalizeLaTeX runs the delimiter passes, escapes stray angle brackets and
// then runs the bare-symbol pass.
func NormalizeLaTeX(text string) string {
	return WrapBareSymbols(EscapeAngles(NormalizeDelimiters(text)))
}
