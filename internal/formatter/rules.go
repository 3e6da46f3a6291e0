package formatter

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"
)

// Rule is one entry of a rule table: a pattern, the label emitted for it and
// its priority. Lower priority values win when two matches overlap.
type Rule struct {
	Label    string
	Pattern  *regexp.Regexp
	Priority int
}

// RuleTable is an ordered set of rules resolved in a single pass over a text.
type RuleTable []Rule

// Match is a resolved, non-overlapping hit of a rule inside a text.
type Match struct {
	Start, End int
	Rule       *Rule
}

// Resolve returns the non-overlapping matches of the table in text, ordered by
// position. Candidates from every rule are collected first; overlaps are then
// settled in priority order so a higher-priority rule always keeps its text.
func (t RuleTable) Resolve(text string) []Match {
	var candidates []Match
	for i := range t {
		rule := &t[i]
		for _, loc := range rule.Pattern.FindAllStringIndex(text, -1) {
			if loc[0] == loc[1] || !atWordBoundary(text, loc[0], loc[1]) {
				continue
			}
			candidates = append(candidates, Match{Start: loc[0], End: loc[1], Rule: rule})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Rule.Priority != candidates[j].Rule.Priority {
			return candidates[i].Rule.Priority < candidates[j].Rule.Priority
		}
		return candidates[i].Start < candidates[j].Start
	})

	accepted := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		overlaps := false
		for _, a := range accepted {
			if c.Start < a.End && a.Start < c.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, c)
		}
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].Start < accepted[j].Start })
	return accepted
}

// Replace rewrites every resolved match with the output of emit, copying the
// text between matches unchanged.
func (t RuleTable) Replace(text string, emit func(m Match, matched string) string) string {
	matches := t.Resolve(text)
	if len(matches) == 0 {
		return text
	}

	out := make([]byte, 0, len(text)+len(matches)*48)
	last := 0
	for _, m := range matches {
		out = append(out, text[last:m.Start]...)
		out = append(out, emit(m, text[m.Start:m.End])...)
		last = m.End
	}
	out = append(out, text[last:]...)
	return string(out)
}

// atWordBoundary reports whether text[start:end] is not glued to a letter or
// digit on either side. Go's \b only knows ASCII, which breaks on Vietnamese
// words that begin or end with an accented letter.
func atWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
