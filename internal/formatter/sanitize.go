package formatter

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// allowedElements is the markup the chat client renders.
var allowedElements = []string{
	"p", "br", "span", "div", "ul", "ol", "li",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"table", "thead", "tbody", "tr", "th", "td",
	"strong", "b", "em", "i", "u", "sub", "sup", "code", "pre", "blockquote", "hr",
}

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(allowedElements...)
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	p.AllowAttrs("data-term").Matching(regexp.MustCompile(`^[\p{L}\p{N} ]+$`)).OnElements("span")
	p.AllowAttrs("data-practice-id").Matching(bluemonday.Integer).OnElements("div")
	return p
}

// Sanitize strips scripts, event handlers and any markup outside the set the
// chat client renders. Model output is untrusted and goes straight into the DOM.
func Sanitize(fragment string) string {
	return policy.Sanitize(fragment)
}
