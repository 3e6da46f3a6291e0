package formatter

import "testing"

func TestEscapeAngles(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no brackets", "x = 1", "x = 1"},
		{"spaced comparison", "a < b", "a &lt; b"},
		{"inline math", `\(x<y\)`, `\(x&lt;y\)`},
		{"math that looks like a tag", `\(a<b\) và \(c>d\)`, `\(a&lt;b\) và \(c&gt;d\)`},
		{"known tags kept", `<p class="mt-2">x<br/>y</p>`, `<p class="mt-2">x<br/>y</p>`},
		{"tag-shaped text with unknown name", "x<y và y>z", "x&lt;y và y&gt;z"},
		{"line break inside block math", `<p>\[a<br>b<c\]</p>`, `<p>\[a<br>b&lt;c\]</p>`},
		{"unsafe markup left for the sanitizer", `<script>alert(1)</script>`, `<script>alert(1)</script>`},
		{"already escaped", `\(x&lt;y\)`, `\(x&lt;y\)`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EscapeAngles(tc.input)
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
