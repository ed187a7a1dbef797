package woocommerce

import "testing"

func TestStripHTML(t *testing.T) {
	cases := map[string]string{
		"":                                  "",
		"plain":                             "plain",
		"<p>One</p><p>Two  words</p>":       "One\nTwo words",
		"A &amp; B<br/>C":                   "A & B\nC",
		"<script>alert(1)</script>Safe":     "Safe",
		"<ul><li>a</li><li>b</li></ul>":     "a\nb",
		"<span>inline</span> <em>text</em>": "inline text",
	}
	for in, want := range cases {
		if got := StripHTML(in); got != want {
			t.Fatalf("StripHTML(%q) = %q, want %q", in, got, want)
		}
	}
}
