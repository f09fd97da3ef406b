// Package reveal turns a fully-received response into the staged,
// token-by-token display the client renders.
package reveal

import "strings"

// Format converts the lightweight emphasis syntax of provider responses
// into presentation markup. Pairs of "**" toggle bold spans (1st opens,
// 2nd closes, and so on); a trailing unmatched "**" stays literal. A lone
// "*" becomes a line break.
func Format(s string) string {
	parts := strings.Split(s, "**")
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i, p := range parts {
		p = strings.ReplaceAll(p, "*", "<br/>")
		switch {
		case i == 0:
			b.WriteString(p)
		case i%2 == 1 && i == len(parts)-1:
			// odd delimiter count: the last one never got a partner
			b.WriteString("**")
			b.WriteString(p)
		case i%2 == 1:
			b.WriteString("<b>")
			b.WriteString(p)
			b.WriteString("</b>")
		default:
			b.WriteString(p)
		}
	}
	return b.String()
}

// Tokens splits formatted text into the reveal units. Each token is
// re-joined with a single trailing space on append, so the token count is
// exactly the whitespace-separated word count.
func Tokens(s string) []string {
	return strings.Split(s, " ")
}
