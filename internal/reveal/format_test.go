package reveal

import (
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"bold pair", "a **bold** b", "a <b>bold</b> b"},
		{"two pairs", "**x** and **y**", "<b>x</b> and <b>y</b>"},
		{"line break", "line1*line2", "line1<br/>line2"},
		{"break inside bold", "a **b*c** d", "a <b>b<br/>c</b> d"},
		{"trailing unmatched", "a**b", "a**b"},
		{"pair then unmatched", "a**b**c**d", "a<b>b</b>c**d"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Format(tc.in); got != tc.want {
				t.Fatalf("Format(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTokens_CountMatchesWords(t *testing.T) {
	s := Format("The **quick** brown fox")
	toks := Tokens(s)
	if len(toks) != len(strings.Split(s, " ")) {
		t.Fatalf("token count %d != word count", len(toks))
	}
	if toks[1] != "<b>quick</b>" {
		t.Fatalf("unexpected token %q", toks[1])
	}
}

func TestTokens_Empty(t *testing.T) {
	if got := Tokens(""); len(got) != 1 || got[0] != "" {
		t.Fatalf("empty input should yield one empty token, got %v", got)
	}
}
