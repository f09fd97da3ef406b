package ai

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// estimateTokens approximates a token count for providers that do not
// report usage. Best effort: falls back to a word count when the encoding
// cannot be loaded (offline BPE data missing).
func estimateTokens(s string) int {
	encOnce.Do(func() {
		enc, _ = tiktoken.GetEncoding("cl100k_base")
	})
	if enc == nil {
		return len(strings.Fields(s))
	}
	return len(enc.Encode(s, nil, nil))
}
