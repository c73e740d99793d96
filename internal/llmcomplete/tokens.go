package llmcomplete

import (
	"github.com/tiktoken-go/tokenizer"
)

// CountTokens estimates the token count of text with the o200k_base encoding. It falls back to len/4 if the encoder is unavailable.
func CountTokens(text string) int {
	enc, err := tokenizer.Get(tokenizer.O200kBase)
	if err != nil {
		return len(text) / 4
	}
	count, err := enc.Count(text)
	if err != nil {
		return len(text) / 4
	}
	return count
}
