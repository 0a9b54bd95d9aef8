package token

import "unicode"

// wordCodec treats maximal runs of non-space characters as tokens. Cut
// boundaries land at the start of a token, so surrounding whitespace stays
// attached to the preceding span and concatenation is exact.
type wordCodec struct{}

func (wordCodec) Name() string { return EncodingWords }

func (wordCodec) Count(text string) int {
	return len(tokenStarts(text))
}

func (wordCodec) Cut(text string, maxTokens int) (string, string) {
	if maxTokens <= 0 {
		return "", text
	}
	starts := tokenStarts(text)
	if len(starts) <= maxTokens {
		return text, ""
	}
	cut := starts[maxTokens]
	return text[:cut], text[cut:]
}

func (wordCodec) Tail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	starts := tokenStarts(text)
	if len(starts) <= n {
		return text
	}
	return text[starts[len(starts)-n]:]
}

// tokenStarts returns the byte offset of each token's first rune.
func tokenStarts(text string) []int {
	var starts []int
	inToken := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			inToken = false
			continue
		}
		if !inToken {
			starts = append(starts, i)
			inToken = true
		}
	}
	return starts
}
