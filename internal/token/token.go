// Package token provides the single token-counting scheme used across
// chunk sizing, overlap insertion, parent bounds, and context budgets.
// All stages must share one Codec; mixing schemes would silently skew
// every size invariant downstream.
package token

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Encoding names accepted by New.
const (
	// EncodingCL100K is the OpenAI cl100k_base BPE, matching the
	// embedding models used at index time. Requires the BPE ranks to be
	// fetchable (cached after first use).
	EncodingCL100K = "cl100k_base"

	// EncodingWords is a whitespace word tokenizer. Deterministic and
	// dependency-free; used in tests and offline runs.
	EncodingWords = "words"
)

// Codec counts tokens and cuts text at token boundaries. Cuts are exact:
// head + tail always reconstructs the input string byte for byte.
type Codec interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Cut splits text after at most maxTokens tokens. head holds the
	// first maxTokens tokens, tail the remainder; head+tail == text.
	Cut(text string, maxTokens int) (head, tail string)

	// Tail returns the literal suffix of text holding its last n tokens
	// (the whole text when it has fewer than n).
	Tail(text string, n int) string

	// Name identifies the encoding, recorded alongside the index.
	Name() string
}

// New returns the Codec for the given encoding name.
func New(encoding string) (Codec, error) {
	switch encoding {
	case EncodingCL100K, "":
		tk, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err != nil {
			return nil, fmt.Errorf("load %s encoding: %w", EncodingCL100K, err)
		}
		return &bpeCodec{tk: tk, name: EncodingCL100K}, nil
	case EncodingWords:
		return wordCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown token encoding: %s", encoding)
	}
}

// bpeCodec wraps tiktoken-go. Byte-level BPE is lossless, so decoding a
// prefix/suffix of the token ids yields an exact substring of the input.
type bpeCodec struct {
	tk   *tiktoken.Tiktoken
	name string
}

func (c *bpeCodec) Name() string { return c.name }

func (c *bpeCodec) Count(text string) int {
	return len(c.tk.Encode(text, nil, nil))
}

func (c *bpeCodec) Cut(text string, maxTokens int) (string, string) {
	if maxTokens <= 0 {
		return "", text
	}
	ids := c.tk.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text, ""
	}
	head := c.tk.Decode(ids[:maxTokens])
	return head, text[len(head):]
}

func (c *bpeCodec) Tail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	ids := c.tk.Encode(text, nil, nil)
	if len(ids) <= n {
		return text
	}
	tail := c.tk.Decode(ids[len(ids)-n:])
	return text[len(text)-len(tail):]
}
