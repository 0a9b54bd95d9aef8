package token

import (
	"strings"
	"testing"
)

func TestWordCodec_Count(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "whitespace only", text: "  \n\t ", want: 0},
		{name: "single word", text: "hello", want: 1},
		{name: "simple sentence", text: "the quick brown fox", want: 4},
		{name: "mixed whitespace", text: "one\ntwo\t three  four", want: 4},
		{name: "leading and trailing space", text: "  padded words  ", want: 2},
	}

	c := wordCodec{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Count(tt.text); got != tt.want {
				t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestWordCodec_CutExactReconstruction(t *testing.T) {
	c := wordCodec{}
	text := "alpha beta gamma\ndelta epsilon  zeta"

	for max := 0; max <= 8; max++ {
		head, tail := c.Cut(text, max)
		if head+tail != text {
			t.Errorf("Cut(max=%d): head+tail != text: %q + %q", max, head, tail)
		}
		if got := c.Count(head); got > max {
			t.Errorf("Cut(max=%d): head has %d tokens", max, got)
		}
	}

	// Cutting past the end returns everything in head.
	head, tail := c.Cut(text, 100)
	if head != text || tail != "" {
		t.Errorf("Cut past end: head=%q tail=%q", head, tail)
	}
}

func TestWordCodec_Tail(t *testing.T) {
	c := wordCodec{}
	text := "one two three four five"

	tail := c.Tail(text, 2)
	if tail != "four five" {
		t.Errorf("Tail(2) = %q, want %q", tail, "four five")
	}
	if !strings.HasSuffix(text, tail) {
		t.Errorf("Tail(2) = %q is not a suffix of text", tail)
	}
	if got := c.Count(tail); got != 2 {
		t.Errorf("Tail(2) has %d tokens", got)
	}

	// Asking for more tokens than exist returns the whole text.
	if got := c.Tail(text, 50); got != text {
		t.Errorf("Tail(50) = %q, want full text", got)
	}
	if got := c.Tail(text, 0); got != "" {
		t.Errorf("Tail(0) = %q, want empty", got)
	}
}

func TestNew_UnknownEncoding(t *testing.T) {
	if _, err := New("rot13"); err == nil {
		t.Error("New(rot13) expected error")
	}
}

func TestNew_Words(t *testing.T) {
	c, err := New(EncodingWords)
	if err != nil {
		t.Fatalf("New(words) error = %v", err)
	}
	if c.Name() != EncodingWords {
		t.Errorf("Name() = %q", c.Name())
	}
}
