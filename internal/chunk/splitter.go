// Package chunk turns normalized transcript text into bounded, overlapping,
// identified chunks: recursive splitting, optional semantic boundary
// refinement, and overlap stitching with parent-block grouping.
package chunk

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/voxrag/voxrag/internal/token"
)

// Splitter performs recursive delimiter-hierarchy splitting with token
// bounds. Output pieces concatenate back to the input exactly; delimiters
// stay attached to the piece they terminate.
type Splitter struct {
	codec token.Codec
	max   int
	min   int
}

// NewSplitter creates a Splitter. Bounds are validated here so a bad
// configuration fails before any text is processed.
func NewSplitter(codec token.Codec, maxTokens, minTokens int) (*Splitter, error) {
	if minTokens <= 0 || maxTokens <= 0 {
		return nil, fmt.Errorf("chunk sizes must be positive: min=%d max=%d", minTokens, maxTokens)
	}
	if minTokens > maxTokens {
		return nil, fmt.Errorf("min_chunk_size %d exceeds max_chunk_size %d", minTokens, maxTokens)
	}
	return &Splitter{codec: codec, max: maxTokens, min: minTokens}, nil
}

// Split divides text into ordered raw chunks of at most max tokens each,
// packing adjacent segments as close to max as possible and folding
// undersized remainders into a neighbor where the budget allows. The final
// remainder may be shorter than min. Empty input yields no chunks.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	atoms := s.atomize(text, 0)
	return s.mergeSmall(s.pack(atoms))
}

// delimiter hierarchy: paragraph break, line break, sentence boundary,
// then a hard token cut as the last resort.
const levelHard = 2

// atomize splits text into segments of at most max tokens each, recursing
// to the next delimiter level for any segment still over the limit.
func (s *Splitter) atomize(text string, level int) []string {
	if s.codec.Count(text) <= s.max {
		return []string{text}
	}
	if level > levelHard {
		return s.hardCut(text)
	}

	segs := splitSegments(text, level)
	if len(segs) == 1 {
		return s.atomize(text, level+1)
	}

	var out []string
	for _, seg := range segs {
		if s.codec.Count(seg) > s.max {
			out = append(out, s.atomize(seg, level+1)...)
			continue
		}
		out = append(out, seg)
	}
	return out
}

// pack greedily joins consecutive atoms, keeping each chunk as close to
// max as possible without exceeding it. Earlier text fills earlier chunks,
// which makes the split deterministic and order-preserving.
func (s *Splitter) pack(atoms []string) []string {
	var out []string
	cur := ""
	for _, atom := range atoms {
		if cur == "" {
			cur = atom
			continue
		}
		if s.codec.Count(cur+atom) > s.max {
			out = append(out, cur)
			cur = atom
			continue
		}
		cur += atom
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

// hardCut slices text at raw token boundaries when no delimiter helps.
func (s *Splitter) hardCut(text string) []string {
	var out []string
	for text != "" {
		head, tail := s.codec.Cut(text, s.max)
		out = append(out, head)
		text = tail
	}
	return out
}

// mergeSmall folds pieces under min into a neighbor when the combined size
// stays within max. The last piece is left as-is even when undersized.
func (s *Splitter) mergeSmall(pieces []string) []string {
	var out []string
	for i := 0; i < len(pieces); i++ {
		cur := pieces[i]
		for s.codec.Count(cur) < s.min && i+1 < len(pieces) &&
			s.codec.Count(cur+pieces[i+1]) <= s.max {
			i++
			cur += pieces[i]
		}
		if s.codec.Count(cur) < s.min && len(out) > 0 && i+1 < len(pieces) &&
			s.codec.Count(out[len(out)-1]+cur) <= s.max {
			out[len(out)-1] += cur
			continue
		}
		out = append(out, cur)
	}
	return out
}

// splitSegments splits text after each delimiter of the given level,
// keeping the delimiter on the left segment.
func splitSegments(text string, level int) []string {
	switch level {
	case 0:
		return splitAfter(text, "\n\n")
	case 1:
		return splitAfter(text, "\n")
	default:
		return splitSentences(text)
	}
}

// splitAfter is strings.SplitAfter without the trailing empty segment.
func splitAfter(text, sep string) []string {
	segs := strings.SplitAfter(text, sep)
	if n := len(segs); n > 0 && segs[n-1] == "" {
		segs = segs[:n-1]
	}
	return segs
}

// splitSentences cuts after a sentence terminator followed by whitespace.
// A terminator preceded by an uppercase letter is treated as an
// abbreviation ("Dr.", "U.S.") and skipped.
func splitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	byteIdx := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		next := byteIdx + len(string(r))
		if isTerminator(r) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			if !isAbbreviation(runes, i) {
				// include the single following whitespace rune
				next += len(string(runes[i+1]))
				out = append(out, text[start:next])
				start = next
				byteIdx = next
				i++
				continue
			}
		}
		byteIdx = next
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// isAbbreviation reports whether the terminator at runes[i] likely ends an
// abbreviation rather than a sentence: an uppercase letter right before it
// ("U.S.", initials) or a short capitalized word ("Dr.", "Mr.").
func isAbbreviation(runes []rune, i int) bool {
	if i == 0 {
		return false
	}
	if unicode.IsUpper(runes[i-1]) {
		return true
	}
	start := i
	for start > 0 && unicode.IsLetter(runes[start-1]) {
		start--
	}
	word := runes[start:i]
	return len(word) > 0 && len(word) <= 2 && unicode.IsUpper(word[0])
}
