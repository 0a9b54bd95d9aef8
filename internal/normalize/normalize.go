// Package normalize cleans raw transcript text before chunking: filler
// removal, whitespace collapsing, and optional boilerplate intro/outro
// trimming. Normalization is a pure transform and idempotent.
package normalize

import (
	"strings"
)

// Config controls normalization behavior.
type Config struct {
	// Fillers is the filler/discourse-marker list. Matching is
	// case-insensitive against the whitespace-delimited token with
	// surrounding punctuation stripped. Nil means DefaultFillers.
	Fillers []string

	// TrimBoilerplate enables intro/outro removal.
	TrimBoilerplate bool

	// IntroMarkers and OutroMarkers are boilerplate phrases searched
	// case-insensitively near the transcript edges. An intro marker cuts
	// everything up to and including the phrase; an outro marker cuts
	// from the phrase to the end.
	IntroMarkers []string
	OutroMarkers []string

	// SearchFraction bounds how far from each edge markers are searched,
	// as a fraction of the text length. Zero means the default 0.15.
	SearchFraction float64
}

const defaultSearchFraction = 0.15

// Normalizer applies the cleaning pipeline. Safe for concurrent use.
type Normalizer struct {
	fillers        map[string]struct{}
	trim           bool
	introMarkers   []string
	outroMarkers   []string
	searchFraction float64
}

// New creates a Normalizer from Config.
func New(cfg Config) *Normalizer {
	fillers := cfg.Fillers
	if fillers == nil {
		fillers = DefaultFillers()
	}
	set := make(map[string]struct{}, len(fillers))
	for _, f := range fillers {
		set[strings.ToLower(f)] = struct{}{}
	}

	frac := cfg.SearchFraction
	if frac <= 0 || frac > 1 {
		frac = defaultSearchFraction
	}

	return &Normalizer{
		fillers:        set,
		trim:           cfg.TrimBoilerplate,
		introMarkers:   cfg.IntroMarkers,
		outroMarkers:   cfg.OutroMarkers,
		searchFraction: frac,
	}
}

// Normalize cleans transcript text. Empty input yields empty output; the
// result never has more characters than the input, and normalizing twice
// equals normalizing once.
func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	if n.trim {
		text = n.trimBoilerplate(text)
	}
	text = n.removeFillers(text)
	return collapseWhitespace(text)
}

// trimBoilerplate cuts a detected intro span (start through the marker) and
// outro span (marker through the end). Markers are only honored inside the
// edge windows so a mid-transcript mention of a phrase is not a cut point.
// Once cut, the marker is gone, which keeps the operation idempotent.
func (n *Normalizer) trimBoilerplate(text string) string {
	lower := strings.ToLower(text)
	window := int(float64(len(text)) * n.searchFraction)

	for _, marker := range n.introMarkers {
		m := strings.ToLower(marker)
		idx := strings.Index(lower, m)
		if idx >= 0 && idx < window {
			text = text[idx+len(m):]
			lower = lower[idx+len(m):]
		}
	}

	for _, marker := range n.outroMarkers {
		m := strings.ToLower(marker)
		idx := strings.LastIndex(lower, m)
		if idx >= 0 && idx+len(m) > len(lower)-window {
			text = text[:idx]
			lower = lower[:idx]
		}
	}

	return text
}

// removeFillers drops whitespace-delimited tokens whose core word is in the
// filler set. Line structure is preserved so paragraph boundaries survive
// for the splitter.
func (n *Normalizer) removeFillers(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		fields := strings.Fields(line)
		kept := fields[:0]
		for _, f := range fields {
			if _, drop := n.fillers[coreWord(f)]; !drop {
				kept = append(kept, f)
			}
		}
		lines[i] = strings.Join(kept, " ")
	}
	return strings.Join(lines, "\n")
}

// coreWord lowercases a token and strips leading/trailing punctuation so
// "Um," and "like..." match their filler entries.
func coreWord(tok string) string {
	return strings.ToLower(strings.Trim(tok, ".,;:!?\"'()[]{}-"))
}

// collapseWhitespace normalizes runs of blank lines to a single paragraph
// break and trims the outer edges. Intra-line runs were already collapsed
// by field splitting in removeFillers.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")

	var out []string
	blank := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			blank++
			continue
		}
		if blank > 0 && len(out) > 0 {
			out = append(out, "")
		}
		blank = 0
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
