package models

// ScoredChunk pairs a retrieved chunk with its similarity score and, when
// hierarchical retrieval is enabled, the resolved parent block.
type ScoredChunk struct {
	Chunk      Chunk
	Similarity float32
	Parent     *ParentBlock
}

// RetrievalResult is the ordered output of a single retrieval query.
// Results are sorted by non-increasing similarity, ties broken by ascending
// chunk ordinal. Lives for a single query.
type RetrievalResult struct {
	Query   string
	Results []ScoredChunk
}

// Span is one de-duplicated text segment of an assembled context window.
type Span struct {
	// ChunkID or ParentID the text came from.
	SourceRef string

	// SourceID of the originating transcript.
	SourceID string

	// Text with any duplicated overlap already stripped.
	Text string

	// TokenCount of Text.
	TokenCount int

	// Similarity score of the result this span was built from.
	Similarity float32

	// Metadata of the originating chunk.
	Metadata map[string]string
}

// ContextWindow is the final budget-bounded context block handed to the
// downstream generator. Constructed fresh per query, discarded after use.
type ContextWindow struct {
	Spans []Span

	// TokenCount is the cumulative token count of all spans and never
	// exceeds the budget the window was assembled under.
	TokenCount int

	// Truncated reports whether low-scoring results were dropped to
	// honor the token budget.
	Truncated bool
}

// Text joins the window's spans into one context string.
func (w ContextWindow) Text() string {
	var out string
	for i, s := range w.Spans {
		if i > 0 {
			out += "\n\n"
		}
		out += s.Text
	}
	return out
}
