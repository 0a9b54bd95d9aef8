package models

import "fmt"

// Chunk is a bounded contiguous span of a transcript, the unit of indexing
// and retrieval. Chunks are immutable after the stitching stage; a source is
// re-chunked as a whole, never edited in place.
type Chunk struct {
	// ID is the stable chunk identifier, "sourceID:ordinal".
	ID string `json:"id"`

	// SourceID is the transcript this chunk derives from.
	SourceID string `json:"source_id"`

	// Ordinal is the chunk's position within its source transcript.
	Ordinal int `json:"ordinal"`

	// Body is the chunk's own span of the normalized transcript, without
	// any inserted overlap.
	Body string `json:"body"`

	// Overlap is the trailing span of the previous chunk prepended at
	// stitch time. Empty for the first chunk of a transcript. Kept
	// separate from Body so the context assembler can de-duplicate
	// without fuzzy matching.
	Overlap string `json:"overlap,omitempty"`

	// TokenCount is the token count of Body.
	TokenCount int `json:"token_count"`

	// OverlapTokens is the token count of Overlap.
	OverlapTokens int `json:"overlap_tokens,omitempty"`

	// ParentID is a weak reference to the containing parent block, set
	// only when hierarchical retrieval is enabled.
	ParentID string `json:"parent_id,omitempty"`

	// Metadata is carried through unmodified from the source transcript.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Text returns the stored chunk text as indexed: overlap prefix plus body.
func (c Chunk) Text() string {
	return c.Overlap + c.Body
}

// ChunkID builds the stable identifier for a chunk of a source.
func ChunkID(sourceID string, ordinal int) string {
	return fmt.Sprintf("%s:%d", sourceID, ordinal)
}

// ParentBlock is a larger contiguous span grouping consecutive chunks, used
// for hierarchical context expansion. Its text is the concatenation of its
// children's bodies in order, with no added overlap.
type ParentBlock struct {
	// ID is "sourceID:p<ordinal>".
	ID string `json:"id"`

	// SourceID is the transcript this block derives from.
	SourceID string `json:"source_id"`

	// Ordinal is the block's position within its source transcript.
	Ordinal int `json:"ordinal"`

	// Text is the union of the children's non-overlap spans.
	Text string `json:"text"`

	// TokenCount is the token count of Text.
	TokenCount int `json:"token_count"`

	// ChildIDs lists the chunk IDs contained in this block, in order.
	ChildIDs []string `json:"child_ids"`
}

// ParentID builds the stable identifier for a parent block of a source.
func ParentID(sourceID string, ordinal int) string {
	return fmt.Sprintf("%s:p%d", sourceID, ordinal)
}
