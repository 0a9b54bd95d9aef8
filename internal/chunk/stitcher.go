package chunk

import (
	"fmt"

	"github.com/voxrag/voxrag/internal/models"
	"github.com/voxrag/voxrag/internal/token"
)

// Stitcher turns refined chunk texts into identified chunks with bounded
// token overlap and, when hierarchy is enabled, parent blocks.
type Stitcher struct {
	codec     token.Codec
	overlap   int
	hierarchy bool
	parentMin int
	parentMax int
}

// NewStitcher creates a Stitcher. The overlap must be smaller than
// min_chunk_size so a chunk can never consist entirely of repeated text;
// parent bounds apply only when hierarchy is on.
func NewStitcher(codec token.Codec, overlap, minTokens int, hierarchy bool, parentMin, parentMax int) (*Stitcher, error) {
	if overlap < 0 {
		return nil, fmt.Errorf("chunk_overlap must not be negative: %d", overlap)
	}
	if overlap >= minTokens {
		return nil, fmt.Errorf("chunk_overlap %d must be below min_chunk_size %d", overlap, minTokens)
	}
	if hierarchy {
		if parentMin <= 0 || parentMax < parentMin {
			return nil, fmt.Errorf("invalid parent block bounds [%d, %d]", parentMin, parentMax)
		}
	}
	return &Stitcher{
		codec:     codec,
		overlap:   overlap,
		hierarchy: hierarchy,
		parentMin: parentMin,
		parentMax: parentMax,
	}, nil
}

// Stitch assigns IDs, prepends overlap, and groups parent blocks. Bodies
// hold each chunk's own span; the overlap prefix is stored separately so
// de-duplication downstream needs no text matching. meta is attached to
// every chunk unmodified.
func (s *Stitcher) Stitch(sourceID string, texts []string, meta map[string]string) ([]models.Chunk, []models.ParentBlock) {
	if len(texts) == 0 {
		return nil, nil
	}

	chunks := make([]models.Chunk, len(texts))
	for i, body := range texts {
		c := models.Chunk{
			ID:         models.ChunkID(sourceID, i),
			SourceID:   sourceID,
			Ordinal:    i,
			Body:       body,
			TokenCount: s.codec.Count(body),
			Metadata:   meta,
		}
		if i > 0 && s.overlap > 0 {
			c.Overlap = s.codec.Tail(texts[i-1], s.overlap)
			c.OverlapTokens = s.codec.Count(c.Overlap)
		}
		chunks[i] = c
	}

	if !s.hierarchy {
		return chunks, nil
	}

	parents := s.groupParents(sourceID, chunks)
	return chunks, parents
}

// groupParents packs runs of consecutive chunks into blocks of at most
// parentMax tokens. A block's text is the union of its children's bodies,
// without overlap. The final block of a source may fall below parentMin.
func (s *Stitcher) groupParents(sourceID string, chunks []models.Chunk) []models.ParentBlock {
	var parents []models.ParentBlock

	open := func(ordinal int) models.ParentBlock {
		return models.ParentBlock{
			ID:       models.ParentID(sourceID, ordinal),
			SourceID: sourceID,
			Ordinal:  ordinal,
		}
	}

	cur := open(0)
	for i := range chunks {
		c := &chunks[i]
		if len(cur.ChildIDs) > 0 && cur.TokenCount+c.TokenCount > s.parentMax {
			parents = append(parents, cur)
			cur = open(cur.Ordinal + 1)
		}
		cur.Text += c.Body
		cur.TokenCount += c.TokenCount
		cur.ChildIDs = append(cur.ChildIDs, c.ID)
		c.ParentID = cur.ID
	}
	parents = append(parents, cur)
	return parents
}
