package service

import (
	"fmt"

	"github.com/voxrag/voxrag/internal/models"
)

// Assembler builds a budget-bounded context window from retrieval
// results. De-duplication uses the stored chunk boundaries, never text
// matching: a chunk's overlap prefix is dropped whenever the neighbor it
// repeats is also in the window, and chunks covered by an included
// parent block are skipped entirely.
type Assembler struct {
	budget int
}

// NewAssembler creates an assembler with a token budget. Budget checks
// use the token counts recorded at stitch time, so assembly itself never
// re-tokenizes text.
func NewAssembler(budget int) (*Assembler, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("context budget must be positive: %d", budget)
	}
	return &Assembler{budget: budget}, nil
}

// keptOverlap records a span that entered the window with its overlap
// prefix intact, so it can be trimmed if its predecessor arrives later.
type keptOverlap struct {
	spanIdx    int
	predID     string
	body       string
	bodyTokens int
}

// Assemble walks results in score order and adds whole spans until the
// budget is reached. A span that would exceed the budget ends assembly;
// spans are never split. Overlap stripping is order-independent: whenever
// both neighbors end up in the window, the successor holds only its body,
// even when the successor scored higher and was added first.
func (a *Assembler) Assemble(result models.RetrievalResult) models.ContextWindow {
	window := models.ContextWindow{}

	included := make(map[string]bool)        // chunk IDs already covered
	includedParents := make(map[string]bool) // parent IDs already included
	kept := make(map[string]keptOverlap)     // chunk ID -> span with overlap intact

	for _, res := range result.Results {
		span, ok := a.buildSpan(res, included, includedParents)
		if !ok {
			continue
		}

		if window.TokenCount+span.TokenCount > a.budget {
			window.Truncated = true
			break
		}

		window.Spans = append(window.Spans, span)
		window.TokenCount += span.TokenCount

		if res.Parent != nil {
			includedParents[res.Parent.ID] = true
			for _, childID := range res.Parent.ChildIDs {
				included[childID] = true
			}
		} else {
			c := res.Chunk
			included[c.ID] = true
			if c.Overlap != "" && span.Text != c.Body {
				kept[c.ID] = keptOverlap{
					spanIdx:    len(window.Spans) - 1,
					predID:     models.ChunkID(c.SourceID, c.Ordinal-1),
					body:       c.Body,
					bodyTokens: c.TokenCount,
				}
			}
		}

		// A newly covered chunk may be the predecessor of a span whose
		// overlap is still in the window; trim it so the text appears
		// once. The freed tokens count toward later budget checks.
		for id, k := range kept {
			if !included[k.predID] {
				continue
			}
			trimmed := &window.Spans[k.spanIdx]
			window.TokenCount -= trimmed.TokenCount - k.bodyTokens
			trimmed.Text = k.body
			trimmed.TokenCount = k.bodyTokens
			delete(kept, id)
		}
	}

	return window
}

// buildSpan turns one scored result into a de-duplicated span. Returns
// ok=false when the result is already fully covered by the window.
func (a *Assembler) buildSpan(res models.ScoredChunk, included, includedParents map[string]bool) (models.Span, bool) {
	if res.Parent != nil {
		if includedParents[res.Parent.ID] {
			return models.Span{}, false
		}
		return models.Span{
			SourceRef:  res.Parent.ID,
			SourceID:   res.Parent.SourceID,
			Text:       res.Parent.Text,
			TokenCount: res.Parent.TokenCount,
			Similarity: res.Similarity,
			Metadata:   res.Chunk.Metadata,
		}, true
	}

	c := res.Chunk
	if included[c.ID] {
		return models.Span{}, false
	}

	text := c.Text()
	tokens := c.TokenCount + c.OverlapTokens
	// The overlap prefix repeats the tail of the preceding chunk. When
	// that chunk is already in the window its text is covered, so only
	// the body is new.
	if c.Overlap != "" && included[models.ChunkID(c.SourceID, c.Ordinal-1)] {
		text = c.Body
		tokens = c.TokenCount
	}

	return models.Span{
		SourceRef:  c.ID,
		SourceID:   c.SourceID,
		Text:       text,
		TokenCount: tokens,
		Similarity: res.Similarity,
		Metadata:   c.Metadata,
	}, true
}
