package service

import (
	"strings"
	"testing"

	"github.com/voxrag/voxrag/internal/models"
)

func scoredChunk(sourceID string, ordinal int, body, overlap string, sim float32) models.ScoredChunk {
	bodyTokens := len(strings.Fields(body))
	overlapTokens := len(strings.Fields(overlap))
	return models.ScoredChunk{
		Chunk: models.Chunk{
			ID:            models.ChunkID(sourceID, ordinal),
			SourceID:      sourceID,
			Ordinal:       ordinal,
			Body:          body,
			Overlap:       overlap,
			TokenCount:    bodyTokens,
			OverlapTokens: overlapTokens,
		},
		Similarity: sim,
	}
}

func TestAssemble_BudgetAndTruncation(t *testing.T) {
	a, err := NewAssembler(8)
	if err != nil {
		t.Fatal(err)
	}

	result := models.RetrievalResult{
		Query: "q",
		Results: []models.ScoredChunk{
			scoredChunk("vid1", 0, "one two three four", "", 0.9),
			scoredChunk("vid2", 0, "five six seven", "", 0.8),
			scoredChunk("vid3", 0, "eight nine ten", "", 0.7),
		},
	}

	window := a.Assemble(result)
	if len(window.Spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(window.Spans))
	}
	if window.TokenCount != 7 {
		t.Errorf("TokenCount = %d, want 7", window.TokenCount)
	}
	if !window.Truncated {
		t.Error("window should be marked truncated")
	}
	if window.Spans[0].Similarity < window.Spans[1].Similarity {
		t.Error("spans not in score order")
	}
}

func TestAssemble_FitsWithoutTruncation(t *testing.T) {
	a, err := NewAssembler(100)
	if err != nil {
		t.Fatal(err)
	}

	result := models.RetrievalResult{
		Results: []models.ScoredChunk{
			scoredChunk("vid1", 0, "alpha beta", "", 0.9),
			scoredChunk("vid1", 5, "gamma delta", "", 0.5),
		},
	}

	window := a.Assemble(result)
	if len(window.Spans) != 2 || window.Truncated {
		t.Fatalf("window = %+v", window)
	}
	if window.TokenCount != 4 {
		t.Errorf("TokenCount = %d, want 4", window.TokenCount)
	}
}

func TestAssemble_DropsOverlapWhenPredecessorIncluded(t *testing.T) {
	a, err := NewAssembler(100)
	if err != nil {
		t.Fatal(err)
	}

	// Adjacent chunks: chunk 1's overlap repeats the tail of chunk 0.
	result := models.RetrievalResult{
		Results: []models.ScoredChunk{
			scoredChunk("vid1", 0, "the oven must be hot", "", 0.9),
			scoredChunk("vid1", 1, "then add the pasta", "be hot ", 0.8),
		},
	}

	window := a.Assemble(result)
	if len(window.Spans) != 2 {
		t.Fatalf("got %d spans", len(window.Spans))
	}
	if window.Spans[1].Text != "then add the pasta" {
		t.Errorf("second span = %q, want body only", window.Spans[1].Text)
	}
	if window.TokenCount != 9 {
		t.Errorf("TokenCount = %d, want 9", window.TokenCount)
	}

	text := window.Text()
	if strings.Count(text, "be hot") != 1 {
		t.Errorf("overlap text duplicated in window: %q", text)
	}
}

func TestAssemble_DropsOverlapWhenSuccessorScoresHigher(t *testing.T) {
	a, err := NewAssembler(100)
	if err != nil {
		t.Fatal(err)
	}

	// The later chunk outranks its predecessor, so it enters the window
	// first with its overlap intact. Once the predecessor is added, that
	// overlap repeats the predecessor's tail and must be trimmed.
	result := models.RetrievalResult{
		Results: []models.ScoredChunk{
			scoredChunk("vid1", 1, "then add the pasta", "be hot ", 0.9),
			scoredChunk("vid1", 0, "the oven must be hot", "", 0.8),
		},
	}

	window := a.Assemble(result)
	if len(window.Spans) != 2 {
		t.Fatalf("got %d spans", len(window.Spans))
	}
	if window.Spans[0].Text != "then add the pasta" {
		t.Errorf("first span = %q, want overlap trimmed", window.Spans[0].Text)
	}
	if window.TokenCount != 9 {
		t.Errorf("TokenCount = %d, want 9", window.TokenCount)
	}

	text := window.Text()
	if strings.Count(text, "be hot") != 1 {
		t.Errorf("overlap text duplicated in window: %q", text)
	}
}

func TestAssemble_TrimmedOverlapFreesBudget(t *testing.T) {
	a, err := NewAssembler(12)
	if err != nil {
		t.Fatal(err)
	}

	result := models.RetrievalResult{
		Results: []models.ScoredChunk{
			scoredChunk("vid1", 1, "then add the pasta", "be hot ", 0.9),
			scoredChunk("vid1", 0, "the oven must be hot", "", 0.8),
			scoredChunk("vid2", 0, "stir well", "", 0.7),
		},
	}

	// Untrimmed the first two spans hold 11 tokens and the third would
	// not fit; trimming the overlap leaves 9, so it does.
	window := a.Assemble(result)
	if len(window.Spans) != 3 {
		t.Fatalf("got %d spans, want 3", len(window.Spans))
	}
	if window.TokenCount != 11 {
		t.Errorf("TokenCount = %d, want 11", window.TokenCount)
	}
	if window.Truncated {
		t.Error("window should not be truncated")
	}
}

func TestAssemble_KeepsOverlapWhenPredecessorAbsent(t *testing.T) {
	a, err := NewAssembler(100)
	if err != nil {
		t.Fatal(err)
	}

	result := models.RetrievalResult{
		Results: []models.ScoredChunk{
			scoredChunk("vid1", 1, "then add the pasta", "be hot ", 0.8),
		},
	}

	window := a.Assemble(result)
	if window.Spans[0].Text != "be hot then add the pasta" {
		t.Errorf("span = %q, want overlap kept", window.Spans[0].Text)
	}
	if window.TokenCount != 6 {
		t.Errorf("TokenCount = %d, want 6", window.TokenCount)
	}
}

func TestAssemble_ParentDeduplication(t *testing.T) {
	a, err := NewAssembler(100)
	if err != nil {
		t.Fatal(err)
	}

	parent := &models.ParentBlock{
		ID:         "vid1:p0",
		SourceID:   "vid1",
		Text:       "full parent block text here",
		TokenCount: 5,
		ChildIDs:   []string{"vid1:0", "vid1:1"},
	}

	first := scoredChunk("vid1", 0, "full parent", "", 0.9)
	first.Parent = parent
	second := scoredChunk("vid1", 1, "block text here", "", 0.8)
	second.Parent = parent

	window := a.Assemble(models.RetrievalResult{Results: []models.ScoredChunk{first, second}})
	if len(window.Spans) != 1 {
		t.Fatalf("got %d spans, want 1 (shared parent)", len(window.Spans))
	}
	if window.Spans[0].SourceRef != "vid1:p0" {
		t.Errorf("SourceRef = %q", window.Spans[0].SourceRef)
	}
	if window.TokenCount != 5 {
		t.Errorf("TokenCount = %d, want 5", window.TokenCount)
	}
}

func TestAssemble_SkipsChunkCoveredByParent(t *testing.T) {
	a, err := NewAssembler(100)
	if err != nil {
		t.Fatal(err)
	}

	parent := &models.ParentBlock{
		ID:         "vid1:p0",
		SourceID:   "vid1",
		Text:       "parent covers both children",
		TokenCount: 4,
		ChildIDs:   []string{"vid1:0", "vid1:1"},
	}
	withParent := scoredChunk("vid1", 0, "parent covers", "", 0.9)
	withParent.Parent = parent
	// Same chunk surfaced again without parent resolution.
	plain := scoredChunk("vid1", 1, "both children", "", 0.7)

	window := a.Assemble(models.RetrievalResult{Results: []models.ScoredChunk{withParent, plain}})
	if len(window.Spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(window.Spans))
	}
}

func TestAssemble_EmptyResults(t *testing.T) {
	a, err := NewAssembler(10)
	if err != nil {
		t.Fatal(err)
	}

	window := a.Assemble(models.RetrievalResult{Query: "q"})
	if len(window.Spans) != 0 || window.TokenCount != 0 || window.Truncated {
		t.Errorf("window = %+v, want empty", window)
	}
}
