package store

import (
	"context"
	"errors"
	"testing"

	"github.com/voxrag/voxrag/internal/models"
)

func chunkFor(sourceID string, ordinal int, body string) models.Chunk {
	return models.Chunk{
		ID:       models.ChunkID(sourceID, ordinal),
		SourceID: sourceID,
		Ordinal:  ordinal,
		Body:     body,
	}
}

func TestReplaceSource_Swap(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := []models.Chunk{
		chunkFor("vid1", 0, "one"),
		chunkFor("vid1", 1, "two"),
		chunkFor("vid1", 2, "three"),
	}
	embs := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	if err := s.ReplaceSource(ctx, "vid1", first, embs, nil); err != nil {
		t.Fatalf("ReplaceSource() error = %v", err)
	}

	// Re-index with fewer chunks must leave no stale records.
	second := []models.Chunk{chunkFor("vid1", 0, "updated")}
	if err := s.ReplaceSource(ctx, "vid1", second, [][]float32{{1, 0}}, nil); err != nil {
		t.Fatalf("ReplaceSource() error = %v", err)
	}

	count, err := s.CountChunks(ctx, "vid1")
	if err != nil {
		t.Fatalf("CountChunks() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count after re-index = %d, want 1", count)
	}

	got, err := s.GetChunk(ctx, "vid1:0")
	if err != nil {
		t.Fatalf("GetChunk() error = %v", err)
	}
	if got.Body != "updated" {
		t.Errorf("Body = %q, want %q", got.Body, "updated")
	}
	if _, err := s.GetChunk(ctx, "vid1:1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for stale chunk, got %v", err)
	}
}

func TestReplaceSource_OtherSourcesUntouched(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	mustReplace(t, s, "vid1", []models.Chunk{chunkFor("vid1", 0, "a")}, [][]float32{{1, 0}})
	mustReplace(t, s, "vid2", []models.Chunk{chunkFor("vid2", 0, "b")}, [][]float32{{0, 1}})

	if err := s.DeleteSource(ctx, "vid1"); err != nil {
		t.Fatalf("DeleteSource() error = %v", err)
	}

	if _, err := s.GetChunk(ctx, "vid2:0"); err != nil {
		t.Errorf("vid2 chunk should survive vid1 delete: %v", err)
	}
	total, _ := s.CountChunks(ctx, "")
	if total != 1 {
		t.Errorf("total count = %d, want 1", total)
	}
}

func TestReplaceSource_CountMismatch(t *testing.T) {
	s := NewMemoryStore()
	err := s.ReplaceSource(context.Background(), "vid1",
		[]models.Chunk{chunkFor("vid1", 0, "a")}, nil, nil)
	if err == nil {
		t.Fatal("expected error for chunk/embedding count mismatch")
	}
}

func TestSearch_RanksAndTruncates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	chunks := []models.Chunk{
		chunkFor("vid1", 0, "exact"),
		chunkFor("vid1", 1, "close"),
		chunkFor("vid1", 2, "orthogonal"),
	}
	embs := [][]float32{{1, 0}, {0.9, 0.1}, {0, 1}}
	mustReplace(t, s, "vid1", chunks, embs)

	results, err := s.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Chunk.ID != "vid1:0" || results[1].Chunk.ID != "vid1:1" {
		t.Errorf("order = %s, %s", results[0].Chunk.ID, results[1].Chunk.ID)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Error("results not ordered by similarity descending")
	}
}

func TestSearch_TieBreaksByOrdinal(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	chunks := []models.Chunk{
		chunkFor("vid1", 3, "later"),
		chunkFor("vid1", 1, "earlier"),
	}
	// Identical embeddings force a tie.
	embs := [][]float32{{1, 0}, {1, 0}}
	mustReplace(t, s, "vid1", chunks, embs)

	results, err := s.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results[0].Chunk.Ordinal != 1 || results[1].Chunk.Ordinal != 3 {
		t.Errorf("tie order = %d, %d, want 1, 3", results[0].Chunk.Ordinal, results[1].Chunk.Ordinal)
	}
}

func TestSearch_TopKLargerThanCorpus(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	mustReplace(t, s, "vid1", []models.Chunk{chunkFor("vid1", 0, "a")}, [][]float32{{1, 0}})

	results, err := s.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestParents(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	parent := models.ParentBlock{
		ID:       models.ParentID("vid1", 0),
		SourceID: "vid1",
		Text:     "parent text",
		ChildIDs: []string{"vid1:0"},
	}
	chunk := chunkFor("vid1", 0, "a")
	chunk.ParentID = parent.ID
	if err := s.ReplaceSource(ctx, "vid1", []models.Chunk{chunk}, [][]float32{{1, 0}}, []models.ParentBlock{parent}); err != nil {
		t.Fatalf("ReplaceSource() error = %v", err)
	}

	got, err := s.GetParent(ctx, "vid1:p0")
	if err != nil {
		t.Fatalf("GetParent() error = %v", err)
	}
	if got.Text != "parent text" {
		t.Errorf("Text = %q", got.Text)
	}

	if err := s.DeleteSource(ctx, "vid1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetParent(ctx, "vid1:p0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after source delete, got %v", err)
	}
}

func TestMeta(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	val, err := s.GetMeta(ctx, MetaEmbedModel)
	if err != nil {
		t.Fatalf("GetMeta() error = %v", err)
	}
	if val != "" {
		t.Errorf("unset meta = %q, want empty", val)
	}

	if err := s.SetMeta(ctx, MetaEmbedModel, "nomic-embed-text"); err != nil {
		t.Fatalf("SetMeta() error = %v", err)
	}
	val, _ = s.GetMeta(ctx, MetaEmbedModel)
	if val != "nomic-embed-text" {
		t.Errorf("meta = %q", val)
	}
}

func mustReplace(t *testing.T, s *MemoryStore, sourceID string, chunks []models.Chunk, embs [][]float32) {
	t.Helper()
	if err := s.ReplaceSource(context.Background(), sourceID, chunks, embs, nil); err != nil {
		t.Fatalf("ReplaceSource(%s) error = %v", sourceID, err)
	}
}
