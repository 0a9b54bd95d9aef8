package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/voxrag/voxrag/internal/models"
	"github.com/voxrag/voxrag/internal/vector"
)

type memoryRecord struct {
	chunk     models.Chunk
	embedding []float32
}

// MemoryStore is an in-memory Store backend using brute-force cosine
// search. Intended for tests and small corpora.
type MemoryStore struct {
	mu      sync.RWMutex
	chunks  map[string]memoryRecord
	parents map[string]models.ParentBlock
	meta    map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunks:  make(map[string]memoryRecord),
		parents: make(map[string]models.ParentBlock),
		meta:    make(map[string]string),
	}
}

func (s *MemoryStore) ReplaceSource(ctx context.Context, sourceID string, chunks []models.Chunk, embeddings [][]float32, parents []models.ParentBlock) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteSourceLocked(sourceID)
	for i, c := range chunks {
		s.chunks[c.ID] = memoryRecord{chunk: c, embedding: embeddings[i]}
	}
	for _, p := range parents {
		s.parents[p.ID] = p
	}
	return nil
}

func (s *MemoryStore) DeleteSource(ctx context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteSourceLocked(sourceID)
	return nil
}

func (s *MemoryStore) deleteSourceLocked(sourceID string) {
	for id, rec := range s.chunks {
		if rec.chunk.SourceID == sourceID {
			delete(s.chunks, id)
		}
	}
	for id, p := range s.parents {
		if p.SourceID == sourceID {
			delete(s.parents, id)
		}
	}
}

func (s *MemoryStore) Search(ctx context.Context, embedding []float32, topK int) ([]models.ScoredChunk, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive: %d", topK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]models.ScoredChunk, 0, len(s.chunks))
	for _, rec := range s.chunks {
		scored = append(scored, models.ScoredChunk{
			Chunk:      rec.chunk,
			Similarity: vector.Cosine(embedding, rec.embedding),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		if scored[i].Chunk.SourceID != scored[j].Chunk.SourceID {
			return scored[i].Chunk.SourceID < scored[j].Chunk.SourceID
		}
		return scored[i].Chunk.Ordinal < scored[j].Chunk.Ordinal
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (s *MemoryStore) GetChunk(ctx context.Context, id string) (*models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.chunks[id]
	if !ok {
		return nil, fmt.Errorf("chunk %s: %w", id, ErrNotFound)
	}
	c := rec.chunk
	return &c, nil
}

func (s *MemoryStore) GetParent(ctx context.Context, id string) (*models.ParentBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parents[id]
	if !ok {
		return nil, fmt.Errorf("parent %s: %w", id, ErrNotFound)
	}
	return &p, nil
}

func (s *MemoryStore) CountChunks(ctx context.Context, sourceID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sourceID == "" {
		return len(s.chunks), nil
	}
	count := 0
	for _, rec := range s.chunks {
		if rec.chunk.SourceID == sourceID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) GetMeta(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta[key], nil
}

func (s *MemoryStore) SetMeta(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta[key] = value
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
