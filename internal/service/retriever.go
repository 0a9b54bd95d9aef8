package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/voxrag/voxrag/internal/metrics"
	"github.com/voxrag/voxrag/internal/models"
	"github.com/voxrag/voxrag/internal/store"
)

// RetrieveService answers queries with top-k similar chunks.
type RetrieveService struct {
	store     store.Store
	embedder  Embedder
	topK      int
	collector *metrics.Collector
}

// NewRetrieveService creates a retrieve service with a default topK.
func NewRetrieveService(st store.Store, embedder Embedder, topK int, collector *metrics.Collector) (*RetrieveService, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive: %d", topK)
	}
	return &RetrieveService{
		store:     st,
		embedder:  embedder,
		topK:      topK,
		collector: collector,
	}, nil
}

// RetrieveOptions overrides per-query retrieval settings.
type RetrieveOptions struct {
	// TopK overrides the service default when positive
	TopK int
}

// Retrieve embeds the query and returns the topK most similar chunks,
// with parent blocks resolved for hierarchical chunks. The recorded
// embedding model is verified before any embedding call: on a mismatch
// the query fails without spending a single API call, and a never-indexed
// corpus yields an empty result with a warning rather than an error.
func (s *RetrieveService) Retrieve(ctx context.Context, query string, opts RetrieveOptions) (models.RetrievalResult, error) {
	result := models.RetrievalResult{Query: query}

	recorded, err := s.store.GetMeta(ctx, store.MetaEmbedModel)
	if err != nil {
		return result, fmt.Errorf("read index meta: %w", err)
	}
	if recorded == "" {
		slog.Warn("no corpus indexed yet, returning empty result", "query", query)
		return result, nil
	}
	if recorded != s.embedder.Model() {
		return result, fmt.Errorf("%w: corpus indexed with %q, configured model is %q",
			ErrModelMismatch, recorded, s.embedder.Model())
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return result, fmt.Errorf("embed query: %w", err)
	}

	topK := s.topK
	if opts.TopK > 0 {
		topK = opts.TopK
	}

	start := time.Now()
	scored, err := s.store.Search(ctx, embedding, topK)
	if err != nil {
		return result, fmt.Errorf("search: %w", err)
	}
	if s.collector != nil {
		s.collector.RecordTiming(metrics.OpStoreSearch, time.Since(start))
	}

	// Resolve parents once per parent ID; siblings share the lookup.
	parentCache := make(map[string]*models.ParentBlock)
	for i := range scored {
		pid := scored[i].Chunk.ParentID
		if pid == "" {
			continue
		}
		if cached, ok := parentCache[pid]; ok {
			scored[i].Parent = cached
			continue
		}
		parent, err := s.store.GetParent(ctx, pid)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				slog.Warn("chunk references missing parent", "chunk", scored[i].Chunk.ID, "parent", pid)
				parentCache[pid] = nil
				continue
			}
			return result, fmt.Errorf("resolve parent %s: %w", pid, err)
		}
		parentCache[pid] = parent
		scored[i].Parent = parent
	}

	result.Results = scored
	slog.Debug("query retrieved", "top_k", topK, "results", len(scored))
	return result, nil
}
