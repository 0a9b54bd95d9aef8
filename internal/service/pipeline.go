package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/voxrag/voxrag/internal/chunk"
	"github.com/voxrag/voxrag/internal/config"
	"github.com/voxrag/voxrag/internal/metrics"
	"github.com/voxrag/voxrag/internal/models"
	"github.com/voxrag/voxrag/internal/normalize"
	"github.com/voxrag/voxrag/internal/token"
)

// Pipeline turns a raw transcript into stitched, storage-ready chunks:
// normalize, split, optionally refine on semantic boundaries, then stitch
// with overlap and parent blocks.
type Pipeline struct {
	normalizer *normalize.Normalizer
	splitter   *chunk.Splitter
	refiner    chunk.Refiner
	stitcher   *chunk.Stitcher
	collector  *metrics.Collector
}

// NewPipeline wires the chunking stages from configuration. All sizing
// parameters are validated here so a misconfigured pipeline fails at
// startup, not mid-corpus. embedder may be nil when refinement is off.
func NewPipeline(cfg config.Config, codec token.Codec, embedder chunk.Embedder, collector *metrics.Collector) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}

	fillers, err := normalize.LoadFillers(cfg.StopwordsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load stopwords: %w", err)
		}
		slog.Debug("stopword file missing, using built-in fillers", "path", cfg.StopwordsPath)
		fillers = normalize.DefaultFillers()
	}

	normalizer := normalize.New(normalize.Config{
		Fillers:         fillers,
		TrimBoilerplate: cfg.TrimBoilerplate,
	})

	splitter, err := chunk.NewSplitter(codec, cfg.MaxChunkSize, cfg.MinChunkSize)
	if err != nil {
		return nil, fmt.Errorf("splitter: %w", err)
	}

	var refiner chunk.Refiner = chunk.NoopRefiner{}
	if cfg.UseRefinement {
		if embedder == nil {
			return nil, fmt.Errorf("refinement enabled but no embedder configured")
		}
		refiner, err = chunk.NewSemanticRefiner(embedder, codec, float32(cfg.SimilarityThreshold), cfg.MinChunkSize, cfg.MaxChunkSize)
		if err != nil {
			return nil, fmt.Errorf("refiner: %w", err)
		}
	}

	stitcher, err := chunk.NewStitcher(codec, cfg.ChunkOverlap, cfg.MinChunkSize, cfg.UseHierarchy, cfg.ParentMinSize, cfg.ParentMaxSize)
	if err != nil {
		return nil, fmt.Errorf("stitcher: %w", err)
	}

	return &Pipeline{
		normalizer: normalizer,
		splitter:   splitter,
		refiner:    refiner,
		stitcher:   stitcher,
		collector:  collector,
	}, nil
}

// Chunk runs a transcript through the full chunking pipeline. An empty or
// whitespace-only transcript yields no chunks and no error.
func (p *Pipeline) Chunk(ctx context.Context, t models.Transcript) ([]models.Chunk, []models.ParentBlock, error) {
	start := time.Now()

	clean := p.normalizer.Normalize(t.Text)
	if strings.TrimSpace(clean) == "" {
		slog.Warn("transcript empty after normalization, skipping", "source", t.SourceID)
		return nil, nil, nil
	}

	pieces := p.splitter.Split(clean)

	pieces, err := p.refiner.Refine(ctx, pieces)
	if err != nil {
		return nil, nil, fmt.Errorf("refine %s: %w", t.SourceID, err)
	}

	chunks, parents := p.stitcher.Stitch(t.SourceID, pieces, t.Metadata)

	if p.collector != nil {
		p.collector.RecordTiming(metrics.OpChunking, time.Since(start))
	}
	slog.Debug("transcript chunked",
		"source", t.SourceID,
		"chunks", len(chunks),
		"parents", len(parents),
		"duration_ms", time.Since(start).Milliseconds())

	return chunks, parents, nil
}
