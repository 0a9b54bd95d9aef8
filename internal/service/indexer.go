package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/voxrag/voxrag/internal/llm"
	"github.com/voxrag/voxrag/internal/metrics"
	"github.com/voxrag/voxrag/internal/models"
	"github.com/voxrag/voxrag/internal/parser"
	"github.com/voxrag/voxrag/internal/store"
)

// Embedder is the embedding capability the services need. The llm
// package's embedder satisfies it; tests inject fakes.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
	Dimension() int
}

// IndexService ingests transcript files into the chunk store.
type IndexService struct {
	store     store.Store
	embedder  Embedder
	pipeline  *Pipeline
	codecName string
	collector *metrics.Collector
}

// NewIndexService creates an index service. codecName identifies the
// token codec the pipeline counts with; it is recorded alongside the
// embedding model so a corpus can't silently mix tokenizers.
func NewIndexService(st store.Store, embedder Embedder, pipeline *Pipeline, codecName string, collector *metrics.Collector) *IndexService {
	return &IndexService{
		store:     st,
		embedder:  embedder,
		pipeline:  pipeline,
		codecName: codecName,
		collector: collector,
	}
}

// IndexOptions configures transcript indexing.
type IndexOptions struct {
	// DryRun chunks transcripts without embedding or storing anything
	DryRun bool
	// Recursive processes subdirectories
	Recursive bool
	// Concurrency sets number of parallel workers (default 4)
	Concurrency int
	// Job for progress reporting (optional)
	Job *Job
	// OnProgress is called after each file completes (optional)
	OnProgress func(done, total int)
}

// IndexResult summarizes an indexing operation.
type IndexResult struct {
	FilesProcessed int
	FilesSkipped   int
	ChunksCreated  int
	ParentsCreated int
	Errors         []string
}

// CollectFiles expands the given paths into transcript files. Directories
// are scanned for .txt and .md files.
func (s *IndexService) CollectFiles(paths []string, recursive bool) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		root := path
		walkFn := func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && !recursive && p != root {
				return filepath.SkipDir
			}
			ext := strings.ToLower(filepath.Ext(p))
			if !d.IsDir() && (ext == ".txt" || ext == ".md") {
				files = append(files, p)
			}
			return nil
		}
		if err := filepath.WalkDir(root, walkFn); err != nil {
			return nil, fmt.Errorf("scan directory: %w", err)
		}
	}
	return files, nil
}

// ChunkFile parses and chunks a single transcript without touching the
// store. Used by dry runs and the chunk preview command.
func (s *IndexService) ChunkFile(ctx context.Context, path string) ([]models.Chunk, []models.ParentBlock, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	transcript, err := parser.ParseTranscript(string(content), stem)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return s.pipeline.Chunk(ctx, transcript)
}

// IndexFile chunks, embeds and stores a single transcript file. The
// source's previous chunks are replaced atomically.
func (s *IndexService) IndexFile(ctx context.Context, path string, opts IndexOptions) (chunks int, parents int, err error) {
	chunkList, parentList, err := s.ChunkFile(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	if len(chunkList) == 0 {
		slog.Warn("no chunks produced, skipping", "file", path)
		return 0, 0, nil
	}
	if opts.DryRun {
		return len(chunkList), len(parentList), nil
	}

	texts := make([]string, len(chunkList))
	for i, c := range chunkList {
		texts[i] = c.Text()
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, 0, fmt.Errorf("embed %s: %w", path, err)
	}

	start := time.Now()
	sourceID := chunkList[0].SourceID
	if err := s.store.ReplaceSource(ctx, sourceID, chunkList, embeddings, parentList); err != nil {
		return 0, 0, fmt.Errorf("store %s: %w", path, err)
	}
	if s.collector != nil {
		s.collector.RecordTiming(metrics.OpStoreUpsert, time.Since(start))
	}

	return len(chunkList), len(parentList), nil
}

// IndexFiles processes transcript files with a worker pool. Per-file
// failures are collected rather than aborting the batch; fatal provider
// errors (auth, billing) cancel the remaining work.
func (s *IndexService) IndexFiles(ctx context.Context, files []string, opts IndexOptions) (*IndexResult, error) {
	if len(files) == 0 {
		return &IndexResult{}, nil
	}

	if !opts.DryRun {
		if err := s.recordIndexMeta(ctx); err != nil {
			return nil, err
		}
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	slog.Info("starting transcript indexing", "files", len(files), "concurrency", concurrency, "dry_run", opts.DryRun)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		filesProcessed atomic.Int32
		filesSkipped   atomic.Int32
		chunksCreated  atomic.Int32
		parentsCreated atomic.Int32
		errorsMu       sync.Mutex
		errs           []string
		fatalErr       error
	)

	fileChan := make(chan string, len(files))
	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for file := range fileChan {
				if ctx.Err() != nil {
					return
				}

				processed := filesProcessed.Add(1)
				slog.Info("processing transcript", "worker", workerID, "file", filepath.Base(file), "progress", fmt.Sprintf("%d/%d", processed, len(files)))

				chunks, parents, err := s.IndexFile(ctx, file, opts)
				if err != nil {
					errorsMu.Lock()
					errs = append(errs, fmt.Sprintf("%s: %v", file, err))
					// Fatal API errors (billing, auth) stop everything
					if errors.Is(err, llm.ErrFatalAPI) && fatalErr == nil {
						fatalErr = err
						cancel()
					}
					errorsMu.Unlock()
					continue
				}
				if chunks == 0 {
					filesSkipped.Add(1)
				}
				chunksCreated.Add(int32(chunks))
				parentsCreated.Add(int32(parents))

				if opts.Job != nil {
					opts.Job.UpdateProgress(int(processed))
				}
				if opts.OnProgress != nil {
					opts.OnProgress(int(processed), len(files))
				}
			}
		}(i)
	}

	for _, file := range files {
		fileChan <- file
	}
	close(fileChan)
	wg.Wait()

	result := &IndexResult{
		FilesProcessed: int(filesProcessed.Load()),
		FilesSkipped:   int(filesSkipped.Load()),
		ChunksCreated:  int(chunksCreated.Load()),
		ParentsCreated: int(parentsCreated.Load()),
		Errors:         errs,
	}

	slog.Info("indexing complete",
		"files", result.FilesProcessed,
		"skipped", result.FilesSkipped,
		"chunks", result.ChunksCreated,
		"errors", len(result.Errors))

	if fatalErr != nil {
		return result, fatalErr
	}
	return result, nil
}

// recordIndexMeta pins the embedding model identity on first index and
// refuses to mix models afterwards. Vectors from different models would
// silently corrupt similarity search.
func (s *IndexService) recordIndexMeta(ctx context.Context) error {
	recorded, err := s.store.GetMeta(ctx, store.MetaEmbedModel)
	if err != nil {
		return fmt.Errorf("read index meta: %w", err)
	}
	if recorded != "" && recorded != s.embedder.Model() {
		return fmt.Errorf("%w: corpus indexed with %q, configured model is %q (re-index from scratch to switch)",
			ErrModelMismatch, recorded, s.embedder.Model())
	}
	if recorded != "" {
		return nil
	}

	if err := s.store.SetMeta(ctx, store.MetaEmbedModel, s.embedder.Model()); err != nil {
		return fmt.Errorf("record embed model: %w", err)
	}
	if err := s.store.SetMeta(ctx, store.MetaEmbedDimension, strconv.Itoa(s.embedder.Dimension())); err != nil {
		return fmt.Errorf("record embed dimension: %w", err)
	}
	if err := s.store.SetMeta(ctx, store.MetaTokenCodec, s.codecName); err != nil {
		return fmt.Errorf("record token codec: %w", err)
	}
	return nil
}
