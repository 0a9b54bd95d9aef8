// Package llm provides LLM and embedding services using langchaingo.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/voxrag/voxrag/internal/config"
	"github.com/voxrag/voxrag/internal/metrics"
)

// Embedder wraps langchaingo embeddings with dimension validation and
// retry on transient failures.
type Embedder struct {
	model      embeddings.Embedder
	dimension  int
	modelName  string
	timeout    time.Duration
	maxRetries int
	retryBase  time.Duration
	collector  *metrics.Collector
}

// NewEmbedder creates an embedder based on configuration.
func NewEmbedder(cfg config.Config, collector *metrics.Collector) (*Embedder, error) {
	var model embeddings.Embedder
	var err error

	switch cfg.EmbedProvider {
	case config.ProviderOllama:
		llm, ollamaErr := ollama.New(
			ollama.WithModel(cfg.EmbedModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if ollamaErr != nil {
			return nil, fmt.Errorf("create ollama client: %w", ollamaErr)
		}
		model, err = embeddings.NewEmbedder(llm)
		if err != nil {
			return nil, fmt.Errorf("create ollama embedder: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		llm, openaiErr := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithEmbeddingModel(cfg.EmbedModel),
		)
		if openaiErr != nil {
			return nil, fmt.Errorf("create openai client: %w", openaiErr)
		}
		model, err = embeddings.NewEmbedder(llm)
		if err != nil {
			return nil, fmt.Errorf("create openai embedder: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbedProvider)
	}

	return &Embedder{
		model:      model,
		dimension:  cfg.EmbedDimension,
		modelName:  cfg.EmbedModel,
		timeout:    cfg.EmbedTimeout,
		maxRetries: cfg.EmbedMaxRetries,
		retryBase:  500 * time.Millisecond,
		collector:  collector,
	}, nil
}

// Embed generates an embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts. Transient failures
// are retried with exponential backoff up to the configured limit; each
// attempt runs under its own timeout.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	slog.Debug("embedding batch", "model", e.modelName, "count", len(texts))
	start := time.Now()

	var vectors [][]float32
	attempt := func() error {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if e.timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}
		var err error
		vectors, err = e.model.EmbedDocuments(attemptCtx, texts)
		if err != nil {
			slog.Warn("embedding attempt failed", "model", e.modelName, "count", len(texts), "error", err)
			if isFatalAPIError(err) {
				return backoff.Permanent(wrapFatalError(err))
			}
			return err
		}
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	if e.retryBase > 0 {
		expo.InitialInterval = e.retryBase
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(expo, uint64(e.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}

	duration := time.Since(start)

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("count mismatch: got %d, want %d", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) != e.dimension {
			return nil, fmt.Errorf("embedding %d dimension mismatch: got %d, want %d", i, len(v), e.dimension)
		}
	}

	if e.collector != nil {
		e.collector.RecordTiming(metrics.OpEmbedding, duration)
	}
	slog.Debug("embedding batch complete", "model", e.modelName, "count", len(texts), "duration_ms", duration.Milliseconds())
	return vectors, nil
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.modelName
}

// Dimension returns the expected embedding dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}
