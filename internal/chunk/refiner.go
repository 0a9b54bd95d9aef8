package chunk

import (
	"context"
	"fmt"

	"github.com/voxrag/voxrag/internal/token"
	"github.com/voxrag/voxrag/internal/vector"
)

// Embedder is the minimal embedding capability the refiner needs. The
// llm package's embedder satisfies it; tests inject a deterministic fake.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Refiner adjusts raw chunk boundaries. Implementations must preserve
// total coverage: concatenating the output reconstructs the input exactly.
type Refiner interface {
	Refine(ctx context.Context, chunks []string) ([]string, error)
}

// NoopRefiner passes chunks through unchanged. Used when semantic
// refinement is disabled.
type NoopRefiner struct{}

func (NoopRefiner) Refine(_ context.Context, chunks []string) ([]string, error) {
	return chunks, nil
}

// SemanticRefiner re-cuts chunks where embedding similarity between
// adjacent sentences drops below a threshold, aligning boundaries with
// topic shifts instead of raw size.
type SemanticRefiner struct {
	embedder  Embedder
	codec     token.Codec
	threshold float32
	min       int
	max       int
}

// NewSemanticRefiner creates a refiner. The threshold is a tunable knob;
// values must lie in (0, 1).
func NewSemanticRefiner(embedder Embedder, codec token.Codec, threshold float32, minTokens, maxTokens int) (*SemanticRefiner, error) {
	if embedder == nil {
		return nil, fmt.Errorf("semantic refiner requires an embedder")
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("similarity_threshold %v outside (0, 1)", threshold)
	}
	return &SemanticRefiner{
		embedder:  embedder,
		codec:     codec,
		threshold: threshold,
		min:       minTokens,
		max:       maxTokens,
	}, nil
}

// Refine processes each raw chunk independently so refinement never moves
// text across raw chunk borders.
func (r *SemanticRefiner) Refine(ctx context.Context, chunks []string) ([]string, error) {
	var out []string
	for i, c := range chunks {
		refined, err := r.refineOne(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("refine chunk %d: %w", i, err)
		}
		out = append(out, refined...)
	}
	return out, nil
}

// refineOne splits a chunk into sentences, embeds them, and walks adjacent
// pairs. A similarity drop below the threshold inserts a boundary; an
// undersized piece is cut anyway only when merging it with the next
// sentence would exceed max, and is merged across the drop otherwise.
func (r *SemanticRefiner) refineOne(ctx context.Context, chunk string) ([]string, error) {
	sentences := splitSentences(chunk)
	if len(sentences) < 2 {
		return []string{chunk}, nil
	}

	embeddings, err := r.embedder.EmbedBatch(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("embed sentences: %w", err)
	}
	if len(embeddings) != len(sentences) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(sentences))
	}

	var pieces []string
	cur := sentences[0]

	for i := 1; i < len(sentences); i++ {
		sent := sentences[i]
		drop := vector.Cosine(embeddings[i-1], embeddings[i]) < r.threshold

		switch {
		case drop && r.codec.Count(cur) >= r.min:
			pieces = append(pieces, cur)
			cur = sent
		case drop && r.codec.Count(cur+sent) > r.max:
			// Undersized, but absorbing the next sentence would blow
			// the max: the topic shift wins.
			pieces = append(pieces, cur)
			cur = sent
		case !drop && r.codec.Count(cur+sent) > r.max:
			pieces = append(pieces, cur)
			cur = sent
		default:
			cur += sent
		}
	}
	pieces = append(pieces, cur)
	return pieces, nil
}
