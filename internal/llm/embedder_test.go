package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeModel implements the langchaingo embeddings.Embedder interface.
type fakeModel struct {
	dimension int
	failures  int
	fatalErr  error
	calls     int
}

func (f *fakeModel) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.fatalErr != nil {
		return nil, f.fatalErr
	}
	if f.calls <= f.failures {
		return nil, errors.New("connection reset")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dimension)
	}
	return out, nil
}

func (f *fakeModel) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func testEmbedder(model *fakeModel, dimension, maxRetries int) *Embedder {
	return &Embedder{
		model:      model,
		dimension:  dimension,
		modelName:  "test-model",
		timeout:    time.Second,
		maxRetries: maxRetries,
		retryBase:  time.Millisecond,
	}
}

func TestEmbedBatch_RetriesTransientFailures(t *testing.T) {
	model := &fakeModel{dimension: 4, failures: 2}
	e := testEmbedder(model, 4, 3)

	vectors, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(vectors) != 2 {
		t.Errorf("got %d vectors, want 2", len(vectors))
	}
	if model.calls != 3 {
		t.Errorf("model called %d times, want 3", model.calls)
	}
}

func TestEmbedBatch_ExhaustsRetries(t *testing.T) {
	model := &fakeModel{dimension: 4, failures: 10}
	e := testEmbedder(model, 4, 2)

	if _, err := e.EmbedBatch(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if model.calls != 3 {
		t.Errorf("model called %d times, want 3 (initial + 2 retries)", model.calls)
	}
}

func TestEmbedBatch_FatalErrorNotRetried(t *testing.T) {
	model := &fakeModel{dimension: 4, fatalErr: errors.New("invalid api key")}
	e := testEmbedder(model, 4, 5)

	_, err := e.EmbedBatch(context.Background(), []string{"a"})
	if !errors.Is(err, ErrFatalAPI) {
		t.Fatalf("expected ErrFatalAPI, got %v", err)
	}
	if model.calls != 1 {
		t.Errorf("model called %d times, want 1", model.calls)
	}
}

func TestEmbedBatch_DimensionMismatch(t *testing.T) {
	model := &fakeModel{dimension: 8}
	e := testEmbedder(model, 768, 0)

	if _, err := e.EmbedBatch(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	model := &fakeModel{dimension: 4}
	e := testEmbedder(model, 4, 0)

	vectors, err := e.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("got %d vectors, want 0", len(vectors))
	}
	if model.calls != 0 {
		t.Errorf("model called %d times, want 0", model.calls)
	}
}
