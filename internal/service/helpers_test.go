package service

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/voxrag/voxrag/internal/config"
	"github.com/voxrag/voxrag/internal/token"
)

// fakeEmbedder maps texts onto two topic axes so similarity is
// predictable without a model: "cooking" terms on one axis, everything
// else on the other. Call counts let tests assert zero-API-call paths.
type fakeEmbedder struct {
	modelName string
	calls     atomic.Int32
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{modelName: "fake-embed"}
}

func (f *fakeEmbedder) embedOne(text string) []float32 {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "cook") || strings.Contains(lower, "recipe") || strings.Contains(lower, "oven") {
		return []float32{1, 0}
	}
	return []float32{0, 1}
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	return f.embedOne(text), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls.Add(1)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.embedOne(t)
	}
	return out, nil
}

func (f *fakeEmbedder) Model() string  { return f.modelName }
func (f *fakeEmbedder) Dimension() int { return 2 }

func testConfig() config.Config {
	cfg := config.Load()
	cfg.StoreBackend = config.StoreMemory
	cfg.TokenEncoding = token.EncodingWords
	cfg.StopwordsPath = "no-such-file.txt"
	return cfg
}

func testCodec(t *testing.T) token.Codec {
	t.Helper()
	codec, err := token.New(token.EncodingWords)
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	return codec
}

// sentenceText builds n sentences of wordsPer words each, every sentence
// ending with a period so the splitter sees boundaries.
func sentenceText(n, wordsPer int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		for j := 0; j < wordsPer; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString("word")
		}
		b.WriteString(". ")
	}
	return strings.TrimSpace(b.String())
}
