package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpEmbedding, 100*time.Millisecond)
	c.RecordTiming(OpEmbedding, 300*time.Millisecond)

	snap := c.Snapshot()
	if snap.Embedding == nil {
		t.Fatal("expected embedding snapshot")
	}
	if snap.Embedding.Count != 2 {
		t.Errorf("Count = %d, want 2", snap.Embedding.Count)
	}
	if snap.Embedding.MinTimeMs != 100 || snap.Embedding.MaxTimeMs != 300 {
		t.Errorf("min/max = %d/%d, want 100/300", snap.Embedding.MinTimeMs, snap.Embedding.MaxTimeMs)
	}
	if snap.Embedding.AvgTimeMs != 200 {
		t.Errorf("AvgTimeMs = %v, want 200", snap.Embedding.AvgTimeMs)
	}
}

func TestRecordLLMUsage(t *testing.T) {
	c := NewCollector()
	c.RecordLLMUsage(OpLLMGenerate, 50*time.Millisecond, 120, 40)
	c.RecordLLMUsage(OpLLMGenerate, 80*time.Millisecond, 200, 60)

	snap := c.Snapshot()
	if snap.LLMGenerate == nil {
		t.Fatal("expected llm_generate snapshot")
	}
	if *snap.LLMGenerate.TotalInputTokens != 320 {
		t.Errorf("TotalInputTokens = %d, want 320", *snap.LLMGenerate.TotalInputTokens)
	}
	if *snap.LLMGenerate.MinOutputTokens != 40 || *snap.LLMGenerate.MaxOutputTokens != 60 {
		t.Errorf("output token bounds = %d/%d, want 40/60",
			*snap.LLMGenerate.MinOutputTokens, *snap.LLMGenerate.MaxOutputTokens)
	}
}

func TestSnapshot_EmptyOps(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()
	if snap.Chunking != nil || snap.StoreUpsert != nil || snap.StoreSearch != nil {
		t.Error("expected nil snapshots for unrecorded operations")
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordTiming(OpStoreSearch, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.StoreSearch == nil || snap.StoreSearch.Count != 1000 {
		t.Fatalf("expected 1000 recorded timings, got %+v", snap.StoreSearch)
	}
}
