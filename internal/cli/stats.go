package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/voxrag/voxrag/internal/metrics"
	"github.com/voxrag/voxrag/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Long: `Show the size of the chunk index and the embedding model identity it
was built with.

Examples:
  voxrag stats`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	count, err := chunkStore.CountChunks(ctx, "")
	if err != nil {
		return fmt.Errorf("count chunks: %w", err)
	}

	indexedModel, err := chunkStore.GetMeta(ctx, store.MetaEmbedModel)
	if err != nil {
		return fmt.Errorf("read index meta: %w", err)
	}

	fmt.Printf("Store backend: %s\n", cfg.StoreBackend)
	fmt.Printf("Chunks:        %d\n", count)

	if indexedModel == "" {
		fmt.Println("\nIndex is empty, no embedding model recorded yet.")
		return nil
	}

	dimension, err := chunkStore.GetMeta(ctx, store.MetaEmbedDimension)
	if err != nil {
		return fmt.Errorf("read index meta: %w", err)
	}
	codec, err := chunkStore.GetMeta(ctx, store.MetaTokenCodec)
	if err != nil {
		return fmt.Errorf("read index meta: %w", err)
	}

	fmt.Printf("Embed model:   %s (dimension %s)\n", indexedModel, dimension)
	fmt.Printf("Token codec:   %s\n", codec)

	if indexedModel != cfg.EmbedModel {
		fmt.Printf("\nWarning: configured model %q differs from the indexed model.\n", cfg.EmbedModel)
		fmt.Println("Indexing and search will refuse to run until they match or the corpus is re-indexed.")
	}

	return nil
}

// printSnapshot displays pipeline runtime statistics collected during
// this invocation.
func printSnapshot(snap metrics.Snapshot) {
	fmt.Printf("Pipeline statistics (this run, %.1fs)\n", snap.UptimeSeconds)
	fmt.Printf("═══════════════════════════════════════\n")

	if snap.Chunking != nil {
		fmt.Printf("\nChunking:\n")
		printOpStats(snap.Chunking)
	}
	if snap.Embedding != nil {
		fmt.Printf("\nEmbeddings:\n")
		printOpStats(snap.Embedding)
	}
	if snap.LLMGenerate != nil {
		fmt.Printf("\nLLM Generate:\n")
		printOpStats(snap.LLMGenerate)
		printTokenStats(snap.LLMGenerate)
	}
	if snap.StoreUpsert != nil {
		fmt.Printf("\nStore Upsert:\n")
		printOpStats(snap.StoreUpsert)
	}
	if snap.StoreSearch != nil {
		fmt.Printf("\nStore Search:\n")
		printOpStats(snap.StoreSearch)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(op *metrics.OperationSnapshot) {
	fmt.Printf("  Calls: %d, Total: %dms\n", op.Count, op.TotalTimeMs)
	fmt.Printf("  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}

// printTokenStats displays token statistics if available.
func printTokenStats(op *metrics.OperationSnapshot) {
	if op.TotalInputTokens == nil || op.TotalOutputTokens == nil {
		return
	}
	fmt.Printf("  Tokens In:  %d total", *op.TotalInputTokens)
	if op.AvgInputTokens != nil {
		fmt.Printf(", avg %.0f", *op.AvgInputTokens)
	}
	fmt.Println()

	fmt.Printf("  Tokens Out: %d total", *op.TotalOutputTokens)
	if op.AvgOutputTokens != nil {
		fmt.Printf(", avg %.0f", *op.AvgOutputTokens)
	}
	fmt.Println()
}
