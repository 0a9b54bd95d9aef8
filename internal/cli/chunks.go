package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/voxrag/voxrag/internal/service"
	"github.com/voxrag/voxrag/internal/token"
)

var chunksShowParents bool

var chunksCmd = &cobra.Command{
	Use:   "chunks <file>",
	Short: "Preview how a transcript would be chunked",
	Long: `Chunk a transcript file and print the result without touching the
store or any embedding provider.

Semantic refinement is skipped in the preview because it needs
embeddings; all other pipeline stages run with the configured settings.

Examples:
  voxrag chunks talk.txt
  voxrag chunks interview.md --parents`,
	Args: cobra.ExactArgs(1),
	RunE: runChunks,
}

func init() {
	chunksCmd.Flags().BoolVar(&chunksShowParents, "parents", false, "also print parent blocks")
}

func runChunks(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	previewCfg := cfg
	previewCfg.UseRefinement = false
	if cfg.UseRefinement {
		fmt.Println("Note: semantic refinement skipped in preview (requires embeddings)")
	}

	codec, err := token.New(previewCfg.TokenEncoding)
	if err != nil {
		return fmt.Errorf("init token codec: %w", err)
	}
	pipeline, err := service.NewPipeline(previewCfg, codec, nil, collector)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	svc := service.NewIndexService(nil, nil, pipeline, codec.Name(), collector)
	chunks, parents, err := svc.ChunkFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("chunk file: %w", err)
	}
	if len(chunks) == 0 {
		fmt.Println("Transcript is empty after normalization, no chunks produced.")
		return nil
	}

	totalTokens := 0
	for _, c := range chunks {
		totalTokens += c.TokenCount
	}
	fmt.Printf("%d chunks, %d tokens\n\n", len(chunks), totalTokens)

	for _, c := range chunks {
		fmt.Printf("--- %s (%d tokens", c.ID, c.TokenCount)
		if c.OverlapTokens > 0 {
			fmt.Printf(" + %d overlap", c.OverlapTokens)
		}
		if c.ParentID != "" {
			fmt.Printf(", parent %s", c.ParentID)
		}
		fmt.Println(") ---")
		if verbose {
			fmt.Println(c.Text())
		} else {
			fmt.Println(snippet(c.Body, 160))
		}
		fmt.Println()
	}

	if chunksShowParents && len(parents) > 0 {
		fmt.Printf("%d parent blocks:\n\n", len(parents))
		for _, p := range parents {
			fmt.Printf("--- %s (%d tokens, %d children) ---\n", p.ID, p.TokenCount, len(p.ChildIDs))
			fmt.Println(snippet(p.Text, 160))
			fmt.Println()
		}
	}

	return nil
}
