package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/voxrag/voxrag/internal/service"
)

var searchTopK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed transcripts without LLM synthesis",
	Long: `Search indexed transcripts by semantic similarity.

Returns the raw nearest chunks ranked by cosine similarity, without
LLM synthesis. Use 'ask' for a synthesized answer.

Examples:
  voxrag search "how do transformers handle long context"
  voxrag search "pasta water ratio" -n 10`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 0, "max results (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx := context.Background()

	retriever, err := getRetriever()
	if err != nil {
		return err
	}

	result, err := retriever.Retrieve(ctx, query, service.RetrieveOptions{TopK: searchTopK})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(result.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(result.Results))
	for i, res := range result.Results {
		c := res.Chunk
		title := c.Metadata["title"]
		if title == "" {
			title = c.SourceID
		}
		fmt.Printf("%d. [%.3f] %s (chunk %d)\n", i+1, res.Similarity, title, c.Ordinal)
		fmt.Printf("   %s\n", snippet(c.Body, 120))
		if verbose {
			fmt.Printf("   id=%s tokens=%d", c.ID, c.TokenCount)
			if res.Parent != nil {
				fmt.Printf(" parent=%s", res.Parent.ID)
			}
			fmt.Println()
		}
		fmt.Println()
	}

	return nil
}

// snippet returns the first n bytes of text on a single line.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > n {
		return text[:n] + "..."
	}
	return text
}
