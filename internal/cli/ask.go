package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/voxrag/voxrag/internal/service"
)

var (
	askTopK        int
	askOutputFile  string
	askShowContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question and get an LLM-synthesized answer",
	Long: `Ask a question over the indexed transcripts.

Retrieves the most similar chunks, assembles them into a de-duplicated
context window within the configured token budget, and synthesizes an
answer with the configured LLM.

Examples:
  voxrag ask "What does the speaker say about attention heads?"
  voxrag ask "How long should the dough rest?" -n 8
  voxrag ask "Summarize the argument about pricing" -o answer.md`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "n", 0, "max retrieved chunks (default from config)")
	askCmd.Flags().StringVarP(&askOutputFile, "output", "o", "", "write the answer to a file")
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "print the assembled context before the answer")
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx := context.Background()

	retriever, err := getRetriever()
	if err != nil {
		return err
	}
	gen, err := getModel()
	if err != nil {
		return err
	}

	result, err := retriever.Retrieve(ctx, query, service.RetrieveOptions{TopK: askTopK})
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}
	if len(result.Results) == 0 {
		fmt.Println("No relevant transcript chunks found for this question.")
		return nil
	}

	assembler, err := service.NewAssembler(cfg.ContextBudget)
	if err != nil {
		return err
	}
	window := assembler.Assemble(result)

	if askShowContext {
		fmt.Printf("--- context (%d tokens, %d spans) ---\n%s\n--- end context ---\n\n",
			window.TokenCount, len(window.Spans), window.Text())
	}

	answer, err := gen.SynthesizeAnswer(ctx, query, window.Text())
	if err != nil {
		return fmt.Errorf("synthesize answer: %w", err)
	}

	if askOutputFile != "" {
		if err := os.WriteFile(askOutputFile, []byte(answer+"\n"), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Answer written to %s\n", askOutputFile)
	} else {
		fmt.Println(answer)
	}

	if verbose {
		fmt.Printf("\nSources (%d spans, %d context tokens", len(window.Spans), window.TokenCount)
		if window.Truncated {
			fmt.Printf(", truncated to budget")
		}
		fmt.Println("):")
		for _, span := range window.Spans {
			title := span.Metadata["title"]
			if title == "" {
				title = span.SourceID
			}
			fmt.Printf("  [%.3f] %s (%s, %d tokens)\n", span.Similarity, title, span.SourceRef, span.TokenCount)
		}
	}

	return nil
}
