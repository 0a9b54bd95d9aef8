package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <source-id>...",
	Short: "Delete indexed sources",
	Long: `Delete all chunks and parent blocks belonging to the given source ids.

The source id is the video id from the transcript frontmatter, or the
slugified filename when no frontmatter was present.

Examples:
  voxrag delete dQw4w9WgXcQ
  voxrag delete old-talk-2023 stale-interview --force`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if !deleteForce {
		fmt.Printf("Delete %d source(s): %s? [y/N] ", len(args), strings.Join(args, ", "))
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	for _, sourceID := range args {
		if err := chunkStore.DeleteSource(ctx, sourceID); err != nil {
			return fmt.Errorf("delete %s: %w", sourceID, err)
		}
		fmt.Printf("Deleted %s\n", sourceID)
	}

	count, err := chunkStore.CountChunks(ctx, "")
	if err != nil {
		return fmt.Errorf("count chunks: %w", err)
	}
	fmt.Printf("%d chunks remain in the index.\n", count)

	return nil
}
