package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/voxrag/voxrag/internal/service"
	"golang.org/x/term"
)

var (
	indexDryRun      bool
	indexRecursive   bool
	indexConcurrency int
	indexNoProgress  bool
	indexHierarchy   bool
	indexRefine      bool
)

var indexCmd = &cobra.Command{
	Use:   "index <path>...",
	Short: "Index transcript files for retrieval",
	Long: `Index transcript files into the chunk store.

Each .txt or .md file is treated as one transcript. An optional YAML
frontmatter block supplies the video id, title and other metadata;
without it the filename becomes the source id. Transcripts are
normalized, chunked, embedded and stored. Re-indexing a source replaces
its previous chunks atomically.

Examples:
  voxrag index ./transcripts
  voxrag index talk.txt interview.txt
  voxrag index ./channel --recursive --concurrency 8
  voxrag index ./new-uploads --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexDryRun, "dry-run", false, "chunk without embedding or storing")
	indexCmd.Flags().BoolVarP(&indexRecursive, "recursive", "r", true, "recursively process subdirectories")
	indexCmd.Flags().IntVar(&indexConcurrency, "concurrency", 0, "parallel workers (default from config)")
	indexCmd.Flags().BoolVar(&indexNoProgress, "no-progress", false, "disable the interactive progress display")
	indexCmd.Flags().BoolVar(&indexHierarchy, "hierarchy", false, "group chunks into parent blocks, overrides config")
	indexCmd.Flags().BoolVar(&indexRefine, "refine", false, "adjust boundaries by embedding similarity, overrides config")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if cmd.Flags().Changed("hierarchy") {
		cfg.UseHierarchy = indexHierarchy
	}
	if cmd.Flags().Changed("refine") {
		cfg.UseRefinement = indexRefine
	}

	// Dry runs never embed, so skip provider setup unless refinement
	// needs it for boundary adjustment.
	var indexer *service.IndexService
	var err error
	if indexDryRun && !cfg.UseRefinement {
		pipeline, codec, perr := buildPipeline(nil)
		if perr != nil {
			return perr
		}
		indexer = service.NewIndexService(chunkStore, nil, pipeline, codec.Name(), collector)
	} else {
		indexer, err = getIndexer()
		if err != nil {
			return err
		}
	}

	files, err := indexer.CollectFiles(args, indexRecursive)
	if err != nil {
		return fmt.Errorf("collect files: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("No transcript files found.")
		return nil
	}

	concurrency := indexConcurrency
	if concurrency <= 0 {
		concurrency = cfg.Concurrency
	}

	opts := service.IndexOptions{
		DryRun:      indexDryRun,
		Recursive:   indexRecursive,
		Concurrency: concurrency,
	}

	if indexDryRun {
		fmt.Printf("Dry run: chunking %d files without storing\n\n", len(files))
	} else {
		fmt.Printf("Indexing %d files\n", len(files))
	}

	// Interactive progress only on a terminal; batch runs get log lines.
	interactive := !indexNoProgress && term.IsTerminal(int(os.Stdout.Fd()))

	var result *service.IndexResult
	if interactive {
		jobs := service.NewJobManager(concurrency)
		job := jobs.CreateJob("index", strings.Join(args, " "), len(files))
		opts.Job = job

		done := make(chan error, 1)
		go func() {
			var indexErr error
			result, indexErr = indexer.IndexFiles(ctx, files, opts)
			if indexErr != nil {
				job.Fail(indexErr)
			} else {
				job.Complete(result)
			}
			done <- indexErr
		}()

		if err := runJobProgress(job); err != nil {
			<-done
			return err
		}
		if err := <-done; err != nil {
			return err
		}
	} else {
		opts.OnProgress = func(completed, total int) {
			fmt.Printf("  %d/%d files\n", completed, total)
		}
		result, err = indexer.IndexFiles(ctx, files, opts)
		if err != nil {
			return err
		}
		printIndexResult(result, indexDryRun)
	}

	if verbose {
		fmt.Println()
		printSnapshot(collector.Snapshot())
	}

	return nil
}

// printIndexResult shows the batch summary for non-interactive runs.
func printIndexResult(r *service.IndexResult, dryRun bool) {
	verb := "created"
	if dryRun {
		verb = "would create"
	}
	fmt.Printf("\nFiles processed: %d (skipped %d)\n", r.FilesProcessed, r.FilesSkipped)
	fmt.Printf("Chunks %s:  %d\n", verb, r.ChunksCreated)
	if r.ParentsCreated > 0 {
		fmt.Printf("Parents %s: %d\n", verb, r.ParentsCreated)
	}
	if len(r.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  %s\n", e)
		}
	}
}
