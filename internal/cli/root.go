// Package cli provides the command-line interface for voxrag.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/voxrag/voxrag/internal/chunk"
	"github.com/voxrag/voxrag/internal/config"
	"github.com/voxrag/voxrag/internal/db"
	"github.com/voxrag/voxrag/internal/llm"
	"github.com/voxrag/voxrag/internal/metrics"
	"github.com/voxrag/voxrag/internal/service"
	"github.com/voxrag/voxrag/internal/store"
	"github.com/voxrag/voxrag/internal/token"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose       bool
	storeOverride string

	// Global config, store and metrics, set up in PersistentPreRunE
	cfg        config.Config
	chunkStore store.Store
	collector  *metrics.Collector
	closeLog   func() error

	// Lazy-initialized LLM components
	embedder *llm.Embedder
	model    *llm.Model
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "voxrag",
	Short: "Chunk and search spoken-word transcripts",
	Long: `Voxrag indexes YouTube and podcast transcripts for retrieval-augmented
generation. Transcripts are normalized, split into token-bounded chunks
with overlap, embedded, and stored for semantic search.

Use 'index' to ingest transcript files, 'search' for raw similarity
results, and 'ask' for an LLM-synthesized answer over the best matches.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if storeOverride != "" {
			cfg.StoreBackend = storeOverride
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, closer := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)
		closeLog = closer

		collector = metrics.NewCollector()

		// Commands that only chunk locally don't need a store.
		if cmd.Name() == "chunks" || cmd.Name() == "stopwords" {
			return nil
		}

		ctx := context.Background()
		switch cfg.StoreBackend {
		case config.StoreMemory:
			chunkStore = store.NewMemoryStore()
		case config.StoreSurreal:
			client, err := db.NewClient(ctx, db.Config{
				URL:            cfg.SurrealDBURL,
				Namespace:      cfg.SurrealDBNamespace,
				Database:       cfg.SurrealDBDatabase,
				Username:       cfg.SurrealDBUser,
				Password:       cfg.SurrealDBPass,
				AuthLevel:      cfg.SurrealDBAuthLevel,
				EmbedDimension: cfg.EmbedDimension,
			}, nil)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			if err := client.InitSchema(ctx); err != nil {
				return fmt.Errorf("initialize schema: %w", err)
			}
			chunkStore = client
		default:
			return fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if chunkStore != nil {
			if err := chunkStore.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
			}
		}
		if closeLog != nil {
			_ = closeLog()
		}
	},
}

// getEmbedder lazily initializes the embedding client. Commands that
// never embed (dry runs, chunk previews) avoid requiring API keys.
func getEmbedder() (*llm.Embedder, error) {
	if embedder == nil {
		var err error
		embedder, err = llm.NewEmbedder(cfg, collector)
		if err != nil {
			return nil, fmt.Errorf("init embedder: %w", err)
		}
	}
	return embedder, nil
}

// getModel lazily initializes the generation model.
func getModel() (*llm.Model, error) {
	if model == nil {
		var err error
		model, err = llm.NewModel(cfg, collector)
		if err != nil {
			return nil, fmt.Errorf("init model: %w", err)
		}
	}
	return model, nil
}

// buildPipeline constructs the chunking pipeline. emb may be nil when
// semantic refinement is disabled.
func buildPipeline(emb *llm.Embedder) (*service.Pipeline, token.Codec, error) {
	codec, err := token.New(cfg.TokenEncoding)
	if err != nil {
		return nil, nil, fmt.Errorf("init token codec: %w", err)
	}
	var chunkEmb chunk.Embedder
	if emb != nil {
		chunkEmb = emb
	}
	pipeline, err := service.NewPipeline(cfg, codec, chunkEmb, collector)
	if err != nil {
		return nil, nil, fmt.Errorf("init pipeline: %w", err)
	}
	return pipeline, codec, nil
}

// getIndexer builds the full indexing stack: codec, embedder, pipeline,
// index service.
func getIndexer() (*service.IndexService, error) {
	emb, err := getEmbedder()
	if err != nil {
		return nil, err
	}
	pipeline, codec, err := buildPipeline(emb)
	if err != nil {
		return nil, err
	}
	return service.NewIndexService(chunkStore, emb, pipeline, codec.Name(), collector), nil
}

// getRetriever builds the retrieval service.
func getRetriever() (*service.RetrieveService, error) {
	emb, err := getEmbedder()
	if err != nil {
		return nil, err
	}
	return service.NewRetrieveService(chunkStore, emb, cfg.TopK, collector)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&storeOverride, "store", "", "store backend (surreal|memory), overrides config")

	// Add subcommands
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chunksCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(stopwordsCmd)
	rootCmd.AddCommand(versionCmd)
}
