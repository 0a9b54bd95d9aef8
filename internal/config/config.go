// Package config loads voxrag configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Provider identifies an embedding or LLM backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Store backends.
const (
	StoreSurreal = "surreal"
	StoreMemory  = "memory"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Vector store backend: "surreal" or "memory"
	StoreBackend string

	// Embedding
	EmbedProvider  Provider
	EmbedModel     string
	EmbedDimension int
	OllamaHost     string
	OpenAIAPIKey   string

	// Embedding call policy
	EmbedTimeout    time.Duration
	EmbedMaxRetries int

	// LLM (answer synthesis)
	LLMProvider     Provider
	LLMModel        string
	AnthropicAPIKey string

	// Chunking
	MaxChunkSize        int
	MinChunkSize        int
	ChunkOverlap        int
	SimilarityThreshold float64
	UseRefinement       bool
	UseHierarchy        bool
	ParentMinSize       int
	ParentMaxSize       int
	TokenEncoding       string

	// Retrieval
	TopK          int
	ContextBudget int

	// Normalization
	StopwordsPath   string
	TrimBoilerplate bool

	// Batch indexing
	Concurrency int

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables, applying the
// defaults from the chunking/retrieval design.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "voxrag"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "transcripts"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		StoreBackend: getEnv("VOXRAG_STORE", StoreSurreal),

		EmbedProvider:  Provider(getEnv("VOXRAG_EMBED_PROVIDER", string(ProviderOllama))),
		EmbedModel:     getEnv("VOXRAG_EMBED_MODEL", "nomic-embed-text"),
		EmbedDimension: getEnvInt("VOXRAG_EMBED_DIMENSION", 768),
		OllamaHost:     getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),

		EmbedTimeout:    getEnvDuration("VOXRAG_EMBED_TIMEOUT", 30*time.Second),
		EmbedMaxRetries: getEnvInt("VOXRAG_EMBED_MAX_RETRIES", 3),

		LLMProvider:     Provider(getEnv("VOXRAG_LLM_PROVIDER", string(ProviderOllama))),
		LLMModel:        getEnv("VOXRAG_LLM_MODEL", "llama3.1"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		MaxChunkSize:        getEnvInt("VOXRAG_MAX_CHUNK_SIZE", 400),
		MinChunkSize:        getEnvInt("VOXRAG_MIN_CHUNK_SIZE", 150),
		ChunkOverlap:        getEnvInt("VOXRAG_CHUNK_OVERLAP", 50),
		SimilarityThreshold: getEnvFloat("VOXRAG_SIMILARITY_THRESHOLD", 0.75),
		UseRefinement:       getEnv("VOXRAG_USE_REFINEMENT", "false") == "true",
		UseHierarchy:        getEnv("VOXRAG_USE_HIERARCHY", "false") == "true",
		ParentMinSize:       getEnvInt("VOXRAG_PARENT_MIN_SIZE", 1000),
		ParentMaxSize:       getEnvInt("VOXRAG_PARENT_MAX_SIZE", 2000),
		TokenEncoding:       getEnv("VOXRAG_TOKEN_ENCODING", "cl100k_base"),

		TopK:          getEnvInt("VOXRAG_TOP_K", 4),
		ContextBudget: getEnvInt("VOXRAG_CONTEXT_BUDGET", 3000),

		StopwordsPath:   getEnv("VOXRAG_STOPWORDS", "stopwords.txt"),
		TrimBoilerplate: getEnv("VOXRAG_TRIM_BOILERPLATE", "false") == "true",

		Concurrency: getEnvInt("VOXRAG_CONCURRENCY", 4),

		LogFile:  getEnv("VOXRAG_LOG_FILE", "/tmp/voxrag.log"),
		LogLevel: parseLogLevel(getEnv("VOXRAG_LOG_LEVEL", "INFO")),
	}
}

// Validate checks configuration consistency. Malformed values are fatal;
// the pipeline must not start with an invalid geometry.
func (c Config) Validate() error {
	if c.MinChunkSize <= 0 || c.MaxChunkSize <= 0 {
		return fmt.Errorf("chunk sizes must be positive: min=%d max=%d", c.MinChunkSize, c.MaxChunkSize)
	}
	if c.MinChunkSize > c.MaxChunkSize {
		return fmt.Errorf("min_chunk_size %d exceeds max_chunk_size %d", c.MinChunkSize, c.MaxChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.MinChunkSize {
		return fmt.Errorf("chunk_overlap %d must be in [0, min_chunk_size)", c.ChunkOverlap)
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold >= 1 {
		return fmt.Errorf("similarity_threshold %v outside (0, 1)", c.SimilarityThreshold)
	}
	if c.UseHierarchy {
		if c.ParentMinSize <= 0 || c.ParentMaxSize < c.ParentMinSize {
			return fmt.Errorf("invalid parent block bounds [%d, %d]", c.ParentMinSize, c.ParentMaxSize)
		}
		if c.ParentMinSize < c.MaxChunkSize {
			return fmt.Errorf("parent_min_size %d below max_chunk_size %d", c.ParentMinSize, c.MaxChunkSize)
		}
	}
	if c.TopK <= 0 {
		return fmt.Errorf("retrieval_top_k must be positive: %d", c.TopK)
	}
	if c.ContextBudget <= 0 {
		return fmt.Errorf("context budget must be positive: %d", c.ContextBudget)
	}
	if c.StoreBackend != StoreSurreal && c.StoreBackend != StoreMemory {
		return fmt.Errorf("unknown store backend: %s", c.StoreBackend)
	}
	switch c.EmbedProvider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.EmbedProvider)
	}
	if c.EmbedDimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive: %d", c.EmbedDimension)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive: %d", c.Concurrency)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
