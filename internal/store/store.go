// Package store defines the chunk storage interface and backends.
package store

import (
	"context"
	"errors"

	"github.com/voxrag/voxrag/internal/models"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Meta keys recorded at index time and checked at query time.
const (
	MetaEmbedModel     = "embed_model"
	MetaEmbedDimension = "embed_dimension"
	MetaTokenCodec     = "token_codec"
)

// Store persists chunks, parent blocks and their embeddings.
type Store interface {
	// ReplaceSource atomically replaces all chunks and parent blocks for a
	// source. Existing records for the source are removed first so a
	// re-index never leaves stale or duplicate chunks behind.
	ReplaceSource(ctx context.Context, sourceID string, chunks []models.Chunk, embeddings [][]float32, parents []models.ParentBlock) error

	// DeleteSource removes all chunks and parent blocks for a source.
	DeleteSource(ctx context.Context, sourceID string) error

	// Search returns the topK chunks most similar to the query embedding,
	// ordered by similarity descending. Ties break by source ID and then
	// ordinal so results are deterministic.
	Search(ctx context.Context, embedding []float32, topK int) ([]models.ScoredChunk, error)

	// GetChunk retrieves a chunk by ID. Returns ErrNotFound if absent.
	GetChunk(ctx context.Context, id string) (*models.Chunk, error)

	// GetParent retrieves a parent block by ID. Returns ErrNotFound if absent.
	GetParent(ctx context.Context, id string) (*models.ParentBlock, error)

	// CountChunks returns the number of chunks stored for a source, or the
	// total across all sources when sourceID is empty.
	CountChunks(ctx context.Context, sourceID string) (int, error)

	// GetMeta returns a stored metadata value, or "" if unset.
	GetMeta(ctx context.Context, key string) (string, error)

	// SetMeta stores a metadata value.
	SetMeta(ctx context.Context, key, value string) error

	Close(ctx context.Context) error
}
