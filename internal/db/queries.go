// Package db provides SurrealDB query functions for chunk operations.
package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/voxrag/voxrag/internal/models"
	"github.com/voxrag/voxrag/internal/store"
)

// chunkRow is the wire shape of a chunk record.
type chunkRow struct {
	ID            surrealmodels.RecordID `json:"id"`
	SourceID      string                 `json:"source_id"`
	Ordinal       int                    `json:"ordinal"`
	Body          string                 `json:"body"`
	Overlap       string                 `json:"overlap,omitempty"`
	TokenCount    int                    `json:"token_count"`
	OverlapTokens int                    `json:"overlap_tokens,omitempty"`
	ParentID      *string                `json:"parent_id,omitempty"`
	Metadata      map[string]string      `json:"metadata,omitempty"`
	Similarity    float32                `json:"similarity,omitempty"`
}

// parentRow is the wire shape of a parent record.
type parentRow struct {
	ID         surrealmodels.RecordID `json:"id"`
	SourceID   string                 `json:"source_id"`
	Ordinal    int                    `json:"ordinal"`
	Text       string                 `json:"text"`
	TokenCount int                    `json:"token_count"`
	ChildIDs   []string               `json:"child_ids"`
}

type metaRow struct {
	Value string `json:"value"`
}

func (r chunkRow) toChunk() models.Chunk {
	c := models.Chunk{
		ID:            models.MustRecordIDString(r.ID),
		SourceID:      r.SourceID,
		Ordinal:       r.Ordinal,
		Body:          r.Body,
		Overlap:       r.Overlap,
		TokenCount:    r.TokenCount,
		OverlapTokens: r.OverlapTokens,
		Metadata:      r.Metadata,
	}
	if r.ParentID != nil {
		c.ParentID = *r.ParentID
	}
	return c
}

func (r parentRow) toParent() models.ParentBlock {
	return models.ParentBlock{
		ID:         models.MustRecordIDString(r.ID),
		SourceID:   r.SourceID,
		Ordinal:    r.Ordinal,
		Text:       r.Text,
		TokenCount: r.TokenCount,
		ChildIDs:   r.ChildIDs,
	}
}

// ReplaceSource atomically replaces all chunks and parents for a source.
// Delete and inserts run in a single transaction so a failed re-index
// never leaves a partially indexed source behind.
func (c *Client) ReplaceSource(ctx context.Context, sourceID string, chunks []models.Chunk, embeddings [][]float32, parents []models.ParentBlock) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}

	chunkDocs := make([]map[string]any, len(chunks))
	for i, ch := range chunks {
		var parentID *string
		if ch.ParentID != "" {
			p := ch.ParentID
			parentID = &p
		}
		chunkDocs[i] = map[string]any{
			"key":            ch.ID,
			"source_id":      ch.SourceID,
			"ordinal":        ch.Ordinal,
			"body":           ch.Body,
			"overlap":        ch.Overlap,
			"token_count":    ch.TokenCount,
			"overlap_tokens": ch.OverlapTokens,
			"parent_id":      parentID,
			"metadata":       ch.Metadata,
			"embedding":      embeddings[i],
		}
	}
	parentDocs := make([]map[string]any, len(parents))
	for i, p := range parents {
		parentDocs[i] = map[string]any{
			"key":         p.ID,
			"source_id":   p.SourceID,
			"ordinal":     p.Ordinal,
			"text":        p.Text,
			"token_count": p.TokenCount,
			"child_ids":   p.ChildIDs,
		}
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		BEGIN TRANSACTION;
		DELETE chunk WHERE source_id = $source;
		DELETE parent WHERE source_id = $source;
		FOR $c IN $chunks {
			CREATE type::record("chunk", $c.key) CONTENT {
				source_id: $c.source_id,
				ordinal: $c.ordinal,
				body: $c.body,
				overlap: $c.overlap,
				token_count: $c.token_count,
				overlap_tokens: $c.overlap_tokens,
				parent_id: $c.parent_id,
				metadata: $c.metadata,
				embedding: $c.embedding
			};
		};
		FOR $p IN $parents {
			CREATE type::record("parent", $p.key) CONTENT {
				source_id: $p.source_id,
				ordinal: $p.ordinal,
				text: $p.text,
				token_count: $p.token_count,
				child_ids: $p.child_ids
			};
		};
		COMMIT TRANSACTION;
	`, map[string]any{
		"source":  sourceID,
		"chunks":  chunkDocs,
		"parents": parentDocs,
	})
	if err != nil {
		return fmt.Errorf("replace source %s: %w", sourceID, wrapQueryError(err))
	}
	return nil
}

// DeleteSource removes all chunks and parents for a source.
func (c *Client) DeleteSource(ctx context.Context, sourceID string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		BEGIN TRANSACTION;
		DELETE chunk WHERE source_id = $source;
		DELETE parent WHERE source_id = $source;
		COMMIT TRANSACTION;
	`, map[string]any{"source": sourceID})
	if err != nil {
		return fmt.Errorf("delete source %s: %w", sourceID, wrapQueryError(err))
	}
	return nil
}

// Search returns the topK most similar chunks using the HNSW index.
// Ordering is similarity descending with source/ordinal tie-break.
func (c *Client) Search(ctx context.Context, embedding []float32, topK int) ([]models.ScoredChunk, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive: %d", topK)
	}

	// KNN operator requires a literal K; ef=40 for better recall
	sql := fmt.Sprintf(`
		SELECT id, source_id, ordinal, body, overlap, token_count, overlap_tokens,
		       parent_id, metadata,
		       vector::similarity::cosine(embedding, $emb) AS similarity
		FROM chunk
		WHERE embedding <|%d,40|> $emb
		ORDER BY similarity DESC, source_id ASC, ordinal ASC
		LIMIT $k
	`, topK)

	results, err := surrealdb.Query[[]chunkRow](ctx, c.db, sql, map[string]any{
		"emb": embedding,
		"k":   topK,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.ScoredChunk{}, nil
	}
	rows := (*results)[0].Result
	scored := make([]models.ScoredChunk, len(rows))
	for i, r := range rows {
		scored[i] = models.ScoredChunk{Chunk: r.toChunk(), Similarity: r.Similarity}
	}
	return scored, nil
}

// GetChunk retrieves a chunk by ID.
func (c *Client) GetChunk(ctx context.Context, id string) (*models.Chunk, error) {
	results, err := surrealdb.Query[[]chunkRow](ctx, c.db, `
		SELECT id, source_id, ordinal, body, overlap, token_count, overlap_tokens,
		       parent_id, metadata
		FROM type::record("chunk", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get chunk: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("chunk %s: %w", id, store.ErrNotFound)
	}
	chunk := (*results)[0].Result[0].toChunk()
	return &chunk, nil
}

// GetParent retrieves a parent block by ID.
func (c *Client) GetParent(ctx context.Context, id string) (*models.ParentBlock, error) {
	results, err := surrealdb.Query[[]parentRow](ctx, c.db, `
		SELECT * FROM type::record("parent", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get parent: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("parent %s: %w", id, store.ErrNotFound)
	}
	parent := (*results)[0].Result[0].toParent()
	return &parent, nil
}

// CountChunks returns the chunk count for a source, or the total when
// sourceID is empty.
func (c *Client) CountChunks(ctx context.Context, sourceID string) (int, error) {
	sql := `SELECT count() AS c FROM chunk GROUP ALL`
	vars := map[string]any{}
	if sourceID != "" {
		sql = `SELECT count() AS c FROM chunk WHERE source_id = $source GROUP ALL`
		vars["source"] = sourceID
	}

	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].C, nil
}

// GetMeta returns a stored metadata value, or "" if unset.
func (c *Client) GetMeta(ctx context.Context, key string) (string, error) {
	results, err := surrealdb.Query[[]metaRow](ctx, c.db, `
		SELECT value FROM type::record("meta", $key)
	`, map[string]any{"key": key})
	if err != nil {
		return "", fmt.Errorf("get meta: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return "", nil
	}
	return (*results)[0].Result[0].Value, nil
}

// SetMeta stores a metadata value.
func (c *Client) SetMeta(ctx context.Context, key, value string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("meta", $key) SET
			value = $value,
			updated = time::now()
	`, map[string]any{"key": key, "value": value})
	if err != nil {
		return fmt.Errorf("set meta: %w", wrapQueryError(err))
	}
	return nil
}

// Client satisfies the chunk store interface.
var _ store.Store = (*Client)(nil)
