package db

import "fmt"

// Schema returns the database schema initialization SQL. The HNSW index
// dimension must match the configured embedding model.
func Schema(dimension int) string {
	return fmt.Sprintf(`
    -- ==========================================================================
    -- CHUNK TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS chunk SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS source_id ON chunk TYPE string;
    DEFINE FIELD IF NOT EXISTS ordinal ON chunk TYPE int;
    DEFINE FIELD IF NOT EXISTS body ON chunk TYPE string;
    DEFINE FIELD IF NOT EXISTS overlap ON chunk TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS token_count ON chunk TYPE int;
    DEFINE FIELD IF NOT EXISTS overlap_tokens ON chunk TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS parent_id ON chunk TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS metadata ON chunk TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS embedding ON chunk TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS created ON chunk TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS chunk_source ON chunk FIELDS source_id;
    DEFINE INDEX IF NOT EXISTS chunk_embedding ON chunk FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;

    -- ==========================================================================
    -- PARENT TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS parent SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS source_id ON parent TYPE string;
    DEFINE FIELD IF NOT EXISTS ordinal ON parent TYPE int;
    DEFINE FIELD IF NOT EXISTS text ON parent TYPE string;
    DEFINE FIELD IF NOT EXISTS token_count ON parent TYPE int;
    DEFINE FIELD IF NOT EXISTS child_ids ON parent TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS created ON parent TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS parent_source ON parent FIELDS source_id;

    -- ==========================================================================
    -- META TABLE (index-time settings checked at query time)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS meta SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS value ON meta TYPE string;
    DEFINE FIELD IF NOT EXISTS updated ON meta TYPE datetime DEFAULT time::now();
`, dimension)
}
