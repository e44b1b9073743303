package cache

// SQL schemas for cache tables.
// All cache tables use "cache_key" as the primary key column for consistency.

// ISBNCacheSchema holds detail-page ISBN resolutions keyed by book source id.
// Entries outlive snapshots, so a deleted snapshot does not force a full
// round of detail fetches.
const ISBNCacheSchema = `
CREATE TABLE IF NOT EXISTS lubimyczytac_isbn_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	ttl_seconds INTEGER NOT NULL DEFAULT 0,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_lubimyczytac_isbn_cached_at ON lubimyczytac_isbn_cache(cached_at);
`

// ISBNCacheTable is the table name used with Get/Set and GetOrFetchWithTTL.
const ISBNCacheTable = "lubimyczytac_isbn_cache"

// AllCacheSchemas contains all cache table schemas for initialization.
var AllCacheSchemas = []string{
	ISBNCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names,
// used to prevent SQL injection when interpolating table names.
var ValidCacheTableNames = map[string]bool{
	ISBNCacheTable: true,
}
