package reconcile

import (
	"log/slog"

	"shelfsync/internal/catalog"
)

// CrawlFailure records one item-scoped failure from the source crawl's
// identity resolution pass.
type CrawlFailure struct {
	SourceID string
	Title    string
	Err      string
}

// Report is the caller-visible summary of one full reconciliation run.
type Report struct {
	SourceBooks int
	SinkBooks   int

	// Source crawl outcome: how identity keys were obtained and what
	// failed along the way. All zero when the snapshot was reused.
	SourceCacheHits    int
	SourceResolved     int
	SourceAbsent       int
	SourcePageFailures []string
	SourceItemFailures []CrawlFailure

	// Books excluded from the join for lack of an identity key.
	SourceExcluded int
	SinkExcluded   int

	// Identity-key collisions within one catalog (duplicate editions).
	SourceCollisions []catalog.Collision
	SinkCollisions   []catalog.Collision

	Shared         int
	MissingInSink  int
	UnknownShelves []string

	Updated    int
	Created    int
	Unresolved []string
	Failures   []Failure
}

// Merge folds planning diagnostics and an apply outcome into the report.
func (r *Report) Merge(plan Plan, applied ApplyReport) {
	r.Shared = plan.Shared
	r.MissingInSink = plan.MissingInSink
	r.UnknownShelves = plan.UnknownShelves
	r.Updated = applied.Updated
	r.Created = applied.Created
	r.Unresolved = applied.Unresolved
	r.Failures = applied.Failures
}

// Log writes the run summary. Diagnostics that demand attention (unknown
// shelves, collisions, unresolved identities, failures) get their own lines.
func (r *Report) Log() {
	slog.Info("Reconciliation finished",
		"source_books", r.SourceBooks,
		"sink_books", r.SinkBooks,
		"shared", r.Shared,
		"missing_in_sink", r.MissingInSink,
		"updated", r.Updated,
		"created", r.Created,
		"source_excluded", r.SourceExcluded,
		"sink_excluded", r.SinkExcluded,
		"isbn_cache_hits", r.SourceCacheHits,
		"isbn_resolved", r.SourceResolved,
		"isbn_absent", r.SourceAbsent)

	for _, page := range r.SourcePageFailures {
		slog.Warn("Listing page failed during source crawl", "error", page)
	}
	for _, failure := range r.SourceItemFailures {
		slog.Warn("ISBN resolution failed",
			"source_id", failure.SourceID, "title", failure.Title, "error", failure.Err)
	}
	for _, shelf := range r.UnknownShelves {
		slog.Warn("Unknown shelf, ignoring", "shelf", shelf)
	}
	for _, collision := range r.SourceCollisions {
		slog.Warn("Duplicate identity key in source catalog",
			"isbn", collision.ISBN, "kept", collision.KeptSourceID, "dropped", collision.DroppedSourceID)
	}
	for _, collision := range r.SinkCollisions {
		slog.Warn("Duplicate identity key in sink catalog",
			"isbn", collision.ISBN, "kept", collision.KeptSourceID, "dropped", collision.DroppedSourceID)
	}
	if len(r.Unresolved) > 0 {
		slog.Warn("Books not found in sink catalog", "isbns", r.Unresolved)
	}
	for _, failure := range r.Failures {
		slog.Warn("Mutation failed", "op", failure.Op, "isbn", failure.ISBN, "error", failure.Err)
	}
}
