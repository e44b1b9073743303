// Package importer orchestrates a full reconciliation run: crawl both
// catalogs (reusing snapshots where allowed), plan the mutations, apply
// them, and persist fresh snapshots.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"shelfsync/internal/catalog"
	"shelfsync/internal/lubimyczytac"
	"shelfsync/internal/nakanapie"
	"shelfsync/internal/reconcile"
	"shelfsync/internal/snapshot"
)

// Options configures one run.
type Options struct {
	ProfileID int    // LubimyCzytać profile id
	Username  string // NaKanapie username
	Login     string // NaKanapie credentials, required unless DryRun
	Password  string

	Mapping   catalog.Mapping
	OutputDir string

	// ForceDownload re-crawls both catalogs even when snapshots exist.
	ForceDownload bool
	// DryRun plans and reports without logging in or mutating anything.
	DryRun bool
}

// Importer wires the two catalog clients and the snapshot store together.
type Importer struct {
	source    *lubimyczytac.Client
	sink      *nakanapie.Client
	snapshots *snapshot.Store
	opts      Options
}

// New creates an importer.
func New(source *lubimyczytac.Client, sink *nakanapie.Client, snapshots *snapshot.Store, opts Options) *Importer {
	return &Importer{source: source, sink: sink, snapshots: snapshots, opts: opts}
}

// Run executes the full pipeline and returns the reconciliation report.
// Only setup-scoped failures (login, a catalog's first page, snapshot IO)
// abort the run; everything item-scoped ends up inside the report.
func (i *Importer) Run(ctx context.Context) (*reconcile.Report, error) {
	if !i.opts.DryRun {
		if err := i.sink.Login(ctx, i.opts.Login, i.opts.Password); err != nil {
			return nil, fmt.Errorf("nakanapie login failed: %w", err)
		}
	}

	sourceBooks, err := i.snapshots.Load(lubimyczytac.Source)
	if err != nil {
		return nil, err
	}
	sinkBooks, err := i.snapshots.Load(nakanapie.Source)
	if err != nil {
		return nil, err
	}

	// Both crawls are independent; run them concurrently. Each goroutine
	// owns its own result slot.
	var wg sync.WaitGroup
	var sourceErr, sinkErr error
	var sourceCrawl *lubimyczytac.CrawlReport

	if i.opts.ForceDownload || len(sourceBooks) == 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sourceBooks, sourceCrawl, sourceErr = i.crawlSource(ctx, sourceBooks)
		}()
	}
	if i.opts.ForceDownload || len(sinkBooks) == 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sinkBooks, sinkErr = i.crawlSink(ctx)
		}()
	}
	wg.Wait()

	if sourceErr != nil {
		return nil, sourceErr
	}
	if sinkErr != nil {
		return nil, sinkErr
	}

	sourceIndex, sourceReport := catalog.IndexByISBN(sourceBooks)
	sinkIndex, sinkReport := catalog.IndexByISBN(sinkBooks)

	report := &reconcile.Report{
		SourceBooks:      len(sourceBooks),
		SinkBooks:        len(sinkBooks),
		SourceExcluded:   sourceReport.Excluded,
		SinkExcluded:     sinkReport.Excluded,
		SourceCollisions: sourceReport.Collisions,
		SinkCollisions:   sinkReport.Collisions,
	}
	if sourceCrawl != nil {
		report.SourceCacheHits = sourceCrawl.CacheHits
		report.SourceResolved = sourceCrawl.Resolved
		report.SourceAbsent = sourceCrawl.Absent
		report.SourcePageFailures = sourceCrawl.PageFailures
		for _, failure := range sourceCrawl.Failures {
			report.SourceItemFailures = append(report.SourceItemFailures, reconcile.CrawlFailure{
				SourceID: failure.SourceID,
				Title:    failure.Title,
				Err:      failure.Err,
			})
		}
	}

	plan := reconcile.BuildPlan(sourceIndex, sinkIndex, i.opts.Mapping)

	if i.opts.DryRun {
		report.Merge(plan, reconcile.ApplyReport{})
		slog.Info("Dry run, not applying",
			"updates", len(plan.Updates),
			"creates", len(plan.Creates))
		return report, nil
	}

	applied := reconcile.Apply(ctx, plan, i.sink)
	report.Merge(plan, applied)

	// The sink changed; refresh its snapshot so the next run starts from
	// reality. A refresh failure costs nothing but staleness.
	if refreshed, err := i.sink.Crawl(ctx, i.opts.Username); err != nil {
		slog.Warn("Failed to refresh sink snapshot after apply", "error", err)
	} else if err := i.snapshots.Save(nakanapie.Source, refreshed); err != nil {
		slog.Warn("Failed to save refreshed sink snapshot", "error", err)
	}

	return report, nil
}

func (i *Importer) crawlSource(ctx context.Context, previous []catalog.Book) ([]catalog.Book, *lubimyczytac.CrawlReport, error) {
	books, crawl, err := i.source.Crawl(ctx, i.opts.ProfileID, previous)
	if err != nil {
		return nil, nil, fmt.Errorf("lubimyczytac crawl failed: %w", err)
	}
	if err := i.snapshots.Save(lubimyczytac.Source, books); err != nil {
		return nil, nil, err
	}
	i.source.DownloadCovers(ctx, books, filepath.Join(i.opts.OutputDir, "covers"))
	return books, crawl, nil
}

func (i *Importer) crawlSink(ctx context.Context) ([]catalog.Book, error) {
	books, err := i.sink.Crawl(ctx, i.opts.Username)
	if err != nil {
		return nil, fmt.Errorf("nakanapie crawl failed: %w", err)
	}
	if err := i.snapshots.Save(nakanapie.Source, books); err != nil {
		return nil, err
	}
	return books, nil
}
