package lubimyczytac

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"shelfsync/internal/catalog"
	sherrors "shelfsync/internal/errors"
	"shelfsync/internal/isbn"
)

// Crawl walks the user's complete library listing and resolves an ISBN for
// every book it can. previous is the last snapshot; ISBNs already resolved
// there are adopted by source id without a detail fetch.
//
// Page fetches and detail fetches run as two separate fan-outs, in that
// order; both are bounded only by the shared connection pool. Item-scoped
// failures end up in the report. Only a first-page failure is fatal.
func (c *Client) Crawl(ctx context.Context, profileID int, previous []catalog.Book) ([]catalog.Book, *CrawlReport, error) {
	// Identity cache from the previous snapshot, built once before any
	// fan-out begins. Read-only from here on.
	cached := make(map[string]string, len(previous))
	for _, book := range previous {
		if key := isbn.Key(book.ISBN); key != "" {
			cached[book.SourceID] = key
		}
	}

	report := &CrawlReport{}

	first, err := c.fetchPage(ctx, profileID, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch first listing page: %w", err)
	}
	report.Pages = 1

	books := first.books
	if len(books) > 0 && first.count > len(books) {
		perPage := len(first.books)
		lastPage := first.count/perPage + 1

		// Each page goroutine fills its own slot; the merge happens
		// single-threaded after the join.
		pageBooks := make([][]catalog.Book, lastPage-1)
		pageErrs := make([]error, lastPage-1)
		var wg sync.WaitGroup
		for page := 2; page <= lastPage; page++ {
			wg.Add(1)
			go func(page int) {
				defer wg.Done()
				result, err := c.fetchPage(ctx, profileID, page)
				if err != nil {
					if !sherrors.IsNotFound(err) {
						pageErrs[page-2] = err
					}
					return
				}
				pageBooks[page-2] = result.books
			}(page)
		}
		wg.Wait()

		for i, sub := range pageBooks {
			if pageErrs[i] != nil {
				report.PageFailures = append(report.PageFailures, pageErrs[i].Error())
				continue
			}
			if len(sub) > 0 {
				report.Pages++
				books = append(books, sub...)
			}
		}
	}

	// Adopt cached identities before any detail fetch.
	var missing []int
	for i := range books {
		if key, ok := cached[books[i].SourceID]; ok {
			books[i].ISBN = key
			report.CacheHits++
			continue
		}
		missing = append(missing, i)
	}

	// Second fan-out: per-item identity resolution for everything the
	// snapshot cache could not answer.
	type resolution struct {
		index int
		key   string
		err   error
	}
	results := make(chan resolution, len(missing))
	var wg sync.WaitGroup
	for _, idx := range missing {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			key, err := c.resolveISBN(ctx, books[idx].SourceID, books[idx].URL)
			results <- resolution{index: idx, key: key, err: err}
		}(idx)
	}
	wg.Wait()
	close(results)

	for res := range results {
		switch {
		case res.err != nil:
			report.Failures = append(report.Failures, ItemFailure{
				SourceID: books[res.index].SourceID,
				Title:    books[res.index].Title,
				Err:      res.err.Error(),
			})
		case res.key == "":
			report.Absent++
		default:
			books[res.index].ISBN = res.key
			report.Resolved++
		}
	}

	report.Books = len(books)
	slog.Info("LubimyCzytać crawl finished",
		"books", report.Books,
		"pages", report.Pages,
		"cache_hits", report.CacheHits,
		"resolved", report.Resolved,
		"absent", report.Absent,
		"page_failures", len(report.PageFailures),
		"failures", len(report.Failures))

	return books, report, nil
}
