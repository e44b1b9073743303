package nakanapie

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"shelfsync/internal/catalog"
	sherrors "shelfsync/internal/errors"
)

// Crawl walks the user's complete library. The listing payload already
// carries each book's ISBN, so no per-item enrichment pass is needed here.
// Pages after the first are fetched concurrently and merged after the join.
func (c *Client) Crawl(ctx context.Context, username string) ([]catalog.Book, error) {
	first, err := c.fetchPage(ctx, username, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first listing page: %w", err)
	}

	books := make([]catalog.Book, 0, first.Pagination.Count)
	for _, row := range first.Books {
		books = append(books, toBook(row))
	}

	if first.Pagination.Pages > 1 {
		pageBooks := make([][]catalog.Book, first.Pagination.Pages-1)
		pageErrs := make([]error, first.Pagination.Pages-1)

		var wg sync.WaitGroup
		for page := 2; page <= first.Pagination.Pages; page++ {
			wg.Add(1)
			go func(page int) {
				defer wg.Done()
				result, err := c.fetchPage(ctx, username, page)
				if err != nil {
					if !sherrors.IsNotFound(err) {
						pageErrs[page-2] = err
					}
					return
				}
				converted := make([]catalog.Book, 0, len(result.Books))
				for _, row := range result.Books {
					converted = append(converted, toBook(row))
				}
				pageBooks[page-2] = converted
			}(page)
		}
		wg.Wait()

		// An incomplete sink collection would make every book on the lost
		// page look missing and trigger spurious creates; abort instead.
		for i, err := range pageErrs {
			if err != nil {
				return nil, fmt.Errorf("failed to fetch listing page %d: %w", i+2, err)
			}
		}
		for _, sub := range pageBooks {
			books = append(books, sub...)
		}
	}

	slog.Info("NaKanapie crawl finished", "books", len(books), "pages", first.Pagination.Pages)
	return books, nil
}
