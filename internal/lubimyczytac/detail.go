package lubimyczytac

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"shelfsync/internal/cache"
	sherrors "shelfsync/internal/errors"
	"shelfsync/internal/isbn"
)

// isbnResolution is the cached outcome of one detail-page fetch. NotFound
// covers a vanished page, a placeholder ISBN and a page with no ISBN marker;
// all of them mean "no identity available" and get the shorter negative TTL.
type isbnResolution struct {
	ISBN     string `json:"isbn,omitempty"`
	NotFound bool   `json:"not_found,omitempty"`
}

// BookISBN fetches a book's detail page and extracts its normalized ISBN.
// Returns "" (and no error) when the page is gone, carries a placeholder,
// or has no ISBN marker. Any other non-success response is an error for
// this item only.
func (c *Client) BookISBN(ctx context.Context, bookURL string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, bookURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("detail request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", sherrors.NewRemoteError("lubimyczytac", resp.StatusCode, bookURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse detail page: %w", err)
	}

	raw, ok := doc.Find(`meta[property="books:isbn"]`).First().Attr("content")
	if !ok {
		return "", nil
	}

	return isbn.Key(raw), nil
}

// resolveISBN answers "what is this book's ISBN" through the persistent
// cache, fetching the detail page only on a cache miss.
func (c *Client) resolveISBN(ctx context.Context, sourceID, bookURL string) (string, error) {
	resolution, _, err := cache.GetOrFetchWithTTL(cache.ISBNCacheTable, sourceID,
		func() (isbnResolution, error) {
			key, err := c.BookISBN(ctx, bookURL)
			if err != nil {
				return isbnResolution{}, err
			}
			if key == "" {
				return isbnResolution{NotFound: true}, nil
			}
			return isbnResolution{ISBN: key}, nil
		},
		cache.SelectNegativeCacheTTL(func(r isbnResolution) bool {
			return r.NotFound
		}))
	if err != nil {
		return "", err
	}
	return resolution.ISBN, nil
}
