package nakanapie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"shelfsync/internal/catalog"
	sherrors "shelfsync/internal/errors"
)

// Search resolves an identity key to the service's internal identifiers via
// an exact-match lookup. A miss is a NotFoundError: a normal outcome the
// caller records as unresolved, not a failure.
func (c *Client) Search(ctx context.Context, isbnKey string) (*SearchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/api/books/search?" + url.Values{"query": {isbnKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, sherrors.NewNotFoundError("isbn " + isbnKey)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, sherrors.NewRemoteError("nakanapie", resp.StatusCode, endpoint)
	}

	var results []SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(results) == 0 {
		return nil, sherrors.NewNotFoundError("isbn " + isbnKey)
	}

	return &results[0], nil
}

// Update replaces the book's status and list memberships with the values
// carried on book. Idempotent at item granularity; the remote side is
// authoritative, so a failure rolls back nothing and is reported as-is.
func (c *Client) Update(ctx context.Context, book catalog.Book) error {
	if !c.loggedIn {
		return ErrNotLoggedIn
	}

	payload := map[string]any{
		"id":    book.ID,
		"kind":  book.Status,
		"lists": book.Lists,
	}
	return c.postJSON(ctx, "/api/books/update", payload)
}

// Create resolves the identity key through Search and creates the book
// association with the given kind. A search miss propagates as NotFound so
// the caller can record the key as unresolved.
func (c *Client) Create(ctx context.Context, isbnKey, kind string) error {
	if !c.loggedIn {
		return ErrNotLoggedIn
	}

	result, err := c.Search(ctx, isbnKey)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"book_id":   result.BookID,
		"bundle_id": result.BundleID,
		"kind":      kind,
	}
	return c.postJSON(ctx, "/api/books/add", payload)
}

func (c *Client) postJSON(ctx context.Context, path string, payload map[string]any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return sherrors.NewRemoteError("nakanapie", resp.StatusCode, endpoint)
	}

	return nil
}
