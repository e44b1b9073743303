package lubimyczytac

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"shelfsync/internal/catalog"
	sherrors "shelfsync/internal/errors"
	"shelfsync/internal/ratelimit"
)

// Client talks to the LubimyCzytać profile library endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *ratelimit.Limiter
}

// NewClient creates a client using the shared HTTP pool. baseURL is
// overridable for tests; pass DefaultBaseURL in production wiring.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		limiter:    ratelimit.New("LubimyCzytac", 5),
	}
}

// pageResult is one parsed listing page.
type pageResult struct {
	books []catalog.Book
	count int
	left  int
}

// fetchPage retrieves and parses one page of the user's library listing.
// A 404 comes back as a NotFoundError: past-the-end pages and missing
// profiles are expected terminal conditions, not failures.
func (c *Client) fetchPage(ctx context.Context, profileID, page int) (*pageResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("page", strconv.Itoa(page))
	form.Set("listId", "booksFilteredList")
	form.Set("showFirstLetter", "0")
	form.Set("paginatorType", "Standard")
	form.Set("objectId", strconv.Itoa(profileID))
	form.Set("own", "0")

	endpoint := c.baseURL + "/profile/getLibraryBooksList"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, sherrors.NewNotFoundError(fmt.Sprintf("listing page %d", page))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, sherrors.NewRemoteError("lubimyczytac", resp.StatusCode, endpoint)
	}

	var envelope listResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode listing response: %w", err)
	}

	books, err := parseListing(envelope.Data.Content, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page %d: %w", page, err)
	}

	count, _ := strconv.Atoi(envelope.Data.Count)
	left, _ := strconv.Atoi(envelope.Data.Left)

	return &pageResult{books: books, count: count, left: left}, nil
}
