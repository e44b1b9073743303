package nakanapie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"shelfsync/internal/catalog"
	sherrors "shelfsync/internal/errors"
	"shelfsync/internal/isbn"
	"shelfsync/internal/ratelimit"
)

// ErrNotLoggedIn is returned when a mutating call runs before Login.
var ErrNotLoggedIn = errors.New("not logged in to nakanapie")

// Client talks to the NaKanapie library and mutation endpoints. The session
// established by Login lives in the shared HTTP client's cookie jar.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *ratelimit.Limiter
	loggedIn   bool
}

// NewClient creates a client using the shared HTTP pool. baseURL is
// overridable for tests; pass DefaultBaseURL in production wiring.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		limiter:    ratelimit.New("NaKanapie", 5),
	}
}

// Login authenticates the session. It must succeed before any Update or
// Create call; the session cookie is carried implicitly afterwards.
func (c *Client) Login(ctx context.Context, login, password string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("user[login]", login)
	form.Set("user[password]", password)

	endpoint := c.baseURL + "/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return sherrors.NewRemoteError("nakanapie", resp.StatusCode, endpoint)
	}

	c.loggedIn = true
	return nil
}

// fetchPage retrieves one page of the user's library.
func (c *Client) fetchPage(ctx context.Context, username string, page int) (*listResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(listRequest{
		SelectedLists:        []int{},
		SelectedYears:        []int{},
		SelectedSort:         []string{"reading-stop", "desc"},
		SelectedSystemList:   "all",
		SelectedSpecialLists: []int{},
		Page:                 page,
		PerPage:              100,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listing request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/ksiazki/szukaj", c.baseURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, sherrors.NewNotFoundError(fmt.Sprintf("listing page %d for %s", page, username))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, sherrors.NewRemoteError("nakanapie", resp.StatusCode, endpoint)
	}

	var result listResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode listing response: %w", err)
	}

	return &result, nil
}

// toBook converts a listing row to the shared model. The raw ISBN from the
// payload goes through normalization so it can serve as a join key directly.
func toBook(row listBook) catalog.Book {
	return catalog.Book{
		SourceID: strconv.Itoa(row.ID),
		ISBN:     isbn.Key(row.ISBN),
		Title:    row.Title,
		Authors:  row.Authors,
		Status:   row.Kind,
		ID:       row.ID,
		BundleID: row.BundleID,
		BookID:   row.BookID,
		Lists:    row.Lists,
	}
}
