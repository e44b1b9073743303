package nakanapie

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfsync/internal/catalog"
)

func TestCrawlPagination(t *testing.T) {
	const total = 250 // 3 pages at 100 per page

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/czytelnik/ksiazki/szukaj", r.URL.Path)

		var req listRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, 100, req.PerPage)

		start := (req.Page - 1) * req.PerPage
		end := start + req.PerPage
		if end > total {
			end = total
		}

		var resp listResponse
		for i := start; i < end; i++ {
			resp.Books = append(resp.Books, listBook{
				ID:       i + 1,
				BundleID: 1000 + i,
				BookID:   2000 + i,
				Title:    fmt.Sprintf("Book %d", i+1),
				Kind:     KindRead,
				ISBN:     fmt.Sprintf("978-0-00-%06d-0", i+1),
			})
		}
		resp.Pagination.Count = total
		resp.Pagination.Pages = 3
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.Client(), server.URL)
	books, err := client.Crawl(context.Background(), "czytelnik")
	require.NoError(t, err)
	require.Len(t, books, total)

	seen := make(map[string]bool)
	for _, book := range books {
		assert.False(t, seen[book.SourceID], "duplicate source id %s", book.SourceID)
		seen[book.SourceID] = true
		assert.True(t, book.HasISBN(), "listing payload carries the ISBN")
	}
}

func TestCrawlNormalizesISBN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var resp listResponse
		resp.Books = []listBook{
			{ID: 1, Title: "Hyphenated", ISBN: "978-83-8116-712-3", Kind: KindReading, Lists: []int{5}},
			{ID: 2, Title: "No identity", ISBN: ""},
		}
		resp.Pagination.Count = 2
		resp.Pagination.Pages = 1
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.Client(), server.URL)
	books, err := client.Crawl(context.Background(), "czytelnik")
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, "9788381167123", books[0].ISBN)
	assert.Equal(t, KindReading, books[0].Status)
	assert.Equal(t, []int{5}, books[0].Lists)
	assert.False(t, books[1].HasISBN())
}

func TestCrawlPageFailureAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req listRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Page > 1 {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		var resp listResponse
		resp.Books = []listBook{{ID: 1, Title: "One", ISBN: "978-0-00-000001-7"}}
		resp.Pagination.Count = 150
		resp.Pagination.Pages = 2
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.Client(), server.URL)
	_, err := client.Crawl(context.Background(), "czytelnik")
	require.Error(t, err, "a partial collection must not look like a successful crawl")
	assert.Contains(t, err.Error(), "page 2")
}

func TestCrawlMissingProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.Client(), server.URL)
	_, err := client.Crawl(context.Background(), "nobody")
	require.Error(t, err)
}

func TestMutationsRequireLogin(t *testing.T) {
	client := NewClient(http.DefaultClient, DefaultBaseURL)

	err := client.Update(context.Background(), catalog.Book{ID: 1, Status: KindRead})
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	err = client.Create(context.Background(), "9788381167123", KindRead)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestLoginThenUpdate(t *testing.T) {
	var mu sync.Mutex
	var updates []map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "reader", r.FormValue("user[login]"))
		require.Equal(t, "sekret", r.FormValue("user[password]"))
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/books/update", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		mu.Lock()
		updates = append(updates, payload)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(server.Client(), server.URL)
	require.NoError(t, client.Login(context.Background(), "reader", "sekret"))

	book := catalog.Book{ID: 77, Status: KindRead, Lists: []int{3, 9}}
	require.NoError(t, client.Update(context.Background(), book))

	require.Len(t, updates, 1)
	assert.Equal(t, float64(77), updates[0]["id"])
	assert.Equal(t, KindRead, updates[0]["kind"])
	assert.Equal(t, []any{float64(3), float64(9)}, updates[0]["lists"])
}

func TestLoginFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.Client(), server.URL)
	err := client.Login(context.Background(), "reader", "wrong")
	require.Error(t, err)

	err = client.Update(context.Background(), catalog.Book{ID: 1})
	assert.ErrorIs(t, err, ErrNotLoggedIn, "failed login must not open the mutation path")
}
