package lubimyczytac

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfsync/internal/cache"
	"shelfsync/internal/catalog"
)

func setupISBNCache(t *testing.T) {
	t.Helper()

	require.NoError(t, cache.ResetGlobalCache())
	viper.Set("cache.dbfile", filepath.Join(t.TempDir(), "cache.db"))
	viper.Set("cache.ttl", "720h")

	t.Cleanup(func() {
		_ = cache.ResetGlobalCache()
		viper.Set("cache.dbfile", "")
		viper.Set("cache.ttl", "")
	})
}

// libraryServer mocks the listing and detail endpoints for a fixed set of
// books spread over listing pages of pageSize rows.
type libraryServer struct {
	mu         sync.Mutex
	detailHits map[string]int

	pageSize int
	books    []testBook
	failPage int // this listing page responds 500; 0 disables
}

type testBook struct {
	id     string
	title  string
	isbn   string // raw meta content; "" means no marker on the page
	gone   bool   // detail page responds 404
	broken bool   // detail page responds 500
}

func newLibraryServer(t *testing.T, pageSize int, books []testBook) (*httptest.Server, *libraryServer) {
	t.Helper()

	ls := &libraryServer{detailHits: make(map[string]int), pageSize: pageSize, books: books}

	mux := http.NewServeMux()
	mux.HandleFunc("/profile/getLibraryBooksList", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		page := 0
		_, _ = fmt.Sscanf(r.FormValue("page"), "%d", &page)

		if ls.failPage != 0 && page == ls.failPage {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}

		start := (page - 1) * ls.pageSize
		end := start + ls.pageSize
		if start > len(ls.books) {
			start = len(ls.books)
		}
		if end > len(ls.books) {
			end = len(ls.books)
		}

		var rows strings.Builder
		for _, book := range ls.books[start:end] {
			fmt.Fprintf(&rows, `<div class="row">
				<img class="img-fluid" data-src="https://cdn.example.com/%s.jpg" />
				<a href="/ksiazka/%s/slug">%s</a>
				<a href="/autor/1/author">Author</a>
				<a href="/biblioteczka/lista?shelfs=1">Przeczytane</a>
			</div>`, book.id, book.id, book.title)
		}

		left := len(ls.books) - end
		body := fmt.Sprintf(`{"data":{"content":%q,"count":"%d","left":"%d"}}`, rows.String(), len(ls.books), left)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/ksiazka/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/ksiazka/"), "/")
		id := parts[0]

		ls.mu.Lock()
		ls.detailHits[id]++
		ls.mu.Unlock()

		for _, book := range ls.books {
			if book.id != id {
				continue
			}
			switch {
			case book.gone:
				http.NotFound(w, r)
			case book.broken:
				http.Error(w, "boom", http.StatusInternalServerError)
			case book.isbn == "":
				_, _ = w.Write([]byte(`<html><head></head></html>`))
			default:
				fmt.Fprintf(w, `<html><head><meta property="books:isbn" content="%s"/></head></html>`, book.isbn)
			}
			return
		}
		http.NotFound(w, r)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, ls
}

func (ls *libraryServer) hits(id string) int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.detailHits[id]
}

func TestCrawlCompleteness(t *testing.T) {
	setupISBNCache(t)

	books := []testBook{
		{id: "1", title: "One", isbn: "978-0-00-000000-1"},
		{id: "2", title: "Two", isbn: "978-0-00-000000-2"},
		{id: "3", title: "Three", isbn: "978-0-00-000000-3"},
		{id: "4", title: "Four", isbn: "978-0-00-000000-4"},
		{id: "5", title: "Five", isbn: "978-0-00-000000-5"},
	}
	server, _ := newLibraryServer(t, 2, books)

	client := NewClient(server.Client(), server.URL)
	got, report, err := client.Crawl(context.Background(), 1234, nil)
	require.NoError(t, err)

	require.Len(t, got, 5)
	seen := make(map[string]bool)
	for _, book := range got {
		assert.False(t, seen[book.SourceID], "duplicate source id %s", book.SourceID)
		seen[book.SourceID] = true
		assert.True(t, book.HasISBN())
	}
	assert.Equal(t, 5, report.Resolved)
	assert.Equal(t, 0, report.CacheHits)
	assert.Empty(t, report.Failures)
}

func TestCrawlAdoptsSnapshotCache(t *testing.T) {
	setupISBNCache(t)

	books := []testBook{
		{id: "42", title: "Cached", isbn: "978-0-00-000004-2"},
		{id: "7", title: "Fresh", isbn: "978-0-00-000000-7"},
	}
	server, ls := newLibraryServer(t, 10, books)

	previous := []catalog.Book{
		{SourceID: "42", ISBN: "9780000000042", Title: "Cached"},
	}

	client := NewClient(server.Client(), server.URL)
	got, report, err := client.Crawl(context.Background(), 1234, previous)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := make(map[string]catalog.Book)
	for _, book := range got {
		byID[book.SourceID] = book
	}

	assert.Equal(t, "9780000000042", byID["42"].ISBN, "cached identity adopted verbatim")
	assert.Equal(t, 0, ls.hits("42"), "cached book must not trigger a detail fetch")
	assert.Equal(t, "9780000000007", byID["7"].ISBN)
	assert.Equal(t, 1, ls.hits("7"))
	assert.Equal(t, 1, report.CacheHits)
	assert.Equal(t, 1, report.Resolved)
}

func TestCrawlRecordsItemFailures(t *testing.T) {
	setupISBNCache(t)

	books := []testBook{
		{id: "1", title: "Fine", isbn: "978-0-00-000000-1"},
		{id: "2", title: "Gone", gone: true},
		{id: "3", title: "Broken", broken: true},
		{id: "4", title: "No marker"},
		{id: "5", title: "Placeholder", isbn: "000-00-0000-00-0"},
	}
	server, _ := newLibraryServer(t, 10, books)

	client := NewClient(server.Client(), server.URL)
	got, report, err := client.Crawl(context.Background(), 1234, nil)
	require.NoError(t, err, "item failures never abort the crawl")
	require.Len(t, got, 5)

	assert.Equal(t, 1, report.Resolved)
	assert.Equal(t, 3, report.Absent, "404, missing marker and placeholder all mean absent")
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "3", report.Failures[0].SourceID)
	assert.Contains(t, report.Failures[0].Err, "500")
}

func TestCrawlRecordsPageFailures(t *testing.T) {
	setupISBNCache(t)

	books := []testBook{
		{id: "1", title: "One", isbn: "978-0-00-000000-1"},
		{id: "2", title: "Two", isbn: "978-0-00-000000-2"},
		{id: "3", title: "Three", isbn: "978-0-00-000000-3"},
		{id: "4", title: "Four", isbn: "978-0-00-000000-4"},
		{id: "5", title: "Five", isbn: "978-0-00-000000-5"},
		{id: "6", title: "Six", isbn: "978-0-00-000000-6"},
	}
	server, ls := newLibraryServer(t, 2, books)
	ls.failPage = 2

	client := NewClient(server.Client(), server.URL)
	got, report, err := client.Crawl(context.Background(), 1234, nil)
	require.NoError(t, err, "a failed page past the first must not abort the crawl")

	require.Len(t, got, 4, "books from the failed page are simply missing")
	ids := make(map[string]bool)
	for _, book := range got {
		ids[book.SourceID] = true
	}
	assert.False(t, ids["3"])
	assert.False(t, ids["4"])

	require.Len(t, report.PageFailures, 1)
	assert.Contains(t, report.PageFailures[0], "500")
	assert.Equal(t, 2, report.Pages)
}

func TestCrawlFirstPageFailureIsFatal(t *testing.T) {
	setupISBNCache(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.Client(), server.URL)
	_, _, err := client.Crawl(context.Background(), 1234, nil)
	require.Error(t, err)
}

func TestBookISBNPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><meta property="books:isbn" content="000-00-0000-00-0"/></head></html>`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.Client(), server.URL)
	key, err := client.BookISBN(context.Background(), server.URL+"/ksiazka/1/x")
	require.NoError(t, err)
	assert.Equal(t, "", key)
}
