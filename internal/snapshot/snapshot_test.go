package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfsync/internal/catalog"
)

func TestLoadMissingSnapshot(t *testing.T) {
	store := NewStore(t.TempDir())

	books, err := store.Load("lubimyczytac")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	books := []catalog.Book{
		{
			SourceID: "12345",
			ISBN:     "9780134685991",
			Title:    "The Go Programming Language",
			Authors:  []string{"Alan A. A. Donovan", "Brian W. Kernighan"},
			URL:      "https://lubimyczytac.pl/ksiazka/12345/x",
			CoverURL: "https://example.com/cover.jpg",
			Shelves:  []string{"Przeczytane", "Posiadam"},
		},
		{
			SourceID: "99",
			Title:    "Unresolved identity",
			Shelves:  []string{"Chcę przeczytać"},
		},
		{
			SourceID: "7",
			ISBN:     "9780000000007",
			Title:    "Sink book",
			Status:   "read",
			ID:       111,
			BundleID: 222,
			BookID:   333,
			Lists:    []int{5, 9},
		},
	}

	require.NoError(t, store.Save("nakanapie", books))

	loaded, err := store.Load("nakanapie")
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	// Sorted by ISBN with unresolved first.
	assert.Equal(t, "99", loaded[0].SourceID)
	assert.Equal(t, "9780000000007", loaded[1].ISBN)
	assert.Equal(t, "9780134685991", loaded[2].ISBN)

	// Every field survives the round trip.
	assert.ElementsMatch(t, books, loaded)
}

func TestSaveReplacesWholesale(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Save("lubimyczytac", []catalog.Book{
		{SourceID: "1", ISBN: "9780000000001", Title: "Old"},
		{SourceID: "2", ISBN: "9780000000002", Title: "Gone after re-crawl"},
	}))
	require.NoError(t, store.Save("lubimyczytac", []catalog.Book{
		{SourceID: "1", ISBN: "9780000000001", Title: "New"},
	}))

	loaded, err := store.Load("lubimyczytac")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "New", loaded[0].Title)
}

func TestSaveDoesNotMutateInput(t *testing.T) {
	store := NewStore(t.TempDir())

	books := []catalog.Book{
		{SourceID: "2", ISBN: "9780000000002"},
		{SourceID: "1", ISBN: "9780000000001"},
	}
	require.NoError(t, store.Save("lubimyczytac", books))

	assert.Equal(t, "2", books[0].SourceID, "caller's slice order must be preserved")
}
