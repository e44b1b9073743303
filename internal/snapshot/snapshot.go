// Package snapshot persists the last complete crawl result for each catalog.
// The snapshot doubles as the next crawl's identity-resolution cache: ISBNs
// carried in it are adopted without a detail fetch.
package snapshot

import (
	"fmt"
	"path/filepath"
	"sort"

	"shelfsync/internal/catalog"
	"shelfsync/internal/fileutil"
)

// Store reads and writes per-catalog snapshot files under Dir.
type Store struct {
	Dir string
}

// NewStore creates a snapshot store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns the snapshot file path for a catalog source name.
func (s *Store) Path(source string) string {
	return filepath.Join(s.Dir, source+".json")
}

// Load returns the persisted collection for source. A missing snapshot file
// yields an empty collection, never an error: the first run starts cold.
func (s *Store) Load(source string) ([]catalog.Book, error) {
	var books []catalog.Book
	found, err := fileutil.ReadJSONFile(s.Path(source), &books)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s snapshot: %w", source, err)
	}
	if !found {
		return nil, nil
	}
	return books, nil
}

// Save replaces the persisted collection for source wholesale. Books are
// written sorted by ISBN, unresolved ones first, so consecutive snapshots
// diff cleanly.
func (s *Store) Save(source string, books []catalog.Book) error {
	sorted := make([]catalog.Book, len(books))
	copy(sorted, books)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ISBN != sorted[j].ISBN {
			return sorted[i].ISBN < sorted[j].ISBN
		}
		return sorted[i].SourceID < sorted[j].SourceID
	})

	if err := fileutil.WriteJSONFile(sorted, s.Path(source)); err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", source, err)
	}
	return nil
}
