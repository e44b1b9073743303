package catalog

// Book represents one tracked book in one external catalog.
//
// SourceID is the catalog's own identifier and is unique within a catalog
// snapshot. ISBN is the normalized cross-catalog identity key; "" means the
// identity has not been resolved (or the catalog page carried a placeholder).
// The numeric identifiers and Lists are only populated for NaKanapie books;
// URL, CoverURL and Shelves only for LubimyCzytać books.
type Book struct {
	SourceID string   `json:"source_id"`
	ISBN     string   `json:"isbn,omitempty"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors,omitempty"`
	URL      string   `json:"url,omitempty"`
	CoverURL string   `json:"cover_url,omitempty"`

	// Membership tags (shelf names) and reading status. Their vocabularies
	// are catalog-specific; translation between them goes through a Mapping.
	Shelves []string `json:"shelves,omitempty"`
	Status  string   `json:"status,omitempty"`

	// Sink-side identifiers used by mutation calls.
	ID       int   `json:"id,omitempty"`
	BundleID int   `json:"bundle_id,omitempty"`
	BookID   int   `json:"book_id,omitempty"`
	Lists    []int `json:"lists,omitempty"`
}

// HasISBN reports whether the book's identity key has been resolved.
func (b Book) HasISBN() bool {
	return b.ISBN != ""
}
