package catalog

// Collision records two books within one catalog that resolved to the same
// ISBN, typically different editions. The join key is assumed unique; a
// collision is surfaced, never silently merged.
type Collision struct {
	ISBN            string
	KeptSourceID    string
	DroppedSourceID string
}

// IndexReport describes what IndexByISBN left out of the index.
type IndexReport struct {
	// Excluded counts books without a resolved ISBN; they cannot take part
	// in reconciliation.
	Excluded int
	// Collisions lists duplicate-ISBN pairs. The first book encountered
	// stays in the index.
	Collisions []Collision
}

// IndexByISBN builds the reconciliation join index for one catalog.
// Books without an ISBN are excluded and counted. When two books share an
// ISBN the first one is kept and the pair is reported as a collision.
func IndexByISBN(books []Book) (map[string]Book, IndexReport) {
	index := make(map[string]Book, len(books))
	var report IndexReport

	for _, book := range books {
		if !book.HasISBN() {
			report.Excluded++
			continue
		}
		if kept, ok := index[book.ISBN]; ok {
			report.Collisions = append(report.Collisions, Collision{
				ISBN:            book.ISBN,
				KeptSourceID:    kept.SourceID,
				DroppedSourceID: book.SourceID,
			})
			continue
		}
		index[book.ISBN] = book
	}

	return index, report
}
