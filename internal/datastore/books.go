package datastore

import (
	"strings"

	"shelfsync/internal/catalog"
)

// BooksTableSchema holds one row per crawled book, keyed by catalog and
// source id. Shelves and lists are flattened for querying.
const BooksTableSchema = `
CREATE TABLE IF NOT EXISTS books (
	catalog TEXT NOT NULL,
	source_id TEXT NOT NULL,
	isbn TEXT,
	title TEXT,
	authors TEXT,
	url TEXT,
	shelves TEXT,
	status TEXT,
	PRIMARY KEY (catalog, source_id)
)`

// ExportBooks replaces one catalog's rows in the books table with the given
// snapshot. Other catalogs' rows are untouched.
func ExportBooks(dbPath, catalogName string, books []catalog.Book) error {
	store := NewSQLiteStore(dbPath)
	if err := store.Connect(); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateTable(BooksTableSchema); err != nil {
		return err
	}
	if err := store.DeleteWhere("books", "catalog", catalogName); err != nil {
		return err
	}

	records := make([]map[string]any, 0, len(books))
	for _, book := range books {
		records = append(records, map[string]any{
			"catalog":   catalogName,
			"source_id": book.SourceID,
			"isbn":      book.ISBN,
			"title":     book.Title,
			"authors":   strings.Join(book.Authors, ", "),
			"url":       book.URL,
			"shelves":   strings.Join(book.Shelves, ", "),
			"status":    book.Status,
		})
	}

	return store.BatchInsert("books", records)
}
