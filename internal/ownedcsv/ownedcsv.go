// Package ownedcsv imports an ISBN column from a CSV export and makes sure
// every listed book sits on the owned list in the sink catalog.
package ownedcsv

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"shelfsync/internal/catalog"
	"shelfsync/internal/csvutil"
	sherrors "shelfsync/internal/errors"
	"shelfsync/internal/isbn"
	"shelfsync/internal/reconcile"
)

// Options configures an owned-list import.
type Options struct {
	// OwnListID is the sink list every imported ISBN must be a member of.
	OwnListID int
	// DefaultStatus is used when a book has to be created in the sink.
	DefaultStatus string
}

// Result summarizes one owned-list import.
type Result struct {
	Updated      int
	Created      int
	AlreadyOwned int
	Skipped      int
	Unresolved   []string
	Failures     []reconcile.Failure
}

// ReadISBNs extracts the ISBN column from a CSV file. The column is located
// by header name, case-insensitively, so exports from different tools work
// without remapping. Rows with an empty ISBN cell are dropped.
func ReadISBNs(path string) ([]string, error) {
	column := -1
	raw, err := csvutil.ProcessCSV(path, func(record []string) (string, error) {
		if column >= len(record) {
			return "", nil
		}
		return strings.TrimSpace(record[column]), nil
	}, csvutil.ProcessorOptions{
		SkipInvalid: true,
		Header: func(header []string) error {
			for i, name := range header {
				if strings.Contains(strings.ToLower(name), "isbn") {
					column = i
					return nil
				}
			}
			return fmt.Errorf("no ISBN column in header %v", header)
		},
	})
	if err != nil {
		return nil, err
	}

	var isbns []string
	for _, value := range raw {
		if value != "" {
			isbns = append(isbns, value)
		}
	}
	return isbns, nil
}

// Ensure puts every ISBN on the owned list. Books already in the sink get a
// list-membership update; unknown ISBNs are created with the default status.
// Items are processed concurrently and one item's failure never aborts the
// rest.
func Ensure(ctx context.Context, isbns []string, sink map[string]catalog.Book, mutator reconcile.Mutator, opts Options) Result {
	type outcome struct {
		isbn       string
		op         string
		owned      bool
		skipped    bool
		unresolved bool
		err        error
	}

	results := make(chan outcome, len(isbns))
	var wg sync.WaitGroup

	seen := make(map[string]bool, len(isbns))
	for _, raw := range isbns {
		key := isbn.Key(raw)
		if key == "" || seen[key] {
			results <- outcome{isbn: raw, skipped: true}
			continue
		}
		seen[key] = true

		book, exists := sink[key]
		if exists && containsInt(book.Lists, opts.OwnListID) {
			results <- outcome{isbn: key, owned: true}
			continue
		}

		wg.Add(1)
		go func(key string, book catalog.Book, exists bool) {
			defer wg.Done()
			if exists {
				desired := book
				desired.Lists = append(append([]int{}, book.Lists...), opts.OwnListID)
				results <- outcome{isbn: key, op: "update", err: mutator.Update(ctx, desired)}
				return
			}
			err := mutator.Create(ctx, key, opts.DefaultStatus)
			if sherrors.IsNotFound(err) {
				results <- outcome{isbn: key, op: "create", unresolved: true}
				return
			}
			results <- outcome{isbn: key, op: "create", err: err}
		}(key, book, exists)
	}

	wg.Wait()
	close(results)

	var result Result
	for res := range results {
		switch {
		case res.skipped:
			result.Skipped++
		case res.owned:
			result.AlreadyOwned++
		case res.unresolved:
			result.Unresolved = append(result.Unresolved, res.isbn)
		case res.err != nil:
			slog.Warn("Owned-list mutation failed", "op", res.op, "isbn", res.isbn, "error", res.err)
			result.Failures = append(result.Failures, reconcile.Failure{ISBN: res.isbn, Op: res.op, Err: res.err.Error()})
		case res.op == "update":
			result.Updated++
		default:
			result.Created++
		}
	}

	sort.Strings(result.Unresolved)
	return result
}

// Log writes the import summary.
func (r Result) Log() {
	slog.Info("Owned-list import finished",
		"updated", r.Updated,
		"created", r.Created,
		"already_owned", r.AlreadyOwned,
		"skipped", r.Skipped)
	if len(r.Unresolved) > 0 {
		slog.Warn("Books not found in sink catalog", "isbns", r.Unresolved)
	}
	for _, failure := range r.Failures {
		slog.Warn("Mutation failed", "op", failure.Op, "isbn", failure.ISBN, "error", failure.Err)
	}
}

func containsInt(values []int, want int) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
