// Package reconcile computes and applies the mutations that make the sink
// catalog consistent with the source catalog's shelves. Planning is pure so
// it can be tested (and dry-run) without any network dependency; applying
// the resulting intents is a separate step.
package reconcile

import (
	"sort"

	"shelfsync/internal/catalog"
)

// UpdateIntent is one batched update for a book present in both catalogs:
// the sink book with the desired status and list memberships already applied.
type UpdateIntent struct {
	ISBN string
	Book catalog.Book
}

// CreateIntent is one book present in the source but missing from the sink.
type CreateIntent struct {
	ISBN   string
	Status string
	Title  string
}

// Plan is the full set of intents for one run, plus planning diagnostics.
type Plan struct {
	Updates []UpdateIntent
	Creates []CreateIntent

	Shared        int
	MissingInSink int
	// UnknownShelves lists source shelves with no mapping entry, each once.
	UnknownShelves []string
}

// statusFor returns the first mapped status among the book's shelves,
// honoring shelf order, or "" when none maps.
func statusFor(book catalog.Book, mapping catalog.Mapping) string {
	for _, shelf := range book.Shelves {
		if status, ok := mapping.Status(shelf); ok {
			return status
		}
	}
	return ""
}

// BuildPlan partitions the two identity-keyed collections and derives the
// minimal intents. The sink's own memberships are never removed, only added
// to. Keys are visited in sorted order so plans are deterministic.
func BuildPlan(source, sink map[string]catalog.Book, mapping catalog.Mapping) Plan {
	var plan Plan
	unknown := make(map[string]bool)

	keys := make([]string, 0, len(source))
	for key := range source {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		srcBook := source[key]
		sinkBook, shared := sink[key]

		if !shared {
			plan.MissingInSink++
			plan.Creates = append(plan.Creates, CreateIntent{
				ISBN:   key,
				Status: statusFor(srcBook, mapping),
				Title:  srcBook.Title,
			})
			continue
		}

		plan.Shared++

		changed := false
		desired := sinkBook

		if status := statusFor(srcBook, mapping); status != "" && status != sinkBook.Status {
			desired.Status = status
			changed = true
		}

		for _, shelf := range srcBook.Shelves {
			if _, ok := mapping[shelf]; !ok {
				unknown[shelf] = true
				continue
			}
			listID, ok := mapping.ListID(shelf)
			if !ok {
				continue
			}
			if !containsInt(desired.Lists, listID) {
				desired.Lists = append(append([]int(nil), desired.Lists...), listID)
				changed = true
			}
		}

		if changed {
			plan.Updates = append(plan.Updates, UpdateIntent{ISBN: key, Book: desired})
		}
	}

	for shelf := range unknown {
		plan.UnknownShelves = append(plan.UnknownShelves, shelf)
	}
	sort.Strings(plan.UnknownShelves)

	return plan
}

func containsInt(values []int, v int) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
