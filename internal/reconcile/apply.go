package reconcile

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"shelfsync/internal/catalog"
	sherrors "shelfsync/internal/errors"
)

// Mutator applies one intent against the sink catalog. Update replaces an
// existing association's status and lists; Create resolves the identity key
// by search and adds the association, returning a NotFoundError on a search
// miss.
type Mutator interface {
	Update(ctx context.Context, book catalog.Book) error
	Create(ctx context.Context, isbnKey, status string) error
}

// Failure records one item whose mutation failed with a real error.
type Failure struct {
	ISBN string
	Op   string
	Err  string
}

// ApplyReport aggregates the outcome of executing a plan. One item's
// failure never aborts its siblings.
type ApplyReport struct {
	Updated    int
	Created    int
	Unresolved []string
	Failures   []Failure
}

// Apply executes every intent in the plan concurrently, bounded by the
// shared connection pool. Results are aggregated single-threaded after all
// goroutines finish.
func Apply(ctx context.Context, plan Plan, mutator Mutator) ApplyReport {
	type outcome struct {
		op         string
		isbn       string
		unresolved bool
		err        error
	}

	results := make(chan outcome, len(plan.Updates)+len(plan.Creates))
	var wg sync.WaitGroup

	for _, intent := range plan.Updates {
		wg.Add(1)
		go func(intent UpdateIntent) {
			defer wg.Done()
			results <- outcome{op: "update", isbn: intent.ISBN, err: mutator.Update(ctx, intent.Book)}
		}(intent)
	}

	for _, intent := range plan.Creates {
		wg.Add(1)
		go func(intent CreateIntent) {
			defer wg.Done()
			err := mutator.Create(ctx, intent.ISBN, intent.Status)
			if sherrors.IsNotFound(err) {
				results <- outcome{op: "create", isbn: intent.ISBN, unresolved: true}
				return
			}
			results <- outcome{op: "create", isbn: intent.ISBN, err: err}
		}(intent)
	}

	wg.Wait()
	close(results)

	var report ApplyReport
	for res := range results {
		switch {
		case res.unresolved:
			report.Unresolved = append(report.Unresolved, res.isbn)
		case res.err != nil:
			slog.Warn("Mutation failed", "op", res.op, "isbn", res.isbn, "error", res.err)
			report.Failures = append(report.Failures, Failure{ISBN: res.isbn, Op: res.op, Err: res.err.Error()})
		case res.op == "update":
			report.Updated++
		default:
			report.Created++
		}
	}

	sort.Strings(report.Unresolved)
	return report
}
