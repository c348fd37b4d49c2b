package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of concurrent workers
const DefaultConcurrency = 5

// BulkResult represents the outcome of a single bulk operation
type BulkResult[T any] struct {
	ID    string
	Data  T
	Error error
}

// runBulkOperation runs operation once per id with bounded parallelism.
// Results come back in input order; ids skipped because ctx ended carry
// ctx.Err(). Progress is written to progress when it is non-nil.
func runBulkOperation[T any](
	ctx context.Context,
	ids []string,
	concurrency int64,
	progress io.Writer,
	operation func(ctx context.Context, id string) (T, error),
) []BulkResult[T] {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	sem := semaphore.NewWeighted(concurrency)
	results := make([]BulkResult[T], len(ids))
	total := len(ids)
	var (
		done int64
		mu   sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		results[i].ID = id
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i].Error = err
				return nil
			}
			defer sem.Release(1)

			if err := gctx.Err(); err != nil {
				results[i].Error = err
				return nil
			}
			results[i].Data, results[i].Error = operation(gctx, id)

			if progress != nil {
				current := atomic.AddInt64(&done, 1)
				mu.Lock()
				_, _ = fmt.Fprintf(progress, "\rProcessed %d/%d", current, total)
				mu.Unlock()
			}
			// individual failures never cancel the rest
			return nil
		})
	}
	_ = g.Wait()

	if progress != nil && total > 0 {
		_, _ = fmt.Fprintln(progress)
	}
	return results
}

// countResults returns success and failure counts from bulk results
func countResults[T any](results []BulkResult[T]) (success, failure int) {
	for _, r := range results {
		if r.Error == nil {
			success++
		} else {
			failure++
		}
	}
	return
}
