// Package concurrency runs independent jobs on a bounded worker pool.
package concurrency

import (
	"context"
	"sync"
)

type Options struct {
	// MaxWorkers caps concurrent jobs. Zero or less means DefaultWorkers.
	MaxWorkers int
}

const DefaultWorkers = 4

func DefaultOptions() Options {
	return Options{MaxWorkers: DefaultWorkers}
}

func (o Options) workers(n int) int {
	w := o.MaxWorkers
	if w <= 0 {
		w = DefaultWorkers
	}
	if w > n {
		w = n
	}
	return w
}

type result[R any] struct {
	index int
	value R
	err   error
}

// Map calls fn for every item and returns the values in input order plus
// the per-item errors (nil entries for successes). Items not started before
// ctx is done get ctx.Err().
func Map[T, R any](ctx context.Context, items []T, opts Options, fn func(ctx context.Context, index int, item T) (R, error)) ([]R, []error) {
	values := make([]R, len(items))
	errs := make([]error, len(items))
	if len(items) == 0 {
		return values, errs
	}

	jobs := make(chan int)
	results := make(chan result[R], len(items))

	var wg sync.WaitGroup
	for range opts.workers(len(items)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result[R]{index: i, err: err}
					continue
				}
				v, err := fn(ctx, i, items[i])
				results <- result[R]{index: i, value: v, err: err}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(results)

	for r := range results {
		values[r.index] = r.value
		errs[r.index] = r.err
	}
	return values, errs
}

// ForEach is Map for side-effect-only jobs.
func ForEach[T any](ctx context.Context, items []T, opts Options, fn func(ctx context.Context, index int, item T) error) []error {
	_, errs := Map(ctx, items, opts, func(ctx context.Context, i int, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, i, item)
	})
	return errs
}

// FirstError returns the first non-nil error in input order.
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
