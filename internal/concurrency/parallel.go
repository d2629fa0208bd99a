package concurrency

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ParallelOptions configura el procesamiento paralelo.
type ParallelOptions struct {
	// MaxWorkers is the number of items in flight at once.
	MaxWorkers int
}

func DefaultOptions() ParallelOptions {
	return ParallelOptions{MaxWorkers: 4}
}

func (o ParallelOptions) workers(n int) int {
	w := o.MaxWorkers
	if w <= 0 {
		w = DefaultOptions().MaxWorkers
	}
	if w > n {
		w = n
	}
	return w
}

// ItemError ties a failure to the position of its input item.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string { return fmt.Sprintf("item %d: %v", e.Index, e.Err) }

func (e *ItemError) Unwrap() error { return e.Err }

// ProcessParallel runs itemFunc over items with a bounded pool. Results keep
// input order. Errors are *ItemError sorted by index; items never started
// because ctx ended report ctx.Err().
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	jobs := make(chan int)
	var (
		mu   sync.Mutex
		errs []*ItemError
		wg   sync.WaitGroup
	)
	fail := func(i int, err error) {
		mu.Lock()
		errs = append(errs, &ItemError{Index: i, Err: err})
		mu.Unlock()
	}

	for w := 0; w < opts.workers(len(items)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					fail(i, err)
					continue
				}
				r, err := itemFunc(ctx, i, items[i])
				if err != nil {
					fail(i, err)
					continue
				}
				results[i] = r
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if len(errs) == 0 {
		return results, nil
	}
	sort.Slice(errs, func(a, b int) bool { return errs[a].Index < errs[b].Index })
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return results, out
}

// ForEach es ProcessParallel sin resultados, solo efectos.
func ForEach[T any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) error,
) []error {
	_, errs := ProcessParallel(ctx, items, opts, func(ctx context.Context, i int, item T) (struct{}, error) {
		return struct{}{}, itemFunc(ctx, i, item)
	})
	return errs
}
