package utils

import (
	"context"
	"sync"
)

// ParallelForEach executes a function for each item in parallel.
// The returned slice holds the error of each item at its index. Items not
// started because ctx was cancelled report ctx.Err().
func ParallelForEach[T any](ctx context.Context, items []T, workers int, fn func(context.Context, T) error) []error {
	_, errs := ParallelMap(ctx, items, workers, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	})
	return errs
}

// ParallelMap applies fn to every item with at most workers goroutines and
// returns results and errors in input order.
func ParallelMap[T, R any](ctx context.Context, items []T, workers int, fn func(context.Context, T) (R, error)) ([]R, []error) {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]R, len(items))
	errors := make([]error, len(items))
	started := make([]bool, len(items))
	taskChan := make(chan int, len(items))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-taskChan:
					if !ok || ctx.Err() != nil {
						return
					}
					mu.Lock()
					started[idx] = true
					mu.Unlock()

					result, err := fn(ctx, items[idx])

					mu.Lock()
					results[idx] = result
					errors[idx] = err
					mu.Unlock()
				}
			}
		}()
	}

	for i := range items {
		if ctx.Err() != nil {
			break
		}
		taskChan <- i
	}

	close(taskChan)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		for i := range items {
			if !started[i] {
				errors[i] = err
			}
		}
	}

	return results, errors
}

// FirstError returns the first non-nil error from a slice of errors
func FirstError(errors []error) error {
	for _, err := range errors {
		if err != nil {
			return err
		}
	}
	return nil
}

// CollectErrors collects all non-nil errors from a slice
func CollectErrors(errors []error) []error {
	var result []error
	for _, err := range errors {
		if err != nil {
			result = append(result, err)
		}
	}
	return result
}
