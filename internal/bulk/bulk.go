package bulk

import (
	"context"
	"sync"
	"sync/atomic"
)

// Outcome classifies a settled bulk operation
type Outcome int

const (
	AllSucceeded Outcome = iota
	PartiallyFailed
	AllFailed
)

func (o Outcome) String() string {
	switch o {
	case AllSucceeded:
		return "all_succeeded"
	case PartiallyFailed:
		return "partially_failed"
	default:
		return "all_failed"
	}
}

// Operation represents a bulk operation configuration
type Operation struct {
	// Jobs bounds the number of concurrent calls. 0 runs every item at once.
	Jobs int

	// ContinueOnError keeps dispatching after a failure. When false, items
	// not yet started are skipped and counted as failed with ErrSkipped.
	ContinueOnError bool
}

// Result represents the result of a bulk operation
type Result struct {
	TotalItems int
	Succeeded  int
	Failed     int
	Errors     []ItemError
}

// ItemError represents an error for a specific item
type ItemError struct {
	Item string
	Err  error
}

// ItemFunc is the function to execute for each item
type ItemFunc[T any] func(ctx context.Context, item T) error

// KeyFunc names an item in the result
type KeyFunc[T any] func(item T) string

// Execute runs fn for every item and waits for all of them to settle before
// returning. Completion order does not matter; the result only records which
// items failed.
func Execute[T any](ctx context.Context, op Operation, items []T, key KeyFunc[T], fn ItemFunc[T]) *Result {
	result := &Result{
		TotalItems: len(items),
	}

	if len(items) == 0 {
		return result
	}

	workers := op.Jobs
	if workers <= 0 || workers > len(items) {
		workers = len(items)
	}

	// Create work queue
	workQueue := make(chan T, len(items))
	for _, item := range items {
		workQueue <- item
	}
	close(workQueue)

	var (
		succeeded  int32
		failed     int32
		errorsMux  sync.Mutex
		stopSignal int32 // 0 = continue, 1 = stop
	)

	record := func(item T, err error) {
		atomic.AddInt32(&failed, 1)
		errorsMux.Lock()
		result.Errors = append(result.Errors, ItemError{Item: key(item), Err: err})
		errorsMux.Unlock()
	}

	// Worker pool
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for item := range workQueue {
				if !op.ContinueOnError && atomic.LoadInt32(&stopSignal) == 1 {
					record(item, ErrSkipped)
					continue
				}

				if err := fn(ctx, item); err != nil {
					record(item, err)
					if !op.ContinueOnError {
						atomic.StoreInt32(&stopSignal, 1)
					}
					continue
				}
				atomic.AddInt32(&succeeded, 1)
			}
		}()
	}

	wg.Wait()

	result.Succeeded = int(succeeded)
	result.Failed = int(failed)

	return result
}

// Outcome classifies the result
func (r *Result) Outcome() Outcome {
	if r.Failed == 0 {
		return AllSucceeded
	}
	if r.Succeeded > 0 {
		return PartiallyFailed
	}
	return AllFailed
}

// FailedKeys returns the set of item keys that failed
func (r *Result) FailedKeys() map[string]error {
	failed := make(map[string]error, len(r.Errors))
	for _, e := range r.Errors {
		failed[e.Item] = e.Err
	}
	return failed
}

// FirstError returns the error of an arbitrary failed item, or nil
func (r *Result) FirstError() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0].Err
}

// ExitCode returns the appropriate exit code for the result
func (r *Result) ExitCode() int {
	switch r.Outcome() {
	case AllSucceeded:
		return 0
	case PartiallyFailed:
		return 5
	default:
		return 1
	}
}
