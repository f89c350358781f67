package utils

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"sync"
)

// DefaultConcurrencyEnv overrides the default fan-out width for concurrent
// executors when set to a positive integer.
const DefaultConcurrencyEnv = "COGITO_MAX_CONCURRENCY"

// DefaultConcurrency returns the fan-out width used when a caller passes a
// non-positive limit. It honors DefaultConcurrencyEnv and falls back to the
// CPU count.
func DefaultConcurrency() int {
	if v := os.Getenv(DefaultConcurrencyEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

// ConcurrentExecutor runs functions concurrently under a semaphore so that
// at most maxConcurrency of them execute at once.
type ConcurrentExecutor struct {
	semaphore chan struct{}
}

// NewConcurrentExecutor creates an executor with the given concurrency
// limit. A non-positive limit uses DefaultConcurrency.
func NewConcurrentExecutor(maxConcurrency int) *ConcurrentExecutor {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultConcurrency()
	}
	return &ConcurrentExecutor{semaphore: make(chan struct{}, maxConcurrency)}
}

// Execute runs the functions concurrently and returns one error slot per
// function, index-aligned. Panics are recovered into PanicError values.
func (e *ConcurrentExecutor) Execute(ctx context.Context, functions ...func() error) []error {
	if len(functions) == 0 {
		return nil
	}

	results := make([]error, len(functions))
	var wg sync.WaitGroup

	for i, fn := range functions {
		wg.Add(1)
		go func(index int, function func() error) {
			defer wg.Done()
			defer RecoverWithCallback(func(err error) {
				results[index] = err
			})

			select {
			case e.semaphore <- struct{}{}:
				defer func() { <-e.semaphore }()
			case <-ctx.Done():
				results[index] = ctx.Err()
				return
			}

			results[index] = function()
		}(i, fn)
	}

	wg.Wait()
	return results
}

// ExecuteWithResults runs the functions concurrently and returns
// index-aligned results and errors. Panics are recovered into PanicError
// values in the error slice.
func ExecuteWithResults[T any](ctx context.Context, maxConcurrency int, functions ...func() (T, error)) ([]T, []error) {
	if len(functions) == 0 {
		return nil, nil
	}

	executor := NewConcurrentExecutor(maxConcurrency)
	results := make([]T, len(functions))
	errs := make([]error, len(functions))
	var wg sync.WaitGroup

	for i, fn := range functions {
		wg.Add(1)
		go func(index int, function func() (T, error)) {
			defer wg.Done()
			defer RecoverWithCallback(func(err error) {
				errs[index] = err
			})

			select {
			case executor.semaphore <- struct{}{}:
				defer func() { <-executor.semaphore }()
			case <-ctx.Done():
				errs[index] = ctx.Err()
				return
			}

			results[index], errs[index] = function()
		}(i, fn)
	}

	wg.Wait()
	return results, errs
}
