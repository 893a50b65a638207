package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to each element of items in parallel, preserving order.
// The workers parameter caps the number of goroutines; values <= 0 mean no limit.
// It returns the first error encountered, and ctx passed to fn is cancelled once any call fails.
func Map[T any, R any](ctx context.Context, items []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	errGroup, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		errGroup.SetLimit(workers)
	}

	out := make([]R, len(items))
	for idx, value := range items {
		errGroup.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := fn(ctx, value)
			if err != nil {
				return err
			}
			out[idx] = result
			return nil
		})
	}

	if err := errGroup.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ForEach runs action for each element of items in parallel and waits for all of them.
// It returns the first error encountered.
func ForEach[T any](ctx context.Context, items []T, workers int, action func(context.Context, T) error) error {
	_, err := Map(ctx, items, workers, func(ctx context.Context, value T) (struct{}, error) {
		return struct{}{}, action(ctx, value)
	})
	return err
}
