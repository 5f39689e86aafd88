package fetcher

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// maxConcurrency bounds in-flight calls of a single batch.
const maxConcurrency = 8

// fanOut runs fn for every item concurrently and returns the results in
// input order. A nil result marks a dropped unit. Units never return errors,
// so one failure cannot cancel its siblings.
func fanOut[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) *R) []*R {
	results := make([]*R, len(items))

	var g errgroup.Group
	g.SetLimit(maxConcurrency)
	for i, item := range items {
		g.Go(func() error {
			results[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// compact removes dropped units, keeping the order of the rest.
func compact[R any](results []*R) []R {
	out := make([]R, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
