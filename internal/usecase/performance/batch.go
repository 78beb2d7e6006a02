package performance

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of one request of a batch
type BatchResult struct {
	Request  Request
	Response *Response
	Err      error
}

// CalculateBatch runs many calculations over a bounded worker pool
// Results are returned in request order. A failing item does not stop its
// siblings; items not yet started when ctx is done report ctx.Err()
func (e *Engine) CalculateBatch(ctx context.Context, reqs []Request) []BatchResult {
	results := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	workers := e.cfg.BatchWorkers
	if workers <= 0 || workers > len(reqs) {
		workers = len(reqs)
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range reqs {
		i := i
		g.Go(func() error {
			results[i].Request = reqs[i]
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Response, results[i].Err = e.Calculate(ctx, reqs[i])
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	e.logger.Info().
		Int("requests", len(reqs)).
		Int("failed", failed).
		Int("workers", workers).
		Msg("Batch calculation finished")

	return results
}
