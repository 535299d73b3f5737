// Package batch fans a set of card images out over a bounded worker pool
// and aggregates the per-image outcomes into a run report.
package batch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/cardexhq/cardex/internal/cards"
)

// DriverFunc processes one image and reports its outcome. Implementations
// must not panic; the pool still contains a panic as a failed outcome.
type DriverFunc func(ctx context.Context, ref cards.ImageRef) cards.Outcome

// Options tune a batch run.
type Options struct {
	// Concurrency is the number of images processed in parallel.
	// Must be at least 1.
	Concurrency int

	// RateLimit caps driver invocations per second across all workers.
	// Zero means unlimited.
	RateLimit rate.Limit
}

// ContractError reports a caller mistake, as opposed to a runtime failure.
type ContractError struct {
	Message string
}

func (e *ContractError) Error() string {
	return e.Message
}

// Run processes every image through the driver with bounded parallelism.
// The returned slice is index-aligned with the input: outcome i belongs to
// image i regardless of completion order. One image failing never affects
// another; Run itself only fails on a contract violation.
func Run(ctx context.Context, images []cards.ImageRef, driver DriverFunc, opts Options) ([]cards.Outcome, error) {
	if opts.Concurrency < 1 {
		return nil, &ContractError{Message: fmt.Sprintf("concurrency must be at least 1, got %d", opts.Concurrency)}
	}
	if len(images) == 0 {
		return []cards.Outcome{}, nil
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(opts.RateLimit, 1)
	}

	type job struct {
		idx int
		ref cards.ImageRef
	}

	out := make([]cards.Outcome, len(images))
	jobs := make(chan job)

	workers := opts.Concurrency
	if workers > len(images) {
		workers = len(images)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						out[j.idx] = cards.Outcome{FileName: j.ref.FileName, FileID: j.ref.FileID, Err: err}
						continue
					}
				}
				out[j.idx] = runOne(ctx, driver, j.ref)
			}
		}()
	}

feed:
	for i, ref := range images {
		select {
		case jobs <- job{idx: i, ref: ref}:
		case <-ctx.Done():
			// Mark everything not yet dispatched as canceled.
			for k := i; k < len(images); k++ {
				out[k] = cards.Outcome{FileName: images[k].FileName, FileID: images[k].FileID, Err: ctx.Err()}
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return out, nil
}

// runOne invokes the driver, converting a panic into a failed outcome so
// one bad image cannot take down the whole batch.
func runOne(ctx context.Context, driver DriverFunc, ref cards.ImageRef) (outcome cards.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = cards.Outcome{
				FileName: ref.FileName,
				FileID:   ref.FileID,
				Err:      fmt.Errorf("panic processing %s: %v", ref.FileName, r),
			}
		}
	}()
	return driver(ctx, ref)
}
