package engine

import (
	"context"
	"fmt"
	"sync"
)

// Range is the half-open index interval [Lo, Hi).
type Range struct {
	Lo, Hi int
}

// Partition splits [0, n) into at most workers contiguous ranges whose sizes
// differ by at most one. It returns nil for n <= 0.
func Partition(n, workers int) []Range {
	if n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	ranges := make([]Range, workers)
	base, extra := n/workers, n%workers
	lo := 0
	for w := range workers {
		size := base
		if w < extra {
			size++
		}
		ranges[w] = Range{Lo: lo, Hi: lo + size}
		lo += size
	}
	return ranges
}

// ParallelRanges partitions [0, n) with Partition and calls fn once per
// range, each on its own goroutine. fn receives its worker index so it can
// keep private scratch or partial results. With a single range fn runs on
// the caller's goroutine.
//
// The first error returned by any fn (or ctx.Err() if the context is done
// before a range starts) is returned after all goroutines have finished.
func ParallelRanges(ctx context.Context, n, workers int, fn func(worker int, r Range) error) error {
	ranges := Partition(n, workers)
	if len(ranges) == 0 {
		return nil
	}

	if len(ranges) == 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(0, ranges[0])
	}

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)

	for w, r := range ranges {
		wg.Add(1)
		go func(worker int, r Range) {
			defer wg.Done()

			err := ctx.Err()
			if err == nil {
				err = fn(worker, r)
			}
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
		}(w, r)
	}
	wg.Wait()

	return firstErr
}

// ParallelFor calls fn(i) for every i in [0, n), spreading contiguous blocks
// of indices over at most workers goroutines. The context is checked before
// every index, so an index is either processed completely or not at all.
func ParallelFor(ctx context.Context, n, workers int, fn func(i int) error) error {
	return ParallelRanges(ctx, n, workers, func(_ int, r Range) error {
		for i := r.Lo; i < r.Hi; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
		return nil
	})
}
