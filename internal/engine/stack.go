package engine

import (
	"context"

	"github.com/tphakala/go-geodsp/internal/simdops"
)

// Stack writes the elementwise mean of numSegments consecutive segments of
// segmentSize samples into dst. Sums are accumulated in float64.
//
// The work is a parallel reduction without shared writes:
//   - when every worker gets at least minStackChunk outputs, workers own
//     disjoint output index ranges and sum all segments for their range;
//   - otherwise workers own disjoint runs of segments and fill private
//     partial-sum vectors that are combined after all workers finish.
//
// dst is written only after the reduction succeeds, so a cancelled call
// leaves it untouched.
func Stack[F simdops.Float](ctx context.Context, dst, segments []F, numSegments, segmentSize, workers int) error {
	acc := make([]float64, segmentSize)

	var err error
	if workers > 1 && segmentSize/workers < minStackChunk && numSegments > 1 {
		err = stackBySegment(ctx, acc, segments, numSegments, segmentSize, workers)
	} else {
		err = stackByIndex(ctx, acc, segments, numSegments, segmentSize, workers)
	}
	if err != nil {
		return err
	}

	ops := simdops.Float64Ops()
	ops.Scale(acc, acc, 1.0/float64(numSegments))
	simdops.Narrow(dst[:segmentSize], acc)
	return nil
}

func stackByIndex[F simdops.Float](ctx context.Context, acc []float64, segments []F, numSegments, segmentSize, workers int) error {
	return ParallelRanges(ctx, segmentSize, workers, func(_ int, r Range) error {
		part := acc[r.Lo:r.Hi]
		for s := range numSegments {
			if s%stackCancelInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			base := s * segmentSize
			addInto(part, segments[base+r.Lo:base+r.Hi])
		}
		return nil
	})
}

func stackBySegment[F simdops.Float](ctx context.Context, acc []float64, segments []F, numSegments, segmentSize, workers int) error {
	partials := make([][]float64, len(Partition(numSegments, workers)))

	err := ParallelRanges(ctx, numSegments, workers, func(worker int, r Range) error {
		part := make([]float64, segmentSize)
		for s := r.Lo; s < r.Hi; s++ {
			if (s-r.Lo)%stackCancelInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			addInto(part, segments[s*segmentSize:(s+1)*segmentSize])
		}
		partials[worker] = part
		return nil
	})
	if err != nil {
		return err
	}

	// Combine in worker order so the result is deterministic.
	for _, part := range partials {
		for i, v := range part {
			acc[i] += v
		}
	}
	return nil
}

func addInto[F simdops.Float](acc []float64, seg []F) {
	acc = acc[:len(seg)]
	for i, v := range seg {
		acc[i] += float64(v)
	}
}
