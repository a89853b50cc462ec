package engine

import (
	"context"

	"github.com/tphakala/go-geodsp/internal/simdops"
)

// Cascade filters src into dst through numSections second-order sections
// using the Direct Form II Transposed recurrence:
//
//	y   = b0*x + z0
//	z0' = b1*x - a1*y + z1
//	z1' = b2*x - a2*y
//
// Sections are applied in array order; the output of section s is the input
// of section s+1. sos holds SectionStride coefficients per section and state
// holds StateStride values per section. The state is read at entry and
// written back at exit, so consecutive calls on consecutive chunks equal one
// call on the concatenated data.
//
// dst and src must have equal length and may be the same slice. Lengths of
// sos and state are not checked; the caller validates them.
func Cascade[F simdops.Float](dst, src []F, numSections int, sos, state []F) {
	if len(src) == 0 {
		return
	}
	copy(dst, src)

	for s := range numSections {
		c := sos[s*SectionStride : (s+1)*SectionStride]
		z := state[s*StateStride : (s+1)*StateStride]
		processSection(dst, c[coeffB0], c[coeffB1], c[coeffB2], c[coeffA1], c[coeffA2], z)
	}
}

// processSection runs one biquad over buf in place. Keeping the whole block
// inside one section holds the state in registers; each sample still sees
// exactly the same arithmetic as the sample-by-sample cascade.
func processSection[F simdops.Float](buf []F, b0, b1, b2, a1, a2 F, z []F) {
	z0, z1 := z[0], z[1]
	for i, x := range buf {
		y := b0*x + z0
		z0 = b1*x - a1*y + z1
		z1 = b2*x - a2*y
		buf[i] = y
	}
	z[0], z[1] = z0, z1
}

// CascadeMultichannel applies Cascade independently to each of numChannels
// channel-major rows of src, writing the matching row of dst. Channel ch uses
// the state slice state[ch*2*numSections : (ch+1)*2*numSections]. Channels are
// distributed over at most workers goroutines; no two goroutines touch the
// same row or state slice.
//
// If ctx is cancelled, channels already started run to completion and the
// remaining channels are left untouched.
func CascadeMultichannel[F simdops.Float](
	ctx context.Context,
	dst, src []F,
	numChannels, numSamples, numSections int,
	sos, state []F,
	workers int,
) error {
	stateLen := numSections * StateStride
	coeffs := sos[:numSections*SectionStride]

	return ParallelFor(ctx, numChannels, workers, func(ch int) error {
		lo, hi := ch*numSamples, (ch+1)*numSamples
		Cascade(dst[lo:hi], src[lo:hi], numSections, coeffs, state[ch*stateLen:(ch+1)*stateLen])
		return nil
	})
}
