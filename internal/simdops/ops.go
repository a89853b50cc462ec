// Package simdops provides the SIMD operations and float32/float64
// conversions shared by the kernels. Vector work is delegated to
// github.com/tphakala/simd.
package simdops

import (
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops provides SIMD-accelerated operations for type F.
type Ops[F Float] struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []F) F

	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []F, s F)
}

var ops64 = Ops[float64]{
	DotProductUnsafe: f64.DotProductUnsafe,
	Scale:            f64.Scale,
}

// Float64Ops returns the float64 SIMD operations. Kernels accumulate in
// float64 whatever their sample type, so this is the only instance.
func Float64Ops() *Ops[float64] {
	return &ops64
}

// Widen copies src into dst converting each element to float64.
// dst must be at least len(src) long.
func Widen[F Float](dst []float64, src []F) {
	dst = dst[:len(src)]
	for i, v := range src {
		dst[i] = float64(v)
	}
}

// Narrow copies src into dst converting each element to F.
// dst must be at least len(src) long.
func Narrow[F Float](dst []F, src []float64) {
	dst = dst[:len(src)]
	for i, v := range src {
		dst[i] = F(v)
	}
}
