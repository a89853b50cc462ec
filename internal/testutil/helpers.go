// Package testutil provides reusable test helpers and reference
// implementations for the geodsp kernels.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	// Float32Tolerance absorbs last-bit differences between a float32 kernel
	// and a float32 reference (FMA fusion on some targets).
	Float32Tolerance = 1e-5

	// SpectrumTolerance is the relative error accepted for DFT magnitudes.
	SpectrumTolerance = 1e-4

	// StackTolerance applies to stacked means of unit-scale data.
	StackTolerance = 1e-6
)

// Float is the sample type constraint shared by the helpers.
type Float interface {
	~float32 | ~float64
}

// AssertSlicesInDelta verifies that expected and actual have equal length and
// agree elementwise within tolerance. Only the first mismatch is reported.
func AssertSlicesInDelta[F Float](t *testing.T, expected, actual []F, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if math.Abs(float64(expected[i])-float64(actual[i])) > tolerance {
			return assert.Fail(t, "slices differ",
				"index %d: expected %g, actual %g (tolerance %g)", i, expected[i], actual[i], tolerance)
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf[F Float](t *testing.T, s []F, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(float64(v)) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(float64(v), 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllZero verifies that every element is exactly zero.
func AssertAllZero[F Float](t *testing.T, s []F, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v != 0 {
			return assert.Fail(t, "non-zero element", "s[%d]=%g", i, v)
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

// Sine returns n samples of amp·sin(2π·freq·i/sampleRate).
func Sine[F Float](n int, amp, freq, sampleRate float64) []F {
	out := make([]F, n)
	for i := range out {
		out[i] = F(amp * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return out
}

// Noise returns n uniformly distributed samples in [-1, 1) from a seeded
// generator, so tests stay reproducible.
func Noise[F Float](n int, seed uint64) []F {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]F, n)
	for i := range out {
		out[i] = F(2*rng.Float64() - 1)
	}
	return out
}

// Identity returns the coefficients of numSections pass-through sections.
func Identity[F Float](numSections int) []F {
	sos := make([]F, 0, numSections*6)
	for range numSections {
		sos = append(sos, 1, 0, 0, 1, 0, 0)
	}
	return sos
}

// Notch returns one normalized biquad sextuple for a notch at freq with
// quality factor q, using the audio EQ cookbook formulas. It exists only to
// give the tests realistic coefficients.
func Notch(freq, q, sampleRate float64) []float64 {
	w0 := 2 * math.Pi * freq / sampleRate
	sinW, cosW := math.Sincos(w0)
	alpha := sinW / (2 * q)
	a0 := 1 + alpha

	return []float64{
		1 / a0, -2 * cosW / a0, 1 / a0,
		1, -2 * cosW / a0, (1 - alpha) / a0,
	}
}

// ReferenceCascade filters x sample by sample through the sections in sos
// with Direct Form II Transposed, updating state in place. It is the
// straightforward formulation the optimized kernels are checked against.
func ReferenceCascade[F Float](x []F, sos, state []F) []F {
	numSections := len(sos) / 6
	y := make([]F, len(x))
	for i, v := range x {
		for s := range numSections {
			c := sos[s*6 : s*6+6]
			z := state[s*2 : s*2+2]
			out := c[0]*v + z[0]
			z[0] = c[1]*v - c[4]*out + z[1]
			z[1] = c[2]*v - c[5]*out
			v = out
		}
		y[i] = v
	}
	return y
}

// ReferenceMagnitude evaluates one single-frequency DFT magnitude in float64
// with direct sin/cos calls.
func ReferenceMagnitude[F Float](x []F, freq, sampleRate float64) float64 {
	var re, im float64
	for n, v := range x {
		s, c := math.Sincos(2 * math.Pi * freq * float64(n) / sampleRate)
		re += float64(v) * c
		im -= float64(v) * s
	}
	return math.Hypot(re, im) / float64(len(x))
}
