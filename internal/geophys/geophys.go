// Package geophys turns spectral magnitudes into magnetotelluric sounding
// quantities and resamples the resulting sections for display.
//
// Functions here assume validated input: matching slice lengths, positive
// frequencies and grid dimensions. The root package performs the checks.
package geophys

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

const (
	// cagniardFactor is the practical-unit constant of the Cagniard relation
	// rho = 0.2 T |E/H|² (E in mV/km, H in nT, rho in ohm·m).
	cagniardFactor = 0.2

	// impedanceEpsilon keeps E/H finite when the magnetic channel is silent.
	impedanceEpsilon = 1e-9
)

// ApparentResistivity computes the Cagniard apparent resistivity for each
// frequency: dst[i] = 0.2 · (1/freqs[i]) · (magE[i] / (magH[i] + 1e-9))².
func ApparentResistivity(dst, magE, magH, freqs []float32) {
	for i := range dst {
		period := 1 / float64(freqs[i])
		z := float64(magE[i]) / (float64(magH[i]) + impedanceEpsilon)
		dst[i] = float32(cagniardFactor * period * z * z)
	}
}

// LogSpan returns n frequencies spaced evenly in log between lo and hi,
// both included. n must be at least 1 and 0 < lo <= hi.
func LogSpan(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	return floats.LogSpan(make([]float64, n), lo, hi)
}

// Bilinear resamples the rows×cols row-major grid src into the
// outRows×outCols grid dst with corner-aligned bilinear interpolation:
// output corners coincide with input corners. It works as two separable
// linear passes, along columns first and then along rows.
func Bilinear(dst []float32, outRows, outCols int, src []float32, rows, cols int) error {
	colAxis := axis(cols)
	outColPos := positions(cols, outCols)

	// Pass 1: every input row resampled to outCols points.
	tmp := make([]float64, rows*outCols)
	line := make([]float64, max(rows, cols))
	for r := range rows {
		for c := range cols {
			line[c] = float64(src[r*cols+c])
		}
		out := tmp[r*outCols : (r+1)*outCols]
		if err := resampleLine(out, colAxis, line[:cols], outColPos); err != nil {
			return fmt.Errorf("row %d: %w", r, err)
		}
	}

	// Pass 2: every intermediate column resampled to outRows points.
	rowAxis := axis(rows)
	outRowPos := positions(rows, outRows)
	col := make([]float64, outRows)
	for c := range outCols {
		for r := range rows {
			line[r] = tmp[r*outCols+c]
		}
		if err := resampleLine(col, rowAxis, line[:rows], outRowPos); err != nil {
			return fmt.Errorf("column %d: %w", c, err)
		}
		for r, v := range col {
			dst[r*outCols+c] = float32(v)
		}
	}
	return nil
}

// resampleLine evaluates the piecewise-linear curve through (xs, ys) at
// every position. A single-sample line is held constant.
func resampleLine(dst, xs, ys, at []float64) error {
	if len(ys) == 1 {
		for i := range dst {
			dst[i] = ys[0]
		}
		return nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return err
	}
	for i, x := range at {
		dst[i] = pl.Predict(x)
	}
	return nil
}

// axis returns the input sample positions 0, 1, ..., n-1.
func axis(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

// positions maps each of m output samples onto the input axis of n samples
// so that the first and last samples coincide.
func positions(n, m int) []float64 {
	at := make([]float64, m)
	if m == 1 {
		return at
	}
	step := float64(n-1) / float64(m-1)
	for i := range at {
		at[i] = float64(i) * step
	}
	// Pin the end exactly; i*step may round just past n-1.
	at[m-1] = float64(n - 1)
	return at
}
