package geodsp

import (
	"fmt"
	"math"

	"github.com/tphakala/go-geodsp/internal/geophys"
)

// ApparentResistivity converts electric and magnetic field magnitudes at the
// given frequencies into Cagniard apparent resistivity:
//
//	rho = 0.2 · (1/f) · (E / (H + 1e-9))²
//
// magE, magH, freqs and dst must have the same length. Every frequency must
// be positive and finite.
func ApparentResistivity(magE, magH, freqs, dst []float32) error {
	if err := validateFrequencies(freqs, false); err != nil {
		return err
	}
	n := len(freqs)
	if len(magE) != n || len(magH) != n {
		return fmt.Errorf("%w: %d electric and %d magnetic magnitudes for %d frequencies",
			ErrDimensionMismatch, len(magE), len(magH), n)
	}
	if err := requireLen(len(dst), n, "dst"); err != nil {
		return err
	}

	geophys.ApparentResistivity(dst, magE, magH, freqs)
	return nil
}

// InterpolateGrid resamples the rows×cols row-major grid src into the
// outRows×outCols grid dst by bilinear interpolation. The four corners of
// the output coincide with those of the input.
func InterpolateGrid(src []float32, rows, cols int, dst []float32, outRows, outCols int) error {
	for _, d := range []struct {
		v    int
		name string
	}{{rows, "rows"}, {cols, "cols"}, {outRows, "outRows"}, {outCols, "outCols"}} {
		if err := requirePositive(d.v, d.name); err != nil {
			return err
		}
	}
	inLen, err := requireSize(rows, cols, "input grid")
	if err != nil {
		return err
	}
	outLen, err := requireSize(outRows, outCols, "output grid")
	if err != nil {
		return err
	}
	if err := requireLen(len(src), inLen, "src"); err != nil {
		return err
	}
	if err := requireLen(len(dst), outLen, "dst"); err != nil {
		return err
	}

	return geophys.Bilinear(dst, outRows, outCols, src, rows, cols)
}

// LogSpacedFrequencies returns n frequencies evenly spaced on a logarithmic
// axis from lo to hi inclusive, the usual sampling of a sounding curve.
func LogSpacedFrequencies(lo, hi float64, n int) ([]float32, error) {
	if err := requirePositive(n, "n"); err != nil {
		return nil, err
	}
	if !(lo > 0) || math.IsInf(hi, 0) || !(hi >= lo) {
		return nil, fmt.Errorf("%w: frequency range [%v, %v]", ErrInvalidParameter, lo, hi)
	}

	span := geophys.LogSpan(lo, hi, n)
	out := make([]float32, n)
	for i, f := range span {
		out[i] = float32(f)
	}
	return out, nil
}
