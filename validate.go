package geodsp

import (
	"fmt"
	"math"
	"math/bits"
)

// product returns a*b for non-negative a and b, reporting overflow.
func product(a, b int) (int, bool) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

// requireSize returns the size of a rows×cols buffer, failing with
// ErrInvalidParameter when the product does not fit in an int.
func requireSize(rows, cols int, what string) (int, error) {
	n, ok := product(rows, cols)
	if !ok {
		return 0, fmt.Errorf("%w: %s size %d x %d overflows", ErrInvalidParameter, what, rows, cols)
	}
	return n, nil
}

func requirePositive(v int, name string) error {
	if v < 1 {
		return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalidParameter, name, v)
	}
	return nil
}

// requireLen checks that a caller buffer holds exactly the declared number
// of elements.
func requireLen(got, want int, name string) error {
	if got != want {
		return fmt.Errorf("%w: %s has %d elements, want %d", ErrDimensionMismatch, name, got, want)
	}
	return nil
}

// requireRoom checks that an output buffer can hold want elements.
func requireRoom(got, want int, name string) error {
	if got < want {
		return fmt.Errorf("%w: %s has %d elements, need at least %d", ErrDimensionMismatch, name, got, want)
	}
	return nil
}

// validateSOS checks that sos holds exactly numSections rows, that every
// entry is finite and that every a0 equals 1.
func validateSOS(sos []float32, numSections int) error {
	if err := requirePositive(numSections, "numSections"); err != nil {
		return err
	}
	n, err := requireSize(numSections, CoefficientsPerSection, "sos")
	if err != nil {
		return err
	}
	if err := requireLen(len(sos), n, "sos"); err != nil {
		return err
	}

	for i, c := range sos {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return fmt.Errorf("%w: section %d coefficient %d is %v",
				ErrInvalidCoefficients, i/CoefficientsPerSection, i%CoefficientsPerSection, c)
		}
	}
	for s := range numSections {
		if a0 := sos[s*CoefficientsPerSection+coeffA0]; a0 != 1 {
			return fmt.Errorf("%w: section %d has a0 = %v, want 1", ErrInvalidCoefficients, s, a0)
		}
	}
	return nil
}

func validateSampleRate(sampleRate float32) error {
	fs := float64(sampleRate)
	if !(fs > 0) || math.IsInf(fs, 0) {
		return fmt.Errorf("%w: sample rate must be positive and finite, got %v", ErrInvalidParameter, sampleRate)
	}
	return nil
}

func validateFrequencies(freqs []float32, allowZero bool) error {
	if len(freqs) == 0 {
		return fmt.Errorf("%w: no target frequencies", ErrInvalidParameter)
	}
	for i, f := range freqs {
		v := float64(f)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || (!allowZero && v == 0) {
			return fmt.Errorf("%w: frequency %d is %v", ErrInvalidParameter, i, f)
		}
	}
	return nil
}
