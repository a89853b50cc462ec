package engine

import (
	"context"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/tphakala/go-geodsp/internal/simdops"
)

// SpectrumOptions controls how MagnitudeSpectrum evaluates its sums.
type SpectrumOptions struct {
	// Workers bounds the number of goroutines; values below 2 run sequentially.
	Workers int

	// MaxTableSize bounds the float64 entries of the shared cos/sin tables.
	// Zero selects DefaultMaxTableSize, a negative value disables tables.
	MaxTableSize int
}

// spectrumPlan holds everything shared read-only by all channels of one call.
type spectrumPlan struct {
	numSamples int
	cycles     []float64 // target frequency in cycles per sample (f / fs)
	stepCos    []float64 // cos(2π·cycles), phasor rotation
	stepSin    []float64 // sin(2π·cycles)
	cosTab     [][]float64
	sinTab     [][]float64
}

// MagnitudeSpectrum computes, for every channel-major row of src and every
// target frequency, the single-frequency DFT magnitude over the whole row:
//
//	re  =  Σ x[n]·cos(2π f n / fs)
//	im  = -Σ x[n]·sin(2π f n / fs)
//	mag =  sqrt(re² + im²) / N
//
// dst is numChannels × len(freqs), row-major by channel, and is fully
// overwritten. Rows are widened to float64 before summation. Channels are
// distributed over opts.Workers goroutines, each with private scratch.
func MagnitudeSpectrum[F simdops.Float](
	ctx context.Context,
	dst, src []F,
	numChannels, numSamples int,
	sampleRate float64,
	freqs []F,
	opts SpectrumOptions,
) error {
	plan := newSpectrumPlan(numSamples, sampleRate, freqs)
	if plan.useTables(numChannels, opts.MaxTableSize) {
		if err := plan.buildTables(ctx, opts.Workers); err != nil {
			return err
		}
	}

	numFreqs := len(freqs)
	ops := simdops.Float64Ops()
	invN := 1.0 / float64(numSamples)

	return ParallelRanges(ctx, numChannels, opts.Workers, func(_ int, r Range) error {
		row := make([]float64, numSamples)
		re := make([]float64, numFreqs)
		im := make([]float64, numFreqs)
		mag := make([]float64, numFreqs)

		for ch := r.Lo; ch < r.Hi; ch++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			simdops.Widen(row, src[ch*numSamples:(ch+1)*numSamples])
			for f := range numFreqs {
				re[f], im[f] = plan.bin(row, f)
			}

			vecmath.Magnitude(mag, re, im)
			ops.Scale(mag, mag, invN)
			simdops.Narrow(dst[ch*numFreqs:(ch+1)*numFreqs], mag)
		}
		return nil
	})
}

func newSpectrumPlan[F simdops.Float](numSamples int, sampleRate float64, freqs []F) *spectrumPlan {
	p := &spectrumPlan{
		numSamples: numSamples,
		cycles:     make([]float64, len(freqs)),
		stepCos:    make([]float64, len(freqs)),
		stepSin:    make([]float64, len(freqs)),
	}
	for i, f := range freqs {
		c := float64(f) / sampleRate
		p.cycles[i] = c
		p.stepSin[i], p.stepCos[i] = math.Sincos(2 * math.Pi * c)
	}
	return p
}

func (p *spectrumPlan) useTables(numChannels, maxTableSize int) bool {
	if maxTableSize < 0 || numChannels < tableMinChannels {
		return false
	}
	if maxTableSize == 0 {
		maxTableSize = DefaultMaxTableSize
	}
	// Two tables (cos and sin) per frequency.
	entries := 2 * len(p.cycles)
	return entries <= maxTableSize/p.numSamples
}

func (p *spectrumPlan) buildTables(ctx context.Context, workers int) error {
	numFreqs := len(p.cycles)
	p.cosTab = make([][]float64, numFreqs)
	p.sinTab = make([][]float64, numFreqs)

	return ParallelFor(ctx, numFreqs, workers, func(f int) error {
		cosRow := make([]float64, p.numSamples)
		sinRow := make([]float64, p.numSamples)
		for n := range p.numSamples {
			sinRow[n], cosRow[n] = sincosAt(n, p.cycles[f])
		}
		p.cosTab[f] = cosRow
		p.sinTab[f] = sinRow
		return nil
	})
}

// bin returns the real and imaginary DFT sums of row at frequency index f.
func (p *spectrumPlan) bin(row []float64, f int) (re, im float64) {
	if p.cosTab != nil {
		ops := simdops.Float64Ops()
		return ops.DotProductUnsafe(row, p.cosTab[f]), -ops.DotProductUnsafe(row, p.sinTab[f])
	}
	return p.phasorBin(row, f)
}

// phasorBin evaluates the sums with a rotating phasor, re-anchored to an
// exact sin/cos every phasorResync samples.
func (p *spectrumPlan) phasorBin(row []float64, f int) (re, im float64) {
	cycles, stepCos, stepSin := p.cycles[f], p.stepCos[f], p.stepSin[f]

	for start := 0; start < len(row); start += phasorResync {
		end := min(start+phasorResync, len(row))
		s, c := sincosAt(start, cycles)
		for _, x := range row[start:end] {
			re += x * c
			im -= x * s
			c, s = c*stepCos-s*stepSin, s*stepCos+c*stepSin
		}
	}
	return re, im
}

// sincosAt returns sin and cos of 2π·n·cycles with the phase reduced to one
// turn first, so large n keeps full precision.
func sincosAt(n int, cycles float64) (sin, cos float64) {
	_, frac := math.Modf(float64(n) * cycles)
	return math.Sincos(2 * math.Pi * frac)
}
