package geodsp

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/tphakala/go-geodsp/internal/engine"
)

// Kernels runs the filter, spectrum and stacking kernels with a fixed
// execution configuration. A Kernels value holds no per-call state and is
// safe for concurrent use.
type Kernels struct {
	workers      int
	maxTableSize int
}

// defaultKernels backs the package-level functions.
var defaultKernels = sync.OnceValue(func() *Kernels {
	return &Kernels{workers: runtime.GOMAXPROCS(0)}
})

// Workers returns the number of goroutines the kernels may use.
func (k *Kernels) Workers() int {
	return k.workers
}

// Filter runs the numSamples samples of input through the numSections
// second-order sections in sos and writes them to output. sos holds exactly
// six coefficients per section and state exactly two values per section; it is read at entry and updated at exit, so consecutive calls
// on consecutive chunks behave like one call on the whole record.
//
// input and output may be the same slice. Nothing is written unless all
// arguments are valid.
func (k *Kernels) Filter(input, output []float32, numSamples, numSections int, sos, state []float32) error {
	if err := requirePositive(numSamples, "numSamples"); err != nil {
		return err
	}
	if err := validateSOS(sos, numSections); err != nil {
		return err
	}
	if err := requireLen(len(input), numSamples, "input"); err != nil {
		return err
	}
	if err := requireLen(len(output), numSamples, "output"); err != nil {
		return err
	}
	if err := requireLen(len(state), numSections*StatePerSection, "state"); err != nil {
		return err
	}

	engine.Cascade(output, input, numSections, sos, state)
	return nil
}

// FilterMultichannel filters numChannels channel-major rows of numSamples
// samples each. Every buffer must match the declared dimensions exactly. Every channel runs the same sections with its own state:
// channel ch uses state[ch*2*numSections : (ch+1)*2*numSections].
//
// Channels are processed in parallel. If ctx is cancelled the call returns
// ctx.Err(); channels already started are completed, the rest keep their
// previous output and state.
func (k *Kernels) FilterMultichannel(
	ctx context.Context,
	input, output []float32,
	numChannels, numSamples, numSections int,
	sos, state []float32,
) error {
	if err := requirePositive(numChannels, "numChannels"); err != nil {
		return err
	}
	if err := requirePositive(numSamples, "numSamples"); err != nil {
		return err
	}
	if err := validateSOS(sos, numSections); err != nil {
		return err
	}
	total, err := requireSize(numChannels, numSamples, "signal")
	if err != nil {
		return err
	}
	stateLen, err := requireSize(numChannels, numSections*StatePerSection, "state")
	if err != nil {
		return err
	}
	if err := requireLen(len(input), total, "input"); err != nil {
		return err
	}
	if err := requireLen(len(output), total, "output"); err != nil {
		return err
	}
	if err := requireLen(len(state), stateLen, "state"); err != nil {
		return err
	}

	return engine.CascadeMultichannel(ctx, output, input,
		numChannels, numSamples, numSections, sos, state, k.workers)
}

// Spectrum estimates, for each of numChannels channel-major rows of
// numSamples samples, the magnitude of the discrete Fourier transform at every
// frequency in targetFreqs:
//
//	magnitude = sqrt(re² + im²) / numSamples
//
// input holds exactly numChannels*numSamples samples. magnitudes holds
// exactly numChannels rows of len(targetFreqs) values and is fully
// overwritten. A sine of amplitude A at a target frequency that completes an
// integer number of cycles over the row yields A/2. Frequencies above the
// Nyquist limit are accepted and alias as the DFT does.
func (k *Kernels) Spectrum(
	ctx context.Context,
	input, magnitudes []float32,
	numChannels, numSamples int,
	sampleRate float32,
	targetFreqs []float32,
) error {
	if err := requirePositive(numChannels, "numChannels"); err != nil {
		return err
	}
	if err := requirePositive(numSamples, "numSamples"); err != nil {
		return err
	}
	if err := validateSampleRate(sampleRate); err != nil {
		return err
	}
	if err := validateFrequencies(targetFreqs, true); err != nil {
		return err
	}
	total, err := requireSize(numChannels, numSamples, "signal")
	if err != nil {
		return err
	}
	outLen, err := requireSize(numChannels, len(targetFreqs), "magnitudes")
	if err != nil {
		return err
	}
	if err := requireLen(len(input), total, "input"); err != nil {
		return err
	}
	if err := requireLen(len(magnitudes), outLen, "magnitudes"); err != nil {
		return err
	}

	return engine.MagnitudeSpectrum(ctx, magnitudes, input,
		numChannels, numSamples, float64(sampleRate), targetFreqs,
		engine.SpectrumOptions{Workers: k.workers, MaxTableSize: k.maxTableSize})
}

// Stack writes the elementwise mean of numSegments consecutive segments of
// segmentSize samples into output, which holds exactly segmentSize samples. Sums are accumulated in
// float64 with private per-worker partials, so the result does not depend on
// scheduling beyond floating-point association.
//
// numSegments == 0 fails with ErrNoSegments. On cancellation output is left
// unchanged.
func (k *Kernels) Stack(ctx context.Context, segments, output []float32, numSegments, segmentSize int) error {
	if numSegments == 0 {
		return fmt.Errorf("%w: numSegments is 0", ErrNoSegments)
	}
	if err := requirePositive(numSegments, "numSegments"); err != nil {
		return err
	}
	if err := requirePositive(segmentSize, "segmentSize"); err != nil {
		return err
	}
	total, err := requireSize(numSegments, segmentSize, "segments")
	if err != nil {
		return err
	}
	if err := requireLen(len(segments), total, "segments"); err != nil {
		return err
	}
	if err := requireLen(len(output), segmentSize, "output"); err != nil {
		return err
	}

	return engine.Stack(ctx, output, segments, numSegments, segmentSize, k.workers)
}

// ApplySOSFilter filters one channel with the default kernels.
// See [Kernels.Filter].
func ApplySOSFilter(input, output []float32, numSamples, numSections int, sos, state []float32) error {
	return defaultKernels().Filter(input, output, numSamples, numSections, sos, state)
}

// ApplySOSFilterMultichannel filters channel-major rows in parallel with the
// default kernels. See [Kernels.FilterMultichannel].
func ApplySOSFilterMultichannel(input, output []float32, numChannels, numSamples, numSections int, sos, state []float32) error {
	return defaultKernels().FilterMultichannel(context.Background(), input, output,
		numChannels, numSamples, numSections, sos, state)
}

// CalculateMagnitudeSpectrum estimates per-channel DFT magnitudes at the
// target frequencies with the default kernels. See [Kernels.Spectrum].
func CalculateMagnitudeSpectrum(input, magnitudes []float32, numChannels, numSamples int, sampleRate float32, targetFreqs []float32) error {
	return defaultKernels().Spectrum(context.Background(), input, magnitudes,
		numChannels, numSamples, sampleRate, targetFreqs)
}

// ComputeStacking averages equal-length segments with the default kernels.
// See [Kernels.Stack].
func ComputeStacking(segments, output []float32, numSegments, segmentSize int) error {
	return defaultKernels().Stack(context.Background(), segments, output, numSegments, segmentSize)
}
