// Package geodsp provides the numeric kernels of a multichannel geophysical
// survey processor in pure Go: cascaded biquad filtering, single-frequency
// spectral magnitudes, segment stacking and raw sample loading.
//
// # Features
//
//   - Second-order-section (SOS) IIR filtering in Direct Form II Transposed,
//     with filter state carried across calls for streaming use
//   - Multichannel filtering over channel-major buffers, channels in parallel
//   - Magnitude spectrum at arbitrary target frequencies (not FFT bins)
//   - Stacking (elementwise averaging) of repeated recordings as a race-free
//     parallel reduction
//   - Optional SIMD acceleration (AVX2/SSE/NEON) via github.com/tphakala/simd
//     and github.com/cwbudde/algo-vecmath
//   - Loading and writing of headerless little-endian float32 files
//
// # Quick Start
//
// Remove power-line interference from one channel, one chunk at a time:
//
//	sos := []float32{ // one notch section: b0 b1 b2 a0 a1 a2
//	    0.9969, -1.9925, 0.9969, 1, -1.9925, 0.9937,
//	}
//	f, err := geodsp.NewStreamFilter(sos)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for chunk := range chunks {
//	    clean, err := f.Process(chunk)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    consume(clean)
//	}
//
// Estimate magnitudes of several channels at the frequencies of a sounding:
//
//	freqs, _ := geodsp.LogSpacedFrequencies(3, 1000, 20)
//	mags := make([]float32, channels*len(freqs))
//	err := geodsp.CalculateMagnitudeSpectrum(data, mags, channels, samples, 24000, freqs)
//
// # Buffer Layout
//
// Multichannel data is channel-major: channel ch occupies
// data[ch*numSamples : (ch+1)*numSamples]. SOS coefficients are rows of six
// values (b0, b1, b2, a0, a1, a2) with a0 = 1, applied in row order. Filter
// state holds two values per section; in the multichannel case channel ch
// owns a private block of 2*numSections values.
//
// # Errors
//
// All arguments are validated before any caller buffer is written. Failures
// wrap one of the exported sentinels ([ErrDimensionMismatch],
// [ErrInvalidParameter], [ErrInvalidCoefficients], [ErrNoSegments],
// [ErrOpenFailed], [ErrEmptyRead], [ErrInvalidConfig]).
//
// # Thread Safety
//
// The package-level functions and [Kernels] methods may be called
// concurrently provided the calls do not share output or state buffers.
// [StreamFilter], [MultichannelStreamFilter] and [SegmentStacker] keep
// mutable state and must be used by one goroutine at a time.
package geodsp
