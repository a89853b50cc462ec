package geodsp

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-geodsp/internal/testutil"
)

// notchSOS returns one float32 notch section (Q = 30) per frequency.
func notchSOS(sampleRate float64, freqs ...float64) []float32 {
	sos := make([]float32, 0, len(freqs)*CoefficientsPerSection)
	for _, f := range freqs {
		for _, c := range testutil.Notch(f, 30, sampleRate) {
			sos = append(sos, float32(c))
		}
	}
	return sos
}

func TestNew_Config(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(&Config{Workers: -1})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(&Config{Workers: maxWorkers + 1, EnableParallel: true})
	require.ErrorIs(t, err, ErrInvalidConfig)

	k, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Positive(t, k.Workers())
}

func TestApplySOSFilter_IdentityPassesThrough(t *testing.T) {
	input := testutil.Noise[float32](1000, 1)
	output := make([]float32, len(input))
	state := make([]float32, 3*StatePerSection)

	require.NoError(t, ApplySOSFilter(input, output, len(input), 3, testutil.Identity[float32](3), state))

	assert.Equal(t, input, output)
	testutil.AssertAllZero(t, state)
}

func TestApplySOSFilter_StreamingContinuity(t *testing.T) {
	const n = 64
	sos := notchSOS(1000, 60, 180)
	input := testutil.Noise[float32](n, 2)

	whole := make([]float32, n)
	wholeState := make([]float32, 2*StatePerSection)
	require.NoError(t, ApplySOSFilter(input, whole, n, 2, sos, wholeState))

	// Every split point k, including the empty first and second halves.
	for k := 0; k <= n; k++ {
		state := make([]float32, 2*StatePerSection)
		split := make([]float32, n)
		if k > 0 {
			require.NoError(t, ApplySOSFilter(input[:k], split[:k], k, 2, sos, state))
		}
		if k < n {
			require.NoError(t, ApplySOSFilter(input[k:], split[k:], n-k, 2, sos, state))
		}

		require.Equal(t, whole, split, "split at %d", k)
		require.Equal(t, wholeState, state, "state after split at %d", k)
	}
}

func TestApplySOSFilter_NotchAttenuatesLineNoise(t *testing.T) {
	const sampleRate, n = 1000.0, 5000
	input := testutil.Sine[float32](n, 1, 60, sampleRate)
	output := make([]float32, n)
	require.NoError(t, ApplySOSFilter(input, output, n, 1, notchSOS(sampleRate, 60), make([]float32, 2)))

	// After the transient the 60 Hz tone is gone.
	var peak float64
	for _, v := range output[n/2:] {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	assert.Less(t, peak, 0.01)
}

func TestApplySOSFilter_InPlace(t *testing.T) {
	sos := notchSOS(1000, 50)
	input := testutil.Noise[float32](500, 3)

	want := make([]float32, len(input))
	require.NoError(t, ApplySOSFilter(input, want, len(input), 1, sos, make([]float32, 2)))

	buf := append([]float32(nil), input...)
	require.NoError(t, ApplySOSFilter(buf, buf, len(buf), 1, sos, make([]float32, 2)))
	assert.Equal(t, want, buf)
}

func TestApplySOSFilter_Validation(t *testing.T) {
	good := notchSOS(1000, 50)
	badA0 := append([]float32(nil), good...)
	badA0[3] = 2
	nan := append([]float32(nil), good...)
	nan[1] = float32(math.NaN())

	tests := []struct {
		name        string
		input       []float32
		output      []float32
		numSamples  int
		numSections int
		sos         []float32
		state       []float32
		wantErr     error
	}{
		{"zero samples", make([]float32, 4), make([]float32, 4), 0, 1, good, make([]float32, 2), ErrInvalidParameter},
		{"zero sections", make([]float32, 4), make([]float32, 4), 4, 0, good, make([]float32, 2), ErrInvalidParameter},
		{"short input", make([]float32, 3), make([]float32, 4), 4, 1, good, make([]float32, 2), ErrDimensionMismatch},
		{"short output", make([]float32, 4), make([]float32, 3), 4, 1, good, make([]float32, 2), ErrDimensionMismatch},
		{"short sos", make([]float32, 4), make([]float32, 4), 4, 2, good, make([]float32, 4), ErrDimensionMismatch},
		{"short state", make([]float32, 4), make([]float32, 4), 4, 1, good, make([]float32, 1), ErrDimensionMismatch},
		{"long input", make([]float32, 5), make([]float32, 4), 4, 1, good, make([]float32, 2), ErrDimensionMismatch},
		{"long output", make([]float32, 4), make([]float32, 5), 4, 1, good, make([]float32, 2), ErrDimensionMismatch},
		{"long sos", make([]float32, 4), make([]float32, 4), 4, 1, notchSOS(1000, 50, 150), make([]float32, 2), ErrDimensionMismatch},
		{"long state", make([]float32, 4), make([]float32, 4), 4, 1, good, make([]float32, 4), ErrDimensionMismatch},
		{"a0 not one", make([]float32, 4), make([]float32, 4), 4, 1, badA0, make([]float32, 2), ErrInvalidCoefficients},
		{"nan coefficient", make([]float32, 4), make([]float32, 4), 4, 1, nan, make([]float32, 2), ErrInvalidCoefficients},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := range tt.input {
				tt.input[i] = 1
			}
			for i := range tt.output {
				tt.output[i] = -7
			}

			err := ApplySOSFilter(tt.input, tt.output, tt.numSamples, tt.numSections, tt.sos, tt.state)
			require.ErrorIs(t, err, tt.wantErr)

			// Nothing is written on failure.
			for _, v := range tt.output {
				require.Equal(t, float32(-7), v)
			}
			testutil.AssertAllZero(t, tt.state)
		})
	}
}

func TestApplySOSFilterMultichannel_Validation(t *testing.T) {
	sos := notchSOS(1000, 50)

	err := ApplySOSFilterMultichannel(make([]float32, 10), make([]float32, 10), 0, 5, 1, sos, make([]float32, 2))
	require.ErrorIs(t, err, ErrInvalidParameter)

	err = ApplySOSFilterMultichannel(make([]float32, 10), make([]float32, 10), 3, 5, 1, sos, make([]float32, 6))
	require.ErrorIs(t, err, ErrDimensionMismatch)

	err = ApplySOSFilterMultichannel(make([]float32, 10), make([]float32, 10), 2, 5, 1, sos, make([]float32, 3))
	require.ErrorIs(t, err, ErrDimensionMismatch)

	// Buffers longer than declared are rejected too.
	err = ApplySOSFilterMultichannel(make([]float32, 10), make([]float32, 10), 2, 5, 1, sos, make([]float32, 5))
	require.ErrorIs(t, err, ErrDimensionMismatch)

	err = ApplySOSFilterMultichannel(make([]float32, 11), make([]float32, 10), 2, 5, 1, sos, make([]float32, 4))
	require.ErrorIs(t, err, ErrDimensionMismatch)

	err = ApplySOSFilterMultichannel(make([]float32, 10), make([]float32, 10), 2, 5, 1, notchSOS(1000, 50, 100), make([]float32, 4))
	require.ErrorIs(t, err, ErrDimensionMismatch)

	err = ApplySOSFilterMultichannel(nil, nil, math.MaxInt/2, 4, 1, sos, nil)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestApplySOSFilterMultichannel_MatchesSingleChannel(t *testing.T) {
	const channels, numSamples = 4, 1200
	sos := notchSOS(1000, 50, 150)
	input := testutil.Noise[float32](channels*numSamples, 5)
	output := make([]float32, len(input))
	state := make([]float32, channels*2*StatePerSection)

	require.NoError(t, ApplySOSFilterMultichannel(input, output, channels, numSamples, 2, sos, state))

	for ch := range channels {
		want := make([]float32, numSamples)
		chState := make([]float32, 2*StatePerSection)
		require.NoError(t, ApplySOSFilter(input[ch*numSamples:(ch+1)*numSamples], want, numSamples, 2, sos, chState))
		assert.Equal(t, want, output[ch*numSamples:(ch+1)*numSamples], "channel %d", ch)
		assert.Equal(t, chState, state[ch*4:(ch+1)*4], "channel %d state", ch)
	}
}

func TestCalculateMagnitudeSpectrum_SinePeak(t *testing.T) {
	const sampleRate, n = 24000.0, 12000
	input := testutil.Sine[float32](n, 0.8, 120, sampleRate)
	freqs := []float32{60, 120, 180}
	mags := make([]float32, len(freqs))

	require.NoError(t, CalculateMagnitudeSpectrum(input, mags, 1, n, sampleRate, freqs))

	assert.InDelta(t, 0.4, mags[1], 1e-4)
	assert.InDelta(t, 0, mags[0], 1e-4)
	assert.InDelta(t, 0, mags[2], 1e-4)
}

func TestCalculateMagnitudeSpectrum_OffTargetSine(t *testing.T) {
	const (
		sampleRate = 1000.0
		n          = 1000
		amp        = 2.0
		f0         = 50.2 // 0.2 Hz from the nearest target
	)
	input := testutil.Sine[float32](n, amp, f0, sampleRate)
	freqs := []float32{10, 50, 55, 120}
	mags := make([]float32, len(freqs))

	require.NoError(t, CalculateMagnitudeSpectrum(input, mags, 1, n, sampleRate, freqs))

	peak := 0
	for i, m := range mags {
		if m > mags[peak] {
			peak = i
		}
	}
	assert.Equal(t, 1, peak, "nearest target to %v Hz carries the peak", f0)

	// The Dirichlet kernel bounds the loss from the 0.2 Hz offset.
	offset := math.Pi * 0.2 / sampleRate
	want := amp / 2 * math.Sin(offset*n) / (n * math.Sin(offset))
	assert.InDelta(t, want, mags[1], 0.01)
	assert.InDelta(t, amp/2, mags[1], 0.1*amp/2)
}

func TestCalculateMagnitudeSpectrum_OverwritesOutput(t *testing.T) {
	mags := []float32{9, 9, 9, 9}
	require.NoError(t, CalculateMagnitudeSpectrum(make([]float32, 20), mags, 2, 10, 10, []float32{1, 2}))
	testutil.AssertAllZero(t, mags)
}

func TestCalculateMagnitudeSpectrum_Validation(t *testing.T) {
	input := make([]float32, 20)
	mags := make([]float32, 4)

	tests := []struct {
		name       string
		sampleRate float32
		freqs      []float32
		mags       []float32
		wantErr    error
	}{
		{"zero rate", 0, []float32{1, 2}, mags, ErrInvalidParameter},
		{"nan rate", float32(math.NaN()), []float32{1, 2}, mags, ErrInvalidParameter},
		{"no freqs", 10, nil, mags, ErrInvalidParameter},
		{"negative freq", 10, []float32{1, -2}, mags, ErrInvalidParameter},
		{"inf freq", 10, []float32{float32(math.Inf(1)), 2}, mags, ErrInvalidParameter},
		{"short output", 10, []float32{1, 2}, mags[:3], ErrDimensionMismatch},
		{"long output", 10, []float32{1, 2}, make([]float32, 5), ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CalculateMagnitudeSpectrum(input, tt.mags, 2, 10, tt.sampleRate, tt.freqs)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	err := CalculateMagnitudeSpectrum(make([]float32, 21), mags, 2, 10, 10, []float32{1, 2})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestComputeStacking(t *testing.T) {
	segments := []float32{
		1, 2, 3,
		3, 4, 5,
	}
	output := make([]float32, 3)

	require.NoError(t, ComputeStacking(segments, output, 2, 3))
	assert.Equal(t, []float32{2, 3, 4}, output)
}

func TestComputeStacking_Validation(t *testing.T) {
	output := []float32{5, 5}

	err := ComputeStacking(nil, output, 0, 2)
	require.ErrorIs(t, err, ErrNoSegments)

	err = ComputeStacking(make([]float32, 4), output, -1, 2)
	require.ErrorIs(t, err, ErrInvalidParameter)

	err = ComputeStacking(make([]float32, 3), output, 2, 2)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	err = ComputeStacking(make([]float32, 4), output[:1], 2, 2)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	// A long segments buffer would hide a wrong numSegments.
	err = ComputeStacking(make([]float32, 5), output, 2, 2)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	err = ComputeStacking(make([]float32, 4), []float32{5, 5, 5}, 2, 2)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	assert.Equal(t, []float32{5, 5}, output)
}

func TestKernels_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	k := newTestKernels(t, true, 2)
	input := testutil.Noise[float32](100, 1)
	output := make([]float32, 100)

	err := k.FilterMultichannel(ctx, input, output, 2, 50, 1, notchSOS(100, 10), make([]float32, 4))
	assert.True(t, errors.Is(err, context.Canceled))

	err = k.Stack(ctx, input, output[:50], 2, 50)
	assert.ErrorIs(t, err, context.Canceled)
	testutil.AssertAllZero(t, output)
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	assert.NotEmpty(t, info.SIMDType)
	assert.NotEmpty(t, info.Architecture)
	assert.Positive(t, info.Workers)
}
