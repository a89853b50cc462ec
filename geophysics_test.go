package geodsp

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApparentResistivity(t *testing.T) {
	dst := make([]float32, 2)
	require.NoError(t, ApparentResistivity([]float32{10, 3}, []float32{1, 3}, []float32{10, 0.2}, dst))

	assert.InDelta(t, 0.2*0.1*100, dst[0], 1e-4)
	assert.InDelta(t, 0.2*5*1, dst[1], 1e-5)
}

func TestApparentResistivity_Validation(t *testing.T) {
	dst := make([]float32, 2)

	err := ApparentResistivity([]float32{1, 1}, []float32{1, 1}, []float32{1, 0}, dst)
	require.ErrorIs(t, err, ErrInvalidParameter)

	err = ApparentResistivity([]float32{1}, []float32{1, 1}, []float32{1, 2}, dst)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	err = ApparentResistivity([]float32{1, 1}, []float32{1, 1}, []float32{1, 2}, dst[:1])
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestInterpolateGrid(t *testing.T) {
	src := []float32{
		1, 3,
		5, 7,
	}
	dst := make([]float32, 3*2)
	require.NoError(t, InterpolateGrid(src, 2, 2, dst, 3, 2))

	assert.InDeltaSlice(t, []float32{1, 3, 3, 5, 5, 7}, dst, 1e-6)
}

func TestInterpolateGrid_Validation(t *testing.T) {
	err := InterpolateGrid(make([]float32, 4), 2, 2, make([]float32, 4), 0, 2)
	require.ErrorIs(t, err, ErrInvalidParameter)

	err = InterpolateGrid(make([]float32, 3), 2, 2, make([]float32, 4), 2, 2)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	err = InterpolateGrid(make([]float32, 4), 2, 2, make([]float32, 3), 2, 2)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestLogSpacedFrequencies(t *testing.T) {
	f, err := LogSpacedFrequencies(1, 100, 3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{1, 10, 100}, f, 1e-4)

	_, err = LogSpacedFrequencies(0, 100, 3)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = LogSpacedFrequencies(10, 1, 3)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = LogSpacedFrequencies(1, 10, 0)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestRawSamples_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.raw")
	want := []float32{0.5, -1, 2, 1e6}
	require.NoError(t, WriteRawSamples(path, want))

	buf := make([]float32, 10)
	n, err := LoadRawSamples(path, buf)
	require.NoError(t, err)
	assert.Equal(t, want, buf[:n])

	_, err = LoadRawSamples(filepath.Join(t.TempDir(), "nope.raw"), buf)
	require.ErrorIs(t, err, ErrOpenFailed)
}
