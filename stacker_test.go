package geodsp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-geodsp/internal/testutil"
)

func TestSegmentStacker_MatchesComputeStacking(t *testing.T) {
	const numSegments, segmentSize = 12, 250
	record := testutil.Noise[float32](numSegments*segmentSize+100, 14)

	s, err := NewSegmentStacker(segmentSize)
	require.NoError(t, err)

	// Irregular chunks that straddle segment boundaries.
	for start := 0; start < len(record); {
		end := min(start+173, len(record))
		s.Write(record[start:end])
		start = end
	}

	assert.Equal(t, numSegments, s.Segments())
	assert.Equal(t, 100, s.Pending())

	got := make([]float32, segmentSize)
	require.NoError(t, s.Mean(got))

	want := make([]float32, segmentSize)
	seq := newTestKernels(t, false, 0)
	require.NoError(t, seq.Stack(context.Background(), record[:numSegments*segmentSize], want, numSegments, segmentSize))

	assert.Equal(t, want, got)
}

func TestSegmentStacker_NoSegments(t *testing.T) {
	s, err := NewSegmentStacker(10)
	require.NoError(t, err)

	s.Write(make([]float32, 9))
	require.ErrorIs(t, s.Mean(make([]float32, 10)), ErrNoSegments)

	s.Write([]float32{1})
	dst := make([]float32, 10)
	require.NoError(t, s.Mean(dst))
	assert.Equal(t, float32(1), dst[9])
	assert.Equal(t, float32(0), dst[0])
	require.ErrorIs(t, s.Mean(dst[:5]), ErrDimensionMismatch)
}

func TestSegmentStacker_Reset(t *testing.T) {
	s, err := NewSegmentStacker(4)
	require.NoError(t, err)

	s.Write([]float32{1, 1, 1, 1, 2, 2})
	require.Equal(t, 1, s.Segments())
	s.Reset()

	assert.Zero(t, s.Segments())
	assert.Zero(t, s.Pending())

	s.Write([]float32{3, 3, 3, 3})
	dst := make([]float32, 4)
	require.NoError(t, s.Mean(dst))
	assert.Equal(t, []float32{3, 3, 3, 3}, dst)
}

func TestNewSegmentStacker_Invalid(t *testing.T) {
	_, err := NewSegmentStacker(0)
	require.ErrorIs(t, err, ErrInvalidParameter)
}
