package geodsp

import (
	"fmt"

	"github.com/tphakala/go-geodsp/internal/pipeline"
	"github.com/tphakala/go-geodsp/internal/simdops"
)

// SegmentStacker averages a long record segment by segment while it is
// being acquired. Samples arrive in chunks of any length; every time a full
// segment has accumulated it is folded into a running float64 sum.
//
// For the same complete segments Mean matches ComputeStacking run without
// parallelism. A SegmentStacker is safe for use by one writer at a time.
type SegmentStacker struct {
	segmentSize int
	pending     *pipeline.RingBuffer[float32]
	segment     []float32
	sum         []float64
	segments    int
}

// NewSegmentStacker returns a stacker for segments of segmentSize samples.
func NewSegmentStacker(segmentSize int) (*SegmentStacker, error) {
	if err := requirePositive(segmentSize, "segmentSize"); err != nil {
		return nil, err
	}

	return &SegmentStacker{
		segmentSize: segmentSize,
		pending:     pipeline.NewRingBuffer[float32](segmentSize),
		segment:     make([]float32, segmentSize),
		sum:         make([]float64, segmentSize),
	}, nil
}

// Write appends samples to the record and folds every segment completed by
// them into the running sum.
func (s *SegmentStacker) Write(samples []float32) {
	s.pending.Write(samples)

	for s.pending.Available() >= s.segmentSize {
		s.pending.ReadInto(s.segment)
		for i, v := range s.segment {
			s.sum[i] += float64(v)
		}
		s.segments++
	}
}

// Segments returns the number of complete segments stacked so far.
func (s *SegmentStacker) Segments() int {
	return s.segments
}

// Pending returns the number of buffered samples of the incomplete segment.
func (s *SegmentStacker) Pending() int {
	return s.pending.Available()
}

// SegmentSize returns the configured segment length.
func (s *SegmentStacker) SegmentSize() int {
	return s.segmentSize
}

// Mean writes the average of the complete segments into dst[:SegmentSize()].
// It fails with ErrNoSegments before the first segment completes.
func (s *SegmentStacker) Mean(dst []float32) error {
	if s.segments == 0 {
		return fmt.Errorf("%w: %d of %d samples buffered", ErrNoSegments, s.Pending(), s.segmentSize)
	}
	if err := requireRoom(len(dst), s.segmentSize, "dst"); err != nil {
		return err
	}

	mean := make([]float64, s.segmentSize)
	simdops.Float64Ops().Scale(mean, s.sum, 1.0/float64(s.segments))
	simdops.Narrow(dst[:s.segmentSize], mean)
	return nil
}

// Reset discards the running sum and any buffered samples.
func (s *SegmentStacker) Reset() {
	s.pending.Clear()
	clear(s.sum)
	s.segments = 0
}
