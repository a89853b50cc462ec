package geodsp

import (
	"context"
	"fmt"
	"slices"
)

// StreamFilter applies a fixed SOS cascade to a single channel delivered in
// chunks of any length. Its state carries over between chunks, so filtering
// a record piecewise gives the same samples as filtering it at once.
//
// A StreamFilter is not safe for concurrent use.
type StreamFilter struct {
	sos         []float32
	state       []float32
	numSections int
	kernels     *Kernels
}

// NewStreamFilter returns a filter for the sections in sos (six entries
// per section) with zeroed state. The coefficients are copied.
func NewStreamFilter(sos []float32) (*StreamFilter, error) {
	numSections, err := sectionCount(sos)
	if err != nil {
		return nil, err
	}

	return &StreamFilter{
		sos:         slices.Clone(sos),
		state:       make([]float32, numSections*StatePerSection),
		numSections: numSections,
		kernels:     defaultKernels(),
	}, nil
}

// sectionCount validates a whole SOS matrix and returns its section count.
func sectionCount(sos []float32) (int, error) {
	if len(sos) == 0 || len(sos)%CoefficientsPerSection != 0 {
		return 0, fmt.Errorf("%w: sos length %d is not a positive multiple of %d",
			ErrDimensionMismatch, len(sos), CoefficientsPerSection)
	}
	numSections := len(sos) / CoefficientsPerSection
	if err := validateSOS(sos, numSections); err != nil {
		return 0, err
	}
	return numSections, nil
}

// Process filters chunk and returns a newly allocated output.
// An empty chunk returns an empty slice and leaves the state unchanged.
func (f *StreamFilter) Process(chunk []float32) ([]float32, error) {
	out := make([]float32, len(chunk))
	if err := f.ProcessInto(out, chunk); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessInto filters chunk into dst[:len(chunk)]. dst may alias chunk and
// may be longer than chunk.
func (f *StreamFilter) ProcessInto(dst, chunk []float32) error {
	if len(chunk) == 0 {
		return nil
	}
	if err := requireRoom(len(dst), len(chunk), "dst"); err != nil {
		return err
	}
	return f.kernels.Filter(chunk, dst[:len(chunk)], len(chunk), f.numSections, f.sos, f.state)
}

// Reset zeroes the state, as if no sample had been processed.
func (f *StreamFilter) Reset() {
	clear(f.state)
}

// State returns a copy of the current state (two values per section).
func (f *StreamFilter) State() []float32 {
	return slices.Clone(f.state)
}

// SetState replaces the state, for example to resume from a checkpoint.
func (f *StreamFilter) SetState(state []float32) error {
	if len(state) != len(f.state) {
		return fmt.Errorf("%w: state has %d values, want %d", ErrDimensionMismatch, len(state), len(f.state))
	}
	copy(f.state, state)
	return nil
}

// NumSections returns the number of second-order sections.
func (f *StreamFilter) NumSections() int {
	return f.numSections
}

// MultichannelStreamFilter applies one SOS cascade to every channel of a
// channel-major stream, each channel with its own state. Chunks may have
// any per-channel length.
//
// A MultichannelStreamFilter is not safe for concurrent use.
type MultichannelStreamFilter struct {
	sos         []float32
	state       []float32
	numSections int
	numChannels int
	kernels     *Kernels
}

// NewMultichannelStreamFilter returns a filter for numChannels channels.
// A nil kernels selects the package defaults.
func NewMultichannelStreamFilter(sos []float32, numChannels int, kernels *Kernels) (*MultichannelStreamFilter, error) {
	numSections, err := sectionCount(sos)
	if err != nil {
		return nil, err
	}
	if err := requirePositive(numChannels, "numChannels"); err != nil {
		return nil, err
	}
	stateLen, err := requireSize(numChannels, numSections*StatePerSection, "state")
	if err != nil {
		return nil, err
	}
	if kernels == nil {
		kernels = defaultKernels()
	}

	return &MultichannelStreamFilter{
		sos:         slices.Clone(sos),
		state:       make([]float32, stateLen),
		numSections: numSections,
		numChannels: numChannels,
		kernels:     kernels,
	}, nil
}

// Process filters a channel-major chunk of numChannels rows and returns a
// newly allocated output of the same shape. len(chunk) must be a multiple
// of the channel count.
func (f *MultichannelStreamFilter) Process(ctx context.Context, chunk []float32) ([]float32, error) {
	out := make([]float32, len(chunk))
	if err := f.ProcessInto(ctx, out, chunk); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessInto filters chunk into dst[:len(chunk)]. dst may be longer than
// chunk.
func (f *MultichannelStreamFilter) ProcessInto(ctx context.Context, dst, chunk []float32) error {
	if len(chunk)%f.numChannels != 0 {
		return fmt.Errorf("%w: chunk of %d samples is not divisible into %d channels",
			ErrDimensionMismatch, len(chunk), f.numChannels)
	}
	numSamples := len(chunk) / f.numChannels
	if numSamples == 0 {
		return nil
	}
	if err := requireRoom(len(dst), len(chunk), "dst"); err != nil {
		return err
	}
	return f.kernels.FilterMultichannel(ctx, chunk, dst[:len(chunk)],
		f.numChannels, numSamples, f.numSections, f.sos, f.state)
}

// Reset zeroes the state of every channel.
func (f *MultichannelStreamFilter) Reset() {
	clear(f.state)
}

// State returns a copy of the state, numChannels rows of two values per section.
func (f *MultichannelStreamFilter) State() []float32 {
	return slices.Clone(f.state)
}

// SetState replaces the state of every channel, for example to resume from
// a checkpoint taken with State.
func (f *MultichannelStreamFilter) SetState(state []float32) error {
	if len(state) != len(f.state) {
		return fmt.Errorf("%w: state has %d values, want %d", ErrDimensionMismatch, len(state), len(f.state))
	}
	copy(f.state, state)
	return nil
}

// NumSections returns the number of second-order sections.
func (f *MultichannelStreamFilter) NumSections() int {
	return f.numSections
}

// NumChannels returns the channel count.
func (f *MultichannelStreamFilter) NumChannels() int {
	return f.numChannels
}
