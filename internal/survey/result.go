package survey

import (
	"time"
)

// Result holds every product of a survey run. Multichannel arrays are
// channel-major.
type Result struct {
	RunID             string
	SampleRate        float64
	Channels          int
	SamplesPerSegment int
	SamplesRead       int

	Raw      []float32 // channels × segments × samples
	Filtered []float32 // same shape as Raw
	Stacked  []float32 // channels × samples

	Frequencies []float32
	Magnitudes  []float32 // channels × frequencies
	Resistivity []float32 // channels × frequencies, ohm·m

	// Sounding is the resistivity row of the electric channel.
	Sounding []float32

	Section            []float32 // SectionRows × SectionCols
	SectionRows        int
	SectionCols        int
	SectionFrequencies []float32 // log-spaced axis of the section columns

	QC []ChannelQC

	StageDurations map[Stage]time.Duration
}

// channelMagnitudes returns the spectrum row of channel ch.
func (r *Result) channelMagnitudes(ch int) []float32 {
	nf := len(r.Frequencies)
	return r.Magnitudes[ch*nf : (ch+1)*nf]
}

// StackedChannel returns the stacked trace of channel ch.
func (r *Result) StackedChannel(ch int) []float32 {
	return r.Stacked[ch*r.SamplesPerSegment : (ch+1)*r.SamplesPerSegment]
}
