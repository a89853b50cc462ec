// Package synth generates synthetic field recordings: a low-frequency target
// signal buried under power-line interference and gaussian sensor noise.
package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidParams is returned for physically meaningless generator settings.
var ErrInvalidParams = errors.New("invalid synthesis parameters")

// Signal describes one simulated sensor channel.
type Signal struct {
	SampleRate float64 // Hz
	TargetFreq float64 // subsurface response frequency in Hz
	TargetAmp  float64
	LineFreq   float64 // power-line frequency in Hz (50 or 60)
	LineAmp    float64
	NoiseSigma float64 // standard deviation of the white noise
}

// DefaultSignal mirrors a typical 60 Hz site: a 2 Hz target of unit
// amplitude, strong line pickup and moderate sensor noise.
func DefaultSignal() Signal {
	return Signal{
		SampleRate: 1000,
		TargetFreq: 2,
		TargetAmp:  1,
		LineFreq:   60,
		LineAmp:    1.5,
		NoiseSigma: 0.5,
	}
}

// Validate checks that the signal can be sampled.
func (s Signal) Validate() error {
	if !(s.SampleRate > 0) || math.IsInf(s.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidParams, s.SampleRate)
	}
	if s.TargetFreq < 0 || s.LineFreq < 0 {
		return fmt.Errorf("%w: negative frequency", ErrInvalidParams)
	}
	if s.NoiseSigma < 0 {
		return fmt.Errorf("%w: noise sigma %v", ErrInvalidParams, s.NoiseSigma)
	}
	return nil
}

// Generator produces reproducible recordings from a seeded source.
type Generator struct {
	src rand.Source
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{src: rand.NewPCG(seed, seed^0xda3e39cb94b95bdb)}
}

// Clean returns n samples of the noise-free target signal.
func Clean(s Signal, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / s.SampleRate
		out[i] = float32(s.TargetAmp * math.Sin(2*math.Pi*s.TargetFreq*t))
	}
	return out
}

// Record returns n samples of target + line interference + white noise.
func (g *Generator) Record(s Signal, n int) ([]float32, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %d samples", ErrInvalidParams, n)
	}

	noise := distuv.Normal{Mu: 0, Sigma: s.NoiseSigma, Src: g.src}
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / s.SampleRate
		v := s.TargetAmp*math.Sin(2*math.Pi*s.TargetFreq*t) +
			s.LineAmp*math.Sin(2*math.Pi*s.LineFreq*t)
		if s.NoiseSigma > 0 {
			v += noise.Rand()
		}
		out[i] = float32(v)
	}
	return out, nil
}

// Survey describes a multichannel recording in which line pickup grows
// with the channel index, as on a spread whose far end runs past a power line.
type Survey struct {
	Channels       int
	SamplesPerChan int
	Base           Signal
	LineAmpPerChan float64 // line amplitude of channel ch is (ch+1)*LineAmpPerChan
}

// DefaultSurvey returns a 24-channel, 24 kHz survey of fifteen half-second
// segments per channel, the layout survey.DefaultConfig expects.
func DefaultSurvey() Survey {
	return Survey{
		Channels:       24,
		SamplesPerChan: 15 * 12000,
		Base: Signal{
			SampleRate: 24000,
			TargetFreq: 2,
			TargetAmp:  0.5,
			LineFreq:   60,
			NoiseSigma: 0.02,
		},
		LineAmpPerChan: 0.1,
	}
}

// Generate returns the survey as channel-major float32 samples.
func (g *Generator) Generate(sv Survey) ([]float32, error) {
	if sv.Channels < 1 || sv.SamplesPerChan < 1 {
		return nil, fmt.Errorf("%w: %d channels x %d samples", ErrInvalidParams, sv.Channels, sv.SamplesPerChan)
	}

	out := make([]float32, 0, sv.Channels*sv.SamplesPerChan)
	for ch := range sv.Channels {
		s := sv.Base
		s.LineAmp = float64(ch+1) * sv.LineAmpPerChan
		rec, err := g.Record(s, sv.SamplesPerChan)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		out = append(out, rec...)
	}
	return out, nil
}
