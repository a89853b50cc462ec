// Package survey implements the end-to-end processing of a multichannel
// magnetotelluric survey recording: load, notch filtering, stacking,
// sounding spectrum, apparent resistivity and the interpolated section.
package survey

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates an unusable survey description.
var ErrInvalidConfig = errors.New("invalid survey configuration")

// Config describes one survey recording and how to process it.
type Config struct {
	// Input is the raw little-endian float32 file, laid out channel by
	// channel, each channel holding Segments consecutive segments.
	Input string `yaml:"input"`

	SampleRate     float64 `yaml:"sample_rate"`
	Channels       int     `yaml:"channels"`
	Segments       int     `yaml:"segments"`
	SegmentSeconds float64 `yaml:"segment_seconds"`

	// LineFrequency is the power-line frequency checked by the QC report;
	// 0 skips the check.
	LineFrequency float64 `yaml:"line_frequency"`

	// SOS holds the notch cascade, one row of b0 b1 b2 a0 a1 a2 per section.
	SOS [][]float64 `yaml:"sos"`

	Frequencies FrequencyPlan `yaml:"frequencies"`

	// ElectricChannel is the channel whose resistivity forms the sounding
	// curve; MagneticChannel is the magnetic reference for every channel.
	ElectricChannel int `yaml:"electric_channel"`
	MagneticChannel int `yaml:"magnetic_channel"`

	Section SectionSize `yaml:"section"`

	// Workers bounds kernel parallelism; 0 uses every CPU.
	Workers int `yaml:"workers"`
}

// FrequencyPlan selects the sounding frequencies: an explicit list, or Count
// log-spaced frequencies from Min to Max.
type FrequencyPlan struct {
	List  []float64 `yaml:"list,omitempty"`
	Min   float64   `yaml:"min"`
	Max   float64   `yaml:"max"`
	Count int       `yaml:"count"`
}

// SectionSize is the resolution of the interpolated resistivity section.
type SectionSize struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// DefaultNotch60Hz is a 60 Hz notch with Q = 100 at 24 kHz.
var DefaultNotch60Hz = []float64{
	0.999921466351517, -1.9995962170433579, 0.999921466351517,
	1, -1.9995962170433579, 0.999842932703034,
}

// DefaultConfig returns the standard 24-channel, 24 kHz survey: fifteen
// half-second segments per channel, a 60 Hz notch and twenty sounding
// frequencies from 10^0.5 to 10^3 Hz.
func DefaultConfig() *Config {
	return &Config{
		Input:          "data/raw/survey_24ch.raw",
		SampleRate:     24000,
		Channels:       24,
		Segments:       15,
		SegmentSeconds: 0.5,
		LineFrequency:  60,
		SOS:            [][]float64{DefaultNotch60Hz},
		Frequencies: FrequencyPlan{
			Min:   math.Pow(10, 0.5),
			Max:   1000,
			Count: 20,
		},
		ElectricChannel: 0,
		MagneticChannel: 1,
		Section:         SectionSize{Rows: 200, Cols: 100},
	}
}

// LoadConfig reads a YAML survey description on top of DefaultConfig, so a
// file only needs the fields it changes. Unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open survey config: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode survey config %s: %w", path, err)
	}
	return cfg, nil
}

// SamplesPerSegment returns the segment length in samples.
func (c *Config) SamplesPerSegment() int {
	return int(c.SampleRate * c.SegmentSeconds)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("%w: input path is empty", ErrInvalidConfig)
	}

	if !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}

	if c.Channels < 1 || c.Segments < 1 {
		return fmt.Errorf("%w: channels and segments must be at least 1", ErrInvalidConfig)
	}

	if c.SamplesPerSegment() < 1 {
		return fmt.Errorf("%w: segment of %v s holds no sample", ErrInvalidConfig, c.SegmentSeconds)
	}

	if c.LineFrequency < 0 || math.IsNaN(c.LineFrequency) {
		return fmt.Errorf("%w: line frequency must not be negative", ErrInvalidConfig)
	}

	if len(c.SOS) == 0 {
		return fmt.Errorf("%w: no SOS sections", ErrInvalidConfig)
	}
	for i, row := range c.SOS {
		if len(row) != sosRowLen {
			return fmt.Errorf("%w: SOS row %d has %d values, want %d", ErrInvalidConfig, i, len(row), sosRowLen)
		}
	}

	if len(c.Frequencies.List) == 0 && c.Frequencies.Count < 1 {
		return fmt.Errorf("%w: no sounding frequencies", ErrInvalidConfig)
	}

	for _, ch := range []int{c.ElectricChannel, c.MagneticChannel} {
		if ch < 0 || ch >= c.Channels {
			return fmt.Errorf("%w: channel %d outside 0..%d", ErrInvalidConfig, ch, c.Channels-1)
		}
	}

	if c.Section.Rows < 1 || c.Section.Cols < 1 {
		return fmt.Errorf("%w: section must be at least 1 x 1", ErrInvalidConfig)
	}

	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}

	return nil
}

// flatSOS converts the configured rows to the float32 layout of the kernels.
func (c *Config) flatSOS() []float32 {
	sos := make([]float32, 0, len(c.SOS)*sosRowLen)
	for _, row := range c.SOS {
		for _, v := range row {
			sos = append(sos, float32(v))
		}
	}
	return sos
}
