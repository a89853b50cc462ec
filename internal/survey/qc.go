package survey

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	geodsp "github.com/tphakala/go-geodsp"
)

// ChannelQC summarizes how much cleaner a channel got.
type ChannelQC struct {
	Channel int

	// RawStdDev is the standard deviation of the unprocessed channel.
	RawStdDev float64

	// StackedStdDev is the standard deviation of the final trace.
	StackedStdDev float64

	// ResidualStdDev is the mean over segments of the standard deviation of
	// (filtered segment - stacked trace): the incoherent noise that stacking
	// removed.
	ResidualStdDev float64

	// LineRejectionDB compares the line-frequency magnitude of the first raw
	// segment with that of the stacked trace. Zero when the check is off.
	LineRejectionDB float64
}

func buildQC(ctx context.Context, k *geodsp.Kernels, res *Result, cfg *Config) ([]ChannelQC, error) {
	seg := res.SamplesPerSegment
	block := cfg.Segments * seg

	report := make([]ChannelQC, cfg.Channels)
	raw := make([]float64, block)
	trace := make([]float64, seg)
	residual := make([]float64, seg)
	segStd := make([]float64, cfg.Segments)

	for ch := range cfg.Channels {
		widen(raw, res.Raw[ch*block:(ch+1)*block])
		widen(trace, res.StackedChannel(ch))

		for s := range cfg.Segments {
			filtered := res.Filtered[ch*block+s*seg : ch*block+(s+1)*seg]
			for i, v := range filtered {
				residual[i] = float64(v) - trace[i]
			}
			segStd[s] = stat.StdDev(residual, nil)
		}

		report[ch] = ChannelQC{
			Channel:        ch,
			RawStdDev:      stat.StdDev(raw, nil),
			StackedStdDev:  stat.StdDev(trace, nil),
			ResidualStdDev: stat.Mean(segStd, nil),
		}
	}

	if cfg.LineFrequency == 0 {
		return report, nil
	}

	// First raw segment of every channel, gathered channel-major.
	firstSegments := make([]float32, cfg.Channels*seg)
	for ch := range cfg.Channels {
		copy(firstSegments[ch*seg:(ch+1)*seg], res.Raw[ch*block:ch*block+seg])
	}

	line := []float32{float32(cfg.LineFrequency)}
	before := make([]float32, cfg.Channels)
	after := make([]float32, cfg.Channels)
	if err := k.Spectrum(ctx, firstSegments, before, cfg.Channels, seg, float32(cfg.SampleRate), line); err != nil {
		return nil, err
	}
	if err := k.Spectrum(ctx, res.Stacked, after, cfg.Channels, seg, float32(cfg.SampleRate), line); err != nil {
		return nil, err
	}

	for ch := range report {
		b := math.Max(float64(before[ch]), minMagnitude)
		a := math.Max(float64(after[ch]), minMagnitude)
		report[ch].LineRejectionDB = decibelFactor * math.Log10(b/a)
	}
	return report, nil
}

func widen(dst []float64, src []float32) {
	for i, v := range src {
		dst[i] = float64(v)
	}
}
