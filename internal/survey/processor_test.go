package survey

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	geodsp "github.com/tphakala/go-geodsp"
	"github.com/tphakala/go-geodsp/internal/synth"
	"github.com/tphakala/go-geodsp/internal/testutil"
)

// testSurvey writes a small synthetic survey and returns a config for it.
// Each channel is recorded as one continuous trace and cut into segments,
// the way the acquisition front end lays files out.
func testSurvey(t *testing.T) *Config {
	t.Helper()

	const (
		sampleRate = 1000.0
		channels   = 3
		segments   = 6
		segSeconds = 0.5
	)
	samplesPerChan := int(sampleRate*segSeconds) * segments

	data, err := synth.NewGenerator(3).Generate(synth.Survey{
		Channels:       channels,
		SamplesPerChan: samplesPerChan,
		Base: synth.Signal{
			SampleRate: sampleRate,
			TargetFreq: 2,
			TargetAmp:  1,
			LineFreq:   60,
			NoiseSigma: 0.3,
		},
		LineAmpPerChan: 0.5,
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "survey.raw")
	require.NoError(t, geodsp.WriteRawSamples(path, data))

	return &Config{
		Input:           path,
		SampleRate:      sampleRate,
		Channels:        channels,
		Segments:        segments,
		SegmentSeconds:  segSeconds,
		LineFrequency:   60,
		SOS:             [][]float64{testutil.Notch(60, 5, sampleRate)},
		Frequencies:     FrequencyPlan{Min: 2, Max: 200, Count: 8},
		ElectricChannel: 0,
		MagneticChannel: 1,
		Section:         SectionSize{Rows: 7, Cols: 15},
		Workers:         2,
	}
}

func TestProcessor_Run(t *testing.T) {
	cfg := testSurvey(t)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	var (
		mu       sync.Mutex
		finished = make(map[Stage]bool)
	)
	p, err := NewProcessor(cfg, Options{
		Logger: logger,
		Progress: func(stage Stage, done, total int) {
			mu.Lock()
			defer mu.Unlock()
			if done == total {
				finished[stage] = true
			}
		},
	})
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	seg := cfg.SamplesPerSegment()
	nf := cfg.Frequencies.Count

	assert.Equal(t, p.RunID(), res.RunID)
	assert.Equal(t, cfg.Channels*cfg.Segments*seg, res.SamplesRead)
	assert.Len(t, res.Stacked, cfg.Channels*seg)
	assert.Len(t, res.Frequencies, nf)
	assert.Len(t, res.Magnitudes, cfg.Channels*nf)
	assert.Len(t, res.Resistivity, cfg.Channels*nf)
	assert.Equal(t, res.Resistivity[:nf], res.Sounding)
	assert.Len(t, res.Section, 7*15)
	assert.Len(t, res.SectionFrequencies, 15)
	assert.InDelta(t, 2, res.SectionFrequencies[0], 1e-4)
	assert.InDelta(t, 200, res.SectionFrequencies[14], 1e-3)
	testutil.AssertNoNaNOrInf(t, res.Section)

	// Section corners equal the resistivity corners.
	assert.InDelta(t, res.Resistivity[0], res.Section[0], 1e-3)
	assert.InDelta(t, res.Resistivity[len(res.Resistivity)-1], res.Section[len(res.Section)-1], 1e-3)

	// The magnetic reference relates to itself with |E/H| = 1: rho = 0.2/f.
	for i, f := range res.Frequencies {
		testutil.AssertRelativeError(t, 0.2/float64(f), float64(res.Resistivity[nf+i]), 1e-3)
	}

	require.Len(t, res.QC, cfg.Channels)
	for _, c := range res.QC {
		assert.Greater(t, c.LineRejectionDB, 10.0, "channel %d", c.Channel)
		assert.Positive(t, c.ResidualStdDev)
		assert.Less(t, c.StackedStdDev, c.RawStdDev)
	}

	assert.Len(t, res.StageDurations, len(Stages()))
	for _, s := range Stages() {
		assert.True(t, finished[s], "stage %s never completed", s)
	}

	var sawStart bool
	for _, e := range hook.AllEntries() {
		assert.Equal(t, p.RunID(), e.Data["run_id"])
		if e.Message == "Starting survey processing" {
			sawStart = true
		}
	}
	assert.True(t, sawStart)
}

func TestProcessor_ShortInputWarns(t *testing.T) {
	cfg := testSurvey(t)
	require.NoError(t, geodsp.WriteRawSamples(cfg.Input, make([]float32, 100)))

	logger, hook := test.NewNullLogger()
	p, err := NewProcessor(cfg, Options{Logger: logger})
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, res.SamplesRead)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestProcessor_MissingInput(t *testing.T) {
	cfg := testSurvey(t)
	cfg.Input = filepath.Join(t.TempDir(), "absent.raw")

	logger, _ := test.NewNullLogger()
	p, err := NewProcessor(cfg, Options{Logger: logger})
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.ErrorIs(t, err, geodsp.ErrOpenFailed)
	assert.Contains(t, err.Error(), "load")
}

func TestProcessor_Cancelled(t *testing.T) {
	cfg := testSurvey(t)
	logger, _ := test.NewNullLogger()
	p, err := NewProcessor(cfg, Options{Logger: logger})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewProcessor_Invalid(t *testing.T) {
	_, err := NewProcessor(nil, Options{})
	require.ErrorIs(t, err, ErrInvalidConfig)

	cfg := DefaultConfig()
	cfg.Channels = 0
	_, err = NewProcessor(cfg, Options{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "filter", StageFilter.String())
	assert.Equal(t, "stage(42)", Stage(42).String())
}
