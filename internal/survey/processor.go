package survey

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	geodsp "github.com/tphakala/go-geodsp"
)

// Stage identifies one step of the workflow.
type Stage int

// Workflow stages in execution order.
const (
	StageLoad Stage = iota
	StageFilter
	StageStack
	StageSpectrum
	StageResistivity
	StageSection
	StageQC
)

var stageNames = [...]string{"load", "filter", "stack", "spectrum", "resistivity", "section", "qc"}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Stages lists every stage in execution order.
func Stages() []Stage {
	return []Stage{StageLoad, StageFilter, StageStack, StageSpectrum, StageResistivity, StageSection, StageQC}
}

// ProgressFunc is called with the number of completed units of a stage out
// of total. Stages that run as one kernel call report 0/1 then 1/1.
type ProgressFunc func(stage Stage, done, total int)

// Options tune a Processor.
type Options struct {
	// Logger receives the workflow log; nil uses the logrus standard logger.
	Logger *logrus.Logger

	// Progress, when set, is called as stages advance.
	Progress ProgressFunc
}

// Processor runs the survey workflow for one configuration.
type Processor struct {
	cfg      *Config
	kernels  *geodsp.Kernels
	log      *logrus.Entry
	progress ProgressFunc
	runID    string
}

// NewProcessor validates cfg and prepares the kernels.
func NewProcessor(cfg *Config, opts Options) (*Processor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kernels, err := geodsp.New(&geodsp.Config{Workers: cfg.Workers, EnableParallel: true})
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	runID := uuid.NewString()

	progress := opts.Progress
	if progress == nil {
		progress = func(Stage, int, int) {}
	}

	return &Processor{
		cfg:      cfg,
		kernels:  kernels,
		log:      logger.WithField("run_id", runID),
		progress: progress,
		runID:    runID,
	}, nil
}

// RunID returns the identifier attached to every log entry of this processor.
func (p *Processor) RunID() string {
	return p.runID
}

// Run executes every stage and returns the products.
func (p *Processor) Run(ctx context.Context) (*Result, error) {
	cfg := p.cfg
	start := time.Now()
	res := &Result{
		RunID:             p.runID,
		SampleRate:        cfg.SampleRate,
		Channels:          cfg.Channels,
		SamplesPerSegment: cfg.SamplesPerSegment(),
		StageDurations:    make(map[Stage]time.Duration),
	}

	p.log.WithFields(logrus.Fields{
		"function":    "Run",
		"input":       cfg.Input,
		"channels":    cfg.Channels,
		"segments":    cfg.Segments,
		"sample_rate": cfg.SampleRate,
		"simd":        p.kernels.Info().SIMDType,
		"workers":     p.kernels.Workers(),
	}).Info("Starting survey processing")

	steps := []struct {
		stage Stage
		fn    func(context.Context, *Result) error
	}{
		{StageLoad, p.load},
		{StageFilter, p.filter},
		{StageStack, p.stack},
		{StageSpectrum, p.spectrum},
		{StageResistivity, p.resistivity},
		{StageSection, p.section},
		{StageQC, p.qc},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t0 := time.Now()
		if err := step.fn(ctx, res); err != nil {
			p.log.WithFields(logrus.Fields{
				"function": "Run",
				"stage":    step.stage.String(),
				"error":    err.Error(),
			}).Error("Survey stage failed")
			return nil, fmt.Errorf("%s: %w", step.stage, err)
		}
		res.StageDurations[step.stage] = time.Since(t0)

		p.log.WithFields(logrus.Fields{
			"function": "Run",
			"stage":    step.stage.String(),
			"elapsed":  res.StageDurations[step.stage].String(),
		}).Debug("Stage completed")
	}

	p.log.WithFields(logrus.Fields{
		"function": "Run",
		"elapsed":  time.Since(start).String(),
	}).Info("Survey processing finished")

	return res, nil
}

func (p *Processor) load(_ context.Context, res *Result) error {
	p.progress(StageLoad, 0, 1)

	total := p.cfg.Channels * p.cfg.Segments * res.SamplesPerSegment
	res.Raw = make([]float32, total)
	n, err := geodsp.LoadRawSamples(p.cfg.Input, res.Raw)
	if err != nil {
		return err
	}
	if n < total {
		p.log.WithFields(logrus.Fields{
			"function": "load",
			"expected": total,
			"read":     n,
		}).Warn("Input shorter than the configured survey; missing samples are zero")
	}
	res.SamplesRead = n

	p.progress(StageLoad, 1, 1)
	return nil
}

// filter notches every segment of every channel. Each segment starts from a
// zero state, matching how the segments are stacked afterwards.
func (p *Processor) filter(ctx context.Context, res *Result) error {
	sos := p.cfg.flatSOS()
	numSections := len(p.cfg.SOS)
	seg := res.SamplesPerSegment
	block := p.cfg.Segments * seg

	res.Filtered = make([]float32, len(res.Raw))
	state := make([]float32, p.cfg.Segments*numSections*geodsp.StatePerSection)

	for ch := range p.cfg.Channels {
		p.progress(StageFilter, ch, p.cfg.Channels)
		clear(state)
		in := res.Raw[ch*block : (ch+1)*block]
		out := res.Filtered[ch*block : (ch+1)*block]
		if err := p.kernels.FilterMultichannel(ctx, in, out, p.cfg.Segments, seg, numSections, sos, state); err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
	}
	p.progress(StageFilter, p.cfg.Channels, p.cfg.Channels)
	return nil
}

func (p *Processor) stack(ctx context.Context, res *Result) error {
	seg := res.SamplesPerSegment
	block := p.cfg.Segments * seg
	res.Stacked = make([]float32, p.cfg.Channels*seg)

	for ch := range p.cfg.Channels {
		p.progress(StageStack, ch, p.cfg.Channels)
		segments := res.Filtered[ch*block : (ch+1)*block]
		if err := p.kernels.Stack(ctx, segments, res.Stacked[ch*seg:(ch+1)*seg], p.cfg.Segments, seg); err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
	}
	p.progress(StageStack, p.cfg.Channels, p.cfg.Channels)
	return nil
}

func (p *Processor) spectrum(ctx context.Context, res *Result) error {
	p.progress(StageSpectrum, 0, 1)

	freqs, err := p.frequencies()
	if err != nil {
		return err
	}
	res.Frequencies = freqs
	res.Magnitudes = make([]float32, p.cfg.Channels*len(freqs))

	err = p.kernels.Spectrum(ctx, res.Stacked, res.Magnitudes,
		p.cfg.Channels, res.SamplesPerSegment, float32(p.cfg.SampleRate), freqs)
	if err != nil {
		return err
	}

	p.progress(StageSpectrum, 1, 1)
	return nil
}

func (p *Processor) frequencies() ([]float32, error) {
	plan := p.cfg.Frequencies
	if len(plan.List) > 0 {
		freqs := make([]float32, len(plan.List))
		for i, f := range plan.List {
			freqs[i] = float32(f)
		}
		return freqs, nil
	}
	return geodsp.LogSpacedFrequencies(plan.Min, plan.Max, plan.Count)
}

// resistivity relates every channel to the magnetic reference channel.
func (p *Processor) resistivity(_ context.Context, res *Result) error {
	nf := len(res.Frequencies)
	magH := res.channelMagnitudes(p.cfg.MagneticChannel)
	res.Resistivity = make([]float32, p.cfg.Channels*nf)

	for ch := range p.cfg.Channels {
		p.progress(StageResistivity, ch, p.cfg.Channels)
		dst := res.Resistivity[ch*nf : (ch+1)*nf]
		if err := geodsp.ApparentResistivity(res.channelMagnitudes(ch), magH, res.Frequencies, dst); err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
	}
	res.Sounding = res.Resistivity[p.cfg.ElectricChannel*nf : (p.cfg.ElectricChannel+1)*nf]

	p.progress(StageResistivity, p.cfg.Channels, p.cfg.Channels)
	return nil
}

func (p *Processor) section(_ context.Context, res *Result) error {
	p.progress(StageSection, 0, 1)

	rows, cols := p.cfg.Section.Rows, p.cfg.Section.Cols
	res.Section = make([]float32, rows*cols)
	res.SectionRows, res.SectionCols = rows, cols
	if err := geodsp.InterpolateGrid(res.Resistivity, p.cfg.Channels, len(res.Frequencies), res.Section, rows, cols); err != nil {
		return err
	}

	lo, hi := minMax(res.Frequencies)
	freqs, err := geodsp.LogSpacedFrequencies(float64(lo), float64(hi), cols)
	if err != nil {
		return err
	}
	res.SectionFrequencies = freqs

	p.progress(StageSection, 1, 1)
	return nil
}

func (p *Processor) qc(ctx context.Context, res *Result) error {
	p.progress(StageQC, 0, 1)

	report, err := buildQC(ctx, p.kernels, res, p.cfg)
	if err != nil {
		return err
	}
	res.QC = report

	for _, c := range report {
		p.log.WithFields(logrus.Fields{
			"function":          "qc",
			"channel":           c.Channel,
			"line_rejection_db": c.LineRejectionDB,
			"residual_std":      c.ResidualStdDev,
		}).Debug("Channel QC")
	}

	p.progress(StageQC, 1, 1)
	return nil
}

func minMax(v []float32) (lo, hi float32) {
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}
