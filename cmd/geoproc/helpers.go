package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	geodsp "github.com/tphakala/go-geodsp"
	"github.com/tphakala/go-geodsp/internal/survey"
)

const (
	defaultOutDir = "results"

	// WAV export
	wavBitDepth  = 16
	wavPCMFormat = 1
	maxInt16     = 32767.0

	// Progress bars
	barWidth   = 64
	etaAgeSecs = 60

	outDirPerm = 0o755
)

// Result files written by writeProducts.
const (
	stackedFile     = "stacked.raw"
	magnitudeFile   = "magnitudes.raw"
	resistivityFile = "resistivity.raw"
	soundingFile    = "sounding.raw"
	sectionFile     = "section.raw"
	frequencyFile   = "frequencies.raw"
)

// newLogger configures logrus for the command line.
func newLogger(verbose, jsonFormat bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	if jsonFormat {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// stageProgress renders one bar per survey stage.
type stageProgress struct {
	mu   sync.Mutex
	p    *mpb.Progress
	bars map[survey.Stage]*mpb.Bar
}

// newStageProgress returns a tracker; when disabled its methods do nothing.
func newStageProgress(enabled bool) *stageProgress {
	sp := &stageProgress{bars: make(map[survey.Stage]*mpb.Bar)}
	if enabled {
		sp.p = mpb.New(mpb.WithWidth(barWidth), mpb.WithOutput(os.Stderr))
	}
	return sp
}

// update is a survey.ProgressFunc.
func (sp *stageProgress) update(stage survey.Stage, done, total int) {
	if sp.p == nil {
		return
	}
	sp.mu.Lock()
	defer sp.mu.Unlock()

	bar, ok := sp.bars[stage]
	if !ok {
		bar = sp.p.AddBar(int64(total),
			mpb.PrependDecorators(
				decor.Name(fmt.Sprintf("%-12s", stage.String()+":")),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
				decor.EwmaETA(decor.ET_STYLE_GO, etaAgeSecs),
			),
		)
		sp.bars[stage] = bar
	}
	bar.SetCurrent(int64(done))
}

// wait completes any bar left open by a failed run and waits for rendering.
func (sp *stageProgress) wait() {
	if sp.p == nil {
		return
	}
	sp.mu.Lock()
	for _, bar := range sp.bars {
		if !bar.Completed() {
			bar.Abort(false)
		}
	}
	sp.mu.Unlock()
	sp.p.Wait()
}

// writeProducts stores every array product as raw float32 in dir and returns
// the written paths.
func writeProducts(dir string, res *survey.Result) ([]string, error) {
	if err := os.MkdirAll(dir, outDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	products := []struct {
		name string
		data []float32
	}{
		{stackedFile, res.Stacked},
		{frequencyFile, res.Frequencies},
		{magnitudeFile, res.Magnitudes},
		{resistivityFile, res.Resistivity},
		{soundingFile, res.Sounding},
		{sectionFile, res.Section},
	}

	written := make([]string, 0, len(products))
	for _, p := range products {
		path := filepath.Join(dir, p.name)
		if err := geodsp.WriteRawSamples(path, p.data); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// writeStackedWAV exports the stacked traces as an interleaved 16-bit WAV,
// one WAV channel per survey channel, normalized to the overall peak.
func writeStackedWAV(path string, res *survey.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return encodeWAV(f, res)
}

func encodeWAV(w io.WriteSeeker, res *survey.Result) error {
	channels := make([][]float32, res.Channels)
	for ch := range channels {
		channels[ch] = res.StackedChannel(ch)
	}

	scale := 1.0
	if peak := peakAmplitude(res.Stacked); peak > 0 {
		scale = 1 / peak
	}

	data := make([]int, res.Channels*res.SamplesPerSegment)
	interleaveInto(channels, data, scale, maxInt16)

	enc := wav.NewEncoder(w, int(res.SampleRate), wavBitDepth, res.Channels, wavPCMFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: res.Channels,
			SampleRate:  int(res.SampleRate),
		},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return nil
}

// peakAmplitude returns the largest absolute sample value.
func peakAmplitude(v []float32) float64 {
	var peak float64
	for _, x := range v {
		peak = math.Max(peak, math.Abs(float64(x)))
	}
	return peak
}

// interleaveInto scales per-channel traces, clamps them to [-1, 1] and writes
// them interleaved into dst as integers. Returns the number of elements
// written, or 0 when dst is too small.
func interleaveInto(channels [][]float32, dst []int, scale, maxVal float64) int {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return 0
	}

	numChannels := len(channels)
	samplesPerChannel := len(channels[0])
	totalLen := samplesPerChannel * numChannels
	if len(dst) < totalLen {
		return 0
	}

	for i := range samplesPerChannel {
		base := i * numChannels
		for ch := range numChannels {
			sample := float64(channels[ch][i]) * scale
			if sample > 1.0 {
				sample = 1.0
			} else if sample < -1.0 {
				sample = -1.0
			}
			dst[base+ch] = int(sample * maxVal)
		}
	}
	return totalLen
}
