// Command geoproc runs the magnetotelluric survey workflow on a raw float32
// recording: notch filtering, stacking, sounding spectrum, apparent
// resistivity and the interpolated section.
//
// Usage:
//
//	geoproc -config survey.yaml -out results/
//	geoproc -input site7.raw -out results/ -wav stacked.wav
//	geoproc -config survey.yaml -workers 4 -progress=false -log-json
//
// Without -config the standard 24-channel, 24 kHz survey layout is assumed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-geodsp/internal/survey"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "YAML survey description (defaults to the 24-channel layout)")
	input := flag.String("input", "", "Raw float32 input file (overrides the config)")
	outDir := flag.String("out", defaultOutDir, "Directory for the raw result files")
	wavPath := flag.String("wav", "", "Also write the stacked traces as a 16-bit WAV file")
	workers := flag.Int("workers", -1, "Kernel workers (0 = all CPUs, -1 = keep the config value)")
	showProgress := flag.Bool("progress", true, "Show per-stage progress bars")
	verbose := flag.Bool("v", false, "Verbose output")
	logJSON := flag.Bool("log-json", false, "Log as JSON")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	logger := newLogger(*verbose, *logJSON)

	cfg := survey.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = survey.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *input != "" {
		cfg.Input = *input
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bars := newStageProgress(*showProgress)
	proc, err := survey.NewProcessor(cfg, survey.Options{
		Logger:   logger,
		Progress: bars.update,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := proc.Run(ctx)
	bars.wait()
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	written, err := writeProducts(*outDir, res)
	if err != nil {
		return err
	}
	if *wavPath != "" {
		if err := writeStackedWAV(*wavPath, res); err != nil {
			return err
		}
		written = append(written, *wavPath)
	}

	logger.WithFields(logrus.Fields{
		"function": "run",
		"run_id":   res.RunID,
		"files":    len(written),
	}).Debug("Results written")

	fmt.Printf("Processed %s (run %s)\n", filepath.Base(cfg.Input), res.RunID)
	fmt.Printf("  %d channels, %d segments of %d samples at %g Hz\n",
		res.Channels, cfg.Segments, res.SamplesPerSegment, res.SampleRate)
	fmt.Printf("  %d sounding frequencies, section %d x %d\n",
		len(res.Frequencies), res.SectionRows, res.SectionCols)
	for _, c := range res.QC {
		if cfg.LineFrequency > 0 {
			fmt.Printf("  ch%02d: line rejection %6.1f dB, residual std %.4g\n",
				c.Channel, c.LineRejectionDB, c.ResidualStdDev)
		}
	}
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(res.SamplesRead)/float64(res.Channels)/res.SampleRate/elapsed.Seconds())
	for _, path := range written {
		fmt.Printf("  wrote %s\n", path)
	}

	return nil
}
