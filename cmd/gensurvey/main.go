// Command gensurvey writes a synthetic multichannel survey recording as raw
// little-endian float32, channel by channel, for geoproc to process.
//
// Usage:
//
//	gensurvey -out data/raw/survey_24ch.raw
//	gensurvey -channels 8 -rate 1000 -seconds 3 -line 50 -out site.raw
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	geodsp "github.com/tphakala/go-geodsp"
	"github.com/tphakala/go-geodsp/internal/synth"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	defaults := synth.DefaultSurvey()

	fs := flag.NewFlagSet("gensurvey", flag.ContinueOnError)
	var (
		output     = fs.String("out", defaultOutput, "Output raw float32 file")
		channels   = fs.Int("channels", defaults.Channels, "Number of channels")
		sampleRate = fs.Float64("rate", defaults.Base.SampleRate, "Sample rate in Hz")
		seconds    = fs.Float64("seconds", defaultSeconds, "Recording length per channel in seconds")
		target     = fs.Float64("target", defaults.Base.TargetFreq, "Target signal frequency in Hz")
		targetAmp  = fs.Float64("target-amp", defaults.Base.TargetAmp, "Target signal amplitude")
		lineFreq   = fs.Float64("line", defaultLineFreq, "Power-line frequency in Hz")
		lineStep   = fs.Float64("line-amp", defaults.LineAmpPerChan, "Line amplitude added per channel")
		noise      = fs.Float64("noise", defaults.Base.NoiseSigma, "White noise standard deviation")
		seed       = fs.Uint64("seed", defaultSeed, "Random seed")
		verbose    = fs.Bool("v", false, "Verbose output")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	sv := synth.Survey{
		Channels:       *channels,
		SamplesPerChan: int(*sampleRate * *seconds),
		Base: synth.Signal{
			SampleRate: *sampleRate,
			TargetFreq: *target,
			TargetAmp:  *targetAmp,
			LineFreq:   *lineFreq,
			NoiseSigma: *noise,
		},
		LineAmpPerChan: *lineStep,
	}

	log.WithFields(logrus.Fields{
		"function": "run",
		"channels": sv.Channels,
		"samples":  sv.SamplesPerChan,
		"rate":     sv.Base.SampleRate,
		"seed":     *seed,
	}).Debug("Generating survey")

	data, err := synth.NewGenerator(*seed).Generate(sv)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(*output); dir != "" {
		if err := os.MkdirAll(dir, outDirPerm); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := geodsp.WriteRawSamples(*output, data); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("  %d channels x %d samples at %g Hz\n", sv.Channels, sv.SamplesPerChan, sv.Base.SampleRate)
	fmt.Printf("  Size: %.1f KB\n", float64(len(data)*bytesPerSample)/bytesPerKilobyte)
	return nil
}
