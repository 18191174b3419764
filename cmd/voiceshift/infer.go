package main

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/kbukum/voiceshift/audio"
	"github.com/kbukum/voiceshift/bootstrap"
	"github.com/kbukum/voiceshift/conversion"
	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/logger"
)

func runInfer(ctx context.Context, args []string) error {
	fs := newFlagSet("infer")
	inputs := fs.StringArrayP("input", "i", nil, "input WAV file; repeat for several")
	output := fs.StringP("output", "o", "", "output WAV file (default: <input>.out.wav, single input only)")
	cfg, err := fs.load(args)
	if err != nil {
		return err
	}
	if len(*inputs) == 0 {
		return errors.InvalidInput("input", "at least one --input is required")
	}
	if *output != "" && len(*inputs) > 1 {
		return errors.InvalidInput("output", "--output needs exactly one --input")
	}

	a, err := bootstrap.NewApp(cfg, bootstrap.WithoutSummary())
	if err != nil {
		return err
	}
	eng, err := buildEngine(ctx, a)
	if err != nil {
		return err
	}

	log := a.Logger.WithComponent("infer")
	offline := conversion.NewOffline(eng.conv, conversion.WithOnSegment(func(r conversion.SegmentResult) {
		log.Debug("Segment converted", logger.Fields(
			logger.FieldSegment, r.Index,
			"speech", r.Segment.IsSpeech,
			logger.FieldDuration, r.Elapsed.Milliseconds(),
		))
	}))
	p := cfg.Voice.Params()

	return a.RunTask(ctx, func(ctx context.Context) error {
		for _, in := range *inputs {
			out := *output
			if out == "" {
				out = outputPath(in)
			}
			if err := inferFile(ctx, offline, in, out, p, cfg.Slice, log); err != nil {
				return err
			}
		}
		return nil
	})
}

// inferFile converts one recording at the model rate.
func inferFile(ctx context.Context, o *conversion.Offline, in, out string, p conversion.Params, slice conversion.SliceConfig, log *logger.Logger) error {
	start := time.Now()
	clip, err := audio.ReadWAV(in)
	if err != nil {
		return err
	}
	rate := o.Converter().SampleRate()
	samples := audio.Resample(clip.Mono(), clip.SampleRate, rate)

	converted, err := o.Process(ctx, samples, p, slice)
	if err != nil {
		return err
	}
	if err := audio.WriteWAV(out, converted, rate); err != nil {
		return err
	}
	log.Info("Converted "+in, logger.Fields(
		"output", out,
		"seconds", float64(len(converted))/float64(rate),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return nil
}

// outputPath puts the result next to in as <stem>.out.wav.
func outputPath(in string) string {
	stem := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(filepath.Dir(in), stem+".out.wav")
}
