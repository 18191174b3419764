package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/voiceshift/audio"
	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/logger"
	"github.com/kbukum/voiceshift/realtime"
	"github.com/kbukum/voiceshift/validation"
)

// Config selects devices and block geometry.
type Config struct {
	InputDevice    string  `mapstructure:"input_device"`
	OutputDevice   string  `mapstructure:"output_device"`
	BlockSeconds   float64 `mapstructure:"block_seconds"`
	InputChannels  int     `mapstructure:"input_channels"`
	OutputChannels int     `mapstructure:"output_channels"`
}

// DefaultBlockSeconds is the callback block duration.
const DefaultBlockSeconds = 0.5

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.BlockSeconds == 0 {
		c.BlockSeconds = DefaultBlockSeconds
	}
	if c.InputChannels == 0 {
		c.InputChannels = 1
	}
	if c.OutputChannels == 0 {
		c.OutputChannels = 1
	}
}

// Validate checks the block duration and channel counts.
func (c *Config) Validate() error {
	v := validation.New().Positive("block_seconds", c.BlockSeconds)
	v.Custom(c.InputChannels > 0, "input_channels", "must be positive")
	v.Custom(c.OutputChannels > 0, "output_channels", "must be positive")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// FramesPerBuffer is the block length in samples at sampleRate.
func (c *Config) FramesPerBuffer(sampleRate int) int {
	return int(c.BlockSeconds * float64(sampleRate))
}

// Stream feeds captured blocks through a reconciler into playback.
type Stream struct {
	driver     Driver
	reconciler realtime.Reconciler
	cfg        Config
	sampleRate int
	log        *logger.Logger

	errOnce sync.Once
	errCh   chan error
}

// NewStream creates a stream running at sampleRate.
func NewStream(driver Driver, r realtime.Reconciler, sampleRate int, cfg Config) (*Stream, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if driver == nil || r == nil {
		return nil, errors.Configuration("device: driver and reconciler are required")
	}
	if sampleRate <= 0 || cfg.FramesPerBuffer(sampleRate) <= 0 {
		return nil, errors.Configuration("device: block of %gs at %d Hz is empty", cfg.BlockSeconds, sampleRate)
	}
	return &Stream{
		driver:     driver,
		reconciler: r,
		cfg:        cfg,
		sampleRate: sampleRate,
		log:        logger.Get("device"),
		errCh:      make(chan error, 1),
	}, nil
}

// Run opens the duplex stream and blocks until ctx is done or the
// reconciler fails. A reconciler error stops the stream and is returned.
func (s *Stream) Run(ctx context.Context) error {
	devices, err := s.driver.Devices()
	if err != nil {
		return errors.ServiceUnavailable("audio devices").WithCause(err)
	}
	for _, d := range devices {
		s.log.Debug("Device: " + d.String())
	}
	in, out, err := Resolve(s.driver, s.cfg.InputDevice, s.cfg.OutputDevice, s.log)
	if err != nil {
		return err
	}
	s.log.Info(fmt.Sprintf("Input Device: %s, Output Device: %s", in.Name, out.Name))

	params := StreamParams{
		Input:           in,
		Output:          out,
		InputChannels:   s.cfg.InputChannels,
		OutputChannels:  s.cfg.OutputChannels,
		SampleRate:      float64(s.sampleRate),
		FramesPerBuffer: s.cfg.FramesPerBuffer(s.sampleRate),
	}
	h, err := s.driver.Open(params, s.callback(ctx))
	if err != nil {
		return errors.ServiceUnavailable("audio stream").WithCause(err)
	}
	defer func() { _ = h.Close() }()

	if err := h.Start(); err != nil {
		return errors.ServiceUnavailable("audio stream").WithCause(err)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-s.errCh:
		s.log.WithError(runErr).Error("Stopping stream after reconciler failure")
	}
	if err := h.Stop(); err != nil && runErr == nil {
		runErr = err
	}
	s.reconciler.Reset()
	return runErr
}

func (s *Stream) callback(ctx context.Context) Callback {
	inCh, outCh := s.cfg.InputChannels, s.cfg.OutputChannels
	return func(in, out []float32, flags Flags) {
		if flags != 0 {
			s.log.Warn("Stream status "+flags.String(), logger.Fields(logger.FieldDeviceFlags, flags.Names()))
		}
		s.ProcessBlock(ctx, in, out, inCh, outCh)
	}
}

// ProcessBlock runs one interleaved capture buffer through the reconciler
// and writes the result to every playback channel. After a failure it
// writes silence and reports the error to Run once.
func (s *Stream) ProcessBlock(ctx context.Context, in, out []float32, inChannels, outChannels int) {
	mono := audio.Downmix(in, inChannels)
	res, err := s.reconciler.Process(ctx, mono)
	if err == nil && len(res) != len(out)/outChannels {
		err = errors.ContractViolation("reconciler returned %d samples for a %d frame buffer", len(res), len(out)/outChannels)
	}
	if err != nil {
		for i := range out {
			out[i] = 0
		}
		s.errOnce.Do(func() { s.errCh <- err })
		return
	}
	for i, v := range res {
		for c := 0; c < outChannels; c++ {
			out[i*outChannels+c] = v
		}
	}
}
