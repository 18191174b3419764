package conversion

import (
	"context"
	"fmt"

	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/logger"
	"github.com/kbukum/voiceshift/synthesis"
)

// DefaultPadSeconds is the silence added around speech before synthesis.
const DefaultPadSeconds = 0.5

// Converter converts one buffer at a time and keeps its length.
type Converter struct {
	backend    synthesis.Provider
	sampleRate int
	speakers   *synthesis.Speakers
	padSeconds float64
	log        *logger.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithPadSeconds sets the padding Convert applies on each side.
func WithPadSeconds(s float64) Option {
	return func(c *Converter) {
		if s >= 0 {
			c.padSeconds = s
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.log = l
		}
	}
}

// NewConverter creates a converter over backend for audio at sampleRate.
// speakers may be nil for single-speaker models.
func NewConverter(backend synthesis.Provider, sampleRate int, speakers *synthesis.Speakers, opts ...Option) (*Converter, error) {
	if backend == nil {
		return nil, errors.Configuration("conversion: backend is required")
	}
	if sampleRate <= 0 {
		return nil, errors.Configuration("conversion: sample rate must be positive (got %d)", sampleRate)
	}
	c := &Converter{
		backend:    backend,
		sampleRate: sampleRate,
		speakers:   speakers,
		padSeconds: DefaultPadSeconds,
		log:        logger.Get("conversion"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SampleRate is the rate the converter operates at.
func (c *Converter) SampleRate() int { return c.sampleRate }

// Backend returns the synthesis provider.
func (c *Converter) Backend() synthesis.Provider { return c.backend }

// Speakers returns the speaker table, possibly nil.
func (c *Converter) Speakers() *synthesis.Speakers { return c.speakers }

// SpeakerID resolves sp against the speaker table.
func (c *Converter) SpeakerID(sp synthesis.Speaker) (int, error) {
	return c.speakers.Resolve(sp)
}

// Convert pads audio with the configured silence, synthesizes and trims
// the result back to len(audio).
func (c *Converter) Convert(ctx context.Context, audio []float32, p Params) ([]float32, error) {
	return c.ConvertPadded(ctx, audio, p, c.padSeconds)
}

// ConvertRaw synthesizes audio without padding. The result still has
// len(audio) samples.
func (c *Converter) ConvertRaw(ctx context.Context, audio []float32, p Params) ([]float32, error) {
	return c.ConvertPadded(ctx, audio, p, 0)
}

// ConvertPadded is Convert with an explicit padding in seconds.
func (c *Converter) ConvertPadded(ctx context.Context, audio []float32, p Params, padSeconds float64) ([]float32, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	id, err := c.SpeakerID(p.Speaker)
	if err != nil {
		return nil, err
	}
	return c.convert(ctx, audio, p, id, int(float64(c.sampleRate)*padSeconds))
}

func (c *Converter) convert(ctx context.Context, audio []float32, p Params, speakerID, pad int) ([]float32, error) {
	n := len(audio)
	if n == 0 {
		return []float32{}, nil
	}
	if pad < 0 {
		pad = 0
	}
	in := make([]float32, n+2*pad)
	copy(in[pad:], audio)

	out, err := c.backend.Synthesize(ctx, synthesis.Request{
		Audio:         in,
		SampleRate:    c.sampleRate,
		SpeakerID:     speakerID,
		Transpose:     p.Transpose,
		ClusterRatio:  p.ClusterRatio,
		NoiseScale:    p.NoiseScale,
		AutoPredictF0: p.AutoPredictF0,
	})
	if err != nil {
		return nil, err
	}
	return c.fit(out, n), nil
}

// fit keeps the centred n samples of out. When out is shorter than n the
// tail is zero-filled.
func (c *Converter) fit(out []float32, n int) []float32 {
	cut := (len(out) - n) / 2
	if cut < 0 {
		cut = 0
	}
	res := make([]float32, n)
	copied := copy(res, out[cut:])
	if copied < n {
		c.log.Warn(fmt.Sprintf("Backend returned %d samples for a %d sample segment, padding with silence", len(out), n),
			logger.Fields(logger.FieldOperation, "convert", "missing_samples", n-copied))
	}
	return res
}
