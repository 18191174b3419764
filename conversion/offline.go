package conversion

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/voiceshift/logger"
	"github.com/kbukum/voiceshift/observability"
	"github.com/kbukum/voiceshift/pipeline"
	"github.com/kbukum/voiceshift/segment"
)

// SegmentResult reports one processed segment.
type SegmentResult struct {
	Index   int
	Segment segment.Segment
	Elapsed time.Duration
}

// OfflineOption configures an Offline converter.
type OfflineOption func(*Offline)

// WithOnSegment registers a callback invoked after each segment.
func WithOnSegment(fn func(SegmentResult)) OfflineOption {
	return func(o *Offline) { o.onSegment = fn }
}

// Offline converts whole recordings, leaving silence untouched.
type Offline struct {
	conv      *Converter
	onSegment func(SegmentResult)
	log       *logger.Logger
}

// NewOffline creates an offline converter on top of conv.
func NewOffline(conv *Converter, opts ...OfflineOption) *Offline {
	o := &Offline{conv: conv, log: logger.Get("conversion").WithComponent("offline")}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Converter returns the underlying converter.
func (o *Offline) Converter() *Converter { return o.conv }

// Process splits audio on silence, converts the speech segments with
// slice.PadSeconds of padding and writes zeros for silence. The result
// always has len(audio) samples.
func (o *Offline) Process(ctx context.Context, audio []float32, p Params, slice SliceConfig) ([]float32, error) {
	if err := slice.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	id, err := o.conv.SpeakerID(p.Speaker)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "conversion.offline")
	defer span.End()
	observability.SetSpanAttribute(ctx, "audio.samples", len(audio))
	observability.SetSpanAttribute(ctx, "speaker.id", id)

	ref := segment.Peak
	if slice.AbsoluteThresh {
		ref = segment.Absolute
	}
	cfg := segment.ConfigFor(o.conv.sampleRate, slice.ChunkSeconds, slice.DBThresh, ref)
	pad := int(float64(o.conv.sampleRate) * slice.PadSeconds)

	index := 0
	converted := pipeline.Map(segment.Split(audio, cfg), func(ctx context.Context, seg segment.Segment) ([]float32, error) {
		start := time.Now()
		o.log.Debug(fmt.Sprintf("Chunk: %s", seg), logger.Fields(logger.FieldSegment, seg.String()))

		var out []float32
		if seg.IsSpeech {
			var err error
			out, err = o.conv.convert(ctx, seg.Audio, p, id, pad)
			if err != nil {
				return nil, fmt.Errorf("convert %s: %w", seg, err)
			}
		} else {
			out = make([]float32, seg.Duration())
		}
		if o.onSegment != nil {
			o.onSegment(SegmentResult{Index: index, Segment: seg.WithAudio(out), Elapsed: time.Since(start)})
		}
		index++
		return out, nil
	})

	result := make([]float32, 0, len(audio))
	err = pipeline.ForEach(ctx, converted, func(_ context.Context, out []float32) error {
		result = append(result, out...)
		return nil
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	return fitLength(result, len(audio)), nil
}

// fitLength truncates or zero-pads x to n samples.
func fitLength(x []float32, n int) []float32 {
	if len(x) >= n {
		return x[:n]
	}
	return append(x, make([]float32, n-len(x))...)
}
