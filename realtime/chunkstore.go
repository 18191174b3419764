package realtime

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kbukum/voiceshift/conversion"
	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/logger"
	"github.com/kbukum/voiceshift/pipeline"
	"github.com/kbukum/voiceshift/segment"
)

// ChunkStoreState is the per-session state of a ChunkStore.
type ChunkStoreState struct {
	// Pending holds raw input not yet part of a completed segment.
	Pending []float32
	// Store holds segments awaiting emission, oldest first. Speech is
	// already converted; silence is kept raw and only its length matters.
	Store []segment.Segment
}

// Stats describes the size of a ChunkStore's buffers.
type Stats struct {
	PendingSamples int
	StoredSegments int
	StoredSamples  int
	CompressRate   float64
}

// ChunkStore defers trailing speech until it is complete, converts whole
// speech segments and drains a segment store block by block, shortening
// silence so that output keeps pace with input.
type ChunkStore struct {
	base
	state    ChunkStoreState
	conv     *conversion.Converter
	params   conversion.Params
	segCfg   segment.Config
	lastRate float64
}

var _ Reconciler = (*ChunkStore)(nil)

// NewChunkStore creates a chunk-store reconciler. Segmentation always uses
// absolute thresholds; slice.AbsoluteThresh and slice.PadSeconds are
// ignored.
func NewChunkStore(conv *conversion.Converter, p conversion.Params, slice conversion.SliceConfig, opts ...Option) (*ChunkStore, error) {
	if conv == nil {
		return nil, errors.Configuration("realtime: converter is required")
	}
	cfg := segment.ConfigFor(conv.SampleRate(), slice.ChunkSeconds, slice.DBThresh, segment.Absolute)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ChunkStore{
		base:     newBase("chunk_store", opts),
		conv:     conv,
		params:   p,
		segCfg:   cfg,
		lastRate: 1,
	}, nil
}

// State returns a copy of the session state.
func (c *ChunkStore) State() ChunkStoreState {
	return ChunkStoreState{
		Pending: append([]float32(nil), c.state.Pending...),
		Store:   append([]segment.Segment(nil), c.state.Store...),
	}
}

// Stats reports buffer sizes and the most recent compress rate.
func (c *ChunkStore) Stats() Stats {
	stored := 0
	for _, s := range c.state.Store {
		stored += s.Duration()
	}
	return Stats{
		PendingSamples: len(c.state.Pending),
		StoredSegments: len(c.state.Store),
		StoredSamples:  stored,
		CompressRate:   c.lastRate,
	}
}

// Reset drops pending input and stored segments.
func (c *ChunkStore) Reset() {
	c.state = ChunkStoreState{}
	c.lastRate = 1
}

// Process appends block to the pending input and returns exactly
// len(block) samples drained from the store. On error the state is left
// as it was before the call.
func (c *ChunkStore) Process(ctx context.Context, block []float32) ([]float32, error) {
	start := time.Now()

	buf := make([]float32, 0, len(c.state.Pending)+len(block))
	buf = append(buf, c.state.Pending...)
	buf = append(buf, block...)
	if len(buf) == 0 {
		return []float32{}, nil
	}

	segs, err := pipeline.Collect(ctx, segment.Split(buf, c.segCfg))
	if err != nil {
		return nil, err
	}

	var pending []float32
	if last := segs[len(segs)-1]; last.IsSpeech {
		pending = append([]float32(nil), last.Audio...)
		segs = segs[:len(segs)-1]
	}

	completed := make([]segment.Segment, 0, len(segs))
	for _, seg := range segs {
		if seg.IsSpeech {
			out, err := c.conv.ConvertRaw(ctx, seg.Audio, c.params)
			if err != nil {
				return nil, fmt.Errorf("convert %s: %w", seg, err)
			}
			seg = seg.WithAudio(out)
		}
		completed = append(completed, seg)
	}

	c.state.Pending = pending
	c.state.Store = append(c.state.Store, completed...)

	rate := compressRate(c.state.Store, len(block))
	c.lastRate = rate

	var out []float32
	out, c.state.Store = drain(c.state.Store, len(block), rate)

	elapsed := time.Since(start)
	c.audio.RecordCompressRate(ctx, rate)
	c.audio.RecordBlock(ctx, "chunk_store", elapsed)
	c.log.Debug("Processed block", logger.Fields(
		logger.FieldBlockLen, len(block),
		logger.FieldCompressRate, rate,
		"pending", len(c.state.Pending),
		"stored_segments", len(c.state.Store),
		logger.FieldDuration, elapsed.Milliseconds(),
	))
	return out, nil
}

// compressRate is stored silence over the part of the block not covered
// by stored speech. A non-positive denominator or a zero or non-finite
// ratio means no compression.
func compressRate(store []segment.Segment, blockLen int) float64 {
	speech := segment.TotalDuration(store, true)
	silence := segment.TotalDuration(store, false)
	denom := blockLen - speech
	if denom <= 0 {
		return 1
	}
	rate := float64(silence) / float64(denom)
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 1
	}
	return rate
}

// drain emits n samples from the front of store. Speech is emitted as is;
// silence becomes zeros, shortened by rate. A segment that does not fit is
// split and its remainder stays at the front. Output short of n is
// zero-padded.
func drain(store []segment.Segment, n int, rate float64) ([]float32, []segment.Segment) {
	out := make([]float32, 0, n)
	for len(store) > 0 {
		seg := store[0]
		store = store[1:]

		r := rate
		if seg.IsSpeech {
			r = 1
		}
		left := float64(n - len(out))
		dur := float64(seg.Duration())
		durOut := int(math.Min(dur/r, left))
		durIn := int(math.Min(dur, left*r))

		split := seg.Duration() > durIn
		if split {
			var rest segment.Segment
			seg, rest = seg.Split(durIn)
			store = append([]segment.Segment{rest}, store...)
		}

		if seg.IsSpeech {
			out = append(out, seg.Audio...)
		} else {
			out = append(out, make([]float32, durOut)...)
		}
		if split {
			break
		}
	}

	if len(out) > n {
		out = out[:n]
	}
	if len(out) < n {
		out = append(out, make([]float32, n-len(out))...)
	}
	return out, store
}
