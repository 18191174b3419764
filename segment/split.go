package segment

import (
	"context"
	"math"

	"github.com/kbukum/voiceshift/pipeline"
)

// amin is the amplitude floor applied before taking logarithms.
const amin = 1e-5

// Split partitions audio into an ordered, lazy sequence of segments.
// Speech boundaries are found with Intervals; the gaps between them become
// silence. A buffer with no detected speech yields one silence segment.
// Segments share memory with audio but are capacity-clipped, so appending
// to one never writes into its neighbour.
func Split(audio []float32, cfg Config) *pipeline.Pipeline[Segment] {
	return pipeline.FromFunc(func(_ context.Context) pipeline.Iterator[Segment] {
		if err := cfg.Validate(); err != nil {
			return pipeline.IteratorFunc[Segment](func(context.Context) (Segment, bool, error) {
				return Segment{}, false, err
			})
		}
		return &splitIter{audio: audio, intervals: Intervals(audio, cfg)}
	})
}

// Collect runs Split eagerly.
func Collect(audio []float32, cfg Config) ([]Segment, error) {
	return pipeline.Collect(context.Background(), Split(audio, cfg))
}

type splitIter struct {
	audio     []float32
	intervals [][2]int
	next      int // index into intervals
	pos       int // first sample not yet emitted
}

func (it *splitIter) Next(_ context.Context) (Segment, bool, error) {
	n := len(it.audio)
	if it.pos >= n {
		return Segment{}, false, nil
	}
	if it.next < len(it.intervals) {
		iv := it.intervals[it.next]
		if it.pos < iv[0] {
			seg := New(false, it.audio[it.pos:iv[0]:iv[0]], it.pos)
			it.pos = iv[0]
			return seg, true, nil
		}
		seg := New(true, it.audio[iv[0]:iv[1]:iv[1]], iv[0])
		it.pos = iv[1]
		it.next++
		return seg, true, nil
	}
	seg := New(false, it.audio[it.pos:n:n], it.pos)
	it.pos = n
	return seg, true, nil
}

func (it *splitIter) Close() error { return nil }

// Intervals returns the [start, end) sample ranges classified as speech.
//
// Frames are centred: the signal is zero-padded by FrameLength/2 on both
// sides and frame t is centred on sample t*HopLength. A frame is speech when
// 20*log10(rms/ref) > -TopDB. A run of speech frames f0..f1 maps to samples
// [f0*hop, (f1+1)*hop), clipped to the buffer. Intervals never touch, since
// two runs are separated by at least one silent frame.
func Intervals(audio []float32, cfg Config) [][2]int {
	if len(audio) == 0 || cfg.Validate() != nil {
		return nil
	}
	rms := FrameRMS(audio, cfg.FrameLength, cfg.HopLength)

	var ref float64
	switch cfg.Reference {
	case Absolute:
		ref = 1
	default:
		for _, r := range rms {
			ref = math.Max(ref, r)
		}
		// Nothing to be relative to: an all-zero buffer is silence.
		if ref < amin {
			return nil
		}
	}

	refDB := 20 * math.Log10(math.Max(amin, ref))
	threshold := -cfg.TopDB
	n := len(audio)
	hop := cfg.HopLength

	var out [][2]int
	start := -1
	for t, r := range rms {
		speech := 20*math.Log10(math.Max(amin, r))-refDB > threshold
		switch {
		case speech && start < 0:
			start = t
		case !speech && start >= 0:
			out = appendInterval(out, start*hop, t*hop, n)
			start = -1
		}
	}
	if start >= 0 {
		out = appendInterval(out, start*hop, len(rms)*hop, n)
	}
	return out
}

func appendInterval(out [][2]int, start, end, n int) [][2]int {
	if end > n {
		end = n
	}
	if start >= end {
		return out
	}
	return append(out, [2]int{start, end})
}

// FrameRMS computes centred, zero-padded RMS energy per frame.
func FrameRMS(audio []float32, frameLength, hopLength int) []float64 {
	n := len(audio)
	half := frameLength / 2
	padded := n + 2*half
	if padded < frameLength || hopLength <= 0 {
		return nil
	}
	frames := 1 + (padded-frameLength)/hopLength

	// prefix[i] = sum of squares of audio[:i]
	prefix := make([]float64, n+1)
	for i, s := range audio {
		prefix[i+1] = prefix[i] + float64(s)*float64(s)
	}

	rms := make([]float64, frames)
	for t := 0; t < frames; t++ {
		lo := t*hopLength - half
		hi := lo + frameLength
		if lo < 0 {
			lo = 0
		}
		if hi > n {
			hi = n
		}
		var energy float64
		if hi > lo {
			energy = prefix[hi] - prefix[lo]
		}
		if energy < 0 {
			energy = 0
		}
		rms[t] = math.Sqrt(energy / float64(frameLength))
	}
	return rms
}
