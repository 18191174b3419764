package segment

import (
	"math"

	"github.com/kbukum/voiceshift/errors"
)

// Reference selects what frame energy is measured against.
type Reference int

const (
	// Peak measures energy relative to the loudest frame of the buffer.
	Peak Reference = iota
	// Absolute measures energy relative to full scale (1.0).
	Absolute
)

// String returns the reference name.
func (r Reference) String() string {
	switch r {
	case Peak:
		return "peak"
	case Absolute:
		return "absolute"
	default:
		return "unknown"
	}
}

// F0Min is the lowest fundamental frequency the segmenter resolves, in Hz.
// Frames must span enough periods of it to measure voiced energy.
const F0Min = 50.0

// Config controls the short-time energy decision.
type Config struct {
	// TopDB is how far below the reference (in dB) a frame may fall and
	// still count as speech. Positive; the CLI's db_thresh is its negation.
	TopDB float64
	// FrameLength is the number of samples per energy frame.
	FrameLength int
	// HopLength is the number of samples between frame centres.
	HopLength int
	// Reference selects peak-relative or absolute thresholds.
	Reference Reference
}

// Validate rejects configurations the segmenter cannot run with.
func (c Config) Validate() error {
	if c.FrameLength <= 0 {
		return errors.Configuration("segment: frame length must be positive (got %d)", c.FrameLength)
	}
	if c.HopLength <= 0 {
		return errors.Configuration("segment: hop length must be positive (got %d)", c.HopLength)
	}
	if c.TopDB < 0 || math.IsNaN(c.TopDB) {
		return errors.Configuration("segment: top_db must be non-negative (got %g)", c.TopDB)
	}
	if c.Reference != Peak && c.Reference != Absolute {
		return errors.Configuration("segment: unknown reference mode %d", c.Reference)
	}
	return nil
}

// ChunkLengthMin returns the hop size derived from the f0 floor:
// int(min(sr/F0Min*20+1, chunkSeconds*sr)) / 2.
func ChunkLengthMin(sampleRate int, chunkSeconds float64) int {
	sr := float64(sampleRate)
	return int(math.Min(sr/F0Min*20+1, chunkSeconds*sr)) / 2
}

// ConfigFor builds the frame/hop configuration used by the converters:
// frame = 2*ChunkLengthMin, hop = ChunkLengthMin. dbThresh is the
// (non-positive) threshold as given on the command line.
func ConfigFor(sampleRate int, chunkSeconds, dbThresh float64, ref Reference) Config {
	minLen := ChunkLengthMin(sampleRate, chunkSeconds)
	return Config{
		TopDB:       -dbThresh,
		FrameLength: minLen * 2,
		HopLength:   minLen,
		Reference:   ref,
	}
}
