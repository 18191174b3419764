package realtime

import (
	"context"
	"time"

	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/logger"
)

// CrossfadeState is the per-session state of a Crossfader.
type CrossfadeState struct {
	// Length is the overlap in samples. It never changes.
	Length int
	// LastInput is the raw tail of the previous block.
	LastInput []float32
	// LastOutput is the converted tail of the previous window.
	LastOutput []float32
}

// NewCrossfadeState returns zeroed tails of the given length.
func NewCrossfadeState(length int) CrossfadeState {
	return CrossfadeState{
		Length:     length,
		LastInput:  make([]float32, length),
		LastOutput: make([]float32, length),
	}
}

// Crossfader converts each block prefixed with the previous block's tail
// and blends the overlap with the previous window's converted tail.
type Crossfader struct {
	base
	state  CrossfadeState
	window WindowConverter
}

var _ Reconciler = (*Crossfader)(nil)

// NewCrossfader creates a crossfade reconciler with a positive overlap.
func NewCrossfader(length int, window WindowConverter, opts ...Option) (*Crossfader, error) {
	if length <= 0 {
		return nil, errors.Configuration("realtime: crossfade length must be positive (got %d)", length)
	}
	if window == nil {
		return nil, errors.Configuration("realtime: window converter is required")
	}
	return &Crossfader{
		base:   newBase("crossfade", opts),
		state:  NewCrossfadeState(length),
		window: window,
	}, nil
}

// State returns a copy of the session state.
func (c *Crossfader) State() CrossfadeState {
	return CrossfadeState{
		Length:     c.state.Length,
		LastInput:  append([]float32(nil), c.state.LastInput...),
		LastOutput: append([]float32(nil), c.state.LastOutput...),
	}
}

// Reset zeroes both tails.
func (c *Crossfader) Reset() {
	c.state = NewCrossfadeState(c.state.Length)
}

// Process converts one block. The block must be at least Length samples
// and the window converter must preserve length; both are contract
// violations otherwise and leave the state untouched.
func (c *Crossfader) Process(ctx context.Context, block []float32) ([]float32, error) {
	start := time.Now()
	l := c.state.Length
	if len(block) < l {
		return nil, errors.ContractViolation("input block of %d samples is shorter than the crossfade length %d", len(block), l)
	}

	window := make([]float32, 0, l+len(block))
	window = append(window, c.state.LastInput...)
	window = append(window, block...)

	inferred, err := c.window.ConvertWindow(ctx, window)
	if err != nil {
		return nil, err
	}
	if len(inferred) != len(window) {
		return nil, errors.ContractViolation("inferred audio length %d should equal input length %d", len(inferred), len(window))
	}

	out := make([]float32, 0, len(block))
	out = append(out, blend(c.state.LastOutput, inferred[:l])...)
	out = append(out, inferred[l:len(inferred)-l]...)

	c.state.LastInput = append(c.state.LastInput[:0], block[len(block)-l:]...)
	c.state.LastOutput = append(c.state.LastOutput[:0], inferred[len(inferred)-l:]...)

	elapsed := time.Since(start)
	c.audio.RecordBlock(ctx, "crossfade", elapsed)
	c.log.Debug("Processed block", logger.Fields(logger.FieldBlockLen, len(block), logger.FieldDuration, elapsed.Milliseconds()))
	return out, nil
}

// blend fades prev out and next in across their common length and halves
// the sum.
func blend(prev, next []float32) []float32 {
	n := len(next)
	out := make([]float32, n)
	for i := range out {
		fadeOut, fadeIn := linspace(1, 0, n, i), linspace(0, 1, n, i)
		out[i] = float32((float64(prev[i])*fadeOut + float64(next[i])*fadeIn) / 2)
	}
	return out
}

// linspace returns sample i of n evenly spaced values from a to b
// inclusive. A single sample is a.
func linspace(a, b float64, n, i int) float64 {
	if n <= 1 {
		return a
	}
	return a + (b-a)*float64(i)/float64(n-1)
}
