package realtime

import (
	"context"
	"strconv"
	"strings"

	"github.com/kbukum/voiceshift/conversion"
	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/logger"
	"github.com/kbukum/voiceshift/observability"
)

// Reconciler turns one input block into one output block of equal length.
type Reconciler interface {
	Process(ctx context.Context, block []float32) ([]float32, error)
	// Reset drops all session state.
	Reset()
}

// Version selects the reconciler implementation.
type Version int

const (
	// VersionCrossfade is the overlap-add reconciler.
	VersionCrossfade Version = 1
	// VersionChunkStore is the silence-compressing chunk store.
	VersionChunkStore Version = 2
)

// DefaultVersion is used when none is configured.
const DefaultVersion = VersionChunkStore

// ParseVersion accepts "1", "2", "crossfade" and "chunk_store".
func ParseVersion(s string) (Version, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "2", "chunk_store", "chunkstore":
		return VersionChunkStore, nil
	case "1", "crossfade":
		return VersionCrossfade, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return 0, errors.Configuration("unknown realtime version %d", n)
	}
	return 0, errors.Configuration("unknown realtime version %q", s)
}

func (v Version) String() string {
	switch v {
	case VersionCrossfade:
		return "crossfade"
	case VersionChunkStore:
		return "chunk_store"
	default:
		return "unknown"
	}
}

// DefaultCrossfadeSeconds is the overlap used by the crossfade reconciler.
const DefaultCrossfadeSeconds = 0.05

// Options configure New.
type Options struct {
	Converter *conversion.Converter
	Params    conversion.Params
	Slice     conversion.SliceConfig
	// CrossfadeSeconds is the overlap length for VersionCrossfade.
	CrossfadeSeconds float64
	// Split runs VersionCrossfade windows through the silence splitter.
	// When false an RMS gate decides whether a window is converted at all.
	Split  bool
	Logger *logger.Logger
	Audio  *observability.AudioMetrics
}

// DefaultOptions returns options for conv with default parameters.
func DefaultOptions(conv *conversion.Converter) Options {
	return Options{
		Converter:        conv,
		Params:           conversion.DefaultParams(),
		Slice:            conversion.DefaultSliceConfig(),
		CrossfadeSeconds: DefaultCrossfadeSeconds,
		Split:            true,
	}
}

// New builds the reconciler for v. Parameters and the speaker are checked
// up front so that a bad session fails before the first block.
func New(v Version, opts Options) (Reconciler, error) {
	if opts.Converter == nil {
		return nil, errors.Configuration("realtime: converter is required")
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Slice.Validate(); err != nil {
		return nil, err
	}
	if _, err := opts.Converter.SpeakerID(opts.Params.Speaker); err != nil {
		return nil, err
	}

	switch v {
	case VersionCrossfade:
		length := int(opts.CrossfadeSeconds * float64(opts.Converter.SampleRate()))
		var window WindowConverter
		if opts.Split {
			window = SplitWindow(conversion.NewOffline(opts.Converter), opts.Params, opts.Slice)
		} else {
			window = RMSGateWindow(opts.Converter, opts.Params, opts.Slice.DBThresh)
		}
		return NewCrossfader(length, window, WithLogger(opts.Logger), WithAudioMetrics(opts.Audio))
	case VersionChunkStore:
		return NewChunkStore(opts.Converter, opts.Params, opts.Slice, WithLogger(opts.Logger), WithAudioMetrics(opts.Audio))
	default:
		return nil, errors.Configuration("unknown realtime version %d", int(v))
	}
}

// Option configures a reconciler.
type Option func(*base)

// WithLogger replaces the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.log = l
		}
	}
}

// WithAudioMetrics records block timings and compress rates.
func WithAudioMetrics(m *observability.AudioMetrics) Option {
	return func(b *base) { b.audio = m }
}

type base struct {
	log   *logger.Logger
	audio *observability.AudioMetrics
}

func newBase(component string, opts []Option) base {
	b := base{log: logger.Get("realtime").WithComponent(component)}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}
