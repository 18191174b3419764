package conversion

import (
	"github.com/kbukum/voiceshift/synthesis"
	"github.com/kbukum/voiceshift/validation"
)

// DefaultNoiseScale is the backend stochasticity used when none is given.
const DefaultNoiseScale = 0.4

// Params are the voice parameters of a conversion.
type Params struct {
	Speaker synthesis.Speaker
	// Transpose is the pitch shift in semitones.
	Transpose     float64
	ClusterRatio  float64
	NoiseScale    float64
	AutoPredictF0 bool
}

// DefaultParams targets speaker 0 with no transpose.
func DefaultParams() Params {
	return Params{NoiseScale: DefaultNoiseScale}
}

// Validate checks numeric ranges. Speaker ids are checked against the
// model when resolved.
func (p Params) Validate() error {
	v := validation.New().
		Finite("transpose", p.Transpose).
		Range("cluster_ratio", p.ClusterRatio, 0, 1).
		NonNegative("noise_scale", p.NoiseScale)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// SliceConfig controls how Offline cuts a recording.
type SliceConfig struct {
	// DBThresh is the silence threshold in dB, at or below zero.
	DBThresh float64 `mapstructure:"db_thresh"`
	// PadSeconds of silence are added on each side of a speech segment
	// before it is sent to the backend.
	PadSeconds float64 `mapstructure:"pad_seconds"`
	// ChunkSeconds caps the segmenter's frame hop.
	ChunkSeconds float64 `mapstructure:"chunk_seconds"`
	// AbsoluteThresh measures DBThresh against full scale instead of the
	// recording's peak.
	AbsoluteThresh bool `mapstructure:"absolute_thresh"`
}

// DefaultSliceConfig returns -40 dB, 0.5 s padding and 0.5 s chunks
// relative to peak.
func DefaultSliceConfig() SliceConfig {
	return SliceConfig{DBThresh: -40, PadSeconds: 0.5, ChunkSeconds: 0.5}
}

// Validate checks the slice settings.
func (s SliceConfig) Validate() error {
	v := validation.New().
		Finite("db_thresh", s.DBThresh).
		NonNegative("pad_seconds", s.PadSeconds).
		Positive("chunk_seconds", s.ChunkSeconds)
	v.Custom(s.DBThresh <= 0, "db_thresh", "must be at or below 0 dB")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
