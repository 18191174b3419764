package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AudioMetrics holds the conversion-specific instruments. A nil
// *AudioMetrics is valid and records nothing.
type AudioMetrics struct {
	synthesisDuration metric.Float64Histogram
	realtimeCoef      metric.Float64Histogram
	blockDuration     metric.Float64Histogram
	compressRate      metric.Float64Histogram
}

// NewAudioMetrics creates the instruments on meter.
func NewAudioMetrics(meter metric.Meter) (*AudioMetrics, error) {
	m := &AudioMetrics{}
	var err error
	if m.synthesisDuration, err = meter.Float64Histogram("synthesis.duration",
		metric.WithDescription("Wall time of backend synthesis calls"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating synthesis.duration histogram: %w", err)
	}
	if m.realtimeCoef, err = meter.Float64Histogram("synthesis.realtime_coef",
		metric.WithDescription("Seconds of audio produced per wall-clock second")); err != nil {
		return nil, fmt.Errorf("creating synthesis.realtime_coef histogram: %w", err)
	}
	if m.blockDuration, err = meter.Float64Histogram("realtime.block.duration",
		metric.WithDescription("Processing time of one real-time block"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating realtime.block.duration histogram: %w", err)
	}
	if m.compressRate, err = meter.Float64Histogram("realtime.compress_rate",
		metric.WithDescription("Silence compression rate applied by the chunk store")); err != nil {
		return nil, fmt.Errorf("creating realtime.compress_rate histogram: %w", err)
	}
	return m, nil
}

// RealtimeCoef is seconds of audio per second of wall time.
// It is zero when elapsed is not positive.
func RealtimeCoef(samples, sampleRate int, elapsed time.Duration) float64 {
	if elapsed <= 0 || sampleRate <= 0 {
		return 0
	}
	return float64(samples) / float64(sampleRate) / elapsed.Seconds()
}

// RecordSynthesis records one backend call producing samples at sampleRate.
func (m *AudioMetrics) RecordSynthesis(ctx context.Context, provider string, samples, sampleRate int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("provider", provider))
	m.synthesisDuration.Record(ctx, elapsed.Seconds(), attrs)
	if coef := RealtimeCoef(samples, sampleRate, elapsed); coef > 0 {
		m.realtimeCoef.Record(ctx, coef, attrs)
	}
}

// RecordBlock records the processing time of one real-time block.
func (m *AudioMetrics) RecordBlock(ctx context.Context, reconciler string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.blockDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("reconciler", reconciler)))
}

// RecordCompressRate records the chunk store's compress rate for one block.
func (m *AudioMetrics) RecordCompressRate(ctx context.Context, rate float64) {
	if m == nil {
		return
	}
	m.compressRate.Record(ctx, rate)
}
