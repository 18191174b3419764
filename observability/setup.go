package observability

import (
	"context"
	stderrors "errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Telemetry bundles the installed providers and the instrument sets.
type Telemetry struct {
	Metrics *Metrics
	Audio   *AudioMetrics

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// Setup installs exporters when cfg.Enabled and builds the instruments on
// the global meter. With export disabled the instruments are backed by the
// default no-op provider.
func Setup(ctx context.Context, cfg Config, serviceName, serviceVersion string) (*Telemetry, error) {
	cfg.ApplyDefaults()
	t := &Telemetry{}

	if cfg.Enabled {
		tp, err := InitTracer(ctx, cfg.Tracer(serviceName, serviceVersion))
		if err != nil {
			return nil, err
		}
		t.tp = tp
		mp, err := InitMeter(ctx, cfg.Meter(serviceName, serviceVersion))
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, err
		}
		t.mp = mp
	}

	meter := Meter(serviceName)
	var err error
	if t.Metrics, err = NewMetrics(meter); err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	if t.Audio, err = NewAudioMetrics(meter); err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	return t, nil
}

// Shutdown flushes and stops the exporters, if any were installed.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
	}
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
	}
	return stderrors.Join(errs...)
}
