package synthesis

import (
	"context"
	"time"

	"github.com/kbukum/voiceshift/logger"
	"github.com/kbukum/voiceshift/observability"
	"github.com/kbukum/voiceshift/provider"
)

// Provider is implemented by every synthesis backend.
type Provider interface {
	provider.Provider

	// Synthesize converts req.Audio. The output length may differ from the
	// input length. Errors are returned as-is and never retried.
	Synthesize(ctx context.Context, req Request) ([]float32, error)
}

// AsRequestResponse adapts p so provider middleware can wrap it.
func AsRequestResponse(p Provider) provider.RequestResponse[Request, []float32] {
	return &rrAdapter{p: p}
}

// FromRequestResponse turns a (possibly wrapped) RequestResponse back into
// a Provider.
func FromRequestResponse(rr provider.RequestResponse[Request, []float32]) Provider {
	if a, ok := rr.(*rrAdapter); ok {
		return a.p
	}
	return &providerAdapter{rr: rr}
}

type rrAdapter struct{ p Provider }

func (a *rrAdapter) Name() string                         { return a.p.Name() }
func (a *rrAdapter) IsAvailable(ctx context.Context) bool { return a.p.IsAvailable(ctx) }
func (a *rrAdapter) Execute(ctx context.Context, req Request) ([]float32, error) {
	return a.p.Synthesize(ctx, req)
}

type providerAdapter struct {
	rr   provider.RequestResponse[Request, []float32]
	base Provider
}

func (a *providerAdapter) Name() string                         { return a.rr.Name() }
func (a *providerAdapter) IsAvailable(ctx context.Context) bool { return a.rr.IsAvailable(ctx) }
func (a *providerAdapter) Synthesize(ctx context.Context, req Request) ([]float32, error) {
	return a.rr.Execute(ctx, req)
}

// Close releases the wrapped backend when it holds resources.
func (a *providerAdapter) Close(ctx context.Context) error {
	if c, ok := a.base.(provider.Closeable); ok {
		return c.Close(ctx)
	}
	return nil
}

// MiddlewareOptions selects the middleware Wrap applies. Zero fields are skipped.
type MiddlewareOptions struct {
	Logger      *logger.Logger
	Metrics     *observability.Metrics
	Audio       *observability.AudioMetrics
	ServiceName string
	Resilience  provider.ResilienceConfig
}

// Wrap decorates p with, from outermost: tracing, logging, metrics,
// circuit breaker and bulkhead, then realtime-coefficient reporting.
func Wrap(p Provider, opts MiddlewareOptions) Provider {
	var mws []provider.Middleware[Request, []float32]
	if opts.ServiceName != "" {
		mws = append(mws, provider.WithTracing[Request, []float32](opts.ServiceName))
	}
	if opts.Logger != nil {
		mws = append(mws, provider.WithLogging[Request, []float32](opts.Logger))
	}
	if opts.Metrics != nil {
		mws = append(mws, provider.WithMetrics[Request, []float32](opts.Metrics))
	}
	if !opts.Resilience.IsEmpty() {
		mws = append(mws, provider.ResilienceMiddleware[Request, []float32](opts.Resilience))
	}
	mws = append(mws, WithRealtimeCoef(opts.Logger, opts.Audio))
	return &providerAdapter{rr: provider.Chain(mws...)(AsRequestResponse(p)), base: p}
}

// WithRealtimeCoef logs the inference time and the ratio of produced
// audio seconds to wall seconds after every successful call.
func WithRealtimeCoef(log *logger.Logger, audio *observability.AudioMetrics) provider.Middleware[Request, []float32] {
	if log == nil {
		log = logger.Get("synthesis")
	}
	return func(inner provider.RequestResponse[Request, []float32]) provider.RequestResponse[Request, []float32] {
		return &coefRR{inner: inner, log: log, audio: audio}
	}
}

type coefRR struct {
	inner provider.RequestResponse[Request, []float32]
	log   *logger.Logger
	audio *observability.AudioMetrics
}

func (c *coefRR) Name() string                         { return c.inner.Name() }
func (c *coefRR) IsAvailable(ctx context.Context) bool { return c.inner.IsAvailable(ctx) }

func (c *coefRR) Execute(ctx context.Context, req Request) ([]float32, error) {
	start := time.Now()
	out, err := c.inner.Execute(ctx, req)
	if err != nil {
		return out, err
	}
	elapsed := time.Since(start)
	coef := observability.RealtimeCoef(len(out), req.SampleRate, elapsed)
	c.audio.RecordSynthesis(ctx, c.inner.Name(), len(out), req.SampleRate, elapsed)
	fields := logger.DurationFields("synthesize", elapsed)
	fields[logger.FieldRealtimeCoef] = coef
	fields[logger.FieldProvider] = c.inner.Name()
	fields["input_samples"] = len(req.Audio)
	fields["output_samples"] = len(out)
	c.log.WithContext(ctx).Info("Inference finished", fields)
	return out, nil
}
