package provider

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/resilience"
)

// ResilienceConfig selects the policies wrapped around a provider.
// Nil fields are skipped. There is no retry policy; a failed synthesis
// call surfaces to the caller.
type ResilienceConfig struct {
	CircuitBreaker *resilience.CircuitBreakerConfig
	Bulkhead       *resilience.BulkheadConfig
}

// IsEmpty reports whether no policy is configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.CircuitBreaker == nil && c.Bulkhead == nil
}

// ResilienceState holds the live primitives built from a ResilienceConfig.
type ResilienceState struct {
	cb *resilience.CircuitBreaker
	bh *resilience.Bulkhead
}

// BuildResilience builds the primitives for cfg, or nil when cfg is empty.
func BuildResilience(cfg ResilienceConfig) *ResilienceState {
	if cfg.IsEmpty() {
		return nil
	}
	s := &ResilienceState{}
	if cfg.CircuitBreaker != nil {
		s.cb = resilience.NewCircuitBreaker(*cfg.CircuitBreaker)
	}
	if cfg.Bulkhead != nil {
		s.bh = resilience.NewBulkhead(*cfg.Bulkhead)
	}
	return s
}

// CircuitState reports the breaker state, or closed when none is configured.
func (s *ResilienceState) CircuitState() resilience.State {
	if s == nil || s.cb == nil {
		return resilience.StateClosed
	}
	return s.cb.State()
}

// WithResilience wraps p so each Execute passes Bulkhead then CircuitBreaker.
// An empty config returns p unchanged.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	return &resilientRR[I, O]{inner: p, state: BuildResilience(cfg)}
}

// ResilienceMiddleware is WithResilience in Middleware form, for Chain.
func ResilienceMiddleware[I, O any](cfg ResilienceConfig) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return WithResilience(inner, cfg)
	}
}

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	state *ResilienceState
}

func (r *resilientRR[I, O]) Name() string { return r.inner.Name() }

// IsAvailable is false while the circuit is open, so health checks and
// selectors skip a tripped backend.
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool {
	if r.state.CircuitState() == resilience.StateOpen {
		return false
	}
	return r.inner.IsAvailable(ctx)
}

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return ExecuteWithResilience(ctx, r.state, func() (O, error) {
		return r.inner.Execute(ctx, input)
	})
}

// ExecuteWithResilience runs fn inside the bulkhead and circuit breaker of s.
// Rejections by either are mapped to AppErrors; errors from fn pass through.
func ExecuteWithResilience[T any](ctx context.Context, s *ResilienceState, fn func() (T, error)) (T, error) {
	if s == nil {
		return fn()
	}

	call := fn
	if s.cb != nil {
		inner := call
		call = func() (T, error) {
			var out T
			var fnErr error
			cbErr := s.cb.Execute(func() error {
				out, fnErr = inner()
				return fnErr
			})
			if cbErr != nil && fnErr == nil {
				return out, wrapResilienceError(cbErr)
			}
			return out, fnErr
		}
	}

	if s.bh != nil {
		var out T
		var fnErr error
		bhErr := s.bh.Execute(ctx, func() error {
			out, fnErr = call()
			return fnErr
		})
		if bhErr != nil && fnErr == nil {
			return out, wrapResilienceError(bhErr)
		}
		return out, fnErr
	}
	return call()
}

func wrapResilienceError(err error) error {
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		return errors.ServiceUnavailable("provider").WithCause(err).WithDetail("reason", "circuit open")
	case stderrors.Is(err, resilience.ErrBulkheadFull), stderrors.Is(err, resilience.ErrBulkheadTimeout):
		return errors.ServiceUnavailable("provider").WithCause(err).WithDetail("reason", "concurrency limit reached")
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return errors.Timeout("provider call").WithCause(err)
	default:
		return err
	}
}
