// Package provider holds the generic machinery behind swappable backends:
// a registry of named factories, a manager that instantiates and selects
// providers, and middleware that wraps request/response providers with
// logging, metrics, tracing and resilience.
//
//	reg := provider.NewRegistry[synthesis.Provider]()
//	reg.RegisterFactory("remote", remote.Factory())
//	mgr := provider.NewManager(reg, &provider.HealthCheckSelector[synthesis.Provider]{})
//	_ = mgr.Initialize("remote", cfg)
//	p, _ := mgr.Get(ctx)
//
// Middleware composes with Chain; the first middleware is outermost:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](metrics),
//	    provider.WithTracing[In, Out]("voiceshift"),
//	)(rr)
package provider
