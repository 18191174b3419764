package provider

import "context"

// Provider is the base interface every backend implements.
type Provider interface {
	// Name returns the provider's registered name.
	Name() string
	// IsAvailable reports whether the provider can take requests now.
	IsAvailable(ctx context.Context) bool
}

// RequestResponse is a provider that maps one input to one output.
// Synthesis backends are adapted to it so middleware can wrap them.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Closeable is implemented by providers holding resources that need an
// explicit release (pooled connections, child processes).
type Closeable interface {
	Close(ctx context.Context) error
}

// Factory creates a provider instance from a generic config map.
type Factory[T Provider] func(cfg map[string]any) (T, error)
