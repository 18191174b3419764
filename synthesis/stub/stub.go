// Package stub provides deterministic synthesis backends. They stand in
// for a model in tests and dry runs.
package stub

import (
	"context"
	"sync"

	"github.com/kbukum/voiceshift/audio"
	"github.com/kbukum/voiceshift/provider"
	"github.com/kbukum/voiceshift/synthesis"
)

// Backend is a synthesis.Provider driven by a pure transform. It records
// every request it receives.
type Backend struct {
	name      string
	transform func([]float32) ([]float32, error)

	mu          sync.Mutex
	calls       []synthesis.Request
	unavailable bool
}

var _ synthesis.Provider = (*Backend)(nil)

// Identity returns its input unchanged.
func Identity() *Backend {
	return New("identity", func(x []float32) ([]float32, error) {
		out := make([]float32, len(x))
		copy(out, x)
		return out, nil
	})
}

// Gain multiplies every sample by g.
func Gain(g float32) *Backend {
	return New("gain", func(x []float32) ([]float32, error) {
		out := make([]float32, len(x))
		for i, v := range x {
			out[i] = v * g
		}
		return out, nil
	})
}

// Resample stretches its input to round(len*ratio) samples, the way a
// backend working at another internal rate would.
func Resample(ratio float64) *Backend {
	return New("resample", func(x []float32) ([]float32, error) {
		n := int(float64(len(x))*ratio + 0.5)
		return audio.ResampleTo(x, n), nil
	})
}

// Failing returns err from every call.
func Failing(err error) *Backend {
	return New("failing", func([]float32) ([]float32, error) { return nil, err })
}

// New builds a backend from an arbitrary transform.
func New(name string, transform func([]float32) ([]float32, error)) *Backend {
	return &Backend{name: name, transform: transform}
}

// Name returns the backend name.
func (b *Backend) Name() string { return b.name }

// IsAvailable is true unless SetAvailable(false) was called.
func (b *Backend) IsAvailable(context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.unavailable
}

// SetAvailable toggles IsAvailable.
func (b *Backend) SetAvailable(ok bool) {
	b.mu.Lock()
	b.unavailable = !ok
	b.mu.Unlock()
}

// Synthesize applies the transform.
func (b *Backend) Synthesize(ctx context.Context, req synthesis.Request) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.calls = append(b.calls, req)
	b.mu.Unlock()
	return b.transform(req.Audio)
}

// Calls returns a copy of the requests received so far.
func (b *Backend) Calls() []synthesis.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]synthesis.Request, len(b.calls))
	copy(out, b.calls)
	return out
}

// Factory builds stub backends from config. The "kind" key selects
// identity (default), gain or resample; "gain" and "ratio" are float64.
func Factory() provider.Factory[synthesis.Provider] {
	return func(cfg map[string]any) (synthesis.Provider, error) {
		switch kind, _ := cfg["kind"].(string); kind {
		case "gain":
			g, _ := cfg["gain"].(float64)
			return Gain(float32(g)), nil
		case "resample":
			r, _ := cfg["ratio"].(float64)
			if r <= 0 {
				r = 1
			}
			return Resample(r), nil
		default:
			return Identity(), nil
		}
	}
}
