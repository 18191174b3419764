package synthesis_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/voiceshift/component"
	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/logger"
	"github.com/kbukum/voiceshift/provider"
	"github.com/kbukum/voiceshift/resilience"
	"github.com/kbukum/voiceshift/synthesis"
	"github.com/kbukum/voiceshift/synthesis/stub"
)

func TestAsRequestResponseRoundTrip(t *testing.T) {
	b := stub.Gain(2)
	rr := synthesis.AsRequestResponse(b)
	out, err := rr.Execute(context.Background(), synthesis.Request{Audio: []float32{1}})
	if err != nil || out[0] != 2 {
		t.Fatalf("expected [2], got %v (%v)", out, err)
	}
	if synthesis.FromRequestResponse(rr) != synthesis.Provider(b) {
		t.Error("expected unwrap to return the original provider")
	}
}

func TestWrapLogsRealtimeCoef(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriter(&buf, "test")
	p := synthesis.Wrap(stub.Identity(), synthesis.MiddlewareOptions{Logger: log})

	out, err := p.Synthesize(context.Background(), synthesis.Request{Audio: make([]float32, 160), SampleRate: 16000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 160 {
		t.Errorf("expected 160 samples, got %d", len(out))
	}
	if !strings.Contains(buf.String(), logger.FieldRealtimeCoef) {
		t.Errorf("expected realtime coef in log, got %q", buf.String())
	}
	if p.Name() != "identity" {
		t.Errorf("expected wrapped name identity, got %q", p.Name())
	}
}

func TestWrapPropagatesErrorsWithoutRetry(t *testing.T) {
	boom := stderrors.New("CUDA out of memory")
	b := stub.Failing(boom)
	p := synthesis.Wrap(b, synthesis.MiddlewareOptions{
		Logger: logger.NewWriter(&bytes.Buffer{}, "test"),
		Resilience: provider.ResilienceConfig{
			CircuitBreaker: &resilience.CircuitBreakerConfig{MaxFailures: 10, Timeout: time.Minute},
		},
	})

	_, err := p.Synthesize(context.Background(), synthesis.Request{Audio: []float32{1}})
	if !stderrors.Is(err, boom) {
		t.Errorf("expected backend error to propagate, got %v", err)
	}
	if n := len(b.Calls()); n != 1 {
		t.Errorf("expected exactly one backend call, got %d", n)
	}
}

func TestWrapCircuitOpens(t *testing.T) {
	b := stub.Failing(stderrors.New("down"))
	p := synthesis.Wrap(b, synthesis.MiddlewareOptions{
		Resilience: provider.ResilienceConfig{
			CircuitBreaker: &resilience.CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute},
		},
	})
	_, _ = p.Synthesize(context.Background(), synthesis.Request{})
	_, err := p.Synthesize(context.Background(), synthesis.Request{})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeServiceUnavailable {
		t.Errorf("expected SERVICE_UNAVAILABLE once open, got %v", err)
	}
	if p.IsAvailable(context.Background()) {
		t.Error("expected wrapped provider unavailable while circuit open")
	}
}

type closingBackend struct {
	*stub.Backend
	closed bool
}

func (c *closingBackend) Close(context.Context) error {
	c.closed = true
	return nil
}

func TestWrapKeepsCloseable(t *testing.T) {
	b := &closingBackend{Backend: stub.Identity()}
	p := synthesis.Wrap(b, synthesis.MiddlewareOptions{})
	c, ok := p.(provider.Closeable)
	if !ok {
		t.Fatal("expected wrapped provider to be Closeable")
	}
	_ = c.Close(context.Background())
	if !b.closed {
		t.Error("expected Close to reach the backend")
	}
}

func TestManagerSelectsAvailableBackend(t *testing.T) {
	m := synthesis.NewManager()
	down := stub.Identity()
	down.SetAvailable(false)
	m.Register("a-down", func(map[string]any) (synthesis.Provider, error) { return down, nil })
	m.Register("b-up", func(map[string]any) (synthesis.Provider, error) { return stub.Gain(1), nil })
	for _, name := range []string{"a-down", "b-up"} {
		if err := m.Initialize(name, nil); err != nil {
			t.Fatalf("initialize %s: %v", name, err)
		}
	}
	p, err := m.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "gain" {
		t.Errorf("expected the available backend, got %s", p.Name())
	}
}

func TestComponentHealth(t *testing.T) {
	b := &closingBackend{Backend: stub.Identity()}
	c := synthesis.NewComponent(b, "dry run")
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s", h.Status)
	}
	b.SetAvailable(false)
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", h.Status)
	}
	if err := c.Stop(context.Background()); err != nil || !b.closed {
		t.Errorf("expected Stop to close backend, err=%v", err)
	}
	if d := c.Describe(); d.Type != "backend" || !strings.Contains(d.Details, "identity") {
		t.Errorf("unexpected description %+v", d)
	}
}
