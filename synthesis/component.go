package synthesis

import (
	"context"

	"github.com/kbukum/voiceshift/component"
	"github.com/kbukum/voiceshift/logger"
	"github.com/kbukum/voiceshift/provider"
)

// Component manages a backend's lifecycle and reports its reachability.
type Component struct {
	backend Provider
	details string
	log     *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps backend. details is shown in the startup summary.
func NewComponent(backend Provider, details string) *Component {
	return &Component{backend: backend, details: details, log: logger.Get("synthesis")}
}

// Backend returns the managed provider.
func (c *Component) Backend() Provider { return c.backend }

// Name returns "synthesis".
func (c *Component) Name() string { return "synthesis" }

// Start probes the backend once. An unreachable backend is logged, not
// fatal, since sidecars often come up after the engine.
func (c *Component) Start(ctx context.Context) error {
	if !c.backend.IsAvailable(ctx) {
		c.log.Warn("synthesis backend not available yet", logger.Fields(logger.FieldProvider, c.backend.Name()))
	}
	return nil
}

// Stop closes the backend when it holds resources.
func (c *Component) Stop(ctx context.Context) error {
	if cl, ok := c.backend.(provider.Closeable); ok {
		return cl.Close(ctx)
	}
	return nil
}

// Health reports healthy while the backend answers IsAvailable.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.backend.IsAvailable(ctx) {
		h.Status = component.StatusUnhealthy
		h.Message = c.backend.Name() + " unavailable"
	}
	return h
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	return component.Description{Name: "Synthesis", Type: "backend", Details: c.backend.Name() + " " + c.details}
}
