package observability

import (
	"context"

	"github.com/kbukum/voiceshift/component"
)

// Component ties installed telemetry providers to the app lifecycle. The
// providers are installed by Setup before the component is registered so
// that backends built afterwards see the instruments.
type Component struct {
	telemetry *Telemetry
	cfg       Config
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps t.
func NewComponent(t *Telemetry, cfg Config) *Component {
	cfg.ApplyDefaults()
	return &Component{telemetry: t, cfg: cfg}
}

// Name returns "telemetry".
func (c *Component) Name() string { return "telemetry" }

// Start is a no-op.
func (c *Component) Start(context.Context) error { return nil }

// Stop flushes and shuts down the exporters.
func (c *Component) Stop(ctx context.Context) error {
	return c.telemetry.Shutdown(ctx)
}

// Health is always healthy; export failures are reported by the SDK.
func (c *Component) Health(context.Context) component.Health {
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe reports the export endpoint or that export is off.
func (c *Component) Describe() component.Description {
	details := "export disabled"
	if c.cfg.Enabled {
		details = "otlp " + c.cfg.Endpoint
	}
	return component.Description{Name: "Telemetry", Type: "telemetry", Details: details}
}
