package device

import (
	"context"
	"fmt"

	"github.com/kbukum/voiceshift/component"
)

// Component keeps an audio driver open for the life of the app and
// reports whether its devices can still be listed.
type Component struct {
	driver Driver
	close  func() error
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps driver. close releases it on Stop and may be nil.
func NewComponent(driver Driver, close func() error) *Component {
	return &Component{driver: driver, close: close}
}

// Name returns "audio-devices".
func (c *Component) Name() string { return "audio-devices" }

// Start is a no-op; drivers are opened before registration.
func (c *Component) Start(context.Context) error { return nil }

// Stop releases the driver.
func (c *Component) Stop(context.Context) error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

// Health is unhealthy when devices cannot be listed or none exist.
func (c *Component) Health(context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	devices, err := c.driver.Devices()
	switch {
	case err != nil:
		h.Status = component.StatusUnhealthy
		h.Message = err.Error()
	case len(devices) == 0:
		h.Status = component.StatusUnhealthy
		h.Message = "no audio devices"
	}
	return h
}

// Describe reports the default devices.
func (c *Component) Describe() component.Description {
	d := component.Description{Name: "Audio Devices", Type: "device"}
	in, errIn := c.driver.DefaultDevice(Input)
	out, errOut := c.driver.DefaultDevice(Output)
	if errIn == nil && errOut == nil {
		d.Details = fmt.Sprintf("in=%s out=%s", in.Name, out.Name)
	}
	return d
}
