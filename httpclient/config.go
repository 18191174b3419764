package httpclient

import (
	"time"

	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/resilience"
)

const defaultTimeout = 30 * time.Second

// Config configures the HTTP client.
type Config struct {
	// Name identifies the client in logs and breaker state. Defaults to "http".
	Name string `mapstructure:"name"`

	// BaseURL is prepended to all relative request paths.
	BaseURL string `mapstructure:"base_url"`

	// Timeout is the per-request timeout. Defaults to 30s.
	Timeout time.Duration `mapstructure:"timeout"`

	// Headers are applied to every request.
	Headers map[string]string `mapstructure:"headers"`

	// CircuitBreaker guards every call when set.
	CircuitBreaker *resilience.CircuitBreakerConfig `mapstructure:"-"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "http"
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return errors.Configuration("httpclient: timeout must be non-negative, got %s", c.Timeout)
	}
	return nil
}
