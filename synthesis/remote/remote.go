// Package remote is a synthesis backend that calls an HTTP sidecar
// hosting the model. Audio travels as little-endian float32 PCM in both
// directions, and the conversion parameters travel as query values.
package remote

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/kbukum/voiceshift/audio"
	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/httpclient"
	"github.com/kbukum/voiceshift/provider"
	"github.com/kbukum/voiceshift/resilience"
	"github.com/kbukum/voiceshift/synthesis"
)

const (
	// ProviderName is the registered name for the remote backend.
	ProviderName = "remote"

	defaultURL     = "http://127.0.0.1:8001"
	defaultTimeout = 60 * time.Second

	synthesizePath = "/synthesize"
	healthPath     = "/health"
	contentTypePCM = "application/octet-stream"
)

// Config holds the remote backend settings.
type Config struct {
	URL     string            `mapstructure:"url"`
	Timeout time.Duration     `mapstructure:"timeout"`
	Headers map[string]string `mapstructure:"headers"`

	// CircuitBreaker guards calls when set. Calls are never retried.
	CircuitBreaker *resilience.CircuitBreakerConfig `mapstructure:"-"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Backend implements synthesis.Provider over HTTP.
type Backend struct {
	cfg    Config
	client *httpclient.Client
}

var (
	_ synthesis.Provider = (*Backend)(nil)
	_ provider.Closeable = (*Backend)(nil)
)

// New creates a remote backend.
func New(cfg Config) (*Backend, error) {
	cfg.ApplyDefaults()
	client, err := httpclient.New(httpclient.Config{
		Name:           ProviderName,
		BaseURL:        cfg.URL,
		Timeout:        cfg.Timeout,
		Headers:        cfg.Headers,
		CircuitBreaker: cfg.CircuitBreaker,
	})
	if err != nil {
		return nil, err
	}
	return &Backend{cfg: cfg, client: client}, nil
}

// Factory builds remote backends from a generic config map with keys
// "url" (string) and "timeout" (time.Duration or duration string).
func Factory() provider.Factory[synthesis.Provider] {
	return func(m map[string]any) (synthesis.Provider, error) {
		cfg := Config{}
		if v, ok := m["url"].(string); ok {
			cfg.URL = v
		}
		switch v := m["timeout"].(type) {
		case time.Duration:
			cfg.Timeout = v
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, errors.Configuration("remote: invalid timeout %q", v)
			}
			cfg.Timeout = d
		}
		return New(cfg)
	}
}

// Name returns ProviderName.
func (b *Backend) Name() string { return ProviderName }

// URL returns the sidecar base URL.
func (b *Backend) URL() string { return b.cfg.URL }

// IsAvailable sends GET /health.
func (b *Backend) IsAvailable(ctx context.Context) bool {
	if !b.client.IsAvailable(ctx) {
		return false
	}
	resp, err := b.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: healthPath})
	return err == nil && resp.IsSuccess()
}

// Synthesize posts req.Audio to /synthesize and decodes the PCM reply.
func (b *Backend) Synthesize(ctx context.Context, req synthesis.Request) ([]float32, error) {
	resp, err := b.client.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    synthesizePath,
		Headers: map[string]string{"Content-Type": contentTypePCM, "Accept": contentTypePCM},
		Query:   Query(req),
		Body:    audio.EncodeFloat32LE(req.Audio),
	})
	if err != nil {
		return nil, httpclient.ToAppError(ProviderName, err)
	}
	out, err := audio.DecodeFloat32LE(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError(ProviderName, err)
	}
	return out, nil
}

// Close releases pooled connections.
func (b *Backend) Close(ctx context.Context) error {
	return b.client.Close(ctx)
}

// Query encodes the conversion parameters of req.
func Query(req synthesis.Request) map[string]string {
	return map[string]string{
		"speaker_id":      strconv.Itoa(req.SpeakerID),
		"sample_rate":     strconv.Itoa(req.SampleRate),
		"transpose":       strconv.FormatFloat(req.Transpose, 'g', -1, 64),
		"cluster_ratio":   strconv.FormatFloat(req.ClusterRatio, 'g', -1, 64),
		"noise_scale":     strconv.FormatFloat(req.NoiseScale, 'g', -1, 64),
		"auto_predict_f0": strconv.FormatBool(req.AutoPredictF0),
	}
}
