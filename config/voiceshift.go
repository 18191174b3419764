package config

import (
	"fmt"
	"time"

	"github.com/kbukum/voiceshift/conversion"
	"github.com/kbukum/voiceshift/device"
	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/observability"
	"github.com/kbukum/voiceshift/provider"
	"github.com/kbukum/voiceshift/realtime"
	"github.com/kbukum/voiceshift/resilience"
	"github.com/kbukum/voiceshift/server"
	"github.com/kbukum/voiceshift/synthesis"
	"github.com/kbukum/voiceshift/synthesis/remote"
	"github.com/kbukum/voiceshift/synthesis/subprocess"
	"github.com/kbukum/voiceshift/validation"
)

// ServiceName names the config file, env prefix and logs.
const ServiceName = "voiceshift"

// Backend kinds.
const (
	BackendRemote     = "remote"
	BackendSubprocess = "subprocess"
	BackendIdentity   = "identity"
)

// Voiceshift is the configuration shared by every command.
type Voiceshift struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Model     ModelConfig            `yaml:"model" mapstructure:"model"`
	Backend   BackendConfig          `yaml:"backend" mapstructure:"backend"`
	Voice     VoiceConfig            `yaml:"voice" mapstructure:"voice"`
	Slice     conversion.SliceConfig `yaml:"slice" mapstructure:"slice"`
	Realtime  RealtimeConfig         `yaml:"realtime" mapstructure:"realtime"`
	Server    server.Config          `yaml:"server" mapstructure:"server"`
	Telemetry observability.Config   `yaml:"telemetry" mapstructure:"telemetry"`
}

// ModelConfig locates the model's JSON config. SampleRate overrides the
// rate read from it and is required when no config is given.
type ModelConfig struct {
	ConfigPath string `yaml:"config" mapstructure:"config"`
	SampleRate int    `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0"`
}

// Load reads the model config, or builds one from SampleRate alone with a
// single unnamed speaker.
func (m ModelConfig) Load() (*synthesis.ModelConfig, error) {
	if m.ConfigPath == "" {
		if m.SampleRate <= 0 {
			return nil, errors.Configuration("model.sample_rate is required without model.config")
		}
		return &synthesis.ModelConfig{SampleRate: m.SampleRate, Speakers: synthesis.NewSpeakers(nil)}, nil
	}
	mc, err := synthesis.LoadModelConfig(m.ConfigPath)
	if err != nil {
		return nil, err
	}
	if m.SampleRate > 0 {
		mc.SampleRate = m.SampleRate
	}
	return mc, nil
}

// BackendConfig selects and configures the synthesis backend.
type BackendConfig struct {
	Kind       string            `yaml:"kind" mapstructure:"kind" validate:"oneof=remote subprocess identity"`
	Remote     remote.Config     `yaml:"remote" mapstructure:"remote"`
	Subprocess subprocess.Config `yaml:"subprocess" mapstructure:"subprocess"`
	// CircuitBreaker is enabled when max_failures is positive.
	CircuitBreaker resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	// Bulkhead is enabled when max_concurrent is positive.
	Bulkhead resilience.BulkheadConfig `yaml:"bulkhead" mapstructure:"bulkhead"`
}

// ApplyDefaults fills unset fields.
func (b *BackendConfig) ApplyDefaults() {
	if b.Kind == "" {
		b.Kind = BackendRemote
	}
	b.Remote.ApplyDefaults()
	if b.CircuitBreaker.Name == "" {
		b.CircuitBreaker.Name = b.Kind
	}
	if b.Bulkhead.Name == "" {
		b.Bulkhead.Name = b.Kind
	}
	if b.Bulkhead.MaxConcurrent > 0 && b.Bulkhead.MaxWait == 0 {
		b.Bulkhead.MaxWait = 30 * time.Second
	}
}

// Resilience returns the enabled policies.
func (b *BackendConfig) Resilience() provider.ResilienceConfig {
	var rc provider.ResilienceConfig
	if b.CircuitBreaker.MaxFailures > 0 {
		cb := b.CircuitBreaker
		rc.CircuitBreaker = &cb
	}
	if b.Bulkhead.MaxConcurrent > 0 {
		bh := b.Bulkhead
		rc.Bulkhead = &bh
	}
	return rc
}

// VoiceConfig holds the default conversion parameters.
type VoiceConfig struct {
	Speaker       string  `yaml:"speaker" mapstructure:"speaker"`
	Transpose     float64 `yaml:"transpose" mapstructure:"transpose"`
	ClusterRatio  float64 `yaml:"cluster_ratio" mapstructure:"cluster_ratio" validate:"gte=0,lte=1"`
	NoiseScale    float64 `yaml:"noise_scale" mapstructure:"noise_scale" validate:"gte=0"`
	AutoPredictF0 bool    `yaml:"auto_predict_f0" mapstructure:"auto_predict_f0"`
}

// Params converts the section to conversion parameters. An empty speaker
// selects id 0.
func (v VoiceConfig) Params() conversion.Params {
	p := conversion.Params{
		Speaker:       synthesis.SpeakerID(0),
		Transpose:     v.Transpose,
		ClusterRatio:  v.ClusterRatio,
		NoiseScale:    v.NoiseScale,
		AutoPredictF0: v.AutoPredictF0,
	}
	if v.Speaker != "" {
		p.Speaker = synthesis.ParseSpeaker(v.Speaker)
	}
	return p
}

// RealtimeConfig configures the reconciler and audio devices.
type RealtimeConfig struct {
	Version          string  `yaml:"version" mapstructure:"version"`
	CrossfadeSeconds float64 `yaml:"crossfade_seconds" mapstructure:"crossfade_seconds" validate:"gte=0"`
	// Split is a pointer so that an explicit false survives ApplyDefaults.
	Split  *bool         `yaml:"split" mapstructure:"split"`
	Device device.Config `yaml:"device" mapstructure:"device"`
}

// ApplyDefaults fills unset fields.
func (r *RealtimeConfig) ApplyDefaults() {
	if r.Version == "" {
		r.Version = realtime.DefaultVersion.String()
	}
	if r.CrossfadeSeconds == 0 {
		r.CrossfadeSeconds = realtime.DefaultCrossfadeSeconds
	}
	if r.Split == nil {
		split := true
		r.Split = &split
	}
	r.Device.ApplyDefaults()
}

// Options builds reconciler options for conv. Params and Slice come from
// the other sections.
func (r *RealtimeConfig) Options(conv *conversion.Converter, p conversion.Params, slice conversion.SliceConfig) (realtime.Version, realtime.Options, error) {
	v, err := realtime.ParseVersion(r.Version)
	if err != nil {
		return 0, realtime.Options{}, err
	}
	opts := realtime.DefaultOptions(conv)
	opts.Params = p
	opts.Slice = slice
	opts.CrossfadeSeconds = r.CrossfadeSeconds
	opts.Split = r.Split == nil || *r.Split
	return v, opts, nil
}

// ApplyDefaults fills every section.
func (c *Voiceshift) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Backend.ApplyDefaults()
	c.Realtime.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Telemetry.ApplyDefaults()

	if c.Voice == (VoiceConfig{}) {
		c.Voice.NoiseScale = conversion.DefaultNoiseScale
	}
	def := conversion.DefaultSliceConfig()
	if c.Slice == (conversion.SliceConfig{}) {
		c.Slice = def
	}
	if c.Slice.DBThresh == 0 {
		c.Slice.DBThresh = def.DBThresh
	}
	if c.Slice.ChunkSeconds == 0 {
		c.Slice.ChunkSeconds = def.ChunkSeconds
	}
}

// Validate checks struct tags, then each section's own rules.
func (c *Voiceshift) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Struct(c); err != nil {
		return err
	}
	if _, err := realtime.ParseVersion(c.Realtime.Version); err != nil {
		return err
	}
	if err := c.Voice.Params().Validate(); err != nil {
		return fmt.Errorf("voice: %w", err)
	}
	if err := c.Slice.Validate(); err != nil {
		return fmt.Errorf("slice: %w", err)
	}
	if err := c.Realtime.Device.Validate(); err != nil {
		return fmt.Errorf("realtime.device: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if c.Backend.Kind == BackendSubprocess && c.Backend.Subprocess.Binary == "" {
		return errors.Configuration("backend.subprocess.binary is required for the subprocess backend")
	}
	return nil
}
