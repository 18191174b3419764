// Package subprocess is a synthesis backend that runs an external command
// once per call. The command reads little-endian float32 PCM on stdin and
// writes converted PCM to stdout. Conversion parameters are passed as
// flags after the configured arguments.
package subprocess

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"time"

	"github.com/kbukum/voiceshift/audio"
	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/process"
	"github.com/kbukum/voiceshift/provider"
	"github.com/kbukum/voiceshift/resilience"
	"github.com/kbukum/voiceshift/synthesis"
)

// ProviderName is the registered name for the subprocess backend.
const ProviderName = "subprocess"

// Config holds the subprocess backend settings.
type Config struct {
	Binary      string        `mapstructure:"binary"`
	Args        []string      `mapstructure:"args"`
	Dir         string        `mapstructure:"dir"`
	Env         []string      `mapstructure:"env"`
	Timeout     time.Duration `mapstructure:"timeout"`
	GracePeriod time.Duration `mapstructure:"grace_period"`

	CircuitBreaker *resilience.CircuitBreakerConfig `mapstructure:"-"`
}

// Backend implements synthesis.Provider with one process per call.
type Backend struct {
	cfg Config
	rr  *process.SubprocessProvider[synthesis.Request, []float32]
}

var _ synthesis.Provider = (*Backend)(nil)

// New creates a subprocess backend. An empty binary is a configuration error.
func New(cfg Config) (*Backend, error) {
	if cfg.Binary == "" {
		return nil, errors.Configuration("subprocess: binary is required")
	}
	b := &Backend{cfg: cfg}
	b.rr = process.NewSubprocessProvider(ProviderName, b.command, parseOutput).
		WithAvailabilityCheck(b.binaryExists).
		WithRunner(process.NewRunner(provider.ResilienceConfig{CircuitBreaker: cfg.CircuitBreaker}))
	return b, nil
}

// Factory builds subprocess backends from a generic config map with keys
// "binary" (string) and "args" ([]string or []any).
func Factory() provider.Factory[synthesis.Provider] {
	return func(m map[string]any) (synthesis.Provider, error) {
		cfg := Config{}
		cfg.Binary, _ = m["binary"].(string)
		switch v := m["args"].(type) {
		case []string:
			cfg.Args = v
		case []any:
			for _, a := range v {
				if s, ok := a.(string); ok {
					cfg.Args = append(cfg.Args, s)
				}
			}
		}
		if d, ok := m["timeout"].(time.Duration); ok {
			cfg.Timeout = d
		}
		return New(cfg)
	}
}

// Name returns ProviderName.
func (b *Backend) Name() string { return ProviderName }

// IsAvailable reports whether the binary resolves on PATH.
func (b *Backend) IsAvailable(ctx context.Context) bool { return b.rr.IsAvailable(ctx) }

// Synthesize runs the command once on req.Audio.
func (b *Backend) Synthesize(ctx context.Context, req synthesis.Request) ([]float32, error) {
	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}
	return b.rr.Execute(ctx, req)
}

func (b *Backend) binaryExists(context.Context) bool {
	_, err := exec.LookPath(b.cfg.Binary)
	return err == nil
}

func (b *Backend) command(req synthesis.Request) process.Command {
	args := make([]string, 0, len(b.cfg.Args)+11)
	args = append(args, b.cfg.Args...)
	args = append(args, Flags(req)...)
	return process.Command{
		Binary:      b.cfg.Binary,
		Args:        args,
		Dir:         b.cfg.Dir,
		Env:         b.cfg.Env,
		Stdin:       bytes.NewReader(audio.EncodeFloat32LE(req.Audio)),
		GracePeriod: b.cfg.GracePeriod,
	}
}

func parseOutput(r *process.Result) ([]float32, error) {
	return audio.DecodeFloat32LE(r.Stdout)
}

// Flags renders the conversion parameters of req as command-line flags.
func Flags(req synthesis.Request) []string {
	flags := []string{
		"--speaker-id", strconv.Itoa(req.SpeakerID),
		"--sample-rate", strconv.Itoa(req.SampleRate),
		"--transpose", strconv.FormatFloat(req.Transpose, 'g', -1, 64),
		"--cluster-ratio", strconv.FormatFloat(req.ClusterRatio, 'g', -1, 64),
		"--noise-scale", strconv.FormatFloat(req.NoiseScale, 'g', -1, 64),
	}
	if req.AutoPredictF0 {
		flags = append(flags, "--auto-predict-f0")
	}
	return flags
}
