package main

import (
	"context"

	"github.com/kbukum/voiceshift/bootstrap"
	"github.com/kbukum/voiceshift/config"
	"github.com/kbukum/voiceshift/conversion"
	"github.com/kbukum/voiceshift/logger"
	"github.com/kbukum/voiceshift/observability"
	"github.com/kbukum/voiceshift/synthesis"
	"github.com/kbukum/voiceshift/synthesis/remote"
	"github.com/kbukum/voiceshift/synthesis/stub"
	"github.com/kbukum/voiceshift/synthesis/subprocess"
)

type app = bootstrap.App[*config.Voiceshift]

// engine is what every command converts with.
type engine struct {
	telemetry *observability.Telemetry
	model     *synthesis.ModelConfig
	conv      *conversion.Converter
}

// buildEngine loads the model, builds the wrapped backend and registers
// the telemetry and synthesis components with a.
func buildEngine(ctx context.Context, a *app) (*engine, error) {
	cfg := a.Cfg
	tel, err := observability.Setup(ctx, cfg.Telemetry, cfg.Name, cfg.Version)
	if err != nil {
		return nil, err
	}
	eng, err := newEngine(ctx, a, tel)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}
	return eng, nil
}

func newEngine(ctx context.Context, a *app, tel *observability.Telemetry) (*engine, error) {
	cfg := a.Cfg
	model, err := cfg.Model.Load()
	if err != nil {
		return nil, err
	}
	raw, details, err := newBackend(ctx, cfg.Backend)
	if err != nil {
		return nil, err
	}
	backend := synthesis.Wrap(raw, synthesis.MiddlewareOptions{
		Logger:      a.Logger.WithComponent("synthesis"),
		Metrics:     tel.Metrics,
		Audio:       tel.Audio,
		ServiceName: cfg.Name,
		Resilience:  cfg.Backend.Resilience(),
	})
	conv, err := conversion.NewConverter(backend, model.SampleRate, model.Speakers,
		conversion.WithLogger(a.Logger.WithComponent("conversion")))
	if err != nil {
		return nil, err
	}

	if err := a.RegisterComponent(observability.NewComponent(tel, cfg.Telemetry)); err != nil {
		return nil, err
	}
	if err := a.RegisterComponent(synthesis.NewComponent(backend, details)); err != nil {
		return nil, err
	}
	a.Logger.Info("Model loaded", logger.Fields(
		"sample_rate", model.SampleRate,
		"speakers", model.Speakers.Names(),
		logger.FieldProvider, raw.Name(),
	))
	return &engine{telemetry: tel, model: model, conv: conv}, nil
}

// newBackend builds the configured backend through the provider manager
// and returns a short description of it for the startup summary.
func newBackend(ctx context.Context, b config.BackendConfig) (synthesis.Provider, string, error) {
	m := synthesis.NewManager()
	m.Register(config.BackendRemote, func(map[string]any) (synthesis.Provider, error) {
		return remote.New(b.Remote)
	})
	m.Register(config.BackendSubprocess, func(map[string]any) (synthesis.Provider, error) {
		return subprocess.New(b.Subprocess)
	})
	m.Register(config.BackendIdentity, stub.Factory())

	if err := m.Initialize(b.Kind, nil); err != nil {
		return nil, "", err
	}
	if err := m.SetDefault(b.Kind); err != nil {
		return nil, "", err
	}
	p, err := m.Get(ctx)
	if err != nil {
		return nil, "", err
	}
	switch be := p.(type) {
	case *remote.Backend:
		return be, be.URL(), nil
	case *subprocess.Backend:
		return be, b.Subprocess.Binary, nil
	default:
		return p, "passthrough", nil
	}
}
