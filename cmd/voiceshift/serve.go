package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kbukum/voiceshift/bootstrap"
	"github.com/kbukum/voiceshift/config"
	"github.com/kbukum/voiceshift/realtime"
	"github.com/kbukum/voiceshift/server"
	"github.com/kbukum/voiceshift/server/voice"
)

func runServe(ctx context.Context, args []string) error {
	fs := newFlagSet("serve")
	fs.bind("host", "server.host", func(n string) { fs.String(n, "", "listen host") })
	fs.bind("port", "server.port", func(n string) { fs.IntP(n, "p", 8080, "listen port") })
	cfg, err := fs.load(args)
	if err != nil {
		return err
	}

	a, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	eng, err := buildEngine(ctx, a)
	if err != nil {
		return err
	}
	defaults, err := voiceDefaults(cfg)
	if err != nil {
		_ = eng.telemetry.Shutdown(ctx)
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	h := voice.NewHandler(eng.conv,
		voice.WithDefaults(defaults),
		voice.WithAudioMetrics(eng.telemetry.Audio),
		voice.WithMetrics(voice.NewMetrics(reg)),
		voice.WithLogger(a.Logger.WithComponent("voice")),
	)
	srv := server.New(cfg.Server, a.Logger)
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(cfg.Name, server.HealthCheckerFor(a.Components), h.Info)
	srv.GinEngine().GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	h.Register(srv.GinEngine())

	// The server stops first, then the sessions it can no longer see.
	if err := a.RegisterComponent(h); err != nil {
		return err
	}
	if err := a.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}
	return a.Run(ctx)
}

// voiceDefaults turns the config sections into per-request defaults.
func voiceDefaults(cfg *config.Voiceshift) (voice.Defaults, error) {
	v, err := realtime.ParseVersion(cfg.Realtime.Version)
	if err != nil {
		return voice.Defaults{}, err
	}
	return voice.Defaults{
		Params:           cfg.Voice.Params(),
		Slice:            cfg.Slice,
		Version:          v,
		CrossfadeSeconds: cfg.Realtime.CrossfadeSeconds,
		Split:            cfg.Realtime.Split == nil || *cfg.Realtime.Split,
	}, nil
}
