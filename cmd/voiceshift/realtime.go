package main

import (
	"context"
	"fmt"

	"github.com/kbukum/voiceshift/bootstrap"
	"github.com/kbukum/voiceshift/device"
	"github.com/kbukum/voiceshift/device/paudio"
	"github.com/kbukum/voiceshift/realtime"
)

func runRealtime(ctx context.Context, args []string) error {
	fs := newFlagSet("realtime")
	fs.bind("version", "realtime.version", func(n string) {
		fs.StringP(n, "v", realtime.DefaultVersion.String(), "reconciler version: 1 (crossfade) or 2 (chunk store)")
	})
	fs.bind("crossfade-seconds", "realtime.crossfade_seconds", func(n string) { fs.Float64(n, realtime.DefaultCrossfadeSeconds, "crossfade length for version 1") })
	fs.bind("split", "realtime.split", func(n string) { fs.Bool(n, true, "split windows on silence for version 1") })
	fs.bind("block-seconds", "realtime.device.block_seconds", func(n string) { fs.Float64(n, device.DefaultBlockSeconds, "audio block length") })
	fs.bind("input-device", "realtime.device.input_device", func(n string) { fs.StringP(n, "i", "", "input device name or index") })
	fs.bind("output-device", "realtime.device.output_device", func(n string) { fs.StringP(n, "o", "", "output device name or index") })
	fs.bind("input-channels", "realtime.device.input_channels", func(n string) { fs.Int(n, 1, "input channel count") })
	fs.bind("output-channels", "realtime.device.output_channels", func(n string) { fs.Int(n, 1, "output channel count") })
	list := fs.Bool("list-devices", false, "list audio devices and exit")

	cfg, err := fs.load(args)
	if err != nil {
		return err
	}

	driver, err := paudio.Open()
	if err != nil {
		return err
	}
	if *list {
		defer func() { _ = driver.Close() }()
		return listDevices(driver)
	}

	a, err := bootstrap.NewApp(cfg)
	if err != nil {
		_ = driver.Close()
		return err
	}
	if err := a.RegisterComponent(device.NewComponent(driver, driver.Close)); err != nil {
		_ = driver.Close()
		return err
	}
	eng, err := buildEngine(ctx, a)
	if err != nil {
		_ = driver.Close()
		return err
	}

	stream, err := newDeviceStream(a, eng, driver)
	if err != nil {
		_ = driver.Close()
		_ = eng.telemetry.Shutdown(ctx)
		return err
	}
	return a.RunTask(ctx, stream.Run)
}

func newDeviceStream(a *app, eng *engine, driver device.Driver) (*device.Stream, error) {
	cfg := a.Cfg
	v, opts, err := cfg.Realtime.Options(eng.conv, cfg.Voice.Params(), cfg.Slice)
	if err != nil {
		return nil, err
	}
	opts.Logger = a.Logger.WithComponent("realtime")
	opts.Audio = eng.telemetry.Audio
	rec, err := realtime.New(v, opts)
	if err != nil {
		return nil, err
	}
	return device.NewStream(driver, rec, eng.conv.SampleRate(), cfg.Realtime.Device)
}

func listDevices(d device.Driver) error {
	devices, err := d.Devices()
	if err != nil {
		return err
	}
	for _, dev := range devices {
		fmt.Println(dev.String())
	}
	return nil
}
