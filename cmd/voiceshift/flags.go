package main

import (
	"github.com/spf13/pflag"

	"github.com/kbukum/voiceshift/config"
	"github.com/kbukum/voiceshift/conversion"
	"github.com/kbukum/voiceshift/version"
)

// flagSet is a command's flags plus the config keys they override.
type flagSet struct {
	*pflag.FlagSet
	keys       map[string]string
	configFile string
	envFile    string
}

// newFlagSet registers the flags every command shares. Defaults match the
// config defaults since viper reads unset flags as defaults.
func newFlagSet(name string) *flagSet {
	fs := &flagSet{
		FlagSet: pflag.NewFlagSet(name, pflag.ContinueOnError),
		keys:    map[string]string{},
	}
	fs.SortFlags = false
	def := conversion.DefaultSliceConfig()

	fs.StringVar(&fs.configFile, "config", "", "config file (default: first config.yml found in ./cmd/voiceshift, ./config, . or ~/.config/voiceshift)")
	fs.StringVar(&fs.envFile, "env-file", "", "dotenv file loaded before reading the environment")

	fs.bind("model-config", "model.config", func(n string) { fs.StringP(n, "c", "", "path to the model's config.json") })
	fs.bind("sample-rate", "model.sample_rate", func(n string) { fs.Int(n, 0, "model sample rate; overrides the model config") })
	fs.bind("backend", "backend.kind", func(n string) { fs.String(n, "", "synthesis backend: remote, subprocess or identity") })
	fs.bind("backend-url", "backend.remote.url", func(n string) { fs.String(n, "", "remote backend base URL") })
	fs.bind("backend-binary", "backend.subprocess.binary", func(n string) { fs.String(n, "", "subprocess backend executable") })
	fs.bind("backend-timeout", "backend.remote.timeout", func(n string) { fs.Duration(n, 0, "remote backend request timeout") })

	fs.bind("speaker", "voice.speaker", func(n string) { fs.StringP(n, "s", "", "speaker name or id") })
	fs.bind("transpose", "voice.transpose", func(n string) { fs.Float64P(n, "t", 0, "pitch shift in semitones") })
	fs.bind("cluster-ratio", "voice.cluster_ratio", func(n string) { fs.Float64(n, 0, "cluster model ratio in [0, 1]") })
	fs.bind("noise-scale", "voice.noise_scale", func(n string) { fs.Float64(n, conversion.DefaultNoiseScale, "noise scale") })
	fs.bind("auto-predict-f0", "voice.auto_predict_f0", func(n string) { fs.BoolP(n, "a", false, "predict f0 automatically") })

	fs.bind("db-thresh", "slice.db_thresh", func(n string) { fs.Float64(n, def.DBThresh, "silence threshold in dB") })
	fs.bind("pad-seconds", "slice.pad_seconds", func(n string) { fs.Float64(n, def.PadSeconds, "padding added around each segment") })
	fs.bind("chunk-seconds", "slice.chunk_seconds", func(n string) { fs.Float64(n, def.ChunkSeconds, "segmenter hop in seconds") })
	fs.bind("absolute-thresh", "slice.absolute_thresh", func(n string) { fs.Bool(n, false, "treat db-thresh as absolute rather than relative to the peak") })

	fs.bind("log-level", "logging.level", func(n string) { fs.String(n, "", "log level: debug, info, warn or error") })
	fs.bind("log-format", "logging.format", func(n string) { fs.String(n, "", "log format: console or json") })
	fs.bind("debug", "debug", func(n string) { fs.Bool(n, false, "enable debug logging") })
	return fs
}

// bind defines a flag with def and records its config key.
func (fs *flagSet) bind(name, key string, def func(name string)) {
	def(name)
	fs.keys[name] = key
}

// load parses args and builds the layered configuration.
func (fs *flagSet) load(args []string) (*config.Voiceshift, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts := []config.LoaderOption{config.WithFlags(fs.FlagSet, fs.keys)}
	if fs.configFile != "" {
		opts = append(opts, config.WithConfigFile(fs.configFile))
	}
	if fs.envFile != "" {
		opts = append(opts, config.WithEnvFile(fs.envFile))
	}
	cfg := &config.Voiceshift{}
	if err := config.LoadConfig(config.ServiceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Version == "" {
		cfg.Version = version.GetShortVersion()
	}
	return cfg, nil
}
