package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/realtime"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if cfg.Logging.ServiceName != "svc" {
			t.Errorf("expected logging service name 'svc', got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("debug raises log level", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Debug: true}
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected level 'debug', got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid development", ServiceConfig{Name: "svc", Environment: "development"}, ""},
		{"valid production", ServiceConfig{Name: "svc", Environment: "production"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "name"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "invalid"}, "environment"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfig(t, `
name: voiceshift
environment: staging
model:
  config: /models/alice/config.json
backend:
  kind: subprocess
  subprocess:
    binary: /usr/bin/svc-infer
slice:
  db_thresh: -30
realtime:
  version: "1"
  split: false
  device:
    block_seconds: 0.25
`)

	var cfg Voiceshift
	if err := LoadConfig("voiceshift-yaml-test", &cfg, WithConfigFile(path), WithFileSystem(RealFileSystem{})); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Model.ConfigPath != "/models/alice/config.json" {
		t.Errorf("expected model config path, got %q", cfg.Model.ConfigPath)
	}
	if cfg.Backend.Subprocess.Binary != "/usr/bin/svc-infer" {
		t.Errorf("expected subprocess binary, got %q", cfg.Backend.Subprocess.Binary)
	}
	if cfg.Slice.DBThresh != -30 {
		t.Errorf("expected db_thresh -30, got %v", cfg.Slice.DBThresh)
	}
	if cfg.Slice.ChunkSeconds != 0.5 {
		t.Errorf("expected default chunk_seconds 0.5, got %v", cfg.Slice.ChunkSeconds)
	}
	if cfg.Realtime.Split == nil || *cfg.Realtime.Split {
		t.Error("expected explicit split=false to survive defaults")
	}
	if cfg.Realtime.Device.BlockSeconds != 0.25 {
		t.Errorf("expected block_seconds 0.25, got %v", cfg.Realtime.Device.BlockSeconds)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := writeConfig(t, `
name: voiceshift
voice:
  transpose: 3
  speaker: alice
slice:
  pad_seconds: 0.2
`)
	t.Setenv("VOICESHIFT_PRECEDENCE_TEST_VOICE_SPEAKER", "bob")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Float64("transpose", 0, "")
	fs.Float64("pad-seconds", 0.5, "")
	if err := fs.Parse([]string{"--transpose", "-5"}); err != nil {
		t.Fatal(err)
	}

	var cfg Voiceshift
	err := LoadConfig("voiceshift-precedence-test", &cfg,
		WithConfigFile(path),
		WithFlags(fs, map[string]string{"transpose": "voice.transpose", "pad-seconds": "slice.pad_seconds"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Voice.Transpose != -5 {
		t.Errorf("expected flag to win with -5, got %v", cfg.Voice.Transpose)
	}
	if cfg.Voice.Speaker != "bob" {
		t.Errorf("expected env to win with bob, got %q", cfg.Voice.Speaker)
	}
	if cfg.Slice.PadSeconds != 0.2 {
		t.Errorf("expected file value 0.2 over an unset flag, got %v", cfg.Slice.PadSeconds)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg Voiceshift
	err := LoadConfig("voiceshift", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool   { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/voiceshift/config.yml": true,
		"./config.yml":                true,
		"./.env":                      true,
	}}
	files := (&Resolver{FileSystem: fs}).ResolveFiles("voiceshift", LoaderConfig{})
	if files.ConfigFile != "./cmd/voiceshift/config.yml" {
		t.Errorf("expected ./cmd/voiceshift/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("expected ./.env, got %q", files.EnvFile)
	}

	explicit := (&Resolver{FileSystem: fs}).ResolveFiles("voiceshift", LoaderConfig{ConfigFile: "/etc/vs.yml"})
	if explicit.ConfigFile != "/etc/vs.yml" {
		t.Errorf("expected explicit file to win, got %q", explicit.ConfigFile)
	}
}

func TestKeys(t *testing.T) {
	keys := strings.Join(Keys(&Voiceshift{}), ",")
	for _, want := range []string{
		"name",
		"logging.level",
		"model.config",
		"backend.remote.url",
		"backend.circuit_breaker.max_failures",
		"slice.db_thresh",
		"realtime.split",
		"realtime.device.input_device",
		"server.port",
		"telemetry.enabled",
	} {
		if !strings.Contains(","+keys+",", ","+want+",") {
			t.Errorf("expected key %q in %s", want, keys)
		}
	}
	if strings.Contains(keys, "on_state_change") {
		t.Error("function fields must not become keys")
	}
}

func TestEnvPrefix(t *testing.T) {
	if got := EnvPrefix("voice-shift"); got != "VOICE_SHIFT" {
		t.Errorf("expected VOICE_SHIFT, got %s", got)
	}
}

func TestVoiceshiftDefaults(t *testing.T) {
	var cfg Voiceshift
	cfg.ApplyDefaults()
	if cfg.Name != ServiceName {
		t.Errorf("expected name %s, got %q", ServiceName, cfg.Name)
	}
	if cfg.Backend.Kind != BackendRemote {
		t.Errorf("expected remote backend, got %q", cfg.Backend.Kind)
	}
	if cfg.Slice.DBThresh != -40 || cfg.Slice.PadSeconds != 0.5 {
		t.Errorf("expected default slice, got %+v", cfg.Slice)
	}
	if cfg.Realtime.Version != realtime.VersionChunkStore.String() {
		t.Errorf("expected chunk_store, got %q", cfg.Realtime.Version)
	}
	if cfg.Realtime.Split == nil || !*cfg.Realtime.Split {
		t.Error("expected split to default to true")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if !cfg.Backend.Resilience().IsEmpty() {
		t.Error("expected no resilience policies by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestVoiceshiftValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Voiceshift)
	}{
		{"unknown backend", func(c *Voiceshift) { c.Backend.Kind = "gpu" }},
		{"subprocess without binary", func(c *Voiceshift) { c.Backend.Kind = BackendSubprocess }},
		{"cluster ratio", func(c *Voiceshift) { c.Voice.ClusterRatio = 1.5 }},
		{"positive db thresh", func(c *Voiceshift) { c.Slice.DBThresh = 6 }},
		{"unknown version", func(c *Voiceshift) { c.Realtime.Version = "3" }},
		{"block seconds", func(c *Voiceshift) { c.Realtime.Device.BlockSeconds = -1 }},
		{"port", func(c *Voiceshift) { c.Server.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Voiceshift
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.IsConfiguration(err) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestBackendResilience(t *testing.T) {
	b := BackendConfig{Kind: BackendRemote}
	b.CircuitBreaker.MaxFailures = 3
	b.Bulkhead.MaxConcurrent = 2
	b.ApplyDefaults()
	rc := b.Resilience()
	if rc.CircuitBreaker == nil || rc.CircuitBreaker.MaxFailures != 3 {
		t.Errorf("expected circuit breaker with 3 failures, got %+v", rc.CircuitBreaker)
	}
	if rc.Bulkhead == nil || rc.Bulkhead.MaxWait == 0 {
		t.Errorf("expected bulkhead with a default wait, got %+v", rc.Bulkhead)
	}
	if rc.CircuitBreaker.Name != BackendRemote {
		t.Errorf("expected breaker named after the backend, got %q", rc.CircuitBreaker.Name)
	}
}

func TestModelConfigLoad(t *testing.T) {
	if _, err := (ModelConfig{}).Load(); !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error without path or rate, got %v", err)
	}

	mc, err := ModelConfig{SampleRate: 16000}.Load()
	if err != nil {
		t.Fatal(err)
	}
	if mc.SampleRate != 16000 || mc.Speakers.Len() != 1 {
		t.Errorf("expected 16 kHz with one speaker, got %d and %d", mc.SampleRate, mc.Speakers.Len())
	}

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"data":{"sampling_rate":44100,"hop_length":512},"spk":{"alice":0,"bob":1}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	mc, err = ModelConfig{ConfigPath: path, SampleRate: 22050}.Load()
	if err != nil {
		t.Fatal(err)
	}
	if mc.SampleRate != 22050 {
		t.Errorf("expected override 22050, got %d", mc.SampleRate)
	}
	if mc.Speakers.Len() != 2 {
		t.Errorf("expected 2 speakers, got %d", mc.Speakers.Len())
	}
}
