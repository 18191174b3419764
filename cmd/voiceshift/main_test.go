package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/voiceshift/config"
	"github.com/kbukum/voiceshift/realtime"
)

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no args", nil, 2},
		{"help", []string{"help"}, 0},
		{"unknown", []string{"train"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if code := run(context.Background(), tt.args, &buf); code != tt.code {
				t.Errorf("expected exit %d, got %d", tt.code, code)
			}
			if !strings.Contains(buf.String(), "realtime") {
				t.Errorf("expected command list in usage, got %q", buf.String())
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	got := outputPath(filepath.Join("in", "take1.wav"))
	if want := filepath.Join("in", "take1.out.wav"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	fs := newFlagSet("test")
	cfg, err := fs.load([]string{"--speaker", "bob", "--transpose", "3", "--backend", "identity", "--sample-rate", "16000"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Voice.Speaker != "bob" {
		t.Errorf("expected speaker bob, got %q", cfg.Voice.Speaker)
	}
	if cfg.Voice.Transpose != 3 {
		t.Errorf("expected transpose 3, got %v", cfg.Voice.Transpose)
	}
	if cfg.Backend.Kind != config.BackendIdentity {
		t.Errorf("expected identity backend, got %q", cfg.Backend.Kind)
	}
	if cfg.Model.SampleRate != 16000 {
		t.Errorf("expected 16000, got %d", cfg.Model.SampleRate)
	}
	if cfg.Voice.NoiseScale != 0.4 {
		t.Errorf("expected default noise scale 0.4, got %v", cfg.Voice.NoiseScale)
	}
	if cfg.Slice.DBThresh != -40 {
		t.Errorf("expected default db_thresh -40, got %v", cfg.Slice.DBThresh)
	}
	if cfg.Version == "" {
		t.Error("expected version to be filled")
	}
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.BackendConfig
		wantErr bool
	}{
		{"identity", config.BackendConfig{Kind: config.BackendIdentity}, false},
		{"subprocess without binary", config.BackendConfig{Kind: config.BackendSubprocess}, true},
		{"unknown", config.BackendConfig{Kind: "gpu"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := newBackend(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestVoiceDefaults(t *testing.T) {
	split := false
	cfg := &config.Voiceshift{}
	cfg.Realtime.Split = &split
	cfg.ApplyDefaults()

	d, err := voiceDefaults(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if d.Split {
		t.Error("expected explicit split=false to be kept")
	}
	if d.Version != realtime.DefaultVersion {
		t.Errorf("expected default version, got %v", d.Version)
	}
	if d.Slice.ChunkSeconds != 0.5 {
		t.Errorf("expected chunk 0.5, got %v", d.Slice.ChunkSeconds)
	}

	cfg.Realtime.Version = "7"
	if _, err := voiceDefaults(cfg); err == nil {
		t.Error("expected unknown version to fail")
	}
}

func TestRunCommandHelp(t *testing.T) {
	var buf bytes.Buffer
	if code := run(context.Background(), []string{"infer", "--help"}, &buf); code != 0 {
		t.Errorf("expected exit 0 for --help, got %d", code)
	}
}

func TestInferRequiresInput(t *testing.T) {
	var buf bytes.Buffer
	if code := run(context.Background(), []string{"infer", "--backend", "identity", "--sample-rate", "16000"}, &buf); code != 1 {
		t.Errorf("expected exit 1 without --input, got %d", code)
	}
	if !strings.Contains(buf.String(), "input") {
		t.Errorf("expected the missing input to be reported, got %q", buf.String())
	}
}
