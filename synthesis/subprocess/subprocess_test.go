package subprocess

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/synthesis"
)

func TestSynthesizeRoundTripsThroughCat(t *testing.T) {
	// The flags land in "$@" of the sh script, which cat never sees.
	b, err := New(Config{Binary: "sh", Args: []string{"-c", "cat", "voiceshift-backend"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := []float32{0.5, -0.25, 0.125}
	out, err := b.Synthesize(context.Background(), synthesis.Request{Audio: in, SampleRate: 16000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d: expected %v, got %v", i, in[i], out[i])
		}
	}
	if !b.IsAvailable(context.Background()) {
		t.Error("expected sh to be available")
	}
}

func TestSynthesizePassesFlags(t *testing.T) {
	// Echo the received flags to stderr and fail so they surface in the error.
	b, _ := New(Config{Binary: "sh", Args: []string{"-c", `echo "$@" >&2; exit 2`, "backend"}})
	_, err := b.Synthesize(context.Background(), synthesis.Request{SpeakerID: 3, Transpose: 12, AutoPredictF0: true})
	if err == nil {
		t.Fatal("expected failure")
	}
	for _, want := range []string{"--speaker-id 3", "--transpose 12", "--auto-predict-f0"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeExternalService {
		t.Errorf("expected EXTERNAL_SERVICE_ERROR, got %v", err)
	}
}

func TestSynthesizeMalformedOutput(t *testing.T) {
	b, _ := New(Config{Binary: "sh", Args: []string{"-c", "printf abc", "backend"}})
	_, err := b.Synthesize(context.Background(), synthesis.Request{Audio: []float32{1}})
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeExternalService {
		t.Errorf("expected EXTERNAL_SERVICE_ERROR for truncated PCM, got %v", err)
	}
}

func TestSynthesizeTimeout(t *testing.T) {
	b, _ := New(Config{
		Binary:      "sh",
		Args:        []string{"-c", "sleep 5", "backend"},
		Timeout:     50 * time.Millisecond,
		GracePeriod: 100 * time.Millisecond,
	})
	start := time.Now()
	if _, err := b.Synthesize(context.Background(), synthesis.Request{}); err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 3*time.Second {
		t.Errorf("expected the process to be killed promptly, took %v", time.Since(start))
	}
}

func TestNewAndFactory(t *testing.T) {
	if _, err := New(Config{}); !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error for empty binary, got %v", err)
	}
	p, err := Factory()(map[string]any{"binary": "voiceshift-no-such-binary", "args": []any{"--model", "m.pth"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsAvailable(context.Background()) {
		t.Error("expected missing binary to be unavailable")
	}
	if got := p.(*Backend).cfg.Args; len(got) != 2 || got[1] != "m.pth" {
		t.Errorf("unexpected args %v", got)
	}
}

func TestFlags(t *testing.T) {
	got := strings.Join(Flags(synthesis.Request{SpeakerID: 1, SampleRate: 44100, NoiseScale: 0.4}), " ")
	want := "--speaker-id 1 --sample-rate 44100 --transpose 0 --cluster-ratio 0 --noise-scale 0.4"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
