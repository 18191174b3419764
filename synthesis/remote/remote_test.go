package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kbukum/voiceshift/audio"
	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/resilience"
	"github.com/kbukum/voiceshift/synthesis"
)

// sidecar doubles every sample and appends one extra sample.
func sidecar(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(healthPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc(synthesizePath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("speaker_id") != "1" || q.Get("transpose") != "-3" || q.Get("noise_scale") != "0.4" || q.Get("auto_predict_f0") != "true" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		if r.Header.Get("Content-Type") != contentTypePCM {
			t.Errorf("expected PCM content type, got %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		in, err := audio.DecodeFloat32LE(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		out := make([]float32, len(in)+1)
		for i, v := range in {
			out[i] = 2 * v
		}
		_, _ = w.Write(audio.EncodeFloat32LE(out))
	})
	return httptest.NewServer(mux)
}

func testRequest() synthesis.Request {
	return synthesis.Request{
		Audio:         []float32{0.1, -0.2, 0.3},
		SampleRate:    16000,
		SpeakerID:     1,
		Transpose:     -3,
		NoiseScale:    0.4,
		AutoPredictF0: true,
	}
}

func TestSynthesize(t *testing.T) {
	srv := sidecar(t)
	defer srv.Close()

	b, err := New(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = b.Close(context.Background()) }()

	out, err := b.Synthesize(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float32{0.2, -0.4, 0.6, 0}
	if len(out) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], out[i])
		}
	}
	if !b.IsAvailable(context.Background()) {
		t.Error("expected sidecar to be available")
	}
}

func TestSynthesizeBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "CUDA out of memory", http.StatusInternalServerError)
	}))
	defer srv.Close()

	b, _ := New(Config{URL: srv.URL})
	_, err := b.Synthesize(context.Background(), testRequest())
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeExternalService {
		t.Fatalf("expected EXTERNAL_SERVICE_ERROR, got %v", err)
	}
	if b.IsAvailable(context.Background()) {
		t.Error("expected health check to fail against a 500 server")
	}
}

func TestSynthesizeMalformedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{1, 2, 3})
	}))
	defer srv.Close()

	b, _ := New(Config{URL: srv.URL})
	_, err := b.Synthesize(context.Background(), testRequest())
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeExternalService {
		t.Errorf("expected EXTERNAL_SERVICE_ERROR for truncated PCM, got %v", err)
	}
}

func TestSynthesizeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	b, _ := New(Config{
		URL:            url,
		Timeout:        time.Second,
		CircuitBreaker: &resilience.CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute},
	})
	_, err := b.Synthesize(context.Background(), testRequest())
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeServiceUnavailable {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
	_, err = b.Synthesize(context.Background(), testRequest())
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Details["reason"] != "circuit_open" {
		t.Errorf("expected circuit_open once the breaker trips, got %v", err)
	}
}

func TestFactory(t *testing.T) {
	p, err := Factory()(map[string]any{"url": "http://sidecar:9000", "timeout": "5s"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := p.(*Backend)
	if b.URL() != "http://sidecar:9000" || b.cfg.Timeout != 5*time.Second {
		t.Errorf("unexpected config %+v", b.cfg)
	}
	if _, err := Factory()(map[string]any{"timeout": "soon"}); !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error for bad timeout, got %v", err)
	}
	def, _ := Factory()(nil)
	if def.(*Backend).URL() != defaultURL {
		t.Errorf("expected default url, got %s", def.(*Backend).URL())
	}
}

func TestQuery(t *testing.T) {
	q := Query(synthesis.Request{SpeakerID: 2, SampleRate: 44100, ClusterRatio: 0.5})
	if q["speaker_id"] != "2" || q["sample_rate"] != "44100" || q["cluster_ratio"] != "0.5" || q["auto_predict_f0"] != "false" {
		t.Errorf("unexpected query %v", q)
	}
}
