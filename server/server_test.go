package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voiceshift/component"
	apperrors "github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/logger"
)

type fakeComponent struct {
	name   string
	status component.HealthStatus
}

func (f *fakeComponent) Name() string                { return f.name }
func (f *fakeComponent) Start(context.Context) error { return nil }
func (f *fakeComponent) Stop(context.Context) error  { return nil }
func (f *fakeComponent) Health(context.Context) component.Health {
	return component.Health{Name: f.name, Status: f.status}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{}
	cfg.ApplyDefaults()
	return New(cfg, logger.NewDefault("test"))
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.WriteTimeout != 300 {
		t.Errorf("expected write timeout 300, got %d", cfg.WriteTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Port = 70000
	err := cfg.Validate()
	if !apperrors.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		status     component.HealthStatus
		wantCode   int
		wantStatus string
	}{
		{"healthy", component.StatusHealthy, http.StatusOK, "healthy"},
		{"degraded", component.StatusDegraded, http.StatusOK, "degraded"},
		{"unhealthy", component.StatusUnhealthy, http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := component.NewRegistry()
			if err := reg.Register(&fakeComponent{name: "synthesis", status: tt.status}); err != nil {
				t.Fatal(err)
			}
			s := newTestServer(t)
			s.ApplyMiddleware()
			s.RegisterDefaultEndpoints("voiceshift", HealthCheckerFor(reg), nil)

			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			var body struct {
				Status     string             `json:"status"`
				Components []component.Health `json:"components"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, body.Status)
			}
			if len(body.Components) != 1 {
				t.Errorf("expected 1 component, got %d", len(body.Components))
			}
		})
	}
}

func TestInfoEndpointMergesProvider(t *testing.T) {
	s := newTestServer(t)
	s.RegisterDefaultEndpoints("voiceshift", nil, func() map[string]any {
		return map[string]any{"sample_rate": 44100}
	})

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/info", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["service"] != "voiceshift" {
		t.Errorf("expected service voiceshift, got %v", body["service"])
	}
	if body["sample_rate"] != float64(44100) {
		t.Errorf("expected sample_rate 44100, got %v", body["sample_rate"])
	}
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(t)
	s.ApplyMiddleware()
	s.RegisterDefaultEndpoints("voiceshift", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/info", http.NoBody)
	req.Header.Set("X-Request-Id", "abc")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Request-Id"); got != "abc" {
		t.Errorf("expected request id abc, got %q", got)
	}
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"configuration", apperrors.Configuration("bad speaker"), http.StatusBadRequest, "CONFIGURATION_ERROR"},
		{"backend", apperrors.ExternalServiceError("remote", context.DeadlineExceeded), http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR"},
		{"plain", context.Canceled, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			RespondWithError(c, tt.err)
			if rr.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			var body apperrors.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if string(body.Error.Code) != tt.wantBody {
				t.Errorf("expected %s, got %s", tt.wantBody, body.Error.Code)
			}
		})
	}
}

func TestServerComponentLifecycle(t *testing.T) {
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	s := New(cfg, logger.NewDefault("test"))
	s.RegisterDefaultEndpoints("voiceshift", nil, nil)
	sc := NewComponent(s)

	if h := sc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := sc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = sc.Stop(context.Background()) }()

	if h := sc.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after start, got %s", h.Status)
	}

	resp, err := http.Get("http://" + s.Addr() + "/info")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRoutesOrdering(t *testing.T) {
	s := newTestServer(t)
	s.RegisterDefaultEndpoints("voiceshift", nil, nil)
	noop := func(*gin.Context) {}
	s.GinEngine().POST("/v1/convert", noop)
	s.GinEngine().GET("/v1/stream", noop)

	routes := NewComponent(s).Routes()
	if len(routes) != 4 {
		t.Fatalf("expected 4 routes, got %d", len(routes))
	}
	want := []string{"/v1/convert", "/v1/stream", "/health", "/info"}
	for i, r := range routes {
		if r.Path != want[i] {
			t.Errorf("route %d: expected %s, got %s", i, want[i], r.Path)
		}
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"github.com/kbukum/voiceshift/server/voice.(*Handler).Convert-fm", "Handler.Convert"},
		{"github.com/kbukum/voiceshift/server/endpoint.Health.func1", "health"},
		{"main.handler", "handler"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatHandlerName(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
