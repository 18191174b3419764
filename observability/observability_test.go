package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected endpoint localhost:4318, got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.MetricInterval != 15*time.Second {
		t.Errorf("expected 15s interval, got %v", cfg.MetricInterval)
	}
}

func TestConfigDerivesExporterSettings(t *testing.T) {
	cfg := Config{Endpoint: "otel:4318", Insecure: true, SampleRate: 0.5, MetricInterval: time.Second, Environment: "prod"}
	tc := cfg.Tracer("voiceshift", "1.2.3")
	if tc.ServiceName != "voiceshift" || tc.ServiceVersion != "1.2.3" || tc.Endpoint != "otel:4318" || tc.SampleRate != 0.5 {
		t.Errorf("unexpected tracer config %+v", tc)
	}
	mc := cfg.Meter("voiceshift", "1.2.3")
	if mc.Interval != time.Second || mc.Environment != "prod" || !mc.Insecure {
		t.Errorf("unexpected meter config %+v", mc)
	}
}

func TestDefaultConfigs(t *testing.T) {
	if c := DefaultTracerConfig("svc"); c.ServiceName != "svc" || c.SampleRate != 1.0 || !c.Insecure {
		t.Errorf("unexpected tracer defaults %+v", c)
	}
	if c := DefaultMeterConfig("svc"); c.Interval != 15*time.Second {
		t.Errorf("unexpected meter defaults %+v", c)
	}
}

func TestNewResourceHasNoSchemaConflict(t *testing.T) {
	res, err := newResource("voiceshift", "1.0.0", "test")
	if err != nil {
		t.Fatalf("expected resources to merge, got %v", err)
	}
	found := false
	for _, kv := range res.Attributes() {
		if string(kv.Key) == "service.name" && kv.Value.AsString() == "voiceshift" {
			found = true
		}
	}
	if !found {
		t.Error("expected service.name attribute")
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
	}
	for _, tt := range tests {
		if got := samplerFor(tt.rate).Description(); got != tt.want {
			t.Errorf("rate %g: expected %s, got %s", tt.rate, tt.want, got)
		}
	}
	if samplerFor(0.5) == nil {
		t.Error("expected ratio sampler")
	}
}

func TestNewMetrics(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "voiceshift", "POST /v1/convert", "ok", 100*time.Millisecond)
	metrics.RecordOperation(ctx, "remote", "execute", "ok", 50*time.Millisecond)
	metrics.RecordError(ctx, "EXTERNAL_SERVICE_ERROR", "remote")
}

func TestAudioMetrics(t *testing.T) {
	m, err := NewAudioMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	m.RecordSynthesis(ctx, "identity", 16000, 16000, 250*time.Millisecond)
	m.RecordBlock(ctx, "chunkstore", 10*time.Millisecond)
	m.RecordCompressRate(ctx, 1.5)

	var nilMetrics *AudioMetrics
	nilMetrics.RecordSynthesis(ctx, "identity", 1, 1, time.Second)
	nilMetrics.RecordBlock(ctx, "crossfade", time.Second)
	nilMetrics.RecordCompressRate(ctx, 1)
}

func TestRealtimeCoef(t *testing.T) {
	tests := []struct {
		name    string
		samples int
		sr      int
		elapsed time.Duration
		want    float64
	}{
		{"4x realtime", 16000, 16000, 250 * time.Millisecond, 4},
		{"half realtime", 8000, 16000, time.Second, 0.5},
		{"zero elapsed", 16000, 16000, 0, 0},
		{"zero rate", 16000, 0, time.Second, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RealtimeCoef(tt.samples, tt.sr, tt.elapsed); got != tt.want {
				t.Errorf("expected %g, got %g", tt.want, got)
			}
		})
	}
}

func TestSetupDisabled(t *testing.T) {
	tel, err := Setup(context.Background(), Config{}, "voiceshift", "dev")
	if err != nil {
		t.Fatal(err)
	}
	if tel.Metrics == nil || tel.Audio == nil {
		t.Fatal("expected instruments even with export disabled")
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
	var none *Telemetry
	if err := none.Shutdown(context.Background()); err != nil {
		t.Errorf("expected nil telemetry shutdown to be a no-op, got %v", err)
	}
}

func TestSpanHelpersRecord(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	}()

	ctx, span := StartSpan(context.Background(), "voiceshift.remote")
	SetSpanAttribute(ctx, AttrProvider, "remote")
	SetSpanAttribute(ctx, AttrSamples, 16000)
	SetSpanAttribute(ctx, AttrSampleRate, int64(16000))
	SetSpanAttribute(ctx, "ratio", 0.5)
	SetSpanAttribute(ctx, "auto_f0", true)
	SetSpanAttribute(ctx, "ignored", struct{}{})
	SetSpanError(ctx, fmt.Errorf("backend down"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "voiceshift.remote" {
		t.Errorf("expected span name voiceshift.remote, got %s", spans[0].Name)
	}
	if len(spans[0].Attributes) != 5 {
		t.Errorf("expected 5 attributes, got %d", len(spans[0].Attributes))
	}
	if len(spans[0].Events) != 1 {
		t.Errorf("expected error event, got %d events", len(spans[0].Events))
	}
}

func TestSpanHelpersWithoutSpan(t *testing.T) {
	ctx := context.Background()
	SetSpanAttribute(ctx, "key", "value")
	SetSpanError(ctx, fmt.Errorf("no span"))
	if SpanFromContext(ctx) == nil {
		t.Error("expected no-op span")
	}
}

func TestComponent(t *testing.T) {
	tel, err := Setup(context.Background(), Config{}, "voiceshift", "dev")
	if err != nil {
		t.Fatal(err)
	}
	c := NewComponent(tel, Config{})
	if c.Name() != "telemetry" {
		t.Errorf("expected telemetry, got %s", c.Name())
	}
	if d := c.Describe(); d.Details != "export disabled" {
		t.Errorf("expected export disabled, got %q", d.Details)
	}
	if d := NewComponent(tel, Config{Enabled: true}).Describe(); d.Details != "otlp localhost:4318" {
		t.Errorf("expected default endpoint in details, got %q", d.Details)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Errorf("expected clean stop, got %v", err)
	}
}
