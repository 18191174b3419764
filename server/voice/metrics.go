package voice

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors for the conversion endpoints.
type Metrics struct {
	ActiveSessions  prometheus.Gauge
	SessionsOpened  prometheus.Counter
	Blocks          prometheus.Counter
	BlockErrors     prometheus.Counter
	Conversions     *prometheus.CounterVec
	ConvertDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voiceshift_stream_sessions_active",
			Help: "Current number of open stream sessions",
		}),
		SessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voiceshift_stream_sessions_total",
			Help: "Total number of stream sessions opened",
		}),
		Blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voiceshift_stream_blocks_total",
			Help: "Total number of stream blocks converted",
		}),
		BlockErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voiceshift_stream_block_errors_total",
			Help: "Total number of stream frames answered with an error",
		}),
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voiceshift_convert_requests_total",
			Help: "Total number of offline conversion requests by result code",
		}, []string{"code"}),
		ConvertDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "voiceshift_convert_duration_seconds",
			Help:    "Wall time of offline conversions",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ActiveSessions, m.SessionsOpened, m.Blocks, m.BlockErrors, m.Conversions, m.ConvertDuration)
	}
	return m
}
