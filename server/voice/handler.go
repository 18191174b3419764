package voice

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kbukum/voiceshift/audio"
	"github.com/kbukum/voiceshift/conversion"
	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/logger"
	"github.com/kbukum/voiceshift/observability"
	"github.com/kbukum/voiceshift/server"
)

// HeaderSegments reports how many segments a conversion was cut into.
const HeaderSegments = "X-Voiceshift-Segments"

// Handler serves the conversion endpoints for one model.
type Handler struct {
	conv     *conversion.Converter
	defaults Defaults
	upgrader websocket.Upgrader
	audio    *observability.AudioMetrics
	metrics  *Metrics
	log      *logger.Logger

	mu       sync.Mutex
	sessions map[*session]struct{}
	closed   bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithDefaults replaces the parameters used when a query omits them.
func WithDefaults(d Defaults) Option {
	return func(h *Handler) { h.defaults = d }
}

// WithAudioMetrics records reconciler metrics for stream sessions.
func WithAudioMetrics(m *observability.AudioMetrics) Option {
	return func(h *Handler) { h.audio = m }
}

// WithMetrics records request and session counts in m.
func WithMetrics(m *Metrics) Option {
	return func(h *Handler) {
		if m != nil {
			h.metrics = m
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l.WithComponent("voice")
		}
	}
}

// WithCheckOrigin sets the WebSocket origin check. The default accepts
// every origin, matching the permissive CORS defaults.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Handler) { h.upgrader.CheckOrigin = fn }
}

// NewHandler creates a handler converting with conv.
func NewHandler(conv *conversion.Converter, opts ...Option) *Handler {
	h := &Handler{
		conv:     conv,
		defaults: DefaultDefaults(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		metrics:  NewMetrics(nil),
		log:      logger.Get("server").WithComponent("voice"),
		sessions: make(map[*session]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/convert", h.Convert)
	v1.GET("/stream", h.Stream)
}

// Info reports the model details for /info.
func (h *Handler) Info() map[string]any {
	return map[string]any{
		"sample_rate":     h.conv.SampleRate(),
		"speakers":        h.conv.Speakers().Names(),
		"backend":         h.conv.Backend().Name(),
		"stream_sessions": h.Sessions(),
	}
}

// Convert runs the offline pipeline on a WAV body.
func (h *Handler) Convert(c *gin.Context) {
	ctx := c.Request.Context()
	log := h.log.WithContext(ctx)

	p, slice, err := conversionQuery(c.Request.URL.Query(), h.defaults)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		server.RespondWithError(c, errors.InvalidInput("body", err.Error()).WithCause(err))
		return
	}
	clip, err := audio.DecodeWAVBytes(body)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	sr := h.conv.SampleRate()
	in := audio.Resample(clip.Mono(), clip.SampleRate, sr)

	segments := 0
	off := conversion.NewOffline(h.conv, conversion.WithOnSegment(func(conversion.SegmentResult) {
		segments++
	}))

	start := time.Now()
	out, err := off.Process(ctx, in, p, slice)
	if err != nil {
		if _, ok := errors.AsAppError(err); !ok {
			err = errors.ExternalServiceError(h.conv.Backend().Name(), err)
		}
		log.Error("Conversion failed", logger.ErrorFields("convert", err))
		h.countConversion(err)
		server.RespondWithError(c, err)
		return
	}

	wavOut, err := audio.WAVBytes(out, sr)
	if err != nil {
		server.RespondWithError(c, errors.Internal(err))
		return
	}

	elapsed := time.Since(start)
	h.countConversion(nil)
	h.metrics.ConvertDuration.Observe(elapsed.Seconds())
	log.Info("Converted recording", logger.Fields(
		logger.FieldSpeaker, p.Speaker.String(),
		logger.FieldSegment, segments,
		"seconds", float64(len(out))/float64(sr),
		logger.FieldDuration, elapsed.Milliseconds(),
		logger.FieldRealtimeCoef, observability.RealtimeCoef(len(out), sr, elapsed),
	))
	c.Header(HeaderSegments, strconv.Itoa(segments))
	c.Data(http.StatusOK, "audio/wav", wavOut)
}

func (h *Handler) countConversion(err error) {
	code := "OK"
	if appErr, ok := errors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	h.metrics.Conversions.WithLabelValues(code).Inc()
}
