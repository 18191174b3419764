package voice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kbukum/voiceshift/audio"
	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/logger"
	"github.com/kbukum/voiceshift/realtime"
	"github.com/kbukum/voiceshift/server"
)

// Control message types exchanged as text frames.
const (
	MessageReady = "ready"
	MessageReset = "reset"
	MessageStats = "stats"
	MessageError = "error"
)

// maxFrameBytes bounds one binary frame to ten seconds at 48 kHz.
const maxFrameBytes = 10 * 48000 * 4

// ControlMessage is a text frame in either direction.
type ControlMessage struct {
	Type       string `json:"type"`
	Session    string `json:"session,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Version    string `json:"version,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
	Stats      *Stats `json:"stats,omitempty"`
}

// Stats is the reply to a stats request.
type Stats struct {
	Blocks         int     `json:"blocks"`
	PendingSamples int     `json:"pending_samples"`
	StoredSegments int     `json:"stored_segments"`
	StoredSamples  int     `json:"stored_samples"`
	CompressRate   float64 `json:"compress_rate"`
}

type session struct {
	id     string
	conn   *websocket.Conn
	rec    realtime.Reconciler
	cancel context.CancelFunc
	blocks int
}

// Stream upgrades to a WebSocket session. Parameters are checked before
// the upgrade so that a bad query gets a JSON error response.
func (h *Handler) Stream(c *gin.Context) {
	v, opts, err := streamQuery(c.Request.URL.Query(), h.defaults)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	id, err := sessionID(c.Request.URL.Query())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	log := h.log.WithContext(logger.ContextWithSessionID(c.Request.Context(), id))
	opts.Converter = h.conv
	opts.Logger = log
	opts.Audio = h.audio
	rec, err := realtime.New(v, opts)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("WebSocket upgrade failed", logger.ErrorFields("upgrade", err))
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	ctx, cancel := context.WithCancel(logger.ContextWithSessionID(context.Background(), id))
	s := &session{id: id, conn: conn, rec: rec, cancel: cancel}
	if !h.addSession(s) {
		cancel()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	defer h.removeSession(s)

	log.Info("Stream session opened", logger.Fields("version", v.String(), "remote", c.Request.RemoteAddr))
	start := time.Now()
	err = h.serve(ctx, s, v)
	fields := logger.Fields("blocks", s.blocks, logger.FieldDuration, time.Since(start).Milliseconds())
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
		log.WithError(err).Warn("Stream session ended with error", fields)
		return
	}
	log.Info("Stream session closed", fields)
}

func (h *Handler) serve(ctx context.Context, s *session, v realtime.Version) error {
	err := s.conn.WriteJSON(ControlMessage{
		Type:       MessageReady,
		Session:    s.id,
		SampleRate: h.conv.SampleRate(),
		Version:    v.String(),
	})
	if err != nil {
		return err
	}

	for {
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}
		switch mt {
		case websocket.BinaryMessage:
			if err := h.processBlock(ctx, s, data); err != nil {
				return err
			}
		case websocket.TextMessage:
			if err := h.control(s, data); err != nil {
				return err
			}
		}
	}
}

// processBlock answers one binary frame. A malformed frame is reported and
// skipped; a reconciler failure ends the session.
func (h *Handler) processBlock(ctx context.Context, s *session, data []byte) error {
	block, err := audio.DecodeFloat32LE(data)
	if err != nil {
		h.metrics.BlockErrors.Inc()
		return sendError(s.conn, err)
	}
	out, err := s.rec.Process(ctx, block)
	if err != nil {
		if _, ok := errors.AsAppError(err); !ok {
			err = errors.ExternalServiceError(h.conv.Backend().Name(), err)
		}
		h.metrics.BlockErrors.Inc()
		if werr := sendError(s.conn, err); werr != nil {
			return werr
		}
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "conversion failed"), time.Now().Add(time.Second))
		return err
	}
	s.blocks++
	h.metrics.Blocks.Inc()
	return s.conn.WriteMessage(websocket.BinaryMessage, audio.EncodeFloat32LE(out))
}

func (h *Handler) control(s *session, data []byte) error {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return sendError(s.conn, errors.InvalidInput("message", "control frames must be JSON"))
	}
	switch msg.Type {
	case MessageReset:
		s.rec.Reset()
		return s.conn.WriteJSON(ControlMessage{Type: MessageReset, Session: s.id})
	case MessageStats:
		return s.conn.WriteJSON(ControlMessage{Type: MessageStats, Session: s.id, Stats: sessionStats(s)})
	default:
		return sendError(s.conn, errors.InvalidInput("type", "unknown control message "+msg.Type))
	}
}

func sessionStats(s *session) *Stats {
	st := &Stats{Blocks: s.blocks, CompressRate: 1}
	if cs, ok := s.rec.(*realtime.ChunkStore); ok {
		rs := cs.Stats()
		st.PendingSamples = rs.PendingSamples
		st.StoredSegments = rs.StoredSegments
		st.StoredSamples = rs.StoredSamples
		st.CompressRate = rs.CompressRate
	}
	return st
}

func sendError(conn *websocket.Conn, err error) error {
	msg := ControlMessage{Type: MessageError, Code: string(errors.ErrCodeInternal), Message: err.Error()}
	if appErr, ok := errors.AsAppError(err); ok {
		msg.Code = string(appErr.Code)
		msg.Message = appErr.Message
	}
	return conn.WriteJSON(msg)
}
