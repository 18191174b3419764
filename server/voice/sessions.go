package voice

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kbukum/voiceshift/component"
)

var _ component.Component = (*Handler)(nil)

func (h *Handler) addSession(s *session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s] = struct{}{}
	h.metrics.SessionsOpened.Inc()
	h.metrics.ActiveSessions.Inc()
	return true
}

func (h *Handler) removeSession(s *session) {
	h.mu.Lock()
	if _, ok := h.sessions[s]; ok {
		delete(h.sessions, s)
		h.metrics.ActiveSessions.Dec()
	}
	h.mu.Unlock()
	s.cancel()
	s.rec.Reset()
	_ = s.conn.Close()
}

// Sessions is the number of open stream sessions.
func (h *Handler) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Name returns the registry name.
func (h *Handler) Name() string { return "voice-sessions" }

// Start accepts new sessions.
func (h *Handler) Start(context.Context) error {
	h.mu.Lock()
	h.closed = false
	h.mu.Unlock()
	return nil
}

// Stop refuses new sessions and closes the open ones, since the HTTP
// server's shutdown does not reach hijacked connections.
func (h *Handler) Stop(context.Context) error {
	h.mu.Lock()
	h.closed = true
	open := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		open = append(open, s)
	}
	h.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	for _, s := range open {
		s.cancel()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		_ = s.conn.Close()
	}
	if len(open) > 0 {
		h.log.Info(fmt.Sprintf("Closed %d stream sessions", len(open)))
	}
	return nil
}

// Health is always healthy; the message carries the session count.
func (h *Handler) Health(context.Context) component.Health {
	return component.Health{
		Name:    h.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d open sessions", h.Sessions()),
	}
}
