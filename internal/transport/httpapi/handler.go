// Package httpapi exposes the chat, voice, and admin surfaces over
// HTTP. Handlers are thin: session semantics live in the store and the
// chat service.
package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/luminode/chatlead/internal/archive"
	"github.com/luminode/chatlead/internal/chat"
	"github.com/luminode/chatlead/internal/session"
	"github.com/luminode/chatlead/internal/voice"
)

// TranscriptReader serves archived transcripts to the admin surface.
type TranscriptReader interface {
	Load(ctx context.Context, sessionID string) (*archive.Record, error)
}

// Handler carries the service dependencies for all routes.
type Handler struct {
	svc     *chat.Service
	store   *session.Store
	synth   voice.Synthesizer // nil when no TTS backend is configured
	archive TranscriptReader  // nil when archiving is disabled
}

func NewHandler(svc *chat.Service, store *session.Store, synth voice.Synthesizer, transcripts TranscriptReader) *Handler {
	return &Handler{
		svc:     svc,
		store:   store,
		synth:   synth,
		archive: transcripts,
	}
}

// RegisterRoutes attaches all routes to the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	e.POST("/v1/chat", h.Chat)
	e.POST("/v1/sessions/:session_id/end", h.EndSession)

	e.GET("/v1/admin/stats", h.Stats)
	e.GET("/v1/admin/sessions", h.ActiveSessions)
	e.GET("/v1/admin/archive/:session_id", h.Transcript)

	e.GET("/v1/sessions/:session_id/voice", h.VoiceState)
	e.POST("/v1/sessions/:session_id/voice/state", h.UpdateVoiceState)
	e.PUT("/v1/sessions/:session_id/voice/enabled", h.SetVoiceEnabled)
	e.PUT("/v1/sessions/:session_id/voice/settings", h.UpdateVoiceSettings)
	e.POST("/v1/sessions/:session_id/voice/synthesize", h.Synthesize)
	e.POST("/v1/sessions/:session_id/voice/dequeue", h.DequeueAudio)
}

// Health responds once the process is serving.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
}

// Chat handles one inbound chat message.
// POST /v1/chat
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	reply, err := h.svc.HandleMessage(ctx, req.SessionID, req.UserID, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
		}
		log.Printf("ERROR: chat handling failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to process message"})
	}

	return c.JSON(http.StatusOK, reply)
}

// EndSession deactivates a session.
// POST /v1/sessions/:session_id/end
func (h *Handler) EndSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	if !h.svc.EndSession(ctx, sessionID) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"ended": true})
}

// Stats returns the aggregate session view.
// GET /v1/admin/stats
func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.GetStats())
}

// ActiveSessions lists active, unexpired sessions. The scan is O(n)
// over all known sessions; the dashboard polls this, clients must not.
// GET /v1/admin/sessions
func (h *Handler) ActiveSessions(c echo.Context) error {
	sessions := h.store.GetActiveSessions()
	if sessions == nil {
		sessions = []*session.Session{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// Transcript serves an archived conversation.
// GET /v1/admin/archive/:session_id
func (h *Handler) Transcript(c echo.Context) error {
	if h.archive == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "archiving is not enabled"})
	}

	ctx := c.Request().Context()
	record, err := h.archive.Load(ctx, c.Param("session_id"))
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "transcript not found"})
		}
		log.Printf("ERROR: failed to load transcript: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load transcript"})
	}
	return c.JSON(http.StatusOK, record)
}
