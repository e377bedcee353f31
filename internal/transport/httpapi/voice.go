package httpapi

import (
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/luminode/chatlead/internal/session"
)

// VoiceState returns the session's voice state.
// GET /v1/sessions/:session_id/voice
func (h *Handler) VoiceState(c echo.Context) error {
	vs, ok := h.store.GetVoiceState(c.Param("session_id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"voice_state": vs,
		"phase":       vs.Phase(),
	})
}

type voiceStateRequest struct {
	IsRecording bool `json:"is_recording"`
	IsPlaying   bool `json:"is_playing"`
}

// UpdateVoiceState sets the recording/playback flags.
// POST /v1/sessions/:session_id/voice/state
func (h *Handler) UpdateVoiceState(c echo.Context) error {
	var req voiceStateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if !h.store.UpdateVoiceState(c.Param("session_id"), req.IsRecording, req.IsPlaying) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

type voiceEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// SetVoiceEnabled gates synthesis for the session. Toggling never
// clears the playback queue.
// PUT /v1/sessions/:session_id/voice/enabled
func (h *Handler) SetVoiceEnabled(c echo.Context) error {
	var req voiceEnabledRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if !h.store.SetVoiceEnabled(c.Param("session_id"), req.Enabled) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateVoiceSettings merges a settings patch.
// PUT /v1/sessions/:session_id/voice/settings
func (h *Handler) UpdateVoiceSettings(c echo.Context) error {
	var patch session.VoiceSettingsPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if !h.store.UpdateVoiceSettings(c.Param("session_id"), patch) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

type synthesizeRequest struct {
	Text      string `json:"text"`
	MessageID string `json:"message_id"`
}

// Synthesize asks the TTS collaborator for audio and, only on success,
// queues the result for playback. A synthesis failure never mutates
// queue state.
// POST /v1/sessions/:session_id/voice/synthesize
func (h *Handler) Synthesize(c echo.Context) error {
	if h.synth == nil {
		return c.JSON(http.StatusNotImplemented, map[string]string{"error": "voice synthesis is not configured"})
	}

	sessionID := c.Param("session_id")

	var req synthesizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "text is required"})
	}

	vs, ok := h.store.GetVoiceState(sessionID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	if !vs.VoiceEnabled {
		return c.JSON(http.StatusConflict, map[string]string{"error": "voice is disabled for this session"})
	}

	audioURL, err := h.synth.Synthesize(c.Request().Context(), req.Text, vs.VoiceSettings.VoiceID)
	if err != nil {
		log.Printf("ERROR: synthesis failed for session %s: %v", sessionID, err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "synthesis failed"})
	}

	if !h.store.QueueAudio(sessionID, audioURL, req.MessageID) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"audio_url": audioURL})
}

// DequeueAudio pops the next clip for playback.
// POST /v1/sessions/:session_id/voice/dequeue
func (h *Handler) DequeueAudio(c echo.Context) error {
	item, ok := h.store.DequeueAudio(c.Param("session_id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "queue is empty"})
	}
	return c.JSON(http.StatusOK, item)
}
