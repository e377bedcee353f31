package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminode/chatlead/internal/chat"
	"github.com/luminode/chatlead/internal/llm"
	"github.com/luminode/chatlead/internal/scoring"
	"github.com/luminode/chatlead/internal/session"
)

type fakeSynth struct {
	audioURL string
	err      error
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.audioURL, nil
}

func newTestHandler(t *testing.T) (*Handler, *session.Store) {
	t.Helper()
	store := session.NewStore(30 * time.Minute)
	svc := chat.NewService(store, llm.NewMockGenerator(), scoring.DefaultWeights())
	h := NewHandler(svc, store, &fakeSynth{audioURL: "https://audio/clip.mp3"}, nil)
	return h, store
}

func doJSON(t *testing.T, h func(echo.Context) error, method, path, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()

	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestChatCreatesSession(t *testing.T) {
	h, store := newTestHandler(t)

	rec := doJSON(t, h.Chat, http.MethodPost, "/v1/chat", `{"message":"What's the pricing for a website?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var reply chat.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.NotEmpty(t, reply.SessionID)
	assert.Equal(t, scoring.IntentPricing, reply.Intent)
	assert.GreaterOrEqual(t, reply.LeadScore, 20)

	_, ok := store.GetSession(reply.SessionID)
	assert.True(t, ok)
}

func TestChatEmptyMessage(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.Chat, http.MethodPost, "/v1/chat", `{"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEndSession(t *testing.T) {
	h, store := newTestHandler(t)
	sess := store.CreateSession("")

	rec := doJSON(t, h.EndSession, http.MethodPost, "/v1/sessions/x/end", "", "session_id", sess.SessionID)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h.EndSession, http.MethodPost, "/v1/sessions/x/end", "", "session_id", "never-existed")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	h, store := newTestHandler(t)
	store.CreateSession("")
	sess := store.CreateSession("")
	store.MarkLeadCreated(sess.SessionID, "lead-1")

	rec := doJSON(t, h.Stats, http.MethodGet, "/v1/admin/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats session.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 1, stats.SessionsWithLeads)
}

func TestActiveSessionsEmpty(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.ActiveSessions, http.MethodGet, "/v1/admin/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sessions []session.Session `json:"sessions"`
		Count    int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Sessions)
}

func TestTranscriptWithoutArchive(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.Transcript, http.MethodGet, "/v1/admin/archive/s1", "", "session_id", "s1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSynthesizeQueuesOnSuccess(t *testing.T) {
	h, store := newTestHandler(t)
	sess := store.CreateSession("")
	require.True(t, store.SetVoiceEnabled(sess.SessionID, true))

	rec := doJSON(t, h.Synthesize, http.MethodPost, "/v1/sessions/x/voice/synthesize",
		`{"text":"Welcome!","message_id":"msg-1"}`, "session_id", sess.SessionID)
	require.Equal(t, http.StatusOK, rec.Code)

	vs, ok := store.GetVoiceState(sess.SessionID)
	require.True(t, ok)
	require.Len(t, vs.AudioQueue, 1)
	assert.Equal(t, "https://audio/clip.mp3", vs.AudioQueue[0].AudioURL)
	assert.Equal(t, "msg-1", vs.CurrentPlayingMessageID)
}

func TestSynthesizeFailureDoesNotQueue(t *testing.T) {
	store := session.NewStore(30 * time.Minute)
	svc := chat.NewService(store, llm.NewMockGenerator(), scoring.DefaultWeights())
	h := NewHandler(svc, store, &fakeSynth{err: errors.New("tts down")}, nil)

	sess := store.CreateSession("")
	require.True(t, store.SetVoiceEnabled(sess.SessionID, true))

	rec := doJSON(t, h.Synthesize, http.MethodPost, "/v1/sessions/x/voice/synthesize",
		`{"text":"Welcome!","message_id":"msg-1"}`, "session_id", sess.SessionID)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	vs, ok := store.GetVoiceState(sess.SessionID)
	require.True(t, ok)
	assert.Empty(t, vs.AudioQueue)
}

func TestSynthesizeVoiceDisabled(t *testing.T) {
	h, store := newTestHandler(t)
	sess := store.CreateSession("")

	rec := doJSON(t, h.Synthesize, http.MethodPost, "/v1/sessions/x/voice/synthesize",
		`{"text":"Welcome!"}`, "session_id", sess.SessionID)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDequeueFlow(t *testing.T) {
	h, store := newTestHandler(t)
	sess := store.CreateSession("")
	store.QueueAudio(sess.SessionID, "https://audio/1.mp3", "msg-1")
	store.QueueAudio(sess.SessionID, "https://audio/2.mp3", "msg-2")

	rec := doJSON(t, h.DequeueAudio, http.MethodPost, "/v1/sessions/x/voice/dequeue", "", "session_id", sess.SessionID)
	require.Equal(t, http.StatusOK, rec.Code)

	var item session.QueuedAudio
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "https://audio/1.mp3", item.AudioURL)

	rec = doJSON(t, h.DequeueAudio, http.MethodPost, "/v1/sessions/x/voice/dequeue", "", "session_id", sess.SessionID)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h.DequeueAudio, http.MethodPost, "/v1/sessions/x/voice/dequeue", "", "session_id", sess.SessionID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVoiceSettingsUpdate(t *testing.T) {
	h, store := newTestHandler(t)
	sess := store.CreateSession("")

	rec := doJSON(t, h.UpdateVoiceSettings, http.MethodPut, "/v1/sessions/x/voice/settings",
		`{"voice_id":"rachel","playback_speed":1.5}`, "session_id", sess.SessionID)
	require.Equal(t, http.StatusNoContent, rec.Code)

	vs, ok := store.GetVoiceState(sess.SessionID)
	require.True(t, ok)
	assert.Equal(t, "rachel", vs.VoiceSettings.VoiceID)
	assert.Equal(t, 1.5, vs.VoiceSettings.PlaybackSpeed)
	assert.Equal(t, 0.8, vs.VoiceSettings.Volume)
}

func TestVoiceStateNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.VoiceState, http.MethodGet, "/v1/sessions/x/voice", "", "session_id", "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.Health, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
