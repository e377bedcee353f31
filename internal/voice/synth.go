// Package voice talks to the external text-to-speech collaborator. The
// playback queue itself lives on the session store; callers enqueue an
// audio reference only after synthesis succeeded, so a failed synthesis
// never touches queue state.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Synthesizer turns text into a playable audio resource reference.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) (string, error)
}

// HTTPSynthesizer calls a TTS service over HTTP.
type HTTPSynthesizer struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSynthesizer(baseURL string, timeout time.Duration) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

type synthesizeResponse struct {
	AudioURL string `json:"audio_url"`
	Error    string `json:"error,omitempty"`
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	body, err := json.Marshal(synthesizeRequest{Text: text, VoiceID: voiceID})
	if err != nil {
		return "", fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/synthesize", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("synthesis returned status %d", resp.StatusCode)
	}

	var out synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse synthesis response: %w", err)
	}
	if out.AudioURL == "" {
		return "", fmt.Errorf("synthesis returned no audio: %s", out.Error)
	}

	return out.AudioURL, nil
}
