package session

import "time"

// Message is a single conversation turn.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Context holds the mutable conversation state carried by a session.
type Context struct {
	SessionID           string            `json:"session_id"`
	UserID              string            `json:"user_id,omitempty"`
	LeadScore           int               `json:"lead_score"`
	ConversationHistory []Message         `json:"conversation_history"`
	ExtractedInfo       map[string]string `json:"extracted_info"`
}

// VoiceSettings is playback configuration, applied at session creation
// and merged field-by-field on update.
type VoiceSettings struct {
	VoiceID       string  `json:"voice_id"`
	AutoPlay      bool    `json:"auto_play"`
	PlaybackSpeed float64 `json:"playback_speed"`
	Volume        float64 `json:"volume"`
}

// QueuedAudio is one synthesized clip awaiting playback.
type QueuedAudio struct {
	AudioURL  string `json:"audio_url"`
	MessageID string `json:"message_id,omitempty"`
}

// VoiceState tracks the per-session TTS playback queue. It is owned by
// exactly one session and never shared.
type VoiceState struct {
	IsRecording             bool          `json:"is_recording"`
	IsPlaying               bool          `json:"is_playing"`
	VoiceEnabled            bool          `json:"voice_enabled"`
	VoiceSettings           VoiceSettings `json:"voice_settings"`
	AudioQueue              []QueuedAudio `json:"audio_queue"`
	CurrentPlayingMessageID string        `json:"current_playing_message_id,omitempty"`
}

// Playback phases derived from the queue machine.
const (
	PhaseIdle    = "idle"
	PhaseQueued  = "queued"
	PhasePlaying = "playing"
)

// Phase reports where the queue machine currently sits.
func (v *VoiceState) Phase() string {
	switch {
	case len(v.AudioQueue) == 0:
		return PhaseIdle
	case v.IsPlaying:
		return PhasePlaying
	default:
		return PhaseQueued
	}
}

// Session is one conversational interaction lifetime.
type Session struct {
	SessionID   string      `json:"session_id"`
	UserID      string      `json:"user_id,omitempty"`
	Context     Context     `json:"context"`
	VoiceState  *VoiceState `json:"voice_state,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	IsActive    bool        `json:"is_active"`
	LeadCreated bool        `json:"lead_created"`
	LeadID      string      `json:"lead_id,omitempty"`
}

// Stats is the aggregate view served to the admin dashboard.
type Stats struct {
	TotalSessions     int     `json:"total_sessions"`
	ActiveSessions    int     `json:"active_sessions"`
	SessionsWithLeads int     `json:"sessions_with_leads"`
	AverageLeadScore  float64 `json:"average_lead_score"`
}

func defaultVoiceState() *VoiceState {
	return &VoiceState{
		VoiceSettings: VoiceSettings{
			VoiceID:       "default",
			AutoPlay:      true,
			PlaybackSpeed: 1.0,
			Volume:        0.8,
		},
		AudioQueue: []QueuedAudio{},
	}
}

// clone returns a deep copy so callers cannot mutate store-held state
// outside the store lock.
func (s *Session) clone() *Session {
	out := *s

	out.Context.ConversationHistory = make([]Message, len(s.Context.ConversationHistory))
	copy(out.Context.ConversationHistory, s.Context.ConversationHistory)

	out.Context.ExtractedInfo = make(map[string]string, len(s.Context.ExtractedInfo))
	for k, v := range s.Context.ExtractedInfo {
		out.Context.ExtractedInfo[k] = v
	}

	if s.VoiceState != nil {
		vs := *s.VoiceState
		vs.AudioQueue = make([]QueuedAudio, len(s.VoiceState.AudioQueue))
		copy(vs.AudioQueue, s.VoiceState.AudioQueue)
		out.VoiceState = &vs
	}

	return &out
}
