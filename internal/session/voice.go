package session

import "time"

// Voice sub-operations. Each operates on the named session's voice
// state, lazily initializing it to defaults when a session predates the
// voice feature. Mutators refresh the session's activity timestamp;
// GetVoiceState does not.

// GetVoiceState returns a copy of the session's voice state.
func (s *Store) GetVoiceState(sessionID string) (*VoiceState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.activeLocked(sessionID)
	if !ok {
		return nil, false
	}

	vs := s.voiceLocked(sess)
	out := *vs
	out.AudioQueue = make([]QueuedAudio, len(vs.AudioQueue))
	copy(out.AudioQueue, vs.AudioQueue)
	return &out, true
}

// UpdateVoiceState sets the recording/playing flags. The client is
// responsible for not recording while playing; the store does not
// enforce exclusivity.
func (s *Store) UpdateVoiceState(sessionID string, isRecording, isPlaying bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.activeLocked(sessionID)
	if !ok {
		return false
	}

	vs := s.voiceLocked(sess)
	vs.IsRecording = isRecording
	vs.IsPlaying = isPlaying
	sess.UpdatedAt = time.Now()
	return true
}

// SetVoiceEnabled gates whether synthesis is attempted upstream. It
// does not touch the playback queue.
func (s *Store) SetVoiceEnabled(sessionID string, enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.activeLocked(sessionID)
	if !ok {
		return false
	}

	s.voiceLocked(sess).VoiceEnabled = enabled
	sess.UpdatedAt = time.Now()
	return true
}

// VoiceSettingsPatch carries the fields of an UpdateVoiceSettings call;
// nil fields are left unchanged.
type VoiceSettingsPatch struct {
	VoiceID       *string  `json:"voice_id,omitempty"`
	AutoPlay      *bool    `json:"auto_play,omitempty"`
	PlaybackSpeed *float64 `json:"playback_speed,omitempty"`
	Volume        *float64 `json:"volume,omitempty"`
}

// UpdateVoiceSettings merges the patch into the session's settings,
// independent of the queue machine.
func (s *Store) UpdateVoiceSettings(sessionID string, patch VoiceSettingsPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.activeLocked(sessionID)
	if !ok {
		return false
	}

	settings := &s.voiceLocked(sess).VoiceSettings
	if patch.VoiceID != nil {
		settings.VoiceID = *patch.VoiceID
	}
	if patch.AutoPlay != nil {
		settings.AutoPlay = *patch.AutoPlay
	}
	if patch.PlaybackSpeed != nil {
		settings.PlaybackSpeed = *patch.PlaybackSpeed
	}
	if patch.Volume != nil {
		settings.Volume = *patch.Volume
	}
	sess.UpdatedAt = time.Now()
	return true
}

// QueueAudio appends a synthesized clip to the playback queue. When the
// queue was empty, the clip's message ID becomes the current playing
// message.
func (s *Store) QueueAudio(sessionID, audioURL, messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.activeLocked(sessionID)
	if !ok {
		return false
	}

	vs := s.voiceLocked(sess)
	wasIdle := len(vs.AudioQueue) == 0
	vs.AudioQueue = append(vs.AudioQueue, QueuedAudio{AudioURL: audioURL, MessageID: messageID})
	if wasIdle {
		vs.CurrentPlayingMessageID = messageID
	}
	sess.UpdatedAt = time.Now()
	return true
}

// DequeueAudio pops the queue head, reporting not-found when the
// queue is empty. Draining the last item clears CurrentPlayingMessageID in the
// same operation; otherwise the id advances to the new head.
func (s *Store) DequeueAudio(sessionID string) (QueuedAudio, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.activeLocked(sessionID)
	if !ok {
		return QueuedAudio{}, false
	}

	vs := s.voiceLocked(sess)
	if len(vs.AudioQueue) == 0 {
		return QueuedAudio{}, false
	}

	head := vs.AudioQueue[0]
	vs.AudioQueue = vs.AudioQueue[1:]
	if len(vs.AudioQueue) == 0 {
		vs.CurrentPlayingMessageID = ""
		vs.IsPlaying = false
	} else {
		vs.CurrentPlayingMessageID = vs.AudioQueue[0].MessageID
	}
	sess.UpdatedAt = time.Now()
	return head, true
}

func (s *Store) voiceLocked(sess *Session) *VoiceState {
	if sess.VoiceState == nil {
		sess.VoiceState = defaultVoiceState()
	}
	return sess.VoiceState
}
