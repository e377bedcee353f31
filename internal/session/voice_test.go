package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceStateLazyInit(t *testing.T) {
	s := newTestStore()
	sess := s.CreateSession("")

	// Simulate a record created before voice existed.
	s.mu.Lock()
	s.sessions[sess.SessionID].VoiceState = nil
	s.mu.Unlock()

	vs, ok := s.GetVoiceState(sess.SessionID)
	require.True(t, ok)
	assert.Equal(t, "default", vs.VoiceSettings.VoiceID)
	assert.Equal(t, PhaseIdle, vs.Phase())
}

func TestQueueAudioSetsCurrentFromIdle(t *testing.T) {
	s := newTestStore()
	sess := s.CreateSession("")

	require.True(t, s.QueueAudio(sess.SessionID, "https://audio/1.mp3", "msg-1"))
	require.True(t, s.QueueAudio(sess.SessionID, "https://audio/2.mp3", "msg-2"))

	vs, ok := s.GetVoiceState(sess.SessionID)
	require.True(t, ok)
	assert.Len(t, vs.AudioQueue, 2)
	// The second enqueue must not steal the current slot.
	assert.Equal(t, "msg-1", vs.CurrentPlayingMessageID)
	assert.Equal(t, PhaseQueued, vs.Phase())
}

func TestDequeueAudioFIFO(t *testing.T) {
	s := newTestStore()
	sess := s.CreateSession("")

	s.QueueAudio(sess.SessionID, "https://audio/1.mp3", "msg-1")
	s.QueueAudio(sess.SessionID, "https://audio/2.mp3", "msg-2")

	item, ok := s.DequeueAudio(sess.SessionID)
	require.True(t, ok)
	assert.Equal(t, "https://audio/1.mp3", item.AudioURL)

	// One item left: the current id stays set, now pointing at the head.
	vs, _ := s.GetVoiceState(sess.SessionID)
	assert.Len(t, vs.AudioQueue, 1)
	assert.Equal(t, "msg-2", vs.CurrentPlayingMessageID)

	item, ok = s.DequeueAudio(sess.SessionID)
	require.True(t, ok)
	assert.Equal(t, "https://audio/2.mp3", item.AudioURL)

	// Queue drained: the current id is cleared in the same operation.
	vs, _ = s.GetVoiceState(sess.SessionID)
	assert.Empty(t, vs.AudioQueue)
	assert.Empty(t, vs.CurrentPlayingMessageID)
	assert.Equal(t, PhaseIdle, vs.Phase())
}

func TestDequeueToEmptyAnyLength(t *testing.T) {
	for _, n := range []int{1, 2, 5, 17} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			s := newTestStore()
			sess := s.CreateSession("")

			for i := 0; i < n; i++ {
				require.True(t, s.QueueAudio(sess.SessionID,
					fmt.Sprintf("https://audio/%d.mp3", i), fmt.Sprintf("msg-%d", i)))
			}
			for i := 0; i < n; i++ {
				_, ok := s.DequeueAudio(sess.SessionID)
				require.True(t, ok)
			}

			vs, ok := s.GetVoiceState(sess.SessionID)
			require.True(t, ok)
			assert.Empty(t, vs.AudioQueue)
			assert.Empty(t, vs.CurrentPlayingMessageID)
		})
	}
}

func TestDequeueEmptyQueue(t *testing.T) {
	s := newTestStore()
	sess := s.CreateSession("")

	_, ok := s.DequeueAudio(sess.SessionID)
	assert.False(t, ok)
}

func TestVoiceEnabledDoesNotClearQueue(t *testing.T) {
	s := newTestStore()
	sess := s.CreateSession("")

	s.QueueAudio(sess.SessionID, "https://audio/1.mp3", "msg-1")

	require.True(t, s.SetVoiceEnabled(sess.SessionID, true))
	require.True(t, s.SetVoiceEnabled(sess.SessionID, false))

	vs, _ := s.GetVoiceState(sess.SessionID)
	assert.Len(t, vs.AudioQueue, 1)
	assert.Equal(t, "msg-1", vs.CurrentPlayingMessageID)
}

func TestUpdateVoiceSettingsPartialMerge(t *testing.T) {
	s := newTestStore()
	sess := s.CreateSession("")

	voiceID := "rachel"
	speed := 1.25
	require.True(t, s.UpdateVoiceSettings(sess.SessionID, VoiceSettingsPatch{
		VoiceID:       &voiceID,
		PlaybackSpeed: &speed,
	}))

	vs, _ := s.GetVoiceState(sess.SessionID)
	assert.Equal(t, "rachel", vs.VoiceSettings.VoiceID)
	assert.Equal(t, 1.25, vs.VoiceSettings.PlaybackSpeed)
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.8, vs.VoiceSettings.Volume)
	assert.True(t, vs.VoiceSettings.AutoPlay)
}

func TestUpdateVoiceStateFlags(t *testing.T) {
	s := newTestStore()
	sess := s.CreateSession("")

	require.True(t, s.UpdateVoiceState(sess.SessionID, true, false))
	vs, _ := s.GetVoiceState(sess.SessionID)
	assert.True(t, vs.IsRecording)
	assert.False(t, vs.IsPlaying)

	s.QueueAudio(sess.SessionID, "https://audio/1.mp3", "msg-1")
	require.True(t, s.UpdateVoiceState(sess.SessionID, false, true))
	vs, _ = s.GetVoiceState(sess.SessionID)
	assert.Equal(t, PhasePlaying, vs.Phase())
}

func TestVoiceOpsOnMissingSession(t *testing.T) {
	s := newTestStore()

	assert.False(t, s.QueueAudio("nope", "url", "m"))
	assert.False(t, s.SetVoiceEnabled("nope", true))
	assert.False(t, s.UpdateVoiceState("nope", false, false))
	assert.False(t, s.UpdateVoiceSettings("nope", VoiceSettingsPatch{}))
	_, ok := s.GetVoiceState("nope")
	assert.False(t, ok)
	_, ok = s.DequeueAudio("nope")
	assert.False(t, ok)
}
