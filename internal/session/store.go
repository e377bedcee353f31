// Package session is the sole authority over conversation-session
// existence, lookup, and expiry. No other package constructs or deletes
// session records directly.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is an in-memory session registry. It assumes a single-instance
// deployment: state is process-lifetime-scoped and there is no
// cross-instance consistency. Persistence of ended sessions, when
// wanted, happens through the eviction hook (see OnEvict), not here.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	timeout  time.Duration

	evictFn func(*Session)

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewStore creates an empty store. Sessions expire once no mutation has
// touched them for timeout.
func NewStore(timeout time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		locks:    make(map[string]*sync.Mutex),
	}
}

// OnEvict registers a hook invoked, after the store lock has been
// released, for every record physically removed by Cleanup or the
// self-cleaning scan. The hook receives a clone and may call back into
// the store. Used to archive transcripts before they are lost.
func (s *Store) OnEvict(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictFn = fn
}

// LockSession serializes a read-modify-write cycle on one session. Any
// caller that reads a session, computes against it, and writes it back
// must hold this lock for the whole cycle; the per-call store lock only
// protects the individual operations, not the span between them. The
// returned func releases the lock. Store methods may be called while
// holding it.
func (s *Store) LockSession(sessionID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.UpdatedAt) > s.timeout
}

func newSessionID() string {
	return fmt.Sprintf("sess_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// CreateSession registers a new active session. Always succeeds.
func (s *Store) CreateSession(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	id := newSessionID()
	sess := &Session{
		SessionID: id,
		UserID:    userID,
		Context: Context{
			SessionID:           id,
			UserID:              userID,
			LeadScore:           0,
			ConversationHistory: []Message{},
			ExtractedInfo:       map[string]string{},
		},
		VoiceState: defaultVoiceState(),
		CreatedAt:  now,
		UpdatedAt:  now,
		IsActive:   true,
	}

	s.sessions[id] = sess
	return sess.clone()
}

// GetSession returns the session only if it is present, active, and
// unexpired. A present-but-expired record is marked inactive and
// reported as not found; the record itself stays until swept.
func (s *Store) GetSession(sessionID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	if !sess.IsActive {
		return nil, false
	}
	if s.expired(sess, time.Now()) {
		sess.IsActive = false
		return nil, false
	}
	return sess.clone(), true
}

// UpdateSession replaces the session's context and refreshes its
// activity timestamp. Not-found when the session is absent, inactive,
// or expired.
func (s *Store) UpdateSession(sessionID string, ctx Context) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.activeLocked(sessionID)
	if !ok {
		return nil, false
	}

	ctx.SessionID = sess.SessionID
	sess.Context = ctx
	sess.UpdatedAt = time.Now()
	return sess.clone(), true
}

// MarkLeadCreated records the CRM acknowledgement on a session.
// Deliberately does not check IsActive: a lead produced by a session
// that expired moments ago must not lose attribution.
func (s *Store) MarkLeadCreated(sessionID, leadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return false
	}

	sess.LeadCreated = true
	sess.LeadID = leadID
	sess.UpdatedAt = time.Now()
	return true
}

// EndSession marks a session inactive. Idempotent; false only if the
// session never existed.
func (s *Store) EndSession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return false
	}

	sess.IsActive = false
	sess.UpdatedAt = time.Now()
	return true
}

// GetActiveSessions scans every record: active, unexpired sessions are
// returned; inactive ones are removed on the way through (self-cleaning
// scan); expired-but-active ones are marked inactive for the next pass.
// O(n) over all known sessions.
func (s *Store) GetActiveSessions() []*Session {
	s.mu.Lock()

	now := time.Now()
	var result []*Session
	var evicted []*Session
	for id, sess := range s.sessions {
		if !sess.IsActive {
			delete(s.sessions, id)
			evicted = append(evicted, sess.clone())
			continue
		}
		if s.expired(sess, now) {
			sess.IsActive = false
			continue
		}
		result = append(result, sess.clone())
	}
	fn := s.evictFn
	s.mu.Unlock()

	s.notifyEvicted(fn, evicted)
	return result
}

// GetStats computes aggregates over the current backing map.
// AverageLeadScore is the mean lead score of sessions with a created
// lead; zero when there are none.
func (s *Store) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	stats := Stats{TotalSessions: len(s.sessions)}

	scoreSum := 0
	for _, sess := range s.sessions {
		if sess.IsActive && !s.expired(sess, now) {
			stats.ActiveSessions++
		}
		if sess.LeadCreated {
			stats.SessionsWithLeads++
			scoreSum += sess.Context.LeadScore
		}
	}
	if stats.SessionsWithLeads > 0 {
		stats.AverageLeadScore = float64(scoreSum) / float64(stats.SessionsWithLeads)
	}
	return stats
}

// Cleanup removes every record that is inactive or past the timeout and
// returns the number removed. Intended to run on a fixed interval,
// independent of request traffic.
func (s *Store) Cleanup() int {
	s.mu.Lock()

	now := time.Now()
	var evicted []*Session
	for id, sess := range s.sessions {
		if !sess.IsActive || s.expired(sess, now) {
			delete(s.sessions, id)
			evicted = append(evicted, sess.clone())
		}
	}
	fn := s.evictFn
	s.mu.Unlock()

	s.notifyEvicted(fn, evicted)
	return len(evicted)
}

// RunCleanup sweeps on the given interval until ctx is cancelled.
// Run it in its own goroutine from main.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Cleanup(); n > 0 {
				log.Printf("session cleanup removed %d sessions", n)
			}
		}
	}
}

// activeLocked resolves a session for mutation, applying the same
// read-triggered expiry as GetSession. Caller holds the write lock.
func (s *Store) activeLocked(sessionID string) (*Session, bool) {
	sess, ok := s.sessions[sessionID]
	if !ok || !sess.IsActive {
		return nil, false
	}
	if s.expired(sess, time.Now()) {
		sess.IsActive = false
		return nil, false
	}
	return sess, true
}

// notifyEvicted runs the eviction hook outside the store lock, so a
// slow hook (archiving to Redis, say) cannot stall unrelated requests
// and the hook is free to call back into the store. Also drops the
// per-session serialization locks of the removed sessions.
func (s *Store) notifyEvicted(fn func(*Session), evicted []*Session) {
	if len(evicted) == 0 {
		return
	}

	s.locksMu.Lock()
	for _, sess := range evicted {
		delete(s.locks, sess.SessionID)
	}
	s.locksMu.Unlock()

	if fn == nil {
		return
	}
	for _, sess := range evicted {
		fn(sess)
	}
}
