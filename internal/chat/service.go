// Package chat is the response-generation façade: it loads or creates a
// session, asks the generation collaborator for a reply, scores the
// exchange, and persists the updated session. A collaborator failure
// degrades to a deterministic canned reply and never surfaces to the
// caller.
package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/luminode/chatlead/internal/leads"
	"github.com/luminode/chatlead/internal/llm"
	"github.com/luminode/chatlead/internal/prompts"
	"github.com/luminode/chatlead/internal/scoring"
	"github.com/luminode/chatlead/internal/session"
)

// maxHistoryTurns bounds the context sent to the generation backend.
// Keeping it small keeps scoring deterministic and token cost bounded.
const maxHistoryTurns = 5

// ErrEmptyMessage is returned for blank input, which is rejected before
// it ever reaches the scorer.
var ErrEmptyMessage = errors.New("chat: message is empty")

// Reply is the façade's answer for one user message.
type Reply struct {
	SessionID            string  `json:"session_id"`
	Message              string  `json:"message"`
	LeadScore            int     `json:"lead_score"`
	Intent               string  `json:"intent"`
	Confidence           float64 `json:"confidence"`
	ShouldAskForLeadInfo bool    `json:"should_ask_for_lead_info"`
}

// Archiver persists a finished session's transcript.
type Archiver interface {
	Archive(ctx context.Context, sess *session.Session) error
}

// Service wires the store, the generator, the scorer, and the optional
// lead and archive collaborators together.
type Service struct {
	store     *session.Store
	generator llm.Generator
	weights   scoring.Weights
	leads     leads.Creator // nil disables the hand-off
	archive   Archiver      // nil disables archiving
}

func NewService(store *session.Store, generator llm.Generator, weights scoring.Weights) *Service {
	return &Service{
		store:     store,
		generator: generator,
		weights:   weights,
	}
}

// WithLeadCreator enables the CRM hand-off for qualified sessions.
func (s *Service) WithLeadCreator(creator leads.Creator) *Service {
	s.leads = creator
	return s
}

// WithArchiver enables transcript archiving on session end.
func (s *Service) WithArchiver(a Archiver) *Service {
	s.archive = a
	return s
}

// HandleMessage processes one inbound chat message. A missing or
// expired session ID starts a fresh session; the caller learns the
// effective ID from the reply.
func (s *Service) HandleMessage(ctx context.Context, sessionID, userID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	sess, ok := s.store.GetSession(sessionID)
	if !ok {
		sess = s.store.CreateSession(userID)
	}

	// Hold the per-session lock across the whole load-generate-persist
	// cycle. Without it, two concurrent messages for the same session
	// would both read the same history and the later write would drop
	// the earlier exchange.
	unlock := s.store.LockSession(sess.SessionID)
	defer unlock()

	if latest, ok := s.store.GetSession(sess.SessionID); ok {
		sess = latest
	}

	history := sess.Context.ConversationHistory
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	replyText, genErr := s.generator.Generate(ctx, prompts.SystemPrompt, history, message)

	var result scoring.Result
	if genErr != nil {
		// Degrade to a fixed reply; deterministic for identical input.
		log.Printf("generation failed for session %s, using fallback: %v", sess.SessionID, genErr)
		replyText = prompts.FallbackReply(message)
		result = scoring.Result{
			Intent:     scoring.IntentGeneral,
			Confidence: 0.3,
			LeadScore:  0,
		}
	} else {
		result = scoring.Score(message, sess.Context.LeadScore, replyText, s.weights)
	}

	now := time.Now()
	sctx := sess.Context
	sctx.ConversationHistory = append(sctx.ConversationHistory,
		session.Message{Role: "user", Content: message, Timestamp: now},
		session.Message{Role: "assistant", Content: replyText, Timestamp: now},
	)
	if genErr == nil {
		sctx.LeadScore = result.LeadScore
	}
	for k, v := range scoring.ExtractInfo(message) {
		sctx.ExtractedInfo[k] = v
	}

	updated, ok := s.store.UpdateSession(sess.SessionID, sctx)
	if !ok {
		// The session expired between lookup and write; answer anyway,
		// the next message will start a fresh session.
		log.Printf("session %s vanished during update", sess.SessionID)
		updated = sess
		updated.Context = sctx
	}

	if genErr == nil {
		s.maybeHandOffLead(ctx, updated, message, result)
	}

	return &Reply{
		SessionID:            sess.SessionID,
		Message:              replyText,
		LeadScore:            result.LeadScore,
		Intent:               result.Intent,
		Confidence:           result.Confidence,
		ShouldAskForLeadInfo: result.ShouldAskForLeadInfo,
	}, nil
}

// maybeHandOffLead sends a qualified session to the CRM collaborator.
// Failures are logged and swallowed: losing a hand-off attempt must not
// break the conversation.
func (s *Service) maybeHandOffLead(ctx context.Context, sess *session.Session, message string, result scoring.Result) {
	if s.leads == nil || sess.LeadCreated {
		return
	}
	if result.LeadScore < s.weights.AskThreshold {
		return
	}

	payload, ready := leads.BuildPayload(sess, message)
	if !ready {
		return
	}

	leadID, err := s.leads.CreateLead(ctx, payload)
	if err != nil {
		log.Printf("lead hand-off failed for session %s: %v", sess.SessionID, err)
		return
	}

	if !s.store.MarkLeadCreated(sess.SessionID, leadID) {
		log.Printf("session %s gone before lead %s could be recorded", sess.SessionID, leadID)
	}
}

// EndSession archives (when configured) and deactivates a session.
// False only when the session never existed.
func (s *Service) EndSession(ctx context.Context, sessionID string) bool {
	if s.archive != nil {
		if sess, ok := s.store.GetSession(sessionID); ok {
			if err := s.archive.Archive(ctx, sess); err != nil {
				log.Printf("failed to archive session %s: %v", sessionID, err)
			}
		}
	}
	return s.store.EndSession(sessionID)
}
