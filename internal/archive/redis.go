// Package archive persists transcripts of ended sessions to Redis so a
// conversation survives the in-memory store's cleanup sweep. The live
// session store stays memory-only; archiving never affects its expiry
// semantics.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/luminode/chatlead/internal/session"
)

var ErrNotFound = errors.New("archive: transcript not found")

// Record is the archived form of a finished session.
type Record struct {
	SessionID     string            `json:"session_id"`
	UserID        string            `json:"user_id,omitempty"`
	LeadScore     int               `json:"lead_score"`
	LeadCreated   bool              `json:"lead_created"`
	LeadID        string            `json:"lead_id,omitempty"`
	Messages      []session.Message `json:"messages"`
	ExtractedInfo map[string]string `json:"extracted_info"`
	CreatedAt     time.Time         `json:"created_at"`
	ArchivedAt    time.Time         `json:"archived_at"`
}

// RedisArchive stores transcripts under archive:<sessionID> with a TTL.
type RedisArchive struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisArchive(redisURL string, ttl time.Duration) (*RedisArchive, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisArchive{
		client: client,
		ttl:    ttl,
	}, nil
}

func (a *RedisArchive) key(sessionID string) string {
	return fmt.Sprintf("archive:%s", sessionID)
}

// Archive writes the session transcript. Sessions with an empty history
// are skipped; there is nothing worth keeping.
func (a *RedisArchive) Archive(ctx context.Context, sess *session.Session) error {
	if len(sess.Context.ConversationHistory) == 0 {
		return nil
	}

	record := Record{
		SessionID:     sess.SessionID,
		UserID:        sess.UserID,
		LeadScore:     sess.Context.LeadScore,
		LeadCreated:   sess.LeadCreated,
		LeadID:        sess.LeadID,
		Messages:      sess.Context.ConversationHistory,
		ExtractedInfo: sess.Context.ExtractedInfo,
		CreatedAt:     sess.CreatedAt,
		ArchivedAt:    time.Now(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	if err := a.client.Set(ctx, a.key(sess.SessionID), data, a.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save transcript to Redis: %w", err)
	}

	return nil
}

// Load retrieves an archived transcript.
func (a *RedisArchive) Load(ctx context.Context, sessionID string) (*Record, error) {
	data, err := a.client.Get(ctx, a.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript from Redis: %w", err)
	}

	var record Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}

	return &record, nil
}

func (a *RedisArchive) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

func (a *RedisArchive) Close() error {
	return a.client.Close()
}
