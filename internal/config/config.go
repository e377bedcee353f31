package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// HTTP server
	HTTPPort int

	// Session lifecycle
	SessionTimeout  time.Duration
	CleanupInterval time.Duration

	// OpenAI-compatible generation backend
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAITimeout time.Duration

	// Voice synthesis backend
	TTSBaseURL string
	TTSTimeout time.Duration

	// NATS lead hand-off
	NatsURL         string
	NatsLeadSubject string
	NatsTimeout     time.Duration

	// Redis transcript archive (empty URL disables archiving)
	RedisURL   string
	ArchiveTTL time.Duration

	// Lead scoring
	AskThreshold int

	// Service configuration
	ServiceName string
}

func Load() *Config {
	return &Config{
		// HTTP settings
		HTTPPort: getIntEnv("HTTP_PORT", 8080),

		// Session settings
		SessionTimeout:  getDurationEnv("SESSION_TIMEOUT", 30*time.Minute),
		CleanupInterval: getDurationEnv("CLEANUP_INTERVAL", 5*time.Minute),

		// OpenAI settings
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITimeout: getDurationEnv("OPENAI_TIMEOUT", 30*time.Second),

		// TTS settings
		TTSBaseURL: getEnv("TTS_BASE_URL", ""),
		TTSTimeout: getDurationEnv("TTS_TIMEOUT", 15*time.Second),

		// NATS settings
		NatsURL:         getEnv("NATS_URL", "nats://localhost:4222"),
		NatsLeadSubject: getEnv("NATS_LEAD_SUBJECT", "leads.create"),
		NatsTimeout:     getDurationEnv("NATS_TIMEOUT", 10*time.Second),

		// Archive settings
		RedisURL:   getEnv("REDIS_URL", ""),
		ArchiveTTL: getDurationEnv("ARCHIVE_TTL", 720*time.Hour),

		// Scoring settings
		AskThreshold: getIntEnv("LEAD_ASK_THRESHOLD", 60),

		// Service settings
		ServiceName: getEnv("SERVICE_NAME", "chatlead"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
