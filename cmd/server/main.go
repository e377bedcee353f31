package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/luminode/chatlead/internal/archive"
	"github.com/luminode/chatlead/internal/chat"
	"github.com/luminode/chatlead/internal/config"
	"github.com/luminode/chatlead/internal/leads"
	"github.com/luminode/chatlead/internal/llm"
	"github.com/luminode/chatlead/internal/scoring"
	"github.com/luminode/chatlead/internal/session"
	"github.com/luminode/chatlead/internal/transport/httpapi"
	"github.com/luminode/chatlead/internal/voice"
)

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	log.Printf("🚀 Starting %s...", cfg.ServiceName)
	log.Printf("📋 HTTP port: %d", cfg.HTTPPort)
	log.Printf("📋 Session timeout: %s, cleanup interval: %s", cfg.SessionTimeout, cfg.CleanupInterval)

	// Session store and background cleanup sweep
	store := session.NewStore(cfg.SessionTimeout)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go store.RunCleanup(sweepCtx, cfg.CleanupInterval)

	// Generation backend: real OpenAI-compatible provider when a key is
	// configured, deterministic mock otherwise.
	var generator llm.Generator
	if cfg.OpenAIAPIKey != "" {
		provider, err := llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAITimeout)
		if err != nil {
			log.Fatalf("❌ Failed to initialize OpenAI provider: %v", err)
		}
		generator = provider
		log.Printf("🤖 Generation backend: %s", cfg.OpenAIModel)
	} else {
		generator = llm.NewMockGenerator()
		log.Println("🤖 OPENAI_API_KEY not set, using mock generator")
	}

	weights := scoring.DefaultWeights()
	weights.AskThreshold = cfg.AskThreshold

	svc := chat.NewService(store, generator, weights)

	// Optional Redis transcript archive
	var transcripts httpapi.TranscriptReader
	if cfg.RedisURL != "" {
		redisArchive, err := archive.NewRedisArchive(cfg.RedisURL, cfg.ArchiveTTL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer redisArchive.Close()

		svc.WithArchiver(redisArchive)
		transcripts = redisArchive

		// Archive whatever the sweep evicts, too.
		store.OnEvict(func(sess *session.Session) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := redisArchive.Archive(ctx, sess); err != nil {
				log.Printf("⚠️ Failed to archive evicted session %s: %v", sess.SessionID, err)
			}
		})
		log.Println("✅ Transcript archive enabled")
	}

	// Optional NATS lead hand-off
	if cfg.NatsURL != "" {
		leadClient, err := leads.NewNATSClient(cfg.NatsURL, cfg.NatsLeadSubject, cfg.ServiceName, cfg.NatsTimeout)
		if err != nil {
			log.Printf("⚠️ Lead hand-off disabled, NATS unavailable: %v", err)
		} else {
			defer leadClient.Close()
			svc.WithLeadCreator(leadClient)
			log.Printf("📡 Lead hand-off subject: %s", cfg.NatsLeadSubject)
		}
	}

	// Optional TTS backend
	var synth voice.Synthesizer
	if cfg.TTSBaseURL != "" {
		synth = voice.NewHTTPSynthesizer(cfg.TTSBaseURL, cfg.TTSTimeout)
		log.Printf("🔊 TTS backend: %s", cfg.TTSBaseURL)
	} else {
		log.Println("🔊 TTS_BASE_URL not set, voice synthesis disabled")
	}

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h := httpapi.NewHandler(svc, store, synth, transcripts)
	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start HTTP server: %v", err)
		}
	}()

	log.Printf("✅ %s is running on port %d", cfg.ServiceName, cfg.HTTPPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Printf("🛑 Received signal: %v", sig)
	log.Println("🔄 Shutting down gracefully...")

	stopSweep()

	stats := store.GetStats()
	log.Printf("📊 Final session count: %d (%d active)", stats.TotalSessions, stats.ActiveSessions)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Failed to shutdown HTTP server gracefully: %v", err)
	}

	log.Printf("👋 %s stopped", cfg.ServiceName)
}
