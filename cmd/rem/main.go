package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/syedsofiyan2004/rem/internal/assistant"
	"github.com/syedsofiyan2004/rem/internal/brain"
	"github.com/syedsofiyan2004/rem/internal/cache"
	"github.com/syedsofiyan2004/rem/internal/config"
	"github.com/syedsofiyan2004/rem/internal/httpapi"
	"github.com/syedsofiyan2004/rem/internal/observability"
	"github.com/syedsofiyan2004/rem/internal/session"
	"github.com/syedsofiyan2004/rem/internal/speech"
)

// version is stamped at build time with -ldflags.
var version = "dev"

func main() {
	log := newLogger(os.Getenv("APP_LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}
	log = newLogger(cfg.LogLevel)

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	store, err := newCacheStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("cache init failed")
	}
	defer store.Close()

	completer, err := brain.NewCompleter(brain.Config{
		Mode:   cfg.CompleterMode,
		URL:    cfg.CompletionURL,
		APIKey: cfg.CompletionKey,
		Model:  cfg.CompletionModel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("completer init failed")
	}

	synth := speech.NewSynthesizer(newSpeechBackends(cfg, log), cfg.DefaultVoice, cfg.SpeechRate, cfg.SpeechPitch, log)

	svc := assistant.New(assistant.Options{
		Memory:            session.NewMemory(cfg.MaxTurns),
		Brain:             brain.NewClient(completer, log),
		Synthesizer:       synth,
		Cache:             store,
		Metrics:           metrics,
		Log:               log,
		ChatConcurrency:   cfg.ChatConcurrency,
		SpeechConcurrency: cfg.SpeechConcurrency,
		GateTimeout:       cfg.GateTimeout,
	})

	api := httpapi.New(cfg, svc, metrics, version, log)
	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.BindAddr).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown failed")
		_ = httpServer.Close()
	}

	log.Info().Msg("shutdown complete")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func newCacheStore(cfg config.Config) (cache.Store, error) {
	switch cfg.CacheDriver {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return cache.NewStore(cache.StoreTypeRedis,
			cache.WithRedisClient(client),
			cache.WithTTL(cfg.CacheTTL),
		)
	default:
		return cache.NewStore(cache.StoreTypeMemory, cache.WithTTL(cfg.CacheTTL))
	}
}

// newSpeechBackends wires the primary region first and any fallback
// region after it. Without a configured backend the mock keeps the
// service usable for local development.
func newSpeechBackends(cfg config.Config, log zerolog.Logger) []speech.Backend {
	var backends []speech.Backend
	if strings.TrimSpace(cfg.SpeechPrimaryURL) != "" {
		backends = append(backends, speech.NewHTTPBackend(speech.HTTPConfig{
			BaseURL: cfg.SpeechPrimaryURL,
			APIKey:  cfg.SpeechAPIKey,
			Region:  cfg.SpeechPrimaryRegion,
		}))
	}
	if strings.TrimSpace(cfg.SpeechFallbackURL) != "" {
		backends = append(backends, speech.NewHTTPBackend(speech.HTTPConfig{
			BaseURL: cfg.SpeechFallbackURL,
			APIKey:  cfg.SpeechAPIKey,
			Region:  cfg.SpeechFallbackRegion,
		}))
	}
	if len(backends) == 0 {
		log.Warn().Msg("no speech backend configured, using mock synthesis")
		backends = append(backends, speech.NewMockBackend(cfg.SpeechPrimaryRegion))
	}
	return backends
}
