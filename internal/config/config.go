package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the companion service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	LogLevel         string

	AllowAnyOrigin bool

	CompleterMode   string
	CompletionURL   string
	CompletionKey   string
	CompletionModel string

	SpeechPrimaryURL     string
	SpeechPrimaryRegion  string
	SpeechFallbackURL    string
	SpeechFallbackRegion string
	SpeechAPIKey         string
	DefaultVoice         string
	SpeechRate           string
	SpeechPitch          string

	MaxTurns          int
	ChatConcurrency   int
	SpeechConcurrency int
	GateTimeout       time.Duration

	CacheDriver string
	CacheTTL    time.Duration
	RedisAddr   string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "rem"),
		LogLevel:         envOrDefault("APP_LOG_LEVEL", "info"),
		AllowAnyOrigin:   false,
		ShutdownTimeout:  15 * time.Second,

		CompleterMode:   envOrDefault("COMPLETION_MODE", "auto"),
		CompletionURL:   envTrimmed("COMPLETION_URL"),
		CompletionKey:   envTrimmed("COMPLETION_API_KEY"),
		CompletionModel: envTrimmed("COMPLETION_MODEL"),

		SpeechPrimaryURL:     envTrimmed("SPEECH_PRIMARY_URL"),
		SpeechPrimaryRegion:  envOrDefault("SPEECH_PRIMARY_REGION", "ap-south-1"),
		SpeechFallbackURL:    envTrimmed("SPEECH_FALLBACK_URL"),
		SpeechFallbackRegion: envOrDefault("SPEECH_FALLBACK_REGION", "us-east-1"),
		SpeechAPIKey:         envTrimmed("SPEECH_API_KEY"),
		DefaultVoice:         envOrDefault("SPEECH_DEFAULT_VOICE", "Ruth"),
		SpeechRate:           envOrDefault("SPEECH_RATE", "medium"),
		SpeechPitch:          envOrDefault("SPEECH_PITCH", "+4%"),

		MaxTurns:          10,
		ChatConcurrency:   4,
		SpeechConcurrency: 3,
		GateTimeout:       10 * time.Second,

		CacheDriver: envOrDefault("CACHE_DRIVER", "memory"),
		CacheTTL:    15 * time.Minute,
		RedisAddr:   envOrDefault("REDIS_ADDR", "localhost:6379"),
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.GateTimeout, err = durationFromEnv("APP_GATE_TIMEOUT", cfg.GateTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CacheTTL, err = durationFromEnv("CACHE_TTL", cfg.CacheTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxTurns, err = intFromEnv("SESSION_MAX_TURNS", cfg.MaxTurns)
	if err != nil {
		return Config{}, err
	}
	cfg.ChatConcurrency, err = intFromEnv("CHAT_CONCURRENCY", cfg.ChatConcurrency)
	if err != nil {
		return Config{}, err
	}
	cfg.SpeechConcurrency, err = intFromEnv("SPEECH_CONCURRENCY", cfg.SpeechConcurrency)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.MaxTurns <= 0 {
		return Config{}, fmt.Errorf("SESSION_MAX_TURNS must be positive")
	}
	if cfg.ChatConcurrency <= 0 {
		return Config{}, fmt.Errorf("CHAT_CONCURRENCY must be positive")
	}
	if cfg.SpeechConcurrency <= 0 {
		return Config{}, fmt.Errorf("SPEECH_CONCURRENCY must be positive")
	}
	if cfg.GateTimeout < time.Second {
		return Config{}, fmt.Errorf("APP_GATE_TIMEOUT must be at least 1s")
	}
	if cfg.CacheTTL < time.Minute {
		return Config{}, fmt.Errorf("CACHE_TTL must be at least 1m")
	}
	switch cfg.CacheDriver {
	case "memory", "redis":
	default:
		return Config{}, fmt.Errorf("CACHE_DRIVER must be memory or redis")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(envTrimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
}
