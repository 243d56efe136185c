package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8080")
	}
	if cfg.ChatConcurrency != 4 || cfg.SpeechConcurrency != 3 {
		t.Fatalf("concurrency = chat %d speech %d, want 4 and 3", cfg.ChatConcurrency, cfg.SpeechConcurrency)
	}
	if cfg.GateTimeout != 10*time.Second {
		t.Fatalf("GateTimeout = %v, want 10s", cfg.GateTimeout)
	}
	if cfg.CacheTTL != 15*time.Minute {
		t.Fatalf("CacheTTL = %v, want 15m", cfg.CacheTTL)
	}
	if cfg.CacheDriver != "memory" {
		t.Fatalf("CacheDriver = %q, want memory", cfg.CacheDriver)
	}
	if cfg.DefaultVoice != "Ruth" {
		t.Fatalf("DefaultVoice = %q, want Ruth", cfg.DefaultVoice)
	}
	if cfg.CompleterMode != "auto" || cfg.CompletionURL != "" {
		t.Fatalf("completer defaults = %q %q, want auto with no URL", cfg.CompleterMode, cfg.CompletionURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")
	t.Setenv("COMPLETION_URL", "http://localhost:7777/complete")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("CHAT_CONCURRENCY", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want explicit value", cfg.BindAddr)
	}
	if cfg.CompletionURL != "http://localhost:7777/complete" {
		t.Fatalf("CompletionURL = %q, want explicit value", cfg.CompletionURL)
	}
	if cfg.CacheTTL != 30*time.Minute {
		t.Fatalf("CacheTTL = %v, want 30m", cfg.CacheTTL)
	}
	if cfg.ChatConcurrency != 8 {
		t.Fatalf("ChatConcurrency = %d, want 8", cfg.ChatConcurrency)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		key, val string
	}{
		{"SESSION_MAX_TURNS", "0"},
		{"CHAT_CONCURRENCY", "-1"},
		{"SPEECH_CONCURRENCY", "nope"},
		{"APP_GATE_TIMEOUT", "10ms"},
		{"CACHE_TTL", "5s"},
		{"CACHE_DRIVER", "cassandra"},
		{"APP_ALLOW_ANY_ORIGIN", "maybe"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() accepted %s=%q", tc.key, tc.val)
			}
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_LOG_LEVEL",
		"APP_ALLOW_ANY_ORIGIN",
		"APP_GATE_TIMEOUT",
		"COMPLETION_MODE",
		"COMPLETION_URL",
		"COMPLETION_API_KEY",
		"COMPLETION_MODEL",
		"SPEECH_PRIMARY_URL",
		"SPEECH_PRIMARY_REGION",
		"SPEECH_FALLBACK_URL",
		"SPEECH_FALLBACK_REGION",
		"SPEECH_API_KEY",
		"SPEECH_DEFAULT_VOICE",
		"SPEECH_RATE",
		"SPEECH_PITCH",
		"SESSION_MAX_TURNS",
		"CHAT_CONCURRENCY",
		"SPEECH_CONCURRENCY",
		"CACHE_DRIVER",
		"CACHE_TTL",
		"REDIS_ADDR",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
