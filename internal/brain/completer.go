package brain

import (
	"context"
	"fmt"
	"strings"
)

// Message is one turn of conversation context sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the normalized request sent to the language
// model backend.
type CompletionRequest struct {
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
	MaxTokens   int       `json:"max_tokens"`
}

// CompletionResponse is the final text after any streaming deltas.
type CompletionResponse struct {
	Text string `json:"text"`
}

// DeltaHandler receives streaming text fragments.
type DeltaHandler func(delta string) error

// Completer produces model completions, optionally streamed.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	StreamCompletion(ctx context.Context, req CompletionRequest, onDelta DeltaHandler) (CompletionResponse, error)
}

// Config controls completer construction.
type Config struct {
	Mode   string
	URL    string
	APIKey string
	Model  string
}

// NewCompleter builds the completer for the configured mode. Auto mode
// uses the HTTP backend when a URL is configured and the mock
// otherwise, so the service always comes up.
func NewCompleter(cfg Config) (Completer, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.URL) != "" {
			return NewHTTPCompleter(cfg.URL, cfg.APIKey, cfg.Model), nil
		}
		return NewMockCompleter(), nil
	case "http":
		if strings.TrimSpace(cfg.URL) == "" {
			return nil, fmt.Errorf("completion URL is required for http mode")
		}
		return NewHTTPCompleter(cfg.URL, cfg.APIKey, cfg.Model), nil
	case "mock":
		return NewMockCompleter(), nil
	default:
		return nil, fmt.Errorf("unsupported completer mode %q", cfg.Mode)
	}
}
