package brain

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/syedsofiyan2004/rem/internal/reliability"
)

// HTTPCompleter forwards requests to a completion-style HTTP endpoint.
// Failures are classified at this boundary so callers can decide to
// retry without inspecting transport details.
type HTTPCompleter struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

func NewHTTPCompleter(url, apiKey, model string) *HTTPCompleter {
	return &HTTPCompleter{
		url:    strings.TrimSpace(url),
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type wireRequest struct {
	Model       string    `json:"model,omitempty"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream,omitempty"`
}

func (c *HTTPCompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	return c.send(ctx, req, false, nil)
}

func (c *HTTPCompleter) StreamCompletion(ctx context.Context, req CompletionRequest, onDelta DeltaHandler) (CompletionResponse, error) {
	return c.send(ctx, req, true, onDelta)
}

func (c *HTTPCompleter) send(ctx context.Context, req CompletionRequest, stream bool, onDelta DeltaHandler) (CompletionResponse, error) {
	payload, err := json.Marshal(wireRequest{
		Model:       c.model,
		System:      req.System,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	})
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, reliability.Classify(reliability.ClassTransient, "completion_unreachable",
			fmt.Errorf("send request: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		err := fmt.Errorf("completion http status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
		if reliability.IsRetryableHTTPStatus(res.StatusCode) {
			return CompletionResponse{}, reliability.Classify(reliability.ClassTransient, "completion_upstream", err)
		}
		return CompletionResponse{}, reliability.Classify(reliability.ClassFatal, "completion_rejected", err)
	}

	ct := strings.ToLower(res.Header.Get("Content-Type"))
	if strings.Contains(ct, "text/event-stream") || strings.Contains(ct, "application/x-ndjson") {
		return consumeStream(res.Body, onDelta)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return CompletionResponse{}, reliability.Classify(reliability.ClassTransient, "completion_read",
			fmt.Errorf("read response: %w", err))
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		text := strings.TrimSpace(string(body))
		if text != "" && onDelta != nil {
			if err := onDelta(text); err != nil {
				return CompletionResponse{}, err
			}
		}
		return CompletionResponse{Text: text}, nil
	}

	text := extractText(obj)
	if text != "" && onDelta != nil {
		if err := onDelta(text); err != nil {
			return CompletionResponse{}, err
		}
	}
	return CompletionResponse{Text: text}, nil
}

func consumeStream(body io.Reader, onDelta DeltaHandler) (CompletionResponse, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var out strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "data: [DONE]" {
			continue
		}
		if strings.HasPrefix(line, "data:") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}

		delta := line
		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err == nil {
			delta = extractText(obj)
		}

		if delta == "" {
			continue
		}
		out.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return CompletionResponse{}, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return CompletionResponse{}, reliability.Classify(reliability.ClassTransient, "completion_stream",
			fmt.Errorf("stream read: %w", err))
	}

	return CompletionResponse{Text: out.String()}, nil
}

func extractText(obj map[string]any) string {
	for _, k := range []string{"text", "delta", "output", "completion", "message"} {
		if v, ok := obj[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}
