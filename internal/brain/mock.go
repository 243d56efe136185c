package brain

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockCompleter produces deterministic local replies when no model
// backend is configured. Tests can script it per call.
type MockCompleter struct {
	mu       sync.Mutex
	requests []CompletionRequest

	CompleteFn func(req CompletionRequest) (CompletionResponse, error)
}

func NewMockCompleter() *MockCompleter { return &MockCompleter{} }

func (m *MockCompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	select {
	case <-ctx.Done():
		return CompletionResponse{}, ctx.Err()
	default:
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.CompleteFn
	m.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	return CompletionResponse{Text: buildMockReply(req)}, nil
}

func (m *MockCompleter) StreamCompletion(ctx context.Context, req CompletionRequest, onDelta DeltaHandler) (CompletionResponse, error) {
	res, err := m.Complete(ctx, req)
	if err != nil {
		return CompletionResponse{}, err
	}
	if onDelta != nil && res.Text != "" {
		for _, word := range strings.Fields(res.Text) {
			if err := onDelta(word + " "); err != nil {
				return CompletionResponse{}, err
			}
		}
	}
	return res, nil
}

// Requests returns a copy of the requests seen so far.
func (m *MockCompleter) Requests() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func buildMockReply(req CompletionRequest) string {
	var last string
	for _, msg := range req.Messages {
		if msg.Role == "user" {
			last = strings.TrimSpace(msg.Content)
		}
	}
	if last == "" {
		return "I am listening."
	}
	return fmt.Sprintf("I heard you: %s", last)
}
