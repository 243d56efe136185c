package brain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/syedsofiyan2004/rem/internal/reliability"
	"github.com/syedsofiyan2004/rem/internal/session"
)

func newTestClient(m *MockCompleter) *Client {
	c := NewClient(m, zerolog.Nop())
	c.sleep = func(time.Duration) {}
	return c
}

func TestReplyCarriesHistoryAndPersona(t *testing.T) {
	mock := NewMockCompleter()
	c := newTestClient(mock)

	history := []session.Turn{
		{Role: session.RoleUser, Content: "hi"},
		{Role: session.RoleAssistant, Content: "hey!"},
	}
	got, err := c.Reply(context.Background(), history, "how are you", "witty")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if got == "" {
		t.Fatalf("Reply() returned empty text")
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	req := reqs[0]
	if len(req.Messages) != 3 || req.Messages[2].Content != "how are you" {
		t.Fatalf("messages = %+v, want history plus the user turn", req.Messages)
	}
	if req.System == "" || !strings.Contains(req.System, "witty") {
		t.Fatalf("system prompt missing the style guide: %q", req.System)
	}
	if req.Temperature != 0.9 || req.TopP != 0.9 || req.MaxTokens != 480 {
		t.Fatalf("sampling params = %+v", req)
	}
	if len(history) != 2 {
		t.Fatalf("Reply() mutated the caller's history")
	}
}

func TestReplyCleansAndClampsModelOutput(t *testing.T) {
	mock := NewMockCompleter()
	mock.CompleteFn = func(CompletionRequest) (CompletionResponse, error) {
		return CompletionResponse{Text: "*smiles* Rem: One. Two. Three. Four."}, nil
	}
	c := newTestClient(mock)

	got, err := c.Reply(context.Background(), nil, "hi", "")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if got != "One. Two." {
		t.Fatalf("Reply() = %q, want %q", got, "One. Two.")
	}
}

func TestReplyRetriesTransientThenSucceeds(t *testing.T) {
	mock := NewMockCompleter()
	fails := 2
	mock.CompleteFn = func(CompletionRequest) (CompletionResponse, error) {
		if fails > 0 {
			fails--
			return CompletionResponse{}, reliability.Classify(reliability.ClassTransient, "completion_upstream",
				errors.New("503"))
		}
		return CompletionResponse{Text: "Back now."}, nil
	}
	c := NewClient(mock, zerolog.Nop())

	var waits []time.Duration
	c.sleep = func(d time.Duration) { waits = append(waits, d) }

	got, err := c.Reply(context.Background(), nil, "hi", "")
	if err != nil || got != "Back now." {
		t.Fatalf("Reply() = (%q, %v)", got, err)
	}
	if len(mock.Requests()) != 3 {
		t.Fatalf("attempts = %d, want 3", len(mock.Requests()))
	}
	if len(waits) != 2 || waits[1] < waits[0] {
		t.Fatalf("backoff waits = %v, want two increasing delays", waits)
	}
	if waits[0] < 250*time.Millisecond || waits[0] > 450*time.Millisecond {
		t.Fatalf("first backoff = %v, want base plus bounded jitter", waits[0])
	}
}

func TestReplySurfacesErrorAfterExhaustion(t *testing.T) {
	mock := NewMockCompleter()
	mock.CompleteFn = func(CompletionRequest) (CompletionResponse, error) {
		return CompletionResponse{}, reliability.Classify(reliability.ClassTransient, "completion_upstream",
			errors.New("down"))
	}
	c := newTestClient(mock)

	got, err := c.Reply(context.Background(), nil, "hi", "")
	if err == nil {
		t.Fatalf("Reply() = (%q, nil), exhaustion must surface", got)
	}
	if reliability.ClassOf(err) != reliability.ClassTransient {
		t.Fatalf("error class = %v, want the classified upstream error back", reliability.ClassOf(err))
	}
	if len(mock.Requests()) != 3 {
		t.Fatalf("attempts = %d, want 3", len(mock.Requests()))
	}
}

func TestReplyDoesNotRetryFatal(t *testing.T) {
	mock := NewMockCompleter()
	mock.CompleteFn = func(CompletionRequest) (CompletionResponse, error) {
		return CompletionResponse{}, reliability.Classify(reliability.ClassFatal, "completion_rejected",
			errors.New("401"))
	}
	c := newTestClient(mock)

	got, err := c.Reply(context.Background(), nil, "hi", "")
	if err == nil {
		t.Fatalf("Reply() = (%q, nil), fatal errors must surface", got)
	}
	if reliability.CodeOf(err) != "completion_rejected" {
		t.Fatalf("error code = %q, want completion_rejected", reliability.CodeOf(err))
	}
	if len(mock.Requests()) != 1 {
		t.Fatalf("attempts = %d, fatal errors must not be retried", len(mock.Requests()))
	}
}

func TestReplyFallsBackWhenCleanedReplyIsEmpty(t *testing.T) {
	mock := NewMockCompleter()
	mock.CompleteFn = func(CompletionRequest) (CompletionResponse, error) {
		return CompletionResponse{Text: "*nods quietly*"}, nil
	}
	c := newTestClient(mock)

	got, err := c.Reply(context.Background(), nil, "hi", "")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if got != FallbackReply {
		t.Fatalf("Reply() = %q, want fallback for an empty cleaned reply", got)
	}
}

func TestStreamReplyFlattensDeltas(t *testing.T) {
	mock := NewMockCompleter()
	mock.CompleteFn = func(CompletionRequest) (CompletionResponse, error) {
		return CompletionResponse{Text: "Line one.\nLine two.\rLine three."}, nil
	}
	c := newTestClient(mock)

	var deltas []string
	_, err := c.StreamReply(context.Background(), nil, "hi", "", func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamReply() error = %v", err)
	}
	for _, d := range deltas {
		if strings.ContainsAny(d, "\r\n") {
			t.Fatalf("delta contains a line terminator: %q", d)
		}
	}
	if got := flattenDelta("tail of chunk\r"); strings.Contains(got, "\r") {
		t.Fatalf("split \\r\\n leaves a bare \\r in the fragment: %q", got)
	}
}

func TestStreamReplyRetriesEstablishmentOnly(t *testing.T) {
	mock := NewMockCompleter()
	failedOnce := false
	mock.CompleteFn = func(CompletionRequest) (CompletionResponse, error) {
		if !failedOnce {
			failedOnce = true
			return CompletionResponse{}, reliability.Classify(reliability.ClassTransient, "completion_unreachable",
				errors.New("refused"))
		}
		return CompletionResponse{Text: "Recovered."}, nil
	}
	c := newTestClient(mock)

	got, err := c.StreamReply(context.Background(), nil, "hi", "", func(string) error { return nil })
	if err != nil || got != "Recovered." {
		t.Fatalf("StreamReply() = (%q, %v)", got, err)
	}
}

func TestStreamReplyMidStreamFailureSurfaces(t *testing.T) {
	midStream := reliability.Classify(reliability.ClassTransient, "completion_stream", errors.New("reset"))
	stream := &scriptedStreamer{
		deltas: []string{"partial "},
		err:    midStream,
	}
	c := NewClient(stream, zerolog.Nop())
	c.sleep = func(time.Duration) {}

	_, err := c.StreamReply(context.Background(), nil, "hi", "", func(string) error { return nil })
	if !errors.Is(err, midStream) {
		t.Fatalf("err = %v, want the mid-stream failure without retry", err)
	}
	if stream.streamCalls != 1 {
		t.Fatalf("stream calls = %d, mid-stream failures must not re-establish", stream.streamCalls)
	}
}

// scriptedStreamer emits fixed deltas then fails.
type scriptedStreamer struct {
	deltas      []string
	err         error
	streamCalls int
}

func (s *scriptedStreamer) Complete(context.Context, CompletionRequest) (CompletionResponse, error) {
	return CompletionResponse{}, s.err
}

func (s *scriptedStreamer) StreamCompletion(_ context.Context, _ CompletionRequest, onDelta DeltaHandler) (CompletionResponse, error) {
	s.streamCalls++
	for _, d := range s.deltas {
		if onDelta != nil {
			if err := onDelta(d); err != nil {
				return CompletionResponse{}, err
			}
		}
	}
	return CompletionResponse{}, s.err
}
