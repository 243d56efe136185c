package brain

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/syedsofiyan2004/rem/internal/persona"
	"github.com/syedsofiyan2004/rem/internal/reliability"
	"github.com/syedsofiyan2004/rem/internal/session"
)

const (
	// MaxTokens caps reply length; the persona is a short-form talker.
	MaxTokens = 480
	// TopP is fixed across styles; temperature alone carries the
	// style's looseness.
	TopP = 0.9

	maxAttempts   = 3
	backoffBase   = 250 * time.Millisecond
	backoffJitter = 200 * time.Millisecond

	// FallbackReply is served when the model returned a reply that is
	// empty after cleaning. The companion never answers with a blank.
	FallbackReply = "I'm here."
)

// Client turns session history plus a user message into a cleaned,
// clamped persona reply. It never mutates the history it is given.
type Client struct {
	completer Completer
	log       zerolog.Logger

	sleep func(time.Duration)
}

func NewClient(completer Completer, log zerolog.Logger) *Client {
	return &Client{
		completer: completer,
		log:       log.With().Str("component", "brain").Logger(),
		sleep:     time.Sleep,
	}
}

func (c *Client) request(history []session.Turn, userText, style string) CompletionRequest {
	messages := make([]Message, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, Message{Role: session.RoleUser, Content: userText})

	return CompletionRequest{
		System:      persona.Compose(persona.Base, style),
		Messages:    messages,
		Temperature: persona.TemperatureFor(style),
		TopP:        TopP,
		MaxTokens:   MaxTokens,
	}
}

// Reply asks the model for the next assistant turn, retrying transient
// failures with exponential backoff. Fatal errors surface immediately;
// transient ones surface once the retry ceiling is exhausted.
func (c *Client) Reply(ctx context.Context, history []session.Turn, userText, style string) (string, error) {
	req := c.request(history, userText, style)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			c.sleep(reliability.Backoff(attempt-1, backoffBase, backoffJitter))
		}

		res, err := c.completer.Complete(ctx, req)
		if err == nil {
			return finishReply(res.Text), nil
		}
		lastErr = err
		if !reliability.IsTransient(err) {
			break
		}
		c.log.Warn().Err(err).Int("attempt", attempt+1).Msg("completion failed, retrying")
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	c.log.Error().Err(lastErr).Msg("completion unavailable")
	return "", lastErr
}

// StreamReply is Reply's streaming variant. Deltas are flattened to a
// single line before they reach the handler. Only stream establishment
// is retried here; once deltas have been emitted a failure surfaces to
// the caller, who decides how to recover.
func (c *Client) StreamReply(ctx context.Context, history []session.Turn, userText, style string, onDelta DeltaHandler) (string, error) {
	req := c.request(history, userText, style)

	emit := onDelta
	if emit != nil {
		emit = func(delta string) error {
			return onDelta(flattenDelta(delta))
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			c.sleep(reliability.Backoff(attempt-1, backoffBase, backoffJitter))
		}

		emitted := false
		counting := func(delta string) error {
			emitted = true
			if emit == nil {
				return nil
			}
			return emit(delta)
		}

		res, err := c.completer.StreamCompletion(ctx, req, counting)
		if err == nil {
			return finishReply(res.Text), nil
		}
		lastErr = err
		if emitted || !reliability.IsTransient(err) {
			return "", err
		}
		c.log.Warn().Err(err).Int("attempt", attempt+1).Msg("stream establishment failed, retrying")
	}
	return "", lastErr
}

// finishReply applies the persona filter and the two-sentence clamp.
func finishReply(text string) string {
	out := persona.ClampSentences(persona.Clean(text), 2)
	if strings.TrimSpace(out) == "" {
		return FallbackReply
	}
	return out
}

// flattenDelta keeps streamed fragments on one line so transports that
// frame on newlines cannot split a fragment. A bare \r counts too; a
// chunk boundary can split \r\n across two deltas.
func flattenDelta(delta string) string {
	delta = strings.ReplaceAll(delta, "\r\n", " ")
	delta = strings.ReplaceAll(delta, "\r", " ")
	return strings.ReplaceAll(delta, "\n", " ")
}
