// Package assistant ties the conversation brain, session memory, and
// speech synthesis together behind the operations the HTTP layer
// exposes.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/syedsofiyan2004/rem/internal/brain"
	"github.com/syedsofiyan2004/rem/internal/cache"
	"github.com/syedsofiyan2004/rem/internal/gate"
	"github.com/syedsofiyan2004/rem/internal/observability"
	"github.com/syedsofiyan2004/rem/internal/reliability"
	"github.com/syedsofiyan2004/rem/internal/session"
	"github.com/syedsofiyan2004/rem/internal/speech"
)

// Service is the application core. One instance serves all sessions.
type Service struct {
	memory  *session.Memory
	brain   *brain.Client
	synth   *speech.Synthesizer
	cache   cache.Store
	metrics *observability.Metrics
	log     zerolog.Logger

	chatGate    *gate.Gate
	speechGate  *gate.Gate
	gateTimeout time.Duration

	now   func() time.Time
	sleep func(time.Duration)

	voices voiceCatalog
}

// Options carries the collaborators a Service needs.
type Options struct {
	Memory      *session.Memory
	Brain       *brain.Client
	Synthesizer *speech.Synthesizer
	Cache       cache.Store
	Metrics     *observability.Metrics
	Log         zerolog.Logger

	ChatConcurrency   int
	SpeechConcurrency int
	GateTimeout       time.Duration
}

func New(opts Options) *Service {
	if opts.GateTimeout <= 0 {
		opts.GateTimeout = 10 * time.Second
	}
	return &Service{
		memory:      opts.Memory,
		brain:       opts.Brain,
		synth:       opts.Synthesizer,
		cache:       opts.Cache,
		metrics:     opts.Metrics,
		log:         opts.Log.With().Str("component", "assistant").Logger(),
		chatGate:    gate.New(opts.ChatConcurrency),
		speechGate:  gate.New(opts.SpeechConcurrency),
		gateTimeout: opts.GateTimeout,
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

var errBusy = errors.New("the assistant is busy, try again in a moment")

// Chat produces the next assistant turn for a session and records both
// sides of the exchange.
func (s *Service) Chat(ctx context.Context, sessionID, text, style string) (string, error) {
	start := s.now()
	sessionID = strings.TrimSpace(sessionID)
	text = strings.TrimSpace(text)
	if sessionID == "" || text == "" {
		s.metrics.ChatRequests.WithLabelValues("validation").Inc()
		return "", reliability.Classify(reliability.ClassValidation, "empty_input",
			errors.New("session id and message are required"))
	}

	if !s.chatGate.Acquire(ctx, s.gateTimeout) {
		s.metrics.ChatRequests.WithLabelValues("busy").Inc()
		s.metrics.BusyRejections.WithLabelValues("chat").Inc()
		return "", reliability.Classify(reliability.ClassBusy, "chat_busy", errBusy)
	}
	defer s.chatGate.Release()

	reply, intercepted := s.intercept(text)
	if !intercepted {
		var err error
		reply, err = s.brain.Reply(ctx, s.memory.Read(sessionID), text, style)
		if err != nil {
			s.metrics.ChatRequests.WithLabelValues("error").Inc()
			return "", err
		}
	}

	s.memory.Append(sessionID, session.RoleUser, text)
	s.memory.Append(sessionID, session.RoleAssistant, reply)
	s.metrics.ChatRequests.WithLabelValues("ok").Inc()
	s.metrics.ObserveLatency("chat", s.now().Sub(start))
	return reply, nil
}

// ChatStream is Chat's streaming variant. When the stream breaks after
// establishment the buffered path takes over and the recovered reply is
// emitted as a single fragment, so the caller always ends with a
// complete answer.
func (s *Service) ChatStream(ctx context.Context, sessionID, text, style string, onDelta brain.DeltaHandler) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	text = strings.TrimSpace(text)
	if sessionID == "" || text == "" {
		s.metrics.ChatRequests.WithLabelValues("validation").Inc()
		return "", reliability.Classify(reliability.ClassValidation, "empty_input",
			errors.New("session id and message are required"))
	}

	if !s.chatGate.Acquire(ctx, s.gateTimeout) {
		s.metrics.ChatRequests.WithLabelValues("busy").Inc()
		s.metrics.BusyRejections.WithLabelValues("chat").Inc()
		return "", reliability.Classify(reliability.ClassBusy, "chat_busy", errBusy)
	}
	defer s.chatGate.Release()

	if reply, intercepted := s.intercept(text); intercepted {
		if onDelta != nil {
			if err := onDelta(reply); err != nil {
				return "", err
			}
		}
		s.memory.Append(sessionID, session.RoleUser, text)
		s.memory.Append(sessionID, session.RoleAssistant, reply)
		s.metrics.ChatRequests.WithLabelValues("ok").Inc()
		return reply, nil
	}

	history := s.memory.Read(sessionID)
	reply, err := s.brain.StreamReply(ctx, history, text, style, onDelta)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.log.Warn().Err(err).Msg("stream failed, recovering with buffered reply")
		s.metrics.StreamFallbacks.Inc()
		reply, err = s.brain.Reply(ctx, history, text, style)
		if err != nil {
			s.metrics.ChatRequests.WithLabelValues("error").Inc()
			return "", err
		}
		if onDelta != nil {
			if err := onDelta(reply); err != nil {
				return "", err
			}
		}
	}

	s.memory.Append(sessionID, session.RoleUser, text)
	s.memory.Append(sessionID, session.RoleAssistant, reply)
	s.metrics.ChatRequests.WithLabelValues("ok").Inc()
	return reply, nil
}
