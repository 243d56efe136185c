package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/syedsofiyan2004/rem/internal/cache"
	"github.com/syedsofiyan2004/rem/internal/reliability"
	"github.com/syedsofiyan2004/rem/internal/speech"
)

const (
	synthMaxAttempts   = 3
	synthBackoffBase   = 250 * time.Millisecond
	synthBackoffJitter = 200 * time.Millisecond
)

// SpeechResult is a synthesis outcome ready for the wire.
type SpeechResult struct {
	AudioBase64 string          `json:"audio_b64"`
	Visemes     []speech.Viseme `json:"marks"`
	VoiceID     string          `json:"voice_id"`
}

// TextToSpeech synthesizes spoken audio plus a viseme timeline, served
// from cache when the same text was synthesized recently.
func (s *Service) TextToSpeech(ctx context.Context, text, lang, mode string) (*SpeechResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, reliability.Classify(reliability.ClassValidation, "empty_input",
			errors.New("text is required"))
	}
	return s.synthesize(ctx, "speak", text, lang, mode)
}

// Sing synthesizes a melodic rendition of the given lyrics. Blocked
// lyrics are rejected before the request takes a synthesis slot.
func (s *Service) Sing(ctx context.Context, lyrics, lang, mode string) (*SpeechResult, error) {
	lyrics = strings.TrimSpace(lyrics)
	if lyrics == "" {
		return nil, reliability.Classify(reliability.ClassValidation, "empty_input",
			errors.New("lyrics are required"))
	}
	if speech.BlockedLyrics(lyrics) {
		return nil, reliability.Classify(reliability.ClassValidation, "blocked_lyrics",
			errors.New("these lyrics cannot be sung"))
	}
	if strings.TrimSpace(mode) == "" {
		mode = "auto"
	}
	return s.synthesize(ctx, "sing", lyrics, lang, mode)
}

func (s *Service) synthesize(ctx context.Context, kind, text, lang, mode string) (*SpeechResult, error) {
	start := s.now()
	key := cache.Key(kind, text, lang, mode)

	if entry, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("cache read failed")
	} else if entry != nil {
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return &SpeechResult{AudioBase64: entry.AudioBase64, Visemes: entry.Visemes, VoiceID: entry.VoiceID}, nil
	}
	s.metrics.CacheLookups.WithLabelValues("miss").Inc()

	if !s.speechGate.Acquire(ctx, s.gateTimeout) {
		s.metrics.BusyRejections.WithLabelValues(kind).Inc()
		return nil, reliability.Classify(reliability.ClassBusy, "speech_busy", errBusy)
	}
	defer s.speechGate.Release()

	var res *speech.Result
	var err error
	for attempt := 0; attempt < synthMaxAttempts; attempt++ {
		if attempt > 0 {
			s.metrics.UpstreamRetries.WithLabelValues("speech").Inc()
			s.sleep(reliability.Backoff(attempt-1, synthBackoffBase, synthBackoffJitter))
		}

		if kind == "sing" {
			res, err = s.synth.Sing(ctx, text, lang, mode)
		} else {
			res, err = s.synth.Speak(ctx, text, lang, mode)
		}
		if err == nil {
			s.metrics.SynthesisAttempts.WithLabelValues(res.Region, "ok").Inc()
			break
		}
		s.metrics.SynthesisAttempts.WithLabelValues("", "error").Inc()
		if !reliability.IsTransient(err) || ctx.Err() != nil {
			return nil, err
		}
		s.log.Warn().Err(err).Int("attempt", attempt+1).Msg("synthesis failed, retrying")
	}
	if err != nil {
		return nil, err
	}

	out := &SpeechResult{
		AudioBase64: base64.StdEncoding.EncodeToString(res.Audio),
		Visemes:     res.Visemes,
		VoiceID:     res.VoiceID,
	}
	if err := s.cache.Put(ctx, key, &cache.Entry{
		AudioBase64: out.AudioBase64,
		Visemes:     out.Visemes,
		VoiceID:     out.VoiceID,
	}); err != nil {
		s.log.Warn().Err(err).Msg("cache write failed")
	}
	s.metrics.ObserveLatency(kind, s.now().Sub(start))
	return out, nil
}

// voiceCatalog caches the backend voice list for the process lifetime;
// the catalog changes on the order of months.
type voiceCatalog struct {
	mu     sync.Mutex
	loaded bool
	list   []speech.Voice
}

// ListVoices returns the available voice catalog.
func (s *Service) ListVoices(ctx context.Context) ([]speech.Voice, error) {
	s.voices.mu.Lock()
	defer s.voices.mu.Unlock()

	if s.voices.loaded {
		return s.voices.list, nil
	}
	list, err := s.synth.AvailableVoices(ctx)
	if err != nil {
		return nil, err
	}
	s.voices.loaded = true
	s.voices.list = list
	return list, nil
}
