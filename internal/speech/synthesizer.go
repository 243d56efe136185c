package speech

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/syedsofiyan2004/rem/internal/persona"
	"github.com/syedsofiyan2004/rem/internal/reliability"
)

// lyricsBlocklist rejects profanity and self-harm terms before any
// synthesis attempt is made.
var lyricsBlocklist = regexp.MustCompile(`(?i)\b(fuck|shit|bitch|asshole|slut|whore|dick|pussy|cunt|rape|kill|suicide)\b`)

// BlockedLyrics reports whether text trips the lyrics blocklist.
// Callers can reject early, before any queueing or gating.
func BlockedLyrics(text string) bool {
	return lyricsBlocklist.MatchString(text)
}

// Result is a successful synthesis outcome.
type Result struct {
	Audio   []byte
	Visemes []Viseme
	VoiceID string
	Engine  Engine
	Region  string
}

// Synthesizer searches voice, engine, region, and text-type candidates
// until one synthesis succeeds. Backends are ordered primary region
// first; the whole attempt matrix is exhausted per region before the
// next region is tried.
type Synthesizer struct {
	backends     []Backend
	defaultVoice string
	defaultRate  string
	defaultPitch string
	log          zerolog.Logger
}

func NewSynthesizer(backends []Backend, defaultVoice, rate, pitch string, log zerolog.Logger) *Synthesizer {
	if strings.TrimSpace(defaultVoice) == "" {
		defaultVoice = DefaultVoice
	}
	if strings.TrimSpace(rate) == "" {
		rate = "medium"
	}
	if strings.TrimSpace(pitch) == "" {
		pitch = "+4%"
	}
	return &Synthesizer{
		backends:     backends,
		defaultVoice: defaultVoice,
		defaultRate:  rate,
		defaultPitch: pitch,
		log:          log.With().Str("component", "speech").Logger(),
	}
}

type attempt struct {
	engine   Engine
	textType TextType
	body     string
}

// Speak synthesizes conversational speech with a viseme timeline.
func (s *Synthesizer) Speak(ctx context.Context, text, langHint, mode string) (*Result, error) {
	clean := persona.StripStageDirections(text)
	if clean == "" {
		clean = text
	}

	ssml := BuildSpeechSSML(clean, langHint, s.defaultRate, s.defaultPitch)
	plan := []attempt{
		{EngineNeural, TextTypeSSML, ssml},
		{EngineStandard, TextTypeSSML, ssml},
		{EngineNeural, TextTypeText, clean},
		{EngineStandard, TextTypeText, clean},
	}

	var lastErr error
	for _, voice := range CandidateVoices(langHint, mode, s.defaultVoice) {
		res, err := s.tryPlan(ctx, voice, plan)
		if err == nil {
			res.Visemes = s.bestEffortVisemes(ctx, res, clean)
			return res, nil
		}
		if isVoiceContinuable(err) {
			lastErr = err
			continue
		}
		return nil, classifyBackendError(err)
	}
	return nil, exhausted(lastErr)
}

// Sing synthesizes a melodic rendition of user-provided lyrics. Lyrics
// failing the blocklist are rejected before any backend call. An
// SSML-validity failure of the melodic markup degrades to the flat
// speech-SSML path for the same voice instead of failing the request.
func (s *Synthesizer) Sing(ctx context.Context, lyrics, langHint, mode string) (*Result, error) {
	if lyricsBlocklist.MatchString(lyrics) {
		return nil, reliability.Classify(reliability.ClassValidation, "blocked_lyrics",
			errors.New("these lyrics cannot be sung"))
	}

	clean := persona.StripStageDirections(dedupeLines(lyrics))
	if clean == "" {
		clean = lyrics
	}

	singPlan := []attempt{
		{EngineNeural, TextTypeSSML, BuildSingSSML(clean, langHint)},
		{EngineStandard, TextTypeSSML, BuildSingSSML(clean, langHint)},
	}
	speechSSML := BuildSpeechSSML(clean, langHint, s.defaultRate, s.defaultPitch)
	speechPlan := []attempt{
		{EngineNeural, TextTypeSSML, speechSSML},
		{EngineStandard, TextTypeSSML, speechSSML},
		{EngineNeural, TextTypeText, clean},
		{EngineStandard, TextTypeText, clean},
	}

	var lastErr error
	for _, voice := range CandidateVoices(langHint, mode, s.defaultVoice) {
		res, err := s.tryPlan(ctx, voice, singPlan)
		if err != nil && isSSMLValidityError(err) {
			s.log.Warn().Str("voice", voice).Msg("melodic ssml rejected, degrading to flat delivery")
			res, err = s.tryPlan(ctx, voice, speechPlan)
		}
		if err == nil {
			res.Visemes = s.bestEffortVisemes(ctx, res, clean)
			return res, nil
		}
		if isVoiceContinuable(err) || isSSMLValidityError(err) {
			lastErr = err
			continue
		}
		return nil, classifyBackendError(err)
	}
	return nil, exhausted(lastErr)
}

// tryPlan runs the attempt matrix for one voice: every plan entry
// against the primary region, then the whole matrix again per fallback
// region. Continuable failures move to the next combination; anything
// else aborts immediately.
func (s *Synthesizer) tryPlan(ctx context.Context, voice string, plan []attempt) (*Result, error) {
	var lastErr error
	for _, backend := range s.backends {
		for _, a := range plan {
			audio, err := backend.Synthesize(ctx, SynthesisInput{
				VoiceID:  voice,
				Engine:   a.engine,
				TextType: a.textType,
				Text:     a.body,
			})
			if err == nil {
				if backend != s.backends[0] {
					s.log.Warn().
						Str("voice", voice).
						Str("region", backend.Region()).
						Msg("synthesized from fallback region")
				}
				return &Result{Audio: audio, VoiceID: voice, Engine: a.engine, Region: backend.Region()}, nil
			}
			if be, ok := AsBackendError(err); ok && Continuable(be.Code) {
				lastErr = err
				continue
			}
			return nil, err
		}
	}
	if lastErr == nil {
		lastErr = &BackendError{Code: CodeInternal, Message: "no synthesis backends configured"}
	}
	return nil, lastErr
}

// bestEffortVisemes fetches the viseme timeline from the engine, voice,
// and region that produced the audio. A failure here never turns a
// successful synthesis into an error; the timeline is simply empty.
func (s *Synthesizer) bestEffortVisemes(ctx context.Context, res *Result, clean string) []Viseme {
	backend := s.backendForRegion(res.Region)
	if backend == nil {
		return nil
	}
	marks, err := backend.SpeechMarks(ctx, SynthesisInput{
		VoiceID:  res.VoiceID,
		Engine:   res.Engine,
		TextType: TextTypeText,
		Text:     clean,
	})
	if err != nil {
		s.log.Debug().Err(err).Str("voice", res.VoiceID).Msg("viseme marks unavailable")
		return nil
	}
	return marks
}

// AvailableVoices lists the voice catalog, preferring the primary
// region and falling through on failure.
func (s *Synthesizer) AvailableVoices(ctx context.Context) ([]Voice, error) {
	var lastErr error
	for _, backend := range s.backends {
		voices, err := backend.Voices(ctx)
		if err == nil {
			return voices, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no synthesis backends configured")
	}
	return nil, classifyBackendError(lastErr)
}

func (s *Synthesizer) backendForRegion(region string) Backend {
	for _, b := range s.backends {
		if b.Region() == region {
			return b
		}
	}
	return nil
}

// isVoiceContinuable reports whether a failure for one voice should
// move on to the next candidate rather than abort the request.
func isVoiceContinuable(err error) bool {
	be, ok := AsBackendError(err)
	if !ok {
		return false
	}
	switch be.Code {
	case CodeInvalidVoice, CodeLanguageNotSupported, CodeValidation, CodeEngineNotSupported:
		return true
	default:
		return false
	}
}

func isSSMLValidityError(err error) bool {
	be, ok := AsBackendError(err)
	if !ok {
		return false
	}
	return be.Code == CodeInvalidSSML || be.Code == CodeValidation
}

// classifyBackendError maps an aborting backend failure onto the core's
// failure classes so callers can make retry decisions without inspecting
// backend codes.
func classifyBackendError(err error) error {
	be, ok := AsBackendError(err)
	if !ok {
		return err
	}
	if Transient(be.Code) {
		return reliability.Classify(reliability.ClassTransient, string(be.Code), err)
	}
	return reliability.Classify(reliability.ClassFatal, string(be.Code), err)
}

// exhausted wraps the last candidate failure so callers see both the
// exhaustion and the final error's own classification.
func exhausted(lastErr error) error {
	code := "synthesis_exhausted"
	if be, ok := AsBackendError(lastErr); ok {
		code = string(be.Code)
	}
	if lastErr == nil {
		lastErr = errors.New("no synthesis candidates available")
	}
	return reliability.Classify(reliability.ClassExhausted, code, lastErr)
}

// dedupeLines drops consecutive identical lyric lines, which chorus
// repetition otherwise turns into long monotonous stretches.
func dedupeLines(text string) string {
	var out []string
	last := ""
	for _, line := range strings.Split(text, "\n") {
		l := strings.TrimSpace(line)
		if l != "" && l != last {
			out = append(out, l)
			last = l
		}
	}
	if len(out) == 0 {
		return text
	}
	return strings.Join(out, "\n")
}
