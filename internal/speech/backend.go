// Package speech converts text and lyrics into audio plus viseme
// timelines, searching across voice, engine, region, and text-type
// combinations so synthesis degrades gracefully under partial backend
// unavailability.
package speech

import (
	"context"
	"errors"
)

// Engine is the speech backend's quality tier.
type Engine string

const (
	EngineNeural   Engine = "neural"
	EngineStandard Engine = "standard"
)

// TextType tells the backend how to interpret the request body.
type TextType string

const (
	TextTypeSSML TextType = "ssml"
	TextTypeText TextType = "text"
)

// ErrorCode is the closed set of backend failure codes the synthesizer
// reacts to. Anything a backend reports outside this set maps to
// CodeInternal at the adapter boundary.
type ErrorCode string

const (
	CodeInvalidSSML          ErrorCode = "invalid_ssml"
	CodeEngineNotSupported   ErrorCode = "engine_not_supported"
	CodeTextTooLong          ErrorCode = "text_too_long"
	CodeInvalidVoice         ErrorCode = "invalid_voice"
	CodeUnsupportedAlphabet  ErrorCode = "unsupported_alphabet"
	CodeLanguageNotSupported ErrorCode = "language_not_supported"
	CodeValidation           ErrorCode = "validation"
	CodeThrottled            ErrorCode = "throttled"
	CodeUnavailable          ErrorCode = "service_unavailable"
	CodeInternal             ErrorCode = "internal"
)

// Continuable reports whether a failed attempt should move on to the
// next engine/text-type/region combination instead of aborting.
func Continuable(code ErrorCode) bool {
	switch code {
	case CodeInvalidSSML, CodeEngineNotSupported, CodeTextTooLong,
		CodeInvalidVoice, CodeUnsupportedAlphabet, CodeLanguageNotSupported,
		CodeValidation:
		return true
	default:
		return false
	}
}

// Transient reports whether the code signals a retryable overload rather
// than a request problem.
func Transient(code ErrorCode) bool {
	return code == CodeThrottled || code == CodeUnavailable
}

// BackendError is a classified failure from the speech backend.
type BackendError struct {
	Code    ErrorCode
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

// AsBackendError extracts a BackendError from an error chain.
func AsBackendError(err error) (*BackendError, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// Viseme is one timed mouth-shape marker for avatar lip-sync.
type Viseme struct {
	TimeMS int    `json:"time"`
	Value  string `json:"value"`
}

// Voice describes one catalog entry of the speech backend.
type Voice struct {
	ID               string   `json:"id"`
	LanguageCode     string   `json:"language_code"`
	LanguageName     string   `json:"language_name"`
	Gender           string   `json:"gender"`
	SupportedEngines []string `json:"supported_engines"`
}

// SynthesisInput is one synthesis attempt against a backend.
type SynthesisInput struct {
	VoiceID  string
	Engine   Engine
	TextType TextType
	Text     string
}

// Backend is one regional speech-synthesis client.
type Backend interface {
	Region() string
	// Synthesize returns raw audio bytes for the input.
	Synthesize(ctx context.Context, in SynthesisInput) ([]byte, error)
	// SpeechMarks returns the viseme timeline for the input.
	SpeechMarks(ctx context.Context, in SynthesisInput) ([]Viseme, error)
	// Voices returns the region's voice catalog.
	Voices(ctx context.Context) ([]Voice, error)
}
