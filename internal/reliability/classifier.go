package reliability

import (
	"errors"
	"math/rand"
	"time"
)

// Class is the closed set of failure classes the core reacts to.
// Backend adapters classify at the boundary so retry decisions are a
// pure function of this enum, never of provider error strings.
type Class int

const (
	ClassValidation Class = iota // bad caller input, no backend call made
	ClassBusy                    // admission gate timed out
	ClassTransient               // rate-limited or temporarily unavailable upstream
	ClassFatal                   // upstream rejected the request for good
	ClassExhausted               // every synthesis candidate failed
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassBusy:
		return "busy"
	case ClassTransient:
		return "transient"
	case ClassFatal:
		return "fatal"
	case ClassExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// ClassifiedError carries a failure class alongside the underlying error.
type ClassifiedError struct {
	Class Class
	Code  string
	Err   error
}

func (e *ClassifiedError) Error() string {
	if e.Err == nil {
		return e.Class.String() + ": " + e.Code
	}
	return e.Class.String() + ": " + e.Err.Error()
}

func (e *ClassifiedError) Unwrap() error { return e.Err }

// Classify wraps err with a class and a stable code.
func Classify(class Class, code string, err error) *ClassifiedError {
	return &ClassifiedError{Class: class, Code: code, Err: err}
}

// ClassOf extracts the failure class of err, defaulting to ClassFatal for
// unclassified errors so they are never silently retried.
func ClassOf(err error) Class {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	return ClassFatal
}

// CodeOf returns the stable code of a classified error, or "" otherwise.
func CodeOf(err error) string {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	return ClassOf(err) == ClassTransient
}

// IsRetryableHTTPStatus classifies retryable HTTP status codes.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// Backoff computes the sleep before retry attempt (0-based):
// base*2^attempt plus random jitter up to maxJitter.
func Backoff(attempt int, base, maxJitter time.Duration) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
	}
	if maxJitter > 0 {
		d += time.Duration(rand.Int63n(int64(maxJitter)))
	}
	return d
}
