package reliability

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestClassOf(t *testing.T) {
	base := errors.New("throttled")
	err := Classify(ClassTransient, "throttled", base)

	if ClassOf(err) != ClassTransient {
		t.Fatalf("ClassOf() = %v, want ClassTransient", ClassOf(err))
	}
	if !IsTransient(fmt.Errorf("wrapped: %w", err)) {
		t.Fatalf("IsTransient should see through wrapping")
	}
	if CodeOf(err) != "throttled" {
		t.Fatalf("CodeOf() = %q, want %q", CodeOf(err), "throttled")
	}
	if !errors.Is(err, base) {
		t.Fatalf("classified error should unwrap to the original")
	}
}

func TestClassOfUnclassifiedDefaultsToFatal(t *testing.T) {
	if ClassOf(errors.New("mystery")) != ClassFatal {
		t.Fatalf("unclassified errors must classify as fatal")
	}
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		if !IsRetryableHTTPStatus(code) {
			t.Fatalf("status %d should be retryable", code)
		}
	}
	for _, code := range []int{200, 400, 401, 404, 422} {
		if IsRetryableHTTPStatus(code) {
			t.Fatalf("status %d should not be retryable", code)
		}
	}
}

func TestBackoffGrowsExponentially(t *testing.T) {
	base := 250 * time.Millisecond
	for attempt := 0; attempt < 4; attempt++ {
		d := Backoff(attempt, base, 0)
		want := base * (1 << attempt)
		if d != want {
			t.Fatalf("Backoff(%d) = %v, want %v", attempt, d, want)
		}
	}
}

func TestBackoffJitterBounded(t *testing.T) {
	base := 250 * time.Millisecond
	jitter := 200 * time.Millisecond
	for i := 0; i < 50; i++ {
		d := Backoff(1, base, jitter)
		if d < 2*base || d >= 2*base+jitter {
			t.Fatalf("Backoff with jitter = %v, want in [%v, %v)", d, 2*base, 2*base+jitter)
		}
	}
}
