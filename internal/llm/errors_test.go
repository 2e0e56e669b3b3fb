package llm

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&RetryableError{StatusCode: 429}) {
		t.Error("429 not retryable")
	}
	if !IsRetryable(fmt.Errorf("wrapped: %w", &RetryableError{Message: "conn reset"})) {
		t.Error("wrapped retryable error not detected")
	}
	if IsRetryable(errors.New("fatal")) {
		t.Error("plain error reported retryable")
	}
	if IsRetryable(&ParseError{Raw: "junk"}) {
		t.Error("parse error reported retryable")
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		for i := 0; i < 20; i++ {
			d := Backoff(attempt)
			if d < base || d > base+base/2 {
				t.Fatalf("Backoff(%d) = %v, want [%v, %v]", attempt, d, base, base+base/2)
			}
		}
	}

	// Large attempts stay at the cap.
	if d := Backoff(10); d < 30*time.Second || d > 45*time.Second {
		t.Errorf("Backoff(10) = %v, want capped near 30s", d)
	}
}

func TestErrorMessagesTruncated(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	msg := (&RetryableError{Message: string(long)}).Error()
	if len(msg) > 250 {
		t.Errorf("error message length = %d, want truncated", len(msg))
	}
}
