package transcript

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		msg  string
		want FailureKind
	}{
		{"Transcript is disabled on this video", FailureNoCaptions},
		{"LOGIN_REQUIRED: sign in", FailureNoCaptions},
		{"Sign in: login required", FailureNoCaptions},
		{"Video unavailable", FailureVideoUnavailable},
		{"Too Many Requests", FailureRateLimited},
		{"hit rate limit", FailureRateLimited},
		{"connection reset by peer", FailureNetwork},
		{"", FailureNetwork},
		// caption availability is checked first
		{"captions disabled; video unavailable", FailureNoCaptions},
	}
	for _, tt := range tests {
		if got := ClassifyFailure(tt.msg); got != tt.want {
			t.Errorf("ClassifyFailure(%q) = %s, want %s", tt.msg, got, tt.want)
		}
	}
}

func TestFailureOf(t *testing.T) {
	base := errors.New("boom")
	se := NewSourceError("Video unavailable", base)
	wrapped := fmt.Errorf("fetching: %w", se)

	if got := FailureOf(wrapped); got != FailureVideoUnavailable {
		t.Errorf("FailureOf(wrapped) = %s, want %s", got, FailureVideoUnavailable)
	}
	if !errors.Is(wrapped, base) {
		t.Error("SourceError should unwrap to its cause")
	}
	if got := FailureOf(errors.New("HTTP 429: too many requests")); got != FailureRateLimited {
		t.Errorf("FailureOf(plain) = %s, want %s", got, FailureRateLimited)
	}
	if got := FailureOf(nil); got != "" {
		t.Errorf("FailureOf(nil) = %q, want empty", got)
	}
}
