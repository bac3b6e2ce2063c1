package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(KindValidation, "INVALID_URL", "bad url"), http.StatusBadRequest},
		{New(KindAuth, "", "sign in"), http.StatusUnauthorized},
		{New(KindNotFound, "", "missing"), http.StatusNotFound},
		{fmt.Errorf("outer: %w", New(KindRateLimit, "", "slow down")), http.StatusTooManyRequests},
		{Wrap(KindTimeout, "", "timed out", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{New(KindUpstream, "", "bad gateway"), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWrapUnwraps(t *testing.T) {
	err := fmt.Errorf("calling: %w", Wrap(KindTimeout, "TIMEOUT", "Summary timed out", context.DeadlineExceeded))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("wrapped cause should be reachable with errors.Is")
	}
	if !Is(err, KindTimeout) {
		t.Error("Is(KindTimeout) = false")
	}
	if got := CodeOf(err); got != "TIMEOUT" {
		t.Errorf("CodeOf() = %q", got)
	}
	if got := MessageOf(err, "fallback"); got != "Summary timed out" {
		t.Errorf("MessageOf() = %q", got)
	}
	if got := MessageOf(errors.New("x"), "fallback"); got != "fallback" {
		t.Errorf("MessageOf(plain) = %q", got)
	}
}

func TestErrorString(t *testing.T) {
	if got := New(KindInternal, "", "").Error(); got != "internal error" {
		t.Errorf("Error() = %q", got)
	}
	if got := Wrap(KindUpstream, "", "metadata", errors.New("eof")).Error(); got != "metadata: eof" {
		t.Errorf("Error() = %q", got)
	}
}
