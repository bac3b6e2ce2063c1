package transcript

import (
	"errors"
	"strings"
)

// FailureKind classifies why a transcript source could not produce segments.
type FailureKind string

const (
	FailureNoCaptions       FailureKind = "NO_CAPTIONS"
	FailureVideoUnavailable FailureKind = "VIDEO_UNAVAILABLE"
	FailureRateLimited      FailureKind = "RATE_LIMITED"
	FailureNetwork          FailureKind = "NETWORK_ERROR"
)

// ClassifyFailure derives a FailureKind from a source failure message.
// Matching is case-insensitive and ordered: caption availability first,
// then video availability, then rate limiting.
func ClassifyFailure(message string) FailureKind {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "disabled"),
		strings.Contains(lower, "login_required"),
		strings.Contains(lower, "login required"):
		return FailureNoCaptions
	case strings.Contains(lower, "unavailable"):
		return FailureVideoUnavailable
	case strings.Contains(lower, "too many"),
		strings.Contains(lower, "rate limit"):
		return FailureRateLimited
	default:
		return FailureNetwork
	}
}

// SourceError is returned by transcript sources. Kind is derived from
// Message unless the source sets it explicitly.
type SourceError struct {
	Kind    FailureKind
	Message string
	Err     error
}

// NewSourceError builds a SourceError classified from message.
func NewSourceError(message string, err error) *SourceError {
	return &SourceError{Kind: ClassifyFailure(message), Message: message, Err: err}
}

func (e *SourceError) Error() string {
	return e.Message
}

func (e *SourceError) Unwrap() error { return e.Err }

// FailureOf returns the FailureKind carried by err, classifying the error
// text when err is not a SourceError.
func FailureOf(err error) FailureKind {
	var se *SourceError
	if errors.As(err, &se) {
		if se.Kind != "" {
			return se.Kind
		}
		return ClassifyFailure(se.Message)
	}
	if err == nil {
		return ""
	}
	return ClassifyFailure(err.Error())
}
